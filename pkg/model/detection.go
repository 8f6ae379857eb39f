package model

// MonitorData 监控用的增强行情：快照 + 调用方提供的盘中上下文
type MonitorData struct {
	QuoteSnapshot

	TriggerTime           string  `json:"trigger_time"`            // HH:MM
	MinutesSinceOpen      int     `json:"minutes_since_open"`
	MA5                   float64 `json:"ma5"`
	MA20                  float64 `json:"ma20"`
	SupportPrice          float64 `json:"support_price"`           // 前期平台支撑位
	VolumeAmplification   float64 `json:"volume_amplification"`    // 成交额较前5日均值放大比例（%）
	MinutesWithoutRebound int     `json:"minutes_without_rebound"` // 破位后未回弹分钟数
	LimitOrderVolume      int64   `json:"limit_order_volume"`      // 封板挂单量（手）
	IndexName             string  `json:"index_name"`
	IndexChange           float64 `json:"index_change"`

	// 预先计算的幅度，仅用于 Prompt 展示
	DropPercent    float64 `json:"drop_percent,omitempty"`
	SurgePercent   float64 `json:"surge_percent,omitempty"`
	RetracePercent float64 `json:"retrace_percent,omitempty"`
}

// MonitorOverrides 调用方显式给出的上下文，nil 字段使用默认估算
type MonitorOverrides struct {
	TriggerTime           *string  `json:"trigger_time,omitempty"`
	MinutesSinceOpen      *int     `json:"minutes_since_open,omitempty"`
	MA5                   *float64 `json:"ma5,omitempty"`
	MA20                  *float64 `json:"ma20,omitempty"`
	SupportPrice          *float64 `json:"support_price,omitempty"`
	VolumeAmplification   *float64 `json:"volume_amplification,omitempty"`
	MinutesWithoutRebound *int     `json:"minutes_without_rebound,omitempty"`
	LimitOrderVolume      *int64   `json:"limit_order_volume,omitempty"`
	LatestNews            *string  `json:"latest_news,omitempty"`
}

// TriggerRule 命名的触发规则
type TriggerRule struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Pattern     PatternType             `json:"pattern"`
	Condition   func(*MonitorData) bool `json:"-"`
}

// Detection 批量检测的单条命中
type Detection struct {
	Code    string       `json:"code"`
	Pattern PatternType  `json:"pattern"`
	Rule    string       `json:"rule"`
	Data    *MonitorData `json:"data"`
}

// MonitorDefaults 调用方未提供盘中上下文时的估算参数
type MonitorDefaults struct {
	MA5Ratio              float64 `yaml:"ma5_ratio" validate:"gt=0"`
	MA20Ratio             float64 `yaml:"ma20_ratio" validate:"gt=0"`
	SupportRatio          float64 `yaml:"support_ratio" validate:"gt=0"`
	VolumeAmplification   float64 `yaml:"volume_amplification" validate:"gte=0"`
	MinutesSinceOpen      int     `yaml:"minutes_since_open" validate:"gte=0"`
	MinutesWithoutRebound int     `yaml:"minutes_without_rebound" validate:"gte=0"`
	LimitOrderVolume      int64   `yaml:"limit_order_volume" validate:"gte=0"`
	SectorName            string  `yaml:"sector_name"`
	LatestNews            string  `yaml:"latest_news"`
}

// DefaultMonitorDefaults 默认估算参数
func DefaultMonitorDefaults() MonitorDefaults {
	return MonitorDefaults{
		MA5Ratio:              0.995,
		MA20Ratio:             0.98,
		SupportRatio:          0.97,
		VolumeAmplification:   25.0,
		MinutesSinceOpen:      10,
		MinutesWithoutRebound: 5,
		LimitOrderVolume:      10000,
		SectorName:            "未知",
		LatestNews:            "无",
	}
}
