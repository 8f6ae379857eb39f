package model

// PromptFields Prompt 模板所需的扁平字段
// 通用字段 + 按图形类型填写的专属字段
type PromptFields struct {
	Pattern             PatternType `json:"pattern"`
	Code                string      `json:"code"`
	Name                string      `json:"name"`
	TriggerTime         string      `json:"trigger_time"`
	Open                float64     `json:"open"`
	Current             float64     `json:"current"`
	High                float64     `json:"high"`
	LimitUp             float64     `json:"limit_up"`
	MA5                 float64     `json:"ma5"`
	MA20                float64     `json:"ma20"`
	PriorSupport        float64     `json:"prior_support"`
	VolumeAmplification float64     `json:"volume_amplification"`
	SectorName          string      `json:"sector_name"`
	SectorChange        float64     `json:"sector_change"`
	IndexName           string      `json:"index_name"`
	IndexChange         float64     `json:"index_change"`
	LatestNews          string      `json:"latest_news"`
	ExtraFeature        string      `json:"extra_feature"`

	// 开盘跳水
	MinutesSinceOpen int     `json:"minutes_since_open,omitempty"`
	DropPercent      float64 `json:"drop_percent,omitempty"`
	MAType           int     `json:"ma_type,omitempty"`
	MAPrice          float64 `json:"ma_price,omitempty"`

	// 破位下跌
	SupportPrice          float64 `json:"support_price,omitempty"`
	MinutesWithoutRebound int     `json:"minutes_without_rebound,omitempty"`

	// 冲板回落
	SurgePercent     float64 `json:"surge_percent,omitempty"`
	RetracePercent   float64 `json:"retrace_percent,omitempty"`
	LimitOrderVolume int64   `json:"limit_order_volume,omitempty"`
}
