package engine

import (
	"math"
	"time"

	"PatternRadar/pkg/model"
)

// ChinaTZ 北京时间，无夏令时
var ChinaTZ = time.FixedZone("CST", 8*3600)

// Enrich 由快照构造监控数据，overrides 中非空字段优先
func Enrich(q model.QuoteSnapshot, o model.MonitorOverrides, def model.MonitorDefaults, now time.Time) model.MonitorData {
	q = q.Normalize()
	cur := q.Current
	d := model.MonitorData{
		QuoteSnapshot:         q,
		TriggerTime:           now.In(ChinaTZ).Format("15:04"),
		MinutesSinceOpen:      def.MinutesSinceOpen,
		MA5:                   roundPrice(cur * def.MA5Ratio),
		MA20:                  roundPrice(cur * def.MA20Ratio),
		SupportPrice:          roundPrice(cur * def.SupportRatio),
		VolumeAmplification:   def.VolumeAmplification,
		MinutesWithoutRebound: def.MinutesWithoutRebound,
		LimitOrderVolume:      def.LimitOrderVolume,
	}
	if d.SectorName == "" {
		d.SectorName = def.SectorName
	}
	if d.LatestNews == "" {
		d.LatestNews = def.LatestNews
	}

	if o.TriggerTime != nil {
		d.TriggerTime = *o.TriggerTime
	}
	if o.MinutesSinceOpen != nil {
		d.MinutesSinceOpen = *o.MinutesSinceOpen
	}
	if o.MA5 != nil {
		d.MA5 = *o.MA5
	}
	if o.MA20 != nil {
		d.MA20 = *o.MA20
	}
	if o.SupportPrice != nil {
		d.SupportPrice = *o.SupportPrice
	}
	if o.VolumeAmplification != nil {
		d.VolumeAmplification = *o.VolumeAmplification
	}
	if o.MinutesWithoutRebound != nil {
		d.MinutesWithoutRebound = *o.MinutesWithoutRebound
	}
	if o.LimitOrderVolume != nil {
		d.LimitOrderVolume = *o.LimitOrderVolume
	}
	if o.LatestNews != nil {
		d.LatestNews = *o.LatestNews
	}

	if q.Open > 0 {
		d.DropPercent = math.Abs(roundPct((q.Open - cur) / q.Open * 100))
		d.SurgePercent = roundPct((q.High - q.Open) / q.Open * 100)
	}
	if q.High > 0 {
		d.RetracePercent = roundPct((q.High - cur) / q.High * 100)
	}
	return d
}

// TradingMinutes 距开盘的交易分钟数，扣除午间休市
// 09:30 开盘，11:30-13:00 休市，15:00 收盘
func TradingMinutes(t time.Time) int {
	t = t.In(ChinaTZ)
	m := t.Hour()*60 + t.Minute()
	const (
		morningOpen    = 9*60 + 30
		morningClose   = 11*60 + 30
		afternoonOpen  = 13 * 60
		afternoonClose = 15 * 60
	)
	switch {
	case m < morningOpen:
		return 0
	case m <= morningClose:
		return m - morningOpen
	case m < afternoonOpen:
		return morningClose - morningOpen
	case m <= afternoonClose:
		return morningClose - morningOpen + m - afternoonOpen
	}
	return morningClose - morningOpen + afternoonClose - afternoonOpen
}

// InTradingSession 是否处于连续竞价时段（工作日）
func InTradingSession(t time.Time) bool {
	t = t.In(ChinaTZ)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	m := t.Hour()*60 + t.Minute()
	return (m >= 9*60+30 && m <= 11*60+30) || (m >= 13*60 && m <= 15*60)
}

// KeyPriceLevels 关键价位：压力位/支撑位按实时价固定比例推算，均线为估算值
func KeyPriceLevels(q model.QuoteSnapshot) []model.PriceLevel {
	q = q.Normalize()
	cur := q.Current
	open := q.Open
	if open <= 0 {
		open = cur
	}
	return []model.PriceLevel{
		{Name: "当前价格", Price: cur},
		{Name: "今开", Price: open},
		{Name: "昨收", Price: q.Baseline()},
		lv("第一压力位", cur*1.02),
		lv("第二压力位", cur*1.05),
		lv("第三压力位", cur*1.08),
		lv("第一支撑位", cur*0.98),
		lv("第二支撑位", cur*0.95),
		lv("第三支撑位", cur*0.92),
		{Name: "今日最高", Price: q.High},
		{Name: "今日最低", Price: q.Low},
		{Name: "涨停价", Price: q.LimitUp},
		{Name: "跌停价", Price: q.LimitDown},
		lv("5日均线", cur*0.995),
		lv("10日均线", cur*0.99),
		lv("20日均线", cur*0.98),
	}
}

// StateTips 非可分析图形的操作提示
func StateTips(p model.PatternType) []string {
	switch p {
	case model.PatternStrongRally:
		return []string{"关注是否突破前高", "注意成交量是否放大", "设置止盈位保护利润"}
	case model.PatternConsolidation:
		return []string{"等待方向明确", "关注支撑/压力位", "控制仓位"}
	}
	return nil
}

// PromptFieldsFor 生成 Prompt 所需字段，专属字段只按图形填写
func PromptFieldsFor(p model.PatternType, d model.MonitorData) model.PromptFields {
	f := model.PromptFields{
		Pattern:             p,
		Code:                d.Code,
		Name:                d.Name,
		TriggerTime:         d.TriggerTime,
		Open:                d.Open,
		Current:             d.Current,
		High:                d.High,
		LimitUp:             d.LimitUp,
		MA5:                 d.MA5,
		MA20:                d.MA20,
		PriorSupport:        d.SupportPrice,
		VolumeAmplification: d.VolumeAmplification,
		SectorName:          d.SectorName,
		SectorChange:        d.SectorChange,
		IndexName:           d.IndexName,
		IndexChange:         d.IndexChange,
		LatestNews:          d.LatestNews,
	}
	switch p {
	case model.PatternOpeningDive:
		f.MinutesSinceOpen = d.MinutesSinceOpen
		f.DropPercent = d.DropPercent
		f.MAType = 5
		f.MAPrice = d.MA5
	case model.PatternBreakdown:
		f.SupportPrice = d.SupportPrice
		f.MinutesWithoutRebound = d.MinutesWithoutRebound
	case model.PatternSurgeRetrace:
		f.SurgePercent = d.SurgePercent
		f.RetracePercent = d.RetracePercent
		f.LimitOrderVolume = d.LimitOrderVolume
	}
	return f
}
