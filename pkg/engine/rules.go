package engine

import (
	"math"

	"PatternRadar/pkg/model"
)

// DefaultTriggerRules 各图形的默认触发规则，同一图形内任一规则成立即触发
func DefaultTriggerRules() map[model.PatternType][]model.TriggerRule {
	return map[model.PatternType][]model.TriggerRule{
		model.PatternOpeningDive: {
			{
				Name:        "开盘5分钟跳水",
				Description: "开盘5分钟内跌幅超过3%",
				Pattern:     model.PatternOpeningDive,
				Condition:   openingDive(5, 3),
			},
			{
				Name:        "开盘10分钟跳水",
				Description: "开盘10分钟内跌幅超过2%",
				Pattern:     model.PatternOpeningDive,
				Condition:   openingDive(10, 2),
			},
		},
		model.PatternBreakdown: {
			{
				Name:        "跌破5日均线",
				Description: "跌破5日均线且放量",
				Pattern:     model.PatternBreakdown,
				Condition:   maBreakdown(5),
			},
			{
				Name:        "跌破20日均线",
				Description: "跌破20日均线且放量",
				Pattern:     model.PatternBreakdown,
				Condition:   maBreakdown(20),
			},
			{
				Name:        "跌破平台支撑位",
				Description: "跌破前期平台支撑位且3分钟未回弹",
				Pattern:     model.PatternBreakdown,
				Condition:   supportBreakdown,
			},
		},
		model.PatternSurgeRetrace: {
			{
				Name:        "冲板回落超5%",
				Description: "冲至涨停板后回落超过5%",
				Pattern:     model.PatternSurgeRetrace,
				Condition:   surgeRetrace(9.9, 5),
			},
			{
				Name:        "冲高回落超3%",
				Description: "冲高超8%后回落超过3%",
				Pattern:     model.PatternSurgeRetrace,
				Condition:   surgeRetrace(8, 3),
			},
		},
	}
}

// openingDive 开盘 minutes 分钟内较开盘价下跌 dropPercent 以上
func openingDive(minutes int, dropPercent float64) func(*model.MonitorData) bool {
	return func(d *model.MonitorData) bool {
		if d.Open == 0 || d.Current == 0 {
			return false
		}
		drop := roundPct((d.Open - d.Current) / d.Open * 100)
		return d.MinutesSinceOpen <= minutes && drop >= dropPercent
	}
}

// maBreakdown 跌破 maType 日均线且成交额放大超过 20%
func maBreakdown(maType int) func(*model.MonitorData) bool {
	return func(d *model.MonitorData) bool {
		ma := d.MA5
		if maType == 20 {
			ma = d.MA20
		}
		return d.Current < ma && d.VolumeAmplification > 20
	}
}

// supportBreakdown 跌破平台支撑位，3分钟未回弹且成交额放大超过 15%
func supportBreakdown(d *model.MonitorData) bool {
	return d.Current < d.SupportPrice &&
		d.MinutesWithoutRebound >= 3 &&
		d.VolumeAmplification > 15
}

// surgeRetrace 较开盘冲高 surgePercent 以上且自高点回落 retracePercent 以上
func surgeRetrace(surgePercent, retracePercent float64) func(*model.MonitorData) bool {
	return func(d *model.MonitorData) bool {
		if d.Open == 0 || d.High == 0 {
			return false
		}
		surge := roundPct((d.High - d.Open) / d.Open * 100)
		retrace := roundPct((d.High - d.Current) / d.High * 100)
		return surge >= surgePercent && retrace >= retracePercent
	}
}

// roundPct 百分比保留两位小数后再与阈值比较
func roundPct(v float64) float64 {
	return math.Round(v*100) / 100
}
