// pkg/engine/classifier.go
package engine

import (
	"fmt"
	"math"

	"PatternRadar/pkg/model"
)

// 图形分类阈值
const (
	nearLimitUpRatio     = 0.995
	strongRallyChange    = 5.0
	surgeRetraceSurge    = 8.0
	surgeRetraceRetrace  = 3.0
	openingDiveChange    = -2.0
	consolidationCeiling = 2.0
)

// Classify 根据单个行情快照判断当前图形，规则按顺序匹配，先命中者生效
// asserted 为用户指定的图形，只影响说明文字，不改变分类结果
func Classify(q model.QuoteSnapshot, asserted string) model.Classification {
	baseline := q.Baseline()
	if baseline <= 0 {
		return model.Classification{
			Pattern:    model.PatternUnclassifiable,
			Confidence: 0,
			Reason:     "无法判断",
		}
	}

	changePercent := settle((q.Current - baseline) / baseline * 100)
	surgeFromOpen := 0.0
	if q.Open > 0 {
		surgeFromOpen = settle((q.High - q.Open) / q.Open * 100)
	}
	retraceFromHigh := 0.0
	if q.High > 0 {
		retraceFromHigh = settle((q.High - q.Current) / q.High * 100)
	}

	// 涨停价缺失时按基准价 +10% 估算
	limitUp := q.LimitUp
	if limitUp <= 0 {
		limitUp = math.Round(baseline*110) / 100
	}

	var c model.Classification
	switch {
	case q.Current >= limitUp*nearLimitUpRatio:
		c = model.Classification{
			Pattern:    model.PatternStrongRally,
			Confidence: 100,
			Reason:     fmt.Sprintf("股价接近涨停(%+.2f%%)，属于强势上涨", changePercent),
		}
	case changePercent >= strongRallyChange:
		c = model.Classification{
			Pattern:    model.PatternStrongRally,
			Confidence: 90,
			Reason:     fmt.Sprintf("股价大幅上涨(%+.2f%%)，不属于任何下跌图形", changePercent),
		}
	case surgeFromOpen >= surgeRetraceSurge && retraceFromHigh >= surgeRetraceRetrace:
		c = model.Classification{
			Pattern:    model.PatternSurgeRetrace,
			Confidence: 95,
			Reason:     fmt.Sprintf("冲高%.2f%%后回落%.2f%%", surgeFromOpen, retraceFromHigh),
		}
	case changePercent <= openingDiveChange:
		c = model.Classification{
			Pattern:    model.PatternOpeningDive,
			Confidence: 90,
			Reason:     fmt.Sprintf("开盘后下跌%.2f%%", math.Abs(changePercent)),
		}
	case changePercent > openingDiveChange && changePercent < consolidationCeiling:
		c = model.Classification{
			Pattern:    model.PatternConsolidation,
			Confidence: 80,
			Reason:     fmt.Sprintf("股价窄幅震荡(%+.2f%%)", changePercent),
		}
	default:
		c = model.Classification{
			Pattern:    model.PatternOther,
			Confidence: 50,
			Reason:     fmt.Sprintf("常规波动(%+.2f%%)", changePercent),
		}
	}

	if asserted != "" && !sameLabel(asserted, c.Pattern) {
		c.Reason = fmt.Sprintf("%s（与用户指定的'%s'不符）", c.Reason, asserted)
	}
	return c
}

// sameLabel 英文别名与中文名视为同一图形
func sameLabel(asserted string, p model.PatternType) bool {
	if parsed, err := model.ParsePatternType(asserted); err == nil {
		return parsed == p
	}
	return asserted == string(p)
}

// settle 去掉浮点误差，保证 -2.00 这类边界值落在阈值上
func settle(pct float64) float64 {
	return math.Round(pct*1e6) / 1e6
}
