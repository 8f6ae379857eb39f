package model

import "errors"

// ErrUnsupportedPattern 不支持的图形类型
var ErrUnsupportedPattern = errors.New("不支持的图形类型")

// PatternType 图形类型
type PatternType string

const (
	PatternStrongRally    PatternType = "强势上涨"
	PatternConsolidation  PatternType = "震荡整理"
	PatternSurgeRetrace   PatternType = "冲板回落"
	PatternOpeningDive    PatternType = "开盘跳水"
	PatternBreakdown      PatternType = "破位下跌"
	PatternOther          PatternType = "其他"
	PatternUnclassifiable PatternType = "无法判断"
)

// ActionablePatterns 可进入 AI 分析与操作建议的图形
var ActionablePatterns = []PatternType{PatternOpeningDive, PatternBreakdown, PatternSurgeRetrace}

// IsActionable 是否为可分析图形
func (p PatternType) IsActionable() bool {
	switch p {
	case PatternOpeningDive, PatternBreakdown, PatternSurgeRetrace:
		return true
	}
	return false
}

// ParsePatternType 解析图形类型，接受中文名或英文别名
func ParsePatternType(s string) (PatternType, error) {
	switch s {
	case string(PatternOpeningDive), "opening_dive":
		return PatternOpeningDive, nil
	case string(PatternBreakdown), "breakdown":
		return PatternBreakdown, nil
	case string(PatternSurgeRetrace), "surge_retrace":
		return PatternSurgeRetrace, nil
	case string(PatternStrongRally), "strong_rally":
		return PatternStrongRally, nil
	case string(PatternConsolidation), "consolidation":
		return PatternConsolidation, nil
	case string(PatternOther), "other":
		return PatternOther, nil
	}
	return "", ErrUnsupportedPattern
}

// Classification 图形分类结果
type Classification struct {
	Pattern    PatternType `json:"pattern"`
	Confidence int         `json:"confidence"`
	Reason     string      `json:"reason"`
}

// Classifiable 基准价为 0 时无法分类，调用方需先检查
func (c Classification) Classifiable() bool {
	return c.Pattern != PatternUnclassifiable
}

// LegacyLabel 兼容旧接口：无法判断时返回开盘跳水
func (c Classification) LegacyLabel() PatternType {
	if c.Pattern == PatternUnclassifiable {
		return PatternOpeningDive
	}
	return c.Pattern
}
