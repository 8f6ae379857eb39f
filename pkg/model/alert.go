// pkg/model/alert.go
package model

import "time"

// SuggestionConfidence 操作建议置信度
type SuggestionConfidence string

const (
	ConfidenceLow        SuggestionConfidence = "低"
	ConfidenceMedium     SuggestionConfidence = "中"
	ConfidenceMediumHigh SuggestionConfidence = "中高"
	ConfidenceHigh       SuggestionConfidence = "高"
)

// PriceLevel 命名价位，保持生成顺序
type PriceLevel struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// OperationSuggestion 规则生成的操作建议
type OperationSuggestion struct {
	Action      string               `json:"action"`
	Confidence  SuggestionConfidence `json:"confidence"`
	Reasoning   string               `json:"reasoning"`
	PriceLevels []PriceLevel         `json:"price_levels"`
	RiskWarning string               `json:"risk_warning"`
}

// Level 按名称查找价位
func (s OperationSuggestion) Level(name string) (float64, bool) {
	for _, l := range s.PriceLevels {
		if l.Name == name {
			return l.Price, true
		}
	}
	return 0, false
}

// ArchetypeScore 游资股/散户股评分
type ArchetypeScore struct {
	Evaluable bool     `json:"evaluable"`
	Flagged   bool     `json:"flagged"`
	Score     int      `json:"score"`
	Factors   []string `json:"factors"`
	Version   string   `json:"version"`
}

// TriggerEvent 监控触发事件，只存在于一次分析调用内
type TriggerEvent struct {
	ID          string               `json:"id"`
	Code        string               `json:"code"`
	Name        string               `json:"name"`
	Pattern     PatternType          `json:"pattern"`
	Rule        string               `json:"rule"`
	TriggeredAt time.Time            `json:"triggered_at"`
	Data        MonitorData          `json:"data"`
	Prompt      string               `json:"prompt,omitempty"`
	Processed   bool                 `json:"processed"`
	AIAnalysis  string               `json:"ai_analysis,omitempty"`
	Suggestion  *OperationSuggestion `json:"suggestion,omitempty"`
	Message     string               `json:"message,omitempty"`
}

// AnalysisResult 单只股票完整分析结果
type AnalysisResult struct {
	Snapshot       QuoteSnapshot        `json:"snapshot"`
	ChangePercent  float64              `json:"change_percent"`
	Classification Classification       `json:"classification"`
	KeyLevels      []PriceLevel         `json:"key_price_levels"`
	HotMoney       ArchetypeScore       `json:"hot_money"`
	Retail         ArchetypeScore       `json:"retail"`
	Prompt         string               `json:"prompt,omitempty"`
	AIAnalysis     string               `json:"ai_analysis,omitempty"`
	Suggestion     *OperationSuggestion `json:"suggestion,omitempty"`
	Tips           []string             `json:"tips,omitempty"`
	Message        string               `json:"message,omitempty"`
	AnalyzedAt     time.Time            `json:"analyzed_at"`
}
