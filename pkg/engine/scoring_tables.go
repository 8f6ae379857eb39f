package engine

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Band 单个阈值档位
// Op 取 ">=", ">", "<=", "<", "between"（闭区间 [Value, Upper]）
type Band struct {
	Op      string  `yaml:"op"`
	Value   float64 `yaml:"value"`
	Upper   float64 `yaml:"upper,omitempty"`
	Weight  int     `yaml:"weight"`
	Label   string  `yaml:"label"`
	Warning bool    `yaml:"warning,omitempty"`
}

// Match 数值是否落在档位内
func (b Band) Match(v float64) bool {
	switch b.Op {
	case ">=":
		return v >= b.Value
	case ">":
		return v > b.Value
	case "<=":
		return v <= b.Value
	case "<":
		return v < b.Value
	case "between":
		return v >= b.Value && v <= b.Upper
	}
	return false
}

// Ladder 有序档位，取第一个命中的
type Ladder []Band

// First 返回第一个命中的档位
func (l Ladder) First(v float64) (Band, bool) {
	for _, b := range l {
		if b.Match(v) {
			return b, true
		}
	}
	return Band{}, false
}

// CapTurnoverRule 市值与换手率组合条件
type CapTurnoverRule struct {
	Cap      Band   `yaml:"cap"`
	Turnover Band   `yaml:"turnover"`
	Weight   int    `yaml:"weight"`
	Label    string `yaml:"label"`
}

// FadeRule 高开低走
type FadeRule struct {
	OpenChangeMin float64 `yaml:"open_change_min"`
	PullbackMin   float64 `yaml:"pullback_min"`
	Weight        int     `yaml:"weight"`
	Label         string  `yaml:"label"`
}

// ThreeInOneRule 高换手 + 大振幅 + 中小市值同时成立时直接判定为游资股
type ThreeInOneRule struct {
	TurnoverMin  float64 `yaml:"turnover_min"`
	AmplitudeMin float64 `yaml:"amplitude_min"`
	CapMax       float64 `yaml:"cap_max"`
	Label        string  `yaml:"label"`
}

// HotMoneyTable 游资股评分表，市值单位为亿元
type HotMoneyTable struct {
	Turnover       Ladder            `yaml:"turnover"`
	Amplitude      Ladder            `yaml:"amplitude"`
	Change         Ladder            `yaml:"change"`
	CapTurnover    []CapTurnoverRule `yaml:"cap_turnover"`
	Pullback       Band              `yaml:"pullback"`
	Fade           FadeRule          `yaml:"fade"`
	AmountRatio    Band              `yaml:"amount_ratio"`
	ThreeInOne     ThreeInOneRule    `yaml:"three_in_one"`
	ScoreThreshold int               `yaml:"score_threshold"`
	WarningCount   int               `yaml:"warning_count"`
}

// KeywordGroup 概念题材关键词，每命中一个关键词累加一次
type KeywordGroup struct {
	Category string   `yaml:"category"`
	Weight   int      `yaml:"weight"`
	Words    []string `yaml:"words"`
}

// ComboRule 换手率与振幅同时达标
type ComboRule struct {
	TurnoverMin  float64 `yaml:"turnover_min"`
	AmplitudeMin float64 `yaml:"amplitude_min"`
	Weight       int     `yaml:"weight"`
	Label        string  `yaml:"label"`
}

// LimitMoveRule 涨跌停与大涨大跌，依次判断，只取第一个
type LimitMoveRule struct {
	Tolerance       float64 `yaml:"tolerance"`
	LimitUpWeight   int     `yaml:"limit_up_weight"`
	LimitUpLabel    string  `yaml:"limit_up_label"`
	LimitDownWeight int     `yaml:"limit_down_weight"`
	LimitDownLabel  string  `yaml:"limit_down_label"`
	BigGain         Band    `yaml:"big_gain"`
	BigLoss         Band    `yaml:"big_loss"`
}

// CheapSmallRule 低价 + 小市值 + 活跃
type CheapSmallRule struct {
	PriceMax    float64 `yaml:"price_max"`
	CapMax      float64 `yaml:"cap_max"`
	TurnoverMin float64 `yaml:"turnover_min"`
	Weight      int     `yaml:"weight"`
	Label       string  `yaml:"label"`
}

// RetailTable 散户股评分表，市值单位为亿元
type RetailTable struct {
	Price          Ladder         `yaml:"price"`
	Cap            Ladder         `yaml:"cap"`
	STWords        []string       `yaml:"st_words"`
	STWeight       int            `yaml:"st_weight"`
	STLabel        string         `yaml:"st_label"`
	Keywords       []KeywordGroup `yaml:"keywords"`
	Amplitude      Band           `yaml:"amplitude"`
	ActiveCombo    ComboRule      `yaml:"active_combo"`
	LimitMove      LimitMoveRule  `yaml:"limit_move"`
	Turnover       Ladder         `yaml:"turnover"`
	Pullback       Band           `yaml:"pullback"`
	CheapSmall     CheapSmallRule `yaml:"cheap_small"`
	ScoreThreshold int            `yaml:"score_threshold"`
}

// ScoringTables 带版本号的评分配置
type ScoringTables struct {
	Version  string        `yaml:"version"`
	HotMoney HotMoneyTable `yaml:"hot_money"`
	Retail   RetailTable   `yaml:"retail"`
}

// DefaultScoringTables 内置评分表
func DefaultScoringTables() ScoringTables {
	return ScoringTables{
		Version: "v1",
		HotMoney: HotMoneyTable{
			Turnover: Ladder{
				{Op: ">=", Value: 20, Weight: 40, Label: "换手率%.2f%%，超高换手", Warning: true},
				{Op: ">=", Value: 15, Weight: 30, Label: "换手率%.2f%%，高换手"},
				{Op: ">=", Value: 10, Weight: 15, Label: "换手率%.2f%%，交投活跃"},
				{Op: "<=", Value: 5, Weight: -20, Label: "换手率%.2f%%，交投清淡"},
			},
			Amplitude: Ladder{
				{Op: ">=", Value: 12, Weight: 30, Label: "振幅%.2f%%，剧烈波动", Warning: true},
				{Op: ">=", Value: 8, Weight: 20, Label: "振幅%.2f%%，波动较大"},
				{Op: "<=", Value: 5, Weight: -15, Label: "振幅%.2f%%，走势平稳"},
			},
			Change: Ladder{
				{Op: ">=", Value: 9.9, Weight: 25, Label: "涨幅%.2f%%，封板或接近涨停", Warning: true},
				{Op: ">=", Value: 7, Weight: 15, Label: "涨幅%.2f%%，大幅上涨"},
				{Op: "between", Value: 0, Upper: 3, Weight: -10, Label: "涨幅%.2f%%，表现平淡"},
			},
			CapTurnover: []CapTurnoverRule{
				{Cap: Band{Op: "between", Value: 40, Upper: 200}, Turnover: Band{Op: ">=", Value: 15}, Weight: 15, Label: "中盘股(%.0f亿)高换手"},
				{Cap: Band{Op: "between", Value: 40, Upper: 200}, Turnover: Band{Op: ">=", Value: 10}, Weight: 10, Label: "中盘股(%.0f亿)换手活跃"},
				{Cap: Band{Op: "<", Value: 40}, Turnover: Band{Op: ">=", Value: 15}, Weight: 20, Label: "小盘股(%.0f亿)高换手"},
				{Cap: Band{Op: "<", Value: 40}, Turnover: Band{Op: ">=", Value: 10}, Weight: 10, Label: "小盘股(%.0f亿)换手活跃"},
				{Cap: Band{Op: ">=", Value: 100}, Turnover: Band{Op: "<=", Value: 5}, Weight: -15, Label: "大盘股(%.0f亿)低换手"},
			},
			Pullback:    Band{Op: ">", Value: 5, Weight: 15, Label: "冲高回落%.2f%%", Warning: true},
			Fade:        FadeRule{OpenChangeMin: 3, PullbackMin: 3, Weight: 10, Label: "高开低走(开盘涨%.2f%%)"},
			AmountRatio: Band{Op: ">", Value: 40, Weight: 10, Label: "成交额占市值%.2f%%，资金博弈激烈", Warning: true},
			ThreeInOne: ThreeInOneRule{
				TurnoverMin:  15,
				AmplitudeMin: 8,
				CapMax:       200,
				Label:        "三位一体：高换手+大振幅+中小市值",
			},
			ScoreThreshold: 50,
			WarningCount:   2,
		},
		Retail: RetailTable{
			Price: Ladder{
				{Op: "<", Value: 5, Weight: 30, Label: "低价股(%.2f元)"},
				{Op: "<", Value: 10, Weight: 20, Label: "低价股(%.2f元)"},
				{Op: "<", Value: 20, Weight: 10, Label: "中低价股(%.2f元)"},
				{Op: ">=", Value: 50, Weight: -15, Label: "高价股(%.2f元)"},
			},
			Cap: Ladder{
				{Op: "<", Value: 30, Weight: 25, Label: "微盘股(%.0f亿)"},
				{Op: "<", Value: 50, Weight: 15, Label: "小盘股(%.0f亿)"},
				{Op: "<", Value: 100, Weight: 5, Label: "中小盘股(%.0f亿)"},
				{Op: ">=", Value: 200, Weight: -10, Label: "大盘股(%.0f亿)"},
			},
			STWords:  []string{"*ST", "ST", "退"},
			STWeight: 40,
			STLabel:  "ST/退市风险股",
			Keywords: []KeywordGroup{
				{Category: "科技/AI", Weight: 15, Words: []string{"科技", "智能", "AI", "人工智能", "数据", "信息", "网络", "云"}},
				{Category: "生物医药", Weight: 12, Words: []string{"生物", "医药", "药业", "医疗", "健康"}},
				{Category: "新能源", Weight: 12, Words: []string{"新能源", "锂", "光伏", "储能", "电池", "氢"}},
				{Category: "半导体", Weight: 12, Words: []string{"芯", "半导体", "微电"}},
				{Category: "软件", Weight: 10, Words: []string{"软件"}},
				{Category: "新材料", Weight: 8, Words: []string{"材料"}},
				{Category: "文化传媒", Weight: 8, Words: []string{"文化", "传媒", "影视", "游戏"}},
			},
			Amplitude:   Band{Op: ">=", Value: 15, Weight: 15, Label: "振幅%.2f%%，波动剧烈"},
			ActiveCombo: ComboRule{TurnoverMin: 10, AmplitudeMin: 10, Weight: 20, Label: "高换手+大振幅"},
			LimitMove: LimitMoveRule{
				Tolerance:       0.005,
				LimitUpWeight:   25,
				LimitUpLabel:    "涨停",
				LimitDownWeight: 20,
				LimitDownLabel:  "跌停",
				BigGain:         Band{Op: ">=", Value: 7, Weight: 15, Label: "大涨%.2f%%"},
				BigLoss:         Band{Op: "<=", Value: -7, Weight: 15, Label: "大跌%.2f%%"},
			},
			Turnover: Ladder{
				{Op: ">=", Value: 20, Weight: 20, Label: "换手率%.2f%%，散户高度参与"},
				{Op: ">=", Value: 15, Weight: 15, Label: "换手率%.2f%%，交投火热"},
			},
			Pullback:       Band{Op: ">", Value: 5, Weight: 10, Label: "冲高回落%.2f%%"},
			CheapSmall:     CheapSmallRule{PriceMax: 10, CapMax: 50, TurnoverMin: 10, Weight: 15, Label: "低价小盘高换手"},
			ScoreThreshold: 40,
		},
	}
}

// ParseScoringTables 解析 YAML 评分表，未出现的字段沿用内置默认值
func ParseScoringTables(data []byte) (ScoringTables, error) {
	tables := DefaultScoringTables()
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return ScoringTables{}, fmt.Errorf("解析评分表失败: %w", err)
	}
	if tables.Version == "" {
		return ScoringTables{}, fmt.Errorf("评分表缺少版本号")
	}
	return tables, nil
}
