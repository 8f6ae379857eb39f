package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"PatternRadar/pkg/model"
)

// Suggest 根据图形和行情生成操作建议
// analysis 为 AI 分析原文，仅供调用方展示，不参与规则计算；价位全部由行情推导
func Suggest(p model.PatternType, d model.MonitorData, analysis string) model.OperationSuggestion {
	switch p {
	case model.PatternOpeningDive:
		return suggestOpeningDive(d)
	case model.PatternSurgeRetrace:
		return suggestSurgeRetrace(d)
	case model.PatternBreakdown:
		return suggestBreakdown(d)
	}
	return model.OperationSuggestion{
		Action:      "观望",
		Confidence:  model.ConfidenceLow,
		Reasoning:   fmt.Sprintf("当前市场状态为'%s'，建议保持观望，等待明确信号", p),
		PriceLevels: []model.PriceLevel{},
		RiskWarning: "市场状态不明确，建议谨慎操作",
	}
}

func suggestOpeningDive(d model.MonitorData) model.OperationSuggestion {
	cur, open := d.Current, d.Open
	drop := 0.0
	if open > 0 {
		drop = (open - cur) / open * 100
	}
	support5 := cur * 0.98
	support20 := cur * 0.96
	resistance := open

	switch {
	case drop >= 5:
		return model.OperationSuggestion{
			Action:     "观望",
			Confidence: model.ConfidenceHigh,
			Reasoning: fmt.Sprintf("%s开盘重跳水%.2f%%，资金主动出逃迹象明显。"+
				"建议等待企稳信号，可在反弹至%.2f元附近轻仓试探，"+
				"或等待跌破%.2f元后确认再考虑。", d.Name, drop, resistance, support5),
			PriceLevels: []model.PriceLevel{
				lv("支撑位1", support5),
				lv("支撑位2", support20),
				lv("压力位", resistance),
				lv("当前价", cur),
			},
			RiskWarning: fmt.Sprintf("重跳水风险极高，严禁抄底。如必须操作，仓位控制在10%%以内，止损设在%.2f元", support20),
		}
	case drop >= 3:
		return model.OperationSuggestion{
			Action:     "观望或轻仓试探",
			Confidence: model.ConfidenceMedium,
			Reasoning: fmt.Sprintf("%s开盘跳水%.2f%%，需要观察是否有资金承接。"+
				"如果出现快速反弹并站稳%.2f元上方，可考虑轻仓跟进。"+
				"若继续下探，建议等待企稳。", d.Name, drop, open),
			PriceLevels: []model.PriceLevel{
				lv("观察位", open),
				lv("支撑位", support5),
				lv("止损位", cur*0.97),
			},
			RiskWarning: fmt.Sprintf("中等风险，建议分批操作。首次试探仓位不超过20%%，严格止损%.2f元", support5),
		}
	default:
		return model.OperationSuggestion{
			Action:     "谨慎观望",
			Confidence: model.ConfidenceLow,
			Reasoning: fmt.Sprintf("%s小幅跳水%.2f%%，可能是正常波动。"+
				"建议观察成交量和MACD等指标，若出现明显背离且放量反弹，可考虑轻仓参与。", d.Name, drop),
			PriceLevels: []model.PriceLevel{
				lv("支撑位", support5),
				lv("观察位", open),
			},
			RiskWarning: "跳水幅度较小，可能只是洗盘，不建议追涨杀跌",
		}
	}
}

func suggestSurgeRetrace(d model.MonitorData) model.OperationSuggestion {
	cur, open, high := d.Current, d.Open, d.High
	surge, retrace := 0.0, 0.0
	if open > 0 {
		surge = (high - open) / open * 100
	}
	if high > 0 {
		retrace = (high - cur) / high * 100
	}
	supportOpen := open * 1.01
	support5 := cur * 0.99

	switch {
	case surge >= 9 && retrace <= 3:
		return model.OperationSuggestion{
			Action:     "回调买入或持有",
			Confidence: model.ConfidenceMediumHigh,
			Reasoning: fmt.Sprintf("%s冲高%.2f%%后仅回落%.2f%%，显示多头力量较强。"+
				"若回落至%.2f元（开盘价附近）并企稳，是较好买点。"+
				"已持有的建议继续持有，目标前高%.2f元。", d.Name, surge, retrace, supportOpen, high),
			PriceLevels: []model.PriceLevel{
				lv("买点", supportOpen),
				lv("目标价", high),
				lv("止损位", support5),
			},
			RiskWarning: fmt.Sprintf("注意观察是否二次上攻。回调买入仓位控制在30%%以内，止损%.2f元", support5),
		}
	case surge >= 9:
		return model.OperationSuggestion{
			Action:     "观望或等待企稳",
			Confidence: model.ConfidenceMedium,
			Reasoning: fmt.Sprintf("%s冲高%.2f%%后回落%.2f%%，抛压较大。"+
				"建议等待股价企稳并出现反弹信号再考虑介入。"+
				"支撑位在%.2f元，跌破则观望。", d.Name, surge, retrace, supportOpen),
			PriceLevels: []model.PriceLevel{
				lv("支撑位", supportOpen),
				lv("观察位", cur*0.98),
			},
			RiskWarning: "冲板回落风险较大，不确定性强。建议观望或等待二次上攻确认",
		}
	default:
		return model.OperationSuggestion{
			Action:     "谨慎参与",
			Confidence: model.ConfidenceLow,
			Reasoning: fmt.Sprintf("%s冲高%.2f%%后回落%.2f%%，上方压力明显。"+
				"建议等待放量突破%.2f元后再考虑追涨。", d.Name, surge, retrace, high),
			PriceLevels: []model.PriceLevel{
				lv("突破位", high*1.01),
				lv("支撑位", support5),
			},
			RiskWarning: "冲高力度不足，回落风险存在，不建议追高",
		}
	}
}

func suggestBreakdown(d model.MonitorData) model.OperationSuggestion {
	cur := d.Current
	support := d.SupportPrice
	if support <= 0 {
		support = cur * 0.97
	}
	nextSupport := support * 0.97
	decline := 0.0
	if support > 0 {
		decline = (support - cur) / support * 100
	}

	if decline >= 3 {
		return model.OperationSuggestion{
			Action:     "观望",
			Confidence: model.ConfidenceHigh,
			Reasoning: fmt.Sprintf("%s跌破支撑位%.2f元后已下跌%.2f%%，"+
				"说明抛压沉重，未见企稳迹象。建议等待股价在%.2f元附近企稳，"+
				"或出现明显反弹信号后再考虑介入。", d.Name, support, decline, nextSupport),
			PriceLevels: []model.PriceLevel{
				lv("观察位", nextSupport),
				lv("止损位", cur*1.03),
				lv("支撑位", nextSupport),
			},
			RiskWarning: fmt.Sprintf("破位下跌趋势中，风险极高。严禁抄底，等待右侧信号。股价需站稳%.2f元以上", nextSupport),
		}
	}
	return model.OperationSuggestion{
		Action:     "谨慎观望",
		Confidence: model.ConfidenceMedium,
		Reasoning: fmt.Sprintf("%s跌破支撑位%.2f元，需要观察是否有回抽确认。"+
			"若回抽至%.2f元附近受阻回落，确认破位有效，建议继续观望。"+
			"若放量收回支撑位上方，可能是假破。", d.Name, support, support),
		PriceLevels: []model.PriceLevel{
			lv("确认位", support*1.02),
			lv("止损位", support*0.98),
			lv("观察位", cur),
		},
		RiskWarning: "破位后走势不确定，建议等待确认。不排除假破可能，但安全第一",
	}
}

// lv 构造价位，价格保留两位小数
func lv(name string, price float64) model.PriceLevel {
	return model.PriceLevel{Name: name, Price: roundPrice(price)}
}

// roundPrice 价格四舍五入到分
func roundPrice(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// FormatSuggestion 操作建议的文本展示
func FormatSuggestion(s model.OperationSuggestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 操作建议: %s (置信度: %s)\n\n", s.Action, s.Confidence)
	b.WriteString("💡 建议理由:\n")
	fmt.Fprintf(&b, "   %s\n\n", s.Reasoning)
	b.WriteString("📍 关键价位:\n")
	for _, l := range s.PriceLevels {
		fmt.Fprintf(&b, "   • %s: %.2f 元\n", l.Name, l.Price)
	}
	b.WriteString("\n⚠️  风险提示:\n")
	fmt.Fprintf(&b, "   %s", s.RiskWarning)
	return b.String()
}
