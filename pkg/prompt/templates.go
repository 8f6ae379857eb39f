// Package prompt 把已分类的图形和监控字段格式化为大模型提示词
package prompt

import (
	"fmt"
	"strings"

	"PatternRadar/pkg/model"
)

// TemplateType 模板类型
type TemplateType string

const (
	TemplateFull       TemplateType = "完整版"
	TemplateSimplified TemplateType = "简化版"
)

// ParseTemplateType 解析模板类型，接受 full/simplified 别名
func ParseTemplateType(s string) (TemplateType, error) {
	switch s {
	case "", string(TemplateFull), "full":
		return TemplateFull, nil
	case string(TemplateSimplified), "simplified":
		return TemplateSimplified, nil
	}
	return "", fmt.Errorf("不支持的模板类型: %s", s)
}

// Options 生成参数
type Options struct {
	TradingStyle   string       // 短线/波段/长线
	PositionStatus string       // 已持仓/未持仓
	Template       TemplateType // 完整版/简化版
}

// DefaultOptions 默认短线、已持仓、完整版
func DefaultOptions() Options {
	return Options{TradingStyle: "短线", PositionStatus: "已持仓", Template: TemplateFull}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.TradingStyle == "" {
		o.TradingStyle = d.TradingStyle
	}
	if o.PositionStatus == "" {
		o.PositionStatus = d.PositionStatus
	}
	if o.Template == "" {
		o.Template = d.Template
	}
	return o
}

// SystemPrompt 系统提示
func SystemPrompt() string {
	return "你是一个专业的股票分析助手，擅长技术分析和风险识别。"
}

// Generate 生成图形对应的提示词，仅支持开盘跳水/破位下跌/冲板回落
func Generate(f model.PromptFields, opts Options) (string, error) {
	opts = opts.withDefaults()
	switch f.Pattern {
	case model.PatternOpeningDive:
		return openingDive(f, opts), nil
	case model.PatternBreakdown:
		return breakdown(f, opts), nil
	case model.PatternSurgeRetrace:
		return surgeRetrace(f, opts), nil
	}
	return "", fmt.Errorf("%w: %s，请使用：开盘跳水/破位下跌/冲板回落", model.ErrUnsupportedPattern, f.Pattern)
}

// supplementary 完整版模板共用的补充数据段
func supplementary(f model.PromptFields) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s，今日%s触发%s规则，补充数据如下：\n", f.Code, f.Name, f.TriggerTime, f.Pattern)
	fmt.Fprintf(&b, "1. 行情数据：开盘价%s、实时价%s、最高价%s、涨停价%s、5日均线%s、20日均线%s、前期平台支撑位%s；\n",
		num(f.Open), num(f.Current), num(f.High), num(f.LimitUp), num(f.MA5), num(f.MA20), num(f.PriorSupport))
	fmt.Fprintf(&b, "2. 成交量数据：较前5日均值放大%s%%；\n", num(f.VolumeAmplification))
	fmt.Fprintf(&b, "3. 市场环境：所属板块%s（今日板块涨跌幅%s%%）、大盘指数%s（今日涨跌幅%s%%）；\n",
		orDefault(f.SectorName, "未知"), num(f.SectorChange), orDefault(f.IndexName, "上证指数"), num(f.IndexChange))
	fmt.Fprintf(&b, "4. 消息面：%s；\n", orDefault(f.LatestNews, "无"))
	fmt.Fprintf(&b, "5. 额外特征：%s", orDefault(f.ExtraFeature, "无"))
	return b.String()
}

func openingDive(f model.PromptFields, o Options) string {
	if o.Template == TemplateSimplified {
		return fmt.Sprintf("股票%s %s，%s开盘%d分钟跌%s%%，跌破%d日均线%s，成交额放大%s%%，板块%s跌%s%%，大盘跌%s%%。"+
			"判断是真/假跳水？风险高/中/低？%s该规避/持有/止损？给出关键价位，50字内。",
			f.Code, f.Name, f.TriggerTime, f.MinutesSinceOpen, num(f.DropPercent), f.MAType, num(f.MAPrice),
			num(f.VolumeAmplification), orDefault(f.SectorName, "未知"), num(f.SectorChange), num(f.IndexChange),
			o.TradingStyle)
	}
	return supplementary(f) + "\n\n" +
		"请完成3件事：\n" +
		"1. 判断该标的是【真开盘跳水（资金主动出逃）】还是【假跳水（板块/大盘联动被动下跌）】，给出1条核心判断依据；\n" +
		"2. 基于技术面+市场环境，判定风险等级（高/中/低），说明理由；\n" +
		fmt.Sprintf("3. 针对%s交易者，给出明确操作建议（规避/持有/止盈/止损），标注关键参考价位（如支撑位/压力位）。\n\n", o.TradingStyle) +
		"输出格式要求：\n" +
		"判断结果：XXX\n" +
		"判断依据：XXX\n" +
		"风险等级：XXX（理由：XXX）\n" +
		"操作建议：XXX（参考价位：XXX）\n" +
		"总字数控制在150字内，语言简洁，无冗余表述。"
}

func breakdown(f model.PromptFields, o Options) string {
	if o.Template == TemplateSimplified {
		return fmt.Sprintf("股票%s %s，%s跌破支撑位%s，%d分钟未回弹，放量%s%%，板块%s跌%s%%，有%s。"+
			"是真/假破位？短期涨/跌？%s操作建议？50字内。",
			f.Code, f.Name, f.TriggerTime, num(f.SupportPrice), f.MinutesWithoutRebound, num(f.VolumeAmplification),
			orDefault(f.SectorName, "未知"), num(f.SectorChange), orDefault(f.LatestNews, "无"), o.TradingStyle)
	}
	return supplementary(f) + "\n\n" +
		"请完成3件事：\n" +
		"1. 判断该破位是【真破位（趋势走坏）】还是【假破位（洗盘/误杀）】，结合成交量和支撑位重要性说明依据；\n" +
		"2. 分析破位下跌的核心原因（资金面/板块/消息面/大盘，选1-2个核心因素）；\n" +
		fmt.Sprintf("3. 预判短期（1-2个交易日）技术面走势（反弹/继续下跌/横盘），给出%s对应的操作建议。\n\n", o.TradingStyle) +
		"输出格式要求：\n" +
		"破位判断：XXX（依据：XXX）\n" +
		"核心原因：XXX\n" +
		"短期预判：XXX\n" +
		"操作建议：XXX\n" +
		"总字数控制在150字内，结论明确，不模糊表述。"
}

func surgeRetrace(f model.PromptFields, o Options) string {
	if o.Template == TemplateSimplified {
		return fmt.Sprintf("股票%s %s，%s冲至%s%%未封板，回落%s%%，放量%s%%，封板挂单%d手。"+
			"抛压强/弱？%s该持有/清仓/观望？50字内。",
			f.Code, f.Name, f.TriggerTime, num(f.SurgePercent), num(f.RetracePercent),
			num(f.VolumeAmplification), f.LimitOrderVolume, o.TradingStyle)
	}
	return supplementary(f) + "\n\n" +
		"请完成3件事：\n" +
		"1. 分析冲板回落的核心原因（抛压过大/主力诱多/板块资金分流），判断抛压强度（强/中/弱）；\n" +
		"2. 判定该图形对短期（1-2个交易日）走势的影响（偏空/中性/偏多），说明理由；\n" +
		fmt.Sprintf("3. 针对%s的%s交易者，给出具体操作建议（加仓/减仓/清仓/观望）。\n\n", o.PositionStatus, o.TradingStyle) +
		"输出格式要求：\n" +
		"核心原因：XXX（抛压强度：XXX）\n" +
		"走势影响：XXX（理由：XXX）\n" +
		"操作建议：XXX\n" +
		"总字数控制在150字内，聚焦实际交易决策，避免理论化表述。"
}

// num 价格/百分比保留两位小数
func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
