package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"PatternRadar/pkg/collector"
	"PatternRadar/pkg/llm"
	"PatternRadar/pkg/model"
	"PatternRadar/pkg/prompt"
)

// ErrNotTriggered 未命中任何触发规则
var ErrNotTriggered = errors.New("未触发监控规则")

// EventSink 触发事件的下游（如消息队列）
type EventSink interface {
	PublishTrigger(ctx context.Context, event *model.TriggerEvent) error
}

// MonitorOptions 监控流程依赖
type MonitorOptions struct {
	Rules       *RuleEngine
	Index       collector.IndexProvider
	IndexSymbol string
	LLM         llm.Provider
	Sink        EventSink
	Defaults    model.MonitorDefaults
	Prompt      prompt.Options
	Now         func() time.Time
}

// Monitor 盘中监控：触发规则判定后生成提示词并交给大模型研判
type Monitor struct {
	quotes      collector.QuoteProvider
	rules       *RuleEngine
	index       collector.IndexProvider
	indexSymbol string
	provider    llm.Provider
	sink        EventSink
	defaults    model.MonitorDefaults
	promptOpts  prompt.Options
	now         func() time.Time
}

// NewMonitor 创建监控引擎
func NewMonitor(quotes collector.QuoteProvider, opts MonitorOptions) *Monitor {
	m := &Monitor{
		quotes:      quotes,
		rules:       opts.Rules,
		index:       opts.Index,
		indexSymbol: opts.IndexSymbol,
		provider:    opts.LLM,
		sink:        opts.Sink,
		defaults:    opts.Defaults,
		promptOpts:  opts.Prompt,
		now:         opts.Now,
	}
	if m.rules == nil {
		m.rules = NewRuleEngine()
	}
	if m.defaults == (model.MonitorDefaults{}) {
		m.defaults = model.DefaultMonitorDefaults()
	}
	if m.promptOpts.Template == "" {
		m.promptOpts.Template = prompt.TemplateFull
	}
	if m.indexSymbol == "" {
		m.indexSymbol = "sh000001"
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Rules 规则引擎
func (m *Monitor) Rules() *RuleEngine { return m.rules }

// DetectPattern 获取行情并判断是否触发图形规则，未触发时 rule 为 nil
func (m *Monitor) DetectPattern(ctx context.Context, code string, p model.PatternType, o model.MonitorOverrides) (*model.MonitorData, *model.TriggerRule, error) {
	if !m.rules.Supports(p) {
		return nil, nil, fmt.Errorf("%w: %s", model.ErrUnsupportedPattern, p)
	}
	q, err := m.quotes.FetchQuote(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("无法获取股票 %s 的数据: %w", displayCode(code), err)
	}
	d := m.collect(ctx, *q, o)
	rule, _ := m.rules.Match(p, d)
	return d, rule, nil
}

// AnalyzePattern 触发后生成提示词、调用大模型并给出操作建议
func (m *Monitor) AnalyzePattern(ctx context.Context, code string, p model.PatternType, o model.MonitorOverrides) (*model.TriggerEvent, error) {
	d, rule, err := m.DetectPattern(ctx, code, p, o)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, fmt.Errorf("%s %s: %w", code, p, ErrNotTriggered)
	}
	return m.handleTrigger(ctx, p, rule, d)
}

// Handle 对已命中的检测结果执行触发流程，不再重复获取行情
func (m *Monitor) Handle(ctx context.Context, d model.Detection) (*model.TriggerEvent, error) {
	if d.Data == nil {
		return nil, fmt.Errorf("%s: %w", d.Code, model.ErrNoData)
	}
	return m.handleTrigger(ctx, d.Pattern, &model.TriggerRule{Name: d.Rule}, d.Data)
}

// BatchDetect 检测多只股票的多种图形，每只股票只取一次行情
// overrides 对所有股票生效，通常用于单只自选股的关键价位
func (m *Monitor) BatchDetect(ctx context.Context, codes []string, patterns []model.PatternType, o model.MonitorOverrides) []model.Detection {
	var hits []model.Detection
	for _, code := range codes {
		if ctx.Err() != nil {
			break
		}
		q, err := m.quotes.FetchQuote(ctx, code)
		if err != nil {
			log.Warn().Str("code", code).Err(err).Msg("获取行情失败，跳过")
			continue
		}
		d := m.collect(ctx, *q, o)
		for _, p := range patterns {
			if rule, ok := m.rules.Match(p, d); ok {
				hits = append(hits, model.Detection{Code: code, Pattern: p, Rule: rule.Name, Data: d})
			}
		}
	}
	return hits
}

func (m *Monitor) collect(ctx context.Context, q model.QuoteSnapshot, o model.MonitorOverrides) *model.MonitorData {
	now := m.now()
	defaults := m.defaults
	if o.MinutesSinceOpen == nil && InTradingSession(now) {
		defaults.MinutesSinceOpen = TradingMinutes(now)
	}
	d := Enrich(q, o, defaults, now)
	if m.index != nil {
		if idx, err := m.index.FetchIndex(ctx, m.indexSymbol); err == nil {
			d.IndexName = idx.Name
			d.IndexChange = idx.ChangePercent
		}
	}
	return &d
}

func (m *Monitor) handleTrigger(ctx context.Context, p model.PatternType, rule *model.TriggerRule, d *model.MonitorData) (*model.TriggerEvent, error) {
	text, err := prompt.Generate(PromptFieldsFor(p, *d), m.promptOpts)
	if err != nil {
		return nil, fmt.Errorf("生成提示词失败: %w", err)
	}

	event := &model.TriggerEvent{
		ID:          uuid.NewString(),
		Code:        d.Code,
		Name:        d.Name,
		Pattern:     p,
		Rule:        rule.Name,
		TriggeredAt: m.now(),
		Data:        *d,
		Prompt:      text,
	}

	log.Info().Str("code", d.Code).Str("pattern", string(p)).Str("rule", rule.Name).Msg("图形规则触发")

	var analysis string
	switch {
	case m.provider == nil:
		event.Message = "未配置AI密钥，无法进行AI分析"
	default:
		analysis, err = chat(ctx, m.provider, text)
		if err != nil {
			log.Warn().Str("code", d.Code).Err(err).Msg("AI分析失败")
			event.Message = fmt.Sprintf("AI分析失败，已跳过: %v", err)
		} else {
			event.AIAnalysis = analysis
			event.Processed = true
		}
	}

	suggestion := Suggest(p, *d, analysis)
	event.Suggestion = &suggestion

	if m.sink != nil {
		if err := m.sink.PublishTrigger(ctx, event); err != nil {
			log.Error().Str("id", event.ID).Err(err).Msg("发布触发事件失败")
		}
	}
	return event, nil
}
