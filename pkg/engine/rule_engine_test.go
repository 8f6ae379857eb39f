package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternRadar/pkg/model"
)

func monitorData(open, current, high float64) *model.MonitorData {
	return &model.MonitorData{
		QuoteSnapshot: model.QuoteSnapshot{Code: "600000", Name: "浦发银行", Open: open, Current: current, High: high},
	}
}

func TestRuleEngine_OpeningDiveScenario(t *testing.T) {
	e := NewRuleEngine()
	d := monitorData(10.50, 10.17, 10.50)
	d.MinutesSinceOpen = 5

	rule, ok := e.Match(model.PatternOpeningDive, d)
	require.True(t, ok)
	assert.Equal(t, "开盘5分钟跳水", rule.Name)
}

func TestRuleEngine_OpeningDiveAnyRuleTriggers(t *testing.T) {
	e := NewRuleEngine()
	d := monitorData(10, 9.75, 10)
	d.MinutesSinceOpen = 8

	assert.True(t, e.Triggered(model.PatternOpeningDive, d))
	rule, _ := e.Match(model.PatternOpeningDive, d)
	assert.Equal(t, "开盘10分钟跳水", rule.Name)

	d.MinutesSinceOpen = 12
	assert.False(t, e.Triggered(model.PatternOpeningDive, d))
}

func TestRuleEngine_OpeningDiveMissingPrices(t *testing.T) {
	e := NewRuleEngine()
	assert.False(t, e.Triggered(model.PatternOpeningDive, monitorData(0, 9, 10)))
	assert.False(t, e.Triggered(model.PatternOpeningDive, monitorData(10, 0, 10)))
	assert.False(t, e.Triggered(model.PatternOpeningDive, nil))
}

func TestRuleEngine_Breakdown(t *testing.T) {
	e := NewRuleEngine()

	ma5 := monitorData(10, 9.9, 10)
	ma5.MA5 = 10
	ma5.VolumeAmplification = 21
	rule, ok := e.Match(model.PatternBreakdown, ma5)
	require.True(t, ok)
	assert.Equal(t, "跌破5日均线", rule.Name)

	ma5.VolumeAmplification = 20
	assert.False(t, e.Triggered(model.PatternBreakdown, ma5))

	ma20 := monitorData(10, 9.9, 10)
	ma20.MA5 = 9.8
	ma20.MA20 = 10
	ma20.VolumeAmplification = 30
	rule, ok = e.Match(model.PatternBreakdown, ma20)
	require.True(t, ok)
	assert.Equal(t, "跌破20日均线", rule.Name)

	support := monitorData(10, 9.5, 10)
	support.SupportPrice = 9.8
	support.MinutesWithoutRebound = 3
	support.VolumeAmplification = 16
	rule, ok = e.Match(model.PatternBreakdown, support)
	require.True(t, ok)
	assert.Equal(t, "跌破平台支撑位", rule.Name)

	support.MinutesWithoutRebound = 2
	assert.False(t, e.Triggered(model.PatternBreakdown, support))
}

func TestRuleEngine_SurgeRetrace(t *testing.T) {
	e := NewRuleEngine()

	rule, ok := e.Match(model.PatternSurgeRetrace, monitorData(10, 10.4, 11))
	require.True(t, ok)
	assert.Equal(t, "冲板回落超5%", rule.Name)

	rule, ok = e.Match(model.PatternSurgeRetrace, monitorData(10, 10.45, 10.8))
	require.True(t, ok)
	assert.Equal(t, "冲高回落超3%", rule.Name)

	assert.False(t, e.Triggered(model.PatternSurgeRetrace, monitorData(10, 10.45, 10.79)))
	assert.False(t, e.Triggered(model.PatternSurgeRetrace, monitorData(0, 10.45, 11)))
}

func TestRuleEngine_OnlyActionablePatternsHaveRules(t *testing.T) {
	e := NewRuleEngine()
	d := monitorData(10, 11, 11)

	assert.False(t, e.Supports(model.PatternStrongRally))
	assert.False(t, e.Triggered(model.PatternStrongRally, d))
	for _, p := range model.ActionablePatterns {
		assert.True(t, e.Supports(p), p)
	}
}

func TestRuleEngine_AddRuleAppends(t *testing.T) {
	e := NewRuleEngine()
	e.AddRule(model.TriggerRule{
		Name:      "收盘前跳水",
		Pattern:   model.PatternOpeningDive,
		Condition: func(d *model.MonitorData) bool { return d.MinutesSinceOpen >= 230 },
	})

	rules := e.Rules(model.PatternOpeningDive)
	require.Len(t, rules, 3)
	assert.Equal(t, "收盘前跳水", rules[2].Name)

	d := monitorData(10, 10, 10)
	d.MinutesSinceOpen = 235
	rule, ok := e.Match(model.PatternOpeningDive, d)
	require.True(t, ok)
	assert.Equal(t, "收盘前跳水", rule.Name)
}

func TestRuleEngine_ReloadRulesCopies(t *testing.T) {
	e := NewRuleEngine()
	e.ReloadRules(nil)
	assert.False(t, e.Supports(model.PatternOpeningDive))

	rule := model.TriggerRule{
		Name:      "跌破开盘价",
		Pattern:   model.PatternOpeningDive,
		Condition: func(d *model.MonitorData) bool { return d.Current < d.Open },
	}
	assert.NotPanics(t, func() { e.AddRule(rule) })
	assert.True(t, e.Supports(model.PatternOpeningDive))

	rules := map[model.PatternType][]model.TriggerRule{model.PatternBreakdown: {rule}}
	e.ReloadRules(rules)
	rules[model.PatternBreakdown][0].Name = "已修改"
	rules[model.PatternSurgeRetrace] = []model.TriggerRule{rule}

	assert.Equal(t, "跌破开盘价", e.Rules(model.PatternBreakdown)[0].Name)
	assert.False(t, e.Supports(model.PatternSurgeRetrace))
}
