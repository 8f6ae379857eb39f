// pkg/engine/rule_engine.go
package engine

import (
	"sync"

	"PatternRadar/pkg/model"
)

// RuleEngine 图形触发规则引擎
// 与 Classify 的阈值互相独立：Classify 回答"当前是什么形态"，RuleEngine 回答"是否值得告警"
type RuleEngine struct {
	mu    sync.RWMutex
	rules map[model.PatternType][]model.TriggerRule
}

// NewRuleEngine 创建规则引擎并加载默认规则
func NewRuleEngine() *RuleEngine {
	return &RuleEngine{rules: DefaultTriggerRules()}
}

// AddRule 为图形追加规则，排在已有规则之后
func (e *RuleEngine) AddRule(rule model.TriggerRule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules[rule.Pattern] = append(e.rules[rule.Pattern], rule)
}

// ReloadRules 整体替换规则，保存的是入参的副本
func (e *RuleEngine) ReloadRules(rules map[model.PatternType][]model.TriggerRule) {
	next := make(map[model.PatternType][]model.TriggerRule, len(rules))
	for p, list := range rules {
		next[p] = append([]model.TriggerRule(nil), list...)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = next
}

// Rules 返回图形的规则列表副本
func (e *RuleEngine) Rules(p model.PatternType) []model.TriggerRule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.TriggerRule, len(e.rules[p]))
	copy(out, e.rules[p])
	return out
}

// Supports 图形是否配置了触发规则
func (e *RuleEngine) Supports(p model.PatternType) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules[p]) > 0
}

// Match 按顺序评估图形规则，返回第一条成立的规则
func (e *RuleEngine) Match(p model.PatternType, data *model.MonitorData) (*model.TriggerRule, bool) {
	if data == nil {
		return nil, false
	}
	for _, rule := range e.Rules(p) {
		if rule.Condition != nil && rule.Condition(data) {
			r := rule
			return &r, true
		}
	}
	return nil, false
}

// Triggered 图形是否触发（规则之间为"或"关系）
func (e *RuleEngine) Triggered(p model.PatternType, data *model.MonitorData) bool {
	_, ok := e.Match(p, data)
	return ok
}
