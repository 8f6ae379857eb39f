// pkg/engine/archetype.go
package engine

import (
	"fmt"
	"strings"

	"PatternRadar/pkg/model"
)

// ArchetypeScorer 游资股/散户股评分器，评分表只读，可并发使用
type ArchetypeScorer struct {
	tables ScoringTables
}

// NewArchetypeScorer 创建评分器
func NewArchetypeScorer(tables ScoringTables) *ArchetypeScorer {
	return &ArchetypeScorer{tables: tables}
}

// Version 评分表版本
func (s *ArchetypeScorer) Version() string {
	return s.tables.Version
}

// tally 累加得分与因子
type tally struct {
	score    int
	warnings int
	factors  []string
}

func (t *tally) add(weight int, warning bool, label string, v float64) {
	t.score += weight
	if warning {
		t.warnings++
	}
	t.factors = append(t.factors, fmt.Sprintf("%s(%+d)", factorText(label, v), weight))
}

func (t *tally) band(b Band, v float64) {
	if b.Op != "" && b.Match(v) {
		t.add(b.Weight, b.Warning, b.Label, v)
	}
}

func (t *tally) ladder(l Ladder, v float64) {
	if b, ok := l.First(v); ok {
		t.add(b.Weight, b.Warning, b.Label, v)
	}
}

func factorText(label string, v float64) string {
	if strings.Contains(label, "%") {
		return fmt.Sprintf(label, v)
	}
	return label
}

func (t *tally) result(flagged bool, version string) model.ArchetypeScore {
	score := t.score
	if score < 0 {
		score = 0
	}
	factors := t.factors
	if factors == nil {
		factors = []string{}
	}
	return model.ArchetypeScore{
		Evaluable: true,
		Flagged:   flagged,
		Score:     score,
		Factors:   factors,
		Version:   version,
	}
}

// HotMoney 游资股评分
// 实时价或昨收无效时不评分
func (s *ArchetypeScorer) HotMoney(q model.QuoteSnapshot) model.ArchetypeScore {
	if q.Current <= 0 || q.PrevClose <= 0 {
		return model.ArchetypeScore{Factors: []string{}, Version: s.tables.Version}
	}
	tb := s.tables.HotMoney
	turnover := q.TurnoverRate
	amplitude := q.Amplitude()
	change := q.ChangePercent()
	capYi := q.MarketCapYi()
	pullback := q.PullbackFromHigh()

	t := &tally{}
	t.ladder(tb.Turnover, turnover)
	t.ladder(tb.Amplitude, amplitude)
	t.ladder(tb.Change, change)

	// 市值缺失时跳过所有市值相关因子
	if capYi > 0 {
		for _, r := range tb.CapTurnover {
			if r.Cap.Match(capYi) && r.Turnover.Match(turnover) {
				t.add(r.Weight, false, r.Label, capYi)
				break
			}
		}
	}

	t.band(tb.Pullback, pullback)

	if q.Open > 0 {
		openChange := (q.Open - q.PrevClose) / q.PrevClose * 100
		if openChange > change && openChange > tb.Fade.OpenChangeMin && pullback > tb.Fade.PullbackMin {
			t.add(tb.Fade.Weight, false, tb.Fade.Label, openChange)
		}
	}

	if q.MarketCap > 0 && q.Amount > 0 {
		t.band(tb.AmountRatio, q.Amount/q.MarketCap*100)
	}

	three := tb.ThreeInOne
	if turnover >= three.TurnoverMin && amplitude >= three.AmplitudeMin && capYi > 0 && capYi <= three.CapMax {
		t.factors = append([]string{three.Label}, t.factors...)
		return t.result(true, s.tables.Version)
	}

	flagged := t.score > tb.ScoreThreshold || t.warnings >= tb.WarningCount
	return t.result(flagged, s.tables.Version)
}

// Retail 散户股评分
// 实时价无效时不评分
func (s *ArchetypeScorer) Retail(q model.QuoteSnapshot) model.ArchetypeScore {
	if q.Current <= 0 {
		return model.ArchetypeScore{Factors: []string{}, Version: s.tables.Version}
	}
	tb := s.tables.Retail
	price := q.Current
	capYi := q.MarketCapYi()
	amplitude := q.Amplitude()
	turnover := q.TurnoverRate
	change := q.ChangePercent()

	t := &tally{}
	t.ladder(tb.Price, price)
	if capYi > 0 {
		t.ladder(tb.Cap, capYi)
	}

	name := strings.ToUpper(q.Name)
	for _, w := range tb.STWords {
		if strings.Contains(name, strings.ToUpper(w)) {
			t.add(tb.STWeight, false, tb.STLabel, 0)
			break
		}
	}
	for _, g := range tb.Keywords {
		for _, w := range g.Words {
			if strings.Contains(name, strings.ToUpper(w)) {
				t.add(g.Weight, false, fmt.Sprintf("%s概念(%s)", g.Category, w), 0)
			}
		}
	}

	t.band(tb.Amplitude, amplitude)
	if turnover >= tb.ActiveCombo.TurnoverMin && amplitude >= tb.ActiveCombo.AmplitudeMin {
		t.add(tb.ActiveCombo.Weight, false, tb.ActiveCombo.Label, 0)
	}

	lm := tb.LimitMove
	switch {
	case q.LimitUp > 0 && price >= q.LimitUp-lm.Tolerance:
		t.add(lm.LimitUpWeight, false, lm.LimitUpLabel, 0)
	case q.LimitDown > 0 && price <= q.LimitDown+lm.Tolerance:
		t.add(lm.LimitDownWeight, false, lm.LimitDownLabel, 0)
	case lm.BigGain.Match(change):
		t.add(lm.BigGain.Weight, false, lm.BigGain.Label, change)
	case lm.BigLoss.Match(change):
		t.add(lm.BigLoss.Weight, false, lm.BigLoss.Label, change)
	}

	t.ladder(tb.Turnover, turnover)
	t.band(tb.Pullback, q.PullbackFromHigh())

	cs := tb.CheapSmall
	if price < cs.PriceMax && capYi > 0 && capYi < cs.CapMax && turnover >= cs.TurnoverMin {
		t.add(cs.Weight, false, cs.Label, 0)
	}

	return t.result(t.score > tb.ScoreThreshold, s.tables.Version)
}
