package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternRadar/pkg/model"
)

func newScorer() *ArchetypeScorer {
	return NewArchetypeScorer(DefaultScoringTables())
}

func TestHotMoney_ThreeInOneOverride(t *testing.T) {
	q := model.QuoteSnapshot{
		Name: "X", Open: 100, Current: 105, High: 110, Low: 100, PrevClose: 100,
		TurnoverRate: 16, MarketCap: 150e8,
	}

	s := newScorer().HotMoney(q)
	assert.True(t, s.Evaluable)
	assert.True(t, s.Flagged)
	require.NotEmpty(t, s.Factors)
	assert.Equal(t, "三位一体：高换手+大振幅+中小市值", s.Factors[0])
	assert.Equal(t, "v1", s.Version)
}

func TestHotMoney_ThreeInOneNeedsMarketCap(t *testing.T) {
	q := model.QuoteSnapshot{
		Name: "X", Open: 100, Current: 101, High: 110, Low: 100, PrevClose: 100,
		TurnoverRate: 16,
	}

	s := newScorer().HotMoney(q)
	assert.True(t, s.Evaluable)
	assert.NotContains(t, s.Factors, "三位一体：高换手+大振幅+中小市值")
}

func TestHotMoney_QuietLargeCap(t *testing.T) {
	q := model.QuoteSnapshot{
		Name: "X", Open: 10, Current: 10.05, High: 10.1, Low: 10, PrevClose: 10,
		TurnoverRate: 3, MarketCap: 500e8,
	}

	s := newScorer().HotMoney(q)
	assert.True(t, s.Evaluable)
	assert.False(t, s.Flagged)
	assert.Equal(t, 0, s.Score)
	assert.Len(t, s.Factors, 4)
	assert.Equal(t, "大盘股(500亿)低换手(-15)", s.Factors[3])
}

func TestHotMoney_TwoWarningsFlagWithLowScore(t *testing.T) {
	q := model.QuoteSnapshot{
		Name: "X", Open: 10, Current: 10, High: 10.6, Low: 10, PrevClose: 10,
		TurnoverRate: 4, MarketCap: 50e8, Amount: 25e8,
	}

	s := newScorer().HotMoney(q)
	assert.True(t, s.Flagged)
	assert.Equal(t, 0, s.Score)
	assert.Contains(t, s.Factors, "冲高回落5.66%(+15)")
	assert.Contains(t, s.Factors, "成交额占市值50.00%，资金博弈激烈(+10)")
}

func TestHotMoney_HighScore(t *testing.T) {
	q := model.QuoteSnapshot{
		Name: "X", Open: 10, Current: 10.8, High: 11, Low: 10.4, PrevClose: 10,
		TurnoverRate: 12, MarketCap: 30e8,
	}

	// 换手+15 振幅(5.77%)不计 涨幅8%+15 小盘+10
	s := newScorer().HotMoney(q)
	assert.Equal(t, 40, s.Score)
	assert.False(t, s.Flagged)
}

func TestHotMoney_OpenThenFade(t *testing.T) {
	q := model.QuoteSnapshot{
		Name: "X", Open: 10.5, Current: 10.1, High: 10.6, Low: 10.05, PrevClose: 10,
		TurnoverRate: 8,
	}

	s := newScorer().HotMoney(q)
	assert.Contains(t, s.Factors, "高开低走(开盘涨5.00%)(+10)")
}

func TestHotMoney_NotEvaluable(t *testing.T) {
	scorer := newScorer()

	noPrice := scorer.HotMoney(model.QuoteSnapshot{Name: "X", PrevClose: 10, TurnoverRate: 30})
	assert.False(t, noPrice.Evaluable)
	assert.False(t, noPrice.Flagged)
	assert.Equal(t, 0, noPrice.Score)
	assert.Empty(t, noPrice.Factors)

	noPrev := scorer.HotMoney(model.QuoteSnapshot{Name: "X", Current: 10, TurnoverRate: 30})
	assert.False(t, noPrev.Evaluable)
}

func TestRetail_CheapSTConcept(t *testing.T) {
	q := model.QuoteSnapshot{
		Name: "*ST智能", Open: 4, Current: 4, High: 4, Low: 4, PrevClose: 4,
		TurnoverRate: 1, MarketCap: 20e8,
	}

	s := newScorer().Retail(q)
	assert.True(t, s.Evaluable)
	assert.True(t, s.Flagged)
	assert.Equal(t, 110, s.Score)
	assert.Contains(t, s.Factors, "ST/退市风险股(+40)")
	assert.Contains(t, s.Factors, "科技/AI概念(智能)(+15)")
}

func TestRetail_KeywordsAccumulate(t *testing.T) {
	q := model.QuoteSnapshot{Name: "智能科技", Open: 30, Current: 30, High: 30, Low: 30, PrevClose: 30}

	s := newScorer().Retail(q)
	assert.Equal(t, 30, s.Score)
	assert.Contains(t, s.Factors, "科技/AI概念(科技)(+15)")
	assert.Contains(t, s.Factors, "科技/AI概念(智能)(+15)")
	assert.False(t, s.Flagged)
}

func TestRetail_BlueChipNotFlagged(t *testing.T) {
	q := model.QuoteSnapshot{
		Name: "贵州茅台", Open: 1500, Current: 1510, High: 1520, Low: 1500, PrevClose: 1500,
		TurnoverRate: 0.3, MarketCap: 18000e8,
	}

	s := newScorer().Retail(q)
	assert.False(t, s.Flagged)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, []string{"高价股(1510.00元)(-15)", "大盘股(18000亿)(-10)"}, s.Factors)
}

func TestRetail_LimitMoves(t *testing.T) {
	scorer := newScorer()

	up := scorer.Retail(model.QuoteSnapshot{Name: "X", Open: 10, Current: 11, High: 11, Low: 10, PrevClose: 10, LimitUp: 11, LimitDown: 9})
	assert.Contains(t, up.Factors, "涨停(+25)")
	assert.NotContains(t, up.Factors, "大涨10.00%(+15)")

	down := scorer.Retail(model.QuoteSnapshot{Name: "X", Open: 10, Current: 9, High: 10, Low: 9, PrevClose: 10, LimitUp: 11, LimitDown: 9})
	assert.Contains(t, down.Factors, "跌停(+20)")

	gain := scorer.Retail(model.QuoteSnapshot{Name: "X", Open: 10, Current: 10.8, High: 10.8, Low: 10, PrevClose: 10, LimitUp: 11, LimitDown: 9})
	assert.Contains(t, gain.Factors, "大涨8.00%(+15)")
}

func TestRetail_CheapSmallActive(t *testing.T) {
	q := model.QuoteSnapshot{
		Name: "X", Open: 8, Current: 8, High: 8.2, Low: 7.9, PrevClose: 8,
		TurnoverRate: 12, MarketCap: 40e8,
	}

	// 低价+20 小盘+15 低价小盘高换手+15
	s := newScorer().Retail(q)
	assert.Equal(t, 50, s.Score)
	assert.True(t, s.Flagged)
	assert.Contains(t, s.Factors, "低价小盘高换手(+15)")
}

func TestRetail_NotEvaluable(t *testing.T) {
	s := newScorer().Retail(model.QuoteSnapshot{Name: "X"})
	assert.False(t, s.Evaluable)
	assert.Equal(t, 0, s.Score)
}

func TestParseScoringTables_OverridesOnlyGivenFields(t *testing.T) {
	tables, err := ParseScoringTables([]byte("version: v2\nretail:\n  score_threshold: 200\n"))
	require.NoError(t, err)

	assert.Equal(t, "v2", tables.Version)
	assert.Equal(t, 200, tables.Retail.ScoreThreshold)
	assert.Equal(t, DefaultScoringTables().Retail.Price, tables.Retail.Price)
	assert.Equal(t, 50, tables.HotMoney.ScoreThreshold)

	s := NewArchetypeScorer(tables).Retail(model.QuoteSnapshot{
		Name: "*ST智能", Open: 4, Current: 4, High: 4, Low: 4, PrevClose: 4, MarketCap: 20e8,
	})
	assert.False(t, s.Flagged)
	assert.Equal(t, "v2", s.Version)
}

func TestParseScoringTables_RequiresVersion(t *testing.T) {
	_, err := ParseScoringTables([]byte("version: \"\"\n"))
	assert.Error(t, err)

	_, err = ParseScoringTables([]byte("hot_money: ["))
	assert.Error(t, err)
}
