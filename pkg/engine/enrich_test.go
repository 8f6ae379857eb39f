package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternRadar/pkg/model"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 10, hour, minute, 0, 0, ChinaTZ)
}

func TestEnrich_Defaults(t *testing.T) {
	q := model.QuoteSnapshot{Code: "600000", Name: "浦发银行", Open: 10.5, Current: 10, High: 10.5, PrevClose: 10.5}

	d := Enrich(q, model.MonitorOverrides{}, model.DefaultMonitorDefaults(), at(9, 40))
	assert.Equal(t, "09:40", d.TriggerTime)
	assert.Equal(t, 10, d.MinutesSinceOpen)
	assert.Equal(t, 9.95, d.MA5)
	assert.Equal(t, 9.8, d.MA20)
	assert.Equal(t, 9.7, d.SupportPrice)
	assert.Equal(t, 25.0, d.VolumeAmplification)
	assert.Equal(t, 5, d.MinutesWithoutRebound)
	assert.Equal(t, int64(10000), d.LimitOrderVolume)
	assert.Equal(t, 11.55, d.LimitUp)
	assert.Equal(t, 10.0, d.Low)
	assert.Equal(t, 4.76, d.DropPercent)
	assert.Equal(t, "未知", d.SectorName)
	assert.Equal(t, "无", d.LatestNews)
}

func TestEnrich_OverridesWin(t *testing.T) {
	q := model.QuoteSnapshot{Name: "X", Open: 10, Current: 9.6, High: 10, PrevClose: 10}
	minutes := 3
	ma5 := 9.9
	news := "公司公告减持"
	trigger := "10:01"

	d := Enrich(q, model.MonitorOverrides{
		MinutesSinceOpen: &minutes,
		MA5:              &ma5,
		LatestNews:       &news,
		TriggerTime:      &trigger,
	}, model.DefaultMonitorDefaults(), at(9, 35))

	assert.Equal(t, 3, d.MinutesSinceOpen)
	assert.Equal(t, 9.9, d.MA5)
	assert.Equal(t, "公司公告减持", d.LatestNews)
	assert.Equal(t, "10:01", d.TriggerTime)
	assert.True(t, NewRuleEngine().Triggered(model.PatternOpeningDive, &d))
}

func TestEnrich_SurgeFields(t *testing.T) {
	q := model.QuoteSnapshot{Name: "X", Open: 10, Current: 10.4, High: 11, PrevClose: 10}

	d := Enrich(q, model.MonitorOverrides{}, model.DefaultMonitorDefaults(), at(10, 0))
	assert.Equal(t, 10.0, d.SurgePercent)
	assert.Equal(t, 5.45, d.RetracePercent)
}

func TestTradingMinutes(t *testing.T) {
	cases := []struct {
		h, m int
		want int
	}{
		{8, 0, 0},
		{9, 30, 0},
		{9, 35, 5},
		{10, 40, 70},
		{12, 0, 120},
		{13, 30, 150},
		{15, 0, 240},
		{16, 0, 240},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, TradingMinutes(at(c.h, c.m)), "%02d:%02d", c.h, c.m)
	}

	utc := time.Date(2026, 3, 10, 1, 45, 0, 0, time.UTC)
	assert.Equal(t, 15, TradingMinutes(utc))
}

func TestInTradingSession(t *testing.T) {
	assert.True(t, InTradingSession(at(10, 0)))
	assert.False(t, InTradingSession(at(12, 0)))
	assert.True(t, InTradingSession(at(14, 59)))
	assert.False(t, InTradingSession(time.Date(2026, 3, 14, 10, 0, 0, 0, ChinaTZ)))
}

func TestKeyPriceLevels(t *testing.T) {
	levels := KeyPriceLevels(model.QuoteSnapshot{Name: "X", Open: 10.1, Current: 10, High: 10.3, Low: 9.9, PrevClose: 10})
	require.Len(t, levels, 16)

	byName := map[string]float64{}
	for _, l := range levels {
		byName[l.Name] = l.Price
	}
	assert.Equal(t, 10.2, byName["第一压力位"])
	assert.Equal(t, 10.8, byName["第三压力位"])
	assert.Equal(t, 9.5, byName["第二支撑位"])
	assert.Equal(t, 11.0, byName["涨停价"])
	assert.Equal(t, 9.0, byName["跌停价"])
	assert.Equal(t, 9.95, byName["5日均线"])
}

func TestStateTips(t *testing.T) {
	assert.Equal(t, []string{"关注是否突破前高", "注意成交量是否放大", "设置止盈位保护利润"}, StateTips(model.PatternStrongRally))
	assert.Len(t, StateTips(model.PatternConsolidation), 3)
	assert.Nil(t, StateTips(model.PatternOther))
}

func TestPromptFieldsFor_PatternSpecific(t *testing.T) {
	q := model.QuoteSnapshot{Code: "600000", Name: "X", Open: 10.5, Current: 10.17, High: 10.5, PrevClose: 10.5}
	d := Enrich(q, model.MonitorOverrides{}, model.DefaultMonitorDefaults(), at(9, 35))

	dive := PromptFieldsFor(model.PatternOpeningDive, d)
	assert.Equal(t, 3.14, dive.DropPercent)
	assert.Equal(t, 5, dive.MAType)
	assert.Equal(t, d.MA5, dive.MAPrice)
	assert.Zero(t, dive.SupportPrice)

	brk := PromptFieldsFor(model.PatternBreakdown, d)
	assert.Equal(t, d.SupportPrice, brk.SupportPrice)
	assert.Equal(t, 5, brk.MinutesWithoutRebound)
	assert.Zero(t, brk.DropPercent)

	sr := PromptFieldsFor(model.PatternSurgeRetrace, d)
	assert.Equal(t, int64(10000), sr.LimitOrderVolume)
	assert.Zero(t, sr.MinutesSinceOpen)
}
