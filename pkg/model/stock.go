package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrNoData 行情数据不可用（缺少股票名称或实时价）
var ErrNoData = errors.New("行情数据不可用")

// QuoteSnapshot 单只股票的行情快照
// 由采集器按请求构建，核心逻辑只读不写。价格字段缺失时为 0。
type QuoteSnapshot struct {
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	Open         float64   `json:"open"`
	Current      float64   `json:"current"`
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	PrevClose    float64   `json:"prev_close"`
	LimitUp      float64   `json:"limit_up"`
	LimitDown    float64   `json:"limit_down"`
	Volume       int64     `json:"volume"`        // 成交量（手）
	Amount       float64   `json:"amount"`        // 成交额（元）
	TurnoverRate float64   `json:"turnover_rate"` // 换手率（%）
	MarketCap    float64   `json:"market_cap"`    // 总市值（元）
	SectorName   string    `json:"sector_name"`
	SectorChange float64   `json:"sector_change"` // 板块涨跌幅（%）
	LatestNews   string    `json:"latest_news"`
	Source       string    `json:"source"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Validate 检查快照是否可用于后续分析
func (q QuoteSnapshot) Validate() error {
	if strings.TrimSpace(q.Name) == "" {
		return fmt.Errorf("%w: 股票 %s 缺少名称", ErrNoData, q.Code)
	}
	if q.Current <= 0 {
		return fmt.Errorf("%w: 股票 %s 缺少实时价", ErrNoData, q.Code)
	}
	return nil
}

// Normalize 补齐可推导的字段：涨跌停价按昨收 ±10% 估算，最高/最低价缺失时取实时价
func (q QuoteSnapshot) Normalize() QuoteSnapshot {
	if q.PrevClose > 0 {
		if q.LimitUp <= 0 {
			q.LimitUp = round2(q.PrevClose * 1.1)
		}
		if q.LimitDown <= 0 {
			q.LimitDown = round2(q.PrevClose * 0.9)
		}
	}
	if q.High <= 0 {
		q.High = q.Current
	}
	if q.Low <= 0 {
		q.Low = q.Current
	}
	return q
}

// Baseline 涨跌幅基准价：优先昨收，否则开盘价
func (q QuoteSnapshot) Baseline() float64 {
	if q.PrevClose > 0 {
		return q.PrevClose
	}
	return q.Open
}

// ChangePercent 相对昨收的涨跌幅（%），昨收缺失返回 0
func (q QuoteSnapshot) ChangePercent() float64 {
	if q.PrevClose <= 0 {
		return 0
	}
	return (q.Current - q.PrevClose) / q.PrevClose * 100
}

// Amplitude 日内振幅 (high-low)/low（%）
func (q QuoteSnapshot) Amplitude() float64 {
	if q.Low <= 0 {
		return 0
	}
	return (q.High - q.Low) / q.Low * 100
}

// PullbackFromHigh 距最高价回落幅度（%）
func (q QuoteSnapshot) PullbackFromHigh() float64 {
	if q.High <= 0 {
		return 0
	}
	return (q.High - q.Current) / q.High * 100
}

// MarketCapYi 总市值（亿元）
func (q QuoteSnapshot) MarketCapYi() float64 {
	return q.MarketCap / 1e8
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
