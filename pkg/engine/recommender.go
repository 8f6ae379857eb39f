package engine

import (
	"context"
	"fmt"
	"sort"

	"PatternRadar/pkg/collector"
	"PatternRadar/pkg/model"
)

// RecommendFilter 推荐筛选方式
type RecommendFilter string

const (
	FilterAll      RecommendFilter = "all"
	FilterHotMoney RecommendFilter = "hot_money"
	FilterRetail   RecommendFilter = "retail"
	FilterEither   RecommendFilter = "either"
	FilterBoth     RecommendFilter = "both"
)

// ParseRecommendFilter 解析筛选方式，空串为 either
func ParseRecommendFilter(s string) (RecommendFilter, error) {
	switch f := RecommendFilter(s); f {
	case "":
		return FilterEither, nil
	case FilterAll, FilterHotMoney, FilterRetail, FilterEither, FilterBoth:
		return f, nil
	}
	return "", fmt.Errorf("不支持的筛选方式: %s", s)
}

func (f RecommendFilter) keep(hot, retail model.ArchetypeScore) bool {
	switch f {
	case FilterAll:
		return true
	case FilterHotMoney:
		return hot.Flagged
	case FilterRetail:
		return retail.Flagged
	case FilterBoth:
		return hot.Flagged && retail.Flagged
	}
	return hot.Flagged || retail.Flagged
}

// Candidate 推荐候选
type Candidate struct {
	Snapshot       model.QuoteSnapshot  `json:"snapshot"`
	ChangePercent  float64              `json:"change_percent"`
	Classification model.Classification `json:"classification"`
	HotMoney       model.ArchetypeScore `json:"hot_money"`
	Retail         model.ArchetypeScore `json:"retail"`
	Score          int                  `json:"score"`
}

// Recommender 每日候选筛选：两个评分器打分后按综合分排序
type Recommender struct {
	quotes      collector.QuoteProvider
	scorer      *ArchetypeScorer
	concurrency int
}

// NewRecommender 创建推荐器
func NewRecommender(quotes collector.QuoteProvider, scorer *ArchetypeScorer, concurrency int) *Recommender {
	if scorer == nil {
		scorer = NewArchetypeScorer(DefaultScoringTables())
	}
	return &Recommender{quotes: quotes, scorer: scorer, concurrency: concurrency}
}

// Recommend 并发获取行情并筛选，无法评估的股票不参与排序
func (r *Recommender) Recommend(ctx context.Context, codes []string, filter RecommendFilter) ([]Candidate, error) {
	quotes, err := collector.FetchRealtime(ctx, r.quotes, codes, r.concurrency)
	if err != nil {
		return nil, fmt.Errorf("获取行情失败: %w", err)
	}
	return r.Rank(quotes, filter), nil
}

// Rank 对已有快照打分排序
func (r *Recommender) Rank(quotes []model.QuoteSnapshot, filter RecommendFilter) []Candidate {
	out := make([]Candidate, 0, len(quotes))
	for _, q := range quotes {
		hot := r.scorer.HotMoney(q)
		retail := r.scorer.Retail(q)
		if !hot.Evaluable && !retail.Evaluable {
			continue
		}
		if !filter.keep(hot, retail) {
			continue
		}
		out = append(out, Candidate{
			Snapshot:       q,
			ChangePercent:  roundPct(q.ChangePercent()),
			Classification: Classify(q, ""),
			HotMoney:       hot,
			Retail:         retail,
			Score:          hot.Score + retail.Score,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Snapshot.Code < out[j].Snapshot.Code
	})
	return out
}
