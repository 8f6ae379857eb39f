package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternRadar/pkg/collector"
	"PatternRadar/pkg/config"
	"PatternRadar/pkg/engine"
	"PatternRadar/pkg/llm"
	"PatternRadar/pkg/model"
	"PatternRadar/pkg/monitor"
	"PatternRadar/pkg/repository"
)

type stubQuotes map[string]model.QuoteSnapshot

func (s stubQuotes) Name() string { return "stub" }

func (s stubQuotes) FetchQuote(ctx context.Context, code string) (*model.QuoteSnapshot, error) {
	q, ok := s[code]
	if !ok {
		return nil, fmt.Errorf("%s: %w", code, collector.ErrUnavailable)
	}
	q.Code = code
	return &q, nil
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	quotes := stubQuotes{
		"600000": {Name: "浦发银行", Open: 10.5, Current: 10.17, High: 10.5, Low: 10.1, PrevClose: 10.5},
		"000001": {Name: "平安银行", Open: 10, Current: 10.05, High: 10.08, Low: 9.98, PrevClose: 10},
		"300001": {
			Name: "特锐德", Open: 100, Current: 105, High: 110, Low: 100, PrevClose: 100,
			TurnoverRate: 16, MarketCap: 150e8,
		},
		"600519": {
			Name: "贵州茅台", Open: 1500, Current: 1510, High: 1520, Low: 1500, PrevClose: 1500,
			TurnoverRate: 0.3, MarketCap: 18000e8,
		},
	}
	now := func() time.Time { return time.Date(2026, 3, 10, 9, 35, 0, 0, engine.ChinaTZ) }
	mock := llm.NewMockProvider("判断结果：真跳水")

	health := monitor.NewMonitor(nil)
	health.Register("collector", func(context.Context) error { return nil })

	h := NewHandlers(Deps{
		Quotes:      quotes,
		Analyzer:    engine.NewAnalyzer(quotes, engine.AnalyzerOptions{LLM: mock, Now: now}),
		Monitor:     engine.NewMonitor(quotes, engine.MonitorOptions{LLM: mock, Now: now}),
		Recommender: engine.NewRecommender(quotes, nil, 2),
		Watchlist:   repository.NewMemoryRepository(),
		Health:      health,
	})

	cfg := config.Default()
	s := NewServer(cfg)
	s.SetupRoutes(h)
	return s.Router()
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestHealth(t *testing.T) {
	r := newRouter(t)
	w, out := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", out["status"])

	w, out = do(t, r, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["ai_enabled"])
}

func TestAnalyze(t *testing.T) {
	r := newRouter(t)

	w, out := do(t, r, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{Code: "600000"})
	require.Equal(t, http.StatusOK, w.Code)
	data := out["data"].(map[string]any)
	assert.Equal(t, "开盘跳水", data["classification"].(map[string]any)["pattern"])
	assert.Equal(t, "判断结果：真跳水", data["ai_analysis"])
	assert.NotNil(t, data["suggestion"])

	w, _ = do(t, r, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{Code: "999999"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/analyze", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchAnalyze(t *testing.T) {
	r := newRouter(t)
	w, out := do(t, r, http.MethodPost, "/api/v1/analyze/batch", BatchRequest{Codes: []string{"000001", "999999"}})
	require.Equal(t, http.StatusOK, w.Code)
	items := out["data"].([]any)
	require.Len(t, items, 2)
	assert.NotEmpty(t, items[1].(map[string]any)["error"])
}

func TestClassifyAndArchetype(t *testing.T) {
	r := newRouter(t)
	snap := model.QuoteSnapshot{Name: "零基准", Current: 1}

	w, out := do(t, r, http.MethodPost, "/api/v1/classify", SnapshotRequest{Snapshot: snap})
	require.Equal(t, http.StatusOK, w.Code)
	data := out["data"].(map[string]any)
	assert.Equal(t, "无法判断", data["classification"].(map[string]any)["pattern"])
	assert.Equal(t, "开盘跳水", data["legacy_label"])

	hot := model.QuoteSnapshot{Name: "特锐德", Open: 100, Current: 105, High: 110, Low: 100, PrevClose: 100, TurnoverRate: 16, MarketCap: 150e8}
	w, out = do(t, r, http.MethodPost, "/api/v1/archetype", SnapshotRequest{Snapshot: hot})
	require.Equal(t, http.StatusOK, w.Code)
	data = out["data"].(map[string]any)
	assert.Equal(t, true, data["hot_money"].(map[string]any)["flagged"])
	assert.NotEmpty(t, data["version"])
}

func TestSnapshotRoutes_MissingName(t *testing.T) {
	r := newRouter(t)
	snap := model.QuoteSnapshot{Code: "600000", Open: 10.5, Current: 10.17, High: 10.5, Low: 10.1, PrevClose: 10.5}

	for _, path := range []string{"/api/v1/classify", "/api/v1/archetype"} {
		w, out := do(t, r, http.MethodPost, path, SnapshotRequest{Snapshot: snap})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, path)
		assert.Nil(t, out["data"], path)
	}
}

func TestArchetype_NormalizesSnapshot(t *testing.T) {
	r := newRouter(t)
	// 缺少最低价时按实时价补齐，与 /analyze 的评分一致
	snap := model.QuoteSnapshot{Name: "特锐德", Open: 100, Current: 105, High: 115, PrevClose: 100, TurnoverRate: 16, MarketCap: 150e8}
	scorer := engine.NewArchetypeScorer(engine.DefaultScoringTables())
	want := scorer.HotMoney(snap.Normalize())
	require.NotEqual(t, want.Score, scorer.HotMoney(snap).Score)

	w, out := do(t, r, http.MethodPost, "/api/v1/archetype", SnapshotRequest{Snapshot: snap})
	require.Equal(t, http.StatusOK, w.Code)
	hot := out["data"].(map[string]any)["hot_money"].(map[string]any)
	assert.Equal(t, float64(want.Score), hot["score"])
}

func TestPatternRoutes(t *testing.T) {
	r := newRouter(t)

	w, out := do(t, r, http.MethodPost, "/api/v1/patterns/detect", PatternRequest{Code: "600000", Pattern: "opening_dive"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["triggered"])

	w, out = do(t, r, http.MethodPost, "/api/v1/patterns/analyze", PatternRequest{Code: "000001", Pattern: "开盘跳水"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, out["triggered"])

	w, out = do(t, r, http.MethodPost, "/api/v1/patterns/analyze", PatternRequest{Code: "600000", Pattern: "开盘跳水"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "开盘5分钟跳水", out["data"].(map[string]any)["rule"])

	w, _ = do(t, r, http.MethodPost, "/api/v1/patterns/detect", PatternRequest{Code: "600000", Pattern: "strong_rally"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, out = do(t, r, http.MethodPost, "/api/v1/patterns/batch", BatchDetectRequest{Codes: []string{"600000", "000001"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["data"], 1)
}

func TestSectorsDisabled(t *testing.T) {
	r := newRouter(t)
	w, _ := do(t, r, http.MethodGet, "/api/v1/sectors/hot", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRecommend(t *testing.T) {
	r := newRouter(t)
	w, out := do(t, r, http.MethodPost, "/api/v1/recommend", RecommendRequest{Codes: []string{"600519", "300001"}, Filter: "hot_money"})
	require.Equal(t, http.StatusOK, w.Code)
	items := out["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "300001", items[0].(map[string]any)["snapshot"].(map[string]any)["code"])

	w, _ = do(t, r, http.MethodPost, "/api/v1/recommend", RecommendRequest{Codes: []string{"300001"}, Filter: "nobody"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWatchlistRoutes(t *testing.T) {
	r := newRouter(t)

	w, _ := do(t, r, http.MethodPost, "/api/v1/watchlist", WatchItemRequest{Code: "600000", Patterns: []string{"opening_dive", "breakdown"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	support := 10.2
	w, out := do(t, r, http.MethodPost, "/api/v1/watchlist", WatchItemRequest{Code: "600000", Patterns: []string{"opening_dive", "breakdown"}, SupportPrice: &support})
	require.Equal(t, http.StatusCreated, w.Code)
	created := out["data"].(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, []any{"开盘跳水", "破位下跌"}, created["patterns"])
	assert.Equal(t, true, created["enabled"])
	assert.Equal(t, 10.2, created["support_price"])

	w, _ = do(t, r, http.MethodPost, "/api/v1/watchlist", WatchItemRequest{Code: "600000", Patterns: []string{"opening_dive"}})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/watchlist", WatchItemRequest{Code: "600001", Patterns: []string{"consolidation"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	disabled := false
	w, out = do(t, r, http.MethodPut, "/api/v1/watchlist/"+id, WatchItemRequest{Code: "600000", Patterns: []string{"surge_retrace"}, Enabled: &disabled})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, out["data"].(map[string]any)["enabled"])

	w, out = do(t, r, http.MethodGet, "/api/v1/watchlist", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["data"], 1)

	w, _ = do(t, r, http.MethodDelete, "/api/v1/watchlist/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/watchlist/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
