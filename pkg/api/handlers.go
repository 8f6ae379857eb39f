package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"PatternRadar/pkg/collector"
	"PatternRadar/pkg/engine"
	"PatternRadar/pkg/model"
	"PatternRadar/pkg/monitor"
	"PatternRadar/pkg/repository"
)

// Deps 处理程序依赖，Sectors 与 Health 可为空
type Deps struct {
	Quotes      collector.QuoteProvider
	Analyzer    *engine.Analyzer
	Monitor     *engine.Monitor
	Recommender *engine.Recommender
	Sectors     engine.SectorSource
	Watchlist   repository.WatchlistRepository
	Health      *monitor.Monitor

	// 热门板块默认扫描数量
	SectorTop     int
	ConstituentsN int
	Concurrency   int
}

// Handlers API处理程序
type Handlers struct {
	Deps
}

// NewHandlers 创建新的API处理程序
func NewHandlers(deps Deps) *Handlers {
	if deps.SectorTop <= 0 {
		deps.SectorTop = 5
	}
	if deps.ConstituentsN <= 0 {
		deps.ConstituentsN = 10
	}
	if deps.Concurrency <= 0 {
		deps.Concurrency = 4
	}
	return &Handlers{Deps: deps}
}

// HealthCheck 运行组件检查，任一组件不健康时返回 503
func (h *Handlers) HealthCheck(c *gin.Context) {
	if h.Health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	status, code := "ok", http.StatusOK
	if !h.Health.CheckAll(c.Request.Context()) {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":     status,
		"components": h.Health.GetAllStatus(),
	})
}

// ReadinessCheck 就绪检查
func (h *Handlers) ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"ai_enabled": h.Analyzer != nil && h.Analyzer.AIEnabled(),
	})
}

// AnalyzeRequest 单股分析请求
type AnalyzeRequest struct {
	Code    string `json:"code" binding:"required"`
	Pattern string `json:"pattern"`
}

// Analyze 获取行情后完成图形分类、AI 研判与操作建议
func (h *Handlers) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if !bind(c, &req) {
		return
	}
	q, err := h.Quotes.FetchQuote(c.Request.Context(), req.Code)
	if err != nil {
		writeError(c, "获取行情数据失败", err)
		return
	}
	result, err := h.Analyzer.AnalyzeQuote(c.Request.Context(), *q, req.Pattern)
	if err != nil {
		writeError(c, "分析失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// BatchRequest 批量请求
type BatchRequest struct {
	Codes []string `json:"codes" binding:"required,min=1,max=50,dive,required"`
}

// BatchAnalyze 顺序分析多只股票，调用间隔由配置控制
func (h *Handlers) BatchAnalyze(c *gin.Context) {
	var req BatchRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.Analyzer.BatchAnalyze(c.Request.Context(), req.Codes)})
}

// SnapshotRequest 直接提交快照的请求
type SnapshotRequest struct {
	Snapshot model.QuoteSnapshot `json:"snapshot"`
	Pattern  string              `json:"pattern"`
}

// Classify 对提交的快照分类，不抓取行情
func (h *Handlers) Classify(c *gin.Context) {
	var req SnapshotRequest
	if !bind(c, &req) {
		return
	}
	if err := req.Snapshot.Validate(); err != nil {
		writeError(c, "快照数据不可用", err)
		return
	}
	q := req.Snapshot.Normalize()
	cls := engine.Classify(q, req.Pattern)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"classification":   cls,
		"legacy_label":     cls.LegacyLabel(),
		"key_price_levels": engine.KeyPriceLevels(q),
		"tips":             engine.StateTips(cls.Pattern),
	}})
}

// Archetype 游资与散户特征评分
func (h *Handlers) Archetype(c *gin.Context) {
	var req SnapshotRequest
	if !bind(c, &req) {
		return
	}
	if err := req.Snapshot.Validate(); err != nil {
		writeError(c, "快照数据不可用", err)
		return
	}
	q := req.Snapshot.Normalize()
	scorer := h.Analyzer.Scorer()
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"version":   scorer.Version(),
		"hot_money": scorer.HotMoney(q),
		"retail":    scorer.Retail(q),
	}})
}

// GetQuotes 获取行情，codes 以逗号分隔
func (h *Handlers) GetQuotes(c *gin.Context) {
	codes := splitCodes(c.Query("codes"))
	if len(codes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "codes参数不能为空"})
		return
	}
	quotes, err := collector.FetchRealtime(c.Request.Context(), h.Quotes, codes, h.Concurrency)
	if err != nil {
		writeError(c, "获取行情数据失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": quotes})
}

// PatternRequest 图形检测请求
type PatternRequest struct {
	Code      string                 `json:"code" binding:"required"`
	Pattern   string                 `json:"pattern" binding:"required"`
	Overrides model.MonitorOverrides `json:"overrides"`
}

// DetectPattern 判断是否触发图形规则
func (h *Handlers) DetectPattern(c *gin.Context) {
	var req PatternRequest
	if !bind(c, &req) {
		return
	}
	p, err := model.ParsePatternType(req.Pattern)
	if err != nil {
		writeError(c, "图形类型无效", err)
		return
	}
	data, rule, err := h.Monitor.DetectPattern(c.Request.Context(), req.Code, p, req.Overrides)
	if err != nil {
		writeError(c, "检测失败", err)
		return
	}
	resp := gin.H{"triggered": rule != nil, "data": data}
	if rule != nil {
		resp["rule"] = rule
	}
	c.JSON(http.StatusOK, resp)
}

// AnalyzePattern 触发后执行 AI 研判并发布事件，未触发时 triggered 为 false
func (h *Handlers) AnalyzePattern(c *gin.Context) {
	var req PatternRequest
	if !bind(c, &req) {
		return
	}
	p, err := model.ParsePatternType(req.Pattern)
	if err != nil {
		writeError(c, "图形类型无效", err)
		return
	}
	event, err := h.Monitor.AnalyzePattern(c.Request.Context(), req.Code, p, req.Overrides)
	if errors.Is(err, engine.ErrNotTriggered) {
		c.JSON(http.StatusOK, gin.H{"triggered": false, "message": err.Error()})
		return
	}
	if err != nil {
		writeError(c, "分析失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"triggered": true, "data": event})
}

// BatchDetectRequest 批量检测请求，patterns 为空时检测全部可操作图形
type BatchDetectRequest struct {
	Codes     []string               `json:"codes" binding:"required,min=1,max=200,dive,required"`
	Patterns  []string               `json:"patterns"`
	Overrides model.MonitorOverrides `json:"overrides"`
}

// BatchDetect 批量检测
func (h *Handlers) BatchDetect(c *gin.Context) {
	var req BatchDetectRequest
	if !bind(c, &req) {
		return
	}
	patterns, err := parsePatterns(req.Patterns)
	if err != nil {
		writeError(c, "图形类型无效", err)
		return
	}
	if len(patterns) == 0 {
		patterns = model.ActionablePatterns
	}
	c.JSON(http.StatusOK, gin.H{"data": h.Monitor.BatchDetect(c.Request.Context(), req.Codes, patterns, req.Overrides)})
}

// HotSectors 扫描热门板块成分股并筛选可操作图形
func (h *Handlers) HotSectors(c *gin.Context) {
	if h.Sectors == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "未启用板块扫描"})
		return
	}
	top := queryInt(c, "top", h.SectorTop)
	per := queryInt(c, "per", h.ConstituentsN)
	report, err := h.Analyzer.ScanSectors(c.Request.Context(), h.Sectors, top, per)
	if err != nil {
		writeError(c, "板块扫描失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

// RecommendRequest 推荐请求
type RecommendRequest struct {
	Codes  []string `json:"codes" binding:"required,min=1,max=500,dive,required"`
	Filter string   `json:"filter" binding:"omitempty,oneof=all hot_money retail either both"`
}

// Recommend 按游资与散户特征筛选排序
func (h *Handlers) Recommend(c *gin.Context) {
	var req RecommendRequest
	if !bind(c, &req) {
		return
	}
	filter, err := engine.ParseRecommendFilter(req.Filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	candidates, err := h.Recommender.Recommend(c.Request.Context(), req.Codes, filter)
	if err != nil {
		writeError(c, "推荐失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": candidates})
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "无效的请求参数: " + err.Error(),
		})
		return false
	}
	return true
}

// writeError 按错误类型映射状态码
func writeError(c *gin.Context, msg string, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrUnsupportedPattern), errors.Is(err, repository.ErrInvalid):
		code = http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, collector.ErrUnavailable):
		code = http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicate):
		code = http.StatusConflict
	case errors.Is(err, model.ErrNoData):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		code = http.StatusGatewayTimeout
	}
	c.JSON(code, gin.H{"error": msg + ": " + err.Error()})
}

func parsePatterns(items []string) ([]model.PatternType, error) {
	out := make([]model.PatternType, 0, len(items))
	for _, s := range items {
		p, err := model.ParsePatternType(strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func splitCodes(s string) []string {
	var out []string
	for _, code := range strings.Split(s, ",") {
		if code = strings.TrimSpace(code); code != "" {
			out = append(out, code)
		}
	}
	return out
}

func queryInt(c *gin.Context, key string, def int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil && v > 0 {
		return v
	}
	return def
}
