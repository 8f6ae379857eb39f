package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"PatternRadar/pkg/collector"
	"PatternRadar/pkg/llm"
	"PatternRadar/pkg/model"
	"PatternRadar/pkg/prompt"
)

// AnalyzerOptions 分析流程依赖，零值字段使用默认值
type AnalyzerOptions struct {
	Index       collector.IndexProvider
	IndexSymbol string
	// LLM 为空表示未配置密钥
	LLM         llm.Provider
	Scorer      *ArchetypeScorer
	Defaults    model.MonitorDefaults
	Prompt      prompt.Options
	BatchDelay  time.Duration
	Concurrency int
	Now         func() time.Time
}

// Analyzer 单只股票分析流程：行情 → 分类 → 提示词 → 大模型 → 操作建议
type Analyzer struct {
	quotes      collector.QuoteProvider
	index       collector.IndexProvider
	indexSymbol string
	provider    llm.Provider
	scorer      *ArchetypeScorer
	defaults    model.MonitorDefaults
	promptOpts  prompt.Options
	batchDelay  time.Duration
	concurrency int
	now         func() time.Time
}

// NewAnalyzer 创建分析器
func NewAnalyzer(quotes collector.QuoteProvider, opts AnalyzerOptions) *Analyzer {
	a := &Analyzer{
		quotes:      quotes,
		index:       opts.Index,
		indexSymbol: opts.IndexSymbol,
		provider:    opts.LLM,
		scorer:      opts.Scorer,
		defaults:    opts.Defaults,
		promptOpts:  opts.Prompt,
		batchDelay:  opts.BatchDelay,
		concurrency: opts.Concurrency,
		now:         opts.Now,
	}
	if a.scorer == nil {
		a.scorer = NewArchetypeScorer(DefaultScoringTables())
	}
	if a.defaults == (model.MonitorDefaults{}) {
		a.defaults = model.DefaultMonitorDefaults()
	}
	if a.promptOpts.Template == "" {
		a.promptOpts.Template = prompt.TemplateSimplified
	}
	if a.indexSymbol == "" {
		a.indexSymbol = "sh000001"
	}
	if a.concurrency <= 0 {
		a.concurrency = 4
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// AIEnabled 是否配置了大模型
func (a *Analyzer) AIEnabled() bool { return a.provider != nil }

// Scorer 当前评分器
func (a *Analyzer) Scorer() *ArchetypeScorer { return a.scorer }

// AnalyzeStock 获取实时行情并完成分析
func (a *Analyzer) AnalyzeStock(ctx context.Context, code string) (*model.AnalysisResult, error) {
	q, err := a.quotes.FetchQuote(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("无法获取股票 %s 的数据: %w", displayCode(code), err)
	}
	return a.AnalyzeQuote(ctx, *q, "")
}

// AnalyzeQuote 对给定快照完成分析，asserted 为用户指定的图形（可空）
func (a *Analyzer) AnalyzeQuote(ctx context.Context, q model.QuoteSnapshot, asserted string) (*model.AnalysisResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("无法获取股票 %s 的数据: %w", displayCode(q.Code), err)
	}
	q = q.Normalize()

	cls := Classify(q, asserted)
	res := &model.AnalysisResult{
		Snapshot:       q,
		ChangePercent:  roundPct(q.ChangePercent()),
		Classification: cls,
		KeyLevels:      KeyPriceLevels(q),
		HotMoney:       a.scorer.HotMoney(q),
		Retail:         a.scorer.Retail(q),
		AnalyzedAt:     a.now(),
	}

	if !cls.Pattern.IsActionable() {
		res.Message = fmt.Sprintf("当前市场状态为\"%s\"，不适合图形分析", cls.Pattern)
		res.Tips = StateTips(cls.Pattern)
		return res, nil
	}

	d := Enrich(q, model.MonitorOverrides{}, a.defaults, a.now())
	a.attachIndex(ctx, &d)
	suggestion := Suggest(cls.Pattern, d, "")
	res.Suggestion = &suggestion

	if a.provider == nil {
		res.Message = "未配置AI密钥，无法进行AI分析"
		return res, nil
	}

	text, err := prompt.Generate(PromptFieldsFor(cls.Pattern, d), a.promptOpts)
	if err != nil {
		return nil, fmt.Errorf("生成提示词失败: %w", err)
	}
	res.Prompt = text

	analysis, err := chat(ctx, a.provider, text)
	if err != nil {
		log.Warn().Str("code", q.Code).Str("provider", a.provider.Name()).Err(err).Msg("AI分析失败")
		res.Message = fmt.Sprintf("AI分析失败，已跳过: %v", err)
		return res, nil
	}
	res.AIAnalysis = analysis
	return res, nil
}

// BatchItem 批量分析单项
type BatchItem struct {
	Code   string                `json:"code"`
	Result *model.AnalysisResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// BatchAnalyze 顺序分析多只股票，相邻两次调用间隔 batchDelay
func (a *Analyzer) BatchAnalyze(ctx context.Context, codes []string) []BatchItem {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if a.batchDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(a.batchDelay), 1)
	}

	items := make([]BatchItem, 0, len(codes))
	for _, code := range codes {
		if err := limiter.Wait(ctx); err != nil {
			items = append(items, BatchItem{Code: code, Error: fmt.Sprintf("批量分析已取消: %v", err)})
			continue
		}
		res, err := a.AnalyzeStock(ctx, code)
		if err != nil {
			items = append(items, BatchItem{Code: code, Error: err.Error()})
			continue
		}
		items = append(items, BatchItem{Code: code, Result: res})
	}
	return items
}

// SectorSource 热门板块扫描
type SectorSource interface {
	Scan(ctx context.Context, sectors, perSector int) (*collector.ScanResult, error)
}

// SectorPick 板块扫描中的单只股票
type SectorPick struct {
	model.SectorStock
	Snapshot       model.QuoteSnapshot  `json:"snapshot"`
	ChangePercent  float64              `json:"change_percent"`
	Classification model.Classification `json:"classification"`
}

// SectorReport 板块扫描结果，Filtered 只含可操作图形
type SectorReport struct {
	Sectors  []model.Sector `json:"sectors"`
	All      []SectorPick   `json:"all_stocks"`
	Filtered []SectorPick   `json:"filtered_stocks"`
	ScanTime time.Time      `json:"scan_time"`
}

// ScanSectors 扫描热门板块成分股并逐只分类
func (a *Analyzer) ScanSectors(ctx context.Context, src SectorSource, sectors, perSector int) (*SectorReport, error) {
	scan, err := src.Scan(ctx, sectors, perSector)
	if err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(scan.Stocks))
	for _, s := range scan.Stocks {
		codes = append(codes, s.Code)
	}
	quotes, err := collector.FetchRealtime(ctx, a.quotes, codes, a.concurrency)
	if err != nil {
		return nil, fmt.Errorf("获取成分股行情失败: %w", err)
	}
	byCode := make(map[string]model.QuoteSnapshot, len(quotes))
	for _, q := range quotes {
		byCode[q.Code] = q
	}

	report := &SectorReport{Sectors: scan.Sectors, ScanTime: scan.ScanTime}
	for _, s := range scan.Stocks {
		q, ok := byCode[s.Code]
		if !ok {
			continue
		}
		q.SectorName = s.SectorName
		q.SectorChange = s.SectorChange
		pick := SectorPick{
			SectorStock:    s,
			Snapshot:       q,
			ChangePercent:  roundPct(q.ChangePercent()),
			Classification: Classify(q, ""),
		}
		report.All = append(report.All, pick)
		if pick.Classification.Pattern.IsActionable() {
			report.Filtered = append(report.Filtered, pick)
		}
	}
	return report, nil
}

func (a *Analyzer) attachIndex(ctx context.Context, d *model.MonitorData) {
	if a.index == nil {
		return
	}
	idx, err := a.index.FetchIndex(ctx, a.indexSymbol)
	if err != nil {
		log.Debug().Str("symbol", a.indexSymbol).Err(err).Msg("获取大盘指数失败")
		return
	}
	d.IndexName = idx.Name
	d.IndexChange = idx.ChangePercent
}

// chat 异步调用大模型，调用方取消时立即返回
func chat(ctx context.Context, p llm.Provider, text string) (string, error) {
	select {
	case res := <-llm.Async(ctx, p, prompt.SystemPrompt(), text):
		if res.Err == nil && strings.TrimSpace(res.Text) == "" {
			return "", errors.New("大模型返回空内容")
		}
		return res.Text, res.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func displayCode(code string) string {
	if strings.IndexFunc(code, func(r rune) bool { return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' }) >= 0 {
		return strings.ToUpper(code)
	}
	return code
}
