// Package app 按配置组装各组件，供各个可执行程序共用
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/phuslu/log"
	"gorm.io/gorm"

	"PatternRadar/pkg/collector"
	"PatternRadar/pkg/config"
	"PatternRadar/pkg/database"
	"PatternRadar/pkg/engine"
	"PatternRadar/pkg/llm"
	"PatternRadar/pkg/messaging"
	"PatternRadar/pkg/monitor"
	"PatternRadar/pkg/prompt"
	"PatternRadar/pkg/repository"
)

// App 组装完成的组件
type App struct {
	Config      *config.Config
	Quotes      *collector.Chain
	Index       *collector.TencentClient
	Sectors     *collector.SectorScanner
	LLM         llm.Provider
	Scorer      *engine.ArchetypeScorer
	Analyzer    *engine.Analyzer
	Monitor     *engine.Monitor
	Recommender *engine.Recommender
	Watchlist   repository.WatchlistRepository
	Health      *monitor.Monitor

	db   *gorm.DB
	nats *messaging.NATSClient
}

// Options 可选组件开关
type Options struct {
	// Storage 打开自选存储
	Storage bool
	// Events 连接 NATS 与 webhook 发布触发事件
	Events bool
}

// New 根据配置创建全部组件；LLM 未配置密钥时仅记录警告
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	a := &App{Config: cfg, Health: monitor.NewMonitor(nil)}

	quotes, err := collector.New(cfg.DataSources)
	if err != nil {
		return nil, err
	}
	a.Quotes = quotes
	a.Index = collector.NewTencentClient(cfg.DataSources.Tencent.BaseURL, cfg.DataSources.Timeout)
	a.Sectors = collector.NewSectorScanner(cfg.DataSources.EastMoney.ListURL, cfg.DataSources.Timeout)
	a.Health.Register("collector", func(ctx context.Context) error {
		_, err := a.Index.FetchIndex(ctx, cfg.DataSources.IndexCode)
		return err
	})

	provider, err := llm.NewProvider(ctx, cfg.LLM)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		log.Warn().Str("provider", cfg.LLM.Provider).Msg("未配置AI密钥，将跳过AI分析")
		a.Health.Register("llm", nil)
	case err != nil:
		return nil, fmt.Errorf("创建大模型客户端失败: %w", err)
	default:
		a.LLM = provider
		a.Health.UpdateStatus("llm", monitor.StatusHealthy, provider.Name())
	}

	a.Scorer, err = loadScorer(cfg.Analysis.ScoringFile)
	if err != nil {
		return nil, err
	}

	var sink engine.EventSink
	if opts.Events {
		if sink, err = a.openSinks(cfg); err != nil {
			a.Close()
			return nil, err
		}
	}

	if opts.Storage {
		if err := a.openStorage(cfg.Database); err != nil {
			a.Close()
			return nil, err
		}
	}

	template, err := prompt.ParseTemplateType(cfg.Analysis.Template)
	if err != nil {
		a.Close()
		return nil, err
	}
	promptOpts := prompt.Options{
		TradingStyle:   cfg.Analysis.TradingStyle,
		PositionStatus: cfg.Analysis.PositionStatus,
		Template:       template,
	}

	var index collector.IndexProvider
	if cfg.DataSources.IndexCode != "" {
		index = a.Index
	}
	a.Analyzer = engine.NewAnalyzer(a.Quotes, engine.AnalyzerOptions{
		Index:       index,
		IndexSymbol: cfg.DataSources.IndexCode,
		LLM:         a.LLM,
		Scorer:      a.Scorer,
		Defaults:    cfg.Analysis.Defaults,
		Prompt:      promptOpts,
		BatchDelay:  cfg.Analysis.BatchDelay,
		Concurrency: cfg.Analysis.Concurrency,
	})

	// 盘中监控固定使用完整版模板
	promptOpts.Template = prompt.TemplateFull
	a.Monitor = engine.NewMonitor(a.Quotes, engine.MonitorOptions{
		Index:       index,
		IndexSymbol: cfg.DataSources.IndexCode,
		LLM:         a.LLM,
		Sink:        sink,
		Defaults:    cfg.Analysis.Defaults,
		Prompt:      promptOpts,
	})
	a.Recommender = engine.NewRecommender(a.Quotes, a.Scorer, cfg.Analysis.Concurrency)
	return a, nil
}

func (a *App) openStorage(cfg config.DatabaseConfig) error {
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if db == nil {
		a.Watchlist = repository.NewMemoryRepository()
		a.Health.Register("database", nil)
		return nil
	}
	a.db = db
	a.Watchlist = repository.NewGormRepository(db)
	a.Health.Register("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	return nil
}

func (a *App) openSinks(cfg *config.Config) (engine.EventSink, error) {
	var sinks messaging.MultiSink
	if cfg.NATS.Enabled() {
		nc, err := messaging.NewNATSClient(cfg.NATS)
		if err != nil {
			return nil, err
		}
		a.nats = nc
		sinks = append(sinks, nc)
		a.Health.Register("nats", nc.Ping)
	} else {
		a.Health.Register("nats", nil)
	}
	if cfg.Notify.WebhookURL != "" {
		sinks = append(sinks, messaging.NewWebhookNotifier(cfg.Notify))
	}
	if len(sinks) == 0 {
		return nil, nil
	}
	return sinks, nil
}

// NATS 已连接的 NATS 客户端，未启用时为 nil
func (a *App) NATS() *messaging.NATSClient { return a.nats }

// Close 释放数据库与消息连接
func (a *App) Close() {
	if a.nats != nil {
		a.nats.Close()
	}
	if err := database.Close(a.db); err != nil {
		log.Warn().Err(err).Msg("关闭数据库失败")
	}
}

func loadScorer(path string) (*engine.ArchetypeScorer, error) {
	if path == "" {
		return engine.NewArchetypeScorer(engine.DefaultScoringTables()), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取评分表失败: %w", err)
	}
	tables, err := engine.ParseScoringTables(data)
	if err != nil {
		return nil, err
	}
	log.Info().Str("file", path).Str("version", tables.Version).Msg("已加载评分表")
	return engine.NewArchetypeScorer(tables), nil
}
