package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"PatternRadar/pkg/config"
	"PatternRadar/pkg/engine"
	"PatternRadar/pkg/model"
	"PatternRadar/pkg/repository"
)

// Detector 盘中检测与触发流程，由 engine.Monitor 实现
type Detector interface {
	BatchDetect(ctx context.Context, codes []string, patterns []model.PatternType, o model.MonitorOverrides) []model.Detection
	Handle(ctx context.Context, d model.Detection) (*model.TriggerEvent, error)
}

// SweepReport 一次扫描的结果
type SweepReport struct {
	StartedAt time.Time         `json:"started_at"`
	Skipped   bool              `json:"skipped"`
	Items     int               `json:"items"`
	Hits      []model.Detection `json:"hits"`
	Triggered int               `json:"triggered"`
}

// Scheduler 任务调度器：按 cron 表达式扫描自选清单
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.ScheduleConfig
	repo     repository.WatchlistRepository
	detector Detector
	now      func() time.Time

	mu      sync.Mutex
	running bool
	last    *SweepReport
}

// NewScheduler 创建任务调度器
func NewScheduler(cfg config.ScheduleConfig, repo repository.WatchlistRepository, detector Detector) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds(), cron.WithLocation(engine.ChinaTZ)),
		cfg:      cfg,
		repo:     repo,
		detector: detector,
		now:      time.Now,
	}
}

// Start 注册扫描任务并启动调度器
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.Spec, func() {
		if _, err := s.Sweep(ctx); err != nil {
			log.Error().Err(err).Msg("自选扫描失败")
		}
	})
	if err != nil {
		return fmt.Errorf("注册扫描任务失败: %w", err)
	}
	s.cron.Start()
	log.Info().Str("spec", s.cfg.Spec).Bool("trading_only", s.cfg.TradingOnly).Msg("调度器已启动")
	return nil
}

// Stop 停止调度器并等待正在执行的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Last 最近一次扫描结果
func (s *Scheduler) Last() *SweepReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Sweep 扫描启用的自选条目，上一轮未结束时跳过本轮
func (s *Scheduler) Sweep(ctx context.Context) (*SweepReport, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return &SweepReport{StartedAt: s.now(), Skipped: true}, nil
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	report := &SweepReport{StartedAt: s.now()}
	if s.cfg.TradingOnly && !engine.InTradingSession(report.StartedAt) {
		report.Skipped = true
		return report, nil
	}

	items, err := s.repo.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载自选清单失败: %w", err)
	}
	report.Items = len(items)

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		hits := s.detector.BatchDetect(ctx, []string{item.Code}, item.PatternList(), item.Overrides())
		report.Hits = append(report.Hits, hits...)
		if !s.cfg.AnalyzeOnHit {
			continue
		}
		for _, hit := range hits {
			if _, err := s.detector.Handle(ctx, hit); err != nil {
				log.Warn().Str("code", hit.Code).Str("pattern", string(hit.Pattern)).Err(err).Msg("触发流程失败")
				continue
			}
			report.Triggered++
		}
	}

	log.Info().Int("items", report.Items).Int("hits", len(report.Hits)).Int("triggered", report.Triggered).Msg("自选扫描完成")

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()
	return report, nil
}
