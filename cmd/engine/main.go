package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/phuslu/log"

	"PatternRadar/pkg/app"
	"PatternRadar/pkg/config"
	"PatternRadar/pkg/logger"
	"PatternRadar/pkg/scheduler"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("加载配置失败")
	}
	logger.Setup(cfg.App.Env, cfg.App.LogLevel)
	log.Info().Msg("启动图形监控引擎...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{Storage: true, Events: true})
	if err != nil {
		log.Fatal().Err(err).Msg("初始化组件失败")
	}
	defer a.Close()

	sched := scheduler.NewScheduler(cfg.Schedule, a.Watchlist, a.Monitor)
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("启动调度器失败")
	}
	defer sched.Stop()

	a.Health.StartChecking(ctx, time.Minute)

	<-ctx.Done()
	log.Info().Msg("正在关闭图形监控引擎...")
}
