package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/phuslu/log"

	"PatternRadar/pkg/api"
	"PatternRadar/pkg/app"
	"PatternRadar/pkg/config"
	"PatternRadar/pkg/logger"
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
	log.Info().Str("config", configPath).Msg("启动API服务...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{Storage: true, Events: true})
	if err != nil {
		log.Fatal().Err(err).Msg("初始化组件失败")
	}
	defer a.Close()

	handlers := api.NewHandlers(api.Deps{
		Quotes:        a.Quotes,
		Analyzer:      a.Analyzer,
		Monitor:       a.Monitor,
		Recommender:   a.Recommender,
		Sectors:       a.Sectors,
		Watchlist:     a.Watchlist,
		Health:        a.Health,
		SectorTop:     cfg.Schedule.SectorTop,
		ConstituentsN: cfg.Schedule.ConstituentsN,
		Concurrency:   cfg.Analysis.Concurrency,
	})

	server := api.NewServer(cfg)
	server.SetupRoutes(handlers)
	if err := server.Start(ctx); err != nil {
		log.Error().Err(err).Msg("API服务异常退出")
	}
}
