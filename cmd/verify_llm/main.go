package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/phuslu/log"

	"PatternRadar/pkg/config"
	"PatternRadar/pkg/engine"
	"PatternRadar/pkg/llm"
	"PatternRadar/pkg/logger"
	"PatternRadar/pkg/model"
	"PatternRadar/pkg/prompt"
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
	log.Info().Str("provider", cfg.LLM.Provider).Msg("开始验证大模型接入...")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	provider, err := llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		log.Fatal().Err(err).Msg("创建大模型客户端失败")
	}

	ok := testSimpleQuestion(ctx, provider)
	ok = testPatternPrompt(ctx, provider) && ok
	if !ok {
		os.Exit(1)
	}
	log.Info().Msg("大模型验证完成")
}

func testSimpleQuestion(ctx context.Context, p llm.Provider) bool {
	log.Info().Msg("测试简单问题...")
	response, err := p.Chat(ctx, "你是人工智能助手。", "用一句话解释什么是涨停板。")
	if err != nil {
		log.Error().Err(err).Msg("测试失败")
		return false
	}
	printResult("简单问题测试结果", response)
	return true
}

// testPatternPrompt 以开盘跳水样例走一遍完整提示词
func testPatternPrompt(ctx context.Context, p llm.Provider) bool {
	log.Info().Msg("测试图形研判...")
	q := model.QuoteSnapshot{
		Code: "600000", Name: "浦发银行",
		Open: 10.5, Current: 10.17, High: 10.5, Low: 10.1, PrevClose: 10.5,
	}
	now := time.Date(2026, 3, 10, 9, 35, 0, 0, engine.ChinaTZ)
	d := engine.Enrich(q, model.MonitorOverrides{}, model.DefaultMonitorDefaults(), now)

	text, err := prompt.Generate(engine.PromptFieldsFor(model.PatternOpeningDive, d), prompt.DefaultOptions())
	if err != nil {
		log.Error().Err(err).Msg("生成提示词失败")
		return false
	}
	response, err := p.Chat(ctx, prompt.SystemPrompt(), text)
	if err != nil {
		log.Error().Err(err).Msg("测试失败")
		return false
	}
	printResult("图形研判测试结果", response)
	return true
}

func printResult(title, body string) {
	fmt.Printf("\n===== %s =====\n%s\n===========================\n\n", title, body)
}
