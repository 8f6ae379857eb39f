package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phuslu/log"

	"PatternRadar/pkg/app"
	"PatternRadar/pkg/config"
	"PatternRadar/pkg/engine"
	"PatternRadar/pkg/logger"
	"PatternRadar/pkg/model"
)

func main() {
	var (
		configPath = flag.String("config", config.GetDefaultConfigPath(), "配置文件路径")
		code       = flag.String("code", "", "单只股票代码")
		codes      = flag.String("codes", "", "批量分析，逗号分隔")
		pattern    = flag.String("pattern", "", "图形触发测试，如 opening_dive / breakdown / surge_retrace")
		recommend  = flag.String("recommend", "", "按筛选方式推荐（all/hot_money/retail/either/both），配合 -codes")
		sectors    = flag.Bool("sectors", false, "扫描热门板块")
		asJSON     = flag.Bool("json", false, "以 JSON 输出")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("加载配置失败")
	}
	logger.Setup(cfg.App.Env, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		log.Fatal().Err(err).Msg("初始化组件失败")
	}
	defer a.Close()

	out := printer{json: *asJSON}
	switch {
	case *pattern != "" && *code != "":
		err = testPattern(ctx, a, *code, *pattern, out)
	case *recommend != "":
		err = runRecommend(ctx, a, split(*codes), *recommend, out)
	case *sectors:
		err = runSectors(ctx, a, cfg, out)
	case *codes != "":
		for _, item := range a.Analyzer.BatchAnalyze(ctx, split(*codes)) {
			if item.Error != "" {
				fmt.Printf("%s: %s\n\n", item.Code, item.Error)
				continue
			}
			out.result(item.Result)
		}
	case *code != "":
		var res *model.AnalysisResult
		if res, err = a.Analyzer.AnalyzeStock(ctx, *code); err == nil {
			out.result(res)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Msg("执行失败")
		os.Exit(1)
	}
}

func testPattern(ctx context.Context, a *app.App, code, name string, out printer) error {
	p, err := model.ParsePatternType(name)
	if err != nil {
		return err
	}
	event, err := a.Monitor.AnalyzePattern(ctx, code, p, model.MonitorOverrides{})
	if errors.Is(err, engine.ErrNotTriggered) {
		fmt.Printf("%s 未触发%s规则\n", code, p)
		return nil
	}
	if err != nil {
		return err
	}
	if out.json {
		return out.dump(event)
	}
	fmt.Printf("%s %s 触发规则：%s\n\n", event.Code, event.Name, event.Rule)
	fmt.Println(event.Prompt)
	if event.AIAnalysis != "" {
		fmt.Printf("\nAI分析：\n%s\n", event.AIAnalysis)
	} else if event.Message != "" {
		fmt.Printf("\n%s\n", event.Message)
	}
	if event.Suggestion != nil {
		fmt.Printf("\n%s\n", engine.FormatSuggestion(*event.Suggestion))
	}
	return nil
}

func runRecommend(ctx context.Context, a *app.App, codes []string, filterName string, out printer) error {
	if len(codes) == 0 {
		return errors.New("推荐需要通过 -codes 指定股票池")
	}
	filter, err := engine.ParseRecommendFilter(filterName)
	if err != nil {
		return err
	}
	candidates, err := a.Recommender.Recommend(ctx, codes, filter)
	if err != nil {
		return err
	}
	if out.json {
		return out.dump(candidates)
	}
	for i, c := range candidates {
		fmt.Printf("%d. %s %s 综合%d分（游资%d / 散户%d）涨跌幅%.2f%% %s\n",
			i+1, c.Snapshot.Code, c.Snapshot.Name, c.Score, c.HotMoney.Score, c.Retail.Score,
			c.ChangePercent, c.Classification.Pattern)
	}
	return nil
}

func runSectors(ctx context.Context, a *app.App, cfg *config.Config, out printer) error {
	report, err := a.Analyzer.ScanSectors(ctx, a.Sectors, cfg.Schedule.SectorTop, cfg.Schedule.ConstituentsN)
	if err != nil {
		return err
	}
	if out.json {
		return out.dump(report)
	}
	for _, s := range report.Sectors {
		fmt.Printf("%s 涨跌幅%.2f%% 成交额%.0f亿\n", s.Name, s.ChangePercent, s.Amount/1e8)
	}
	fmt.Printf("\n可操作图形 %d/%d：\n", len(report.Filtered), len(report.All))
	for _, p := range report.Filtered {
		fmt.Printf("  %s %s [%s] %.2f%% %s\n", p.Code, p.Name, p.SectorName, p.ChangePercent, p.Classification.Pattern)
	}
	return nil
}

type printer struct {
	json bool
}

func (p printer) result(res *model.AnalysisResult) {
	if p.json {
		if err := p.dump(res); err != nil {
			log.Error().Err(err).Msg("输出失败")
		}
		return
	}
	s := res.Snapshot
	fmt.Printf("%s %s 现价%.2f 涨跌幅%.2f%%\n", s.Code, s.Name, s.Current, res.ChangePercent)
	fmt.Printf("图形：%s（置信度%d）%s\n", res.Classification.Pattern, res.Classification.Confidence, res.Classification.Reason)
	fmt.Printf("游资%d分 散户%d分\n", res.HotMoney.Score, res.Retail.Score)
	if res.Message != "" {
		fmt.Println(res.Message)
	}
	for _, tip := range res.Tips {
		fmt.Printf("  - %s\n", tip)
	}
	if res.AIAnalysis != "" {
		fmt.Printf("AI分析：%s\n", res.AIAnalysis)
	}
	if res.Suggestion != nil {
		fmt.Println(engine.FormatSuggestion(*res.Suggestion))
	}
	fmt.Println()
}

func (p printer) dump(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func split(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
