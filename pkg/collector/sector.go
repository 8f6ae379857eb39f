package collector

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"PatternRadar/pkg/model"
)

// SectorScanner 东方财富热门板块及成分股
type SectorScanner struct {
	listURL string
	client  *http.Client
}

// ScanResult 扫描结果
type ScanResult struct {
	Sectors  []model.Sector      `json:"sectors"`
	Stocks   []model.SectorStock `json:"stocks"`
	ScanTime time.Time           `json:"scan_time"`
}

// NewSectorScanner 创建板块扫描器
func NewSectorScanner(listURL string, timeout time.Duration) *SectorScanner {
	if listURL == "" {
		listURL = defaultEastMoneyListURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SectorScanner{listURL: listURL, client: &http.Client{Timeout: timeout}}
}

// HotSectors 按成交额排序的前 n 个板块
func (s *SectorScanner) HotSectors(ctx context.Context, n int) ([]model.Sector, error) {
	diff, err := s.list(ctx, "m:90+t:2", "f6", "f12,f14,f2,f3,f6", n)
	if err != nil {
		return nil, fmt.Errorf("获取热门板块失败: %w", err)
	}

	sectors := make([]model.Sector, 0, len(diff))
	for _, v := range diff {
		sectors = append(sectors, model.Sector{
			Code:          v.Get("f12").String(),
			Name:          v.Get("f14").String(),
			ChangePercent: round2(v.Get("f3").Float()),
			Amount:        v.Get("f6").Float(),
		})
	}
	return sectors, nil
}

// Constituents 板块内按涨幅排序的前 n 只股票，排除 ST 与科创板
func (s *SectorScanner) Constituents(ctx context.Context, sectorCode string, n int) ([]model.SectorStock, error) {
	// 多取一些，过滤后截断
	diff, err := s.list(ctx, "b:"+sectorCode+"+f:!50", "f3", "f12,f14,f2,f3,f5,f6", n*3)
	if err != nil {
		return nil, fmt.Errorf("获取板块%s成分股失败: %w", sectorCode, err)
	}

	stocks := make([]model.SectorStock, 0, n)
	for _, v := range diff {
		code := v.Get("f12").String()
		name := v.Get("f14").String()
		if strings.Contains(strings.ToUpper(name), "ST") || strings.HasPrefix(code, "688") {
			continue
		}
		stocks = append(stocks, model.SectorStock{
			Code:          code,
			Name:          name,
			Current:       round2(v.Get("f2").Float()),
			ChangePercent: round2(v.Get("f3").Float()),
			Volume:        v.Get("f5").Int(),
			Amount:        v.Get("f6").Float(),
		})
		if len(stocks) >= n {
			break
		}
	}
	return stocks, nil
}

// Scan 扫描前 sectors 个热门板块，每个板块取 perSector 只成分股
// 单个板块成分股失败时跳过该板块
func (s *SectorScanner) Scan(ctx context.Context, sectors, perSector int) (*ScanResult, error) {
	hot, err := s.HotSectors(ctx, sectors)
	if err != nil {
		return nil, err
	}

	groups := make([][]model.SectorStock, len(hot))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, sector := range hot {
		g.Go(func() error {
			stocks, err := s.Constituents(gctx, sector.Code, perSector)
			if err != nil {
				return nil
			}
			for j := range stocks {
				stocks[j].SectorName = sector.Name
				stocks[j].SectorChange = sector.ChangePercent
			}
			groups[i] = stocks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &ScanResult{Sectors: hot, ScanTime: time.Now()}
	for _, stocks := range groups {
		result.Stocks = append(result.Stocks, stocks...)
	}
	return result, nil
}

func (s *SectorScanner) list(ctx context.Context, fs, fid, fields string, size int) ([]gjson.Result, error) {
	params := url.Values{}
	params.Set("pn", "1")
	params.Set("pz", strconv.Itoa(size))
	params.Set("po", "1")
	params.Set("np", "1")
	params.Set("fltt", "2")
	params.Set("invt", "2")
	params.Set("fid", fid)
	params.Set("fs", fs)
	params.Set("fields", fields)

	body, err := get(ctx, s.client, s.listURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("响应不是JSON: %w", ErrUnavailable)
	}
	root := gjson.ParseBytes(body)
	diff := root.Get("data.diff")
	if root.Get("rc").Int() != 0 || !diff.IsArray() {
		return nil, fmt.Errorf("无列表数据: %w", ErrUnavailable)
	}
	return diff.Array(), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
