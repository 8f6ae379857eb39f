package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"PatternRadar/pkg/model"
)

// ErrUnavailable 数据源无法返回该股票的行情
var ErrUnavailable = errors.New("行情数据不可用")

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// QuoteProvider 实时行情获取接口
type QuoteProvider interface {
	Name() string
	FetchQuote(ctx context.Context, code string) (*model.QuoteSnapshot, error)
}

// IndexProvider 大盘指数获取接口
type IndexProvider interface {
	FetchIndex(ctx context.Context, symbol string) (*model.IndexQuote, error)
}

// FetchRealtime 并发获取多只股票行情，失败的代码跳过，结果与入参顺序一致
func FetchRealtime(ctx context.Context, p QuoteProvider, codes []string, limit int) ([]model.QuoteSnapshot, error) {
	quotes := make([]*model.QuoteSnapshot, len(codes))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, code := range codes {
		g.Go(func() error {
			q, err := p.FetchQuote(gctx, code)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			}
			quotes[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.QuoteSnapshot, 0, len(codes))
	for _, q := range quotes {
		if q != nil {
			out = append(out, *q)
		}
	}
	return out, nil
}

// IndexSymbol 由指数名称得到腾讯指数代码，默认上证指数
func IndexSymbol(name string) string {
	switch {
	case strings.Contains(name, "深证"):
		return "sz399001"
	case strings.Contains(name, "创业"):
		return "sz399006"
	case strings.Contains(name, "沪深300"):
		return "sh000300"
	}
	return "sh000001"
}

func get(ctx context.Context, client *http.Client, url string, header map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("执行HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API返回非200状态码: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	return body, nil
}
