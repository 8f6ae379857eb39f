package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/phuslu/log"

	"PatternRadar/pkg/config"
	"PatternRadar/pkg/model"
)

// Chain 按优先级依次尝试多个数据源，首个成功者返回
type Chain struct {
	providers []QuoteProvider
}

// NewChain 创建回退链
func NewChain(providers ...QuoteProvider) *Chain {
	return &Chain{providers: providers}
}

// Name 数据源名称
func (c *Chain) Name() string { return "chain" }

// FetchQuote 依次尝试各数据源
func (c *Chain) FetchQuote(ctx context.Context, code string) (*model.QuoteSnapshot, error) {
	var errs []error
	for _, p := range c.providers {
		q, err := p.FetchQuote(ctx, code)
		if err == nil {
			return q, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Str("source", p.Name()).Str("code", code).Err(err).Msg("数据源获取失败，尝试下一个")
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("所有数据源均失败(%s): %w", code, errors.Join(append([]error{ErrUnavailable}, errs...)...))
}

// New 按配置顺序组装行情回退链
func New(cfg config.DataSourcesConfig) (*Chain, error) {
	order := cfg.Order
	if len(order) == 0 {
		order = []string{"tencent", "eastmoney"}
	}

	var providers []QuoteProvider
	for _, name := range order {
		switch name {
		case "tencent":
			providers = append(providers, NewTencentClient(cfg.Tencent.BaseURL, cfg.Timeout))
		case "eastmoney":
			providers = append(providers, NewEastMoneyClient(cfg.EastMoney.QuoteURL, cfg.Timeout))
		default:
			return nil, fmt.Errorf("未知数据源: %s", name)
		}
	}
	return NewChain(providers...), nil
}
