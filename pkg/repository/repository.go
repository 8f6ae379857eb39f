package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"PatternRadar/pkg/model"
)

// ErrNotFound 自选条目不存在
var ErrNotFound = errors.New("自选条目不存在")

// ErrDuplicate 股票已在自选中
var ErrDuplicate = errors.New("股票已在自选中")

// ErrInvalid 自选条目不合法
var ErrInvalid = errors.New("自选条目不合法")

// WatchlistRepository 监控清单存储
type WatchlistRepository interface {
	Create(ctx context.Context, item *model.WatchItem) error
	Get(ctx context.Context, id string) (*model.WatchItem, error)
	List(ctx context.Context) ([]model.WatchItem, error)
	ListEnabled(ctx context.Context) ([]model.WatchItem, error)
	Update(ctx context.Context, item *model.WatchItem) error
	Delete(ctx context.Context, id string) error
}

func normalize(item *model.WatchItem) error {
	item.Code = strings.ToLower(strings.TrimSpace(item.Code))
	if item.Code == "" {
		return fmt.Errorf("%w: 股票代码不能为空", ErrInvalid)
	}
	patterns := item.PatternList()
	if len(patterns) == 0 {
		return fmt.Errorf("%w: 至少需要一个可监控的图形", ErrInvalid)
	}
	// 没有均线和支撑位时，默认估算值永远低于实时价，破位规则无法成立
	if slices.Contains(patterns, model.PatternBreakdown) && !item.HasKeyLevels() {
		return fmt.Errorf("%w: 监控破位下跌需要设置均线或支撑位", ErrInvalid)
	}
	return nil
}
