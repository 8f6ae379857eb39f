// pkg/model/watchlist.go
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WatchItem 监控清单条目：股票代码 + 需要检测的图形
type WatchItem struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(20);not null;uniqueIndex" json:"code"`
	Patterns  string    `gorm:"type:varchar(100);not null" json:"-"` // 逗号分隔
	Note      string    `gorm:"type:text" json:"note"`
	Enabled   bool      `gorm:"not null;index" json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关键价位，扫描时覆盖按实时价估算的默认值。破位下跌依赖这些价位
	MA5                 *float64 `json:"ma5,omitempty"`
	MA20                *float64 `json:"ma20,omitempty"`
	SupportPrice        *float64 `json:"support_price,omitempty"`
	VolumeAmplification *float64 `json:"volume_amplification,omitempty"`
}

func (w *WatchItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}

func (WatchItem) TableName() string {
	return "watch_items"
}

// PatternList 解析监控图形列表，跳过无法识别的项
func (w WatchItem) PatternList() []PatternType {
	var out []PatternType
	for _, s := range strings.Split(w.Patterns, ",") {
		p, err := ParsePatternType(strings.TrimSpace(s))
		if err != nil || !p.IsActionable() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// HasKeyLevels 是否设置了均线或支撑位
func (w WatchItem) HasKeyLevels() bool {
	return w.MA5 != nil || w.MA20 != nil || w.SupportPrice != nil
}

// Overrides 扫描时使用的监控参数
func (w WatchItem) Overrides() MonitorOverrides {
	return MonitorOverrides{
		MA5:                 w.MA5,
		MA20:                w.MA20,
		SupportPrice:        w.SupportPrice,
		VolumeAmplification: w.VolumeAmplification,
	}
}

// SetPatterns 写入监控图形列表
func (w *WatchItem) SetPatterns(patterns []PatternType) {
	parts := make([]string, 0, len(patterns))
	for _, p := range patterns {
		parts = append(parts, string(p))
	}
	w.Patterns = strings.Join(parts, ",")
}
