package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"PatternRadar/pkg/model"
)

// WatchItemRequest 自选条目请求，enabled 缺省为 true
type WatchItemRequest struct {
	Code     string   `json:"code" binding:"required,max=20"`
	Patterns []string `json:"patterns" binding:"required,min=1"`
	Note     string   `json:"note"`
	Enabled  *bool    `json:"enabled"`

	MA5                 *float64 `json:"ma5" binding:"omitempty,gt=0"`
	MA20                *float64 `json:"ma20" binding:"omitempty,gt=0"`
	SupportPrice        *float64 `json:"support_price" binding:"omitempty,gt=0"`
	VolumeAmplification *float64 `json:"volume_amplification" binding:"omitempty,gte=0"`
}

type watchItemView struct {
	model.WatchItem
	Patterns []model.PatternType `json:"patterns"`
}

func view(w model.WatchItem) watchItemView {
	return watchItemView{WatchItem: w, Patterns: w.PatternList()}
}

func (r WatchItemRequest) apply(w *model.WatchItem, patterns []model.PatternType) {
	w.Code = r.Code
	w.Note = r.Note
	w.Enabled = r.Enabled == nil || *r.Enabled
	w.MA5 = r.MA5
	w.MA20 = r.MA20
	w.SupportPrice = r.SupportPrice
	w.VolumeAmplification = r.VolumeAmplification
	w.SetPatterns(patterns)
}

// ListWatchlist 列出自选清单
func (h *Handlers) ListWatchlist(c *gin.Context) {
	items, err := h.Watchlist.List(c.Request.Context())
	if err != nil {
		writeError(c, "获取自选失败", err)
		return
	}
	out := make([]watchItemView, 0, len(items))
	for _, w := range items {
		out = append(out, view(w))
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// CreateWatchItem 加入自选
func (h *Handlers) CreateWatchItem(c *gin.Context) {
	var req WatchItemRequest
	if !bind(c, &req) {
		return
	}
	patterns, err := parsePatterns(req.Patterns)
	if err != nil {
		writeError(c, "图形类型无效", err)
		return
	}
	var item model.WatchItem
	req.apply(&item, patterns)
	if err := h.Watchlist.Create(c.Request.Context(), &item); err != nil {
		writeError(c, "保存自选失败", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": view(item)})
}

// GetWatchItem 获取自选条目
func (h *Handlers) GetWatchItem(c *gin.Context) {
	item, err := h.Watchlist.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "获取自选失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view(*item)})
}

// UpdateWatchItem 更新自选条目
func (h *Handlers) UpdateWatchItem(c *gin.Context) {
	var req WatchItemRequest
	if !bind(c, &req) {
		return
	}
	patterns, err := parsePatterns(req.Patterns)
	if err != nil {
		writeError(c, "图形类型无效", err)
		return
	}
	item, err := h.Watchlist.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "获取自选失败", err)
		return
	}
	req.apply(item, patterns)
	if err := h.Watchlist.Update(c.Request.Context(), item); err != nil {
		writeError(c, "更新自选失败", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view(*item)})
}

// DeleteWatchItem 删除自选条目
func (h *Handlers) DeleteWatchItem(c *gin.Context) {
	if err := h.Watchlist.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, "删除自选失败", err)
		return
	}
	c.Status(http.StatusNoContent)
}
