package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"PatternRadar/pkg/model"
)

// MemoryRepository 内存存储，未配置数据库时使用
type MemoryRepository struct {
	items map[string]model.WatchItem
	mutex sync.RWMutex
	now   func() time.Time
}

// NewMemoryRepository 创建内存仓库
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[string]model.WatchItem),
		now:   time.Now,
	}
}

func (r *MemoryRepository) Create(_ context.Context, item *model.WatchItem) error {
	if err := normalize(item); err != nil {
		return err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, existing := range r.items {
		if existing.Code == item.Code {
			return ErrDuplicate
		}
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = r.now()
	item.UpdatedAt = item.CreatedAt
	r.items[item.ID] = *item
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*model.WatchItem, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]model.WatchItem, error) {
	return r.filter(func(model.WatchItem) bool { return true }), nil
}

func (r *MemoryRepository) ListEnabled(_ context.Context) ([]model.WatchItem, error) {
	return r.filter(func(w model.WatchItem) bool { return w.Enabled }), nil
}

func (r *MemoryRepository) Update(_ context.Context, item *model.WatchItem) error {
	if err := normalize(item); err != nil {
		return err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, ok := r.items[item.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range r.items {
		if id != item.ID && other.Code == item.Code {
			return ErrDuplicate
		}
	}
	// 保持创建时间不变
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = r.now()
	r.items[item.ID] = *item
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) filter(keep func(model.WatchItem) bool) []model.WatchItem {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]model.WatchItem, 0, len(r.items))
	for _, item := range r.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
