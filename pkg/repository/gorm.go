package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"PatternRadar/pkg/model"
)

// GormRepository 基于 gorm 的自选存储
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository 创建数据库仓库
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, item *model.WatchItem) error {
	if err := normalize(item); err != nil {
		return err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.WatchItem{}).Where("code = ?", item.Code).Count(&count).Error; err != nil {
		return fmt.Errorf("查询自选失败: %w", err)
	}
	if count > 0 {
		return ErrDuplicate
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("保存自选失败: %w", err)
	}
	return nil
}

func (r *GormRepository) Get(ctx context.Context, id string) (*model.WatchItem, error) {
	var item model.WatchItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("获取自选失败: %w", err)
	}
	return &item, nil
}

func (r *GormRepository) List(ctx context.Context) ([]model.WatchItem, error) {
	var items []model.WatchItem
	if err := r.db.WithContext(ctx).Order("code").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("查询自选失败: %w", err)
	}
	return items, nil
}

func (r *GormRepository) ListEnabled(ctx context.Context) ([]model.WatchItem, error) {
	var items []model.WatchItem
	err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("code").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("查询启用的自选失败: %w", err)
	}
	return items, nil
}

func (r *GormRepository) Update(ctx context.Context, item *model.WatchItem) error {
	if err := normalize(item); err != nil {
		return err
	}
	existing, err := r.Get(ctx, item.ID)
	if err != nil {
		return err
	}
	var count int64
	err = r.db.WithContext(ctx).Model(&model.WatchItem{}).
		Where("code = ? AND id <> ?", item.Code, item.ID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("查询自选失败: %w", err)
	}
	if count > 0 {
		return ErrDuplicate
	}
	item.CreatedAt = existing.CreatedAt
	// Select("*") 以便 enabled=false 也会写入
	if err := r.db.WithContext(ctx).Model(existing).Select("*").Updates(item).Error; err != nil {
		return fmt.Errorf("更新自选失败: %w", err)
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.WatchItem{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("删除自选失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
