package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternRadar/pkg/config"
	"PatternRadar/pkg/database"
	"PatternRadar/pkg/model"
)

func repositories(t *testing.T) map[string]WatchlistRepository {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite"})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	return map[string]WatchlistRepository{
		"memory": NewMemoryRepository(),
		"gorm":   NewGormRepository(db),
	}
}

func item(code string, patterns ...model.PatternType) *model.WatchItem {
	w := &model.WatchItem{Code: code, Enabled: true}
	w.SetPatterns(patterns)
	return w
}

func TestWatchlist_CRUD(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			w := item(" SH600000 ", model.PatternOpeningDive, model.PatternSurgeRetrace)
			require.NoError(t, repo.Create(ctx, w))
			assert.NotEmpty(t, w.ID)
			assert.Equal(t, "sh600000", w.Code)

			got, err := repo.Get(ctx, w.ID)
			require.NoError(t, err)
			assert.Equal(t, []model.PatternType{model.PatternOpeningDive, model.PatternSurgeRetrace}, got.PatternList())

			assert.ErrorIs(t, repo.Create(ctx, item("sh600000", model.PatternOpeningDive)), ErrDuplicate)

			brk := item("000001", model.PatternBreakdown)
			support := 9.8
			brk.SupportPrice = &support
			require.NoError(t, repo.Create(ctx, brk))

			got.Enabled = false
			got.Note = "观察"
			require.NoError(t, repo.Update(ctx, got))

			all, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "000001", all[0].Code)

			enabled, err := repo.ListEnabled(ctx)
			require.NoError(t, err)
			require.Len(t, enabled, 1)
			assert.Equal(t, "000001", enabled[0].Code)
			require.NotNil(t, enabled[0].SupportPrice)
			assert.Equal(t, 9.8, *enabled[0].SupportPrice)

			got, err = repo.Get(ctx, w.ID)
			require.NoError(t, err)
			assert.Equal(t, "观察", got.Note)
			assert.False(t, got.Enabled)

			require.NoError(t, repo.Delete(ctx, w.ID))
			_, err = repo.Get(ctx, w.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, repo.Delete(ctx, w.ID), ErrNotFound)
		})
	}
}

func TestWatchlist_Invalid(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, repo.Create(ctx, item("", model.PatternOpeningDive)), ErrInvalid)
			// 非可操作形态不能加入监控
			assert.ErrorIs(t, repo.Create(ctx, item("600000", model.PatternConsolidation)), ErrInvalid)

			// 破位下跌需要均线或支撑位
			assert.ErrorIs(t, repo.Create(ctx, item("600002", model.PatternOpeningDive, model.PatternBreakdown)), ErrInvalid)

			missing := item("600001", model.PatternOpeningDive)
			missing.ID = "nope"
			assert.ErrorIs(t, repo.Update(ctx, missing), ErrNotFound)
		})
	}
}
