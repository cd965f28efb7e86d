package repository

import (
	"testing"
	"time"

	"github.com/smallbiznis/dukon/internal/catalog/domain"
	"github.com/smallbiznis/dukon/internal/clock"
	"github.com/smallbiznis/dukon/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRepo(t *testing.T) domain.Repository {
	t.Helper()
	st, err := store.New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return &repo{
		store: st,
		clock: clock.NewFakeClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		log:   zap.NewNop(),
	}
}

func TestCategoriesSeedsDefaultsOnce(t *testing.T) {
	r := newTestRepo(t)

	first := r.Categories()
	require.Len(t, first, 4)

	// Seeding is idempotent: a second read returns the persisted set.
	second := r.Categories()
	require.Equal(t, first, second)
}

func TestCategoriesSeedIsNoOpWhenNonEmpty(t *testing.T) {
	r := newTestRepo(t)
	custom := []domain.Category{{ID: 99, Name: "Custom"}}
	r.SaveCategories(custom)

	got := r.Categories()
	require.Len(t, got, 1)
	require.Equal(t, int64(99), got[0].ID)
}

func TestSettingsDefaultsWhenMissing(t *testing.T) {
	r := newTestRepo(t)

	settings := r.Settings()
	require.True(t, settings.NotifyNewOrder)
	require.True(t, settings.NotifyLowStock)
	require.NotEmpty(t, settings.WelcomeMessage)
}

func TestAddAdminPreventsDuplicates(t *testing.T) {
	r := newTestRepo(t)

	require.True(t, r.AddAdmin(42))
	require.False(t, r.AddAdmin(42))
	require.True(t, r.AddAdmin(7))

	require.ElementsMatch(t, []int64{42, 7}, r.Admins())
	require.True(t, r.IsAdmin(42))
	require.False(t, r.IsAdmin(1))
}

func TestDeleteProduct(t *testing.T) {
	r := newTestRepo(t)
	r.SaveProducts([]domain.Product{
		{ID: 1, Name: "one"},
		{ID: 2, Name: "two"},
	})

	deleted, err := r.DeleteProduct(1)
	require.NoError(t, err)
	require.Equal(t, "one", deleted.Name)

	remaining := r.Products()
	require.Len(t, remaining, 1)
	require.Equal(t, int64(2), remaining[0].ID)

	_, err = r.DeleteProduct(123)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFindProduct(t *testing.T) {
	r := newTestRepo(t)
	r.SaveProducts([]domain.Product{{ID: 5, Name: "five"}})

	p, ok := r.FindProduct(5)
	require.True(t, ok)
	require.Equal(t, "five", p.Name)

	_, ok = r.FindProduct(6)
	require.False(t, ok)
}
