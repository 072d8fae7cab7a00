package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bilancio/internal/core"

	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "test.db")
	repo, err := NewSQLiteRepository(path, WithClock(func() time.Time {
		return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func tx(kind core.Kind, cents int64, desc string, d core.Date) core.Transaction {
	return core.Transaction{Kind: kind, Amount: core.Money{Cents: cents}, Description: desc, Date: d}
}

func TestAddThenListForMonth(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	seen := map[int64]bool{}
	for i := 0; i < 3; i++ {
		id, err := repo.Add(ctx, tx(core.Expense, 500, "filler", core.NewDate(2025, 3, 1)))
		require.NoError(t, err)
		seen[id] = true
	}

	want := tx(core.Income, 123456, "salary", core.NewDate(2025, 3, 27))
	id, err := repo.Add(ctx, want)
	require.NoError(t, err)
	require.False(t, seen[id], "id %d reused", id)

	items, err := repo.ListForMonth(ctx, core.YearMonth{Year: 2025, Month: 3})
	require.NoError(t, err)
	require.Len(t, items, 4)

	var matches int
	for _, got := range items {
		if got.ID != id {
			continue
		}
		matches++
		require.Equal(t, want.Kind, got.Kind)
		require.Equal(t, want.Amount, got.Amount)
		require.Equal(t, want.Description, got.Description)
		require.Equal(t, want.Date.String(), got.Date.String())
		require.Equal(t, time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), got.CreatedAt)
	}
	require.Equal(t, 1, matches)
}

func TestListForMonthOrderAndBounds(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, d := range []core.Date{
		core.NewDate(2024, 1, 31),
		core.NewDate(2024, 2, 1),
		core.NewDate(2024, 2, 29),
		core.NewDate(2024, 2, 15),
		core.NewDate(2024, 3, 1),
	} {
		_, err := repo.Add(ctx, tx(core.Expense, 100, d.String(), d))
		require.NoError(t, err)
	}

	items, err := repo.ListForMonth(ctx, core.YearMonth{Year: 2024, Month: 2})
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "2024-02-29", items[0].Date.String())
	require.Equal(t, "2024-02-15", items[1].Date.String())
	require.Equal(t, "2024-02-01", items[2].Date.String())
}

func TestTotalsForMonth(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	totals, err := repo.TotalsForMonth(ctx, core.YearMonth{Year: 2024, Month: 6})
	require.NoError(t, err)
	require.Zero(t, totals.Income.Cents)
	require.Zero(t, totals.Expense.Cents)
	require.Zero(t, totals.Balance().Cents)

	_, err = repo.Add(ctx, tx(core.Income, 10000, "", core.NewDate(2024, 6, 3)))
	require.NoError(t, err)
	_, err = repo.Add(ctx, tx(core.Expense, 4000, "", core.NewDate(2024, 6, 20)))
	require.NoError(t, err)
	_, err = repo.Add(ctx, tx(core.Expense, 999, "next month", core.NewDate(2024, 7, 1)))
	require.NoError(t, err)

	totals, err = repo.TotalsForMonth(ctx, core.YearMonth{Year: 2024, Month: 6})
	require.NoError(t, err)
	require.Equal(t, int64(10000), totals.Income.Cents)
	require.Equal(t, int64(4000), totals.Expense.Cents)
	require.Equal(t, int64(6000), totals.Balance().Cents)

	totals, err = repo.TotalsForMonth(ctx, core.YearMonth{Year: 2024, Month: 7})
	require.NoError(t, err)
	require.Zero(t, totals.Income.Cents)
	require.Equal(t, int64(999), totals.Expense.Cents)
}

func TestAddRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.Add(ctx, tx(core.Expense, -5, "", core.NewDate(2024, 1, 1)))
	require.ErrorIs(t, err, core.ErrInvalidAmount)
	require.True(t, core.IsValidation(err))

	_, err = repo.Add(ctx, tx("gift", 5, "", core.NewDate(2024, 1, 1)))
	require.ErrorIs(t, err, core.ErrInvalidKind)

	items, err := repo.ListForMonth(ctx, core.YearMonth{Year: 2024, Month: 1})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestListForMonthRejectsInvalidMonth(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.ListForMonth(context.Background(), core.YearMonth{Year: 2024, Month: 13})
	require.ErrorIs(t, err, core.ErrInvalidMonth)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.Add(ctx, tx(core.Expense, 700, "coffee", core.NewDate(2024, 5, 5)))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))
	require.NoError(t, repo.Delete(ctx, id))
	require.NoError(t, repo.Delete(ctx, 424242))

	_, err = repo.Get(ctx, id)
	require.ErrorIs(t, err, core.ErrNotFound)

	// AUTOINCREMENT never hands out a deleted id again
	next, err := repo.Add(ctx, tx(core.Expense, 700, "coffee", core.NewDate(2024, 5, 5)))
	require.NoError(t, err)
	require.Greater(t, next, id)
}

func TestGetAndUpdate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.Add(ctx, tx(core.Expense, 1500, "books", core.NewDate(2024, 9, 9)))
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "books", got.Description)

	got.Kind = core.Income
	got.Amount = core.Money{Cents: 2000}
	got.Description = "sold books"
	got.Date = core.NewDate(2024, 10, 1)
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, core.Income, again.Kind)
	require.Equal(t, int64(2000), again.Amount.Cents)
	require.Equal(t, "2024-10-01", again.Date.String())

	got.ID = 9999
	require.ErrorIs(t, repo.Update(ctx, got), core.ErrNotFound)

	got.Amount = core.Money{}
	require.ErrorIs(t, repo.Update(ctx, got), core.ErrInvalidAmount)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "persist.db")

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	id, err := repo.Add(ctx, tx(core.Income, 100, "", core.NewDate(2024, 1, 1)))
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(100), got.Amount.Cents)
	require.NoError(t, repo.Ping(ctx))
}

func TestMigrationVersionAndDown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "migrate.db")
	dsn := DSN(path, time.Second)

	v, dirty, err := MigrationVersion(dsn)
	require.NoError(t, err)
	require.Zero(t, v)
	require.False(t, dirty)

	require.NoError(t, RunMigrations(dsn))
	require.NoError(t, RunMigrations(dsn))

	v, _, err = MigrationVersion(dsn)
	require.NoError(t, err)
	require.Equal(t, uint(1), v)

	require.NoError(t, MigrateDown(dsn))
	v, _, err = MigrationVersion(dsn)
	require.NoError(t, err)
	require.Zero(t, v)
}
