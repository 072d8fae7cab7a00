package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/log"

	_ "modernc.org/sqlite"
)

// DefaultBusyTimeout is how long a connection waits on a locked database file.
const DefaultBusyTimeout = 5 * time.Second

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a SQLiteRepository.
type Option func(*repoOptions)

type repoOptions struct {
	busyTimeout time.Duration
	now         func() time.Time
}

// WithBusyTimeout sets the SQLite busy timeout applied to every connection.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *repoOptions) { o.busyTimeout = d }
}

// WithClock overrides the clock used for created_at.
func WithClock(now func() time.Time) Option {
	return func(o *repoOptions) { o.now = now }
}

// DSN builds the modernc connection string for the database file at path.
func DSN(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		path, busyTimeout.Milliseconds())
}

// NewSQLiteRepository opens (creating if needed) the database file at dbPath
// and migrates its schema to the latest version.
func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	o := repoOptions{busyTimeout: DefaultBusyTimeout, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, &core.StorageError{Op: "create db directory", Err: err}
	}

	dsn := DSN(dbPath, o.busyTimeout)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &core.StorageError{Op: "open sqlite database", Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &core.StorageError{Op: "ping database", Err: err}
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, &core.StorageError{Op: "migrate schema", Err: err}
	}

	return &SQLiteRepository{db: db, now: o.now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping verifies the database file is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return &core.StorageError{Op: "ping database", Err: err}
	}
	return nil
}

// Add validates and persists t, returning the id assigned by the database.
func (r *SQLiteRepository) Add(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, insertTransactionSQL,
		t.Kind.String(),
		t.Amount.Cents,
		t.Description,
		t.Date.String(),
		r.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, &core.StorageError{Op: "insert transaction", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &core.StorageError{Op: "read inserted id", Err: err}
	}

	logger(ctx).InfoContext(ctx, "Transaction saved to SQLite",
		log.NewFields().WithOperation(log.OpCreate).WithTransaction(id, t.Kind.String(), t.Amount.Cents, t.Date.String()).ToSlice()...)

	return id, nil
}

// Update replaces every mutable field of the transaction with id t.ID.
func (r *SQLiteRepository) Update(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, updateTransactionSQL,
		t.Kind.String(),
		t.Amount.Cents,
		t.Description,
		t.Date.String(),
		t.ID,
	)
	if err != nil {
		return &core.StorageError{Op: "update transaction", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &core.StorageError{Op: "read affected rows", Err: err}
	}
	if n == 0 {
		return core.ErrNotFound
	}

	logger(ctx).InfoContext(ctx, "Transaction updated", log.FieldTxID, t.ID, log.FieldDate, t.Date.String())
	return nil
}

// Delete removes the transaction with the given id. Deleting a missing id is not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteTransactionSQL, id)
	if err != nil {
		return &core.StorageError{Op: "delete transaction", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		logger(ctx).DebugContext(ctx, "Delete of missing transaction ignored", log.FieldTxID, id)
		return nil
	}

	logger(ctx).InfoContext(ctx, "Transaction deleted", log.FieldTxID, id)
	return nil
}

// Get returns a single transaction, or core.ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx, getTransactionSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, &core.StorageError{Op: "get transaction", Err: err}
	}
	return t, nil
}

// ListForMonth returns the month's transactions, most recent date first.
func (r *SQLiteRepository) ListForMonth(ctx context.Context, ym core.YearMonth) ([]core.Transaction, error) {
	if err := ym.Validate(); err != nil {
		return nil, err
	}
	first, last := ym.Bounds()

	rows, err := r.db.QueryContext(ctx, listTransactionsByRangeSQL, first.String(), last.String())
	if err != nil {
		return nil, &core.StorageError{Op: "list transactions", Err: err}
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, &core.StorageError{Op: "scan transaction", Err: err}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Op: "iterate transactions", Err: err}
	}
	return out, nil
}

// TotalsForMonth sums income and expense for the month; an empty month yields zeros.
func (r *SQLiteRepository) TotalsForMonth(ctx context.Context, ym core.YearMonth) (core.MonthTotals, error) {
	totals := core.MonthTotals{Month: ym}
	if err := ym.Validate(); err != nil {
		return totals, err
	}
	first, last := ym.Bounds()

	err := r.db.QueryRowContext(ctx, totalsByRangeSQL, first.String(), last.String()).
		Scan(&totals.Income.Cents, &totals.Expense.Cents)
	if err != nil {
		return totals, &core.StorageError{Op: "sum month totals", Err: err}
	}
	return totals, nil
}

func logger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentStorage)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		kind      string
		date      string
		createdAt string
	)
	if err := row.Scan(&t.ID, &kind, &t.Amount.Cents, &t.Description, &date, &createdAt); err != nil {
		return core.Transaction{}, err
	}
	t.Kind = core.Kind(kind)

	d, err := time.Parse(core.DateLayout, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q of transaction %d: %w", date, t.ID, err)
	}
	t.Date = core.Date{Time: d}

	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		t.CreatedAt = ts
	}
	return t, nil
}
