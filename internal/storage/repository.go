package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"salesdash/internal/core"

	_ "modernc.org/sqlite"
)

const transactionColumns = `id, title, description, price, category, sold, date_of_sale, image`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// dsn enables WAL and a busy timeout so a seed reload does not fail
// concurrent readers with SQLITE_BUSY.
func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping implements txstore.Pinger
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Find implements txstore.Finder
func (r *SQLiteRepository) Find(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	where, args := whereClause(f)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions (month=%d): %w", f.Month, err)
	}
	return scanTransactions(rows)
}

// Count implements txstore.Pager
func (r *SQLiteRepository) Count(ctx context.Context, f core.Filter) (int, error) {
	where, args := whereClause(f)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions (month=%d): %w", f.Month, err)
	}
	return n, nil
}

// FindPage implements txstore.Pager
func (r *SQLiteRepository) FindPage(ctx context.Context, f core.Filter, offset, limit int) ([]core.Transaction, error) {
	if offset < 0 || limit <= 0 {
		return []core.Transaction{}, nil
	}
	where, args := whereClause(f)
	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE `+where+` ORDER BY seq LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions page (month=%d, offset=%d): %w", f.Month, offset, err)
	}
	return scanTransactions(rows)
}

// ReplaceAll implements txstore.Replacer. The delete and the inserts share
// one SQL transaction, so readers see either the old or the new dataset.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, ts []core.Transaction) (err error) {
	for _, t := range ts {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("validate transaction %q: %w", t.ID, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("delete transactions: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM sqlite_sequence WHERE name = 'transactions'`); err != nil {
		return fmt.Errorf("reset transaction sequence: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions
		(id, title, description, price, price_text, category, sold, date_of_sale, sale_month, image, title_folded, description_folded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	fold := cases.Fold()
	for _, t := range ts {
		_, err = stmt.ExecContext(ctx,
			t.ID,
			t.Title,
			t.Description,
			t.Price,
			core.PriceString(t.Price),
			t.Category,
			t.Sold,
			t.DateOfSale.UTC().Format(time.RFC3339Nano),
			int(t.SaleMonth()),
			t.Image,
			fold.String(t.Title),
			fold.String(t.Description),
		)
		if err != nil {
			return fmt.Errorf("insert transaction %q: %w", t.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}

	slog.InfoContext(ctx, "Transactions replaced in SQLite", "count", len(ts))
	return nil
}

// whereClause translates a filter into SQL. It must select exactly what
// core.Filter.Matches selects: the folded columns and price_text are
// written with the same folding and formatting the filter uses.
func whereClause(f core.Filter) (string, []any) {
	var b strings.Builder
	args := []any{int(f.Month)}
	b.WriteString(`sale_month = ?`)
	if f.SoldOnly {
		b.WriteString(` AND sold = 1`)
	}
	if f.HasSearch() {
		needle := cases.Fold().String(f.Search)
		b.WriteString(` AND (instr(title_folded, ?) > 0 OR instr(description_folded, ?) > 0 OR instr(price_text, ?) > 0)`)
		args = append(args, needle, needle, f.Search)
	}
	return b.String(), args
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var (
			t    core.Transaction
			date string
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Price, &t.Category, &t.Sold, &date, &t.Image); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339Nano, date)
		if err != nil {
			return nil, fmt.Errorf("parse date of sale %q: %w", date, err)
		}
		t.DateOfSale = parsed
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
