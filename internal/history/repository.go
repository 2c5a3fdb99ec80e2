package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/wonny/quantedge/internal/contracts"
)

// DBTX is satisfied by *pgxpool.Pool and pgxmock pools
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository reads and writes daily closes in market.quote_history
// ⭐ SSOT: 종가 이력 저장소
type Repository struct {
	db DBTX
}

// NewRepository creates a repository
func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

const schemaSQL = `
	CREATE SCHEMA IF NOT EXISTS market;
	CREATE TABLE IF NOT EXISTS market.quote_history (
		symbol      TEXT          NOT NULL,
		trade_date  DATE          NOT NULL,
		close       NUMERIC(14,2) NOT NULL CHECK (close > 0),
		change_pct  DOUBLE PRECISION NOT NULL DEFAULT 0,
		recorded_at TIMESTAMPTZ   NOT NULL DEFAULT now(),
		PRIMARY KEY (symbol, trade_date)
	)`

// EnsureSchema creates the history table when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create quote_history: %w", err)
	}
	return nil
}

// RecordCloses upserts one close per quote for tradeDate in a single transaction.
// 가격 0 이하는 건너뜀
func (r *Repository) RecordCloses(ctx context.Context, tradeDate time.Time, quotes []contracts.Quote) (int, error) {
	if len(quotes) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO market.quote_history (symbol, trade_date, close, change_pct)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			close = EXCLUDED.close,
			change_pct = EXCLUDED.change_pct,
			recorded_at = now()`

	day := time.Date(tradeDate.Year(), tradeDate.Month(), tradeDate.Day(), 0, 0, 0, 0, time.UTC)

	written := 0
	for _, q := range quotes {
		if q.LastPrice <= 0 {
			continue
		}
		closePrice := decimal.NewFromFloat(q.LastPrice).Round(2)
		if _, err := tx.Exec(ctx, query, q.Symbol, day, closePrice, q.ChangePercent); err != nil {
			return 0, fmt.Errorf("failed to record close for %s: %w", q.Symbol, err)
		}
		written++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit closes: %w", err)
	}
	return written, nil
}

// Closes returns up to limit most recent closes for symbol, oldest first
func (r *Repository) Closes(ctx context.Context, symbol string, limit int) ([]float64, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", contracts.ErrInvalidArgument)
	}

	query := `
		SELECT close FROM (
			SELECT trade_date, close::float8 AS close
			FROM market.quote_history
			WHERE symbol = $1
			ORDER BY trade_date DESC
			LIMIT $2
		) recent
		ORDER BY trade_date ASC`

	rows, err := r.db.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query closes: %w", err)
	}
	defer rows.Close()

	closes := make([]float64, 0, limit)
	for rows.Next() {
		var c float64
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan close: %w", err)
		}
		closes = append(closes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read closes: %w", err)
	}

	return closes, nil
}
