package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertRunSQL = `INSERT INTO runs (
        run_id,
        kind,
        window_size,
        snapshot_interval_seconds,
        lookback_seconds,
        input_rows,
        output_rows
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7
    );`

	listRecentStdevSQL = `SELECT
        run_id,
        security_id,
        snap_time,
        stdev_bid,
        stdev_mid,
        stdev_ask
    FROM stdev_results
    ORDER BY snap_time DESC, security_id
    LIMIT $1;`

	listRecentConversionsSQL = `SELECT
        run_id,
        ordinal,
        ccy_pair,
        ts,
        price,
        new_price,
        reason
    FROM conversion_results
    ORDER BY ts DESC, ordinal
    LIMIT $1;`
)

// RunStore records batch executions.
type RunStore interface {
	InsertRun(ctx context.Context, run RunRecord) error
}

// StdevResultStore persists and lists rolling stdev results.
type StdevResultStore interface {
	InsertStdevResults(ctx context.Context, rows []StdevRow) error
	ListRecentStdev(ctx context.Context, limit int) ([]StdevRow, error)
}

// ConversionResultStore persists and lists conversion results.
type ConversionResultStore interface {
	InsertConversionResults(ctx context.Context, rows []ConversionRow) error
	ListRecentConversions(ctx context.Context, limit int) ([]ConversionRow, error)
}

// Store aggregates access to runs and both result tables.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ RunStore              = (*Store)(nil)
	_ StdevResultStore      = (*Store)(nil)
	_ ConversionResultStore = (*Store)(nil)
)

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// InsertRun records one batch execution.
func (s *Store) InsertRun(ctx context.Context, run RunRecord) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, insertRunSQL,
		run.ID,
		run.Kind,
		run.WindowSize,
		int64(run.Interval/time.Second),
		int64(run.Lookback/time.Second),
		run.InputRows,
		run.OutputRows,
	)
	if execErr != nil {
		return fmt.Errorf("insert run: %w", execErr)
	}
	return nil
}

// InsertStdevResults bulk-loads stdev rows for a run.
func (s *Store) InsertStdevResults(ctx context.Context, rows []StdevRow) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	_, copyErr := pool.CopyFrom(ctx,
		pgx.Identifier{"stdev_results"},
		[]string{"run_id", "security_id", "snap_time", "stdev_bid", "stdev_mid", "stdev_ask"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			row := rows[i]
			return []any{row.RunID, row.SecurityID, row.SnapTime, row.StdevBid, row.StdevMid, row.StdevAsk}, nil
		}),
	)
	if copyErr != nil {
		return fmt.Errorf("copy stdev results: %w", copyErr)
	}
	return nil
}

// InsertConversionResults bulk-loads conversion rows for a run.
func (s *Store) InsertConversionResults(ctx context.Context, rows []ConversionRow) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	_, copyErr := pool.CopyFrom(ctx,
		pgx.Identifier{"conversion_results"},
		[]string{"run_id", "ordinal", "ccy_pair", "ts", "price", "new_price", "reason"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			row := rows[i]
			return []any{row.RunID, row.Ordinal, row.CcyPair, row.Timestamp, row.Price, row.NewPrice, row.Reason}, nil
		}),
	)
	if copyErr != nil {
		return fmt.Errorf("copy conversion results: %w", copyErr)
	}
	return nil
}

// ListRecentStdev lists the most recent stdev rows ordered by descending snap time.
func (s *Store) ListRecentStdev(ctx context.Context, limit int) ([]StdevRow, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentStdevSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent stdev: %w", queryErr)
	}
	defer rows.Close()

	return scanStdevRows(rows, limit)
}

// ListRecentConversions lists the most recent conversion rows.
func (s *Store) ListRecentConversions(ctx context.Context, limit int) ([]ConversionRow, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentConversionsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent conversions: %w", queryErr)
	}
	defer rows.Close()

	results := make([]ConversionRow, 0, limit)
	for rows.Next() {
		var row ConversionRow
		if err := rows.Scan(
			&row.RunID,
			&row.Ordinal,
			&row.CcyPair,
			&row.Timestamp,
			&row.Price,
			&row.NewPrice,
			&row.Reason,
		); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return results, nil
}

func scanStdevRows(rows pgx.Rows, sizeHint int) ([]StdevRow, error) {
	results := make([]StdevRow, 0, sizeHint)
	for rows.Next() {
		var row StdevRow
		if err := rows.Scan(
			&row.RunID,
			&row.SecurityID,
			&row.SnapTime,
			&row.StdevBid,
			&row.StdevMid,
			&row.StdevAsk,
		); err != nil {
			return nil, err
		}
		results = append(results, row)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return results, nil
}
