package sequence

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Row is the single-row query surface shared by *pgxpool.Pool and
// pgx.Tx. Binding the store to a transaction makes the counter bump
// atomic with the insert that consumes the number.
type Row interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore maintains one row per counter key and increments it with an
// upsert, so the advance is a single atomic statement:
//
//	INSERT ... ON CONFLICT (key) DO UPDATE SET value = value + 1 RETURNING value
type PGStore struct {
	db Row
}

// NewPGStore binds a store to a pool or open transaction.
func NewPGStore(db Row) *PGStore {
	return &PGStore{db: db}
}

// Next implements CounterStore.
func (s *PGStore) Next(ctx context.Context, key string) (int64, error) {
	const query = `
        INSERT INTO sequence_counters (key, value)
        VALUES ($1, 1)
        ON CONFLICT (key) DO UPDATE SET value = sequence_counters.value + 1
        RETURNING value`
	var value int64
	if err := s.db.QueryRow(ctx, query, key).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}
