package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// TrainingRow is one training_examples row, mirroring TrainingExample plus
// the decision label, for the optional Postgres training-data mirror.
type TrainingRow struct {
	ID        int64           `db:"id"`
	Ticker    string          `db:"ticker"`
	Features  json.RawMessage `db:"features"`
	Label     int             `db:"label"`
	CreatedAt time.Time       `db:"created_at"`
}

// PostgresMirror persists closed-and-decided trades' feature vectors for
// offline ML calibration. Adapted from the teacher's
// persistence/postgres/trades_repo.go insert/insert-batch shape; the
// exchange-native venue validation there has no counterpart here.
type PostgresMirror struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPostgresMirror builds a mirror over an already-connected db handle.
func NewPostgresMirror(db *sqlx.DB, timeout time.Duration) *PostgresMirror {
	return &PostgresMirror{db: db, timeout: timeout}
}

// InsertBatch writes examples atomically, skipping (not erroring on) any
// row that collides with an existing primary key.
func (m *PostgresMirror) InsertBatch(ctx context.Context, examples []TrainingExample) error {
	if len(examples) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout*time.Duration(len(examples)/100+1))
	defer cancel()

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin training mirror tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO training_examples (ticker, features, label)
		VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("prepare training mirror insert: %w", err)
	}
	defer stmt.Close()

	for _, ex := range examples {
		featuresJSON, err := json.Marshal(ex.Features)
		if err != nil {
			return fmt.Errorf("marshal features for %s: %w", ex.Ticker, err)
		}

		if _, err := stmt.ExecContext(ctx, ex.Ticker, featuresJSON, ex.Label); err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				continue
			}
			return fmt.Errorf("insert training example for %s: %w", ex.Ticker, err)
		}
	}

	return tx.Commit()
}
