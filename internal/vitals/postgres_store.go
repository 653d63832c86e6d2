package vitals

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is the subset of *pgxpool.Pool the store uses.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore stores readings in the vitals_readings table.
type PostgresStore struct {
	db pgxQuerier
}

// NewPostgresStore initializes a store backed by a pgx pool.
func NewPostgresStore(db pgxQuerier) *PostgresStore {
	if db == nil {
		panic("vitals: pgx pool required")
	}
	return &PostgresStore{db: db}
}

// Put inserts a new row.
func (s *PostgresStore) Put(ctx context.Context, r *Reading) error {
	if err := prepare(r); err != nil {
		return err
	}

	query := `
		INSERT INTO vitals_readings (id, user_id, recorded_at, systolic, diastolic, heart_rate, temperature, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	tag, err := s.db.Exec(ctx, query,
		r.ID,
		r.UserID,
		r.Timestamp,
		r.Systolic,
		r.Diastolic,
		r.HeartRate,
		r.Temperature,
		r.Notes,
	)
	if err != nil {
		return fmt.Errorf("vitals: insert failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReadingExists
	}
	return nil
}

// Get fetches a reading by id.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Reading, error) {
	query := `
		SELECT id, user_id, recorded_at, systolic, diastolic, heart_rate, temperature, notes
		FROM vitals_readings
		WHERE id = $1
	`
	r, err := scanReading(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReadingNotFound
		}
		return nil, fmt.Errorf("vitals: select failed: %w", err)
	}
	return r, nil
}

// ListByUser returns the user's most recent readings.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string, limit int) ([]*Reading, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, user_id, recorded_at, systolic, diastolic, heart_rate, temperature, notes
		FROM vitals_readings
		WHERE user_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("vitals: list failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Reading, 0)
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, fmt.Errorf("vitals: scan failed: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vitals: list failed: %w", err)
	}
	return out, nil
}

func scanReading(row pgx.Row) (*Reading, error) {
	var r Reading
	if err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Timestamp,
		&r.Systolic,
		&r.Diastolic,
		&r.HeartRate,
		&r.Temperature,
		&r.Notes,
	); err != nil {
		return nil, err
	}
	r.Timestamp = r.Timestamp.UTC()
	return &r, nil
}
