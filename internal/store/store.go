// Package store persists grading reports in PostgreSQL.
//
// The store is optional: grading is file-in, file-out by default, and a
// deployment opts in by configuring a database URL. Details are kept as
// JSONB in the report's exact wire shape, so SQL consumers can index and
// unnest them without a second schema.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/inkscale/marksheet/internal/grade"
	"github.com/inkscale/marksheet/internal/logging"
)

// Connect creates the connection pool and verifies it with a ping.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Log.Info("connected to report database")
	return pool, nil
}

// CreateSchema sets up the reports table.
// Deployments with migration tooling should manage this themselves.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS reports (
		id SERIAL PRIMARY KEY,
		batch_id VARCHAR(255) NOT NULL DEFAULT '',
		student_id VARCHAR(255) NOT NULL,
		score INT NOT NULL,
		total INT NOT NULL,
		details JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_batch ON reports (batch_id);
	CREATE INDEX IF NOT EXISTS idx_reports_student ON reports (student_id);
	`
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}
	return nil
}

// Store reads and writes grading reports.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Open connects, ensures the schema, and returns a ready store.
func Open(ctx context.Context, connString string) (*Store, error) {
	pool, err := Connect(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := CreateSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool), nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// StoredReport is a persisted report plus its row identity.
type StoredReport struct {
	ID      int64
	BatchID string
	Report  grade.Report
}

// SaveReport inserts one report under a batch id and returns the row id.
func (s *Store) SaveReport(ctx context.Context, batchID string, r *grade.Report) (int64, error) {
	details, err := json.Marshal(r.Details)
	if err != nil {
		return 0, fmt.Errorf("failed to encode details: %w", err)
	}

	var id int64
	err = s.pool.QueryRow(ctx, `
		INSERT INTO reports (batch_id, student_id, score, total, details, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)
		RETURNING id
	`, batchID, r.StudentID, r.Score, r.Total, string(details), r.Timestamp).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}

	logging.Log.Debug("report saved",
		zap.Int64("id", id),
		zap.String("student", r.StudentID),
		zap.Int("score", r.Score))
	return id, nil
}

// SaveBatch saves the successful reports of a batch and returns how many
// rows were written. Failed sheets have no report and are skipped.
func (s *Store) SaveBatch(ctx context.Context, batchID string, results []grade.Result) (int, error) {
	saved := 0
	for _, res := range results {
		if res.Report == nil {
			continue
		}
		if _, err := s.SaveReport(ctx, batchID, res.Report); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}

// ListReports returns a batch's reports in insertion order.
func (s *Store) ListReports(ctx context.Context, batchID string) ([]StoredReport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, batch_id, student_id, score, total, details, created_at
		FROM reports
		WHERE batch_id = $1
		ORDER BY id
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var out []StoredReport
	for rows.Next() {
		var (
			sr      StoredReport
			details []byte
		)
		if err := rows.Scan(&sr.ID, &sr.BatchID, &sr.Report.StudentID,
			&sr.Report.Score, &sr.Report.Total, &details, &sr.Report.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		if err := json.Unmarshal(details, &sr.Report.Details); err != nil {
			return nil, fmt.Errorf("failed to decode details for report %d: %w", sr.ID, err)
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reports: %w", err)
	}
	return out, nil
}
