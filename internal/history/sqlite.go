// Package history implements a local SQLite assessment store for
// standalone deployments that run without Postgres.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/vitals-risk-engine/internal/domain"
)

// SQLiteStore keeps assessment history in a single SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the history database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// NewSQLiteStoreWithDB wraps an existing database handle. Used by tests
// to inject mocks; the schema is assumed to be present.
func NewSQLiteStoreWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL DEFAULT '',
		algorithm TEXT NOT NULL,
		result TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assessments_patient ON assessments(patient_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_assessments_algorithm ON assessments(algorithm);
	`
	_, err := db.Exec(schema)
	return err
}

// Save stores an assessment record.
func (s *SQLiteStore) Save(ctx context.Context, assessment *domain.Assessment) error {
	query := `
		INSERT INTO assessments (id, patient_id, algorithm, result, created_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		assessment.ID.String(),
		assessment.PatientID,
		string(assessment.Algorithm),
		string(assessment.Result),
		assessment.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("saving assessment: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAssessment(s scanner) (*domain.Assessment, error) {
	var (
		id        string
		algorithm string
		result    string
		createdAt string
	)
	assessment := &domain.Assessment{}

	if err := s.Scan(&id, &assessment.PatientID, &algorithm, &result, &createdAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parsing assessment id %q: %w", id, err)
	}
	assessment.ID = parsed
	assessment.Algorithm = domain.Algorithm(algorithm)
	assessment.Result = json.RawMessage(result)

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing assessment timestamp %q: %w", createdAt, err)
	}
	assessment.CreatedAt = ts

	return assessment, nil
}

// GetByID retrieves one assessment.
func (s *SQLiteStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error) {
	query := `
		SELECT id, patient_id, algorithm, result, created_at
		FROM assessments
		WHERE id = ?`

	assessment, err := scanAssessment(s.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting assessment %s: %w", id, err)
	}
	return assessment, nil
}

// ListByPatient retrieves the most recent assessments for a patient,
// newest first.
func (s *SQLiteStore) ListByPatient(ctx context.Context, patientID string, limit int) ([]*domain.Assessment, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, patient_id, algorithm, result, created_at
		FROM assessments
		WHERE patient_id = ?
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing assessments for %s: %w", patientID, err)
	}
	defer rows.Close()

	var assessments []*domain.Assessment
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning assessment row: %w", err)
		}
		assessments = append(assessments, assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assessment rows: %w", err)
	}

	return assessments, nil
}

// ExportJSON writes all stored assessments as a JSON array, newest first.
func (s *SQLiteStore) ExportJSON(ctx context.Context) ([]byte, error) {
	query := `
		SELECT id, patient_id, algorithm, result, created_at
		FROM assessments
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("exporting assessments: %w", err)
	}
	defer rows.Close()

	assessments := []*domain.Assessment{}
	for rows.Next() {
		assessment, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning assessment row: %w", err)
		}
		assessments = append(assessments, assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assessment rows: %w", err)
	}

	return json.MarshalIndent(assessments, "", "  ")
}

// Count returns the number of stored assessments.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assessments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting assessments: %w", err)
	}
	return count, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
