// Package repository implements Postgres persistence for assessments.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/vitals-risk-engine/internal/domain"
)

// AssessmentRepository persists assessment records in Postgres.
type AssessmentRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewAssessmentRepository creates an assessment repository.
func NewAssessmentRepository(db *pgxpool.Pool, logger *logrus.Logger) *AssessmentRepository {
	return &AssessmentRepository{db: db, log: logger}
}

// Save inserts an assessment record.
func (r *AssessmentRepository) Save(ctx context.Context, assessment *domain.Assessment) error {
	query := `
		INSERT INTO assessments (id, patient_id, algorithm, result, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		assessment.ID,
		assessment.PatientID,
		string(assessment.Algorithm),
		assessment.Result,
		assessment.CreatedAt,
	)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"assessment_id": assessment.ID,
			"algorithm":     assessment.Algorithm,
			"error":         err,
		}).Error("Failed to save assessment")
		return fmt.Errorf("saving assessment: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"assessment_id": assessment.ID,
		"patient_id":    assessment.PatientID,
		"algorithm":     assessment.Algorithm,
	}).Info("Assessment saved")

	return nil
}

// GetByID retrieves one assessment.
func (r *AssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error) {
	query := `
		SELECT id, patient_id, algorithm, result, created_at
		FROM assessments
		WHERE id = $1`

	var assessment domain.Assessment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&assessment.ID,
		&assessment.PatientID,
		&assessment.Algorithm,
		&assessment.Result,
		&assessment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting assessment %s: %w", id, err)
	}

	return &assessment, nil
}

// ListByPatient retrieves the most recent assessments for a patient,
// newest first.
func (r *AssessmentRepository) ListByPatient(ctx context.Context, patientID string, limit int) ([]*domain.Assessment, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, patient_id, algorithm, result, created_at
		FROM assessments
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing assessments for %s: %w", patientID, err)
	}
	defer rows.Close()

	var assessments []*domain.Assessment
	for rows.Next() {
		var assessment domain.Assessment
		if err := rows.Scan(
			&assessment.ID,
			&assessment.PatientID,
			&assessment.Algorithm,
			&assessment.Result,
			&assessment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning assessment row: %w", err)
		}
		assessments = append(assessments, &assessment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assessment rows: %w", err)
	}

	return assessments, nil
}

// Delete removes an assessment record.
func (r *AssessmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting assessment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
