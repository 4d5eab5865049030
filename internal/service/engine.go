package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vitals-risk-engine/internal/cache"
	"github.com/vitals-risk-engine/internal/domain"
)

// AssessmentStore persists completed assessments. Both the Postgres
// repository and the standalone SQLite history store implement it.
type AssessmentStore interface {
	Save(ctx context.Context, assessment *domain.Assessment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Assessment, error)
	ListByPatient(ctx context.Context, patientID string, limit int) ([]*domain.Assessment, error)
}

// AlgorithmOutcome is the per-algorithm unit of an assessment response.
// Exactly one of Result and Error is set.
type AlgorithmOutcome struct {
	Algorithm domain.Algorithm `json:"algorithm"`
	Result    interface{}      `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorCode string           `json:"error_code,omitempty"`
	Fields    []string         `json:"fields,omitempty"`
	Cached    bool             `json:"cached"`
}

// AssessmentResponse aggregates the outcomes of a single assess call.
type AssessmentResponse struct {
	ID        uuid.UUID          `json:"id"`
	PatientID string             `json:"patient_id,omitempty"`
	Outcomes  []AlgorithmOutcome `json:"outcomes"`
	CreatedAt time.Time          `json:"created_at"`
}

// Engine orchestrates validation, computation, caching and persistence
// for patient risk assessments.
type Engine struct {
	validator *Validator
	risk      *RiskEngine
	cache     *cache.ResultCache
	store     AssessmentStore
	log       *logrus.Logger
}

// NewEngine creates an assessment engine. cache and store may be nil;
// caching and persistence are then skipped.
func NewEngine(validator *Validator, risk *RiskEngine, resultCache *cache.ResultCache, store AssessmentStore, logger *logrus.Logger) *Engine {
	return &Engine{
		validator: validator,
		risk:      risk,
		cache:     resultCache,
		store:     store,
		log:       logger,
	}
}

// Assess runs the requested algorithms against a raw patient document.
// Algorithms fail independently: a validation or computation error in one
// is reported in its outcome without aborting the others. The call itself
// fails only when no algorithm is requested or an algorithm is unknown.
func (e *Engine) Assess(ctx context.Context, patientID string, algorithms []string, doc *domain.RawPatientDocument) (*AssessmentResponse, error) {
	if len(algorithms) == 0 {
		return nil, domain.NewValidationError("algorithms", "at least one algorithm is required", nil)
	}

	resp := &AssessmentResponse{
		ID:        uuid.New(),
		PatientID: patientID,
		CreatedAt: time.Now().UTC(),
	}

	for _, name := range algorithms {
		algo, err := domain.ParseAlgorithm(name)
		if err != nil {
			return nil, domain.NewInvalidEnumError("algorithms", name, []string{
				string(domain.PHENOAGE),
				string(domain.SCORE2),
				string(domain.SCORE2_DIABETES),
			})
		}
		resp.Outcomes = append(resp.Outcomes, e.runAlgorithm(ctx, algo, doc))
	}

	if e.store != nil {
		if err := e.persist(ctx, patientID, resp); err != nil {
			e.log.WithError(err).WithField("assessment_id", resp.ID).Warn("Failed to persist assessment")
		}
	}

	return resp, nil
}

// GetAssessment loads a persisted assessment by ID.
func (e *Engine) GetAssessment(ctx context.Context, id uuid.UUID) (*domain.Assessment, error) {
	if e.store == nil {
		return nil, domain.ErrNotFound
	}
	return e.store.GetByID(ctx, id)
}

// ListAssessments loads the most recent persisted assessments for a patient.
func (e *Engine) ListAssessments(ctx context.Context, patientID string, limit int) ([]*domain.Assessment, error) {
	if e.store == nil {
		return nil, domain.ErrNotFound
	}
	return e.store.ListByPatient(ctx, patientID, limit)
}

func (e *Engine) runAlgorithm(ctx context.Context, algo domain.Algorithm, doc *domain.RawPatientDocument) AlgorithmOutcome {
	outcome := AlgorithmOutcome{Algorithm: algo}

	key, cacheable := e.cacheKey(algo, doc)
	if cacheable {
		if payload, ok := e.cache.Get(ctx, key); ok {
			var result json.RawMessage = payload
			outcome.Result = result
			outcome.Cached = true
			return outcome
		}
	}

	result, err := e.compute(algo, doc)
	if err != nil {
		outcome.Error = err.Error()
		outcome.ErrorCode = errorCode(err)
		if verrs, ok := err.(*domain.ValidationErrors); ok {
			outcome.Fields = verrs.Fields()
		}
		return outcome
	}

	outcome.Result = result
	if cacheable {
		if payload, err := json.Marshal(result); err == nil {
			e.cache.Set(ctx, key, payload)
		}
	}
	return outcome
}

func (e *Engine) compute(algo domain.Algorithm, doc *domain.RawPatientDocument) (interface{}, error) {
	switch algo {
	case domain.SCORE2:
		in, err := e.validator.ParseScore2(doc)
		if err != nil {
			return nil, err
		}
		return e.risk.ComputeScore2(in)
	case domain.SCORE2_DIABETES:
		in, err := e.validator.ParseScore2Diabetes(doc)
		if err != nil {
			return nil, err
		}
		return e.risk.ComputeScore2Diabetes(in)
	case domain.PHENOAGE:
		in, err := e.validator.ParsePhenoAge(doc)
		if err != nil {
			return nil, err
		}
		return e.risk.ComputePhenoAge(in)
	default:
		return nil, domain.ErrInvalidAlgorithm
	}
}

// cacheKey derives a deterministic key from the algorithm and the raw
// document. Serialization failure just disables caching for the call.
func (e *Engine) cacheKey(algo domain.Algorithm, doc *domain.RawPatientDocument) (string, bool) {
	if e.cache == nil {
		return "", false
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("assess:%s:%s", algo, hex.EncodeToString(sum[:])), true
}

func (e *Engine) persist(ctx context.Context, patientID string, resp *AssessmentResponse) error {
	for _, outcome := range resp.Outcomes {
		if outcome.Result == nil {
			continue
		}
		payload, err := json.Marshal(outcome.Result)
		if err != nil {
			return err
		}
		assessment := &domain.Assessment{
			ID:        uuid.New(),
			PatientID: patientID,
			Algorithm: outcome.Algorithm,
			Result:    payload,
			CreatedAt: resp.CreatedAt,
		}
		if err := e.store.Save(ctx, assessment); err != nil {
			return err
		}
	}
	return nil
}

func errorCode(err error) string {
	switch err.(type) {
	case *domain.ValidationErrors:
		return domain.ErrCodeValidation
	case *domain.ValidationError:
		return domain.ErrCodeValidation
	case *domain.OutOfRangeError:
		return domain.ErrCodeOutOfRange
	case *domain.InvalidEnumError:
		return domain.ErrCodeInvalidEnum
	case *domain.UnsupportedUnitError:
		return domain.ErrCodeUnsupportedUnit
	case *domain.DomainError:
		return domain.ErrCodeDomain
	default:
		return domain.ErrCodeInternal
	}
}
