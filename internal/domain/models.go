package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RawBiomarker is a single biomarker entry as submitted by a client,
// before validation. Value is untyped so the validator can report wrong
// types instead of failing at decode time.
type RawBiomarker struct {
	Value interface{} `json:"value"`
	Unit  string      `json:"unit"`
}

// BiomarkerValue is a validated biomarker measurement in a declared unit.
type BiomarkerValue struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// RawPatientDocument is the untyped patient payload handed to the validator.
// Demographics are scalar fields; measurements live in Biomarkers keyed by
// biomarker name. The validator turns this into one of the typed per-algorithm
// inputs or an aggregated ValidationErrors.
type RawPatientDocument struct {
	Age                    interface{}             `json:"age"`
	Sex                    string                  `json:"sex"`
	Region                 string                  `json:"region,omitempty"`
	Smoking                interface{}             `json:"smoking,omitempty"`
	Diabetes               interface{}             `json:"diabetes,omitempty"`
	AgeAtDiabetesDiagnosis interface{}             `json:"age_at_diabetes_diagnosis,omitempty"`
	Biomarkers             map[string]RawBiomarker `json:"biomarkers"`
}

// Score2Input is the validated, unit-normalized input for the SCORE2 model.
// All concentrations are in the canonical units used by the coefficient
// tables (cholesterol in mmol/L, blood pressure in mmHg).
type Score2Input struct {
	Age              float64 `json:"age"`
	Sex              Sex     `json:"sex"`
	Region           Region  `json:"region"`
	SystolicBP       float64 `json:"systolic_blood_pressure"`
	TotalCholesterol float64 `json:"total_cholesterol"`
	HDLCholesterol   float64 `json:"hdl_cholesterol"`
	Smoking          bool    `json:"smoking"`
}

// Score2DiabetesInput extends Score2Input with the diabetes-specific
// covariates of the SCORE2-Diabetes model. HbA1c is in mmol/mol (IFCC),
// eGFR in mL/min/1.73m2.
type Score2DiabetesInput struct {
	Score2Input
	Diabetes               bool    `json:"diabetes"`
	AgeAtDiabetesDiagnosis float64 `json:"age_at_diabetes_diagnosis"`
	HbA1c                  float64 `json:"hba1c"`
	EGFR                   float64 `json:"egfr"`
}

// PhenoAgeInput is the validated, unit-normalized input for the Levine
// PhenoAge model. Canonical units: albumin g/L, creatinine umol/L, glucose
// mmol/L, CRP mg/dL, ALP U/L, WBC 1000 cells/uL, MCV fL, percentages in %.
type PhenoAgeInput struct {
	Age                      float64 `json:"age"`
	Albumin                  float64 `json:"albumin"`
	Creatinine               float64 `json:"creatinine"`
	Glucose                  float64 `json:"glucose"`
	CRP                      float64 `json:"crp"`
	LymphocytePercent        float64 `json:"lymphocyte_percent"`
	MeanCellVolume           float64 `json:"mean_cell_volume"`
	RedCellDistributionWidth float64 `json:"red_cell_distribution_width"`
	AlkalinePhosphatase      float64 `json:"alkaline_phosphatase"`
	WhiteBloodCellCount      float64 `json:"white_blood_cell_count"`
}

// RiskResult is the immutable outcome of a CVD risk computation.
// LinearPredictor and UncalibratedRisk are retained for audit purposes;
// RiskPercentage is the calibrated 10-year risk rounded to two decimals.
type RiskResult struct {
	Algorithm        Algorithm    `json:"algorithm"`
	Age              float64      `json:"age"`
	Sex              Sex          `json:"sex"`
	Region           Region       `json:"region"`
	LinearPredictor  float64      `json:"linear_predictor"`
	UncalibratedRisk float64      `json:"uncalibrated_risk"`
	RiskPercentage   float64      `json:"risk_percentage"`
	RiskCategory     RiskCategory `json:"risk_category"`
	Recommendation   string       `json:"recommendation"`
}

// PhenoAgeResult is the immutable outcome of a PhenoAge computation.
// AcceleratedAging is predicted minus chronological age; a negative value
// means the biological profile is younger than the calendar age.
type PhenoAgeResult struct {
	Algorithm        Algorithm `json:"algorithm"`
	ChronologicalAge float64   `json:"chronological_age"`
	PredictedAge     float64   `json:"predicted_age"`
	AcceleratedAging float64   `json:"accelerated_aging"`
	MortalityScore   float64   `json:"mortality_score"`
}

// Assessment is a persisted record of a completed computation.
// Result holds the serialized RiskResult or PhenoAgeResult.
type Assessment struct {
	ID        uuid.UUID       `json:"id"`
	PatientID string          `json:"patient_id"`
	Algorithm Algorithm       `json:"algorithm"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}
