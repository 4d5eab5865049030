package service

import (
	"io"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitals-risk-engine/internal/domain"
)

func newTestRiskEngine() *RiskEngine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRiskEngine(domain.NewCoefficientTables(), logger)
}

func TestComputeScore2(t *testing.T) {
	engine := newTestRiskEngine()

	tests := []struct {
		name         string
		input        *domain.Score2Input
		expectedRisk float64
		expectedCat  domain.RiskCategory
	}{
		{
			name: "Female 50 smoker low region",
			input: &domain.Score2Input{
				Age: 50, Sex: domain.FEMALE, Region: domain.LOW_RISK_REGION,
				SystolicBP: 140, TotalCholesterol: 6.3, HDLCholesterol: 1.4, Smoking: true,
			},
			expectedRisk: 4.33,
			expectedCat:  domain.LOW_TO_MODERATE,
		},
		{
			name: "Male 55 smoker with converted lipids",
			input: &domain.Score2Input{
				// 220 mg/dL and 45 mg/dL after conversion to mmol/L
				Age: 55, Sex: domain.MALE, Region: domain.LOW_RISK_REGION,
				SystolicBP: 140, TotalCholesterol: 5.6892, HDLCholesterol: 1.1637, Smoking: true,
			},
			expectedRisk: 7.92,
			expectedCat:  domain.HIGH,
		},
		{
			name: "Male 40 non-smoker",
			input: &domain.Score2Input{
				Age: 40, Sex: domain.MALE, Region: domain.LOW_RISK_REGION,
				SystolicBP: 110, TotalCholesterol: 4.5, HDLCholesterol: 1.6, Smoking: false,
			},
			expectedRisk: 0.89,
			expectedCat:  domain.LOW_TO_MODERATE,
		},
		{
			name: "Male 69 smoker",
			input: &domain.Score2Input{
				Age: 69, Sex: domain.MALE, Region: domain.LOW_RISK_REGION,
				SystolicBP: 160, TotalCholesterol: 7.2, HDLCholesterol: 0.9, Smoking: true,
			},
			expectedRisk: 18.75,
			expectedCat:  domain.VERY_HIGH,
		},
		{
			name: "Female 45 non-smoker",
			input: &domain.Score2Input{
				Age: 45, Sex: domain.FEMALE, Region: domain.LOW_RISK_REGION,
				SystolicBP: 125, TotalCholesterol: 5.0, HDLCholesterol: 1.2, Smoking: false,
			},
			expectedRisk: 1.27,
			expectedCat:  domain.LOW_TO_MODERATE,
		},
		{
			name: "Female 62 smoker",
			input: &domain.Score2Input{
				Age: 62, Sex: domain.FEMALE, Region: domain.LOW_RISK_REGION,
				SystolicBP: 150, TotalCholesterol: 6.8, HDLCholesterol: 1.1, Smoking: true,
			},
			expectedRisk: 9.38,
			expectedCat:  domain.HIGH,
		},
		{
			name: "Male 55 smoker moderate region",
			input: &domain.Score2Input{
				Age: 55, Sex: domain.MALE, Region: domain.MODERATE_RISK_REGION,
				SystolicBP: 140, TotalCholesterol: 5.5, HDLCholesterol: 1.3, Smoking: true,
			},
			expectedRisk: 9.42,
			expectedCat:  domain.HIGH,
		},
		{
			name: "Female 60 non-smoker high region",
			input: &domain.Score2Input{
				Age: 60, Sex: domain.FEMALE, Region: domain.HIGH_RISK_REGION,
				SystolicBP: 145, TotalCholesterol: 6.0, HDLCholesterol: 1.2, Smoking: false,
			},
			expectedRisk: 7.43,
			expectedCat:  domain.HIGH,
		},
		{
			name: "Male 50 non-smoker very high region",
			input: &domain.Score2Input{
				Age: 50, Sex: domain.MALE, Region: domain.VERY_HIGH_RISK_REGION,
				SystolicBP: 130, TotalCholesterol: 5.0, HDLCholesterol: 1.4, Smoking: false,
			},
			expectedRisk: 5.95,
			expectedCat:  domain.HIGH,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.ComputeScore2(tt.input)
			require.NoError(t, err)

			assert.Equal(t, domain.SCORE2, result.Algorithm)
			assert.InDelta(t, tt.expectedRisk, result.RiskPercentage, 0.01)
			assert.Equal(t, tt.expectedCat, result.RiskCategory)
			assert.Greater(t, result.UncalibratedRisk, 0.0)
			assert.Less(t, result.UncalibratedRisk, 1.0)
			assert.NotEmpty(t, result.Recommendation)
		})
	}
}

func TestComputeScore2Idempotent(t *testing.T) {
	engine := newTestRiskEngine()
	input := &domain.Score2Input{
		Age: 50, Sex: domain.FEMALE, Region: domain.LOW_RISK_REGION,
		SystolicBP: 140, TotalCholesterol: 6.3, HDLCholesterol: 1.4, Smoking: true,
	}

	first, err := engine.ComputeScore2(input)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := engine.ComputeScore2(input)
		require.NoError(t, err)
		// bit-identical, not merely close
		assert.Equal(t, first.LinearPredictor, again.LinearPredictor)
		assert.Equal(t, first.UncalibratedRisk, again.UncalibratedRisk)
		assert.Equal(t, first.RiskPercentage, again.RiskPercentage)
	}
}

func TestComputeScore2RiskBounds(t *testing.T) {
	engine := newTestRiskEngine()

	// Sweep the corners of the validated input space; every calibrated
	// risk must stay a percentage.
	for _, sex := range []domain.Sex{domain.MALE, domain.FEMALE} {
		for _, region := range []domain.Region{
			domain.LOW_RISK_REGION, domain.MODERATE_RISK_REGION,
			domain.HIGH_RISK_REGION, domain.VERY_HIGH_RISK_REGION,
		} {
			for _, age := range []float64{40, 69} {
				for _, smoking := range []bool{false, true} {
					result, err := engine.ComputeScore2(&domain.Score2Input{
						Age: age, Sex: sex, Region: region,
						SystolicBP: 250, TotalCholesterol: 20, HDLCholesterol: 0.1, Smoking: smoking,
					})
					require.NoError(t, err)
					assert.GreaterOrEqual(t, result.RiskPercentage, 0.0)
					assert.LessOrEqual(t, result.RiskPercentage, 100.0)
				}
			}
		}
	}
}

func TestComputeScore2DegenerateRiskSurfacesDomainError(t *testing.T) {
	engine := newTestRiskEngine()

	tests := []struct {
		name  string
		input *domain.Score2Input
	}{
		{
			// The HDL term drives the linear predictor so far negative
			// that exp(x) underflows and the uncalibrated risk collapses
			// to exactly 0.
			name: "Extreme protective profile",
			input: &domain.Score2Input{
				Age: 60, Sex: domain.MALE, Region: domain.LOW_RISK_REGION,
				SystolicBP: 120, TotalCholesterol: 6, HDLCholesterol: 1000, Smoking: false,
			},
		},
		{
			// The cholesterol term overflows exp(x), baseline^exp(x)
			// underflows to 0 and the uncalibrated risk is exactly 1.
			name: "Extreme adverse profile",
			input: &domain.Score2Input{
				Age: 60, Sex: domain.MALE, Region: domain.LOW_RISK_REGION,
				SystolicBP: 120, TotalCholesterol: 1e6, HDLCholesterol: 1.3, Smoking: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.ComputeScore2(tt.input)
			require.Error(t, err)
			assert.Nil(t, result)

			domErr, ok := err.(*domain.DomainError)
			require.True(t, ok, "expected DomainError, got %T: %v", err, err)
			assert.Equal(t, "calibration", domErr.Op)
			// The degenerate risk is reported as a plain 0 or 1, never NaN.
			assert.False(t, math.IsNaN(domErr.Value))
		})
	}
}

func TestComputeScore2UnknownRegion(t *testing.T) {
	engine := newTestRiskEngine()

	_, err := engine.ComputeScore2(&domain.Score2Input{
		Age: 50, Sex: domain.MALE, Region: domain.Region("ATLANTIS"),
		SystolicBP: 140, TotalCholesterol: 6, HDLCholesterol: 1.3, Smoking: false,
	})
	require.Error(t, err)
	_, ok := err.(*domain.InvalidEnumError)
	assert.True(t, ok, "expected InvalidEnumError, got %T", err)
}

func TestComputeScore2Diabetes(t *testing.T) {
	engine := newTestRiskEngine()

	tests := []struct {
		name         string
		input        *domain.Score2DiabetesInput
		expectedRisk float64
		expectedCat  domain.RiskCategory
	}{
		{
			name: "Male 60 diabetic",
			input: &domain.Score2DiabetesInput{
				Score2Input: domain.Score2Input{
					Age: 60, Sex: domain.MALE, Region: domain.LOW_RISK_REGION,
					SystolicBP: 140, TotalCholesterol: 5.5, HDLCholesterol: 1.2, Smoking: false,
				},
				Diabetes: true, AgeAtDiabetesDiagnosis: 55, HbA1c: 50, EGFR: 80,
			},
			expectedRisk: 9.49,
			expectedCat:  domain.HIGH,
		},
		{
			name: "Female 50 diabetic smoker",
			input: &domain.Score2DiabetesInput{
				Score2Input: domain.Score2Input{
					Age: 50, Sex: domain.FEMALE, Region: domain.LOW_RISK_REGION,
					SystolicBP: 150, TotalCholesterol: 6.5, HDLCholesterol: 1.0, Smoking: true,
				},
				Diabetes: true, AgeAtDiabetesDiagnosis: 42, HbA1c: 64, EGFR: 65,
			},
			expectedRisk: 12.89,
			expectedCat:  domain.VERY_HIGH,
		},
		{
			name: "Male 45 non-diabetic",
			input: &domain.Score2DiabetesInput{
				Score2Input: domain.Score2Input{
					Age: 45, Sex: domain.MALE, Region: domain.LOW_RISK_REGION,
					SystolicBP: 120, TotalCholesterol: 4.8, HDLCholesterol: 1.5, Smoking: false,
				},
				Diabetes: false, AgeAtDiabetesDiagnosis: 0, HbA1c: 34, EGFR: 95,
			},
			expectedRisk: 1.28,
			expectedCat:  domain.LOW_TO_MODERATE,
		},
		{
			name: "Male 68 diabetic smoker with renal impairment",
			input: &domain.Score2DiabetesInput{
				Score2Input: domain.Score2Input{
					Age: 68, Sex: domain.MALE, Region: domain.LOW_RISK_REGION,
					SystolicBP: 160, TotalCholesterol: 7.0, HDLCholesterol: 0.9, Smoking: true,
				},
				Diabetes: true, AgeAtDiabetesDiagnosis: 48, HbA1c: 75, EGFR: 45,
			},
			expectedRisk: 33.06,
			expectedCat:  domain.VERY_HIGH,
		},
		{
			name: "Female 55 diabetic",
			input: &domain.Score2DiabetesInput{
				Score2Input: domain.Score2Input{
					Age: 55, Sex: domain.FEMALE, Region: domain.LOW_RISK_REGION,
					SystolicBP: 135, TotalCholesterol: 5.2, HDLCholesterol: 1.4, Smoking: false,
				},
				Diabetes: true, AgeAtDiabetesDiagnosis: 50, HbA1c: 53, EGFR: 72,
			},
			expectedRisk: 5.36,
			expectedCat:  domain.HIGH,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.ComputeScore2Diabetes(tt.input)
			require.NoError(t, err)

			assert.Equal(t, domain.SCORE2_DIABETES, result.Algorithm)
			assert.InDelta(t, tt.expectedRisk, result.RiskPercentage, 0.01)
			assert.Equal(t, tt.expectedCat, result.RiskCategory)
		})
	}
}

func TestScore2DiabetesTermsVanishForNonDiabetic(t *testing.T) {
	engine := newTestRiskEngine()

	// With diabetes false, the diagnosis-age term must contribute zero
	// regardless of the recorded diagnosis age.
	base := domain.Score2Input{
		Age: 55, Sex: domain.MALE, Region: domain.LOW_RISK_REGION,
		SystolicBP: 130, TotalCholesterol: 5.0, HDLCholesterol: 1.3, Smoking: false,
	}

	a, err := engine.ComputeScore2Diabetes(&domain.Score2DiabetesInput{
		Score2Input: base, Diabetes: false, AgeAtDiabetesDiagnosis: 0, HbA1c: 40, EGFR: 90,
	})
	require.NoError(t, err)

	b, err := engine.ComputeScore2Diabetes(&domain.Score2DiabetesInput{
		Score2Input: base, Diabetes: false, AgeAtDiabetesDiagnosis: 45, HbA1c: 40, EGFR: 90,
	})
	require.NoError(t, err)

	assert.Equal(t, a.LinearPredictor, b.LinearPredictor)
	assert.Equal(t, a.RiskPercentage, b.RiskPercentage)
}
