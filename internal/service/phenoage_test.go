package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitals-risk-engine/internal/domain"
)

func TestComputePhenoAge(t *testing.T) {
	engine := newTestRiskEngine()

	tests := []struct {
		name        string
		input       *domain.PhenoAgeInput
		expectedAge float64
	}{
		{
			name: "Biological age near chronological",
			input: &domain.PhenoAgeInput{
				Age: 39, Albumin: 40.5, Creatinine: 103.428, Glucose: 3.9167,
				CRP: 0.5, LymphocytePercent: 40.3, MeanCellVolume: 89.1,
				RedCellDistributionWidth: 11.9, AlkalinePhosphatase: 63.5,
				WhiteBloodCellCount: 6.05,
			},
			expectedAge: 39.43,
		},
		{
			name: "Healthy forty year old",
			input: &domain.PhenoAgeInput{
				Age: 40, Albumin: 40, Creatinine: 51.6266, Glucose: 6.0495,
				CRP: 0.21, LymphocytePercent: 32.35, MeanCellVolume: 92.4,
				RedCellDistributionWidth: 12.05, AlkalinePhosphatase: 59,
				WhiteBloodCellCount: 4.95,
			},
			expectedAge: 40.57,
		},
		{
			name: "Chronologically older profile",
			input: &domain.PhenoAgeInput{
				Age: 80, Albumin: 41, Creatinine: 51.6266, Glucose: 4.9395,
				CRP: 0.21, LymphocytePercent: 43.85, MeanCellVolume: 91.9,
				RedCellDistributionWidth: 12.70, AlkalinePhosphatase: 96,
				WhiteBloodCellCount: 4.70,
			},
			expectedAge: 74.78,
		},
		{
			name: "Biologically younger profile",
			input: &domain.PhenoAgeInput{
				Age: 36, Albumin: 44, Creatinine: 68.5997, Glucose: 4.9395,
				CRP: 0.21, LymphocytePercent: 29, MeanCellVolume: 78.4,
				RedCellDistributionWidth: 12.05, AlkalinePhosphatase: 35,
				WhiteBloodCellCount: 5.55,
			},
			expectedAge: 31.05,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.ComputePhenoAge(tt.input)
			require.NoError(t, err)

			assert.Equal(t, domain.PHENOAGE, result.Algorithm)
			assert.InDelta(t, tt.expectedAge, result.PredictedAge, 0.01)
			assert.Equal(t, tt.input.Age, result.ChronologicalAge)
			assert.InDelta(t, result.PredictedAge-tt.input.Age, result.AcceleratedAging, 1e-12)
			assert.Greater(t, result.MortalityScore, 0.0)
			assert.Less(t, result.MortalityScore, 1.0)
		})
	}
}

func TestComputePhenoAgeRejectsNonPositiveCRP(t *testing.T) {
	engine := newTestRiskEngine()

	for _, crp := range []float64{0, -0.5} {
		_, err := engine.ComputePhenoAge(&domain.PhenoAgeInput{
			Age: 40, Albumin: 40, Creatinine: 80, Glucose: 5,
			CRP: crp, LymphocytePercent: 35, MeanCellVolume: 90,
			RedCellDistributionWidth: 13, AlkalinePhosphatase: 70,
			WhiteBloodCellCount: 6,
		})
		require.Error(t, err)
		_, ok := err.(*domain.DomainError)
		assert.True(t, ok, "expected DomainError for crp=%g, got %T", crp, err)
	}
}

func TestComputePhenoAgeIdempotent(t *testing.T) {
	engine := newTestRiskEngine()
	input := &domain.PhenoAgeInput{
		Age: 39, Albumin: 40.5, Creatinine: 103.428, Glucose: 3.9167,
		CRP: 0.5, LymphocytePercent: 40.3, MeanCellVolume: 89.1,
		RedCellDistributionWidth: 11.9, AlkalinePhosphatase: 63.5,
		WhiteBloodCellCount: 6.05,
	}

	first, err := engine.ComputePhenoAge(input)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := engine.ComputePhenoAge(input)
		require.NoError(t, err)
		assert.Equal(t, first.PredictedAge, again.PredictedAge)
		assert.Equal(t, first.MortalityScore, again.MortalityScore)
	}
}
