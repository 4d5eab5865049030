package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitals-risk-engine/internal/domain"
)

func TestClassifyRisk(t *testing.T) {
	tests := []struct {
		name     string
		age      float64
		risk     float64
		expected domain.RiskCategory
	}{
		{"Under 50 low", 45, 2.0, domain.LOW_TO_MODERATE},
		{"Under 50 at high boundary", 45, 2.5, domain.HIGH},
		{"Under 50 high", 45, 5.0, domain.HIGH},
		{"Under 50 at very high boundary", 45, 7.5, domain.VERY_HIGH},
		{"Under 50 very high", 45, 12.0, domain.VERY_HIGH},
		{"Age 49 uses under-50 ladder", 49.9, 2.5, domain.HIGH},
		{"Age 50 uses over-50 ladder", 50, 2.5, domain.LOW_TO_MODERATE},
		{"Over 50 low", 60, 4.99, domain.LOW_TO_MODERATE},
		{"Over 50 at high boundary", 60, 5.0, domain.HIGH},
		{"Over 50 high", 60, 9.99, domain.HIGH},
		{"Over 50 at very high boundary", 60, 10.0, domain.VERY_HIGH},
		{"Over 50 very high", 69, 25.0, domain.VERY_HIGH},
		{"Zero risk", 55, 0, domain.LOW_TO_MODERATE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyRisk(tt.age, tt.risk))
		})
	}
}

func TestRecommendation(t *testing.T) {
	assert.NotEmpty(t, Recommendation(domain.LOW_TO_MODERATE))
	assert.NotEmpty(t, Recommendation(domain.HIGH))
	assert.NotEmpty(t, Recommendation(domain.VERY_HIGH))
	assert.Empty(t, Recommendation(domain.RiskCategory("unknown")))

	// The three categories carry distinct guidance texts.
	assert.NotEqual(t, Recommendation(domain.LOW_TO_MODERATE), Recommendation(domain.HIGH))
	assert.NotEqual(t, Recommendation(domain.HIGH), Recommendation(domain.VERY_HIGH))
}
