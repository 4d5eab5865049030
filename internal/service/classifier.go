package service

import "github.com/vitals-risk-engine/internal/domain"

// Risk category thresholds in percent, per the 2021 ESC guideline tables.
// A risk exactly at a threshold belongs to the higher category.
const (
	under50HighThreshold     = 2.5
	under50VeryHighThreshold = 7.5
	over50HighThreshold      = 5.0
	over50VeryHighThreshold  = 10.0
)

// ClassifyRisk maps a calibrated risk percentage to its clinical category
// using the age-bracketed threshold ladder (<50 vs 50-69).
func ClassifyRisk(age, riskPercentage float64) domain.RiskCategory {
	if age < 50 {
		switch {
		case riskPercentage >= under50VeryHighThreshold:
			return domain.VERY_HIGH
		case riskPercentage >= under50HighThreshold:
			return domain.HIGH
		default:
			return domain.LOW_TO_MODERATE
		}
	}
	switch {
	case riskPercentage >= over50VeryHighThreshold:
		return domain.VERY_HIGH
	case riskPercentage >= over50HighThreshold:
		return domain.HIGH
	default:
		return domain.LOW_TO_MODERATE
	}
}

// Recommendation returns the fixed clinical guidance text for a category.
func Recommendation(category domain.RiskCategory) string {
	switch category {
	case domain.LOW_TO_MODERATE:
		return "Maintain a healthy lifestyle; routine reassessment at the next scheduled visit."
	case domain.HIGH:
		return "Risk factor treatment should be considered; discuss lipid and blood pressure management with a physician."
	case domain.VERY_HIGH:
		return "Risk factor treatment is recommended; prompt clinical follow-up is advised."
	default:
		return ""
	}
}
