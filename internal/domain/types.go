// Package domain contains core business entities and types for clinical risk scoring:
// biological age estimation (PhenoAge) and 10-year cardiovascular disease risk
// prediction (SCORE2, SCORE2-Diabetes).
//
// References:
//   - Levine et al. (2018) An epigenetic biomarker of aging for lifespan and healthspan.
//     Aging (Albany NY). 10(4):573-591. doi: 10.18632/aging.101414
//   - SCORE2 working group (2021) SCORE2 risk prediction algorithms: new models to
//     estimate 10-year risk of cardiovascular disease in Europe.
//     Eur Heart J. 42(25):2439-2454. doi: 10.1093/eurheartj/ehab309
//   - SCORE2-Diabetes working group (2023) SCORE2-Diabetes: 10-year cardiovascular
//     risk estimation in type 2 diabetes in Europe.
//     Eur Heart J. 44(28):2544-2556. doi: 10.1093/eurheartj/ehad260
package domain

import (
	"errors"
	"strings"
)

// Algorithm identifies one of the supported risk scoring algorithms.
type Algorithm string

const (
	PHENOAGE        Algorithm = "phenoage"
	SCORE2          Algorithm = "score2"
	SCORE2_DIABETES Algorithm = "score2_diabetes"
)

// Sex is the biological sex used to select model coefficients.
// Both CVD models and their calibration scales are sex-specific.
type Sex string

const (
	MALE   Sex = "MALE"
	FEMALE Sex = "FEMALE"
)

// Region is the SCORE2 cardiovascular risk region. Each region carries its own
// calibration scale pair matching observed population CVD incidence.
type Region string

const (
	LOW_RISK_REGION       Region = "LOW"
	MODERATE_RISK_REGION  Region = "MODERATE"
	HIGH_RISK_REGION      Region = "HIGH"
	VERY_HIGH_RISK_REGION Region = "VERY_HIGH"
)

// DefaultRegion is applied when a request does not specify a risk region.
// Belgium (Low risk) is the deployment population of the original service,
// so the default is explicit rather than silently assumed.
const DefaultRegion = LOW_RISK_REGION

// RiskCategory is the clinical risk stratification for CVD results.
// The string values match the wording used in patient-facing reports.
type RiskCategory string

const (
	LOW_TO_MODERATE RiskCategory = "Low to moderate"
	HIGH            RiskCategory = "High"
	VERY_HIGH       RiskCategory = "Very high"
)

// Sentinel errors for lookups and enum validation.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidAlgorithm = errors.New("invalid algorithm")
	ErrInvalidSex       = errors.New("invalid sex")
	ErrInvalidRegion    = errors.New("invalid risk region")
	ErrInvalidCategory  = errors.New("invalid risk category")
)

// IsValid reports whether the algorithm is one of the supported set.
func (a Algorithm) IsValid() bool {
	switch a {
	case PHENOAGE, SCORE2, SCORE2_DIABETES:
		return true
	default:
		return false
	}
}

func (a Algorithm) String() string {
	return string(a)
}

// ParseAlgorithm parses a request-supplied algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "phenoage":
		return PHENOAGE, nil
	case "score2":
		return SCORE2, nil
	case "score2_diabetes", "score2-diabetes":
		return SCORE2_DIABETES, nil
	default:
		return "", ErrInvalidAlgorithm
	}
}

// IsValid reports whether the sex is a recognized value.
func (s Sex) IsValid() bool {
	switch s {
	case MALE, FEMALE:
		return true
	default:
		return false
	}
}

func (s Sex) String() string {
	return string(s)
}

// ParseSex parses the sex field of a patient document. Accepted spellings
// follow the original payload format ("male"/"female", "m"/"f").
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return MALE, nil
	case "female", "f":
		return FEMALE, nil
	default:
		return "", ErrInvalidSex
	}
}

// IsValid reports whether the region is a recognized SCORE2 risk region.
func (r Region) IsValid() bool {
	switch r {
	case LOW_RISK_REGION, MODERATE_RISK_REGION, HIGH_RISK_REGION, VERY_HIGH_RISK_REGION:
		return true
	default:
		return false
	}
}

func (r Region) String() string {
	return string(r)
}

// ParseRegion parses a risk region name. An empty string yields DefaultRegion.
func ParseRegion(s string) (Region, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultRegion, nil
	case "low":
		return LOW_RISK_REGION, nil
	case "moderate":
		return MODERATE_RISK_REGION, nil
	case "high":
		return HIGH_RISK_REGION, nil
	case "very_high", "very-high", "very high":
		return VERY_HIGH_RISK_REGION, nil
	default:
		return "", ErrInvalidRegion
	}
}

// IsValid reports whether the category is a recognized stratification level.
func (c RiskCategory) IsValid() bool {
	switch c {
	case LOW_TO_MODERATE, HIGH, VERY_HIGH:
		return true
	default:
		return false
	}
}

func (c RiskCategory) String() string {
	return string(c)
}
