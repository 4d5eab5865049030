// Package service implements the risk scoring pipeline: schema validation,
// unit normalization, linear predictor evaluation, risk transforms and
// classification, plus the Engine facade that ties them together.
package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vitals-risk-engine/internal/domain"
	"github.com/vitals-risk-engine/pkg/units"
)

// fieldRange is a physiological plausibility bound in canonical units.
// MinExclusive marks an open lower bound (e.g. CRP > 0 because the model
// takes its logarithm).
type fieldRange struct {
	Min, Max     float64
	MinExclusive bool
}

func (r fieldRange) contains(v float64) bool {
	if r.MinExclusive {
		if v <= r.Min {
			return false
		}
	} else if v < r.Min {
		return false
	}
	return v <= r.Max
}

// biomarkerRanges are the plausibility bounds enforced after unit
// normalization. Out-of-range values produce OutOfRangeError entries in
// the aggregate report rather than hard process failures.
var biomarkerRanges = map[string]fieldRange{
	units.SystolicBloodPressure:    {Min: 60, Max: 250},
	units.TotalCholesterol:         {Min: 1, Max: 20},
	units.HDLCholesterol:           {Min: 0, Max: 5, MinExclusive: true},
	units.Glucose:                  {Min: 1, Max: 50},
	units.Creatinine:               {Min: 10, Max: 1500},
	units.Albumin:                  {Min: 10, Max: 60},
	units.CRP:                      {Min: 0, Max: 100, MinExclusive: true},
	units.HbA1c:                    {Min: 20, Max: 200},
	units.EGFR:                     {Min: 0, Max: 250, MinExclusive: true},
	units.LymphocytePercent:        {Min: 0, Max: 100},
	units.MeanCellVolume:           {Min: 50, Max: 150},
	units.RedCellDistributionWidth: {Min: 5, Max: 40},
	units.AlkalinePhosphatase:      {Min: 0, Max: 1500, MinExclusive: true},
	units.WhiteBloodCellCount:      {Min: 0, Max: 200, MinExclusive: true},
}

// Age applicability windows. SCORE2 and SCORE2-Diabetes are validated for
// ages 40-69; PhenoAge accepts any plausible human age.
var (
	cvdAgeRange      = fieldRange{Min: 40, Max: 69}
	phenoAgeAgeRange = fieldRange{Min: 0, Max: 120}
)

var score2Biomarkers = []string{
	units.SystolicBloodPressure,
	units.TotalCholesterol,
	units.HDLCholesterol,
}

var score2DiabetesBiomarkers = []string{
	units.SystolicBloodPressure,
	units.TotalCholesterol,
	units.HDLCholesterol,
	units.HbA1c,
	units.EGFR,
}

var phenoAgeBiomarkers = []string{
	units.Albumin,
	units.Creatinine,
	units.Glucose,
	units.CRP,
	units.LymphocytePercent,
	units.MeanCellVolume,
	units.RedCellDistributionWidth,
	units.AlkalinePhosphatase,
	units.WhiteBloodCellCount,
}

// Validator converts raw patient documents into validated, unit-normalized
// algorithm inputs. Every violation found in a pass is collected into one
// ValidationErrors report; validation never stops at the first problem.
type Validator struct {
	converter *units.Converter
}

// NewValidator creates a validator with the fixed unit conversion table.
func NewValidator() *Validator {
	return &Validator{converter: units.NewConverter()}
}

// ParseScore2 validates a raw document against the SCORE2 schema.
func (v *Validator) ParseScore2(doc *domain.RawPatientDocument) (*domain.Score2Input, error) {
	errs := &domain.ValidationErrors{}

	age := v.parseAge(doc, cvdAgeRange, errs)
	sex := v.parseSex(doc, errs)
	region := v.parseRegion(doc, errs)
	smoking := v.parseBool("smoking", doc.Smoking, true, errs)
	markers := v.parseBiomarkers(doc, score2Biomarkers, errs)

	if errs.HasErrors() {
		return nil, errs
	}
	return &domain.Score2Input{
		Age:              age,
		Sex:              sex,
		Region:           region,
		SystolicBP:       markers[units.SystolicBloodPressure],
		TotalCholesterol: markers[units.TotalCholesterol],
		HDLCholesterol:   markers[units.HDLCholesterol],
		Smoking:          smoking,
	}, nil
}

// ParseScore2Diabetes validates a raw document against the SCORE2-Diabetes
// schema. The diabetes flag and diagnosis age are required; the diagnosis
// age must not exceed the current age.
func (v *Validator) ParseScore2Diabetes(doc *domain.RawPatientDocument) (*domain.Score2DiabetesInput, error) {
	errs := &domain.ValidationErrors{}

	age := v.parseAge(doc, cvdAgeRange, errs)
	sex := v.parseSex(doc, errs)
	region := v.parseRegion(doc, errs)
	smoking := v.parseBool("smoking", doc.Smoking, true, errs)
	diabetes := v.parseBool("diabetes", doc.Diabetes, true, errs)
	markers := v.parseBiomarkers(doc, score2DiabetesBiomarkers, errs)

	var ageAtDiagnosis float64
	if doc.AgeAtDiabetesDiagnosis == nil {
		errs.Append(domain.NewValidationError("age_at_diabetes_diagnosis", "required field is missing", nil))
	} else if f, ok := toFloat(doc.AgeAtDiabetesDiagnosis); !ok {
		errs.Append(domain.NewValidationError("age_at_diabetes_diagnosis", "must be a number", doc.AgeAtDiabetesDiagnosis))
	} else {
		ageAtDiagnosis = f
		if f < 0 {
			errs.Append(domain.NewOutOfRangeError("age_at_diabetes_diagnosis", 0, age, f))
		} else if age > 0 && f > age {
			errs.Append(domain.NewValidationError("age_at_diabetes_diagnosis",
				fmt.Sprintf("diagnosis age %g exceeds current age %g", f, age), f))
		}
	}

	if errs.HasErrors() {
		return nil, errs
	}
	return &domain.Score2DiabetesInput{
		Score2Input: domain.Score2Input{
			Age:              age,
			Sex:              sex,
			Region:           region,
			SystolicBP:       markers[units.SystolicBloodPressure],
			TotalCholesterol: markers[units.TotalCholesterol],
			HDLCholesterol:   markers[units.HDLCholesterol],
			Smoking:          smoking,
		},
		Diabetes:               diabetes,
		AgeAtDiabetesDiagnosis: ageAtDiagnosis,
		HbA1c:                  markers[units.HbA1c],
		EGFR:                   markers[units.EGFR],
	}, nil
}

// ParsePhenoAge validates a raw document against the PhenoAge schema.
// Sex, smoking and region are not part of the Levine model and are ignored.
func (v *Validator) ParsePhenoAge(doc *domain.RawPatientDocument) (*domain.PhenoAgeInput, error) {
	errs := &domain.ValidationErrors{}

	age := v.parseAge(doc, phenoAgeAgeRange, errs)
	markers := v.parseBiomarkers(doc, phenoAgeBiomarkers, errs)

	if errs.HasErrors() {
		return nil, errs
	}
	return &domain.PhenoAgeInput{
		Age:                      age,
		Albumin:                  markers[units.Albumin],
		Creatinine:               markers[units.Creatinine],
		Glucose:                  markers[units.Glucose],
		CRP:                      markers[units.CRP],
		LymphocytePercent:        markers[units.LymphocytePercent],
		MeanCellVolume:           markers[units.MeanCellVolume],
		RedCellDistributionWidth: markers[units.RedCellDistributionWidth],
		AlkalinePhosphatase:      markers[units.AlkalinePhosphatase],
		WhiteBloodCellCount:      markers[units.WhiteBloodCellCount],
	}, nil
}

func (v *Validator) parseAge(doc *domain.RawPatientDocument, bounds fieldRange, errs *domain.ValidationErrors) float64 {
	if doc.Age == nil {
		errs.Append(domain.NewValidationError("age", "required field is missing", nil))
		return 0
	}
	age, ok := toFloat(doc.Age)
	if !ok {
		errs.Append(domain.NewValidationError("age", "must be a number", doc.Age))
		return 0
	}
	if !units.IsFinite(age) {
		errs.Append(domain.NewValidationError("age", "must be finite", age))
		return 0
	}
	if !bounds.contains(age) {
		errs.Append(domain.NewOutOfRangeError("age", bounds.Min, bounds.Max, age))
	}
	return age
}

func (v *Validator) parseSex(doc *domain.RawPatientDocument, errs *domain.ValidationErrors) domain.Sex {
	if doc.Sex == "" {
		errs.Append(domain.NewValidationError("sex", "required field is missing", nil))
		return ""
	}
	sex, err := domain.ParseSex(doc.Sex)
	if err != nil {
		errs.Append(domain.NewInvalidEnumError("sex", doc.Sex, []string{"male", "female"}))
		return ""
	}
	return sex
}

func (v *Validator) parseRegion(doc *domain.RawPatientDocument, errs *domain.ValidationErrors) domain.Region {
	region, err := domain.ParseRegion(doc.Region)
	if err != nil {
		errs.Append(domain.NewInvalidEnumError("region", doc.Region,
			[]string{"low", "moderate", "high", "very_high"}))
		return ""
	}
	return region
}

// parseBool coerces the loosely-typed boolean fields of the raw document.
// Accepted encodings follow the original payload format: native booleans,
// "yes"/"no", and 0/1.
func (v *Validator) parseBool(field string, raw interface{}, required bool, errs *domain.ValidationErrors) bool {
	if raw == nil {
		if required {
			errs.Append(domain.NewValidationError(field, "required field is missing", nil))
		}
		return false
	}
	switch val := raw.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "yes", "true", "1":
			return true
		case "no", "false", "0":
			return false
		}
	default:
		if f, ok := toFloat(raw); ok && (f == 0 || f == 1) {
			return f == 1
		}
	}
	errs.Append(domain.NewValidationError(field, "must be a boolean", raw))
	return false
}

// parseBiomarkers checks presence, type, unit and range for each required
// biomarker, returning canonical-unit values for the ones that validated.
// Failures accumulate in errs; the returned map only holds clean entries.
func (v *Validator) parseBiomarkers(doc *domain.RawPatientDocument, required []string, errs *domain.ValidationErrors) map[string]float64 {
	out := make(map[string]float64, len(required))
	for _, name := range required {
		raw, ok := doc.Biomarkers[name]
		if !ok {
			errs.Append(domain.NewValidationError(name, "required biomarker is missing", nil))
			continue
		}
		value, ok := toFloat(raw.Value)
		if !ok {
			errs.Append(domain.NewValidationError(name, "value must be a number", raw.Value))
			continue
		}
		if !units.IsFinite(value) {
			errs.Append(domain.NewValidationError(name, "value must be finite", value))
			continue
		}
		unit := raw.Unit
		if unit == "" {
			if canonical, ok := v.converter.CanonicalUnit(name); ok {
				unit = canonical
			}
		}
		canonical, err := v.converter.ToCanonical(name, value, unit)
		if err != nil {
			errs.Append(err)
			continue
		}
		if bounds, ok := biomarkerRanges[name]; ok && !bounds.contains(canonical) {
			cu, _ := v.converter.CanonicalUnit(name)
			errs.Append(&domain.OutOfRangeError{
				Field:        name,
				Min:          bounds.Min,
				Max:          bounds.Max,
				MinExclusive: bounds.MinExclusive,
				Value:        canonical,
				Unit:         cu,
			})
			continue
		}
		out[name] = canonical
	}
	return out
}

// toFloat coerces the numeric encodings produced by JSON decoding.
func toFloat(raw interface{}) (float64, bool) {
	switch val := raw.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
