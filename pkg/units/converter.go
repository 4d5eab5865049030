// Package units normalizes biomarker measurements to the canonical units
// expected by the coefficient tables. Conversions are fixed scientific
// constants; each is linear (canonical = value*Scale + Offset) so the
// inverse direction is exact up to float precision.
package units

import (
	"math"
	"sort"
	"strings"

	"github.com/vitals-risk-engine/internal/domain"
)

// Biomarker names understood by the converter. These match the keys of the
// raw patient document.
const (
	TotalCholesterol         = "total_cholesterol"
	HDLCholesterol           = "hdl_cholesterol"
	SystolicBloodPressure    = "systolic_blood_pressure"
	Glucose                  = "glucose"
	Creatinine               = "creatinine"
	Albumin                  = "albumin"
	CRP                      = "crp"
	HbA1c                    = "hba1c"
	EGFR                     = "egfr"
	LymphocytePercent        = "lymphocyte_percent"
	MeanCellVolume           = "mean_cell_volume"
	RedCellDistributionWidth = "red_cell_distribution_width"
	AlkalinePhosphatase      = "alkaline_phosphatase"
	WhiteBloodCellCount      = "white_blood_cell_count"
)

// conversion maps a declared unit to the canonical unit of its biomarker.
type conversion struct {
	Scale  float64
	Offset float64
}

// identity is the conversion for a value already in canonical units.
var identity = conversion{Scale: 1}

type biomarkerUnits struct {
	canonical string
	// accepted maps a normalized unit spelling to its conversion.
	// The canonical unit itself is always present with the identity.
	accepted map[string]conversion
}

// Converter converts biomarker values between declared and canonical units.
// The conversion table is fixed at construction; a Converter is safe for
// concurrent use.
type Converter struct {
	table map[string]biomarkerUnits
}

// NewConverter builds the converter with the full fixed conversion table.
//
// Conversion factors: cholesterol mg/dL -> mmol/L x0.02586; glucose
// mg/dL -> mmol/L /18; creatinine mg/dL -> umol/L x88.4; albumin
// g/dL -> g/L x10; CRP mg/L -> mg/dL /10; HbA1c NGSP % -> IFCC mmol/mol
// via (x - 2.15) x 10.929.
func NewConverter() *Converter {
	t := map[string]biomarkerUnits{
		TotalCholesterol: {
			canonical: "mmol/L",
			accepted: map[string]conversion{
				"mmol/l": identity,
				"mg/dl":  {Scale: 0.02586},
			},
		},
		HDLCholesterol: {
			canonical: "mmol/L",
			accepted: map[string]conversion{
				"mmol/l": identity,
				"mg/dl":  {Scale: 0.02586},
			},
		},
		SystolicBloodPressure: {
			canonical: "mmHg",
			accepted: map[string]conversion{
				"mmhg": identity,
			},
		},
		Glucose: {
			canonical: "mmol/L",
			accepted: map[string]conversion{
				"mmol/l": identity,
				"mg/dl":  {Scale: 1.0 / 18.0},
			},
		},
		Creatinine: {
			canonical: "umol/L",
			accepted: map[string]conversion{
				"umol/l": identity,
				"mg/dl":  {Scale: 88.4},
			},
		},
		Albumin: {
			canonical: "g/L",
			accepted: map[string]conversion{
				"g/l":  identity,
				"g/dl": {Scale: 10},
			},
		},
		CRP: {
			canonical: "mg/dL",
			accepted: map[string]conversion{
				"mg/dl": identity,
				"mg/l":  {Scale: 0.1},
			},
		},
		HbA1c: {
			canonical: "mmol/mol",
			accepted: map[string]conversion{
				"mmol/mol": identity,
				"%":        {Scale: 10.929, Offset: -2.15 * 10.929},
			},
		},
		EGFR: {
			canonical: "mL/min/1.73m2",
			accepted: map[string]conversion{
				"ml/min/1.73m2": identity,
				"ml/min/1.73m²": identity,
			},
		},
		LymphocytePercent: {
			canonical: "%",
			accepted: map[string]conversion{
				"%": identity,
			},
		},
		MeanCellVolume: {
			canonical: "fL",
			accepted: map[string]conversion{
				"fl": identity,
			},
		},
		RedCellDistributionWidth: {
			canonical: "%",
			accepted: map[string]conversion{
				"%": identity,
			},
		},
		AlkalinePhosphatase: {
			canonical: "U/L",
			accepted: map[string]conversion{
				"u/l":  identity,
				"iu/l": identity,
			},
		},
		WhiteBloodCellCount: {
			canonical: "1000 cells/uL",
			accepted: map[string]conversion{
				"1000 cells/ul": identity,
				"10^3 cells/ul": identity,
				"10^9/l":        identity,
			},
		},
	}
	return &Converter{table: t}
}

// normalizeUnit folds case so that e.g. "mg/dL" and "mg/dl" match.
func normalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// CanonicalUnit returns the canonical unit for a biomarker, or false if the
// biomarker is unknown to the converter.
func (c *Converter) CanonicalUnit(biomarker string) (string, bool) {
	bu, ok := c.table[biomarker]
	if !ok {
		return "", false
	}
	return bu.canonical, true
}

// SupportedUnits returns the accepted unit spellings for a biomarker,
// sorted for stable error messages.
func (c *Converter) SupportedUnits(biomarker string) []string {
	bu, ok := c.table[biomarker]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(bu.accepted))
	for u := range bu.accepted {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// ToCanonical converts a measurement from its declared unit to the
// biomarker's canonical unit. An unknown biomarker or a unit not in the
// biomarker's whitelist yields an UnsupportedUnitError.
func (c *Converter) ToCanonical(biomarker string, value float64, unit string) (float64, error) {
	bu, ok := c.table[biomarker]
	if !ok {
		return 0, domain.NewUnsupportedUnitError(biomarker, unit, nil)
	}
	conv, ok := bu.accepted[normalizeUnit(unit)]
	if !ok {
		return 0, domain.NewUnsupportedUnitError(biomarker, unit, c.SupportedUnits(biomarker))
	}
	return value*conv.Scale + conv.Offset, nil
}

// FromCanonical converts a canonical-unit value back to a declared unit.
// It is the exact inverse of ToCanonical up to float precision: a round
// trip reproduces the original value within 1e-9 relative tolerance.
func (c *Converter) FromCanonical(biomarker string, value float64, unit string) (float64, error) {
	bu, ok := c.table[biomarker]
	if !ok {
		return 0, domain.NewUnsupportedUnitError(biomarker, unit, nil)
	}
	conv, ok := bu.accepted[normalizeUnit(unit)]
	if !ok {
		return 0, domain.NewUnsupportedUnitError(biomarker, unit, c.SupportedUnits(biomarker))
	}
	return (value - conv.Offset) / conv.Scale, nil
}

// Convert translates a value between any two accepted units of the same
// biomarker by passing through the canonical unit.
func (c *Converter) Convert(biomarker string, value float64, fromUnit, toUnit string) (float64, error) {
	canonical, err := c.ToCanonical(biomarker, value, fromUnit)
	if err != nil {
		return 0, err
	}
	return c.FromCanonical(biomarker, canonical, toUnit)
}

// IsFinite reports whether v is a usable measurement (not NaN or Inf).
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
