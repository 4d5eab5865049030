package service

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/vitals-risk-engine/internal/domain"
)

// RiskEngine evaluates the SCORE2 and SCORE2-Diabetes Cox models against
// validated, unit-normalized inputs. It holds only the immutable coefficient
// tables and is safe for concurrent use.
type RiskEngine struct {
	tables *domain.CoefficientTables
	log    *logrus.Logger
}

// NewRiskEngine creates a risk engine over the given coefficient tables.
func NewRiskEngine(tables *domain.CoefficientTables, logger *logrus.Logger) *RiskEngine {
	return &RiskEngine{
		tables: tables,
		log:    logger,
	}
}

// ComputeScore2 calculates the calibrated 10-year CVD risk for an apparently
// healthy individual aged 40-69.
func (e *RiskEngine) ComputeScore2(in *domain.Score2Input) (*domain.RiskResult, error) {
	x := e.score2LinearPredictor(in)

	calibrated, uncalibrated, err := e.calibratedRisk(x, in.Sex, in.Region)
	if err != nil {
		return nil, err
	}

	category := ClassifyRisk(in.Age, calibrated)
	e.log.WithFields(logrus.Fields{
		"algorithm":       domain.SCORE2,
		"sex":             in.Sex,
		"region":          in.Region,
		"risk_percentage": calibrated,
		"risk_category":   category,
	}).Debug("SCORE2 risk computed")

	return &domain.RiskResult{
		Algorithm:        domain.SCORE2,
		Age:              in.Age,
		Sex:              in.Sex,
		Region:           in.Region,
		LinearPredictor:  x,
		UncalibratedRisk: uncalibrated,
		RiskPercentage:   calibrated,
		RiskCategory:     category,
		Recommendation:   Recommendation(category),
	}, nil
}

// ComputeScore2Diabetes calculates the calibrated 10-year CVD risk for an
// individual with type 2 diabetes aged 40-69. The model also accepts
// non-diabetic inputs, in which case the diabetes terms contribute zero.
func (e *RiskEngine) ComputeScore2Diabetes(in *domain.Score2DiabetesInput) (*domain.RiskResult, error) {
	x := e.score2DiabetesLinearPredictor(in)

	calibrated, uncalibrated, err := e.calibratedRisk(x, in.Sex, in.Region)
	if err != nil {
		return nil, err
	}

	category := ClassifyRisk(in.Age, calibrated)
	e.log.WithFields(logrus.Fields{
		"algorithm":       domain.SCORE2_DIABETES,
		"sex":             in.Sex,
		"region":          in.Region,
		"risk_percentage": calibrated,
		"risk_category":   category,
	}).Debug("SCORE2-Diabetes risk computed")

	return &domain.RiskResult{
		Algorithm:        domain.SCORE2_DIABETES,
		Age:              in.Age,
		Sex:              in.Sex,
		Region:           in.Region,
		LinearPredictor:  x,
		UncalibratedRisk: uncalibrated,
		RiskPercentage:   calibrated,
		RiskCategory:     category,
		Recommendation:   Recommendation(category),
	}, nil
}

// score2LinearPredictor evaluates the 9-term SCORE2 linear predictor.
// Terms are summed in the order of the published term table so that
// repeated evaluation is bit-identical.
func (e *RiskEngine) score2LinearPredictor(in *domain.Score2Input) float64 {
	coef := e.tables.Score2[in.Sex]

	cage := (in.Age - 60) / 5
	smoking := boolToFloat(in.Smoking)
	csbp := (in.SystolicBP - 120) / 20
	ctchol := in.TotalCholesterol - 6
	chdl := (in.HDLCholesterol - 1.3) / 0.5

	return coef.Age*cage +
		coef.Smoking*smoking +
		coef.SBP*csbp +
		coef.TotalCholesterol*ctchol +
		coef.HDLCholesterol*chdl +
		coef.SmokingAge*smoking*cage +
		coef.SBPAge*csbp*cage +
		coef.TCholAge*ctchol*cage +
		coef.HDLAge*chdl*cage
}

// score2DiabetesLinearPredictor evaluates the 17-term SCORE2-Diabetes
// linear predictor in the published term order.
func (e *RiskEngine) score2DiabetesLinearPredictor(in *domain.Score2DiabetesInput) float64 {
	coef := e.tables.Score2Diabetes[in.Sex]

	cage := (in.Age - 60) / 5
	smoking := boolToFloat(in.Smoking)
	csbp := (in.SystolicBP - 120) / 20
	diabetes := boolToFloat(in.Diabetes)
	ctchol := in.TotalCholesterol - 6
	chdl := (in.HDLCholesterol - 1.3) / 0.5
	cagediab := diabetes * (in.AgeAtDiabetesDiagnosis - 50) / 5
	ca1c := (in.HbA1c - 31) / 9.34
	cegfr := (math.Log(in.EGFR) - 4.5) / 0.15

	return coef.Age*cage +
		coef.Smoking*smoking +
		coef.SBP*csbp +
		coef.Diabetes*diabetes +
		coef.TotalCholesterol*ctchol +
		coef.HDLCholesterol*chdl +
		coef.AgeAtDiagnosis*cagediab +
		coef.HbA1c*ca1c +
		coef.EGFR*cegfr +
		coef.EGFRSquared*cegfr*cegfr +
		coef.SmokingAge*smoking*cage +
		coef.SBPAge*csbp*cage +
		coef.DiabetesAge*diabetes*cage +
		coef.TCholAge*ctchol*cage +
		coef.HDLAge*chdl*cage +
		coef.HbA1cAge*ca1c*cage +
		coef.EGFRAge*cegfr*cage
}

// calibratedRisk applies the survival transform followed by the regional
// calibration transform:
//
//	uncalibrated = 1 - baseline_survival^exp(x)
//	calibrated   = (1 - exp(-exp(scale1 + scale2*ln(-ln(1-uncalibrated))))) * 100
//
// An uncalibrated risk of exactly 0 or 1 makes the inner logarithm
// undefined; that surfaces as a DomainError rather than a silent NaN.
// The calibrated percentage is rounded to two decimals.
func (e *RiskEngine) calibratedRisk(x float64, sex domain.Sex, region domain.Region) (calibrated, uncalibrated float64, err error) {
	baseline := e.tables.BaselineSurvival[sex]
	uncalibrated = 1 - math.Pow(baseline, math.Exp(x))

	if uncalibrated <= 0 {
		return 0, uncalibrated, domain.NewDomainError("calibration",
			"uncalibrated risk is zero, log-log transform undefined", uncalibrated)
	}
	if uncalibrated >= 1 {
		return 0, uncalibrated, domain.NewDomainError("calibration",
			"uncalibrated risk is one, log-log transform undefined", uncalibrated)
	}

	scale, ok := e.tables.Calibration[region][sex]
	if !ok {
		return 0, uncalibrated, domain.NewInvalidEnumError("region", region.String(),
			[]string{"low", "moderate", "high", "very_high"})
	}

	calibrated = (1 - math.Exp(-math.Exp(scale.Scale1+scale.Scale2*math.Log(-math.Log(1-uncalibrated))))) * 100
	calibrated = math.Round(calibrated*100) / 100
	return calibrated, uncalibrated, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
