package service

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/vitals-risk-engine/internal/domain"
)

// ComputePhenoAge calculates the Levine phenotypic age: a weighted linear
// combination of nine blood biomarkers and chronological age, mapped through
// a Gompertz mortality model into units of years. The predicted age is the
// age within the reference population whose mortality hazard matches the
// patient's biomarker profile.
func (e *RiskEngine) ComputePhenoAge(in *domain.PhenoAgeInput) (*domain.PhenoAgeResult, error) {
	if in.CRP <= 0 {
		return nil, domain.NewDomainError("phenoage",
			"CRP must be positive, log undefined", in.CRP)
	}

	x := e.levineScore(in)
	mortality := e.gompertzMortality(x)

	// ln(1-m) is 0 at m=0 and undefined at m=1; either breaks the outer log.
	if mortality <= 0 || mortality >= 1 {
		return nil, domain.NewDomainError("phenoage",
			"mortality score outside (0,1), age transform undefined", mortality)
	}

	g := e.tables.Gompertz
	predicted := g.Coef1 + math.Log(g.Coef2*math.Log(1-mortality))/g.Coef3

	e.log.WithFields(logrus.Fields{
		"algorithm":         domain.PHENOAGE,
		"chronological_age": in.Age,
		"predicted_age":     predicted,
	}).Debug("PhenoAge computed")

	return &domain.PhenoAgeResult{
		Algorithm:        domain.PHENOAGE,
		ChronologicalAge: in.Age,
		PredictedAge:     predicted,
		AcceleratedAging: predicted - in.Age,
		MortalityScore:   mortality,
	}, nil
}

// levineScore evaluates the weighted risk score of the Levine linear model.
// Terms are summed in the order of the published coefficient table so that
// repeated evaluation is bit-identical.
func (e *RiskEngine) levineScore(in *domain.PhenoAgeInput) float64 {
	coef := e.tables.Levine
	return coef.Intercept +
		coef.Albumin*in.Albumin +
		coef.Creatinine*in.Creatinine +
		coef.Glucose*in.Glucose +
		coef.LogCRP*math.Log(in.CRP) +
		coef.LymphocytePercent*in.LymphocytePercent +
		coef.MeanCellVolume*in.MeanCellVolume +
		coef.RedCellDistributionWidth*in.RedCellDistributionWidth +
		coef.AlkalinePhosphatase*in.AlkalinePhosphatase +
		coef.WhiteBloodCellCount*in.WhiteBloodCellCount +
		coef.Age*in.Age
}

// gompertzMortality converts the weighted risk score into a 120-month
// mortality probability under the Gompertz distribution.
func (e *RiskEngine) gompertzMortality(score float64) float64 {
	lambda := e.tables.Gompertz.Lambda
	return 1 - math.Exp(-math.Exp(score)*(math.Exp(120*lambda)-1)/lambda)
}
