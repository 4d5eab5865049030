package domain

// Score2Coefficients are the sex-specific Cox proportional hazards
// coefficients of the SCORE2 model: five main effects plus four
// age-interaction terms on the transformed covariates.
type Score2Coefficients struct {
	Age              float64
	Smoking          float64
	SBP              float64
	TotalCholesterol float64
	HDLCholesterol   float64
	SmokingAge       float64
	SBPAge           float64
	TCholAge         float64
	HDLAge           float64
}

// Score2DiabetesCoefficients extend the SCORE2 term set with the
// diabetes-specific covariates, for 17 terms in total.
type Score2DiabetesCoefficients struct {
	Score2Coefficients
	Diabetes       float64
	AgeAtDiagnosis float64
	HbA1c          float64
	EGFR           float64
	EGFRSquared    float64
	DiabetesAge    float64
	HbA1cAge       float64
	EGFRAge        float64
}

// CalibrationScale is the region/sex-specific pair adjusting the
// uncalibrated model output to observed population CVD incidence.
type CalibrationScale struct {
	Scale1 float64
	Scale2 float64
}

// LevineCoefficients are the published weights of the PhenoAge linear
// model (Levine et al. 2018, Table 1). CRP enters as its natural log.
type LevineCoefficients struct {
	Intercept                float64
	Albumin                  float64
	Creatinine               float64
	Glucose                  float64
	LogCRP                   float64
	LymphocytePercent        float64
	MeanCellVolume           float64
	RedCellDistributionWidth float64
	AlkalinePhosphatase      float64
	WhiteBloodCellCount      float64
	Age                      float64
}

// GompertzParams parameterize the Gompertz mortality distribution that maps
// the weighted risk score to a 10-year mortality probability and then to a
// predicted age in years.
type GompertzParams struct {
	Lambda float64
	Coef1  float64
	Coef2  float64
	Coef3  float64
}

// CoefficientTables holds every model constant used by the engine.
// Constructed once at process start via NewCoefficientTables and shared
// read-only by all computations; it must never be mutated afterwards.
type CoefficientTables struct {
	Score2           map[Sex]Score2Coefficients
	Score2Diabetes   map[Sex]Score2DiabetesCoefficients
	BaselineSurvival map[Sex]float64
	Calibration      map[Region]map[Sex]CalibrationScale
	Levine           LevineCoefficients
	Gompertz         GompertzParams
}

// NewCoefficientTables builds the full constant set for all three
// algorithms. Values are taken verbatim from the published supplements
// (SCORE2 2021, SCORE2-Diabetes 2023, Levine 2018).
func NewCoefficientTables() *CoefficientTables {
	return &CoefficientTables{
		Score2: map[Sex]Score2Coefficients{
			MALE: {
				Age:              0.3742,
				Smoking:          0.6012,
				SBP:              0.2777,
				TotalCholesterol: 0.1458,
				HDLCholesterol:   -0.2698,
				SmokingAge:       -0.0755,
				SBPAge:           -0.0255,
				TCholAge:         -0.0281,
				HDLAge:           0.0426,
			},
			FEMALE: {
				Age:              0.4648,
				Smoking:          0.7744,
				SBP:              0.3131,
				TotalCholesterol: 0.1002,
				HDLCholesterol:   -0.2606,
				SmokingAge:       -0.1088,
				SBPAge:           -0.0277,
				TCholAge:         -0.0226,
				HDLAge:           0.0613,
			},
		},
		Score2Diabetes: map[Sex]Score2DiabetesCoefficients{
			MALE: {
				Score2Coefficients: Score2Coefficients{
					Age:              0.5368,
					Smoking:          0.4774,
					SBP:              0.1322,
					TotalCholesterol: 0.1102,
					HDLCholesterol:   -0.1087,
					SmokingAge:       -0.0672,
					SBPAge:           -0.0268,
					TCholAge:         -0.0181,
					HDLAge:           0.0095,
				},
				Diabetes:       0.6457,
				AgeAtDiagnosis: -0.0998,
				HbA1c:          0.0955,
				EGFR:           -0.0591,
				EGFRSquared:    0.0058,
				DiabetesAge:    -0.0983,
				HbA1cAge:       -0.0134,
				EGFRAge:        0.0115,
			},
			FEMALE: {
				Score2Coefficients: Score2Coefficients{
					Age:              0.6624,
					Smoking:          0.6139,
					SBP:              0.1421,
					TotalCholesterol: 0.1127,
					HDLCholesterol:   -0.1568,
					SmokingAge:       -0.1122,
					SBPAge:           -0.0167,
					TCholAge:         -0.0200,
					HDLAge:           0.0186,
				},
				Diabetes:       0.8096,
				AgeAtDiagnosis: -0.1180,
				HbA1c:          0.1173,
				EGFR:           -0.0640,
				EGFRSquared:    0.0062,
				DiabetesAge:    -0.1272,
				HbA1cAge:       -0.0196,
				EGFRAge:        0.0169,
			},
		},
		// 10-year survival probability for the reference covariate profile.
		BaselineSurvival: map[Sex]float64{
			MALE:   0.9605,
			FEMALE: 0.9776,
		},
		Calibration: map[Region]map[Sex]CalibrationScale{
			LOW_RISK_REGION: {
				MALE:   {Scale1: -0.5699, Scale2: 0.7476},
				FEMALE: {Scale1: -0.7380, Scale2: 0.7019},
			},
			MODERATE_RISK_REGION: {
				MALE:   {Scale1: -0.1565, Scale2: 0.8009},
				FEMALE: {Scale1: -0.3143, Scale2: 0.7701},
			},
			HIGH_RISK_REGION: {
				MALE:   {Scale1: 0.3207, Scale2: 0.9360},
				FEMALE: {Scale1: 0.5710, Scale2: 0.9369},
			},
			VERY_HIGH_RISK_REGION: {
				MALE:   {Scale1: 0.5836, Scale2: 0.8294},
				FEMALE: {Scale1: 0.9412, Scale2: 0.8329},
			},
		},
		Levine: LevineCoefficients{
			Intercept:                -19.9067,
			Albumin:                  -0.0336,
			Creatinine:               0.0095,
			Glucose:                  0.1953,
			LogCRP:                   0.0954,
			LymphocytePercent:        -0.0120,
			MeanCellVolume:           0.0268,
			RedCellDistributionWidth: 0.3306,
			AlkalinePhosphatase:      0.00188,
			WhiteBloodCellCount:      0.0554,
			Age:                      0.0804,
		},
		Gompertz: GompertzParams{
			Lambda: 0.0192,
			Coef1:  141.50225,
			Coef2:  -0.00553,
			Coef3:  0.090165,
		},
	}
}
