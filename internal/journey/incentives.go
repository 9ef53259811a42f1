package journey

import (
	"math"

	"homepath/api/internal/models"
)

// BC Property Transfer Tax first-time buyer exemption thresholds.
const (
	PTTFullExemptionLimit    = 500_000.0
	PTTPartialExemptionLimit = 835_000.0
	PTTPhaseOutRange         = PTTPartialExemptionLimit - PTTFullExemptionLimit
)

// Incentive parameters. FHSA and HBP are estimates, not verified formulas.
const (
	GSTRate                   = 0.05
	GSTRebateShare            = 0.36
	GSTRebateMax              = 6_300.0
	GSTRebateFullLimit        = 350_000.0
	GSTRebatePhaseOutLimit    = 450_000.0
	FHSAAnnualLimit           = 8_000.0
	FHSAEstimatedMarginalRate = 0.30
)

// CalculatePTTSavings is the property transfer tax a first-time buyer saves
// on a home at homePrice.
func CalculatePTTSavings(homePrice float64) float64 {
	switch {
	case homePrice <= 0:
		return 0
	case homePrice <= PTTFullExemptionLimit:
		return homePrice * 0.01
	case homePrice <= PTTPartialExemptionLimit:
		base := PTTFullExemptionLimit * 0.01
		excess := homePrice - PTTFullExemptionLimit
		exemptionRate := 1 - excess/PTTPhaseOutRange
		return base + excess*0.02*exemptionRate
	default:
		return 0
	}
}

// GSTNewHousingRebate is the GST rebate on a new build: 36% of the GST up to
// $6,300, phased out linearly between $350k and $450k.
func GSTNewHousingRebate(price float64) float64 {
	if price <= 0 || price >= GSTRebatePhaseOutLimit {
		return 0
	}
	full := math.Min(price*GSTRate*GSTRebateShare, GSTRebateMax)
	if price <= GSTRebateFullLimit {
		return full
	}
	return full * (GSTRebatePhaseOutLimit - price) / (GSTRebatePhaseOutLimit - GSTRebateFullLimit)
}

// CalculateIncentives totals the programs a buyer may use on propertyPrice.
func CalculateIncentives(breakdown models.AffordabilityBreakdown, propertyPrice float64, isNewBuild, hasRRSP bool) models.Incentives {
	inc := models.Incentives{
		PTT:  CalculatePTTSavings(propertyPrice),
		FHSA: FHSAAnnualLimit * FHSAEstimatedMarginalRate,
	}
	if isNewBuild {
		inc.GST = GSTNewHousingRebate(propertyPrice)
	}
	if hasRRSP && breakdown.DownPayment > 0 {
		inc.HBP = math.Min(HBPWithdrawalLimit, breakdown.DownPayment)
	}
	inc.Total = inc.PTT + inc.GST + inc.FHSA + inc.HBP
	return inc
}
