package journey

import (
	"math"

	"homepath/api/internal/models"
)

// Affordability parameters. These are product decisions, not regulation.
const (
	// QualifyingRate is the annual rate affordability is stress-tested at,
	// inside the 4-5% qualifying band.
	QualifyingRate            = 0.0475
	QualifyingAmortizationYrs = 25
	GrossDebtServiceRatio     = 0.32
	ClosingCostRate           = 0.015
	BufferRate                = 0.01
	MinDownPaymentTierLimit   = 500_000.0
	MinDownPaymentFirstTier   = 0.05
	MinDownPaymentUpperTier   = 0.10
	HBPWithdrawalLimit        = 35_000.0
	HBPSavingsShare           = 0.5
)

// Input ceilings. Anything larger is not a household figure and would
// overflow the cent arithmetic.
const (
	MaxIncome  = 100_000_000.0
	MaxSavings = 100_000_000.0
)

// CalculateAffordability derives the largest home price a client can carry
// and splits it into mortgage, down payment, closing costs and buffer.
//
// The mortgage is the present value of GrossDebtServiceRatio of monthly gross
// income at QualifyingRate. Cash (savings, plus an HBP top-up for RRSP holders)
// must cover closing costs, the buffer and the minimum down payment. Parts are
// computed in whole cents and the down payment takes the rounding remainder, so
// the four parts sum to the affordable price exactly in cents. Summed as
// float64 they may differ from it by less than a cent.
func CalculateAffordability(income, savings float64, hasRRSP bool) (models.AffordabilityBreakdown, error) {
	verr := &ValidationError{}
	switch {
	case income < 0 || math.IsNaN(income) || math.IsInf(income, 0):
		verr.add("income", "must be a non-negative number")
	case income > MaxIncome:
		verr.add("income", "must be at most 100000000")
	}
	switch {
	case savings < 0 || math.IsNaN(savings) || math.IsInf(savings, 0):
		verr.add("savings", "must be a non-negative number")
	case savings > MaxSavings:
		verr.add("savings", "must be at most 100000000")
	}
	if err := verr.orNil(); err != nil {
		return models.AffordabilityBreakdown{}, err
	}

	cash := savings
	if hasRRSP {
		cash += math.Min(savings*HBPSavingsShare, HBPWithdrawalLimit)
	}
	if cash <= 0 {
		return models.AffordabilityBreakdown{}, nil
	}

	maxMortgage := MaxMortgage(income)
	costShare := ClosingCostRate + BufferRate
	price := math.Min((maxMortgage+cash)/(1+costShare), maxPriceForCash(cash))

	priceC := int64(math.Floor(price * 100))
	cashC := int64(math.Floor(cash * 100))
	closingC := int64(math.Round(float64(priceC) * ClosingCostRate))
	bufferC := int64(math.Round(float64(priceC) * BufferRate))

	mortgageC := priceC - cashC
	if mortgageC < 0 {
		mortgageC = 0
	}
	downC := priceC - mortgageC - closingC - bufferC
	if downC < 0 {
		downC = 0
		mortgageC = priceC - closingC - bufferC
	}

	return models.AffordabilityBreakdown{
		AffordablePrice: fromCents(priceC),
		Mortgage:        fromCents(mortgageC),
		DownPayment:     fromCents(downC),
		ClosingCosts:    fromCents(closingC),
		Buffer:          fromCents(bufferC),
	}, nil
}

// MaxMortgage is the largest principal whose payment at QualifyingRate fits
// inside GrossDebtServiceRatio of the given annual income.
func MaxMortgage(income float64) float64 {
	if income <= 0 {
		return 0
	}
	payment := income * GrossDebtServiceRatio / 12
	return presentValue(payment, QualifyingRate/12, QualifyingAmortizationYrs*12)
}

// MinDownPayment is the minimum down payment for a price: 5% of the first
// $500k and 10% of the rest.
func MinDownPayment(price float64) float64 {
	if price <= MinDownPaymentTierLimit {
		return price * MinDownPaymentFirstTier
	}
	return MinDownPaymentTierLimit*MinDownPaymentFirstTier + (price-MinDownPaymentTierLimit)*MinDownPaymentUpperTier
}

// maxPriceForCash is the highest price at which cash still covers the
// minimum down payment plus closing costs and buffer.
func maxPriceForCash(cash float64) float64 {
	costShare := ClosingCostRate + BufferRate
	first := cash / (MinDownPaymentFirstTier + costShare)
	if first <= MinDownPaymentTierLimit {
		return first
	}
	credit := MinDownPaymentTierLimit * (MinDownPaymentUpperTier - MinDownPaymentFirstTier)
	return (cash + credit) / (MinDownPaymentUpperTier + costShare)
}

func presentValue(payment, monthlyRate float64, months int) float64 {
	if monthlyRate == 0 {
		return payment * float64(months)
	}
	return payment * (1 - math.Pow(1+monthlyRate, -float64(months))) / monthlyRate
}

func fromCents(c int64) float64 {
	return float64(c) / 100
}
