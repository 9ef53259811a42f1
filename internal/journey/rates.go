package journey

import (
	"math"
	"sort"
)

// LenderType groups lenders by the credit they are willing to take on.
type LenderType string

const (
	LenderBank        LenderType = "bank"
	LenderCreditUnion LenderType = "credit_union"
	LenderMonoline    LenderType = "monoline"
	LenderAlternative LenderType = "alternative"
)

// ApprovalOdds is the rough chance an applicant qualifies for a product.
type ApprovalOdds string

const (
	OddsHigh   ApprovalOdds = "high"
	OddsMedium ApprovalOdds = "medium"
	OddsLow    ApprovalOdds = "low"
)

func (o ApprovalOdds) rank() int {
	switch o {
	case OddsHigh:
		return 2
	case OddsMedium:
		return 1
	}
	return 0
}

// SortKey orders personalized quotes.
type SortKey string

const (
	SortByRate         SortKey = "rate"
	SortByPayment      SortKey = "payment"
	SortByApprovalOdds SortKey = "approvalOdds"
)

// Stress test and insurer parameters.
const (
	StressTestBuffer    = 2.0
	StressTestFloorRate = 5.25
	ALenderMinScore     = 600
)

// LenderProduct is one advertised mortgage product.
type LenderProduct struct {
	Lender     string
	Product    string
	Type       LenderType
	TermYears  int
	PostedRate float64
}

// LenderProducts is the rate sheet quotes are personalized from.
var LenderProducts = []LenderProduct{
	{Lender: "BMO", Product: "5-Year Fixed", Type: LenderBank, TermYears: 5, PostedRate: 4.49},
	{Lender: "First National", Product: "3-Year Fixed", Type: LenderMonoline, TermYears: 3, PostedRate: 4.39},
	{Lender: "First National", Product: "5-Year Fixed", Type: LenderMonoline, TermYears: 5, PostedRate: 4.29},
	{Lender: "Home Trust", Product: "2-Year Fixed", Type: LenderAlternative, TermYears: 2, PostedRate: 6.49},
	{Lender: "Home Trust", Product: "5-Year Fixed", Type: LenderAlternative, TermYears: 5, PostedRate: 5.99},
	{Lender: "MCAP", Product: "5-Year Variable", Type: LenderMonoline, TermYears: 5, PostedRate: 4.65},
	{Lender: "RBC Royal Bank", Product: "5-Year Fixed", Type: LenderBank, TermYears: 5, PostedRate: 4.54},
	{Lender: "Scotiabank", Product: "5-Year Variable", Type: LenderBank, TermYears: 5, PostedRate: 4.95},
	{Lender: "TD Bank", Product: "3-Year Fixed", Type: LenderBank, TermYears: 3, PostedRate: 4.69},
	{Lender: "TD Bank", Product: "5-Year Fixed", Type: LenderBank, TermYears: 5, PostedRate: 4.59},
	{Lender: "Vancity", Product: "2-Year Fixed", Type: LenderCreditUnion, TermYears: 2, PostedRate: 5.04},
	{Lender: "Vancity", Product: "5-Year Fixed", Type: LenderCreditUnion, TermYears: 5, PostedRate: 4.44},
}

// RateInput is an applicant profile. Term 0 means any term.
type RateInput struct {
	CreditScore        int     `json:"creditScore"`
	DownPaymentPercent float64 `json:"downPaymentPercent"`
	Income             float64 `json:"income"`
	LoanAmount         float64 `json:"loanAmount"`
	AmortizationYears  int     `json:"amortizationYears"`
	Term               int     `json:"term"`
}

// RateQuote is one lender product priced for an applicant.
type RateQuote struct {
	Lender            string       `json:"lender"`
	Product           string       `json:"product"`
	LenderType        LenderType   `json:"lenderType"`
	TermYears         int          `json:"termYears"`
	PostedRate        float64      `json:"postedRate"`
	PersonalizedRate  float64      `json:"personalizedRate"`
	MonthlyPayment    float64      `json:"monthlyPayment"`
	StressTestRate    float64      `json:"stressTestRate"`
	StressTestPayment float64      `json:"stressTestPayment"`
	InsurancePremium  float64      `json:"insurancePremium"`
	ApprovalOdds      ApprovalOdds `json:"approvalOdds"`
}

// PersonalizeRate prices every product on the rate sheet for the applicant
// and returns the quotes ordered by sortBy. An empty sortBy orders by rate.
func PersonalizeRate(in RateInput, sortBy SortKey) ([]RateQuote, error) {
	if err := validateRateInput(in, sortBy); err != nil {
		return nil, err
	}

	creditAdj := creditAdjustment(in.CreditScore)
	downAdj := downPaymentAdjustment(in.DownPaymentPercent)
	premium := roundCents(in.LoanAmount * insurancePremiumRate(in.DownPaymentPercent))
	principal := in.LoanAmount + premium
	months := in.AmortizationYears * 12

	quotes := make([]RateQuote, 0, len(LenderProducts))
	for _, p := range LenderProducts {
		if in.Term > 0 && p.TermYears != in.Term {
			continue
		}
		if p.Type != LenderAlternative && in.CreditScore < ALenderMinScore {
			continue
		}

		rate := roundCents(p.PostedRate + creditAdj + downAdj)
		stressRate := math.Max(rate+StressTestBuffer, StressTestFloorRate)
		stressPayment := roundCents(MonthlyPayment(principal, stressRate, months))

		quotes = append(quotes, RateQuote{
			Lender:            p.Lender,
			Product:           p.Product,
			LenderType:        p.Type,
			TermYears:         p.TermYears,
			PostedRate:        p.PostedRate,
			PersonalizedRate:  rate,
			MonthlyPayment:    roundCents(MonthlyPayment(principal, rate, months)),
			StressTestRate:    roundCents(stressRate),
			StressTestPayment: stressPayment,
			InsurancePremium:  premium,
			ApprovalOdds:      approvalOdds(in.CreditScore, stressPayment*12/in.Income),
		})
	}

	sortQuotes(quotes, sortBy)
	return quotes, nil
}

// MonthlyPayment is the level payment that amortizes principal over months
// at annualRate percent.
func MonthlyPayment(principal, annualRate float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	r := annualRate / 100 / 12
	if r == 0 {
		return principal / float64(months)
	}
	f := math.Pow(1+r, float64(months))
	return principal * r * f / (f - 1)
}

func creditAdjustment(score int) float64 {
	switch {
	case score >= 760:
		return -0.20
	case score >= 720:
		return -0.10
	case score >= 680:
		return 0
	case score >= 640:
		return 0.35
	case score >= 600:
		return 0.75
	}
	return 1.50
}

func downPaymentAdjustment(pct float64) float64 {
	switch {
	case pct >= 20:
		return -0.10
	case pct >= 10:
		return -0.05
	}
	return 0
}

// insurancePremiumRate is the default insurance premium, as a share of the
// loan, for high-ratio mortgages.
func insurancePremiumRate(pct float64) float64 {
	switch {
	case pct < 10:
		return 0.040
	case pct < 15:
		return 0.031
	case pct < 20:
		return 0.028
	}
	return 0
}

func approvalOdds(score int, ratio float64) ApprovalOdds {
	switch {
	case score >= 720 && ratio <= 0.32:
		return OddsHigh
	case score >= 650 && ratio <= 0.39:
		return OddsMedium
	}
	return OddsLow
}

func sortQuotes(quotes []RateQuote, key SortKey) {
	sort.SliceStable(quotes, func(i, j int) bool {
		a, b := quotes[i], quotes[j]
		switch key {
		case SortByPayment:
			if a.MonthlyPayment != b.MonthlyPayment {
				return a.MonthlyPayment < b.MonthlyPayment
			}
		case SortByApprovalOdds:
			if a.ApprovalOdds != b.ApprovalOdds {
				return a.ApprovalOdds.rank() > b.ApprovalOdds.rank()
			}
		default:
			if a.PersonalizedRate != b.PersonalizedRate {
				return a.PersonalizedRate < b.PersonalizedRate
			}
		}
		if a.Lender != b.Lender {
			return a.Lender < b.Lender
		}
		return a.Product < b.Product
	})
}

func validateRateInput(in RateInput, sortBy SortKey) error {
	verr := &ValidationError{}
	if in.CreditScore < 300 || in.CreditScore > 900 {
		verr.add("creditScore", "must be between 300 and 900")
	}
	if in.DownPaymentPercent < 0 || in.DownPaymentPercent >= 100 || math.IsNaN(in.DownPaymentPercent) {
		verr.add("downPaymentPercent", "must be at least 0 and below 100")
	}
	if !(in.Income > 0) || math.IsInf(in.Income, 0) {
		verr.add("income", "must be greater than 0")
	}
	if !(in.LoanAmount > 0) || math.IsInf(in.LoanAmount, 0) {
		verr.add("loanAmount", "must be greater than 0")
	}
	if in.AmortizationYears < 5 || in.AmortizationYears > 30 {
		verr.add("amortizationYears", "must be between 5 and 30")
	}
	if in.Term < 0 {
		verr.add("term", "must not be negative")
	}
	switch sortBy {
	case "", SortByRate, SortByPayment, SortByApprovalOdds:
	default:
		verr.add("sortBy", "must be one of rate, payment, approvalOdds")
	}
	return verr.orNil()
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
