package chatbot

import (
	"context"
	"fmt"
	"strings"

	"homepath/api/internal/journey"
	"homepath/api/internal/models"
)

// FallbackCompleter answers from a fixed set of topics. It serves the widget
// when no model is configured.
type FallbackCompleter struct{}

type topic struct {
	keywords []string
	answer   string
}

var topics = []topic{
	{
		keywords: []string{"ptt", "transfer tax"},
		answer: fmt.Sprintf("First-time buyers in BC pay no Property Transfer Tax on the first $%.0f of a home priced up to $%.0f. "+
			"The exemption phases out until $%.0f, above which no exemption applies.",
			journey.PTTFullExemptionLimit, journey.PTTFullExemptionLimit, journey.PTTPartialExemptionLimit),
	},
	{
		keywords: []string{"fhsa", "first home savings"},
		answer: fmt.Sprintf("An FHSA lets you contribute up to $%.0f a year tax-deductibly and withdraw it tax-free for your first home.",
			journey.FHSAAnnualLimit),
	},
	{
		keywords: []string{"rrsp", "hbp", "home buyers"},
		answer: fmt.Sprintf("The Home Buyers' Plan lets you withdraw up to $%.0f from your RRSP toward your down payment, repaid over 15 years.",
			journey.HBPWithdrawalLimit),
	},
	{
		keywords: []string{"gst", "new build", "rebate"},
		answer: fmt.Sprintf("New builds may qualify for a GST rebate of up to $%.0f, fully available up to $%.0f and phased out by $%.0f.",
			journey.GSTRebateMax, journey.GSTRebateFullLimit, journey.GSTRebatePhaseOutLimit),
	},
	{
		keywords: []string{"afford", "budget", "how much"},
		answer: "Take the affordability quiz: with your income and savings we estimate a price range and split it into mortgage, down payment, closing costs and a safety buffer.",
	},
	{
		keywords: []string{"rate", "mortgage", "lender"},
		answer: "Rates depend on your credit score and down payment. The rates step compares lenders for your profile, including the stress test you need to pass.",
	},
	{
		keywords: []string{"down payment", "minimum"},
		answer: fmt.Sprintf("The minimum down payment is 5%% of the first $%.0f and 10%% of the rest.", journey.MinDownPaymentTierLimit),
	},
}

const fallbackDefault = "I can help with budgeting, mortgage rates and first-time buyer incentives like the PTT exemption, FHSA and HBP. " +
	"For advice on a specific property, book a call with one of our agents."

// Complete answers the latest user message.
func (FallbackCompleter) Complete(ctx context.Context, history []models.ChatMessage) (string, error) {
	var question string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.ChatRoleUser {
			question = strings.ToLower(history[i].Content)
			break
		}
	}
	for _, t := range topics {
		for _, k := range t.keywords {
			if strings.Contains(question, k) {
				return t.answer, nil
			}
		}
	}
	return fallbackDefault, nil
}
