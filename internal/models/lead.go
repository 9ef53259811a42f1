package models

import "time"

// LeadSource identifies which page captured a lead.
type LeadSource string

const (
	LeadSourceLanding    LeadSource = "landing"
	LeadSourceMortgage   LeadSource = "mortgage"
	LeadSourceIncentives LeadSource = "incentives"
	LeadSourcePricing    LeadSource = "pricing"
	LeadSourceBlog       LeadSource = "blog"
	LeadSourceProperties LeadSource = "properties"
	LeadSourceCalculator LeadSource = "calculator"
	LeadSourceGuide      LeadSource = "guide"
)

// LeadSources lists every accepted lead source.
var LeadSources = []LeadSource{
	LeadSourceLanding, LeadSourceMortgage, LeadSourceIncentives, LeadSourcePricing,
	LeadSourceBlog, LeadSourceProperties, LeadSourceCalculator, LeadSourceGuide,
}

// Lead is a contact captured by the universal capture modal. Leads are
// insert-only.
type Lead struct {
	ID          string                 `bson:"_id" json:"id"`
	Name        string                 `bson:"name" json:"name"`
	PhoneNumber string                 `bson:"phone_number" json:"phoneNumber"`
	Email       string                 `bson:"email,omitempty" json:"email,omitempty"`
	Source      LeadSource             `bson:"source" json:"source"`
	Metadata    map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt   time.Time              `bson:"created_at" json:"createdAt"`
}
