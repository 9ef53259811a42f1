package models

import "time"

// PropertyType is the kind of home a client is shopping for.
type PropertyType string

const (
	PropertyCondo    PropertyType = "condo"
	PropertyTownhome PropertyType = "townhome"
	PropertyDetached PropertyType = "detached"
)

// Timeline is the client's purchase horizon in months.
type Timeline string

const (
	Timeline1To3  Timeline = "1-3"
	Timeline3To6  Timeline = "3-6"
	Timeline6To12 Timeline = "6-12"
)

// QuizData holds the raw answers from the affordability quiz.
type QuizData struct {
	Income       float64      `bson:"income" json:"income" binding:"gte=0,lte=100000000"`
	Savings      float64      `bson:"savings" json:"savings" binding:"gte=0,lte=100000000"`
	HasRRSP      bool         `bson:"has_rrsp" json:"hasRRSP"`
	PropertyType PropertyType `bson:"property_type" json:"propertyType" binding:"required,oneof=condo townhome detached"`
	Timeline     Timeline     `bson:"timeline" json:"timeline" binding:"required,oneof=1-3 3-6 6-12"`
	IsNewBuild   bool         `bson:"is_new_build" json:"isNewBuild"`
}

// AffordabilityBreakdown splits the affordable price into its parts.
// Mortgage + DownPayment + ClosingCosts + Buffer == AffordablePrice.
type AffordabilityBreakdown struct {
	AffordablePrice float64 `bson:"affordable_price" json:"affordablePrice"`
	Mortgage        float64 `bson:"mortgage" json:"mortgage"`
	DownPayment     float64 `bson:"down_payment" json:"downPayment"`
	ClosingCosts    float64 `bson:"closing_costs" json:"closingCosts"`
	Buffer          float64 `bson:"buffer" json:"buffer"`
}

// Incentives are the first-time buyer programs a client may qualify for.
type Incentives struct {
	PTT   float64 `bson:"ptt" json:"ptt"`
	GST   float64 `bson:"gst" json:"gst"`
	FHSA  float64 `bson:"fhsa" json:"fhsa"`
	HBP   float64 `bson:"hbp" json:"hbp"`
	Total float64 `bson:"total" json:"total"`
}

// QuizResponse is the stored result of a quiz submission. One per client;
// a re-submission overwrites it.
type QuizResponse struct {
	ID                   string                 `bson:"_id" json:"id"`
	UserID               string                 `bson:"user_id,omitempty" json:"userId,omitempty"`
	SessionID            string                 `bson:"session_id,omitempty" json:"sessionId,omitempty"`
	QuizData             QuizData               `bson:"quiz_data" json:"quizData"`
	CalculatedBreakdown  AffordabilityBreakdown `bson:"calculated_breakdown" json:"calculatedBreakdown"`
	CalculatedIncentives Incentives             `bson:"calculated_incentives" json:"calculatedIncentives"`
	CreatedAt            time.Time              `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time              `bson:"updated_at" json:"updatedAt"`
}
