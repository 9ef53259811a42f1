package models

import "time"

// OfferStatus is the lifecycle state of a purchase offer.
type OfferStatus string

const (
	OfferDraft     OfferStatus = "draft"
	OfferSubmitted OfferStatus = "submitted"
	OfferAccepted  OfferStatus = "accepted"
	OfferRejected  OfferStatus = "rejected"
)

// CanTransitionTo reports whether an offer in status s may move to next.
// draft -> submitted -> accepted | rejected.
func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	switch s {
	case OfferDraft:
		return next == OfferSubmitted
	case OfferSubmitted:
		return next == OfferAccepted || next == OfferRejected
	}
	return false
}

// OfferDetails holds the terms of an offer.
type OfferDetails struct {
	OfferPrice     float64  `bson:"offer_price" json:"offerPrice" binding:"gt=0"`
	Subjects       []string `bson:"subjects" json:"subjects"`
	ExpiryDate     string   `bson:"expiry_date" json:"expiryDate" binding:"required"`
	PossessionDate string   `bson:"possession_date" json:"possessionDate" binding:"required"`
	Deposit        float64  `bson:"deposit" json:"deposit" binding:"gte=0"`
	Notes          string   `bson:"notes,omitempty" json:"notes,omitempty"`
}

// OfferAttachment references a supporting document uploaded to object storage.
type OfferAttachment struct {
	Key         string    `bson:"key" json:"key"`
	Filename    string    `bson:"filename" json:"filename"`
	ContentType string    `bson:"content_type" json:"contentType"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	DownloadURL string    `bson:"-" json:"downloadUrl,omitempty"`
}

// Offer is a purchase-offer draft or submission.
type Offer struct {
	ID              string            `bson:"_id" json:"id"`
	UserID          string            `bson:"user_id" json:"userId"`
	PropertyAddress string            `bson:"property_address" json:"propertyAddress"`
	OfferDetails    OfferDetails      `bson:"offer_details" json:"offerDetails"`
	Status          OfferStatus       `bson:"status" json:"status"`
	Attachments     []OfferAttachment `bson:"attachments,omitempty" json:"attachments,omitempty"`
	SubmittedAt     *time.Time        `bson:"submitted_at,omitempty" json:"submittedAt,omitempty"`
	CreatedAt       time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time         `bson:"updated_at" json:"updatedAt"`
}
