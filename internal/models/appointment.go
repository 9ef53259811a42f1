package models

import "time"

// AppointmentStatus is the lifecycle state of a viewing booking.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether s is a known appointment status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

// Appointment is a property-viewing booking. Only admins change its status.
type Appointment struct {
	ID              string                 `bson:"_id" json:"id"`
	UserID          string                 `bson:"user_id,omitempty" json:"userId,omitempty"`
	ClientName      string                 `bson:"client_name" json:"clientName"`
	ClientPhone     string                 `bson:"client_phone" json:"clientPhone"`
	PropertyAddress string                 `bson:"property_address" json:"propertyAddress"`
	PropertyDetails map[string]interface{} `bson:"property_details,omitempty" json:"propertyDetails,omitempty"`
	PreferredDate   string                 `bson:"preferred_date" json:"preferredDate"`
	PreferredTime   string                 `bson:"preferred_time" json:"preferredTime"`
	Notes           string                 `bson:"notes,omitempty" json:"notes,omitempty"`
	Status          AppointmentStatus      `bson:"status" json:"status"`
	CreatedAt       time.Time              `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time              `bson:"updated_at" json:"updatedAt"`
}
