package services

import (
	"context"

	"homepath/api/internal/models"
)

// INotifier hands notifications to background delivery. Implementations
// must not block on the delivery channel itself.
type INotifier interface {
	LeadCreated(ctx context.Context, lead *models.Lead) error
	AppointmentBooked(ctx context.Context, appt *models.Appointment) error
	OfferSubmitted(ctx context.Context, offer *models.Offer) error
	DeliverOTP(ctx context.Context, phone, code string) error
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) LeadCreated(context.Context, *models.Lead) error               { return nil }
func (NopNotifier) AppointmentBooked(context.Context, *models.Appointment) error { return nil }
func (NopNotifier) OfferSubmitted(context.Context, *models.Offer) error          { return nil }
func (NopNotifier) DeliverOTP(context.Context, string, string) error             { return nil }
