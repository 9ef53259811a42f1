package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"homepath/api/internal/db"
	"homepath/api/internal/journey"
	"homepath/api/internal/models"
	"homepath/api/internal/sms"
	"homepath/api/internal/utils"
)

// AppointmentInput is the body of a viewing booking request.
type AppointmentInput struct {
	ClientName      string                 `json:"clientName" binding:"required,max=120"`
	ClientPhone     string                 `json:"clientPhone" binding:"required"`
	PropertyAddress string                 `json:"propertyAddress" binding:"required"`
	PropertyDetails map[string]interface{} `json:"propertyDetails"`
	PreferredDate   string                 `json:"preferredDate" binding:"required,datetime=2006-01-02"`
	PreferredTime   string                 `json:"preferredTime" binding:"required"`
	Notes           string                 `json:"notes" binding:"max=2000"`
	UserID          string                 `json:"userId"`
}

// IAppointmentService books and manages property viewings.
type IAppointmentService interface {
	Create(ctx context.Context, in AppointmentInput) (appt *models.Appointment, milestoneUpdated bool, err error)
	List(ctx context.Context, f ListFilter) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error)
	Delete(ctx context.Context, id string) error
}

type appointmentService struct {
	db       *mongo.Database
	progress IProgressService
	notifier INotifier
	logger   *zap.Logger
}

// NewAppointmentService creates a new AppointmentService.
func NewAppointmentService(db *mongo.Database, progress IProgressService, notifier INotifier, logger *zap.Logger) IAppointmentService {
	return &appointmentService{db: db, progress: progress, notifier: notifier, logger: logger.Named("appointments")}
}

// Create stores a pending appointment. For signed-in clients it then
// completes the viewing milestone as a separate write.
func (s *appointmentService) Create(ctx context.Context, in AppointmentInput) (*models.Appointment, bool, error) {
	phone, err := sms.NormalizePhone(in.ClientPhone)
	if err != nil {
		return nil, false, &journey.ValidationError{Fields: map[string]string{"clientPhone": err.Error()}}
	}

	now := time.Now().UTC()
	appt := &models.Appointment{
		UserID:          in.UserID,
		ClientName:      strings.TrimSpace(in.ClientName),
		ClientPhone:     phone,
		PropertyAddress: strings.TrimSpace(in.PropertyAddress),
		PropertyDetails: in.PropertyDetails,
		PreferredDate:   in.PreferredDate,
		PreferredTime:   in.PreferredTime,
		Notes:           in.Notes,
		Status:          models.AppointmentPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	op := func() error {
		appt.ID = utils.NewID()
		return db.InsertOne(ctx, s.db, db.CollectionAppointments, appt)
	}
	if err := db.Try(ctx, op); err != nil {
		return nil, false, fmt.Errorf("failed to store appointment: %w", err)
	}

	if err := s.notifier.AppointmentBooked(ctx, appt); err != nil {
		s.logger.Warn("failed to queue appointment notification", zap.String("appointment_id", appt.ID), zap.Error(err))
	}

	if appt.UserID == "" {
		return appt, false, nil
	}
	_, err = s.progress.CompleteMilestone(ctx, appt.UserID, journey.StepViewing, map[string]interface{}{
		"appointmentId":   appt.ID,
		"propertyAddress": appt.PropertyAddress,
	})
	if err != nil {
		s.logger.Error("appointment stored but milestone not updated",
			zap.String("appointment_id", appt.ID), zap.Error(err))
		return appt, false, nil
	}
	return appt, true, nil
}

// List returns appointments matching f.
func (s *appointmentService) List(ctx context.Context, f ListFilter) ([]models.Appointment, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	f.createdRange(filter)
	return db.FindMany[models.Appointment](ctx, s.db, db.CollectionAppointments, filter, f.findOptions())
}

// UpdateStatus sets an appointment's status.
func (s *appointmentService) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}

	var updated models.Appointment
	err := s.db.Collection(db.CollectionAppointments).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment %s: %w", id, err)
	}

	s.logger.Info("appointment status changed", zap.String("appointment_id", id), zap.String("status", string(status)))
	return &updated, nil
}

// Delete removes an appointment.
func (s *appointmentService) Delete(ctx context.Context, id string) error {
	res, err := s.db.Collection(db.CollectionAppointments).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete appointment %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
