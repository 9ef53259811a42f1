package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"homepath/api/internal/models"
)

// --- Mocks ---

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) LeadCreated(ctx context.Context, lead *models.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *mockNotifier) AppointmentBooked(ctx context.Context, appt *models.Appointment) error {
	return m.Called(ctx, appt).Error(0)
}

func (m *mockNotifier) OfferSubmitted(ctx context.Context, offer *models.Offer) error {
	return m.Called(ctx, offer).Error(0)
}

func (m *mockNotifier) DeliverOTP(ctx context.Context, phone, code string) error {
	return m.Called(ctx, phone, code).Error(0)
}

type mockProgressService struct {
	mock.Mock
}

func (m *mockProgressService) Get(ctx context.Context, id string) (*models.UserProgress, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

func (m *mockProgressService) UpsertMilestone(ctx context.Context, id, milestoneID string, status models.MilestoneStatus, data map[string]interface{}) (*models.UserProgress, error) {
	args := m.Called(ctx, id, milestoneID, status, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

func (m *mockProgressService) CompleteMilestone(ctx context.Context, id, milestoneID string, data map[string]interface{}) (*models.UserProgress, error) {
	args := m.Called(ctx, id, milestoneID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, history []models.ChatMessage) (string, error) {
	args := m.Called(ctx, history)
	return args.String(0), args.Error(1)
}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) PresignAttachmentUpload(ctx context.Context, offerID, filename, contentType string) (string, string, error) {
	args := m.Called(ctx, offerID, filename, contentType)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockStorage) PresignAttachmentDownload(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
