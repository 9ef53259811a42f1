package handlers_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"homepath/api/internal/models"
	"homepath/api/internal/services"
)

// --- Mocks ---

// MockQuizService implements services.IQuizService
type MockQuizService struct {
	mock.Mock
}

func (m *MockQuizService) Submit(ctx context.Context, sub services.QuizSubmission) (*models.QuizResponse, bool, error) {
	args := m.Called(ctx, sub)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.QuizResponse), args.Bool(1), args.Error(2)
}
func (m *MockQuizService) FindByID(ctx context.Context, id string) (*models.QuizResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizResponse), args.Error(1)
}

// MockProgressService implements services.IProgressService
type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) Get(ctx context.Context, id string) (*models.UserProgress, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}
func (m *MockProgressService) UpsertMilestone(ctx context.Context, id, milestoneID string, status models.MilestoneStatus, data map[string]interface{}) (*models.UserProgress, error) {
	args := m.Called(ctx, id, milestoneID, status, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}
func (m *MockProgressService) CompleteMilestone(ctx context.Context, id, milestoneID string, data map[string]interface{}) (*models.UserProgress, error) {
	args := m.Called(ctx, id, milestoneID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

// MockLeadService implements services.ILeadService
type MockLeadService struct {
	mock.Mock
}

func (m *MockLeadService) Create(ctx context.Context, in services.LeadInput) (*models.Lead, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}
func (m *MockLeadService) List(ctx context.Context, f services.ListFilter) ([]models.Lead, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Lead), args.Error(1)
}

// MockAppointmentService implements services.IAppointmentService
type MockAppointmentService struct {
	mock.Mock
}

func (m *MockAppointmentService) Create(ctx context.Context, in services.AppointmentInput) (*models.Appointment, bool, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Appointment), args.Bool(1), args.Error(2)
}
func (m *MockAppointmentService) List(ctx context.Context, f services.ListFilter) ([]models.Appointment, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}
func (m *MockAppointmentService) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus) (*models.Appointment, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}
func (m *MockAppointmentService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOfferService implements services.IOfferService
type MockOfferService struct {
	mock.Mock
}

func (m *MockOfferService) Create(ctx context.Context, userID string, in services.OfferInput) (*models.Offer, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}
func (m *MockOfferService) FindByID(ctx context.Context, id, userID string) (*models.Offer, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}
func (m *MockOfferService) Submit(ctx context.Context, id, userID string) (*models.Offer, bool, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Offer), args.Bool(1), args.Error(2)
}
func (m *MockOfferService) UpdateStatus(ctx context.Context, id string, status models.OfferStatus) (*models.Offer, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Offer), args.Error(1)
}
func (m *MockOfferService) AddAttachment(ctx context.Context, id, userID, filename, contentType string) (*services.AttachmentUpload, error) {
	args := m.Called(ctx, id, userID, filename, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AttachmentUpload), args.Error(1)
}

// MockChatService implements services.IChatService
type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) GetSession(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatSession), args.Error(1)
}
func (m *MockChatService) SendMessage(ctx context.Context, sessionID, text string) (*models.ChatMessage, error) {
	args := m.Called(ctx, sessionID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatMessage), args.Error(1)
}

// MockAnalyticsService implements services.IAnalyticsService
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Summary(ctx context.Context, since *time.Time) (*services.AnalyticsSummary, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AnalyticsSummary), args.Error(1)
}

// MockAdminService implements services.IAdminService
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Authenticate(ctx context.Context, email, password string) (string, *models.AdminUser, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.AdminUser), args.Error(2)
}
func (m *MockAdminService) EnsureAdmin(ctx context.Context, email, name, password string) (*models.AdminUser, error) {
	args := m.Called(ctx, email, name, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminUser), args.Error(1)
}

// MockOTPService implements services.IOTPService
type MockOTPService struct {
	mock.Mock
}

func (m *MockOTPService) RequestCode(ctx context.Context, phone string) error {
	args := m.Called(ctx, phone)
	return args.Error(0)
}
func (m *MockOTPService) VerifyCode(ctx context.Context, phone, code string) (string, string, error) {
	args := m.Called(ctx, phone, code)
	return args.String(0), args.String(1), args.Error(2)
}

// MockSearchClient implements listings.ISearchClient
type MockSearchClient struct {
	mock.Mock
}

func (m *MockSearchClient) Search(ctx context.Context, q models.PropertySearch) ([]models.PropertyListing, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PropertyListing), args.Error(1)
}
