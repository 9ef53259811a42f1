package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"homepath/api/internal/config"
	"homepath/api/internal/email"
	"homepath/api/internal/models"
	"homepath/api/internal/tasks"
)

// --- Mocks ---

type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) Send(ctx context.Context, msg email.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type MockSMSSender struct {
	mock.Mock
}

func (m *MockSMSSender) Send(ctx context.Context, phone, body string) error {
	return m.Called(ctx, phone, body).Error(0)
}

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

func agentConfig() *config.Config {
	return &config.Config{AppName: "HomePath", AgentEmail: "agent@homepath.example.com", AgentPhone: "+16045550100", OTPTTL: 5 * time.Minute}
}

func newTask(t *testing.T, taskType string, payload interface{}) *asynq.Task {
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(taskType, body)
}

// --- Tests ---

func TestHandleLeadNotifyTask_Success(t *testing.T) {
	mockEmail := new(MockEmailSender)
	mockSMS := new(MockSMSSender)
	p := tasks.NewTaskProcessor(agentConfig(), mockEmail, mockSMS, zap.NewNop())

	task := newTask(t, tasks.TypeLeadNotify, tasks.LeadPayload{
		LeadID: "lead-1", Name: "Ana Lee", Phone: "+16045550199", Source: "mortgage",
	})

	mockEmail.On("Send", mock.Anything, mock.MatchedBy(func(msg email.Message) bool {
		return assert.Equal(t, []string{"agent@homepath.example.com"}, msg.To) &&
			assert.Equal(t, "New mortgage lead: Ana Lee", msg.Subject) &&
			assert.Contains(t, msg.Text, "Phone: +16045550199") &&
			assert.NotContains(t, msg.Text, "Email:")
	})).Return(nil)
	mockSMS.On("Send", mock.Anything, "+16045550100", "New mortgage lead: Ana Lee").Return(nil)

	assert.NoError(t, p.HandleLeadNotifyTask(context.Background(), task))
	mockEmail.AssertExpectations(t)
	mockSMS.AssertExpectations(t)
}

func TestHandleLeadNotifyTask_BadPayload(t *testing.T) {
	mockEmail := new(MockEmailSender)
	p := tasks.NewTaskProcessor(agentConfig(), mockEmail, new(MockSMSSender), zap.NewNop())

	err := p.HandleLeadNotifyTask(context.Background(), asynq.NewTask(tasks.TypeLeadNotify, []byte("{")))
	assert.True(t, errors.Is(err, asynq.SkipRetry), "Error should be SkipRetry for a corrupt payload")

	err = p.HandleLeadNotifyTask(context.Background(), newTask(t, tasks.TypeLeadNotify, tasks.LeadPayload{}))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	mockEmail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestHandleLeadNotifyTask_SendFailureIsRetried(t *testing.T) {
	mockEmail := new(MockEmailSender)
	mockEmail.On("Send", mock.Anything, mock.Anything).Return(assert.AnError)
	p := tasks.NewTaskProcessor(agentConfig(), mockEmail, new(MockSMSSender), zap.NewNop())

	err := p.HandleLeadNotifyTask(context.Background(), newTask(t, tasks.TypeLeadNotify, tasks.LeadPayload{LeadID: "lead-1", Name: "A", Source: "blog"}))
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleLeadNotifyTask_NoAgentContacts(t *testing.T) {
	mockEmail := new(MockEmailSender)
	mockSMS := new(MockSMSSender)
	p := tasks.NewTaskProcessor(&config.Config{}, mockEmail, mockSMS, zap.NewNop())

	err := p.HandleLeadNotifyTask(context.Background(), newTask(t, tasks.TypeLeadNotify, tasks.LeadPayload{LeadID: "lead-1", Name: "A", Source: "blog"}))
	assert.NoError(t, err)
	mockEmail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	mockSMS.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleAppointmentNotifyTask_ConfirmsToClient(t *testing.T) {
	mockEmail := new(MockEmailSender)
	mockSMS := new(MockSMSSender)
	cfg := agentConfig()
	cfg.AgentPhone = ""
	p := tasks.NewTaskProcessor(cfg, mockEmail, mockSMS, zap.NewNop())

	task := newTask(t, tasks.TypeAppointmentNotify, tasks.AppointmentPayload{
		AppointmentID: "appt-1", ClientName: "Ana", ClientPhone: "+16045550199",
		PropertyAddress: "2261 Clearbrook Rd", PreferredDate: "2026-04-02", PreferredTime: "10:30",
	})

	mockEmail.On("Send", mock.Anything, mock.MatchedBy(func(msg email.Message) bool {
		return msg.Subject == "Viewing request: 2261 Clearbrook Rd"
	})).Return(nil)
	mockSMS.On("Send", mock.Anything, "+16045550199", mock.MatchedBy(func(body string) bool {
		return assert.Contains(t, body, "2261 Clearbrook Rd on 2026-04-02 at 10:30")
	})).Return(nil)

	assert.NoError(t, p.HandleAppointmentNotifyTask(context.Background(), task))
	mockEmail.AssertExpectations(t)
	mockSMS.AssertExpectations(t)
}

func TestHandleOfferNotifyTask(t *testing.T) {
	mockEmail := new(MockEmailSender)
	cfg := agentConfig()
	cfg.AgentPhone = ""
	p := tasks.NewTaskProcessor(cfg, mockEmail, new(MockSMSSender), zap.NewNop())

	task := newTask(t, tasks.TypeOfferNotify, tasks.OfferPayload{
		OfferID: "offer-1", PropertyAddress: "45-19128 65 Ave", OfferPrice: 735000, Deposit: 36750,
		Subjects: []string{"financing", "inspection"}, ExpiryDate: "2026-04-10", PossessionDate: "2026-06-01",
	})
	mockEmail.On("Send", mock.Anything, mock.MatchedBy(func(msg email.Message) bool {
		return assert.Equal(t, "Offer submitted: 45-19128 65 Ave at $735,000", msg.Subject) &&
			assert.Contains(t, msg.Text, "Deposit:    $36,750") &&
			assert.Contains(t, msg.Text, "financing, inspection")
	})).Return(nil)

	assert.NoError(t, p.HandleOfferNotifyTask(context.Background(), task))
	mockEmail.AssertExpectations(t)
}

func TestHandleOTPDeliverTask(t *testing.T) {
	mockSMS := new(MockSMSSender)
	p := tasks.NewTaskProcessor(agentConfig(), new(MockEmailSender), mockSMS, zap.NewNop())

	mockSMS.On("Send", mock.Anything, "+16045550199", "Your HomePath code is 042517. It expires in 5 minutes.").Return(nil)
	err := p.HandleOTPDeliverTask(context.Background(), newTask(t, tasks.TypeOTPDeliver, tasks.OTPPayload{Phone: "+16045550199", Code: "042517"}))
	assert.NoError(t, err)
	mockSMS.AssertExpectations(t)

	err = p.HandleOTPDeliverTask(context.Background(), newTask(t, tasks.TypeOTPDeliver, tasks.OTPPayload{Phone: "604", Code: "042517"}))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestEnqueuer_QueuesTasks(t *testing.T) {
	client := new(MockEnqueuer)
	e := tasks.NewEnqueuer(client, zap.NewNop())
	ctx := context.Background()

	queueOf := func(opts []asynq.Option) string {
		for _, o := range opts {
			if o.Type() == asynq.QueueOpt {
				return o.Value().(string)
			}
		}
		return ""
	}

	client.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
		return task.Type() == tasks.TypeOfferNotify
	}), mock.MatchedBy(func(opts []asynq.Option) bool {
		return queueOf(opts) == tasks.QueueCritical
	})).Return(&asynq.TaskInfo{ID: "t1", Queue: tasks.QueueCritical}, nil)

	offer := &models.Offer{ID: "offer-1", UserID: "u", OfferDetails: models.OfferDetails{OfferPrice: 500000}}
	require.NoError(t, e.OfferSubmitted(ctx, offer))

	task := client.Calls[0].Arguments.Get(1).(*asynq.Task)
	var payload tasks.OfferPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, "offer-1", payload.OfferID)
	assert.InDelta(t, 500000.0, payload.OfferPrice, 1e-9)
}

func TestEnqueuer_PropagatesErrors(t *testing.T) {
	client := new(MockEnqueuer)
	client.On("EnqueueContext", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)
	e := tasks.NewEnqueuer(client, zap.NewNop())

	err := e.DeliverOTP(context.Background(), "+16045550199", "123456")
	assert.ErrorIs(t, err, assert.AnError)
}
