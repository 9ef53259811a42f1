package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"homepath/api/internal/config"
	"homepath/api/internal/email"
	"homepath/api/internal/logging"
	"homepath/api/internal/metrics"
	"homepath/api/internal/models"
	"homepath/api/internal/services"
	"homepath/api/internal/sms"
)

// Task types.
const (
	TypeLeadNotify        = "notify:lead"
	TypeAppointmentNotify = "notify:appointment"
	TypeOfferNotify       = "notify:offer"
	TypeOTPDeliver        = "otp:deliver"
)

// Queues.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// --- Task Client (Enqueuing tasks) ---

func redisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{Addr: opts.Addr, Password: opts.Password, DB: opts.DB}
}

// NewClient creates an asynq client on the same Redis as rdb.
func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisOpt(rdb))
}

// TaskEnqueuer is the part of asynq.Client the Enqueuer needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer turns service notifications into background tasks.
type Enqueuer struct {
	client TaskEnqueuer
	logger *zap.Logger
}

var _ services.INotifier = (*Enqueuer)(nil)

// NewEnqueuer creates an Enqueuer over client.
func NewEnqueuer(client TaskEnqueuer, logger *zap.Logger) *Enqueuer {
	return &Enqueuer{client: client, logger: logger.Named("enqueuer")}
}

func (e *Enqueuer) enqueue(ctx context.Context, taskType string, payload interface{}, opts ...asynq.Option) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", taskType, err)
	}
	info, err := e.client.EnqueueContext(ctx, asynq.NewTask(taskType, body), opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", taskType, err)
	}
	e.logger.Debug("task enqueued", zap.String("type", taskType), zap.String("task_id", info.ID), zap.String("queue", info.Queue))
	return nil
}

// LeadPayload carries a captured lead to the agent notification.
type LeadPayload struct {
	LeadID    string    `json:"lead_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// AppointmentPayload carries a viewing booking to the notifications.
type AppointmentPayload struct {
	AppointmentID   string `json:"appointment_id"`
	ClientName      string `json:"client_name"`
	ClientPhone     string `json:"client_phone"`
	PropertyAddress string `json:"property_address"`
	PreferredDate   string `json:"preferred_date"`
	PreferredTime   string `json:"preferred_time"`
	Notes           string `json:"notes,omitempty"`
}

// OfferPayload carries a submitted offer to the agent notification.
type OfferPayload struct {
	OfferID         string   `json:"offer_id"`
	UserID          string   `json:"user_id"`
	PropertyAddress string   `json:"property_address"`
	OfferPrice      float64  `json:"offer_price"`
	Deposit         float64  `json:"deposit"`
	Subjects        []string `json:"subjects"`
	ExpiryDate      string   `json:"expiry_date"`
	PossessionDate  string   `json:"possession_date"`
}

// OTPPayload carries a sign-in code to SMS delivery.
type OTPPayload struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// LeadCreated queues the agent notification for a new lead.
func (e *Enqueuer) LeadCreated(ctx context.Context, lead *models.Lead) error {
	return e.enqueue(ctx, TypeLeadNotify, LeadPayload{
		LeadID:    lead.ID,
		Name:      lead.Name,
		Phone:     lead.PhoneNumber,
		Email:     lead.Email,
		Source:    string(lead.Source),
		CreatedAt: lead.CreatedAt,
	}, asynq.Queue(QueueDefault), asynq.MaxRetry(5))
}

// AppointmentBooked queues the agent and client notifications for a booking.
func (e *Enqueuer) AppointmentBooked(ctx context.Context, appt *models.Appointment) error {
	return e.enqueue(ctx, TypeAppointmentNotify, AppointmentPayload{
		AppointmentID:   appt.ID,
		ClientName:      appt.ClientName,
		ClientPhone:     appt.ClientPhone,
		PropertyAddress: appt.PropertyAddress,
		PreferredDate:   appt.PreferredDate,
		PreferredTime:   appt.PreferredTime,
		Notes:           appt.Notes,
	}, asynq.Queue(QueueDefault), asynq.MaxRetry(5))
}

// OfferSubmitted queues the agent notification for a submitted offer.
func (e *Enqueuer) OfferSubmitted(ctx context.Context, offer *models.Offer) error {
	return e.enqueue(ctx, TypeOfferNotify, OfferPayload{
		OfferID:         offer.ID,
		UserID:          offer.UserID,
		PropertyAddress: offer.PropertyAddress,
		OfferPrice:      offer.OfferDetails.OfferPrice,
		Deposit:         offer.OfferDetails.Deposit,
		Subjects:        offer.OfferDetails.Subjects,
		ExpiryDate:      offer.OfferDetails.ExpiryDate,
		PossessionDate:  offer.OfferDetails.PossessionDate,
	}, asynq.Queue(QueueCritical), asynq.MaxRetry(5))
}

// DeliverOTP queues a sign-in code. The task expires with the code so a
// backlog never delivers stale codes.
func (e *Enqueuer) DeliverOTP(ctx context.Context, phone, code string) error {
	return e.enqueue(ctx, TypeOTPDeliver, OTPPayload{Phone: phone, Code: code},
		asynq.Queue(QueueCritical), asynq.MaxRetry(2), asynq.Timeout(30*time.Second), asynq.Deadline(time.Now().Add(5*time.Minute)))
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
type TaskProcessor struct {
	cfg         *config.Config
	emailSender email.Sender
	smsSender   sms.Sender
	logger      *zap.Logger
}

// NewTaskProcessor creates a TaskProcessor.
func NewTaskProcessor(cfg *config.Config, emailSender email.Sender, smsSender sms.Sender, logger *zap.Logger) *TaskProcessor {
	return &TaskProcessor{cfg: cfg, emailSender: emailSender, smsSender: smsSender, logger: logger.Named("tasks")}
}

// SetupServer configures an asynq server on the same Redis as rdb. The
// caller runs it with the mux from NewServeMux.
func SetupServer(rdb *redis.Client, logger *zap.Logger) *asynq.Server {
	return asynq.NewServer(
		redisOpt(rdb),
		asynq.Config{
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed", zap.String("type", task.Type()), zap.Error(err))
			}),
		},
	)
}

// NewServeMux routes every task type to its handler.
func NewServeMux(p *TaskProcessor) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(instrument)
	mux.HandleFunc(TypeLeadNotify, p.HandleLeadNotifyTask)
	mux.HandleFunc(TypeAppointmentNotify, p.HandleAppointmentNotifyTask)
	mux.HandleFunc(TypeOfferNotify, p.HandleOfferNotifyTask)
	mux.HandleFunc(TypeOTPDeliver, p.HandleOTPDeliverTask)
	return mux
}

func instrument(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		err := next.ProcessTask(ctx, t)
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.TasksProcessed.WithLabelValues(t.Type(), result).Inc()
		return err
	})
}

// --- Task Handlers ---

func decode(t *asynq.Task, v interface{}) error {
	if err := json.Unmarshal(t.Payload(), v); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}
	return nil
}

// HandleLeadNotifyTask tells the agent about a new lead.
func (p *TaskProcessor) HandleLeadNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload LeadPayload
	if err := decode(t, &payload); err != nil {
		return err
	}
	if payload.LeadID == "" {
		return fmt.Errorf("lead task without lead id: %w", asynq.SkipRetry)
	}
	return p.notifyAgent(ctx, leadTemplate, payload)
}

// HandleAppointmentNotifyTask tells the agent about a booking and confirms
// receipt to the client.
func (p *TaskProcessor) HandleAppointmentNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload AppointmentPayload
	if err := decode(t, &payload); err != nil {
		return err
	}
	if payload.AppointmentID == "" {
		return fmt.Errorf("appointment task without appointment id: %w", asynq.SkipRetry)
	}
	if err := p.notifyAgent(ctx, appointmentTemplate, payload); err != nil {
		return err
	}

	if !sms.ValidPhone(payload.ClientPhone) {
		p.logger.Warn("skipping client confirmation, bad phone", zap.String("appointment_id", payload.AppointmentID))
		return nil
	}
	body, err := render(appointmentClientSMS, payload)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return p.smsSender.Send(ctx, payload.ClientPhone, body)
}

// HandleOfferNotifyTask tells the agent an offer is ready to present.
func (p *TaskProcessor) HandleOfferNotifyTask(ctx context.Context, t *asynq.Task) error {
	var payload OfferPayload
	if err := decode(t, &payload); err != nil {
		return err
	}
	if payload.OfferID == "" {
		return fmt.Errorf("offer task without offer id: %w", asynq.SkipRetry)
	}
	return p.notifyAgent(ctx, offerTemplate, payload)
}

// HandleOTPDeliverTask texts a sign-in code.
func (p *TaskProcessor) HandleOTPDeliverTask(ctx context.Context, t *asynq.Task) error {
	var payload OTPPayload
	if err := decode(t, &payload); err != nil {
		return err
	}
	if !sms.ValidPhone(payload.Phone) || len(payload.Code) != 6 {
		return fmt.Errorf("invalid otp payload: %w", asynq.SkipRetry)
	}

	body, err := render(otpSMS, struct {
		AppName string
		Code    string
		Minutes int
	}{p.cfg.AppName, payload.Code, int(p.cfg.OTPTTL.Minutes())})
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := p.smsSender.Send(ctx, payload.Phone, body); err != nil {
		return err
	}
	p.logger.Info("sign-in code delivered", zap.String("phone", logging.MaskPhone(payload.Phone)))
	return nil
}

// notifyAgent emails and texts the agent, whichever contacts are configured.
func (p *TaskProcessor) notifyAgent(ctx context.Context, tmpl notification, data interface{}) error {
	subject, err := render(tmpl.subject, data)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	text, err := render(tmpl.body, data)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if p.cfg.AgentEmail == "" && p.cfg.AgentPhone == "" {
		p.logger.Warn("no agent contact configured, dropping notification", zap.String("subject", subject))
		return nil
	}
	if p.cfg.AgentEmail != "" {
		msg := email.Message{To: []string{p.cfg.AgentEmail}, Subject: subject, Text: text}
		if err := p.emailSender.Send(ctx, msg); err != nil {
			return fmt.Errorf("failed to email agent: %w", err)
		}
	}
	if p.cfg.AgentPhone != "" {
		if err := p.smsSender.Send(ctx, p.cfg.AgentPhone, subject); err != nil {
			return fmt.Errorf("failed to text agent: %w", err)
		}
	}
	return nil
}
