package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"homepath/api/internal/api/handlers"
	"homepath/api/internal/api/middleware"
	"homepath/api/internal/cache"
	"homepath/api/internal/captcha"
	"homepath/api/internal/chatbot"
	"homepath/api/internal/config"
	"homepath/api/internal/email"
	"homepath/api/internal/listings"
	"homepath/api/internal/services"
	"homepath/api/internal/storage"
)

// Services bundles everything the API handlers call.
type Services struct {
	Progress    services.IProgressService
	Quiz        services.IQuizService
	Leads       services.ILeadService
	Appointment services.IAppointmentService
	Offers      services.IOfferService
	Chat        services.IChatService
	Analytics   services.IAnalyticsService
	Admin       services.IAdminService
	OTP         services.IOTPService
	Search      listings.ISearchClient
	Verifier    captcha.ITurnstileVerifier
}

// NewServices wires the services over the store and the external collaborators.
func NewServices(cfg *config.Config, db *mongo.Database, rdb redis.Cmdable, notifier services.INotifier,
	store storage.IS3Storage, completer chatbot.ICompleter, search listings.ISearchClient, logger *zap.Logger) *Services {
	progress := services.NewProgressService(db, logger)
	return &Services{
		Progress:    progress,
		Quiz:        services.NewQuizService(db, progress, logger),
		Leads:       services.NewLeadService(db, notifier, logger),
		Appointment: services.NewAppointmentService(db, progress, notifier, logger),
		Offers:      services.NewOfferService(db, progress, store, notifier, logger),
		Chat:        services.NewChatService(db, completer, cfg.ChatHistoryLimit, logger),
		Analytics:   services.NewAnalyticsService(db),
		Admin:       services.NewAdminService(db, cfg, logger),
		OTP:         services.NewOTPService(rdb, notifier, cfg, logger),
		Search:      search,
		Verifier:    captcha.NewTurnstileVerifier(cfg, logger),
	}
}

// SetupRouter configures and returns the main Gin engine. The rate limiter's
// cleanup runs until ctx is done.
func SetupRouter(ctx context.Context, cfg *config.Config, svc *Services, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg, logger)
	go rateLimiter.Run(ctx)
	// Abuse-prone endpoints: a verified human skips the soft limit.
	guarded := []gin.HandlerFunc{middleware.CaptchaMiddleware(cfg, svc.Verifier, logger), rateLimiter.Limit()}

	authRequired := middleware.AuthMiddleware(cfg.JwtSecret)
	optionalAuth := middleware.OptionalAuthMiddleware(cfg.JwtSecret)
	adminOnly := []gin.HandlerFunc{authRequired, middleware.AdminMiddleware()}
	clientOnly := []gin.HandlerFunc{authRequired, middleware.ClientMiddleware()}

	timeout := cfg.RequestTimeout
	quizHandler := handlers.NewQuizHandler(svc.Quiz, timeout, logger)
	progressHandler := handlers.NewProgressHandler(svc.Progress, timeout, logger)
	calculatorHandler := handlers.NewCalculatorHandler(timeout, logger)
	offerHandler := handlers.NewOfferHandler(svc.Offers, timeout, logger)
	appointmentHandler := handlers.NewAppointmentHandler(svc.Appointment, timeout, logger)
	leadHandler := handlers.NewLeadHandler(svc.Leads, timeout, logger)
	chatHandler := handlers.NewChatHandler(svc.Chat, 3*timeout, logger)
	propertyHandler := handlers.NewPropertyHandler(svc.Search, timeout, logger)
	authHandler := handlers.NewAuthHandler(svc.OTP, svc.Admin, timeout, logger)
	analyticsHandler := handlers.NewAnalyticsHandler(svc.Analytics, timeout, logger)

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/quiz/response/:id", quizHandler.GetResponse)
		apiGroup.POST("/quiz/submit", optionalAuth, quizHandler.Submit)

		apiGroup.GET("/progress/:id", progressHandler.GetProgress)
		apiGroup.PUT("/progress/:id/milestone", progressHandler.UpdateMilestone)
		apiGroup.POST("/progress/:id/complete/:milestoneId", progressHandler.CompleteMilestone)

		apiGroup.POST("/rates/personalize", calculatorHandler.PersonalizeRates)
		apiGroup.POST("/calculators/affordability", calculatorHandler.Affordability)
		apiGroup.POST("/calculators/incentives", calculatorHandler.Incentives)

		offers := apiGroup.Group("/offers")
		offers.POST("", append(clientOnly, offerHandler.CreateOffer)...)
		offers.GET("/:id", append(clientOnly, offerHandler.GetOffer)...)
		offers.POST("/:id/submit", append(clientOnly, offerHandler.SubmitOffer)...)
		offers.POST("/:id/attachments", append(clientOnly, offerHandler.AddAttachment)...)
		offers.PATCH("/:id/status", append(adminOnly, offerHandler.UpdateOfferStatus)...)

		appointments := apiGroup.Group("/appointments")
		appointments.POST("", optionalAuth, appointmentHandler.CreateAppointment)
		appointments.GET("", append(adminOnly, appointmentHandler.ListAppointments)...)
		appointments.PATCH("/:id", append(adminOnly, appointmentHandler.UpdateAppointmentStatus)...)
		appointments.DELETE("/:id", append(adminOnly, appointmentHandler.DeleteAppointment)...)

		apiGroup.POST("/leads", append(guarded, leadHandler.CreateLead)...)
		apiGroup.GET("/leads", append(adminOnly, leadHandler.ListLeads)...)

		apiGroup.GET("/chatbot/session/:sessionId", chatHandler.GetSession)
		apiGroup.POST("/chatbot/message", append(guarded, chatHandler.SendMessage)...)

		apiGroup.GET("/properties/search", propertyHandler.Search)

		apiGroup.POST("/auth/otp/request", append(guarded, authHandler.RequestOTP)...)
		apiGroup.POST("/auth/otp/verify", append(guarded, authHandler.VerifyOTP)...)

		apiGroup.POST("/admin/login", append(guarded, authHandler.AdminLogin)...)
		apiGroup.GET("/admin/analytics", append(adminOnly, analyticsHandler.Summary)...)
	}

	return r
}

// SetupServiceRouter configures the internal service API: shutdown, and in
// mock mode reading back the emails that would have been sent.
func SetupServiceRouter(rdb redis.Cmdable, shutdownChan chan<- struct{}, logger *zap.Logger) *gin.Engine {
	logger = logger.Named("service_api")
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			logger.Info("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
			default:
				logger.Warn("Shutdown channel already signaled")
			}
		case "getTestEmail":
			var args []string // ["recipient"]
			if err := json.Unmarshal(req.Arguments, &args); err != nil || len(args) != 1 {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid arguments: expected JSON array [email]"})
				return
			}
			key := email.OutboxKey(args[0])

			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			defer cancel()
			// Delivery runs in the background worker, so poll briefly.
		poll:
			for i := 0; i < 10; i++ {
				entry, found, err := cache.GetJSON[email.OutboxEntry](ctx, rdb, key)
				if err != nil {
					logger.Error("Failed to read test email", zap.String("key", key), zap.Error(err))
					c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Redis error"})
					return
				}
				if found {
					rdb.Del(ctx, key)
					c.JSON(http.StatusOK, gin.H{"success": true, "data": entry})
					return
				}
				select {
				case <-ctx.Done():
					break poll
				case <-time.After(200 * time.Millisecond):
				}
			}
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Test email not found for key %s", key)})

		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
