package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"homepath/api/internal/journey"
	"homepath/api/internal/listings"
	"homepath/api/internal/services"
	"homepath/api/internal/storage"
)

func init() {
	// Report request fields by their wire names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(wireName)
	}
}

func wireName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// responder carries what every handler needs to answer a request.
type responder struct {
	logger  *zap.Logger
	timeout time.Duration
}

func newResponder(logger *zap.Logger, name string, timeout time.Duration) responder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return responder{logger: logger.Named(name), timeout: timeout}
}

// ctx bounds store and upstream calls made for one request.
func (r responder) ctx(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), r.timeout)
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func failFields(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation failed", "fields": fields})
}

// bind decodes the JSON body into obj and answers 400 when it is invalid.
func bind(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		badRequest(c, err)
		return false
	}
	return true
}

// bindOptional is bind for endpoints whose body may be empty.
func bindOptional(c *gin.Context, obj interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		badRequest(c, err)
		return false
	}
	return true
}

func badRequest(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		failFields(c, fieldErrors(verrs))
		return
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		failFields(c, map[string]string{typeErr.Field: "must be a " + typeErr.Type.String()})
		return
	}
	fail(c, http.StatusBadRequest, "Invalid request body")
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Namespace()
		if i := strings.Index(name, "."); i >= 0 {
			name = name[i+1:]
		}
		fields[name] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "numeric":
		return "must contain digits only"
	case "datetime":
		return "must be a date formatted " + fe.Param()
	}
	return "is invalid"
}

// serviceError maps service errors onto the response envelope. Anything not
// recognised is logged and answered with a generic retryable message.
func (r responder) serviceError(c *gin.Context, err error, op string) {
	var verr *journey.ValidationError
	switch {
	case errors.As(err, &verr):
		failFields(c, verr.Fields)
	case errors.Is(err, services.ErrNotFound):
		fail(c, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrInvalidMilestone):
		failFields(c, map[string]string{"milestoneId": "unknown milestone"})
	case errors.Is(err, services.ErrInvalidStatus):
		failFields(c, map[string]string{"status": "invalid status"})
	case errors.Is(err, storage.ErrUnsupportedContentType):
		failFields(c, map[string]string{"contentType": "unsupported content type"})
	case errors.Is(err, services.ErrInvalidTransition):
		fail(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCode), errors.Is(err, services.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrTooManyAttempts), errors.Is(err, services.ErrResendTooSoon):
		fail(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, services.ErrAssistantUnavailable):
		r.logger.Warn(op, zap.Error(err))
		fail(c, http.StatusServiceUnavailable, "The assistant is unavailable, please try again")
	case errors.Is(err, listings.ErrUpstream):
		r.logger.Warn(op, zap.Error(err))
		fail(c, http.StatusBadGateway, "Listing search is unavailable, please try again")
	case errors.Is(err, context.DeadlineExceeded):
		r.logger.Error(op, zap.Error(err))
		fail(c, http.StatusServiceUnavailable, "The request timed out, please try again")
	default:
		_ = c.Error(err)
		r.logger.Error(op, zap.Error(err))
		fail(c, http.StatusInternalServerError, "Something went wrong, please try again")
	}
}
