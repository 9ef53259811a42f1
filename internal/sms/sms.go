// Package sms delivers text messages to clients and agents.
package sms

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"

	"homepath/api/internal/logging"
)

var e164 = regexp.MustCompile(`^\+[1-9]\d{7,14}$`)

// ValidPhone reports whether phone is in E.164 form.
func ValidPhone(phone string) bool {
	return e164.MatchString(phone)
}

// ErrInvalidPhone is returned for numbers that cannot be put in E.164 form.
var ErrInvalidPhone = errors.New("phone number must be a valid North American or E.164 number")

// NormalizePhone converts a user-entered number to E.164. Ten-digit numbers
// and eleven-digit numbers starting with 1 are treated as NANP.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	var out string
	switch {
	case strings.HasPrefix(raw, "+"):
		out = "+" + d
	case len(d) == 10:
		out = "+1" + d
	case len(d) == 11 && d[0] == '1':
		out = "+" + d
	default:
		return "", ErrInvalidPhone
	}
	if !ValidPhone(out) {
		return "", ErrInvalidPhone
	}
	return out, nil
}

// Sender sends a text message to a phone number.
type Sender interface {
	Send(ctx context.Context, phone, body string) error
}

// SNSAPI is the slice of the SNS client the sender uses.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSender publishes transactional SMS through Amazon SNS.
type SNSSender struct {
	client   SNSAPI
	senderID string
	logger   *zap.Logger
}

// NewSNSSender creates a new SNSSender.
func NewSNSSender(client SNSAPI, senderID string, logger *zap.Logger) *SNSSender {
	return &SNSSender{client: client, senderID: senderID, logger: logger.Named("sns")}
}

// Send publishes body to phone.
func (s *SNSSender) Send(ctx context.Context, phone, body string) error {
	if !ValidPhone(phone) {
		return fmt.Errorf("invalid phone number")
	}

	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(s.senderID)}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(body),
		MessageAttributes: attrs,
	})
	if err != nil {
		s.logger.Error("failed to send sms", zap.String("phone", logging.MaskPhone(phone)), zap.Error(err))
		return fmt.Errorf("sns error: %w", err)
	}
	s.logger.Info("sms sent", zap.String("phone", logging.MaskPhone(phone)), zap.String("message_id", aws.ToString(out.MessageId)))
	return nil
}

// LoggingSender logs messages instead of sending them.
type LoggingSender struct {
	logger *zap.Logger
}

// NewLoggingSender creates a new LoggingSender.
func NewLoggingSender(logger *zap.Logger) *LoggingSender {
	return &LoggingSender{logger: logger.Named("sms")}
}

// Send logs the message.
func (s *LoggingSender) Send(ctx context.Context, phone, body string) error {
	s.logger.Info("sms (logged, not sent)", zap.String("phone", logging.MaskPhone(phone)), zap.String("body", body))
	return nil
}
