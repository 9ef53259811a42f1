package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// Message is a rendered email ready to send.
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Sender defines the interface for sending emails.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SESAPI is the slice of the SES client the sender uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESSender delivers email through Amazon SES.
type SESSender struct {
	client SESAPI
	from   string
	logger *zap.Logger
}

// NewSESSender creates a new SESSender sending as from.
func NewSESSender(client SESAPI, from string, logger *zap.Logger) *SESSender {
	return &SESSender{client: client, from: from, logger: logger.Named("ses")}
}

// Send sends msg through SES.
func (s *SESSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}

	body := &types.Body{}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String("UTF-8")}
	}
	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")}
	}

	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(s.from),
		Destination: &types.Destination{ToAddresses: msg.To},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	})
	if err != nil {
		s.logger.Error("failed to send email", zap.Strings("to", msg.To), zap.Error(err))
		return fmt.Errorf("ses error: %w", err)
	}
	s.logger.Info("email sent", zap.Strings("to", msg.To), zap.String("subject", msg.Subject),
		zap.String("message_id", aws.ToString(out.MessageId)))
	return nil
}

// LoggingSender just logs email details.
// Useful for development or when SES isn't configured.
type LoggingSender struct {
	logger *zap.Logger
}

// NewLoggingSender creates a new LoggingSender.
func NewLoggingSender(logger *zap.Logger) *LoggingSender {
	return &LoggingSender{logger: logger.Named("email")}
}

// Send logs the email instead of sending it.
func (s *LoggingSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info("email (logged, not sent)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text))
	return nil
}
