package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"homepath/api/internal/auth"
	"homepath/api/internal/config"
	"homepath/api/internal/journey"
	"homepath/api/internal/logging"
	"homepath/api/internal/sms"
)

// OTPResendInterval is the minimum gap between two codes for one number.
const OTPResendInterval = 30 * time.Second

// ErrResendTooSoon is returned when a code is requested again within OTPResendInterval.
var ErrResendTooSoon = errors.New("a code was sent recently, try again shortly")

// OTPRequestInput is the body of a code request.
type OTPRequestInput struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

// OTPVerifyInput is the body of a code verification request.
type OTPVerifyInput struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Code        string `json:"code" binding:"required,len=6,numeric"`
}

// IOTPService signs clients in with a code sent by text message.
type IOTPService interface {
	RequestCode(ctx context.Context, phone string) error
	VerifyCode(ctx context.Context, phone, code string) (token, userID string, err error)
}

type otpService struct {
	rdb      redis.Cmdable
	notifier INotifier
	cfg      *config.Config
	logger   *zap.Logger
}

// NewOTPService creates a new OTPService backed by Redis.
func NewOTPService(rdb redis.Cmdable, notifier INotifier, cfg *config.Config, logger *zap.Logger) IOTPService {
	return &otpService{rdb: rdb, notifier: notifier, cfg: cfg, logger: logger.Named("otp")}
}

func otpKey(phone string) string         { return "otp:" + phone }
func otpCooldownKey(phone string) string { return "otp:cooldown:" + phone }

// RequestCode stores a hashed six-digit code for phone and queues its delivery.
func (s *otpService) RequestCode(ctx context.Context, rawPhone string) error {
	phone, err := sms.NormalizePhone(rawPhone)
	if err != nil {
		return &journey.ValidationError{Fields: map[string]string{"phoneNumber": err.Error()}}
	}

	ok, err := s.rdb.SetNX(ctx, otpCooldownKey(phone), 1, OTPResendInterval).Result()
	if err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}
	if !ok {
		return ErrResendTooSoon
	}

	code, err := newCode()
	if err != nil {
		return err
	}
	hash, err := auth.HashCode(code)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, otpKey(phone))
		pipe.HSet(ctx, otpKey(phone), "hash", hash, "attempts", 0)
		pipe.Expire(ctx, otpKey(phone), s.cfg.OTPTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	if err := s.notifier.DeliverOTP(ctx, phone, code); err != nil {
		s.rdb.Del(ctx, otpKey(phone), otpCooldownKey(phone))
		return fmt.Errorf("failed to queue code delivery: %w", err)
	}
	s.logger.Info("sign-in code issued", zap.String("phone", logging.MaskPhone(phone)))
	return nil
}

// VerifyCode checks a code and returns a client token and the client's user
// id on success. Every attempt counts, and the code is burned once the limit
// is reached.
func (s *otpService) VerifyCode(ctx context.Context, rawPhone, code string) (string, string, error) {
	phone, err := sms.NormalizePhone(rawPhone)
	if err != nil {
		return "", "", &journey.ValidationError{Fields: map[string]string{"phoneNumber": err.Error()}}
	}
	key := otpKey(phone)

	// The counter and the hash are read together so an expiry between them
	// cannot leave a counter-only hash without a TTL.
	var attemptsCmd *redis.IntCmd
	var hashCmd *redis.StringCmd
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		attemptsCmd = pipe.HIncrBy(ctx, key, "attempts", 1)
		hashCmd = pipe.HGet(ctx, key, "hash")
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", "", fmt.Errorf("redis verify: %w", err)
	}
	hash, err := hashCmd.Result()
	if errors.Is(err, redis.Nil) {
		s.rdb.Del(ctx, key)
		return "", "", ErrInvalidCode
	}
	if err != nil {
		return "", "", fmt.Errorf("redis hget: %w", err)
	}

	if attemptsCmd.Val() > int64(s.cfg.OTPMaxAttempts) {
		s.rdb.Del(ctx, key)
		s.logger.Warn("sign-in code locked after too many attempts", zap.String("phone", logging.MaskPhone(phone)))
		return "", "", ErrTooManyAttempts
	}
	if !auth.CheckPasswordHash(code, hash) {
		return "", "", ErrInvalidCode
	}

	s.rdb.Del(ctx, key)
	token, err := auth.GenerateJWT(phone, auth.RoleClient, s.cfg.JwtSecret, s.cfg.JwtTTL)
	if err != nil {
		return "", "", err
	}
	return token, phone, nil
}

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
