package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homepath/api/internal/captcha"
	"homepath/api/internal/config"
)

const (
	// ContextKeyIsHumanVerified holds the key for captcha status in Gin context.
	ContextKeyIsHumanVerified = "isHumanVerified"
)

// CaptchaMiddleware handles Cloudflare Turnstile verification (X-C-V) and token (X-C-T) checks.
// It never aborts; the rate limiter decides what an unverified client may do.
func CaptchaMiddleware(cfg *config.Config, verifier captcha.ITurnstileVerifier, logger *zap.Logger) gin.HandlerFunc {
	logger = logger.Named("captcha")
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		fingerprint := c.GetHeader("X-BFP")
		spaSession := c.GetHeader("X-SPA")
		turnstileToken := c.GetHeader("X-C-T")
		turnstileChallenge := c.GetHeader("X-C-V")

		isHuman := false

		if turnstileToken != "" && verifier.ValidateHumanToken(turnstileToken, clientIP, fingerprint, spaSession) {
			isHuman = true
		}

		if !isHuman && turnstileChallenge != "" {
			verified, err := verifier.Verify(c.Request.Context(), turnstileChallenge, clientIP)
			if err != nil {
				logger.Warn("Turnstile verification failed", zap.String("ip", clientIP), zap.Error(err))
			} else if verified {
				isHuman = true
				newHumanToken, tokenErr := verifier.GenerateHumanToken("", clientIP, fingerprint, spaSession, cfg.CaptchaTokenTTL)
				if tokenErr != nil {
					logger.Error("Failed to issue X-C-T token", zap.Error(tokenErr))
				} else {
					c.Header("X-C-T", newHumanToken)
				}
			}
		}

		c.Set(ContextKeyIsHumanVerified, isHuman)
		c.Next()
	}
}
