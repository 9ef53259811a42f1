package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"homepath/api/internal/auth"
	"homepath/api/internal/config"
	"homepath/api/internal/db"
	"homepath/api/internal/models"
	"homepath/api/internal/utils"
)

// AdminLoginInput is the body of an admin login request.
type AdminLoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// IAdminService authenticates back-office users.
type IAdminService interface {
	Authenticate(ctx context.Context, email, password string) (token string, admin *models.AdminUser, err error)
	EnsureAdmin(ctx context.Context, email, name, password string) (*models.AdminUser, error)
}

type adminService struct {
	db     *mongo.Database
	cfg    *config.Config
	logger *zap.Logger
}

// NewAdminService creates a new AdminService.
func NewAdminService(db *mongo.Database, cfg *config.Config, logger *zap.Logger) IAdminService {
	return &adminService{db: db, cfg: cfg, logger: logger.Named("admin")}
}

// Authenticate checks an admin's password and issues an admin token.
func (s *adminService) Authenticate(ctx context.Context, email, password string) (string, *models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	admin, err := db.FindOne[models.AdminUser](ctx, s.db, db.CollectionAdminUsers, bson.M{"email": email})
	if errors.Is(err, db.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if admin.Disabled || !auth.CheckPasswordHash(password, admin.PasswordHash) {
		s.logger.Warn("admin login rejected", zap.String("admin_id", admin.ID))
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(admin.ID, auth.RoleAdmin, s.cfg.JwtSecret, s.cfg.AdminJwtTTL)
	if err != nil {
		return "", nil, err
	}

	admin.LastLoginAt = time.Now().UTC()
	if _, err := s.db.Collection(db.CollectionAdminUsers).UpdateOne(ctx,
		bson.M{"_id": admin.ID}, bson.M{"$set": bson.M{"last_login_at": admin.LastLoginAt}}); err != nil {
		s.logger.Warn("failed to record admin login", zap.String("admin_id", admin.ID), zap.Error(err))
	}
	return token, admin, nil
}

// EnsureAdmin creates the admin account for email unless it already exists.
func (s *adminService) EnsureAdmin(ctx context.Context, email, name, password string) (*models.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := db.FindOne[models.AdminUser](ctx, s.db, db.CollectionAdminUsers, bson.M{"email": email})
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	admin := &models.AdminUser{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	op := func() error {
		admin.ID = utils.NewID()
		return db.InsertOne(ctx, s.db, db.CollectionAdminUsers, admin)
	}
	if err := db.Try(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to create admin %s: %w", email, err)
	}
	s.logger.Info("admin account created", zap.String("admin_id", admin.ID))
	return admin, nil
}
