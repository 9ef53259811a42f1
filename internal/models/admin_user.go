package models

import "time"

// AdminUser is a back-office account.
type AdminUser struct {
	ID           string    `bson:"_id" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	PasswordHash string    `bson:"password" json:"-"`
	Disabled     bool      `bson:"disabled" json:"disabled"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	LastLoginAt  time.Time `bson:"last_login_at,omitempty" json:"lastLoginAt,omitempty"`
}
