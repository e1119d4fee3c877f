package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription plan and status tags stored on the user.
const (
	PlanFree    = "free"
	PlanPremium = "premium"

	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
	StatusPaused    = "paused"
	StatusPastDue   = "past_due"
)

// User is the account record. ExperiencePoints is a projection of the
// activity log; Level is derived from it and never authoritative.
type User struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email            string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password         string         `gorm:"not null" json:"-"`
	Role             string         `gorm:"size:20;default:'user'" json:"role"`
	DisplayName      string         `gorm:"size:100" json:"display_name"`
	Bio              string         `gorm:"size:500" json:"bio"`
	AvatarURL        string         `gorm:"type:text" json:"avatar_url"`
	Location         string         `gorm:"size:120" json:"location"`
	ExperiencePoints int            `gorm:"not null;default:0;check:experience_points >= 0" json:"experience_points"`
	Level            int            `gorm:"not null;default:1" json:"level"`

	SubscriptionPlan     string     `gorm:"size:20;not null;default:'free'" json:"subscription_plan"`
	SubscriptionStatus   string     `gorm:"size:30;not null;default:'active'" json:"subscription_status"`
	SubscriptionEnd      *time.Time `json:"subscription_end,omitempty"`
	StripeCustomerID     *string    `gorm:"size:255;uniqueIndex" json:"-"`
	StripeSubscriptionID *string    `gorm:"size:255" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ProfileComplete reports whether every optional profile field is filled in.
func (u *User) ProfileComplete() bool {
	return u.DisplayName != "" && u.Bio != "" && u.AvatarURL != "" && u.Location != ""
}
