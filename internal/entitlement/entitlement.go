// Package entitlement decides what a user may do under the freemium model.
package entitlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
)

// Free tier ceilings.
const (
	FreePlantLimit               = 2
	FreeDiagnosesPerPlantMonthly = 1
	FreeChatsPerDay              = 5
)

// Limit names, also used as the Reason of a denied Decision.
const (
	LimitPlants    = "plant_limit"
	LimitDiagnoses = "diagnosis_limit"
	LimitChats     = "chat_limit"
)

// IsPremium reports whether the user holds an active, unexpired premium
// subscription at now. A missing end date means the subscription runs
// until the processor says otherwise.
func IsPremium(user *models.User, now time.Time) bool {
	if user == nil {
		return false
	}
	if user.SubscriptionPlan != models.PlanPremium {
		return false
	}
	if user.SubscriptionStatus != models.StatusActive {
		return false
	}
	if user.SubscriptionEnd != nil {
		return user.SubscriptionEnd.After(now)
	}
	return true
}

// Decision is the outcome of a ceiling check. A denied decision is a normal
// result, not an error.
type Decision struct {
	Allowed   bool   `json:"allowed"`
	Unlimited bool   `json:"unlimited"`
	Limit     int    `json:"limit"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
	Reason    string `json:"reason,omitempty"`
}

// Message is the upsell text shown when the decision denies the action.
func (d Decision) Message() string {
	switch d.Reason {
	case LimitPlants:
		return fmt.Sprintf("Free accounts can keep %d plants. Upgrade to Premium for an unlimited collection.", d.Limit)
	case LimitDiagnoses:
		return fmt.Sprintf("Free accounts get %d health check per plant each month. Upgrade to Premium for unlimited diagnoses.", d.Limit)
	case LimitChats:
		return fmt.Sprintf("You've used your %d free messages today. Upgrade to Premium to keep chatting.", d.Limit)
	}
	return "Upgrade to Premium to unlock this feature."
}

func unlimited() Decision {
	return Decision{Allowed: true, Unlimited: true, Limit: -1, Remaining: -1}
}

func decide(reason string, limit int, used int64) Decision {
	d := Decision{Limit: limit, Used: int(used)}
	d.Remaining = limit - d.Used
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	d.Allowed = d.Used < limit
	if !d.Allowed {
		d.Reason = reason
	}
	return d
}

// Usage counts the records the ceilings are measured against.
type Usage interface {
	CountOwnedPlants(ctx context.Context, userID uuid.UUID) (int64, error)
	CountDiagnosesSince(ctx context.Context, userPlantID uuid.UUID, since time.Time) (int64, error)
	CountUserChatsSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
}

// Checker evaluates the ceilings. Premium users are never counted.
type Checker struct {
	usage Usage
	now   func() time.Time
}

func NewChecker(usage Usage) *Checker {
	return &Checker{usage: usage, now: time.Now}
}

func (c *Checker) IsPremium(user *models.User) bool {
	return IsPremium(user, c.now())
}

func (c *Checker) CanAddPlant(ctx context.Context, user *models.User) (Decision, error) {
	if c.IsPremium(user) {
		return unlimited(), nil
	}
	n, err := c.usage.CountOwnedPlants(ctx, user.ID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to count plants: %w", err)
	}
	return c.observe(user, decide(LimitPlants, FreePlantLimit, n)), nil
}

// CanDiagnose counts diagnoses of the plant since the start of the current
// UTC calendar month.
func (c *Checker) CanDiagnose(ctx context.Context, user *models.User, userPlantID uuid.UUID) (Decision, error) {
	if c.IsPremium(user) {
		return unlimited(), nil
	}
	n, err := c.usage.CountDiagnosesSince(ctx, userPlantID, StartOfUTCMonth(c.now()))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to count diagnoses: %w", err)
	}
	return c.observe(user, decide(LimitDiagnoses, FreeDiagnosesPerPlantMonthly, n)), nil
}

// CanChat counts the user's own messages since midnight UTC.
func (c *Checker) CanChat(ctx context.Context, user *models.User) (Decision, error) {
	if c.IsPremium(user) {
		return unlimited(), nil
	}
	n, err := c.usage.CountUserChatsSince(ctx, user.ID, StartOfUTCDay(c.now()))
	if err != nil {
		return Decision{}, fmt.Errorf("failed to count chat messages: %w", err)
	}
	return c.observe(user, decide(LimitChats, FreeChatsPerDay, n)), nil
}

func (c *Checker) observe(user *models.User, d Decision) Decision {
	if !d.Allowed {
		metrics.LimitReached.WithLabelValues(d.Reason).Inc()
		slog.Info("free tier limit reached", "user_id", user.ID.String(), "limit", d.Reason, "used", d.Used)
	}
	return d
}

func StartOfUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func StartOfUTCMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DeniedError carries a denied Decision through an error return so callers
// can answer with an upsell instead of a failure.
type DeniedError struct {
	Decision Decision
}

func (e *DeniedError) Error() string {
	return e.Decision.Message()
}

// Err returns nil when the decision allows the action.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Decision: d}
}
