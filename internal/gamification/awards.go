package gamification

import (
	"errors"
	"fmt"
)

var ErrInvalidAward = errors.New("invalid award")

// ActionType tags an experience award with the user action that earned it.
type ActionType string

const (
	ActionIdentifyNewSpecies ActionType = "identify_new_species"
	ActionDiagnosisHealthy   ActionType = "diagnosis_healthy"
	ActionDiagnosisIssues    ActionType = "diagnosis_issues"
	ActionDailyCheckin       ActionType = "daily_checkin"
	ActionStreak7Days        ActionType = "streak_7_days"
	ActionStreak30Days       ActionType = "streak_30_days"
	ActionFirstRepot         ActionType = "first_repot"
	ActionWatering           ActionType = "watering"
	ActionCompatibilityCheck ActionType = "compatibility_check"
	ActionProfileCompleted   ActionType = "profile_completed"
)

// Fixed award values.
const (
	PointsIdentifyNewSpecies = 50
	PointsDiagnosisHealthy   = 30
	PointsDiagnosisIssues    = 20
	PointsDailyCheckin       = 10
	PointsStreak7Days        = 100
	PointsStreak30Days       = 500
	PointsFirstRepot         = 25
	PointsWatering           = 5
	PointsCompatibilityCheck = 15
	PointsProfileCompleted   = 50
)

var awardValues = map[ActionType]int{
	ActionIdentifyNewSpecies: PointsIdentifyNewSpecies,
	ActionDiagnosisHealthy:   PointsDiagnosisHealthy,
	ActionDiagnosisIssues:    PointsDiagnosisIssues,
	ActionDailyCheckin:       PointsDailyCheckin,
	ActionStreak7Days:        PointsStreak7Days,
	ActionStreak30Days:       PointsStreak30Days,
	ActionFirstRepot:         PointsFirstRepot,
	ActionWatering:           PointsWatering,
	ActionCompatibilityCheck: PointsCompatibilityCheck,
	ActionProfileCompleted:   PointsProfileCompleted,
}

// Points returns the fixed value for the action.
func (a ActionType) Points() (int, bool) {
	p, ok := awardValues[a]
	return p, ok
}

// AwardValues returns a copy of the award table.
func AwardValues() map[ActionType]int {
	out := make(map[ActionType]int, len(awardValues))
	for k, v := range awardValues {
		out[k] = v
	}
	return out
}

func validateAward(amount int, action ActionType) error {
	want, ok := action.Points()
	if !ok {
		return fmt.Errorf("%w: unknown action type %q", ErrInvalidAward, action)
	}
	if amount != want {
		return fmt.Errorf("%w: %s is worth %d points, got %d", ErrInvalidAward, action, want, amount)
	}
	return nil
}

// Streak badges and the bonus each one pays out.
const (
	BadgeStreak7  = "streak_7"
	BadgeStreak30 = "streak_30"
)

type streakBonus struct {
	days   int
	badge  string
	action ActionType
}

var streakBonuses = []streakBonus{
	{days: 7, badge: BadgeStreak7, action: ActionStreak7Days},
	{days: 30, badge: BadgeStreak30, action: ActionStreak30Days},
}
