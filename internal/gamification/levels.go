package gamification

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when a negative point total is classified.
var ErrInvalidArgument = errors.New("invalid argument: points must be non-negative")

// Level is the classification of a cumulative point total. Max and
// NextThreshold are nil for the final, unbounded tier.
type Level struct {
	Tier          int    `json:"tier"`
	Name          string `json:"name"`
	Min           int    `json:"min"`
	Max           *int   `json:"max"`
	NextThreshold *int   `json:"next_threshold"`
}

// HasNext reports whether a higher tier exists.
func (l Level) HasNext() bool {
	return l.NextThreshold != nil
}

// PointsToNext returns how many points are missing to reach the next tier.
func (l Level) PointsToNext(points int) (int, bool) {
	if l.NextThreshold == nil {
		return 0, false
	}
	return *l.NextThreshold - points, true
}

type tier struct {
	name    string
	min     int
	max     int
	bounded bool
}

// Ordered, contiguous, ascending. Every tier's min is the previous max + 1.
var tiers = []tier{
	{name: "Seed", min: 0, max: 199, bounded: true},
	{name: "Sprout", min: 200, max: 499, bounded: true},
	{name: "Plant", min: 500, max: 999, bounded: true},
	{name: "Shrub", min: 1000, max: 2499, bounded: true},
	{name: "Tree", min: 2500, max: 4999, bounded: true},
	{name: "Forest", min: 5000, max: 9999, bounded: true},
	{name: "Pro Gardener", min: 10000},
}

// Classify maps a cumulative point total to its level.
func Classify(points int) (Level, error) {
	if points < 0 {
		return Level{}, fmt.Errorf("%w: got %d", ErrInvalidArgument, points)
	}
	for i := len(tiers) - 1; i >= 0; i-- {
		if points >= tiers[i].min {
			return levelAt(i), nil
		}
	}
	// unreachable: tiers[0].min is 0
	return levelAt(0), nil
}

// MustClassify is Classify for totals already known to be non-negative.
func MustClassify(points int) Level {
	l, err := Classify(points)
	if err != nil {
		panic(err)
	}
	return l
}

// Levels returns the full level table in ascending order.
func Levels() []Level {
	out := make([]Level, len(tiers))
	for i := range tiers {
		out[i] = levelAt(i)
	}
	return out
}

func levelAt(i int) Level {
	t := tiers[i]
	l := Level{Tier: i + 1, Name: t.name, Min: t.min}
	if t.bounded {
		hi := t.max
		l.Max = &hi
	}
	if i+1 < len(tiers) {
		next := tiers[i+1].min
		l.NextThreshold = &next
	}
	return l
}
