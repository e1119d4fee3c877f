package gamification

import (
	"context"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
)

// fakeStore serializes transactions behind one mutex and restores a
// snapshot when fn fails, which is enough to model rollback and row locks.
type fakeStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]models.User
	plants     map[uuid.UUID]models.UserPlant
	activity   []models.ActivityLog
	badges     map[string]bool
	appendErr  error
	saveErr    error
	plantSaves int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[uuid.UUID]models.User),
		plants: make(map[uuid.UUID]models.UserPlant),
		badges: make(map[string]bool),
	}
}

func (f *fakeStore) addUser(points int) uuid.UUID {
	id := uuid.New()
	f.users[id] = models.User{ID: id, ExperiencePoints: points, Level: MustClassify(points).Tier}
	return id
}

func (f *fakeStore) addPlant(userID uuid.UUID, streak int, lastCare *time.Time) uuid.UUID {
	id := uuid.New()
	f.plants[id] = models.UserPlant{ID: id, UserID: userID, StreakDays: streak, LastCareAt: lastCare}
	return id
}

func (f *fakeStore) Tx(ctx context.Context, fn func(tx Store) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	users := make(map[uuid.UUID]models.User, len(f.users))
	for k, v := range f.users {
		users[k] = v
	}
	plants := make(map[uuid.UUID]models.UserPlant, len(f.plants))
	for k, v := range f.plants {
		plants[k] = v
	}
	badges := make(map[string]bool, len(f.badges))
	for k, v := range f.badges {
		badges[k] = v
	}
	activity := append([]models.ActivityLog(nil), f.activity...)

	if err := fn(f); err != nil {
		f.users, f.plants, f.badges, f.activity = users, plants, badges, activity
		return err
	}
	return nil
}

func (f *fakeStore) LockUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeStore) SetPoints(ctx context.Context, userID uuid.UUID, total, level int) error {
	u, ok := f.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.ExperiencePoints = total
	u.Level = level
	f.users[userID] = u
	return nil
}

func (f *fakeStore) AppendActivity(ctx context.Context, entry *models.ActivityLog) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.activity = append(f.activity, *entry)
	return nil
}

func (f *fakeStore) SumActivity(ctx context.Context, userID uuid.UUID) (int, error) {
	sum := 0
	for _, a := range f.activity {
		if a.UserID == userID {
			sum += a.Points
		}
	}
	return sum, nil
}

func (f *fakeStore) HasActivity(ctx context.Context, userID uuid.UUID, action ActionType, relatedID *uuid.UUID, since *time.Time) (bool, error) {
	for _, a := range f.activity {
		if a.UserID != userID || a.ActionType != string(action) {
			continue
		}
		if relatedID != nil && (a.RelatedEntityID == nil || *a.RelatedEntityID != *relatedID) {
			continue
		}
		if since != nil && a.CreatedAt.Before(*since) {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (f *fakeStore) LockUserPlant(ctx context.Context, id uuid.UUID) (*models.UserPlant, error) {
	p, ok := f.plants[id]
	if !ok {
		return nil, ErrUserPlantNotFound
	}
	return &p, nil
}

func (f *fakeStore) SaveStreak(ctx context.Context, id uuid.UUID, streak int, careAt time.Time) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	p := f.plants[id]
	p.StreakDays = streak
	p.LastCareAt = &careAt
	f.plants[id] = p
	f.plantSaves++
	return nil
}

func (f *fakeStore) GrantBadge(ctx context.Context, userID uuid.UUID, badge string) (bool, error) {
	key := userID.String() + "|" + badge
	if f.badges[key] {
		return false, nil
	}
	f.badges[key] = true
	return true, nil
}

func (f *fakeStore) activityFor(userID uuid.UUID) []models.ActivityLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ActivityLog
	for _, a := range f.activity {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out
}

func (f *fakeStore) user(id uuid.UUID) models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

func (f *fakeStore) plant(id uuid.UUID) models.UserPlant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plants[id]
}
