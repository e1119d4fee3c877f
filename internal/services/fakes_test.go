package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/entitlement"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/gamification"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// memRepo is an in-memory stand-in for *store.Store.
type memRepo struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*models.User
	tokens     map[string]*models.RefreshToken
	plants     map[uuid.UUID]*models.Plant
	userPlants map[uuid.UUID]*models.UserPlant
	diagnoses  []*models.Diagnosis
	chats      []*models.ChatMessage
	compat     []*models.Compatibility
	touched    map[string]time.Time
	plantGets  int
	failCreate error
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:      map[uuid.UUID]*models.User{},
		tokens:     map[string]*models.RefreshToken{},
		plants:     map[uuid.UUID]*models.Plant{},
		userPlants: map[uuid.UUID]*models.UserPlant{},
		touched:    map[string]time.Time{},
	}
}

func (r *memRepo) addUser(u *models.User) *models.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.SubscriptionPlan == "" {
		u.SubscriptionPlan = models.PlanFree
		u.SubscriptionStatus = models.StatusActive
	}
	r.users[u.ID] = u
	return u
}

func (r *memRepo) addPlant(p *models.Plant) *models.Plant {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.plants[p.ID] = p
	return p
}

func (r *memRepo) addUserPlant(up *models.UserPlant) *models.UserPlant {
	if up.ID == uuid.Nil {
		up.ID = uuid.New()
	}
	r.userPlants[up.ID] = up
	return up
}

func (r *memRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *memRepo) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return store.ErrEmailTaken
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memRepo) UpdateProfile(ctx context.Context, id uuid.UUID, upd store.ProfileUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&u.DisplayName, upd.DisplayName)
	set(&u.Bio, upd.Bio)
	set(&u.AvatarURL, upd.AvatarURL)
	set(&u.Location, upd.Location)
	cp := *u
	return &cp, nil
}

func (r *memRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.users, id)
	for k, up := range r.userPlants {
		if up.UserID == id {
			delete(r.userPlants, k)
		}
	}
	return nil
}

func (r *memRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *token
	r.tokens[token.TokenHash] = &cp
	return nil
}

func (r *memRepo) ConsumeRefreshToken(ctx context.Context, tokenHash string, now time.Time) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenHash]
	if !ok || t.Revoked || !t.ExpiresAt.After(now) {
		return nil, store.ErrNotFound
	}
	t.Revoked = true
	cp := *t
	return &cp, nil
}

func (r *memRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[tokenHash]; ok {
		t.Revoked = true
	}
	return nil
}

func (r *memRepo) ListActivity(ctx context.Context, userID uuid.UUID, page, perPage int) ([]models.ActivityLog, int64, error) {
	return []models.ActivityLog{}, 0, nil
}

func (r *memRepo) ListBadges(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error) {
	return []models.UserBadge{}, nil
}

func (r *memRepo) ListPlants(ctx context.Context, f store.PlantFilter) ([]models.Plant, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Plant
	for _, p := range r.plants {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CommonName < out[j].CommonName })
	return out, int64(len(out)), nil
}

func (r *memRepo) GetPlant(ctx context.Context, id uuid.UUID) (*models.Plant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plantGets++
	p, ok := r.plants[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) CreatePlant(ctx context.Context, plant *models.Plant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.plants {
		if p.ScientificName == plant.ScientificName {
			return store.ErrDuplicatePlant
		}
	}
	plant.ID = uuid.New()
	cp := *plant
	r.plants[plant.ID] = &cp
	return nil
}

func (r *memRepo) EnsurePlant(ctx context.Context, plant *models.Plant) (*models.Plant, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.plants {
		if p.ScientificName == plant.ScientificName {
			cp := *p
			return &cp, false, nil
		}
	}
	plant.ID = uuid.New()
	cp := *plant
	r.plants[plant.ID] = &cp
	return plant, true, nil
}

func (r *memRepo) UpdatePlant(ctx context.Context, plant *models.Plant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plants[plant.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *plant
	r.plants[plant.ID] = &cp
	return nil
}

func (r *memRepo) DeletePlant(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plants[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.plants, id)
	return nil
}

func (r *memRepo) ListUserPlants(ctx context.Context, userID uuid.UUID) ([]models.UserPlant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.UserPlant
	for _, up := range r.userPlants {
		if up.UserID == userID {
			out = append(out, *up)
		}
	}
	return out, nil
}

func (r *memRepo) GetUserPlant(ctx context.Context, userID, id uuid.UUID) (*models.UserPlant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	up, ok := r.userPlants[id]
	if !ok || up.UserID != userID {
		return nil, store.ErrNotFound
	}
	cp := *up
	return &cp, nil
}

func (r *memRepo) CreateUserPlant(ctx context.Context, up *models.UserPlant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	up.ID = uuid.New()
	cp := *up
	r.userPlants[up.ID] = &cp
	return nil
}

func (r *memRepo) UpdateUserPlant(ctx context.Context, userID, id uuid.UUID, upd store.UserPlantUpdate) (*models.UserPlant, error) {
	r.mu.Lock()
	up, ok := r.userPlants[id]
	if !ok || up.UserID != userID {
		r.mu.Unlock()
		return nil, store.ErrNotFound
	}
	if upd.Nickname != nil {
		up.Nickname = *upd.Nickname
	}
	if upd.Location != nil {
		up.Location = *upd.Location
	}
	if upd.Notes != nil {
		up.Notes = *upd.Notes
	}
	if upd.ImageURL != nil {
		up.ImageURL = *upd.ImageURL
	}
	if upd.AcquiredAt != nil {
		up.AcquiredAt = upd.AcquiredAt
	}
	r.mu.Unlock()
	return r.GetUserPlant(ctx, userID, id)
}

func (r *memRepo) DeleteUserPlant(ctx context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	up, ok := r.userPlants[id]
	if !ok || up.UserID != userID {
		return store.ErrNotFound
	}
	delete(r.userPlants, id)
	return nil
}

func (r *memRepo) TouchCare(ctx context.Context, id uuid.UUID, column string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched[column] = at
	return nil
}

func (r *memRepo) SetHealthStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if up, ok := r.userPlants[id]; ok {
		up.HealthStatus = status
	}
	return nil
}

func (r *memRepo) CreateDiagnosis(ctx context.Context, d *models.Diagnosis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.ID = uuid.New()
	r.diagnoses = append(r.diagnoses, d)
	return nil
}

func (r *memRepo) ListDiagnoses(ctx context.Context, userID, userPlantID uuid.UUID) ([]models.Diagnosis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Diagnosis
	for _, d := range r.diagnoses {
		if d.UserID == userID && d.UserPlantID == userPlantID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *memRepo) AppendChat(ctx context.Context, msgs ...*models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		m.ID = uuid.New()
		r.chats = append(r.chats, m)
	}
	return nil
}

func (r *memRepo) ChatHistory(ctx context.Context, userID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ChatMessage
	for _, m := range r.chats {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *memRepo) CreateCompatibility(ctx context.Context, c *models.Compatibility) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.New()
	r.compat = append(r.compat, c)
	return nil
}

func (r *memRepo) ListCompatibilities(ctx context.Context, userID uuid.UUID, page, perPage int) ([]models.Compatibility, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Compatibility
	for _, c := range r.compat {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

// memCache is a JSONCache that keeps values in a map.
type memCache struct {
	mu   sync.Mutex
	data map[string]any
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: map[string]any{}}
}

func (c *memCache) Get(ctx context.Context, namespace, key string, result any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[namespace+":"+key]
	if !ok {
		return false, nil
	}
	switch dst := result.(type) {
	case *models.Plant:
		*dst = v.(models.Plant)
	case *ai.Identification:
		*dst = v.(ai.Identification)
	}
	return true, nil
}

func (c *memCache) Set(ctx context.Context, namespace, key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	switch v := value.(type) {
	case *models.Plant:
		c.data[namespace+":"+key] = *v
	default:
		c.data[namespace+":"+key] = v
	}
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, namespace, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, namespace+":"+key)
	return nil
}

type mockAwarder struct {
	mock.Mock
}

func (m *mockAwarder) Award(ctx context.Context, userID uuid.UUID, action gamification.ActionType, relatedID *uuid.UUID) (*gamification.AwardResult, error) {
	args := m.Called(ctx, userID, action, relatedID)
	return awardResult(args.Get(0)), args.Error(1)
}

func (m *mockAwarder) AwardOnce(ctx context.Context, userID uuid.UUID, action gamification.ActionType, relatedID *uuid.UUID, since *time.Time) (*gamification.AwardResult, error) {
	args := m.Called(ctx, userID, action, relatedID, since)
	return awardResult(args.Get(0)), args.Error(1)
}

func (m *mockAwarder) UpdateStreak(ctx context.Context, userPlantID uuid.UUID) (*gamification.StreakResult, error) {
	args := m.Called(ctx, userPlantID)
	var r *gamification.StreakResult
	if v := args.Get(0); v != nil {
		r = v.(*gamification.StreakResult)
	}
	return r, args.Error(1)
}

func awardResult(v any) *gamification.AwardResult {
	if v == nil {
		return nil
	}
	return v.(*gamification.AwardResult)
}

func awarded(action gamification.ActionType, total int) *gamification.AwardResult {
	points, _ := action.Points()
	return &gamification.AwardResult{
		Action: action,
		Points: points,
		Total:  total,
		Level:  gamification.MustClassify(total),
	}
}

type mockLimits struct {
	mock.Mock
}

func (m *mockLimits) IsPremium(user *models.User) bool {
	return m.Called(user).Bool(0)
}

func (m *mockLimits) CanAddPlant(ctx context.Context, user *models.User) (entitlement.Decision, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(entitlement.Decision), args.Error(1)
}

func (m *mockLimits) CanDiagnose(ctx context.Context, user *models.User, userPlantID uuid.UUID) (entitlement.Decision, error) {
	args := m.Called(ctx, user, userPlantID)
	return args.Get(0).(entitlement.Decision), args.Error(1)
}

func (m *mockLimits) CanChat(ctx context.Context, user *models.User) (entitlement.Decision, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(entitlement.Decision), args.Error(1)
}

var (
	allowed = entitlement.Decision{Allowed: true, Limit: 5, Used: 1, Remaining: 4}
	denied  = entitlement.Decision{Allowed: false, Limit: 2, Used: 2, Remaining: 0, Reason: entitlement.LimitPlants}
)

type mockInference struct {
	mock.Mock
}

func (m *mockInference) Identify(ctx context.Context, img ai.Image) (*ai.Identification, error) {
	args := m.Called(ctx, img)
	var r *ai.Identification
	if v := args.Get(0); v != nil {
		r = v.(*ai.Identification)
	}
	return r, args.Error(1)
}

func (m *mockInference) Diagnose(ctx context.Context, img ai.Image, plantName string) (*ai.DiagnosisResult, error) {
	args := m.Called(ctx, img, plantName)
	var r *ai.DiagnosisResult
	if v := args.Get(0); v != nil {
		r = v.(*ai.DiagnosisResult)
	}
	return r, args.Error(1)
}

func (m *mockInference) Compatibility(ctx context.Context, a, b ai.PlantProfile) (*ai.CompatibilityResult, error) {
	args := m.Called(ctx, a, b)
	var r *ai.CompatibilityResult
	if v := args.Get(0); v != nil {
		r = v.(*ai.CompatibilityResult)
	}
	return r, args.Error(1)
}

func (m *mockInference) Chat(ctx context.Context, history []ai.ChatTurn, message string) (string, error) {
	args := m.Called(ctx, history, message)
	return args.String(0), args.Error(1)
}

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

func fixedNow(s string) func() time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}
