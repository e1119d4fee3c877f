package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/entitlement"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/gamification"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
)

// UpsellResponse is sent with 402 when a free tier ceiling is reached.
type UpsellResponse struct {
	Error    bool                 `json:"error"`
	Message  string               `json:"message"`
	Upgrade  bool                 `json:"upgrade"`
	Decision entitlement.Decision `json:"decision"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func NewPagination(page, perPage int, total int64) Pagination {
	p := Pagination{Page: page, PerPage: perPage, Total: total}
	if perPage > 0 {
		p.TotalPages = (total + int64(perPage) - 1) / int64(perPage)
	}
	return p
}

// Profile

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=100"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url,max=2048"`
	Location    *string `json:"location" validate:"omitempty,max=120"`
}

type Usage struct {
	Plants entitlement.Decision `json:"plants"`
	Chats  entitlement.Decision `json:"chats"`
}

type ProfileResponse struct {
	User     *models.User       `json:"user"`
	Level    gamification.Level `json:"level"`
	ToNext   *int               `json:"points_to_next_level"`
	Premium  bool               `json:"premium"`
	Usage    Usage              `json:"usage"`
	Complete bool               `json:"profile_complete"`
}

type UpdateProfileResponse struct {
	User  *models.User              `json:"user"`
	Award *gamification.AwardResult `json:"award,omitempty"`
}

// Catalog

type PlantRequest struct {
	CommonName     string `json:"common_name" validate:"required,max=150"`
	ScientificName string `json:"scientific_name" validate:"required,max=200"`
	Family         string `json:"family" validate:"max=120"`
	Category       string `json:"category" validate:"max=50"`
	Description    string `json:"description"`
	ImageURL       string `json:"image_url" validate:"omitempty,url"`
	Light          string `json:"light" validate:"max=255"`
	Water          string `json:"water" validate:"max=255"`
	Humidity       string `json:"humidity" validate:"max=255"`
	Temperature    string `json:"temperature" validate:"max=255"`
	Soil           string `json:"soil" validate:"max=255"`
	Toxicity       string `json:"toxicity" validate:"max=255"`
	Difficulty     string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

func (r *PlantRequest) Model() *models.Plant {
	return &models.Plant{
		CommonName:     r.CommonName,
		ScientificName: r.ScientificName,
		Family:         r.Family,
		Category:       r.Category,
		Description:    r.Description,
		ImageURL:       r.ImageURL,
		Light:          r.Light,
		Water:          r.Water,
		Humidity:       r.Humidity,
		Temperature:    r.Temperature,
		Soil:           r.Soil,
		Toxicity:       r.Toxicity,
		Difficulty:     r.Difficulty,
	}
}

type PlantListResponse struct {
	Data       []models.Plant `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// Identification

// IdentifyRequest is the JSON form of an image upload, also accepted by
// diagnose.
type IdentifyRequest struct {
	// Image is base64, with or without a data URL prefix.
	Image string `json:"image"`
}

type IdentifyResponse struct {
	Identification *ai.Identification        `json:"identification"`
	Plant          *models.Plant             `json:"plant"`
	NewToCatalog   bool                      `json:"new_to_catalog"`
	Award          *gamification.AwardResult `json:"award,omitempty"`
}

// Collection

type AddPlantRequest struct {
	PlantID    *uuid.UUID `json:"plant_id"`
	Nickname   string     `json:"nickname" validate:"max=100"`
	Location   string     `json:"location" validate:"max=100"`
	Notes      string     `json:"notes" validate:"max=2000"`
	ImageURL   string     `json:"image_url" validate:"omitempty,url"`
	AcquiredAt *time.Time `json:"acquired_at"`
}

type UpdatePlantRequest struct {
	Nickname   *string    `json:"nickname" validate:"omitempty,min=1,max=100"`
	Location   *string    `json:"location" validate:"omitempty,max=100"`
	Notes      *string    `json:"notes" validate:"omitempty,max=2000"`
	ImageURL   *string    `json:"image_url" validate:"omitempty,url"`
	AcquiredAt *time.Time `json:"acquired_at"`
}

type CheckinRequest struct {
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

type CareResponse struct {
	Plant  *models.UserPlant          `json:"plant"`
	Award  *gamification.AwardResult  `json:"award,omitempty"`
	Streak *gamification.StreakResult `json:"streak"`
}

// Diagnosis

type DiagnoseResponse struct {
	Diagnosis *models.Diagnosis          `json:"diagnosis"`
	Award     *gamification.AwardResult  `json:"award,omitempty"`
	Streak    *gamification.StreakResult `json:"streak,omitempty"`
}

// Chat

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type ChatResponse struct {
	Reply     *models.ChatMessage `json:"reply"`
	Remaining int                 `json:"remaining"`
	Unlimited bool                `json:"unlimited"`
}

// Compatibility

type CompatibilityRequest struct {
	PlantAID uuid.UUID `json:"plant_a_id" validate:"required"`
	PlantBID uuid.UUID `json:"plant_b_id" validate:"required"`
}

type CompatibilityResponse struct {
	Result *models.Compatibility     `json:"result"`
	Award  *gamification.AwardResult `json:"award,omitempty"`
}

// Billing

type CheckoutRequest struct {
	Tier string `json:"tier" validate:"required,oneof=monthly quarterly yearly"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

type BillingStatusResponse struct {
	Plan    string     `json:"plan"`
	Status  string     `json:"status"`
	EndsAt  *time.Time `json:"ends_at,omitempty"`
	Premium bool       `json:"premium"`
	Tiers   []string   `json:"tiers"`
}

// Public config

type AppConfigResponse struct {
	Levels      []gamification.Level            `json:"levels"`
	AwardValues map[gamification.ActionType]int `json:"award_values"`
	Limits      map[string]int                  `json:"free_limits"`
	Tiers       []string                        `json:"price_tiers"`
}
