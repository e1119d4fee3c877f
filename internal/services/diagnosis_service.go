package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/gamification"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	HealthHealthy        = "healthy"
	HealthNeedsAttention = "needs_attention"
)

type DiagnosisService struct {
	users      UserRepository
	collection CollectionRepository
	diagnoses  DiagnosisRepository
	limits     Limits
	ai         Inference
	awards     Awarder
}

func NewDiagnosisService(users UserRepository, collection CollectionRepository, diagnoses DiagnosisRepository, limits Limits, inference Inference, awards Awarder) *DiagnosisService {
	return &DiagnosisService{
		users:      users,
		collection: collection,
		diagnoses:  diagnoses,
		limits:     limits,
		ai:         inference,
		awards:     awards,
	}
}

// Diagnose runs a health check on an owned plant: entitlement, inference,
// persistence, award, streak. The first failing step stops the rest.
func (s *DiagnosisService) Diagnose(ctx context.Context, userID, userPlantID uuid.UUID, image []byte) (*dto.DiagnoseResponse, error) {
	user, err := loadUser(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	up, err := loadUserPlant(ctx, s.collection, userID, userPlantID)
	if err != nil {
		return nil, err
	}
	img, err := ai.NewImage(image)
	if err != nil {
		return nil, err
	}

	decision, err := s.limits.CanDiagnose(ctx, user, up.ID)
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	result, err := s.ai.Diagnose(ctx, img, plantName(up))
	if err != nil {
		return nil, err
	}

	issues := result.Issues
	if issues == nil {
		issues = []ai.Issue{}
	}
	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return nil, fmt.Errorf("failed to encode issues: %w", err)
	}
	// Any reported issue outranks the model's own healthy flag.
	healthy := result.Healthy && len(result.Issues) == 0
	sum := sha256.Sum256(img.Data)
	d := &models.Diagnosis{
		UserID:      userID,
		UserPlantID: up.ID,
		Healthy:     healthy,
		HealthScore: result.HealthScore,
		Issues:      datatypes.JSON(issuesJSON),
		Treatment:   result.Treatment,
		Prevention:  result.Prevention,
		ImageHash:   hex.EncodeToString(sum[:]),
	}
	if err := s.diagnoses.CreateDiagnosis(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save diagnosis: %w", err)
	}

	status, action := HealthNeedsAttention, gamification.ActionDiagnosisIssues
	if healthy {
		status, action = HealthHealthy, gamification.ActionDiagnosisHealthy
	}
	if err := s.collection.SetHealthStatus(ctx, up.ID, status); err != nil {
		return nil, fmt.Errorf("failed to update health status: %w", err)
	}

	award, err := s.awards.Award(ctx, userID, action, &d.ID)
	if err != nil {
		return nil, engineErr(err)
	}
	streak, err := s.awards.UpdateStreak(ctx, up.ID)
	if err != nil {
		return nil, engineErr(err)
	}

	return &dto.DiagnoseResponse{Diagnosis: d, Award: award, Streak: streak}, nil
}

func (s *DiagnosisService) List(ctx context.Context, userID, userPlantID uuid.UUID) ([]models.Diagnosis, error) {
	if _, err := loadUserPlant(ctx, s.collection, userID, userPlantID); err != nil {
		return nil, err
	}
	list, err := s.diagnoses.ListDiagnoses(ctx, userID, userPlantID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Diagnosis{}
	}
	return list, nil
}

func plantName(up *models.UserPlant) string {
	if up.Plant != nil && up.Plant.CommonName != "" {
		if up.Plant.ScientificName != "" {
			return up.Plant.CommonName + " (" + up.Plant.ScientificName + ")"
		}
		return up.Plant.CommonName
	}
	if up.Nickname != "" {
		return up.Nickname
	}
	return "houseplant"
}
