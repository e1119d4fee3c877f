package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/ai"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/gamification"
	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var monstera = &ai.Identification{
	CommonName:     "Swiss Cheese Plant",
	ScientificName: "Monstera deliciosa",
	Family:         "Araceae",
	Confidence:     0.94,
	Care:           ai.CareGuide{Light: "bright indirect", Water: "weekly"},
	Difficulty:     "Easy",
}

func TestIdentify_NewSpecies(t *testing.T) {
	repo := newMemRepo()
	user := repo.addUser(&models.User{Email: "a@example.com"})
	inference := new(mockInference)
	inference.On("Identify", mock.Anything, mock.Anything).Return(monstera, nil).Once()
	awards := new(mockAwarder)
	awards.On("AwardOnce", mock.Anything, user.ID, gamification.ActionIdentifyNewSpecies, mock.Anything, (*time.Time)(nil)).
		Return(awarded(gamification.ActionIdentifyNewSpecies, 50), nil)

	svc := NewIdentifyService(repo, inference, awards, newMemCache())
	resp, err := svc.Identify(context.Background(), user.ID, pngBytes)
	require.NoError(t, err)

	assert.True(t, resp.NewToCatalog)
	assert.Equal(t, "Monstera deliciosa", resp.Plant.ScientificName)
	assert.Equal(t, "easy", resp.Plant.Difficulty)
	assert.Equal(t, "bright indirect", resp.Plant.Light)
	require.NotNil(t, resp.Award)
	assert.Len(t, repo.plants, 1)

	related := awards.Calls[0].Arguments.Get(3).(*uuid.UUID)
	assert.Equal(t, resp.Plant.ID, *related)
}

func TestIdentify_SameImageHitsCache(t *testing.T) {
	repo := newMemRepo()
	user := repo.addUser(&models.User{Email: "a@example.com"})
	inference := new(mockInference)
	inference.On("Identify", mock.Anything, mock.Anything).Return(monstera, nil).Once()
	awards := new(mockAwarder)
	awards.On("AwardOnce", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(awarded(gamification.ActionIdentifyNewSpecies, 50), nil).Once()
	awards.On("AwardOnce", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil)

	svc := NewIdentifyService(repo, inference, awards, newMemCache())
	_, err := svc.Identify(context.Background(), user.ID, pngBytes)
	require.NoError(t, err)

	resp, err := svc.Identify(context.Background(), user.ID, pngBytes)
	require.NoError(t, err)
	assert.False(t, resp.NewToCatalog)
	assert.Nil(t, resp.Award)
	assert.Equal(t, "Monstera deliciosa", resp.Identification.ScientificName)
	inference.AssertNumberOfCalls(t, "Identify", 1)
}

func TestIdentify_InvalidImage(t *testing.T) {
	inference := new(mockInference)
	svc := NewIdentifyService(newMemRepo(), inference, new(mockAwarder), newMemCache())
	_, err := svc.Identify(context.Background(), uuid.New(), []byte("not an image"))
	assert.ErrorIs(t, err, ai.ErrInvalidImage)
	inference.AssertNotCalled(t, "Identify")
}

func TestIdentify_AIUnavailable(t *testing.T) {
	repo := newMemRepo()
	inference := new(mockInference)
	inference.On("Identify", mock.Anything, mock.Anything).Return(nil, ai.ErrUnavailable)
	awards := new(mockAwarder)

	svc := NewIdentifyService(repo, inference, awards, newMemCache())
	_, err := svc.Identify(context.Background(), uuid.New(), pngBytes)
	assert.ErrorIs(t, err, ai.ErrUnavailable)
	assert.Empty(t, repo.plants)
	awards.AssertNotCalled(t, "AwardOnce")
}
