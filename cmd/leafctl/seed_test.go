package main

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/leafwise-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	byName map[string]models.Plant
	failOn string
}

func (f *fakeCatalog) EnsurePlant(_ context.Context, p *models.Plant) (*models.Plant, bool, error) {
	if p.ScientificName == f.failOn {
		return nil, false, errors.New("boom")
	}
	if existing, ok := f.byName[p.ScientificName]; ok {
		return &existing, false, nil
	}
	f.byName[p.ScientificName] = *p
	return p, true, nil
}

func TestSeedPlants_Idempotent(t *testing.T) {
	catalog := &fakeCatalog{byName: map[string]models.Plant{}}

	created, err := seedPlants(context.Background(), catalog)
	require.NoError(t, err)
	assert.Equal(t, len(starterCatalog), created)

	created, err = seedPlants(context.Background(), catalog)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestSeedPlants_StopsOnError(t *testing.T) {
	catalog := &fakeCatalog{byName: map[string]models.Plant{}, failOn: starterCatalog[2].ScientificName}

	created, err := seedPlants(context.Background(), catalog)
	require.Error(t, err)
	assert.Equal(t, 2, created)
	assert.Contains(t, err.Error(), starterCatalog[2].ScientificName)
}

func TestStarterCatalog_Valid(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range starterCatalog {
		assert.NotEmpty(t, p.CommonName)
		assert.Contains(t, []string{"easy", "medium", "hard"}, p.Difficulty, p.ScientificName)
		assert.False(t, seen[p.ScientificName], "duplicate %s", p.ScientificName)
		seen[p.ScientificName] = true
	}
}
