//go:build !integration

package app

import (
	"context"
	"testing"

	"github.com/nosenfield/smart-scrip/config"
	"github.com/nosenfield/smart-scrip/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled database uses memory catalog", func(t *testing.T) {
		components, err := InitializeCatalog(ctx, config.DatabaseConfig{Enabled: false})
		require.NoError(t, err)

		assert.IsType(t, &repository.MemoryCatalogRepository{}, components.Repo)
		assert.Nil(t, components.Mongo)
		assert.Nil(t, components.Breaker)
	})

	t.Run("unreachable database falls back to memory", func(t *testing.T) {
		components, err := InitializeCatalog(ctx, config.DatabaseConfig{Enabled: true, URI: "not-a-mongodb-uri"})
		require.NoError(t, err)

		assert.IsType(t, &repository.MemoryCatalogRepository{}, components.Repo)
		assert.Nil(t, components.Mongo)
	})

	t.Run("seed file is applied", func(t *testing.T) {
		components, err := InitializeCatalog(ctx, config.DatabaseConfig{CatalogSeedFile: writeSeed(t)})
		require.NoError(t, err)

		drug, err := components.Repo.FindDrugByCanonicalID(ctx, "RX-1")
		require.NoError(t, err)
		require.NotNil(t, drug)
		assert.Equal(t, "Amoxicillin 500 MG Oral Capsule", drug.DisplayName)

		packages, err := components.Repo.ListPackages(ctx, "RX-1")
		require.NoError(t, err)
		assert.Len(t, packages, 2)
	})

	t.Run("missing seed file", func(t *testing.T) {
		_, err := InitializeCatalog(ctx, config.DatabaseConfig{CatalogSeedFile: "/nonexistent/catalog.json"})
		assert.Error(t, err)
	})
}
