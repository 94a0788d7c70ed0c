//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/nosenfield/smart-scrip/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMongoDB_Integration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := setupTestDB(t)
	defer func() {
		require.NoError(t, db.Close(ctx))
	}()

	t.Run("connection successful", func(t *testing.T) {
		assert.NotNil(t, db.Client)
		assert.NotNil(t, db.Drugs)
		assert.NotNil(t, db.Packages)
	})

	t.Run("health check", func(t *testing.T) {
		assert.NoError(t, db.HealthCheck(ctx))
	})

	t.Run("indexes created", func(t *testing.T) {
		listCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		specs, err := db.Packages.Indexes().ListSpecifications(listCtx)
		require.NoError(t, err)

		names := make([]string, 0, len(specs))
		for _, s := range specs {
			names = append(names, s.Name)
		}
		assert.Contains(t, names, "package_id_1")
		assert.Contains(t, names, "canonical_id_1_package_id_1")
	})

	t.Run("reconnect reuses existing indexes", func(t *testing.T) {
		again, err := NewMongoDB(ctx, testutil.MongoURI(), db.Database.Name(), WithoutCompression())
		require.NoError(t, err)
		assert.NoError(t, again.Close(ctx))
	})
}
