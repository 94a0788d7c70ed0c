//go:build !integration

package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSeed() Seed {
	return Seed{
		Drugs: []DrugDocument{
			{CanonicalID: "RX-1", DisplayName: "Amoxicillin 500 MG Oral Capsule", Aliases: []string{"Amoxicillin", "Amoxil"}, DosageForm: "capsule", Strength: "500 mg"},
			{CanonicalID: "RX-2", DisplayName: "Lisinopril 10 MG Oral Tablet", Aliases: []string{"Lisinopril"}},
		},
		Packages: []SeedPackage{
			{PackageID: "PKG-B", CanonicalID: "RX-1", Size: decimal.NewFromInt(30), Unit: "capsule", Status: "ACTIVE"},
			{PackageID: "PKG-A", CanonicalID: "RX-1", Size: decimal.NewFromInt(100), Unit: "capsule", Status: "INACTIVE"},
			{PackageID: "PKG-C", CanonicalID: "RX-2", Size: decimal.RequireFromString("90"), Unit: "tablet", Status: "ACTIVE"},
		},
	}
}

func TestMemoryCatalogRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCatalogRepository()
	require.NoError(t, ApplySeed(ctx, repo, testSeed()))

	t.Run("find drug by normalized name", func(t *testing.T) {
		drug, err := repo.FindDrugByName(ctx, NormalizeName("AMOXICILLIN 500 mg oral capsule"))
		require.NoError(t, err)
		require.NotNil(t, drug)
		assert.Equal(t, "RX-1", drug.CanonicalID)
	})

	t.Run("find drug by alias", func(t *testing.T) {
		drug, err := repo.FindDrugByName(ctx, NormalizeName("Amoxil"))
		require.NoError(t, err)
		require.NotNil(t, drug)
		assert.Equal(t, "RX-1", drug.CanonicalID)
	})

	t.Run("unknown drug returns nil", func(t *testing.T) {
		drug, err := repo.FindDrugByName(ctx, "unobtainium")
		assert.NoError(t, err)
		assert.Nil(t, drug)
	})

	t.Run("list packages ordered by identifier", func(t *testing.T) {
		packages, err := repo.ListPackages(ctx, "RX-1")
		require.NoError(t, err)
		require.Len(t, packages, 2)
		assert.Equal(t, "PKG-A", packages[0].PackageID)
		assert.Equal(t, "PKG-B", packages[1].PackageID)
		assert.True(t, decimal.NewFromInt(30).Equal(packages[1].SizeDecimal()))
	})

	t.Run("find package", func(t *testing.T) {
		pkg, err := repo.FindPackage(ctx, "PKG-C")
		require.NoError(t, err)
		require.NotNil(t, pkg)
		assert.Equal(t, "RX-2", pkg.CanonicalID)

		missing, err := repo.FindPackage(ctx, "nope")
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("upsert package bumps version", func(t *testing.T) {
		pkg, err := repo.FindPackage(ctx, "PKG-C")
		require.NoError(t, err)

		pkg.Status = "INACTIVE"
		saved, err := repo.UpsertPackage(ctx, *pkg, "admin")
		require.NoError(t, err)
		assert.Equal(t, pkg.Version+1, saved.Version)
		assert.Equal(t, "admin", saved.UpdatedBy)
		assert.Equal(t, pkg.CreatedAt, saved.CreatedAt)
	})

	t.Run("list drugs with limit", func(t *testing.T) {
		drugs, err := repo.ListDrugs(ctx, 1)
		require.NoError(t, err)
		require.Len(t, drugs, 1)
		assert.Equal(t, "RX-1", drugs[0].CanonicalID)
	})
}

func TestLoadSeed(t *testing.T) {
	t.Run("valid seed", func(t *testing.T) {
		seed, err := LoadSeed(strings.NewReader(`{
			"drugs": [{"canonical_id": "RX-1", "display_name": "Amoxicillin"}],
			"packages": [{"package_id": "P1", "canonical_id": "RX-1", "size": 2.5, "unit": "ml", "status": "ACTIVE"}]
		}`))
		require.NoError(t, err)
		require.Len(t, seed.Packages, 1)
		assert.Equal(t, "2.5", seed.Packages[0].Size.String())
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		_, err := LoadSeed(strings.NewReader(`{"drugz": []}`))
		assert.Error(t, err)
	})
}

func TestApplySeed_MissingIdentifiers(t *testing.T) {
	err := ApplySeed(context.Background(), NewMemoryCatalogRepository(), Seed{
		Packages: []SeedPackage{{PackageID: "P1"}},
	})
	assert.Error(t, err)
}
