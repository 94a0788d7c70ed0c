//go:build !integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nosenfield/smart-scrip/internal/circuitbreaker"
	"github.com/nosenfield/smart-scrip/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyCatalog fails the first n reads before delegating.
type flakyCatalog struct {
	*MemoryCatalogRepository
	failures int
	calls    int
}

func (f *flakyCatalog) ListPackages(ctx context.Context, canonicalID string) ([]PackageDocument, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, errors.New("connection reset")
	}
	return f.MemoryCatalogRepository.ListPackages(ctx, canonicalID)
}

func testPolicy() retry.Policy {
	return retry.Policy{Name: "catalog", MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestCatalogRepositoryWithCircuitBreaker_RetriesReads(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryCatalogRepository()
	require.NoError(t, ApplySeed(ctx, mem, testSeed()))

	flaky := &flakyCatalog{MemoryCatalogRepository: mem, failures: 2}
	cb := circuitbreaker.New(circuitbreaker.Config{FailureThreshold: 5, SuccessThreshold: 1, Timeout: time.Second, Name: "catalog"})
	wrapped := NewCatalogRepositoryWithCircuitBreaker(flaky, cb, testPolicy())

	packages, err := wrapped.ListPackages(ctx, "RX-1")
	require.NoError(t, err)
	assert.Len(t, packages, 2)
	assert.Equal(t, 3, flaky.calls)
}

func TestCatalogRepositoryWithCircuitBreaker_OpenCircuitIsNotRetried(t *testing.T) {
	ctx := context.Background()
	flaky := &flakyCatalog{MemoryCatalogRepository: NewMemoryCatalogRepository(), failures: 100}
	cb := circuitbreaker.New(circuitbreaker.Config{FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Minute, Name: "catalog"})
	wrapped := NewCatalogRepositoryWithCircuitBreaker(flaky, cb, testPolicy())

	_, err := wrapped.ListPackages(ctx, "RX-1")
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, 1, flaky.calls)
	assert.Equal(t, "open", wrapped.GetCircuitBreaker().GetStats().State)
}

func TestCatalogRepositoryWithCircuitBreaker_Writes(t *testing.T) {
	ctx := context.Background()
	cb := circuitbreaker.New(circuitbreaker.DefaultConfig())
	wrapped := NewCatalogRepositoryWithCircuitBreaker(NewMemoryCatalogRepository(), cb, testPolicy())

	drug, err := wrapped.UpsertDrug(ctx, DrugDocument{CanonicalID: "RX-9", DisplayName: "Ibuprofen"})
	require.NoError(t, err)
	assert.Equal(t, "ibuprofen", drug.NormalizedName)

	found, err := wrapped.FindDrugByCanonicalID(ctx, "RX-9")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Ibuprofen", found.DisplayName)
}
