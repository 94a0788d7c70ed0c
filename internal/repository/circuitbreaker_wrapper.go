package repository

import (
	"context"
	"errors"

	"github.com/nosenfield/smart-scrip/internal/circuitbreaker"
	"github.com/nosenfield/smart-scrip/internal/retry"
)

// CatalogRepositoryWithCircuitBreaker wraps a catalog repository with circuit
// breaker protection. Reads are retried under the configured policy; writes
// are attempted once.
type CatalogRepositoryWithCircuitBreaker struct {
	repo           CatalogRepositoryInterface
	circuitBreaker *circuitbreaker.CircuitBreaker
	policy         retry.Policy
}

// NewCatalogRepositoryWithCircuitBreaker creates a new repository wrapper with circuit breaker.
func NewCatalogRepositoryWithCircuitBreaker(repo CatalogRepositoryInterface, cb *circuitbreaker.CircuitBreaker, policy retry.Policy) *CatalogRepositoryWithCircuitBreaker {
	return &CatalogRepositoryWithCircuitBreaker{
		repo:           repo,
		circuitBreaker: cb,
		policy:         policy,
	}
}

func (r *CatalogRepositoryWithCircuitBreaker) read(ctx context.Context, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, r.policy, func(ctx context.Context) error {
		err := r.circuitBreaker.Execute(ctx, func() error {
			return fn(ctx)
		})
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			return retry.Permanent(err)
		}
		return err
	})
}

// FindDrugByName looks up a drug with circuit breaker protection.
func (r *CatalogRepositoryWithCircuitBreaker) FindDrugByName(ctx context.Context, normalizedName string) (*DrugDocument, error) {
	var result *DrugDocument
	err := r.read(ctx, func(ctx context.Context) error {
		var cbErr error
		result, cbErr = r.repo.FindDrugByName(ctx, normalizedName)
		return cbErr
	})
	return result, err
}

// FindDrugByCanonicalID looks up a drug with circuit breaker protection.
func (r *CatalogRepositoryWithCircuitBreaker) FindDrugByCanonicalID(ctx context.Context, canonicalID string) (*DrugDocument, error) {
	var result *DrugDocument
	err := r.read(ctx, func(ctx context.Context) error {
		var cbErr error
		result, cbErr = r.repo.FindDrugByCanonicalID(ctx, canonicalID)
		return cbErr
	})
	return result, err
}

// FindPackage looks up a package with circuit breaker protection.
func (r *CatalogRepositoryWithCircuitBreaker) FindPackage(ctx context.Context, packageID string) (*PackageDocument, error) {
	var result *PackageDocument
	err := r.read(ctx, func(ctx context.Context) error {
		var cbErr error
		result, cbErr = r.repo.FindPackage(ctx, packageID)
		return cbErr
	})
	return result, err
}

// ListPackages lists packages with circuit breaker protection.
func (r *CatalogRepositoryWithCircuitBreaker) ListPackages(ctx context.Context, canonicalID string) ([]PackageDocument, error) {
	var result []PackageDocument
	err := r.read(ctx, func(ctx context.Context) error {
		var cbErr error
		result, cbErr = r.repo.ListPackages(ctx, canonicalID)
		return cbErr
	})
	return result, err
}

// ListDrugs lists drugs with circuit breaker protection.
func (r *CatalogRepositoryWithCircuitBreaker) ListDrugs(ctx context.Context, limit int) ([]DrugDocument, error) {
	var result []DrugDocument
	err := r.read(ctx, func(ctx context.Context) error {
		var cbErr error
		result, cbErr = r.repo.ListDrugs(ctx, limit)
		return cbErr
	})
	return result, err
}

// UpsertDrug writes a drug with circuit breaker protection.
func (r *CatalogRepositoryWithCircuitBreaker) UpsertDrug(ctx context.Context, drug DrugDocument) (*DrugDocument, error) {
	var result *DrugDocument
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.UpsertDrug(ctx, drug)
		return cbErr
	})
	return result, err
}

// UpsertPackage writes a package with circuit breaker protection.
func (r *CatalogRepositoryWithCircuitBreaker) UpsertPackage(ctx context.Context, pkg PackageDocument, updatedBy string) (*PackageDocument, error) {
	var result *PackageDocument
	err := r.circuitBreaker.Execute(ctx, func() error {
		var cbErr error
		result, cbErr = r.repo.UpsertPackage(ctx, pkg, updatedBy)
		return cbErr
	})
	return result, err
}

// GetCircuitBreaker returns the underlying circuit breaker for monitoring.
func (r *CatalogRepositoryWithCircuitBreaker) GetCircuitBreaker() *circuitbreaker.CircuitBreaker {
	return r.circuitBreaker
}
