// Package repository provides interfaces for repository operations.
package repository

import "context"

// CatalogRepositoryInterface defines the interface for drug catalog operations.
// Lookups return (nil, nil) when nothing matches.
type CatalogRepositoryInterface interface {
	FindDrugByName(ctx context.Context, normalizedName string) (*DrugDocument, error)
	FindDrugByCanonicalID(ctx context.Context, canonicalID string) (*DrugDocument, error)
	FindPackage(ctx context.Context, packageID string) (*PackageDocument, error)
	ListPackages(ctx context.Context, canonicalID string) ([]PackageDocument, error)
	ListDrugs(ctx context.Context, limit int) ([]DrugDocument, error)
	UpsertDrug(ctx context.Context, drug DrugDocument) (*DrugDocument, error)
	UpsertPackage(ctx context.Context, pkg PackageDocument, updatedBy string) (*PackageDocument, error)
}

var (
	_ CatalogRepositoryInterface = (*CatalogRepository)(nil)
	_ CatalogRepositoryInterface = (*MemoryCatalogRepository)(nil)
	_ CatalogRepositoryInterface = (*CatalogRepositoryWithCircuitBreaker)(nil)
)
