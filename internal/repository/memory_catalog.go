package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MemoryCatalogRepository is an in-process catalog used when no database is
// configured and in tests.
type MemoryCatalogRepository struct {
	mu       sync.RWMutex
	drugs    map[string]DrugDocument
	packages map[string]PackageDocument
}

// NewMemoryCatalogRepository creates an empty in-memory catalog.
func NewMemoryCatalogRepository() *MemoryCatalogRepository {
	return &MemoryCatalogRepository{
		drugs:    make(map[string]DrugDocument),
		packages: make(map[string]PackageDocument),
	}
}

// FindDrugByName implements CatalogRepositoryInterface.
func (r *MemoryCatalogRepository) FindDrugByName(_ context.Context, normalizedName string) (*DrugDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.sortedDrugIDs() {
		drug := r.drugs[id]
		if drug.NormalizedName == normalizedName {
			return &drug, nil
		}
	}
	for _, id := range r.sortedDrugIDs() {
		drug := r.drugs[id]
		for _, alias := range drug.Aliases {
			if alias == normalizedName {
				return &drug, nil
			}
		}
	}
	return nil, nil
}

// FindDrugByCanonicalID implements CatalogRepositoryInterface.
func (r *MemoryCatalogRepository) FindDrugByCanonicalID(_ context.Context, canonicalID string) (*DrugDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drug, ok := r.drugs[canonicalID]
	if !ok {
		return nil, nil
	}
	return &drug, nil
}

// FindPackage implements CatalogRepositoryInterface.
func (r *MemoryCatalogRepository) FindPackage(_ context.Context, packageID string) (*PackageDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pkg, ok := r.packages[packageID]
	if !ok {
		return nil, nil
	}
	return &pkg, nil
}

// ListPackages implements CatalogRepositoryInterface.
func (r *MemoryCatalogRepository) ListPackages(_ context.Context, canonicalID string) ([]PackageDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	packages := []PackageDocument{}
	for _, pkg := range r.packages {
		if pkg.CanonicalID == canonicalID {
			packages = append(packages, pkg)
		}
	}
	sort.Slice(packages, func(i, j int) bool {
		return packages[i].PackageID < packages[j].PackageID
	})
	return packages, nil
}

// ListDrugs implements CatalogRepositoryInterface.
func (r *MemoryCatalogRepository) ListDrugs(_ context.Context, limit int) ([]DrugDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	drugs := make([]DrugDocument, 0, len(r.drugs))
	for _, drug := range r.drugs {
		drugs = append(drugs, drug)
	}
	sort.Slice(drugs, func(i, j int) bool {
		return drugs[i].NormalizedName < drugs[j].NormalizedName
	})
	if limit > 0 && len(drugs) > limit {
		drugs = drugs[:limit]
	}
	return drugs, nil
}

// UpsertDrug implements CatalogRepositoryInterface.
func (r *MemoryCatalogRepository) UpsertDrug(_ context.Context, drug DrugDocument) (*DrugDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	drug.NormalizedName = NormalizeName(drug.DisplayName)
	drug.Aliases = NormalizeAll(drug.Aliases)
	drug.UpdatedAt = now
	if existing, ok := r.drugs[drug.CanonicalID]; ok {
		drug.ID = existing.ID
		drug.CreatedAt = existing.CreatedAt
	} else {
		drug.CreatedAt = now
	}

	r.drugs[drug.CanonicalID] = drug
	return &drug, nil
}

// UpsertPackage implements CatalogRepositoryInterface.
func (r *MemoryCatalogRepository) UpsertPackage(_ context.Context, pkg PackageDocument, updatedBy string) (*PackageDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	pkg.UpdatedAt = now
	pkg.UpdatedBy = updatedBy
	if existing, ok := r.packages[pkg.PackageID]; ok {
		pkg.ID = existing.ID
		pkg.CreatedAt = existing.CreatedAt
		pkg.Version = existing.Version + 1
	} else {
		pkg.CreatedAt = now
		pkg.Version = 1
	}

	r.packages[pkg.PackageID] = pkg
	return &pkg, nil
}

func (r *MemoryCatalogRepository) sortedDrugIDs() []string {
	ids := make([]string, 0, len(r.drugs))
	for id := range r.drugs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SeedPackage is the seed-file form of a package.
type SeedPackage struct {
	PackageID   string          `json:"package_id"`
	CanonicalID string          `json:"canonical_id"`
	Size        decimal.Decimal `json:"size"`
	Unit        string          `json:"unit"`
	Status      string          `json:"status"`
	Labeler     string          `json:"labeler,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Seed is the content of a catalog seed file.
type Seed struct {
	Drugs    []DrugDocument `json:"drugs"`
	Packages []SeedPackage  `json:"packages"`
}

// LoadSeed decodes a catalog seed from JSON.
func LoadSeed(r io.Reader) (Seed, error) {
	var seed Seed
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&seed); err != nil {
		return Seed{}, fmt.Errorf("decode catalog seed: %w", err)
	}
	return seed, nil
}

// LoadSeedFile reads a catalog seed from a JSON file.
func LoadSeedFile(path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("open catalog seed: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return LoadSeed(f)
}

// ApplySeed writes every seed entry into repo.
func ApplySeed(ctx context.Context, repo CatalogRepositoryInterface, seed Seed) error {
	for _, drug := range seed.Drugs {
		if drug.CanonicalID == "" {
			return fmt.Errorf("seed drug %q has no canonical_id", drug.DisplayName)
		}
		if _, err := repo.UpsertDrug(ctx, drug); err != nil {
			return fmt.Errorf("seed drug %s: %w", drug.CanonicalID, err)
		}
	}
	for _, sp := range seed.Packages {
		if sp.PackageID == "" || sp.CanonicalID == "" {
			return fmt.Errorf("seed package %q is missing identifiers", sp.PackageID)
		}
		pkg := PackageDocument{
			PackageID:   sp.PackageID,
			CanonicalID: sp.CanonicalID,
			Unit:        sp.Unit,
			Status:      sp.Status,
			Labeler:     sp.Labeler,
			Description: sp.Description,
		}
		if err := pkg.SetSize(sp.Size); err != nil {
			return fmt.Errorf("seed package %s: %w", sp.PackageID, err)
		}
		if _, err := repo.UpsertPackage(ctx, pkg, "seed"); err != nil {
			return fmt.Errorf("seed package %s: %w", sp.PackageID, err)
		}
	}
	return nil
}
