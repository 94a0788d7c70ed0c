package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/nosenfield/smart-scrip/internal/repository"
	"github.com/shopspring/decimal"
)

// CatalogService exposes the drug catalog to the reconciliation pipeline
// and to catalog administration.
type CatalogService interface {
	IdentityNormalizer
	CandidateCatalog
	IdentityDetailer
	ListDrugs(ctx context.Context, limit int) ([]model.DrugIdentity, error)
	UpsertPackage(ctx context.Context, candidate model.PackageCandidate, updatedBy string) (*model.PackageCandidate, error)
}

// CatalogServiceImpl implements CatalogService.
type CatalogServiceImpl struct {
	catalogRepo repository.CatalogRepositoryInterface
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(catalogRepo repository.CatalogRepositoryInterface) *CatalogServiceImpl {
	return &CatalogServiceImpl{catalogRepo: catalogRepo}
}

// Normalize implements IdentityNormalizer.
func (s *CatalogServiceImpl) Normalize(ctx context.Context, name string) (*model.DrugIdentity, error) {
	if s.catalogRepo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	key := repository.NormalizeName(name)
	if key == "" {
		return nil, nil
	}

	drug, err := s.catalogRepo.FindDrugByName(ctx, key)
	if err != nil || drug == nil {
		return nil, err
	}
	identity := toIdentity(*drug)
	return &identity, nil
}

// ValidateKnownPackage implements IdentityNormalizer.
func (s *CatalogServiceImpl) ValidateKnownPackage(ctx context.Context, packageID string) (*model.PackageCandidate, error) {
	if s.catalogRepo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	pkg, err := s.catalogRepo.FindPackage(ctx, strings.TrimSpace(packageID))
	if err != nil || pkg == nil {
		return nil, err
	}
	candidate := toCandidate(*pkg)
	return &candidate, nil
}

// FetchCandidates implements CandidateCatalog.
func (s *CatalogServiceImpl) FetchCandidates(ctx context.Context, canonicalID string) ([]model.PackageCandidate, error) {
	if s.catalogRepo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	packages, err := s.catalogRepo.ListPackages(ctx, canonicalID)
	if err != nil {
		return nil, err
	}

	candidates := make([]model.PackageCandidate, 0, len(packages))
	for _, pkg := range packages {
		candidates = append(candidates, toCandidate(pkg))
	}
	return candidates, nil
}

// Details implements IdentityDetailer.
func (s *CatalogServiceImpl) Details(ctx context.Context, canonicalID string) (model.IdentityDetails, error) {
	if s.catalogRepo == nil {
		return model.IdentityDetails{}, ErrRepositoryNotConfigured
	}
	drug, err := s.catalogRepo.FindDrugByCanonicalID(ctx, canonicalID)
	if err != nil {
		return model.IdentityDetails{}, err
	}
	if drug == nil {
		return model.IdentityDetails{}, fmt.Errorf("drug %s not in catalog", canonicalID)
	}
	return model.IdentityDetails{
		DisplayName: drug.DisplayName,
		DosageForm:  drug.DosageForm,
		Strength:    drug.Strength,
	}, nil
}

// ListDrugs returns catalog identities.
func (s *CatalogServiceImpl) ListDrugs(ctx context.Context, limit int) ([]model.DrugIdentity, error) {
	if s.catalogRepo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	drugs, err := s.catalogRepo.ListDrugs(ctx, limit)
	if err != nil {
		return nil, err
	}

	identities := make([]model.DrugIdentity, 0, len(drugs))
	for _, d := range drugs {
		identities = append(identities, toIdentity(d))
	}
	return identities, nil
}

// UpsertPackage creates or updates a catalog package.
func (s *CatalogServiceImpl) UpsertPackage(ctx context.Context, candidate model.PackageCandidate, updatedBy string) (*model.PackageCandidate, error) {
	if s.catalogRepo == nil {
		return nil, ErrRepositoryNotConfigured
	}

	drug, err := s.catalogRepo.FindDrugByCanonicalID(ctx, candidate.CanonicalID)
	if err != nil {
		return nil, err
	}
	if drug == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDrug, candidate.CanonicalID)
	}

	doc := repository.PackageDocument{
		PackageID:   strings.TrimSpace(candidate.ID),
		CanonicalID: candidate.CanonicalID,
		Unit:        candidate.Unit,
		Status:      string(candidate.Status),
		Labeler:     candidate.SourceMetadata["labeler"],
		Description: candidate.SourceMetadata["description"],
	}
	if err := doc.SetSize(candidate.Size); err != nil {
		return nil, err
	}

	saved, err := s.catalogRepo.UpsertPackage(ctx, doc, updatedBy)
	if err != nil {
		return nil, err
	}
	result := toCandidate(*saved)
	return &result, nil
}

func toIdentity(d repository.DrugDocument) model.DrugIdentity {
	return model.DrugIdentity{
		CanonicalID: d.CanonicalID,
		DisplayName: d.DisplayName,
		DosageForm:  d.DosageForm,
		Strength:    d.Strength,
	}
}

func toCandidate(p repository.PackageDocument) model.PackageCandidate {
	meta := map[string]string{}
	if p.Labeler != "" {
		meta["labeler"] = p.Labeler
	}
	if p.Description != "" {
		meta["description"] = p.Description
	}

	size := p.SizeDecimal()
	if size.LessThan(decimal.Zero) {
		size = decimal.Zero
	}

	return model.PackageCandidate{
		ID:             p.PackageID,
		CanonicalID:    p.CanonicalID,
		Size:           size,
		Unit:           p.Unit,
		Status:         model.ParseLifecycleStatus(p.Status),
		SourceMetadata: meta,
	}
}
