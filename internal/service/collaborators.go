package service

import (
	"context"

	"github.com/nosenfield/smart-scrip/internal/domain/model"
)

// DoseParser turns free-text dosing directions into a DoseSpecification.
// Implementations own their retry budget; an error means it was exhausted.
type DoseParser interface {
	Parse(ctx context.Context, freeText string) (model.DoseSpecification, error)
}

// IdentityNormalizer resolves drug names and package identifiers.
// A nil result with a nil error means "not found".
type IdentityNormalizer interface {
	Normalize(ctx context.Context, name string) (*model.DrugIdentity, error)
	ValidateKnownPackage(ctx context.Context, packageID string) (*model.PackageCandidate, error)
}

// CandidateCatalog lists the packages available for a canonical drug identity.
type CandidateCatalog interface {
	FetchCandidates(ctx context.Context, canonicalID string) ([]model.PackageCandidate, error)
}

// IdentityDetailer provides supplementary properties of a canonical identity.
type IdentityDetailer interface {
	Details(ctx context.Context, canonicalID string) (model.IdentityDetails, error)
}

// AdvisoryOverrideService proposes an alternative package selection.
type AdvisoryOverrideService interface {
	Advise(ctx context.Context, req model.QuantityRequirement, candidates []model.PackageCandidate) (*model.AdvisoryOverride, error)
}
