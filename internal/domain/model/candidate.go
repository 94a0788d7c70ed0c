package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LifecycleStatus is the marketing status of a package in the catalog.
type LifecycleStatus string

const (
	// StatusActive marks a package that can be dispensed.
	StatusActive LifecycleStatus = "ACTIVE"
	// StatusInactive marks a discontinued or otherwise unavailable package.
	StatusInactive LifecycleStatus = "INACTIVE"
)

// ParseLifecycleStatus maps catalog spellings onto a LifecycleStatus.
// Anything not recognisably active is treated as inactive.
func ParseLifecycleStatus(s string) LifecycleStatus {
	if strings.EqualFold(strings.TrimSpace(s), string(StatusActive)) {
		return StatusActive
	}
	return StatusInactive
}

// PackageCandidate is a discrete sellable package of a drug product.
type PackageCandidate struct {
	ID             string            `json:"id"`
	CanonicalID    string            `json:"canonical_id,omitempty"`
	Size           decimal.Decimal   `json:"size"`
	Unit           string            `json:"unit"`
	Status         LifecycleStatus   `json:"status"`
	SourceMetadata map[string]string `json:"source_metadata,omitempty"`
}

// IsActive reports whether the package can be dispensed.
func (p PackageCandidate) IsActive() bool {
	return p.Status == StatusActive
}

// ActiveCandidates returns the active candidates, preserving input order.
func ActiveCandidates(candidates []PackageCandidate) []PackageCandidate {
	active := make([]PackageCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.IsActive() && c.Size.IsPositive() {
			active = append(active, c)
		}
	}
	return active
}

// DrugIdentity is the canonical identity a drug name or package resolves to.
type DrugIdentity struct {
	CanonicalID string `json:"canonical_id"`
	DisplayName string `json:"display_name"`
	DosageForm  string `json:"dosage_form,omitempty"`
	Strength    string `json:"strength,omitempty"`
}

// IdentityDetails holds supplementary properties of a canonical identity.
type IdentityDetails struct {
	DisplayName string
	DosageForm  string
	Strength    string
}
