// Package dto defines Data Transfer Objects for HTTP request and response handling.
//
// DTOs decouple the HTTP layer from the domain model: quantities arrive as
// JSON numbers or strings and leave as JSON numbers.
package dto

import (
	"strings"

	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/shopspring/decimal"
)

// MaxBatchItems is the largest batch accepted by the batch endpoint.
const MaxBatchItems = 25

// DoseRequest is the structured dose of a calculation request.
type DoseRequest struct {
	DoseAmount           decimal.Decimal `json:"dose_amount" swaggertype:"number" example:"1"`
	DoseUnit             string          `json:"dose_unit" example:"tablet"`
	FrequencyPerDay      decimal.Decimal `json:"frequency_per_day" swaggertype:"number" example:"2"`
	Route                string          `json:"route,omitempty" example:"oral"`
	ExplicitDurationDays *int            `json:"explicit_duration_days,omitempty"`
	FreeTextNote         string          `json:"free_text_note,omitempty"`
}

// CalculateRequest represents the JSON request body for the calculation endpoint.
//
// Either DrugName or PackageID identifies the medication; either Dose or
// DosingInstructions describes the regimen. Field rules are enforced by the
// reconciler so that batch items report them per item.
type CalculateRequest struct {
	DrugName           string       `json:"drug_name,omitempty" example:"Amoxicillin 500 MG Oral Capsule"`
	PackageID          string       `json:"package_id,omitempty" example:"00093-4155-73"`
	DosingInstructions string       `json:"dosing_instructions,omitempty" example:"take 1 capsule twice daily"`
	Dose               *DoseRequest `json:"dose,omitempty"`
	DaysSupply         int          `json:"days_supply,omitempty" example:"30"`
}

// ToInput converts the request into a calculation input for clientID.
func (r CalculateRequest) ToInput(clientID string) model.CalculationInput {
	input := model.CalculationInput{
		DrugName:           strings.TrimSpace(r.DrugName),
		PackageID:          strings.TrimSpace(r.PackageID),
		DosingInstructions: strings.TrimSpace(r.DosingInstructions),
		DaysSupply:         r.DaysSupply,
		ClientID:           clientID,
	}
	if r.Dose != nil {
		input.Dose = &model.DoseSpecification{
			DoseAmount:           r.Dose.DoseAmount,
			DoseUnit:             strings.TrimSpace(r.Dose.DoseUnit),
			FrequencyPerDay:      r.Dose.FrequencyPerDay,
			Route:                r.Dose.Route,
			ExplicitDurationDays: r.Dose.ExplicitDurationDays,
			FreeTextNote:         r.Dose.FreeTextNote,
		}
	}
	return input
}

// BatchCalculateRequest represents the JSON request body for the batch endpoint.
type BatchCalculateRequest struct {
	Items []CalculateRequest `json:"items" binding:"required,min=1"`
}

// CandidateRequest is a package candidate supplied directly by the caller.
type CandidateRequest struct {
	ID     string          `json:"id" binding:"required"`
	Size   decimal.Decimal `json:"size" swaggertype:"number"`
	Unit   string          `json:"unit" binding:"required"`
	Status string          `json:"status"`
}

// ToCandidate converts the request into a package candidate. Status defaults
// to ACTIVE when omitted.
func (r CandidateRequest) ToCandidate() model.PackageCandidate {
	status := model.StatusActive
	if strings.TrimSpace(r.Status) != "" {
		status = model.ParseLifecycleStatus(r.Status)
	}
	return model.PackageCandidate{
		ID:     strings.TrimSpace(r.ID),
		Size:   r.Size,
		Unit:   strings.TrimSpace(r.Unit),
		Status: status,
	}
}

// CriteriaRequest overrides individual optimizer criteria. Omitted fields keep
// their defaults.
type CriteriaRequest struct {
	MinimizeCount      *bool    `json:"minimize_count,omitempty"`
	MinimizeWaste      *bool    `json:"minimize_waste,omitempty"`
	AllowOverfill      *bool    `json:"allow_overfill,omitempty"`
	MaxOverfillPercent *float64 `json:"max_overfill_percent,omitempty" binding:"omitempty,gte=0,lte=1000"`
}

// OptimizeRequest represents the JSON request body for the optimize endpoint.
type OptimizeRequest struct {
	TotalQuantity decimal.Decimal    `json:"total_quantity"`
	Unit          string             `json:"unit" binding:"required"`
	Candidates    []CandidateRequest `json:"candidates" binding:"required,min=1,max=100,dive"`
	Criteria      *CriteriaRequest   `json:"criteria,omitempty"`
}

// Requirement returns the requirement described by the request.
func (r OptimizeRequest) Requirement() model.QuantityRequirement {
	return model.QuantityRequirement{
		TotalQuantity: r.TotalQuantity,
		Unit:          strings.TrimSpace(r.Unit),
	}
}

// CandidateList converts the supplied candidates.
func (r OptimizeRequest) CandidateList() []model.PackageCandidate {
	out := make([]model.PackageCandidate, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		out = append(out, c.ToCandidate())
	}
	return out
}

// UpsertPackageRequest represents the JSON request body for creating or
// updating a catalog package.
type UpsertPackageRequest struct {
	PackageID   string          `json:"package_id" binding:"required,max=64"`
	CanonicalID string          `json:"canonical_id" binding:"required,max=64"`
	Size        decimal.Decimal `json:"size"`
	Unit        string          `json:"unit" binding:"required"`
	Status      string          `json:"status" binding:"required,oneof=ACTIVE INACTIVE active inactive"`
	Labeler     string          `json:"labeler,omitempty"`
	Description string          `json:"description,omitempty"`
}

// ToCandidate converts the request into a package candidate.
func (r UpsertPackageRequest) ToCandidate() model.PackageCandidate {
	meta := map[string]string{}
	if r.Labeler != "" {
		meta["labeler"] = r.Labeler
	}
	if r.Description != "" {
		meta["description"] = r.Description
	}
	return model.PackageCandidate{
		ID:             strings.TrimSpace(r.PackageID),
		CanonicalID:    strings.TrimSpace(r.CanonicalID),
		Size:           r.Size,
		Unit:           strings.TrimSpace(r.Unit),
		Status:         model.ParseLifecycleStatus(r.Status),
		SourceMetadata: meta,
	}
}

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error returns the error message for ValidationError.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

var (
	// ErrNonPositiveSize is returned when a package size is not positive.
	ErrNonPositiveSize = &ValidationError{Field: "size", Message: "must be greater than zero"}
	// ErrNegativeQuantity is returned when a requested quantity is negative.
	ErrNegativeQuantity = &ValidationError{Field: "total_quantity", Message: "must not be negative"}
	// ErrBatchTooLarge is returned when a batch has too many items.
	ErrBatchTooLarge = &ValidationError{Field: "items", Message: "must contain at most 25 items"}
)

// Validate performs checks that binding tags cannot express on decimals.
func (r *UpsertPackageRequest) Validate() error {
	if !r.Size.IsPositive() {
		return ErrNonPositiveSize
	}
	return nil
}

// Validate performs checks that binding tags cannot express on decimals.
func (r *OptimizeRequest) Validate() error {
	if r.TotalQuantity.IsNegative() {
		return ErrNegativeQuantity
	}
	for _, c := range r.Candidates {
		if !c.Size.IsPositive() {
			return &ValidationError{Field: "candidates." + c.ID + ".size", Message: ErrNonPositiveSize.Message}
		}
	}
	return nil
}

// Validate enforces the batch size limit.
func (r *BatchCalculateRequest) Validate() error {
	if len(r.Items) > MaxBatchItems {
		return ErrBatchTooLarge
	}
	return nil
}
