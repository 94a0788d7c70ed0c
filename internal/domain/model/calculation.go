package model

// CalculationInput is the raw request handed to the reconciliation pipeline.
// Either DrugName or PackageID identifies the drug; either Dose or
// DosingInstructions describes how it is taken.
type CalculationInput struct {
	DrugName           string             `json:"drug_name,omitempty" validate:"required_without=PackageID,max=200"`
	PackageID          string             `json:"package_id,omitempty" validate:"required_without=DrugName,max=64"`
	DosingInstructions string             `json:"dosing_instructions,omitempty" validate:"required_without=Dose,max=1000"`
	Dose               *DoseSpecification `json:"dose,omitempty" validate:"required_without=DosingInstructions"`
	// DaysSupply of zero means "take it from the dose's explicit duration".
	DaysSupply int    `json:"days_supply" validate:"gte=0,lte=365"`
	ClientID   string `json:"-"`
}

// ErrorCategory is the failure taxonomy surfaced to callers.
type ErrorCategory string

const (
	CategoryValidation      ErrorCategory = "VALIDATION"
	CategoryExternalService ErrorCategory = "EXTERNAL_SERVICE"
	CategoryBusinessRule    ErrorCategory = "BUSINESS_RULE"
	CategoryInternal        ErrorCategory = "INTERNAL"
)

// Retryable reports whether reissuing the same request may succeed.
func (c ErrorCategory) Retryable() bool {
	return c == CategoryExternalService
}

// CalculationResult is the assembled outcome of a reconciliation.
type CalculationResult struct {
	Success       bool
	Requirement   *QuantityRequirement
	Selection     *Selection
	Identity      *DrugIdentity
	Warnings      []Warning
	Rationale     string
	ErrorCode     string
	ErrorCategory ErrorCategory
	// Message is a caller-facing explanation of a failure; never a raw error string.
	Message string
	// Details maps input fields to what is wrong with them.
	Details map[string]string
}
