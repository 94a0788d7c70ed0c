package service

import (
	"errors"
	"fmt"

	"github.com/nosenfield/smart-scrip/internal/domain/model"
)

var (
	// ErrRepositoryNotConfigured is returned when the repository is not configured.
	ErrRepositoryNotConfigured = errors.New("repository not configured")
	// ErrUnknownDrug is returned when a catalog write references a drug that does not exist.
	ErrUnknownDrug = errors.New("unknown drug")
)

// Error codes reported to callers alongside an ErrorCategory.
const (
	CodeValidationFailed       = "validation_failed"
	CodeStructuredDoseRequired = "structured_dose_required"
	CodeDaysSupplyRequired     = "days_supply_required"
	CodeDurationOutOfRange     = "duration_out_of_range"
	CodeInvalidPackage         = "invalid_package"
	CodeDrugNotFound           = "drug_not_found"
	CodeNoCandidates           = "no_candidates"
	CodeNoActivePackages       = "no_active_packages"
	CodeExternalService        = "external_service_error"
	CodeInternal               = "internal_error"
)

// defaultMessages are the caller-facing messages for each code.
var defaultMessages = map[string]string{
	CodeValidationFailed:       "The prescription request is invalid",
	CodeStructuredDoseRequired: "Dosing instructions must be structured because no dosing parser is available",
	CodeDaysSupplyRequired:     "Days supply is required when the dosing instructions have no duration",
	CodeDurationOutOfRange:     "The duration stated in the dosing instructions must be between 1 and 365 days",
	CodeInvalidPackage:         "The package identifier is unknown or no longer active",
	CodeDrugNotFound:           "The medication could not be identified",
	CodeNoCandidates:           "No matching packages found for this medication",
	CodeNoActivePackages:       "No active packages are available for this medication",
	CodeExternalService:        "A required service is temporarily unavailable, please retry",
	CodeInternal:               "An unexpected error occurred",
}

// MessageFor returns the default caller-facing message for an error code.
func MessageFor(code string) string {
	if msg, ok := defaultMessages[code]; ok {
		return msg
	}
	return defaultMessages[CodeInternal]
}

// ReconcileError is a classified pipeline failure.
type ReconcileError struct {
	Stage    Stage
	Category model.ErrorCategory
	Code     string
	Details  map[string]string
	Err      error
}

func newReconcileError(stage Stage, category model.ErrorCategory, code string, err error) *ReconcileError {
	return &ReconcileError{Stage: stage, Category: category, Code: code, Err: err}
}

// Error implements error.
func (e *ReconcileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s): %v", e.Stage, e.Code, e.Category, e.Err)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Stage, e.Code, e.Category)
}

// Unwrap returns the underlying cause.
func (e *ReconcileError) Unwrap() error {
	return e.Err
}

// Retryable reports whether reissuing the whole request may succeed.
func (e *ReconcileError) Retryable() bool {
	return e.Category.Retryable()
}
