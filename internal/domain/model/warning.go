package model

// WarningCategory classifies a non-fatal finding about a calculation.
type WarningCategory string

const (
	WarnNoMatch                   WarningCategory = "NO_MATCH"
	WarnInactiveOnly              WarningCategory = "INACTIVE_ONLY"
	WarnNoUnitMatch               WarningCategory = "NO_UNIT_MATCH"
	WarnOverfill                  WarningCategory = "OVERFILL"
	WarnMultiplePackages          WarningCategory = "MULTIPLE_PACKAGES"
	WarnQuantityRounded           WarningCategory = "QUANTITY_ROUNDED"
	WarnOverfillToleranceExceeded WarningCategory = "OVERFILL_TOLERANCE_EXCEEDED"
	WarnAdvisory                  WarningCategory = "ADVISORY"
)

// Severity is how much attention a warning needs.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Warning is a non-fatal issue found while reconciling a prescription.
type Warning struct {
	Category WarningCategory `json:"category" validate:"required"`
	Message  string          `json:"message" validate:"required"`
	Severity Severity        `json:"severity" validate:"oneof=INFO WARNING ERROR"`
}

// NewWarning builds a Warning.
func NewWarning(category WarningCategory, severity Severity, message string) Warning {
	return Warning{Category: category, Message: message, Severity: severity}
}

// HasCategory reports whether any warning has the given category.
func HasCategory(warnings []Warning, category WarningCategory) bool {
	for _, w := range warnings {
		if w.Category == category {
			return true
		}
	}
	return false
}
