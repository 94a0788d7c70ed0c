// Package model defines the core domain entities for prescription reconciliation.
package model

import "github.com/shopspring/decimal"

// DoseSpecification is the structured form of a prescriber's dosing directions.
// It is produced by the dose parser (or supplied directly by the caller) and is
// never mutated by the reconciliation pipeline.
type DoseSpecification struct {
	// DoseAmount is the quantity taken per administration (e.g. 1 tablet).
	DoseAmount decimal.Decimal `json:"dose_amount" validate:"gte=0"`
	// DoseUnit is the unit of DoseAmount, passed through verbatim.
	DoseUnit string `json:"dose_unit" validate:"required"`
	// FrequencyPerDay is the number of administrations per day.
	FrequencyPerDay decimal.Decimal `json:"frequency_per_day" validate:"gte=0"`
	// Route is the administration route (oral, topical, ...).
	Route string `json:"route,omitempty"`
	// ExplicitDurationDays is the therapy duration stated in the directions, if any.
	ExplicitDurationDays *int `json:"explicit_duration_days,omitempty" validate:"omitempty,gte=1,lte=365"`
	// FreeTextNote carries anything the parser could not structure.
	FreeTextNote string `json:"free_text_note,omitempty"`
}

// QuantityBreakdown records the factors a QuantityRequirement was derived from.
type QuantityBreakdown struct {
	DoseAmount      decimal.Decimal `json:"dose_amount"`
	FrequencyPerDay decimal.Decimal `json:"frequency_per_day"`
	DaysSupply      int             `json:"days_supply"`
}

// QuantityRequirement is the total amount that must be dispensed.
type QuantityRequirement struct {
	TotalQuantity decimal.Decimal   `json:"total_quantity"`
	Unit          string            `json:"unit"`
	Breakdown     QuantityBreakdown `json:"breakdown"`
}

// IsZero reports whether nothing needs to be dispensed.
func (q QuantityRequirement) IsZero() bool {
	return !q.TotalQuantity.IsPositive()
}

// WithTotal returns a copy of the requirement carrying a different total.
func (q QuantityRequirement) WithTotal(total decimal.Decimal) QuantityRequirement {
	q.TotalQuantity = total
	return q
}
