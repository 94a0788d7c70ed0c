package service

import (
	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/shopspring/decimal"
)

const (
	// MinDaysSupply and MaxDaysSupply bound the days-supply a requirement can cover.
	MinDaysSupply = 1
	MaxDaysSupply = 365
)

// QuantityResolver converts dosing into a total dispense quantity.
type QuantityResolver interface {
	Resolve(dose model.DoseSpecification, daysSupply int) model.QuantityRequirement
}

// QuantityResolverService implements QuantityResolver with exact decimal arithmetic.
type QuantityResolverService struct{}

// NewQuantityResolverService creates a new QuantityResolverService.
func NewQuantityResolverService() *QuantityResolverService {
	return &QuantityResolverService{}
}

// Resolve returns doseAmount × frequencyPerDay × daysSupply in the dose's unit.
// Negative factors, and days supply outside [1,365], produce a
// zero requirement instead of an error.
func (s *QuantityResolverService) Resolve(dose model.DoseSpecification, daysSupply int) model.QuantityRequirement {
	req := model.QuantityRequirement{
		TotalQuantity: decimal.Zero,
		Unit:          dose.DoseUnit,
		Breakdown: model.QuantityBreakdown{
			DoseAmount:      decimal.Zero,
			FrequencyPerDay: decimal.Zero,
			DaysSupply:      daysSupply,
		},
	}

	amount, frequency := dose.DoseAmount, dose.FrequencyPerDay
	if amount.IsNegative() || frequency.IsNegative() {
		return req
	}
	req.Breakdown.DoseAmount = amount
	req.Breakdown.FrequencyPerDay = frequency

	if daysSupply < MinDaysSupply || daysSupply > MaxDaysSupply {
		return req
	}

	req.TotalQuantity = amount.Mul(frequency).Mul(decimal.NewFromInt(int64(daysSupply)))
	return req
}
