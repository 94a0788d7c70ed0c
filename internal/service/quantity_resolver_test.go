package service

import (
	"testing"

	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/stretchr/testify/assert"
)

func TestQuantityResolverService_Resolve(t *testing.T) {
	svc := NewQuantityResolverService()

	tests := []struct {
		name       string
		dose       model.DoseSpecification
		daysSupply int
		wantTotal  string
	}{
		{
			name:       "one tablet twice a day for 30 days",
			dose:       model.DoseSpecification{DoseAmount: dec("1"), DoseUnit: "tablet", FrequencyPerDay: dec("2")},
			daysSupply: 30,
			wantTotal:  "60",
		},
		{
			name:       "fractional dose stays exact",
			dose:       model.DoseSpecification{DoseAmount: dec("0.1"), DoseUnit: "ml", FrequencyPerDay: dec("3")},
			daysSupply: 7,
			wantTotal:  "2.1",
		},
		{
			name:       "half tablet every other day",
			dose:       model.DoseSpecification{DoseAmount: dec("0.5"), DoseUnit: "tablet", FrequencyPerDay: dec("0.5")},
			daysSupply: 30,
			wantTotal:  "7.5",
		},
		{
			name:       "upper days supply bound",
			dose:       model.DoseSpecification{DoseAmount: dec("1"), DoseUnit: "tablet", FrequencyPerDay: dec("1")},
			daysSupply: 365,
			wantTotal:  "365",
		},
		{
			name:       "zero days supply",
			dose:       model.DoseSpecification{DoseAmount: dec("1"), DoseUnit: "tablet", FrequencyPerDay: dec("1")},
			daysSupply: 0,
			wantTotal:  "0",
		},
		{
			name:       "days supply above range",
			dose:       model.DoseSpecification{DoseAmount: dec("1"), DoseUnit: "tablet", FrequencyPerDay: dec("1")},
			daysSupply: 366,
			wantTotal:  "0",
		},
		{
			name:       "negative dose",
			dose:       model.DoseSpecification{DoseAmount: dec("-1"), DoseUnit: "tablet", FrequencyPerDay: dec("1")},
			daysSupply: 10,
			wantTotal:  "0",
		},
		{
			name:       "negative frequency",
			dose:       model.DoseSpecification{DoseAmount: dec("1"), DoseUnit: "tablet", FrequencyPerDay: dec("-0.5")},
			daysSupply: 10,
			wantTotal:  "0",
		},
		{
			name:       "repeating tenths stay exact",
			dose:       model.DoseSpecification{DoseAmount: dec("0.1"), DoseUnit: "ml", FrequencyPerDay: dec("0.3")},
			daysSupply: 3,
			wantTotal:  "0.09",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := svc.Resolve(tt.dose, tt.daysSupply)
			assert.True(t, dec(tt.wantTotal).Equal(req.TotalQuantity), "got %s", req.TotalQuantity)
			assert.Equal(t, tt.dose.DoseUnit, req.Unit)
			assert.Equal(t, tt.daysSupply, req.Breakdown.DaysSupply)
		})
	}
}

func TestQuantityResolverService_ExactProduct(t *testing.T) {
	svc := NewQuantityResolverService()
	amounts := []string{"0.25", "0.5", "1", "1.5", "2", "2.5", "10"}
	frequencies := []string{"0.5", "1", "2", "3", "4", "6"}

	for _, a := range amounts {
		for _, f := range frequencies {
			for _, days := range []int{1, 7, 30, 90, 365} {
				req := svc.Resolve(model.DoseSpecification{DoseAmount: dec(a), DoseUnit: "tablet", FrequencyPerDay: dec(f)}, days)
				want := dec(a).Mul(dec(f)).Mul(decFromInt(days))
				assert.True(t, want.Equal(req.TotalQuantity), "%s x %s x %d", a, f, days)
			}
		}
	}
}
