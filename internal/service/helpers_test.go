package service

import (
	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func candidate(id, size, unit string, status model.LifecycleStatus) model.PackageCandidate {
	return model.PackageCandidate{ID: id, CanonicalID: "RX-1", Size: dec(size), Unit: unit, Status: status}
}

func active(id, size string) model.PackageCandidate {
	return candidate(id, size, "tablet", model.StatusActive)
}

func requirement(total, unit string) model.QuantityRequirement {
	return model.QuantityRequirement{TotalQuantity: dec(total), Unit: unit}
}

func intPtr(v int) *int {
	return &v
}

func decFromInt(v int) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}
