package dto

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponse_Builders(t *testing.T) {
	err := NewError(ErrCodeInternal, "test error").
		WithRequestID("test-id").
		WithDetails(map[string]string{"days_supply": "must be at most 365"})

	assert.Equal(t, "test-id", err.RequestID)
	assert.Equal(t, ErrCodeInternal, err.Error)
	assert.Equal(t, "test error", err.Message)
	assert.Equal(t, "must be at most 365", err.Details["days_supply"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestErrCodeFromStatus(t *testing.T) {
	tests := []struct {
		status       int
		expectedCode string
	}{
		{http.StatusBadRequest, ErrCodeInvalidRequest},
		{http.StatusUnprocessableEntity, ErrCodeInvalidRequest},
		{http.StatusUnauthorized, ErrCodeUnauthorized},
		{http.StatusNotFound, ErrCodeNotFound},
		{http.StatusTooManyRequests, ErrCodeRateLimit},
		{http.StatusGatewayTimeout, ErrCodeTimeout},
		{http.StatusServiceUnavailable, ErrCodeUnavailable},
		{http.StatusInternalServerError, ErrCodeInternal},
		{http.StatusBadGateway, ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.expectedCode, ErrCodeFromStatus(tt.status))
		})
	}
}

func TestNewCalculationResponse(t *testing.T) {
	candidate := model.PackageCandidate{ID: "P30", Size: decimal.NewFromInt(30), Unit: "tablet", Status: model.StatusActive}
	sel := model.NewSelection([]model.SelectionLine{model.NewSelectionLine(candidate, 2)}, decimal.NewFromInt(60), nil)
	req := model.QuantityRequirement{
		TotalQuantity: decimal.NewFromInt(60),
		Unit:          "tablet",
		Breakdown: model.QuantityBreakdown{
			DoseAmount:      decimal.NewFromInt(1),
			FrequencyPerDay: decimal.NewFromInt(2),
			DaysSupply:      30,
		},
	}

	resp := NewCalculationResponse(model.CalculationResult{
		Success:     true,
		Requirement: &req,
		Selection:   &sel,
	}, "")

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Requirement)
	assert.Equal(t, 60.0, resp.Requirement.TotalQuantity)
	assert.Equal(t, 30, resp.Requirement.DaysSupply)
	require.NotNil(t, resp.Selection)
	assert.Equal(t, "deterministic", resp.Selection.Provenance)
	assert.Equal(t, []LineResponse{{
		PackageID: "P30", UnitsPerPackage: 30, Unit: "tablet", PackageCount: 2, SuppliedQuantity: 60, Overfill: 0,
	}}, resp.Selection.Lines)
	assert.NotNil(t, resp.Warnings)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "rationale")
	assert.Contains(t, string(body), `"warnings":[]`)
}

func TestNewCalculationResponse_Failure(t *testing.T) {
	resp := NewCalculationResponse(model.CalculationResult{
		ErrorCode:     "no_candidates",
		ErrorCategory: model.CategoryBusinessRule,
		Warnings:      []model.Warning{},
	}, "No matching packages found for this medication")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Selection)
	assert.Equal(t, "BUSINESS_RULE", resp.ErrorCategory)
	assert.Equal(t, "No matching packages found for this medication", resp.Message)
}

func TestNewOptimizeResponse(t *testing.T) {
	scored := NewOptimizeResponse(model.OptimizationResult{Selection: model.EmptySelection(), Score: 15})
	require.NotNil(t, scored.Score)
	assert.Equal(t, 15.0, *scored.Score)
	assert.False(t, scored.Degraded)

	degraded := NewOptimizeResponse(model.OptimizationResult{Selection: model.EmptySelection(), Score: model.InfiniteScore})
	assert.Nil(t, degraded.Score)
	assert.True(t, degraded.Degraded)

	_, err := json.Marshal(degraded)
	assert.NoError(t, err)
}

func TestNewPackageResponse(t *testing.T) {
	resp := NewPackageResponse(model.PackageCandidate{
		ID:             "PKG-1",
		CanonicalID:    "RX-1",
		Size:           decimal.RequireFromString("473.5"),
		Unit:           "ml",
		Status:         model.StatusInactive,
		SourceMetadata: map[string]string{"labeler": "Acme"},
	})

	assert.Equal(t, 473.5, resp.Size)
	assert.Equal(t, "INACTIVE", resp.Status)
	assert.Equal(t, "Acme", resp.Labeler)
}
