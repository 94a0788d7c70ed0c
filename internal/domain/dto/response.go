package dto

import (
	"net/http"
	"time"

	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/shopspring/decimal"
)

const (
	// ErrCodeInvalidRequest indicates an invalid request.
	ErrCodeInvalidRequest = "invalid_request"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal = "internal_error"
	// ErrCodeUnauthorized indicates missing or invalid authentication.
	ErrCodeUnauthorized = "unauthorized"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound = "not_found"
	// ErrCodeRateLimit indicates rate limit exceeded.
	ErrCodeRateLimit = "rate_limit_exceeded"
	// ErrCodeTimeout indicates a request timeout.
	ErrCodeTimeout = "timeout"
	// ErrCodeUnavailable indicates a dependency is not ready.
	ErrCodeUnavailable = "service_unavailable"
)

// SuccessResponse wraps successful API responses with metadata.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time   `json:"timestamp" example:"2026-01-28T10:00:00Z"`
}

// ErrorResponse represents a standardized error response for the API.
type ErrorResponse struct {
	Error     string            `json:"error" example:"invalid_request"`
	Category  string            `json:"category,omitempty" example:"VALIDATION"`
	Message   string            `json:"message,omitempty" example:"The prescription request is invalid"`
	Details   map[string]string `json:"details,omitempty"`
	Warnings  []model.Warning   `json:"warnings,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
	RequestID string            `json:"request_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Timestamp time.Time         `json:"timestamp" example:"2026-01-28T10:00:00Z"`
}

// NewError creates a new ErrorResponse with the given code and message.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithRequestID adds a request ID to the error response.
func (e ErrorResponse) WithRequestID(requestID string) ErrorResponse {
	e.RequestID = requestID
	return e
}

// WithDetails adds per-field details to the error response.
func (e ErrorResponse) WithDetails(details map[string]string) ErrorResponse {
	e.Details = details
	return e
}

// ErrCodeFromStatus returns the appropriate error code for an HTTP status.
func ErrCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusTooManyRequests:
		return ErrCodeRateLimit
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ErrCodeTimeout
	case http.StatusServiceUnavailable:
		return ErrCodeUnavailable
	default:
		return ErrCodeInternal
	}
}

// RequirementResponse is the resolved quantity.
type RequirementResponse struct {
	TotalQuantity   float64 `json:"total_quantity" example:"60"`
	Unit            string  `json:"unit" example:"tablet"`
	DoseAmount      float64 `json:"dose_amount" example:"1"`
	FrequencyPerDay float64 `json:"frequency_per_day" example:"2"`
	DaysSupply      int     `json:"days_supply" example:"30"`
}

// LineResponse is one line of a selection.
type LineResponse struct {
	PackageID        string  `json:"package_id" example:"00093-4155-73"`
	UnitsPerPackage  float64 `json:"units_per_package" example:"30"`
	Unit             string  `json:"unit" example:"tablet"`
	PackageCount     int     `json:"package_count" example:"2"`
	SuppliedQuantity float64 `json:"supplied_quantity" example:"60"`
	Overfill         float64 `json:"overfill" example:"0"`
}

// SelectionResponse is a package selection and where it came from.
type SelectionResponse struct {
	Lines         []LineResponse `json:"lines"`
	TotalSupplied float64        `json:"total_supplied" example:"60"`
	TotalWaste    float64        `json:"total_waste" example:"0"`
	PackageCount  int            `json:"package_count" example:"2"`
	Provenance    string         `json:"provenance" example:"deterministic"`
}

// CalculationResponse is the outcome of one reconciliation.
type CalculationResponse struct {
	Success       bool                 `json:"success"`
	Requirement   *RequirementResponse `json:"requirement,omitempty"`
	Selection     *SelectionResponse   `json:"selection,omitempty"`
	Identity      *model.DrugIdentity  `json:"identity,omitempty"`
	Warnings      []model.Warning      `json:"warnings"`
	Rationale     string               `json:"rationale,omitempty"`
	ErrorCode     string               `json:"error_code,omitempty"`
	ErrorCategory string               `json:"error_category,omitempty"`
	Message       string               `json:"message,omitempty"`
	Details       map[string]string    `json:"details,omitempty"`
}

// OptimizeResponse is the outcome of a direct optimization.
type OptimizeResponse struct {
	Selection SelectionResponse `json:"selection"`
	// Score is omitted when the result is a degraded fallback.
	Score    *float64 `json:"score,omitempty"`
	Degraded bool     `json:"degraded"`
}

// BatchItemResponse is the outcome of one batch item.
type BatchItemResponse struct {
	Index int `json:"index"`
	CalculationResponse
}

// BatchResponse collects batch outcomes in request order.
type BatchResponse struct {
	Results   []BatchItemResponse `json:"results"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

// PackageResponse is a catalog package.
type PackageResponse struct {
	PackageID   string  `json:"package_id"`
	CanonicalID string  `json:"canonical_id"`
	Size        float64 `json:"size"`
	Unit        string  `json:"unit"`
	Status      string  `json:"status"`
	Labeler     string  `json:"labeler,omitempty"`
	Description string  `json:"description,omitempty"`
}

func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// NewSelectionResponse converts a selection.
func NewSelectionResponse(sel model.Selection) SelectionResponse {
	lines := make([]LineResponse, 0, len(sel.Lines))
	for _, l := range sel.Lines {
		lines = append(lines, LineResponse{
			PackageID:        l.PackageID,
			UnitsPerPackage:  toFloat(l.UnitsPerPackage),
			Unit:             l.Unit,
			PackageCount:     l.PackageCount,
			SuppliedQuantity: toFloat(l.SuppliedQuantity),
			Overfill:         toFloat(l.Overfill),
		})
	}

	provenance := model.ProvenanceDeterministic
	if sel.Provenance != nil {
		provenance = sel.Provenance.Kind()
	}
	return SelectionResponse{
		Lines:         lines,
		TotalSupplied: toFloat(sel.TotalSupplied),
		TotalWaste:    toFloat(sel.TotalWaste),
		PackageCount:  sel.PackageCount,
		Provenance:    string(provenance),
	}
}

// NewCalculationResponse converts a calculation result. The message is
// supplied by the caller so that it can be translated.
func NewCalculationResponse(res model.CalculationResult, message string) CalculationResponse {
	resp := CalculationResponse{
		Success:       res.Success,
		Identity:      res.Identity,
		Warnings:      res.Warnings,
		Rationale:     res.Rationale,
		ErrorCode:     res.ErrorCode,
		ErrorCategory: string(res.ErrorCategory),
		Message:       message,
		Details:       res.Details,
	}
	if resp.Warnings == nil {
		resp.Warnings = []model.Warning{}
	}
	if res.Requirement != nil {
		resp.Requirement = &RequirementResponse{
			TotalQuantity:   toFloat(res.Requirement.TotalQuantity),
			Unit:            res.Requirement.Unit,
			DoseAmount:      toFloat(res.Requirement.Breakdown.DoseAmount),
			FrequencyPerDay: toFloat(res.Requirement.Breakdown.FrequencyPerDay),
			DaysSupply:      res.Requirement.Breakdown.DaysSupply,
		}
	}
	if res.Selection != nil {
		sel := NewSelectionResponse(*res.Selection)
		resp.Selection = &sel
	}
	return resp
}

// NewOptimizeResponse converts an optimization result.
func NewOptimizeResponse(res model.OptimizationResult) OptimizeResponse {
	resp := OptimizeResponse{
		Selection: NewSelectionResponse(res.Selection),
		Degraded:  res.Degraded(),
	}
	if !resp.Degraded {
		score := res.Score
		resp.Score = &score
	}
	return resp
}

// NewPackageResponse converts a package candidate.
func NewPackageResponse(c model.PackageCandidate) PackageResponse {
	return PackageResponse{
		PackageID:   c.ID,
		CanonicalID: c.CanonicalID,
		Size:        toFloat(c.Size),
		Unit:        c.Unit,
		Status:      string(c.Status),
		Labeler:     c.SourceMetadata["labeler"],
		Description: c.SourceMetadata["description"],
	}
}

// Readiness states.
const (
	ReadinessOK       = "ok"
	ReadinessDegraded = "degraded"
)

// DependencyStatus is the readiness of one dependency or circuit breaker.
type DependencyStatus struct {
	Status              string `json:"status" example:"ok"`
	Error               string `json:"error,omitempty"`
	ConsecutiveFailures int    `json:"consecutive_failures,omitempty"`
	LatencyMS           int64  `json:"latency_ms"`
}

// ReadinessResponse is the body of the readiness probe.
type ReadinessResponse struct {
	Status string                      `json:"status" example:"ok"`
	Checks map[string]DependencyStatus `json:"checks"`
}
