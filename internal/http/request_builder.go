package http

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nosenfield/smart-scrip/internal/domain/dto"
	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/nosenfield/smart-scrip/internal/i18n"
	"github.com/nosenfield/smart-scrip/internal/middleware"
	"github.com/nosenfield/smart-scrip/internal/service"
)

// Response DTO pools for reducing allocations.
var (
	successResponsePool = sync.Pool{
		New: func() interface{} {
			return &dto.SuccessResponse{}
		},
	}

	errorResponsePool = sync.Pool{
		New: func() interface{} {
			return &dto.ErrorResponse{}
		},
	}
)

func getSuccessResponse() *dto.SuccessResponse {
	if resp, ok := successResponsePool.Get().(*dto.SuccessResponse); ok {
		return resp
	}
	return &dto.SuccessResponse{}
}

func putSuccessResponse(resp *dto.SuccessResponse) {
	*resp = dto.SuccessResponse{}
	successResponsePool.Put(resp)
}

func getErrorResponse() *dto.ErrorResponse {
	if resp, ok := errorResponsePool.Get().(*dto.ErrorResponse); ok {
		return resp
	}
	return &dto.ErrorResponse{}
}

func putErrorResponse(resp *dto.ErrorResponse) {
	*resp = dto.ErrorResponse{}
	errorResponsePool.Put(resp)
}

// Validator interface for types that can validate themselves.
type Validator interface {
	Validate() error
}

// BuildRequestAndValidate binds the JSON body into T and runs its Validate
// method when it has one.
func BuildRequestAndValidate[T any](c *gin.Context) (*T, error) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	if v, ok := any(&req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return &req, nil
}

// ResponseBuilder writes the JSON envelopes used by every endpoint.
// Uses sync.Pool for DTO reuse to reduce allocations.
type ResponseBuilder struct {
	c *gin.Context
}

// NewResponseBuilder creates a new response builder for the given context.
func NewResponseBuilder(c *gin.Context) *ResponseBuilder {
	return &ResponseBuilder{c: c}
}

// Success sends a successful response with the given data.
func (b *ResponseBuilder) Success(statusCode int, data interface{}) {
	resp := getSuccessResponse()
	resp.Data = data
	resp.RequestID = middleware.GetRequestID(b.c)
	resp.Timestamp = time.Now()

	// gin serializes synchronously, so the pooled value can go back right after.
	b.c.JSON(statusCode, resp)
	putSuccessResponse(resp)
}

// SuccessOK sends a 200 OK response with the given data.
func (b *ResponseBuilder) SuccessOK(data interface{}) {
	b.Success(http.StatusOK, data)
}

// Error sends an error response with the given status code and message key.
func (b *ResponseBuilder) Error(statusCode int, messageKey string, err error) {
	b.write(statusCode, func(resp *dto.ErrorResponse) {
		resp.Error = dto.ErrCodeFromStatus(statusCode)
		resp.Message = i18n.GetTranslator().Translate(messageKey, i18n.GetLocale(b.c))
	}, err)
}

// BadRequest reports a malformed or invalid request body. Field-level
// validation errors are surfaced as details.
func (b *ResponseBuilder) BadRequest(err error) {
	var ve *dto.ValidationError
	if errors.As(err, &ve) {
		key := i18n.ErrKeyInvalidRequest
		if errors.Is(err, dto.ErrBatchTooLarge) {
			key = i18n.ErrKeyBatchTooLarge
		}
		b.write(http.StatusBadRequest, func(resp *dto.ErrorResponse) {
			resp.Error = dto.ErrCodeInvalidRequest
			resp.Category = string(model.CategoryValidation)
			resp.Message = i18n.GetTranslator().Translate(key, i18n.GetLocale(b.c))
			resp.Details = map[string]string{ve.Field: ve.Message}
		}, err)
		return
	}
	b.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err)
}

// Failure sends a failed calculation as an error envelope. The status follows
// the error category.
func (b *ResponseBuilder) Failure(res model.CalculationResult) {
	b.write(StatusForResult(res), func(resp *dto.ErrorResponse) {
		resp.Error = res.ErrorCode
		resp.Category = string(res.ErrorCategory)
		resp.Message = TranslateResult(b.c, res)
		resp.Details = res.Details
		resp.Warnings = res.Warnings
		resp.Retryable = res.ErrorCategory.Retryable()
	}, nil)
}

func (b *ResponseBuilder) write(statusCode int, fill func(*dto.ErrorResponse), err error) {
	resp := getErrorResponse()
	fill(resp)
	resp.RequestID = middleware.GetRequestID(b.c)
	resp.Timestamp = time.Now()

	// Recorded for the ErrorHandler middleware to log.
	if err != nil {
		_ = b.c.Error(err)
	}

	b.c.AbortWithStatusJSON(statusCode, resp)
	putErrorResponse(resp)
}

// StatusForResult maps a calculation outcome to an HTTP status.
func StatusForResult(res model.CalculationResult) int {
	if res.Success {
		return http.StatusOK
	}
	switch res.ErrorCategory {
	case model.CategoryValidation:
		if res.ErrorCode == service.CodeInvalidPackage {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case model.CategoryBusinessRule:
		return http.StatusUnprocessableEntity
	case model.CategoryExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// TranslateResult returns the caller-facing message of a failed result in
// the request locale.
func TranslateResult(c *gin.Context, res model.CalculationResult) string {
	if res.Success {
		return ""
	}
	return i18n.GetTranslator().TranslateCode(res.ErrorCode, i18n.GetLocale(c), res.Message)
}
