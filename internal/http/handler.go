package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nosenfield/smart-scrip/internal/domain/dto"
	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/nosenfield/smart-scrip/internal/i18n"
	"github.com/nosenfield/smart-scrip/internal/logger"
	"github.com/nosenfield/smart-scrip/internal/middleware"
	"github.com/nosenfield/smart-scrip/internal/service"
	"golang.org/x/sync/errgroup"
)

// defaultBatchConcurrency bounds how many batch items reconcile at once.
const defaultBatchConcurrency = 4

// Handler provides HTTP handlers for the reconciliation routes.
type Handler struct {
	reconciler       service.Reconciler
	optimizer        service.PackageOptimizer
	criteria         service.Criteria
	batchConcurrency int
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithOptimizer sets the optimizer behind POST /api/optimize.
func WithOptimizer(o service.PackageOptimizer) HandlerOption {
	return func(h *Handler) {
		h.optimizer = o
	}
}

// WithDefaultCriteria sets the criteria used when an optimize request does
// not override them.
func WithDefaultCriteria(c service.Criteria) HandlerOption {
	return func(h *Handler) {
		h.criteria = c
	}
}

// WithBatchConcurrency bounds concurrent reconciliations within one batch.
func WithBatchConcurrency(n int) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.batchConcurrency = n
		}
	}
}

// NewHandler creates a new Handler instance.
func NewHandler(reconciler service.Reconciler, opts ...HandlerOption) *Handler {
	h := &Handler{
		reconciler:       reconciler,
		optimizer:        service.NewPackageOptimizerService(),
		criteria:         service.DefaultCriteria(),
		batchConcurrency: defaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Calculate handles POST /api/calculate requests.
//
// @Summary      Reconcile a prescription
// @Description  Resolves the dispense quantity of a prescription and selects catalog packages to fill it.
// @Tags         Reconciliation
// @Accept       json
// @Produce      json
// @Param        request body dto.CalculateRequest true "Prescription"
// @Success      200 {object} dto.SuccessResponse
// @Failure      400 {object} dto.ErrorResponse "Invalid prescription"
// @Failure      422 {object} dto.ErrorResponse "Prescription cannot be filled from the catalog"
// @Failure      502 {object} dto.ErrorResponse "A collaborator failed, retryable"
// @Router       /api/calculate [post]
func (h *Handler) Calculate(c *gin.Context) {
	builder := NewResponseBuilder(c)

	var req dto.CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		builder.BadRequest(err)
		return
	}

	res := h.reconciler.Calculate(c.Request.Context(), req.ToInput(middleware.GetClientID(c)))
	if !res.Success {
		builder.Failure(res)
		return
	}
	builder.SuccessOK(dto.NewCalculationResponse(res, ""))
}

// CalculateBatch handles POST /api/calculate/batch requests. Items reconcile
// concurrently and independently; results keep request order and the
// response is 200 even when some items fail.
//
// @Summary      Reconcile several prescriptions
// @Tags         Reconciliation
// @Accept       json
// @Produce      json
// @Param        request body dto.BatchCalculateRequest true "Prescriptions"
// @Success      200 {object} dto.SuccessResponse
// @Failure      400 {object} dto.ErrorResponse "Malformed batch"
// @Router       /api/calculate/batch [post]
func (h *Handler) CalculateBatch(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequestAndValidate[dto.BatchCalculateRequest](c)
	if err != nil {
		builder.BadRequest(err)
		return
	}

	ctx := c.Request.Context()
	clientID := middleware.GetClientID(c)
	locale := i18n.GetLocale(c)
	translator := i18n.GetTranslator()
	start := time.Now()

	results := make([]model.CalculationResult, len(req.Items))
	var g errgroup.Group
	g.SetLimit(h.batchConcurrency)
	for i, item := range req.Items {
		g.Go(func() error {
			results[i] = h.reconciler.Calculate(ctx, item.ToInput(clientID))
			return nil
		})
	}
	_ = g.Wait()

	resp := dto.BatchResponse{Results: make([]dto.BatchItemResponse, 0, len(results))}
	for i, res := range results {
		message := ""
		if res.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
			message = translator.TranslateCode(res.ErrorCode, locale, res.Message)
		}
		resp.Results = append(resp.Results, dto.BatchItemResponse{
			Index:               i,
			CalculationResponse: dto.NewCalculationResponse(res, message),
		})
	}

	logger.FromContext(ctx).Info().
		Int("items", len(results)).
		Int("failed", resp.Failed).
		Dur("duration", time.Since(start)).
		Msg("Batch reconciled")

	builder.SuccessOK(resp)
}

// Optimize handles POST /api/optimize requests: a direct optimizer run over
// caller-supplied candidates, without catalog lookups.
//
// @Summary      Optimize a package combination
// @Tags         Reconciliation
// @Accept       json
// @Produce      json
// @Param        request body dto.OptimizeRequest true "Requirement, candidates and criteria"
// @Success      200 {object} dto.SuccessResponse
// @Failure      400 {object} dto.ErrorResponse "Invalid request"
// @Router       /api/optimize [post]
func (h *Handler) Optimize(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequestAndValidate[dto.OptimizeRequest](c)
	if err != nil {
		builder.BadRequest(err)
		return
	}

	criteria := applyCriteria(h.criteria, req.Criteria)
	result := h.optimizer.Optimize(req.Requirement(), req.CandidateList(), criteria)
	builder.SuccessOK(dto.NewOptimizeResponse(result))
}

func applyCriteria(base service.Criteria, override *dto.CriteriaRequest) service.Criteria {
	if override == nil {
		return base
	}
	if override.MinimizeCount != nil {
		base.MinimizeCount = *override.MinimizeCount
	}
	if override.MinimizeWaste != nil {
		base.MinimizeWaste = *override.MinimizeWaste
	}
	if override.AllowOverfill != nil {
		base.AllowOverfill = *override.AllowOverfill
	}
	if override.MaxOverfillPercent != nil {
		base.MaxOverfillPercent = *override.MaxOverfillPercent
	}
	return base
}
