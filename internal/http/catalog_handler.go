package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nosenfield/smart-scrip/internal/domain/dto"
	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/nosenfield/smart-scrip/internal/i18n"
	"github.com/nosenfield/smart-scrip/internal/middleware"
	"github.com/nosenfield/smart-scrip/internal/service"
)

const (
	defaultDrugListLimit = 50
	maxDrugListLimit     = 500
)

// CatalogHandler provides HTTP handlers for catalog administration.
type CatalogHandler struct {
	catalog service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler instance.
func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListDrugs handles GET /api/catalog/drugs. With ?name= it resolves that
// name the way reconciliation would; otherwise it lists drugs up to ?limit=.
//
// @Summary      List or resolve catalog drugs
// @Tags         Catalog
// @Produce      json
// @Param        name  query string false "Drug name to resolve"
// @Param        limit query int    false "Maximum drugs to list"
// @Success      200 {object} dto.SuccessResponse
// @Failure      404 {object} dto.ErrorResponse "Name not in catalog"
// @Router       /api/catalog/drugs [get]
func (h *CatalogHandler) ListDrugs(c *gin.Context) {
	builder := NewResponseBuilder(c)
	ctx := c.Request.Context()

	if name := c.Query("name"); name != "" {
		identity, err := h.catalog.Normalize(ctx, name)
		if err != nil {
			builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, err)
			return
		}
		if identity == nil {
			builder.Error(http.StatusNotFound, i18n.ErrKeyNotFound, nil)
			return
		}
		builder.SuccessOK([]model.DrugIdentity{*identity})
		return
	}

	limit := defaultDrugListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			builder.BadRequest(&dto.ValidationError{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = min(n, maxDrugListLimit)
	}

	drugs, err := h.catalog.ListDrugs(ctx, limit)
	if err != nil {
		builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, err)
		return
	}
	if drugs == nil {
		drugs = []model.DrugIdentity{}
	}
	builder.SuccessOK(drugs)
}

// ListPackages handles GET /api/catalog/packages?canonical_id=.
//
// @Summary      List packages of a drug
// @Tags         Catalog
// @Produce      json
// @Param        canonical_id query string true "Canonical drug identifier"
// @Success      200 {object} dto.SuccessResponse
// @Failure      400 {object} dto.ErrorResponse "canonical_id missing"
// @Router       /api/catalog/packages [get]
func (h *CatalogHandler) ListPackages(c *gin.Context) {
	builder := NewResponseBuilder(c)

	canonicalID := c.Query("canonical_id")
	if canonicalID == "" {
		builder.BadRequest(&dto.ValidationError{Field: "canonical_id", Message: "is required"})
		return
	}

	candidates, err := h.catalog.FetchCandidates(c.Request.Context(), canonicalID)
	if err != nil {
		builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, err)
		return
	}

	packages := make([]dto.PackageResponse, 0, len(candidates))
	for _, candidate := range candidates {
		packages = append(packages, dto.NewPackageResponse(candidate))
	}
	builder.SuccessOK(packages)
}

// UpsertPackage handles PUT /api/catalog/packages. The authenticated client
// is recorded as the author of the change.
//
// @Summary      Create or update a catalog package
// @Tags         Catalog
// @Accept       json
// @Produce      json
// @Param        request body dto.UpsertPackageRequest true "Package"
// @Success      200 {object} dto.SuccessResponse
// @Failure      400 {object} dto.ErrorResponse "Invalid package"
// @Failure      422 {object} dto.ErrorResponse "Unknown drug"
// @Router       /api/catalog/packages [put]
func (h *CatalogHandler) UpsertPackage(c *gin.Context) {
	builder := NewResponseBuilder(c)

	req, err := BuildRequestAndValidate[dto.UpsertPackageRequest](c)
	if err != nil {
		builder.BadRequest(err)
		return
	}

	updatedBy := middleware.GetClientID(c)
	if updatedBy == "" {
		updatedBy = "anonymous"
	}

	saved, err := h.catalog.UpsertPackage(c.Request.Context(), req.ToCandidate(), updatedBy)
	switch {
	case errors.Is(err, service.ErrUnknownDrug):
		builder.Error(http.StatusUnprocessableEntity, i18n.ErrKeyUnknownDrug, err)
		return
	case err != nil:
		builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyServiceUnavailable, err)
		return
	}
	builder.SuccessOK(dto.NewPackageResponse(*saved))
}
