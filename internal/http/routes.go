package http

import (
	"github.com/gin-gonic/gin"
)

// RouteGroup defines a group of routes that can be registered.
type RouteGroup interface {
	// RegisterRoutes registers routes to the given router group.
	RegisterRoutes(rg *gin.RouterGroup)
}

// ReconcileRoutes registers the reconciliation endpoints.
type ReconcileRoutes struct {
	handler *Handler
}

// NewReconcileRoutes creates a new ReconcileRoutes instance.
func NewReconcileRoutes(handler *Handler) *ReconcileRoutes {
	return &ReconcileRoutes{handler: handler}
}

// RegisterRoutes implements RouteGroup.
func (r *ReconcileRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/calculate", r.handler.Calculate)
	rg.POST("/calculate/batch", r.handler.CalculateBatch)
	rg.POST("/optimize", r.handler.Optimize)
}

// CatalogRoutes registers the catalog administration endpoints.
type CatalogRoutes struct {
	handler *CatalogHandler
}

// NewCatalogRoutes creates a new CatalogRoutes instance.
func NewCatalogRoutes(handler *CatalogHandler) *CatalogRoutes {
	return &CatalogRoutes{handler: handler}
}

// RegisterRoutes implements RouteGroup.
func (r *CatalogRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	catalog := rg.Group("/catalog")
	catalog.GET("/drugs", r.handler.ListDrugs)
	catalog.GET("/packages", r.handler.ListPackages)
	catalog.PUT("/packages", r.handler.UpsertPackage)
}
