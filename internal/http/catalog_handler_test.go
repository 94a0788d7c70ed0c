package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nosenfield/smart-scrip/internal/domain/dto"
	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/nosenfield/smart-scrip/internal/mocks"
	"github.com/nosenfield/smart-scrip/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func catalogRouter(catalog *mocks.MockCatalogService, cfg RouterConfig) *gin.Engine {
	return NewRouter(NewHandler(new(mocks.MockReconciler)), NewCatalogHandler(catalog), nil, cfg)
}

func TestCatalogHandler_ListDrugs(t *testing.T) {
	amoxicillin := model.DrugIdentity{CanonicalID: "RX-1", DisplayName: "Amoxicillin 500 MG Oral Capsule"}

	tests := []struct {
		name       string
		query      string
		setup      func(*mocks.MockCatalogService)
		wantStatus int
		wantCount  int
	}{
		{
			name:  "resolve by name",
			query: "?name=amoxicillin",
			setup: func(m *mocks.MockCatalogService) {
				m.On("Normalize", mock.Anything, "amoxicillin").Return(&amoxicillin, nil)
			},
			wantStatus: http.StatusOK,
			wantCount:  1,
		},
		{
			name:  "unknown name",
			query: "?name=unobtainium",
			setup: func(m *mocks.MockCatalogService) {
				m.On("Normalize", mock.Anything, "unobtainium").Return(nil, nil)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:  "default limit",
			query: "",
			setup: func(m *mocks.MockCatalogService) {
				m.On("ListDrugs", mock.Anything, defaultDrugListLimit).Return([]model.DrugIdentity{amoxicillin}, nil)
			},
			wantStatus: http.StatusOK,
			wantCount:  1,
		},
		{
			name:  "limit is capped",
			query: "?limit=100000",
			setup: func(m *mocks.MockCatalogService) {
				m.On("ListDrugs", mock.Anything, maxDrugListLimit).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantCount:  0,
		},
		{
			name:       "invalid limit",
			query:      "?limit=abc",
			setup:      func(m *mocks.MockCatalogService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:  "store unavailable",
			query: "",
			setup: func(m *mocks.MockCatalogService) {
				m.On("ListDrugs", mock.Anything, defaultDrugListLimit).Return(nil, errors.New("connection refused"))
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(mocks.MockCatalogService)
			tt.setup(catalog)

			w := doRequest(t, catalogRouter(catalog, DefaultRouterConfig()), http.MethodGet, "/api/catalog/drugs"+tt.query, "", nil)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusOK {
				var drugs []model.DrugIdentity
				decodeData(t, w, &drugs)
				assert.Len(t, drugs, tt.wantCount)
			}
			catalog.AssertExpectations(t)
		})
	}
}

func TestCatalogHandler_ListPackages(t *testing.T) {
	catalog := new(mocks.MockCatalogService)
	catalog.On("FetchCandidates", mock.Anything, "RX-1").Return([]model.PackageCandidate{
		{ID: "PKG-A", CanonicalID: "RX-1", Size: decimal.RequireFromString("100"), Unit: "capsule", Status: model.StatusInactive},
		{ID: "PKG-B", CanonicalID: "RX-1", Size: decimal.RequireFromString("30"), Unit: "capsule", Status: model.StatusActive, SourceMetadata: map[string]string{"labeler": "Acme"}},
	}, nil)
	router := catalogRouter(catalog, DefaultRouterConfig())

	w := doRequest(t, router, http.MethodGet, "/api/catalog/packages?canonical_id=RX-1", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var packages []dto.PackageResponse
	decodeData(t, w, &packages)
	require.Len(t, packages, 2)
	assert.Equal(t, "INACTIVE", packages[0].Status)
	assert.Equal(t, 30.0, packages[1].Size)
	assert.Equal(t, "Acme", packages[1].Labeler)

	w = doRequest(t, router, http.MethodGet, "/api/catalog/packages", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Details, "canonical_id")
}

func TestCatalogHandler_UpsertPackage(t *testing.T) {
	body := `{"package_id":"PKG-B","canonical_id":"RX-1","size":"60","unit":"capsule","status":"active","labeler":"Acme"}`
	isPKGB := mock.MatchedBy(func(c model.PackageCandidate) bool {
		return c.ID == "PKG-B" && c.Size.Equal(decimal.NewFromInt(60)) && c.Status == model.StatusActive
	})

	tests := []struct {
		name       string
		body       string
		cfg        RouterConfig
		headers    map[string]string
		setup      func(*mocks.MockCatalogService)
		wantStatus int
	}{
		{
			name: "anonymous update",
			body: body,
			cfg:  DefaultRouterConfig(),
			setup: func(m *mocks.MockCatalogService) {
				saved := model.PackageCandidate{ID: "PKG-B", CanonicalID: "RX-1", Size: decimal.NewFromInt(60), Unit: "capsule", Status: model.StatusActive}
				m.On("UpsertPackage", mock.Anything, isPKGB, "anonymous").Return(&saved, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:    "authenticated client recorded",
			body:    body,
			cfg:     RouterConfig{APIKeys: map[string]string{"secret": "pharmacy-east"}},
			headers: map[string]string{"X-API-Key": "secret"},
			setup: func(m *mocks.MockCatalogService) {
				saved := model.PackageCandidate{ID: "PKG-B", Size: decimal.NewFromInt(60), Status: model.StatusActive}
				m.On("UpsertPackage", mock.Anything, isPKGB, "pharmacy-east").Return(&saved, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "unknown drug",
			body: body,
			cfg:  DefaultRouterConfig(),
			setup: func(m *mocks.MockCatalogService) {
				m.On("UpsertPackage", mock.Anything, isPKGB, "anonymous").Return(nil, service.ErrUnknownDrug)
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "non-positive size",
			body:       `{"package_id":"PKG-B","canonical_id":"RX-1","size":0,"unit":"capsule","status":"ACTIVE"}`,
			cfg:        DefaultRouterConfig(),
			setup:      func(m *mocks.MockCatalogService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad status",
			body:       `{"package_id":"PKG-B","canonical_id":"RX-1","size":30,"unit":"capsule","status":"RETIRED"}`,
			cfg:        DefaultRouterConfig(),
			setup:      func(m *mocks.MockCatalogService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing API key",
			body:       body,
			cfg:        RouterConfig{APIKeys: map[string]string{"secret": "pharmacy-east"}},
			setup:      func(m *mocks.MockCatalogService) {},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(mocks.MockCatalogService)
			tt.setup(catalog)

			w := doRequest(t, catalogRouter(catalog, tt.cfg), http.MethodPut, "/api/catalog/packages", tt.body, tt.headers)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			catalog.AssertExpectations(t)
		})
	}
}
