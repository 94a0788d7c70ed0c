// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/nosenfield/smart-scrip/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockCatalogRepositoryInterface struct {
	mock.Mock
}

func (m *MockCatalogRepositoryInterface) FindDrugByName(ctx context.Context, normalizedName string) (*repository.DrugDocument, error) {
	args := m.Called(ctx, normalizedName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DrugDocument), args.Error(1)
}

func (m *MockCatalogRepositoryInterface) FindDrugByCanonicalID(ctx context.Context, canonicalID string) (*repository.DrugDocument, error) {
	args := m.Called(ctx, canonicalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DrugDocument), args.Error(1)
}

func (m *MockCatalogRepositoryInterface) FindPackage(ctx context.Context, packageID string) (*repository.PackageDocument, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PackageDocument), args.Error(1)
}

func (m *MockCatalogRepositoryInterface) ListPackages(ctx context.Context, canonicalID string) ([]repository.PackageDocument, error) {
	args := m.Called(ctx, canonicalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.PackageDocument), args.Error(1)
}

func (m *MockCatalogRepositoryInterface) ListDrugs(ctx context.Context, limit int) ([]repository.DrugDocument, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DrugDocument), args.Error(1)
}

func (m *MockCatalogRepositoryInterface) UpsertDrug(ctx context.Context, drug repository.DrugDocument) (*repository.DrugDocument, error) {
	args := m.Called(ctx, drug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.DrugDocument), args.Error(1)
}

func (m *MockCatalogRepositoryInterface) UpsertPackage(ctx context.Context, pkg repository.PackageDocument, updatedBy string) (*repository.PackageDocument, error) {
	args := m.Called(ctx, pkg, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PackageDocument), args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) Normalize(ctx context.Context, name string) (*model.DrugIdentity, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DrugIdentity), args.Error(1)
}

func (m *MockCatalogService) ValidateKnownPackage(ctx context.Context, packageID string) (*model.PackageCandidate, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PackageCandidate), args.Error(1)
}

func (m *MockCatalogService) FetchCandidates(ctx context.Context, canonicalID string) ([]model.PackageCandidate, error) {
	args := m.Called(ctx, canonicalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PackageCandidate), args.Error(1)
}

func (m *MockCatalogService) Details(ctx context.Context, canonicalID string) (model.IdentityDetails, error) {
	args := m.Called(ctx, canonicalID)
	return args.Get(0).(model.IdentityDetails), args.Error(1)
}

func (m *MockCatalogService) ListDrugs(ctx context.Context, limit int) ([]model.DrugIdentity, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DrugIdentity), args.Error(1)
}

func (m *MockCatalogService) UpsertPackage(ctx context.Context, candidate model.PackageCandidate, updatedBy string) (*model.PackageCandidate, error) {
	args := m.Called(ctx, candidate, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PackageCandidate), args.Error(1)
}
