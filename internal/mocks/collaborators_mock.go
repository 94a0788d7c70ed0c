// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/stretchr/testify/mock"
)

type MockDoseParser struct {
	mock.Mock
}

func (m *MockDoseParser) Parse(ctx context.Context, freeText string) (model.DoseSpecification, error) {
	args := m.Called(ctx, freeText)
	return args.Get(0).(model.DoseSpecification), args.Error(1)
}

type MockIdentityNormalizer struct {
	mock.Mock
}

func (m *MockIdentityNormalizer) Normalize(ctx context.Context, name string) (*model.DrugIdentity, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DrugIdentity), args.Error(1)
}

func (m *MockIdentityNormalizer) ValidateKnownPackage(ctx context.Context, packageID string) (*model.PackageCandidate, error) {
	args := m.Called(ctx, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PackageCandidate), args.Error(1)
}

type MockCandidateCatalog struct {
	mock.Mock
}

func (m *MockCandidateCatalog) FetchCandidates(ctx context.Context, canonicalID string) ([]model.PackageCandidate, error) {
	args := m.Called(ctx, canonicalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PackageCandidate), args.Error(1)
}

type MockIdentityDetailer struct {
	mock.Mock
}

func (m *MockIdentityDetailer) Details(ctx context.Context, canonicalID string) (model.IdentityDetails, error) {
	args := m.Called(ctx, canonicalID)
	return args.Get(0).(model.IdentityDetails), args.Error(1)
}

type MockAdvisoryOverrideService struct {
	mock.Mock
}

func (m *MockAdvisoryOverrideService) Advise(ctx context.Context, req model.QuantityRequirement, candidates []model.PackageCandidate) (*model.AdvisoryOverride, error) {
	args := m.Called(ctx, req, candidates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AdvisoryOverride), args.Error(1)
}

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Calculate(ctx context.Context, input model.CalculationInput) model.CalculationResult {
	args := m.Called(ctx, input)
	return args.Get(0).(model.CalculationResult)
}
