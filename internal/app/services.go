package app

import (
	"fmt"

	"github.com/nosenfield/smart-scrip/config"
	"github.com/nosenfield/smart-scrip/internal/circuitbreaker"
	"github.com/nosenfield/smart-scrip/internal/client"
	"github.com/nosenfield/smart-scrip/internal/repository"
	"github.com/nosenfield/smart-scrip/internal/service"
)

// ServiceComponents holds the business services.
type ServiceComponents struct {
	Reconciler service.Reconciler
	Optimizer  service.PackageOptimizer
	Catalog    service.CatalogService
	Criteria   service.Criteria
	Strategy   service.SelectionStrategy

	// DoseParser and Advisor are nil when their URL is not configured.
	DoseParser *client.DoseParserClient
	Advisor    *client.AdvisorClient
}

// Breakers returns the circuit breakers of the configured collaborators.
func (s *ServiceComponents) Breakers() []*circuitbreaker.CircuitBreaker {
	var breakers []*circuitbreaker.CircuitBreaker
	if s.DoseParser != nil {
		breakers = append(breakers, s.DoseParser.Breaker())
	}
	if s.Advisor != nil {
		breakers = append(breakers, s.Advisor.Breaker())
	}
	return breakers
}

// InitializeServices builds the reconciler and its collaborators.
func InitializeServices(cfg config.Config, repo repository.CatalogRepositoryInterface) (*ServiceComponents, error) {
	strategy, err := service.ParseSelectionStrategy(cfg.Reconcile.Strategy)
	if err != nil {
		return nil, fmt.Errorf("reconcile config: %w", err)
	}

	criteria := service.Criteria{
		MinimizeCount:      cfg.Reconcile.MinimizeCount,
		MinimizeWaste:      cfg.Reconcile.MinimizeWaste,
		AllowOverfill:      cfg.Reconcile.AllowOverfill,
		MaxOverfillPercent: cfg.Reconcile.MaxOverfillPercent,
	}
	optimizer := service.NewPackageOptimizerService(
		service.WithMaxCountPerCandidate(cfg.Reconcile.MaxCountPerCandidate))
	catalog := service.NewCatalogService(repo)

	components := &ServiceComponents{
		Optimizer: optimizer,
		Catalog:   catalog,
		Criteria:  criteria,
		Strategy:  strategy,
	}

	opts := []service.ReconcilerOption{
		service.WithIdentityDetailer(catalog),
		service.WithSelectionStrategy(strategy),
		service.WithCriteria(criteria),
		service.WithOptimizer(optimizer),
		service.WithAdvisoryTimeout(cfg.Collaborators.AdvisorTimeout),
	}

	if parser := cfg.Collaborators.DoseParser; parser.URL != "" {
		components.DoseParser = client.NewDoseParserClient(collaboratorConfig("dose-parser", parser, cfg.Database))
		opts = append(opts, service.WithDoseParser(components.DoseParser))
	}
	if advisor := cfg.Collaborators.Advisor; advisor.URL != "" {
		components.Advisor = client.NewAdvisorClient(collaboratorConfig("advisor", advisor, cfg.Database))
		opts = append(opts, service.WithAdvisor(components.Advisor))
	}

	components.Reconciler = service.NewReconcilerService(catalog, catalog, opts...)
	return components, nil
}

// collaboratorConfig shares the breaker thresholds configured for the catalog.
func collaboratorConfig(name string, cfg config.CollaboratorConfig, db config.DatabaseConfig) client.Config {
	policy := retryPolicy(name, cfg.Retry)
	return client.Config{
		BaseURL: cfg.URL,
		APIKey:  cfg.APIKey,
		Timeout: policy.AttemptTimeout,
		Retry:   policy,
		Breaker: circuitbreaker.Config{
			FailureThreshold: db.CircuitBreakerFailureThreshold,
			SuccessThreshold: db.CircuitBreakerSuccessThreshold,
			Timeout:          db.CircuitBreakerTimeout,
			Name:             name,
		},
	}
}
