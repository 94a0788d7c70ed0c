package app

import (
	"context"
	"fmt"
	"time"

	"github.com/nosenfield/smart-scrip/config"
	"github.com/nosenfield/smart-scrip/internal/circuitbreaker"
	"github.com/nosenfield/smart-scrip/internal/repository"
	"github.com/nosenfield/smart-scrip/internal/retry"
	"github.com/rs/zerolog/log"
)

const seedTimeout = 30 * time.Second

// CatalogComponents holds the catalog storage.
type CatalogComponents struct {
	Repo repository.CatalogRepositoryInterface
	// Mongo and Breaker are nil when the in-memory catalog is used.
	Mongo   *repository.MongoDB
	Breaker *circuitbreaker.CircuitBreaker
}

// InitializeCatalog connects the MongoDB catalog when enabled and falls back to
// an in-memory catalog when it is disabled or unreachable. A configured seed
// file is applied to whichever catalog is in use.
func InitializeCatalog(ctx context.Context, cfg config.DatabaseConfig) (*CatalogComponents, error) {
	components := connectCatalog(ctx, cfg)

	if cfg.CatalogSeedFile != "" {
		seed, err := repository.LoadSeedFile(cfg.CatalogSeedFile)
		if err != nil {
			components.close(ctx)
			return nil, err
		}

		seedCtx, cancel := context.WithTimeout(ctx, seedTimeout)
		defer cancel()
		if err := repository.ApplySeed(seedCtx, components.Repo, seed); err != nil {
			components.close(ctx)
			return nil, fmt.Errorf("apply catalog seed: %w", err)
		}
		log.Info().
			Str("file", cfg.CatalogSeedFile).
			Int("drugs", len(seed.Drugs)).
			Int("packages", len(seed.Packages)).
			Msg("Catalog seeded")
	}

	return components, nil
}

func connectCatalog(ctx context.Context, cfg config.DatabaseConfig) *CatalogComponents {
	if !cfg.Enabled {
		log.Info().Msg("MongoDB disabled - using in-memory catalog")
		return &CatalogComponents{Repo: repository.NewMemoryCatalogRepository()}
	}

	db, err := repository.NewMongoDB(ctx, cfg.URI, cfg.DatabaseName,
		repository.WithMaxPoolSize(cfg.MaxPoolSize),
		repository.WithConnectTimeout(cfg.ConnectTimeout),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to MongoDB - continuing with in-memory catalog")
		return &CatalogComponents{Repo: repository.NewMemoryCatalogRepository()}
	}
	log.Info().Str("database", cfg.DatabaseName).Msg("Connected to MongoDB")

	cb := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: cfg.CircuitBreakerFailureThreshold,
		SuccessThreshold: cfg.CircuitBreakerSuccessThreshold,
		Timeout:          cfg.CircuitBreakerTimeout,
		Name:             "mongodb-catalog",
	})
	repo := repository.NewCatalogRepositoryWithCircuitBreaker(
		repository.NewCatalogRepository(db), cb, retryPolicy("catalog", cfg.Retry))

	return &CatalogComponents{Repo: repo, Mongo: db, Breaker: cb}
}

func (c *CatalogComponents) close(ctx context.Context) {
	if c.Mongo == nil {
		return
	}
	if err := c.Mongo.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to close MongoDB connection")
	}
}

// retryPolicy converts a configured retry class into a policy.
func retryPolicy(name string, cfg config.RetryConfig) retry.Policy {
	policy := retry.DefaultPolicy(name)
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialInterval > 0 {
		policy.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		policy.MaxInterval = cfg.MaxInterval
	}
	if cfg.AttemptTimeout > 0 {
		policy.AttemptTimeout = cfg.AttemptTimeout
	}
	return policy
}
