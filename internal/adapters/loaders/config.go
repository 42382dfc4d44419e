package loaders

import (
	"github.com/hospitalcare/backend/internal/domain/providers"
	"github.com/hospitalcare/backend/internal/domain/repositories"
	"github.com/hospitalcare/backend/internal/infrastructure/observability"
	"github.com/hospitalcare/backend/pkg/config"
)

// NewFromConfig returns a batched lookup when a batch window is configured and a direct one otherwise
func NewFromConfig(repo repositories.DoctorRepository, cfg config.RecommendationConfig, metrics *observability.Metrics) providers.DoctorLookup {
	if cfg.BatchWindow > 0 {
		return NewBatchedDoctorLookup(repo, BatchOptions{
			Wait:     cfg.BatchWindow,
			Capacity: cfg.BatchCapacity,
			Timeout:  cfg.LookupTimeout,
		}, metrics)
	}
	return NewDoctorLookup(repo, cfg.LookupTimeout, metrics)
}
