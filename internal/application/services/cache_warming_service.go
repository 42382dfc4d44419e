package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hospitalcare/backend/internal/domain/entities"
	"github.com/hospitalcare/backend/internal/domain/providers"
	"github.com/hospitalcare/backend/internal/domain/repositories"
)

// CacheWarmingService preloads the doctor lists of every department the resolver can route to
type CacheWarmingService struct {
	doctorRepo  repositories.DoctorRepository
	cache       providers.CacheProvider
	departments []entities.DepartmentID
	ttlSeconds  int
}

// NewCacheWarmingService creates a new cache warming service
func NewCacheWarmingService(
	doctorRepo repositories.DoctorRepository,
	cache providers.CacheProvider,
	resolver *DepartmentResolver,
	ttl time.Duration,
) *CacheWarmingService {
	return &CacheWarmingService{
		doctorRepo:  doctorRepo,
		cache:       cache,
		departments: resolver.Departments(),
		ttlSeconds:  int(ttl / time.Second),
	}
}

// WarmCache loads all routable departments in one query and caches each list
func (s *CacheWarmingService) WarmCache(ctx context.Context) error {
	if len(s.departments) == 0 {
		return nil
	}

	byDepartment, err := s.doctorRepo.ListByDepartments(ctx, s.departments)
	if err != nil {
		return fmt.Errorf("failed to fetch department rosters: %w", err)
	}

	items := make(map[string][]byte, len(s.departments))
	for _, id := range s.departments {
		doctors := byDepartment[id]
		if doctors == nil {
			doctors = []*entities.Doctor{}
		}
		data, err := json.Marshal(doctors)
		if err != nil {
			log.Warn().Err(err).Int("department_id", int(id)).Msg("Failed to marshal department roster")
			continue
		}
		items[providers.DepartmentDoctorsKey(id)] = data
	}

	if err := s.cache.SetMulti(ctx, items, s.ttlSeconds); err != nil {
		return fmt.Errorf("failed to cache department rosters: %w", err)
	}

	log.Info().Int("departments", len(items)).Msg("Warmed department doctor cache")
	return nil
}

// StartPeriodicWarming warms once, then again every interval until ctx is done
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	if err := s.WarmCache(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial cache warming failed")
	}
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Stopping cache warming service")
				return
			case <-ticker.C:
				if err := s.WarmCache(ctx); err != nil {
					log.Warn().Err(err).Msg("Periodic cache warming failed")
				}
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("Started periodic cache warming")
}
