package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hospitalcare/backend/internal/domain/entities"
	"github.com/hospitalcare/backend/internal/domain/providers"
	"github.com/hospitalcare/backend/internal/domain/repositories"
	"github.com/hospitalcare/backend/internal/infrastructure/observability"
)

const (
	defaultDepartmentTTL = 120 * time.Second
	cacheWriteTimeout    = 2 * time.Second

	departmentKeyspace = "doctors:department"
)

// CachedDoctorAdapter wraps a DoctorRepository with a read-through cache.
// Lookup errors are never cached and never turned into empty results.
type CachedDoctorAdapter struct {
	adapter       repositories.DoctorRepository
	cache         providers.CacheProvider
	departmentTTL int
	metrics       *observability.Metrics
}

var _ repositories.DoctorRepository = (*CachedDoctorAdapter)(nil)

// NewCachedDoctorAdapter creates a new cached doctor adapter. A non-positive ttl uses the default.
func NewCachedDoctorAdapter(adapter repositories.DoctorRepository, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) *CachedDoctorAdapter {
	if ttl <= 0 {
		ttl = defaultDepartmentTTL
	}
	return &CachedDoctorAdapter{
		adapter:       adapter,
		cache:         cache,
		departmentTTL: int(ttl / time.Second),
		metrics:       metrics,
	}
}

// ListByDepartment retrieves a department's doctors with caching
func (a *CachedDoctorAdapter) ListByDepartment(ctx context.Context, departmentID entities.DepartmentID) ([]*entities.Doctor, error) {
	cacheKey := providers.DepartmentDoctorsKey(departmentID)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var doctors []*entities.Doctor
		decodeErr := json.Unmarshal(cached, &doctors)
		if decodeErr == nil {
			observability.RecordCacheHit(ctx, a.metrics, departmentKeyspace)
			return nonNil(doctors), nil
		}
		log.Warn().Err(decodeErr).Int("department_id", int(departmentID)).Msg("Failed to unmarshal cached doctor list")
	}
	observability.RecordCacheMiss(ctx, a.metrics, departmentKeyspace)

	doctors, err := a.adapter.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	doctors = nonNil(doctors)

	a.storeAsync(map[string]interface{}{cacheKey: doctors}, a.departmentTTL)
	return doctors, nil
}

// ListByDepartments serves cached departments from one MGET and loads the rest in one query
func (a *CachedDoctorAdapter) ListByDepartments(ctx context.Context, departmentIDs []entities.DepartmentID) (map[entities.DepartmentID][]*entities.Doctor, error) {
	result := make(map[entities.DepartmentID][]*entities.Doctor, len(departmentIDs))
	if len(departmentIDs) == 0 {
		return result, nil
	}

	keys := make([]string, len(departmentIDs))
	for i, id := range departmentIDs {
		keys[i] = providers.DepartmentDoctorsKey(id)
	}

	cached, err := a.cache.GetMulti(ctx, keys)
	if err != nil {
		log.Warn().Err(err).Msg("Batch cache read failed, falling back to database")
		cached = nil
	}

	missing := make([]entities.DepartmentID, 0, len(departmentIDs))
	for i, id := range departmentIDs {
		if data, ok := cached[keys[i]]; ok {
			var doctors []*entities.Doctor
			if err := json.Unmarshal(data, &doctors); err == nil {
				observability.RecordCacheHit(ctx, a.metrics, departmentKeyspace)
				result[id] = nonNil(doctors)
				continue
			}
		}
		observability.RecordCacheMiss(ctx, a.metrics, departmentKeyspace)
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return result, nil
	}

	loaded, err := a.adapter.ListByDepartments(ctx, missing)
	if err != nil {
		return nil, err
	}

	items := make(map[string]interface{}, len(missing))
	for _, id := range missing {
		doctors := nonNil(loaded[id])
		result[id] = doctors
		items[providers.DepartmentDoctorsKey(id)] = doctors
	}
	a.storeAsync(items, a.departmentTTL)

	return result, nil
}

// InvalidateDepartment drops the cached doctor list of one department
func (a *CachedDoctorAdapter) InvalidateDepartment(ctx context.Context, departmentID entities.DepartmentID) error {
	return a.cache.Delete(ctx, providers.DepartmentDoctorsKey(departmentID))
}

// storeAsync marshals and writes items in the background so responses never wait on the cache
func (a *CachedDoctorAdapter) storeAsync(items map[string]interface{}, ttlSeconds int) {
	encoded := make(map[string][]byte, len(items))
	for key, value := range items {
		data, err := json.Marshal(value)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Failed to marshal value for cache")
			continue
		}
		encoded[key] = data
	}
	if len(encoded) == 0 {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()

		var err error
		if len(encoded) == 1 {
			for key, data := range encoded {
				err = a.cache.Set(ctx, key, data, ttlSeconds)
			}
		} else {
			err = a.cache.SetMulti(ctx, encoded, ttlSeconds)
		}
		if err != nil {
			log.Warn().Err(err).Int("keys", len(encoded)).Msg("Failed to write doctors to cache")
		}
	}()
}

func nonNil(doctors []*entities.Doctor) []*entities.Doctor {
	if doctors == nil {
		return []*entities.Doctor{}
	}
	return doctors
}
