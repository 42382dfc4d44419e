package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hospitalcare/backend/internal/adapters/cache"
	"github.com/hospitalcare/backend/internal/adapters/memory"
	"github.com/hospitalcare/backend/internal/application/services"
	"github.com/hospitalcare/backend/internal/domain/entities"
	"github.com/hospitalcare/backend/internal/domain/providers"
)

// MockDoctorRepository is a mock implementation of DoctorRepository
type MockDoctorRepository struct {
	mock.Mock
}

func (m *MockDoctorRepository) ListByDepartment(ctx context.Context, departmentID entities.DepartmentID) ([]*entities.Doctor, error) {
	args := m.Called(ctx, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) ListByDepartments(ctx context.Context, departmentIDs []entities.DepartmentID) (map[entities.DepartmentID][]*entities.Doctor, error) {
	args := m.Called(ctx, departmentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entities.DepartmentID][]*entities.Doctor), args.Error(1)
}

func defaultResolver(t *testing.T) *services.DepartmentResolver {
	t.Helper()
	resolver, err := services.NewDepartmentResolver(services.DefaultDepartmentRules())
	require.NoError(t, err)
	return resolver
}

func TestCacheWarmingService_WarmCache(t *testing.T) {
	ctx := context.Background()
	resolver := defaultResolver(t)

	t.Run("caches every routable department", func(t *testing.T) {
		c := cache.NewMemoryAdapter()
		roster := memory.NewSampleRoster(time.Now())
		service := services.NewCacheWarmingService(roster, c, resolver, time.Minute)

		require.NoError(t, service.WarmCache(ctx))

		for _, id := range resolver.Departments() {
			data, err := c.Get(ctx, providers.DepartmentDoctorsKey(id))
			require.NoError(t, err, "department %d", id)
			assert.NotEqual(t, "null", string(data))
		}
	})

	t.Run("repository failure caches nothing", func(t *testing.T) {
		c := cache.NewMemoryAdapter()
		repo := new(MockDoctorRepository)
		repo.On("ListByDepartments", mock.Anything, resolver.Departments()).Return(nil, errors.New("db down"))
		service := services.NewCacheWarmingService(repo, c, resolver, time.Minute)

		require.Error(t, service.WarmCache(ctx))
		assert.False(t, isCached(c, entities.DepartmentCardiology))
		repo.AssertExpectations(t)
	})
}

func TestCacheWarmingService_StartPeriodicWarming(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := cache.NewMemoryAdapter()
	service := services.NewCacheWarmingService(memory.NewSampleRoster(time.Now()), c, defaultResolver(t), time.Minute)

	service.StartPeriodicWarming(ctx, time.Hour)
	assert.True(t, isCached(c, entities.DepartmentCardiology))
}
