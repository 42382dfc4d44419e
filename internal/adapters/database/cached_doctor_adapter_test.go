package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hospitalcare/backend/internal/adapters/cache"
	"github.com/hospitalcare/backend/internal/adapters/database"
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

func cached(t *testing.T, c *cache.MemoryAdapter, key string) bool {
	t.Helper()
	ok, err := c.Exists(context.Background(), key)
	require.NoError(t, err)
	return ok
}

func TestCachedDoctorAdapter_ListByDepartment(t *testing.T) {
	ctx := context.Background()
	cardiology := []*entities.Doctor{
		{ID: 1, FirstName: "Ada", DepartmentID: entities.DepartmentCardiology, UpcomingAppointments: 2},
	}

	t.Run("fills the cache on miss and serves the second read from it", func(t *testing.T) {
		repo := new(MockDoctorRepository)
		memory := cache.NewMemoryAdapter()
		adapter := database.NewCachedDoctorAdapter(repo, memory, time.Minute, nil)

		repo.On("ListByDepartment", mock.Anything, entities.DepartmentCardiology).Return(cardiology, nil).Once()

		first, err := adapter.ListByDepartment(ctx, entities.DepartmentCardiology)
		require.NoError(t, err)
		assert.Equal(t, cardiology, first)

		key := providers.DepartmentDoctorsKey(entities.DepartmentCardiology)
		assert.Eventually(t, func() bool { return cached(t, memory, key) }, time.Second, 5*time.Millisecond)

		second, err := adapter.ListByDepartment(ctx, entities.DepartmentCardiology)
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.Equal(t, int64(1), second[0].ID)
		assert.Equal(t, 2, second[0].UpcomingAppointments)

		repo.AssertExpectations(t)
	})

	t.Run("errors are returned and never cached", func(t *testing.T) {
		repo := new(MockDoctorRepository)
		memory := cache.NewMemoryAdapter()
		adapter := database.NewCachedDoctorAdapter(repo, memory, time.Minute, nil)

		repo.On("ListByDepartment", mock.Anything, entities.DepartmentNeurology).Return(nil, errors.New("db down"))

		doctors, err := adapter.ListByDepartment(ctx, entities.DepartmentNeurology)
		require.Error(t, err)
		assert.Nil(t, doctors)

		time.Sleep(20 * time.Millisecond)
		assert.False(t, cached(t, memory, providers.DepartmentDoctorsKey(entities.DepartmentNeurology)))
	})

	t.Run("empty departments are cached as empty lists", func(t *testing.T) {
		repo := new(MockDoctorRepository)
		memory := cache.NewMemoryAdapter()
		adapter := database.NewCachedDoctorAdapter(repo, memory, time.Minute, nil)

		repo.On("ListByDepartment", mock.Anything, entities.DepartmentUrology).Return(nil, nil).Once()

		doctors, err := adapter.ListByDepartment(ctx, entities.DepartmentUrology)
		require.NoError(t, err)
		assert.NotNil(t, doctors)
		assert.Empty(t, doctors)

		key := providers.DepartmentDoctorsKey(entities.DepartmentUrology)
		assert.Eventually(t, func() bool { return cached(t, memory, key) }, time.Second, 5*time.Millisecond)

		doctors, err = adapter.ListByDepartment(ctx, entities.DepartmentUrology)
		require.NoError(t, err)
		assert.Empty(t, doctors)
		repo.AssertExpectations(t)
	})
}

func TestCachedDoctorAdapter_ListByDepartments(t *testing.T) {
	ctx := context.Background()
	repo := new(MockDoctorRepository)
	memory := cache.NewMemoryAdapter()
	adapter := database.NewCachedDoctorAdapter(repo, memory, time.Minute, nil)

	require.NoError(t, memory.Set(ctx, providers.DepartmentDoctorsKey(entities.DepartmentCardiology),
		[]byte(`[{"id":1,"first_name":"Ada","department_id":2,"upcoming_appointments":5}]`), 60))

	neurology := []*entities.Doctor{{ID: 3, FirstName: "Cleo", DepartmentID: entities.DepartmentNeurology}}
	repo.On("ListByDepartments", mock.Anything, []entities.DepartmentID{entities.DepartmentNeurology}).
		Return(map[entities.DepartmentID][]*entities.Doctor{entities.DepartmentNeurology: neurology}, nil).Once()

	result, err := adapter.ListByDepartments(ctx, []entities.DepartmentID{
		entities.DepartmentCardiology,
		entities.DepartmentNeurology,
	})
	require.NoError(t, err)
	require.Len(t, result[entities.DepartmentCardiology], 1)
	assert.Equal(t, 5, result[entities.DepartmentCardiology][0].UpcomingAppointments)
	assert.Equal(t, neurology, result[entities.DepartmentNeurology])

	repo.AssertExpectations(t)
}

func TestCachedDoctorAdapter_InvalidateDepartment(t *testing.T) {
	ctx := context.Background()
	memory := cache.NewMemoryAdapter()
	adapter := database.NewCachedDoctorAdapter(new(MockDoctorRepository), memory, 0, nil)

	key := providers.DepartmentDoctorsKey(entities.DepartmentDermatology)
	require.NoError(t, memory.Set(ctx, key, []byte("[]"), 60))

	require.NoError(t, adapter.InvalidateDepartment(ctx, entities.DepartmentDermatology))
	assert.False(t, cached(t, memory, key))
}
