package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hospitalcare/backend/internal/application/services"
	"github.com/hospitalcare/backend/internal/domain/entities"
	"github.com/hospitalcare/backend/internal/domain/providers"
	apperrors "github.com/hospitalcare/backend/pkg/errors"
)

// MockDoctorLookup is a mock implementation of DoctorLookup
type MockDoctorLookup struct {
	mock.Mock
}

func (m *MockDoctorLookup) GetDoctorsByDepartment(ctx context.Context, departmentID entities.DepartmentID) ([]*entities.Doctor, error) {
	args := m.Called(ctx, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Doctor), args.Error(1)
}

func newRecommendationService(t *testing.T, lookup providers.DoctorLookup, bus providers.EventBus) *services.RecommendationService {
	t.Helper()
	return services.NewRecommendationService(defaultResolver(t), lookup, bus, nil)
}

var suddenChestPain = entities.SymptomSelection{Onset: "Suddenly", Area: "Chest", Primary: "Pain"}

func TestRecommendationService_RecommendDoctor(t *testing.T) {
	ctx := context.Background()

	t.Run("unrecognized selection returns none without a lookup", func(t *testing.T) {
		lookup := new(MockDoctorLookup)
		service := newRecommendationService(t, lookup, nil)

		doctor, err := service.RecommendDoctor(ctx, entities.SymptomSelection{Onset: "???", Area: "???", Primary: "???"})
		require.NoError(t, err)
		assert.Nil(t, doctor)
		lookup.AssertNotCalled(t, "GetDoctorsByDepartment", mock.Anything, mock.Anything)
	})

	t.Run("recognized selection with no doctors returns none after one lookup", func(t *testing.T) {
		lookup := new(MockDoctorLookup)
		lookup.On("GetDoctorsByDepartment", mock.Anything, entities.DepartmentCardiology).Return([]*entities.Doctor{}, nil).Once()
		service := newRecommendationService(t, lookup, nil)

		doctor, err := service.RecommendDoctor(ctx, suddenChestPain)
		require.NoError(t, err)
		assert.Nil(t, doctor)
		lookup.AssertNumberOfCalls(t, "GetDoctorsByDepartment", 1)
		lookup.AssertExpectations(t)
	})

	t.Run("picks the least busy doctor of the resolved department", func(t *testing.T) {
		lookup := new(MockDoctorLookup)
		lookup.On("GetDoctorsByDepartment", mock.Anything, entities.DepartmentCardiology).Return([]*entities.Doctor{
			{ID: 7, DepartmentID: entities.DepartmentCardiology, UpcomingAppointments: 3},
			{ID: 4, DepartmentID: entities.DepartmentCardiology, UpcomingAppointments: 1},
			{ID: 2, DepartmentID: entities.DepartmentCardiology, UpcomingAppointments: 1},
		}, nil).Once()
		service := newRecommendationService(t, lookup, nil)

		doctor, err := service.RecommendDoctor(ctx, suddenChestPain)
		require.NoError(t, err)
		require.NotNil(t, doctor)
		assert.Equal(t, int64(2), doctor.ID)
		lookup.AssertExpectations(t)
	})

	t.Run("duplicate symptoms fail validation before any lookup", func(t *testing.T) {
		lookup := new(MockDoctorLookup)
		service := newRecommendationService(t, lookup, nil)

		doctor, err := service.RecommendDoctor(ctx, entities.SymptomSelection{
			Onset: "Pain", Area: "Pain", Primary: "Pain", Secondary: "Pain", Tertiary: "Pain",
		})
		require.Error(t, err)
		assert.Nil(t, doctor)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		lookup.AssertNotCalled(t, "GetDoctorsByDepartment", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure is an external error, not none", func(t *testing.T) {
		cause := errors.New("connection refused")
		lookup := new(MockDoctorLookup)
		lookup.On("GetDoctorsByDepartment", mock.Anything, entities.DepartmentCardiology).Return(nil, cause).Once()
		service := newRecommendationService(t, lookup, nil)

		doctor, err := service.RecommendDoctor(ctx, suddenChestPain)
		require.Error(t, err)
		assert.Nil(t, doctor)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("cancellation surfaces as a failure", func(t *testing.T) {
		lookup := new(MockDoctorLookup)
		lookup.On("GetDoctorsByDepartment", mock.Anything, entities.DepartmentCardiology).Return(nil, context.Canceled).Once()
		service := newRecommendationService(t, lookup, nil)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		doctor, err := service.RecommendDoctor(cancelled, suddenChestPain)
		require.Error(t, err)
		assert.Nil(t, doctor)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRecommendationService_Recommend(t *testing.T) {
	ctx := context.Background()

	t.Run("reports outcome and department", func(t *testing.T) {
		lookup := new(MockDoctorLookup)
		lookup.On("GetDoctorsByDepartment", mock.Anything, entities.DepartmentCardiology).Return([]*entities.Doctor{{ID: 1}}, nil)
		service := newRecommendationService(t, lookup, nil)

		rec, err := service.Recommend(ctx, entities.SymptomSelection{Onset: " Suddenly", Area: "Chest", Primary: "Pain "})
		require.NoError(t, err)
		assert.Equal(t, entities.RecommendationOutcomeRecommended, rec.Outcome)
		require.NotNil(t, rec.Department)
		assert.Equal(t, entities.DepartmentCardiology, rec.Department.ID)
		assert.Equal(t, "Cardiology", rec.Department.Name)
		assert.Equal(t, "Suddenly", rec.Selection.Onset)
		assert.True(t, rec.HasDoctor())
	})

	t.Run("no department match has no department", func(t *testing.T) {
		service := newRecommendationService(t, new(MockDoctorLookup), nil)

		rec, err := service.Recommend(ctx, entities.SymptomSelection{Onset: "???", Area: "???", Primary: "???"})
		require.NoError(t, err)
		assert.Equal(t, entities.RecommendationOutcomeNoDepartmentMatch, rec.Outcome)
		assert.Nil(t, rec.Department)
		assert.False(t, rec.HasDoctor())
	})

	t.Run("no doctors available keeps the department", func(t *testing.T) {
		lookup := new(MockDoctorLookup)
		lookup.On("GetDoctorsByDepartment", mock.Anything, entities.DepartmentCardiology).Return([]*entities.Doctor{}, nil)
		service := newRecommendationService(t, lookup, nil)

		rec, err := service.Recommend(ctx, suddenChestPain)
		require.NoError(t, err)
		assert.Equal(t, entities.RecommendationOutcomeNoDoctorsAvailable, rec.Outcome)
		assert.NotNil(t, rec.Department)
		assert.Nil(t, rec.Doctor)
	})
}

func TestRecommendationService_PublishesEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes one event per completed recommendation", func(t *testing.T) {
		bus := NewMockEventBus()
		lookup := new(MockDoctorLookup)
		lookup.On("GetDoctorsByDepartment", mock.Anything, entities.DepartmentCardiology).Return([]*entities.Doctor{{ID: 6}}, nil)
		service := newRecommendationService(t, lookup, bus)

		_, err := service.Recommend(ctx, suddenChestPain)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			return len(bus.Published(providers.EventChannelRecommendations)) == 1
		}, time.Second, 10*time.Millisecond)
		events := bus.Published(providers.EventChannelRecommendations)
		assert.Equal(t, entities.EventTypeRecommendationMade, events[0].EventType)
		assert.Equal(t, entities.DepartmentCardiology, events[0].DepartmentID)
		assert.Equal(t, int64(6), events[0].DoctorID)
		assert.Equal(t, "recommended", events[0].Data["outcome"])
	})

	t.Run("publish failure does not change the result", func(t *testing.T) {
		bus := NewMockEventBus()
		bus.publishErr = errors.New("redis unavailable")
		lookup := new(MockDoctorLookup)
		lookup.On("GetDoctorsByDepartment", mock.Anything, entities.DepartmentCardiology).Return([]*entities.Doctor{{ID: 6}}, nil)
		service := newRecommendationService(t, lookup, bus)

		doctor, err := service.RecommendDoctor(ctx, suddenChestPain)
		require.NoError(t, err)
		require.NotNil(t, doctor)
		assert.Equal(t, int64(6), doctor.ID)
	})

	t.Run("a slow event bus does not hold up the response", func(t *testing.T) {
		bus := NewMockEventBus()
		bus.block = make(chan struct{})
		lookup := new(MockDoctorLookup)
		lookup.On("GetDoctorsByDepartment", mock.Anything, entities.DepartmentCardiology).Return([]*entities.Doctor{{ID: 6}}, nil)
		service := newRecommendationService(t, lookup, bus)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := service.Recommend(ctx, suddenChestPain)
			assert.NoError(t, err)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Recommend waited on the event bus")
		}
		assert.Empty(t, bus.Published(providers.EventChannelRecommendations))

		close(bus.block)
		assert.Eventually(t, func() bool {
			return len(bus.Published(providers.EventChannelRecommendations)) == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("request cancellation does not drop the event", func(t *testing.T) {
		bus := NewMockEventBus()
		lookup := new(MockDoctorLookup)
		lookup.On("GetDoctorsByDepartment", mock.Anything, entities.DepartmentCardiology).Return([]*entities.Doctor{{ID: 6}}, nil)
		service := newRecommendationService(t, lookup, bus)

		reqCtx, cancel := context.WithCancel(ctx)
		_, err := service.Recommend(reqCtx, suddenChestPain)
		cancel()
		require.NoError(t, err)

		assert.Eventually(t, func() bool {
			return len(bus.Published(providers.EventChannelRecommendations)) == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("rejected selections are not published", func(t *testing.T) {
		bus := NewMockEventBus()
		service := newRecommendationService(t, new(MockDoctorLookup), bus)

		_, err := service.Recommend(ctx, entities.SymptomSelection{Onset: "Pain", Area: "Pain", Primary: "x"})
		require.Error(t, err)
		assert.Empty(t, bus.Published(providers.EventChannelRecommendations))
	})
}
