package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalcare/backend/internal/adapters/cache"
	"github.com/hospitalcare/backend/internal/application/services"
	"github.com/hospitalcare/backend/internal/domain/entities"
	"github.com/hospitalcare/backend/internal/domain/providers"
)

// MockEventBus for testing
type MockEventBus struct {
	mu          sync.Mutex
	subscribers map[string][]chan *entities.DomainEvent
	published   map[string][]*entities.DomainEvent
	publishErr  error
	// block, when set, holds Publish until it is closed
	block chan struct{}
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscribers: make(map[string][]chan *entities.DomainEvent),
		published:   make(map[string][]*entities.DomainEvent),
	}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.DomainEvent) error {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published[channel] = append(m.published[channel], event)
	for _, ch := range m.subscribers[channel] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.DomainEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *entities.DomainEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	return ch, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subscribers[channel] {
		close(ch)
	}
	delete(m.subscribers, channel)
	return nil
}

func (m *MockEventBus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for channel, channels := range m.subscribers {
		for _, ch := range channels {
			close(ch)
		}
		delete(m.subscribers, channel)
	}
	return nil
}

func (m *MockEventBus) Published(channel string) []*entities.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*entities.DomainEvent(nil), m.published[channel]...)
}

func (m *MockEventBus) SubscriberCount(channel string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers[channel])
}

func seedDepartments(t *testing.T, c providers.CacheProvider, ids ...entities.DepartmentID) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, c.Set(context.Background(), providers.DepartmentDoctorsKey(id), []byte("[]"), 300))
	}
}

func isCached(c providers.CacheProvider, id entities.DepartmentID) bool {
	ok, _ := c.Exists(context.Background(), providers.DepartmentDoctorsKey(id))
	return ok
}

func TestCacheInvalidationService_Start(t *testing.T) {
	eventBus := NewMockEventBus()
	service := services.NewCacheInvalidationService(cache.NewMemoryAdapter(), eventBus)

	require.NoError(t, service.Start())
	assert.Equal(t, 1, eventBus.SubscriberCount(providers.EventChannelRoster))

	service.Stop()
}

func TestCacheInvalidationService_HandleEvent(t *testing.T) {
	memory := cache.NewMemoryAdapter()
	eventBus := NewMockEventBus()
	service := services.NewCacheInvalidationService(memory, eventBus)
	require.NoError(t, service.Start())
	defer service.Stop()

	t.Run("roster change invalidates only its department", func(t *testing.T) {
		seedDepartments(t, memory, entities.DepartmentCardiology, entities.DepartmentNeurology)

		event := entities.NewRosterChangedEvent(entities.DepartmentCardiology, 12)
		require.NoError(t, eventBus.Publish(context.Background(), providers.EventChannelRoster, event))

		assert.Eventually(t, func() bool { return !isCached(memory, entities.DepartmentCardiology) }, time.Second, 10*time.Millisecond)
		assert.True(t, isCached(memory, entities.DepartmentNeurology))
	})

	t.Run("event without department invalidates all", func(t *testing.T) {
		seedDepartments(t, memory, entities.DepartmentCardiology, entities.DepartmentNeurology)

		event := entities.NewRosterChangedEvent(0, 0)
		require.NoError(t, eventBus.Publish(context.Background(), providers.EventChannelRoster, event))

		assert.Eventually(t, func() bool {
			return !isCached(memory, entities.DepartmentCardiology) && !isCached(memory, entities.DepartmentNeurology)
		}, time.Second, 10*time.Millisecond)
	})
}

func TestCacheInvalidationService_InvalidateDepartment(t *testing.T) {
	memory := cache.NewMemoryAdapter()
	service := services.NewCacheInvalidationService(memory, NewMockEventBus())
	seedDepartments(t, memory, entities.DepartmentUrology, entities.DepartmentDermatology)

	require.NoError(t, service.InvalidateDepartment(context.Background(), entities.DepartmentUrology))

	assert.False(t, isCached(memory, entities.DepartmentUrology))
	assert.True(t, isCached(memory, entities.DepartmentDermatology))
}

func TestCacheInvalidationService_InvalidateAllDepartments(t *testing.T) {
	memory := cache.NewMemoryAdapter()
	service := services.NewCacheInvalidationService(memory, NewMockEventBus())
	seedDepartments(t, memory, entities.DepartmentUrology, entities.DepartmentDermatology)
	require.NoError(t, memory.Set(context.Background(), "doctor:1", []byte("{}"), 300))

	require.NoError(t, service.InvalidateAllDepartments(context.Background()))

	assert.False(t, isCached(memory, entities.DepartmentUrology))
	assert.False(t, isCached(memory, entities.DepartmentDermatology))
	ok, _ := memory.Exists(context.Background(), "doctor:1")
	assert.True(t, ok)
}
