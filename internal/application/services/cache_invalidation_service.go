package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hospitalcare/backend/internal/domain/entities"
	"github.com/hospitalcare/backend/internal/domain/providers"
)

// CacheInvalidationService drops cached doctor lists when the roster changes
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins listening for roster events
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelRoster)
	if err != nil {
		return fmt.Errorf("failed to subscribe to roster updates: %w", err)
	}

	go s.processEvents(eventChan)
	log.Info().Str("channel", providers.EventChannelRoster).Msg("Cache invalidation service started")
	return nil
}

// Stop stops the service and waits for the event loop to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	<-s.done
	log.Info().Msg("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.DomainEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil || event.EventType != entities.EventTypeRosterChanged {
				continue
			}
			s.handleEvent(event)
		}
	}
}

// handleEvent invalidates the department named by the event, or every
// department when the event does not name one
func (s *CacheInvalidationService) handleEvent(event *entities.DomainEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if event.DepartmentID == 0 {
		if err := s.InvalidateAllDepartments(ctx); err != nil {
			log.Warn().Err(err).Str("event_id", event.ID).Msg("Failed to invalidate doctor caches")
		}
		return
	}

	if err := s.InvalidateDepartment(ctx, event.DepartmentID); err != nil {
		log.Warn().Err(err).
			Str("event_id", event.ID).
			Int("department_id", int(event.DepartmentID)).
			Msg("Failed to invalidate department cache")
	}
}

// InvalidateDepartment invalidates the cached doctor list of one department
func (s *CacheInvalidationService) InvalidateDepartment(ctx context.Context, departmentID entities.DepartmentID) error {
	if err := s.cache.Delete(ctx, providers.DepartmentDoctorsKey(departmentID)); err != nil {
		return fmt.Errorf("failed to invalidate department %d: %w", departmentID, err)
	}
	log.Debug().Int("department_id", int(departmentID)).Msg("Invalidated department doctor cache")
	return nil
}

// InvalidateAllDepartments invalidates every cached department doctor list
func (s *CacheInvalidationService) InvalidateAllDepartments(ctx context.Context) error {
	if err := s.cache.DeletePattern(ctx, providers.DepartmentDoctorsKeyPattern); err != nil {
		return fmt.Errorf("failed to invalidate pattern %s: %w", providers.DepartmentDoctorsKeyPattern, err)
	}
	log.Info().Msg("Invalidated all department doctor caches")
	return nil
}
