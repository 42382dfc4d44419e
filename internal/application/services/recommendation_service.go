package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hospitalcare/backend/internal/domain/entities"
	"github.com/hospitalcare/backend/internal/domain/providers"
	"github.com/hospitalcare/backend/internal/infrastructure/observability"
	apperrors "github.com/hospitalcare/backend/pkg/errors"
)

const (
	outcomeInvalidSelection = "invalid_selection"
	outcomeLookupFailed     = "lookup_failed"

	publishTimeout = 2 * time.Second
)

// RecommendationService turns a symptom selection into a doctor recommendation
type RecommendationService struct {
	resolver *DepartmentResolver
	lookup   providers.DoctorLookup
	eventBus providers.EventBus
	metrics  *observability.Metrics
}

// NewRecommendationService creates a new recommendation service. eventBus and metrics may be nil.
func NewRecommendationService(
	resolver *DepartmentResolver,
	lookup providers.DoctorLookup,
	eventBus providers.EventBus,
	metrics *observability.Metrics,
) *RecommendationService {
	return &RecommendationService{
		resolver: resolver,
		lookup:   lookup,
		eventBus: eventBus,
		metrics:  metrics,
	}
}

// RecommendDoctor returns the recommended doctor, or nil when no department
// matches or the department has no doctors.
func (s *RecommendationService) RecommendDoctor(ctx context.Context, sel entities.SymptomSelection) (*entities.Doctor, error) {
	rec, err := s.Recommend(ctx, sel)
	if err != nil {
		return nil, err
	}
	return rec.Doctor, nil
}

// Recommend validates sel, resolves its department, looks up the department's
// doctors once and selects one. Duplicate symptoms fail with a VALIDATION error
// before any lookup; a failed lookup is an EXTERNAL error.
func (s *RecommendationService) Recommend(ctx context.Context, sel entities.SymptomSelection) (*entities.Recommendation, error) {
	ctx, span := observability.StartSpan(ctx, "RecommendationService.Recommend")
	defer span.End()
	logger := observability.LoggerFromContext(ctx)

	if err := sel.Validate(); err != nil {
		observability.RecordError(span, err)
		observability.RecordRecommendation(ctx, s.metrics, outcomeInvalidSelection)
		logger.Info().Err(err).Msg("Rejected symptom selection")
		return nil, err
	}

	rec := &entities.Recommendation{Selection: sel.Normalized()}

	departmentID, ok := s.resolver.Resolve(sel)
	if !ok {
		rec.Outcome = entities.RecommendationOutcomeNoDepartmentMatch
		s.finish(ctx, rec)
		return rec, nil
	}
	rec.Department = &entities.Department{ID: departmentID, Name: entities.DepartmentName(departmentID)}
	observability.SetSpanAttributes(span, attribute.Int("department.id", int(departmentID)))

	doctors, err := s.lookup.GetDoctorsByDepartment(ctx, departmentID)
	if err != nil {
		observability.RecordError(span, err)
		span.SetStatus(codes.Error, "doctor lookup failed")
		observability.RecordRecommendation(ctx, s.metrics, outcomeLookupFailed)
		logger.Error().Err(err).Int("department_id", int(departmentID)).Msg("Doctor lookup failed")
		return nil, apperrors.NewExternalError(fmt.Sprintf("doctor lookup for department %d failed", departmentID), err)
	}

	rec.Doctor = SelectDoctor(doctors)
	if rec.Doctor == nil {
		rec.Outcome = entities.RecommendationOutcomeNoDoctorsAvailable
	} else {
		rec.Outcome = entities.RecommendationOutcomeRecommended
		observability.SetSpanAttributes(span, attribute.Int64("doctor.id", rec.Doctor.ID))
	}

	s.finish(ctx, rec)
	return rec, nil
}

// finish logs, counts and publishes a completed recommendation
func (s *RecommendationService) finish(ctx context.Context, rec *entities.Recommendation) {
	observability.RecordRecommendation(ctx, s.metrics, string(rec.Outcome))

	event := observability.LoggerFromContext(ctx).Info().
		Str("outcome", string(rec.Outcome)).
		Strs("symptoms", rec.Selection.Values())
	if rec.Department != nil {
		event = event.Int("department_id", int(rec.Department.ID))
	}
	if rec.Doctor != nil {
		event = event.Int64("doctor_id", rec.Doctor.ID).Int("upcoming_appointments", rec.Doctor.UpcomingAppointments)
	}
	event.Msg("Recommendation completed")

	if s.eventBus == nil {
		return
	}
	s.publishAsync(ctx, entities.NewRecommendationEvent(rec))
}

// publishAsync publishes off the request path; the event outlives the request context
func (s *RecommendationService) publishAsync(ctx context.Context, event *entities.DomainEvent) {
	logger := observability.LoggerFromContext(ctx)
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	go func() {
		defer cancel()
		if err := s.eventBus.Publish(publishCtx, providers.EventChannelRecommendations, event); err != nil {
			logger.Warn().Err(err).Str("event_id", event.ID).Msg("Failed to publish recommendation event")
		}
	}()
}
