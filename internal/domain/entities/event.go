package entities

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of a published domain event
type EventType string

const (
	// EventTypeRosterChanged is published when doctors join, leave or move departments.
	EventTypeRosterChanged EventType = "roster_changed"

	// EventTypeRecommendationMade is published once per recommendation request.
	EventTypeRecommendationMade EventType = "recommendation_made"
)

// DomainEvent is a message exchanged over the event bus
type DomainEvent struct {
	ID           string                 `json:"id"`
	EventType    EventType              `json:"event_type"`
	DepartmentID DepartmentID           `json:"department_id,omitempty"`
	DoctorID     int64                  `json:"doctor_id,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
	Data         map[string]interface{} `json:"data,omitempty"`
}

// NewRosterChangedEvent creates an event announcing a change to a department's roster
func NewRosterChangedEvent(departmentID DepartmentID, doctorID int64) *DomainEvent {
	return &DomainEvent{
		ID:           uuid.New().String(),
		EventType:    EventTypeRosterChanged,
		DepartmentID: departmentID,
		DoctorID:     doctorID,
		Timestamp:    time.Now(),
	}
}

// NewRecommendationEvent creates an event describing a finished recommendation
func NewRecommendationEvent(rec *Recommendation) *DomainEvent {
	event := &DomainEvent{
		ID:        uuid.New().String(),
		EventType: EventTypeRecommendationMade,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"outcome":  string(rec.Outcome),
			"symptoms": rec.Selection.Values(),
		},
	}
	if rec.Department != nil {
		event.DepartmentID = rec.Department.ID
	}
	if rec.Doctor != nil {
		event.DoctorID = rec.Doctor.ID
	}
	return event
}
