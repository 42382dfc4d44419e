package entities

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// Appointment is a booked consultation with a doctor. The recommender only
// reads appointments to measure doctor workload.
type Appointment struct {
	ID          string            `json:"id" db:"id"`
	DoctorID    int64             `json:"doctor_id" db:"doctor_id"`
	PatientName string            `json:"patient_name" db:"patient_name"`
	ScheduledAt time.Time         `json:"scheduled_at" db:"scheduled_at"`
	Status      AppointmentStatus `json:"status" db:"status"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// CountsTowardWorkload reports whether the appointment still occupies the doctor.
func (a *Appointment) CountsTowardWorkload(now time.Time) bool {
	if a.Status != AppointmentStatusPending && a.Status != AppointmentStatusConfirmed {
		return false
	}
	return !a.ScheduledAt.Before(now)
}
