package repositories

import (
	"context"

	"github.com/hospitalcare/backend/internal/domain/entities"
)

// AppointmentRepository defines the appointment operations the recommender needs
type AppointmentRepository interface {
	// Create creates a new appointment
	Create(ctx context.Context, appointment *entities.Appointment) error

	// CountUpcoming returns the number of pending or confirmed future appointments per doctor.
	// Doctors without appointments are absent from the map.
	CountUpcoming(ctx context.Context, doctorIDs []int64) (map[int64]int, error)
}
