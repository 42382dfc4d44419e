package entities

import (
	"time"
)

// Doctor represents a doctor as returned by the roster lookup
type Doctor struct {
	ID           int64        `json:"id" db:"id"`
	FirstName    string       `json:"first_name" db:"first_name"`
	LastName     string       `json:"last_name" db:"last_name"`
	DepartmentID DepartmentID `json:"department_id" db:"department_id"`
	Specialty    string       `json:"specialty" db:"specialty"`
	WorkingDays  string       `json:"working_days" db:"working_days"` // e.g. "Mon-Fri"
	ShiftStart   string       `json:"shift_start" db:"shift_start"`   // HH:MM
	ShiftEnd     string       `json:"shift_end" db:"shift_end"`       // HH:MM
	IsActive     bool         `json:"is_active" db:"is_active"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`

	// UpcomingAppointments is computed at lookup time, not stored.
	UpcomingAppointments int `json:"upcoming_appointments" db:"upcoming_appointments"`
}

// FullName returns "First Last".
func (d *Doctor) FullName() string {
	if d.LastName == "" {
		return d.FirstName
	}
	return d.FirstName + " " + d.LastName
}
