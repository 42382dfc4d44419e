// Package memory holds process-local repositories used by the CLI demo mode and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hospitalcare/backend/internal/domain/entities"
	"github.com/hospitalcare/backend/internal/domain/repositories"
	apperrors "github.com/hospitalcare/backend/pkg/errors"
)

// Roster keeps doctors and appointments in memory
type Roster struct {
	mu           sync.RWMutex
	doctors      map[int64]*entities.Doctor
	appointments []*entities.Appointment
	now          func() time.Time
}

var (
	_ repositories.DoctorRepository      = (*Roster)(nil)
	_ repositories.AppointmentRepository = (*Roster)(nil)
)

// NewRoster creates a roster holding copies of doctors
func NewRoster(doctors []*entities.Doctor) *Roster {
	r := &Roster{
		doctors: make(map[int64]*entities.Doctor, len(doctors)),
		now:     time.Now,
	}
	for _, d := range doctors {
		c := *d
		r.doctors[d.ID] = &c
	}
	return r
}

// SetClock overrides the time source used to decide which appointments are upcoming
func (r *Roster) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Create records an appointment for a known doctor
func (r *Roster) Create(ctx context.Context, appointment *entities.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[appointment.DoctorID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("doctor with id %d not found", appointment.DoctorID))
	}
	c := *appointment
	r.appointments = append(r.appointments, &c)
	return nil
}

// CountUpcoming counts appointments that still occupy each doctor
func (r *Roster) CountUpcoming(ctx context.Context, doctorIDs []int64) (map[int64]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.countUpcoming(doctorIDs), nil
}

func (r *Roster) countUpcoming(doctorIDs []int64) map[int64]int {
	wanted := make(map[int64]bool, len(doctorIDs))
	for _, id := range doctorIDs {
		wanted[id] = true
	}

	now := r.now()
	counts := make(map[int64]int)
	for _, a := range r.appointments {
		if wanted[a.DoctorID] && a.CountsTowardWorkload(now) {
			counts[a.DoctorID]++
		}
	}
	return counts
}

// ListByDepartment retrieves the active doctors of a department ordered by id
func (r *Roster) ListByDepartment(ctx context.Context, departmentID entities.DepartmentID) ([]*entities.Doctor, error) {
	byDepartment, err := r.ListByDepartments(ctx, []entities.DepartmentID{departmentID})
	if err != nil {
		return nil, err
	}
	return byDepartment[departmentID], nil
}

// ListByDepartments retrieves the active doctors of several departments
func (r *Roster) ListByDepartments(ctx context.Context, departmentIDs []entities.DepartmentID) (map[entities.DepartmentID][]*entities.Doctor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[entities.DepartmentID][]*entities.Doctor, len(departmentIDs))
	for _, id := range departmentIDs {
		result[id] = []*entities.Doctor{}
	}

	var ids []int64
	for _, d := range r.doctors {
		if _, ok := result[d.DepartmentID]; ok && d.IsActive {
			ids = append(ids, d.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	counts := r.countUpcoming(ids)
	for _, id := range ids {
		c := *r.doctors[id]
		c.UpcomingAppointments = counts[id]
		result[c.DepartmentID] = append(result[c.DepartmentID], &c)
	}
	return result, nil
}
