package services

import "github.com/hospitalcare/backend/internal/domain/entities"

// SelectDoctor picks the doctor with the fewest upcoming appointments, breaking
// ties by lowest ID, so the choice does not depend on input order. It returns
// nil when there is no candidate.
func SelectDoctor(doctors []*entities.Doctor) *entities.Doctor {
	var best *entities.Doctor
	for _, d := range doctors {
		if d == nil {
			continue
		}
		if best == nil ||
			d.UpcomingAppointments < best.UpcomingAppointments ||
			(d.UpcomingAppointments == best.UpcomingAppointments && d.ID < best.ID) {
			best = d
		}
	}
	return best
}
