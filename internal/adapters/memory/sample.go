package memory

import (
	"fmt"
	"time"

	"github.com/hospitalcare/backend/internal/domain/entities"
)

// SampleDoctors returns a small roster covering every department in the catalogue
func SampleDoctors(now time.Time) []*entities.Doctor {
	type seed struct {
		first, last string
		dept        entities.DepartmentID
		specialty   string
	}
	seeds := []seed{
		{"Amara", "Okafor", entities.DepartmentGeneralMedicine, "Family Medicine"},
		{"Lukas", "Brandt", entities.DepartmentGeneralMedicine, "Internal Medicine"},
		{"Priya", "Raman", entities.DepartmentCardiology, "Interventional Cardiology"},
		{"Tomas", "Varga", entities.DepartmentCardiology, "Electrophysiology"},
		{"Mei", "Tanaka", entities.DepartmentNeurology, "Stroke"},
		{"Jonas", "Eriksen", entities.DepartmentGastroenterology, "Hepatology"},
		{"Sofia", "Marquez", entities.DepartmentPulmonology, "Asthma and COPD"},
		{"Daniel", "Osei", entities.DepartmentOrthopedics, "Sports Medicine"},
		{"Hana", "Kim", entities.DepartmentDermatology, "General Dermatology"},
		{"Omar", "Haddad", entities.DepartmentOtolaryngology, "Rhinology"},
		{"Elena", "Petrova", entities.DepartmentOphthalmology, "Retina"},
		{"Kwame", "Mensah", entities.DepartmentUrology, "Endourology"},
		{"Ines", "Duarte", entities.DepartmentEmergency, "Emergency Medicine"},
		{"Rafael", "Costa", entities.DepartmentEmergency, "Trauma"},
	}

	doctors := make([]*entities.Doctor, len(seeds))
	for i, s := range seeds {
		doctors[i] = &entities.Doctor{
			ID:           int64(i + 1),
			FirstName:    s.first,
			LastName:     s.last,
			DepartmentID: s.dept,
			Specialty:    s.specialty,
			WorkingDays:  "Mon-Fri",
			ShiftStart:   "08:00",
			ShiftEnd:     "16:00",
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}
	return doctors
}

// SampleAppointments books a few upcoming appointments so workloads differ
func SampleAppointments(now time.Time) []*entities.Appointment {
	bookings := map[int64]int{1: 2, 2: 1, 3: 3, 4: 1, 5: 1, 13: 4, 14: 2}

	var appointments []*entities.Appointment
	for doctorID := int64(1); doctorID <= 14; doctorID++ {
		for n := 0; n < bookings[doctorID]; n++ {
			appointments = append(appointments, &entities.Appointment{
				ID:          fmt.Sprintf("sample-%d-%d", doctorID, n+1),
				DoctorID:    doctorID,
				PatientName: fmt.Sprintf("Patient %d-%d", doctorID, n+1),
				ScheduledAt: now.Add(time.Duration(n+1) * 24 * time.Hour),
				Status:      entities.AppointmentStatusConfirmed,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
	}
	return appointments
}

// NewSampleRoster builds a roster populated with the sample doctors and appointments
func NewSampleRoster(now time.Time) *Roster {
	r := NewRoster(SampleDoctors(now))
	r.now = func() time.Time { return now }
	for _, a := range SampleAppointments(now) {
		c := *a
		r.appointments = append(r.appointments, &c)
	}
	return r
}
