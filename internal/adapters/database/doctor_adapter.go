package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/hospitalcare/backend/internal/domain/entities"
	"github.com/hospitalcare/backend/internal/domain/repositories"
	"github.com/hospitalcare/backend/internal/infrastructure/clients/postgres"
	"github.com/hospitalcare/backend/internal/infrastructure/observability"
	apperrors "github.com/hospitalcare/backend/pkg/errors"
)

var doctorColumns = []interface{}{
	"id", "first_name", "last_name", "department_id", "specialty",
	"working_days", "shift_start", "shift_end", "is_active",
	"created_at", "updated_at",
}

// DoctorAdapter implements the DoctorRepository interface on PostgreSQL
type DoctorAdapter struct {
	client       *postgres.Client
	db           *goqu.Database
	appointments repositories.AppointmentRepository
	metrics      *observability.Metrics
}

var _ repositories.DoctorRepository = (*DoctorAdapter)(nil)

// NewDoctorAdapter creates a new doctor adapter. Workload counts come from
// appointments; metrics may be nil.
func NewDoctorAdapter(client *postgres.Client, appointments repositories.AppointmentRepository, metrics *observability.Metrics) *DoctorAdapter {
	return &DoctorAdapter{
		client:       client,
		db:           goqu.New("postgres", client.DB()),
		appointments: appointments,
		metrics:      metrics,
	}
}

// ListByDepartment retrieves the active doctors of one department
func (a *DoctorAdapter) ListByDepartment(ctx context.Context, departmentID entities.DepartmentID) ([]*entities.Doctor, error) {
	byDepartment, err := a.ListByDepartments(ctx, []entities.DepartmentID{departmentID})
	if err != nil {
		return nil, err
	}
	return byDepartment[departmentID], nil
}

// ListByDepartments retrieves active doctors for several departments, ordered by id
func (a *DoctorAdapter) ListByDepartments(ctx context.Context, departmentIDs []entities.DepartmentID) (map[entities.DepartmentID][]*entities.Doctor, error) {
	result := make(map[entities.DepartmentID][]*entities.Doctor, len(departmentIDs))
	if len(departmentIDs) == 0 {
		return result, nil
	}

	ids := make([]int, len(departmentIDs))
	for i, id := range departmentIDs {
		ids[i] = int(id)
		result[id] = []*entities.Doctor{}
	}

	query, args, err := a.db.Select(doctorColumns...).
		From("doctors").
		Where(goqu.Ex{
			"department_id": ids,
			"is_active":     true,
		}).
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	start := time.Now()
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list doctors", err)
	}
	defer rows.Close()

	var doctors []*entities.Doctor
	for rows.Next() {
		doctor, err := scanDoctor(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan doctor", err)
		}
		doctors = append(doctors, doctor)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read doctors", err)
	}
	observability.RecordDBMetric(ctx, a.metrics, "doctors.list_by_departments", time.Since(start))

	if len(doctors) == 0 {
		return result, nil
	}

	doctorIDs := make([]int64, len(doctors))
	for i, d := range doctors {
		doctorIDs[i] = d.ID
	}
	counts, err := a.appointments.CountUpcoming(ctx, doctorIDs)
	if err != nil {
		return nil, err
	}

	for _, d := range doctors {
		d.UpcomingAppointments = counts[d.ID]
		result[d.DepartmentID] = append(result[d.DepartmentID], d)
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDoctor(row rowScanner) (*entities.Doctor, error) {
	doctor := &entities.Doctor{}
	var specialty, workingDays, shiftStart, shiftEnd sql.NullString

	err := row.Scan(
		&doctor.ID,
		&doctor.FirstName,
		&doctor.LastName,
		&doctor.DepartmentID,
		&specialty,
		&workingDays,
		&shiftStart,
		&shiftEnd,
		&doctor.IsActive,
		&doctor.CreatedAt,
		&doctor.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doctor.Specialty = specialty.String
	doctor.WorkingDays = workingDays.String
	doctor.ShiftStart = shiftStart.String
	doctor.ShiftEnd = shiftEnd.String

	return doctor, nil
}
