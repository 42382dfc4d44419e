package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/hospitalcare/backend/internal/domain/entities"
	"github.com/hospitalcare/backend/internal/domain/repositories"
	"github.com/hospitalcare/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/hospitalcare/backend/pkg/errors"
)

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	now    func() time.Time
}

var _ repositories.AppointmentRepository = (*AppointmentAdapter)(nil)

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) *AppointmentAdapter {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		now:    time.Now,
	}
}

// Create creates a new appointment
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	record := goqu.Record{
		"id":           appointment.ID,
		"doctor_id":    appointment.DoctorID,
		"patient_name": appointment.PatientName,
		"scheduled_at": appointment.ScheduledAt,
		"status":       appointment.Status,
		"created_at":   appointment.CreatedAt,
		"updated_at":   appointment.UpdatedAt,
	}

	query, args, err := a.db.Insert("appointments").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create appointment", err)
	}

	return nil
}

// CountUpcoming counts pending and confirmed appointments scheduled from now on, per doctor
func (a *AppointmentAdapter) CountUpcoming(ctx context.Context, doctorIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(doctorIDs))
	if len(doctorIDs) == 0 {
		return counts, nil
	}

	query, args, err := a.db.From("appointments").
		Select(goqu.C("doctor_id"), goqu.COUNT("*").As("upcoming")).
		Where(
			goqu.Ex{
				"doctor_id": doctorIDs,
				"status": []string{
					string(entities.AppointmentStatusPending),
					string(entities.AppointmentStatusConfirmed),
				},
			},
			goqu.C("scheduled_at").Gte(a.now()),
		).
		GroupBy(goqu.C("doctor_id")).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build appointment count query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to count appointments", err)
	}
	defer rows.Close()

	for rows.Next() {
		var doctorID int64
		var upcoming int
		if err := rows.Scan(&doctorID, &upcoming); err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment count", err)
		}
		counts[doctorID] = upcoming
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to read appointment counts", err)
	}

	return counts, nil
}
