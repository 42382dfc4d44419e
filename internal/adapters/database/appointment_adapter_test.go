package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hospitalcare/backend/internal/adapters/database"
	"github.com/hospitalcare/backend/internal/domain/entities"
	apperrors "github.com/hospitalcare/backend/pkg/errors"
)

func TestAppointmentAdapter_Create(t *testing.T) {
	client, mock := newMockClient(t)
	adapter := database.NewAppointmentAdapter(client)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO "appointments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Create(context.Background(), &entities.Appointment{
		ID:          "a-1",
		DoctorID:    10,
		PatientName: "Jo Park",
		ScheduledAt: now.Add(24 * time.Hour),
		Status:      entities.AppointmentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentAdapter_CountUpcoming(t *testing.T) {
	ctx := context.Background()

	t.Run("counts only open appointments per doctor", func(t *testing.T) {
		client, mock := newMockClient(t)
		adapter := database.NewAppointmentAdapter(client)

		mock.ExpectQuery(`SELECT "doctor_id", COUNT\(\*\) AS "upcoming" FROM "appointments" WHERE .*"status" IN \('pending', 'confirmed'\).*GROUP BY "doctor_id"`).
			WillReturnRows(sqlmock.NewRows([]string{"doctor_id", "upcoming"}).
				AddRow(int64(1), 3).
				AddRow(int64(2), 0))

		counts, err := adapter.CountUpcoming(ctx, []int64{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, 3, counts[1])
		assert.Equal(t, 0, counts[2])
		_, ok := counts[3]
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty input skips the query", func(t *testing.T) {
		client, mock := newMockClient(t)
		adapter := database.NewAppointmentAdapter(client)

		counts, err := adapter.CountUpcoming(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, counts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure is an internal error", func(t *testing.T) {
		client, mock := newMockClient(t)
		adapter := database.NewAppointmentAdapter(client)

		mock.ExpectQuery(`FROM "appointments"`).WillReturnError(errors.New("timeout"))

		counts, err := adapter.CountUpcoming(ctx, []int64{1})
		require.Error(t, err)
		assert.Nil(t, counts)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	})
}
