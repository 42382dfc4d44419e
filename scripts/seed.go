package main

import (
	"context"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/rs/zerolog/log"

	"github.com/hospitalcare/backend/internal/adapters/database"
	"github.com/hospitalcare/backend/internal/adapters/events"
	"github.com/hospitalcare/backend/internal/adapters/memory"
	"github.com/hospitalcare/backend/internal/domain/entities"
	"github.com/hospitalcare/backend/internal/domain/providers"
	"github.com/hospitalcare/backend/internal/infrastructure/clients/postgres"
	"github.com/hospitalcare/backend/internal/infrastructure/clients/redis"
	"github.com/hospitalcare/backend/internal/infrastructure/observability"
	"github.com/hospitalcare/backend/pkg/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS departments (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS doctors (
	id            BIGINT PRIMARY KEY,
	first_name    TEXT NOT NULL,
	last_name     TEXT NOT NULL DEFAULT '',
	department_id INTEGER NOT NULL REFERENCES departments(id),
	specialty     TEXT NOT NULL DEFAULT '',
	working_days  TEXT NOT NULL DEFAULT '',
	shift_start   TEXT NOT NULL DEFAULT '',
	shift_end     TEXT NOT NULL DEFAULT '',
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_doctors_department ON doctors(department_id) WHERE is_active;

CREATE TABLE IF NOT EXISTS appointments (
	id           TEXT PRIMARY KEY,
	doctor_id    BIGINT NOT NULL REFERENCES doctors(id),
	patient_name TEXT NOT NULL DEFAULT '',
	scheduled_at TIMESTAMPTZ NOT NULL,
	status       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_appointments_doctor_upcoming ON appointments(doctor_id, scheduled_at);
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("seed", cfg.Log.Env, cfg.Log.Level)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := context.Background()

	if _, err := pgClient.DB().ExecContext(ctx, schema); err != nil {
		log.Fatal().Err(err).Msg("Failed to create schema")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE appointments, doctors, departments CASCADE`)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to reset tables")
		}
	}

	db := goqu.New("postgres", pgClient.DB())

	// 1. Departments
	departmentRows := make([]interface{}, 0)
	for _, d := range entities.DefaultDepartments() {
		departmentRows = append(departmentRows, goqu.Record{"id": d.ID, "name": d.Name})
	}
	if _, err := db.Insert("departments").Rows(departmentRows...).OnConflict(goqu.DoNothing()).Executor().ExecContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed departments")
	}

	// 2. Doctors
	now := time.Now()
	doctors := memory.SampleDoctors(now)
	doctorRows := make([]interface{}, 0, len(doctors))
	for _, d := range doctors {
		doctorRows = append(doctorRows, goqu.Record{
			"id":            d.ID,
			"first_name":    d.FirstName,
			"last_name":     d.LastName,
			"department_id": d.DepartmentID,
			"specialty":     d.Specialty,
			"working_days":  d.WorkingDays,
			"shift_start":   d.ShiftStart,
			"shift_end":     d.ShiftEnd,
			"is_active":     d.IsActive,
			"created_at":    d.CreatedAt,
			"updated_at":    d.UpdatedAt,
		})
	}
	if _, err := db.Insert("doctors").Rows(doctorRows...).OnConflict(goqu.DoNothing()).Executor().ExecContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed doctors")
	}

	// 3. Appointments
	appointmentRepo := database.NewAppointmentAdapter(pgClient)
	created := 0
	for _, a := range memory.SampleAppointments(now) {
		if err := appointmentRepo.Create(ctx, a); err != nil {
			log.Warn().Err(err).Int64("doctor_id", a.DoctorID).Msg("Failed to create appointment")
			continue
		}
		created++
	}

	log.Info().
		Int("departments", len(departmentRows)).
		Int("doctors", len(doctorRows)).
		Int("appointments", created).
		Msg("Seeding completed")

	// Running recommenders drop their cached rosters when Redis is available
	if !cfg.Redis.Enabled {
		return
	}
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, skipping roster events")
		return
	}
	defer redisClient.Close()

	bus := events.NewRedisEventBus(redisClient)
	defer bus.Close()

	published := 0
	for _, d := range entities.DefaultDepartments() {
		if err := bus.Publish(ctx, providers.EventChannelRoster, entities.NewRosterChangedEvent(d.ID, 0)); err != nil {
			log.Warn().Err(err).Int("department_id", int(d.ID)).Msg("Failed to publish roster event")
			continue
		}
		published++
	}
	log.Info().Int("events", published).Msg("Published roster_changed events")
}
