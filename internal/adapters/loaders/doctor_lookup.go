package loaders

import (
	"context"
	"fmt"
	"time"

	"github.com/hospitalcare/backend/internal/domain/entities"
	"github.com/hospitalcare/backend/internal/domain/providers"
	"github.com/hospitalcare/backend/internal/domain/repositories"
	"github.com/hospitalcare/backend/internal/infrastructure/observability"
)

// DoctorLookup answers department lookups straight from the doctor repository
type DoctorLookup struct {
	repo    repositories.DoctorRepository
	timeout time.Duration
	metrics *observability.Metrics
}

var _ providers.DoctorLookup = (*DoctorLookup)(nil)

// NewDoctorLookup creates a lookup bounded by timeout per call. Zero disables the bound.
func NewDoctorLookup(repo repositories.DoctorRepository, timeout time.Duration, metrics *observability.Metrics) *DoctorLookup {
	return &DoctorLookup{repo: repo, timeout: timeout, metrics: metrics}
}

// GetDoctorsByDepartment returns the department's doctors. A context error is a failure, not an empty result.
func (l *DoctorLookup) GetDoctorsByDepartment(ctx context.Context, departmentID entities.DepartmentID) ([]*entities.Doctor, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	doctors, err := l.repo.ListByDepartment(ctx, departmentID)
	if err == nil {
		err = ctx.Err()
	}
	observability.RecordLookup(ctx, l.metrics, time.Since(start), err != nil)

	if err != nil {
		return nil, fmt.Errorf("doctors for department %d: %w", departmentID, err)
	}
	if doctors == nil {
		doctors = []*entities.Doctor{}
	}
	return doctors, nil
}
