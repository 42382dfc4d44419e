package providers

import (
	"context"

	"github.com/hospitalcare/backend/internal/domain/entities"
)

// DoctorLookup returns the doctors currently available in a department.
//
// An empty slice with a nil error means the department has no available
// doctors. Connectivity problems, timeouts and malformed rows must be
// reported as an error, never as an empty slice.
type DoctorLookup interface {
	GetDoctorsByDepartment(ctx context.Context, departmentID entities.DepartmentID) ([]*entities.Doctor, error)
}
