package repositories

import (
	"context"

	"github.com/hospitalcare/backend/internal/domain/entities"
)

// DoctorRepository defines read access to the doctor roster
type DoctorRepository interface {
	// ListByDepartment retrieves the active doctors of a department with their upcoming appointment counts
	ListByDepartment(ctx context.Context, departmentID entities.DepartmentID) ([]*entities.Doctor, error)

	// ListByDepartments retrieves active doctors for several departments in one round trip.
	// Every requested department is present in the result, possibly with an empty slice.
	ListByDepartments(ctx context.Context, departmentIDs []entities.DepartmentID) (map[entities.DepartmentID][]*entities.Doctor, error)
}
