package entities

// DepartmentID identifies a hospital department.
type DepartmentID int

// Department catalogue ids. They match the departments table seeded by scripts/seed.go.
const (
	DepartmentGeneralMedicine  DepartmentID = 1
	DepartmentCardiology       DepartmentID = 2
	DepartmentNeurology        DepartmentID = 3
	DepartmentGastroenterology DepartmentID = 4
	DepartmentPulmonology      DepartmentID = 5
	DepartmentOrthopedics      DepartmentID = 6
	DepartmentDermatology      DepartmentID = 7
	DepartmentOtolaryngology   DepartmentID = 8
	DepartmentOphthalmology    DepartmentID = 9
	DepartmentUrology          DepartmentID = 10
	DepartmentEmergency        DepartmentID = 11
)

// Department is an organizational unit of the hospital.
type Department struct {
	ID   DepartmentID `json:"id" db:"id"`
	Name string       `json:"name" db:"name"`
}

// DefaultDepartments returns the department catalogue in id order.
func DefaultDepartments() []Department {
	return []Department{
		{ID: DepartmentGeneralMedicine, Name: "General Medicine"},
		{ID: DepartmentCardiology, Name: "Cardiology"},
		{ID: DepartmentNeurology, Name: "Neurology"},
		{ID: DepartmentGastroenterology, Name: "Gastroenterology"},
		{ID: DepartmentPulmonology, Name: "Pulmonology"},
		{ID: DepartmentOrthopedics, Name: "Orthopedics"},
		{ID: DepartmentDermatology, Name: "Dermatology"},
		{ID: DepartmentOtolaryngology, Name: "Otolaryngology"},
		{ID: DepartmentOphthalmology, Name: "Ophthalmology"},
		{ID: DepartmentUrology, Name: "Urology"},
		{ID: DepartmentEmergency, Name: "Emergency Medicine"},
	}
}

// DepartmentName returns the catalogue name for id, or "" if unknown.
func DepartmentName(id DepartmentID) string {
	for _, d := range DefaultDepartments() {
		if d.ID == id {
			return d.Name
		}
	}
	return ""
}
