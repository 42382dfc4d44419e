package entities

// RecommendationOutcome says how a recommendation request ended.
type RecommendationOutcome string

const (
	RecommendationOutcomeRecommended        RecommendationOutcome = "recommended"
	RecommendationOutcomeNoDepartmentMatch  RecommendationOutcome = "no_department_match"
	RecommendationOutcomeNoDoctorsAvailable RecommendationOutcome = "no_doctors_available"
)

// Recommendation is the result of one recommendation request. Doctor is set
// only when Outcome is RecommendationOutcomeRecommended.
type Recommendation struct {
	Outcome    RecommendationOutcome `json:"outcome"`
	Selection  SymptomSelection      `json:"selection"`
	Department *Department           `json:"department,omitempty"`
	Doctor     *Doctor               `json:"doctor"`
}

// HasDoctor reports whether a doctor was recommended.
func (r *Recommendation) HasDoctor() bool {
	return r != nil && r.Doctor != nil
}
