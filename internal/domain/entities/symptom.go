package entities

import (
	"fmt"
	"strings"

	apperrors "github.com/hospitalcare/backend/pkg/errors"
)

// SymptomSelection is the five-slot description of a patient's symptoms used
// to pick a department. Onset, Area and Primary are needed for a department
// match; Secondary and Tertiary only refine it.
type SymptomSelection struct {
	Onset     string `json:"onset"`
	Area      string `json:"area"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
	Tertiary  string `json:"tertiary,omitempty"`
}

// slots returns the raw slot values in declaration order.
func (s SymptomSelection) slots() [5]string {
	return [5]string{s.Onset, s.Area, s.Primary, s.Secondary, s.Tertiary}
}

// Values returns the trimmed non-blank slots in slot order.
func (s SymptomSelection) Values() []string {
	values := make([]string, 0, 5)
	for _, v := range s.slots() {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// HasRequired reports whether onset, area and primary are all filled in.
func (s SymptomSelection) HasRequired() bool {
	return !isBlank(s.Onset) && !isBlank(s.Area) && !isBlank(s.Primary)
}

// Normalized returns a copy with every slot trimmed.
func (s SymptomSelection) Normalized() SymptomSelection {
	return SymptomSelection{
		Onset:     strings.TrimSpace(s.Onset),
		Area:      strings.TrimSpace(s.Area),
		Primary:   strings.TrimSpace(s.Primary),
		Secondary: strings.TrimSpace(s.Secondary),
		Tertiary:  strings.TrimSpace(s.Tertiary),
	}
}

// Validate returns a VALIDATION error naming the first value chosen twice.
// Blank slots are "not yet chosen" and never count as duplicates.
func (s SymptomSelection) Validate() error {
	if dup, ok := s.firstDuplicate(); ok {
		return apperrors.NewValidationError(fmt.Sprintf("symptom %q was selected more than once", dup))
	}
	return nil
}

func (s SymptomSelection) firstDuplicate() (string, bool) {
	seen := make(map[string]struct{}, 5)
	for _, v := range s.Values() {
		if _, ok := seen[v]; ok {
			return v, true
		}
		seen[v] = struct{}{}
	}
	return "", false
}

// ValidateSymptomSelection reports whether the non-blank slots of sel are
// pairwise distinct. Comparison is case-sensitive after trimming.
func ValidateSymptomSelection(sel SymptomSelection) bool {
	_, dup := sel.firstDuplicate()
	return !dup
}

func isBlank(v string) bool {
	return strings.TrimSpace(v) == ""
}
