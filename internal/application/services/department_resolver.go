package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hospitalcare/backend/internal/domain/entities"
)

// DepartmentRule maps one symptom combination to a department.
// Empty Onsets matches any onset. A non-empty Refinement must equal the
// secondary or tertiary symptom.
type DepartmentRule struct {
	Onsets     []string              `yaml:"onsets,omitempty" json:"onsets,omitempty"`
	Area       string                `yaml:"area" json:"area"`
	Primary    string                `yaml:"primary" json:"primary"`
	Refinement string                `yaml:"refinement,omitempty" json:"refinement,omitempty"`
	Department entities.DepartmentID `yaml:"department" json:"department"`
}

func (r DepartmentRule) matches(sel entities.SymptomSelection) bool {
	if r.Area != sel.Area || r.Primary != sel.Primary {
		return false
	}
	if len(r.Onsets) > 0 && !contains(r.Onsets, sel.Onset) {
		return false
	}
	if r.Refinement != "" && r.Refinement != sel.Secondary && r.Refinement != sel.Tertiary {
		return false
	}
	return true
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// DepartmentResolver maps symptom selections to departments using an ordered rule table.
// It is immutable after construction and safe for concurrent use.
type DepartmentResolver struct {
	rules []DepartmentRule
}

// NewDepartmentResolver validates rules and builds a resolver over a private,
// whitespace-trimmed copy of them
func NewDepartmentResolver(rules []DepartmentRule) (*DepartmentResolver, error) {
	if err := validateRules(rules); err != nil {
		return nil, err
	}

	copied := make([]DepartmentRule, len(rules))
	for i, r := range rules {
		r.Area = strings.TrimSpace(r.Area)
		r.Primary = strings.TrimSpace(r.Primary)
		r.Refinement = strings.TrimSpace(r.Refinement)
		onsets := make([]string, 0, len(r.Onsets))
		for _, onset := range r.Onsets {
			onsets = append(onsets, strings.TrimSpace(onset))
		}
		r.Onsets = onsets
		copied[i] = r
	}
	return &DepartmentResolver{rules: copied}, nil
}

// Resolve returns the department of the first matching rule. It reports false
// when onset, area or primary is blank or when no rule matches.
func (r *DepartmentResolver) Resolve(sel entities.SymptomSelection) (entities.DepartmentID, bool) {
	if !sel.HasRequired() {
		return 0, false
	}
	sel = sel.Normalized()
	for _, rule := range r.rules {
		if rule.matches(sel) {
			return rule.Department, true
		}
	}
	return 0, false
}

// Departments returns every department the table can resolve to, in first-seen order
func (r *DepartmentResolver) Departments() []entities.DepartmentID {
	seen := make(map[entities.DepartmentID]bool)
	var ids []entities.DepartmentID
	for _, rule := range r.rules {
		if !seen[rule.Department] {
			seen[rule.Department] = true
			ids = append(ids, rule.Department)
		}
	}
	return ids
}

// Rules returns a copy of the rule table
func (r *DepartmentResolver) Rules() []DepartmentRule {
	out := make([]DepartmentRule, len(r.rules))
	copy(out, r.rules)
	return out
}

func validateRules(rules []DepartmentRule) error {
	if len(rules) == 0 {
		return fmt.Errorf("department rule table is empty")
	}
	for i, rule := range rules {
		if strings.TrimSpace(rule.Area) == "" || strings.TrimSpace(rule.Primary) == "" {
			return fmt.Errorf("rule %d: area and primary are required", i)
		}
		if entities.DepartmentName(rule.Department) == "" {
			return fmt.Errorf("rule %d: unknown department %d", i, rule.Department)
		}
	}
	return nil
}

type ruleFile struct {
	Rules []DepartmentRule `yaml:"rules"`
}

// LoadDepartmentRules reads a rule table from a YAML file
func LoadDepartmentRules(path string) ([]DepartmentRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read department rules: %w", err)
	}

	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse department rules %s: %w", path, err)
	}
	if err := validateRules(file.Rules); err != nil {
		return nil, fmt.Errorf("invalid department rules %s: %w", path, err)
	}
	return file.Rules, nil
}

// DefaultDepartmentRules is the built-in symptom table. Refined and
// onset-specific rules come before the general rule they narrow.
func DefaultDepartmentRules() []DepartmentRule {
	sudden := []string{"Suddenly"}
	return []DepartmentRule{
		// chest
		{Onsets: sudden, Area: "Chest", Primary: "Pain", Refinement: "Shortness of Breath", Department: entities.DepartmentEmergency},
		{Area: "Chest", Primary: "Pain", Refinement: "Cough", Department: entities.DepartmentPulmonology},
		{Area: "Chest", Primary: "Pain", Department: entities.DepartmentCardiology},
		{Area: "Chest", Primary: "Tightness", Department: entities.DepartmentCardiology},
		{Area: "Chest", Primary: "Palpitations", Department: entities.DepartmentCardiology},
		{Area: "Chest", Primary: "Cough", Department: entities.DepartmentPulmonology},
		{Area: "Chest", Primary: "Shortness of Breath", Department: entities.DepartmentPulmonology},

		// head
		{Onsets: sudden, Area: "Head", Primary: "Pain", Refinement: "Numbness", Department: entities.DepartmentEmergency},
		{Area: "Head", Primary: "Pain", Department: entities.DepartmentNeurology},
		{Area: "Head", Primary: "Dizziness", Department: entities.DepartmentNeurology},
		{Area: "Head", Primary: "Numbness", Department: entities.DepartmentNeurology},

		// abdomen
		{Area: "Lower Abdomen", Primary: "Pain", Refinement: "Burning Urination", Department: entities.DepartmentUrology},
		{Area: "Lower Abdomen", Primary: "Pain", Department: entities.DepartmentGastroenterology},
		{Area: "Abdomen", Primary: "Pain", Department: entities.DepartmentGastroenterology},
		{Area: "Abdomen", Primary: "Nausea", Department: entities.DepartmentGastroenterology},
		{Area: "Abdomen", Primary: "Bloating", Department: entities.DepartmentGastroenterology},

		// musculoskeletal
		{Onsets: sudden, Area: "Back", Primary: "Pain", Refinement: "Numbness", Department: entities.DepartmentEmergency},
		{Area: "Back", Primary: "Pain", Department: entities.DepartmentOrthopedics},
		{Area: "Joints", Primary: "Pain", Department: entities.DepartmentOrthopedics},
		{Area: "Joints", Primary: "Swelling", Department: entities.DepartmentOrthopedics},
		{Area: "Joints", Primary: "Inflammation", Department: entities.DepartmentOrthopedics},

		// skin
		{Area: "Skin", Primary: "Rash", Department: entities.DepartmentDermatology},
		{Area: "Skin", Primary: "Itching", Department: entities.DepartmentDermatology},
		{Area: "Skin", Primary: "Coloration", Department: entities.DepartmentDermatology},
		{Area: "Skin", Primary: "Inflammation", Department: entities.DepartmentDermatology},

		// ear, nose and throat
		{Area: "Throat", Primary: "Pain", Department: entities.DepartmentOtolaryngology},
		{Area: "Ear", Primary: "Pain", Department: entities.DepartmentOtolaryngology},
		{Area: "Ear", Primary: "Hearing Loss", Department: entities.DepartmentOtolaryngology},
		{Area: "Nose", Primary: "Bleeding", Department: entities.DepartmentOtolaryngology},

		// eyes
		{Onsets: sudden, Area: "Eye", Primary: "Blurred Vision", Department: entities.DepartmentEmergency},
		{Area: "Eye", Primary: "Blurred Vision", Department: entities.DepartmentOphthalmology},
		{Area: "Eye", Primary: "Pain", Department: entities.DepartmentOphthalmology},
		{Area: "Eye", Primary: "Inflammation", Department: entities.DepartmentOphthalmology},

		// general
		{Area: "Whole Body", Primary: "Fever", Department: entities.DepartmentGeneralMedicine},
		{Area: "Whole Body", Primary: "Fatigue", Department: entities.DepartmentGeneralMedicine},
		{Area: "Whole Body", Primary: "Weight Loss", Department: entities.DepartmentGeneralMedicine},
	}
}

// NewDepartmentResolverFromFile builds a resolver from the rule file at path,
// or from DefaultDepartmentRules when path is empty
func NewDepartmentResolverFromFile(path string) (*DepartmentResolver, error) {
	if path == "" {
		return NewDepartmentResolver(DefaultDepartmentRules())
	}
	rules, err := LoadDepartmentRules(path)
	if err != nil {
		return nil, err
	}
	return NewDepartmentResolver(rules)
}
