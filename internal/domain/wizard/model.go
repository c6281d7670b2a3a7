package wizard

import (
	"fmt"
	"strings"
)

// Step is an ordinal position in the fixed, linear registration sequence.
type Step int

// The registration steps, in order. Intro is informational and carries no
// validation of its own beyond event selection.
const (
	StepIntro Step = iota
	StepTeams
	StepContact
	StepAddons
	StepPractice
	StepSummary
)

// StepCount is the number of steps in the sequence.
const StepCount = 6

// stepNames are the stable identifiers used in storage keys and responses.
var stepNames = [StepCount]string{"intro", "teams", "contact", "addons", "practice", "summary"}

// Valid reports whether the step index is within the sequence.
func (s Step) Valid() bool {
	return s >= StepIntro && s < StepCount
}

// Name returns the step's stable identifier.
// PRE: s.Valid()
func (s Step) Name() string {
	if !s.Valid() {
		return fmt.Sprintf("step%d", int(s))
	}
	return stepNames[s]
}

// Clamp returns the step itself when in range, otherwise the intro step.
// Used for deep-link resume: out-of-range requests fall back to the start.
func Clamp(requested int) Step {
	s := Step(requested)
	if !s.Valid() {
		return StepIntro
	}
	return s
}

// Violation is one user-correctable validation failure, tied to the form
// field that caused it so the field can be flagged.
type Violation struct {
	Field   string
	Message string
}

// Result carries a step validator's outcome. Validators never return Go
// errors for user mistakes: they collect every violation and report them
// together.
type Result struct {
	Violations []Violation
}

// OK reports whether the validation passed.
func (r Result) OK() bool {
	return len(r.Violations) == 0
}

// Add records a violation.
func (r *Result) Add(field, message string) {
	r.Violations = append(r.Violations, Violation{Field: field, Message: message})
}

// Message aggregates all violations into a single human-readable message.
// POST: Returns "" when the result is OK
func (r Result) Message() string {
	if r.OK() {
		return ""
	}
	parts := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		parts = append(parts, v.Message)
	}
	return strings.Join(parts, "; ")
}

// FormData is the plain field map a step operates on. Handlers copy request
// values in and results out; validation and persistence never touch the
// transport layer.
type FormData map[string]string

// Get returns the trimmed value for a field.
func (f FormData) Get(field string) string {
	return strings.TrimSpace(f[field])
}
