package wizard_test

import (
	"testing"

	"regatta/internal/domain/wizard"
)

// TestStep_Valid tests the step range check.
func TestStep_Valid(t *testing.T) {
	for s := wizard.StepIntro; s <= wizard.StepSummary; s++ {
		if !s.Valid() {
			t.Errorf("step %d should be valid", s)
		}
	}
	if wizard.Step(-1).Valid() {
		t.Error("step -1 should be invalid")
	}
	if wizard.Step(wizard.StepCount).Valid() {
		t.Error("step past the end should be invalid")
	}
}

// TestStep_Name tests the stable step identifiers.
func TestStep_Name(t *testing.T) {
	tests := []struct {
		step wizard.Step
		want string
	}{
		{wizard.StepIntro, "intro"},
		{wizard.StepTeams, "teams"},
		{wizard.StepContact, "contact"},
		{wizard.StepAddons, "addons"},
		{wizard.StepPractice, "practice"},
		{wizard.StepSummary, "summary"},
		{wizard.Step(9), "step9"},
	}
	for _, tt := range tests {
		if got := tt.step.Name(); got != tt.want {
			t.Errorf("Name(%d) = %q, want %q", tt.step, got, tt.want)
		}
	}
}

// TestClamp tests deep-link resume clamping.
func TestClamp(t *testing.T) {
	if got := wizard.Clamp(3); got != wizard.StepAddons {
		t.Errorf("Clamp(3) = %v, want StepAddons", got)
	}
	if got := wizard.Clamp(-2); got != wizard.StepIntro {
		t.Errorf("Clamp(-2) = %v, want StepIntro", got)
	}
	if got := wizard.Clamp(42); got != wizard.StepIntro {
		t.Errorf("Clamp(42) = %v, want StepIntro", got)
	}
}

// TestResult tests violation collection and aggregation.
func TestResult(t *testing.T) {
	var r wizard.Result
	if !r.OK() {
		t.Error("empty result should be OK")
	}
	if r.Message() != "" {
		t.Errorf("Message() = %q, want empty", r.Message())
	}

	r.Add("manager_name", "Manager name is required.")
	r.Add("manager_email", "A valid email address is required.")
	if r.OK() {
		t.Error("result with violations should not be OK")
	}
	want := "Manager name is required.; A valid email address is required."
	if r.Message() != want {
		t.Errorf("Message() = %q, want %q", r.Message(), want)
	}
	if r.Violations[0].Field != "manager_name" {
		t.Errorf("first violation field = %q", r.Violations[0].Field)
	}
}

// TestFormData_Get tests field trimming.
func TestFormData_Get(t *testing.T) {
	form := wizard.FormData{"club": "  Harbour City Paddlers  "}
	if got := form.Get("club"); got != "Harbour City Paddlers" {
		t.Errorf("Get(club) = %q", got)
	}
	if got := form.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}
}
