package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"regatta/internal/domain/practice"
	"regatta/internal/domain/team"
	wiz "regatta/internal/domain/wizard"
)

// Form field names, shared with the HTTP adapter.
const (
	FieldEventID      = "event_id"
	FieldTeamCount    = "team_count"
	FieldManagerName  = "manager_name"
	FieldManagerEmail = "manager_email"
	FieldManagerPhone = "manager_phone"
	FieldClub         = "club"
	FieldAddress      = "address"
	FieldTents        = "tents"
	FieldBarbecues    = "barbecues"
	FieldShirts       = "shirts"
	FieldShirtSize    = "shirt_size"
	FieldConsent      = "consent"
)

// ValidShirtSizes for the add-on order.
var ValidShirtSizes = []string{"S", "M", "L", "XL", "XXL"}

// teamField builds the form field name for one team attribute.
func teamField(ordinal int, attr string) string {
	return fmt.Sprintf("team_%d_%s", ordinal, attr)
}

// validateStep dispatches to the step's validator. Every validator collects
// all violations rather than failing on the first, and never returns a Go
// error for user input.
func (e *Engine) validateStep(ctx context.Context, sessionID string, step wiz.Step, form wiz.FormData) wiz.Result {
	switch step {
	case wiz.StepIntro:
		return e.validateIntro(ctx, form)
	case wiz.StepTeams:
		return validateTeams(form)
	case wiz.StepContact:
		return validateContact(form)
	case wiz.StepAddons:
		return validateAddons(form)
	case wiz.StepPractice:
		return e.validatePractice(ctx, sessionID)
	case wiz.StepSummary:
		return validateSummary(form)
	}
	return wiz.Result{}
}

func (e *Engine) validateIntro(ctx context.Context, form wiz.FormData) wiz.Result {
	var res wiz.Result
	id := form.Get(FieldEventID)
	if id == "" {
		res.Add(FieldEventID, "Please choose an event.")
		return res
	}
	ev, err := e.deps.Events.GetByID(ctx, id)
	if err != nil {
		res.Add(FieldEventID, "The chosen event could not be found.")
		return res
	}
	if !ev.RegistrationOpen {
		res.Add(FieldEventID, "Registration for this event is closed.")
	}
	return res
}

func validateTeams(form wiz.FormData) wiz.Result {
	var res wiz.Result
	count, err := strconv.Atoi(form.Get(FieldTeamCount))
	if err != nil || count < 1 || count > team.MaxTeamsPerRegistration {
		res.Add(FieldTeamCount, fmt.Sprintf("Team count must be between 1 and %d.", team.MaxTeamsPerRegistration))
		return res
	}
	for i := 1; i <= count; i++ {
		t := team.Team{
			Ordinal:  i,
			Name:     form.Get(teamField(i, "name")),
			Division: form.Get(teamField(i, "division")),
			Package:  form.Get(teamField(i, "package")),
		}
		if err := t.Validate(); err != nil {
			field := teamField(i, "name")
			switch err {
			case team.ErrInvalidDivision:
				field = teamField(i, "division")
			case team.ErrInvalidPackage:
				field = teamField(i, "package")
			}
			res.Add(field, fmt.Sprintf("Team %d: %s.", i, err.Error()))
		}
	}
	return res
}

func validateContact(form wiz.FormData) wiz.Result {
	var res wiz.Result
	if form.Get(FieldManagerName) == "" {
		res.Add(FieldManagerName, "Manager name is required.")
	}
	email := form.Get(FieldManagerEmail)
	if email == "" {
		res.Add(FieldManagerEmail, "Manager email is required.")
	} else if !strings.Contains(email, "@") {
		res.Add(FieldManagerEmail, "Manager email must be a valid address.")
	}
	if form.Get(FieldManagerPhone) == "" {
		res.Add(FieldManagerPhone, "Manager phone is required.")
	}
	if form.Get(FieldClub) == "" {
		res.Add(FieldClub, "Club or organisation is required.")
	}
	return res
}

func validateAddons(form wiz.FormData) wiz.Result {
	var res wiz.Result
	for _, field := range []string{FieldTents, FieldBarbecues, FieldShirts} {
		raw := form.Get(field)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			res.Add(field, fmt.Sprintf("Quantity for %s must be a non-negative number.", field))
		}
	}
	if shirts, _ := strconv.Atoi(form.Get(FieldShirts)); shirts > 0 {
		size := form.Get(FieldShirtSize)
		if !containsString(ValidShirtSizes, size) {
			res.Add(FieldShirtSize, "Please choose a shirt size.")
		}
	}
	return res
}

// validatePractice reads aggregates from the practice store; the form plays
// no part, since calendar and rank edits are persisted as they happen.
func (e *Engine) validatePractice(ctx context.Context, sessionID string) wiz.Result {
	var res wiz.Result
	teams, err := e.Teams(ctx, sessionID)
	if err != nil || len(teams) == 0 {
		res.Add(FieldTeamCount, "Team setup is missing; please revisit the teams step.")
		return res
	}
	store := e.deps.Practice(sessionID)
	for _, t := range teams {
		rows, err := store.ReadRows(ctx, t.Key())
		if err != nil {
			res.Add("practice", fmt.Sprintf("Practice dates for %s could not be read.", t.Name))
			continue
		}
		if len(rows) == 0 {
			res.Add("practice", fmt.Sprintf("Team %q has no practice dates selected.", t.Name))
			continue
		}
		if hours := practice.TotalHours(rows); hours < e.deps.MinPracticeHours {
			res.Add("practice", fmt.Sprintf("Team %q has %d practice hours; at least %d are required.", t.Name, hours, e.deps.MinPracticeHours))
		}
		ranks, err := store.ReadRanks(ctx, t.Key())
		if err == nil {
			if err := practice.ValidateRankSet(ranks); err != nil {
				res.Add("practice", fmt.Sprintf("Team %q: %s.", t.Name, err.Error()))
			}
		}
	}
	return res
}

func validateSummary(form wiz.FormData) wiz.Result {
	var res wiz.Result
	if !consentAffirmed(form.Get(FieldConsent)) {
		res.Add(FieldConsent, "Please confirm the race rules and privacy terms.")
	}
	return res
}

// consentAffirmed accepts the checkbox values browsers submit.
func consentAffirmed(v string) bool {
	return v == "yes" || v == "on"
}

// persistStep writes the step's known fields into the store as one JSON
// map. Unknown submitted fields are dropped so the stored shape stays
// stable. Returns a warning string when persistence degraded.
func (e *Engine) persistStep(ctx context.Context, sessionID string, step wiz.Step, form wiz.FormData) (string, error) {
	fields := stepFields(step, form)
	data := make(wiz.FormData, len(fields))
	for _, f := range fields {
		if v := form.Get(f); v != "" {
			data[f] = v
		}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal step data: %w", err)
	}
	warning, err := e.setWithRetry(ctx, sessionID, stepKeyPrefix+step.Name(), string(raw))
	if err != nil {
		return "", err
	}

	if step == wiz.StepTeams {
		if err := e.pruneDroppedTeams(ctx, sessionID, form); err != nil {
			return warning, err
		}
	}
	return warning, nil
}

// stepFields lists the fields a step owns, including the per-team fields
// implied by the submitted team count.
func stepFields(step wiz.Step, form wiz.FormData) []string {
	switch step {
	case wiz.StepIntro:
		return []string{FieldEventID}
	case wiz.StepTeams:
		fields := []string{FieldTeamCount}
		count, _ := strconv.Atoi(form.Get(FieldTeamCount))
		for i := 1; i <= count; i++ {
			fields = append(fields, teamField(i, "name"), teamField(i, "division"), teamField(i, "package"))
		}
		return fields
	case wiz.StepContact:
		return []string{FieldManagerName, FieldManagerEmail, FieldManagerPhone, FieldClub, FieldAddress}
	case wiz.StepAddons:
		return []string{FieldTents, FieldBarbecues, FieldShirts, FieldShirtSize}
	case wiz.StepSummary:
		return []string{FieldConsent}
	}
	return nil
}

// pruneDroppedTeams removes practice data for team keys beyond the newly
// persisted team count, so a reduced count leaves no orphaned collections.
func (e *Engine) pruneDroppedTeams(ctx context.Context, sessionID string, form wiz.FormData) error {
	count, err := strconv.Atoi(form.Get(FieldTeamCount))
	if err != nil {
		return nil
	}
	store := e.deps.Practice(sessionID)
	for i := count + 1; i <= team.MaxTeamsPerRegistration; i++ {
		if err := store.RemoveTeam(ctx, team.Key(i)); err != nil {
			return err
		}
	}
	active, err := e.ActiveTeam(ctx, sessionID)
	if err == nil {
		if ord, ok := parseTeamKey(active); ok && ord > count {
			if err := e.deps.KV.Remove(ctx, sessionID, activeTeamKey); err != nil {
				return err
			}
		}
	}
	return nil
}

// Teams reconstructs the session's team set from the persisted teams step.
// POST: Returns an empty slice when the step has not been completed
func (e *Engine) Teams(ctx context.Context, sessionID string) ([]team.Team, error) {
	data, err := e.StepData(ctx, sessionID, wiz.StepTeams)
	if err != nil {
		return nil, err
	}
	count, err := strconv.Atoi(data.Get(FieldTeamCount))
	if err != nil || count < 1 {
		return []team.Team{}, nil
	}
	teams := make([]team.Team, 0, count)
	for i := 1; i <= count; i++ {
		teams = append(teams, team.Team{
			Ordinal:  i,
			Name:     data.Get(teamField(i, "name")),
			Division: data.Get(teamField(i, "division")),
			Package:  data.Get(teamField(i, "package")),
		})
	}
	return teams, nil
}

// EventID returns the event chosen in the intro step, or "".
func (e *Engine) EventID(ctx context.Context, sessionID string) (string, error) {
	data, err := e.StepData(ctx, sessionID, wiz.StepIntro)
	if err != nil {
		return "", err
	}
	return data.Get(FieldEventID), nil
}

// parseTeamKey extracts the ordinal from a "t<n>" team key.
func parseTeamKey(key string) (int, bool) {
	if !strings.HasPrefix(key, "t") {
		return 0, false
	}
	n, err := strconv.Atoi(key[1:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
