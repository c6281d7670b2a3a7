package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"regatta/internal/adapters/http/middleware"
	"regatta/internal/adapters/storage/event"
	"regatta/internal/application/orchestrators"
	"regatta/internal/application/projections"
	accountDomain "regatta/internal/domain/account"
	"regatta/internal/domain/practice"
	wiz "regatta/internal/domain/wizard"
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// registerRoutes attaches all application routes.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/events", handleEvents)

	mux.HandleFunc("/api/wizard/state", handleWizardState)
	mux.HandleFunc("/api/wizard/next", handleWizardNext)
	mux.HandleFunc("/api/wizard/back", handleWizardBack)
	mux.HandleFunc("/api/wizard/resume", handleWizardResume)
	mux.HandleFunc("/api/wizard/team", handleWizardTeam)
	mux.HandleFunc("/api/wizard/summary", handleWizardSummary)
	mux.HandleFunc("/api/wizard/submit", handleWizardSubmit)

	mux.HandleFunc("/api/practice/calendar", handlePracticeCalendar)
	mux.HandleFunc("/api/practice/toggle", handlePracticeToggle)
	mux.HandleFunc("/api/practice/row", handlePracticeRow)
	mux.HandleFunc("/api/practice/ranks", handlePracticeRanks)
	mux.HandleFunc("/api/practice/copy", handlePracticeCopy)

	mux.HandleFunc("/api/admin/login", handleAdminLogin)
	mux.HandleFunc("/api/admin/logout", handleAdminLogout)
	mux.Handle("/api/admin/submissions", middleware.RequireRole(
		accountDomain.RoleAdmin, accountDomain.RoleOrganizer,
	)(http.HandlerFunc(handleAdminSubmissions)))
}

// handleEvents handles GET /api/events
// Lists events that are open for registration.
func handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	events, err := stores.EventStore.List(r.Context(), event.ListFilter{OpenOnly: true})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, events)
}

// wizardStateView is the full session snapshot the client renders from.
type wizardStateView struct {
	Step         int          `json:"step"`
	StepName     string       `json:"step_name"`
	StepData     wiz.FormData `json:"step_data"`
	ActiveTeam   string       `json:"active_team"`
	SubmissionID string       `json:"submission_id,omitempty"`
}

// handleWizardState handles GET /api/wizard/state
func handleWizardState(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	sessionID := middleware.WizardSessionID(ctx)

	step, err := engine.CurrentStep(ctx, sessionID)
	if err != nil {
		internalError(w, err)
		return
	}
	data, err := engine.StepData(ctx, sessionID, step)
	if err != nil {
		internalError(w, err)
		return
	}
	activeTeam, err := engine.ActiveTeam(ctx, sessionID)
	if err != nil {
		internalError(w, err)
		return
	}
	submissionID, err := engine.SubmittedID(ctx, sessionID)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, wizardStateView{
		Step:         int(step),
		StepName:     step.Name(),
		StepData:     data,
		ActiveTeam:   activeTeam,
		SubmissionID: submissionID,
	})
}

// handleWizardNext handles POST /api/wizard/next
// The body is the current step's form fields as a flat string map.
func handleWizardNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var form wiz.FormData
	if err := strictDecode(r, &form); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	sessionID := middleware.WizardSessionID(ctx)
	result, err := engine.Next(ctx, sessionID, form)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, map[string]any{
		"step":       int(result.Step),
		"step_name":  result.Step.Name(),
		"ok":         result.Validation.OK(),
		"violations": result.Validation.Violations,
		"warning":    result.Warning,
	})
}

// handleWizardBack handles POST /api/wizard/back
// Moving back clears every downstream step's persisted answers.
func handleWizardBack(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var input struct {
		TargetStep int `json:"TargetStep"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	sessionID := middleware.WizardSessionID(ctx)
	step, err := engine.Back(ctx, sessionID, wiz.Step(input.TargetStep))
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, map[string]any{"step": int(step), "step_name": step.Name()})
}

// handleWizardResume handles POST /api/wizard/resume
// A reload lands on the lesser of the requested step and the persisted one.
func handleWizardResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var input struct {
		Step int `json:"Step"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	sessionID := middleware.WizardSessionID(ctx)
	step, err := engine.Resume(ctx, sessionID, input.Step)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, map[string]any{"step": int(step), "step_name": step.Name()})
}

// handleWizardTeam handles GET and POST /api/wizard/team
// GET returns the active team; POST switches it.
func handleWizardTeam(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := middleware.WizardSessionID(ctx)

	if r.Method == "GET" {
		teamKey, err := engine.ActiveTeam(ctx, sessionID)
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, map[string]string{"team_key": teamKey})
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		TeamKey string `json:"TeamKey"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := engine.SetActiveTeam(ctx, sessionID, input.TeamKey); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{"team_key": input.TeamKey})
}

// handleWizardSummary handles GET /api/wizard/summary
func handleWizardSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	sessionID := middleware.WizardSessionID(ctx)

	result, err := projections.QueryGetRegistrationSummary(ctx,
		projections.GetRegistrationSummaryQuery{SessionID: sessionID},
		projections.GetRegistrationSummaryDeps{
			Engine:     engine,
			EventStore: stores.EventStore,
		})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, result)
}

// handleWizardSubmit handles POST /api/wizard/submit
// The body is the summary step's form; the consent checkbox must be set.
func handleWizardSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var form wiz.FormData
	if err := strictDecode(r, &form); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	sessionID := middleware.WizardSessionID(ctx)

	confirm, err := engine.ConfirmSummary(ctx, sessionID, form)
	if err != nil {
		internalError(w, err)
		return
	}
	if !confirm.Validation.OK() {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]any{
			"ok":         false,
			"violations": confirm.Validation.Violations,
		})
		return
	}

	result, err := orchestrators.ExecuteSubmitRegistration(ctx,
		orchestrators.SubmitRegistrationInput{SessionID: sessionID},
		orchestrators.SubmitRegistrationDeps{
			Engine:           engine,
			EventStore:       stores.EventStore,
			SubmissionStore:  stores.SubmissionStore,
			Sender:           emailSender,
			MinPracticeHours: minPracticeHours,
			ReplyTo:          emailReplyTo,
		})
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrAlreadySubmitted):
			http.Error(w, err.Error(), http.StatusConflict)
		case errors.Is(err, orchestrators.ErrNoEventSelected),
			errors.Is(err, orchestrators.ErrNoTeams),
			errors.Is(err, orchestrators.ErrPracticeIncomplete),
			errors.Is(err, orchestrators.ErrConsentRequired):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			internalError(w, err)
		}
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]any{
		"submission_id": result.SubmissionID,
		"teams":         result.Payloads,
	})
}

// sessionWindow resolves the practice window of the session's chosen event.
func sessionWindow(r *http.Request) (practice.Window, bool, error) {
	ctx := r.Context()
	sessionID := middleware.WizardSessionID(ctx)
	eventID, err := engine.EventID(ctx, sessionID)
	if err != nil {
		return practice.Window{}, false, err
	}
	if eventID == "" {
		return practice.Window{}, false, nil
	}
	ev, err := stores.EventStore.GetByID(ctx, eventID)
	if err != nil {
		return practice.Window{}, false, err
	}
	return ev.Window(), true, nil
}

// teamKeyParam reads the team key from the query string, falling back to
// the session's active team.
func teamKeyParam(r *http.Request) (string, error) {
	if key := r.URL.Query().Get("team"); key != "" {
		return key, nil
	}
	return engine.ActiveTeam(r.Context(), middleware.WizardSessionID(r.Context()))
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
