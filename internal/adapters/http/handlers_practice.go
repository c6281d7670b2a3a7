package web

import (
	"errors"
	"net/http"

	"regatta/internal/adapters/http/middleware"
	"regatta/internal/application/orchestrators"
	"regatta/internal/application/projections"
	"regatta/internal/domain/practice"
)

// practiceBadRequest maps domain validation errors to 400 responses.
func practiceBadRequest(w http.ResponseWriter, err error) bool {
	for _, known := range []error{
		practice.ErrInvalidDate,
		practice.ErrInvalidDuration,
		practice.ErrInvalidHelper,
		practice.ErrInvalidRank,
		practice.ErrEmptySlotCode,
		practice.ErrUnknownSlotCode,
		orchestrators.ErrInvalidCopyMode,
		orchestrators.ErrCopySameTeam,
	} {
		if errors.Is(err, known) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return true
		}
	}
	return false
}

// requireWindow resolves the session's practice window or rejects the
// request when no event has been chosen yet.
func requireWindow(w http.ResponseWriter, r *http.Request) (practice.Window, bool) {
	window, ok, err := sessionWindow(r)
	if err != nil {
		internalError(w, err)
		return practice.Window{}, false
	}
	if !ok {
		http.Error(w, "select an event before planning practices", http.StatusConflict)
		return practice.Window{}, false
	}
	return window, true
}

// handlePracticeCalendar handles GET /api/practice/calendar?team=X
// Returns the full month-block calendar for one team, rebuilt from its
// stored rows.
func handlePracticeCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	window, ok := requireWindow(w, r)
	if !ok {
		return
	}
	teamKey, err := teamKeyParam(r)
	if err != nil {
		internalError(w, err)
		return
	}

	sessionID := middleware.WizardSessionID(r.Context())
	result, err := projections.QueryGetCalendar(r.Context(),
		projections.GetCalendarQuery{TeamKey: teamKey},
		projections.GetCalendarDeps{
			PracticeStore: engine.PracticeStore(sessionID),
			Window:        window,
		})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, result)
}

// handlePracticeToggle handles POST /api/practice/toggle
// Checks or unchecks one calendar date for a team.
func handlePracticeToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var input struct {
		TeamKey string `json:"TeamKey"`
		Date    string `json:"Date"`
		Checked bool   `json:"Checked"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	window, ok := requireWindow(w, r)
	if !ok {
		return
	}

	sessionID := middleware.WizardSessionID(r.Context())
	result, err := orchestrators.ExecuteTogglePracticeDate(r.Context(),
		orchestrators.TogglePracticeDateInput{
			TeamKey: input.TeamKey,
			Date:    input.Date,
			Checked: input.Checked,
		},
		orchestrators.TogglePracticeDateDeps{
			PracticeStore: engine.PracticeStore(sessionID),
			Window:        window,
		})
	if err != nil {
		if practiceBadRequest(w, err) {
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, result)
}

// handlePracticeRow handles POST /api/practice/row
// Updates the duration or helper of a checked date's row.
func handlePracticeRow(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var input struct {
		TeamKey       string `json:"TeamKey"`
		Date          string `json:"Date"`
		DurationHours int    `json:"DurationHours"`
		Helper        string `json:"Helper"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	sessionID := middleware.WizardSessionID(r.Context())
	result, err := orchestrators.ExecuteUpdatePracticeRow(r.Context(),
		orchestrators.UpdatePracticeRowInput{
			TeamKey:       input.TeamKey,
			Date:          input.Date,
			DurationHours: input.DurationHours,
			Helper:        input.Helper,
		},
		orchestrators.UpdatePracticeRowDeps{
			PracticeStore: engine.PracticeStore(sessionID),
		})
	if err != nil {
		if practiceBadRequest(w, err) {
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, result)
}

// handlePracticeRanks handles GET and POST /api/practice/ranks
// GET returns the six-selector rank board; POST applies a selector edit
// with all-or-nothing semantics.
func handlePracticeRanks(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.WizardSessionID(r.Context())

	if r.Method == "GET" {
		teamKey, err := teamKeyParam(r)
		if err != nil {
			internalError(w, err)
			return
		}
		result, err := projections.QueryGetRankBoard(r.Context(),
			projections.GetRankBoardQuery{TeamKey: teamKey},
			projections.GetRankBoardDeps{
				PracticeStore: engine.PracticeStore(sessionID),
				Catalog:       slotCatalog,
			})
		if err != nil {
			internalError(w, err)
			return
		}
		writeJSON(w, result)
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input struct {
		TeamKey    string
		Selections []practice.RankSelection
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	result, err := orchestrators.ExecuteSetSlotRanks(r.Context(),
		orchestrators.SetSlotRanksInput{
			TeamKey:    input.TeamKey,
			Selections: input.Selections,
		},
		orchestrators.SetSlotRanksDeps{
			PracticeStore: engine.PracticeStore(sessionID),
			Catalog:       slotCatalog,
		})
	if err != nil {
		if practiceBadRequest(w, err) {
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, result)
}

// handlePracticeCopy handles POST /api/practice/copy
// Copies practice rows and slot ranks from one team to another.
func handlePracticeCopy(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var input struct {
		FromTeamKey string `json:"FromTeamKey"`
		ToTeamKey   string `json:"ToTeamKey"`
		Mode        string `json:"Mode"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	window, ok := requireWindow(w, r)
	if !ok {
		return
	}

	sessionID := middleware.WizardSessionID(r.Context())
	result, err := orchestrators.ExecuteCopyPractice(r.Context(),
		orchestrators.CopyPracticeInput{
			FromTeamKey: input.FromTeamKey,
			ToTeamKey:   input.ToTeamKey,
			Mode:        input.Mode,
		},
		orchestrators.CopyPracticeDeps{
			PracticeStore: engine.PracticeStore(sessionID),
			Window:        window,
		})
	if err != nil {
		if practiceBadRequest(w, err) {
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, result)
}
