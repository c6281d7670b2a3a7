package web

import (
	"errors"
	"net/http"

	"regatta/internal/adapters/http/middleware"
	"regatta/internal/application/orchestrators"
	"regatta/internal/application/projections"
)

// handleAdminLogin handles POST /api/admin/login
func handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var input struct {
		Email    string `json:"Email"`
		Password string `json:"Password"`
	}
	if err := strictDecode(r, &input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	acct, err := orchestrators.ExecuteLogin(r.Context(),
		orchestrators.LoginInput{Email: input.Email, Password: input.Password},
		orchestrators.LoginDeps{AccountStore: stores.AccountStore})
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrInvalidCredentials):
			http.Error(w, err.Error(), http.StatusUnauthorized)
		case errors.Is(err, orchestrators.ErrAccountLocked):
			http.Error(w, err.Error(), http.StatusForbidden)
		default:
			internalError(w, err)
		}
		return
	}

	token, err := sessions.Create(acct.ID, acct.Email, acct.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, map[string]string{"email": acct.Email, "role": acct.Role})
}

// handleAdminLogout handles POST /api/admin/logout
func handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if token, ok := middleware.SessionTokenFromRequest(r); ok {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminSubmissions handles GET /api/admin/submissions?event_id=X
// Race-office listing of an event's registrations, newest first.
func handleAdminSubmissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		http.Error(w, "event_id is required", http.StatusBadRequest)
		return
	}

	result, err := projections.QueryGetSubmissions(r.Context(),
		projections.GetSubmissionsQuery{
			EventID: eventID,
			Limit:   parseIntParam(r, "limit", 50),
			Offset:  parseIntParam(r, "offset", 0),
		},
		projections.GetSubmissionsDeps{SubmissionStore: stores.SubmissionStore})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, result)
}
