package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const wizardCookieName = "regatta_wizard"

const wizardSessionContextKey contextKey = "wizard_session"

// WizardCookie signs and verifies the anonymous wizard session cookie.
// The cookie carries only a random session ID; all wizard state lives
// server-side keyed by that ID.
type WizardCookie struct {
	codec *securecookie.SecureCookie
}

// NewWizardCookie creates a cookie codec from a 32-byte HMAC key.
func NewWizardCookie(hashKey []byte) *WizardCookie {
	sc := securecookie.New(hashKey, nil)
	sc.MaxAge(86400) // 24 hours, matches the session KV TTL
	return &WizardCookie{codec: sc}
}

// WizardSession returns middleware that resolves the wizard session ID for
// the request, minting a fresh one when the cookie is absent or invalid.
// POST: the request context always carries a non-empty session ID
func (wc *WizardCookie) WizardSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(wizardCookieName); err == nil {
			var decoded string
			if err := wc.codec.Decode(wizardCookieName, cookie.Value, &decoded); err == nil {
				sessionID = decoded
			}
		}
		if sessionID == "" {
			sessionID = uuid.New().String()
			if encoded, err := wc.codec.Encode(wizardCookieName, sessionID); err == nil {
				http.SetCookie(w, &http.Cookie{
					Name:     wizardCookieName,
					Value:    encoded,
					HttpOnly: true,
					Secure:   false, // Allow HTTP for local development
					SameSite: http.SameSiteLaxMode,
					Path:     "/",
					MaxAge:   86400,
				})
			}
		}
		ctx := context.WithValue(r.Context(), wizardSessionContextKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WizardSessionID extracts the wizard session ID from the request context.
func WizardSessionID(ctx context.Context) string {
	id, _ := ctx.Value(wizardSessionContextKey).(string)
	return id
}

// ContextWithWizardSession returns a context with the given session ID set.
// Intended for use in tests.
func ContextWithWizardSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, wizardSessionContextKey, sessionID)
}
