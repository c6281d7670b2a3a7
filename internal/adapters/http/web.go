package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"regatta/internal/adapters/email"
	"regatta/internal/adapters/http/middleware"
	"regatta/internal/adapters/http/perf"
	accountStore "regatta/internal/adapters/storage/account"
	eventStore "regatta/internal/adapters/storage/event"
	submissionStore "regatta/internal/adapters/storage/submission"
	"regatta/internal/application/wizard"
	"regatta/internal/domain/practice"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore    accountStore.Store
	EventStore      eventStore.Store
	SubmissionStore submissionStore.Store
}

// loadKey reads a 32-byte hex-encoded secret from the named env var.
// In production, the key MUST be set. In development, a random key is
// generated per startup.
func loadKey(envVar string) []byte {
	if keyHex := os.Getenv(envVar); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatalf("%s must be 64 hex characters (32 bytes)", envVar)
		}
		return key
	}
	if os.Getenv("REGATTA_ENV") == "production" {
		log.Fatalf("%s is required in production", envVar)
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate %s: %v", envVar, err)
	}
	log.Printf("WARNING: using random %s (sessions won't survive restart). Set it for production.", envVar)
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global wizard engine instance (set by NewMux)
var engine *wizard.Engine

// Global admin session store instance
var sessions *middleware.SessionStore

// Global slot catalog (set by NewMux)
var slotCatalog practice.SlotCatalog

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailReplyTo string

// MinPracticeHours is the per-team minimum enforced at submission.
var minPracticeHours = wizard.DefaultMinPracticeHours

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, replyTo string) {
	emailSender = sender
	emailReplyTo = replyTo
}

// SetMinPracticeHours overrides the per-team practice-hour minimum.
func SetMinPracticeHours(hours int) {
	if hours > 0 {
		minPracticeHours = hours
	}
}

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, eng *wizard.Engine, collector *perf.Collector) http.Handler {
	stores = s
	engine = eng
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	slotCatalog = practice.DefaultCatalog()
	if emailSender == nil {
		emailSender = email.NewNoopSender()
	}

	mux := http.NewServeMux()
	registerRoutes(mux)

	// CSRF and wizard cookie keys: 32-byte hex-encoded secrets from env
	csrfKey := loadKey("REGATTA_CSRF_KEY")
	wizardCookie := middleware.NewWizardCookie(loadKey("REGATTA_SESSION_KEY"))

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> RateLimit -> WizardSession -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		wizardCookie.WizardSession,
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
