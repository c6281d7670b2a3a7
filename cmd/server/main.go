package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	emailPkg "regatta/internal/adapters/email"
	web "regatta/internal/adapters/http"
	"regatta/internal/adapters/http/perf"
	"regatta/internal/adapters/storage"
	accountStore "regatta/internal/adapters/storage/account"
	eventStore "regatta/internal/adapters/storage/event"
	kvStore "regatta/internal/adapters/storage/kv"
	practiceStore "regatta/internal/adapters/storage/practice"
	submissionStore "regatta/internal/adapters/storage/submission"
	"regatta/internal/application/orchestrators"
	"regatta/internal/application/wizard"
	"regatta/internal/config"
	"regatta/internal/domain/event"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dsn := cfg.DB.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	// Health check
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	// Run database migrations
	if err := storage.MigrateDB(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector)

	// Create store instances (using timed DB for query instrumentation)
	acctStore := accountStore.NewSQLiteStore(timedDB)
	evStore := eventStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:    acctStore,
		EventStore:      evStore,
		SubmissionStore: submissionStore.NewSQLiteStore(timedDB),
	}

	// Session-scoped wizard state, bounded by a per-session byte quota; the
	// durable scope holds markers that must outlive session pruning
	sessionKV := kvStore.NewSQLiteStore(timedDB, kvStore.ScopeSession, cfg.Practice.QuotaBytes)
	durableKV := kvStore.NewSQLiteStore(timedDB, kvStore.ScopeDurable, cfg.Practice.QuotaBytes)

	engine := wizard.NewEngine(wizard.Deps{
		KV:     sessionKV,
		Events: evStore,
		Practice: func(sessionID string) practiceStore.Store {
			return practiceStore.NewKVStore(sessionKV, sessionID)
		},
		Durable:          durableKV,
		MinPracticeHours: cfg.Practice.MinHoursPerTeam,
		StaleAge:         cfg.Practice.SessionTTL,
	})

	// Seed default admin account if no accounts exist
	adminEmail := envOrDefault("REGATTA_ADMIN_EMAIL", "office@regattaseries.example")
	adminPassword := envOrDefault("REGATTA_ADMIN_PASSWORD", "Paddles up twice")
	seedDeps := orchestrators.SeedAdminDeps{AccountStore: acctStore}
	if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail, adminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Seed the default race series when the event table is empty
	if err := orchestrators.ExecuteSeedEvents(context.Background(), orchestrators.SeedEventsDeps{EventStore: evStore}); err != nil {
		log.Fatalf("failed to seed events: %v", err)
	}

	// Configure email sender
	if cfg.Email.ResendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(cfg.Email.ResendKey, cfg.Email.From), cfg.Email.ReplyTo)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), cfg.Email.ReplyTo)
		if cfg.IsProduction() {
			log.Println("WARNING: REGATTA_RESEND_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop; set REGATTA_RESEND_KEY for real delivery)")
		}
	}
	web.SetMinPracticeHours(cfg.Practice.MinHoursPerTeam)
	event.SetDefaultMaxDatesPerTeam(cfg.Practice.MaxDatesPerTeam)

	// Expire abandoned wizard sessions in the background
	stopPruner := make(chan struct{})
	startSessionPruner(sessionKV, cfg.Practice.SessionTTL, stopPruner)
	defer close(stopPruner)

	// Create HTTP handler with middleware (pass collector for timing)
	mux := web.NewMux(stores, engine, collector)

	addr := cfg.Server.Addr
	log.Printf("Regatta %s starting on %s (env=%s, schema=%d)", version, addr, cfg.Server.Env, storage.LatestSchemaVersion())

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// startSessionPruner deletes wizard state older than ttl on an hourly tick.
func startSessionPruner(store kvStore.Store, ttl time.Duration, stop chan struct{}) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				removed, err := store.PruneStale(context.Background(), time.Now().Add(-ttl))
				if err != nil {
					log.Printf("session prune failed: %v", err)
					continue
				}
				if removed > 0 {
					log.Printf("pruned %d stale session entries", removed)
				}
			case <-stop:
				return
			}
		}
	}()
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
