package orchestrators

import (
	"context"
	"testing"

	"regatta/internal/domain/account"
	eventDomain "regatta/internal/domain/event"
)

func TestExecuteSeedAdmin(t *testing.T) {
	store := newMockAccountStore()
	ctx := context.Background()

	err := ExecuteSeedAdmin(ctx, SeedAdminDeps{AccountStore: store}, "office@regattaseries.example", "Paddles up twice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	acct, err := store.GetByEmail(ctx, "office@regattaseries.example")
	if err != nil {
		t.Fatalf("expected admin created: %v", err)
	}
	if acct.Role != account.RoleAdmin {
		t.Errorf("expected admin role, got %q", acct.Role)
	}
	if err := acct.CheckPassword("Paddles up twice"); err != nil {
		t.Errorf("expected seeded password to verify: %v", err)
	}
}

func TestExecuteSeedAdmin_Idempotent(t *testing.T) {
	store := newMockAccountStore(adminAccount(t))
	ctx := context.Background()

	err := ExecuteSeedAdmin(ctx, SeedAdminDeps{AccountStore: store}, "other@example.org", "Different password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Errorf("expected existing account to suppress seeding, got %d accounts", n)
	}
	if _, err := store.GetByEmail(ctx, "other@example.org"); err == nil {
		t.Error("expected no second admin created")
	}
}

func TestExecuteSeedAdmin_RejectsWeakPassword(t *testing.T) {
	store := newMockAccountStore()

	err := ExecuteSeedAdmin(context.Background(), SeedAdminDeps{AccountStore: store}, "office@regattaseries.example", "short")
	if err == nil {
		t.Fatal("expected an error for a too-short password")
	}
	if n, _ := store.Count(context.Background()); n != 0 {
		t.Errorf("expected nothing saved, got %d accounts", n)
	}
}

func TestExecuteSeedEvents(t *testing.T) {
	store := &mockEventStore{events: make(map[string]eventDomain.Event)}
	ctx := context.Background()

	if err := ExecuteSeedEvents(ctx, SeedEventsDeps{EventStore: store}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := store.Count(ctx); n != 3 {
		t.Fatalf("expected 3 seeded events, got %d", n)
	}
	for _, ev := range store.events {
		if !ev.RegistrationOpen {
			t.Errorf("expected %s open for registration", ev.Name)
		}
		if !ev.PracticeStart.Before(ev.PracticeEnd) {
			t.Errorf("expected %s practice window ordered", ev.Name)
		}
		if len(ev.AllowedWeekdays) == 0 {
			t.Errorf("expected %s to allow practice weekdays", ev.Name)
		}
	}

	// A populated table suppresses re-seeding.
	if err := ExecuteSeedEvents(ctx, SeedEventsDeps{EventStore: store}); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if n, _ := store.Count(ctx); n != 3 {
		t.Errorf("expected 3 events after re-seed, got %d", n)
	}
}
