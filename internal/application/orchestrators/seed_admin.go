package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	accountStore "regatta/internal/adapters/storage/account"
	"regatta/internal/domain/account"
)

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore accountStore.Store
}

// ExecuteSeedAdmin creates the default admin account when no accounts
// exist. Idempotent: any existing account suppresses seeding.
// PRE: password satisfies the domain's minimum length
// POST: at least one admin account exists
func ExecuteSeedAdmin(ctx context.Context, deps SeedAdminDeps, adminEmail, adminPassword string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	acct := account.Account{
		ID:        uuid.New().String(),
		Email:     adminEmail,
		Role:      account.RoleAdmin,
		CreatedAt: time.Now(),
	}
	if err := acct.SetPassword(adminPassword); err != nil {
		return err
	}
	if err := acct.Validate(); err != nil {
		return err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return err
	}
	slog.Info("admin_seeded", "email", adminEmail)
	return nil
}
