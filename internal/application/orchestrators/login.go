package orchestrators

import (
	"context"
	"errors"

	accountStore "regatta/internal/adapters/storage/account"
	"regatta/internal/domain/account"
)

// Login errors. Invalid email and wrong password deliberately share one
// message so the endpoint cannot be used to enumerate accounts.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked")
)

// LoginInput carries input for the orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore accountStore.Store
}

// ExecuteLogin verifies credentials and maintains the failed-login lockout.
// POST: on success the account's failure counter is reset; on a wrong
// password the counter is incremented (locking after 5 failures)
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (account.Account, error) {
	acct, err := deps.AccountStore.GetByEmail(ctx, input.Email)
	if err != nil {
		return account.Account{}, ErrInvalidCredentials
	}
	if acct.IsLocked() {
		return account.Account{}, ErrAccountLocked
	}
	if err := acct.CheckPassword(input.Password); err != nil {
		acct.RecordFailedLogin()
		if saveErr := deps.AccountStore.Save(ctx, acct); saveErr != nil {
			return account.Account{}, saveErr
		}
		return account.Account{}, ErrInvalidCredentials
	}
	if acct.FailedLogins > 0 {
		acct.ResetFailedLogins()
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return account.Account{}, err
		}
	}
	return acct, nil
}
