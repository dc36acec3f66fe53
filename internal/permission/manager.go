package permission

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"time"

	"engagelayer/internal/chain"
	"engagelayer/internal/core"
)

// DefaultPeriod is the protocol's fixed permission window.
const DefaultPeriod = 24 * time.Hour

// DefaultScope covers the low-friction engagement actions, matching what is
// granted to the wallet by default.
var DefaultScope = []core.ActionKind{core.KindLike, core.KindVote}

// Manager owns the permission lifecycle: Absent -> Active -> Expired, with
// Revoked as the explicit exit. Expiry is lazy: it is detected on read and
// clears storage as a side effect, no background timer.
type Manager struct {
	Logger *slog.Logger
	Store  core.PermissionStore
	Wallet core.WalletProvider

	now func() time.Time
}

func (m *Manager) Init(context.Context) error {
	m.Logger = m.Logger.With("component", "permission.Manager")
	if m.now == nil {
		m.now = time.Now
	}
	return nil
}

// Grant requests a delegated permission from the wallet and stores the
// resulting record, replacing any prior one. Zero values fall back to the
// protocol defaults (like+vote scope, 24h window).
func (m *Manager) Grant(ctx context.Context, scope []core.ActionKind, spendingCap *big.Int, period time.Duration) (*core.Permission, error) {
	if len(scope) == 0 {
		scope = DefaultScope
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	if spendingCap == nil {
		spendingCap = new(big.Int)
	}

	functions := make([]string, 0, len(scope))
	for _, kind := range scope {
		fn, ok := chain.FunctionFor(kind)
		if !ok {
			return nil, errors.Join(core.ErrUnsupportedAction, errors.New(string(kind)))
		}
		functions = append(functions, fn)
	}

	accounts, err := m.Wallet.RequestAccounts(ctx)
	if err != nil {
		return nil, err
	}
	signer := accounts[0]

	now := m.now()
	expiry := now.Add(period)

	authContext, err := m.Wallet.GrantPermissions(ctx, core.GrantRequest{
		Signer:           signer,
		AllowedFunctions: functions,
		SpendingCap:      spendingCap,
		Period:           period,
		Expiry:           expiry,
	})
	if err != nil {
		return nil, err
	}

	p := &core.Permission{
		Scope:          scope,
		SpendingCap:    spendingCap,
		Period:         int64(period.Seconds()),
		GrantedAt:      now.UnixMilli(),
		Expiry:         expiry.UnixMilli(),
		Signer:         signer,
		Context:        authContext,
		PendingActions: []core.PendingAction{},
	}

	if err := m.Store.Save(ctx, p); err != nil {
		return nil, err
	}

	m.Logger.Info("permission granted",
		"signer", signer, "expiry", expiry, "scope", scope)

	return p, nil
}

// Current returns the active record, detecting expiry on the way. Absent and
// expired both come back as core.ErrNoPermission.
func (m *Manager) Current(ctx context.Context) (*core.Permission, error) {
	p, err := m.Store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if p.Expired(m.now()) {
		// Expected steady state, not a fault: clear silently.
		m.Logger.Debug("permission expired, clearing")
		if err := m.Store.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, core.ErrNoPermission
	}

	return p, nil
}

// Check reports current validity. Never true at or past expiry.
func (m *Manager) Check(ctx context.Context) (bool, error) {
	_, err := m.Current(ctx)
	if errors.Is(err, core.ErrNoPermission) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Allows implements core.Lifecycle: validity plus scope membership.
func (m *Manager) Allows(ctx context.Context, kind core.ActionKind) (*core.Permission, bool, error) {
	p, err := m.Current(ctx)
	if errors.Is(err, core.ErrNoPermission) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !p.InScope(kind) {
		return nil, false, nil
	}
	return p, true, nil
}

// Revoke hands the authorization context back to the wallet (best effort)
// and clears storage. Revoking with nothing active is a no-op.
func (m *Manager) Revoke(ctx context.Context) error {
	p, err := m.Store.Load(ctx)
	if errors.Is(err, core.ErrNoPermission) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := m.Wallet.RevokePermissions(ctx, p.Context); err != nil {
		// The local record is the authority for our own path choice; a
		// wallet that failed to revoke still loses the context.
		m.Logger.Warn("wallet revoke failed", "error", err)
	}

	return m.Store.Clear(ctx)
}
