// Package points is the read-only projection of a user's accrued points and
// redemption capacity.
package points

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"engagelayer/internal/core"

	"github.com/ethereum/go-ethereum/common"
)

// View caches the last authoritative points read per address. The contract
// is the source of truth: the cache exists for the redeem pre-flight check
// and is invalidated after every state-changing action that could move the
// balance.
type View struct {
	Logger *slog.Logger
	Reader core.ContractReader
	Engine core.Executor

	mu    sync.Mutex
	known map[common.Address]*big.Int
}

func (v *View) Init(context.Context) error {
	v.Logger = v.Logger.With("component", "points.View")
	v.known = map[common.Address]*big.Int{}
	return nil
}

// Refresh re-reads the accumulated points for addr and updates the cache.
func (v *View) Refresh(ctx context.Context, addr common.Address) (*big.Int, error) {
	value, err := v.Reader.Points(ctx, addr)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.known[addr] = value
	v.mu.Unlock()

	return value, nil
}

// Points returns the last-known value, reading once when nothing is cached.
func (v *View) Points(ctx context.Context, addr common.Address) (*big.Int, error) {
	v.mu.Lock()
	value, ok := v.known[addr]
	v.mu.Unlock()
	if ok {
		return value, nil
	}
	return v.Refresh(ctx, addr)
}

// Invalidate drops the cached value so the next read hits the contract.
// Call it after any submitted like, vote or redeem.
func (v *View) Invalidate(addr common.Address) {
	v.mu.Lock()
	delete(v.known, addr)
	v.mu.Unlock()
}

// Redeem pre-checks amount against the last-known balance and submits
// redeemPoints through the engine. The pre-flight check never touches the
// network; the contract may still reject.
func (v *View) Redeem(ctx context.Context, addr common.Address, amount uint64) (common.Hash, error) {
	known, err := v.Points(ctx, addr)
	if err != nil {
		return common.Hash{}, err
	}

	if new(big.Int).SetUint64(amount).Cmp(known) > 0 {
		return common.Hash{}, fmt.Errorf("%w: have %s, want %d", core.ErrInsufficientPoints, known, amount)
	}

	hash, err := v.Engine.Execute(ctx, core.RedeemPointsAction(amount))
	if err != nil {
		return common.Hash{}, err
	}

	v.Invalidate(addr)
	return hash, nil
}
