// Package engine submits encoded actions, choosing between the permissioned
// and the standard execution path.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"engagelayer/internal/chain"
	"engagelayer/internal/config"
	"engagelayer/internal/core"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var actionsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "engagelayer_actions_submitted_total",
	Help: "The total number of submitted actions.",
}, []string{"kind", "path", "outcome"})

const (
	pathPermissioned = "permissioned"
	pathStandard     = "standard"
)

// Engine encodes an intent, consults the lifecycle manager and submits the
// call through the wallet. No retries, ever: replaying a state-changing call
// without idempotency keys risks duplicate effects.
type Engine struct {
	Logger    *slog.Logger
	Config    *config.Config
	Lifecycle core.Lifecycle
	Wallet    core.WalletProvider

	contract common.Address
}

func (e *Engine) Init(context.Context) error {
	e.Logger = e.Logger.With("component", "engine.Engine")

	contract, err := e.Config.ContractAddress()
	if err != nil {
		return err
	}
	e.contract = contract

	return nil
}

// Execute runs one action end to end and returns the submission hash.
// Validation failures never reach the network; wallet and RPC failures come
// back tagged with the taxonomy, reasons preserved verbatim.
func (e *Engine) Execute(ctx context.Context, action core.Action) (common.Hash, error) {
	call, err := chain.EncodeAction(action)
	if err != nil {
		return common.Hash{}, err
	}

	p, permitted, err := e.Lifecycle.Allows(ctx, action.Kind)
	if err != nil {
		return common.Hash{}, err
	}

	tx := core.TxRequest{
		To:    e.contract,
		Data:  call.Data,
		Value: call.Value,
	}

	path := pathStandard
	if permitted {
		// Forward the authorization context; whether the wallet skips the
		// confirmation prompt is its policy. A prompt here is a degradation,
		// not a protocol error.
		path = pathPermissioned
		tx.From = p.Signer
		tx.AuthContext = p.Context
	} else {
		accounts, err := e.Wallet.RequestAccounts(ctx)
		if err != nil {
			actionsSubmitted.WithLabelValues(string(action.Kind), path, "wallet_unavailable").Inc()
			return common.Hash{}, err
		}
		tx.From = accounts[0]
	}

	hash, err := e.Wallet.SendTransaction(ctx, tx)
	if err != nil {
		return common.Hash{}, e.submissionError(action, path, err)
	}

	actionsSubmitted.WithLabelValues(string(action.Kind), path, "ok").Inc()
	e.Logger.Info("action submitted",
		"kind", action.Kind, "path", path, "hash", hash)

	return hash, nil
}

func (e *Engine) submissionError(action core.Action, path string, err error) error {
	switch {
	case errors.Is(err, core.ErrUserRejected):
		actionsSubmitted.WithLabelValues(string(action.Kind), path, "rejected").Inc()
		return err
	case errors.Is(err, core.ErrWalletUnavailable):
		actionsSubmitted.WithLabelValues(string(action.Kind), path, "wallet_unavailable").Inc()
		return err
	default:
		actionsSubmitted.WithLabelValues(string(action.Kind), path, "failed").Inc()
		return fmt.Errorf("%w: %w", core.ErrExecutionFailed, err)
	}
}
