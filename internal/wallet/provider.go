// Package wallet talks JSON-RPC to the signer (a wallet daemon or any
// EIP-1193-style provider endpoint). It is the only place that knows the
// wire shapes of the grant, revoke and submission requests.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"engagelayer/internal/config"
	"engagelayer/internal/core"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// EIP-1193 provider error codes.
const (
	codeUserRejected = 4001
	codeUnauthorized = 4100
)

// Provider implements core.WalletProvider over a JSON-RPC connection.
type Provider struct {
	Logger *slog.Logger
	Config *config.Config

	client   *rpc.Client
	contract common.Address
}

func (p *Provider) Init(ctx context.Context) error {
	p.Logger = p.Logger.With("component", "wallet.Provider")

	contract, err := p.Config.ContractAddress()
	if err != nil {
		return err
	}
	p.contract = contract

	url := p.Config.EffectiveWalletURL()
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return fmt.Errorf("%w: dialing %s: %w", core.ErrWalletUnavailable, url, err)
	}
	p.client = client

	return nil
}

func (p *Provider) HealthCheck(ctx context.Context) error {
	var id hexutil.Big
	return p.client.CallContext(ctx, &id, "eth_chainId")
}

func (p *Provider) Shutdown(context.Context) error {
	p.client.Close()
	return nil
}

// RequestAccounts resolves the signer's accounts, interactively if the
// wallet requires it.
func (p *Provider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := p.client.CallContext(ctx, &accounts, "eth_requestAccounts"); err != nil {
		if providerCode(err) == codeUserRejected {
			return nil, fmt.Errorf("%w: %w", core.ErrUserRejected, err)
		}
		return nil, fmt.Errorf("%w: %w", core.ErrWalletUnavailable, err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: no accounts", core.ErrWalletUnavailable)
	}
	return accounts, nil
}

// GrantPermissions asks the wallet for a delegated permission and returns
// the opaque authorization context, stored as-is and echoed back verbatim.
func (p *Provider) GrantPermissions(ctx context.Context, req core.GrantRequest) (json.RawMessage, error) {
	functions := make([]map[string]any, 0, len(req.AllowedFunctions))
	for _, fn := range req.AllowedFunctions {
		functions = append(functions, map[string]any{"functionName": fn})
	}

	params := map[string]any{
		"signer": map[string]any{
			"type": "account",
			"data": map[string]any{"id": req.Signer},
		},
		"permissions": []map[string]any{
			{
				"type": "contract-call",
				"data": map[string]any{
					"address":   p.contract,
					"functions": functions,
				},
				"required": true,
			},
			{
				"type":     "native-token-transfer",
				"data":     map[string]any{"ticker": "ETH"},
				"required": false,
			},
		},
		"expiry": req.Expiry.Unix(),
		"policies": []map[string]any{
			{
				"type": "spending-limit",
				"data": map[string]any{
					"limit":  hexutil.EncodeBig(req.SpendingCap),
					"period": int64(req.Period.Seconds()),
				},
			},
		},
	}

	var authContext json.RawMessage
	if err := p.client.CallContext(ctx, &authContext, "wallet_grantPermissions", params); err != nil {
		switch providerCode(err) {
		case codeUserRejected, codeUnauthorized:
			return nil, fmt.Errorf("%w: %w", core.ErrPermissionDenied, err)
		default:
			return nil, fmt.Errorf("%w: %w", core.ErrWalletUnavailable, err)
		}
	}

	return authContext, nil
}

// RevokePermissions hands the stored context back to the wallet. Best
// effort: a wallet that never saw the grant treats this as a no-op.
func (p *Provider) RevokePermissions(ctx context.Context, authContext json.RawMessage) error {
	if len(authContext) == 0 {
		return nil
	}

	params := map[string]json.RawMessage{
		p.contract.Hex(): authContext,
	}
	return p.client.CallContext(ctx, nil, "wallet_revokePermissions", params)
}

// SendTransaction submits a call for signing. With an AuthContext attached
// the wallet may execute without interactive confirmation; whether it
// actually skips the prompt is wallet policy, not ours.
func (p *Provider) SendTransaction(ctx context.Context, tx core.TxRequest) (common.Hash, error) {
	arg := map[string]any{
		"from": tx.From,
		"to":   tx.To,
		"data": hexutil.Encode(tx.Data),
	}
	if tx.Value != nil && tx.Value.Sign() > 0 {
		arg["value"] = (*hexutil.Big)(tx.Value)
	}
	if len(tx.AuthContext) > 0 {
		arg["permissionContext"] = tx.AuthContext
	}

	var hash common.Hash
	if err := p.client.CallContext(ctx, &hash, "eth_sendTransaction", arg); err != nil {
		if providerCode(err) == codeUserRejected {
			return common.Hash{}, fmt.Errorf("%w: %w", core.ErrUserRejected, err)
		}
		return common.Hash{}, err
	}

	return hash, nil
}

func providerCode(err error) int {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return rpcErr.ErrorCode()
	}
	return 0
}
