package core

import (
	"context"
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PermissionStore persists the single permission record and its pending
// queue. Records are replaced wholesale, never patched.
type PermissionStore interface {
	// Load returns ErrNoPermission when no record exists.
	Load(ctx context.Context) (*Permission, error)
	Save(ctx context.Context, p *Permission) error
	// Clear is idempotent.
	Clear(ctx context.Context) error
}

// ContractReader is the read-only surface of the engage contract.
type ContractReader interface {
	NextPostID(ctx context.Context) (uint64, error)
	Post(ctx context.Context, id uint64) (Post, error)
	PollOptions(ctx context.Context, id uint64) ([]PollOption, error)
	Points(ctx context.Context, addr common.Address) (*big.Int, error)
	HasLiked(ctx context.Context, id uint64, addr common.Address) (bool, error)
	HasVoted(ctx context.Context, id uint64, addr common.Address) (bool, error)
}

// WalletProvider is the narrow request/response contract with the signer.
// Once a transaction is handed over for signing it cannot be cancelled, only
// rejected.
type WalletProvider interface {
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	GrantPermissions(ctx context.Context, req GrantRequest) (json.RawMessage, error)
	RevokePermissions(ctx context.Context, authContext json.RawMessage) error
	SendTransaction(ctx context.Context, tx TxRequest) (common.Hash, error)
}

// Executor submits one action end to end and returns the submission hash.
type Executor interface {
	Execute(ctx context.Context, action Action) (common.Hash, error)
}

// Lifecycle is what execution consults before choosing a path.
type Lifecycle interface {
	// Allows reports whether kind may run through the permissioned path, and
	// hands back the stored record when it may.
	Allows(ctx context.Context, kind ActionKind) (*Permission, bool, error)
}
