package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"engagelayer/internal/chain"
	"engagelayer/internal/config"
	"engagelayer/internal/core"
	"engagelayer/internal/engine"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const testContract = "0xE83Fcc64C9f10F6875b517b3E1e2dFd69eDD79B8"

var (
	signer      = common.HexToAddress("0x1111111111111111111111111111111111111111")
	interactive = common.HexToAddress("0x2222222222222222222222222222222222222222")
	authContext = json.RawMessage(`{"session":"opaque"}`)
)

type fakeLifecycle struct {
	permission *core.Permission
}

func (l *fakeLifecycle) Allows(_ context.Context, kind core.ActionKind) (*core.Permission, bool, error) {
	if l.permission == nil || !l.permission.InScope(kind) {
		return nil, false, nil
	}
	return l.permission, true, nil
}

type fakeWallet struct {
	sendErr      error
	accountCalls int
	sent         []core.TxRequest
}

func (w *fakeWallet) RequestAccounts(context.Context) ([]common.Address, error) {
	w.accountCalls++
	return []common.Address{interactive}, nil
}

func (w *fakeWallet) GrantPermissions(context.Context, core.GrantRequest) (json.RawMessage, error) {
	return nil, nil
}

func (w *fakeWallet) RevokePermissions(context.Context, json.RawMessage) error {
	return nil
}

func (w *fakeWallet) SendTransaction(_ context.Context, tx core.TxRequest) (common.Hash, error) {
	if w.sendErr != nil {
		return common.Hash{}, w.sendErr
	}
	w.sent = append(w.sent, tx)
	return common.HexToHash("0xabc1"), nil
}

func newTestEngine(t *testing.T, lifecycle *fakeLifecycle, wallet *fakeWallet) *engine.Engine {
	t.Helper()

	e := &engine.Engine{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:    &config.Config{Contract: testContract},
		Lifecycle: lifecycle,
		Wallet:    wallet,
	}
	require.NoError(t, e.Init(t.Context()))
	return e
}

func activePermission() *core.Permission {
	return &core.Permission{
		Scope:   []core.ActionKind{core.KindLike, core.KindVote},
		Signer:  signer,
		Context: authContext,
	}
}

func TestExecutePermissionedPath(t *testing.T) {
	t.Parallel()

	wallet := &fakeWallet{}
	e := newTestEngine(t, &fakeLifecycle{permission: activePermission()}, wallet)

	hash, err := e.Execute(t.Context(), core.LikeAction(3))
	require.NoError(t, err)
	require.NotEqual(t, common.Hash{}, hash)

	// No interactive account resolution on the permissioned path.
	require.Zero(t, wallet.accountCalls)
	require.Len(t, wallet.sent, 1)

	tx := wallet.sent[0]
	require.Equal(t, signer, tx.From)
	require.Equal(t, common.HexToAddress(testContract), tx.To)
	require.Equal(t, authContext, tx.AuthContext)
	require.Equal(t, chain.ABI().Methods[chain.FnLikePost].ID, tx.Data[:4])
}

func TestExecuteStandardPathWhenOutOfScope(t *testing.T) {
	t.Parallel()

	wallet := &fakeWallet{}
	e := newTestEngine(t, &fakeLifecycle{permission: activePermission()}, wallet)

	_, err := e.Execute(t.Context(), core.CreatePostAction("ipfs://cid", 0))
	require.NoError(t, err)

	require.Equal(t, 1, wallet.accountCalls)
	require.Len(t, wallet.sent, 1)
	require.Equal(t, interactive, wallet.sent[0].From)
	require.Empty(t, wallet.sent[0].AuthContext)
}

func TestExecuteStandardPathWithoutPermission(t *testing.T) {
	t.Parallel()

	wallet := &fakeWallet{}
	e := newTestEngine(t, &fakeLifecycle{}, wallet)

	_, err := e.Execute(t.Context(), core.LikeAction(1))
	require.NoError(t, err)
	require.Equal(t, 1, wallet.accountCalls)
}

func TestExecuteUserRejected(t *testing.T) {
	t.Parallel()

	wallet := &fakeWallet{sendErr: core.ErrUserRejected}
	e := newTestEngine(t, &fakeLifecycle{permission: activePermission()}, wallet)

	_, err := e.Execute(t.Context(), core.LikeAction(1))
	require.ErrorIs(t, err, core.ErrUserRejected)
	require.NotErrorIs(t, err, core.ErrExecutionFailed)
}

func TestExecuteFailureKeepsReason(t *testing.T) {
	t.Parallel()

	wallet := &fakeWallet{sendErr: errors.New("execution reverted: campaign exhausted")}
	e := newTestEngine(t, &fakeLifecycle{}, wallet)

	_, err := e.Execute(t.Context(), core.LikeAction(1))
	require.ErrorIs(t, err, core.ErrExecutionFailed)
	require.ErrorContains(t, err, "campaign exhausted")
}

func TestExecuteUnsupportedActionNeverSubmits(t *testing.T) {
	t.Parallel()

	wallet := &fakeWallet{}
	e := newTestEngine(t, &fakeLifecycle{}, wallet)

	_, err := e.Execute(t.Context(), core.Action{Kind: "follow"})
	require.ErrorIs(t, err, core.ErrUnsupportedAction)
	require.Zero(t, wallet.accountCalls)
	require.Empty(t, wallet.sent)
}
