package permission

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"engagelayer/internal/core"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

var (
	testSigner  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testContext = json.RawMessage(`{"session":"opaque"}`)
)

type fakeStore struct {
	p *core.Permission
}

func (s *fakeStore) Load(context.Context) (*core.Permission, error) {
	if s.p == nil {
		return nil, core.ErrNoPermission
	}
	return s.p, nil
}

func (s *fakeStore) Save(_ context.Context, p *core.Permission) error {
	s.p = p
	return nil
}

func (s *fakeStore) Clear(context.Context) error {
	s.p = nil
	return nil
}

type fakeWallet struct {
	grantErr     error
	grants       []core.GrantRequest
	revoked      []json.RawMessage
	transactions []core.TxRequest
}

func (w *fakeWallet) RequestAccounts(context.Context) ([]common.Address, error) {
	return []common.Address{testSigner}, nil
}

func (w *fakeWallet) GrantPermissions(_ context.Context, req core.GrantRequest) (json.RawMessage, error) {
	if w.grantErr != nil {
		return nil, w.grantErr
	}
	w.grants = append(w.grants, req)
	return testContext, nil
}

func (w *fakeWallet) RevokePermissions(_ context.Context, authContext json.RawMessage) error {
	w.revoked = append(w.revoked, authContext)
	return nil
}

func (w *fakeWallet) SendTransaction(_ context.Context, tx core.TxRequest) (common.Hash, error) {
	w.transactions = append(w.transactions, tx)
	return common.Hash{0x01}, nil
}

func newTestManager(t *testing.T, at time.Time) (*Manager, *fakeStore, *fakeWallet, *time.Time) {
	t.Helper()

	store := &fakeStore{}
	wallet := &fakeWallet{}
	now := at

	m := &Manager{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:  store,
		Wallet: wallet,
		now:    func() time.Time { return now },
	}
	require.NoError(t, m.Init(t.Context()))

	return m, store, wallet, &now
}

func TestGrantThenCheck(t *testing.T) {
	t.Parallel()

	t0 := time.UnixMilli(1_700_000_000_000)
	m, store, wallet, _ := newTestManager(t, t0)

	p, err := m.Grant(t.Context(), nil, big.NewInt(2e16), 0)
	require.NoError(t, err)

	// Defaults: like+vote scope, 24h window.
	require.Equal(t, DefaultScope, p.Scope)
	require.Equal(t, t0.UnixMilli(), p.GrantedAt)
	require.Equal(t, t0.Add(24*time.Hour).UnixMilli(), p.Expiry)
	require.Equal(t, testSigner, p.Signer)
	require.Equal(t, testContext, p.Context)
	require.Empty(t, p.PendingActions)
	require.NotNil(t, store.p)

	require.Len(t, wallet.grants, 1)
	require.Equal(t, []string{"likePost", "voteOnPost"}, wallet.grants[0].AllowedFunctions)

	ok, err := m.Check(t.Context())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestGrantReplacesPriorRecord(t *testing.T) {
	t.Parallel()

	m, store, _, _ := newTestManager(t, time.UnixMilli(1_700_000_000_000))

	_, err := m.Grant(t.Context(), nil, big.NewInt(1), 0)
	require.NoError(t, err)
	require.NoError(t, m.Queue(t.Context(), core.LikeAction(1)))

	// A second grant replaces the record wholesale, queue included.
	p, err := m.Grant(t.Context(), []core.ActionKind{core.KindVote}, big.NewInt(2), time.Hour)
	require.NoError(t, err)
	require.Empty(t, p.PendingActions)
	require.Equal(t, []core.ActionKind{core.KindVote}, store.p.Scope)
}

func TestCheckExpiryBoundary(t *testing.T) {
	t.Parallel()

	t0 := time.UnixMilli(1_700_000_000_000)
	m, store, _, now := newTestManager(t, t0)

	_, err := m.Grant(t.Context(), nil, big.NewInt(1), 86400*time.Second)
	require.NoError(t, err)

	*now = t0.Add(86_399_000 * time.Millisecond)
	ok, err := m.Check(t.Context())
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, store.p)

	*now = t0.Add(86_400_001 * time.Millisecond)
	ok, err = m.Check(t.Context())
	require.NoError(t, err)
	require.False(t, ok)
	// Lazy expiry clears storage as a side effect.
	require.Nil(t, store.p)
}

func TestGrantDenied(t *testing.T) {
	t.Parallel()

	m, store, wallet, _ := newTestManager(t, time.UnixMilli(1_700_000_000_000))
	wallet.grantErr = core.ErrPermissionDenied

	_, err := m.Grant(t.Context(), nil, big.NewInt(1), 0)
	require.ErrorIs(t, err, core.ErrPermissionDenied)
	require.Nil(t, store.p)
}

func TestRevokeIsIdempotent(t *testing.T) {
	t.Parallel()

	m, store, wallet, _ := newTestManager(t, time.UnixMilli(1_700_000_000_000))

	_, err := m.Grant(t.Context(), nil, big.NewInt(1), 0)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(t.Context()))
	require.Nil(t, store.p)

	// Second revoke: same observable state, no second wallet call.
	require.NoError(t, m.Revoke(t.Context()))
	require.Nil(t, store.p)
	require.Len(t, wallet.revoked, 1)
	require.Equal(t, testContext, wallet.revoked[0])
}

func TestAllowsChecksScope(t *testing.T) {
	t.Parallel()

	m, _, _, _ := newTestManager(t, time.UnixMilli(1_700_000_000_000))

	_, err := m.Grant(t.Context(), nil, big.NewInt(1), 0)
	require.NoError(t, err)

	p, ok, err := m.Allows(t.Context(), core.KindVote)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, p)

	_, ok, err = m.Allows(t.Context(), core.KindCreatePost)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestQueueKeepsFIFOOrder(t *testing.T) {
	t.Parallel()

	m, _, _, _ := newTestManager(t, time.UnixMilli(1_700_000_000_000))

	_, err := m.Grant(t.Context(), nil, big.NewInt(1), 0)
	require.NoError(t, err)

	queued := []core.Action{
		core.LikeAction(3),
		core.VoteAction(2, 1),
		core.LikeAction(3), // duplicates are kept, never deduplicated
		core.LikeAction(1),
	}
	for _, a := range queued {
		require.NoError(t, m.Queue(t.Context(), a))
	}

	pending, err := m.Pending(t.Context())
	require.NoError(t, err)
	require.Equal(t, queued, lo.Map(pending, func(p core.PendingAction, _ int) core.Action {
		return p.Action
	}))
}

func TestQueueWithoutPermissionIsInert(t *testing.T) {
	t.Parallel()

	m, store, _, _ := newTestManager(t, time.UnixMilli(1_700_000_000_000))

	require.NoError(t, m.Queue(t.Context(), core.LikeAction(1)))
	require.Nil(t, store.p)

	pending, err := m.Pending(t.Context())
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestClearQueue(t *testing.T) {
	t.Parallel()

	m, store, _, _ := newTestManager(t, time.UnixMilli(1_700_000_000_000))

	_, err := m.Grant(t.Context(), nil, big.NewInt(1), 0)
	require.NoError(t, err)
	require.NoError(t, m.Queue(t.Context(), core.LikeAction(1)))

	require.NoError(t, m.ClearQueue(t.Context()))

	pending, err := m.Pending(t.Context())
	require.NoError(t, err)
	require.Empty(t, pending)
	// The permission itself survives a queue clear.
	require.NotNil(t, store.p)
}
