package permission

import (
	"io"
	"log/slog"
	"math/big"
	"path/filepath"
	"testing"

	"engagelayer/internal/config"
	"engagelayer/internal/core"

	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()

	s := &FileStore{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config: &config.Config{
			StatePath: filepath.Join(t.TempDir(), "permission.json"),
		},
	}
	require.NoError(t, s.Init(t.Context()))
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)

	_, err := s.Load(t.Context())
	require.ErrorIs(t, err, core.ErrNoPermission)

	p := &core.Permission{
		Scope:       []core.ActionKind{core.KindLike},
		SpendingCap: big.NewInt(2e16),
		Period:      86400,
		GrantedAt:   1_700_000_000_000,
		Expiry:      1_700_086_400_000,
		Signer:      testSigner,
		Context:     testContext,
		PendingActions: []core.PendingAction{
			{Action: core.LikeAction(3), QueuedAt: 1_700_000_001_000},
		},
	}
	require.NoError(t, s.Save(t.Context(), p))

	got, err := s.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, p, got)
}

func TestFileStoreSaveReplacesWholesale(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)

	first := &core.Permission{Scope: DefaultScope, SpendingCap: big.NewInt(1), Expiry: 2}
	require.NoError(t, s.Save(t.Context(), first))

	second := &core.Permission{Scope: []core.ActionKind{core.KindVote}, SpendingCap: big.NewInt(9), Expiry: 5}
	require.NoError(t, s.Save(t.Context(), second))

	got, err := s.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, second, got)
}

func TestFileStoreClearIsIdempotent(t *testing.T) {
	t.Parallel()

	s := newFileStore(t)

	require.NoError(t, s.Save(t.Context(), &core.Permission{Scope: DefaultScope, SpendingCap: big.NewInt(1)}))
	require.NoError(t, s.Clear(t.Context()))
	require.NoError(t, s.Clear(t.Context()))

	_, err := s.Load(t.Context())
	require.ErrorIs(t, err, core.ErrNoPermission)
}
