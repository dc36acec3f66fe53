package points_test

import (
	"context"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"engagelayer/internal/core"
	"engagelayer/internal/points"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var addr = common.HexToAddress("0x1111111111111111111111111111111111111111")

type fakeReader struct {
	points *big.Int
	reads  int
}

func (r *fakeReader) NextPostID(context.Context) (uint64, error) { return 0, nil }

func (r *fakeReader) Post(context.Context, uint64) (core.Post, error) {
	return core.Post{}, nil
}

func (r *fakeReader) PollOptions(context.Context, uint64) ([]core.PollOption, error) {
	return nil, nil
}

func (r *fakeReader) Points(context.Context, common.Address) (*big.Int, error) {
	r.reads++
	return r.points, nil
}

func (r *fakeReader) HasLiked(context.Context, uint64, common.Address) (bool, error) {
	return false, nil
}

func (r *fakeReader) HasVoted(context.Context, uint64, common.Address) (bool, error) {
	return false, nil
}

type fakeExecutor struct {
	executed []core.Action
}

func (e *fakeExecutor) Execute(_ context.Context, a core.Action) (common.Hash, error) {
	e.executed = append(e.executed, a)
	return common.HexToHash("0xabc1"), nil
}

func newView(t *testing.T, reader *fakeReader, executor *fakeExecutor) *points.View {
	t.Helper()

	v := &points.View{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Reader: reader,
		Engine: executor,
	}
	require.NoError(t, v.Init(t.Context()))
	return v
}

func TestPointsCachesLastRead(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{points: big.NewInt(42)}
	v := newView(t, reader, &fakeExecutor{})

	for range 3 {
		value, err := v.Points(t.Context(), addr)
		require.NoError(t, err)
		require.Zero(t, big.NewInt(42).Cmp(value))
	}
	require.Equal(t, 1, reader.reads)
}

func TestRedeemInsufficientPointsIsLocal(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{points: big.NewInt(10)}
	executor := &fakeExecutor{}
	v := newView(t, reader, executor)

	_, err := v.Refresh(t.Context(), addr)
	require.NoError(t, err)
	reads := reader.reads

	_, err = v.Redeem(t.Context(), addr, 11)
	require.ErrorIs(t, err, core.ErrInsufficientPoints)

	// Pre-flight only: no contract read, no submission.
	require.Equal(t, reads, reader.reads)
	require.Empty(t, executor.executed)
}

func TestRedeemSubmitsAndInvalidates(t *testing.T) {
	t.Parallel()

	reader := &fakeReader{points: big.NewInt(10)}
	executor := &fakeExecutor{}
	v := newView(t, reader, executor)

	_, err := v.Redeem(t.Context(), addr, 10)
	require.NoError(t, err)

	require.Len(t, executor.executed, 1)
	require.Equal(t, core.RedeemPointsAction(10), executor.executed[0])

	// The authoritative value is re-pulled after the submission.
	readsBefore := reader.reads
	_, err = v.Points(t.Context(), addr)
	require.NoError(t, err)
	require.Equal(t, readsBefore+1, reader.reads)
}
