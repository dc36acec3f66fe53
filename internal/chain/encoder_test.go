package chain_test

import (
	"math/big"
	"testing"

	"engagelayer/internal/chain"
	"engagelayer/internal/core"

	"github.com/stretchr/testify/require"
)

func TestEncodeActionSelectors(t *testing.T) {
	t.Parallel()

	reward := big.NewInt(1e15)
	budget := big.NewInt(1e16)

	cases := []struct {
		action core.Action
		fn     string
	}{
		{core.LikeAction(3), chain.FnLikePost},
		{core.VoteAction(3, 1), chain.FnVoteOnPost},
		{core.CreatePostAction("ipfs://cid", 0), chain.FnCreatePost},
		{core.CreatePollAction("ipfs://cid", 0, []string{"yes", "no"}), chain.FnCreatePoll},
		{core.CreateCampaignAction(reward, budget), chain.FnCreateCampaign},
		{core.RedeemPointsAction(10), chain.FnRedeemPoints},
	}

	for _, tc := range cases {
		call, err := chain.EncodeAction(tc.action)
		require.NoError(t, err, tc.fn)
		require.Equal(t, tc.fn, call.Function)

		method := chain.ABI().Methods[tc.fn]
		require.Equal(t, method.ID, call.Data[:4], tc.fn)

		// Arguments must decode back to what went in.
		_, err = method.Inputs.Unpack(call.Data[4:])
		require.NoError(t, err, tc.fn)
	}
}

func TestEncodeActionVoteArguments(t *testing.T) {
	t.Parallel()

	call, err := chain.EncodeAction(core.VoteAction(7, 2))
	require.NoError(t, err)

	values, err := chain.ABI().Methods[chain.FnVoteOnPost].Inputs.Unpack(call.Data[4:])
	require.NoError(t, err)
	require.Len(t, values, 2)
	require.Zero(t, big.NewInt(7).Cmp(values[0].(*big.Int)))
	require.Equal(t, uint8(2), values[1].(uint8))
}

func TestEncodeActionCampaignValue(t *testing.T) {
	t.Parallel()

	reward := big.NewInt(1e15)
	budget := big.NewInt(2e16)

	call, err := chain.EncodeAction(core.CreateCampaignAction(reward, budget))
	require.NoError(t, err)
	// The budget rides as call value, not as an argument.
	require.Zero(t, budget.Cmp(call.Value))

	values, err := chain.ABI().Methods[chain.FnCreateCampaign].Inputs.Unpack(call.Data[4:])
	require.NoError(t, err)
	require.Zero(t, reward.Cmp(values[0].(*big.Int)))
}

func TestEncodeActionValidation(t *testing.T) {
	t.Parallel()

	cases := []core.Action{
		core.CreatePostAction("", 0),
		core.CreatePollAction("ipfs://cid", 0, []string{"only one"}),
		core.CreateCampaignAction(big.NewInt(0), big.NewInt(1)),
		core.CreateCampaignAction(big.NewInt(10), big.NewInt(9)),
		core.RedeemPointsAction(0),
	}

	for _, a := range cases {
		_, err := chain.EncodeAction(a)
		require.ErrorIs(t, err, chain.ErrInvalidArguments, string(a.Kind))
	}
}

func TestEncodeActionUnsupportedKind(t *testing.T) {
	t.Parallel()

	_, err := chain.EncodeAction(core.Action{Kind: "follow"})
	require.ErrorIs(t, err, core.ErrUnsupportedAction)
}
