package chain

import (
	"errors"
	"fmt"
	"math/big"

	"engagelayer/internal/core"
)

// ErrInvalidArguments marks pre-flight validation failures. Nothing tagged
// with it ever reaches the network.
var ErrInvalidArguments = errors.New("invalid arguments")

// EncodedCall is a path-independent contract call descriptor: the same bytes
// are submitted on the permissioned and the standard route.
type EncodedCall struct {
	Function string
	Data     []byte
	// Value is the native amount attached to the call, in wei. Nil means
	// zero.
	Value *big.Int
}

// EncodeAction maps a logical action to its call descriptor. Unknown kinds
// fail with core.ErrUnsupportedAction.
func EncodeAction(a core.Action) (EncodedCall, error) {
	switch a.Kind {
	case core.KindLike:
		return pack(FnLikePost, nil, new(big.Int).SetUint64(a.PostID))

	case core.KindVote:
		return pack(FnVoteOnPost, nil, new(big.Int).SetUint64(a.PostID), a.OptionIndex)

	case core.KindCreatePost:
		if a.Content == "" {
			return EncodedCall{}, fmt.Errorf("%w: empty content", ErrInvalidArguments)
		}
		return pack(FnCreatePost, nil, a.Content, new(big.Int).SetUint64(a.CampaignID))

	case core.KindCreatePoll:
		if a.Content == "" {
			return EncodedCall{}, fmt.Errorf("%w: empty content", ErrInvalidArguments)
		}
		if len(a.Options) < 2 {
			return EncodedCall{}, fmt.Errorf("%w: a poll needs at least two options", ErrInvalidArguments)
		}
		return pack(FnCreatePoll, nil, a.Content, new(big.Int).SetUint64(a.CampaignID), a.Options)

	case core.KindCreateCampaign:
		if a.RewardWei == nil || a.RewardWei.Sign() <= 0 {
			return EncodedCall{}, fmt.Errorf("%w: reward per action must be positive", ErrInvalidArguments)
		}
		if a.BudgetWei == nil || a.BudgetWei.Cmp(a.RewardWei) < 0 {
			return EncodedCall{}, fmt.Errorf("%w: budget below reward per action", ErrInvalidArguments)
		}
		return pack(FnCreateCampaign, a.BudgetWei, a.RewardWei)

	case core.KindRedeemPoints:
		if a.Amount == 0 {
			return EncodedCall{}, fmt.Errorf("%w: redeem amount must be positive", ErrInvalidArguments)
		}
		return pack(FnRedeemPoints, nil, new(big.Int).SetUint64(a.Amount))

	default:
		return EncodedCall{}, fmt.Errorf("%w: %q", core.ErrUnsupportedAction, a.Kind)
	}
}

func pack(fn string, value *big.Int, args ...any) (EncodedCall, error) {
	data, err := contractABI.Pack(fn, args...)
	if err != nil {
		return EncodedCall{}, fmt.Errorf("%w: %s: %w", ErrInvalidArguments, fn, err)
	}
	return EncodedCall{Function: fn, Data: data, Value: value}, nil
}
