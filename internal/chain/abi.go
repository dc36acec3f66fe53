// Package chain holds the contract surface: the embedded ABI, the action
// encoder and the read-only contract client.
package chain

import (
	_ "embed"
	"strings"

	"engagelayer/internal/core"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed abi.json
var abiJSON string

// Contract function names, as granted to the wallet and encoded on the wire.
const (
	FnCreateCampaign = "createCampaign"
	FnCreatePost     = "createPost"
	FnCreatePoll     = "createPoll"
	FnLikePost       = "likePost"
	FnVoteOnPost     = "voteOnPost"
	FnRedeemPoints   = "redeemPoints"
	FnPosts          = "posts"
	FnGetPollOptions = "getPollOptions"
	FnPoints         = "points"
	FnNextPostID     = "nextPostId"
	FnHasLiked       = "hasLiked"
	FnHasVoted       = "hasVoted"
)

var contractABI = func() abi.ABI {
	a, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(err)
	}
	return a
}()

// ABI exposes the parsed contract ABI, mostly for tests.
func ABI() abi.ABI {
	return contractABI
}

// FunctionFor maps a logical action kind to the contract function it
// encodes to, as named in grant requests.
func FunctionFor(kind core.ActionKind) (string, bool) {
	switch kind {
	case core.KindLike:
		return FnLikePost, true
	case core.KindVote:
		return FnVoteOnPost, true
	case core.KindCreatePost:
		return FnCreatePost, true
	case core.KindCreatePoll:
		return FnCreatePoll, true
	case core.KindCreateCampaign:
		return FnCreateCampaign, true
	case core.KindRedeemPoints:
		return FnRedeemPoints, true
	default:
		return "", false
	}
}
