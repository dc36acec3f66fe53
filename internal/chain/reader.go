package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"engagelayer/internal/config"
	"engagelayer/internal/core"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/samber/lo"
)

// Reader is the read-only contract client. All methods are single eth_call
// round trips against the latest block.
type Reader struct {
	Logger *slog.Logger
	Config *config.Config

	client   *ethclient.Client
	contract common.Address
}

func (r *Reader) Init(ctx context.Context) error {
	r.Logger = r.Logger.With("component", "chain.Reader")

	contract, err := r.Config.ContractAddress()
	if err != nil {
		return err
	}
	r.contract = contract

	client, err := ethclient.DialContext(ctx, r.Config.RPCURL)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", r.Config.RPCURL, err)
	}
	r.client = client

	return nil
}

func (r *Reader) HealthCheck(ctx context.Context) error {
	_, err := r.client.BlockNumber(ctx)
	return err
}

func (r *Reader) Shutdown(context.Context) error {
	r.client.Close()
	return nil
}

// Contract returns the configured contract address.
func (r *Reader) Contract() common.Address {
	return r.contract
}

func (r *Reader) call(ctx context.Context, fn string, args ...any) ([]byte, error) {
	data, err := contractABI.Pack(fn, args...)
	if err != nil {
		return nil, fmt.Errorf("packing %s: %w", fn, err)
	}

	out, err := r.client.CallContract(ctx, ethereum.CallMsg{
		To:   &r.contract,
		Data: data,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", fn, err)
	}
	return out, nil
}

// NextPostID reads the next id the contract will assign. The highest
// existing post is NextPostID()-1.
func (r *Reader) NextPostID(ctx context.Context) (uint64, error) {
	out, err := r.call(ctx, FnNextPostID)
	if err != nil {
		return 0, err
	}

	values, err := contractABI.Unpack(FnNextPostID, out)
	if err != nil {
		return 0, err
	}
	return values[0].(*big.Int).Uint64(), nil
}

// Post reads the core post tuple for id. Deallocated or never-assigned ids
// come back with a zero author; the caller decides what that means.
func (r *Reader) Post(ctx context.Context, id uint64) (core.Post, error) {
	out, err := r.call(ctx, FnPosts, new(big.Int).SetUint64(id))
	if err != nil {
		return core.Post{}, err
	}

	var tuple struct {
		Author     common.Address
		ContentUri string
		CampaignId *big.Int
		LikeCount  *big.Int
		TotalVotes *big.Int
		CreatedAt  *big.Int
	}
	if err := contractABI.UnpackIntoInterface(&tuple, FnPosts, out); err != nil {
		return core.Post{}, err
	}

	return core.Post{
		ID:         id,
		Author:     tuple.Author,
		Content:    tuple.ContentUri,
		CampaignID: tuple.CampaignId,
		LikeCount:  tuple.LikeCount,
		TotalVotes: tuple.TotalVotes,
		CreatedAt:  tuple.CreatedAt,
	}, nil
}

// PollOptions reads the option list for id. An empty list means the post is
// not a poll.
func (r *Reader) PollOptions(ctx context.Context, id uint64) ([]core.PollOption, error) {
	out, err := r.call(ctx, FnGetPollOptions, new(big.Int).SetUint64(id))
	if err != nil {
		return nil, err
	}

	var options []rawPollOption
	if err := contractABI.UnpackIntoInterface(&options, FnGetPollOptions, out); err != nil {
		return nil, err
	}

	return lo.Map(options, func(o rawPollOption, _ int) core.PollOption {
		return core.PollOption{Text: o.Text, Votes: o.VoteCount}
	}), nil
}

type rawPollOption struct {
	Text      string   `abi:"text"`
	VoteCount *big.Int `abi:"voteCount"`
}

// Points reads the accumulated points for addr.
func (r *Reader) Points(ctx context.Context, addr common.Address) (*big.Int, error) {
	out, err := r.call(ctx, FnPoints, addr)
	if err != nil {
		return nil, err
	}

	values, err := contractABI.Unpack(FnPoints, out)
	if err != nil {
		return nil, err
	}
	return values[0].(*big.Int), nil
}

// HasLiked reports whether addr already liked post id.
func (r *Reader) HasLiked(ctx context.Context, id uint64, addr common.Address) (bool, error) {
	return r.flag(ctx, FnHasLiked, id, addr)
}

// HasVoted reports whether addr already voted on post id.
func (r *Reader) HasVoted(ctx context.Context, id uint64, addr common.Address) (bool, error) {
	return r.flag(ctx, FnHasVoted, id, addr)
}

func (r *Reader) flag(ctx context.Context, fn string, id uint64, addr common.Address) (bool, error) {
	out, err := r.call(ctx, fn, new(big.Int).SetUint64(id), addr)
	if err != nil {
		return false, err
	}

	values, err := contractABI.Unpack(fn, out)
	if err != nil {
		return false, err
	}
	return values[0].(bool), nil
}
