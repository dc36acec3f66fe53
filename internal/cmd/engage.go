package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"engagelayer/internal/cmd/flags"
	"engagelayer/internal/config"
	"engagelayer/internal/core"
	"engagelayer/internal/engine"
	"engagelayer/internal/points"
	"engagelayer/internal/wallet"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"
)

var likeCmd = &cli.Command{
	Name:  "like",
	Usage: "Like a post",
	Flags: append(flags.Wallet(),
		&cli.UintFlag{Name: "post", Usage: "Post id", Required: true},
	),
	Action: func(ctx context.Context, c *cli.Command) error {
		return runAction(ctx, c, core.LikeAction(uint64(c.Uint("post"))))
	},
}

var voteCmd = &cli.Command{
	Name:  "vote",
	Usage: "Vote on a poll option",
	Flags: append(flags.Wallet(),
		&cli.UintFlag{Name: "post", Usage: "Post id", Required: true},
		&cli.UintFlag{Name: "option", Usage: "Option index", Required: true},
	),
	Action: func(ctx context.Context, c *cli.Command) error {
		return runAction(ctx, c,
			core.VoteAction(uint64(c.Uint("post")), uint8(c.Uint("option"))))
	},
}

var redeemCmd = &cli.Command{
	Name:  "redeem",
	Usage: "Redeem accumulated points",
	Flags: append(flags.Wallet(),
		flags.Address,
		&cli.UintFlag{Name: "amount", Usage: "Points to redeem", Required: true},
	),
	Action: func(ctx context.Context, c *cli.Command) error {
		s := newActionServices(c.String("nats-url")).withReader()
		view := &points.View{Reader: s.Reader, Engine: s.Engine}
		r := &redeemer{
			View:   view,
			Wallet: s.Wallet,
			amount: uint64(c.Uint("amount")),
		}
		return run(ctx, c, s.services(pal.Provide(view), pal.Provide(r))...)
	},
}

// runAction assembles the execution chain and submits one action.
func runAction(ctx context.Context, c *cli.Command, action core.Action) error {
	s := newActionServices(c.String("nats-url"))
	r := &actionRunner{Engine: s.Engine, action: action}
	return run(ctx, c, s.services(pal.Provide(r))...)
}

type actionRunner struct {
	Logger *slog.Logger
	Engine *engine.Engine

	action core.Action
}

func (r *actionRunner) Run(ctx context.Context) error {
	hash, err := r.Engine.Execute(ctx, r.action)
	if err != nil {
		return err
	}
	fmt.Printf("%s submitted: %s\n", r.action.Kind, hash.Hex())
	return nil
}

type redeemer struct {
	Logger *slog.Logger
	Config *config.Config
	View   *points.View
	Wallet *wallet.Provider

	amount uint64
}

func (r *redeemer) Run(ctx context.Context) error {
	addr, err := r.viewer(ctx)
	if err != nil {
		return err
	}

	hash, err := r.View.Redeem(ctx, addr, r.amount)
	if err != nil {
		return err
	}
	fmt.Printf("redeemed %d points: %s\n", r.amount, hash.Hex())
	return nil
}

func (r *redeemer) viewer(ctx context.Context) (common.Address, error) {
	if addr, ok := r.Config.Viewer(); ok {
		return addr, nil
	}

	accounts, err := r.Wallet.RequestAccounts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	return accounts[0], nil
}
