package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"engagelayer/internal/cmd/flags"
	"engagelayer/internal/core"
	"engagelayer/internal/permission"
	"engagelayer/pkg/ethunit"

	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"
)

var permissionCmd = &cli.Command{
	Name:  "permission",
	Usage: "Manage the delegated engagement permission",
	Commands: []*cli.Command{
		permissionGrantCmd,
		permissionRevokeCmd,
		permissionStatusCmd,
	},
}

var permissionGrantCmd = &cli.Command{
	Name:  "grant",
	Usage: "Request a time-boxed, spending-capped permission from the wallet",
	Flags: append(flags.Wallet(),
		&cli.StringSliceFlag{
			Name:  "scope",
			Usage: "Action kinds to delegate, defaults to like and vote",
		},
		&cli.StringFlag{
			Name:  "cap",
			Usage: "Spending cap in ether",
			Value: "0.02",
		},
		&cli.DurationFlag{
			Name:  "period",
			Usage: "Permission window",
			Value: permission.DefaultPeriod,
		},
	),
	Action: func(ctx context.Context, c *cli.Command) error {
		spendingCap, err := ethunit.ParseEther(c.String("cap"))
		if err != nil {
			return err
		}

		scope := lo.Map(c.StringSlice("scope"), func(s string, _ int) core.ActionKind {
			return core.ActionKind(s)
		})

		s := newActionServices(c.String("nats-url"))
		g := &granter{
			Manager: s.Manager,
			scope:   scope,
			cap:     spendingCap,
			period:  c.Duration("period"),
		}
		return run(ctx, c, s.services(pal.Provide(g))...)
	},
}

var permissionRevokeCmd = &cli.Command{
	Name:  "revoke",
	Usage: "Revoke the active permission, if any",
	Flags: flags.Wallet(),
	Action: func(ctx context.Context, c *cli.Command) error {
		s := newActionServices(c.String("nats-url"))
		r := &revoker{Manager: s.Manager}
		return run(ctx, c, s.services(pal.Provide(r))...)
	},
}

var permissionStatusCmd = &cli.Command{
	Name:  "status",
	Usage: "Show the active permission and its pending queue",
	Flags: flags.Wallet(),
	Action: func(ctx context.Context, c *cli.Command) error {
		s := newActionServices(c.String("nats-url"))
		st := &status{Manager: s.Manager}
		return run(ctx, c, s.services(pal.Provide(st))...)
	},
}

type granter struct {
	Logger  *slog.Logger
	Manager *permission.Manager

	scope  []core.ActionKind
	cap    *big.Int
	period time.Duration
}

func (g *granter) Run(ctx context.Context) error {
	p, err := g.Manager.Grant(ctx, g.scope, g.cap, g.period)
	if err != nil {
		return err
	}

	fmt.Printf("granted to %s until %s, cap %s ETH, scope %v\n",
		p.Signer,
		time.UnixMilli(p.Expiry).Format(time.RFC3339),
		ethunit.FormatEther(p.SpendingCap),
		p.Scope,
	)
	return nil
}

type revoker struct {
	Logger  *slog.Logger
	Manager *permission.Manager
}

func (r *revoker) Run(ctx context.Context) error {
	if err := r.Manager.Revoke(ctx); err != nil {
		return err
	}
	fmt.Println("revoked")
	return nil
}

type status struct {
	Logger  *slog.Logger
	Manager *permission.Manager
}

func (s *status) Run(ctx context.Context) error {
	p, err := s.Manager.Current(ctx)
	if errors.Is(err, core.ErrNoPermission) {
		fmt.Println("no active permission")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("signer  %s\nscope   %v\ncap     %s ETH\nexpires %s\npending %d\n",
		p.Signer,
		p.Scope,
		ethunit.FormatEther(p.SpendingCap),
		time.UnixMilli(p.Expiry).Format(time.RFC3339),
		len(p.PendingActions),
	)
	return nil
}
