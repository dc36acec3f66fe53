package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"engagelayer/internal/chain"
	"engagelayer/internal/cmd/flags"
	"engagelayer/internal/config"
	"engagelayer/internal/content"
	"engagelayer/internal/core"
	"engagelayer/internal/feed"
	"engagelayer/internal/points"
	"engagelayer/internal/wallet"

	"github.com/k0kubun/pp"
	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"
)

var feedCmd = &cli.Command{
	Name:  "feed",
	Usage: "Scan the contract and print the feed, newest first",
	Flags: append(flags.Chain(),
		flags.Address,
		flags.IPFSGateway,
		&cli.BoolFlag{Name: "resolve", Usage: "Fetch content behind ipfs:// and http(s) URIs"},
		&cli.BoolFlag{Name: "debug", Usage: "Dump the raw feed structures"},
	),
	Action: func(ctx context.Context, c *cli.Command) error {
		reader := &chain.Reader{}
		sync := &feed.Synchronizer{Reader: reader}
		resolver := &content.Resolver{}
		r := &feedRunner{
			Feed:     sync,
			Resolver: resolver,
			resolve:  c.Bool("resolve"),
			debug:    c.Bool("debug"),
		}
		return run(ctx, c,
			pal.Provide(reader),
			pal.Provide(sync),
			pal.Provide(resolver),
			pal.Provide(r),
		)
	},
}

var pointsCmd = &cli.Command{
	Name:  "points",
	Usage: "Show the accumulated points of an address",
	Flags: append(flags.Wallet(), flags.Address),
	Action: func(ctx context.Context, c *cli.Command) error {
		s := newActionServices(c.String("nats-url")).withReader()
		view := &points.View{Reader: s.Reader, Engine: s.Engine}
		r := &pointsRunner{View: view, Wallet: s.Wallet}
		return run(ctx, c, s.services(pal.Provide(view), pal.Provide(r))...)
	},
}

type feedRunner struct {
	Logger   *slog.Logger
	Config   *config.Config
	Feed     *feed.Synchronizer
	Resolver *content.Resolver

	resolve bool
	debug   bool
}

func (r *feedRunner) Run(ctx context.Context) error {
	var (
		posts []core.Post
		err   error
	)
	if addr, ok := r.Config.Viewer(); ok {
		posts, err = r.Feed.SyncFor(ctx, addr)
	} else {
		posts, err = r.Feed.Sync(ctx)
	}
	if err != nil {
		return err
	}

	if r.resolve {
		for i := range posts {
			body, err := r.Resolver.Resolve(ctx, posts[i].Content)
			if err != nil {
				r.Logger.Warn("content resolution failed", "id", posts[i].ID, "error", err)
				continue
			}
			posts[i].Content = body
		}
	}

	if r.debug {
		pp.Println(posts)
		return nil
	}

	for _, p := range posts {
		r.print(p)
	}
	return nil
}

func (r *feedRunner) print(p core.Post) {
	fmt.Printf("#%d by %s", p.ID, p.Author)
	if p.Sponsored() {
		fmt.Printf(" [campaign %s]", p.CampaignID)
	}
	if p.Liked {
		fmt.Print(" [liked]")
	}
	if p.Voted {
		fmt.Print(" [voted]")
	}
	fmt.Printf("\n  %s\n  likes %s", p.Content, p.LikeCount)

	if !p.IsPoll() {
		fmt.Print("\n\n")
		return
	}

	fmt.Printf(", votes %s\n", p.TotalVotes)
	for i, o := range p.Options {
		fmt.Printf("    %d) %s - %s\n", i, o.Text, o.Votes)
	}
	fmt.Println()
}

type pointsRunner struct {
	Logger *slog.Logger
	Config *config.Config
	View   *points.View
	Wallet *wallet.Provider
}

func (r *pointsRunner) Run(ctx context.Context) error {
	addr, ok := r.Config.Viewer()
	if !ok {
		accounts, err := r.Wallet.RequestAccounts(ctx)
		if err != nil {
			return err
		}
		addr = accounts[0]
	}

	value, err := r.View.Refresh(ctx, addr)
	if err != nil {
		return err
	}

	fmt.Printf("%s has %s points\n", addr, value)
	return nil
}
