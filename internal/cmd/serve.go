package cmd

import (
	"context"

	"engagelayer/internal/api"
	"engagelayer/internal/cmd/flags"
	"engagelayer/internal/feed"
	"engagelayer/internal/metrics"
	"engagelayer/internal/points"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"
)

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "Serve read-only JSON views of the feed, points and permission",
	Flags: append(flags.Wallet(),
		flags.APIAddr,
		flags.MetricsAddr,
	),
	Action: func(ctx context.Context, c *cli.Command) error {
		s := newActionServices(c.String("nats-url")).withReader()
		sync := &feed.Synchronizer{Reader: s.Reader}
		view := &points.View{Reader: s.Reader, Engine: s.Engine}
		server := &api.Server{Feed: sync, Points: view, Permission: s.Manager}

		return run(ctx, c, s.services(
			pal.Provide(sync),
			pal.Provide(view),
			pal.Provide(server),
			pal.Provide(&metrics.Server{}),
		)...)
	},
}
