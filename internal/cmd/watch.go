package cmd

import (
	"context"

	"engagelayer/internal/archive"
	"engagelayer/internal/chain"
	"engagelayer/internal/cmd/flags"
	"engagelayer/internal/feed"
	"engagelayer/internal/metrics"
	inats "engagelayer/internal/nats"
	"engagelayer/internal/watching"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"
)

var watchCmd = &cli.Command{
	Name:  "watch",
	Usage: "Scan the feed periodically, publish new posts to NATS JetStream",
	Flags: append(flags.Chain(),
		flags.NATSUrl,
		flags.InitNATS,
		flags.DatabaseURL,
		flags.MetricsAddr,
		flags.ScanInterval,
	),
	Action: func(ctx context.Context, c *cli.Command) error {
		reader := &chain.Reader{}
		sync := &feed.Synchronizer{Reader: reader}
		n := &inats.NATS{}
		arch := &archive.Archive{}
		w := &watching.Watcher{Feed: sync, NATS: n, Archive: arch}

		return run(ctx, c,
			pal.Provide(reader),
			pal.Provide(sync),
			pal.Provide(n),
			pal.Provide(arch),
			pal.Provide(w),
			pal.Provide(&metrics.Server{}),
		)
	},
}
