package cmd

import (
	"context"

	"engagelayer/internal/cmd/flags"
	"engagelayer/internal/core"
	"engagelayer/pkg/ethunit"

	"github.com/urfave/cli/v3"
)

var postCmd = &cli.Command{
	Name:  "post",
	Usage: "Create a post",
	Flags: append(flags.Wallet(),
		&cli.StringFlag{Name: "content", Usage: "Post content or content URI", Required: true},
		&cli.UintFlag{Name: "campaign", Usage: "Campaign id to post under, 0 for none"},
	),
	Action: func(ctx context.Context, c *cli.Command) error {
		return runAction(ctx, c,
			core.CreatePostAction(c.String("content"), uint64(c.Uint("campaign"))))
	},
}

var pollCmd = &cli.Command{
	Name:  "poll",
	Usage: "Create a poll",
	Flags: append(flags.Wallet(),
		&cli.StringFlag{Name: "content", Usage: "Poll question or content URI", Required: true},
		&cli.StringSliceFlag{Name: "option", Usage: "Poll option, repeat at least twice", Required: true},
		&cli.UintFlag{Name: "campaign", Usage: "Campaign id to post under, 0 for none"},
	),
	Action: func(ctx context.Context, c *cli.Command) error {
		return runAction(ctx, c,
			core.CreatePollAction(c.String("content"), uint64(c.Uint("campaign")), c.StringSlice("option")))
	},
}

var campaignCmd = &cli.Command{
	Name:  "campaign",
	Usage: "Create a sponsored campaign, funding it with the budget",
	Flags: append(flags.Wallet(),
		&cli.StringFlag{Name: "reward", Usage: "Reward per action in ether", Required: true},
		&cli.StringFlag{Name: "budget", Usage: "Total budget in ether, sent as call value", Required: true},
	),
	Action: func(ctx context.Context, c *cli.Command) error {
		reward, err := ethunit.ParseEther(c.String("reward"))
		if err != nil {
			return err
		}
		budget, err := ethunit.ParseEther(c.String("budget"))
		if err != nil {
			return err
		}
		return runAction(ctx, c, core.CreateCampaignAction(reward, budget))
	},
}
