package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"engagelayer/internal/cmd/flags"
	"engagelayer/internal/core"
	"engagelayer/internal/engine"
	"engagelayer/internal/permission"
	"engagelayer/pkg/ethunit"

	"github.com/urfave/cli/v3"
	"github.com/zhulik/pal"
)

var batchCmd = &cli.Command{
	Name:  "batch",
	Usage: "Work with the pending-action queue of the active permission",
	Commands: []*cli.Command{
		batchQueueCmd,
		batchListCmd,
		batchFlushCmd,
		batchClearCmd,
	},
}

var batchQueueCmd = &cli.Command{
	Name:  "queue",
	Usage: "Append an action to the pending queue instead of submitting it",
	Flags: append(flags.Wallet(),
		&cli.StringFlag{Name: "kind", Usage: "Action kind", Required: true},
		&cli.UintFlag{Name: "post", Usage: "Post id, for like and vote"},
		&cli.UintFlag{Name: "option", Usage: "Option index, for vote"},
		&cli.StringFlag{Name: "content", Usage: "Content, for createPost and createPoll"},
		&cli.UintFlag{Name: "campaign", Usage: "Campaign id, for createPost and createPoll"},
		&cli.StringSliceFlag{Name: "poll-option", Usage: "Poll option, for createPoll"},
		&cli.StringFlag{Name: "reward", Usage: "Reward per action in ether, for createCampaign"},
		&cli.StringFlag{Name: "budget", Usage: "Budget in ether, for createCampaign"},
		&cli.UintFlag{Name: "amount", Usage: "Points, for redeemPoints"},
	),
	Action: func(ctx context.Context, c *cli.Command) error {
		action, err := actionFromFlags(c)
		if err != nil {
			return err
		}

		s := newActionServices(c.String("nats-url"))
		q := &queuer{Manager: s.Manager, action: action}
		return run(ctx, c, s.services(pal.Provide(q))...)
	},
}

var batchListCmd = &cli.Command{
	Name:  "list",
	Usage: "List the pending queue in submission order",
	Flags: flags.Wallet(),
	Action: func(ctx context.Context, c *cli.Command) error {
		s := newActionServices(c.String("nats-url"))
		l := &lister{Manager: s.Manager}
		return run(ctx, c, s.services(pal.Provide(l))...)
	},
}

var batchFlushCmd = &cli.Command{
	Name:  "flush",
	Usage: "Submit the pending queue through the execution engine, in order",
	Flags: flags.Wallet(),
	Action: func(ctx context.Context, c *cli.Command) error {
		s := newActionServices(c.String("nats-url"))
		f := &flusher{Manager: s.Manager, Engine: s.Engine}
		return run(ctx, c, s.services(pal.Provide(f))...)
	},
}

var batchClearCmd = &cli.Command{
	Name:  "clear",
	Usage: "Drop the pending queue without submitting anything",
	Flags: flags.Wallet(),
	Action: func(ctx context.Context, c *cli.Command) error {
		s := newActionServices(c.String("nats-url"))
		cl := &clearer{Manager: s.Manager}
		return run(ctx, c, s.services(pal.Provide(cl))...)
	},
}

func actionFromFlags(c *cli.Command) (core.Action, error) {
	switch kind := core.ActionKind(c.String("kind")); kind {
	case core.KindLike:
		return core.LikeAction(uint64(c.Uint("post"))), nil
	case core.KindVote:
		return core.VoteAction(uint64(c.Uint("post")), uint8(c.Uint("option"))), nil
	case core.KindCreatePost:
		return core.CreatePostAction(c.String("content"), uint64(c.Uint("campaign"))), nil
	case core.KindCreatePoll:
		return core.CreatePollAction(c.String("content"), uint64(c.Uint("campaign")), c.StringSlice("poll-option")), nil
	case core.KindCreateCampaign:
		reward, err := ethunit.ParseEther(c.String("reward"))
		if err != nil {
			return core.Action{}, err
		}
		budget, err := ethunit.ParseEther(c.String("budget"))
		if err != nil {
			return core.Action{}, err
		}
		return core.CreateCampaignAction(reward, budget), nil
	case core.KindRedeemPoints:
		return core.RedeemPointsAction(uint64(c.Uint("amount"))), nil
	default:
		return core.Action{}, fmt.Errorf("%w: %s", core.ErrUnsupportedAction, kind)
	}
}

type queuer struct {
	Logger  *slog.Logger
	Manager *permission.Manager

	action core.Action
}

func (q *queuer) Run(ctx context.Context) error {
	if err := q.Manager.Queue(ctx, q.action); err != nil {
		return err
	}

	pending, err := q.Manager.Pending(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("queued %s, %d pending\n", q.action.Kind, len(pending))
	return nil
}

type lister struct {
	Logger  *slog.Logger
	Manager *permission.Manager
}

func (l *lister) Run(ctx context.Context) error {
	pending, err := l.Manager.Pending(ctx)
	if err != nil {
		return err
	}

	if len(pending) == 0 {
		fmt.Println("queue is empty")
		return nil
	}

	for i, pa := range pending {
		fmt.Printf("%d. %s queued at %s\n",
			i+1, pa.Action.Kind, time.UnixMilli(pa.QueuedAt).Format(time.RFC3339))
	}
	return nil
}

type flusher struct {
	Logger  *slog.Logger
	Manager *permission.Manager
	Engine  *engine.Engine
}

// Run submits queued actions in FIFO order. The queue is claimed up front;
// on a wallet rejection the unsubmitted tail goes back (with fresh queuedAt
// stamps), so nothing already submitted can replay.
func (f *flusher) Run(ctx context.Context) error {
	pending, err := f.Manager.Pending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("queue is empty")
		return nil
	}

	if err := f.Manager.ClearQueue(ctx); err != nil {
		return err
	}

	for i, pa := range pending {
		hash, err := f.Engine.Execute(ctx, pa.Action)
		if err != nil {
			if errors.Is(err, core.ErrUserRejected) {
				f.requeue(ctx, pending[i:])
				return err
			}
			f.Logger.Error("queued action failed", "kind", pa.Action.Kind, "error", err)
			continue
		}
		fmt.Printf("%s submitted: %s\n", pa.Action.Kind, hash.Hex())
	}

	return nil
}

func (f *flusher) requeue(ctx context.Context, rest []core.PendingAction) {
	for _, pa := range rest {
		if err := f.Manager.Queue(ctx, pa.Action); err != nil {
			f.Logger.Error("requeue failed", "kind", pa.Action.Kind, "error", err)
		}
	}
}

type clearer struct {
	Logger  *slog.Logger
	Manager *permission.Manager
}

func (c *clearer) Run(ctx context.Context) error {
	if err := c.Manager.ClearQueue(ctx); err != nil {
		return err
	}
	fmt.Println("queue cleared")
	return nil
}
