// Package watching polls the contract for new posts and fans them out to
// JetStream, with an optional Postgres archive of everything scanned.
package watching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/zhulik/pips"
	"github.com/zhulik/pips/apply"

	"engagelayer/internal/archive"
	"engagelayer/internal/config"
	"engagelayer/internal/core"
	"engagelayer/internal/feed"
	inats "engagelayer/internal/nats"
	"engagelayer/pkg/retry"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"
)

const (
	cursorKey = "last_post_id"

	defaultInterval = 30 * time.Second

	publishAttempts = 3
	publishDelay    = time.Second
)

var postsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "engagelayer_posts_published_total",
	Help: "The total number of posts published to JetStream.",
}, []string{"kind"})

// Watcher runs the scan-diff-publish loop. The cursor (highest post id seen)
// lives in the NATS KV bucket so restarts do not re-announce old posts.
type Watcher struct {
	Logger *slog.Logger
	Config *config.Config

	Feed    *feed.Synchronizer
	NATS    *inats.NATS
	Archive *archive.Archive
}

func (w *Watcher) Init(context.Context) error {
	w.Logger = w.Logger.With("component", "watching.Watcher")
	return nil
}

func (w *Watcher) Run(ctx context.Context) error {
	interval := w.Config.ScanInterval
	if interval <= 0 {
		interval = defaultInterval
	}

	w.Logger.Info("Starting watcher", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := w.tick(ctx); err != nil {
			w.Logger.Error("scan failed", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *Watcher) tick(ctx context.Context) error {
	posts, err := w.Feed.Sync(ctx)
	if err != nil {
		return err
	}

	if w.Archive.Enabled() {
		if err := w.Archive.SavePosts(ctx, posts); err != nil {
			w.Logger.Error("archiving failed", "error", err)
		}
	}

	cursor, err := w.cursor(ctx)
	if err != nil {
		return err
	}

	fresh := lo.Filter(posts, func(p core.Post, _ int) bool {
		return p.ID > cursor
	})
	if len(fresh) == 0 {
		return nil
	}

	w.Logger.Info("new posts", "count", len(fresh), "cursor", cursor)

	if err := w.publish(ctx, fresh); err != nil {
		return err
	}

	highest := lo.MaxBy(fresh, func(a, b core.Post) bool {
		return a.ID > b.ID
	}).ID
	return w.saveCursor(ctx, highest)
}

func (w *Watcher) publish(ctx context.Context, posts []core.Post) error {
	ch := make(chan pips.D[core.Post])

	go func() {
		defer close(ch)
		for _, post := range posts {
			select {
			case <-ctx.Done():
				return
			case ch <- pips.NewD(post):
			}
		}
	}()

	return pips.New[core.Post, any]().
		Then(apply.Each(func(_ context.Context, post core.Post) error {
			kind := "post"
			if post.IsPoll() {
				kind = "poll"
			}
			postsPublished.WithLabelValues(kind).Inc()
			return nil
		})).
		Then(
			apply.Map(func(ctx context.Context, post core.Post) (any, error) {
				payload, err := json.Marshal(post)
				if err != nil {
					return nil, err
				}

				subject := fmt.Sprintf("%s.post.%d", inats.StreamName, post.ID)

				// Publishing is idempotent thanks to the msg id, so a
				// flaky broker connection is safe to retry.
				return nil, retry.Do(ctx, publishAttempts, publishDelay, func(ctx context.Context) error {
					_, err := w.NATS.JS.Publish(ctx, subject, payload,
						jetstream.WithMsgID(strconv.FormatUint(post.ID, 10)))
					return err
				})
			}),
		).
		Run(ctx, ch).
		Wait(ctx)
}

func (w *Watcher) cursor(ctx context.Context) (uint64, error) {
	entry, err := w.NATS.KV.Get(ctx, cursorKey)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(string(entry.Value()), 10, 64)
}

func (w *Watcher) saveCursor(ctx context.Context, id uint64) error {
	_, err := w.NATS.KV.Put(ctx, cursorKey, []byte(strconv.FormatUint(id, 10)))
	return err
}
