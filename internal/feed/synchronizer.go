// Package feed reconstructs the ordered post/poll view from contract reads.
package feed

import (
	"context"
	"log/slog"
	"math/big"

	"engagelayer/internal/core"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"
)

var (
	scansTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "engagelayer_feed_scans_total",
		Help: "The total number of full feed scans.",
	})

	idsScanned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "engagelayer_feed_ids_scanned_total",
		Help: "Scanned post ids by result.",
	}, []string{"result"})
)

// Synchronizer performs the full read-then-expand scan. It is O(N) contract
// reads per refresh with no incremental mode; observing new posts means
// re-scanning.
type Synchronizer struct {
	Logger *slog.Logger
	Reader core.ContractReader
}

func (s *Synchronizer) Init(context.Context) error {
	s.Logger = s.Logger.With("component", "feed.Synchronizer")
	return nil
}

// Sync scans ids nextPostId-1 .. 1 descending and returns the feed newest
// first. Ids with a zero author are never-allocated (or deleted) slots and
// are skipped; an id whose read fails is skipped too, so one corrupt id
// cannot blank the whole feed.
func (s *Synchronizer) Sync(ctx context.Context) ([]core.Post, error) {
	return s.sync(ctx, nil)
}

// SyncFor is Sync plus viewer-relative liked/voted flags for addr.
func (s *Synchronizer) SyncFor(ctx context.Context, addr common.Address) ([]core.Post, error) {
	return s.sync(ctx, &addr)
}

func (s *Synchronizer) sync(ctx context.Context, viewer *common.Address) ([]core.Post, error) {
	scansTotal.Inc()

	next, err := s.Reader.NextPostID(ctx)
	if err != nil {
		return nil, err
	}
	if next <= 1 {
		return []core.Post{}, nil
	}

	posts := make([]core.Post, 0, next-1)
	for id := next - 1; id >= 1; id-- {
		post, err := s.Reader.Post(ctx, id)
		if err != nil {
			s.Logger.Warn("skipping unreadable post", "id", id, "error", err)
			idsScanned.WithLabelValues("error").Inc()
			continue
		}
		if post.Author == (common.Address{}) {
			idsScanned.WithLabelValues("unallocated").Inc()
			continue
		}

		s.expand(ctx, &post)
		if viewer != nil {
			s.viewerFlags(ctx, &post, *viewer)
		}

		idsScanned.WithLabelValues("ok").Inc()
		posts = append(posts, post)
	}

	return posts, nil
}

// expand resolves the poll sub-state. A failed probe is classified as "not a
// poll" (the contract reverts for plain posts on some deployments); the
// error is still logged so a transient RPC fault stays visible.
func (s *Synchronizer) expand(ctx context.Context, post *core.Post) {
	options, err := s.Reader.PollOptions(ctx, post.ID)
	if err != nil {
		s.Logger.Warn("poll probe failed, treating as plain post", "id", post.ID, "error", err)
		return
	}
	if len(options) == 0 {
		return
	}

	post.Options = options
	post.TotalVotes = lo.Reduce(options, func(sum *big.Int, o core.PollOption, _ int) *big.Int {
		if o.Votes == nil {
			return sum
		}
		return sum.Add(sum, o.Votes)
	}, new(big.Int))
}

func (s *Synchronizer) viewerFlags(ctx context.Context, post *core.Post, addr common.Address) {
	liked, err := s.Reader.HasLiked(ctx, post.ID, addr)
	if err == nil {
		post.Liked = liked
	}
	if post.IsPoll() {
		voted, err := s.Reader.HasVoted(ctx, post.ID, addr)
		if err == nil {
			post.Voted = voted
		}
	}
}
