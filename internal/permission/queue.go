package permission

import (
	"context"
	"errors"

	"engagelayer/internal/core"
)

// Queue appends an action to the active permission's pending queue. With no
// active permission the call is inert, logged and nothing else: queuing
// without permission is never an error. FIFO order is the only guarantee;
// entries are never reordered or deduplicated.
func (m *Manager) Queue(ctx context.Context, action core.Action) error {
	p, err := m.Current(ctx)
	if errors.Is(err, core.ErrNoPermission) {
		m.Logger.Info("no active permission, dropping queued action", "kind", action.Kind)
		return nil
	}
	if err != nil {
		return err
	}

	p.PendingActions = append(p.PendingActions, core.PendingAction{
		Action:   action,
		QueuedAt: m.now().UnixMilli(),
	})

	return m.Store.Save(ctx, p)
}

// Pending returns the queued actions in queue order. Empty without an active
// permission.
func (m *Manager) Pending(ctx context.Context) ([]core.PendingAction, error) {
	p, err := m.Current(ctx)
	if errors.Is(err, core.ErrNoPermission) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.PendingActions, nil
}

// ClearQueue atomically empties the queue. It submits nothing: batched
// submission is a caller-orchestrated loop over Pending entries through the
// execution engine.
func (m *Manager) ClearQueue(ctx context.Context) error {
	p, err := m.Current(ctx)
	if errors.Is(err, core.ErrNoPermission) {
		return nil
	}
	if err != nil {
		return err
	}

	p.PendingActions = []core.PendingAction{}
	return m.Store.Save(ctx, p)
}
