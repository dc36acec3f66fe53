package permission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"engagelayer/internal/core"
	inats "engagelayer/internal/nats"

	"github.com/nats-io/nats.go/jetstream"
)

const kvKey = "permission"

// KVStore keeps the permission record in the JetStream KV bucket, for
// deployments where the client runs next to a NATS server anyway (the watch
// daemon). Same whole-record replace semantics as the file store,
// last-writer-wins.
type KVStore struct {
	Logger *slog.Logger
	NATS   *inats.NATS
}

func (s *KVStore) Init(context.Context) error {
	s.Logger = s.Logger.With("component", "permission.KVStore")
	return nil
}

func (s *KVStore) Load(ctx context.Context) (*core.Permission, error) {
	entry, err := s.NATS.KV.Get(ctx, kvKey)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, core.ErrNoPermission
		}
		return nil, err
	}

	var p core.Permission
	if err := json.Unmarshal(entry.Value(), &p); err != nil {
		return nil, fmt.Errorf("corrupt permission record: %w", err)
	}
	return &p, nil
}

func (s *KVStore) Save(ctx context.Context, p *core.Permission) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}

	_, err = s.NATS.KV.Put(ctx, kvKey, raw)
	return err
}

func (s *KVStore) Clear(ctx context.Context) error {
	err := s.NATS.KV.Delete(ctx, kvKey)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil
	}
	return err
}
