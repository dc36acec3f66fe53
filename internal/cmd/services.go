package cmd

import (
	"engagelayer/internal/chain"
	"engagelayer/internal/core"
	"engagelayer/internal/engine"
	inats "engagelayer/internal/nats"
	"engagelayer/internal/permission"
	"engagelayer/internal/wallet"

	"github.com/zhulik/pal"
)

// storeServices picks the permission store backend: the NATS KV bucket when a
// NATS URL is configured, the local state file otherwise.
func storeServices(natsURL string) (core.PermissionStore, []pal.ServiceDef) {
	if natsURL == "" {
		fs := &permission.FileStore{}
		return fs, []pal.ServiceDef{pal.Provide(fs)}
	}

	n := &inats.NATS{}
	kv := &permission.KVStore{NATS: n}
	return kv, []pal.ServiceDef{pal.Provide(n), pal.Provide(kv)}
}

// actionServices is the wallet-store-manager-engine chain behind every
// state-changing command. Interface-typed fields are wired here, at
// construction; pal fills in loggers and config.
type actionServices struct {
	Wallet  *wallet.Provider
	Manager *permission.Manager
	Engine  *engine.Engine
	Reader  *chain.Reader

	defs []pal.ServiceDef
}

func newActionServices(natsURL string) *actionServices {
	wal := &wallet.Provider{}
	store, defs := storeServices(natsURL)
	mgr := &permission.Manager{Store: store, Wallet: wal}
	eng := &engine.Engine{Lifecycle: mgr, Wallet: wal}

	return &actionServices{
		Wallet:  wal,
		Manager: mgr,
		Engine:  eng,
		defs:    append(defs, pal.Provide(wal), pal.Provide(mgr), pal.Provide(eng)),
	}
}

// withReader adds the contract read client for commands that also consume
// chain state.
func (s *actionServices) withReader() *actionServices {
	s.Reader = &chain.Reader{}
	s.defs = append(s.defs, pal.Provide(s.Reader))
	return s
}

func (s *actionServices) services(extra ...pal.ServiceDef) []pal.ServiceDef {
	return append(s.defs, extra...)
}
