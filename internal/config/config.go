package config

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Config is populated from CLI flags (see internal/cmd/flags and
// pkg/clicfg).
type Config struct {
	RPCURL    string `flag:"rpc-url"`
	WalletURL string `flag:"wallet-url"`
	Contract  string `flag:"contract"`
	Address   string `flag:"address"`

	StatePath string `flag:"state-path"`

	NATSURL     string `flag:"nats-url"`
	NATSInit    bool   `flag:"nats-init"`
	DatabaseURL string `flag:"database-url"`

	IPFSGateway string `flag:"ipfs-gateway"`

	APIAddr      string        `flag:"api-addr"`
	MetricsAddr  string        `flag:"metrics-addr"`
	ScanInterval time.Duration `flag:"scan-interval"`

	LogLevel string `flag:"log-level"`
}

// EffectiveWalletURL falls back to the node RPC when no dedicated wallet
// endpoint is configured.
func (c *Config) EffectiveWalletURL() string {
	if c.WalletURL != "" {
		return c.WalletURL
	}
	return c.RPCURL
}

// ContractAddress validates and parses the configured contract address.
func (c *Config) ContractAddress() (common.Address, error) {
	if !common.IsHexAddress(c.Contract) {
		return common.Address{}, fmt.Errorf("invalid contract address: %q", c.Contract)
	}
	return common.HexToAddress(c.Contract), nil
}

// Viewer returns the configured viewer address, if any.
func (c *Config) Viewer() (common.Address, bool) {
	if !common.IsHexAddress(c.Address) {
		return common.Address{}, false
	}
	return common.HexToAddress(c.Address), true
}
