package flags

import (
	"fmt"
	"slices"
	"time"

	"github.com/urfave/cli/v3"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

var RPCURL = &cli.StringFlag{
	Name:    "rpc-url",
	Aliases: []string{"r"},
	Usage:   "JSON-RPC endpoint of the chain node",
	Value:   "http://localhost:8545",
	Sources: cli.EnvVars("RPC_URL"),
}

var WalletURL = &cli.StringFlag{
	Name:    "wallet-url",
	Usage:   "JSON-RPC endpoint of the wallet provider, defaults to --rpc-url",
	Sources: cli.EnvVars("WALLET_URL"),
}

var Contract = &cli.StringFlag{
	Name:     "contract",
	Aliases:  []string{"c"},
	Usage:    "Address of the engage contract",
	Required: true,
	Sources:  cli.EnvVars("CONTRACT_ADDRESS"),
}

var Address = &cli.StringFlag{
	Name:    "address",
	Aliases: []string{"a"},
	Usage:   "Viewer address for liked/voted flags and the points view",
	Sources: cli.EnvVars("VIEWER_ADDRESS"),
}

var StatePath = &cli.StringFlag{
	Name:    "state-path",
	Usage:   "Path of the permission state file",
	Sources: cli.EnvVars("STATE_PATH"),
}

var NATSUrl = &cli.StringFlag{
	Name:    "nats-url",
	Aliases: []string{"n"},
	Usage:   "The URL of the NATS server; when set, permission state moves to the KV bucket",
	Sources: cli.EnvVars("NATS_URL"),
}

var InitNATS = &cli.BoolFlag{
	Name:        "nats-init",
	Aliases:     []string{"i"},
	Usage:       "Initialize the NATS server: create streams, buckets, etc.",
	DefaultText: "false",
	Value:       false,
	Sources:     cli.EnvVars("NATS_INIT"),
}

var DatabaseURL = &cli.StringFlag{
	Name:    "database-url",
	Usage:   "Postgres URL for the feed archive; empty disables archiving",
	Sources: cli.EnvVars("DATABASE_URL"),
}

var IPFSGateway = &cli.StringFlag{
	Name:    "ipfs-gateway",
	Usage:   "HTTP gateway used to resolve ipfs:// content URIs",
	Sources: cli.EnvVars("IPFS_GATEWAY"),
}

var APIAddr = &cli.StringFlag{
	Name:    "api-addr",
	Usage:   "Listen address of the HTTP API",
	Value:   ":8888",
	Sources: cli.EnvVars("API_ADDR"),
}

var MetricsAddr = &cli.StringFlag{
	Name:    "metrics-addr",
	Usage:   "Listen address of the metrics server",
	Value:   ":9091",
	Sources: cli.EnvVars("METRICS_ADDR"),
}

var ScanInterval = &cli.DurationFlag{
	Name:    "scan-interval",
	Usage:   "How often the watcher re-scans the feed",
	Value:   30 * time.Second,
	Sources: cli.EnvVars("SCAN_INTERVAL"),
}

// TODO: extract custom EnumFlag
var LogLevel = &cli.StringFlag{
	Name:    "log-level",
	Aliases: []string{"l"},
	Usage:   "The level of the logs",
	Value:   "info",
	Validator: func(value string) error {
		if !slices.Contains(validLogLevels, value) {
			return fmt.Errorf("invalid log level: %s, allowed values are: %s", value, validLogLevels)
		}
		return nil
	},
	Sources: cli.EnvVars("LOG_LEVEL"),
}

// Chain is the flag set shared by every command that talks to the contract.
func Chain() []cli.Flag {
	return []cli.Flag{RPCURL, Contract}
}

// Wallet extends Chain with the wallet endpoint and permission state flags.
func Wallet() []cli.Flag {
	return append(Chain(), WalletURL, StatePath, NATSUrl, InitNATS)
}
