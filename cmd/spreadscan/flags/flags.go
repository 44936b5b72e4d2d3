// Package flags defines the command line options of the spreadscan node
// and its worker mode.
package flags

import (
	"time"

	"github.com/urfave/cli/v2"

	cmdflags "github.com/cexline/spreadscan/cmd/flags"
	"github.com/cexline/spreadscan/config"
)

// Interval receives the value of the --interval enum flag.
var Interval string

var (
	// APIHostFlag defines the address the JSON API binds to.
	APIHostFlag = &cli.StringFlag{
		Name:  "api-host",
		Usage: "Host the JSON API listens on",
		Value: "0.0.0.0",
	}
	// APIPortFlag defines the port the JSON API binds to.
	APIPortFlag = &cli.IntFlag{
		Name:  "api-port",
		Usage: "Port the JSON API listens on",
		Value: 8000,
	}
	// AllowedOriginsFlag defines CORS origins for the JSON API.
	AllowedOriginsFlag = &cli.StringSliceFlag{
		Name:  "allowed-origins",
		Usage: "Comma separated list of allowed CORS origins",
		Value: cli.NewStringSlice("*"),
	}
	// MonitoringPortFlag defines the port of the metrics listener.
	MonitoringPortFlag = &cli.IntFlag{
		Name:  "monitoring-port",
		Usage: "Port of the prometheus metrics and health listener",
		Value: 9290,
	}
	// ChunkSizeFlag caps concurrent candle fetches per chunk.
	ChunkSizeFlag = &cli.IntFlag{
		Name:  "chunk-size",
		Usage: "Maximum number of concurrent candle downloads per chunk",
		Value: 100,
	}
	// ThresholdFlag sets the minimum venue count for arbitrable pairs.
	ThresholdFlag = &cli.IntFlag{
		Name:  "pair-threshold",
		Usage: "Minimum number of exchanges quoting a pair",
		Value: 2,
	}
	// OHLCTTLFlag bounds cached batch payload lifetime.
	OHLCTTLFlag = &cli.DurationFlag{
		Name:  "ohlc-ttl",
		Usage: "TTL of cached batch candle payloads",
		Value: 2 * time.Hour,
	}
	// ChunkSleepFlag paces exchange APIs between chunks.
	ChunkSleepFlag = &cli.DurationFlag{
		Name:  "chunk-sleep",
		Usage: "Pause between fetch chunks",
		Value: time.Second,
	}
	// ConcurrencyFlag sets the task worker parallelism.
	ConcurrencyFlag = &cli.IntFlag{
		Name:  "concurrency",
		Usage: "Number of tasks the worker processes in parallel (0 = runtime default)",
		Value: 0,
	}
	// VerbosityFlag adjusts the logging level.
	VerbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity (trace, debug, info, warn, error, fatal)",
		Value: "info",
	}
	// InMemoryCatalogFlag swaps Postgres for the in-memory catalog, useful
	// for local experiments without a database.
	InMemoryCatalogFlag = &cli.BoolFlag{
		Name:  "in-memory-catalog",
		Usage: "Keep the catalog in memory instead of Postgres",
	}
)

// IntervalFlag restricts the candle interval to the supported whitelist.
var IntervalFlag = cmdflags.EnumValue{
	Name:        "interval",
	Usage:       "Candle interval used for discovery runs",
	Enum:        config.Intervals(),
	Value:       "4h",
	Destination: &Interval,
}.GenericFlag()

// BatchSettings assembles run parameters from parsed flags.
func BatchSettings(cliCtx *cli.Context) *config.BatchSettings {
	return &config.BatchSettings{
		ChunkSize:  cliCtx.Int(ChunkSizeFlag.Name),
		Threshold:  cliCtx.Int(ThresholdFlag.Name),
		Interval:   Interval,
		OHLCTTL:    cliCtx.Duration(OHLCTTLFlag.Name),
		ChunkSleep: cliCtx.Duration(ChunkSleepFlag.Name),
	}
}
