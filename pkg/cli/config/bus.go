package config

import (
	"log/slog"
	"time"

	"github.com/secmon-lab/chronicle/pkg/domain/interfaces"
	"github.com/secmon-lab/chronicle/pkg/service/lookup"
	"github.com/secmon-lab/chronicle/pkg/service/worker"
	"github.com/secmon-lab/chronicle/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Bus holds CLI flags for the event bus, its lookup cache and the prune
// worker
type Bus struct {
	retention       time.Duration
	importanceFloor int
	safetyWindow    time.Duration
	pruneInterval   time.Duration
	cacheSize       int
	cacheTTL        time.Duration
}

// Flags returns CLI flags for bus configuration
func (x *Bus) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "retention",
			Category:    "bus",
			Usage:       "How long low-importance events and memories are kept",
			Value:       usecase.DefaultRetention,
			Sources:     cli.EnvVars("CHRONICLE_RETENTION"),
			Destination: &x.retention,
		},
		&cli.IntFlag{
			Name:        "importance-floor",
			Category:    "bus",
			Usage:       "Records at or above this importance are never pruned",
			Value:       usecase.DefaultImportanceFloor,
			Sources:     cli.EnvVars("CHRONICLE_IMPORTANCE_FLOOR"),
			Destination: &x.importanceFloor,
		},
		&cli.DurationFlag{
			Name:        "safety-window",
			Category:    "bus",
			Usage:       "Minimum age of a record before it can be pruned",
			Value:       usecase.DefaultSafetyWindow,
			Sources:     cli.EnvVars("CHRONICLE_SAFETY_WINDOW"),
			Destination: &x.safetyWindow,
		},
		&cli.DurationFlag{
			Name:        "prune-interval",
			Category:    "bus",
			Usage:       "Interval of the background prune sweep",
			Value:       worker.DefaultPruneInterval,
			Sources:     cli.EnvVars("CHRONICLE_PRUNE_INTERVAL"),
			Destination: &x.pruneInterval,
		},
		&cli.IntFlag{
			Name:        "lookup-cache-size",
			Category:    "bus",
			Usage:       "Entries kept per lookup table cache",
			Value:       lookup.DefaultCacheSize,
			Sources:     cli.EnvVars("CHRONICLE_LOOKUP_CACHE_SIZE"),
			Destination: &x.cacheSize,
		},
		&cli.DurationFlag{
			Name:        "lookup-cache-ttl",
			Category:    "bus",
			Usage:       "Lifetime of a cached lookup row",
			Value:       lookup.DefaultCacheTTL,
			Sources:     cli.EnvVars("CHRONICLE_LOOKUP_CACHE_TTL"),
			Destination: &x.cacheTTL,
		},
	}
}

// LogValue implements slog.LogValuer
func (x Bus) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("retention", x.retention),
		slog.Int("importance_floor", x.importanceFloor),
		slog.Duration("safety_window", x.safetyWindow),
		slog.Duration("prune_interval", x.pruneInterval),
		slog.Int("lookup_cache_size", x.cacheSize),
		slog.Duration("lookup_cache_ttl", x.cacheTTL),
	)
}

// New builds an event bus over repo. The bus is not rehydrated.
func (x *Bus) New(repo interfaces.Repository, opts ...usecase.Option) *usecase.EventBus {
	svc := lookup.New(repo,
		lookup.WithCacheSize(x.cacheSize),
		lookup.WithCacheTTL(x.cacheTTL),
	)

	base := []usecase.Option{
		usecase.WithLookup(svc),
		usecase.WithRetention(x.retention),
		usecase.WithImportanceFloor(x.importanceFloor),
		usecase.WithSafetyWindow(x.safetyWindow),
	}
	return usecase.New(repo, append(base, opts...)...)
}

// PruneWorker builds the background prune worker of bus
func (x *Bus) PruneWorker(bus *usecase.EventBus) *worker.PruneWorker {
	return worker.NewPruneWorker(bus, x.pruneInterval)
}
