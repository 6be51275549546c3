package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/cli/config"
	"github.com/secmon-lab/chronicle/pkg/usecase"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
	"github.com/secmon-lab/chronicle/pkg/utils/safe"
)

// openBus connects the configured repository and rehydrates a bus over
// it. The returned function closes the repository.
func openBus(ctx context.Context, repoCfg *config.Repository, busCfg *config.Bus) (*usecase.EventBus, func(), error) {
	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	closer := func() { safe.Close(ctx, repo) }

	bus := busCfg.New(repo)
	if err := bus.Rehydrate(ctx); err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to rehydrate event bus")
	}

	logging.Default().Debug("Event bus ready", "repository", repoCfg, "bus", busCfg)
	return bus, closer, nil
}
