package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/cli/config"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
	"github.com/secmon-lab/chronicle/pkg/usecase"
	"github.com/secmon-lab/chronicle/pkg/utils/logging"
	"github.com/secmon-lab/chronicle/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// maxReplayLine bounds one JSON line of the events file
const maxReplayLine = 1024 * 1024

// replayLine is one line of an events file
type replayLine struct {
	Type           string         `json:"type"`
	Source         string         `json:"source"`
	ParticipantIDs []string       `json:"participant_ids"`
	Severity       string         `json:"severity"`
	Category       string         `json:"category"`
	Description    string         `json:"description"`
	Metadata       map[string]any `json:"metadata"`
	Tags           []string       `json:"tags"`
	Importance     *int           `json:"importance"`
	Resolved       bool           `json:"resolved"`
	// Financial routes the line through the financial publisher. Such lines
	// need exactly one participant.
	Financial bool `json:"financial"`
}

func (x *replayLine) draft() *model.EventDraft {
	ids := make([]model.CharacterID, len(x.ParticipantIDs))
	for i, id := range x.ParticipantIDs {
		ids[i] = model.CharacterID(id)
	}
	return &model.EventDraft{
		Type:           types.EventType(x.Type),
		Source:         types.EventSource(x.Source),
		ParticipantIDs: ids,
		Severity:       types.Severity(x.Severity),
		Category:       types.EventCategory(x.Category),
		Description:    x.Description,
		Metadata:       model.Metadata(x.Metadata),
		Tags:           x.Tags,
		Importance:     x.Importance,
		Resolved:       x.Resolved,
	}
}

func (x *replayLine) publish(ctx context.Context, bus *usecase.EventBus) (model.EventID, error) {
	if !x.Financial {
		return bus.Publish(ctx, x.draft())
	}

	if len(x.ParticipantIDs) != 1 {
		return "", goerr.Wrap(model.ErrValidation, "financial event needs exactly one participant",
			goerr.V("participants", len(x.ParticipantIDs)))
	}
	subject := model.CharacterID(x.ParticipantIDs[0])
	return bus.PublishFinancialEvent(ctx, types.EventType(x.Type), subject, x.Description, model.Metadata(x.Metadata), types.Severity(x.Severity))
}

func cmdReplay() *cli.Command {
	var eventsPath string
	var repoCfg config.Repository
	var busCfg config.Bus

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "events",
			Aliases:     []string{"e"},
			Usage:       "Path to a JSON lines file of events, or - for stdin",
			Value:       "-",
			Sources:     cli.EnvVars("CHRONICLE_EVENTS"),
			Destination: &eventsPath,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, busCfg.Flags()...)

	return &cli.Command{
		Name:    "replay",
		Aliases: []string{"r"},
		Usage:   "Publish events from a JSON lines file and print their ids",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			var r io.Reader = os.Stdin
			if eventsPath != "-" {
				// #nosec G304 - path is expected to be provided by CLI argument
				f, err := os.Open(eventsPath)
				if err != nil {
					return goerr.Wrap(err, "failed to open events file", goerr.V("path", eventsPath))
				}
				defer safe.Close(ctx, f)
				r = f
			}

			bus, closer, err := openBus(ctx, &repoCfg, &busCfg)
			if err != nil {
				return err
			}
			defer closer()

			unsubscribe := bus.Subscribe(usecase.AllEvents, usecase.Detached(func(ctx context.Context, ev *model.Event) error {
				logger.Debug("Event published",
					"id", ev.ID,
					"type", ev.Type,
					"participants", len(ev.ParticipantIDs),
				)
				return nil
			}))
			defer unsubscribe()

			pruner := busCfg.PruneWorker(bus)
			if err := pruner.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start prune worker")
			}
			defer pruner.Stop()

			count, err := replay(ctx, bus, r, c.Root().Writer)
			if err != nil {
				return err
			}

			logger.Info("Replay completed", "events", count)
			return nil
		},
	}
}

// replay publishes every non-empty line of r and writes one event id per
// line to w. The first failure aborts the replay.
func replay(ctx context.Context, bus *usecase.EventBus, r io.Reader, w io.Writer) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxReplayLine)

	var lineNo, count int
	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var line replayLine
		if err := json.Unmarshal(raw, &line); err != nil {
			return count, goerr.Wrap(err, "failed to decode event line", goerr.V("line", lineNo))
		}

		id, err := line.publish(ctx, bus)
		if err != nil {
			return count, goerr.Wrap(err, "failed to publish event", goerr.V("line", lineNo), goerr.V("type", line.Type))
		}
		count++

		safe.Write(ctx, w, fmt.Appendf(nil, "%s\n", id))
	}
	if err := scanner.Err(); err != nil {
		return count, goerr.Wrap(err, "failed to read events", goerr.V("line", lineNo))
	}

	return count, nil
}
