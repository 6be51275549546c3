package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/cli/config"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
	"github.com/secmon-lab/chronicle/pkg/usecase"
	"github.com/urfave/cli/v3"
)

var (
	headerColor  = color.New(color.Bold)
	hostileColor = color.New(color.FgRed)
	neutralColor = color.New(color.FgYellow)
	warmColor    = color.New(color.FgGreen)
)

func cmdInspect() *cli.Command {
	var characterID string
	var targetID string
	var limit int
	var repoCfg config.Repository
	var busCfg config.Bus

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "character",
			Aliases:     []string{"c"},
			Usage:       "Character ID to inspect",
			Required:    true,
			Destination: &characterID,
		},
		&cli.StringFlag{
			Name:        "target",
			Usage:       "Only show the relationship towards this character",
			Destination: &targetID,
		},
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Number of recent events and memories to show",
			Value:       10,
			Destination: &limit,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, busCfg.Flags()...)

	return &cli.Command{
		Name:    "inspect",
		Aliases: []string{"i"},
		Usage:   "Show the memories, events and relationships of a character",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			bus, closer, err := openBus(ctx, &repoCfg, &busCfg)
			if err != nil {
				return err
			}
			defer closer()

			w := c.Root().Writer
			id := model.CharacterID(characterID)

			if targetID != "" {
				rel, err := bus.GetRelationship(ctx, id, model.CharacterID(targetID))
				if err != nil {
					return goerr.Wrap(err, "failed to get relationship")
				}
				printRelationship(w, rel)
				return nil
			}

			return inspectCharacter(ctx, w, bus, id, limit)
		},
	}
}

func inspectCharacter(ctx context.Context, w io.Writer, bus *usecase.EventBus, id model.CharacterID, limit int) error {
	memories, err := bus.GetCharacterMemories(ctx, id, &model.MemoryFilter{Limit: limit})
	if err != nil {
		return goerr.Wrap(err, "failed to get memories")
	}
	events, err := bus.GetCharacterEvents(ctx, id, &model.EventFilter{Limit: limit})
	if err != nil {
		return goerr.Wrap(err, "failed to get events")
	}
	summary, err := bus.GetRelationshipSummary(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to get relationships")
	}

	_, _ = headerColor.Fprintf(w, "Memories of %s (%d)\n", id, len(memories))
	for _, mem := range memories {
		_, _ = fmt.Fprintf(w, "  [%2d] %-10s %-8s %s\n", mem.Importance, mem.MemoryType, mem.EmotionalValence, mem.Content)
	}

	_, _ = headerColor.Fprintf(w, "Events (%d)\n", len(events))
	for _, ev := range events {
		_, _ = fmt.Fprintf(w, "  %s %s %-20s %s\n", ev.Timestamp.Format(time.RFC3339), ev.ID, ev.Type, ev.Description)
	}

	_, _ = headerColor.Fprintf(w, "Relationships (%d)\n", len(summary))
	for _, target := range slices.Sorted(maps.Keys(summary)) {
		printRelationship(w, summary[target])
	}
	return nil
}

func printRelationship(w io.Writer, rel *model.Relationship) {
	_, _ = fmt.Fprintf(w, "  %s -> %s ", rel.CharacterID, rel.TargetCharacterID)
	_, _ = statusColor(rel.Status).Fprintf(w, "%-14s", rel.Status)
	_, _ = fmt.Fprintf(w, " trust=%d respect=%d affection=%d rivalry=%d trajectory=%s interactions=%d\n",
		rel.TrustLevel, rel.RespectLevel, rel.AffectionLevel, rel.RivalryIntensity, rel.Trajectory, rel.InteractionCount)
}

func statusColor(status types.RelationshipStatus) *color.Color {
	switch {
	case status.IsHostile():
		return hostileColor
	case status == types.RelationshipStrangers:
		return neutralColor
	default:
		return warmColor
	}
}
