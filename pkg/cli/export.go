package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/cli/config"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
	"github.com/secmon-lab/chronicle/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// exportedMemory is the JSON form of a memory
type exportedMemory struct {
	ID                     string           `json:"id"`
	CharacterID            string           `json:"character_id"`
	EventID                string           `json:"event_id"`
	MemoryType             string           `json:"memory_type"`
	Content                string           `json:"content"`
	EmotionalIntensity     int              `json:"emotional_intensity"`
	EmotionalValence       string           `json:"emotional_valence"`
	Importance             int              `json:"importance"`
	CreatedAt              time.Time        `json:"created_at"`
	LastRecalled           time.Time        `json:"last_recalled"`
	RecallCount            int              `json:"recall_count"`
	AssociatedCharacterIDs []string         `json:"associated_character_ids"`
	Tags                   []string         `json:"tags"`
	DecayRate              float64          `json:"decay_rate"`
	Financial              *exportFinancial `json:"financial,omitempty"`
}

type exportFinancial struct {
	DecisionType   string  `json:"decision_type"`
	AmountInvolved float64 `json:"amount_involved"`
	Outcome        string  `json:"outcome"`
	StressImpact   float64 `json:"stress_impact"`
	TrustImpact    float64 `json:"trust_impact"`
	Importance     int     `json:"financial_importance"`
	Intensity      int     `json:"financial_intensity"`
	Valence        string  `json:"financial_valence"`
	DecayRate      float64 `json:"financial_decay_rate"`
}

func newExportedMemory(m *model.Memory) *exportedMemory {
	out := &exportedMemory{
		ID:                     string(m.ID),
		CharacterID:            string(m.CharacterID),
		EventID:                string(m.EventID),
		MemoryType:             string(m.MemoryType),
		Content:                m.Content,
		EmotionalIntensity:     m.EmotionalIntensity,
		EmotionalValence:       string(m.EmotionalValence),
		Importance:             m.Importance,
		CreatedAt:              m.CreatedAt,
		LastRecalled:           m.LastRecalled,
		RecallCount:            m.RecallCount,
		AssociatedCharacterIDs: make([]string, len(m.AssociatedCharacterIDs)),
		Tags:                   m.Tags,
		DecayRate:              m.DecayRate,
	}
	for i, id := range m.AssociatedCharacterIDs {
		out.AssociatedCharacterIDs[i] = string(id)
	}
	if m.Financial != nil {
		out.Financial = &exportFinancial{
			DecisionType:   string(m.Financial.DecisionType),
			AmountInvolved: m.Financial.AmountInvolved,
			Outcome:        string(m.Financial.Outcome),
			StressImpact:   m.Financial.StressImpact,
			TrustImpact:    m.Financial.TrustImpact,
			Importance:     m.Financial.FinancialImportance,
			Intensity:      m.Financial.FinancialIntensity,
			Valence:        string(m.Financial.FinancialValence),
			DecayRate:      m.Financial.FinancialDecayRate,
		}
	}
	return out
}

func cmdExport() *cli.Command {
	var characterID string
	var memoryType string
	var minImportance int
	var outputPath string
	var repoCfg config.Repository
	var busCfg config.Bus

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "character",
			Aliases:     []string{"c"},
			Usage:       "Character ID whose memories are exported",
			Required:    true,
			Destination: &characterID,
		},
		&cli.StringFlag{
			Name:        "memory-type",
			Usage:       "Only export memories of this type",
			Destination: &memoryType,
		},
		&cli.IntFlag{
			Name:        "min-importance",
			Usage:       "Only export memories at or above this importance",
			Destination: &minImportance,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file path, or - for stdout",
			Value:       "-",
			Destination: &outputPath,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, busCfg.Flags()...)

	return &cli.Command{
		Name:  "export",
		Usage: "Write the memories of a character as JSON",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			filter := &model.MemoryFilter{
				MemoryType:    types.MemoryType(memoryType),
				MinImportance: minImportance,
			}
			if filter.MemoryType != "" && !filter.MemoryType.IsValid() {
				return goerr.Wrap(model.ErrInvalidEnum, "invalid memory type", goerr.V("memory_type", memoryType))
			}

			bus, closer, err := openBus(ctx, &repoCfg, &busCfg)
			if err != nil {
				return err
			}
			defer closer()

			memories, err := bus.GetCharacterMemories(ctx, model.CharacterID(characterID), filter)
			if err != nil {
				return goerr.Wrap(err, "failed to get memories")
			}

			out := make([]*exportedMemory, len(memories))
			for i, m := range memories {
				out[i] = newExportedMemory(m)
			}

			var w io.Writer = c.Root().Writer
			if outputPath != "-" {
				// #nosec G304 - path is expected to be provided by CLI argument
				f, err := os.Create(outputPath)
				if err != nil {
					return goerr.Wrap(err, "failed to create output file", goerr.V("path", outputPath))
				}
				defer safe.Close(ctx, f)
				w = f
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return goerr.Wrap(err, "failed to encode memories")
			}
			return nil
		},
	}
}
