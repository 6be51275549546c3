package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
)

func TestSortMemories(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	memories := []*model.Memory{
		{ID: "c", Importance: 5, CreatedAt: base},
		{ID: "b", Importance: 9, CreatedAt: base},
		{ID: "a", Importance: 5, CreatedAt: base},
		{ID: "d", Importance: 5, CreatedAt: base.Add(time.Hour)},
	}

	model.SortMemories(memories)

	ids := make([]model.MemoryID, len(memories))
	for i, m := range memories {
		ids[i] = m.ID
	}
	gt.Array(t, ids).Equal([]model.MemoryID{"b", "d", "a", "c"})
}

func TestMemoryFilter_Match(t *testing.T) {
	mem := &model.Memory{MemoryType: types.MemoryTypeBattle, Importance: 6}

	gt.Bool(t, (*model.MemoryFilter)(nil).Match(mem)).True()
	gt.Bool(t, (&model.MemoryFilter{MemoryType: types.MemoryTypeBattle, MinImportance: 6}).Match(mem)).True()
	gt.Bool(t, (&model.MemoryFilter{MemoryType: types.MemoryTypeSocial}).Match(mem)).False()
	gt.Bool(t, (&model.MemoryFilter{MinImportance: 7}).Match(mem)).False()
}

func TestMemory_CopyAndRecall(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mem := &model.Memory{
		ID:                     "m1",
		AssociatedCharacterIDs: []model.CharacterID{highID},
		Tags:                   []string{"arena"},
		Financial:              &model.FinancialDetail{AmountInvolved: 100},
	}

	c := mem.Copy()
	c.Tags[0] = "mutated"
	c.AssociatedCharacterIDs[0] = lowID
	c.Financial.AmountInvolved = 1
	c.Recall(at)

	gt.Value(t, mem.Tags[0]).Equal("arena")
	gt.Value(t, mem.AssociatedCharacterIDs[0]).Equal(highID)
	gt.Number(t, mem.Financial.AmountInvolved).Equal(100)
	gt.Number(t, mem.RecallCount).Equal(0)
	gt.Number(t, c.RecallCount).Equal(1)
	gt.Value(t, c.LastRecalled).Equal(at)
}
