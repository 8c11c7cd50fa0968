package spawners

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"

	"dungeon-spawn/data"
	"dungeon-spawn/errors"
)

// WeightedEntry is one outcome of a weighted table
type WeightedEntry[T any] struct {
	Value  T
	Weight int
}

// WeightedTable picks outcomes in proportion to their weights. Entries are
// walked in order, so a roll of r selects the first entry whose cumulative
// weight exceeds r-1.
type WeightedTable[T any] struct {
	entries []WeightedEntry[T]
	total   int
}

// NewWeightedTable creates a table, dropping entries with no weight
func NewWeightedTable[T any](entries []WeightedEntry[T]) *WeightedTable[T] {
	table := &WeightedTable[T]{}
	for _, entry := range entries {
		if entry.Weight <= 0 {
			continue
		}
		table.entries = append(table.entries, entry)
		table.total += entry.Weight
	}
	return table
}

// Total returns the sum of all weights
func (t *WeightedTable[T]) Total() int {
	return t.total
}

// Entries returns the weighted entries in roll order
func (t *WeightedTable[T]) Entries() []WeightedEntry[T] {
	return t.entries
}

// Roll draws one outcome
func (t *WeightedTable[T]) Roll(roller dice.Roller) (T, error) {
	var zero T
	if t.total == 0 {
		return zero, errors.FailedPrecondition("weighted table is empty")
	}

	r, err := roller.Roll(t.total)
	if err != nil {
		return zero, errors.Wrap(err, "failed to roll weighted table")
	}
	return t.Pick(r - 1), nil
}

// Pick maps a zero-based roll in [0, Total) to its outcome
func (t *WeightedTable[T]) Pick(index int) T {
	for _, entry := range t.entries {
		if index < entry.Weight {
			return entry.Value
		}
		index -= entry.Weight
	}
	return t.entries[len(t.entries)-1].Value
}

// TreasureTable builds the treasure value table from spawn weights
func TreasureTable(templates *data.TemplateManager) *WeightedTable[int] {
	var entries []WeightedEntry[int]
	for _, treasure := range templates.Treasures() {
		entries = append(entries, WeightedEntry[int]{Value: treasure.Value, Weight: treasure.SpawnWeight})
	}
	return NewWeightedTable(entries)
}

// EnemyTable builds the random-wave enemy table from spawn weights
func EnemyTable(templates *data.TemplateManager) *WeightedTable[string] {
	var entries []WeightedEntry[string]
	for _, enemy := range templates.EnemyList() {
		entries = append(entries, WeightedEntry[string]{Value: enemy.ID, Weight: enemy.SpawnWeight})
	}
	return NewWeightedTable(entries)
}

// PotionTable gives every potion code the same weight
func PotionTable(templates *data.TemplateManager) *WeightedTable[string] {
	var entries []WeightedEntry[string]
	for _, potion := range templates.Potions() {
		entries = append(entries, WeightedEntry[string]{Value: potion.Code, Weight: 1})
	}
	return NewWeightedTable(entries)
}
