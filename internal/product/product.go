// Package product implements product lifecycle tracking and the supervisor
// that maps recipes onto ordered interaction plans.
package product

import "github.com/i4sim/engine/internal/interaction"

// Type is a product variant with a fixed recipe.
type Type string

const (
	Trimmer             Type = "Trimmer"
	TrimmerPersonalized Type = "TrimmerPersonalized"
)

// Recipes maps each product Type to its ordered interaction plan.
// Interactions are performed in order; cursor tracks progress.
var Recipes = map[Type][]interaction.Interaction{
	Trimmer: {
		interaction.PlaceHousing,
		interaction.PlaceTrimmerElement,
		interaction.PlaceLever,
		interaction.RemoveAssy,
	},
	TrimmerPersonalized: {
		interaction.PlaceHousing,
		interaction.PlaceTrimmerElement,
		interaction.PlaceLever,
		interaction.PlaceCard,
		interaction.PersonalizeCard,
		interaction.RemoveAssy,
	},
}

// Product is a single in-flight or completed unit of work.
type Product struct {
	ID     string
	Type   Type
	Recipe []interaction.Interaction
	Cursor int

	Ticks           uint64
	Distance        float64
	ProcessingTicks uint64

	CompletedInteractions []string // log entries, e.g. "PlaceHousing@producer_3"
}

// New constructs a fresh product at cursor 0 following Type's recipe.
func New(id string, t Type) *Product {
	return &Product{ID: id, Type: t, Recipe: Recipes[t]}
}

// Current returns the next interaction to perform and whether the recipe
// still has steps remaining.
func (p *Product) Current() (interaction.Interaction, bool) {
	if p.Cursor >= len(p.Recipe) {
		return 0, false
	}
	return p.Recipe[p.Cursor], true
}

// Advance records a completed interaction at the given producer/mover id and
// moves the cursor forward. Returns true if the recipe is now complete.
func (p *Product) Advance(performedBy string) bool {
	step, ok := p.Current()
	if !ok {
		return true
	}
	p.CompletedInteractions = append(p.CompletedInteractions, step.String()+"@"+performedBy)
	p.Cursor++
	return p.Cursor >= len(p.Recipe)
}

// IsComplete reports whether every recipe step has been performed.
func (p *Product) IsComplete() bool { return p.Cursor >= len(p.Recipe) }

// Snapshot is a read-only copy of a Product's progress, safe to hand to
// external readers.
type Snapshot struct {
	ID                    string
	Type                  Type
	Cursor                int
	RecipeLength          int
	Ticks                 uint64
	Distance              float64
	ProcessingTicks       uint64
	CompletedInteractions []string
}

func (p *Product) Snapshot() Snapshot {
	completed := make([]string, len(p.CompletedInteractions))
	copy(completed, p.CompletedInteractions)
	return Snapshot{
		ID:                    p.ID,
		Type:                  p.Type,
		Cursor:                p.Cursor,
		RecipeLength:          len(p.Recipe),
		Ticks:                 p.Ticks,
		Distance:              p.Distance,
		ProcessingTicks:       p.ProcessingTicks,
		CompletedInteractions: completed,
	}
}
