// Package blueprint decodes the JSON floor description an engine is
// bootstrapped from: extents, grid cell size, the mover and producer sets,
// and static borders. It is deliberately a thin contract, not an asset
// pipeline: validation is limited to positive extents and unique ids at
// decode time and known interaction URLs at populate time, each raising a
// fatal Blueprint error. Unit models are not validated.
package blueprint

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/i4sim/engine/internal/environment"
	"github.com/i4sim/engine/internal/ident"
	"github.com/i4sim/engine/internal/interaction"
	"github.com/i4sim/engine/internal/mover"
	"github.com/i4sim/engine/internal/navgrid"
	"github.com/i4sim/engine/internal/producer"
	"github.com/i4sim/engine/internal/spatial"
)

// Pose is a unit's initial position and, for movers, footprint.
type Pose struct {
	X, Y float64
}

func (p Pose) vec() spatial.Vec2 { return spatial.Vec2{X: p.X, Y: p.Y} }

// MoverSpec describes one mover entry in the blueprint.
type MoverSpec struct {
	ID        string `json:"id"`
	Model     string `json:"model"`
	Position  Pose   `json:"position"`
	Dimension Pose   `json:"dimension"`
	State     string `json:"state"`
}

// ProducerSpec describes one producer entry in the blueprint.
type ProducerSpec struct {
	ID                string         `json:"id"`
	Model             string         `json:"model"`
	Position          Pose           `json:"position"`
	Dimension         Pose           `json:"dimension"`
	ProcesserPosition Pose           `json:"processer_position"`
	InteractionCost   map[string]uint `json:"interaction_cost"`
	State             string         `json:"state"`
}

// SegmentSpec describes one static border segment.
type SegmentSpec struct {
	AX, AY, BX, BY float64
}

// Blueprint is the decoded floor description.
type Blueprint struct {
	Width    int            `json:"width"`
	Height   int            `json:"height"`
	CellSize float64        `json:"cell_size"`
	Movers   []MoverSpec    `json:"movers"`
	Producers []ProducerSpec `json:"producers"`
	Borders  []SegmentSpec  `json:"borders"`
}

// Error is a Blueprint error: invalid geometry, a duplicate id, or an
// unknown interaction in a producer's cost map. Fatal at load time. An
// unknown model is not an error; models are opaque labels.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return "blueprint: " + e.Reason }

// Decode parses r into a Blueprint and validates it for duplicate ids and
// non-positive geometry. It does not validate interaction URLs or models
// against any registry of known ones; Populate rejects unknown interaction
// URLs, and models are not checked anywhere.
func Decode(r io.Reader) (*Blueprint, error) {
	var bp Blueprint
	if err := json.NewDecoder(r).Decode(&bp); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := bp.validate(); err != nil {
		return nil, err
	}
	return &bp, nil
}

func (bp *Blueprint) validate() error {
	if bp.Width <= 0 || bp.Height <= 0 || bp.CellSize <= 0 {
		return &Error{Reason: "floor extents and cell size must be positive"}
	}
	seen := make(map[string]struct{}, len(bp.Movers)+len(bp.Producers))
	for _, m := range bp.Movers {
		if _, dup := seen[m.ID]; dup {
			return &Error{Reason: fmt.Sprintf("duplicate unit id %q", m.ID)}
		}
		seen[m.ID] = struct{}{}
	}
	for _, p := range bp.Producers {
		if _, dup := seen[p.ID]; dup {
			return &Error{Reason: fmt.Sprintf("duplicate unit id %q", p.ID)}
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// Grid builds the navigable grid the blueprint describes.
func (bp *Blueprint) Grid() *navgrid.Grid {
	return navgrid.NewRect(spatial.Vec2{X: bp.CellSize, Y: bp.CellSize}, spatial.Vec2{}, bp.Width, bp.Height)
}

// Segments converts the blueprint's border specs into spatial.Segments.
func (bp *Blueprint) Segments() []spatial.Segment {
	out := make([]spatial.Segment, 0, len(bp.Borders))
	for _, s := range bp.Borders {
		out = append(out, spatial.Segment{
			A: spatial.Vec2{X: s.AX, Y: s.AY},
			B: spatial.Vec2{X: s.BX, Y: s.BY},
		})
	}
	return out
}

func parseState(s string) ident.State {
	if s == "Blocked" {
		return ident.Blocked
	}
	return ident.Alive
}

// Populate constructs every mover and producer the blueprint describes and
// registers them on reg. It is the blueprint's only point of contact with
// the rest of the engine, keeping the decode/validate concerns above free
// of registry wiring.
func (bp *Blueprint) Populate(reg *environment.Registry) error {
	for _, spec := range bp.Movers {
		m := mover.New(spec.ID, ident.Model(spec.Model), spec.Position.vec(), spec.Dimension.vec())
		m.State = parseState(spec.State)
		reg.AddMover(m)
	}
	for _, spec := range bp.Producers {
		costs := make(map[interaction.Interaction]uint, len(spec.InteractionCost))
		for urlOrName, cost := range spec.InteractionCost {
			i, ok := interaction.FromURL(urlOrName)
			if !ok {
				return &Error{Reason: fmt.Sprintf("producer %q: unknown interaction %q", spec.ID, urlOrName)}
			}
			costs[i] = cost
		}
		p := producer.New(spec.ID, ident.Model(spec.Model), spec.Position.vec(), spec.ProcesserPosition.vec(), costs)
		p.State = parseState(spec.State)
		reg.AddProducer(p)
	}
	return nil
}
