package blueprint

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i4sim/engine/internal/environment"
)

const sampleJSON = `{
  "width": 20, "height": 20, "cell_size": 10,
  "movers": [{"id":"m1","model":"cart","position":{"X":5,"Y":5},"dimension":{"X":4,"Y":4}}],
  "producers": [{"id":"p1","model":"press","position":{"X":50,"Y":50},"processer_position":{"X":40,"Y":50},
    "interaction_cost":{"https://aas.2propel.com/ids/sm/7445_9011_6042_2805": 5}}],
  "borders": [{"AX":0,"AY":0,"BX":200,"BY":0}]
}`

func TestDecodeValidBlueprint(t *testing.T) {
	bp, err := Decode(strings.NewReader(sampleJSON))
	require.NoError(t, err)
	assert.Len(t, bp.Movers, 1)
	assert.Len(t, bp.Producers, 1)
	assert.Len(t, bp.Borders, 1)
}

func TestDecodeRejectsDuplicateIDs(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"width":10,"height":10,"cell_size":10,
		"movers":[{"id":"x","model":"cart"}],"producers":[{"id":"x","model":"press"}]}`))
	require.Error(t, err)
}

func TestDecodeRejectsNonPositiveExtents(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"width":0,"height":10,"cell_size":10}`))
	require.Error(t, err)
}

func TestPopulateRegistersUnits(t *testing.T) {
	bp, err := Decode(strings.NewReader(sampleJSON))
	require.NoError(t, err)

	reg := environment.New(bp.Grid(), bp.Segments(), environment.DefaultConfig(), zerolog.Nop())
	require.NoError(t, bp.Populate(reg))

	_, ok := reg.Mover("m1")
	assert.True(t, ok)
	_, ok = reg.Producer("p1")
	assert.True(t, ok)
}
