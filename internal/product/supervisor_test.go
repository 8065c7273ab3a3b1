package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductAssignsSequentialIDs(t *testing.T) {
	s := NewSupervisor()
	p1 := s.CreateProduct(Trimmer)
	p2 := s.CreateProduct(Trimmer)
	p3 := s.CreateProduct(TrimmerPersonalized)

	assert.Equal(t, "Trimmer_1", p1.ID)
	assert.Equal(t, "Trimmer_2", p2.ID)
	assert.Equal(t, "TrimmerPersonalized_1", p3.ID)
}

func TestAdvanceMovesToCompletedAfterFullRecipe(t *testing.T) {
	s := NewSupervisor()
	p := s.CreateProduct(Trimmer)

	for range p.Recipe {
		s.Advance(p.ID, "producer_1")
	}

	_, stillInProgress := s.Get(p.ID)
	assert.False(t, stillInProgress)

	completed := s.SnapshotCompleted()
	require.Len(t, completed, 1)
	assert.Equal(t, p.ID, completed[0].ID)
	assert.Len(t, completed[0].CompletedInteractions, len(Recipes[Trimmer]))
}

func TestAdvanceUnknownProductIsNoop(t *testing.T) {
	s := NewSupervisor()
	s.Advance("does-not-exist", "producer_1")
	assert.Empty(t, s.SnapshotCompleted())
	assert.Empty(t, s.SnapshotInProgress())
}

func TestResetClearsEverything(t *testing.T) {
	s := NewSupervisor()
	s.CreateProduct(Trimmer)
	s.Reset()
	assert.Empty(t, s.SnapshotInProgress())
	p := s.CreateProduct(Trimmer)
	assert.Equal(t, "Trimmer_1", p.ID)
}

func TestHistoryBoundedAtLimit(t *testing.T) {
	s := NewSupervisor()
	for i := 0; i < 10; i++ {
		p := s.CreateProduct(Trimmer)
		for range p.Recipe {
			s.Advance(p.ID, "producer_1")
		}
	}
	h := s.History(Trimmer)
	assert.LessOrEqual(t, len(h), historyLimit)
}
