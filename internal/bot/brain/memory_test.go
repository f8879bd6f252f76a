package brain

import (
	"testing"

	"gostop/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pile(t *testing.T, ids ...string) domain.CapturedCards {
	t.Helper()
	var c domain.CapturedCards
	for _, id := range ids {
		card, ok := domain.CardByID(id)
		require.True(t, ok, id)
		c.Add(card)
	}
	return c
}

func TestMemoryObserve(t *testing.T) {
	m := NewMemory()
	s := &domain.GameState{
		DealNumber: 1,
		Players: []domain.Player{
			{ID: "a", Captured: pile(t, "7-animal", "7-junk-1", "1-bright")},
			{ID: "b", Captured: pile(t, "7-ribbon")},
		},
	}
	m.Observe(s)
	assert.Equal(t, 3, m.Gone(7))
	assert.Equal(t, 1, m.Gone(1))
	assert.Zero(t, m.Gone(5))
	assert.True(t, m.Seen("1-bright"))

	// Observing twice does not double count.
	m.Observe(s)
	assert.Equal(t, 3, m.Gone(7))
}

func TestMemoryForgetsPreviousDeal(t *testing.T) {
	m := NewMemory()
	m.Observe(&domain.GameState{DealNumber: 1, Players: []domain.Player{{ID: "a", Captured: pile(t, "3-bright")}}})
	require.True(t, m.Seen("3-bright"))

	m.Observe(&domain.GameState{DealNumber: 2, Players: []domain.Player{{ID: "a"}}})
	assert.False(t, m.Seen("3-bright"))
	assert.Zero(t, m.Gone(3))

	m.Observe(&domain.GameState{DealNumber: 2, Players: []domain.Player{{ID: "a", Captured: pile(t, "4-junk-1")}}})
	m.Reset()
	assert.False(t, m.Seen("4-junk-1"))
}
