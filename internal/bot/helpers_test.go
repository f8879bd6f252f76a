package bot

import (
	"testing"

	"gostop/internal/domain"

	"github.com/stretchr/testify/require"
)

func cardsOf(t *testing.T, ids ...string) []domain.Card {
	t.Helper()
	out := make([]domain.Card, len(ids))
	for i, id := range ids {
		c, ok := domain.CardByID(id)
		require.Truef(t, ok, "unknown card %s", id)
		out[i] = c
	}
	return out
}

func stacksOf(t *testing.T, groups ...[]string) []domain.TableStack {
	t.Helper()
	out := make([]domain.TableStack, len(groups))
	for i, ids := range groups {
		cs := cardsOf(t, ids...)
		out[i] = domain.TableStack{Month: cs[0].Month, Cards: cs}
	}
	return out
}

// tableFor builds a two-player deal where "me" is to play hand against layout.
func tableFor(t *testing.T, hand []string, layout ...[]string) *domain.GameState {
	t.Helper()
	s, err := domain.CreateGameState([]domain.PlayerInfo{{ID: "me", IsBot: true}, {ID: "opp"}}, domain.ConfigOverrides{})
	require.NoError(t, err)
	s.Players[0].Hand = cardsOf(t, hand...)
	s.Players[1].Hand = cardsOf(t, "12-ribbon")
	s.Table = stacksOf(t, layout...)
	s.Stock = cardsOf(t, "12-bright", "12-junk-1")
	s.Phase = domain.PhasePlayFromHand
	s.DealNumber = 1
	s.TurnCount = 4
	return s
}
