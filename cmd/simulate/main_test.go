package main

import (
	"testing"

	"gostop/internal/bot"
	"gostop/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSimulate(t *testing.T) {
	for _, players := range []int{2, 3, 4} {
		o := options{Matches: 3, Players: players, Deals: 2, Seed: int64(players), Level: bot.BotLevelHeuristic, BaseBet: 100}
		s, err := simulate(o, domain.ConfigOverrides{TotalDeals: 2}, zap.NewNop())
		require.NoError(t, err)

		assert.Equal(t, 3, s.Matches)
		assert.Equal(t, 6, s.Deals)
		reasons := 0
		for _, n := range s.Reasons {
			reasons += n
		}
		assert.Equal(t, s.Deals, reasons)
		assert.GreaterOrEqual(t, s.MaxNagari, 1)

		sum := 0
		for _, chips := range s.ChipTotals {
			sum += chips
		}
		assert.Zero(t, sum, "%d players: chips are zero-sum", players)
		assert.Len(t, s.ChipTotals, players)
	}
}

func TestSimulateRejectsUnknownLevel(t *testing.T) {
	_, err := simulate(options{Matches: 1, Players: 2, Level: "grandmaster"}, domain.ConfigOverrides{TotalDeals: 1}, zap.NewNop())
	assert.Error(t, err)
}
