package bot_test

import (
	"math/rand"
	"testing"

	"gostop/internal/app"
	"gostop/internal/bot"
	"gostop/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBotsPlayFullMatches(t *testing.T) {
	levels := []bot.BotLevel{bot.BotLevelHeuristic, bot.BotLevelEasy}
	for seed := int64(1); seed <= 12; seed++ {
		players := 2 + int(seed%3)
		agents := make(map[string]*bot.Agent, players)
		infos := make([]domain.PlayerInfo, players)
		for i := 0; i < players; i++ {
			id := bot.NewIdentity(i, levels[(int(seed)+i)%len(levels)])
			agent, err := bot.NewAgent(id)
			require.NoError(t, err)
			agents[id.UserID] = agent
			infos[i] = domain.PlayerInfo{ID: id.UserID, Name: id.DisplayName, IsBot: true}
		}

		svc := app.NewService(rand.New(rand.NewSource(seed)), nil)
		m, evs, err := svc.StartMatch("sim", infos, domain.ConfigOverrides{TotalDeals: 4}, 100)
		require.NoError(t, err)

		deals := 0
		observe := func(evs []app.Event) {
			for _, ev := range evs {
				switch ev.Kind {
				case app.EventDealStarted:
					p := ev.Payload.(app.DealStartedPayload)
					for _, a := range agents {
						a.OnGameEvent(bot.DealStarted{DealNumber: p.DealNumber})
					}
				case app.EventDealEnded:
					deals++
				}
			}
		}
		observe(evs)

		for steps := 0; !m.Over; steps++ {
			require.Less(t, steps, 5000, "seed %d stuck in phase %s", seed, m.Game.Phase)
			switch m.Game.Phase {
			case domain.PhaseFinished:
				evs, err = svc.NextDeal(m)
			case domain.PhaseDrawFromStock:
				evs, err = svc.ResolveStock(m)
			default:
				current := m.CurrentPlayerID()
				var a domain.Action
				a, err = agents[current].Play(m.Game)
				require.NoError(t, err, "seed %d", seed)
				evs, err = svc.Act(m, current, a)
			}
			require.NoError(t, err, "seed %d", seed)
			observe(evs)
		}

		assert.Equal(t, 4, deals, "seed %d", seed)
		sum := 0
		for _, v := range m.Totals {
			sum += v
		}
		assert.Zero(t, sum, "seed %d", seed)
	}
}
