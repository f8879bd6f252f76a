package bot

import (
	"fmt"

	"gostop/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// Play asks the agent for its move. It fails when another seat is to act.
func (a *Agent) Play(s *domain.GameState) (domain.Action, error) {
	if s == nil || s.PlayerIndex(a.ID) < 0 {
		return domain.Action{}, fmt.Errorf("%w: %s", domain.ErrUnknownPlayer, a.ID)
	}
	if s.Phase == domain.PhaseFinished || s.CurrentPlayer().ID != a.ID {
		return domain.Action{}, ErrNotBotsTurn
	}
	return a.Strategy.ChooseAction(s, a.ID)
}

// PlayFor lets the agent move for another seat, e.g. a disconnected human.
func (a *Agent) PlayFor(s *domain.GameState, playerID string) (domain.Action, error) {
	stand := Agent{ID: playerID, Name: a.Name, Strategy: a.Strategy}
	return stand.Play(s)
}

// OnGameEvent notifies the agent of a game event.
func (a *Agent) OnGameEvent(event any) {
	a.Strategy.OnEvent(event)
}
