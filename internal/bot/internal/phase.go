package internal

import "gostop/internal/domain"

// GamePhase describes the current strategic stage of a deal.
type GamePhase int

const (
	// PhaseOpening covers the first round of turns.
	PhaseOpening GamePhase = iota
	// PhaseMid is everything between the opening and the endgame.
	PhaseMid
	// PhaseEnd starts once the stock is down to EndgameStock cards.
	PhaseEnd
)

// EndgameStock is the stock size at or below which a deal is in its endgame.
const EndgameStock = 10

func (p GamePhase) String() string {
	switch p {
	case PhaseOpening:
		return "opening"
	case PhaseMid:
		return "mid"
	default:
		return "end"
	}
}

// DetectPhase infers the phase from the turn count and the stock left.
func DetectPhase(s *domain.GameState) GamePhase {
	if s == nil || len(s.Players) == 0 {
		return PhaseMid
	}
	if len(s.Stock) <= EndgameStock {
		return PhaseEnd
	}
	if s.TurnCount < len(s.Players) {
		return PhaseOpening
	}
	return PhaseMid
}
