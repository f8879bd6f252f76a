package bot

import (
	"errors"

	"gostop/internal/domain"
)

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	// ChooseAction picks a move for playerID, who must be the seat to act.
	ChooseAction(s *domain.GameState, playerID string) (domain.Action, error)
	OnEvent(event any)
}

// BotLevel names a Brain implementation.
type BotLevel string

const (
	BotLevelEasy      BotLevel = "easy"
	BotLevelHeuristic BotLevel = "heuristic"
)

// DealStarted is passed to OnEvent when a new deal begins.
type DealStarted struct {
	DealNumber int
}

var (
	ErrNotBotsTurn = errors.New("bot: not this bot's turn")
	ErrNoAction    = errors.New("bot: no action available")
)
