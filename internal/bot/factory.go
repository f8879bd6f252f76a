package bot

import "fmt"

// NewBrain creates a new AI brain based on the specified level. An empty
// level means heuristic.
func NewBrain(level BotLevel) (Brain, error) {
	switch level {
	case BotLevelEasy:
		return &EasyBot{}, nil
	case BotLevelHeuristic, "":
		return NewHeuristicBot(DefaultTuning), nil
	default:
		return nil, fmt.Errorf("unknown bot level: %q", level)
	}
}

// NewAgent seats a bot with the given identity.
func NewAgent(identity BotIdentity) (*Agent, error) {
	brain, err := NewBrain(identity.Level)
	if err != nil {
		return nil, err
	}
	return &Agent{ID: identity.UserID, Name: identity.DisplayName, Strategy: brain}, nil
}
