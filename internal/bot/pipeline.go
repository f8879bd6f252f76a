package bot

import (
	"gostop/internal/bot/brain"
	"gostop/internal/bot/internal"
	"gostop/internal/domain"
)

// PlayContext is what a scoring rule sees about one candidate hand card.
type PlayContext struct {
	State  *domain.GameState
	Card   domain.Card
	Match  domain.Match
	Memory *brain.Memory
	Tuning Tuning
}

// PlayRule is a logic unit contributing to the score of playing one card.
type PlayRule interface {
	Name() string
	Score(ctx *PlayContext) int
}

// TripleCaptureRule favours taking a whole 3-stack.
type TripleCaptureRule struct{}

func (r *TripleCaptureRule) Name() string { return "TripleCapture" }

func (r *TripleCaptureRule) Score(ctx *PlayContext) int {
	if ctx.Match.Kind == domain.MatchTriple {
		return ctx.Tuning.TripleCaptureBonus
	}
	return 0
}

// CaptureValueRule values the table cards a play would meet, plus the card itself.
type CaptureValueRule struct{}

func (r *CaptureValueRule) Name() string { return "CaptureValue" }

func (r *CaptureValueRule) Score(ctx *PlayContext) int {
	if ctx.Match.Kind == domain.MatchNone {
		return 0
	}
	return internal.MatchedValue(ctx.Match, ctx.State.Table)*ctx.Tuning.CaptureWeight + internal.CardValue(ctx.Card)
}

// NoMatchRule penalises throwing a card away, junk less so.
type NoMatchRule struct{}

func (r *NoMatchRule) Name() string { return "NoMatch" }

func (r *NoMatchRule) Score(ctx *PlayContext) int {
	if ctx.Match.Kind != domain.MatchNone {
		return 0
	}
	score := ctx.Tuning.NoMatchPenalty
	if ctx.Card.Category == domain.CategoryJunk {
		score += ctx.Tuning.JunkDumpBonus
	}
	return score
}

// SafeDiscardRule prefers discards nobody can pair with later.
type SafeDiscardRule struct{}

func (r *SafeDiscardRule) Name() string { return "SafeDiscard" }

func (r *SafeDiscardRule) Score(ctx *PlayContext) int {
	if ctx.Match.Kind != domain.MatchNone || ctx.Memory == nil {
		return 0
	}
	return ctx.Memory.Gone(ctx.Card.Month) * ctx.Tuning.SafeDiscardWeight
}

// DefaultRules is the scoring pipeline of the heuristic bot.
func DefaultRules() []PlayRule {
	return []PlayRule{&TripleCaptureRule{}, &CaptureValueRule{}, &NoMatchRule{}, &SafeDiscardRule{}}
}

func scorePlay(rules []PlayRule, ctx *PlayContext) int {
	total := 0
	for _, r := range rules {
		total += r.Score(ctx)
	}
	return total
}
