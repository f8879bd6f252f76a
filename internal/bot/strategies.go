package bot

import (
	"slices"

	"gostop/internal/bot/brain"
	"gostop/internal/bot/internal"
	"gostop/internal/domain"
)

// EasyBot takes the first legal move and always stops.
type EasyBot struct{}

func (b *EasyBot) ChooseAction(s *domain.GameState, playerID string) (domain.Action, error) {
	valid := domain.GetValidActions(s)
	if len(valid) == 0 {
		return domain.Action{}, ErrNoAction
	}
	p := s.Player(playerID)
	switch valid[0] {
	case domain.ActionPlayCard:
		return domain.PlayCard(p.Hand[0].ID), nil
	case domain.ActionChooseCapture:
		return domain.ChooseCapture(domain.GetCaptureChoices(s)[0].ID), nil
	case domain.ActionGo:
		return domain.Stop(), nil
	case domain.ActionSkipHand:
		return domain.SkipHand(), nil
	default:
		return domain.Action{}, ErrNoAction
	}
}

func (b *EasyBot) OnEvent(event any) {}

// HeuristicBot values captures by card rank and goes only with a safe lead.
type HeuristicBot struct {
	Tuning Tuning
	Rules  []PlayRule
	Memory *brain.Memory
}

// NewHeuristicBot builds a heuristic bot with the default rule pipeline.
func NewHeuristicBot(t Tuning) *HeuristicBot {
	return &HeuristicBot{Tuning: t, Rules: DefaultRules(), Memory: brain.NewMemory()}
}

func (b *HeuristicBot) ChooseAction(s *domain.GameState, playerID string) (domain.Action, error) {
	valid := domain.GetValidActions(s)
	if len(valid) == 0 {
		return domain.Action{}, ErrNoAction
	}
	p := s.Player(playerID)
	if p == nil {
		return domain.Action{}, ErrNoAction
	}
	b.Memory.Observe(s)

	switch {
	case slices.Contains(valid, domain.ActionGo):
		return b.goOrStop(s, p), nil
	case slices.Contains(valid, domain.ActionChooseCapture):
		target, ok := internal.BestTarget(domain.GetCaptureChoices(s))
		if !ok {
			return domain.Action{}, ErrNoAction
		}
		return domain.ChooseCapture(target.ID), nil
	}

	if slices.Contains(valid, domain.ActionBomb) {
		if m, ok := b.bombMonth(s, p); ok {
			return domain.Bomb(m), nil
		}
	}
	if slices.Contains(valid, domain.ActionHeundeum) {
		if m, ok := undeclaredTriple(p); ok {
			return domain.Heundeum(m), nil
		}
	}
	if slices.Contains(valid, domain.ActionPlayCard) {
		card, score := b.bestPlay(s, p)
		if score < b.Tuning.SkipHandBelow && slices.Contains(valid, domain.ActionSkipHand) {
			return domain.SkipHand(), nil
		}
		return domain.PlayCard(card.ID), nil
	}
	if slices.Contains(valid, domain.ActionSkipHand) {
		return domain.SkipHand(), nil
	}
	return domain.Action{}, ErrNoAction
}

// OnEvent resets the capture memory when a new deal starts.
func (b *HeuristicBot) OnEvent(event any) {
	if _, ok := event.(DealStarted); ok {
		b.Memory.Reset()
	}
}

func (b *HeuristicBot) goOrStop(s *domain.GameState, p *domain.Player) domain.Action {
	if p.GoCount >= b.Tuning.StopAfterGoes {
		return domain.Stop()
	}
	target := s.Config.TargetScore
	opponentMax := 0
	for _, o := range s.Players {
		if o.ID != p.ID {
			opponentMax = max(opponentMax, o.Score)
		}
	}
	if p.Score >= target+b.Tuning.GoLeadMargin && opponentMax < target-b.Tuning.OpponentMargin {
		return domain.Go()
	}
	if p.Score >= target+b.Tuning.EarlyGoMargin && p.GoCount == 0 && internal.DetectPhase(s) != internal.PhaseEnd {
		return domain.Go()
	}
	return domain.Stop()
}

// bombMonth returns the first bombable month whose table stack is worth taking.
func (b *HeuristicBot) bombMonth(s *domain.GameState, p *domain.Player) (domain.Month, bool) {
	for _, m := range domain.FindBombs(p.Hand, s.Table) {
		for _, st := range s.Table {
			if st.Month == m && internal.StackValue(st.Cards) >= b.Tuning.BombStackValue {
				return m, true
			}
		}
	}
	return 0, false
}

// bestPlay scores every hand card through the rule pipeline. Ties keep hand order.
func (b *HeuristicBot) bestPlay(s *domain.GameState, p *domain.Player) (domain.Card, int) {
	var best domain.Card
	bestScore := 0
	for i, c := range p.Hand {
		ctx := &PlayContext{State: s, Card: c, Match: domain.Classify(c, s.Table), Memory: b.Memory, Tuning: b.Tuning}
		score := scorePlay(b.Rules, ctx)
		if i == 0 || score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore
}

func undeclaredTriple(p *domain.Player) (domain.Month, bool) {
	for _, m := range domain.FindTriples(p.Hand) {
		if !slices.Contains(p.HeundeumMonths, m) {
			return m, true
		}
	}
	return 0, false
}
