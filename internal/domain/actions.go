package domain

import "fmt"

// ActionKind names a player action.
type ActionKind string

const (
	ActionPlayCard      ActionKind = "play-card"
	ActionChooseCapture ActionKind = "choose-capture"
	ActionGo            ActionKind = "go"
	ActionStop          ActionKind = "stop"
	ActionBomb          ActionKind = "bomb"
	ActionSkipHand      ActionKind = "skip-hand"
	ActionHeundeum      ActionKind = "heundeum"
)

// Action is one player move. CardID is used by play-card, TargetCardID by
// play-card and choose-capture, Month by bomb and heundeum.
type Action struct {
	Kind         ActionKind `json:"type"`
	CardID       string     `json:"cardId,omitempty"`
	TargetCardID string     `json:"targetCardId,omitempty"`
	Month        Month      `json:"month,omitempty"`
}

func PlayCard(cardID string) Action { return Action{Kind: ActionPlayCard, CardID: cardID} }

func PlayCardOnto(cardID, targetID string) Action {
	return Action{Kind: ActionPlayCard, CardID: cardID, TargetCardID: targetID}
}

func ChooseCapture(targetID string) Action {
	return Action{Kind: ActionChooseCapture, TargetCardID: targetID}
}

func Go() Action { return Action{Kind: ActionGo} }

func Stop() Action { return Action{Kind: ActionStop} }

func Bomb(m Month) Action { return Action{Kind: ActionBomb, Month: m} }

func SkipHand() Action { return Action{Kind: ActionSkipHand} }

func Heundeum(m Month) Action { return Action{Kind: ActionHeundeum, Month: m} }

func hasAction(kinds []ActionKind, k ActionKind) bool {
	for _, x := range kinds {
		if x == k {
			return true
		}
	}
	return false
}

func playCard(s *GameState, a Action) error {
	p := s.CurrentPlayer()
	i := cardIndex(p.Hand, a.CardID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrCardNotInHand, a.CardID)
	}
	card := p.Hand[i]
	card.FaceUp = true
	p.Hand = removeCard(p.Hand, i)
	s.Turn = TurnState{HandCard: &card, IsFirstTurn: s.TurnCount < len(s.Players)}

	if a.TargetCardID == "" && ChoiceOptions(card, s.Table) != nil {
		s.Phase = PhaseChooseHandCapture
		return nil
	}
	return placeHandCard(s, card, a.TargetCardID)
}

func placeHandCard(s *GameState, card Card, targetID string) error {
	pl, err := Apply(card, s.Table, targetID)
	if err != nil {
		return err
	}
	s.Table = pl.Layout
	s.Turn.Captured = append(s.Turn.Captured, pl.Captured...)
	releaseLocks(s, pl.Captured)
	drawStock(s)
	return nil
}

func chooseCapture(s *GameState, a Action) error {
	if a.TargetCardID == "" {
		return fmt.Errorf("%w: no target given", ErrInvalidCaptureTarget)
	}
	switch s.Phase {
	case PhaseChooseHandCapture:
		return placeHandCard(s, *s.Turn.HandCard, a.TargetCardID)
	case PhaseChooseStockCapture:
		return resolveStock(s, a.TargetCardID)
	default:
		return fmt.Errorf("%w: choose-capture during %s", ErrWrongPhase, s.Phase)
	}
}

func declareGo(s *GameState) {
	p := s.CurrentPlayer()
	p.GoCount++
	s.LastGoScores[p.ID] = p.Score
	if cardsExhausted(s) {
		endAsNagari(s)
		return
	}
	advance(s)
}

func declareStop(s *GameState) {
	s.Phase = PhaseFinished
	s.Winner = s.CurrentPlayer().ID
	s.EndReason = EndReasonStop
}

func playBomb(s *GameState, m Month) error {
	p := s.CurrentPlayer()
	if !containsMonth(FindBombs(p.Hand, s.Table), m) {
		return fmt.Errorf("%w: month %d", ErrBombNotAvailable, m)
	}
	t := stackIndexOfMonth(s.Table, m)

	var bombCards, keep []Card
	for _, c := range p.Hand {
		if c.Month == m && len(bombCards) < 3 {
			c.FaceUp = true
			bombCards = append(bombCards, c)
			continue
		}
		keep = append(keep, c)
	}
	captured := append(append([]Card(nil), bombCards...), s.Table[t].Cards...)

	p.Hand = keep
	p.BombSkipsRemaining += bombSkipCredits
	s.Table = withoutStacks(s.Table, t)
	lead := bombCards[0]
	s.Turn = TurnState{
		HandCard:    &lead,
		Captured:    captured,
		Events:      []SpecialEvent{{Kind: EventBomb, PlayerID: p.ID, JunkPenalty: EventBomb.JunkPenalty()}},
		IsFirstTurn: s.TurnCount < len(s.Players),
	}
	releaseLocks(s, captured)
	drawStock(s)
	return nil
}

func skipHand(s *GameState) error {
	p := s.CurrentPlayer()
	if p.BombSkipsRemaining <= 0 {
		return ErrNoSkipsRemaining
	}
	p.BombSkipsRemaining--
	s.Turn = TurnState{FlipOnly: true}
	drawStock(s)
	return nil
}

func declareHeundeum(s *GameState, m Month) error {
	p := s.CurrentPlayer()
	if !containsMonth(undeclaredTriples(p), m) {
		return fmt.Errorf("%w: month %d", ErrHeundeumNotAvailable, m)
	}
	p.HeundeumMonths = append(p.HeundeumMonths, m)
	return nil
}
