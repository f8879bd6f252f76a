package domain

import (
	"fmt"
	"math/rand"
)

const (
	DefaultTargetScore2P = 7
	DefaultTargetScore3P = 3
	DefaultTotalDeals    = 12

	MinPlayers = 2
	MaxPlayers = 4

	bombSkipCredits = 2
)

// PlayerInfo seats one participant.
type PlayerInfo struct {
	ID    string
	Name  string
	IsBot bool
}

// ConfigOverrides replaces defaults for a room. Zero fields keep the default.
type ConfigOverrides struct {
	TargetScore           int
	TotalDeals            int
	UseJokers             bool
	KeepDisconnectedTurns bool
}

// DefaultConfig is the rule set for playerCount seats.
func DefaultConfig(playerCount int) Config {
	target := DefaultTargetScore3P
	if playerCount <= 2 {
		target = DefaultTargetScore2P
	}
	return Config{
		PlayerCount: playerCount,
		TargetScore: target,
		TotalDeals:  DefaultTotalDeals,
	}
}

// CreateGameState builds a room's game in the waiting phase.
func CreateGameState(players []PlayerInfo, o ConfigOverrides) (*GameState, error) {
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return nil, fmt.Errorf("%w: got %d", ErrPlayerCount, len(players))
	}
	cfg := DefaultConfig(len(players))
	if o.TargetScore > 0 {
		cfg.TargetScore = o.TargetScore
	}
	if o.TotalDeals > 0 {
		cfg.TotalDeals = o.TotalDeals
	}
	cfg.UseJokers = o.UseJokers
	cfg.KeepDisconnectedTurns = o.KeepDisconnectedTurns

	s := &GameState{
		Config:           cfg,
		Phase:            PhaseWaiting,
		Players:          make([]Player, len(players)),
		NagariMultiplier: 1,
		PpukLocks:        map[string][]Month{},
		LastGoScores:     map[string]int{},
	}
	for i, p := range players {
		s.Players[i] = Player{ID: p.ID, Name: p.Name, IsBot: p.IsBot, IsConnected: !p.IsBot}
	}
	return s, nil
}

// StartDeal shuffles a fresh deck with rng and deals the next deal.
func StartDeal(s *GameState, rng *rand.Rand) (*GameState, error) {
	return StartDealWithDeck(s, NewDeck(rng))
}

// StartDealWithDeck deals the next deal from an arranged deck. The previous
// winner leads and a decisive deal resets the nagari multiplier.
func StartDealWithDeck(s *GameState, deck []Card) (*GameState, error) {
	next := s.Clone()
	if next.Phase == PhaseFinished && next.Winner != "" {
		if i := next.PlayerIndex(next.Winner); i >= 0 {
			next.LeaderIndex = i
		}
		next.NagariMultiplier = 1
	}
	if err := dealInto(next, deck); err != nil {
		return s, err
	}
	next.DealNumber++
	return next, nil
}

// Redeal throws in the current deal after a table quad. The deal number and
// multiplier are kept.
func Redeal(s *GameState, rng *rand.Rand) (*GameState, error) {
	return RedealWithDeck(s, NewDeck(rng))
}

// RedealWithDeck is Redeal with an arranged deck.
func RedealWithDeck(s *GameState, deck []Card) (*GameState, error) {
	if s.Phase != PhaseCheckingInitial {
		return s, fmt.Errorf("%w: redeal in phase %s", ErrWrongPhase, s.Phase)
	}
	next := s.Clone()
	if err := dealInto(next, deck); err != nil {
		return s, err
	}
	return next, nil
}

func dealInto(s *GameState, deck []Card) error {
	res, err := Deal(deck, len(s.Players))
	if err != nil {
		return err
	}
	for i := range s.Players {
		p := &s.Players[i]
		p.Hand = res.Hands[i]
		SortHand(p.Hand)
		p.Captured = CapturedCards{}
		p.Score = 0
		p.GoCount = 0
		p.HeundeumMonths = nil
		p.BombSkipsRemaining = 0
	}
	s.Phase = PhaseCheckingInitial
	s.CurrentPlayerIndex = s.LeaderIndex
	s.Stock = res.Stock
	s.Table = GroupIntoStacks(res.Table)
	s.Turn = TurnState{}
	s.PpukLocks = map[string][]Month{}
	s.Winner = ""
	s.EndReason = EndReasonNone
	s.LastGoScores = map[string]int{}
	s.TurnCount = 0
	s.LastTurn = TurnRecord{}
	return nil
}

// InitialCheck reports instant-win and redeal conditions of a fresh deal.
type InitialCheck struct {
	QuadWinners  []string
	TableQuad    bool
	TableTriples []Month
}

// CheckInitialConditions inspects a fresh deal. When nothing interrupts play
// the leader's turn begins; otherwise the state stays in checking-initial for
// the caller to Redeal or DeclareQuadWin.
func CheckInitialConditions(s *GameState) (*GameState, InitialCheck, error) {
	if s.Phase != PhaseCheckingInitial {
		return s, InitialCheck{}, fmt.Errorf("%w: initial check in phase %s", ErrWrongPhase, s.Phase)
	}
	var chk InitialCheck
	for _, p := range s.Players {
		if len(FindQuads(p.Hand)) > 0 {
			chk.QuadWinners = append(chk.QuadWinners, p.ID)
		}
	}
	for _, st := range s.Table {
		switch len(st.Cards) {
		case CardsPerMonth:
			chk.TableQuad = true
		case 3:
			chk.TableTriples = append(chk.TableTriples, st.Month)
		}
	}
	if chk.TableQuad || len(chk.QuadWinners) > 0 {
		return s, chk, nil
	}
	next := s.Clone()
	checkLayout(next.Table)
	beginTurn(next)
	return next, chk, nil
}

// DeclareQuadWin ends the deal with playerID winning on a dealt quad.
func DeclareQuadWin(s *GameState, playerID string) (*GameState, error) {
	if s.Phase != PhaseCheckingInitial {
		return s, fmt.Errorf("%w: quad win in phase %s", ErrWrongPhase, s.Phase)
	}
	p := s.Player(playerID)
	if p == nil {
		return s, ErrUnknownPlayer
	}
	if len(FindQuads(p.Hand)) == 0 {
		return s, fmt.Errorf("%w: %s holds no quad", ErrIllegalAction, playerID)
	}
	next := s.Clone()
	next.Phase = PhaseFinished
	next.Winner = playerID
	next.EndReason = EndReasonQuad
	return next, nil
}

// GetValidActions lists what the current player may do now.
func GetValidActions(s *GameState) []ActionKind {
	p := s.CurrentPlayer()
	switch s.Phase {
	case PhasePlayFromHand:
		var out []ActionKind
		if len(p.Hand) > 0 {
			out = append(out, ActionPlayCard)
			if len(FindBombs(p.Hand, s.Table)) > 0 {
				out = append(out, ActionBomb)
			}
			if len(undeclaredTriples(p)) > 0 {
				out = append(out, ActionHeundeum)
			}
		}
		if p.BombSkipsRemaining > 0 && len(s.Stock) > 0 {
			out = append(out, ActionSkipHand)
		}
		return out
	case PhaseChooseHandCapture, PhaseChooseStockCapture:
		return []ActionKind{ActionChooseCapture}
	case PhaseGoStopDecision:
		return []ActionKind{ActionGo, ActionStop}
	default:
		return nil
	}
}

// GetCaptureChoices lists the cards a pending choice may target.
func GetCaptureChoices(s *GameState) []Card {
	switch s.Phase {
	case PhaseChooseHandCapture:
		if s.Turn.HandCard == nil {
			return nil
		}
		return ChoiceOptions(*s.Turn.HandCard, s.Table)
	case PhaseChooseStockCapture:
		if s.Turn.StockCard == nil {
			return nil
		}
		return StockChoiceOptions(*s.Turn.StockCard, s.Table)
	default:
		return nil
	}
}

// ProcessAction applies one player action. A rejected action returns s
// itself, unchanged, with an error wrapping ErrIllegalAction or ErrInvalidTarget.
func ProcessAction(s *GameState, playerID string, a Action) (*GameState, error) {
	idx := s.PlayerIndex(playerID)
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if idx != s.CurrentPlayerIndex {
		return s, fmt.Errorf("%w: %s acted during %s's turn", ErrNotYourTurn, playerID, s.CurrentPlayer().ID)
	}
	if !hasAction(GetValidActions(s), a.Kind) {
		return s, fmt.Errorf("%w: %s during %s", ErrActionNotAllowed, a.Kind, s.Phase)
	}

	next := s.Clone()
	var err error
	switch a.Kind {
	case ActionPlayCard:
		err = playCard(next, a)
	case ActionChooseCapture:
		err = chooseCapture(next, a)
	case ActionGo:
		declareGo(next)
	case ActionStop:
		declareStop(next)
	case ActionBomb:
		err = playBomb(next, a.Month)
	case ActionSkipHand:
		err = skipHand(next)
	case ActionHeundeum:
		err = declareHeundeum(next, a.Month)
	default:
		err = fmt.Errorf("%w: unknown action %q", ErrActionNotAllowed, a.Kind)
	}
	if err != nil {
		return s, err
	}
	return next, nil
}

// ResolveDrawnStock resolves the card waiting in draw-from-stock.
func ResolveDrawnStock(s *GameState) (*GameState, error) {
	if s.Phase != PhaseDrawFromStock {
		return s, fmt.Errorf("%w: resolve stock in phase %s", ErrWrongPhase, s.Phase)
	}
	next := s.Clone()
	if err := resolveStock(next, ""); err != nil {
		return s, err
	}
	return next, nil
}

// beginTurn resets turn scratch for the current player. An empty hand with
// stock left turns into a flip-only draw.
func beginTurn(s *GameState) {
	p := s.CurrentPlayer()
	s.Turn = TurnState{IsFirstTurn: s.TurnCount < len(s.Players)}
	if len(p.Hand) == 0 && len(s.Stock) > 0 {
		s.Turn.FlipOnly = true
		drawStock(s)
		return
	}
	s.Phase = PhasePlayFromHand
}

// drawStock flips the top stock card into the turn, or finalizes the turn
// when the stock is spent.
func drawStock(s *GameState) {
	card, rest, ok := drawFromStock(s.Stock)
	if !ok {
		finalizeTurn(s)
		return
	}
	s.Stock = rest
	s.Turn.StockCard = &card
	s.Phase = PhaseDrawFromStock
}

func resolveStock(s *GameState, targetID string) error {
	res, err := ResolveStock(*s.Turn.StockCard, s.Table, targetID)
	if err != nil {
		return err
	}
	if res.NeedsChoice {
		s.Phase = PhaseChooseStockCapture
		return nil
	}

	actor := s.CurrentPlayer().ID
	s.Table = res.Layout
	s.Turn.Captured = append(s.Turn.Captured, res.Captured...)
	if kind := stockEventKind(s, actor, res); kind != "" {
		s.Turn.Events = append(s.Turn.Events, SpecialEvent{Kind: kind, PlayerID: actor, JunkPenalty: kind.JunkPenalty()})
	}
	releaseLocks(s, res.Captured)
	if res.CreatedPpuk {
		s.PpukLocks[actor] = append(s.PpukLocks[actor], s.Turn.StockCard.Month)
	}
	finalizeTurn(s)
	return nil
}

func stockEventKind(s *GameState, actor string, res StockResolution) SpecialEventKind {
	switch res.Event {
	case EventPpuk:
		if res.TripleMonth != 0 && containsMonth(s.PpukLocks[actor], res.TripleMonth) {
			return EventJaPpuk
		}
	case EventChok, EventTtadak:
		if cardsExhausted(s) {
			return ""
		}
	}
	return res.Event
}

// releaseLocks drops ppuk locks on months whose stack was captured.
func releaseLocks(s *GameState, captured []Card) {
	for _, c := range captured {
		if stackIndexOfMonth(s.Table, c.Month) >= 0 {
			continue
		}
		for id, months := range s.PpukLocks {
			kept := months[:0]
			for _, m := range months {
				if m != c.Month {
					kept = append(kept, m)
				}
			}
			if len(kept) == 0 {
				delete(s.PpukLocks, id)
			} else {
				s.PpukLocks[id] = kept
			}
		}
	}
}

// finalizeTurn banks the turn's captures, settles junk penalties, rescoring
// every player, and moves to the decision, the next player or the deal end.
func finalizeTurn(s *GameState) {
	actor := s.CurrentPlayerIndex
	s.Players[actor].Captured.Add(s.Turn.Captured...)
	for _, ev := range s.Turn.Events {
		applyJunkPenalty(s, ev)
	}
	for i := range s.Players {
		s.Players[i].Score = CalculateScore(s.Players[i].Captured).Total
	}
	clearPending(s.Table)
	checkLayout(s.Table)
	s.TurnCount++
	s.LastTurn = TurnRecord{Number: s.TurnCount, PlayerID: s.Players[actor].ID, Turn: s.Turn.clone()}

	p := &s.Players[actor]
	if p.Score >= s.Config.TargetScore && p.Score > s.LastGoScores[p.ID] {
		s.Phase = PhaseGoStopDecision
		return
	}
	if cardsExhausted(s) {
		endAsNagari(s)
		return
	}
	advance(s)
}

func applyJunkPenalty(s *GameState, ev SpecialEvent) {
	to := s.PlayerIndex(ev.PlayerID)
	if to < 0 {
		panic("invariant: special event for unknown player " + ev.PlayerID)
	}
	for i := range s.Players {
		if i == to {
			continue
		}
		for k := 0; k < ev.JunkPenalty; k++ {
			c, ok := surrenderJunk(&s.Players[i].Captured)
			if !ok {
				break
			}
			s.Players[to].Captured.Add(c)
		}
	}
}

// surrenderJunk removes the least valuable junk card: singles go before doubles.
func surrenderJunk(c *CapturedCards) (Card, bool) {
	pick := -1
	for i, card := range c.Junk {
		if !card.IsDoubleJunk {
			pick = i
			break
		}
		if pick < 0 {
			pick = i
		}
	}
	if pick < 0 {
		return Card{}, false
	}
	card := c.Junk[pick]
	c.Junk = removeCard(c.Junk, pick)
	return card, true
}

// advance passes play to the next seat that can act. Disconnected humans are
// skipped unless nobody else can move or the config keeps their turns.
func advance(s *GameState) {
	n := len(s.Players)
	passes := []bool{true, false}
	if s.Config.KeepDisconnectedTurns {
		passes = passes[1:]
	}
	for _, requireConnected := range passes {
		for step := 1; step <= n; step++ {
			i := (s.CurrentPlayerIndex + step) % n
			p := s.Players[i]
			if requireConnected && !p.IsConnected && !p.IsBot {
				continue
			}
			if len(p.Hand) == 0 && len(s.Stock) == 0 {
				continue
			}
			s.CurrentPlayerIndex = i
			beginTurn(s)
			return
		}
	}
	endAsNagari(s)
}

func cardsExhausted(s *GameState) bool {
	if len(s.Stock) > 0 {
		return false
	}
	for _, p := range s.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

func endAsNagari(s *GameState) {
	s.Phase = PhaseFinished
	s.Winner = ""
	s.EndReason = EndReasonNagari
	s.NagariMultiplier *= 2
}

func undeclaredTriples(p *Player) []Month {
	var out []Month
	for _, m := range FindTriples(p.Hand) {
		if !containsMonth(p.HeundeumMonths, m) {
			out = append(out, m)
		}
	}
	return out
}
