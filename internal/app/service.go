package app

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"gostop/internal/domain"

	"go.uber.org/zap"
)

// Service contains Go-Stop use-cases operating on domain state.
type Service struct {
	rng *rand.Rand
	log *zap.Logger
}

// NewService constructs a Service with provided rng or a time-seeded default.
// A nil logger discards output.
func NewService(rng *rand.Rand, log *zap.Logger) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{rng: rng, log: log}
}

var (
	ErrNoGame         = errors.New("no game in progress")
	ErrMatchOver      = errors.New("match is over")
	ErrTooFewPlayers  = errors.New("not enough players to start")
	ErrTooManyPlayers = errors.New("too many players to start")
	ErrDealInProgress = errors.New("deal still in progress")
	ErrRedealLimit    = errors.New("table dealt a quad too many times")
)

// Match is one room's run of deals.
type Match struct {
	ID      string
	Game    *domain.GameState
	BaseBet int64
	// Totals accumulates each player's net chips over the match.
	Totals map[string]int
	Over   bool
}

// CurrentPlayerID returns the seat whose move it is, or "" between deals.
func (m *Match) CurrentPlayerID() string {
	if m == nil || m.Game == nil || m.Game.Phase == domain.PhaseFinished {
		return ""
	}
	return m.Game.CurrentPlayer().ID
}

// StartMatch seats players and deals the first deal.
func (s *Service) StartMatch(id string, players []domain.PlayerInfo, o domain.ConfigOverrides, baseBet int64) (*Match, []Event, error) {
	if len(players) < MinPlayersToStartGame {
		return nil, nil, ErrTooFewPlayers
	}
	if len(players) > domain.MaxPlayers {
		return nil, nil, ErrTooManyPlayers
	}
	game, err := domain.CreateGameState(players, o)
	if err != nil {
		return nil, nil, err
	}

	m := &Match{ID: id, Game: game, BaseBet: baseBet, Totals: make(map[string]int, len(players))}
	for _, p := range players {
		m.Totals[p.ID] = 0
	}
	s.log.Info("match started",
		zap.String("match_id", id),
		zap.Int("players", len(players)),
		zap.Int("target_score", game.Config.TargetScore),
		zap.Int("total_deals", game.Config.TotalDeals),
		zap.Int64("base_bet", baseBet),
	)

	events, err := s.beginDeal(m)
	if err != nil {
		return nil, nil, err
	}
	return m, events, nil
}

// NextDeal deals the next deal of a match whose current deal is settled.
func (s *Service) NextDeal(m *Match) ([]Event, error) {
	if err := ready(m); err != nil {
		return nil, err
	}
	if m.Game.Phase != domain.PhaseFinished {
		return nil, ErrDealInProgress
	}
	return s.beginDeal(m)
}

// Act applies a player action. A rejected action leaves m untouched.
func (s *Service) Act(m *Match, playerID string, a domain.Action) ([]Event, error) {
	if err := ready(m); err != nil {
		return nil, err
	}
	prev := m.Game
	next, err := domain.ProcessAction(prev, playerID, a)
	if err != nil {
		s.log.Debug("action rejected",
			zap.String("match_id", m.ID),
			zap.String("player_id", playerID),
			zap.String("action", string(a.Kind)),
			zap.Error(err),
		)
		return nil, err
	}
	m.Game = next

	events := []Event{{Kind: EventActionApplied, Payload: ActionAppliedPayload{PlayerID: playerID, Action: a}}}
	if a.Kind == domain.ActionGo {
		p := next.Player(playerID)
		s.log.Info("go declared",
			zap.String("match_id", m.ID),
			zap.String("player_id", playerID),
			zap.Int("go_count", p.GoCount),
			zap.Int("score", p.Score),
		)
		events = append(events, Event{
			Kind:    EventGoDeclared,
			Payload: GoDeclaredPayload{PlayerID: p.ID, PlayerName: p.Name, GoCount: p.GoCount},
		})
	}

	after, err := s.afterTransition(m, prev)
	if err != nil {
		return nil, err
	}
	return append(events, after...), nil
}

// ResolveStock resolves the stock card on show.
func (s *Service) ResolveStock(m *Match) ([]Event, error) {
	if err := ready(m); err != nil {
		return nil, err
	}
	prev := m.Game
	next, err := domain.ResolveDrawnStock(prev)
	if err != nil {
		return nil, err
	}
	m.Game = next
	return s.afterTransition(m, prev)
}

// SetConnected records a seat's connection state and republishes views.
func (s *Service) SetConnected(m *Match, playerID string, connected bool) ([]Event, error) {
	if m == nil || m.Game == nil {
		return nil, ErrNoGame
	}
	next := m.Game.Clone()
	p := next.Player(playerID)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownPlayer, playerID)
	}
	if p.IsConnected == connected {
		return nil, nil
	}
	p.IsConnected = connected
	m.Game = next
	s.log.Info("connection changed",
		zap.String("match_id", m.ID),
		zap.String("player_id", playerID),
		zap.Bool("connected", connected),
	)
	return s.Views(m), nil
}

// Views returns one state update per seat, each addressed to that seat.
func (s *Service) Views(m *Match) []Event {
	if m == nil || m.Game == nil {
		return nil
	}
	events := make([]Event, 0, len(m.Game.Players))
	for _, p := range m.Game.Players {
		events = append(events, s.ViewFor(m, p.ID))
	}
	return events
}

// ViewFor returns the state update for a single seat.
func (s *Service) ViewFor(m *Match, playerID string) Event {
	return Event{
		Kind:       EventStateUpdated,
		Payload:    StateUpdatedPayload{View: domain.ToClientGameState(m.Game, playerID)},
		Recipients: []string{playerID},
	}
}

func ready(m *Match) error {
	if m == nil || m.Game == nil {
		return ErrNoGame
	}
	if m.Over {
		return ErrMatchOver
	}
	return nil
}

func (s *Service) beginDeal(m *Match) ([]Event, error) {
	next, err := domain.StartDeal(m.Game, s.rng)
	if err != nil {
		return nil, err
	}
	log := s.log.With(zap.String("match_id", m.ID), zap.Int("deal", next.DealNumber))

	events := []Event{{
		Kind: EventDealStarted,
		Payload: DealStartedPayload{
			DealNumber:       next.DealNumber,
			TotalDeals:       next.Config.TotalDeals,
			LeaderID:         next.Players[next.LeaderIndex].ID,
			NagariMultiplier: next.NagariMultiplier,
		},
	}}

	var chk domain.InitialCheck
	for attempt := 0; ; attempt++ {
		next, chk, err = domain.CheckInitialConditions(next)
		if err != nil {
			return nil, err
		}
		if !chk.TableQuad {
			break
		}
		if attempt >= maxRedeals {
			return nil, ErrRedealLimit
		}
		months := quadMonths(next.Table)
		log.Info("table quad, redealing", zap.Any("months", months))
		events = append(events, Event{
			Kind:    EventTableRedealt,
			Payload: TableRedealtPayload{DealNumber: next.DealNumber, Months: months},
		})
		if next, err = domain.Redeal(next, s.rng); err != nil {
			return nil, err
		}
	}

	if len(chk.QuadWinners) > 0 {
		winner := chk.QuadWinners[0]
		log.Info("quad dealt, instant win", zap.String("player_id", winner))
		if next, err = domain.DeclareQuadWin(next, winner); err != nil {
			return nil, err
		}
	} else {
		log.Debug("deal started",
			zap.String("leader_id", next.CurrentPlayer().ID),
			zap.Int("nagari_multiplier", next.NagariMultiplier),
			zap.Any("table_triples", chk.TableTriples),
		)
	}

	m.Game = next
	events = append(events, s.Views(m)...)
	if next.Phase == domain.PhaseFinished {
		end, err := s.finishDeal(m)
		if err != nil {
			return nil, err
		}
		events = append(events, end...)
	}
	return events, nil
}

// afterTransition reports what changed between prev and m.Game.
func (s *Service) afterTransition(m *Match, prev *domain.GameState) ([]Event, error) {
	g := m.Game
	var events []Event

	if g.TurnCount > prev.TurnCount {
		for _, ev := range g.LastTurn.Turn.Events {
			s.log.Info("special event",
				zap.String("match_id", m.ID),
				zap.String("player_id", ev.PlayerID),
				zap.String("kind", string(ev.Kind)),
				zap.Int("junk_penalty", ev.JunkPenalty),
			)
			events = append(events, Event{Kind: EventSpecial, Payload: SpecialEventPayload{Event: ev}})
		}
	}
	if g.Phase == domain.PhaseDrawFromStock && g.Turn.StockCard != nil {
		events = append(events, Event{
			Kind: EventStockDrawn,
			Payload: StockDrawnPayload{
				PlayerID: g.CurrentPlayer().ID,
				Card:     *g.Turn.StockCard,
				FlipOnly: g.Turn.FlipOnly,
			},
		})
	}

	events = append(events, s.Views(m)...)

	if g.Phase == domain.PhaseFinished && prev.Phase != domain.PhaseFinished {
		end, err := s.finishDeal(m)
		if err != nil {
			return nil, err
		}
		events = append(events, end...)
	}
	return events, nil
}

// finishDeal settles the finished deal into chips and wallet amounts and
// closes the match after its last deal.
func (s *Service) finishDeal(m *Match) ([]Event, error) {
	g := m.Game
	st, err := domain.Settle(g)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]int64, len(st.NetChips))
	for id, chips := range st.NetChips {
		m.Totals[id] += chips
		changes[id] = int64(chips) * m.BaseBet
	}
	m.Over = g.DealNumber >= g.Config.TotalDeals

	s.log.Info("deal settled",
		zap.String("match_id", m.ID),
		zap.Int("deal", g.DealNumber),
		zap.String("winner", st.Winner),
		zap.String("reason", string(st.Reason)),
		zap.Int("winner_got", st.WinnerGot),
		zap.Int("nagari_multiplier", g.NagariMultiplier),
	)

	events := []Event{{
		Kind: EventDealEnded,
		Payload: DealEndedPayload{
			DealNumber:     g.DealNumber,
			Settlement:     st,
			BalanceChanges: changes,
			Totals:         copyTotals(m.Totals),
			MatchOver:      m.Over,
		},
	}}
	if m.Over {
		leaders := topScorers(m.Totals)
		s.log.Info("match ended",
			zap.String("match_id", m.ID),
			zap.Int("deals", g.DealNumber),
			zap.Strings("leaders", leaders),
		)
		events = append(events, Event{
			Kind:    EventMatchEnded,
			Payload: MatchEndedPayload{Deals: g.DealNumber, Totals: copyTotals(m.Totals), Leaders: leaders},
		})
	}
	return events, nil
}

func quadMonths(layout []domain.TableStack) []domain.Month {
	var out []domain.Month
	for _, st := range layout {
		if len(st.Cards) == domain.CardsPerMonth {
			out = append(out, st.Month)
		}
	}
	return out
}

func copyTotals(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// topScorers returns the players sharing the best total, sorted by id.
func topScorers(totals map[string]int) []string {
	var out []string
	best := 0
	for id, v := range totals {
		switch {
		case len(out) == 0 || v > best:
			out = []string{id}
			best = v
		case v == best:
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
