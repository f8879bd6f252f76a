// Command simulate plays bot-only Go-Stop matches through the app service and
// reports how deals ended. It is a soak test for the rules engine.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"gostop/internal/app"
	"gostop/internal/bot"
	"gostop/internal/config"
	"gostop/internal/domain"
	"gostop/internal/logger"

	"go.uber.org/zap"
)

type options struct {
	Matches int
	Players int
	Deals   int
	Seed    int64
	Level   bot.BotLevel
	BaseBet int64
}

type summary struct {
	Matches    int
	Deals      int
	Reasons    map[domain.EndReason]int
	Specials   map[domain.SpecialEventKind]int
	Gos        int
	BestPayout int
	MaxNagari  int
	// ChipTotals is keyed by seat position.
	ChipTotals map[string]int
}

func main() {
	var (
		configPath = flag.String("config", "", "game config file (defaults when empty)")
		matches    = flag.Int("matches", 100, "number of matches to play")
		players    = flag.Int("players", 3, "seats per match (2-4)")
		deals      = flag.Int("deals", 0, "deals per match (0 uses the config)")
		seed       = flag.Int64("seed", 1, "random seed")
		level      = flag.String("level", "", "bot level for every seat (easy|heuristic, default from config)")
	)
	flag.Parse()

	if *configPath != "" {
		if err := config.LoadGameConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg := config.GetGameConfig()

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	o := options{
		Matches: *matches,
		Players: *players,
		Deals:   *deals,
		Seed:    *seed,
		Level:   bot.BotLevel(*level),
		BaseBet: cfg.BaseBet(""),
	}
	if o.Deals == 0 {
		o.Deals = cfg.TotalDeals
	}
	if o.Level == "" {
		o.Level = bot.BotLevel(cfg.BotLevel)
	}

	rules := cfg.Overrides(o.Players)
	rules.TotalDeals = o.Deals

	s, err := simulate(o, rules, log)
	if err != nil {
		log.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
	report(s, log)
}

// simulate plays o.Matches matches of bots against each other.
func simulate(o options, rules domain.ConfigOverrides, log *zap.Logger) (summary, error) {
	s := summary{
		Reasons:    make(map[domain.EndReason]int),
		Specials:   make(map[domain.SpecialEventKind]int),
		ChipTotals: make(map[string]int),
	}
	rng := rand.New(rand.NewSource(o.Seed))

	for n := 0; n < o.Matches; n++ {
		agents := make(map[string]*bot.Agent, o.Players)
		infos := make([]domain.PlayerInfo, o.Players)
		for i := 0; i < o.Players; i++ {
			id := bot.NewIdentity(i, o.Level)
			agent, err := bot.NewAgent(id)
			if err != nil {
				return s, err
			}
			agents[id.UserID] = agent
			// Seats are tallied by position, not by per-match ids.
			infos[i] = domain.PlayerInfo{ID: id.UserID, Name: fmt.Sprintf("seat-%d", i), IsBot: true}
		}

		svc := app.NewService(rand.New(rand.NewSource(rng.Int63())), log)
		m, events, err := svc.StartMatch(fmt.Sprintf("sim-%d", n), infos, rules, o.BaseBet)
		if err != nil {
			return s, err
		}
		s.tally(events, agents)

		for !m.Over {
			switch m.Game.Phase {
			case domain.PhaseFinished:
				events, err = svc.NextDeal(m)
			case domain.PhaseDrawFromStock:
				events, err = svc.ResolveStock(m)
			default:
				current := m.CurrentPlayerID()
				var a domain.Action
				if a, err = agents[current].Play(m.Game); err != nil {
					return s, fmt.Errorf("match %d: %w", n, err)
				}
				events, err = svc.Act(m, current, a)
			}
			if err != nil {
				return s, fmt.Errorf("match %d: %w", n, err)
			}
			s.tally(events, agents)
		}

		for i, p := range infos {
			s.ChipTotals[fmt.Sprintf("seat-%d", i)] += m.Totals[p.ID]
		}
		s.Matches++
	}
	return s, nil
}

func (s *summary) tally(events []app.Event, agents map[string]*bot.Agent) {
	for _, ev := range events {
		switch p := ev.Payload.(type) {
		case app.DealStartedPayload:
			for _, a := range agents {
				a.OnGameEvent(bot.DealStarted{DealNumber: p.DealNumber})
			}
			s.MaxNagari = max(s.MaxNagari, p.NagariMultiplier)
		case app.DealEndedPayload:
			s.Deals++
			s.Reasons[p.Settlement.Reason]++
			s.BestPayout = max(s.BestPayout, p.Settlement.WinnerGot)
		case app.SpecialEventPayload:
			s.Specials[p.Event.Kind]++
		case app.GoDeclaredPayload:
			s.Gos++
		}
	}
}

func report(s summary, log *zap.Logger) {
	seats := make([]string, 0, len(s.ChipTotals))
	for seat := range s.ChipTotals {
		seats = append(seats, seat)
	}
	sort.Strings(seats)

	fields := []zap.Field{
		zap.Int("matches", s.Matches),
		zap.Int("deals", s.Deals),
		zap.Int("gos", s.Gos),
		zap.Int("best_payout", s.BestPayout),
		zap.Int("max_nagari_multiplier", s.MaxNagari),
		zap.Any("end_reasons", s.Reasons),
		zap.Any("special_events", s.Specials),
	}
	for _, seat := range seats {
		fields = append(fields, zap.Int(seat, s.ChipTotals[seat]))
	}
	log.Info("simulation finished", fields...)
}
