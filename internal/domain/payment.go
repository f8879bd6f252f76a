package domain

import "fmt"

const (
	// QuadWinChips is paid by each loser when a dealt hand holds a whole month.
	QuadWinChips = 5

	flatGoBonusLimit = 2
)

// Multiplier is one doubling source applied to a loser's payment.
type Multiplier struct {
	Reason string `json:"reason"`
	Factor int    `json:"multiplier"`
}

// PaymentMultipliers lists every multiplier the winner earns against loser.
func PaymentMultipliers(winner, loser Player, winnerScore, loserScore ScoreBreakdown, nagari int) []Multiplier {
	var ms []Multiplier
	if nagari > 1 {
		ms = append(ms, Multiplier{Reason: fmt.Sprintf("Nagari (x%d)", nagari), Factor: nagari})
	}
	for g := flatGoBonusLimit + 1; g <= winner.GoCount; g++ {
		ms = append(ms, Multiplier{Reason: fmt.Sprintf("Go #%d double", g), Factor: 2})
	}
	if winnerScore.JunkCount >= JunkThreshold && loserScore.JunkCount < PiBakThreshold {
		ms = append(ms, Multiplier{Reason: "Pi-bak (fewer than 5 junk)", Factor: 2})
	}
	if winnerScore.AnimalCount >= MeoungDdaThreshold {
		ms = append(ms, Multiplier{Reason: "Meoung-dda (7+ animals)", Factor: 2})
	}
	if winnerScore.BrightScore > 0 && len(loser.Captured.Brights) == 0 {
		ms = append(ms, Multiplier{Reason: "Guang-bak (no brights)", Factor: 2})
	}
	for range winner.HeundeumMonths {
		ms = append(ms, Multiplier{Reason: "Heundeum declaration", Factor: 2})
	}
	return ms
}

// CalculatePayment applies multipliers to the base payment. One or two goes
// add a chip each to the base; from the third go on they double instead.
func CalculatePayment(score, goCount int, ms []Multiplier) int {
	base := score
	if goCount >= 1 && goCount <= flatGoBonusLimit {
		base += goCount
	}
	return base * product(ms)
}

func product(ms []Multiplier) int {
	p := 1
	for _, m := range ms {
		p *= m.Factor
	}
	return p
}

// LoserPayment is what one loser owes the winner.
type LoserPayment struct {
	PlayerID    string       `json:"playerId"`
	Multipliers []Multiplier `json:"multipliers"`
	Amount      int          `json:"amount"`
}

// Settlement is the chip outcome of a finished deal.
type Settlement struct {
	Winner    string                    `json:"winner,omitempty"`
	Reason    EndReason                 `json:"reason"`
	Scores    map[string]ScoreBreakdown `json:"scores"`
	Payments  []LoserPayment            `json:"payments"`
	NetChips  map[string]int            `json:"netChips"`
	WinnerGot int                       `json:"winnerGot"`
}

// Settle computes payments for a finished deal. A nagari settles to zero.
func Settle(s *GameState) (Settlement, error) {
	if s.Phase != PhaseFinished {
		return Settlement{}, fmt.Errorf("%w: settle in phase %s", ErrWrongPhase, s.Phase)
	}
	st := Settlement{
		Winner:   s.Winner,
		Reason:   s.EndReason,
		Scores:   make(map[string]ScoreBreakdown, len(s.Players)),
		NetChips: make(map[string]int, len(s.Players)),
	}
	for _, p := range s.Players {
		st.Scores[p.ID] = CalculateScore(p.Captured)
		st.NetChips[p.ID] = 0
	}
	if s.Winner == "" {
		return st, nil
	}

	winner := s.Player(s.Winner)
	if winner == nil {
		return Settlement{}, fmt.Errorf("%w: winner %s", ErrUnknownPlayer, s.Winner)
	}
	for _, loser := range s.Players {
		if loser.ID == winner.ID {
			continue
		}
		var pay LoserPayment
		if s.EndReason == EndReasonQuad {
			pay = LoserPayment{PlayerID: loser.ID, Amount: QuadWinChips * s.NagariMultiplier}
			if s.NagariMultiplier > 1 {
				pay.Multipliers = []Multiplier{{Reason: fmt.Sprintf("Nagari (x%d)", s.NagariMultiplier), Factor: s.NagariMultiplier}}
			}
		} else {
			ms := PaymentMultipliers(*winner, loser, st.Scores[winner.ID], st.Scores[loser.ID], s.NagariMultiplier)
			pay = LoserPayment{
				PlayerID:    loser.ID,
				Multipliers: ms,
				Amount:      CalculatePayment(st.Scores[winner.ID].Total, winner.GoCount, ms),
			}
		}
		st.Payments = append(st.Payments, pay)
		st.NetChips[loser.ID] -= pay.Amount
		st.WinnerGot += pay.Amount
	}
	st.NetChips[winner.ID] = st.WinnerGot
	return st, nil
}
