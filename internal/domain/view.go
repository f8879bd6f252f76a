package domain

// PlayerView is a player as every seat sees them.
type PlayerView struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	HandSize           int           `json:"handSize"`
	Captured           CapturedCards `json:"captured"`
	Score              int           `json:"score"`
	GoCount            int           `json:"goCount"`
	HeundeumMonths     []Month       `json:"heundeumMonths"`
	IsBot              bool          `json:"isBot"`
	IsConnected        bool          `json:"isConnected"`
	BombSkipsRemaining int           `json:"bombSkipsRemaining"`
}

// TurnView is the public part of the turn in progress.
type TurnView struct {
	HandCard  *Card          `json:"handCard"`
	StockCard *Card          `json:"stockCard"`
	Captured  []Card         `json:"capturedThisTurn"`
	Events    []SpecialEvent `json:"specialEvents"`
}

// ClientView is the redacted state sent to one player.
type ClientView struct {
	Phase              Phase        `json:"phase"`
	MyID               string       `json:"myId"`
	MyHand             []Card       `json:"myHand"`
	Players            []PlayerView `json:"players"`
	CurrentPlayerIndex int          `json:"currentPlayerIndex"`
	Table              []TableStack `json:"tableStacks"`
	StockSize          int          `json:"deckSize"`
	DealNumber         int          `json:"dealNumber"`
	NagariMultiplier   int          `json:"nagariMultiplier"`
	Turn               TurnView     `json:"turnState"`
	LastTurn           TurnRecord   `json:"lastTurn"`
	ValidActions       []ActionKind `json:"validActions"`
	CaptureChoices     []Card       `json:"captureChoices"`
	Winner             string       `json:"winner,omitempty"`
	EndReason          EndReason    `json:"endReason,omitempty"`
	Config             Config       `json:"config"`
}

// ToClientGameState builds playerID's view. Other hands are reduced to their
// size; valid actions and capture choices are only filled in for the seat
// whose move it is.
func ToClientGameState(s *GameState, playerID string) ClientView {
	snap := s.Clone()
	v := ClientView{
		Phase:              snap.Phase,
		MyID:               playerID,
		MyHand:             []Card{},
		Players:            make([]PlayerView, len(snap.Players)),
		CurrentPlayerIndex: snap.CurrentPlayerIndex,
		Table:              snap.Table,
		StockSize:          len(snap.Stock),
		DealNumber:         snap.DealNumber,
		NagariMultiplier:   snap.NagariMultiplier,
		Turn: TurnView{
			HandCard:  snap.Turn.HandCard,
			StockCard: snap.Turn.StockCard,
			Captured:  snap.Turn.Captured,
			Events:    snap.Turn.Events,
		},
		LastTurn:       snap.LastTurn,
		ValidActions:   []ActionKind{},
		CaptureChoices: []Card{},
		Winner:         snap.Winner,
		EndReason:      snap.EndReason,
		Config:         snap.Config,
	}
	for i, p := range snap.Players {
		v.Players[i] = PlayerView{
			ID:                 p.ID,
			Name:               p.Name,
			HandSize:           len(p.Hand),
			Captured:           p.Captured,
			Score:              p.Score,
			GoCount:            p.GoCount,
			HeundeumMonths:     p.HeundeumMonths,
			IsBot:              p.IsBot,
			IsConnected:        p.IsConnected,
			BombSkipsRemaining: p.BombSkipsRemaining,
		}
		if p.ID == playerID && p.Hand != nil {
			v.MyHand = p.Hand
		}
	}
	if len(snap.Players) > 0 && snap.CurrentPlayer().ID == playerID {
		if acts := GetValidActions(snap); acts != nil {
			v.ValidActions = acts
		}
		if choices := GetCaptureChoices(snap); choices != nil {
			v.CaptureChoices = choices
		}
	}
	return v
}
