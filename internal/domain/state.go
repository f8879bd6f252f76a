package domain

// Phase is the turn state machine position of a deal.
type Phase string

const (
	PhaseWaiting            Phase = "waiting"
	PhaseCheckingInitial    Phase = "checking-initial"
	PhasePlayFromHand       Phase = "play-from-hand"
	PhaseChooseHandCapture  Phase = "choose-hand-capture"
	PhaseDrawFromStock      Phase = "draw-from-stock"
	PhaseChooseStockCapture Phase = "choose-stock-capture"
	PhaseGoStopDecision     Phase = "go-stop-decision"
	PhaseFinished           Phase = "finished"
)

// EndReason tells how a finished deal ended.
type EndReason string

const (
	EndReasonNone   EndReason = ""
	EndReasonStop   EndReason = "stop"
	EndReasonNagari EndReason = "nagari"
	EndReasonQuad   EndReason = "quad"
)

// TableStack is a face-up pile of same-month cards. Pending marks the stack
// that received this turn's hand card and still awaits the stock draw.
type TableStack struct {
	Month   Month  `json:"month"`
	Cards   []Card `json:"cards"`
	Pending bool   `json:"pending,omitempty"`
}

func (s TableStack) clone() TableStack {
	s.Cards = append([]Card(nil), s.Cards...)
	return s
}

// CapturedCards is a player's capture pile split by category.
type CapturedCards struct {
	Brights []Card `json:"brights"`
	Animals []Card `json:"animals"`
	Ribbons []Card `json:"ribbons"`
	Junk    []Card `json:"junk"`
}

// Add files each card under its category.
func (c *CapturedCards) Add(cards ...Card) {
	for _, card := range cards {
		switch card.Category {
		case CategoryBright:
			c.Brights = append(c.Brights, card)
		case CategoryAnimal:
			c.Animals = append(c.Animals, card)
		case CategoryRibbon:
			c.Ribbons = append(c.Ribbons, card)
		case CategoryJunk:
			c.Junk = append(c.Junk, card)
		default:
			panic("invariant: card " + card.ID + " has no category")
		}
	}
}

// Count returns the number of captured cards.
func (c CapturedCards) Count() int {
	return len(c.Brights) + len(c.Animals) + len(c.Ribbons) + len(c.Junk)
}

// All returns every captured card, brights first.
func (c CapturedCards) All() []Card {
	out := make([]Card, 0, c.Count())
	out = append(out, c.Brights...)
	out = append(out, c.Animals...)
	out = append(out, c.Ribbons...)
	return append(out, c.Junk...)
}

func (c CapturedCards) clone() CapturedCards {
	return CapturedCards{
		Brights: append([]Card(nil), c.Brights...),
		Animals: append([]Card(nil), c.Animals...),
		Ribbons: append([]Card(nil), c.Ribbons...),
		Junk:    append([]Card(nil), c.Junk...),
	}
}

// Player holds one participant's per-deal state.
type Player struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Hand               []Card        `json:"hand"`
	Captured           CapturedCards `json:"captured"`
	Score              int           `json:"score"`
	GoCount            int           `json:"goCount"`
	HeundeumMonths     []Month       `json:"heundeumMonths"`
	IsBot              bool          `json:"isBot"`
	IsConnected        bool          `json:"isConnected"`
	BombSkipsRemaining int           `json:"bombSkipsRemaining"`
}

func (p Player) clone() Player {
	p.Hand = append([]Card(nil), p.Hand...)
	p.Captured = p.Captured.clone()
	p.HeundeumMonths = append([]Month(nil), p.HeundeumMonths...)
	return p
}

// SpecialEventKind names a junk-penalty event.
type SpecialEventKind string

const (
	EventPpuk   SpecialEventKind = "ppuk"
	EventJaPpuk SpecialEventKind = "ja-ppuk"
	EventChok   SpecialEventKind = "chok"
	EventTtadak SpecialEventKind = "ttadak"
	EventSseul  SpecialEventKind = "sseul"
	EventBomb   SpecialEventKind = "bomb"
)

var junkPenalties = map[SpecialEventKind]int{
	EventPpuk:   1,
	EventJaPpuk: 2,
	EventChok:   1,
	EventTtadak: 1,
	EventSseul:  1,
	EventBomb:   1,
}

// JunkPenalty is the number of junk cards each opponent hands over.
func (k SpecialEventKind) JunkPenalty() int {
	return junkPenalties[k]
}

// SpecialEvent is raised by a player during a turn.
type SpecialEvent struct {
	Kind        SpecialEventKind `json:"type"`
	PlayerID    string           `json:"playerId"`
	JunkPenalty int              `json:"junkPenalty"`
}

// TurnState is scratch data for the turn in progress.
type TurnState struct {
	HandCard    *Card          `json:"handCard"`
	StockCard   *Card          `json:"stockCard"`
	Captured    []Card         `json:"capturedThisTurn"`
	Events      []SpecialEvent `json:"specialEvents"`
	IsFirstTurn bool           `json:"isFirstTurn"`
	// FlipOnly is set for skip-hand turns and empty-hand turns.
	FlipOnly bool `json:"flipOnly,omitempty"`
}

func (t TurnState) clone() TurnState {
	if t.HandCard != nil {
		c := *t.HandCard
		t.HandCard = &c
	}
	if t.StockCard != nil {
		c := *t.StockCard
		t.StockCard = &c
	}
	t.Captured = append([]Card(nil), t.Captured...)
	t.Events = append([]SpecialEvent(nil), t.Events...)
	return t
}

// TurnRecord is the last completed turn, kept after play moves on so
// callers can report what happened.
type TurnRecord struct {
	Number   int       `json:"number"`
	PlayerID string    `json:"playerId"`
	Turn     TurnState `json:"turn"`
}

// Config is the per-room rule configuration.
type Config struct {
	PlayerCount int  `json:"playerCount"`
	TargetScore int  `json:"targetScore"`
	TotalDeals  int  `json:"totalDeals"`
	UseJokers   bool `json:"useJokers"`
	// KeepDisconnectedTurns leaves disconnected humans in the turn order
	// for a caller that moves on their behalf.
	KeepDisconnectedTurns bool `json:"keepDisconnectedTurns"`
}

// GameState is the complete state of one room's game.
type GameState struct {
	Config             Config       `json:"config"`
	Phase              Phase        `json:"phase"`
	Players            []Player     `json:"players"`
	CurrentPlayerIndex int          `json:"currentPlayerIndex"`
	LeaderIndex        int          `json:"leaderIndex"`
	Stock              []Card       `json:"stock"`
	Table              []TableStack `json:"table"`
	DealNumber         int          `json:"dealNumber"`
	NagariMultiplier   int          `json:"nagariMultiplier"`
	Turn               TurnState    `json:"turn"`
	// PpukLocks maps a player to the months they left as ppuk stacks.
	PpukLocks    map[string][]Month `json:"ppukLocks"`
	Winner       string             `json:"winner,omitempty"`
	EndReason    EndReason          `json:"endReason,omitempty"`
	LastGoScores map[string]int     `json:"lastGoScores"`
	TurnCount    int                `json:"turnCount"`
	LastTurn     TurnRecord         `json:"lastTurn"`
}

// Clone returns a deep copy that shares no mutable memory with s.
func (s *GameState) Clone() *GameState {
	out := *s
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p.clone()
	}
	out.Stock = append([]Card(nil), s.Stock...)
	out.Table = cloneLayout(s.Table)
	out.Turn = s.Turn.clone()
	out.LastTurn.Turn = s.LastTurn.Turn.clone()
	out.PpukLocks = make(map[string][]Month, len(s.PpukLocks))
	for id, months := range s.PpukLocks {
		out.PpukLocks[id] = append([]Month(nil), months...)
	}
	out.LastGoScores = make(map[string]int, len(s.LastGoScores))
	for id, score := range s.LastGoScores {
		out.LastGoScores[id] = score
	}
	return &out
}

// CurrentPlayer returns the acting player.
func (s *GameState) CurrentPlayer() *Player {
	return &s.Players[s.CurrentPlayerIndex]
}

// PlayerIndex returns the seat index of id, or -1.
func (s *GameState) PlayerIndex(id string) int {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// Player returns the player with the given id, or nil.
func (s *GameState) Player(id string) *Player {
	if i := s.PlayerIndex(id); i >= 0 {
		return &s.Players[i]
	}
	return nil
}

func cloneLayout(layout []TableStack) []TableStack {
	out := make([]TableStack, len(layout))
	for i, st := range layout {
		out[i] = st.clone()
	}
	return out
}
