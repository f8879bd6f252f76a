package app

import "gostop/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventDealStarted   EventKind = "deal_started"
	EventTableRedealt  EventKind = "table_redealt"
	EventStateUpdated  EventKind = "state_updated"
	EventActionApplied EventKind = "action_applied"
	EventStockDrawn    EventKind = "stock_drawn"
	EventSpecial       EventKind = "special_event"
	EventGoDeclared    EventKind = "go_declared"
	EventDealEnded     EventKind = "deal_ended"
	EventMatchEnded    EventKind = "match_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type DealStartedPayload struct {
	DealNumber       int    `json:"dealNumber"`
	TotalDeals       int    `json:"totalDeals"`
	LeaderID         string `json:"leaderId"`
	NagariMultiplier int    `json:"nagariMultiplier"`
}

type TableRedealtPayload struct {
	DealNumber int            `json:"dealNumber"`
	Months     []domain.Month `json:"months"`
}

// StateUpdatedPayload carries one player's redacted view.
type StateUpdatedPayload struct {
	View domain.ClientView `json:"state"`
}

type ActionAppliedPayload struct {
	PlayerID string        `json:"playerId"`
	Action   domain.Action `json:"action"`
}

// StockDrawnPayload announces the face-up stock card before it resolves.
type StockDrawnPayload struct {
	PlayerID string      `json:"playerId"`
	Card     domain.Card `json:"card"`
	FlipOnly bool        `json:"flipOnly"`
}

type SpecialEventPayload struct {
	Event domain.SpecialEvent `json:"event"`
}

type GoDeclaredPayload struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	GoCount    int    `json:"goCount"`
}

// DealEndedPayload reports a settled deal. BalanceChanges is NetChips
// times the match's base bet.
type DealEndedPayload struct {
	DealNumber     int               `json:"dealNumber"`
	Settlement     domain.Settlement `json:"settlement"`
	BalanceChanges map[string]int64  `json:"balanceChanges"`
	Totals         map[string]int    `json:"totals"`
	MatchOver      bool              `json:"matchOver"`
}

type MatchEndedPayload struct {
	Deals   int            `json:"deals"`
	Totals  map[string]int `json:"totals"`
	Leaders []string       `json:"leaders"`
}
