package ports

import (
	"context"
	"time"
)

// DealRecord is the persisted outcome of one settled deal.
type DealRecord struct {
	MatchID          string           `json:"match_id"`
	DealNumber       int              `json:"deal_number"`
	Winner           string           `json:"winner,omitempty"`
	Reason           string           `json:"reason"`
	NagariMultiplier int              `json:"nagari_multiplier"`
	BaseBet          int64            `json:"base_bet"`
	NetChips         map[string]int   `json:"net_chips"`
	BalanceChanges   map[string]int64 `json:"balance_changes"`
	EndedAt          time.Time        `json:"ended_at"`
}

// HistoryPort stores settled deals so players can review past results.
type HistoryPort interface {
	// RecordDeal stores rec once per human participant in userIDs.
	RecordDeal(ctx context.Context, userIDs []string, rec DealRecord) error
}
