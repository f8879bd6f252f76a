package ports

import "context"

// WalletUpdate is one chip movement applied to a player's wallet.
type WalletUpdate struct {
	UserID string
	Amount int64
	// Reason is stored in the wallet ledger next to Metadata.
	Reason   string
	Metadata map[string]any
}

// EconomyPort moves chips in and out of player wallets.
type EconomyPort interface {
	// GetBalance returns the user's current chip balance.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// UpdateBalances applies the settlement of one deal. Zero amounts are skipped.
	UpdateBalances(ctx context.Context, updates []WalletUpdate) error
}
