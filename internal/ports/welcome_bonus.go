package ports

import "context"

// WelcomeBonusPort grants new players their starter chips at most once.
type WelcomeBonusPort interface {
	// GrantWelcomeBonusOnce credits amount chips unless the user already
	// received them, in which case it returns granted=false.
	GrantWelcomeBonusOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error)
}
