package ports

import "context"

// AccountPort updates player profiles.
type AccountPort interface {
	// UpdateProfile sets the username and display name shown at the table.
	UpdateProfile(ctx context.Context, userID, username, displayName string) error
}
