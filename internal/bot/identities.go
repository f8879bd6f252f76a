package bot

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// botIDPrefix marks seat ids that belong to bots.
const botIDPrefix = "bot-"

type BotIdentity struct {
	UserID      string   `json:"-"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Level       BotLevel `json:"level"`
	AvatarIndex int      `json:"avatar_index"`
}

var (
	botProfiles []BotIdentity
	profilesMu  sync.RWMutex
)

// LoadIdentities loads the bot profiles from the given path, replacing any
// loaded before.
func LoadIdentities(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read bot identities: %w", err)
	}
	var profiles []BotIdentity
	if err := json.Unmarshal(data, &profiles); err != nil {
		return fmt.Errorf("failed to unmarshal bot identities: %w", err)
	}

	profilesMu.Lock()
	defer profilesMu.Unlock()
	botProfiles = profiles
	return nil
}

// NewIdentity returns a fresh bot identity for a seat. Profiles are picked by
// index (mod pool size); every call gets a new user id. level applies to
// profiles that do not name one.
func NewIdentity(index int, level BotLevel) BotIdentity {
	profilesMu.RLock()
	var id BotIdentity
	if len(botProfiles) > 0 {
		id = botProfiles[index%len(botProfiles)]
	} else {
		id = BotIdentity{
			Username:    fmt.Sprintf("ai_player_%d", index),
			DisplayName: fmt.Sprintf("AI Player %d", index),
		}
	}
	profilesMu.RUnlock()

	id.UserID = botIDPrefix + uuid.NewString()
	if id.Level == "" {
		id.Level = level
	}
	return id
}

// IsBot reports whether the given user ID belongs to a bot seat.
func IsBot(userID string) bool {
	if !strings.HasPrefix(userID, botIDPrefix) {
		return false
	}
	_, err := uuid.Parse(strings.TrimPrefix(userID, botIDPrefix))
	return err == nil
}
