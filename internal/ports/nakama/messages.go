package nakama

import (
	"encoding/json"
	"errors"
	"fmt"

	"gostop/internal/app"
	"gostop/internal/domain"
)

// PlayerState describes one occupied seat in a MatchStateSnapshot.
type PlayerState struct {
	UserID      string `json:"userId"`
	Seat        int    `json:"seat"`
	IsOwner     bool   `json:"isOwner"`
	IsBot       bool   `json:"isBot"`
	Connected   bool   `json:"connected"`
	DisplayName string `json:"displayName"`
	AvatarIndex int    `json:"avatarIndex"`
	HandCount   int    `json:"handCount"`
	Balance     int64  `json:"balance"`
}

// MatchStateSnapshot is the room overview sent on every seat change.
type MatchStateSnapshot struct {
	Seats     []string       `json:"seats"`
	OwnerSeat int            `json:"ownerSeat"`
	Tick      int64          `json:"tick"`
	Tier      string         `json:"tier"`
	BaseBet   int64          `json:"baseBet"`
	Players   []PlayerState  `json:"players"`
	Totals    map[string]int `json:"totals,omitempty"`
}

type GameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

var errEmptyAction = errors.New("action type is required")

// decodeAction parses an OpAction payload.
func decodeAction(data []byte) (domain.Action, error) {
	var a domain.Action
	if err := json.Unmarshal(data, &a); err != nil {
		return domain.Action{}, fmt.Errorf("failed to unmarshal action: %w", err)
	}
	if a.Kind == "" {
		return domain.Action{}, errEmptyAction
	}
	return a, nil
}

var eventOpCodes = map[app.EventKind]int64{
	app.EventDealStarted:   OpDealStarted,
	app.EventTableRedealt:  OpTableRedealt,
	app.EventStateUpdated:  OpStateUpdated,
	app.EventActionApplied: OpActionApplied,
	app.EventStockDrawn:    OpStockDrawn,
	app.EventSpecial:       OpSpecialEvent,
	app.EventGoDeclared:    OpGoDeclared,
	app.EventDealEnded:     OpDealEnded,
	app.EventMatchEnded:    OpMatchEnded,
}

// errorCode maps an app or engine error to the code sent with OpGameError.
func errorCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotYourTurn), errors.Is(err, domain.ErrUnknownPlayer):
		return errCodeForbidden
	case errors.Is(err, domain.ErrInvalidTarget):
		return errCodeInvalidMove
	case errors.Is(err, domain.ErrIllegalAction),
		errors.Is(err, app.ErrNoGame),
		errors.Is(err, app.ErrMatchOver),
		errors.Is(err, app.ErrDealInProgress):
		return errCodeConflict
	default:
		return errCodeBadRequest
	}
}
