package domain

import (
	"errors"
	"fmt"
)

// Error categories. Every rejected action wraps exactly one of them.
var (
	ErrIllegalAction = errors.New("illegal action")
	ErrInvalidTarget = errors.New("invalid target")
)

var (
	ErrNotYourTurn      = fmt.Errorf("%w: not your turn", ErrIllegalAction)
	ErrUnknownPlayer    = fmt.Errorf("%w: player not in game", ErrIllegalAction)
	ErrActionNotAllowed = fmt.Errorf("%w: action not valid in this phase", ErrIllegalAction)
	ErrWrongPhase       = fmt.Errorf("%w: wrong phase", ErrIllegalAction)

	ErrCardNotInHand        = fmt.Errorf("%w: card not in hand", ErrInvalidTarget)
	ErrInvalidCaptureTarget = fmt.Errorf("%w: capture target not among matching stacks", ErrInvalidTarget)
	ErrBombNotAvailable     = fmt.Errorf("%w: bomb needs three hand cards and a table stack of the month", ErrInvalidTarget)
	ErrHeundeumNotAvailable = fmt.Errorf("%w: heundeum needs an undeclared triple in hand", ErrInvalidTarget)
	ErrNoSkipsRemaining     = fmt.Errorf("%w: no bomb skips remaining", ErrInvalidTarget)
)

// ErrPlayerCount is returned when a game is created with an unsupported number of players.
var ErrPlayerCount = errors.New("player count must be between 2 and 4")

// IsRejection reports whether err is a recoverable action rejection.
func IsRejection(err error) bool {
	return errors.Is(err, ErrIllegalAction) || errors.Is(err, ErrInvalidTarget)
}
