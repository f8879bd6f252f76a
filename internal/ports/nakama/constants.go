package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameGoStop is the authoritative match handler name registered with Nakama.
	MatchNameGoStop = "gostop_match"

	// tickRate is the match loop frequency in ticks per second. Stock reveals
	// are timed in milliseconds, so one tick per second is too coarse.
	tickRate = 5

	walletCurrency = "chips"
)

// Op codes for client messages and server events. Payloads are JSON.
const (
	// Client -> Server
	OpStartGame    int64 = 1
	OpAction       int64 = 2
	OpRequestState int64 = 3

	// Server -> Client events
	OpMatchState    int64 = 100
	OpDealStarted   int64 = 101
	OpTableRedealt  int64 = 102
	OpStateUpdated  int64 = 103 // sent privately
	OpActionApplied int64 = 104
	OpStockDrawn    int64 = 105
	OpSpecialEvent  int64 = 106
	OpGoDeclared    int64 = 107
	OpDealEnded     int64 = 108
	OpMatchEnded    int64 = 109
	OpGameError     int64 = 110
)

// Error codes carried by OpGameError.
const (
	errCodeBadRequest  = 400
	errCodeForbidden   = 403
	errCodeConflict    = 409
	errCodeInvalidMove = 422
)
