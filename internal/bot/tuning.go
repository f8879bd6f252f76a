package bot

// Tuning holds the weights of the heuristic bot.
type Tuning struct {
	// Card play scoring.
	TripleCaptureBonus int
	CaptureWeight      int
	NoMatchPenalty     int
	JunkDumpBonus      int
	// SafeDiscardWeight rewards discarding a month whose other cards are already captured.
	SafeDiscardWeight int
	// SkipHandBelow uses a bomb skip instead of a play scoring under it.
	SkipHandBelow int

	// BombStackValue is the table stack value worth bombing for.
	BombStackValue int

	// Go/stop.
	StopAfterGoes  int
	GoLeadMargin   int
	OpponentMargin int
	EarlyGoMargin  int
}

// DefaultTuning plays conservatively: it stops early and bombs only for value.
var DefaultTuning = Tuning{
	TripleCaptureBonus: 20,
	CaptureWeight:      3,
	NoMatchPenalty:     -5,
	JunkDumpBonus:      2,
	SafeDiscardWeight:  1,
	SkipHandBelow:      -4,

	BombStackValue: 5,

	StopAfterGoes:  2,
	GoLeadMargin:   3,
	OpponentMargin: 1,
	EarlyGoMargin:  1,
}
