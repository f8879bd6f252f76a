package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"gostop/internal/app"
	"gostop/internal/bot"
	"gostop/internal/config"
	"gostop/internal/domain"
	"gostop/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"go.uber.org/zap"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	MatchID   string   `json:"match_id"`
	Seats     []string `json:"seats"`      // user IDs, empty string means seat is empty
	OwnerSeat int      `json:"owner_seat"` // seat index of the match owner
	Tick      int64    `json:"tick"`
	Tier      string   `json:"tier"`
	BaseBet   int64    `json:"base_bet"`

	Presences   map[string]runtime.Presence `json:"-"` // UserId -> Presence for targeted messaging
	Names       map[string]string           `json:"-"` // display names of seated humans
	App         *app.Service                `json:"-"`
	Match       *app.Match                  `json:"-"` // nil until the owner starts a match
	Economy     ports.EconomyPort           `json:"-"`
	History     ports.HistoryPort           `json:"-"`
	Bots        map[string]*bot.Agent       `json:"-"`
	BotProfiles map[string]bot.BotIdentity  `json:"-"`
	// StandIn moves for humans who are disconnected when their turn comes.
	StandIn *bot.Agent `json:"-"`

	BotsEnabled          bool         `json:"bots_enabled"`
	BotLevel             bot.BotLevel `json:"bot_level"`
	BotMinDelay          int          `json:"bot_min_delay"`       // seconds
	BotMaxDelay          int          `json:"bot_max_delay"`       // seconds
	BotAutoFillDelay     int          `json:"bot_auto_fill_delay"` // seconds
	BotWaitUntil         int64        `json:"bot_wait_until"`
	LastSinglePlayerTick int64        `json:"last_single_player_tick"`

	MinJoinBalance   int64 `json:"min_join_balance"`
	StockRevealTicks int64 `json:"stock_reveal_ticks"`
	NextDealDelay    int   `json:"next_deal_delay"` // seconds
	RevealAt         int64 `json:"reveal_at"`       // tick the shown stock card resolves
	NextDealAt       int64 `json:"next_deal_at"`
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

func (ms *MatchState) seatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat != "" && seat == userID {
			return i
		}
	}
	return -1
}

// matchRunning reports whether a match has started and not yet ended.
// Seats are locked while it is true.
func (ms *MatchState) matchRunning() bool {
	return ms.Match != nil && ms.Match.Game != nil && !ms.Match.Over
}

// inDeal reports whether cards are in play.
func (ms *MatchState) inDeal() bool {
	return ms.matchRunning() && ms.Match.Game.Phase != domain.PhaseFinished
}

func (ms *MatchState) displayName(userID string) string {
	if name, ok := ms.Names[userID]; ok && name != "" {
		return name
	}
	if id, ok := ms.BotProfiles[userID]; ok {
		return id.DisplayName
	}
	return userID
}

// agentFor returns who moves for userID without a client: its bot agent, or
// the stand-in when a seated human is disconnected.
func (ms *MatchState) agentFor(userID string) *bot.Agent {
	if a, ok := ms.Bots[userID]; ok {
		return a
	}
	if isBotUserId(userID) || !ms.matchRunning() {
		return nil
	}
	if p := ms.Match.Game.Player(userID); p != nil && !p.IsConnected {
		return ms.StandIn
	}
	return nil
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// shouldTerminateNoHumans returns true when there are no humans in the match.
func shouldTerminateNoHumans(seats []string) bool {
	return findFirstHumanSeat(seats) == -1
}

func secondsToTicks(sec int) int64 {
	return int64(sec) * tickRate
}

func msToTicks(ms int) int64 {
	return (int64(ms)*tickRate + 999) / 1000
}

type matchHandler struct {
	cfg *config.GameConfig
	log *zap.Logger
}

// newMatchHandler builds a handler. A nil cfg uses the loaded game config; a
// nil log discards app logs.
func newMatchHandler(cfg *config.GameConfig, log *zap.Logger) *matchHandler {
	if cfg == nil {
		cfg = config.GetGameConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &matchHandler{cfg: cfg, log: log}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	cfg := mh.cfg
	tier, _ := params["tier"].(string)
	if tier == "" {
		tier = cfg.DefaultTier
	}
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	state := &MatchState{
		MatchID:          matchID,
		Seats:            make([]string, cfg.MaxSeats),
		OwnerSeat:        -1,
		Tick:             time.Now().Unix(),
		Tier:             tier,
		BaseBet:          cfg.BaseBet(tier),
		Presences:        make(map[string]runtime.Presence),
		Names:            make(map[string]string),
		App:              app.NewService(nil, mh.log),
		Bots:             make(map[string]*bot.Agent),
		BotProfiles:      make(map[string]bot.BotIdentity),
		BotsEnabled:      cfg.BotsEnabled,
		BotLevel:         bot.BotLevel(cfg.BotLevel),
		BotMinDelay:      cfg.BotMinDelaySec,
		BotMaxDelay:      cfg.BotMaxDelaySec,
		BotAutoFillDelay: cfg.BotAutoFillDelaySeconds,
		MinJoinBalance:   cfg.MinJoinBalance,
		StockRevealTicks: msToTicks(cfg.StockRevealMs),
		NextDealDelay:    cfg.NextDealDelaySec,
	}
	if nk != nil {
		state.Economy = NewNakamaEconomyAdapter(nk)
		state.History = NewNakamaHistoryAdapter(nk)
	}

	// Runtime env overrides the config file for bot behaviour.
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		applyEnvOverrides(state, env)
	}
	if state.BotMaxDelay < state.BotMinDelay {
		state.BotMaxDelay = state.BotMinDelay
	}

	standIn, err := bot.NewAgent(bot.NewIdentity(0, state.BotLevel))
	if err != nil {
		logger.Warn("MatchInit: Bot level %q unavailable for stand-in, using heuristic: %v", state.BotLevel, err)
		standIn, _ = bot.NewAgent(bot.NewIdentity(0, bot.BotLevelHeuristic))
	}
	state.StandIn = standIn

	label, err := state.label().Marshal()
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	logger.Info("MatchInit: tier=%s base_bet=%d seats=%d", tier, state.BaseBet, len(state.Seats))
	return state, tickRate, label
}

func applyEnvOverrides(state *MatchState, env map[string]string) {
	if val, ok := env["gostop_bots_enabled"]; ok {
		state.BotsEnabled = val == "true"
	}
	if val, ok := env["gostop_bot_level"]; ok && val != "" {
		state.BotLevel = bot.BotLevel(val)
	}
	ints := map[string]*int{
		"gostop_bot_min_delay_sec":       &state.BotMinDelay,
		"gostop_bot_max_delay_sec":       &state.BotMaxDelay,
		"gostop_bot_auto_fill_delay_sec": &state.BotAutoFillDelay,
	}
	for key, dst := range ints {
		if val, ok := env[key]; ok {
			if i, err := strconv.Atoi(val); err == nil && i >= 0 {
				*dst = i
			}
		}
	}
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	userID := presence.GetUserId()

	// Seated players may always come back.
	if matchState.seatOf(userID) >= 0 {
		return state, true, ""
	}
	if matchState.matchRunning() {
		return state, false, "Match in progress"
	}

	// Allow join if there is an empty seat OR a bot to replace
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		for _, seat := range matchState.Seats {
			if isBotUserId(seat) {
				hasBot = true
				break
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	if matchState.MinJoinBalance > 0 && matchState.Economy != nil {
		balance, err := matchState.Economy.GetBalance(ctx, userID)
		if err != nil {
			logger.Warn("MatchJoinAttempt: Balance lookup failed for %s: %v", userID, err)
			return state, false, "Balance unavailable"
		}
		if balance < matchState.MinJoinBalance {
			return state, false, "Insufficient balance"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p
		matchState.Names[userID] = p.GetUsername()

		if seat := matchState.seatOf(userID); seat >= 0 {
			logger.Info("MatchJoin: User %s rejoined seat %d", userID, seat)
			if matchState.matchRunning() {
				events, err := matchState.App.SetConnected(matchState.Match, userID, true)
				if err != nil {
					logger.Warn("MatchJoin: Failed to mark %s connected: %v", userID, err)
				}
				mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
			}
			continue
		}

		// Assign seat: Try empty seats first, then bots (if lobby)
		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = userID
				assigned = true
				break
			}
		}

		if !assigned && !matchState.matchRunning() {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, userID, i)
					delete(matchState.Bots, seatUserId)
					delete(matchState.BotProfiles, seatUserId)
					matchState.Seats[i] = userID
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
		}
	}

	// Ensure owner seat is assigned to a human player only.
	if !isHumanSeat(matchState.Seats, matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats)
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(ctx, matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match. During a
// match the seat is kept and the player is marked disconnected.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		seat := matchState.seatOf(userID)
		if seat < 0 {
			continue
		}
		if matchState.matchRunning() {
			logger.Info("MatchLeave: User %s disconnected from seat %d, seat kept.", userID, seat)
			events, err := matchState.App.SetConnected(matchState.Match, userID, false)
			if err != nil {
				logger.Warn("MatchLeave: Failed to mark %s disconnected: %v", userID, err)
			}
			mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
			continue
		}
		matchState.Seats[seat] = ""
		delete(matchState.Names, userID)
		logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, seat)
	}

	if shouldTerminateNoHumans(matchState.Seats) || len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	if newOwnerSeat := findFirstHumanSeat(matchState.Seats); newOwnerSeat != matchState.OwnerSeat {
		matchState.OwnerSeat = newOwnerSeat
		logger.Debug("MatchLeave: Owner set to human seat %d.", newOwnerSeat)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(ctx, matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpAction:
			mh.handleAction(ctx, matchState, dispatcher, logger, msg)
		case OpRequestState:
			mh.handleRequestState(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.processAutoFill(ctx, matchState, dispatcher, logger)
	}
	mh.processTimers(ctx, matchState, dispatcher, logger)
	mh.processTurns(ctx, matchState, dispatcher, logger)

	return matchState
}

// processAutoFill seats bots next to a lone human after a delay.
func (mh *matchHandler) processAutoFill(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.matchRunning() || state.GetHumanPlayerCount() != 1 {
		state.LastSinglePlayerTick = 0
		return
	}
	if state.LastSinglePlayerTick == 0 {
		state.LastSinglePlayerTick = state.Tick
		logger.Debug("processAutoFill: Single player detected, starting auto-fill timer.")
	}
	if state.Tick-state.LastSinglePlayerTick < secondsToTicks(state.BotAutoFillDelay) {
		return
	}

	added := false
	for i, seat := range state.Seats {
		if seat != "" {
			continue
		}
		identity := bot.NewIdentity(i, state.BotLevel)
		agent, err := bot.NewAgent(identity)
		if err != nil {
			logger.Error("processAutoFill: Failed to create bot agent for %s: %v", identity.Username, err)
			continue
		}
		state.Seats[i] = identity.UserID
		state.Bots[identity.UserID] = agent
		state.BotProfiles[identity.UserID] = identity
		logger.Info("processAutoFill: Added bot %s (%s) to seat %d", identity.Username, identity.UserID, i)
		added = true
	}
	if added {
		mh.updateLabel(state, dispatcher, logger)
		mh.broadcastMatchState(ctx, state, dispatcher, logger)
	}
	// Reset timer so it doesn't keep "adding" every tick
	state.LastSinglePlayerTick = 0
}

// processTimers resolves the stock card on show once its reveal time has
// passed, and deals the next deal after the between-deal pause.
func (mh *matchHandler) processTimers(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if !state.matchRunning() {
		state.RevealAt, state.NextDealAt = 0, 0
		return
	}

	switch state.Match.Game.Phase {
	case domain.PhaseDrawFromStock:
		if state.RevealAt == 0 {
			state.RevealAt = state.Tick + state.StockRevealTicks
		}
		if state.Tick < state.RevealAt {
			return
		}
		state.RevealAt = 0
		events, err := state.App.ResolveStock(state.Match)
		if err != nil {
			logger.Error("processTimers: Failed to resolve stock card: %v", err)
			return
		}
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)

	case domain.PhaseFinished:
		if state.NextDealAt == 0 {
			state.NextDealAt = state.Tick + secondsToTicks(state.NextDealDelay)
		}
		if state.Tick < state.NextDealAt {
			return
		}
		state.NextDealAt = 0
		events, err := state.App.NextDeal(state.Match)
		if err != nil {
			logger.Error("processTimers: Failed to deal next deal: %v", err)
			return
		}
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	}
}

// processTurns lets bots, and the stand-in for disconnected humans, act
// after a random delay.
func (mh *matchHandler) processTurns(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if !state.inDeal() || state.Match.Game.Phase == domain.PhaseDrawFromStock {
		state.BotWaitUntil = 0
		return
	}

	currentUserID := state.Match.CurrentPlayerID()
	agent := state.agentFor(currentUserID)
	if agent == nil {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := state.BotMinDelay
		if spread := state.BotMaxDelay - state.BotMinDelay; spread > 0 {
			delay += rand.Intn(spread + 1)
		}
		state.BotWaitUntil = state.Tick + secondsToTicks(delay)
		logger.Debug("processTurns: %s will act at tick %d (current %d)", currentUserID, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	action, err := agent.PlayFor(state.Match.Game, currentUserID)
	if err != nil {
		logger.Error("processTurns: Agent for %s failed to choose a move: %v", currentUserID, err)
		return
	}
	events, err := state.App.Act(state.Match, currentUserID, action)
	if err != nil {
		logger.Error("processTurns: Move %s by %s rejected: %v", action.Kind, currentUserID, err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		return
	}
	if state.matchRunning() {
		logger.Warn("StartGame: Match already running.")
		return
	}

	activeCount := state.GetOccupiedSeatCount()
	if activeCount < app.MinPlayersToStartGame {
		logger.Warn("StartGame: Cannot start with %d players. Need at least %d.", activeCount, app.MinPlayersToStartGame)
		return
	}

	players := make([]domain.PlayerInfo, 0, activeCount)
	for _, userID := range state.Seats {
		if userID == "" {
			continue
		}
		players = append(players, domain.PlayerInfo{
			ID:    userID,
			Name:  state.displayName(userID),
			IsBot: isBotUserId(userID),
		})
	}

	// Disconnected humans keep their turns; the stand-in plays them.
	rules := mh.cfg.Overrides(len(players))
	rules.KeepDisconnectedTurns = true

	m, events, err := state.App.StartMatch(state.MatchID, players, rules, state.BaseBet)
	if err != nil {
		logger.Error("StartGame: Failed to start match: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		return
	}

	state.Match = m
	state.RevealAt, state.NextDealAt, state.BotWaitUntil = 0, 0, 0

	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)

	logger.Info("StartGame: Match started with %d players.", activeCount)
}

func (mh *matchHandler) handleAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	if state.Match == nil {
		logger.Warn("handleAction: Match not started.")
		mh.sendError(state, dispatcher, logger, senderID, errCodeConflict, app.ErrNoGame.Error())
		return
	}

	action, err := decodeAction(msg.GetData())
	if err != nil {
		logger.Warn("handleAction: Bad payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, errCodeBadRequest, err.Error())
		return
	}

	events, err := state.App.Act(state.Match, senderID, action)
	if err != nil {
		logger.Warn("handleAction: User %s failed to %s: %v", senderID, action.Kind, err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// handleRequestState resends the room snapshot and, during a match, the
// sender's own view.
func (mh *matchHandler) handleRequestState(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	presence, ok := state.Presences[senderID]
	if !ok {
		return
	}
	mh.sendMatchState(ctx, state, dispatcher, logger, []runtime.Presence{presence})
	if state.Match != nil && state.seatOf(senderID) >= 0 {
		mh.broadcastEvent(state, dispatcher, logger, state.App.ViewFor(state.Match, senderID))
	}
}

// dispatchEvents sends app events to clients and applies their side effects:
// bot memory resets, wallet settlement and deal history.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	labelChanged := false
	for _, ev := range events {
		switch ev.Kind {
		case app.EventDealStarted:
			p := ev.Payload.(app.DealStartedPayload)
			notice := bot.DealStarted{DealNumber: p.DealNumber}
			for _, agent := range state.Bots {
				agent.OnGameEvent(notice)
			}
			if state.StandIn != nil {
				state.StandIn.OnGameEvent(notice)
			}
		case app.EventDealEnded:
			mh.settleDeal(ctx, state, logger, ev.Payload.(app.DealEndedPayload))
		case app.EventMatchEnded:
			p := ev.Payload.(app.MatchEndedPayload)
			logger.Info("Match ended after %d deals, leaders %v", p.Deals, p.Leaders)
			state.releaseAbsentSeats()
			labelChanged = true
		}
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	if labelChanged {
		mh.updateLabel(state, dispatcher, logger)
		mh.broadcastMatchState(ctx, state, dispatcher, logger)
	}
}

// releaseAbsentSeats frees seats of humans who left during the match.
func (ms *MatchState) releaseAbsentSeats() {
	for i, userID := range ms.Seats {
		if userID == "" || isBotUserId(userID) {
			continue
		}
		if _, ok := ms.Presences[userID]; !ok {
			ms.Seats[i] = ""
			delete(ms.Names, userID)
		}
	}
	if !isHumanSeat(ms.Seats, ms.OwnerSeat) {
		ms.OwnerSeat = findFirstHumanSeat(ms.Seats)
	}
}

// settleDeal applies a deal's balance changes to human wallets and records it.
func (mh *matchHandler) settleDeal(ctx context.Context, state *MatchState, logger runtime.Logger, p app.DealEndedPayload) {
	humans := make([]string, 0, len(p.BalanceChanges))
	updates := make([]ports.WalletUpdate, 0, len(p.BalanceChanges))
	for userID, amount := range p.BalanceChanges {
		if isBotUserId(userID) {
			continue
		}
		humans = append(humans, userID)
		updates = append(updates, ports.WalletUpdate{
			UserID: userID,
			Amount: amount,
			Reason: "deal_settlement",
			Metadata: map[string]any{
				"match_id": state.MatchID,
				"deal":     p.DealNumber,
			},
		})
	}

	if state.Economy != nil {
		if err := state.Economy.UpdateBalances(ctx, updates); err != nil {
			logger.Error("settleDeal: Failed to update balances: %v", err)
		}
	}

	if state.History != nil && len(humans) > 0 {
		rec := ports.DealRecord{
			MatchID:          state.MatchID,
			DealNumber:       p.DealNumber,
			Winner:           p.Settlement.Winner,
			Reason:           string(p.Settlement.Reason),
			NagariMultiplier: state.Match.Game.NagariMultiplier,
			BaseBet:          state.BaseBet,
			NetChips:         p.Settlement.NetChips,
			BalanceChanges:   p.BalanceChanges,
			EndedAt:          time.Now().UTC(),
		}
		if err := state.History.RecordDeal(ctx, humans, rec); err != nil {
			logger.Error("settleDeal: Failed to record deal %d: %v", p.DealNumber, err)
		}
	}
}

// broadcastEvent encodes an app event and sends it to its recipients.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}
	bytes, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// Intended recipients that are not connected (bots, dropped players)
		// must not turn a private message into a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true); err != nil {
		logger.Error("Failed to send event %v: %v", ev.Kind, err)
	}
}

func (mh *matchHandler) broadcastMatchState(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	mh.sendMatchState(ctx, state, dispatcher, logger, nil)
}

func (mh *matchHandler) sendMatchState(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, recipients []runtime.Presence) {
	snapshot := MatchStateSnapshot{
		Seats:     append([]string(nil), state.Seats...),
		OwnerSeat: state.OwnerSeat,
		Tick:      state.Tick,
		Tier:      state.Tier,
		BaseBet:   state.BaseBet,
	}
	if state.Match != nil {
		snapshot.Totals = state.Match.Totals
	}

	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		ps := PlayerState{
			UserID:      userID,
			Seat:        i,
			IsOwner:     i == state.OwnerSeat,
			IsBot:       isBotUserId(userID),
			DisplayName: state.displayName(userID),
		}
		if id, ok := state.BotProfiles[userID]; ok {
			ps.AvatarIndex = id.AvatarIndex
			ps.Connected = true
		} else {
			_, ps.Connected = state.Presences[userID]
			if state.Economy != nil {
				balance, err := state.Economy.GetBalance(ctx, userID)
				if err != nil {
					logger.Warn("broadcastMatchState: Balance lookup failed for %s: %v", userID, err)
				}
				ps.Balance = balance
			}
		}
		if state.Match != nil && state.Match.Game != nil {
			if p := state.Match.Game.Player(userID); p != nil {
				ps.HandCount = len(p.Hand)
			}
		}
		snapshot.Players = append(snapshot.Players, ps)
	}

	bytes, err := json.Marshal(snapshot)
	if err != nil {
		logger.Error("broadcastMatchState: Failed to marshal snapshot: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpMatchState, bytes, recipients, nil, true); err != nil {
		logger.Error("broadcastMatchState: Failed to send: %v", err)
	}
}

// sendError sends a GameErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(GameErrorEvent{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal GameErrorEvent: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	if err := dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("Failed to send error to %s: %v", userID, err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := state.label().Marshal()
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated, grace %d seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
