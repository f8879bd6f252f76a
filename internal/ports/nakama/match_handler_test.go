package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"gostop/internal/app"
	"gostop/internal/bot"
	"gostop/internal/config"
	"gostop/internal/domain"
	"gostop/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type mockPresence struct {
	userID   string
	username string
}

func (p *mockPresence) GetHidden() bool                   { return false }
func (p *mockPresence) GetPersistence() bool              { return false }
func (p *mockPresence) GetUsername() string               { return p.username }
func (p *mockPresence) GetStatus() string                 { return "" }
func (p *mockPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }
func (p *mockPresence) GetUserId() string                 { return p.userID }
func (p *mockPresence) GetSessionId() string              { return "session-" + p.userID }
func (p *mockPresence) GetNodeId() string                 { return "node" }

type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (m *mockMatchData) GetOpCode() int64      { return m.opCode }
func (m *mockMatchData) GetData() []byte       { return m.data }
func (m *mockMatchData) GetReliable() bool     { return true }
func (m *mockMatchData) GetReceiveTime() int64 { return 0 }

func msgFrom(userID string, opCode int64, data string) runtime.MatchData {
	return &mockMatchData{mockPresence: mockPresence{userID: userID}, opCode: opCode, data: []byte(data)}
}

type sentMessage struct {
	opCode    int64
	data      []byte
	presences []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	messages     []sentMessage
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.messages = append(md.messages, sentMessage{opCode: opCode, data: append([]byte(nil), data...), presences: presences})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) byOp(opCode int64) []sentMessage {
	var out []sentMessage
	for _, m := range md.messages {
		if m.opCode == opCode {
			out = append(out, m)
		}
	}
	return out
}

type mockEconomy struct {
	balances map[string]int64
	calls    map[string]int
	updates  []ports.WalletUpdate
}

func (me *mockEconomy) GetBalance(ctx context.Context, userID string) (int64, error) {
	if me.calls == nil {
		me.calls = make(map[string]int)
	}
	me.calls[userID]++
	if balance, ok := me.balances[userID]; ok {
		return balance, nil
	}
	return 0, errors.New("balance not found")
}

func (me *mockEconomy) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	me.updates = append(me.updates, updates...)
	return nil
}

type historyCall struct {
	userIDs []string
	rec     ports.DealRecord
}

type mockHistory struct {
	calls []historyCall
}

func (mh *mockHistory) RecordDeal(ctx context.Context, userIDs []string, rec ports.DealRecord) error {
	mh.calls = append(mh.calls, historyCall{userIDs: userIDs, rec: rec})
	return nil
}

func testConfig() *config.GameConfig {
	return &config.GameConfig{
		TargetScore2P:           7,
		TargetScore3P:           3,
		TotalDeals:              12,
		StockRevealMs:           0,
		NextDealDelaySec:        5,
		MaxSeats:                3,
		DefaultTier:             "casual",
		Tiers:                   []config.BetTier{{ID: "casual", BaseBet: 10}, {ID: "high", BaseBet: 1000}},
		BotsEnabled:             true,
		BotMinDelaySec:          1,
		BotMaxDelaySec:          1,
		BotAutoFillDelaySeconds: 2,
		BotLevel:                "heuristic",
	}
}

// newTestState seats userIDs in order with live presences; the first is owner.
func newTestState(t *testing.T, userIDs ...string) *MatchState {
	t.Helper()
	standIn, err := bot.NewAgent(bot.NewIdentity(0, bot.BotLevelHeuristic))
	require.NoError(t, err)

	state := &MatchState{
		MatchID:          "match-1",
		Seats:            make([]string, 3),
		OwnerSeat:        -1,
		Tier:             "casual",
		BaseBet:          10,
		Presences:        make(map[string]runtime.Presence),
		Names:            make(map[string]string),
		App:              app.NewService(rand.New(rand.NewSource(1)), nil),
		Bots:             make(map[string]*bot.Agent),
		BotProfiles:      make(map[string]bot.BotIdentity),
		StandIn:          standIn,
		Economy:          &mockEconomy{},
		History:          &mockHistory{},
		BotsEnabled:      true,
		BotLevel:         bot.BotLevelHeuristic,
		BotAutoFillDelay: 2,
		NextDealDelay:    5,
	}
	for i, id := range userIDs {
		state.Seats[i] = id
		state.Presences[id] = &mockPresence{userID: id, username: "name-" + id}
		state.Names[id] = "name-" + id
	}
	if len(userIDs) > 0 {
		state.OwnerSeat = 0
	}
	return state
}

func mustCards(t *testing.T, ids ...string) []domain.Card {
	t.Helper()
	out := make([]domain.Card, len(ids))
	for i, id := range ids {
		c, ok := domain.CardByID(id)
		require.Truef(t, ok, "unknown card %s", id)
		out[i] = c
	}
	return out
}

func stackOf(t *testing.T, ids ...string) domain.TableStack {
	t.Helper()
	cs := mustCards(t, ids...)
	return domain.TableStack{Month: cs[0].Month, Cards: cs}
}

// withGoStopDeal starts a deal for p0 and p1 where p0 reaches the target
// by playing 1-bright.
func withGoStopDeal(t *testing.T, state *MatchState) {
	t.Helper()
	g, err := domain.CreateGameState([]domain.PlayerInfo{{ID: "p0", Name: "Ann"}, {ID: "p1", Name: "Bo"}}, domain.ConfigOverrides{TargetScore: 1})
	require.NoError(t, err)
	g.Players[0].Hand = mustCards(t, "1-bright", "9-junk-1")
	g.Players[1].Hand = mustCards(t, "10-junk-1", "11-junk-2")
	g.Players[0].Captured.Add(mustCards(t,
		"2-junk-1", "2-junk-2", "3-junk-1", "3-junk-2", "4-junk-1",
		"4-junk-2", "5-junk-1", "5-junk-2", "6-junk-1")...)
	g.Table = []domain.TableStack{stackOf(t, "1-junk-2"), stackOf(t, "8-animal")}
	g.Stock = mustCards(t, "10-animal", "12-animal", "12-ribbon", "7-animal")
	g.Phase = domain.PhasePlayFromHand
	g.DealNumber = 1
	state.Match = &app.Match{ID: state.MatchID, Game: g, BaseBet: state.BaseBet, Totals: map[string]int{"p0": 0, "p1": 0}}
}

// parseLabel decodes a label; protojson output is not byte-stable.
func parseLabel(t *testing.T, raw string) map[string]any {
	t.Helper()
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	return got
}

func TestFindFirstHumanSeat(t *testing.T) {
	bot1 := bot.NewIdentity(0, bot.BotLevelEasy).UserID
	bot2 := bot.NewIdentity(1, bot.BotLevelEasy).UserID

	tests := []struct {
		name  string
		seats []string
		want  int
	}{
		{name: "FirstHumanAfterBot", seats: []string{bot1, "user-1", ""}, want: 1},
		{name: "AllBots", seats: []string{bot1, bot2, ""}, want: -1},
		{name: "AllEmpty", seats: []string{"", "", ""}, want: -1},
		{name: "FirstHumanIsSeatZero", seats: []string{"user-1", bot1, "user-2"}, want: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, findFirstHumanSeat(test.seats))
			assert.Equal(t, test.want == -1, shouldTerminateNoHumans(test.seats))
		})
	}
}

func TestMatchLabel_Marshal(t *testing.T) {
	state := newTestState(t, "user-1")

	raw, err := state.label().Marshal()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"game":       "gostop",
		"open":       true,
		"open_seats": float64(2),
		"phase":      "lobby",
		"players":    float64(1),
		"tier":       "casual",
	}, parseLabel(t, raw))

	withGoStopDeal(t, state)
	lbl := state.label()
	assert.False(t, lbl.Open, "running matches are closed to newcomers")
	assert.Equal(t, labelPhasePlaying, lbl.Phase)
}

func TestMatchInit_TierAndEnvOverrides(t *testing.T) {
	mh := newMatchHandler(testConfig(), nil)
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_ENV, map[string]string{
		"gostop_bots_enabled":      "false",
		"gostop_bot_min_delay_sec": "4",
	})
	ctx = context.WithValue(ctx, runtime.RUNTIME_CTX_MATCH_ID, "m.node")

	raw, rate, label := mh.MatchInit(ctx, noopLogger{}, nil, nil, map[string]interface{}{"tier": "high"})
	require.NotNil(t, raw)
	state := raw.(*MatchState)

	assert.Equal(t, tickRate, rate)
	assert.Equal(t, "high", parseLabel(t, label)["tier"])
	assert.Equal(t, "m.node", state.MatchID)
	assert.Equal(t, int64(1000), state.BaseBet)
	assert.Len(t, state.Seats, 3)
	assert.False(t, state.BotsEnabled)
	assert.Equal(t, 4, state.BotMinDelay)
	assert.Equal(t, 4, state.BotMaxDelay, "max delay never below min")
	assert.NotNil(t, state.StandIn)
	assert.Nil(t, state.Economy)
}

func TestMatchJoinAttempt(t *testing.T) {
	mh := newMatchHandler(testConfig(), nil)
	ctx := context.Background()
	newcomer := &mockPresence{userID: "user-9"}

	t.Run("OpenSeat", func(t *testing.T) {
		state := newTestState(t, "user-1")
		_, ok, _ := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, nil, 0, state, newcomer, nil)
		assert.True(t, ok)
	})

	t.Run("Full", func(t *testing.T) {
		state := newTestState(t, "user-1", "user-2", "user-3")
		_, ok, reason := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, nil, 0, state, newcomer, nil)
		assert.False(t, ok)
		assert.Equal(t, "Match full", reason)
	})

	t.Run("BotCanBeReplaced", func(t *testing.T) {
		state := newTestState(t, "user-1", "user-2", bot.NewIdentity(0, "").UserID)
		_, ok, _ := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, nil, 0, state, newcomer, nil)
		assert.True(t, ok)
	})

	t.Run("InProgressOnlyForSeated", func(t *testing.T) {
		state := newTestState(t, "p0", "p1")
		withGoStopDeal(t, state)
		_, ok, reason := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, nil, 0, state, newcomer, nil)
		assert.False(t, ok)
		assert.Equal(t, "Match in progress", reason)

		_, ok, _ = mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, nil, 0, state, &mockPresence{userID: "p1"}, nil)
		assert.True(t, ok)
	})

	t.Run("MinimumBalance", func(t *testing.T) {
		state := newTestState(t, "user-1")
		state.MinJoinBalance = 500
		state.Economy = &mockEconomy{balances: map[string]int64{"rich": 900, "poor": 100}}

		_, ok, _ := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, nil, 0, state, &mockPresence{userID: "rich"}, nil)
		assert.True(t, ok)
		_, ok, reason := mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, nil, 0, state, &mockPresence{userID: "poor"}, nil)
		assert.False(t, ok)
		assert.Equal(t, "Insufficient balance", reason)
		_, ok, reason = mh.MatchJoinAttempt(ctx, noopLogger{}, nil, nil, nil, 0, state, &mockPresence{userID: "ghost"}, nil)
		assert.False(t, ok)
		assert.Equal(t, "Balance unavailable", reason)
	})
}

func TestMatchJoin_SeatsAndBroadcastsSnapshot(t *testing.T) {
	mh := newMatchHandler(testConfig(), nil)
	dispatcher := &mockDispatcher{}
	economy := &mockEconomy{balances: map[string]int64{"user-1": 1200}}
	botIdentity := bot.NewIdentity(0, bot.BotLevelEasy)

	state := newTestState(t)
	state.Economy = economy
	state.Seats[1] = botIdentity.UserID
	state.BotProfiles[botIdentity.UserID] = botIdentity

	out := mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.Presence{
		&mockPresence{userID: "user-1", username: "ann"},
	})
	require.Same(t, state, out)

	assert.Equal(t, []string{"user-1", botIdentity.UserID, ""}, state.Seats)
	assert.Equal(t, 0, state.OwnerSeat)
	assert.Equal(t, 1, dispatcher.labelUpdates)

	snaps := dispatcher.byOp(OpMatchState)
	require.Len(t, snaps, 1)
	var snapshot MatchStateSnapshot
	require.NoError(t, json.Unmarshal(snaps[0].data, &snapshot))
	require.Len(t, snapshot.Players, 2)

	human, botSeat := snapshot.Players[0], snapshot.Players[1]
	assert.Equal(t, "ann", human.DisplayName)
	assert.True(t, human.IsOwner)
	assert.True(t, human.Connected)
	assert.Equal(t, int64(1200), human.Balance)
	assert.True(t, botSeat.IsBot)
	assert.Equal(t, botIdentity.DisplayName, botSeat.DisplayName)
	assert.Zero(t, economy.calls[botIdentity.UserID], "bots have no wallet")
}

func TestProcessAutoFill_FillsSeatsForSoloHuman(t *testing.T) {
	mh := newMatchHandler(testConfig(), nil)
	dispatcher := &mockDispatcher{}
	state := newTestState(t, "user-1")
	state.LastSinglePlayerTick = 1
	state.Tick = 1 + secondsToTicks(state.BotAutoFillDelay) - 1

	mh.processAutoFill(context.Background(), state, dispatcher, noopLogger{})
	assert.Equal(t, 2, state.GetOpenSeatsCount(), "still waiting")

	state.Tick++
	mh.processAutoFill(context.Background(), state, dispatcher, noopLogger{})

	bots := 0
	for _, seat := range state.Seats {
		if isBotUserId(seat) {
			bots++
			assert.Contains(t, state.Bots, seat)
			assert.Contains(t, state.BotProfiles, seat)
		}
	}
	assert.Equal(t, 2, bots)
	assert.Zero(t, state.GetOpenSeatsCount())
	assert.Zero(t, state.LastSinglePlayerTick)
	assert.NotZero(t, dispatcher.labelUpdates)
	assert.NotEmpty(t, dispatcher.byOp(OpMatchState))
}

func TestStartGame_OwnerStartsMatch(t *testing.T) {
	mh := newMatchHandler(testConfig(), nil)
	dispatcher := &mockDispatcher{}
	state := newTestState(t, "user-1", "user-2")

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 10, state, []runtime.MatchData{
		msgFrom("user-2", OpStartGame, ""),
	})
	assert.Nil(t, state.Match, "only the owner starts")

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 11, state, []runtime.MatchData{
		msgFrom("user-1", OpStartGame, ""),
	})
	require.NotNil(t, state.Match)
	assert.Equal(t, 1, state.Match.Game.DealNumber)
	assert.Equal(t, 7, state.Match.Game.Config.TargetScore)
	assert.Equal(t, int64(10), state.Match.BaseBet)
	assert.Len(t, dispatcher.byOp(OpDealStarted), 1)

	views := map[string]int{}
	for _, m := range dispatcher.byOp(OpStateUpdated) {
		require.Len(t, m.presences, 1, "views are private")
		views[m.presences[0].GetUserId()]++
	}
	assert.Equal(t, 1, views["user-1"])
	assert.Equal(t, 1, views["user-2"])
}

func TestHandleAction_Errors(t *testing.T) {
	mh := newMatchHandler(testConfig(), nil)
	dispatcher := &mockDispatcher{}
	state := newTestState(t, "p0", "p1")

	lastError := func() GameErrorEvent {
		errs := dispatcher.byOp(OpGameError)
		require.NotEmpty(t, errs)
		var ev GameErrorEvent
		require.NoError(t, json.Unmarshal(errs[len(errs)-1].data, &ev))
		return ev
	}

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{
		msgFrom("p0", OpAction, `{"type":"stop"}`),
	})
	assert.Equal(t, errCodeConflict, lastError().Code)

	withGoStopDeal(t, state)
	before := state.Match.Game

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.MatchData{
		msgFrom("p0", OpAction, `{not json`),
	})
	assert.Equal(t, errCodeBadRequest, lastError().Code)

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 3, state, []runtime.MatchData{
		msgFrom("p1", OpAction, `{"type":"play-card","cardId":"10-junk-1"}`),
	})
	ev := lastError()
	assert.Equal(t, errCodeForbidden, ev.Code)
	assert.Contains(t, ev.Message, "not your turn")

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 4, state, []runtime.MatchData{
		msgFrom("p0", OpAction, `{"type":"play-card","cardId":"12-bright"}`),
	})
	assert.Equal(t, errCodeInvalidMove, lastError().Code)

	errs := dispatcher.byOp(OpGameError)
	for _, m := range errs[1:] {
		require.Len(t, m.presences, 1)
	}
	assert.Same(t, before, state.Match.Game, "rejected actions leave the deal alone")
}

func TestActionRevealAndSettlement(t *testing.T) {
	mh := newMatchHandler(testConfig(), nil)
	dispatcher := &mockDispatcher{}
	state := newTestState(t, "p0", "p1")
	economy := state.Economy.(*mockEconomy)
	history := state.History.(*mockHistory)
	withGoStopDeal(t, state)
	state.StockRevealTicks = 2

	ctx := context.Background()
	mh.MatchLoop(ctx, noopLogger{}, nil, nil, dispatcher, 10, state, []runtime.MatchData{
		msgFrom("p0", OpAction, `{"type":"play-card","cardId":"1-bright"}`),
	})
	require.Len(t, dispatcher.byOp(OpStockDrawn), 1)
	assert.Equal(t, domain.PhaseDrawFromStock, state.Match.Game.Phase, "card stays on show")
	assert.Equal(t, int64(12), state.RevealAt)

	mh.MatchLoop(ctx, noopLogger{}, nil, nil, dispatcher, 12, state, nil)
	require.Equal(t, domain.PhaseGoStopDecision, state.Match.Game.Phase)
	assert.Zero(t, state.RevealAt)

	mh.MatchLoop(ctx, noopLogger{}, nil, nil, dispatcher, 13, state, []runtime.MatchData{
		msgFrom("p0", OpAction, `{"type":"stop"}`),
	})
	require.Len(t, dispatcher.byOp(OpDealEnded), 1)
	assert.Empty(t, dispatcher.byOp(OpMatchEnded))

	changes := map[string]int64{}
	for _, u := range economy.updates {
		changes[u.UserID] = u.Amount
		assert.Equal(t, "deal_settlement", u.Reason)
		assert.Equal(t, "match-1", u.Metadata["match_id"])
	}
	assert.Equal(t, map[string]int64{"p0": 20, "p1": -20}, changes)

	require.Len(t, history.calls, 1)
	assert.ElementsMatch(t, []string{"p0", "p1"}, history.calls[0].userIDs)
	rec := history.calls[0].rec
	assert.Equal(t, 1, rec.DealNumber)
	assert.Equal(t, "p0", rec.Winner)
	assert.Equal(t, int64(10), rec.BaseBet)
	assert.Equal(t, map[string]int{"p0": 2, "p1": -2}, rec.NetChips)

	// The next deal follows after the pause.
	assert.Equal(t, int64(13)+secondsToTicks(5), state.NextDealAt)
	mh.MatchLoop(ctx, noopLogger{}, nil, nil, dispatcher, state.NextDealAt-1, state, nil)
	assert.Equal(t, 1, state.Match.Game.DealNumber)
	mh.MatchLoop(ctx, noopLogger{}, nil, nil, dispatcher, state.NextDealAt, state, nil)
	assert.Equal(t, 2, state.Match.Game.DealNumber)
	assert.Len(t, dispatcher.byOp(OpDealStarted), 1)
}

func TestLastDealReleasesAbsentSeats(t *testing.T) {
	mh := newMatchHandler(testConfig(), nil)
	dispatcher := &mockDispatcher{}
	state := newTestState(t, "p0", "p1", "p2")
	withGoStopDeal(t, state)
	state.Match.Game.Config.TotalDeals = 1
	delete(state.Presences, "p2") // p2 dropped while seated

	ctx := context.Background()
	mh.MatchLoop(ctx, noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{
		msgFrom("p0", OpAction, `{"type":"play-card","cardId":"1-bright"}`),
	})
	mh.MatchLoop(ctx, noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.MatchData{
		msgFrom("p0", OpAction, `{"type":"stop"}`),
	})

	require.Len(t, dispatcher.byOp(OpMatchEnded), 1)
	assert.True(t, state.Match.Over)
	assert.False(t, state.matchRunning())
	assert.Equal(t, []string{"p0", "p1", ""}, state.Seats)
	assert.Equal(t, labelPhaseLobby, parseLabel(t, dispatcher.lastLabel)["phase"])
}

func TestDisconnectedPlayerGetsStandIn(t *testing.T) {
	mh := newMatchHandler(testConfig(), nil)
	dispatcher := &mockDispatcher{}
	state := newTestState(t, "p0", "p1")
	withGoStopDeal(t, state)
	ctx := context.Background()

	out := mh.MatchLeave(ctx, noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.Presence{state.Presences["p0"]})
	require.NotNil(t, out)
	assert.Equal(t, "p0", state.Seats[0], "seat kept during a match")
	assert.False(t, state.Match.Game.Player("p0").IsConnected)

	// Zero delay: the stand-in moves on the next tick.
	mh.MatchLoop(ctx, noopLogger{}, nil, nil, dispatcher, 2, state, nil)
	assert.Len(t, state.Match.Game.Player("p0").Hand, 1)

	mh.MatchJoin(ctx, noopLogger{}, nil, nil, dispatcher, 3, state, []runtime.Presence{&mockPresence{userID: "p0", username: "ann"}})
	assert.True(t, state.Match.Game.Player("p0").IsConnected)
	assert.Equal(t, []string{"p0", "p1", ""}, state.Seats)
}

func TestStandInPlaysTurnsOfPlayerWhoLeftOffTurn(t *testing.T) {
	mh := newMatchHandler(testConfig(), nil)
	dispatcher := &mockDispatcher{}
	state := newTestState(t, "p0", "p1")
	g, err := domain.CreateGameState([]domain.PlayerInfo{{ID: "p0"}, {ID: "p1"}}, domain.ConfigOverrides{KeepDisconnectedTurns: true})
	require.NoError(t, err)
	g.Players[0].Hand = mustCards(t, "9-junk-1", "5-junk-1")
	g.Players[1].Hand = mustCards(t, "10-junk-1", "11-junk-2")
	g.Table = []domain.TableStack{stackOf(t, "1-junk-2"), stackOf(t, "8-animal")}
	g.Stock = mustCards(t, "3-animal", "12-animal", "12-ribbon", "7-animal")
	g.Phase = domain.PhasePlayFromHand
	g.DealNumber = 1
	state.Match = &app.Match{ID: state.MatchID, Game: g, BaseBet: state.BaseBet, Totals: map[string]int{"p0": 0, "p1": 0}}
	ctx := context.Background()

	// p1 drops while p0 is to move.
	mh.MatchLeave(ctx, noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.Presence{state.Presences["p1"]})
	require.False(t, state.Match.Game.Player("p1").IsConnected)
	require.Equal(t, "p0", state.Match.CurrentPlayerID())

	mh.MatchLoop(ctx, noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.MatchData{
		msgFrom("p0", OpAction, `{"type":"play-card","cardId":"9-junk-1"}`),
	})

	assert.Len(t, state.Match.Game.Player("p0").Hand, 1)
	assert.Len(t, state.Match.Game.Player("p1").Hand, 1, "stand-in took p1's turn")
}

func TestStartGameKeepsDisconnectedTurns(t *testing.T) {
	mh := newMatchHandler(testConfig(), nil)
	dispatcher := &mockDispatcher{}
	state := newTestState(t, "p0", "p1")

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.MatchData{
		msgFrom("p0", OpStartGame, ""),
	})

	require.NotNil(t, state.Match)
	assert.True(t, state.Match.Game.Config.KeepDisconnectedTurns)
}

func TestMatchLeave_TerminatesWithoutHumans(t *testing.T) {
	mh := newMatchHandler(testConfig(), nil)
	state := newTestState(t, "user-1", bot.NewIdentity(0, "").UserID)

	out := mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, &mockDispatcher{}, 1, state, []runtime.Presence{state.Presences["user-1"]})
	assert.Nil(t, out)
}

func TestBroadcastEvent_PrivateEventsNeverBroadcast(t *testing.T) {
	mh := newMatchHandler(testConfig(), nil)
	dispatcher := &mockDispatcher{}
	state := newTestState(t, "user-1")

	mh.broadcastEvent(state, dispatcher, noopLogger{}, app.Event{
		Kind:       app.EventStateUpdated,
		Payload:    app.StateUpdatedPayload{},
		Recipients: []string{bot.NewIdentity(0, "").UserID},
	})
	assert.Empty(t, dispatcher.messages)

	mh.broadcastEvent(state, dispatcher, noopLogger{}, app.Event{
		Kind:    app.EventGoDeclared,
		Payload: app.GoDeclaredPayload{PlayerID: "user-1", GoCount: 1},
	})
	require.Len(t, dispatcher.messages, 1)
	assert.Equal(t, OpGoDeclared, dispatcher.messages[0].opCode)
	assert.Nil(t, dispatcher.messages[0].presences)
	assert.JSONEq(t, `{"playerId":"user-1","playerName":"","goCount":1}`, string(dispatcher.messages[0].data))
}

func TestRequestState_SendsSnapshotAndOwnView(t *testing.T) {
	mh := newMatchHandler(testConfig(), nil)
	dispatcher := &mockDispatcher{}
	state := newTestState(t, "p0", "p1")
	withGoStopDeal(t, state)

	mh.handleRequestState(context.Background(), state, dispatcher, noopLogger{}, msgFrom("p1", OpRequestState, ""))

	require.Len(t, dispatcher.messages, 2)
	for _, m := range dispatcher.messages {
		require.Len(t, m.presences, 1)
		assert.Equal(t, "p1", m.presences[0].GetUserId())
	}
	var view app.StateUpdatedPayload
	require.NoError(t, json.Unmarshal(dispatcher.byOp(OpStateUpdated)[0].data, &view))
	assert.Equal(t, "p1", view.View.MyID)
	assert.Len(t, view.View.MyHand, 2)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNotYourTurn, errCodeForbidden},
		{domain.ErrUnknownPlayer, errCodeForbidden},
		{domain.ErrCardNotInHand, errCodeInvalidMove},
		{domain.ErrNoSkipsRemaining, errCodeInvalidMove},
		{domain.ErrWrongPhase, errCodeConflict},
		{app.ErrMatchOver, errCodeConflict},
		{errors.New("boom"), errCodeBadRequest},
	}
	for _, test := range tests {
		t.Run(test.err.Error(), func(t *testing.T) {
			assert.Equal(t, test.want, errorCode(test.err))
		})
	}
}

func TestDecodeAction(t *testing.T) {
	a, err := decodeAction([]byte(`{"type":"play-card","cardId":"3-bright","targetCardId":"3-junk-1"}`))
	require.NoError(t, err)
	assert.Equal(t, domain.PlayCardOnto("3-bright", "3-junk-1"), a)

	a, err = decodeAction([]byte(`{"type":"bomb","month":7}`))
	require.NoError(t, err)
	assert.Equal(t, domain.Bomb(7), a)

	_, err = decodeAction([]byte(`{}`))
	assert.ErrorIs(t, err, errEmptyAction)
}

func TestMsToTicks(t *testing.T) {
	assert.Equal(t, int64(0), msToTicks(0))
	assert.Equal(t, int64(1), msToTicks(1))
	assert.Equal(t, int64(8), msToTicks(1500))
	assert.Equal(t, int64(10), secondsToTicks(2))
}
