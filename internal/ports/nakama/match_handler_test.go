package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/heroiclabs/nakama-common/runtime"

	"omok/internal/app"
	"omok/internal/config"
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

type sentBroadcast struct {
	opCode     int64
	data       []byte
	recipients []string
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	sent         []sentBroadcast
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	var to []string
	for _, p := range presences {
		to = append(to, p.GetUserId())
	}
	md.sent = append(md.sent, sentBroadcast{opCode: opCode, data: append([]byte(nil), data...), recipients: to})
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

func (md *mockDispatcher) find(opCode int64) []sentBroadcast {
	var out []sentBroadcast
	for _, s := range md.sent {
		if s.opCode == opCode {
			out = append(out, s)
		}
	}
	return out
}

type fakePresence struct {
	runtime.Presence
	userID string
}

func (p fakePresence) GetUserId() string    { return p.userID }
func (p fakePresence) GetSessionId() string { return "sess-" + p.userID }
func (p fakePresence) GetUsername() string  { return p.userID }

type fakeMatchData struct {
	runtime.MatchData
	userID string
	opCode int64
	data   []byte
}

func (m fakeMatchData) GetUserId() string { return m.userID }
func (m fakeMatchData) GetOpCode() int64  { return m.opCode }
func (m fakeMatchData) GetData() []byte   { return m.data }

type fakeEntry struct {
	runtime.MatchmakerEntry
	userID string
}

func (e fakeEntry) GetPresence() runtime.Presence { return fakePresence{userID: e.userID} }

// fakeNakama implements the NakamaModule calls the match handler makes.
type fakeNakama struct {
	runtime.NakamaModule
	created       []map[string]interface{}
	notifications []*runtime.NotificationSend
}

func (f *fakeNakama) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	f.created = append(f.created, params)
	return fmt.Sprintf("match-%d", len(f.created)), nil
}

func (f *fakeNakama) NotificationsSend(ctx context.Context, notifications []*runtime.NotificationSend) error {
	f.notifications = append(f.notifications, notifications...)
	return nil
}

type matchFixture struct {
	mod        *Module
	handler    *matchHandler
	nk         *fakeNakama
	dispatcher *mockDispatcher
	state      *MatchState
}

func newMatchFixture(t *testing.T, env config.RuntimeEnv, users ...string) *matchFixture {
	t.Helper()
	if env.TickRate == 0 {
		env.TickRate = 5
	}
	f := &matchFixture{
		mod:        NewModule(noopLogger{}, env, config.Default(), nil, nil),
		nk:         &fakeNakama{},
		dispatcher: &mockDispatcher{},
	}
	f.handler = &matchHandler{mod: f.mod}

	matchID, err := f.mod.startGroup(context.Background(), noopLogger{}, f.nk, users)
	if err != nil {
		t.Fatalf("startGroup: %v", err)
	}
	sessionID, _ := f.nk.created[0][MatchParamSessionID].(string)
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_MATCH_ID, matchID)
	state, tickRate, label := f.handler.MatchInit(ctx, noopLogger{}, nil, f.nk, map[string]interface{}{MatchParamSessionID: sessionID})
	if state == nil {
		t.Fatal("MatchInit returned no state")
	}
	if tickRate != env.TickRate {
		t.Fatalf("tick rate = %d, want %d", tickRate, env.TickRate)
	}
	if got := decodeBody(t, []byte(label))["state"]; got != string(app.StateLobby) {
		t.Fatalf("label state = %v", got)
	}
	f.state = state.(*MatchState)
	return f
}

func (f *matchFixture) join(t *testing.T, users ...string) {
	t.Helper()
	presences := make([]runtime.Presence, len(users))
	for i, id := range users {
		presences[i] = fakePresence{userID: id}
	}
	f.handler.MatchJoin(context.Background(), noopLogger{}, nil, f.nk, f.dispatcher, 0, f.state, presences)
}

func (f *matchFixture) loop(messages ...runtime.MatchData) interface{} {
	return f.handler.MatchLoop(context.Background(), noopLogger{}, nil, f.nk, f.dispatcher, 1, f.state, messages)
}

func decodeBody(t *testing.T, data []byte) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("invalid JSON body %s: %v", data, err)
	}
	return body
}

func TestMatchJoinAttemptAdmitsParticipantsOnly(t *testing.T) {
	f := newMatchFixture(t, config.RuntimeEnv{}, "a", "b")

	tests := []struct {
		userID string
		want   bool
	}{
		{userID: "a", want: true},
		{userID: "b", want: true},
		{userID: "stranger", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			_, ok, _ := f.handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, f.nk, f.dispatcher, 0, f.state, fakePresence{userID: tt.userID}, nil)
			if ok != tt.want {
				t.Fatalf("admitted = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestMatchJoinAttemptRequiresTicket(t *testing.T) {
	env := config.RuntimeEnv{RequireTicket: true, TicketSecret: "secret", TicketIssuer: "omok"}
	f := newMatchFixture(t, env, "a", "b")
	ctx := context.Background()

	if _, ok, reason := f.handler.MatchJoinAttempt(ctx, noopLogger{}, nil, f.nk, f.dispatcher, 0, f.state, fakePresence{userID: "a"}, nil); ok || reason != "invalid ticket" {
		t.Fatalf("join without ticket = %v (%s)", ok, reason)
	}

	ticket, err := f.mod.tickets.Issue("b", f.state.SessionID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	metadata := map[string]string{JoinMetadataTicket: ticket}
	if _, ok, _ := f.handler.MatchJoinAttempt(ctx, noopLogger{}, nil, f.nk, f.dispatcher, 0, f.state, fakePresence{userID: "a"}, metadata); ok {
		t.Fatal("ticket of another user admitted")
	}
	if _, ok, reason := f.handler.MatchJoinAttempt(ctx, noopLogger{}, nil, f.nk, f.dispatcher, 0, f.state, fakePresence{userID: "b"}, metadata); !ok {
		t.Fatalf("valid ticket rejected: %s", reason)
	}
}

func TestMatchJoinGreetsEachPresence(t *testing.T) {
	f := newMatchFixture(t, config.RuntimeEnv{}, "a", "b")

	f.join(t, "a", "b")

	joined := f.dispatcher.find(OpSessionJoined)
	if len(joined) != 2 {
		t.Fatalf("session_joined sent %d times, want 2", len(joined))
	}
	if len(joined[0].recipients) != 1 || joined[0].recipients[0] != "a" {
		t.Fatalf("session_joined recipients = %v", joined[0].recipients)
	}
	body := decodeBody(t, joined[0].data)
	if body["session_id"] != f.state.SessionID || body["board_width"] != float64(10) {
		t.Fatalf("session_joined body = %v", body)
	}
}

func TestMatchLoopRunsTheGame(t *testing.T) {
	f := newMatchFixture(t, config.RuntimeEnv{}, "a", "b")
	f.join(t, "a", "b")

	f.loop(
		fakeMatchData{userID: "a", opCode: OpReady, data: []byte(`{"request_id":"r1"}`)},
		fakeMatchData{userID: "b", opCode: OpReady},
	)

	started := f.dispatcher.find(OpGameStarted)
	if len(started) != 1 || started[0].recipients != nil {
		t.Fatalf("game_started = %+v", started)
	}
	if got := decodeBody(t, []byte(f.dispatcher.lastLabel))["state"]; got != string(app.StateTurnWaiting) {
		t.Fatalf("label state = %v", got)
	}

	f.loop(fakeMatchData{userID: "a", opCode: OpMove, data: []byte(`{"x":4,"y":4}`)})

	ended := f.dispatcher.find(OpTurnEnded)
	if len(ended) != 1 {
		t.Fatalf("turn_ended sent %d times, want 1", len(ended))
	}
	body := decodeBody(t, ended[0].data)
	if body["user_id"] != "a" || body["x"] != float64(4) || body["y"] != float64(4) {
		t.Fatalf("turn_ended body = %v", body)
	}

	f.loop(fakeMatchData{userID: "a", opCode: OpMove, data: []byte(`{"x":5,"y":5}`)})

	rejected := f.dispatcher.find(OpMoveRejected)
	if len(rejected) != 1 || rejected[0].recipients[0] != "a" {
		t.Fatalf("move_rejected = %+v", rejected)
	}
	if got := decodeBody(t, rejected[0].data)["status"]; got != string(app.MoveOutOfTurn) {
		t.Fatalf("status = %v, want %s", got, app.MoveOutOfTurn)
	}
}

func TestMatchLoopRejectsMalformedMoves(t *testing.T) {
	f := newMatchFixture(t, config.RuntimeEnv{}, "a", "b")
	f.join(t, "a", "b")

	f.loop(
		fakeMatchData{userID: "a", opCode: OpMove, data: []byte(`{"x":1}`)},
		fakeMatchData{userID: "a", opCode: OpMove, data: []byte(`not json`)},
		fakeMatchData{userID: "stranger", opCode: OpReady},
	)

	errs := f.dispatcher.find(OpError)
	if len(errs) != 2 {
		t.Fatalf("error events = %d, want 2", len(errs))
	}
	for _, e := range errs {
		if e.recipients[0] != "a" {
			t.Fatalf("error sent to %v", e.recipients)
		}
	}
}

func TestMatchTerminatesAfterSessionCloses(t *testing.T) {
	f := newMatchFixture(t, config.RuntimeEnv{}, "solo")
	f.join(t, "solo")

	if next := f.loop(fakeMatchData{userID: "solo", opCode: OpLeave}); next == nil {
		t.Fatal("match ended before the closing flush")
	}
	terminated := f.dispatcher.find(OpSessionTerminated)
	if len(terminated) != 1 {
		t.Fatalf("session_terminated sent %d times, want 1", len(terminated))
	}
	if got := decodeBody(t, terminated[0].data)["reason"]; got != app.ReasonAbandoned {
		t.Fatalf("reason = %v", got)
	}

	if next := f.loop(); next != nil {
		t.Fatal("match kept running after its session closed")
	}
	if _, ok := f.mod.outbox.MatchID(f.state.SessionID); ok {
		t.Fatal("outbox still bound to the closed session")
	}
}

func TestMatchLeaveDisconnectsParticipant(t *testing.T) {
	f := newMatchFixture(t, config.RuntimeEnv{}, "a", "b", "c")
	f.join(t, "a", "b", "c")

	f.handler.MatchLeave(context.Background(), noopLogger{}, nil, f.nk, f.dispatcher, 2, f.state, []runtime.Presence{fakePresence{userID: "c"}})

	if _, ok := f.state.Presences["c"]; ok {
		t.Fatal("presence kept after leave")
	}
	view, _ := f.mod.service.FindSession("c")
	if len(view.Disconnected) != 1 || view.Disconnected[0] != "c" {
		t.Fatalf("disconnected = %v", view.Disconnected)
	}
	if len(f.dispatcher.find(OpPlayerDisconnected)) != 1 {
		t.Fatal("player_disconnected not broadcast")
	}
}

func TestMatchmakerMatchedOpensOneMatchPerGroup(t *testing.T) {
	mod := NewModule(noopLogger{}, config.RuntimeEnv{TickRate: 5}, config.Default(), nil, nil)
	nk := &fakeNakama{}
	entries := []runtime.MatchmakerEntry{fakeEntry{userID: "a"}, fakeEntry{userID: "b"}}

	matchID, err := mod.MatchmakerMatched(context.Background(), noopLogger{}, nil, nk, entries)
	if err != nil {
		t.Fatalf("MatchmakerMatched: %v", err)
	}
	view, ok := mod.service.FindSession("b")
	if !ok || view.Participants[0] != "a" {
		t.Fatalf("session = %+v", view)
	}
	if bound, _ := mod.outbox.MatchID(view.ID); bound != matchID {
		t.Fatalf("outbox bound to %q, want %q", bound, matchID)
	}
	if _, err := mod.MatchmakerMatched(context.Background(), noopLogger{}, nil, nk, entries); err == nil {
		t.Fatal("busy players matched twice")
	}
}

func TestRpcQuickMatchReusesLiveSession(t *testing.T) {
	mod := NewModule(noopLogger{}, config.RuntimeEnv{TickRate: 5}, config.Default(), nil, nil)
	nk := &fakeNakama{}
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, "a")

	first, err := mod.RpcQuickMatch(ctx, noopLogger{}, nil, nk, "")
	if err != nil {
		t.Fatalf("RpcQuickMatch: %v", err)
	}
	second, err := mod.RpcQuickMatch(ctx, noopLogger{}, nil, nk, "")
	if err != nil {
		t.Fatalf("RpcQuickMatch: %v", err)
	}

	var a, b QuickMatchResponse
	json.Unmarshal([]byte(first), &a)
	json.Unmarshal([]byte(second), &b)
	if !a.IsNew || b.IsNew || a.MatchID != b.MatchID || a.SessionID != b.SessionID {
		t.Fatalf("responses = %+v then %+v", a, b)
	}
	if len(nk.created) != 1 {
		t.Fatalf("matches created = %d, want 1", len(nk.created))
	}
}

func TestRpcSessionTicket(t *testing.T) {
	env := config.RuntimeEnv{TickRate: 5, TicketSecret: "secret", TicketIssuer: "omok"}
	mod := NewModule(noopLogger{}, env, config.Default(), nil, nil)
	nk := &fakeNakama{}
	ctx := context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, "a")

	if _, err := mod.RpcSessionTicket(ctx, noopLogger{}, nil, nk, ""); !isNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
	if _, err := mod.RpcQuickMatch(ctx, noopLogger{}, nil, nk, ""); err != nil {
		t.Fatalf("RpcQuickMatch: %v", err)
	}
	raw, err := mod.RpcSessionTicket(ctx, noopLogger{}, nil, nk, "")
	if err != nil {
		t.Fatalf("RpcSessionTicket: %v", err)
	}
	var resp TicketResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	ticket, err := mod.tickets.Verify(resp.Ticket)
	if err != nil || ticket.UserID != "a" || ticket.SessionID != resp.SessionID {
		t.Fatalf("ticket = %+v, %v", ticket, err)
	}
	if resp.MatchID != "match-1" {
		t.Fatalf("match id = %q", resp.MatchID)
	}
}
