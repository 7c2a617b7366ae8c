package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"omok/internal/config"
	"omok/internal/ports"
	"omok/internal/rules"
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

type sentMessage struct {
	sessionID string
	msg       ports.Message
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeMessenger) Deliver(ctx context.Context, sessionID string, msg ports.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{sessionID: sessionID, msg: msg})
	return nil
}

// kinds lists the kinds delivered for sessionID in order.
func (f *fakeMessenger) kinds(sessionID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sent {
		if m.sessionID == sessionID {
			out = append(out, m.msg.Kind)
		}
	}
	return out
}

// last returns the most recent message of kind for sessionID.
func (f *fakeMessenger) last(sessionID string, kind NoticeKind) (ports.Message, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if f.sent[i].sessionID == sessionID && f.sent[i].msg.Kind == string(kind) {
			return f.sent[i].msg, true
		}
	}
	return ports.Message{}, false
}

func (f *fakeMessenger) count(sessionID string, kind NoticeKind) int {
	n := 0
	for _, k := range f.kinds(sessionID) {
		if k == string(kind) {
			n++
		}
	}
	return n
}

type scheduledTurn struct {
	turn     int
	deadline time.Time
	fire     func()
}

type fakeTurnScheduler struct {
	mu       sync.Mutex
	armed    map[string]scheduledTurn
	cancels  int
	schedule int
}

func newFakeTurnScheduler() *fakeTurnScheduler {
	return &fakeTurnScheduler{armed: make(map[string]scheduledTurn)}
}

func (f *fakeTurnScheduler) Schedule(sessionID string, turnNumber int, deadline time.Time, onTimeout func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schedule++
	f.armed[sessionID] = scheduledTurn{turn: turnNumber, deadline: deadline, fire: onTimeout}
}

func (f *fakeTurnScheduler) Cancel(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	delete(f.armed, sessionID)
}

func (f *fakeTurnScheduler) Validate(sessionID string, expected int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.armed[sessionID]
	return ok && e.turn == expected
}

func (f *fakeTurnScheduler) ClearIfMatches(sessionID string, turnNumber int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.armed[sessionID]; ok && e.turn == turnNumber {
		delete(f.armed, sessionID)
	}
}

func (f *fakeTurnScheduler) get(sessionID string) (scheduledTurn, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.armed[sessionID]
	return e, ok
}

type fakeDecisionScheduler struct {
	mu    sync.Mutex
	armed map[string]func()
}

func newFakeDecisionScheduler() *fakeDecisionScheduler {
	return &fakeDecisionScheduler{armed: make(map[string]func())}
}

func (f *fakeDecisionScheduler) Schedule(sessionID string, deadline time.Time, task func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed[sessionID] = task
}

func (f *fakeDecisionScheduler) Cancel(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.armed, sessionID)
}

func (f *fakeDecisionScheduler) get(sessionID string) (func(), bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.armed[sessionID]
	return task, ok
}

type scoreCall struct {
	userID string
	delta  int
}

type fakeScoreStore struct {
	mu      sync.Mutex
	scores  map[string]int
	applied []scoreCall
	err     error
}

func (f *fakeScoreStore) Scores(ctx context.Context, userIDs []string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]int)
	for _, id := range userIDs {
		if s, ok := f.scores[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (f *fakeScoreStore) ApplyDelta(ctx context.Context, userID string, delta int, metadata map[string]interface{}) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied = append(f.applied, scoreCall{userID: userID, delta: delta})
	if f.scores == nil {
		f.scores = make(map[string]int)
	}
	f.scores[userID] += delta
	return f.scores[userID], nil
}

type fakeArchive struct {
	mu      sync.Mutex
	records []ports.SessionRecord
}

func (f *fakeArchive) Archive(ctx context.Context, record ports.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, record)
	return nil
}

// fixedSelector hands every session the same rules.
type fixedSelector struct {
	descriptors []rules.Descriptor
}

func (f fixedSelector) Prepare(map[string]int) *rules.Set {
	return rules.NewSet(f.descriptors)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	svc       *Service
	messenger *fakeMessenger
	turns     *fakeTurnScheduler
	decisions *fakeDecisionScheduler
	scores    *fakeScoreStore
	archive   *fakeArchive
	clock     *testClock
	repo      *InMemoryRepository
}

func newHarness(t *testing.T, descriptors ...rules.Descriptor) *harness {
	t.Helper()
	h := &harness{
		messenger: &fakeMessenger{},
		turns:     newFakeTurnScheduler(),
		decisions: newFakeDecisionScheduler(),
		scores:    &fakeScoreStore{},
		archive:   &fakeArchive{},
		clock:     &testClock{now: time.Unix(1_700_000_000, 0)},
		repo:      NewInMemoryRepository(),
	}
	h.svc = NewService(Dependencies{
		Repository:        h.repo,
		Messenger:         h.messenger,
		TurnScheduler:     h.turns,
		DecisionScheduler: h.decisions,
		RuleManager:       fixedSelector{descriptors: descriptors},
		ScoreStore:        h.scores,
		Archive:           h.archive,
		Logger:            noopLogger{},
		Config:            config.Default(),
		Clock:             h.clock.Now,
	})
	return h
}

// start creates a session for users and readies everyone.
func (h *harness) start(t *testing.T, users ...string) *Session {
	t.Helper()
	session, err := h.svc.CreateFromGroup(context.Background(), users)
	if err != nil {
		t.Fatalf("CreateFromGroup: %v", err)
	}
	for i, id := range users {
		res, err := h.svc.SubmitReady(context.Background(), id, "ready")
		if err != nil {
			t.Fatalf("SubmitReady(%s): %v", id, err)
		}
		if want := i == len(users)-1; res.GameStarted != want {
			t.Fatalf("SubmitReady(%s).GameStarted = %v, want %v", id, res.GameStarted, want)
		}
	}
	return session
}

func (h *harness) move(t *testing.T, userID string, x, y int) MoveResult {
	t.Helper()
	res, err := h.svc.SubmitMove(context.Background(), userID, "move", x, y)
	if err != nil {
		t.Fatalf("SubmitMove(%s, %d, %d): %v", userID, x, y, err)
	}
	return res
}
