package app

import (
	"math/rand"
	"sync"
	"time"

	"omok/internal/domain"
	"omok/internal/ports"
	"omok/internal/rules"
)

// Settlement is the final score change of one participant.
type Settlement struct {
	UserID  string
	Outcome domain.Outcome
	Delta   int
}

// RematchRequest is produced when a session relaunches with its REMATCH participants.
type RematchRequest struct {
	PreviousSessionID string
	UserIDs           []string
}

// Session is one match and all of its mutable state. Every field below mu is only
// touched while mu is held.
type Session struct {
	id        string
	createdAt time.Time
	previous  string

	// publish orders delivery of drained effects; it is taken before mu is released.
	publish sync.Mutex

	mu           sync.Mutex
	board        *domain.Board
	turns        *domain.TurnState
	participants *domain.Participants
	outcomes     *domain.Outcomes
	postGame     *domain.PostGame
	rules        *rules.Set
	scores       map[string]int
	state        StateType
	started      bool
	rng          *rand.Rand

	turnDuration   time.Duration
	decisionWindow time.Duration
	winLength      int

	// Produced under the lock and drained by the Service after unlocking.
	pending     []Notice
	settlements []Settlement
	scored      bool
	deltas      map[string]int
	reason      string
	rematch     *RematchRequest
	record      *ports.SessionRecord
	archived    bool
	removed     bool
}

// SessionOptions configures a new session.
type SessionOptions struct {
	ID             string
	PreviousID     string
	UserIDs        []string
	Scores         map[string]int
	Rules          *rules.Set
	BoardWidth     int
	BoardHeight    int
	WinLength      int
	TurnDuration   time.Duration
	DecisionWindow time.Duration
	CreatedAt      time.Time
	Rng            *rand.Rand
}

// NewSession builds a session in LOBBY.
func NewSession(opts SessionOptions) (*Session, error) {
	if len(opts.UserIDs) == 0 {
		return nil, ErrNoParticipants
	}
	board, err := domain.NewBoard(opts.BoardWidth, opts.BoardHeight)
	if err != nil {
		return nil, err
	}
	if opts.Rules == nil {
		opts.Rules = rules.NewSet(nil)
	}
	if opts.Rng == nil {
		opts.Rng = rand.New(rand.NewSource(opts.CreatedAt.UnixNano()))
	}
	if opts.WinLength <= 0 {
		opts.WinLength = domain.DefaultWinLength
	}
	if opts.DecisionWindow <= 0 {
		opts.DecisionWindow = domain.DefaultDecisionWindow
	}
	scores := make(map[string]int, len(opts.Scores))
	for id, s := range opts.Scores {
		scores[id] = s
	}
	return &Session{
		id:             opts.ID,
		previous:       opts.PreviousID,
		createdAt:      opts.CreatedAt,
		board:          board,
		turns:          domain.NewTurnState(opts.TurnDuration),
		participants:   domain.NewParticipants(opts.UserIDs),
		outcomes:       domain.NewOutcomes(opts.UserIDs),
		postGame:       domain.NewPostGame(opts.UserIDs),
		rules:          opts.Rules,
		scores:         scores,
		state:          StateLobby,
		rng:            opts.Rng,
		turnDuration:   opts.TurnDuration,
		decisionWindow: opts.DecisionWindow,
		winLength:      opts.WinLength,
	}, nil
}

// ID returns the immutable session id.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was built.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// PreviousID returns the id of the session this one is a rematch of, or "".
func (s *Session) PreviousID() string { return s.previous }

// View is a consistent copy of a session's observable state.
type View struct {
	ID           string
	State        StateType
	Started      bool
	Participants []string
	Ready        []string
	Disconnected []string
	Outcomes     map[string]domain.Outcome
	Decisions    map[string]domain.Decision
	Turn         domain.TurnSnapshot
	Board        []byte
	BoardWidth   int
	BoardHeight  int
	Rules        []string
	Scores       map[string]int
}

// Snapshot returns a View taken under the session lock.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() View {
	scores := make(map[string]int, len(s.scores))
	for id, v := range s.scores {
		scores[id] = v
	}
	return View{
		ID:           s.id,
		State:        s.state,
		Started:      s.started,
		Participants: s.participants.UserIDs(),
		Ready:        s.participants.ReadyUserIDs(),
		Disconnected: s.participants.DisconnectedUserIDs(),
		Outcomes:     s.outcomes.Snapshot(),
		Decisions:    s.postGame.Snapshot(),
		Turn:         s.turns.Snapshot(),
		Board:        s.board.Snapshot(),
		BoardWidth:   s.board.Width(),
		BoardHeight:  s.board.Height(),
		Rules:        s.ruleIDs(),
		Scores:       scores,
	}
}

// State returns the current state machine state.
func (s *Session) State() StateType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Participants returns the fixed participant list in play order.
func (s *Session) Participants() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.participants.UserIDs()
}

func (s *Session) ruleIDs() []string {
	ids := s.rules.IDs()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func (s *Session) notify(kind NoticeKind, payload Payload, recipients ...string) {
	s.pending = append(s.pending, Notice{Kind: kind, Payload: payload, Recipients: recipients})
}

// drain hands the queued side effects to the caller and clears them.
func (s *Session) drain() effects {
	out := effects{
		notices:     s.pending,
		settlements: s.settlements,
		rematch:     s.rematch,
		record:      s.record,
	}
	if s.state == StateCompleted && !s.removed {
		s.removed = true
		out.remove = true
	}
	s.pending, s.settlements, s.rematch, s.record = nil, nil, nil, nil
	return out
}

// effects are the outputs of one locked critical section.
type effects struct {
	notices     []Notice
	settlements []Settlement
	rematch     *RematchRequest
	record      *ports.SessionRecord
	remove      bool
}
