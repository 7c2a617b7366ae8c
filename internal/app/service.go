package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"omok/internal/domain"
	"omok/internal/rules"
	"omok/internal/scheduler"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrNoParticipants       = errors.New("session needs at least one participant")
	ErrInvalidParticipant   = errors.New("participant id must not be empty")
	ErrDuplicateParticipant = errors.New("participant listed more than once")
	ErrTooManyParticipants  = errors.New("too many participants for one board")
	ErrParticipantBusy      = errors.New("participant is already in a live session")
)

// Service is the entry point of the session core. Every operation locks the target
// session, runs the state machine, and publishes the pending results after unlocking.
type Service struct {
	deps   Dependencies
	engine *rules.Engine

	rngMu sync.Mutex
}

// NewService wires a Service. Logger is required; missing optional collaborators get
// in-memory defaults and missing outbound ports are skipped.
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		panic("app: Dependencies.Logger is required")
	}
	deps.Config = deps.Config.Normalized()
	if deps.RuleEngine == nil {
		deps.RuleEngine = rules.NewEngine()
	}
	if deps.Repository == nil {
		deps.Repository = NewInMemoryRepository()
	}
	if deps.TurnScheduler == nil {
		deps.TurnScheduler = scheduler.NewTurnTimeouts(deps.Clock)
	}
	if deps.DecisionScheduler == nil {
		deps.DecisionScheduler = scheduler.NewDecisionTimeouts(deps.Clock)
	}
	if deps.Scores == nil {
		deps.Scores = NewScoreService(deps.Config.Scores)
	}
	if deps.Rng == nil {
		deps.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{deps: deps, engine: deps.RuleEngine}
}

// Repository exposes the session store.
func (s *Service) Repository() Repository { return s.deps.Repository }

// CreateFromGroup opens a lobby for participants, in play order.
func (s *Service) CreateFromGroup(ctx context.Context, participants []string) (*Session, error) {
	return s.createSession(ctx, participants, "")
}

func (s *Service) createSession(ctx context.Context, participants []string, previousID string) (*Session, error) {
	if err := s.validateGroup(participants); err != nil {
		return nil, err
	}
	cfg := s.deps.Config
	scores := s.lookupScores(ctx, participants)
	set := rules.NewSet(nil)
	if s.deps.RuleManager != nil {
		set = s.deps.RuleManager.Prepare(scores)
	}
	session, err := NewSession(SessionOptions{
		ID:             uuid.NewString(),
		PreviousID:     previousID,
		UserIDs:        participants,
		Scores:         scores,
		Rules:          set,
		BoardWidth:     cfg.BoardWidth,
		BoardHeight:    cfg.BoardHeight,
		WinLength:      cfg.WinLength,
		TurnDuration:   cfg.TurnDuration(),
		DecisionWindow: cfg.DecisionWindow(),
		CreatedAt:      s.deps.now(),
		Rng:            s.sessionRng(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.deps.Repository.Save(session)
	s.deps.Logger.Info("Service: created session %s for %v with rules %v", session.ID(), participants, set.IDs())
	return session, nil
}

func (s *Service) validateGroup(participants []string) error {
	if len(participants) < MinParticipants {
		return ErrNoParticipants
	}
	if len(participants) > min(MaxParticipants, s.deps.Config.MaxParticipants) {
		return ErrTooManyParticipants
	}
	seen := make(map[string]bool, len(participants))
	for _, id := range participants {
		if id == "" {
			return ErrInvalidParticipant
		}
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, id)
		}
		seen[id] = true
		if existing, ok := s.deps.Repository.FindByUserID(id); ok && existing.State() != StateCompleted {
			return fmt.Errorf("%w: %s in %s", ErrParticipantBusy, id, existing.ID())
		}
	}
	return nil
}

// lookupScores returns every participant's rating, falling back to the default for
// users without a record or when the store is unavailable.
func (s *Service) lookupScores(ctx context.Context, participants []string) map[string]int {
	fallback := s.deps.Scores.DefaultScore()
	if fallback <= 0 {
		fallback = rules.DefaultScore
	}
	scores := make(map[string]int, len(participants))
	for _, id := range participants {
		scores[id] = fallback
	}
	if s.deps.ScoreStore == nil {
		return scores
	}
	recorded, err := s.deps.ScoreStore.Scores(ctx, participants)
	if err != nil {
		s.deps.Logger.Warn("Service: score lookup failed, using defaults: %v", err)
		return scores
	}
	for id, v := range recorded {
		if _, ok := scores[id]; ok {
			scores[id] = v
		}
	}
	return scores
}

func (s *Service) sessionRng() *rand.Rand {
	s.rngMu.Lock()
	seed := s.deps.Rng.Int63()
	s.rngMu.Unlock()
	return rand.New(rand.NewSource(seed))
}

// commandSession returns userID's live session, or the completed session they last
// played in so late commands get a closed-session answer.
func (s *Service) commandSession(userID string) (*Session, bool) {
	if session, ok := s.deps.Repository.FindByUserID(userID); ok {
		return session, true
	}
	return s.deps.Repository.FindClosedByUserID(userID)
}

// SubmitReady marks userID ready in their lobby.
func (s *Service) SubmitReady(ctx context.Context, userID, requestID string) (ReadyResult, error) {
	session, ok := s.commandSession(userID)
	if !ok {
		return ReadyResult{UserID: userID, RequestID: requestID}, ErrSessionNotFound
	}
	var res *ReadyResult
	s.with(ctx, session, func(c *cycle) {
		c.dispatch(ReadyEvent{UserID: userID, RequestID: requestID})
		res = c.readyResult
	})
	if res == nil {
		return ReadyResult{UserID: userID, RequestID: requestID}, nil
	}
	return *res, nil
}

// SubmitMove places userID's stone at (x, y).
func (s *Service) SubmitMove(ctx context.Context, userID, requestID string, x, y int) (MoveResult, error) {
	session, ok := s.commandSession(userID)
	if !ok {
		return MoveResult{UserID: userID, RequestID: requestID, Status: MoveInvalidPlayer, X: x, Y: y, Stone: domain.StoneEmpty}, ErrSessionNotFound
	}
	var res *MoveResult
	s.with(ctx, session, func(c *cycle) {
		c.dispatch(MoveEvent{UserID: userID, RequestID: requestID, X: x, Y: y})
		res = c.moveResult
	})
	if res == nil {
		return MoveResult{UserID: userID, RequestID: requestID, Status: MoveGameFinished, X: x, Y: y, Stone: domain.StoneEmpty}, nil
	}
	return *res, nil
}

// SubmitPostGameDecision records userID's REMATCH or LEAVE.
func (s *Service) SubmitPostGameDecision(ctx context.Context, userID, requestID string, decision domain.Decision) (DecisionResult, error) {
	session, ok := s.commandSession(userID)
	if !ok {
		return DecisionResult{UserID: userID, RequestID: requestID, Status: DecisionInvalidPlayer, Decision: decision}, ErrSessionNotFound
	}
	var res *DecisionResult
	s.with(ctx, session, func(c *cycle) {
		c.dispatch(DecisionEvent{UserID: userID, RequestID: requestID, Decision: decision})
		res = c.decisionResult
	})
	if res == nil {
		return DecisionResult{UserID: userID, RequestID: requestID, Status: DecisionSessionClosed, Decision: decision}, nil
	}
	return *res, nil
}

// HandleClientDisconnected records that userID's connection dropped.
func (s *Service) HandleClientDisconnected(ctx context.Context, userID string) (DisconnectResult, error) {
	return s.depart(ctx, userID, ReasonDisconnected)
}

// LeaveByUser records that userID left on purpose.
func (s *Service) LeaveByUser(ctx context.Context, userID string) (DisconnectResult, error) {
	return s.depart(ctx, userID, ReasonLeft)
}

func (s *Service) depart(ctx context.Context, userID, reason string) (DisconnectResult, error) {
	session, ok := s.deps.Repository.FindByUserID(userID)
	if !ok {
		return DisconnectResult{UserID: userID}, ErrSessionNotFound
	}
	var res DisconnectResult
	s.with(ctx, session, func(c *cycle) {
		res = c.depart(userID, reason)
	})
	return res, nil
}

// Reconnect clears userID's disconnected flag and replays the session state to them.
func (s *Service) Reconnect(ctx context.Context, userID string) (bool, error) {
	session, ok := s.deps.Repository.FindByUserID(userID)
	if !ok {
		return false, ErrSessionNotFound
	}
	var changed bool
	s.with(ctx, session, func(c *cycle) {
		changed = c.reconnect(userID)
	})
	return changed, nil
}

// Join greets userID attaching to sessionID, reconnecting them if they had dropped.
func (s *Service) Join(ctx context.Context, sessionID, userID string) (bool, error) {
	session, ok := s.deps.Repository.FindByID(sessionID)
	if !ok {
		return false, ErrSessionNotFound
	}
	var joined bool
	s.with(ctx, session, func(c *cycle) {
		joined = c.join(userID)
	})
	return joined, nil
}

// HandleTurnTimeout delivers the turn timer armed for expected.
func (s *Service) HandleTurnTimeout(ctx context.Context, sessionID string, expected int) (TimeoutResult, error) {
	session, ok := s.deps.Repository.FindByID(sessionID)
	if !ok {
		return TimeoutResult{ExpectedTurn: expected}, ErrSessionNotFound
	}
	if !s.deps.TurnScheduler.Validate(sessionID, expected) {
		s.deps.Logger.Debug("Service: turn timer %d for %s is no longer armed", expected, sessionID)
	}
	var res *TimeoutResult
	s.with(ctx, session, func(c *cycle) {
		c.dispatch(TurnTimeoutEvent{ExpectedTurn: expected})
		res = c.timeoutResult
	})
	if res == nil {
		return TimeoutResult{ExpectedTurn: expected}, nil
	}
	return *res, nil
}

// HandleDecisionTimeout closes sessionID's post-game window.
func (s *Service) HandleDecisionTimeout(ctx context.Context, sessionID string) (DecisionTimeoutResult, error) {
	session, ok := s.deps.Repository.FindByID(sessionID)
	if !ok {
		return DecisionTimeoutResult{}, ErrSessionNotFound
	}
	var res *DecisionTimeoutResult
	s.with(ctx, session, func(c *cycle) {
		c.dispatch(DecisionTimeoutEvent{})
		res = c.decisionTimeout
	})
	if res == nil {
		return DecisionTimeoutResult{}, nil
	}
	return *res, nil
}

// FindSession returns a view of the live session userID belongs to.
func (s *Service) FindSession(userID string) (View, bool) {
	session, ok := s.deps.Repository.FindByUserID(userID)
	if !ok {
		return View{}, false
	}
	return session.Snapshot(), true
}

// with runs fn under the session lock, then publishes what fn produced. The publish
// lock is taken before the session lock is released so deliveries keep their order.
func (s *Service) with(ctx context.Context, session *Session, fn func(c *cycle)) {
	logger := s.deps.Logger.WithField("session_id", session.ID())
	session.mu.Lock()
	c := &cycle{ctx: ctx, svc: s, s: session, now: s.deps.now(), logger: logger}
	fn(c)
	out := session.drain()
	session.publish.Lock()
	session.mu.Unlock()
	defer session.publish.Unlock()
	s.apply(ctx, session.ID(), out)
}
