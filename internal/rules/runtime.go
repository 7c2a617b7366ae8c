package rules

import (
	"math/rand"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"

	"omok/internal/domain"
)

// Status is a rule's verdict on a move; the empty status accepts it.
type Status string

const (
	StatusOK             Status = ""
	StatusRestrictedZone Status = "RESTRICTED_ZONE"
)

// Move is the placement being processed. PRE_PLACEMENT rules may change the
// coordinates or the stone; the core checks the result before writing it.
type Move struct {
	UserID      string
	PlayerIndex int
	X           int
	Y           int
	Stone       domain.Stone
}

// Point returns the move's current coordinates.
func (m *Move) Point() domain.Point { return domain.Point{X: m.X, Y: m.Y} }

// OutcomeResolution is a candidate set of results produced during outcome evaluation.
// Each rule with a ResolveOutcome hook receives the candidate built so far and returns
// the one to pass on; a nil candidate means nobody is decided yet.
type OutcomeResolution struct {
	Assignments map[string]domain.Outcome
	FinalizeNow bool
}

// NewResolution returns an empty candidate.
func NewResolution(finalize bool) *OutcomeResolution {
	return &OutcomeResolution{Assignments: make(map[string]domain.Outcome), FinalizeNow: finalize}
}

// Assign sets one user's candidate result.
func (r *OutcomeResolution) Assign(userID string, outcome domain.Outcome) *OutcomeResolution {
	r.Assignments[userID] = outcome
	return r
}

// Winners lists the users assigned WIN.
func (r *OutcomeResolution) Winners() []string {
	if r == nil {
		return nil
	}
	var out []string
	for id, o := range r.Assignments {
		if o == domain.OutcomeWin {
			out = append(out, id)
		}
	}
	return out
}

// Empty reports whether the candidate assigns nothing.
func (r *OutcomeResolution) Empty() bool {
	return r == nil || len(r.Assignments) == 0
}

// Effects are the side effects rules ask the core to publish after a trigger.
type Effects struct {
	BoardChanged  bool
	OrderChanged  bool
	TimingChanged bool
}

// Runtime is what a rule sees when it is invoked.
type Runtime struct {
	Trigger      TriggerKind
	SessionID    string
	Board        *domain.Board
	Turns        *domain.TurnState
	Participants *domain.Participants
	Outcomes     *domain.Outcomes
	Data         *Blackboard
	// Turn is the turn snapshot the trigger belongs to.
	Turn domain.TurnSnapshot
	// Move is set while a placement is in flight and nil otherwise.
	Move   *Move
	Rand   *rand.Rand
	Now    time.Time
	Logger runtime.Logger

	effects Effects
}

// QueueBoardSnapshot asks the core to broadcast the board once the trigger completes.
func (r *Runtime) QueueBoardSnapshot() { r.effects.BoardChanged = true }

// Effects returns the side effects requested so far.
func (r *Runtime) Effects() Effects { return r.effects }

// ClearEffects forgets requested side effects after the core has published them.
func (r *Runtime) ClearEffects() { r.effects = Effects{} }

func (r *Runtime) placement() domain.Placement {
	if r.Turn.ActionNumber > 0 {
		return domain.RulePlacement(r.Turn.ActionNumber, -1, "")
	}
	return domain.SystemPlacement()
}

func (r *Runtime) debugf(format string, v ...interface{}) {
	if r.Logger != nil {
		r.Logger.Debug(format, v...)
	}
}

func (r *Runtime) intn(n int) int {
	if n <= 1 {
		return 0
	}
	if r.Rand == nil {
		return rand.Intn(n)
	}
	return r.Rand.Intn(n)
}

func (r *Runtime) float() float64 {
	if r.Rand == nil {
		return rand.Float64()
	}
	return r.Rand.Float64()
}

func (r *Runtime) shuffle(n int, swap func(i, j int)) {
	if r.Rand == nil {
		rand.Shuffle(n, swap)
		return
	}
	r.Rand.Shuffle(n, swap)
}

// disconnected returns the skip set used when the turn order is reseeded.
func (r *Runtime) disconnected() map[string]bool {
	if r.Participants == nil {
		return nil
	}
	return r.Participants.Disconnected()
}
