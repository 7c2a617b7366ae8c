package rules

// Engine dispatches triggers to a session's rules. It holds no state of its own and one
// value is shared by every session.
type Engine struct{}

// NewEngine returns the shared engine.
func NewEngine() *Engine { return &Engine{} }

// Fire runs every selected rule for the trigger in dispatch order, then the capability
// hooks that belong to it. Rules filter on rt.Trigger themselves.
func (e *Engine) Fire(set *Set, kind TriggerKind, rt *Runtime) {
	if set == nil || rt == nil {
		return
	}
	e.bind(set, kind, rt)
	for _, d := range set.descriptors {
		if kind == TriggerGameStart && d.SetupBoard != nil && d.SetupBoard(rt) {
			rt.QueueBoardSnapshot()
		}
		if d.Invoke != nil {
			d.Invoke(rt)
		}
		switch kind {
		case TriggerGameStart:
			e.adjustTiming(d, rt)
			e.reorder(d, rt)
		case TriggerTurnAdvance:
			e.adjustTiming(d, rt)
		case TriggerTurnRoundCompleted:
			e.reorder(d, rt)
		}
	}
}

// ValidateMove fires MOVE_VALIDATION and returns the first rejection, if any.
func (e *Engine) ValidateMove(set *Set, rt *Runtime) Status {
	if set == nil || rt == nil {
		return StatusOK
	}
	e.bind(set, TriggerMoveValidation, rt)
	for _, d := range set.descriptors {
		if d.Invoke != nil {
			d.Invoke(rt)
		}
		if d.ValidateMove == nil {
			continue
		}
		if status := d.ValidateMove(rt); status != StatusOK {
			rt.debugf("RuleEngine: %s rejected move by %s: %s", d.ID, moveUser(rt), status)
			return status
		}
	}
	return StatusOK
}

// ResolveOutcome fires OUTCOME_EVALUATION, threading the candidate through every
// ResolveOutcome hook in dispatch order.
func (e *Engine) ResolveOutcome(set *Set, rt *Runtime, candidate *OutcomeResolution) *OutcomeResolution {
	if set == nil || rt == nil {
		return candidate
	}
	e.bind(set, TriggerOutcomeEvaluation, rt)
	for _, d := range set.descriptors {
		if d.Invoke != nil {
			d.Invoke(rt)
		}
		if d.ResolveOutcome != nil {
			candidate = d.ResolveOutcome(rt, candidate)
		}
	}
	return candidate
}

// TransformSnapshot applies every snapshot transform to an outbound board encoding.
// The input slice is never modified.
func (e *Engine) TransformSnapshot(set *Set, snapshot []byte) []byte {
	out := snapshot
	if set == nil {
		return out
	}
	for _, d := range set.descriptors {
		if d.TransformSnapshot != nil {
			out = d.TransformSnapshot(set.data, out)
		}
	}
	return out
}

func (e *Engine) bind(set *Set, kind TriggerKind, rt *Runtime) {
	rt.Trigger = kind
	rt.Data = set.data
}

func (e *Engine) adjustTiming(d Descriptor, rt *Runtime) {
	if d.AdjustTiming != nil && d.AdjustTiming(rt) {
		rt.effects.TimingChanged = true
	}
}

func (e *Engine) reorder(d Descriptor, rt *Runtime) {
	if d.ReorderTurns != nil && d.ReorderTurns(rt) {
		rt.effects.OrderChanged = true
	}
}

func moveUser(rt *Runtime) string {
	if rt.Move == nil {
		return ""
	}
	return rt.Move.UserID
}
