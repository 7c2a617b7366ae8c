package domain

// Outcome is a participant's game result.
type Outcome string

const (
	OutcomePending Outcome = "PENDING"
	OutcomeWin     Outcome = "WIN"
	OutcomeLoss    Outcome = "LOSS"
	OutcomeDraw    Outcome = "DRAW"
)

// Outcomes maps every participant to a result. Decided results are final.
type Outcomes struct {
	userIDs []string
	results map[string]Outcome
}

// NewOutcomes creates a store with every participant PENDING.
func NewOutcomes(userIDs []string) *Outcomes {
	o := &Outcomes{userIDs: append([]string(nil), userIDs...)}
	o.Reset()
	return o
}

// Reset sets every participant back to PENDING. Only valid before a game starts.
func (o *Outcomes) Reset() {
	o.results = make(map[string]Outcome, len(o.userIDs))
	for _, id := range o.userIDs {
		o.results[id] = OutcomePending
	}
}

// For returns userID's result; unknown users are PENDING.
func (o *Outcomes) For(userID string) Outcome {
	if r, ok := o.results[userID]; ok {
		return r
	}
	return OutcomePending
}

// Set records a result. Setting PENDING, overwriting a decided result or naming an
// unknown user is refused and reported as false.
func (o *Outcomes) Set(userID string, result Outcome) bool {
	current, ok := o.results[userID]
	if !ok || result == OutcomePending || current != OutcomePending {
		return false
	}
	o.results[userID] = result
	return true
}

// IsResolved reports whether no participant is PENDING.
func (o *Outcomes) IsResolved() bool {
	for _, id := range o.userIDs {
		if o.results[id] == OutcomePending {
			return false
		}
	}
	return true
}

// DecidedCount returns how many participants have a non-PENDING result.
func (o *Outcomes) DecidedCount() int {
	n := 0
	for _, id := range o.userIDs {
		if o.results[id] != OutcomePending {
			n++
		}
	}
	return n
}

// Snapshot copies the result map.
func (o *Outcomes) Snapshot() map[string]Outcome {
	out := make(map[string]Outcome, len(o.results))
	for id, r := range o.results {
		out[id] = r
	}
	return out
}
