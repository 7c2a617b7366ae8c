package rules

import (
	"math/rand"
	"sync"
	"time"
)

const (
	MinRules = 1
	MaxRules = 4
	// DefaultScore stands in for players without a recorded score.
	DefaultScore = 1000
)

// Manager picks the rules of a new session from the catalogue.
type Manager struct {
	catalogue []Descriptor
	fixed     []ID

	mu  sync.Mutex
	rng *rand.Rand
}

// NewManager creates a manager over catalogue. A non-empty fixed list bypasses random
// selection; a nil rng is seeded from the clock.
func NewManager(catalogue []Descriptor, fixed []ID, rng *rand.Rand) *Manager {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Manager{
		catalogue: append([]Descriptor(nil), catalogue...),
		fixed:     append([]ID(nil), fixed...),
		rng:       rng,
	}
}

// DeriveCount maps the lowest participant score to how many rules a session gets.
func DeriveCount(lowestScore int) int {
	switch {
	case lowestScore < 500:
		return 1
	case lowestScore < 1000:
		return 2
	case lowestScore < 2000:
		return 3
	default:
		return MaxRules
	}
}

// Prepare builds the rules context for a session whose participants hold scores.
func (m *Manager) Prepare(scores map[string]int) *Set {
	lowest, first := 0, true
	for _, s := range scores {
		if first || s < lowest {
			lowest, first = s, false
		}
	}
	if fixed := m.resolveFixed(); len(fixed) > 0 {
		return NewSet(fixed)
	}
	return NewSet(m.Select(lowest, DeriveCount(lowest)))
}

// Select draws up to desired rules whose limit score is at most lowestScore.
func (m *Manager) Select(lowestScore, desired int) []Descriptor {
	var eligible []Descriptor
	for _, d := range m.catalogue {
		if d.LimitScore <= lowestScore {
			eligible = append(eligible, d)
		}
	}
	if len(eligible) == 0 || desired <= 0 {
		return nil
	}
	m.mu.Lock()
	m.rng.Shuffle(len(eligible), func(i, j int) { eligible[i], eligible[j] = eligible[j], eligible[i] })
	m.mu.Unlock()
	count := max(MinRules, min(desired, len(eligible), MaxRules))
	return eligible[:count]
}

func (m *Manager) resolveFixed() []Descriptor {
	var out []Descriptor
	for _, id := range m.fixed {
		for _, d := range m.catalogue {
			if d.ID == id {
				out = append(out, d)
				break
			}
		}
	}
	return out
}
