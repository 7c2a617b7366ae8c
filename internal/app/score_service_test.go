package app

import (
	"testing"

	"omok/internal/config"
	"omok/internal/domain"
)

func TestScoreServiceCalculateScoreDelta(t *testing.T) {
	svc := NewScoreService(config.Default().Scores)
	view := View{
		Outcomes: map[string]domain.Outcome{
			"winner":  domain.OutcomeWin,
			"loser":   domain.OutcomeLoss,
			"drawer":  domain.OutcomeDraw,
			"quitter": domain.OutcomeLoss,
			"gone":    domain.OutcomeWin,
		},
		Disconnected: []string{"quitter", "gone"},
	}

	tests := []struct {
		userID string
		want   int
	}{
		{userID: "winner", want: 10},
		{userID: "loser", want: -5},
		{userID: "drawer", want: 0},
		{userID: "quitter", want: -5},
		{userID: "gone", want: 10},
		{userID: "nobody", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.userID, func(t *testing.T) {
			if got := svc.CalculateScoreDelta(view, tt.userID); got != tt.want {
				t.Fatalf("delta = %d, want %d", got, tt.want)
			}
		})
	}
	if svc.DefaultScore() != 1000 {
		t.Fatalf("default score = %d, want 1000", svc.DefaultScore())
	}
}
