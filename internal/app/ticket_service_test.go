package app

import (
	"errors"
	"testing"
	"time"
)

func TestTicketServiceIssueAndVerify(t *testing.T) {
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	svc := NewTicketService("secret", "omok", time.Hour, clock.Now)

	raw, err := svc.Issue("user-1", "session-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	ticket, err := svc.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ticket.UserID != "user-1" || ticket.SessionID != "session-1" {
		t.Fatalf("ticket = %+v", ticket)
	}
	if want := clock.Now().Add(time.Hour); !ticket.ExpiresAt.Equal(want) {
		t.Fatalf("expires at %v, want %v", ticket.ExpiresAt, want)
	}
}

func TestTicketServiceRejects(t *testing.T) {
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	issuer := NewTicketService("secret", "omok", time.Hour, clock.Now)
	raw, err := issuer.Issue("user-1", "session-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name     string
		verifier *TicketService
		ticket   string
		advance  time.Duration
	}{
		{name: "wrong secret", verifier: NewTicketService("other", "omok", time.Hour, clock.Now), ticket: raw},
		{name: "wrong issuer", verifier: NewTicketService("secret", "someone-else", time.Hour, clock.Now), ticket: raw},
		{name: "garbage", verifier: issuer, ticket: "not-a-token"},
		{name: "expired", verifier: issuer, ticket: raw, advance: 2 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.Advance(tt.advance)
			defer clock.Advance(-tt.advance)
			if _, err := tt.verifier.Verify(tt.ticket); !errors.Is(err, ErrInvalidTicket) {
				t.Fatalf("err = %v, want %v", err, ErrInvalidTicket)
			}
		})
	}
}

func TestTicketServiceRequiresInputs(t *testing.T) {
	if _, err := NewTicketService("", "omok", 0, nil).Issue("u", "s"); err == nil {
		t.Fatal("expected error without a secret")
	}
	if _, err := NewTicketService("secret", "omok", 0, nil).Issue("", "s"); err == nil {
		t.Fatal("expected error without a user")
	}
}
