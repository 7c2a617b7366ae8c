package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// ErrInvalidTicket is returned when a session ticket fails verification.
var ErrInvalidTicket = errors.New("invalid session ticket")

// TicketService issues and verifies signed tickets that let a participant attach to
// their session's match.
type TicketService struct {
	secret string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// Ticket is the verified content of a session ticket.
type Ticket struct {
	UserID    string
	SessionID string
	ExpiresAt time.Time
}

func NewTicketService(secret, issuer string, ttl time.Duration, now func() time.Time) *TicketService {
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &TicketService{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		now:    now,
	}
}

// Issue signs a ticket binding userID to sessionID.
func (s *TicketService) Issue(userID, sessionID string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("ticket service is nil")
	}
	if userID == "" || sessionID == "" {
		return "", fmt.Errorf("user and session are required")
	}
	if s.secret == "" {
		return "", fmt.Errorf("ticket secret is not configured")
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": userID,
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify checks the signature, issuer and expiry of a ticket.
func (s *TicketService) Verify(ticket string) (Ticket, error) {
	if s == nil || s.secret == "" {
		return Ticket{}, fmt.Errorf("ticket secret is not configured")
	}
	// Expiry is checked below against the injected clock.
	parser := &jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.Parse(ticket, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return Ticket{}, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Ticket{}, ErrInvalidTicket
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return Ticket{}, fmt.Errorf("%w: issuer mismatch", ErrInvalidTicket)
	}
	exp, ok := claims["exp"].(float64)
	if !ok || s.now().Unix() >= int64(exp) {
		return Ticket{}, fmt.Errorf("%w: expired", ErrInvalidTicket)
	}
	userID, _ := claims["sub"].(string)
	sessionID, _ := claims["sid"].(string)
	if userID == "" || sessionID == "" {
		return Ticket{}, fmt.Errorf("%w: missing subject", ErrInvalidTicket)
	}
	return Ticket{UserID: userID, SessionID: sessionID, ExpiresAt: time.Unix(int64(exp), 0)}, nil
}
