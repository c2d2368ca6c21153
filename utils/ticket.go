package utils

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/SeSAC-PrePair/prepair/config"
)

// TicketClaims is the signed payload of a Kakao handoff ticket. After the
// OAuth callback the browser is redirected back to the app with this ticket,
// which it exchanges exactly once for the user identity.
type TicketClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateTicket issues a short-lived signed handoff ticket for the user.
func GenerateTicket(userID uint, email string, duration time.Duration) (string, error) {
	cfg := config.Get()

	claims := TicketClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.TicketSecret))
}

// ParseTicket validates a handoff ticket and returns its claims.
func ParseTicket(tokenStr string) (*TicketClaims, error) {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &TicketClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.TicketSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*TicketClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid ticket claims")
	}

	return claims, nil
}

// usedTickets keeps consumed tickets in memory when Redis is unavailable.
type usedEntry struct {
	expiresAt time.Time
}

var (
	usedTickets   = map[string]usedEntry{}
	usedTicketsMu sync.RWMutex
)

// MarkTicketUsed records a consumed ticket until its natural expiration so it
// cannot be exchanged twice.
func MarkTicketUsed(ticket string, expiresAt time.Time) {
	if rc := GetRedis(); rc != nil {
		ttl := time.Until(expiresAt)
		if ttl <= 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, "ticket:used:"+ticket, "1", ttl).Err(); err == nil {
			return
		}
	}
	usedTicketsMu.Lock()
	usedTickets[ticket] = usedEntry{expiresAt: expiresAt}
	usedTicketsMu.Unlock()
}

// IsTicketUsed checks whether a ticket was already exchanged.
func IsTicketUsed(ticket string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if n, err := rc.Exists(ctx, "ticket:used:"+ticket).Result(); err == nil {
			return n > 0
		}
		// Redis unreachable; check the in-memory record
	}
	usedTicketsMu.RLock()
	entry, ok := usedTickets[ticket]
	usedTicketsMu.RUnlock()
	if !ok {
		return false
	}

	if time.Now().After(entry.expiresAt) {
		usedTicketsMu.Lock()
		delete(usedTickets, ticket)
		usedTicketsMu.Unlock()
		return false
	}

	return true
}
