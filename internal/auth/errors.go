package auth

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidToken marks a malformed or mis-signed bearer token.
var ErrInvalidToken = errors.New("invalid token")

// LockedError rejects an authentication attempt against a locked identity.
// It discloses only the remaining lockout duration, nothing about whether
// the presented password was correct.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account temporarily locked, try again in %s", e.Remaining.Round(time.Second))
}
