package models

import "time"

// Session represents one authenticated interaction sequence. It is created
// by SessionManager.Login and destroyed by Logout or timeout detection; it
// is never persisted.
type Session struct {
	ID        string
	Identity  string
	Role      Role
	LoginTime time.Time

	// APIToken is the bearer token presented to the remote API. It is
	// cleared when the session is destroyed or the remote API returns 401.
	APIToken string
}

// Destroyed reports whether the session has been torn down.
func (s *Session) Destroyed() bool {
	return s.LoginTime.IsZero()
}

// Destroy clears the session in place so stale references cannot
// authenticate anything.
func (s *Session) Destroy() {
	s.LoginTime = time.Time{}
	s.APIToken = ""
}
