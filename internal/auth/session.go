package auth

import (
	"time"

	"github.com/esgtools/esgkeeper/internal/common"
	"github.com/esgtools/esgkeeper/internal/models"
	"github.com/google/uuid"
)

// SessionManager creates and validates explicit Session values. There is no
// ambient session registry: callers hold the Session and pass it in. There
// is also no implicit renewal; any access after the timeout restarts the
// authentication flow.
type SessionManager struct {
	timeout time.Duration
	secret  []byte
	now     func() time.Time
}

func NewSessionManager(timeout time.Duration, secret []byte) *SessionManager {
	return &SessionManager{timeout: timeout, secret: secret, now: time.Now}
}

// Login creates a Session for an authenticated credential, stamping the
// login time and minting the bearer token for remote API calls.
func (m *SessionManager) Login(cred *models.PublicCredential) (*models.Session, error) {
	token, err := GenerateToken(cred.Identity, string(cred.Role), m.secret, m.timeout)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &models.Session{
		ID:        uuid.NewString(),
		Identity:  cred.Identity,
		Role:      cred.Role,
		LoginTime: m.now(),
		APIToken:  token,
	}, nil
}

// IsValid is a pure read of the login timestamp.
func (m *SessionManager) IsValid(s *models.Session) bool {
	if s == nil || s.Destroyed() {
		return false
	}
	return m.now().Sub(s.LoginTime) < m.timeout
}

// RequireAuth gates an operation on a live session. An absent session
// demands re-authentication; an expired one is destroyed first so stale
// references cannot be replayed.
func (m *SessionManager) RequireAuth(s *models.Session) error {
	if s == nil || s.Destroyed() {
		return common.ErrReauthenticationRequired
	}
	if !m.IsValid(s) {
		s.Destroy()
		return common.ErrReauthenticationRequired
	}
	return nil
}

// Logout destroys the session unconditionally, independent of timeout state.
func (m *SessionManager) Logout(s *models.Session) {
	if s != nil {
		s.Destroy()
	}
}
