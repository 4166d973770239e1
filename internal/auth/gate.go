// Package auth implements the shared-secret access gate. It is a
// convenience lock, not a trust boundary: the secret is compared in plain
// text and stored alongside the data it guards.
package auth

import (
	"errors"
	"time"

	"taskflow-cli/internal/model"
	"taskflow-cli/internal/store"
)

// ErrCodeMismatch is returned for a wrong access code. Retries are
// unlimited; there is no lockout.
var ErrCodeMismatch = errors.New("access code does not match")

// Gate checks store access against the configured code and rolling expiry.
type Gate struct {
	Session *store.Session
}

func expiryWindow(s model.UserSettings) time.Duration {
	days := s.AuthCodeExpiry
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

// Authorized reports whether the store may be accessed right now. An empty
// configured code disables the gate entirely.
func (g Gate) Authorized(now time.Time) bool {
	s := g.Session.Settings()
	if s.AuthCode == "" {
		return true
	}
	if s.LastAuthTime == nil {
		return false
	}
	return now.Before(s.LastAuthTime.Add(expiryWindow(s)))
}

// Verify compares input against the configured code. On success the auth
// window restarts from now; the refreshed timestamp persists immediately.
func (g Gate) Verify(input string, now time.Time) error {
	s := g.Session.Settings()
	if s.AuthCode == "" {
		return nil
	}
	if input != s.AuthCode {
		return ErrCodeMismatch
	}
	_, err := g.Session.UpdateSettings(func(s *model.UserSettings) {
		t := now
		s.LastAuthTime = &t
	})
	return err
}

// Remaining reports how long the current authorization lasts, 0 when
// unauthorized. The gate-disabled case reports ok=false: there is no window
// to expire.
func (g Gate) Remaining(now time.Time) (time.Duration, bool) {
	s := g.Session.Settings()
	if s.AuthCode == "" || s.LastAuthTime == nil {
		return 0, false
	}
	d := s.LastAuthTime.Add(expiryWindow(s)).Sub(now)
	if d <= 0 {
		return 0, false
	}
	return d, true
}
