package entity

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptySessionID is returned by NewSession for a blank session id.
var ErrEmptySessionID = errors.New("session id must not be empty")

// Session is the server-side conversational state for one session id.
// It is an immutable value: Touch and WithContext return updated copies,
// the SessionStore is the only owner of the current version.
type Session struct {
	SessionID    string
	UserID       string
	CreatedAt    time.Time
	LastActivity time.Time
	Context      ConversationContext
}

// NewSession creates a session with an empty context. The session id is the
// immutable identity and must not be blank; userID may be empty.
func NewSession(sessionID, userID string, now time.Time) (Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Session{}, ErrEmptySessionID
	}
	return Session{
		SessionID:    sessionID,
		UserID:       userID,
		CreatedAt:    now,
		LastActivity: now,
		Context:      NewConversationContext(),
	}, nil
}

// Touch returns a copy with LastActivity advanced to now. LastActivity is
// monotonic: a clock that went backwards never rewinds it.
func (s Session) Touch(now time.Time) Session {
	if now.After(s.LastActivity) {
		s.LastActivity = now
	}
	return s
}

// WithContext returns a copy carrying the given context, touched to now.
func (s Session) WithContext(ctx ConversationContext, now time.Time) Session {
	s.Context = ctx
	return s.Touch(now)
}

// IsExpired reports whether the session has been inactive for longer than
// ttl. A session exactly at the boundary is not expired.
func (s Session) IsExpired(ttl time.Duration, now time.Time) bool {
	return now.After(s.LastActivity.Add(ttl))
}
