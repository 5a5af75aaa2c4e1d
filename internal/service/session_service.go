package service

import (
	"context"
	"time"

	"wanderlust"
	"wanderlust/internal/logger"
	"wanderlust/internal/repository"

	"github.com/google/uuid"
)

// SessionTTL matches the 7-day cookie max-age.
const SessionTTL = 7 * 24 * time.Hour

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// SessionService keeps session state server-side, keyed by the cookie token.
type SessionService struct {
	sessions repository.Sessions
	log      *logger.Logger
}

func NewSessionService(sessions repository.Sessions, log *logger.Logger) *SessionService {
	return &SessionService{sessions: sessions, log: log}
}

var _ SessionManager = (*SessionService)(nil)

// Start creates a fresh anonymous session.
func (s *SessionService) Start(ctx context.Context) (*wanderlust.Session, error) {
	now := time.Now().UTC()
	sess := &wanderlust.Session{
		Token:     uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get loads a live session. Expired or unknown tokens return (nil, nil);
// the middleware then starts a new session.
func (s *SessionService) Get(ctx context.Context, token string) (*wanderlust.Session, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil || !sess.ExpiresAt.After(time.Now().UTC()) {
		return nil, nil
	}
	return sess, nil
}

// Login binds the session to the user (anonymous → authenticated).
func (s *SessionService) Login(ctx context.Context, token string, userID int64) error {
	return s.sessions.SetUser(ctx, token, userID)
}

// Logout drops the session row entirely; the next request starts anonymous.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// AddFlash appends a one-shot message shown on the next rendered page.
func (s *SessionService) AddFlash(ctx context.Context, token, kind, message string) error {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil // session vanished; nothing to attach the message to
	}
	switch kind {
	case FlashError:
		sess.Flash.Error = append(sess.Flash.Error, message)
	default:
		sess.Flash.Success = append(sess.Flash.Success, message)
	}
	return s.sessions.SetFlash(ctx, token, sess.Flash)
}

// PopFlash returns the pending messages and clears them (read-once).
func (s *SessionService) PopFlash(ctx context.Context, token string) (wanderlust.Flash, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return wanderlust.Flash{}, err
	}
	if sess == nil || sess.Flash.Empty() {
		return wanderlust.Flash{}, nil
	}
	if err := s.sessions.SetFlash(ctx, token, wanderlust.Flash{}); err != nil {
		return wanderlust.Flash{}, err
	}
	return sess.Flash, nil
}

// Sweep deletes expired sessions on every tick until ctx is cancelled.
// Run it from main in its own goroutine.
func (s *SessionService) Sweep(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := s.sessions.DeleteExpired(ctx, now)
			if err != nil {
				s.log.Errorw("session_sweep_failed", "err", err)
				continue
			}
			if n > 0 {
				s.log.Infow("session_sweep", "deleted", n)
			}
		}
	}
}
