package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wanderlust"
)

type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

var _ Sessions = (*SessionRepository)(nil)

const (
	insertSessionSQL = `INSERT INTO sessions (token, user_id, flash, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`

	selectSessionSQL = `SELECT token, user_id, flash, created_at, expires_at FROM sessions WHERE token = ?`

	updateSessionUserSQL  = `UPDATE sessions SET user_id = ? WHERE token = ?`
	updateSessionFlashSQL = `UPDATE sessions SET flash = ? WHERE token = ?`

	deleteSessionSQL         = `DELETE FROM sessions WHERE token = ?`
	deleteExpiredSessionsSQL = `DELETE FROM sessions WHERE expires_at <= ?`
)

// Create inserts a new session row. Flash is serialized as JSON.
func (r *SessionRepository) Create(ctx context.Context, s *wanderlust.Session) error {
	flash, err := json.Marshal(s.Flash)
	if err != nil {
		return fmt.Errorf("marshal session flash: %w", err)
	}

	var userID any
	if s.UserID != 0 {
		userID = s.UserID
	}
	_, err = r.db.ExecContext(ctx, insertSessionSQL,
		s.Token, userID, string(flash), s.CreatedAt.UTC(), s.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get fetches a session by token. Returns (nil, nil) if not found.
func (r *SessionRepository) Get(ctx context.Context, token string) (*wanderlust.Session, error) {
	var (
		s        wanderlust.Session
		userID   sql.NullInt64
		flashRaw string
	)
	err := r.db.QueryRowContext(ctx, selectSessionSQL, token).
		Scan(&s.Token, &userID, &flashRaw, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select session: %w", err)
	}
	if userID.Valid {
		s.UserID = userID.Int64
	}
	if flashRaw != "" {
		if err := json.Unmarshal([]byte(flashRaw), &s.Flash); err != nil {
			// A corrupt flash blob should not take the session down with it.
			s.Flash = wanderlust.Flash{}
		}
	}
	return &s, nil
}

// SetUser binds the session to a user (login) or clears it (userID 0).
func (r *SessionRepository) SetUser(ctx context.Context, token string, userID int64) error {
	var id any
	if userID != 0 {
		id = userID
	}
	if _, err := r.db.ExecContext(ctx, updateSessionUserSQL, id, token); err != nil {
		return fmt.Errorf("update session user: %w", err)
	}
	return nil
}

// SetFlash replaces the session's flash payload.
func (r *SessionRepository) SetFlash(ctx context.Context, token string, f wanderlust.Flash) error {
	flash, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal session flash: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, updateSessionFlashSQL, string(flash), token); err != nil {
		return fmt.Errorf("update session flash: %w", err)
	}
	return nil
}

// Delete removes one session (logout).
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, deleteSessionSQL, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions past their expiry and reports how many.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteExpiredSessionsSQL, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired sessions rows affected: %w", err)
	}
	return n, nil
}
