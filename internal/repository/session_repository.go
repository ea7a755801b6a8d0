package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/bqomis-portal/internal/model"
)

// SessionRepo stores refresh token hashes with the user snapshot taken at
// login.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row and returns its id.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO portal_sessions (user_id, role, user_json, token_hash, expires_at) VALUES (?,?,?,?,?)",
		s.UserID, s.Role, s.UserJSON, s.TokenHash, s.ExpiresAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// FindActive returns the non-revoked, non-expired session for tokenHash.
func (r *SessionRepo) FindActive(ctx context.Context, tokenHash string) (*model.Session, error) {
	var (
		s         model.Session
		revokedAt sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, role, user_json, token_hash, expires_at, revoked_at, created_at FROM portal_sessions WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&s.ID, &s.UserID, &s.Role, &s.UserJSON, &s.TokenHash, &s.ExpiresAt, &revokedAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if revokedAt.Valid || time.Now().UTC().After(s.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

// Rotate revokes the session holding oldHash and stores next in one
// transaction.  A token that was already revoked cannot be rotated twice.
func (r *SessionRepo) Rotate(ctx context.Context, oldHash string, next *model.Session) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"UPDATE portal_sessions SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		oldHash)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrSessionNotFound
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO portal_sessions (user_id, role, user_json, token_hash, expires_at) VALUES (?,?,?,?,?)",
		next.UserID, next.Role, next.UserJSON, next.TokenHash, next.ExpiresAt); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateSnapshot refreshes the stored user on every active session of the
// user, e.g. after a profile edit.
func (r *SessionRepo) UpdateSnapshot(ctx context.Context, userID int64, role string, userJSON []byte) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE portal_sessions SET role=?, user_json=? WHERE user_id=? AND revoked_at IS NULL",
		role, userJSON, userID)
	return err
}

// RevokeByHash marks a session as revoked.
func (r *SessionRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE portal_sessions SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForUser revokes all of the user's active sessions.
func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID int64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE portal_sessions SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}
