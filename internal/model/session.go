package model

import "time"

// Session models a row in the `portal_sessions` table.  It keeps the
// refresh token hash together with a snapshot of the backend user so a
// session survives restarts of the portal.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – backend user id.
//  Role      – role name copied from the user at login.
//  UserJSON  – serialized User snapshot.
//  TokenHash – SHA‑256 hex digest of the refresh token.
//  ExpiresAt – expiration timestamp of the refresh token.
//  RevokedAt – when the session was revoked (nil while active).
//  CreatedAt – timestamp of creation.
type Session struct {
	ID        uint64     // portal_sessions.id
	UserID    int64      // portal_sessions.user_id
	Role      string     // portal_sessions.role
	UserJSON  []byte     // portal_sessions.user_json
	TokenHash string     // portal_sessions.token_hash
	ExpiresAt time.Time  // portal_sessions.expires_at
	RevokedAt *time.Time // portal_sessions.revoked_at (nullable)
	CreatedAt time.Time  // portal_sessions.created_at
}
