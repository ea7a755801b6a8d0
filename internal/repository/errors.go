// Package repository persists portal sessions.  Domain records live in
// the BQOMIS backend; the only state the portal owns is who is logged in.
package repository

import "errors"

// ErrSessionNotFound is returned when a refresh token matches no active
// session: unknown, revoked or expired.  Handlers translate it into 401.
var ErrSessionNotFound = errors.New("session not found")
