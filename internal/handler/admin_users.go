package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bqomis-portal/internal/backend"
	"github.com/iliyamo/bqomis-portal/internal/finder"
	"github.com/iliyamo/bqomis-portal/internal/middleware"
	"github.com/iliyamo/bqomis-portal/internal/model"
	"github.com/iliyamo/bqomis-portal/internal/repository"
	"github.com/iliyamo/bqomis-portal/pkg/logging"
)

// AdminUserHandler manages staff and admin accounts.  Role changes and
// deletions end the affected user's portal sessions.
type AdminUserHandler struct {
	API      *backend.Client
	Sessions *repository.SessionRepo
	Finders  *finder.Registry
	Logger   *logging.Logger
}

func NewAdminUserHandler(api *backend.Client, s *repository.SessionRepo, f *finder.Registry, l *logging.Logger) *AdminUserHandler {
	if l == nil {
		l = logging.Default()
	}
	return &AdminUserHandler{API: api, Sessions: s, Finders: f, Logger: l}
}

// endSessions revokes every session of the user and drops their finder.
func (h *AdminUserHandler) endSessions(c echo.Context, userID int64) error {
	if err := h.Sessions.RevokeAllForUser(c.Request().Context(), userID); err != nil {
		h.Logger.Error("admin users: revoke sessions failed", "user_id", userID, "error", err)
		return err
	}
	if h.Finders != nil {
		h.Finders.Reset(userID)
	}
	return nil
}

func sessionsNotEnded(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not end the user's sessions"})
}

func knownRole(r string) bool {
	switch r {
	case model.RoleAdmin, model.RoleStaff, model.RoleClient, model.RoleTester:
		return true
	}
	return false
}

// List -> GET /v1/admin/users
func (h *AdminUserHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	list, err := h.API.ListUsersByRoles(ctx, model.RoleStaff, model.RoleAdmin)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, items(list))
}

// Create -> POST /v1/admin/users
// Role defaults to STAFF.
func (h *AdminUserHandler) Create(c echo.Context) error {
	var req model.NewUser
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if req.Role == "" {
		req.Role = model.RoleStaff
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return badRequest(c, "username, email and password are required")
	}
	if !knownRole(req.Role) {
		return badRequest(c, "unknown role")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	u, err := h.API.CreateUser(ctx, req)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

// Patch -> PATCH /v1/admin/users/:id
// A role change revokes the user's sessions so the next login picks up the
// new role.  Other edits refresh the stored snapshot.
func (h *AdminUserHandler) Patch(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req model.UserPatch
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Username == nil && req.PhoneNumber == nil && req.Role == nil {
		return badRequest(c, "nothing to update")
	}
	if req.Role != nil {
		r := strings.ToUpper(strings.TrimSpace(*req.Role))
		if !knownRole(r) {
			return badRequest(c, "unknown role")
		}
		req.Role = &r
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	u, err := h.API.PatchUser(ctx, id, req)
	if err != nil {
		return backendError(c, err)
	}

	if req.Role != nil {
		if err := h.endSessions(c, id); err != nil {
			return sessionsNotEnded(c)
		}
		return c.JSON(http.StatusOK, u)
	}
	if snap, err := json.Marshal(u); err == nil {
		if err := h.Sessions.UpdateSnapshot(c.Request().Context(), id, u.Role, snap); err != nil {
			h.Logger.Warn("admin users: snapshot update failed", "user_id", id, "error", err)
		}
	}
	return c.JSON(http.StatusOK, u)
}

// Delete -> DELETE /v1/admin/users/:id
// Admins cannot delete their own account.
func (h *AdminUserHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	if self, _ := middleware.UserID(c); self == id {
		return badRequest(c, "cannot delete your own account")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.API.DeleteUser(ctx, id); err != nil {
		return backendError(c, err)
	}
	if err := h.endSessions(c, id); err != nil {
		return sessionsNotEnded(c)
	}
	return c.NoContent(http.StatusNoContent)
}

// Roles -> GET /v1/admin/roles
func (h *AdminUserHandler) Roles(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	list, err := h.API.ListRoles(ctx)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, items(list))
}
