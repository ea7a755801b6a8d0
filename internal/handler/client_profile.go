package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bqomis-portal/internal/backend"
	"github.com/iliyamo/bqomis-portal/internal/middleware"
	"github.com/iliyamo/bqomis-portal/internal/model"
	"github.com/iliyamo/bqomis-portal/internal/repository"
	"github.com/iliyamo/bqomis-portal/pkg/logging"
)

// ProfileHandler serves the signed-in user's own account.
type ProfileHandler struct {
	API      *backend.Client
	Sessions *repository.SessionRepo
	Logger   *logging.Logger
}

func NewProfileHandler(api *backend.Client, s *repository.SessionRepo, l *logging.Logger) *ProfileHandler {
	if l == nil {
		l = logging.Default()
	}
	return &ProfileHandler{API: api, Sessions: s, Logger: l}
}

type profileReq struct {
	Username    *string `json:"username"`
	PhoneNumber *string `json:"phoneNumber"`
}

type passwordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Get -> GET /v1/me
func (h *ProfileHandler) Get(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	u, err := h.API.GetUser(ctx, uid)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Update -> PUT /v1/me
// Only the username and phone number can be changed here; the stored
// session snapshot is refreshed so token refreshes return the new values.
func (h *ProfileHandler) Update(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthenticated(c)
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Username != nil {
		v := strings.TrimSpace(*req.Username)
		if v == "" {
			return badRequest(c, "username cannot be empty")
		}
		req.Username = &v
	}
	if req.Username == nil && req.PhoneNumber == nil {
		return badRequest(c, "nothing to update")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	u, err := h.API.UpdateUser(ctx, uid, model.UserPatch{Username: req.Username, PhoneNumber: req.PhoneNumber})
	if err != nil {
		return backendError(c, err)
	}

	if snap, err := json.Marshal(u); err == nil {
		if err := h.Sessions.UpdateSnapshot(ctx, uid, u.Role, snap); err != nil {
			h.Logger.Warn("profile: snapshot update failed", "user_id", uid, "error", err)
		}
	}
	return c.JSON(http.StatusOK, u)
}

// ChangePassword -> POST /v1/me/password
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthenticated(c)
	}
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return badRequest(c, "currentPassword and newPassword are required")
	}
	if req.NewPassword != req.ConfirmPassword {
		return badRequest(c, "passwords do not match")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	u, err := h.API.GetUser(ctx, uid)
	if err != nil {
		return backendError(c, err)
	}
	err = h.API.ChangePassword(ctx, model.PasswordChange{
		Email:       u.Email,
		OldPassword: req.CurrentPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// Appointments -> GET /v1/me/appointments
func (h *ProfileHandler) Appointments(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthenticated(c)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	list, err := h.API.AppointmentsByUser(ctx, uid)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, items(list))
}
