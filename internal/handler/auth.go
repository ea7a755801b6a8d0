package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bqomis-portal/internal/backend"
	"github.com/iliyamo/bqomis-portal/internal/config"
	"github.com/iliyamo/bqomis-portal/internal/finder"
	"github.com/iliyamo/bqomis-portal/internal/model"
	"github.com/iliyamo/bqomis-portal/internal/repository"
	"github.com/iliyamo/bqomis-portal/internal/utils"
	"github.com/iliyamo/bqomis-portal/pkg/logging"
)

// AuthHandler issues portal sessions for backend users.  Credentials are
// checked by the backend; the portal signs its own tokens and keeps the
// refresh side in MySQL.
type AuthHandler struct {
	Cfg      config.Config
	API      *backend.Client
	Sessions *repository.SessionRepo
	Finders  *finder.Registry
	Logger   *logging.Logger
}

func NewAuthHandler(cfg config.Config, api *backend.Client, s *repository.SessionRepo, f *finder.Registry, l *logging.Logger) *AuthHandler {
	if l == nil {
		l = logging.Default()
	}
	return &AuthHandler{Cfg: cfg, API: api, Sessions: s, Finders: f, Logger: l}
}

// ----- DTOs -----

type registerReq struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type authResp struct {
	User    model.User `json:"user"`
	Access  tokenPart  `json:"access"`
	Refresh tokenPart  `json:"refresh"`
}

// Register signs up a CLIENT account on the backend and logs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Password == "" || req.Username == "" {
		return badRequest(c, "username, email and password are required")
	}
	if req.Password != req.ConfirmPassword {
		return badRequest(c, "passwords do not match")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.API.CreateUser(ctx, model.NewUser{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Password:    req.Password,
		Role:        model.RoleClient,
	})
	if err != nil {
		return backendError(c, err)
	}
	if u.Role == "" {
		u.Role = model.RoleClient
	}
	return h.issue(c, http.StatusCreated, *u)
}

// Login checks credentials against the backend and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "email/password required")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.API.Authenticate(ctx, model.Credentials{Email: req.Email, Password: req.Password})
	if errors.Is(err, backend.ErrInvalidCredentials) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return backendError(c, err)
	}
	return h.issue(c, http.StatusOK, *u)
}

func (h *AuthHandler) issue(c echo.Context, status int, u model.User) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	snapshot, err := json.Marshal(u)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "encode user failed"})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	if _, err := h.Sessions.Create(ctx, &model.Session{
		UserID:    u.ID,
		Role:      u.Role,
		UserJSON:  snapshot,
		TokenHash: utils.HashRefreshRaw(refresh.Raw),
		ExpiresAt: refresh.Exp,
	}); err != nil {
		h.Logger.Error("auth: save session failed", "user_id", u.ID, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(status, authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Refresh rotates a refresh token and returns a new pair.  The user comes
// from the session snapshot, so the backend is not called.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := withTimeout(c)
	defer cancel()

	sess, err := h.Sessions.FindActive(ctx, hash)
	if errors.Is(err, repository.ErrSessionNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load session failed"})
	}
	var u model.User
	if err := json.Unmarshal(sess.UserJSON, &u); err != nil || u.ID != sess.UserID {
		u = model.User{ID: sess.UserID, Role: sess.Role}
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, sess.UserID, sess.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	next, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	err = h.Sessions.Rotate(ctx, hash, &model.Session{
		UserID:    sess.UserID,
		Role:      sess.Role,
		UserJSON:  sess.UserJSON,
		TokenHash: utils.HashRefreshRaw(next.Raw),
		ExpiresAt: next.Exp,
	})
	if errors.Is(err, repository.ErrSessionNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: next.Raw, Expires: next.Exp},
	})
}

// Logout revokes the refresh token in the body.  Without one, a valid
// bearer token revokes every session of its user.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := withTimeout(c)
	defer cancel()

	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		sess, err := h.Sessions.FindActive(ctx, hash)
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load session failed"})
		}
		if err := h.Sessions.RevokeByHash(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
		}
		h.Finders.Reset(sess.UserID)
		return c.NoContent(http.StatusNoContent)
	}

	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return badRequest(c, "refresh_token or bearer token required")
	}
	claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
	}
	if err := h.Sessions.RevokeAllForUser(ctx, claims.UserID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
	}
	h.Finders.Reset(claims.UserID)
	return c.NoContent(http.StatusNoContent)
}
