package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bqomis-portal/internal/availability"
	"github.com/iliyamo/bqomis-portal/internal/backend"
	"github.com/iliyamo/bqomis-portal/internal/finder"
	"github.com/iliyamo/bqomis-portal/internal/middleware"
	"github.com/iliyamo/bqomis-portal/internal/model"
	"github.com/iliyamo/bqomis-portal/pkg/logging"
)

// FinderHandler drives each user's branch finder.  Every successful call
// answers with the selector's current View.
type FinderHandler struct {
	API      *backend.Client
	Registry *finder.Registry
	Logger   *logging.Logger
}

func NewFinderHandler(api *backend.Client, reg *finder.Registry, l *logging.Logger) *FinderHandler {
	if l == nil {
		l = logging.Default()
	}
	return &FinderHandler{API: api, Registry: reg, Logger: l}
}

type finderNameReq struct {
	Name string `json:"name"`
}
type finderBranchReq struct {
	ID int64 `json:"id"`
}
type finderBackReq struct {
	Step string `json:"step"`
}
type finderBookReq struct {
	BranchServiceID int64 `json:"branchServiceId"`
}

// selector returns the caller's selector with districts loaded.
func (h *FinderHandler) selector(ctx context.Context, c echo.Context) (*finder.Selector, error) {
	uid, ok := middleware.UserID(c)
	if !ok {
		return nil, errNoUser
	}
	sel := h.Registry.Get(uid)
	if !sel.Loaded() {
		if err := sel.Load(ctx); err != nil {
			return nil, err
		}
	}
	return sel, nil
}

var errNoUser = errors.New("no user in context")

// finderError maps selector errors to responses.
func finderError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errNoUser):
		return unauthenticated(c)
	case errors.Is(err, finder.ErrUnknownItem):
		return badRequest(c, err.Error())
	case errors.Is(err, finder.ErrInvalidTransition),
		errors.Is(err, finder.ErrSuperseded),
		errors.Is(err, finder.ErrNotLoaded):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return backendError(c, err)
}

// View -> GET /v1/finder
func (h *FinderHandler) View(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	sel, err := h.selector(ctx, c)
	if err != nil {
		return finderError(c, err)
	}
	return c.JSON(http.StatusOK, sel.View())
}

// Province -> POST /v1/finder/province
func (h *FinderHandler) Province(c echo.Context) error {
	var req finderNameReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return badRequest(c, "name required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	sel, err := h.selector(ctx, c)
	if err != nil {
		return finderError(c, err)
	}
	if err := sel.SelectProvince(strings.TrimSpace(req.Name)); err != nil {
		return finderError(c, err)
	}
	return c.JSON(http.StatusOK, sel.View())
}

// District -> POST /v1/finder/district
func (h *FinderHandler) District(c echo.Context) error {
	var req finderNameReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return badRequest(c, "name required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	sel, err := h.selector(ctx, c)
	if err != nil {
		return finderError(c, err)
	}
	if err := sel.SelectDistrict(ctx, strings.TrimSpace(req.Name)); err != nil {
		return finderError(c, err)
	}
	return c.JSON(http.StatusOK, sel.View())
}

// Branch -> POST /v1/finder/branch
// Traffic thresholds come from the backend settings when it lets us read
// them; otherwise the selector keeps its defaults.
func (h *FinderHandler) Branch(c echo.Context) error {
	var req finderBranchReq
	if err := c.Bind(&req); err != nil || req.ID <= 0 {
		return badRequest(c, "id required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	sel, err := h.selector(ctx, c)
	if err != nil {
		return finderError(c, err)
	}
	sel.SetThresholds(h.thresholds(ctx, req.ID))
	if err := sel.SelectBranch(ctx, req.ID); err != nil {
		return finderError(c, err)
	}
	return c.JSON(http.StatusOK, sel.View())
}

func (h *FinderHandler) thresholds(ctx context.Context, branchID int64) availability.Thresholds {
	var (
		global *model.GlobalSettings
		branch *model.BranchSettings
		err    error
	)
	if global, err = h.API.GetGlobalSettings(ctx); err != nil {
		h.Logger.Debug("finder: global settings unavailable", "error", err)
		global = nil
	}
	if branch, err = h.API.GetBranchSettings(ctx, branchID); err != nil {
		h.Logger.Debug("finder: branch settings unavailable", "branch_id", branchID, "error", err)
		branch = nil
	}
	return availability.ThresholdsFrom(global, branch)
}

// Back -> POST /v1/finder/back
func (h *FinderHandler) Back(c echo.Context) error {
	var req finderBackReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	step, err := finder.ParseStep(req.Step)
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	sel, err := h.selector(ctx, c)
	if err != nil {
		return finderError(c, err)
	}
	if err := sel.Back(ctx, step); err != nil {
		return finderError(c, err)
	}
	return c.JSON(http.StatusOK, sel.View())
}

// Book -> POST /v1/finder/book
// Returns the branch and service for the booking form; nothing is created.
func (h *FinderHandler) Book(c echo.Context) error {
	var req finderBookReq
	if err := c.Bind(&req); err != nil || req.BranchServiceID <= 0 {
		return badRequest(c, "branchServiceId required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	sel, err := h.selector(ctx, c)
	if err != nil {
		return finderError(c, err)
	}
	handoff, err := sel.Book(req.BranchServiceID)
	if err != nil {
		return finderError(c, err)
	}
	return c.JSON(http.StatusOK, handoff)
}
