package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bqomis-portal/internal/availability"
	"github.com/iliyamo/bqomis-portal/internal/backend"
	"github.com/iliyamo/bqomis-portal/internal/model"
)

// AdminSettingsHandler reads and writes global and per-branch settings.
type AdminSettingsHandler struct {
	API *backend.Client
}

func NewAdminSettingsHandler(api *backend.Client) *AdminSettingsHandler {
	return &AdminSettingsHandler{API: api}
}

// GetGlobal -> GET /v1/admin/settings
func (h *AdminSettingsHandler) GetGlobal(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	s, err := h.API.GetGlobalSettings(ctx)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// UpdateGlobal -> PUT /v1/admin/settings
func (h *AdminSettingsHandler) UpdateGlobal(c echo.Context) error {
	var req model.GlobalSettings
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	th := availability.Thresholds{Low: req.DefaultQueueThresholdLow, Moderate: req.DefaultQueueThresholdModerate}
	if !th.Valid() {
		return badRequest(c, "queue thresholds must be positive with low <= moderate")
	}
	if req.BookingWindowDays < 0 || req.MinBookingNoticeHours < 0 || req.AllowCancellationHours < 0 || req.DefaultSlotDurationMins < 0 {
		return badRequest(c, "durations cannot be negative")
	}
	req.LastUpdated = nil
	ctx, cancel := withTimeout(c)
	defer cancel()
	s, err := h.API.UpdateGlobalSettings(ctx, req)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// GetBranch -> GET /v1/admin/branches/:id/settings
func (h *AdminSettingsHandler) GetBranch(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	s, err := h.API.GetBranchSettings(ctx, id)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// UpdateBranch -> PUT /v1/admin/branches/:id/settings
// A null field clears the override.
func (h *AdminSettingsHandler) UpdateBranch(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req model.BranchSettings
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	for _, v := range []*int{req.QueueThresholdLow, req.QueueThresholdModerate, req.SlotDurationMins, req.MaxAppointmentsPerSlot} {
		if v != nil && *v <= 0 {
			return badRequest(c, "overrides must be positive")
		}
	}
	if req.QueueThresholdLow != nil && req.QueueThresholdModerate != nil && *req.QueueThresholdLow > *req.QueueThresholdModerate {
		return badRequest(c, "queueThresholdLow cannot exceed queueThresholdModerate")
	}
	req.BranchID = id
	req.LastUpdated = nil
	ctx, cancel := withTimeout(c)
	defer cancel()
	s, err := h.API.UpdateBranchSettings(ctx, id, req)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
