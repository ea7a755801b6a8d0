package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bqomis-portal/internal/backend"
	"github.com/iliyamo/bqomis-portal/internal/model"
)

// AdminAppointmentHandler lets staff search and manage appointments.
type AdminAppointmentHandler struct {
	API *backend.Client
}

func NewAdminAppointmentHandler(api *backend.Client) *AdminAppointmentHandler {
	return &AdminAppointmentHandler{API: api}
}

type statusReq struct {
	Status string `json:"status"`
}

// parseFilter reads the query of GET /v1/admin/appointments.
func parseFilter(c echo.Context) (model.AppointmentFilter, string) {
	var f model.AppointmentFilter
	for name, dst := range map[string]*string{"dateFrom": &f.DateFrom, "dateTo": &f.DateTo} {
		raw := strings.TrimSpace(c.QueryParam(name))
		if raw == "" {
			continue
		}
		if _, err := time.Parse(model.DateLayout, raw); err != nil {
			return f, name + " must be YYYY-MM-DD"
		}
		*dst = raw
	}
	if f.DateFrom != "" && f.DateTo != "" && f.DateTo < f.DateFrom {
		return f, "dateTo is before dateFrom"
	}
	var ok bool
	if f.BranchID, ok = queryID(c, "branchId"); !ok {
		return f, "invalid branchId"
	}
	if f.ServiceID, ok = queryID(c, "serviceId"); !ok {
		return f, "invalid serviceId"
	}
	if raw := c.QueryParam("status"); raw != "" {
		s, err := model.ParseStatus(raw)
		if err != nil {
			return f, err.Error()
		}
		f.Status = s
	}
	f.DistrictName = strings.TrimSpace(c.QueryParam("district"))
	for name, dst := range map[string]*int{"page": &f.Page, "size": &f.Size} {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, "invalid " + name
		}
		*dst = n
	}
	return f, ""
}

// List -> GET /v1/admin/appointments
func (h *AdminAppointmentHandler) List(c echo.Context) error {
	f, msg := parseFilter(c)
	if msg != "" {
		return badRequest(c, msg)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	list, err := h.API.FilteredAppointments(ctx, f)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, items(list))
}

// Get -> GET /v1/admin/appointments/:id
func (h *AdminAppointmentHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	a, err := h.API.GetAppointment(ctx, id)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// UpdateStatus -> PUT /v1/admin/appointments/:id/status
func (h *AdminAppointmentHandler) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	status, err := model.ParseStatus(req.Status)
	if err != nil {
		return badRequest(c, err.Error())
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	a, err := h.API.UpdateAppointmentStatus(ctx, id, status)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// Delete -> DELETE /v1/admin/appointments/:id
func (h *AdminAppointmentHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.API.DeleteAppointment(ctx, id); err != nil {
		return backendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
