package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bqomis-portal/internal/dashboard"
	"github.com/iliyamo/bqomis-portal/internal/model"
)

// AdminDashboardHandler serves the analytics dashboard.
type AdminDashboardHandler struct {
	API dashboard.API
	Now func() time.Time
}

func NewAdminDashboardHandler(api dashboard.API) *AdminDashboardHandler {
	return &AdminDashboardHandler{API: api, Now: time.Now}
}

// Get -> GET /v1/admin/dashboard
// Query: period=YYYY-MM-DD_to_YYYY-MM-DD or days=N (default 7), groupBy,
// branchId, district, serviceId, districtGroupBy.
// Panels that fail are listed under "errors"; the rest are still returned.
func (h *AdminDashboardHandler) Get(c echo.Context) error {
	var req dashboard.Request
	if raw := c.QueryParam("period"); raw != "" {
		p, err := model.ParsePeriod(raw)
		if err != nil {
			return badRequest(c, err.Error())
		}
		req.Period = p
	} else {
		days := 7
		if raw := c.QueryParam("days"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 366 {
				return badRequest(c, "days must be between 1 and 366")
			}
			days = n
		}
		req.Period = dashboard.PeriodLastDays(h.Now(), days)
	}

	var ok bool
	if req.BranchID, ok = queryID(c, "branchId"); !ok {
		return badRequest(c, "invalid branchId")
	}
	if req.ServiceID, ok = queryID(c, "serviceId"); !ok {
		return badRequest(c, "invalid serviceId")
	}
	req.District = strings.TrimSpace(c.QueryParam("district"))
	req.GroupBy = model.GroupBy(c.QueryParam("groupBy"))
	req.DistrictGroupBy = model.GroupBy(c.QueryParam("districtGroupBy"))

	ctx, cancel := withTimeout(c)
	defer cancel()
	d, err := dashboard.Load(ctx, h.API, req)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}
