package handler

// client_reference.go serves the read-only location lists used to fill
// selectors.  These routes sit behind the Redis response cache.

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bqomis-portal/internal/model"
)

// ReferenceHandler lists provinces and districts.
type ReferenceHandler struct {
	Catalog *Catalog
}

func NewReferenceHandler(cat *Catalog) *ReferenceHandler {
	return &ReferenceHandler{Catalog: cat}
}

// Provinces -> GET /v1/provinces
func (h *ReferenceHandler) Provinces(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	districts, err := h.Catalog.ListDistricts(ctx)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, items(model.Provinces(districts)))
}

// Districts -> GET /v1/districts[?province=]
func (h *ReferenceHandler) Districts(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	districts, err := h.Catalog.ListDistricts(ctx)
	if err != nil {
		return backendError(c, err)
	}
	if p := strings.TrimSpace(c.QueryParam("province")); p != "" {
		districts = model.DistrictsInProvince(districts, p)
	}
	return c.JSON(http.StatusOK, items(districts))
}
