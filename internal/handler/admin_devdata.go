package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bqomis-portal/internal/devdata"
)

// AdminDevDataHandler runs the synthetic appointment generator.
type AdminDevDataHandler struct {
	Runner *devdata.Runner
}

func NewAdminDevDataHandler(r *devdata.Runner) *AdminDevDataHandler {
	return &AdminDevDataHandler{Runner: r}
}

type devdataResp struct {
	*devdata.Report
	Mismatches []devdata.Mismatch `json:"mismatches"`
}

// Generate -> POST /v1/admin/devdata/generate
// Omitted fields take their defaults.  The batch report is returned as the
// backend produced it.
func (h *AdminDevDataHandler) Generate(c echo.Context) error {
	cfg := devdata.DefaultConfig()
	if err := c.Bind(&cfg); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := cfg.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	rep, err := h.Runner.Run(ctx, cfg)
	if errors.Is(err, devdata.ErrNoPrerequisites) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, devdataResp{Report: rep, Mismatches: rep.Mismatches()})
}
