package handler

// admin_locations.go manages branches, the service catalog and the links
// between them.  Branch and service updates are accepted but not sent: the
// backend has no update endpoint for them yet.

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bqomis-portal/internal/backend"
	"github.com/iliyamo/bqomis-portal/internal/model"
	"github.com/iliyamo/bqomis-portal/pkg/logging"
)

// AdminLocationHandler serves /v1/admin/branches, /services and
// /branch-services.
type AdminLocationHandler struct {
	API     *backend.Client
	Catalog *Catalog
	Logger  *logging.Logger
}

func NewAdminLocationHandler(api *backend.Client, cat *Catalog, l *logging.Logger) *AdminLocationHandler {
	if l == nil {
		l = logging.Default()
	}
	return &AdminLocationHandler{API: api, Catalog: cat, Logger: l}
}

const updateNotSupported = "update is not supported by the backend yet; nothing was changed"

// ----- branches -----

// ListBranches -> GET /v1/admin/branches[?district=]
func (h *AdminLocationHandler) ListBranches(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	var (
		list []model.Branch
		err  error
	)
	if d := strings.TrimSpace(c.QueryParam("district")); d != "" {
		list, err = h.API.ListBranchesByDistrict(ctx, d)
	} else {
		list, err = h.API.ListBranches(ctx)
	}
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, items(list))
}

// CreateBranch -> POST /v1/admin/branches
func (h *AdminLocationHandler) CreateBranch(c echo.Context) error {
	var req model.BranchInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.District = strings.TrimSpace(req.District)
	req.Province = strings.TrimSpace(req.Province)
	req.Address = strings.TrimSpace(req.Address)
	if req.Name == "" || req.District == "" {
		return badRequest(c, "name and district are required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	b, err := h.API.CreateBranch(ctx, req)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// UpdateBranch -> PUT /v1/admin/branches/:id
func (h *AdminLocationHandler) UpdateBranch(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req model.BranchInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.API.UpdateBranch(ctx, id, req); err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{"message": updateNotSupported})
}

// DeleteBranch -> DELETE /v1/admin/branches/:id
func (h *AdminLocationHandler) DeleteBranch(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.API.DeleteBranch(ctx, id); err != nil {
		return backendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- services -----

// ListServices -> GET /v1/admin/services
func (h *AdminLocationHandler) ListServices(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	list, err := h.Catalog.ListServices(ctx)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, items(list))
}

// CreateService -> POST /v1/admin/services
func (h *AdminLocationHandler) CreateService(c echo.Context) error {
	var req model.ServiceInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" {
		return badRequest(c, "name is required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	s, err := h.API.CreateService(ctx, req)
	if err != nil {
		return backendError(c, err)
	}
	h.Catalog.InvalidateServices(ctx)
	return c.JSON(http.StatusCreated, s)
}

// UpdateService -> PUT /v1/admin/services/:id
func (h *AdminLocationHandler) UpdateService(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req model.ServiceInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.API.UpdateService(ctx, id, req); err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{"message": updateNotSupported})
}

// DeleteService -> DELETE /v1/admin/services/:id
func (h *AdminLocationHandler) DeleteService(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.API.DeleteService(ctx, id); err != nil {
		return backendError(c, err)
	}
	h.Catalog.InvalidateServices(ctx)
	return c.NoContent(http.StatusNoContent)
}

// ----- branch services -----

// ListBranchServices -> GET /v1/admin/branch-services[?branchId=]
func (h *AdminLocationHandler) ListBranchServices(c echo.Context) error {
	branchID, ok := queryID(c, "branchId")
	if !ok {
		return badRequest(c, "invalid branchId")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	var (
		list []model.BranchService
		err  error
	)
	if branchID > 0 {
		list, err = h.API.ListBranchServicesByBranch(ctx, branchID)
	} else {
		list, err = h.API.ListBranchServices(ctx)
	}
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, items(list))
}

// CreateBranchService -> POST /v1/admin/branch-services
func (h *AdminLocationHandler) CreateBranchService(c echo.Context) error {
	var req model.BranchServiceInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.BranchID <= 0 || req.ServiceID <= 0 {
		return badRequest(c, "branchId and serviceId are required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	bs, err := h.API.CreateBranchService(ctx, req)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusCreated, bs)
}

// DeleteBranchService -> DELETE /v1/admin/branch-services/:id
func (h *AdminLocationHandler) DeleteBranchService(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.API.DeleteBranchService(ctx, id); err != nil {
		return backendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
