package backend

import (
	"context"
	"net/http"

	"github.com/iliyamo/bqomis-portal/internal/model"
)

// ListServices calls GET /services.
func (c *Client) ListServices(ctx context.Context) ([]model.Service, error) {
	var out []model.Service
	if err := c.do(ctx, "GET /services", http.MethodGet, "/services", nil, nil, &out); err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

// CreateService calls POST /services.
func (c *Client) CreateService(ctx context.Context, in model.ServiceInput) (*model.Service, error) {
	var out model.Service
	if err := c.do(ctx, "POST /services", http.MethodPost, "/services", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateService is not supported by the backend yet.  It logs a warning
// and returns without making a call.
func (c *Client) UpdateService(ctx context.Context, id int64, in model.ServiceInput) error {
	c.logger.Warn("service update not implemented by backend; ignoring", "service_id", id, "name", in.Name)
	return nil
}

// DeleteService calls DELETE /services/{id}.
func (c *Client) DeleteService(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE /services/{id}", http.MethodDelete, idPath("/services", id), nil, nil, nil)
}

// ListBranchServices calls GET /branch-services.
func (c *Client) ListBranchServices(ctx context.Context) ([]model.BranchService, error) {
	var out []model.BranchService
	if err := c.do(ctx, "GET /branch-services", http.MethodGet, "/branch-services", nil, nil, &out); err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

// ListBranchServicesByBranch calls GET /branch-services/branch/{id}.
func (c *Client) ListBranchServicesByBranch(ctx context.Context, branchID int64) ([]model.BranchService, error) {
	var out []model.BranchService
	path := idPath("/branch-services/branch", branchID)
	if err := c.do(ctx, "GET /branch-services/branch/{id}", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

// CreateBranchService calls POST /branch-services.
func (c *Client) CreateBranchService(ctx context.Context, in model.BranchServiceInput) (*model.BranchService, error) {
	var out model.BranchService
	if err := c.do(ctx, "POST /branch-services", http.MethodPost, "/branch-services", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBranchService calls DELETE /branch-services/{id}.
func (c *Client) DeleteBranchService(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE /branch-services/{id}", http.MethodDelete, idPath("/branch-services", id), nil, nil, nil)
}
