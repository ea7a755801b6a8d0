package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iliyamo/bqomis-portal/internal/model"
)

// ListDistricts calls GET /districts.
func (c *Client) ListDistricts(ctx context.Context) ([]model.District, error) {
	var out []model.District
	if err := c.do(ctx, "GET /districts", http.MethodGet, "/districts", nil, nil, &out); err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

// ListDistrictsByProvince calls GET /districts/province/{name}.
func (c *Client) ListDistrictsByProvince(ctx context.Context, province string) ([]model.District, error) {
	var out []model.District
	path := "/districts/province/" + url.PathEscape(province)
	if err := c.do(ctx, "GET /districts/province/{name}", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

// ListBranches calls GET /branches.
func (c *Client) ListBranches(ctx context.Context) ([]model.Branch, error) {
	var out []model.Branch
	if err := c.do(ctx, "GET /branches", http.MethodGet, "/branches", nil, nil, &out); err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

// ListBranchesByDistrict calls GET /branches/district/{name}.  A district
// without branches yields an empty slice and no error.
func (c *Client) ListBranchesByDistrict(ctx context.Context, district string) ([]model.Branch, error) {
	var out []model.Branch
	path := "/branches/district/" + url.PathEscape(district)
	if err := c.do(ctx, "GET /branches/district/{name}", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

// CreateBranch calls POST /branches.
func (c *Client) CreateBranch(ctx context.Context, in model.BranchInput) (*model.Branch, error) {
	var out model.Branch
	if err := c.do(ctx, "POST /branches", http.MethodPost, "/branches", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBranch is not supported by the backend yet.  It logs a warning and
// returns without making a call.
func (c *Client) UpdateBranch(ctx context.Context, id int64, in model.BranchInput) error {
	c.logger.Warn("branch update not implemented by backend; ignoring", "branch_id", id, "name", in.Name)
	return nil
}

// DeleteBranch calls DELETE /branches/{id}.
func (c *Client) DeleteBranch(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE /branches/{id}", http.MethodDelete, idPath("/branches", id), nil, nil, nil)
}
