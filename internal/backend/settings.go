package backend

import (
	"context"
	"net/http"

	"github.com/iliyamo/bqomis-portal/internal/model"
)

// GetGlobalSettings calls GET /settings/global.
func (c *Client) GetGlobalSettings(ctx context.Context) (*model.GlobalSettings, error) {
	var out model.GlobalSettings
	if err := c.do(ctx, "GET /settings/global", http.MethodGet, "/settings/global", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateGlobalSettings calls PUT /settings/global.  A 204 answer returns
// the submitted settings.
func (c *Client) UpdateGlobalSettings(ctx context.Context, in model.GlobalSettings) (*model.GlobalSettings, error) {
	out := in
	if err := c.do(ctx, "PUT /settings/global", http.MethodPut, "/settings/global", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBranchSettings calls GET /branches/{id}/settings.  A branch without
// overrides comes back with every override nil.
func (c *Client) GetBranchSettings(ctx context.Context, branchID int64) (*model.BranchSettings, error) {
	out := model.BranchSettings{BranchID: branchID}
	if err := c.do(ctx, "GET /branches/{id}/settings", http.MethodGet, idPath("/branches", branchID, "/settings"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBranchSettings calls PUT /branches/{id}/settings.  Nil fields
// revert to the global default.
func (c *Client) UpdateBranchSettings(ctx context.Context, branchID int64, in model.BranchSettings) (*model.BranchSettings, error) {
	out := in
	if err := c.do(ctx, "PUT /branches/{id}/settings", http.MethodPut, idPath("/branches", branchID, "/settings"), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
