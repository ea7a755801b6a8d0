package handler

import (
	"context"

	"github.com/iliyamo/bqomis-portal/internal/backend"
	"github.com/iliyamo/bqomis-portal/internal/model"
	"github.com/iliyamo/bqomis-portal/internal/refcache"
)

// Catalog reads reference data through the cache and everything else
// straight from the backend.  It is the finder's Backend.
type Catalog struct {
	API   *backend.Client
	Cache *refcache.Cache
}

func NewCatalog(api *backend.Client, cache *refcache.Cache) *Catalog {
	return &Catalog{API: api, Cache: cache}
}

func (c *Catalog) ListDistricts(ctx context.Context) ([]model.District, error) {
	if c.Cache == nil {
		return c.API.ListDistricts(ctx)
	}
	return c.Cache.Districts(ctx, c.API.ListDistricts)
}

func (c *Catalog) ListServices(ctx context.Context) ([]model.Service, error) {
	if c.Cache == nil {
		return c.API.ListServices(ctx)
	}
	return c.Cache.Services(ctx, c.API.ListServices)
}

// InvalidateServices drops the cached service catalog after an admin write.
func (c *Catalog) InvalidateServices(ctx context.Context) {
	if c.Cache != nil {
		c.Cache.Invalidate(ctx, refcache.KeyServices)
	}
}

func (c *Catalog) ListBranchesByDistrict(ctx context.Context, district string) ([]model.Branch, error) {
	return c.API.ListBranchesByDistrict(ctx, district)
}

func (c *Catalog) ListBranchServicesByBranch(ctx context.Context, branchID int64) ([]model.BranchService, error) {
	return c.API.ListBranchServicesByBranch(ctx, branchID)
}

func (c *Catalog) TodayAppointmentsForBranch(ctx context.Context, branchID int64) ([]model.Appointment, error) {
	return c.API.TodayAppointmentsForBranch(ctx, branchID)
}
