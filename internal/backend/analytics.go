package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iliyamo/bqomis-portal/internal/model"
)

// AppointmentsByBranch calls GET /analytics/appointments-by-branch.
// branchID 0 omits the filter.
func (c *Client) AppointmentsByBranch(ctx context.Context, branchID int64, period model.Period) (model.AnalyticsPayload, error) {
	q := url.Values{}
	q.Set("period", period.String())
	if branchID > 0 {
		q.Set("branchId", strconv.FormatInt(branchID, 10))
	}
	return c.analytics(ctx, "appointments-by-branch", q)
}

// AppointmentsByService calls GET /analytics/appointments-by-service.
func (c *Client) AppointmentsByService(ctx context.Context, district string, serviceID int64, period model.Period) (model.AnalyticsPayload, error) {
	q := url.Values{}
	q.Set("period", period.String())
	if district != "" {
		q.Set("district", district)
	}
	if serviceID > 0 {
		q.Set("serviceId", strconv.FormatInt(serviceID, 10))
	}
	return c.analytics(ctx, "appointments-by-service", q)
}

// PeakTimes calls GET /analytics/peak-times.
func (c *Client) PeakTimes(ctx context.Context, period model.Period, groupBy model.GroupBy) (model.AnalyticsPayload, error) {
	q := url.Values{}
	q.Set("period", period.String())
	q.Set("groupBy", string(groupBy))
	return c.analytics(ctx, "peak-times", q)
}

// PeakTimesByDistrict calls GET /analytics/peak-times-by-district.
func (c *Client) PeakTimesByDistrict(ctx context.Context, district string, period model.Period, groupBy model.GroupBy) (model.AnalyticsPayload, error) {
	q := url.Values{}
	q.Set("district", district)
	q.Set("period", period.String())
	q.Set("groupBy", string(groupBy))
	return c.analytics(ctx, "peak-times-by-district", q)
}

func (c *Client) analytics(ctx context.Context, name string, q url.Values) (model.AnalyticsPayload, error) {
	var out model.AnalyticsPayload
	if err := c.do(ctx, "GET /analytics/"+name, http.MethodGet, "/analytics/"+name, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
