package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iliyamo/bqomis-portal/internal/model"
)

// TodayAppointmentsForBranch calls GET /appointments/today/branch/{id}.
func (c *Client) TodayAppointmentsForBranch(ctx context.Context, branchID int64) ([]model.Appointment, error) {
	var out []model.Appointment
	path := idPath("/appointments/today/branch", branchID)
	if err := c.do(ctx, "GET /appointments/today/branch/{id}", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

// TodayAppointmentsForServiceInDistrict calls
// GET /appointments/today/district/{district}/service/{id}.
func (c *Client) TodayAppointmentsForServiceInDistrict(ctx context.Context, district string, serviceID int64) ([]model.Appointment, error) {
	var out []model.Appointment
	path := fmt.Sprintf("/appointments/today/district/%s/service/%d", url.PathEscape(district), serviceID)
	if err := c.do(ctx, "GET /appointments/today/district/{district}/service/{id}", http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

// AppointmentsByDateAndBranchService calls
// GET /appointments/date/branchServiceId/?date=&branchServiceId=.
func (c *Client) AppointmentsByDateAndBranchService(ctx context.Context, date string, branchServiceID int64) ([]model.Appointment, error) {
	var out []model.Appointment
	q := url.Values{}
	q.Set("date", date)
	q.Set("branchServiceId", strconv.FormatInt(branchServiceID, 10))
	if err := c.do(ctx, "GET /appointments/date/branchServiceId/", http.MethodGet, "/appointments/date/branchServiceId/", q, nil, &out); err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

// AppointmentsByUser calls GET /appointments/user/{id}.
func (c *Client) AppointmentsByUser(ctx context.Context, userID int64) ([]model.Appointment, error) {
	var out []model.Appointment
	if err := c.do(ctx, "GET /appointments/user/{id}", http.MethodGet, idPath("/appointments/user", userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return orEmpty(out), nil
}

// FilteredAppointments calls GET /appointments/filtered.  Empty filter
// fields are left out of the query.  The backend may answer with a plain
// array or a page object carrying the rows in `content`.
func (c *Client) FilteredAppointments(ctx context.Context, f model.AppointmentFilter) ([]model.Appointment, error) {
	q := url.Values{}
	if f.DateFrom != "" {
		q.Set("dateFrom", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set("dateTo", f.DateTo)
	}
	if f.BranchID > 0 {
		q.Set("branchId", strconv.FormatInt(f.BranchID, 10))
	}
	if f.ServiceID > 0 {
		q.Set("serviceId", strconv.FormatInt(f.ServiceID, 10))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.DistrictName != "" {
		q.Set("districtName", f.DistrictName)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Size > 0 {
		q.Set("size", strconv.Itoa(f.Size))
	}

	var raw json.RawMessage
	if err := c.do(ctx, "GET /appointments/filtered", http.MethodGet, "/appointments/filtered", q, nil, &raw); err != nil {
		return nil, err
	}
	return decodeAppointmentPage(raw)
}

func decodeAppointmentPage(raw json.RawMessage) ([]model.Appointment, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []model.Appointment{}, nil
	}
	if trimmed[0] == '[' {
		var out []model.Appointment
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("backend: decode filtered appointments: %w", err)
		}
		return orEmpty(out), nil
	}
	var page struct {
		Content []model.Appointment `json:"content"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("backend: decode filtered appointments page: %w", err)
	}
	return orEmpty(page.Content), nil
}

// GetAppointment calls GET /appointments/{id}.
func (c *Client) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	var out model.Appointment
	if err := c.do(ctx, "GET /appointments/{id}", http.MethodGet, idPath("/appointments", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAppointment calls POST /appointments and returns the stored
// appointment with its backend-assigned id.
func (c *Client) CreateAppointment(ctx context.Context, in model.AppointmentInput) (*model.Appointment, error) {
	var out model.Appointment
	if err := c.do(ctx, "POST /appointments", http.MethodPost, "/appointments", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAppointmentsBatch calls POST /appointments/batch.
func (c *Client) CreateAppointmentsBatch(ctx context.Context, in []model.AppointmentInput) (*model.BatchResult, error) {
	var out model.BatchResult
	if err := c.do(ctx, "POST /appointments/batch", http.MethodPost, "/appointments/batch", nil, in, &out); err != nil {
		return nil, err
	}
	out.Failures = orEmpty(out.Failures)
	return &out, nil
}

// UpdateAppointmentStatus calls PUT /appointments/{id}/status.
func (c *Client) UpdateAppointmentStatus(ctx context.Context, id int64, status model.AppointmentStatus) (*model.Appointment, error) {
	var out model.Appointment
	body := model.StatusUpdate{Status: status}
	if err := c.do(ctx, "PUT /appointments/{id}/status", http.MethodPut, idPath("/appointments", id, "/status"), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAppointment calls DELETE /appointments/{id}.
func (c *Client) DeleteAppointment(ctx context.Context, id int64) error {
	return c.do(ctx, "DELETE /appointments/{id}", http.MethodDelete, idPath("/appointments", id), nil, nil, nil)
}
