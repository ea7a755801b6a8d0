// Package dashboard assembles the admin analytics panels.  Panels load
// concurrently and a failed panel does not hide the ones that loaded.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/bqomis-portal/internal/model"
)

// Panel names used as keys in Dashboard.Errors.
const (
	PanelPeakTimes           = "peakTimes"
	PanelByBranch            = "appointmentsByBranch"
	PanelByService           = "appointmentsByService"
	PanelPeakTimesByDistrict = "peakTimesByDistrict"
)

// API is the analytics part of the backend client.
type API interface {
	AppointmentsByBranch(ctx context.Context, branchID int64, period model.Period) (model.AnalyticsPayload, error)
	AppointmentsByService(ctx context.Context, district string, serviceID int64, period model.Period) (model.AnalyticsPayload, error)
	PeakTimes(ctx context.Context, period model.Period, groupBy model.GroupBy) (model.AnalyticsPayload, error)
	PeakTimesByDistrict(ctx context.Context, district string, period model.Period, groupBy model.GroupBy) (model.AnalyticsPayload, error)
}

// Request selects which panels to load.  Optional panels are skipped when
// their filters are empty.
type Request struct {
	Period          model.Period
	GroupBy         model.GroupBy
	BranchID        int64
	District        string
	ServiceID       int64
	DistrictGroupBy model.GroupBy
}

// Dashboard holds the loaded panels.  A nil panel was either not requested
// or failed; Errors tells which.
type Dashboard struct {
	Period                string            `json:"period"`
	PeakTimes             json.RawMessage   `json:"peakTimes,omitempty"`
	AppointmentsByBranch  json.RawMessage   `json:"appointmentsByBranch,omitempty"`
	AppointmentsByService json.RawMessage   `json:"appointmentsByService,omitempty"`
	PeakTimesByDistrict   json.RawMessage   `json:"peakTimesByDistrict,omitempty"`
	Errors                map[string]string `json:"errors,omitempty"`
}

// PeriodLastDays covers the given number of days ending today, inclusive.
// Seven days from the 14th is the 8th through the 14th.
func PeriodLastDays(now time.Time, days int) model.Period {
	if days < 1 {
		days = 1
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return model.Period{From: day.AddDate(0, 0, -(days - 1)), To: day}
}

// Load fetches every requested panel concurrently.  It returns an error
// only for an invalid request; backend failures are reported per panel.
func Load(ctx context.Context, api API, req Request) (*Dashboard, error) {
	if req.GroupBy == "" {
		req.GroupBy = model.GroupByHour
	}
	if req.DistrictGroupBy == "" {
		req.DistrictGroupBy = req.GroupBy
	}
	if !req.GroupBy.Valid() || !req.DistrictGroupBy.Valid() {
		return nil, fmt.Errorf("groupBy must be %q or %q", model.GroupByHour, model.GroupByDayOfWeek)
	}
	if req.Period.To.Before(req.Period.From) {
		return nil, fmt.Errorf("period end is before its start")
	}

	d := &Dashboard{Period: req.Period.String(), Errors: map[string]string{}}
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	// Panels record their own failure and always return nil.
	panel := func(name string, dst *json.RawMessage, fetch func() (model.AnalyticsPayload, error)) {
		g.Go(func() error {
			payload, err := fetch()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				d.Errors[name] = err.Error()
				return nil
			}
			*dst = json.RawMessage(payload)
			return nil
		})
	}

	panel(PanelPeakTimes, &d.PeakTimes, func() (model.AnalyticsPayload, error) {
		return api.PeakTimes(ctx, req.Period, req.GroupBy)
	})
	if req.BranchID > 0 {
		panel(PanelByBranch, &d.AppointmentsByBranch, func() (model.AnalyticsPayload, error) {
			return api.AppointmentsByBranch(ctx, req.BranchID, req.Period)
		})
	}
	if req.District != "" && req.ServiceID > 0 {
		panel(PanelByService, &d.AppointmentsByService, func() (model.AnalyticsPayload, error) {
			return api.AppointmentsByService(ctx, req.District, req.ServiceID, req.Period)
		})
	}
	if req.District != "" {
		panel(PanelPeakTimesByDistrict, &d.PeakTimesByDistrict, func() (model.AnalyticsPayload, error) {
			return api.PeakTimesByDistrict(ctx, req.District, req.Period, req.DistrictGroupBy)
		})
	}
	_ = g.Wait()

	if len(d.Errors) == 0 {
		d.Errors = nil
	}
	return d, nil
}
