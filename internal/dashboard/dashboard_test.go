package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bqomis-portal/internal/model"
)

type fakeAPI struct {
	mu       sync.Mutex
	calls    []string
	failures map[string]error
	groupBy  map[string]model.GroupBy
}

func (f *fakeAPI) record(name string, g model.GroupBy) (model.AnalyticsPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.groupBy == nil {
		f.groupBy = map[string]model.GroupBy{}
	}
	f.groupBy[name] = g
	if err := f.failures[name]; err != nil {
		return nil, err
	}
	return model.AnalyticsPayload(`{"panel":"` + name + `"}`), nil
}

func (f *fakeAPI) AppointmentsByBranch(ctx context.Context, branchID int64, p model.Period) (model.AnalyticsPayload, error) {
	return f.record(PanelByBranch, "")
}

func (f *fakeAPI) AppointmentsByService(ctx context.Context, district string, serviceID int64, p model.Period) (model.AnalyticsPayload, error) {
	return f.record(PanelByService, "")
}

func (f *fakeAPI) PeakTimes(ctx context.Context, p model.Period, g model.GroupBy) (model.AnalyticsPayload, error) {
	return f.record(PanelPeakTimes, g)
}

func (f *fakeAPI) PeakTimesByDistrict(ctx context.Context, district string, p model.Period, g model.GroupBy) (model.AnalyticsPayload, error) {
	return f.record(PanelPeakTimesByDistrict, g)
}

var now = time.Date(2025, 3, 14, 15, 4, 5, 0, time.UTC)

func TestPeriodLastDays(t *testing.T) {
	assert.Equal(t, "2025-03-08_to_2025-03-14", PeriodLastDays(now, 7).String())
	assert.Equal(t, "2025-03-14_to_2025-03-14", PeriodLastDays(now, 1).String())
	assert.Equal(t, "2025-03-14_to_2025-03-14", PeriodLastDays(now, 0).String())
	assert.Equal(t, "2025-02-13_to_2025-03-14", PeriodLastDays(now, 30).String())
}

func TestLoad_OnlyPeakTimesByDefault(t *testing.T) {
	api := &fakeAPI{}
	d, err := Load(context.Background(), api, Request{Period: PeriodLastDays(now, 7)})
	require.NoError(t, err)
	assert.Equal(t, []string{PanelPeakTimes}, api.calls)
	assert.JSONEq(t, `{"panel":"peakTimes"}`, string(d.PeakTimes))
	assert.Nil(t, d.Errors)
	assert.Equal(t, model.GroupByHour, api.groupBy[PanelPeakTimes])
}

func TestLoad_PartialFailureKeepsOtherPanels(t *testing.T) {
	api := &fakeAPI{failures: map[string]error{
		PanelByBranch: errors.New("branch analytics unavailable"),
	}}
	d, err := Load(context.Background(), api, Request{
		Period:          PeriodLastDays(now, 7),
		GroupBy:         model.GroupByDayOfWeek,
		BranchID:        3,
		District:        "Gasabo",
		ServiceID:       2,
		DistrictGroupBy: model.GroupByHour,
	})
	require.NoError(t, err)
	assert.Len(t, api.calls, 4)
	assert.NotNil(t, d.PeakTimes)
	assert.NotNil(t, d.AppointmentsByService)
	assert.NotNil(t, d.PeakTimesByDistrict)
	assert.Nil(t, d.AppointmentsByBranch)
	assert.Equal(t, "branch analytics unavailable", d.Errors[PanelByBranch])
	assert.Equal(t, model.GroupByHour, api.groupBy[PanelPeakTimesByDistrict])
	assert.Equal(t, model.GroupByDayOfWeek, api.groupBy[PanelPeakTimes])
}

func TestLoad_DistrictWithoutServiceSkipsServicePanel(t *testing.T) {
	api := &fakeAPI{}
	_, err := Load(context.Background(), api, Request{Period: PeriodLastDays(now, 7), District: "Gasabo"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{PanelPeakTimes, PanelPeakTimesByDistrict}, api.calls)
}

func TestLoad_InvalidRequest(t *testing.T) {
	_, err := Load(context.Background(), &fakeAPI{}, Request{Period: PeriodLastDays(now, 7), GroupBy: "month"})
	assert.Error(t, err)

	bad := model.Period{From: now, To: now.AddDate(0, 0, -1)}
	_, err = Load(context.Background(), &fakeAPI{}, Request{Period: bad})
	assert.Error(t, err)
}
