package devdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bqomis-portal/internal/availability"
	"github.com/iliyamo/bqomis-portal/internal/model"
)

var testNow = time.Date(2025, 3, 14, 11, 0, 0, 0, time.UTC)

func testUsers() []model.User {
	return []model.User{{ID: 1, Role: model.RoleTester}, {ID: 2, Role: model.RoleTester}}
}

func testLinks() []model.BranchService {
	return []model.BranchService{
		{ID: 10, District: "Gasabo"},
		{ID: 11, District: "Kicukiro"},
		{ID: 20, District: "Musanze"},
		{ID: 21, District: "Huye"},
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.PercentToday = 60
	assert.ErrorIs(t, cfg.Validate(), ErrPercentSum)
	assert.Equal(t, "date percentages must sum to 100%", cfg.Validate().Error())

	cfg = DefaultConfig()
	cfg.TotalAppointments = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxPastDays = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.PercentPast, cfg.PercentToday = -10, 90
	cfg.PercentFuture = 20
	assert.Error(t, cfg.Validate())
}

func TestGenerate_RefusesBadPercentages(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PercentFuture = 25
	_, err := NewGenerator(1, testNow).Generate(cfg, testUsers(), testLinks())
	assert.ErrorIs(t, err, ErrPercentSum)
}

func TestGenerate_RefusesWithoutPrerequisites(t *testing.T) {
	g := NewGenerator(1, testNow)
	_, err := g.Generate(DefaultConfig(), nil, testLinks())
	assert.ErrorIs(t, err, ErrNoPrerequisites)
	_, err = g.Generate(DefaultConfig(), testUsers(), nil)
	assert.ErrorIs(t, err, ErrNoPrerequisites)
}

func TestGenerate_DateWindowsAndStatuses(t *testing.T) {
	cfg := Config{TotalAppointments: 2000, PercentPast: 40, PercentToday: 20, PercentFuture: 40, MaxPastDays: 5, MaxFutureDays: 7}
	batch, err := NewGenerator(42, testNow).Generate(cfg, testUsers(), testLinks())
	require.NoError(t, err)
	require.Len(t, batch, 2000)

	today := model.FormatDate(testNow)
	earliest := model.FormatDate(testNow.AddDate(0, 0, -5))
	latest := model.FormatDate(testNow.AddDate(0, 0, 7))
	slots := availability.GeneratorSlots()

	var past, now, future int
	for _, a := range batch {
		assert.Contains(t, slots, a.Time)
		assert.Contains(t, []int64{1, 2}, a.UserID)
		switch {
		case a.Date < today:
			past++
			assert.GreaterOrEqual(t, a.Date, earliest)
			assert.Contains(t, []model.AppointmentStatus{model.StatusCompleted, model.StatusCancelled, model.StatusNoShow}, a.Status)
		case a.Date == today:
			now++
			assert.Equal(t, model.StatusScheduled, a.Status)
		default:
			future++
			assert.LessOrEqual(t, a.Date, latest)
			assert.Equal(t, model.StatusScheduled, a.Status)
		}
	}
	assert.InDelta(t, 800, past, 120)
	assert.InDelta(t, 400, now, 100)
	assert.InDelta(t, 800, future, 120)
}

func TestGenerate_OnlyToday(t *testing.T) {
	cfg := Config{TotalAppointments: 50, PercentToday: 100, MaxPastDays: 1, MaxFutureDays: 1}
	batch, err := NewGenerator(7, testNow).Generate(cfg, testUsers(), testLinks())
	require.NoError(t, err)
	for _, a := range batch {
		assert.Equal(t, "2025-03-14", a.Date)
	}
}

func TestGenerate_KigaliSplit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TotalAppointments = 5000
	batch, err := NewGenerator(99, testNow).Generate(cfg, testUsers(), testLinks())
	require.NoError(t, err)

	kigali := 0
	for _, a := range batch {
		if a.BranchServiceID == 10 || a.BranchServiceID == 11 {
			kigali++
		}
	}
	assert.InDelta(t, 2000, kigali, 250)
}

func TestGenerate_EmptyPoolFallsBack(t *testing.T) {
	onlyKigali := []model.BranchService{{ID: 10, District: "Gasabo"}}
	batch, err := NewGenerator(3, testNow).Generate(DefaultConfig(), testUsers(), onlyKigali)
	require.NoError(t, err)
	for _, a := range batch {
		assert.Equal(t, int64(10), a.BranchServiceID)
	}

	onlyOther := []model.BranchService{{ID: 20, District: "Musanze"}}
	batch, err = NewGenerator(3, testNow).Generate(DefaultConfig(), testUsers(), onlyOther)
	require.NoError(t, err)
	for _, a := range batch {
		assert.Equal(t, int64(20), a.BranchServiceID)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := NewGenerator(5, testNow).Generate(DefaultConfig(), testUsers(), testLinks())
	require.NoError(t, err)
	b, err := NewGenerator(5, testNow).Generate(DefaultConfig(), testUsers(), testLinks())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

type fakeAPI struct {
	users     []model.User
	links     []model.BranchService
	usersErr  error
	submitted []model.AppointmentInput
	result    func([]model.AppointmentInput) *model.BatchResult
}

func (f *fakeAPI) ListTestUsers(ctx context.Context) ([]model.User, error) { return f.users, f.usersErr }

func (f *fakeAPI) ListBranchServices(ctx context.Context) ([]model.BranchService, error) {
	return f.links, nil
}

func (f *fakeAPI) CreateAppointmentsBatch(ctx context.Context, in []model.AppointmentInput) (*model.BatchResult, error) {
	f.submitted = in
	return f.result(in), nil
}

func TestRun_ReportsBackendBreakdown(t *testing.T) {
	api := &fakeAPI{
		users: testUsers(),
		links: testLinks(),
		result: func(in []model.AppointmentInput) *model.BatchResult {
			tampered := in[4]
			tampered.Time = "23:59"
			return &model.BatchResult{
				TotalSubmitted:      len(in),
				SuccessfullyCreated: len(in) - 3,
				FailedCount:         3,
				Failures: []model.BatchFailure{
					{InputIndex: 2, Error: "duplicate", Data: in[2]},
					{InputIndex: 4, Error: "bad time", Data: tampered},
					{InputIndex: 500, Error: "???"},
				},
			}
		},
	}

	cfg := DefaultConfig()
	cfg.TotalAppointments = 10
	r := NewRunner(api, nil, nil)
	rep, err := r.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, rep.RunID)
	assert.Len(t, api.submitted, 10)
	assert.Equal(t, 7, rep.Result.SuccessfullyCreated)

	mm := rep.Mismatches()
	require.Len(t, mm, 2)
	assert.Equal(t, 4, mm[0].InputIndex)
	require.NotNil(t, mm[0].Submitted)
	assert.Equal(t, "23:59", mm[0].Echoed.Time)
	assert.Equal(t, 500, mm[1].InputIndex)
	assert.Nil(t, mm[1].Submitted)
}

func TestRun_ValidatesBeforeNetwork(t *testing.T) {
	api := &fakeAPI{usersErr: errors.New("should not be called")}
	cfg := DefaultConfig()
	cfg.PercentPast = 50
	_, err := NewRunner(api, nil, nil).Run(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrPercentSum)
}

func TestRun_PrerequisiteFailure(t *testing.T) {
	api := &fakeAPI{usersErr: errors.New("users down"), links: testLinks()}
	_, err := NewRunner(api, nil, nil).Run(context.Background(), DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users down")
	assert.Nil(t, api.submitted)
}

func TestRun_NoTestUsers(t *testing.T) {
	api := &fakeAPI{links: testLinks()}
	_, err := NewRunner(api, nil, nil).Run(context.Background(), DefaultConfig())
	assert.ErrorIs(t, err, ErrNoPrerequisites)
}
