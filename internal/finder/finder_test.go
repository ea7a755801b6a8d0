package finder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bqomis-portal/internal/availability"
	"github.com/iliyamo/bqomis-portal/internal/model"
)

type fakeBackend struct {
	mu            sync.Mutex
	districts     []model.District
	branches      map[string][]model.Branch
	links         map[int64][]model.BranchService
	appts         map[int64][]model.Appointment
	districtErr   error
	branchErr     error
	linkErr       error
	apptErr       error
	branchCalls   int
	districtCalls int
	branchGate    chan struct{}
	districtGate  chan struct{}
}

func (f *fakeBackend) ListDistricts(ctx context.Context) ([]model.District, error) {
	f.mu.Lock()
	f.districtCalls++
	gate := f.districtGate
	out, err := f.districts, f.districtErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return out, err
}

func (f *fakeBackend) ListBranchesByDistrict(ctx context.Context, district string) ([]model.Branch, error) {
	f.mu.Lock()
	f.branchCalls++
	gate := f.branchGate
	err := f.branchErr
	out := f.branches[district]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Branch{}
	}
	return out, nil
}

func (f *fakeBackend) ListBranchServicesByBranch(ctx context.Context, id int64) ([]model.BranchService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.links[id], f.linkErr
}

func (f *fakeBackend) TodayAppointmentsForBranch(ctx context.Context, id int64) ([]model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.appts[id], f.apptErr
}

func newFake() *fakeBackend {
	return &fakeBackend{
		districts: []model.District{
			{ID: 1, Name: "Nyarugenge", Province: "Kigali City"},
			{ID: 2, Name: "Gasabo", Province: "Kigali City"},
			{ID: 3, Name: "Musanze", Province: "Northern"},
			{ID: 4, Name: "Burera", Province: "Northern"},
		},
		branches: map[string][]model.Branch{
			"Gasabo": {{ID: 10, Name: "Kimironko", Address: "KG 11 Ave", District: "Gasabo"}},
		},
		links: map[int64][]model.BranchService{
			10: {
				{ID: 100, BranchID: 10, ServiceID: 1, ServiceName: "Deposits"},
				{ID: 101, BranchID: 10, ServiceID: 2, ServiceName: "Loans"},
			},
		},
		appts: map[int64][]model.Appointment{
			10: {
				{BranchServiceID: 101, Time: "09:00"},
				{BranchServiceID: 101, Time: "09:10"},
				{BranchServiceID: 101, Time: "09:20"},
			},
		},
	}
}

func loaded(t *testing.T, f *fakeBackend) *Selector {
	t.Helper()
	s := NewSelector(f, availability.DefaultThresholds)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func TestValidTransition(t *testing.T) {
	cases := []struct {
		action Action
		from   Step
		valid  bool
	}{
		{ActionSelectProvince, StepProvince, true},
		{ActionSelectProvince, StepDistrict, false},
		{ActionSelectDistrict, StepDistrict, true},
		{ActionSelectDistrict, StepBranch, false},
		{ActionSelectBranch, StepBranch, true},
		{ActionSelectBranch, StepServices, false},
		{ActionBack, StepProvince, false},
		{ActionBack, StepServices, true},
		{ActionBook, StepServices, true},
		{ActionBook, StepBranch, false},
		{Action("unknown"), StepProvince, false},
	}
	for _, tt := range cases {
		if got := ValidTransition(tt.action, tt.from); got != tt.valid {
			t.Fatalf("ValidTransition(%q, %s)=%v, want %v", tt.action, tt.from, got, tt.valid)
		}
	}
}

func TestValidBack(t *testing.T) {
	assert.True(t, ValidBack(StepServices, StepProvince))
	assert.True(t, ValidBack(StepBranch, StepDistrict))
	assert.False(t, ValidBack(StepBranch, StepBranch))
	assert.False(t, ValidBack(StepDistrict, StepServices))
	assert.False(t, ValidBack(StepProvince, StepProvince))
}

func TestParseStep(t *testing.T) {
	s, err := ParseStep("branch")
	require.NoError(t, err)
	assert.Equal(t, StepBranch, s)
	_, err = ParseStep("nope")
	assert.Error(t, err)
}

func TestSelector_LoadListsProvinces(t *testing.T) {
	s := loaded(t, newFake())
	v := s.View()
	assert.Equal(t, StepProvince, v.Step)
	assert.Equal(t, "Select a Province", v.Title)
	require.Len(t, v.Items, 2)
	assert.Equal(t, "Kigali City", v.Items[0].Name)
	assert.Equal(t, "Northern", v.Items[1].Name)
}

func TestSelector_LoadUsesCache(t *testing.T) {
	f := newFake()
	s := loaded(t, f)
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 1, f.districtCalls)
}

func TestSelector_LoadFailure(t *testing.T) {
	f := newFake()
	f.districtErr = errors.New("boom")
	s := NewSelector(f, availability.DefaultThresholds)
	require.Error(t, s.Load(context.Background()))
	assert.False(t, s.Loaded())
	assert.Contains(t, s.View().Error, "boom")
	assert.ErrorIs(t, s.SelectProvince("Northern"), ErrNotLoaded)
}

func TestSelector_ConcurrentFirstLoadSharesFetch(t *testing.T) {
	f := newFake()
	f.districtGate = make(chan struct{})
	s := NewSelector(f, availability.DefaultThresholds)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() { errs <- s.Load(context.Background()) }()
	}
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.districtCalls == 1
	}, time.Second, 5*time.Millisecond)
	close(f.districtGate)

	assert.NoError(t, <-errs)
	assert.NoError(t, <-errs)
	assert.Equal(t, 1, f.districtCalls)
	assert.True(t, s.Loaded())
	assert.Equal(t, StepProvince, s.View().Step)
}

func TestSelector_WaitingLoadSeesFailure(t *testing.T) {
	f := newFake()
	f.districtErr = errors.New("boom")
	f.districtGate = make(chan struct{})
	s := NewSelector(f, availability.DefaultThresholds)

	first := make(chan error, 1)
	go func() { first <- s.Load(context.Background()) }()
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.districtCalls == 1
	}, time.Second, 5*time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- s.Load(context.Background()) }()
	close(f.districtGate)

	assert.ErrorContains(t, <-first, "boom")
	assert.Error(t, <-second)
	assert.False(t, s.Loaded())
}

func TestSelector_SelectProvinceSortsDistricts(t *testing.T) {
	s := loaded(t, newFake())
	require.NoError(t, s.SelectProvince("Kigali City"))
	v := s.View()
	assert.Equal(t, StepDistrict, v.Step)
	assert.Equal(t, "Select a District in Kigali City", v.Title)
	require.Len(t, v.Items, 2)
	assert.Equal(t, "Gasabo", v.Items[0].Name)
	assert.Equal(t, "Nyarugenge", v.Items[1].Name)
	assert.Equal(t, []string{"Kigali City"}, v.Path)
}

func TestSelector_UnknownProvince(t *testing.T) {
	s := loaded(t, newFake())
	assert.ErrorIs(t, s.SelectProvince("Atlantis"), ErrUnknownItem)
	assert.Equal(t, StepProvince, s.View().Step)
}

func TestSelector_DistrictWithoutBranches(t *testing.T) {
	s := loaded(t, newFake())
	require.NoError(t, s.SelectProvince("Kigali City"))
	require.NoError(t, s.SelectDistrict(context.Background(), "Nyarugenge"))
	v := s.View()
	assert.Equal(t, StepBranch, v.Step)
	assert.Empty(t, v.Items)
	assert.NotNil(t, v.Items)
	assert.Empty(t, v.Error)
}

func TestSelector_DistrictFetchFailureKeepsStep(t *testing.T) {
	f := newFake()
	s := loaded(t, f)
	require.NoError(t, s.SelectProvince("Kigali City"))
	f.branchErr = errors.New("backend down")

	err := s.SelectDistrict(context.Background(), "Gasabo")
	require.Error(t, err)
	v := s.View()
	assert.Equal(t, StepDistrict, v.Step)
	assert.Len(t, v.Items, 2)
	assert.Contains(t, v.Error, "backend down")
}

func TestSelector_SelectBranchComputesTraffic(t *testing.T) {
	s := loaded(t, newFake())
	require.NoError(t, s.SelectProvince("Kigali City"))
	require.NoError(t, s.SelectDistrict(context.Background(), "Gasabo"))
	require.NoError(t, s.SelectBranch(context.Background(), 10))

	v := s.View()
	assert.Equal(t, StepServices, v.Step)
	assert.Equal(t, "Services at Kimironko", v.Title)
	assert.Equal(t, []string{"Kigali City", "Gasabo", "Kimironko"}, v.Path)
	require.Len(t, v.Services, 2)
	assert.Equal(t, model.TrafficGreen, v.Services[0].Hourly[1])
	assert.Equal(t, model.TrafficYellow, v.Services[1].Hourly[1])
}

func TestSelector_SelectBranchPartialFailure(t *testing.T) {
	f := newFake()
	s := loaded(t, f)
	require.NoError(t, s.SelectProvince("Kigali City"))
	require.NoError(t, s.SelectDistrict(context.Background(), "Gasabo"))
	f.apptErr = errors.New("appointments unavailable")

	require.Error(t, s.SelectBranch(context.Background(), 10))
	v := s.View()
	assert.Equal(t, StepBranch, v.Step)
	assert.Empty(t, v.Services)
	assert.Contains(t, v.Error, "appointments unavailable")
}

func TestSelector_UnknownBranch(t *testing.T) {
	s := loaded(t, newFake())
	require.NoError(t, s.SelectProvince("Kigali City"))
	require.NoError(t, s.SelectDistrict(context.Background(), "Gasabo"))
	assert.ErrorIs(t, s.SelectBranch(context.Background(), 999), ErrUnknownItem)
}

func TestSelector_BackAndBook(t *testing.T) {
	f := newFake()
	s := loaded(t, f)
	ctx := context.Background()
	require.NoError(t, s.SelectProvince("Kigali City"))
	require.NoError(t, s.SelectDistrict(ctx, "Gasabo"))
	require.NoError(t, s.SelectBranch(ctx, 10))

	h, err := s.Book(101)
	require.NoError(t, err)
	assert.Equal(t, int64(10), h.Branch.ID)
	assert.Equal(t, "Loans", h.Service.Name)
	assert.Equal(t, int64(2), h.Service.ID)

	_, err = s.Book(555)
	assert.ErrorIs(t, err, ErrUnknownItem)

	require.NoError(t, s.Back(ctx, StepBranch))
	assert.Equal(t, StepBranch, s.View().Step)
	assert.Equal(t, 2, f.branchCalls)

	_, err = s.Book(101)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, s.Back(ctx, StepDistrict))
	assert.Equal(t, StepDistrict, s.View().Step)

	require.NoError(t, s.Back(ctx, StepProvince))
	v := s.View()
	assert.Equal(t, StepProvince, v.Step)
	assert.Empty(t, v.Path)
	assert.Equal(t, 1, f.districtCalls)

	assert.ErrorIs(t, s.Back(ctx, StepProvince), ErrInvalidTransition)
}

func TestSelector_StaleResponseIsDiscarded(t *testing.T) {
	f := newFake()
	s := loaded(t, f)
	require.NoError(t, s.SelectProvince("Kigali City"))

	f.mu.Lock()
	f.branchGate = make(chan struct{})
	gate := f.branchGate
	f.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- s.SelectDistrict(context.Background(), "Gasabo") }()

	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.branchCalls == 1
	}, time.Second, 5*time.Millisecond)

	// A newer transition lands while the branch fetch is still in flight.
	require.NoError(t, s.Back(context.Background(), StepProvince))
	close(gate)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, StepProvince, s.View().Step)
}

func TestRegistry_GetAndSweep(t *testing.T) {
	r := NewRegistry(newFake(), availability.DefaultThresholds, time.Minute, nil)
	defer r.Close()

	a := r.Get(1)
	assert.Same(t, a, r.Get(1))
	assert.NotSame(t, a, r.Get(2))
	assert.Equal(t, 2, r.Len())

	assert.Equal(t, 0, r.Sweep(time.Now()))
	assert.Equal(t, 2, r.Sweep(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, r.Len())

	r.Get(3)
	r.Reset(3)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_CloseTwice(t *testing.T) {
	r := NewRegistry(newFake(), availability.DefaultThresholds, time.Minute, nil)
	r.Close()
	r.Close()
}
