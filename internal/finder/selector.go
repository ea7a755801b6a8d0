// Package finder implements the progressive branch selector: province,
// then district, then branch, then the branch's services with today's
// hourly traffic.
package finder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/bqomis-portal/internal/availability"
	"github.com/iliyamo/bqomis-portal/internal/model"
)

var (
	// ErrUnknownItem is returned when a selection names something not in
	// the current list.
	ErrUnknownItem = errors.New("finder: unknown item")
	// ErrInvalidTransition is returned when an action is not allowed from
	// the current step.
	ErrInvalidTransition = errors.New("finder: invalid transition")
	// ErrSuperseded is returned when a newer transition started while a
	// fetch was in flight; the late response is discarded.
	ErrSuperseded = errors.New("finder: superseded by a newer selection")
	// ErrNotLoaded is returned when a selection is attempted before Load.
	ErrNotLoaded = errors.New("finder: districts not loaded")
)

// Backend is the subset of the API client the selector needs.
type Backend interface {
	ListDistricts(ctx context.Context) ([]model.District, error)
	ListBranchesByDistrict(ctx context.Context, district string) ([]model.Branch, error)
	ListBranchServicesByBranch(ctx context.Context, branchID int64) ([]model.BranchService, error)
	TodayAppointmentsForBranch(ctx context.Context, branchID int64) ([]model.Appointment, error)
}

// Item is one row of the current list.
type Item struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name"`
	Detail string `json:"detail,omitempty"`
}

// View is an immutable snapshot of the selector.
type View struct {
	Step     Step                   `json:"step"`
	Title    string                 `json:"title"`
	Path     []string               `json:"path"`
	Items    []Item                 `json:"items"`
	Services []model.ServiceTraffic `json:"services,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// Handoff carries the chosen branch and service to the booking form.
type Handoff struct {
	Branch  model.Branch   `json:"branch"`
	Service HandoffService `json:"service"`
}

// HandoffService identifies the service at the chosen branch.
type HandoffService struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	BranchServiceID int64  `json:"branchServiceId"`
}

// Selector holds one user's progress through the finder.  All methods are
// safe for concurrent use.
type Selector struct {
	api        Backend
	thresholds availability.Thresholds

	mu        sync.Mutex
	gen       uint64
	step      Step
	districts []model.District
	loaded    bool
	loading   chan struct{}
	province  string
	district  string
	branch    *model.Branch
	branches  []model.Branch
	links     []model.BranchService
	items     []Item
	services  []model.ServiceTraffic
	lastErr   error
	touched   time.Time
}

// NewSelector creates a selector at the province step.
func NewSelector(api Backend, th availability.Thresholds) *Selector {
	if !th.Valid() {
		th = availability.DefaultThresholds
	}
	return &Selector{api: api, thresholds: th, step: StepProvince, items: []Item{}, touched: time.Now()}
}

// begin bumps the generation and returns the token for a new transition.
// Callers hold s.mu.
func (s *Selector) begin() uint64 {
	s.gen++
	s.touched = time.Now()
	return s.gen
}

// current reports whether tok is still the latest transition.  Callers
// hold s.mu.
func (s *Selector) current(tok uint64) bool { return tok == s.gen }

// Load fetches the district list once and enters the province step.  Later
// calls reuse the cached districts.  Calls made while the first fetch is in
// flight wait for it instead of starting another.
func (s *Selector) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.loaded {
		s.begin()
		s.enterProvince()
		s.mu.Unlock()
		return nil
	}
	if wait := s.loading; wait != nil {
		s.mu.Unlock()
		return s.awaitLoad(ctx, wait)
	}
	done := make(chan struct{})
	s.loading = done
	tok := s.begin()
	s.mu.Unlock()

	districts, err := s.api.ListDistricts(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = nil
	defer close(done)
	if err != nil {
		s.lastErr = fmt.Errorf("could not load districts: %w", err)
		return s.lastErr
	}
	s.districts = districts
	s.loaded = true
	if !s.current(tok) {
		return ErrSuperseded
	}
	s.enterProvince()
	return nil
}

// awaitLoad waits for the in-flight first fetch and reports its outcome.
func (s *Selector) awaitLoad(ctx context.Context, wait <-chan struct{}) error {
	select {
	case <-wait:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	if s.lastErr != nil {
		return s.lastErr
	}
	return ErrNotLoaded
}

// SetThresholds changes the traffic thresholds used for later branch
// selections.
func (s *Selector) SetThresholds(th availability.Thresholds) {
	if !th.Valid() {
		return
	}
	s.mu.Lock()
	s.thresholds = th
	s.mu.Unlock()
}

// Loaded reports whether the district list is cached.
func (s *Selector) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *Selector) enterProvince() {
	s.step = StepProvince
	s.province, s.district = "", ""
	s.branch, s.branches, s.links, s.services = nil, nil, nil, nil
	s.lastErr = nil
	provinces := model.Provinces(s.districts)
	s.items = make([]Item, 0, len(provinces))
	for _, p := range provinces {
		s.items = append(s.items, Item{Name: p})
	}
}

func (s *Selector) enterDistrict(province string) {
	s.step = StepDistrict
	s.province = province
	s.district = ""
	s.branch, s.branches, s.links, s.services = nil, nil, nil, nil
	s.lastErr = nil
	ds := model.DistrictsInProvince(s.districts, province)
	s.items = make([]Item, 0, len(ds))
	for _, d := range ds {
		s.items = append(s.items, Item{ID: d.ID, Name: d.Name})
	}
}

func (s *Selector) enterBranch(district string, branches []model.Branch) {
	s.step = StepBranch
	s.district = district
	s.branch, s.links, s.services = nil, nil, nil
	s.branches = branches
	s.lastErr = nil
	s.items = make([]Item, 0, len(branches))
	for _, b := range branches {
		s.items = append(s.items, Item{ID: b.ID, Name: b.Name, Detail: b.Address})
	}
}

// SelectProvince narrows the cached districts to one province.  No network
// call is made.
func (s *Selector) SelectProvince(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNotLoaded
	}
	if !ValidTransition(ActionSelectProvince, s.step) {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ActionSelectProvince, s.step)
	}
	found := false
	for _, p := range model.Provinces(s.districts) {
		if p == name {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: province %q", ErrUnknownItem, name)
	}
	s.begin()
	s.enterDistrict(name)
	return nil
}

// SelectDistrict fetches the district's branches.  On failure the step is
// unchanged and the error is kept for View.  A district with no branches
// moves on with an empty list.
func (s *Selector) SelectDistrict(ctx context.Context, name string) error {
	s.mu.Lock()
	if !ValidTransition(ActionSelectDistrict, s.step) {
		step := s.step
		s.mu.Unlock()
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ActionSelectDistrict, step)
	}
	if !s.hasItem(name) {
		s.mu.Unlock()
		return fmt.Errorf("%w: district %q", ErrUnknownItem, name)
	}
	tok := s.begin()
	s.mu.Unlock()

	return s.fetchBranches(ctx, tok, name)
}

func (s *Selector) fetchBranches(ctx context.Context, tok uint64, district string) error {
	branches, err := s.api.ListBranchesByDistrict(ctx, district)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(tok) {
		return ErrSuperseded
	}
	if err != nil {
		s.lastErr = fmt.Errorf("could not load branches for %s: %w", district, err)
		return s.lastErr
	}
	s.enterBranch(district, branches)
	return nil
}

// SelectBranch fetches the branch's services and today's appointments
// concurrently and computes hourly traffic per service.  Either fetch
// failing leaves the step unchanged.
func (s *Selector) SelectBranch(ctx context.Context, id int64) error {
	s.mu.Lock()
	if !ValidTransition(ActionSelectBranch, s.step) {
		step := s.step
		s.mu.Unlock()
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ActionSelectBranch, step)
	}
	var chosen *model.Branch
	for i := range s.branches {
		if s.branches[i].ID == id {
			b := s.branches[i]
			chosen = &b
			break
		}
	}
	if chosen == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: branch %d", ErrUnknownItem, id)
	}
	tok := s.begin()
	th := s.thresholds
	s.mu.Unlock()

	var (
		links []model.BranchService
		appts []model.Appointment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		links, err = s.api.ListBranchServicesByBranch(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		appts, err = s.api.TodayAppointmentsForBranch(gctx, id)
		return err
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(tok) {
		return ErrSuperseded
	}
	if err != nil {
		s.lastErr = fmt.Errorf("could not load services for %s: %w", chosen.Name, err)
		return s.lastErr
	}
	s.step = StepServices
	s.branch = chosen
	s.links = links
	s.services = availability.ServiceTraffic(links, appts, th)
	s.items = []Item{}
	s.lastErr = nil
	return nil
}

// Back returns to an earlier step.  Province and district lists come from
// the cache; returning to the branch list fetches it again.
func (s *Selector) Back(ctx context.Context, to Step) error {
	s.mu.Lock()
	if !ValidBack(s.step, to) {
		from := s.step
		s.mu.Unlock()
		return fmt.Errorf("%w: back from %s to %s", ErrInvalidTransition, from, to)
	}
	tok := s.begin()
	switch to {
	case StepProvince:
		s.enterProvince()
		s.mu.Unlock()
		return nil
	case StepDistrict:
		s.enterDistrict(s.province)
		s.mu.Unlock()
		return nil
	}
	district := s.district
	s.mu.Unlock()

	return s.fetchBranches(ctx, tok, district)
}

// Book hands the chosen service to the booking form.  Nothing is created.
func (s *Selector) Book(branchServiceID int64) (Handoff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ValidTransition(ActionBook, s.step) || s.branch == nil {
		return Handoff{}, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ActionBook, s.step)
	}
	s.touched = time.Now()
	for _, l := range s.links {
		if l.ID == branchServiceID {
			return Handoff{
				Branch:  *s.branch,
				Service: HandoffService{ID: l.ServiceID, Name: l.ServiceName, BranchServiceID: l.ID},
			}, nil
		}
	}
	return Handoff{}, fmt.Errorf("%w: branch service %d", ErrUnknownItem, branchServiceID)
}

// View returns a snapshot of the current state.
func (s *Selector) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Step:     s.step,
		Items:    append([]Item(nil), s.items...),
		Services: append([]model.ServiceTraffic(nil), s.services...),
		Path:     s.path(),
	}
	if v.Items == nil {
		v.Items = []Item{}
	}
	switch s.step {
	case StepProvince:
		v.Title = "Select a Province"
	case StepDistrict:
		v.Title = "Select a District in " + s.province
	case StepBranch:
		v.Title = "Select a Branch in " + s.district
	case StepServices:
		v.Title = "Services at " + s.branch.Name
	}
	if s.lastErr != nil {
		v.Error = s.lastErr.Error()
	}
	return v
}

// LastError returns the error of the most recent failed transition.
func (s *Selector) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Selector) path() []string {
	out := make([]string, 0, 3)
	for _, p := range []string{s.province, s.district} {
		if p != "" {
			out = append(out, p)
		}
	}
	if s.branch != nil {
		out = append(out, s.branch.Name)
	}
	return out
}

func (s *Selector) hasItem(name string) bool {
	for _, it := range s.items {
		if it.Name == name {
			return true
		}
	}
	return false
}

func (s *Selector) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}
