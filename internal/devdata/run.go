package devdata

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/bqomis-portal/internal/metrics"
	"github.com/iliyamo/bqomis-portal/internal/model"
	"github.com/iliyamo/bqomis-portal/pkg/logging"
)

// API is the part of the backend client a run needs.
type API interface {
	ListTestUsers(ctx context.Context) ([]model.User, error)
	ListBranchServices(ctx context.Context) ([]model.BranchService, error)
	CreateAppointmentsBatch(ctx context.Context, in []model.AppointmentInput) (*model.BatchResult, error)
}

// Report is the outcome of one run.  Result is the backend's breakdown as
// returned.
type Report struct {
	RunID     uuid.UUID                `json:"runId"`
	Generated []model.AppointmentInput `json:"-"`
	Result    *model.BatchResult       `json:"result"`
}

// Mismatch describes a failure whose echoed data does not match the record
// submitted at its index.
type Mismatch struct {
	InputIndex int                     `json:"inputIndex"`
	Submitted  *model.AppointmentInput `json:"submitted,omitempty"`
	Echoed     model.AppointmentInput  `json:"echoed"`
}

// Mismatches cross-checks each reported failure against the submitted
// batch.  An index outside the batch counts as a mismatch.
func (r *Report) Mismatches() []Mismatch {
	out := []Mismatch{}
	if r.Result == nil {
		return out
	}
	for _, f := range r.Result.Failures {
		if f.InputIndex < 0 || f.InputIndex >= len(r.Generated) {
			out = append(out, Mismatch{InputIndex: f.InputIndex, Echoed: f.Data})
			continue
		}
		sub := r.Generated[f.InputIndex]
		if !reflect.DeepEqual(sub, f.Data) {
			out = append(out, Mismatch{InputIndex: f.InputIndex, Submitted: &sub, Echoed: f.Data})
		}
	}
	return out
}

// Runner loads prerequisites, generates a batch and submits it.
type Runner struct {
	api     API
	logger  *logging.Logger
	metrics *metrics.GeneratorMetrics
	now     func() time.Time
	seed    func() int64
}

// NewRunner creates a runner.  m may be nil.
func NewRunner(api API, logger *logging.Logger, m *metrics.GeneratorMetrics) *Runner {
	if logger == nil {
		logger = logging.Default()
	}
	return &Runner{
		api:     api,
		logger:  logger,
		metrics: m,
		now:     time.Now,
		seed:    func() int64 { return time.Now().UnixNano() },
	}
}

// Run validates cfg before any network call, then loads test users and
// branch-service links concurrently, generates and submits one batch.
// Failed records are not retried.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		users []model.User
		links []model.BranchService
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = r.api.ListTestUsers(gctx)
		if err != nil {
			return fmt.Errorf("load test users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		links, err = r.api.ListBranchServices(gctx)
		if err != nil {
			return fmt.Errorf("load branch services: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	runID := uuid.New()
	log := r.logger.With("run_id", runID.String())

	gen := NewGenerator(r.seed(), r.now())
	batch, err := gen.Generate(cfg, users, links)
	if err != nil {
		return nil, err
	}
	log.Info("devdata: submitting batch", "records", len(batch), "users", len(users), "links", len(links))

	res, err := r.api.CreateAppointmentsBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("submit batch: %w", err)
	}
	r.metrics.ObserveBatch(res.SuccessfullyCreated, res.FailedCount)
	log.Info("devdata: batch done",
		"submitted", res.TotalSubmitted,
		"created", res.SuccessfullyCreated,
		"failed", res.FailedCount,
	)
	return &Report{RunID: runID, Generated: batch, Result: res}, nil
}
