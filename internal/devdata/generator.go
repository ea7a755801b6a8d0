// Package devdata generates synthetic appointments for demo and test
// environments and submits them to the backend in one batch.
package devdata

import (
	"math/rand"
	"time"

	"github.com/iliyamo/bqomis-portal/internal/availability"
	"github.com/iliyamo/bqomis-portal/internal/model"
)

// KigaliDistricts make up the city pool.  Names match backend data exactly.
var KigaliDistricts = []string{"Gasabo", "Kicukiro", "Nyarugenge"}

const kigaliShare = 40

// Generator draws appointment records.  It is not safe for concurrent use.
type Generator struct {
	rng   *rand.Rand
	now   time.Time
	slots []string
}

// NewGenerator creates a generator whose "today" is now's calendar date.
// The same seed and now yield the same batch.
func NewGenerator(seed int64, now time.Time) *Generator {
	return &Generator{
		rng:   rand.New(rand.NewSource(seed)),
		now:   now,
		slots: availability.GeneratorSlots(),
	}
}

// Generate produces cfg.TotalAppointments records.  Times are not checked
// against existing bookings.
func (g *Generator) Generate(cfg Config, users []model.User, links []model.BranchService) ([]model.AppointmentInput, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(users) == 0 || len(links) == 0 {
		return nil, ErrNoPrerequisites
	}

	kigali, other := splitPools(links)
	out := make([]model.AppointmentInput, 0, cfg.TotalAppointments)
	for i := 0; i < cfg.TotalAppointments; i++ {
		date, status := g.dateAndStatus(cfg)
		user := users[g.rng.Intn(len(users))]
		pool := g.pickPool(kigali, other, links)
		link := pool[g.rng.Intn(len(pool))]

		out = append(out, model.AppointmentInput{
			UserID:          user.ID,
			BranchServiceID: link.ID,
			Date:            date,
			Time:            g.slots[g.rng.Intn(len(g.slots))],
			Status:          status,
		})
	}
	return out, nil
}

func (g *Generator) dateAndStatus(cfg Config) (string, model.AppointmentStatus) {
	roll := g.rng.Float64() * 100
	switch {
	case roll < float64(cfg.PercentPast):
		return g.dayOffset(-cfg.MaxPastDays, -1), g.pastStatus()
	case roll < float64(cfg.PercentPast+cfg.PercentToday):
		return model.FormatDate(g.now), model.StatusScheduled
	default:
		return g.dayOffset(1, cfg.MaxFutureDays), model.StatusScheduled
	}
}

func (g *Generator) pastStatus() model.AppointmentStatus {
	roll := g.rng.Float64() * 100
	switch {
	case roll < 80:
		return model.StatusCompleted
	case roll < 90:
		return model.StatusCancelled
	default:
		return model.StatusNoShow
	}
}

// dayOffset returns a date min..max days (inclusive) from today.
func (g *Generator) dayOffset(min, max int) string {
	n := min + g.rng.Intn(max-min+1)
	return model.FormatDate(g.now.AddDate(0, 0, n))
}

// pickPool draws the Kigali pool 40% of the time.  An empty pool falls back
// to the other one, then to every link.
func (g *Generator) pickPool(kigali, other, all []model.BranchService) []model.BranchService {
	roll := g.rng.Float64() * 100
	switch {
	case roll < kigaliShare && len(kigali) > 0:
		return kigali
	case len(other) > 0:
		return other
	default:
		return all
	}
}

func splitPools(links []model.BranchService) (kigali, other []model.BranchService) {
	for _, l := range links {
		if isKigali(l.District) {
			kigali = append(kigali, l)
		} else {
			other = append(other, l)
		}
	}
	return kigali, other
}

func isKigali(district string) bool {
	for _, d := range KigaliDistricts {
		if d == district {
			return true
		}
	}
	return false
}
