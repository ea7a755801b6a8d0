package devdata

import (
	"errors"
	"fmt"
)

var (
	// ErrPercentSum is returned when the date bucket weights do not add up
	// to exactly 100.
	ErrPercentSum = errors.New("date percentages must sum to 100%")
	// ErrNoPrerequisites is returned when there are no test users or no
	// branch-service links to draw from.
	ErrNoPrerequisites = errors.New("no test users or branch services available")
)

// Config controls the shape of a generated batch.
type Config struct {
	TotalAppointments     int  `json:"totalAppointments"`
	SkewServicePopularity bool `json:"skewServicePopularity"`
	PercentPast           int  `json:"percentPast"`
	PercentToday          int  `json:"percentToday"`
	PercentFuture         int  `json:"percentFuture"`
	MaxPastDays           int  `json:"maxPastDays"`
	MaxFutureDays         int  `json:"maxFutureDays"`
}

// DefaultConfig returns the admin tool defaults.
func DefaultConfig() Config {
	return Config{
		TotalAppointments:     100,
		SkewServicePopularity: true,
		PercentPast:           10,
		PercentToday:          70,
		PercentFuture:         20,
		MaxPastDays:           30,
		MaxFutureDays:         30,
	}
}

// Validate rejects configurations that cannot be generated.  Weights are
// never normalized.
func (c Config) Validate() error {
	for name, p := range map[string]int{
		"percentPast":   c.PercentPast,
		"percentToday":  c.PercentToday,
		"percentFuture": c.PercentFuture,
	} {
		if p < 0 || p > 100 {
			return fmt.Errorf("%s must be between 0 and 100, got %d", name, p)
		}
	}
	if c.PercentPast+c.PercentToday+c.PercentFuture != 100 {
		return ErrPercentSum
	}
	if c.TotalAppointments <= 0 {
		return fmt.Errorf("totalAppointments must be positive, got %d", c.TotalAppointments)
	}
	if c.MaxPastDays < 1 || c.MaxFutureDays < 1 {
		return fmt.Errorf("maxPastDays and maxFutureDays must be at least 1")
	}
	return nil
}
