// Package availability derives booking slots and hourly traffic from the
// appointments the backend returns.  Everything here is pure and safe for
// concurrent use.
package availability

import (
	"fmt"
	"time"

	"github.com/iliyamo/bqomis-portal/internal/model"
)

const (
	bookingStartHour = 9
	bookingEndHour   = 17
)

// Slots lists HH:MM times from startHour:00 up to but excluding endHour:00
// at the given step.
func Slots(startHour, endHour int, step time.Duration) []string {
	if step <= 0 || endHour <= startHour {
		return []string{}
	}
	stepMin := int(step / time.Minute)
	if stepMin <= 0 {
		return []string{}
	}
	out := make([]string, 0, (endHour-startHour)*60/stepMin)
	for m := startHour * 60; m < endHour*60; m += stepMin {
		out = append(out, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return out
}

// BookingSlots is the catalog offered to clients: 09:00 through 16:30 every
// 30 minutes.
func BookingSlots() []string {
	return Slots(bookingStartHour, bookingEndHour, 30*time.Minute)
}

// GeneratorSlots is the finer catalog used for synthetic data: 09:00
// through 16:45 every 15 minutes.
func GeneratorSlots() []string {
	return Slots(bookingStartHour, bookingEndHour, 15*time.Minute)
}

// IsBookingSlot reports whether t is one of BookingSlots.
func IsBookingSlot(t string) bool {
	for _, s := range BookingSlots() {
		if s == t {
			return true
		}
	}
	return false
}

// FreeSlots returns the catalog slots for date that are not in booked.  When
// date is now's calendar day, slots at or before now's hour and minute are
// dropped too.  Order is chronological.
func FreeSlots(date string, booked []string, now time.Time) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[normalizeTime(b)] = struct{}{}
	}

	isToday := date == model.FormatDate(now)
	nowMin := now.Hour()*60 + now.Minute()

	out := make([]string, 0, 16)
	for _, s := range BookingSlots() {
		if _, ok := taken[s]; ok {
			continue
		}
		if isToday {
			if m, ok := minuteOfDay(s); !ok || m <= nowMin {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// BookedTimes extracts appointment times for FreeSlots.  Cancelled
// appointments still occupy their slot, matching the backend's view.
func BookedTimes(appts []model.Appointment) []string {
	out := make([]string, 0, len(appts))
	for _, a := range appts {
		out = append(out, a.Time)
	}
	return out
}

// normalizeTime trims a trailing ":ss" so "09:00:00" matches "09:00".
func normalizeTime(t string) string {
	if len(t) == 8 && t[5] == ':' {
		return t[:5]
	}
	return t
}

func minuteOfDay(hhmm string) (int, bool) {
	tm, err := time.Parse(model.TimeLayout, normalizeTime(hhmm))
	if err != nil {
		return 0, false
	}
	return tm.Hour()*60 + tm.Minute(), true
}
