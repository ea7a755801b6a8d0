package availability

import "github.com/iliyamo/bqomis-portal/internal/model"

// Thresholds bound the traffic levels: a count up to Low is green, up to
// Moderate yellow, above that red.
type Thresholds struct {
	Low      int
	Moderate int
}

// DefaultThresholds are used when no valid settings override exists.
var DefaultThresholds = Thresholds{Low: 2, Moderate: 5}

// Valid reports whether both bounds are positive and ordered.
func (t Thresholds) Valid() bool {
	return t.Low > 0 && t.Moderate > 0 && t.Low <= t.Moderate
}

// Level maps an hourly count to a traffic level.
func (t Thresholds) Level(count int) model.TrafficLevel {
	switch {
	case count <= t.Low:
		return model.TrafficGreen
	case count <= t.Moderate:
		return model.TrafficYellow
	default:
		return model.TrafficRed
	}
}

// ThresholdsFrom resolves the effective thresholds.  Branch overrides win
// over global settings; either being nil or invalid falls through to the
// next source and finally to DefaultThresholds.
func ThresholdsFrom(global *model.GlobalSettings, branch *model.BranchSettings) Thresholds {
	base := DefaultThresholds
	if global != nil {
		g := Thresholds{Low: global.DefaultQueueThresholdLow, Moderate: global.DefaultQueueThresholdModerate}
		if g.Valid() {
			base = g
		}
	}
	if branch == nil {
		return base
	}
	t := base
	if branch.QueueThresholdLow != nil {
		t.Low = *branch.QueueThresholdLow
	}
	if branch.QueueThresholdModerate != nil {
		t.Moderate = *branch.QueueThresholdModerate
	}
	if !t.Valid() {
		return base
	}
	return t
}

// HourlyTraffic counts the appointments of one branch-service link per
// hour from 08 to 16 and maps each count to a level.  Appointments for
// other links, outside those hours, or with unparseable times are ignored.
func HourlyTraffic(appts []model.Appointment, branchServiceID int64, th Thresholds) model.HourlyTraffic {
	if !th.Valid() {
		th = DefaultThresholds
	}
	var counts [model.TrafficBuckets]int
	for _, a := range appts {
		if a.BranchServiceID != branchServiceID {
			continue
		}
		h, ok := a.Hour()
		if !ok || h < model.FirstTrafficHour || h > model.LastTrafficHour {
			continue
		}
		counts[h-model.FirstTrafficHour]++
	}

	var out model.HourlyTraffic
	for i, n := range counts {
		out[i] = th.Level(n)
	}
	return out
}

// ServiceTraffic builds the traffic row for every link of a branch.
func ServiceTraffic(links []model.BranchService, appts []model.Appointment, th Thresholds) []model.ServiceTraffic {
	out := make([]model.ServiceTraffic, 0, len(links))
	for _, l := range links {
		out = append(out, model.ServiceTraffic{
			ServiceID:       l.ServiceID,
			BranchServiceID: l.ID,
			ServiceName:     l.ServiceName,
			Hourly:          HourlyTraffic(appts, l.ID, th),
		})
	}
	return out
}
