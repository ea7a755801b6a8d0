package model

// TrafficLevel is the color of one hourly bucket.
type TrafficLevel string

const (
	TrafficGreen  TrafficLevel = "green"
	TrafficYellow TrafficLevel = "yellow"
	TrafficRed    TrafficLevel = "red"
)

const (
	// FirstTrafficHour is the hour of the first bucket (08:00-08:59).
	FirstTrafficHour = 8
	// LastTrafficHour is the hour of the last bucket (16:00-16:59).
	LastTrafficHour = 16
	// TrafficBuckets is the number of hourly buckets.
	TrafficBuckets = LastTrafficHour - FirstTrafficHour + 1
)

// HourlyTraffic holds one level per hour from 8 to 16.  It is derived and
// never persisted.
type HourlyTraffic [TrafficBuckets]TrafficLevel

// ServiceTraffic is a branch service annotated with today's estimated
// traffic.
type ServiceTraffic struct {
	ServiceID       int64         `json:"serviceId"`
	BranchServiceID int64         `json:"branchServiceId"`
	ServiceName     string        `json:"serviceName"`
	Hourly          HourlyTraffic `json:"hourlyTraffic"`
}
