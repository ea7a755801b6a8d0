package model

import (
	"fmt"
	"strings"
	"time"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "SCHEDULED"
	StatusCheckedIn AppointmentStatus = "CHECKED_IN"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusNoShow    AppointmentStatus = "NO_SHOW"
)

// AllStatuses lists every status accepted by the backend.
var AllStatuses = []AppointmentStatus{StatusScheduled, StatusCheckedIn, StatusCompleted, StatusCancelled, StatusNoShow}

// Valid reports whether s is one of the known statuses.
func (s AppointmentStatus) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus normalizes a user supplied status string.
func ParseStatus(raw string) (AppointmentStatus, error) {
	s := AppointmentStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown appointment status %q", raw)
	}
	return s, nil
}

const (
	// DateLayout is the wire format of appointment dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format of appointment times.
	TimeLayout = "15:04"
)

// FormatDate renders t as YYYY-MM-DD in t's own location.
func FormatDate(t time.Time) string { return t.Format(DateLayout) }

// Appointment is a booking as returned by the backend.  BranchName and
// ServiceName are denormalized for display.
type Appointment struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"userId"`
	BranchServiceID int64             `json:"branchServiceId"`
	BranchID        int64             `json:"branchId,omitempty"`
	BranchName      string            `json:"branchName,omitempty"`
	ServiceID       int64             `json:"serviceId,omitempty"`
	ServiceName     string            `json:"serviceName,omitempty"`
	Date            string            `json:"date"`
	Time            string            `json:"time"`
	Status          AppointmentStatus `json:"status"`
}

// Hour returns the hour component of the appointment time.  The backend
// may render times as HH:mm or HH:mm:ss.
func (a Appointment) Hour() (int, bool) {
	return hourOf(a.Time)
}

func hourOf(hhmm string) (int, bool) {
	i := strings.IndexByte(hhmm, ':')
	if i <= 0 || i > 2 {
		return 0, false
	}
	h := 0
	for _, ch := range hhmm[:i] {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		h = h*10 + int(ch-'0')
	}
	if h > 23 {
		return 0, false
	}
	return h, true
}

// AppointmentInput is the create payload for POST /appointments and each
// element of POST /appointments/batch.
type AppointmentInput struct {
	UserID          int64             `json:"userId"`
	BranchServiceID int64             `json:"branchServiceId"`
	Date            string            `json:"date"`
	Time            string            `json:"time"`
	Status          AppointmentStatus `json:"status"`
}

// BatchFailure describes one rejected record of a batch create.  Data is
// the input the backend received at InputIndex, echoed back.
type BatchFailure struct {
	InputIndex int              `json:"inputIndex"`
	Error      string           `json:"error"`
	Data       AppointmentInput `json:"data"`
}

// BatchResult is the backend's report for POST /appointments/batch.
type BatchResult struct {
	TotalSubmitted      int            `json:"totalSubmitted"`
	SuccessfullyCreated int            `json:"successfullyCreated"`
	FailedCount         int            `json:"failedCount"`
	Failures            []BatchFailure `json:"failures"`
}

// StatusUpdate is the body of PUT /appointments/{id}/status.
type StatusUpdate struct {
	Status AppointmentStatus `json:"status"`
}

// AppointmentFilter holds the optional query parameters of
// GET /appointments/filtered.  Zero values are omitted from the query.
type AppointmentFilter struct {
	DateFrom     string
	DateTo       string
	BranchID     int64
	ServiceID    int64
	Status       AppointmentStatus
	DistrictName string
	Page         int
	Size         int
}
