// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

// AppointmentBookedQueue is the durable queue booking events go to.
const AppointmentBookedQueue = "appointment.booked"

// AppointmentBookedEvent is published after the backend accepted a client
// booking.  It carries enough for downstream consumers to log or notify
// without calling the backend again.
type AppointmentBookedEvent struct {
	AppointmentID   int64  `json:"appointment_id"`
	UserID          int64  `json:"user_id"`
	BranchServiceID int64  `json:"branch_service_id"`
	BranchName      string `json:"branch_name,omitempty"`
	ServiceName     string `json:"service_name,omitempty"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Status          string `json:"status"`
	BookedAt        string `json:"booked_at"`
}
