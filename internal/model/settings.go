package model

import "time"

// GlobalSettings mirrors the backend's global application configuration.
type GlobalSettings struct {
	BookingWindowDays             int        `json:"bookingWindowDays"`
	MinBookingNoticeHours         int        `json:"minBookingNoticeHours"`
	DefaultQueueThresholdLow      int        `json:"defaultQueueThresholdLow"`
	DefaultQueueThresholdModerate int        `json:"defaultQueueThresholdModerate"`
	DefaultSlotDurationMins       int        `json:"defaultSlotDurationMins"`
	AllowCancellationHours        int        `json:"allowCancellationHours"`
	MaintenanceModeEnabled        bool       `json:"maintenanceModeEnabled"`
	LastUpdated                   *time.Time `json:"lastUpdated,omitempty"`
}

// BranchSettings holds per-branch overrides.  A nil field means the
// global default applies; sending nil reverts an override.
type BranchSettings struct {
	BranchID               int64      `json:"branchId,omitempty"`
	QueueThresholdLow      *int       `json:"queueThresholdLow"`
	QueueThresholdModerate *int       `json:"queueThresholdModerate"`
	SlotDurationMins       *int       `json:"slotDurationMins"`
	MaxAppointmentsPerSlot *int       `json:"maxAppointmentsPerSlot"`
	LastUpdated            *time.Time `json:"lastUpdated,omitempty"`
}
