package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bqomis-portal/internal/availability"
	"github.com/iliyamo/bqomis-portal/internal/backend"
	"github.com/iliyamo/bqomis-portal/internal/middleware"
	"github.com/iliyamo/bqomis-portal/internal/model"
	q "github.com/iliyamo/bqomis-portal/internal/queue"
	"github.com/iliyamo/bqomis-portal/pkg/logging"
)

// BookingPublisher announces accepted bookings.
type BookingPublisher interface {
	PublishAppointmentBooked(ctx context.Context, event q.AppointmentBookedEvent) error
}

// BookingHandler lists free slots and books appointments for the caller.
type BookingHandler struct {
	API       *backend.Client
	Publisher BookingPublisher
	Logger    *logging.Logger
	Now       func() time.Time
}

func NewBookingHandler(api *backend.Client, pub BookingPublisher, l *logging.Logger) *BookingHandler {
	if l == nil {
		l = logging.Default()
	}
	return &BookingHandler{API: api, Publisher: pub, Logger: l, Now: time.Now}
}

type bookingReq struct {
	BranchServiceID int64  `json:"branchServiceId"`
	Date            string `json:"date"`
	Time            string `json:"time"`
}

type slotsResp struct {
	Date            string   `json:"date"`
	BranchServiceID int64    `json:"branchServiceId"`
	Slots           []string `json:"slots"`
}

// validDate checks the YYYY-MM-DD format and rejects days before today.
func (h *BookingHandler) validDate(raw string) (string, string) {
	now := h.Now()
	d, err := time.ParseInLocation(model.DateLayout, raw, now.Location())
	if err != nil {
		return "", "date must be YYYY-MM-DD"
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return "", "date is in the past"
	}
	return model.FormatDate(d), ""
}

// Slots -> GET /v1/booking/slots?date=YYYY-MM-DD&branchServiceId=N
func (h *BookingHandler) Slots(c echo.Context) error {
	date, msg := h.validDate(strings.TrimSpace(c.QueryParam("date")))
	if msg != "" {
		return badRequest(c, msg)
	}
	bsID, err := strconv.ParseInt(c.QueryParam("branchServiceId"), 10, 64)
	if err != nil || bsID <= 0 {
		return badRequest(c, "branchServiceId required")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	appts, err := h.API.AppointmentsByDateAndBranchService(ctx, date, bsID)
	if err != nil {
		return backendError(c, err)
	}
	return c.JSON(http.StatusOK, slotsResp{
		Date:            date,
		BranchServiceID: bsID,
		Slots:           availability.FreeSlots(date, availability.BookedTimes(appts), h.Now()),
	})
}

// Create -> POST /v1/booking
// The backend decides whether the slot is still free; a 409 from it is
// passed through with its message.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return unauthenticated(c)
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.BranchServiceID <= 0 {
		return badRequest(c, "branchServiceId required")
	}
	date, msg := h.validDate(strings.TrimSpace(req.Date))
	if msg != "" {
		return badRequest(c, msg)
	}
	slot := strings.TrimSpace(req.Time)
	if _, err := time.Parse(model.TimeLayout, slot); err != nil {
		return badRequest(c, "time must be HH:mm")
	}
	if !availability.IsBookingSlot(slot) {
		return badRequest(c, "time is not a bookable slot")
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	appt, err := h.API.CreateAppointment(ctx, model.AppointmentInput{
		UserID:          uid,
		BranchServiceID: req.BranchServiceID,
		Date:            date,
		Time:            slot,
		Status:          model.StatusScheduled,
	})
	if err != nil {
		return backendError(c, err)
	}

	if h.Publisher != nil {
		ev := q.AppointmentBookedEvent{
			AppointmentID:   appt.ID,
			UserID:          uid,
			BranchServiceID: req.BranchServiceID,
			BranchName:      appt.BranchName,
			ServiceName:     appt.ServiceName,
			Date:            date,
			Time:            slot,
			Status:          string(model.StatusScheduled),
			BookedAt:        h.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Publisher.PublishAppointmentBooked(ctx, ev); err != nil {
			h.Logger.Warn("booking: publish event failed", "appointment_id", appt.ID, "error", err)
		}
	}
	return c.JSON(http.StatusCreated, appt)
}
