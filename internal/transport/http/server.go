package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/service/booking"
	"salonbook/backend/internal/store"
)

type bookingService interface {
	Availability(ctx context.Context, in booking.AvailabilityInput) ([]domain.Interval, error)
	Book(ctx context.Context, in booking.BookInput) (domain.Appointment, error)
	Reschedule(ctx context.Context, in booking.RescheduleInput) (domain.Appointment, error)
	Confirm(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error)
	Cancel(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error)
	Complete(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error)
	MarkNoShow(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error)
	Appointment(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error)

	CreateShift(ctx context.Context, in booking.CreateShiftInput) (domain.Shift, error)
	DeleteShift(ctx context.Context, employeeID string, shiftID int64) error
	Shifts(ctx context.Context, employeeID string) ([]domain.Shift, error)
	CreateBlockedPeriod(ctx context.Context, in booking.CreateBlockedPeriodInput) (domain.BlockedPeriod, error)
	DeleteBlockedPeriod(ctx context.Context, employeeID string, blockedID int64) error
	BlockedPeriods(ctx context.Context, employeeID string) ([]domain.BlockedPeriod, error)
}

type BookingServer struct {
	svc bookingService
	log *slog.Logger
}

func NewBookingServer(svc bookingService, log *slog.Logger) *BookingServer {
	if log == nil {
		log = slog.Default()
	}
	return &BookingServer{
		svc: svc,
		log: log.With(slog.String("component", "http.booking")),
	}
}

func (s *BookingServer) Register(e *echo.Echo) {
	v1 := e.Group("/v1")

	v1.GET("/availability", s.availability)

	v1.POST("/appointments", s.createAppointment)
	v1.GET("/appointments/:id", s.getAppointment)
	v1.POST("/appointments/:id/reschedule", s.rescheduleAppointment)
	v1.POST("/appointments/:id/confirm", s.transitionHandler("confirm"))
	v1.POST("/appointments/:id/cancel", s.transitionHandler("cancel"))
	v1.POST("/appointments/:id/complete", s.transitionHandler("complete"))
	v1.POST("/appointments/:id/no-show", s.transitionHandler("no-show"))

	v1.GET("/employees/:id/shifts", s.listShifts)
	v1.POST("/employees/:id/shifts", s.createShift)
	v1.DELETE("/employees/:id/shifts/:shiftID", s.deleteShift)

	v1.GET("/employees/:id/blocked-periods", s.listBlockedPeriods)
	v1.POST("/employees/:id/blocked-periods", s.createBlockedPeriod)
	v1.DELETE("/employees/:id/blocked-periods/:blockedID", s.deleteBlockedPeriod)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the engine's error taxonomy onto HTTP statuses. Unknown
// errors surface as 500 with a generic body.
func (s *BookingServer) writeError(c echo.Context, log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, store.ErrSlotUnavailable):
		log.Info("slot conflict", slog.Any("err", err))
		return c.JSON(http.StatusConflict, errorResponse{
			Error: "That time was just taken. Pick a different slot.",
		})
	case errors.Is(err, store.ErrInvalidTransition):
		log.Info("invalid transition", slog.Any("err", err))
		return c.JSON(http.StatusConflict, errorResponse{Error: "appointment status does not allow this change"})
	case errors.Is(err, store.ErrServiceNotFound),
		errors.Is(err, store.ErrEmployeeNotFound),
		errors.Is(err, store.ErrAppointmentNotFound),
		errors.Is(err, store.ErrNotFound):
		log.Info("not found", slog.Any("err", err))
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	}

	var vErr *booking.ValidationError
	if errors.As(err, &vErr) {
		log.Warn("invalid request", slog.Any("err", err))
		return c.JSON(http.StatusBadRequest, errorResponse{Error: vErr.Error()})
	}

	log.Error("request failed", slog.Any("err", err))
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func parseAppointmentID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "appointment id must be a UUID")
	}
	return id, nil
}

type appointmentResponse struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customer_id"`
	EmployeeID string    `json:"employee_id"`
	ServiceID  int64     `json:"service_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
	CouponID   *int64    `json:"coupon_id,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toAppointmentResponse(a domain.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:         a.ID.String(),
		CustomerID: a.CustomerID,
		EmployeeID: a.EmployeeID,
		ServiceID:  a.ServiceID,
		StartTime:  a.StartTime,
		EndTime:    a.EndTime,
		Status:     string(a.Status),
		CouponID:   a.CouponID,
		Notes:      a.Notes,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

type slotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
