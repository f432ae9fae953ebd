package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/service/booking"
)

func (s *BookingServer) availability(c echo.Context) error {
	log := s.log.With(slog.String("route", "availability"))

	serviceID, err := strconv.ParseInt(c.QueryParam("service_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "service_id must be an integer"})
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "date must be YYYY-MM-DD"})
	}

	slots, err := s.svc.Availability(c.Request().Context(), booking.AvailabilityInput{
		ServiceID:  serviceID,
		Date:       date,
		EmployeeID: c.QueryParam("employee_id"),
	})
	if err != nil {
		return s.writeError(c, log, err)
	}

	out := make([]slotResponse, 0, len(slots))
	for _, slot := range slots {
		out = append(out, slotResponse{Start: slot.Start, End: slot.End})
	}

	log.Debug("availability computed",
		slog.Int64("service_id", serviceID),
		slog.Int("count", len(out)),
	)
	return c.JSON(http.StatusOK, map[string]any{"slots": out})
}

type createAppointmentRequest struct {
	CustomerID string    `json:"customer_id"`
	EmployeeID string    `json:"employee_id"`
	ServiceID  int64     `json:"service_id"`
	StartTime  time.Time `json:"start_time"`
	Notes      string    `json:"notes"`
	CouponID   *int64    `json:"coupon_id"`
}

func (s *BookingServer) createAppointment(c echo.Context) error {
	log := s.log.With(slog.String("route", "create_appointment"))

	var req createAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	appt, err := s.svc.Book(c.Request().Context(), booking.BookInput{
		CustomerID: req.CustomerID,
		EmployeeID: req.EmployeeID,
		ServiceID:  req.ServiceID,
		StartTime:  req.StartTime,
		Notes:      req.Notes,
		CouponID:   req.CouponID,
	})
	if err != nil {
		return s.writeError(c, log, err)
	}

	log.Info("appointment booked",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("employee_id", appt.EmployeeID),
		slog.Time("start_time", appt.StartTime),
	)
	return c.JSON(http.StatusCreated, toAppointmentResponse(appt))
}

func (s *BookingServer) getAppointment(c echo.Context) error {
	log := s.log.With(slog.String("route", "get_appointment"))

	id, err := parseAppointmentID(c)
	if err != nil {
		return err
	}
	appt, err := s.svc.Appointment(c.Request().Context(), id)
	if err != nil {
		return s.writeError(c, log, err)
	}
	return c.JSON(http.StatusOK, toAppointmentResponse(appt))
}

type rescheduleRequest struct {
	StartTime time.Time `json:"start_time"`
}

func (s *BookingServer) rescheduleAppointment(c echo.Context) error {
	log := s.log.With(slog.String("route", "reschedule_appointment"))

	id, err := parseAppointmentID(c)
	if err != nil {
		return err
	}
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	appt, err := s.svc.Reschedule(c.Request().Context(), booking.RescheduleInput{
		AppointmentID: id,
		StartTime:     req.StartTime,
	})
	if err != nil {
		return s.writeError(c, log, err)
	}

	log.Info("appointment rescheduled",
		slog.String("appointment_id", appt.ID.String()),
		slog.Time("start_time", appt.StartTime),
	)
	return c.JSON(http.StatusOK, toAppointmentResponse(appt))
}

func (s *BookingServer) transitionHandler(action string) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := s.log.With(slog.String("route", action))

		id, err := parseAppointmentID(c)
		if err != nil {
			return err
		}

		var appt domain.Appointment
		var opErr error
		ctx := c.Request().Context()
		switch action {
		case "confirm":
			appt, opErr = s.svc.Confirm(ctx, id)
		case "cancel":
			appt, opErr = s.svc.Cancel(ctx, id)
		case "complete":
			appt, opErr = s.svc.Complete(ctx, id)
		case "no-show":
			appt, opErr = s.svc.MarkNoShow(ctx, id)
		default:
			return echo.NewHTTPError(http.StatusNotFound)
		}
		if opErr != nil {
			return s.writeError(c, log, opErr)
		}

		log.Info("appointment status changed",
			slog.String("appointment_id", appt.ID.String()),
			slog.String("status", string(appt.Status)),
		)
		return c.JSON(http.StatusOK, toAppointmentResponse(appt))
	}
}

type shiftResponse struct {
	ID         int64  `json:"id"`
	EmployeeID string `json:"employee_id"`
	DayOfWeek  int    `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Location   string `json:"location,omitempty"`
}

func toShiftResponse(sh domain.Shift) shiftResponse {
	return shiftResponse{
		ID:         sh.ID,
		EmployeeID: sh.EmployeeID,
		DayOfWeek:  sh.DayOfWeek,
		StartTime:  sh.StartTime,
		EndTime:    sh.EndTime,
		Location:   sh.Location,
	}
}

func (s *BookingServer) listShifts(c echo.Context) error {
	log := s.log.With(slog.String("route", "list_shifts"))

	shifts, err := s.svc.Shifts(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.writeError(c, log, err)
	}
	out := make([]shiftResponse, 0, len(shifts))
	for _, sh := range shifts {
		out = append(out, toShiftResponse(sh))
	}
	return c.JSON(http.StatusOK, map[string]any{"shifts": out})
}

type createShiftRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Location  string `json:"location"`
}

func (s *BookingServer) createShift(c echo.Context) error {
	log := s.log.With(slog.String("route", "create_shift"))

	var req createShiftRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	shift, err := s.svc.CreateShift(c.Request().Context(), booking.CreateShiftInput{
		EmployeeID: c.Param("id"),
		DayOfWeek:  req.DayOfWeek,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Location:   req.Location,
	})
	if err != nil {
		return s.writeError(c, log, err)
	}

	log.Info("shift created",
		slog.String("employee_id", shift.EmployeeID),
		slog.Int("day_of_week", shift.DayOfWeek),
	)
	return c.JSON(http.StatusCreated, toShiftResponse(shift))
}

func (s *BookingServer) deleteShift(c echo.Context) error {
	log := s.log.With(slog.String("route", "delete_shift"))

	shiftID, err := strconv.ParseInt(c.Param("shiftID"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "shift id must be an integer"})
	}
	if err := s.svc.DeleteShift(c.Request().Context(), c.Param("id"), shiftID); err != nil {
		return s.writeError(c, log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type blockedPeriodResponse struct {
	ID         int64     `json:"id"`
	EmployeeID string    `json:"employee_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Reason     string    `json:"reason,omitempty"`
}

func toBlockedPeriodResponse(b domain.BlockedPeriod) blockedPeriodResponse {
	return blockedPeriodResponse{
		ID:         b.ID,
		EmployeeID: b.EmployeeID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Reason:     b.Reason,
	}
}

func (s *BookingServer) listBlockedPeriods(c echo.Context) error {
	log := s.log.With(slog.String("route", "list_blocked_periods"))

	rows, err := s.svc.BlockedPeriods(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.writeError(c, log, err)
	}
	out := make([]blockedPeriodResponse, 0, len(rows))
	for _, b := range rows {
		out = append(out, toBlockedPeriodResponse(b))
	}
	return c.JSON(http.StatusOK, map[string]any{"blocked_periods": out})
}

type createBlockedPeriodRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Reason    string    `json:"reason"`
}

func (s *BookingServer) createBlockedPeriod(c echo.Context) error {
	log := s.log.With(slog.String("route", "create_blocked_period"))

	var req createBlockedPeriodRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	blocked, err := s.svc.CreateBlockedPeriod(c.Request().Context(), booking.CreateBlockedPeriodInput{
		EmployeeID: c.Param("id"),
		Interval:   domain.Interval{Start: req.StartTime, End: req.EndTime},
		Reason:     req.Reason,
	})
	if err != nil {
		return s.writeError(c, log, err)
	}

	log.Info("blocked period created",
		slog.String("employee_id", blocked.EmployeeID),
		slog.Time("start_time", blocked.StartTime),
	)
	return c.JSON(http.StatusCreated, toBlockedPeriodResponse(blocked))
}

func (s *BookingServer) deleteBlockedPeriod(c echo.Context) error {
	log := s.log.With(slog.String("route", "delete_blocked_period"))

	blockedID, err := strconv.ParseInt(c.Param("blockedID"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "blocked period id must be an integer"})
	}
	if err := s.svc.DeleteBlockedPeriod(c.Request().Context(), c.Param("id"), blockedID); err != nil {
		return s.writeError(c, log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
