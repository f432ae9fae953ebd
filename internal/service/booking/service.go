package booking

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// Payments records a payment intent for a freshly created appointment. It is
// invoked after the reservation commits; a failure here never rolls the
// reservation back, the appointment stays pending.
type Payments interface {
	RecordBooking(ctx context.Context, appt domain.Appointment, amount float64) error
}

// Notifier dispatches booking lifecycle notifications, fire-and-forget.
type Notifier interface {
	AppointmentBooked(ctx context.Context, appt domain.Appointment) error
	AppointmentRescheduled(ctx context.Context, appt domain.Appointment) error
	AppointmentCancelled(ctx context.Context, appt domain.Appointment) error
}

type Deps struct {
	Bookings  store.BookingRepository
	Schedules store.ScheduleRepository
	Directory store.Directory

	Payments Payments       // optional
	Notifier Notifier       // optional
	Location *time.Location // salon wall-clock location, defaults to UTC
	Log      *slog.Logger
	Now      func() time.Time
}

type Service struct {
	bookings  store.BookingRepository
	schedules store.ScheduleRepository
	directory store.Directory
	payments  Payments
	notifier  Notifier
	loc       *time.Location
	log       *slog.Logger
	now       func() time.Time
}

func NewService(deps Deps) *Service {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		bookings:  deps.Bookings,
		schedules: deps.Schedules,
		directory: deps.Directory,
		payments:  deps.Payments,
		notifier:  deps.Notifier,
		loc:       loc,
		log:       log.With(slog.String("component", "booking")),
		now:       now,
	}
}

// activeService resolves a service id, treating inactive services the same as
// missing ones.
func (s *Service) activeService(ctx context.Context, serviceID int64) (domain.Service, error) {
	svc, err := s.directory.Service(ctx, serviceID)
	if err != nil {
		return domain.Service{}, err
	}
	if !svc.IsActive {
		return domain.Service{}, store.ErrServiceNotFound
	}
	return svc, nil
}

type BookInput struct {
	CustomerID string
	EmployeeID string
	ServiceID  int64
	StartTime  time.Time
	Notes      string
	CouponID   *int64
}

// Book reserves the slot and creates the appointment in pending state. The
// end instant is always computed from the service duration at call time.
func (s *Service) Book(ctx context.Context, in BookInput) (domain.Appointment, error) {
	if in.CustomerID == "" {
		return domain.Appointment{}, validationError("customer_id is required")
	}
	if in.EmployeeID == "" {
		return domain.Appointment{}, validationError("employee_id is required")
	}

	if _, err := s.directory.Employee(ctx, in.EmployeeID); err != nil {
		return domain.Appointment{}, err
	}
	svc, err := s.activeService(ctx, in.ServiceID)
	if err != nil {
		return domain.Appointment{}, err
	}

	start := in.StartTime.UTC()
	if !start.After(s.now().UTC()) {
		return domain.Appointment{}, validationError("start_time must be in the future")
	}
	interval := domain.Interval{Start: start, End: start.Add(svc.Duration())}
	if !interval.Valid() {
		return domain.Appointment{}, validationError("computed interval is empty")
	}

	appt, err := s.bookings.Reserve(ctx, domain.Appointment{
		CustomerID: in.CustomerID,
		EmployeeID: in.EmployeeID,
		ServiceID:  svc.ID,
		StartTime:  interval.Start,
		EndTime:    interval.End,
		Status:     domain.AppointmentStatusPending,
		CouponID:   in.CouponID,
		Notes:      strings.TrimSpace(in.Notes),
	})
	if err != nil {
		return domain.Appointment{}, err
	}

	if s.payments != nil {
		if err := s.payments.RecordBooking(ctx, appt, svc.BasePrice); err != nil {
			s.log.Warn("payment record failed; appointment stays pending",
				slog.Any("err", err),
				slog.String("appointment_id", appt.ID.String()),
			)
		}
	}
	s.notify(ctx, "booked", appt, func(n Notifier) error { return n.AppointmentBooked(ctx, appt) })

	return appt, nil
}

type RescheduleInput struct {
	AppointmentID uuid.UUID
	StartTime     time.Time
}

// Reschedule re-runs the reservation guard for the new interval, excluding
// the appointment's own row. On failure the original interval is untouched.
// The service is looked up without the is_active check: an existing
// appointment for a since-retired service can still be moved, it just cannot
// be booked anew.
func (s *Service) Reschedule(ctx context.Context, in RescheduleInput) (domain.Appointment, error) {
	if in.AppointmentID == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id is required")
	}

	current, err := s.bookings.Get(ctx, in.AppointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}
	svc, err := s.directory.Service(ctx, current.ServiceID)
	if err != nil {
		return domain.Appointment{}, err
	}

	start := in.StartTime.UTC()
	if !start.After(s.now().UTC()) {
		return domain.Appointment{}, validationError("start_time must be in the future")
	}

	appt, err := s.bookings.Reschedule(ctx, in.AppointmentID, domain.Interval{
		Start: start,
		End:   start.Add(svc.Duration()),
	})
	if err != nil {
		return domain.Appointment{}, err
	}

	s.notify(ctx, "rescheduled", appt, func(n Notifier) error { return n.AppointmentRescheduled(ctx, appt) })
	return appt, nil
}

func (s *Service) Confirm(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error) {
	return s.transition(ctx, appointmentID, domain.AppointmentStatusConfirmed)
}

func (s *Service) Cancel(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error) {
	appt, err := s.transition(ctx, appointmentID, domain.AppointmentStatusCancelled)
	if err != nil {
		return domain.Appointment{}, err
	}
	s.notify(ctx, "cancelled", appt, func(n Notifier) error { return n.AppointmentCancelled(ctx, appt) })
	return appt, nil
}

func (s *Service) Complete(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error) {
	return s.transition(ctx, appointmentID, domain.AppointmentStatusCompleted)
}

func (s *Service) MarkNoShow(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error) {
	return s.transition(ctx, appointmentID, domain.AppointmentStatusNoShow)
}

func (s *Service) transition(ctx context.Context, appointmentID uuid.UUID, next domain.AppointmentStatus) (domain.Appointment, error) {
	if appointmentID == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id is required")
	}
	return s.bookings.Transition(ctx, appointmentID, next)
}

func (s *Service) Appointment(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error) {
	if appointmentID == uuid.Nil {
		return domain.Appointment{}, validationError("appointment_id is required")
	}
	return s.bookings.Get(ctx, appointmentID)
}

func (s *Service) notify(ctx context.Context, event string, appt domain.Appointment, fn func(Notifier) error) {
	if s.notifier == nil {
		return
	}
	if err := fn(s.notifier); err != nil {
		s.log.Warn("notification dispatch failed",
			slog.Any("err", err),
			slog.String("event", event),
			slog.String("appointment_id", appt.ID.String()),
		)
	}
}
