package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"salonbook/backend/internal/domain"
)

// BookingRepository owns appointment reservations. Reserve, Reschedule and
// Transition serialize conflicting operations per employee; reads run without
// any lock.
type BookingRepository interface {
	// Reserve atomically re-checks the interval against the employee's
	// blocked periods and non-terminal appointments and inserts the
	// appointment in pending state. Conflicts fail with ErrSlotUnavailable.
	Reserve(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)

	// Reschedule moves the appointment to the new interval, excluding its
	// own row from the conflict check. Release of the old interval and claim
	// of the new one are one atomic unit; on failure the appointment keeps
	// its original interval.
	Reschedule(ctx context.Context, appointmentID uuid.UUID, newInterval domain.Interval) (domain.Appointment, error)

	// Transition applies a lifecycle move, failing with ErrInvalidTransition
	// when the current status does not permit it.
	Transition(ctx context.Context, appointmentID uuid.UUID, next domain.AppointmentStatus) (domain.Appointment, error)

	Get(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error)

	// ListDayAppointments returns non-terminal appointments of the given
	// employees overlapping [dayStart, dayEnd).
	ListDayAppointments(ctx context.Context, employeeIDs []string, dayStart, dayEnd time.Time) ([]domain.Appointment, error)
	ListDayBlockedPeriods(ctx context.Context, employeeIDs []string, dayStart, dayEnd time.Time) ([]domain.BlockedPeriod, error)
	ListShiftsForDay(ctx context.Context, employeeIDs []string, dayOfWeek int) ([]domain.Shift, error)
}

// BookingTx is the transactional surface the check-and-claim runs against.
type BookingTx interface {
	GetAppointment(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error)
	CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	UpdateAppointmentInterval(ctx context.Context, appointmentID uuid.UUID, interval domain.Interval) (domain.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, appointmentID uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error)

	// ListOverlappingAppointments returns non-terminal appointments of the
	// employee overlapping the interval, skipping excludeID when non-nil.
	ListOverlappingAppointments(ctx context.Context, employeeID string, interval domain.Interval, excludeID uuid.UUID) ([]domain.Appointment, error)
	ListOverlappingBlockedPeriods(ctx context.Context, employeeID string, interval domain.Interval) ([]domain.BlockedPeriod, error)
}

// ScheduleRepository manages the availability inputs owned by employees and
// admins: recurring shift templates and one-off blocked periods.
type ScheduleRepository interface {
	CreateShift(ctx context.Context, shift domain.Shift) (domain.Shift, error)
	DeleteShift(ctx context.Context, employeeID string, shiftID int64) error
	ListShifts(ctx context.Context, employeeID string) ([]domain.Shift, error)

	CreateBlockedPeriod(ctx context.Context, blocked domain.BlockedPeriod) (domain.BlockedPeriod, error)
	DeleteBlockedPeriod(ctx context.Context, employeeID string, blockedID int64) error
	ListBlockedPeriods(ctx context.Context, employeeID string) ([]domain.BlockedPeriod, error)
}

// Directory is the read-only service/employee lookup the engine consumes.
type Directory interface {
	Service(ctx context.Context, serviceID int64) (domain.Service, error)
	Employee(ctx context.Context, employeeID string) (domain.Employee, error)
	Employees(ctx context.Context) ([]domain.Employee, error)
}
