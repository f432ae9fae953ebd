package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/store"
)

// BookingRepo implements store.BookingRepository on Postgres. Mutating
// operations take a per-employee advisory lock for the duration of the
// transaction; the appointments_no_overlap exclusion constraint is the
// backstop should the explicit re-check ever be bypassed.
type BookingRepo struct {
	db *bun.DB
}

func NewBookingRepo(db *bun.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

type bookingTx struct {
	tx bun.Tx
}

func (r *BookingRepo) Reserve(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.InEmployeeTransaction(ctx, appt.EmployeeID, func(ctx context.Context, tx store.BookingTx) error {
		if err := ensureSlotFree(ctx, tx, appt.EmployeeID, appt.Interval(), uuid.Nil); err != nil {
			return err
		}
		a, err := tx.CreateAppointment(ctx, appt)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (r *BookingRepo) Reschedule(ctx context.Context, appointmentID uuid.UUID, newInterval domain.Interval) (domain.Appointment, error) {
	current, err := r.Get(ctx, appointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}

	var out domain.Appointment
	err = r.InEmployeeTransaction(ctx, current.EmployeeID, func(ctx context.Context, tx store.BookingTx) error {
		appt, err := tx.GetAppointment(ctx, appointmentID)
		if err != nil {
			return err
		}
		if !appt.Status.Active() {
			return store.ErrInvalidTransition
		}
		if err := ensureSlotFree(ctx, tx, appt.EmployeeID, newInterval, appt.ID); err != nil {
			return err
		}
		a, err := tx.UpdateAppointmentInterval(ctx, appt.ID, newInterval)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (r *BookingRepo) Transition(ctx context.Context, appointmentID uuid.UUID, next domain.AppointmentStatus) (domain.Appointment, error) {
	current, err := r.Get(ctx, appointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}

	var out domain.Appointment
	err = r.InEmployeeTransaction(ctx, current.EmployeeID, func(ctx context.Context, tx store.BookingTx) error {
		appt, err := tx.GetAppointment(ctx, appointmentID)
		if err != nil {
			return err
		}
		if !appt.Status.CanTransitionTo(next) {
			return store.ErrInvalidTransition
		}
		a, err := tx.UpdateAppointmentStatus(ctx, appt.ID, next)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

func (r *BookingRepo) Get(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error) {
	var appt domain.Appointment
	err := r.db.NewSelect().
		Model(&appt).
		Where("id = ?", appointmentID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrAppointmentNotFound
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}

func (r *BookingRepo) ListDayAppointments(ctx context.Context, employeeIDs []string, dayStart, dayEnd time.Time) ([]domain.Appointment, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("employee_id IN (?)", bun.In(employeeIDs)).
		Where("status IN (?)", bun.In([]domain.AppointmentStatus{domain.AppointmentStatusPending, domain.AppointmentStatusConfirmed})).
		Where("start_time < ?", dayEnd).
		Where("end_time > ?", dayStart).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) ListDayBlockedPeriods(ctx context.Context, employeeIDs []string, dayStart, dayEnd time.Time) ([]domain.BlockedPeriod, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	var rows []domain.BlockedPeriod
	err := r.db.NewSelect().
		Model(&rows).
		Where("employee_id IN (?)", bun.In(employeeIDs)).
		Where("start_time < ?", dayEnd).
		Where("end_time > ?", dayStart).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) ListShiftsForDay(ctx context.Context, employeeIDs []string, dayOfWeek int) ([]domain.Shift, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	var rows []domain.Shift
	err := r.db.NewSelect().
		Model(&rows).
		Where("employee_id IN (?)", bun.In(employeeIDs)).
		Where("day_of_week = ?", dayOfWeek).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// InEmployeeTransaction runs fn inside a transaction holding the employee's
// advisory lock, serializing conflicting claims on the same employee while
// leaving other employees fully concurrent.
func (r *BookingRepo) InEmployeeTransaction(ctx context.Context, employeeID string, fn func(ctx context.Context, tx store.BookingTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockEmployeeSchedule(ctx, tx, employeeID); err != nil {
			return err
		}
		return fn(ctx, bookingTx{tx: tx})
	})
}

func lockEmployeeSchedule(ctx context.Context, tx bun.Tx, employeeID string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", employeeID).Exec(ctx)
	return err
}

// ensureSlotFree re-runs the overlap test against the current state of the
// employee's blocked periods and non-terminal appointments. Must run under
// the employee's advisory lock to make check-and-claim atomic.
func ensureSlotFree(ctx context.Context, tx store.BookingTx, employeeID string, interval domain.Interval, excludeID uuid.UUID) error {
	if !interval.Valid() {
		return store.ErrSlotUnavailable
	}

	appts, err := tx.ListOverlappingAppointments(ctx, employeeID, interval, excludeID)
	if err != nil {
		return err
	}
	if len(appts) > 0 {
		return store.ErrSlotUnavailable
	}

	blocked, err := tx.ListOverlappingBlockedPeriods(ctx, employeeID, interval)
	if err != nil {
		return err
	}
	if len(blocked) > 0 {
		return store.ErrSlotUnavailable
	}

	return nil
}

func (t bookingTx) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error) {
	var appt domain.Appointment
	err := t.tx.NewSelect().
		Model(&appt).
		Where("id = ?", appointmentID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrAppointmentNotFound
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}

func (t bookingTx) CreateAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	_, err := t.tx.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" && pgErr.ConstraintName == "appointments_no_overlap" {
			return domain.Appointment{}, store.ErrSlotUnavailable
		}
		return domain.Appointment{}, err
	}
	return m, nil
}

func (t bookingTx) UpdateAppointmentInterval(ctx context.Context, appointmentID uuid.UUID, interval domain.Interval) (domain.Appointment, error) {
	m := domain.Appointment{ID: appointmentID}
	res, err := t.tx.NewUpdate().
		Model(&m).
		Set("start_time = ?", interval.Start.UTC()).
		Set("end_time = ?", interval.End.UTC()).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", appointmentID).
		Returning("*").
		Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" && pgErr.ConstraintName == "appointments_no_overlap" {
			return domain.Appointment{}, store.ErrSlotUnavailable
		}
		return domain.Appointment{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, err
	}
	if affected == 0 {
		return domain.Appointment{}, store.ErrAppointmentNotFound
	}
	return m, nil
}

func (t bookingTx) UpdateAppointmentStatus(ctx context.Context, appointmentID uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error) {
	m := domain.Appointment{ID: appointmentID}
	res, err := t.tx.NewUpdate().
		Model(&m).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", appointmentID).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, err
	}
	if affected == 0 {
		return domain.Appointment{}, store.ErrAppointmentNotFound
	}
	return m, nil
}

func (t bookingTx) ListOverlappingAppointments(ctx context.Context, employeeID string, interval domain.Interval, excludeID uuid.UUID) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	q := t.tx.NewSelect().
		Model(&rows).
		Where("employee_id = ?", employeeID).
		Where("status IN (?)", bun.In([]domain.AppointmentStatus{domain.AppointmentStatusPending, domain.AppointmentStatusConfirmed})).
		Where("start_time < ?", interval.End).
		Where("end_time > ?", interval.Start)
	if excludeID != uuid.Nil {
		q = q.Where("id != ?", excludeID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (t bookingTx) ListOverlappingBlockedPeriods(ctx context.Context, employeeID string, interval domain.Interval) ([]domain.BlockedPeriod, error) {
	var rows []domain.BlockedPeriod
	err := t.tx.NewSelect().
		Model(&rows).
		Where("employee_id = ?", employeeID).
		Where("start_time < ?", interval.End).
		Where("end_time > ?", interval.Start).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
