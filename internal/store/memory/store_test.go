package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/store"
)

func apptAt(employeeID string, start time.Time, d time.Duration) domain.Appointment {
	return domain.Appointment{
		CustomerID: "customer-1",
		EmployeeID: employeeID,
		ServiceID:  1,
		StartTime:  start,
		EndTime:    start.Add(d),
		Status:     domain.AppointmentStatusPending,
	}
}

func TestReserveConcurrentSameSlotSingleWinner(t *testing.T) {
	s := NewStore()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)

	const workers = 16
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Reserve(context.Background(), apptAt("emp-1", start, time.Hour))
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, store.ErrSlotUnavailable):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("winners = %d, want exactly 1", won)
	}
	if lost != workers-1 {
		t.Fatalf("losers = %d, want %d", lost, workers-1)
	}
}

func TestReserveDifferentEmployeesDoNotContend(t *testing.T) {
	s := NewStore()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)

	if _, err := s.Reserve(context.Background(), apptAt("emp-1", start, time.Hour)); err != nil {
		t.Fatalf("Reserve emp-1 error: %v", err)
	}
	if _, err := s.Reserve(context.Background(), apptAt("emp-2", start, time.Hour)); err != nil {
		t.Fatalf("Reserve emp-2 error: %v", err)
	}
}

func TestReserveBackToBackSlots(t *testing.T) {
	s := NewStore()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)

	if _, err := s.Reserve(context.Background(), apptAt("emp-1", start, time.Hour)); err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if _, err := s.Reserve(context.Background(), apptAt("emp-1", start.Add(time.Hour), time.Hour)); err != nil {
		t.Fatalf("back-to-back Reserve error: %v", err)
	}
}

func TestReserveRejectsOverlapWithBlockedPeriod(t *testing.T) {
	s := NewStore()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)

	_, err := s.CreateBlockedPeriod(context.Background(), domain.BlockedPeriod{
		EmployeeID: "emp-1",
		StartTime:  start.Add(30 * time.Minute),
		EndTime:    start.Add(90 * time.Minute),
	})
	if err != nil {
		t.Fatalf("CreateBlockedPeriod error: %v", err)
	}

	if _, err := s.Reserve(context.Background(), apptAt("emp-1", start, time.Hour)); !errors.Is(err, store.ErrSlotUnavailable) {
		t.Fatalf("error = %v, want %v", err, store.ErrSlotUnavailable)
	}
}

func TestReserveRejectsInvalidInterval(t *testing.T) {
	s := NewStore()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)

	_, err := s.Reserve(context.Background(), domain.Appointment{
		EmployeeID: "emp-1",
		StartTime:  start,
		EndTime:    start,
		Status:     domain.AppointmentStatusPending,
	})
	if !errors.Is(err, store.ErrSlotUnavailable) {
		t.Fatalf("error = %v, want %v", err, store.ErrSlotUnavailable)
	}
}

func TestRescheduleConflictPreservesOriginalInterval(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)

	if _, err := s.Reserve(ctx, apptAt("emp-1", start, time.Hour)); err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	second, err := s.Reserve(ctx, apptAt("emp-1", start.Add(2*time.Hour), time.Hour))
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}

	_, err = s.Reschedule(ctx, second.ID, domain.Interval{
		Start: start.Add(30 * time.Minute),
		End:   start.Add(90 * time.Minute),
	})
	if !errors.Is(err, store.ErrSlotUnavailable) {
		t.Fatalf("error = %v, want %v", err, store.ErrSlotUnavailable)
	}

	got, err := s.Get(ctx, second.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !got.StartTime.Equal(second.StartTime) || !got.EndTime.Equal(second.EndTime) {
		t.Fatalf("interval changed after failed reschedule: %v-%v", got.StartTime, got.EndTime)
	}
}

func TestRescheduleOverlappingOwnInterval(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)

	appt, err := s.Reserve(ctx, apptAt("emp-1", start, time.Hour))
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}

	// Shifting by 15 minutes overlaps the old interval; the appointment's
	// own row must not count as a conflict.
	got, err := s.Reschedule(ctx, appt.ID, domain.Interval{
		Start: start.Add(15 * time.Minute),
		End:   start.Add(75 * time.Minute),
	})
	if err != nil {
		t.Fatalf("Reschedule error: %v", err)
	}
	if !got.StartTime.Equal(start.Add(15 * time.Minute)) {
		t.Fatalf("start = %v, want %v", got.StartTime, start.Add(15*time.Minute))
	}
}

func TestRescheduleTerminalAppointment(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)

	appt, err := s.Reserve(ctx, apptAt("emp-1", start, time.Hour))
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if _, err := s.Transition(ctx, appt.ID, domain.AppointmentStatusCancelled); err != nil {
		t.Fatalf("Transition error: %v", err)
	}

	_, err = s.Reschedule(ctx, appt.ID, domain.Interval{
		Start: start.Add(3 * time.Hour),
		End:   start.Add(4 * time.Hour),
	})
	if !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("error = %v, want %v", err, store.ErrInvalidTransition)
	}
}

func TestCancelFreesSlotForRebooking(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)

	appt, err := s.Reserve(ctx, apptAt("emp-1", start, time.Hour))
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if _, err := s.Reserve(ctx, apptAt("emp-1", start, time.Hour)); !errors.Is(err, store.ErrSlotUnavailable) {
		t.Fatalf("error = %v, want %v", err, store.ErrSlotUnavailable)
	}

	if _, err := s.Transition(ctx, appt.ID, domain.AppointmentStatusCancelled); err != nil {
		t.Fatalf("Transition error: %v", err)
	}
	if _, err := s.Reserve(ctx, apptAt("emp-1", start, time.Hour)); err != nil {
		t.Fatalf("Reserve after cancel error: %v", err)
	}
}

func TestTransitionRules(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)

	appt, err := s.Reserve(ctx, apptAt("emp-1", start, time.Hour))
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}

	got, err := s.Transition(ctx, appt.ID, domain.AppointmentStatusConfirmed)
	if err != nil {
		t.Fatalf("confirm error: %v", err)
	}
	if got.Status != domain.AppointmentStatusConfirmed {
		t.Fatalf("status = %s, want confirmed", got.Status)
	}

	if _, err := s.Transition(ctx, appt.ID, domain.AppointmentStatusConfirmed); !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("repeated confirm error = %v, want %v", err, store.ErrInvalidTransition)
	}

	if _, err := s.Transition(ctx, appt.ID, domain.AppointmentStatusCompleted); err != nil {
		t.Fatalf("complete error: %v", err)
	}
	if _, err := s.Transition(ctx, appt.ID, domain.AppointmentStatusCancelled); !errors.Is(err, store.ErrInvalidTransition) {
		t.Fatalf("transition from terminal error = %v, want %v", err, store.ErrInvalidTransition)
	}
}

func TestTransitionUnknownAppointment(t *testing.T) {
	s := NewStore()
	_, err := s.Transition(context.Background(), uuid.New(), domain.AppointmentStatusConfirmed)
	if !errors.Is(err, store.ErrAppointmentNotFound) {
		t.Fatalf("error = %v, want %v", err, store.ErrAppointmentNotFound)
	}
}

func TestConcurrentReserveAndReschedule(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)

	existing, err := s.Reserve(ctx, apptAt("emp-1", start.Add(3*time.Hour), time.Hour))
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}

	// Both race for the 10:00 slot; exactly one may hold it afterwards.
	var wg sync.WaitGroup
	var reserveErr, rescheduleErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, reserveErr = s.Reserve(ctx, apptAt("emp-1", start, time.Hour))
	}()
	go func() {
		defer wg.Done()
		_, rescheduleErr = s.Reschedule(ctx, existing.ID, domain.Interval{Start: start, End: start.Add(time.Hour)})
	}()
	wg.Wait()

	if (reserveErr == nil) == (rescheduleErr == nil) {
		t.Fatalf("exactly one operation must win: reserve=%v reschedule=%v", reserveErr, rescheduleErr)
	}
	for _, err := range []error{reserveErr, rescheduleErr} {
		if err != nil && !errors.Is(err, store.ErrSlotUnavailable) {
			t.Fatalf("loser error = %v, want %v", err, store.ErrSlotUnavailable)
		}
	}
}

func TestListDayAppointmentsSkipsTerminalAndOtherEmployees(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
	dayStart := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	kept, err := s.Reserve(ctx, apptAt("emp-1", start, time.Hour))
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	cancelled, err := s.Reserve(ctx, apptAt("emp-1", start.Add(2*time.Hour), time.Hour))
	if err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if _, err := s.Transition(ctx, cancelled.ID, domain.AppointmentStatusCancelled); err != nil {
		t.Fatalf("Transition error: %v", err)
	}
	if _, err := s.Reserve(ctx, apptAt("emp-2", start, time.Hour)); err != nil {
		t.Fatalf("Reserve error: %v", err)
	}

	got, err := s.ListDayAppointments(ctx, []string{"emp-1"}, dayStart, dayEnd)
	if err != nil {
		t.Fatalf("ListDayAppointments error: %v", err)
	}
	if len(got) != 1 || got[0].ID != kept.ID {
		t.Fatalf("got %d appointments, want only the active emp-1 one", len(got))
	}
}

func TestShiftAndBlockedPeriodCRUD(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	shift, err := s.CreateShift(ctx, domain.Shift{EmployeeID: "emp-1", DayOfWeek: 1, StartTime: "09:00", EndTime: "17:00"})
	if err != nil {
		t.Fatalf("CreateShift error: %v", err)
	}
	if shift.ID == 0 {
		t.Fatalf("expected assigned shift id")
	}

	if err := s.DeleteShift(ctx, "emp-2", shift.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("delete with wrong employee = %v, want %v", err, store.ErrNotFound)
	}
	if err := s.DeleteShift(ctx, "emp-1", shift.ID); err != nil {
		t.Fatalf("DeleteShift error: %v", err)
	}
	shifts, err := s.ListShifts(ctx, "emp-1")
	if err != nil {
		t.Fatalf("ListShifts error: %v", err)
	}
	if len(shifts) != 0 {
		t.Fatalf("shifts = %d, want 0", len(shifts))
	}

	blocked, err := s.CreateBlockedPeriod(ctx, domain.BlockedPeriod{
		EmployeeID: "emp-1",
		StartTime:  time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2026, 9, 7, 13, 0, 0, 0, time.UTC),
		Reason:     "lunch",
	})
	if err != nil {
		t.Fatalf("CreateBlockedPeriod error: %v", err)
	}
	if err := s.DeleteBlockedPeriod(ctx, "emp-1", blocked.ID); err != nil {
		t.Fatalf("DeleteBlockedPeriod error: %v", err)
	}
	if err := s.DeleteBlockedPeriod(ctx, "emp-1", blocked.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("double delete = %v, want %v", err, store.ErrNotFound)
	}
}
