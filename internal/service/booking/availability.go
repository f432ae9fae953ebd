package booking

import (
	"context"
	"sort"
	"time"

	"salonbook/backend/internal/domain"
)

type AvailabilityInput struct {
	ServiceID  int64
	Date       time.Time
	EmployeeID string // optional; empty means any employee
}

// Availability computes the free slots for a service on a calendar day. A
// slot is returned when at least one candidate employee can take it; when an
// employee is requested, only that employee counts. The computation is a
// read-only projection over shifts, blocked periods and non-terminal
// appointments, so repeated calls with no intervening mutation return the
// same set.
func (s *Service) Availability(ctx context.Context, in AvailabilityInput) ([]domain.Interval, error) {
	svc, err := s.activeService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	var employees []string
	if in.EmployeeID != "" {
		if _, err := s.directory.Employee(ctx, in.EmployeeID); err != nil {
			return nil, err
		}
		employees = []string{in.EmployeeID}
	} else {
		all, err := s.directory.Employees(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range all {
			employees = append(employees, e.ID)
		}
	}
	if len(employees) == 0 {
		return nil, nil
	}

	// The date's year/month/day fields name the requested calendar day no
	// matter what location the caller parsed them in; re-reading the instant
	// in the salon location would shift the day for non-UTC salons.
	dayStart := time.Date(in.Date.Year(), in.Date.Month(), in.Date.Day(), 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.AddDate(0, 0, 1)
	dayOfWeek := int(dayStart.Weekday())

	shifts, err := s.bookings.ListShiftsForDay(ctx, employees, dayOfWeek)
	if err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		return nil, nil
	}

	appts, err := s.bookings.ListDayAppointments(ctx, employees, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return nil, err
	}
	blocked, err := s.bookings.ListDayBlockedPeriods(ctx, employees, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return nil, err
	}

	busyByEmployee := make(map[string][]domain.Interval)
	for _, a := range appts {
		busyByEmployee[a.EmployeeID] = append(busyByEmployee[a.EmployeeID], a.Interval().UTC())
	}
	for _, b := range blocked {
		busyByEmployee[b.EmployeeID] = append(busyByEmployee[b.EmployeeID], b.Interval().UTC())
	}

	// Candidates are evaluated per employee, then unioned by start instant:
	// a time is free overall when any one employee is free for it.
	free := make(map[int64]domain.Interval)
	for _, sh := range shifts {
		window, err := sh.Window(dayStart, s.loc)
		if err != nil {
			return nil, err
		}
		candidates := domain.CandidateSlots(window, svc.Duration())
		for _, slot := range domain.FreeSlots(candidates, busyByEmployee[sh.EmployeeID]) {
			free[slot.Start.UnixNano()] = slot
		}
	}

	out := make([]domain.Interval, 0, len(free))
	for _, slot := range free {
		out = append(out, slot)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}
