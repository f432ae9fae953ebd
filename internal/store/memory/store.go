// Package memory is an in-process implementation of the booking store for
// deployments where the engine is the sole writer, and for tests. Mutual
// exclusion is per employee: conflicting claims on one employee serialize on
// that employee's mutex while other employees proceed concurrently.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/store"
)

type Store struct {
	mu            sync.RWMutex
	employeeLocks map[string]*sync.Mutex

	appointments map[uuid.UUID]domain.Appointment
	shifts       map[int64]domain.Shift
	blocked      map[int64]domain.BlockedPeriod
	services     map[int64]domain.Service
	employees    map[string]domain.Employee

	nextShiftID   int64
	nextBlockedID int64
	nextServiceID int64
}

func NewStore() *Store {
	return &Store{
		employeeLocks: make(map[string]*sync.Mutex),
		appointments:  make(map[uuid.UUID]domain.Appointment),
		shifts:        make(map[int64]domain.Shift),
		blocked:       make(map[int64]domain.BlockedPeriod),
		services:      make(map[int64]domain.Service),
		employees:     make(map[string]domain.Employee),
	}
}

func (s *Store) employeeLock(employeeID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.employeeLocks[employeeID]
	if !ok {
		l = &sync.Mutex{}
		s.employeeLocks[employeeID] = l
	}
	return l
}

// hasConflict reports whether the interval overlaps a blocked period or a
// non-terminal appointment of the employee. Callers must hold s.mu.
func (s *Store) hasConflict(employeeID string, interval domain.Interval, excludeID uuid.UUID) bool {
	for _, a := range s.appointments {
		if a.EmployeeID != employeeID || !a.Status.Active() || a.ID == excludeID {
			continue
		}
		if a.Interval().Overlaps(interval) {
			return true
		}
	}
	for _, b := range s.blocked {
		if b.EmployeeID != employeeID {
			continue
		}
		if b.Interval().Overlaps(interval) {
			return true
		}
	}
	return false
}

func (s *Store) Reserve(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	lock := s.employeeLock(appt.EmployeeID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !appt.Interval().Valid() || s.hasConflict(appt.EmployeeID, appt.Interval(), uuid.Nil) {
		return domain.Appointment{}, store.ErrSlotUnavailable
	}

	if appt.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Appointment{}, err
		}
		appt.ID = id
	}
	now := time.Now().UTC()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = now
	}
	appt.UpdatedAt = now
	appt.StartTime = appt.StartTime.UTC()
	appt.EndTime = appt.EndTime.UTC()

	s.appointments[appt.ID] = appt
	return appt, nil
}

func (s *Store) Reschedule(ctx context.Context, appointmentID uuid.UUID, newInterval domain.Interval) (domain.Appointment, error) {
	current, err := s.Get(ctx, appointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}

	lock := s.employeeLock(current.EmployeeID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appointments[appointmentID]
	if !ok {
		return domain.Appointment{}, store.ErrAppointmentNotFound
	}
	if !appt.Status.Active() {
		return domain.Appointment{}, store.ErrInvalidTransition
	}
	if !newInterval.Valid() || s.hasConflict(appt.EmployeeID, newInterval, appt.ID) {
		return domain.Appointment{}, store.ErrSlotUnavailable
	}

	appt.StartTime = newInterval.Start.UTC()
	appt.EndTime = newInterval.End.UTC()
	appt.UpdatedAt = time.Now().UTC()
	s.appointments[appt.ID] = appt
	return appt, nil
}

func (s *Store) Transition(ctx context.Context, appointmentID uuid.UUID, next domain.AppointmentStatus) (domain.Appointment, error) {
	current, err := s.Get(ctx, appointmentID)
	if err != nil {
		return domain.Appointment{}, err
	}

	lock := s.employeeLock(current.EmployeeID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.appointments[appointmentID]
	if !ok {
		return domain.Appointment{}, store.ErrAppointmentNotFound
	}
	if !appt.Status.CanTransitionTo(next) {
		return domain.Appointment{}, store.ErrInvalidTransition
	}

	appt.Status = next
	appt.UpdatedAt = time.Now().UTC()
	s.appointments[appt.ID] = appt
	return appt, nil
}

func (s *Store) Get(ctx context.Context, appointmentID uuid.UUID) (domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	appt, ok := s.appointments[appointmentID]
	if !ok {
		return domain.Appointment{}, store.ErrAppointmentNotFound
	}
	return appt, nil
}

func (s *Store) ListDayAppointments(ctx context.Context, employeeIDs []string, dayStart, dayEnd time.Time) ([]domain.Appointment, error) {
	window := domain.Interval{Start: dayStart, End: dayEnd}
	ids := toSet(employeeIDs)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Appointment
	for _, a := range s.appointments {
		if _, ok := ids[a.EmployeeID]; !ok || !a.Status.Active() {
			continue
		}
		if a.Interval().Overlaps(window) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *Store) ListDayBlockedPeriods(ctx context.Context, employeeIDs []string, dayStart, dayEnd time.Time) ([]domain.BlockedPeriod, error) {
	window := domain.Interval{Start: dayStart, End: dayEnd}
	ids := toSet(employeeIDs)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.BlockedPeriod
	for _, b := range s.blocked {
		if _, ok := ids[b.EmployeeID]; !ok {
			continue
		}
		if b.Interval().Overlaps(window) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *Store) ListShiftsForDay(ctx context.Context, employeeIDs []string, dayOfWeek int) ([]domain.Shift, error) {
	ids := toSet(employeeIDs)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Shift
	for _, sh := range s.shifts {
		if _, ok := ids[sh.EmployeeID]; !ok || sh.DayOfWeek != dayOfWeek {
			continue
		}
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *Store) CreateShift(ctx context.Context, shift domain.Shift) (domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextShiftID++
	shift.ID = s.nextShiftID
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = time.Now().UTC()
	}
	s.shifts[shift.ID] = shift
	return shift, nil
}

func (s *Store) DeleteShift(ctx context.Context, employeeID string, shiftID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shifts[shiftID]
	if !ok || sh.EmployeeID != employeeID {
		return store.ErrNotFound
	}
	delete(s.shifts, shiftID)
	return nil
}

func (s *Store) ListShifts(ctx context.Context, employeeID string) ([]domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Shift
	for _, sh := range s.shifts {
		if sh.EmployeeID == employeeID {
			out = append(out, sh)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *Store) CreateBlockedPeriod(ctx context.Context, blocked domain.BlockedPeriod) (domain.BlockedPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBlockedID++
	blocked.ID = s.nextBlockedID
	blocked.StartTime = blocked.StartTime.UTC()
	blocked.EndTime = blocked.EndTime.UTC()
	if blocked.CreatedAt.IsZero() {
		blocked.CreatedAt = time.Now().UTC()
	}
	s.blocked[blocked.ID] = blocked
	return blocked, nil
}

func (s *Store) DeleteBlockedPeriod(ctx context.Context, employeeID string, blockedID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocked[blockedID]
	if !ok || b.EmployeeID != employeeID {
		return store.ErrNotFound
	}
	delete(s.blocked, blockedID)
	return nil
}

func (s *Store) ListBlockedPeriods(ctx context.Context, employeeID string) ([]domain.BlockedPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.BlockedPeriod
	for _, b := range s.blocked {
		if b.EmployeeID == employeeID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *Store) Service(ctx context.Context, serviceID int64) (domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[serviceID]
	if !ok {
		return domain.Service{}, store.ErrServiceNotFound
	}
	return svc, nil
}

func (s *Store) Employee(ctx context.Context, employeeID string) (domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emp, ok := s.employees[employeeID]
	if !ok || emp.Role != domain.RoleEmployee {
		return domain.Employee{}, store.ErrEmployeeNotFound
	}
	return emp, nil
}

func (s *Store) Employees(ctx context.Context) ([]domain.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Employee
	for _, e := range s.employees {
		if e.Role == domain.RoleEmployee {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

// AddService seeds the directory and returns the assigned id.
func (s *Store) AddService(svc domain.Service) domain.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.ID == 0 {
		s.nextServiceID++
		svc.ID = s.nextServiceID
	}
	s.services[svc.ID] = svc
	return svc
}

// AddEmployee seeds the directory.
func (s *Store) AddEmployee(emp domain.Employee) domain.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if emp.Role == "" {
		emp.Role = domain.RoleEmployee
	}
	s.employees[emp.ID] = emp
	return emp
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
