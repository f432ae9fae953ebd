package booking

import (
	"context"

	"salonbook/backend/internal/domain"
)

type CreateShiftInput struct {
	EmployeeID string
	DayOfWeek  int
	StartTime  string
	EndTime    string
	Location   string
}

func (s *Service) CreateShift(ctx context.Context, in CreateShiftInput) (domain.Shift, error) {
	if in.EmployeeID == "" {
		return domain.Shift{}, validationError("employee_id is required")
	}
	if _, err := s.directory.Employee(ctx, in.EmployeeID); err != nil {
		return domain.Shift{}, err
	}

	shift := domain.Shift{
		EmployeeID: in.EmployeeID,
		DayOfWeek:  in.DayOfWeek,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Location:   in.Location,
	}
	if err := shift.Validate(); err != nil {
		return domain.Shift{}, validationError(err.Error())
	}
	return s.schedules.CreateShift(ctx, shift)
}

func (s *Service) DeleteShift(ctx context.Context, employeeID string, shiftID int64) error {
	if employeeID == "" {
		return validationError("employee_id is required")
	}
	return s.schedules.DeleteShift(ctx, employeeID, shiftID)
}

func (s *Service) Shifts(ctx context.Context, employeeID string) ([]domain.Shift, error) {
	if employeeID == "" {
		return nil, validationError("employee_id is required")
	}
	return s.schedules.ListShifts(ctx, employeeID)
}

type CreateBlockedPeriodInput struct {
	EmployeeID string
	Interval   domain.Interval
	Reason     string
}

func (s *Service) CreateBlockedPeriod(ctx context.Context, in CreateBlockedPeriodInput) (domain.BlockedPeriod, error) {
	if in.EmployeeID == "" {
		return domain.BlockedPeriod{}, validationError("employee_id is required")
	}
	if _, err := s.directory.Employee(ctx, in.EmployeeID); err != nil {
		return domain.BlockedPeriod{}, err
	}
	if !in.Interval.Valid() {
		return domain.BlockedPeriod{}, validationError("end_time must be after start_time")
	}

	return s.schedules.CreateBlockedPeriod(ctx, domain.BlockedPeriod{
		EmployeeID: in.EmployeeID,
		StartTime:  in.Interval.Start.UTC(),
		EndTime:    in.Interval.End.UTC(),
		Reason:     in.Reason,
	})
}

func (s *Service) DeleteBlockedPeriod(ctx context.Context, employeeID string, blockedID int64) error {
	if employeeID == "" {
		return validationError("employee_id is required")
	}
	return s.schedules.DeleteBlockedPeriod(ctx, employeeID, blockedID)
}

func (s *Service) BlockedPeriods(ctx context.Context, employeeID string) ([]domain.BlockedPeriod, error) {
	if employeeID == "" {
		return nil, validationError("employee_id is required")
	}
	return s.schedules.ListBlockedPeriods(ctx, employeeID)
}
