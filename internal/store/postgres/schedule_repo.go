package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/store"
)

// ScheduleRepo implements store.ScheduleRepository. Shifts and blocked
// periods have a direct create/delete lifecycle with no intermediate states.
type ScheduleRepo struct {
	db *bun.DB
}

func NewScheduleRepo(db *bun.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

func (r *ScheduleRepo) CreateShift(ctx context.Context, shift domain.Shift) (domain.Shift, error) {
	m := shift
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.Shift{}, err
	}
	return m, nil
}

func (r *ScheduleRepo) DeleteShift(ctx context.Context, employeeID string, shiftID int64) error {
	res, err := r.db.NewDelete().
		Model((*domain.Shift)(nil)).
		Where("employee_id = ?", employeeID).
		Where("id = ?", shiftID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *ScheduleRepo) ListShifts(ctx context.Context, employeeID string) ([]domain.Shift, error) {
	var rows []domain.Shift
	err := r.db.NewSelect().
		Model(&rows).
		Where("employee_id = ?", employeeID).
		OrderExpr("day_of_week ASC, start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ScheduleRepo) CreateBlockedPeriod(ctx context.Context, blocked domain.BlockedPeriod) (domain.BlockedPeriod, error) {
	m := blocked
	m.StartTime = m.StartTime.UTC()
	m.EndTime = m.EndTime.UTC()
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.BlockedPeriod{}, err
	}
	return m, nil
}

func (r *ScheduleRepo) DeleteBlockedPeriod(ctx context.Context, employeeID string, blockedID int64) error {
	res, err := r.db.NewDelete().
		Model((*domain.BlockedPeriod)(nil)).
		Where("employee_id = ?", employeeID).
		Where("id = ?", blockedID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *ScheduleRepo) ListBlockedPeriods(ctx context.Context, employeeID string) ([]domain.BlockedPeriod, error) {
	var rows []domain.BlockedPeriod
	err := r.db.NewSelect().
		Model(&rows).
		Where("employee_id = ?", employeeID).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
