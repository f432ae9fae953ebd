package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"salonbook/backend/internal/domain"
	"salonbook/backend/internal/store"
)

// DirectoryRepo is the read-only service/employee lookup over the services
// and profiles tables.
type DirectoryRepo struct {
	db *bun.DB
}

func NewDirectoryRepo(db *bun.DB) *DirectoryRepo {
	return &DirectoryRepo{db: db}
}

func (r *DirectoryRepo) Service(ctx context.Context, serviceID int64) (domain.Service, error) {
	var svc domain.Service
	err := r.db.NewSelect().
		Model(&svc).
		Where("id = ?", serviceID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Service{}, store.ErrServiceNotFound
		}
		return domain.Service{}, err
	}
	return svc, nil
}

func (r *DirectoryRepo) Employee(ctx context.Context, employeeID string) (domain.Employee, error) {
	var emp domain.Employee
	err := r.db.NewSelect().
		Model(&emp).
		Where("id = ?", employeeID).
		Where("role = ?", domain.RoleEmployee).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Employee{}, store.ErrEmployeeNotFound
		}
		return domain.Employee{}, err
	}
	return emp, nil
}

func (r *DirectoryRepo) Employees(ctx context.Context) ([]domain.Employee, error) {
	var rows []domain.Employee
	err := r.db.NewSelect().
		Model(&rows).
		Where("role = ?", domain.RoleEmployee).
		OrderExpr("full_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
