package domain

import (
	"time"

	"github.com/uptrace/bun"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleCustomer Role = "customer"
)

// Service is a bookable offering. Duration drives slot length; duration
// changes never retroactively alter already-created appointments.
type Service struct {
	bun.BaseModel `bun:"table:services"`

	ID              int64     `bun:"id,pk,autoincrement"`
	Name            string    `bun:"name,notnull"`
	DurationMinutes int       `bun:"duration_minutes,notnull"`
	BasePrice       float64   `bun:"base_price,notnull"`
	IsActive        bool      `bun:"is_active,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull"`
}

func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// Employee is the directory view of a profile with role=employee.
type Employee struct {
	bun.BaseModel `bun:"table:profiles"`

	ID       string `bun:"id,pk,type:uuid"`
	Role     Role   `bun:"role,notnull"`
	FullName string `bun:"full_name,notnull"`
}
