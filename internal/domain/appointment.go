package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// Terminal reports whether no further transition is permitted from s.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// Active reports whether the appointment still claims its time interval.
func (s AppointmentStatus) Active() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusConfirmed
}

// CanTransitionTo reports whether the move from s to next is legal.
// pending -> confirmed|completed|cancelled|no_show; confirmed ->
// completed|cancelled|no_show; terminal states allow nothing.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s.Terminal() || next == s {
		return false
	}
	switch next {
	case AppointmentStatusConfirmed:
		return s == AppointmentStatusPending
	case AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow:
		return s.Active()
	}
	return false
}

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID         uuid.UUID         `bun:"id,pk,type:uuid"`
	CustomerID string            `bun:"customer_id,notnull"`
	EmployeeID string            `bun:"employee_id,notnull"`
	ServiceID  int64             `bun:"service_id,notnull"`
	StartTime  time.Time         `bun:"start_time,notnull"`
	EndTime    time.Time         `bun:"end_time,notnull"`
	Status     AppointmentStatus `bun:"status,notnull"`
	CouponID   *int64            `bun:"coupon_id"`
	Notes      string            `bun:"notes"`
	CreatedAt  time.Time         `bun:"created_at,notnull"`
	UpdatedAt  time.Time         `bun:"updated_at,notnull"`
}

func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartTime, End: a.EndTime}
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}
