package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Shift is a recurring weekly availability window for one employee. Start and
// end are wall-clock "HH:MM" strings; a shift is a template and only becomes a
// concrete interval once anchored to a calendar date in the salon's location.
type Shift struct {
	bun.BaseModel `bun:"table:employee_shifts"`

	ID         int64     `bun:"id,pk,autoincrement"`
	EmployeeID string    `bun:"employee_id,notnull"`
	DayOfWeek  int       `bun:"day_of_week,notnull"`
	StartTime  string    `bun:"start_time,notnull"`
	EndTime    string    `bun:"end_time,notnull"`
	Location   string    `bun:"location"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

func (s *Shift) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return nil
}

// Validate checks the template fields without anchoring to a date.
func (s *Shift) Validate() error {
	if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
		return errors.New("day_of_week must be between 0 and 6")
	}
	start, err := parseWallClock(s.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start_time: %w", err)
	}
	end, err := parseWallClock(s.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end_time: %w", err)
	}
	if end <= start {
		return errors.New("end_time must be after start_time")
	}
	return nil
}

// Window instantiates the shift against a calendar date, producing an absolute
// UTC interval. The date's year/month/day are read in loc so that wall-clock
// shift times land correctly across daylight-saving changes.
func (s *Shift) Window(date time.Time, loc *time.Location) (Interval, error) {
	startMin, err := parseWallClock(s.StartTime)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid start_time: %w", err)
	}
	endMin, err := parseWallClock(s.EndTime)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid end_time: %w", err)
	}
	if endMin <= startMin {
		return Interval{}, errors.New("end_time must be after start_time")
	}

	// Build the instants from wall-clock components rather than adding a
	// duration to midnight, so a 09:00 shift is 09:00 local even on a
	// daylight-saving transition day.
	local := date.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), startMin/60, startMin%60, 0, 0, loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), endMin/60, endMin%60, 0, 0, loc)
	return Interval{Start: start.UTC(), End: end.UTC()}, nil
}

// parseWallClock converts "HH:MM" (seconds optional) to minutes from midnight.
func parseWallClock(value string) (int, error) {
	var h, m, sec int
	if _, err := fmt.Sscanf(value, "%d:%d:%d", &h, &m, &sec); err != nil {
		if _, err := fmt.Sscanf(value, "%d:%d", &h, &m); err != nil {
			return 0, fmt.Errorf("%q is not HH:MM", value)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%q is out of range", value)
	}
	return h*60 + m, nil
}

// BlockedPeriod is a one-off concrete unavailability window for an employee,
// independent of the shift templates.
type BlockedPeriod struct {
	bun.BaseModel `bun:"table:employee_blocked_times"`

	ID         int64     `bun:"id,pk,autoincrement"`
	EmployeeID string    `bun:"employee_id,notnull"`
	StartTime  time.Time `bun:"start_time,notnull"`
	EndTime    time.Time `bun:"end_time,notnull"`
	Reason     string    `bun:"reason"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

func (b *BlockedPeriod) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

func (b *BlockedPeriod) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	return nil
}
