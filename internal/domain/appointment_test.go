package domain

import "testing"

func TestAppointmentStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{AppointmentStatusPending, AppointmentStatusConfirmed, true},
		{AppointmentStatusPending, AppointmentStatusCompleted, true},
		{AppointmentStatusPending, AppointmentStatusCancelled, true},
		{AppointmentStatusPending, AppointmentStatusNoShow, true},
		{AppointmentStatusPending, AppointmentStatusPending, false},

		{AppointmentStatusConfirmed, AppointmentStatusCompleted, true},
		{AppointmentStatusConfirmed, AppointmentStatusCancelled, true},
		{AppointmentStatusConfirmed, AppointmentStatusNoShow, true},
		{AppointmentStatusConfirmed, AppointmentStatusConfirmed, false},
		{AppointmentStatusConfirmed, AppointmentStatusPending, false},

		{AppointmentStatusCompleted, AppointmentStatusCancelled, false},
		{AppointmentStatusCompleted, AppointmentStatusConfirmed, false},
		{AppointmentStatusCancelled, AppointmentStatusPending, false},
		{AppointmentStatusCancelled, AppointmentStatusConfirmed, false},
		{AppointmentStatusNoShow, AppointmentStatusCompleted, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestAppointmentStatusTerminal(t *testing.T) {
	terminal := []AppointmentStatus{AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
		if s.Active() {
			t.Fatalf("%s should not be active", s)
		}
	}
	for _, s := range []AppointmentStatus{AppointmentStatusPending, AppointmentStatusConfirmed} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
		if !s.Active() {
			t.Fatalf("%s should be active", s)
		}
	}
}
