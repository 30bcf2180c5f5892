package lifecycle

import (
	"testing"
	"time"

	"orangefrog/internal/models"
)

func TestVisible(t *testing.T) {
	loadIn := t0.Add(48 * time.Hour)
	decidedAt := t0

	tests := []struct {
		name      string
		status    models.MemberStatus
		decidedAt *time.Time
		now       time.Time
		want      bool
	}{
		{name: "approved before event", status: models.MemberApproved, now: t0, want: true},
		{name: "approved long after event", status: models.MemberApproved, now: loadIn.Add(30 * 24 * time.Hour), want: true},
		{name: "applied before load-in", status: models.MemberApplied, now: loadIn.Add(-time.Minute), want: true},
		{name: "applied at load-in", status: models.MemberApplied, now: loadIn, want: false},
		{name: "applied after load-in", status: models.MemberApplied, now: loadIn.Add(time.Hour), want: false},
		{name: "declined 23h ago", status: models.MemberDeclined, decidedAt: &decidedAt, now: t0.Add(23 * time.Hour), want: true},
		{name: "declined exactly 24h ago", status: models.MemberDeclined, decidedAt: &decidedAt, now: t0.Add(24 * time.Hour), want: false},
		{name: "declined 25h ago", status: models.MemberDeclined, decidedAt: &decidedAt, now: t0.Add(25 * time.Hour), want: false},
		{name: "declined without timestamp", status: models.MemberDeclined, now: t0, want: false},
		{name: "invited is not a current job", status: models.MemberInvited, now: t0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Visible(tt.status, loadIn, tt.decidedAt, tt.now); got != tt.want {
				t.Errorf("Visible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpenInvitations(t *testing.T) {
	soon := newEvent()
	soon.ID = "soon"
	past := newEvent()
	past.ID = "past"
	past.LoadIn = t0.Add(-time.Hour)
	answered := newEvent()
	answered.ID = "answered"

	for _, ev := range []*models.Event{soon, past, answered} {
		mustInvite(t, ev, 1)
	}
	_ = Apply(answered, 1, t0)

	got := OpenInvitations([]*models.Event{soon, past, answered}, 1, t0)
	if len(got) != 1 || got[0].Event.ID != "soon" {
		t.Fatalf("OpenInvitations() = %+v, want only soon", got)
	}
	if got[0].Status != models.MemberInvited {
		t.Errorf("Status = %s, want invited", got[0].Status)
	}
}
