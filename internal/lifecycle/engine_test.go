package lifecycle

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"orangefrog/internal/models"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newEvent() *models.Event {
	return &models.Event{
		ID:      "evt-1",
		Name:    "Spring Gala",
		LoadIn:  t0.Add(72 * time.Hour),
		LoadOut: t0.Add(80 * time.Hour),
		Hours:   8,
		Status:  models.EventPublished,
	}
}

func activeSet(ids ...int64) map[int64]bool {
	m := make(map[int64]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func mustInvite(t *testing.T, ev *models.Event, ids ...int64) {
	t.Helper()
	if _, err := Invite(ev, ids, activeSet(ids...), t0); err != nil {
		t.Fatalf("Invite(%v) error = %v", ids, err)
	}
}

func TestInvite(t *testing.T) {
	t.Run("adds active contractors and reports them", func(t *testing.T) {
		ev := newEvent()
		added, err := Invite(ev, []int64{3, 1, 3}, activeSet(1, 3), t0)
		if err != nil {
			t.Fatalf("Invite() error = %v", err)
		}
		if !slices.Equal(added, []int64{3, 1}) {
			t.Errorf("added = %v, want [3 1]", added)
		}
		if got := ev.Pending(); !slices.Equal(got, []int64{1, 3}) {
			t.Errorf("Pending() = %v", got)
		}
	})

	t.Run("existing members are no-ops", func(t *testing.T) {
		ev := newEvent()
		mustInvite(t, ev, 1)
		if err := Apply(ev, 1, t0); err != nil {
			t.Fatal(err)
		}
		added, err := Invite(ev, []int64{1, 2}, activeSet(1, 2), t0)
		if err != nil {
			t.Fatalf("Invite() error = %v", err)
		}
		if !slices.Equal(added, []int64{2}) {
			t.Errorf("added = %v, want [2]", added)
		}
		if m, _ := ev.Member(1); m.Status != models.MemberApplied {
			t.Errorf("contractor 1 status = %s, want applied", m.Status)
		}
	})

	t.Run("inactive contractor fails the whole call", func(t *testing.T) {
		ev := newEvent()
		_, err := Invite(ev, []int64{1, 2, 9}, activeSet(1, 2), t0)
		if !errors.Is(err, ErrInvalidContractor) {
			t.Fatalf("Invite() error = %v, want ErrInvalidContractor", err)
		}
		var cerr *ContractorError
		if !errors.As(err, &cerr) || !slices.Equal(cerr.IDs, []int64{9}) {
			t.Errorf("ContractorError = %+v, want ids [9]", cerr)
		}
		if len(ev.Members) != 0 {
			t.Errorf("event mutated on failure: %v", ev.Members)
		}
	})
}

func TestApply(t *testing.T) {
	t.Run("not invited", func(t *testing.T) {
		ev := newEvent()
		err := Apply(ev, 7, t0)
		if !errors.Is(err, ErrNotInvited) || !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("Apply() error = %v, want ErrNotInvited", err)
		}
	})

	t.Run("twice is idempotent", func(t *testing.T) {
		ev := newEvent()
		mustInvite(t, ev, 1)
		for i := 0; i < 2; i++ {
			if err := Apply(ev, 1, t0); err != nil {
				t.Fatalf("Apply() #%d error = %v", i+1, err)
			}
		}
		if got := ev.Applied(); !slices.Equal(got, []int64{1}) {
			t.Errorf("Applied() = %v, want [1]", got)
		}
	})

	t.Run("after reject", func(t *testing.T) {
		ev := newEvent()
		mustInvite(t, ev, 1)
		if err := Reject(ev, 1, t0); err != nil {
			t.Fatal(err)
		}
		if err := Apply(ev, 1, t0); !errors.Is(err, ErrAlreadyDeclined) {
			t.Fatalf("Apply() error = %v, want ErrAlreadyDeclined", err)
		}
	})

	t.Run("after approval is terminal", func(t *testing.T) {
		ev := newEvent()
		mustInvite(t, ev, 1)
		_ = Apply(ev, 1, t0)
		_ = Decide(ev, 1, true, t0)
		err := Apply(ev, 1, t0)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("Apply() error = %v, want ErrInvalidTransition", err)
		}
		if errors.Is(err, ErrNotInvited) || errors.Is(err, ErrAlreadyDeclined) {
			t.Errorf("Apply() error %v should not carry a subtype", err)
		}
	})
}

func TestReject(t *testing.T) {
	t.Run("not invited", func(t *testing.T) {
		if err := Reject(newEvent(), 1, t0); !errors.Is(err, ErrNotInvited) {
			t.Fatalf("Reject() error = %v, want ErrNotInvited", err)
		}
	})

	t.Run("withdraws an application", func(t *testing.T) {
		ev := newEvent()
		mustInvite(t, ev, 1)
		_ = Apply(ev, 1, t0)
		if err := Reject(ev, 1, t0.Add(time.Hour)); err != nil {
			t.Fatalf("Reject() error = %v", err)
		}
		m, _ := ev.Member(1)
		if m.Status != models.MemberDeclined {
			t.Errorf("status = %s, want declined", m.Status)
		}
		if m.DecidedAt == nil || !m.DecidedAt.Equal(t0.Add(time.Hour)) {
			t.Errorf("DecidedAt = %v", m.DecidedAt)
		}
		if len(ev.Applied()) != 0 {
			t.Errorf("Applied() = %v, want empty", ev.Applied())
		}
	})

	t.Run("twice keeps the first decision time", func(t *testing.T) {
		ev := newEvent()
		mustInvite(t, ev, 1)
		_ = Reject(ev, 1, t0)
		if err := Reject(ev, 1, t0.Add(time.Hour)); err != nil {
			t.Fatalf("Reject() error = %v", err)
		}
		if m, _ := ev.Member(1); !m.DecidedAt.Equal(t0) {
			t.Errorf("DecidedAt = %v, want %v", m.DecidedAt, t0)
		}
	})

	t.Run("approved cannot reject", func(t *testing.T) {
		ev := newEvent()
		mustInvite(t, ev, 1)
		_ = Apply(ev, 1, t0)
		_ = Decide(ev, 1, true, t0)
		if err := Reject(ev, 1, t0); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("Reject() error = %v, want ErrInvalidTransition", err)
		}
	})
}

func TestDecide(t *testing.T) {
	t.Run("without apply", func(t *testing.T) {
		ev := newEvent()
		mustInvite(t, ev, 1)
		if err := Decide(ev, 1, true, t0); !errors.Is(err, ErrNotApplied) {
			t.Fatalf("Decide() error = %v, want ErrNotApplied", err)
		}
	})

	t.Run("unknown contractor", func(t *testing.T) {
		if err := Decide(newEvent(), 1, false, t0); !errors.Is(err, ErrNotApplied) {
			t.Fatalf("Decide() error = %v, want ErrNotApplied", err)
		}
	})

	t.Run("approve", func(t *testing.T) {
		ev := newEvent()
		mustInvite(t, ev, 1)
		_ = Apply(ev, 1, t0)
		if err := Decide(ev, 1, true, t0); err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
		if !slices.Equal(ev.Approved(), []int64{1}) || len(ev.Applied()) != 0 {
			t.Errorf("approved = %v applied = %v", ev.Approved(), ev.Applied())
		}
	})

	t.Run("deny stamps decision time", func(t *testing.T) {
		ev := newEvent()
		mustInvite(t, ev, 1)
		_ = Apply(ev, 1, t0)
		if err := Decide(ev, 1, false, t0.Add(2*time.Hour)); err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
		m, _ := ev.Member(1)
		if m.Status != models.MemberDeclined || m.DecidedAt == nil || !m.DecidedAt.Equal(t0.Add(2*time.Hour)) {
			t.Errorf("membership = %+v", m)
		}
	})

	t.Run("second decision fails", func(t *testing.T) {
		ev := newEvent()
		mustInvite(t, ev, 1)
		_ = Apply(ev, 1, t0)
		_ = Decide(ev, 1, true, t0)
		if err := Decide(ev, 1, false, t0); !errors.Is(err, ErrNotApplied) {
			t.Fatalf("Decide() error = %v, want ErrNotApplied", err)
		}
	})
}

func TestReassign(t *testing.T) {
	ev := newEvent()
	mustInvite(t, ev, 1, 2, 3, 4, 5)
	_ = Apply(ev, 1, t0)
	_ = Apply(ev, 2, t0)
	_ = Decide(ev, 2, true, t0)
	_ = Reject(ev, 3, t0)

	added, skipped := Reassign(ev, []int64{5, 6, 7, 5}, activeSet(5, 6), t0)

	if !slices.Equal(added, []int64{6}) {
		t.Errorf("added = %v, want [6]", added)
	}
	if !slices.Equal(skipped, []int64{7}) {
		t.Errorf("skipped = %v, want [7]", skipped)
	}
	if got := ev.Invited(); !slices.Equal(got, []int64{1, 2, 3, 5, 6}) {
		t.Errorf("Invited() = %v, want [1 2 3 5 6]", got)
	}
	if !slices.Equal(ev.Applied(), []int64{1}) {
		t.Errorf("Applied() = %v, want [1]", ev.Applied())
	}
	if !slices.Equal(ev.Approved(), []int64{2}) {
		t.Errorf("Approved() = %v, want [2]", ev.Approved())
	}
	if !slices.Equal(ev.Declined(), []int64{3}) {
		t.Errorf("Declined() = %v, want [3]", ev.Declined())
	}
}

func TestReassignOnlyReportsNewInvitees(t *testing.T) {
	ev := newEvent()
	added, err := Invite(ev, []int64{1}, activeSet(1), t0)
	if err != nil || !slices.Equal(added, []int64{1}) {
		t.Fatalf("Invite() = %v, %v", added, err)
	}

	added, skipped := Reassign(ev, []int64{1, 2}, activeSet(1, 2), t0)
	if !slices.Equal(added, []int64{2}) || len(skipped) != 0 {
		t.Errorf("Reassign() = %v, %v; want [2], []", added, skipped)
	}
}

// TestScenario walks the admin/contractor flow end to end.
func TestScenario(t *testing.T) {
	const a, b = int64(1), int64(2)
	ev := newEvent()
	mustInvite(t, ev, a, b)

	if err := Apply(ev, a, t0); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ev.Applied(), []int64{a}) {
		t.Fatalf("Applied() = %v", ev.Applied())
	}
	if err := Decide(ev, a, true, t0); err != nil {
		t.Fatal(err)
	}
	rejectedAt := t0.Add(time.Hour)
	if err := Reject(ev, b, rejectedAt); err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(ev.Invited(), []int64{a, b}) {
		t.Errorf("Invited() = %v", ev.Invited())
	}
	if len(ev.Applied()) != 0 {
		t.Errorf("Applied() = %v", ev.Applied())
	}
	if !slices.Equal(ev.Approved(), []int64{a}) {
		t.Errorf("Approved() = %v", ev.Approved())
	}
	if !slices.Equal(ev.Declined(), []int64{b}) {
		t.Errorf("Declined() = %v", ev.Declined())
	}

	events := []*models.Event{ev}
	if jobs := CurrentJobs(events, b, rejectedAt.Add(23*time.Hour)); len(jobs) != 1 {
		t.Errorf("at 23h contractor B sees %d jobs, want 1", len(jobs))
	}
	if jobs := CurrentJobs(events, b, rejectedAt.Add(25*time.Hour)); len(jobs) != 0 {
		t.Errorf("at 25h contractor B sees %d jobs, want 0", len(jobs))
	}
}

// TestRandomSequencesKeepSetsDisjoint drives random operations and checks
// every contractor lands in at most one of the four sets.
func TestRandomSequencesKeepSetsDisjoint(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	ids := []int64{1, 2, 3, 4, 5, 6}
	active := activeSet(ids...)

	for round := 0; round < 200; round++ {
		ev := newEvent()
		for step := 0; step < 30; step++ {
			id := ids[rng.IntN(len(ids))]
			now := t0.Add(time.Duration(step) * time.Minute)
			switch rng.IntN(5) {
			case 0:
				_, _ = Invite(ev, []int64{id}, active, now)
			case 1:
				_ = Apply(ev, id, now)
			case 2:
				_ = Reject(ev, id, now)
			case 3:
				_ = Decide(ev, id, rng.IntN(2) == 0, now)
			case 4:
				subset := []int64{ids[rng.IntN(len(ids))], ids[rng.IntN(len(ids))]}
				_, _ = Reassign(ev, subset, active, now)
			}

			if err := Check(ev); err != nil {
				t.Fatalf("round %d step %d: %v", round, step, err)
			}
			seen := map[int64]int{}
			for _, set := range [][]int64{ev.Pending(), ev.Applied(), ev.Approved(), ev.Declined()} {
				for _, c := range set {
					seen[c]++
				}
			}
			for c, n := range seen {
				if n != 1 {
					t.Fatalf("round %d step %d: contractor %d in %d sets", round, step, c, n)
				}
			}
		}
	}
}

func TestTerminalStatesNeverChange(t *testing.T) {
	ev := newEvent()
	mustInvite(t, ev, 1, 2)
	_ = Apply(ev, 1, t0)
	_ = Decide(ev, 1, true, t0)
	_ = Reject(ev, 2, t0)

	_ = Apply(ev, 1, t0)
	_ = Reject(ev, 1, t0)
	_ = Decide(ev, 1, false, t0)
	_ = Apply(ev, 2, t0)
	_ = Decide(ev, 2, true, t0)
	_, _ = Reassign(ev, nil, nil, t0)

	if m, _ := ev.Member(1); m.Status != models.MemberApproved {
		t.Errorf("contractor 1 = %s, want approved", m.Status)
	}
	if m, _ := ev.Member(2); m.Status != models.MemberDeclined {
		t.Errorf("contractor 2 = %s, want declined", m.Status)
	}
}

func TestTransitionErrorMessage(t *testing.T) {
	err := Apply(newEvent(), 42, t0)
	want := "event evt-1, contractor 42 (not invited): contractor is not invited to this event"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
