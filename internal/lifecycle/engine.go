package lifecycle

import (
	"fmt"
	"time"

	"orangefrog/internal/models"
)

// Invite adds every id to the event. All ids must be in active; otherwise
// nothing changes and a *ContractorError lists the offenders.
// Ids that are already members are left alone. The newly added ids are
// returned in input order without duplicates.
func Invite(ev *models.Event, ids []int64, active map[int64]bool, now time.Time) ([]int64, error) {
	var invalid []int64
	for _, id := range dedupe(ids) {
		if !active[id] {
			invalid = append(invalid, id)
		}
	}
	if len(invalid) > 0 {
		return nil, &ContractorError{IDs: invalid}
	}

	return addInvitees(ev, ids, now), nil
}

// Reassign replaces the invited set with ids. Undecided invitees missing from
// ids are dropped; applied, approved and declined members always keep their
// standing. Ids that are not active are skipped and returned separately.
func Reassign(ev *models.Event, ids []int64, active map[int64]bool, now time.Time) (added, skipped []int64) {
	keep := make(map[int64]bool, len(ids))
	var eligible []int64
	for _, id := range dedupe(ids) {
		keep[id] = true
		if _, member := ev.Members[id]; member {
			continue
		}
		if !active[id] {
			skipped = append(skipped, id)
			continue
		}
		eligible = append(eligible, id)
	}

	for id, m := range ev.Members {
		if m.Status == models.MemberInvited && !keep[id] {
			delete(ev.Members, id)
		}
	}

	return addInvitees(ev, eligible, now), skipped
}

// Apply records that an invitee accepted the invitation. Applying twice is a no-op.
func Apply(ev *models.Event, contractorID int64, now time.Time) error {
	m, ok := ev.Members[contractorID]
	if !ok {
		return transitionErr(ErrNotInvited, ev, contractorID, "")
	}

	switch m.Status {
	case models.MemberApplied:
		return nil
	case models.MemberDeclined:
		return transitionErr(ErrAlreadyDeclined, ev, contractorID, m.Status)
	case models.MemberApproved:
		return transitionErr(ErrInvalidTransition, ev, contractorID, m.Status)
	}

	ev.Members[contractorID] = models.Membership{Status: models.MemberApplied, UpdatedAt: now}
	return nil
}

// Reject records that an invitee turned the event down. Rejecting twice is a no-op.
func Reject(ev *models.Event, contractorID int64, now time.Time) error {
	m, ok := ev.Members[contractorID]
	if !ok {
		return transitionErr(ErrNotInvited, ev, contractorID, "")
	}

	switch m.Status {
	case models.MemberDeclined:
		return nil
	case models.MemberApproved:
		return transitionErr(ErrInvalidTransition, ev, contractorID, m.Status)
	}

	ev.Members[contractorID] = decided(models.MemberDeclined, now)
	return nil
}

// Decide approves or denies an applicant.
func Decide(ev *models.Event, contractorID int64, approved bool, now time.Time) error {
	m, ok := ev.Members[contractorID]
	if !ok || m.Status != models.MemberApplied {
		return transitionErr(ErrNotApplied, ev, contractorID, m.Status)
	}

	if approved {
		ev.Members[contractorID] = decided(models.MemberApproved, now)
	} else {
		ev.Members[contractorID] = decided(models.MemberDeclined, now)
	}
	return nil
}

// Check verifies the membership map is well formed
func Check(ev *models.Event) error {
	for id, m := range ev.Members {
		if !m.Status.Valid() {
			return fmt.Errorf("event %s: contractor %d has unknown status %q", ev.ID, id, m.Status)
		}
		if m.Status == models.MemberDeclined && m.DecidedAt == nil {
			return fmt.Errorf("event %s: contractor %d declined without a decision time", ev.ID, id)
		}
	}
	return nil
}

func addInvitees(ev *models.Event, ids []int64, now time.Time) []int64 {
	if ev.Members == nil {
		ev.Members = make(map[int64]models.Membership)
	}

	var added []int64
	for _, id := range dedupe(ids) {
		if _, ok := ev.Members[id]; ok {
			continue
		}
		ev.Members[id] = models.Membership{Status: models.MemberInvited, UpdatedAt: now}
		added = append(added, id)
	}
	return added
}

func decided(status models.MemberStatus, now time.Time) models.Membership {
	t := now
	return models.Membership{Status: status, DecidedAt: &t, UpdatedAt: now}
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
