package lifecycle

import (
	"time"

	"orangefrog/internal/models"
)

// DeclineVisibility is how long a declined job stays on a contractor's list
const DeclineVisibility = 24 * time.Hour

// Visible reports whether a job belongs on the contractor's current-jobs list:
// approved jobs always, applications until load-in, and declines for
// DeclineVisibility after the decision.
func Visible(status models.MemberStatus, loadIn time.Time, decidedAt *time.Time, now time.Time) bool {
	switch status {
	case models.MemberApproved:
		return true
	case models.MemberApplied:
		return now.Before(loadIn)
	case models.MemberDeclined:
		return decidedAt != nil && now.Sub(*decidedAt) < DeclineVisibility
	}
	return false
}

// OpenInvitation reports whether an undecided invitation can still be answered
func OpenInvitation(status models.MemberStatus, loadIn time.Time, now time.Time) bool {
	return status == models.MemberInvited && now.Before(loadIn)
}

// JobView is an event as seen by one contractor
type JobView struct {
	Event     *models.Event
	Status    models.MemberStatus
	DecidedAt *time.Time
}

// CurrentJobs returns the visible jobs for contractorID, preserving event order
func CurrentJobs(events []*models.Event, contractorID int64, now time.Time) []JobView {
	var out []JobView
	for _, ev := range events {
		m, ok := ev.Member(contractorID)
		if !ok || !Visible(m.Status, ev.LoadIn, m.DecidedAt, now) {
			continue
		}
		out = append(out, JobView{Event: ev, Status: m.Status, DecidedAt: m.DecidedAt})
	}
	return out
}

// OpenInvitations returns the invitations contractorID can still answer
func OpenInvitations(events []*models.Event, contractorID int64, now time.Time) []JobView {
	var out []JobView
	for _, ev := range events {
		m, ok := ev.Member(contractorID)
		if !ok || !OpenInvitation(m.Status, ev.LoadIn, now) {
			continue
		}
		out = append(out, JobView{Event: ev, Status: m.Status})
	}
	return out
}
