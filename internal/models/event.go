package models

import (
	"maps"
	"slices"
	"time"
)

// EventStatus is the lifecycle of the event itself
type EventStatus string

const (
	EventPublished  EventStatus = "published"
	EventProcessing EventStatus = "processing"
	EventStarted    EventStatus = "started"
	EventCompleted  EventStatus = "completed"
	EventCanceled   EventStatus = "canceled"
)

// Valid reports whether s is a known event status
func (s EventStatus) Valid() bool {
	switch s {
	case EventPublished, EventProcessing, EventStarted, EventCompleted, EventCanceled:
		return true
	}
	return false
}

// MemberStatus is where a contractor stands on one event
type MemberStatus string

const (
	MemberInvited  MemberStatus = "invited"
	MemberApplied  MemberStatus = "applied"
	MemberApproved MemberStatus = "approved"
	MemberDeclined MemberStatus = "declined"
)

// Valid reports whether s is a known member status
func (s MemberStatus) Valid() bool {
	switch s {
	case MemberInvited, MemberApplied, MemberApproved, MemberDeclined:
		return true
	}
	return false
}

// Membership records a single contractor's standing on an event
type Membership struct {
	Status    MemberStatus
	DecidedAt *time.Time
	UpdatedAt time.Time
}

// Event is a staffed job with its contractor memberships.
// Every contractor in Members was invited; Status says where they are now.
type Event struct {
	ID          string
	Name        string
	Location    string
	LoadIn      time.Time
	LoadOut     time.Time
	Hours       float64
	Description string
	Status      EventStatus
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Members     map[int64]Membership
}

// Member returns the membership of contractorID, if any
func (e *Event) Member(contractorID int64) (Membership, bool) {
	m, ok := e.Members[contractorID]
	return m, ok
}

// Invited returns every contractor ever invited, sorted by id
func (e *Event) Invited() []int64 {
	return slices.Sorted(maps.Keys(e.Members))
}

// Pending returns invitees who have not responded yet
func (e *Event) Pending() []int64 {
	return e.WithStatus(MemberInvited)
}

// Applied returns contractors awaiting an admin decision
func (e *Event) Applied() []int64 {
	return e.WithStatus(MemberApplied)
}

// Approved returns contractors confirmed for the event
func (e *Event) Approved() []int64 {
	return e.WithStatus(MemberApproved)
}

// Declined returns contractors who rejected the invite or were denied
func (e *Event) Declined() []int64 {
	return e.WithStatus(MemberDeclined)
}

// WithStatus returns the sorted ids of members in the given status
func (e *Event) WithStatus(status MemberStatus) []int64 {
	var ids []int64
	for id, m := range e.Members {
		if m.Status == status {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Clone returns a deep copy so a failed mutation can be discarded
func (e *Event) Clone() *Event {
	c := *e
	c.Members = make(map[int64]Membership, len(e.Members))
	for id, m := range e.Members {
		if m.DecidedAt != nil {
			t := *m.DecidedAt
			m.DecidedAt = &t
		}
		c.Members[id] = m
	}
	return &c
}
