package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"orangefrog/internal/lifecycle"
	"orangefrog/internal/models"
	"orangefrog/internal/repository"
	"orangefrog/internal/security"
	"orangefrog/internal/validation"
)

// EventStore persists events with optimistic versioning
type EventStore interface {
	CreateEvent(ctx context.Context, ev *models.Event) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	GetAllEvents(ctx context.Context) ([]*models.Event, error)
	GetEventsForContractor(ctx context.Context, contractorID int64) ([]*models.Event, error)
	SaveEvent(ctx context.Context, ev *models.Event) error
	DeleteEvent(ctx context.Context, id string) (bool, error)
}

// ContractorDirectory resolves contractors for the lifecycle operations
type ContractorDirectory interface {
	FindActiveByIDs(ctx context.Context, ids []int64) ([]models.Contractor, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Contractor, error)
	GetContractorByEmail(ctx context.Context, email string) (*models.Contractor, error)
}

// EventInput holds the admin-editable fields of an event
type EventInput struct {
	Name          string
	Location      string
	LoadIn        time.Time
	LoadOut       time.Time
	Hours         float64
	Description   string
	ContractorIDs []int64
}

// EventDetail is an event with every membership view resolved to contractors
type EventDetail struct {
	Event    *models.Event
	Invited  []models.Contractor
	Pending  []models.Contractor
	Applied  []models.Contractor
	Approved []models.Contractor
	Declined []models.Contractor
}

// EventService runs the contractor lifecycle against the event store
type EventService struct {
	events      EventStore
	contractors ContractorDirectory
	notifier    InviteQueue
	publisher   Publisher
	tokens      *security.InviteTokens
	maxAttempts int
	now         func() time.Time
	debug       bool
}

// NewEventService creates a new event service
func NewEventService(events EventStore, contractors ContractorDirectory, notifier InviteQueue, publisher Publisher, tokens *security.InviteTokens, maxAttempts int, debug bool) *EventService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &EventService{
		events:      events,
		contractors: contractors,
		notifier:    notifier,
		publisher:   publisher,
		tokens:      tokens,
		maxAttempts: maxAttempts,
		now:         time.Now,
		debug:       debug,
	}
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, lifecycle.ErrStorageUnavailable, err)
}

func validateInput(in EventInput) error {
	return validation.ValidateEvent(in.Name, in.Location, in.LoadIn, in.LoadOut, in.Hours)
}

// CreateEvent stores a new event and invites the given contractors, all of
// whom must be active.
func (s *EventService) CreateEvent(ctx context.Context, in EventInput) (string, error) {
	if err := validateInput(in); err != nil {
		return "", err
	}

	active, err := s.activeSet(ctx, in.ContractorIDs)
	if err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate event id: %w", err)
	}

	now := s.now()
	ev := &models.Event{
		ID:      id.String(),
		Status:  models.EventPublished,
		Members: make(map[int64]models.Membership),
	}
	applyInput(ev, in)

	added, err := lifecycle.Invite(ev, in.ContractorIDs, active, now)
	if err != nil {
		return "", err
	}

	if err := s.events.CreateEvent(ctx, ev); err != nil {
		return "", storageErr("create event", err)
	}
	log.Printf("Event created: id=%s, name=%s, invited=%d", ev.ID, ev.Name, len(added))

	s.notify(ev.ID, added)
	msgs := []LifecycleMessage{{Type: EventCreatedEvent, EventID: ev.ID, Status: string(ev.Status), OccurredAt: now}}
	s.publish(ctx, append(msgs, invitedMessages(ev.ID, added, now)...)...)

	return ev.ID, nil
}

// EditEvent updates an event's fields and replaces its invited set.
// Inactive contractors in the new set are skipped with a warning.
func (s *EventService) EditEvent(ctx context.Context, id string, in EventInput) (*models.Event, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	active, err := s.activeSet(ctx, in.ContractorIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var added, skipped []int64
	ev, err := s.mutate(ctx, id, func(ev *models.Event) (bool, error) {
		applyInput(ev, in)
		added, skipped = lifecycle.Reassign(ev, in.ContractorIDs, active, now)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if len(skipped) > 0 {
		log.Printf("Warning: event %s skipped inactive or unknown contractors %v", id, skipped)
	}
	log.Printf("Event updated: id=%s, newly invited=%d", id, len(added))

	s.notify(ev.ID, added)
	msgs := []LifecycleMessage{{Type: EventUpdatedEvent, EventID: ev.ID, Status: string(ev.Status), OccurredAt: now}}
	s.publish(ctx, append(msgs, invitedMessages(ev.ID, added, now)...)...)

	return ev, nil
}

// SetEventStatus moves the event itself through published, started and so on
func (s *EventService) SetEventStatus(ctx context.Context, id string, status models.EventStatus) (*models.Event, error) {
	if !status.Valid() {
		return nil, validation.Error{Field: "status", Message: fmt.Sprintf("unknown event status %q", status)}
	}

	ev, err := s.mutate(ctx, id, func(ev *models.Event) (bool, error) {
		if ev.Status == status {
			return false, nil
		}
		ev.Status = status
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, LifecycleMessage{Type: EventUpdatedEvent, EventID: id, Status: string(status), OccurredAt: s.now()})
	return ev, nil
}

// DeleteEvent removes an event and all of its memberships
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	found, err := s.events.DeleteEvent(ctx, id)
	if err != nil {
		return storageErr("delete event", err)
	}
	if !found {
		return fmt.Errorf("event %s: %w", id, lifecycle.ErrNotFound)
	}

	log.Printf("Event deleted: id=%s", id)
	s.publish(ctx, LifecycleMessage{Type: EventDeletedEvent, EventID: id, OccurredAt: s.now()})
	return nil
}

// GetEvent returns an event with all membership views populated
func (s *EventService) GetEvent(ctx context.Context, id string) (*EventDetail, error) {
	ev, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := s.resolve(ctx, []*models.Event{ev})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// ListEvents returns every event with contractor names populated
func (s *EventService) ListEvents(ctx context.Context) ([]EventDetail, error) {
	events, err := s.events.GetAllEvents(ctx)
	if err != nil {
		return nil, storageErr("list events", err)
	}
	return s.resolve(ctx, events)
}

// ApplyToEvent records that the contractor with email accepted the invitation
func (s *EventService) ApplyToEvent(ctx context.Context, eventID, email string) error {
	c, err := s.contractorByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.apply(ctx, eventID, c.ID)
}

// AcceptInviteToken applies on behalf of the contractor named in a signed invite link
func (s *EventService) AcceptInviteToken(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return "", err
	}
	if err := s.apply(ctx, claims.EventID, claims.ContractorID); err != nil {
		return "", err
	}
	return claims.EventID, nil
}

func (s *EventService) apply(ctx context.Context, eventID string, contractorID int64) error {
	now := s.now()
	var changed bool
	_, err := s.mutate(ctx, eventID, func(ev *models.Event) (bool, error) {
		before, _ := ev.Member(contractorID)
		if err := lifecycle.Apply(ev, contractorID, now); err != nil {
			return false, err
		}
		changed = before.Status != models.MemberApplied
		return changed, nil
	})
	if err != nil || !changed {
		return err
	}

	s.publish(ctx, LifecycleMessage{Type: ContractorAppliedEvent, EventID: eventID, ContractorID: contractorID, Status: string(models.MemberApplied), OccurredAt: now})
	return nil
}

// RejectEvent records that the contractor with email turned the event down
func (s *EventService) RejectEvent(ctx context.Context, eventID, email string) error {
	c, err := s.contractorByEmail(ctx, email)
	if err != nil {
		return err
	}

	now := s.now()
	var changed bool
	_, err = s.mutate(ctx, eventID, func(ev *models.Event) (bool, error) {
		before, _ := ev.Member(c.ID)
		if err := lifecycle.Reject(ev, c.ID, now); err != nil {
			return false, err
		}
		changed = before.Status != models.MemberDeclined
		return changed, nil
	})
	if err != nil || !changed {
		return err
	}

	s.publish(ctx, LifecycleMessage{Type: ContractorRejectedEvent, EventID: eventID, ContractorID: c.ID, Status: string(models.MemberDeclined), OccurredAt: now})
	return nil
}

// DecideContractor approves or denies an applicant
func (s *EventService) DecideContractor(ctx context.Context, eventID string, contractorID int64, approved bool) error {
	now := s.now()
	_, err := s.mutate(ctx, eventID, func(ev *models.Event) (bool, error) {
		return true, lifecycle.Decide(ev, contractorID, approved, now)
	})
	if err != nil {
		return err
	}

	msg := LifecycleMessage{Type: ContractorDeniedEvent, EventID: eventID, ContractorID: contractorID, Status: string(models.MemberDeclined), OccurredAt: now}
	if approved {
		msg.Type = ContractorApprovedEvent
		msg.Status = string(models.MemberApproved)
	}
	log.Printf("Contractor decision: event=%s, contractor=%d, approved=%v", eventID, contractorID, approved)
	s.publish(ctx, msg)
	return nil
}

// ListContractorEvents returns the jobs currently visible to the contractor
func (s *EventService) ListContractorEvents(ctx context.Context, email string) ([]lifecycle.JobView, error) {
	c, events, err := s.contractorEvents(ctx, email)
	if err != nil {
		return nil, err
	}
	return lifecycle.CurrentJobs(events, c.ID, s.now()), nil
}

// ListOpenInvitations returns invitations the contractor can still answer
func (s *EventService) ListOpenInvitations(ctx context.Context, email string) ([]lifecycle.JobView, error) {
	c, events, err := s.contractorEvents(ctx, email)
	if err != nil {
		return nil, err
	}
	return lifecycle.OpenInvitations(events, c.ID, s.now()), nil
}

func (s *EventService) contractorEvents(ctx context.Context, email string) (*models.Contractor, []*models.Event, error) {
	c, err := s.contractorByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	events, err := s.events.GetEventsForContractor(ctx, c.ID)
	if err != nil {
		return nil, nil, storageErr("list contractor events", err)
	}
	return c, events, nil
}

// mutate loads the event, applies fn and saves it, reloading and re-applying
// fn whenever another writer got there first. fn reports whether it changed
// anything; unchanged events are not written.
func (s *EventService) mutate(ctx context.Context, id string, fn func(ev *models.Event) (bool, error)) (*models.Event, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		ev, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}

		changed, err := fn(ev)
		if err != nil {
			return nil, err
		}
		if !changed {
			return ev, nil
		}
		if err := lifecycle.Check(ev); err != nil {
			return nil, err
		}

		err = s.events.SaveEvent(ctx, ev)
		if err == nil {
			return ev, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, storageErr("save event", err)
		}
		if s.debug {
			log.Printf("[DEBUG] Version conflict on event %s (attempt %d/%d), retrying", id, attempt, s.maxAttempts)
		}
	}

	log.Printf("Giving up on event %s after %d conflicting writes", id, s.maxAttempts)
	return nil, fmt.Errorf("event %s: %w", id, lifecycle.ErrConflictingWrite)
}

func (s *EventService) load(ctx context.Context, id string) (*models.Event, error) {
	ev, err := s.events.GetEventByID(ctx, id)
	if err != nil {
		return nil, storageErr("load event", err)
	}
	if ev == nil {
		return nil, fmt.Errorf("event %s: %w", id, lifecycle.ErrNotFound)
	}
	return ev, nil
}

func (s *EventService) contractorByEmail(ctx context.Context, email string) (*models.Contractor, error) {
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	c, err := s.contractors.GetContractorByEmail(ctx, email)
	if err != nil {
		return nil, storageErr("load contractor", err)
	}
	if c == nil {
		return nil, fmt.Errorf("contractor %s: %w", email, lifecycle.ErrNotFound)
	}
	return c, nil
}

func (s *EventService) activeSet(ctx context.Context, ids []int64) (map[int64]bool, error) {
	contractors, err := s.contractors.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, storageErr("resolve contractors", err)
	}
	active := make(map[int64]bool, len(contractors))
	for _, c := range contractors {
		active[c.ID] = true
	}
	return active, nil
}

// resolve fills in the membership views with a single directory lookup
func (s *EventService) resolve(ctx context.Context, events []*models.Event) ([]EventDetail, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for _, ev := range events {
		for _, id := range ev.Invited() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	contractors, err := s.contractors.FindByIDs(ctx, ids)
	if err != nil {
		return nil, storageErr("resolve contractors", err)
	}
	byID := make(map[int64]models.Contractor, len(contractors))
	for _, c := range contractors {
		byID[c.ID] = c
	}
	lookup := func(ids []int64) []models.Contractor {
		out := make([]models.Contractor, 0, len(ids))
		for _, id := range ids {
			if c, ok := byID[id]; ok {
				out = append(out, c)
			}
		}
		return out
	}

	details := make([]EventDetail, 0, len(events))
	for _, ev := range events {
		details = append(details, EventDetail{
			Event:    ev,
			Invited:  lookup(ev.Invited()),
			Pending:  lookup(ev.Pending()),
			Applied:  lookup(ev.Applied()),
			Approved: lookup(ev.Approved()),
			Declined: lookup(ev.Declined()),
		})
	}
	return details, nil
}

func (s *EventService) notify(eventID string, added []int64) {
	if s.notifier == nil || len(added) == 0 {
		return
	}
	s.notifier.Enqueue(InviteBatch{EventID: eventID, ContractorIDs: added})
}

func (s *EventService) publish(ctx context.Context, msgs ...LifecycleMessage) {
	if err := s.publisher.Publish(ctx, msgs...); err != nil {
		log.Printf("Error publishing lifecycle messages: %v", err)
	}
}

func applyInput(ev *models.Event, in EventInput) {
	ev.Name = in.Name
	ev.Location = in.Location
	ev.LoadIn = in.LoadIn
	ev.LoadOut = in.LoadOut
	ev.Hours = in.Hours
	ev.Description = in.Description
}

func invitedMessages(eventID string, ids []int64, now time.Time) []LifecycleMessage {
	msgs := make([]LifecycleMessage, 0, len(ids))
	for _, id := range ids {
		msgs = append(msgs, LifecycleMessage{
			Type:         ContractorInvitedEvent,
			EventID:      eventID,
			ContractorID: id,
			Status:       string(models.MemberInvited),
			OccurredAt:   now,
		})
	}
	return msgs
}
