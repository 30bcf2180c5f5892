package service

import (
	"context"
	"log"

	"orangefrog/internal/models"
)

// InviteBatch names the contractors newly invited to one event
type InviteBatch struct {
	EventID       string
	ContractorIDs []int64
}

// InviteSender delivers a single invitation
type InviteSender interface {
	SendInviteEmail(ctx context.Context, contractor models.Contractor, ev *models.Event) error
}

// InviteQueue accepts invitation batches for asynchronous delivery
type InviteQueue interface {
	Enqueue(batch InviteBatch) bool
}

type eventLoader interface {
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
}

type contractorLister interface {
	FindByIDs(ctx context.Context, ids []int64) ([]models.Contractor, error)
}

// Notifier sends invitation emails off the request path. Delivery is at most
// once: a full queue drops the batch and send failures are only logged.
type Notifier struct {
	queue       chan InviteBatch
	events      eventLoader
	contractors contractorLister
	sender      InviteSender
	debug       bool
}

// NewNotifier creates a notifier with room for queueSize pending batches
func NewNotifier(events eventLoader, contractors contractorLister, sender InviteSender, queueSize int, debug bool) *Notifier {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Notifier{
		queue:       make(chan InviteBatch, queueSize),
		events:      events,
		contractors: contractors,
		sender:      sender,
		debug:       debug,
	}
}

// Enqueue schedules a batch without blocking and reports whether it was accepted
func (n *Notifier) Enqueue(batch InviteBatch) bool {
	if len(batch.ContractorIDs) == 0 {
		return true
	}

	select {
	case n.queue <- batch:
		if n.debug {
			log.Printf("[DEBUG] Queued %d invitations for event %s", len(batch.ContractorIDs), batch.EventID)
		}
		return true
	default:
		log.Printf("Notification queue full, dropping %d invitations for event %s", len(batch.ContractorIDs), batch.EventID)
		return false
	}
}

// Run delivers queued batches until ctx is canceled
func (n *Notifier) Run(ctx context.Context) error {
	log.Println("Notification worker started")
	for {
		select {
		case <-ctx.Done():
			log.Printf("Notification worker stopped with %d batches pending", len(n.queue))
			return nil
		case batch := <-n.queue:
			n.Deliver(ctx, batch)
		}
	}
}

// Deliver sends one invitation per contractor in the batch, in order.
// A failure for one contractor does not stop the rest. It returns the number sent.
func (n *Notifier) Deliver(ctx context.Context, batch InviteBatch) int {
	ev, err := n.events.GetEventByID(ctx, batch.EventID)
	if err != nil {
		log.Printf("Error loading event %s for invitations: %v", batch.EventID, err)
		return 0
	}
	if ev == nil {
		log.Printf("Event %s no longer exists, skipping %d invitations", batch.EventID, len(batch.ContractorIDs))
		return 0
	}

	contractors, err := n.contractors.FindByIDs(ctx, batch.ContractorIDs)
	if err != nil {
		log.Printf("Error loading contractors for event %s invitations: %v", batch.EventID, err)
		return 0
	}
	byID := make(map[int64]models.Contractor, len(contractors))
	for _, c := range contractors {
		byID[c.ID] = c
	}

	sent := 0
	for _, id := range batch.ContractorIDs {
		c, ok := byID[id]
		if !ok {
			log.Printf("Contractor %d not found, skipping invitation to event %s", id, ev.ID)
			continue
		}
		if err := n.sender.SendInviteEmail(ctx, c, ev); err != nil {
			log.Printf("Error sending invitation for event %s to %s: %v", ev.ID, c.Email, err)
			continue
		}
		sent++
	}

	if n.debug {
		log.Printf("[DEBUG] Delivered %d/%d invitations for event %s", sent, len(batch.ContractorIDs), ev.ID)
	}
	return sent
}
