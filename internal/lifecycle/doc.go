// Package lifecycle holds the contractor/event state machine.
//
// Each contractor on an event has exactly one status:
//
//	[not invited] --invite--> invited --apply--> applied --approve--> approved
//	                             |                  |
//	                             +--reject----------+--deny---------> declined
//
// approved and declined are terminal. The functions here mutate a
// *models.Event in memory and never touch storage; callers load, mutate and
// commit with a version check.
package lifecycle
