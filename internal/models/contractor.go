package models

import "time"

// ContractorStatus is the eligibility state of a contractor account
type ContractorStatus string

const (
	ContractorPending  ContractorStatus = "pending"
	ContractorActive   ContractorStatus = "active"
	ContractorInactive ContractorStatus = "inactive"
)

// Valid reports whether s is a known contractor status
func (s ContractorStatus) Valid() bool {
	switch s {
	case ContractorPending, ContractorActive, ContractorInactive:
		return true
	}
	return false
}

// Contractor represents a freelance worker who can be invited to events
type Contractor struct {
	ID                int64
	Email             string
	Name              string
	PasswordHash      string
	HourlyRate        float64
	Status            ContractorStatus
	TemporaryPassword bool
	Address           string
	Phone             string
	ShirtSize         string
	FirstAidCert      string
	Allergies         []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsActive reports whether the contractor may receive new invitations
func (c *Contractor) IsActive() bool {
	return c.Status == ContractorActive
}
