package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"orangefrog/internal/lifecycle"
	"orangefrog/internal/models"
	"orangefrog/internal/repository"
	"orangefrog/internal/security"
	"orangefrog/internal/validation"
)

var ErrContractorExists = errors.New("a contractor with this email already exists")

// WelcomeSender delivers the first-login email to a new contractor
type WelcomeSender interface {
	SendWelcomeEmail(ctx context.Context, contractor models.Contractor, tempPassword string) error
}

// ContractorInput holds the fields an admin fills in for a new contractor
type ContractorInput struct {
	Email        string
	Name         string
	HourlyRate   float64
	Address      string
	Phone        string
	ShirtSize    string
	FirstAidCert string
	Allergies    []string
}

// ContractorService manages contractor accounts
type ContractorService struct {
	repo   *repository.ContractorRepository
	mailer WelcomeSender
	debug  bool
}

// NewContractorService creates a new contractor service
func NewContractorService(repo *repository.ContractorRepository, mailer WelcomeSender, debug bool) *ContractorService {
	return &ContractorService{repo: repo, mailer: mailer, debug: debug}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateContractor registers a pending contractor with a temporary password
// and emails it to them.
func (s *ContractorService) CreateContractor(ctx context.Context, in ContractorInput) (*models.Contractor, error) {
	email := normalizeEmail(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(in.Name); err != nil {
		return nil, err
	}
	if err := validation.ValidateHourlyRate(in.HourlyRate); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetContractorByEmail(ctx, email)
	if err != nil {
		return nil, storageErr("check contractor email", err)
	}
	if existing != nil {
		return nil, ErrContractorExists
	}

	tempPassword, err := security.GenerateTempPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := security.HashPassword(tempPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	c, err := s.repo.CreateContractor(ctx, &models.Contractor{
		Email:             email,
		Name:              strings.TrimSpace(in.Name),
		PasswordHash:      hash,
		HourlyRate:        in.HourlyRate,
		Status:            models.ContractorPending,
		TemporaryPassword: true,
		Address:           in.Address,
		Phone:             in.Phone,
		ShirtSize:         in.ShirtSize,
		FirstAidCert:      in.FirstAidCert,
		Allergies:         in.Allergies,
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, ErrContractorExists
	}
	if err != nil {
		return nil, storageErr("create contractor", err)
	}
	log.Printf("Contractor created: id=%d, email=%s", c.ID, c.Email)

	if s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(ctx, *c, tempPassword); err != nil {
			log.Printf("Error sending welcome email to %s: %v", c.Email, err)
		}
	}
	return c, nil
}

// ListContractors returns every contractor
func (s *ContractorService) ListContractors(ctx context.Context) ([]models.Contractor, error) {
	contractors, err := s.repo.GetAllContractors(ctx)
	if err != nil {
		return nil, storageErr("list contractors", err)
	}
	return contractors, nil
}

// GetByEmail looks a contractor up by email address
func (s *ContractorService) GetByEmail(ctx context.Context, email string) (*models.Contractor, error) {
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	c, err := s.repo.GetContractorByEmail(ctx, email)
	if err != nil {
		return nil, storageErr("load contractor", err)
	}
	if c == nil {
		return nil, fmt.Errorf("contractor %s: %w", email, lifecycle.ErrNotFound)
	}
	return c, nil
}

// SetStatus activates or deactivates a contractor
func (s *ContractorService) SetStatus(ctx context.Context, id int64, status models.ContractorStatus) error {
	if !status.Valid() {
		return validation.Error{Field: "status", Message: fmt.Sprintf("unknown contractor status %q", status)}
	}
	found, err := s.repo.UpdateContractorStatus(ctx, id, status)
	if err != nil {
		return storageErr("update contractor status", err)
	}
	if !found {
		return fmt.Errorf("contractor %d: %w", id, lifecycle.ErrNotFound)
	}
	log.Printf("Contractor status changed: id=%d, status=%s", id, status)
	return nil
}

// ResendCredentials issues a fresh temporary password and emails it to the contractor
func (s *ContractorService) ResendCredentials(ctx context.Context, id int64) error {
	c, err := s.repo.GetContractorByID(ctx, id)
	if err != nil {
		return storageErr("load contractor", err)
	}
	if c == nil {
		return fmt.Errorf("contractor %d: %w", id, lifecycle.ErrNotFound)
	}

	tempPassword, err := security.GenerateTempPassword()
	if err != nil {
		return fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := security.HashPassword(tempPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	found, err := s.repo.UpdatePasswordHash(ctx, id, hash, true)
	if err != nil {
		return storageErr("update contractor password", err)
	}
	if !found {
		return fmt.Errorf("contractor %d: %w", id, lifecycle.ErrNotFound)
	}
	log.Printf("Contractor credentials reset: id=%d", id)

	if s.mailer == nil {
		return nil
	}
	if err := s.mailer.SendWelcomeEmail(ctx, *c, tempPassword); err != nil {
		return fmt.Errorf("failed to send credentials to %s: %w", c.Email, err)
	}
	return nil
}

// DeleteContractor removes a contractor and their event memberships
func (s *ContractorService) DeleteContractor(ctx context.Context, id int64) error {
	found, err := s.repo.DeleteContractor(ctx, id)
	if err != nil {
		return storageErr("delete contractor", err)
	}
	if !found {
		return fmt.Errorf("contractor %d: %w", id, lifecycle.ErrNotFound)
	}
	log.Printf("Contractor deleted: id=%d", id)
	return nil
}
