package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"orangefrog/internal/database"
	"orangefrog/internal/models"
)

const contractorColumns = "id, email, name, password_hash, hourly_rate, status, temporary_password, address, phone, shirt_size, first_aid_cert, allergies, created_at, updated_at"

// ContractorRepository handles database operations for contractors
type ContractorRepository struct {
	db *database.DB
}

// NewContractorRepository creates a new contractor repository
func NewContractorRepository(db *database.DB) *ContractorRepository {
	return &ContractorRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContractor(row rowScanner) (*models.Contractor, error) {
	c := &models.Contractor{}
	var status, allergies string
	if err := row.Scan(
		&c.ID,
		&c.Email,
		&c.Name,
		&c.PasswordHash,
		&c.HourlyRate,
		&status,
		&c.TemporaryPassword,
		&c.Address,
		&c.Phone,
		&c.ShirtSize,
		&c.FirstAidCert,
		&allergies,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Status = models.ContractorStatus(status)
	c.Allergies = splitList(allergies)
	return c, nil
}

// ErrDuplicateEmail is returned when another contractor already has the email
var ErrDuplicateEmail = errors.New("contractor email already registered")

// CreateContractor inserts a new contractor
func (r *ContractorRepository) CreateContractor(ctx context.Context, c *models.Contractor) (*models.Contractor, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO contractors (email, name, password_hash, hourly_rate, status, temporary_password,
			address, phone, shirt_size, first_aid_cert, allergies, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		c.Email, c.Name, c.PasswordHash, c.HourlyRate, string(c.Status), c.TemporaryPassword,
		c.Address, c.Phone, c.ShirtSize, c.FirstAidCert, strings.Join(c.Allergies, ","), now, now,
	)
	if r.db.Dialect.IsUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create contractor: %w", err)
	}

	created := *c
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

// GetContractorByEmail retrieves a contractor by email address
func (r *ContractorRepository) GetContractorByEmail(ctx context.Context, email string) (*models.Contractor, error) {
	query := "SELECT " + contractorColumns + " FROM contractors WHERE email = ?"
	c, err := scanContractor(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contractor: %w", err)
	}
	return c, nil
}

// GetContractorByID retrieves a contractor by ID
func (r *ContractorRepository) GetContractorByID(ctx context.Context, id int64) (*models.Contractor, error) {
	query := "SELECT " + contractorColumns + " FROM contractors WHERE id = ?"
	c, err := scanContractor(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contractor: %w", err)
	}
	return c, nil
}

// FindByIDs returns the contractors with the given ids, ordered by id
func (r *ContractorRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Contractor, error) {
	return r.selectContractors(ctx, sq.Eq{"id": ids}, len(ids) == 0)
}

// FindActiveByIDs returns the active contractors among ids
func (r *ContractorRepository) FindActiveByIDs(ctx context.Context, ids []int64) ([]models.Contractor, error) {
	return r.selectContractors(ctx, sq.And{
		sq.Eq{"id": ids},
		sq.Eq{"status": string(models.ContractorActive)},
	}, len(ids) == 0)
}

// GetAllContractors retrieves all contractors
func (r *ContractorRepository) GetAllContractors(ctx context.Context) ([]models.Contractor, error) {
	return r.selectContractors(ctx, nil, false)
}

func (r *ContractorRepository) selectContractors(ctx context.Context, where sq.Sqlizer, empty bool) ([]models.Contractor, error) {
	if empty {
		return nil, nil
	}

	builder := sq.Select(contractorColumns).From("contractors").OrderBy("id")
	if where != nil {
		builder = builder.Where(where)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build contractor query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contractors: %w", err)
	}
	defer rows.Close()

	var contractors []models.Contractor
	for rows.Next() {
		c, err := scanContractor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contractor: %w", err)
		}
		contractors = append(contractors, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contractors: %w", err)
	}

	return contractors, nil
}

// UpdateContractorStatus sets a contractor's status, reporting whether the contractor exists
func (r *ContractorRepository) UpdateContractorStatus(ctx context.Context, id int64, status models.ContractorStatus) (bool, error) {
	query := "UPDATE contractors SET status = ?, updated_at = ? WHERE id = ?"
	result, err := r.db.ExecContext(ctx, query, string(status), time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to update contractor status: %w", err)
	}
	return affected(result)
}

// UpdatePasswordHash replaces the stored password hash
func (r *ContractorRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string, temporary bool) (bool, error) {
	query := "UPDATE contractors SET password_hash = ?, temporary_password = ?, updated_at = ? WHERE id = ?"
	result, err := r.db.ExecContext(ctx, query, hash, temporary, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to update contractor password: %w", err)
	}
	return affected(result)
}

// DeleteContractor deletes a contractor and their event memberships
func (r *ContractorRepository) DeleteContractor(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.db.InTx(ctx, func(tx *database.Tx) error {
		// Writers holding a copy of an affected event must reload it
		bump := "UPDATE events SET version = version + 1 WHERE id IN (SELECT event_id FROM event_contractors WHERE contractor_id = ?)"
		if _, err := tx.ExecContext(ctx, bump, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM event_contractors WHERE contractor_id = ?", id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM contractors WHERE id = ?", id)
		if err != nil {
			return err
		}
		found, err = affected(result)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete contractor: %w", err)
	}
	return found, nil
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
