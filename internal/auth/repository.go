package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cmh-events/backend/internal/models"
)

// Repository handles profile persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a profile repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns a profile by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	const q = `SELECT id, email, password_hash, COALESCE(organization_name,''), is_admin, created_at, updated_at
		FROM profiles WHERE id = $1`
	var p models.Profile
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Email, &p.PasswordHash, &p.OrganizationName, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByEmail returns a profile by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	const q = `SELECT id, email, password_hash, COALESCE(organization_name,''), is_admin, created_at, updated_at
		FROM profiles WHERE email = $1`
	var p models.Profile
	err := r.pool.QueryRow(ctx, q, email).Scan(&p.ID, &p.Email, &p.PasswordHash, &p.OrganizationName, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new profile. is_admin always starts false; the flag is
// only ever set by hand in the database.
func (r *Repository) Create(ctx context.Context, email, passwordHash, organizationName string) (*models.Profile, error) {
	const q = `INSERT INTO profiles (email, password_hash, organization_name)
		VALUES ($1, $2, NULLIF($3,''))
		RETURNING id, email, password_hash, COALESCE(organization_name,''), is_admin, created_at, updated_at`
	var p models.Profile
	err := r.pool.QueryRow(ctx, q, email, passwordHash, organizationName).
		Scan(&p.ID, &p.Email, &p.PasswordHash, &p.OrganizationName, &p.IsAdmin, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePassword replaces the stored password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	const q = `UPDATE profiles SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.pool.Exec(ctx, q, passwordHash, id)
	return err
}

// IsAdmin returns the live administrator flag for a profile.
func (r *Repository) IsAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	const q = `SELECT is_admin FROM profiles WHERE id = $1`
	var isAdmin bool
	if err := r.pool.QueryRow(ctx, q, id).Scan(&isAdmin); err != nil {
		return false, err
	}
	return isAdmin, nil
}
