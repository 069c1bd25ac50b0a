package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cmh-events/backend/internal/models"
)

const eventColumns = `id, user_id, title, COALESCE(organization_name,''), date_time,
	COALESCE(pricing,''), location, COALESCE(about,''), COALESCE(contact_details,''),
	COALESCE(image_url,''), approved, created_at`

// EventUpdate carries the editable field set for an event. The owner reference
// and creation timestamp are not part of it; they never change.
type EventUpdate struct {
	Title            string
	OrganizationName string
	DateTime         *time.Time
	Pricing          string
	Location         string
	About            string
	ContactDetails   string
	ImageURL         string
}

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new event. The moderation flag is forced to pending here,
// not taken from the caller.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (user_id, title, organization_name, date_time, pricing, location, about, contact_details, image_url, approved)
		VALUES ($1, $2, NULLIF($3,''), $4, NULLIF($5,''), $6, NULLIF($7,''), NULLIF($8,''), NULLIF($9,''), FALSE)
		RETURNING id, approved, created_at`
	return r.pool.QueryRow(ctx, q,
		e.UserID, e.Title, e.OrganizationName, e.DateTime, e.Pricing, e.Location, e.About, e.ContactDetails, e.ImageURL,
	).Scan(&e.ID, &e.Approved, &e.CreatedAt)
}

// GetByID returns an event by ID regardless of moderation state.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, q, id))
}

// GetApprovedByID returns an approved event by ID. A pending event and a
// nonexistent one are indistinguishable to callers; both return pgx.ErrNoRows.
func (r *Repository) GetApprovedByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND approved = TRUE`
	return r.scanOne(r.pool.QueryRow(ctx, q, id))
}

// ListApproved returns approved events ordered by scheduled date/time ascending.
func (r *Repository) ListApproved(ctx context.Context) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE approved = TRUE
		ORDER BY date_time ASC NULLS LAST, created_at ASC`
	return r.list(ctx, q)
}

// ListByOwner returns all events for one identity, newest first.
func (r *Repository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, userID)
}

// ListAll returns every event regardless of moderation state, newest first.
// Moderation-dashboard sized; no pagination.
func (r *Repository) ListAll(ctx context.Context) ([]models.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC`
	return r.list(ctx, q)
}

// Update replaces the editable fields and resets the moderation flag to
// pending, requiring re-review. Returns pgx.ErrNoRows when the event is gone.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, upd EventUpdate) error {
	const q = `UPDATE events SET
		title = $1, organization_name = NULLIF($2,''), date_time = $3, pricing = NULLIF($4,''),
		location = $5, about = NULLIF($6,''), contact_details = NULLIF($7,''), image_url = NULLIF($8,''),
		approved = FALSE
		WHERE id = $9`
	tag, err := r.pool.Exec(ctx, q,
		upd.Title, upd.OrganizationName, upd.DateTime, upd.Pricing, upd.Location, upd.About, upd.ContactDetails, upd.ImageURL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Approve flips the moderation flag to approved. Returns pgx.ErrNoRows when
// the event is gone.
func (r *Repository) Approve(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE events SET approved = TRUE WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes an event by ID. Deleting an already-deleted ID returns
// pgx.ErrNoRows and touches nothing else.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM events WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) scanOne(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.OrganizationName, &e.DateTime,
		&e.Pricing, &e.Location, &e.About, &e.ContactDetails, &e.ImageURL, &e.Approved, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) list(ctx context.Context, q string, args ...interface{}) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.OrganizationName, &e.DateTime,
			&e.Pricing, &e.Location, &e.About, &e.ContactDetails, &e.ImageURL, &e.Approved, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
