package emaillog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry records one outgoing email attempt.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	EmailType string    `json:"email_type"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"` // sent or failed
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository handles email log persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts one attempt row.
func (r *Repository) Record(ctx context.Context, emailType, recipient, subject, status, errMsg string) error {
	const q = `INSERT INTO email_logs (email_type, recipient, subject, status, error)
		VALUES ($1, $2, $3, $4, NULLIF($5,''))`
	_, err := r.pool.Exec(ctx, q, emailType, recipient, subject, status, errMsg)
	return err
}

// ListRecent returns the most recent attempts, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT id, email_type, recipient, subject, status, COALESCE(error,''), created_at
		FROM email_logs ORDER BY created_at DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.EmailType, &e.Recipient, &e.Subject, &e.Status, &e.Error, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
