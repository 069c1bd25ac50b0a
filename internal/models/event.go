package models

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a community event listing.
//
// Approved is the moderation flag: false means pending review and hidden from
// the public surface, true means visible. Owner (UserID) never changes after
// creation.
type Event struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	Title            string     `json:"title"`
	OrganizationName string     `json:"organization_name,omitempty"`
	DateTime         *time.Time `json:"date_time,omitempty"`
	Pricing          string     `json:"pricing,omitempty"`
	Location         string     `json:"location"`
	About            string     `json:"about,omitempty"`
	ContactDetails   string     `json:"contact_details,omitempty"`
	ImageURL         string     `json:"image_url,omitempty"`
	Approved         bool       `json:"approved"`
	CreatedAt        time.Time  `json:"created_at"`
}
