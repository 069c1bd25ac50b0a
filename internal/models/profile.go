package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile represents an identity record. The is_admin flag is provisioned
// directly in the database; no API endpoint ever sets it.
type Profile struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	OrganizationName string    `json:"organization_name,omitempty"`
	IsAdmin          bool      `json:"is_admin"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProfilePublic is Profile without sensitive fields for API responses.
type ProfilePublic struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	OrganizationName string    `json:"organization_name,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ToPublic converts Profile to ProfilePublic.
func (p *Profile) ToPublic() ProfilePublic {
	return ProfilePublic{
		ID:               p.ID,
		Email:            p.Email,
		OrganizationName: p.OrganizationName,
		CreatedAt:        p.CreatedAt,
	}
}
