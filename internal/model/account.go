package model

import "time"

// Account is a login credential record for any actor role. Deactivated
// accounts keep their record but fail authentication; only a super_admin may
// flip Active.
type Account struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordDigest string    `json:"password_digest,omitempty"`
	Role           string    `json:"role"`
	Subtype        string    `json:"subtype,omitempty"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (a *Account) Kind() Kind       { return KindAccount }
func (a *Account) RecordID() string { return a.ID }

func (a *Account) IndexEntries() []IndexEntry {
	var entries []IndexEntry
	if a.Email != "" {
		entries = append(entries, IndexEntry{Name: "email", Value: a.Email, Unique: true})
	}
	return entries
}

// Sanitized returns a copy safe to serialize in API responses.
func (a *Account) Sanitized() Account {
	out := *a
	out.PasswordDigest = ""
	return out
}
