package model

import "time"

// Organization lifecycle states.
const (
	OrgPending   = "pending"
	OrgActive    = "active"
	OrgSuspended = "suspended"
	OrgRejected  = "rejected"
)

// ContactInfo is the reachable address block on an organization record.
type ContactInfo struct {
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Organization is a training partner. Its owner reference is its own id: a
// partner_org actor whose organization id equals ID owns the record.
type Organization struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Email              string      `json:"email"`
	Status             string      `json:"status"`
	TrustScore         float64     `json:"trust_score"`
	Contact            ContactInfo `json:"contact"`
	TaxID              string      `json:"tax_id,omitempty"`
	RegistrationNumber string      `json:"registration_number,omitempty"`
	ApprovedBy         string      `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time  `json:"approved_at,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

func (o *Organization) Kind() Kind       { return KindOrganization }
func (o *Organization) RecordID() string { return o.ID }

func (o *Organization) IndexEntries() []IndexEntry {
	var entries []IndexEntry
	if o.Email != "" {
		entries = append(entries, IndexEntry{Name: "email", Value: o.Email, Unique: true})
	}
	return entries
}
