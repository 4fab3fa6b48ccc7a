package model

import "time"

// Student lifecycle states.
const (
	StudentEnrolled  = "enrolled"
	StudentActive    = "active"
	StudentCompleted = "completed"
	StudentDropped   = "dropped"
)

// Student is a trainee. Email is unique across the program.
type Student struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	OrganizationID string    `json:"organization_id,omitempty"`
	BatchID        string    `json:"batch_id,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (s *Student) Kind() Kind       { return KindStudent }
func (s *Student) RecordID() string { return s.ID }

func (s *Student) IndexEntries() []IndexEntry {
	var entries []IndexEntry
	if s.Email != "" {
		entries = append(entries, IndexEntry{Name: "email", Value: s.Email, Unique: true})
	}
	if s.OrganizationID != "" {
		entries = append(entries, IndexEntry{Name: "organization", Value: s.OrganizationID})
	}
	if s.BatchID != "" {
		entries = append(entries, IndexEntry{Name: "batch", Value: s.BatchID})
	}
	return entries
}
