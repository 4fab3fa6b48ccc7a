package model

import "time"

// Batch lifecycle states.
const (
	BatchUpcoming  = "upcoming"
	BatchOngoing   = "ongoing"
	BatchCompleted = "completed"
	BatchCancelled = "cancelled"
)

// Batch is a training cohort run by an organization at a center. Enrolled is
// maintained by the enrollment sequencer and must not exceed Capacity at
// enrollment time.
type Batch struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	CenterID       string    `json:"center_id"`
	Course         string    `json:"course,omitempty"`
	Capacity       int       `json:"capacity"`
	Enrolled       int       `json:"enrolled"`
	Status         string    `json:"status"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (b *Batch) Kind() Kind       { return KindBatch }
func (b *Batch) RecordID() string { return b.ID }

func (b *Batch) IndexEntries() []IndexEntry {
	var entries []IndexEntry
	if b.OrganizationID != "" {
		entries = append(entries, IndexEntry{Name: "organization", Value: b.OrganizationID})
	}
	if b.CenterID != "" {
		entries = append(entries, IndexEntry{Name: "center", Value: b.CenterID})
	}
	return entries
}
