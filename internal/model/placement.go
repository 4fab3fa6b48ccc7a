package model

import "time"

// Placement offer states (status axis).
const (
	PlacementOffered   = "offered"
	PlacementAccepted  = "accepted"
	PlacementRejected  = "rejected"
	PlacementCompleted = "completed"
)

// Placement verification states (verification axis, independent of the offer
// axis; the two are validated by separate state machines).
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// Placement links a student to an employer through a batch. It has two owner
// references: the student and the employer may each act on it.
type Placement struct {
	ID                 string    `json:"id"`
	StudentID          string    `json:"student_id"`
	BatchID            string    `json:"batch_id"`
	EmployerID         string    `json:"employer_id"`
	JobTitle           string    `json:"job_title,omitempty"`
	Status             string    `json:"status"`
	VerificationStatus string    `json:"verification_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (p *Placement) Kind() Kind       { return KindPlacement }
func (p *Placement) RecordID() string { return p.ID }

func (p *Placement) IndexEntries() []IndexEntry {
	var entries []IndexEntry
	if p.StudentID != "" {
		entries = append(entries, IndexEntry{Name: "student", Value: p.StudentID})
	}
	if p.EmployerID != "" {
		entries = append(entries, IndexEntry{Name: "employer", Value: p.EmployerID})
	}
	if p.BatchID != "" {
		entries = append(entries, IndexEntry{Name: "batch", Value: p.BatchID})
	}
	return entries
}
