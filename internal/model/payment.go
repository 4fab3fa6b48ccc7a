package model

import "time"

// Payment lifecycle states.
const (
	PaymentPending  = "pending"
	PaymentApproved = "approved"
	PaymentPaid     = "paid"
	PaymentRejected = "rejected"
)

// Payment is a milestone disbursement owed to an organization for a batch.
// Amount is in the smallest currency unit.
type Payment struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	BatchID        string     `json:"batch_id"`
	MilestoneType  string     `json:"milestone_type"`
	Amount         int64      `json:"amount"`
	Status         string     `json:"status"`
	DueDate        time.Time  `json:"due_date"`
	PaidDate       *time.Time `json:"paid_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (p *Payment) Kind() Kind       { return KindPayment }
func (p *Payment) RecordID() string { return p.ID }

func (p *Payment) IndexEntries() []IndexEntry {
	var entries []IndexEntry
	if p.OrganizationID != "" {
		entries = append(entries, IndexEntry{Name: "organization", Value: p.OrganizationID})
	}
	if p.BatchID != "" {
		entries = append(entries, IndexEntry{Name: "batch", Value: p.BatchID})
	}
	return entries
}
