package models

import "time"

// GuestRecord represents one guest-list row moving through the invitation pipeline
type GuestRecord struct {
	Row      int        `json:"row"`
	FullName string     `json:"full_name"`
	Email    string     `json:"email"`
	Status   SendStatus `json:"status"`
	Error    string     `json:"error,omitempty"`
}

// SendStatus represents the invitation send lifecycle of a guest record
type SendStatus string

const (
	StatusPending SendStatus = "pending"
	StatusSending SendStatus = "sending"
	StatusSuccess SendStatus = "success"
	StatusError   SendStatus = "error"
)

// Valid reports whether s is one of the known lifecycle states
func (s SendStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSending, StatusSuccess, StatusError:
		return true
	}
	return false
}

// Eligible reports whether the record will be picked up by the next dispatch run
func (g GuestRecord) Eligible() bool {
	return g.Status == StatusPending
}

// SendOutcome is what a single send operation reports back
type SendOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// DispatchResult aggregates the outcome of one dispatch run
type DispatchResult struct {
	RunID   string `json:"run_id,omitempty"`
	Total   int    `json:"total"`
	Success int    `json:"success"`
	Failed  int    `json:"failed"`
	Aborted bool   `json:"aborted,omitempty"`
}

// SentRecipient represents an invitation the portal has already sent
type SentRecipient struct {
	ID         string    `json:"id"`
	FullName   string    `json:"recipient_name"`
	Email      string    `json:"recipient_email"`
	TemplateID string    `json:"template_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}
