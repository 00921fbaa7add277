package domain

import "time"

// Event types
const (
	EventTypeJournalPosted = "journal.posted"
)

// Aggregate types
const (
	AggregateTypeContract = "contract"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// JournalPostedEvent payload
type JournalPostedEvent struct {
	ContractID string `json:"contract_id"`
	EntryCount int    `json:"entry_count"`
	Debits     string `json:"debits"`
	Credits    string `json:"credits"`
	Billed     string `json:"billed"`
	Collected  string `json:"collected"`
	Recognized string `json:"recognized"`
}

// Payload converts the event into an outbox payload.
func (e JournalPostedEvent) Payload() map[string]any {
	return map[string]any{
		"contract_id": e.ContractID,
		"entry_count": e.EntryCount,
		"debits":      e.Debits,
		"credits":     e.Credits,
		"billed":      e.Billed,
		"collected":   e.Collected,
		"recognized":  e.Recognized,
	}
}
