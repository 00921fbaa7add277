// Package feed decodes event and reconciliation documents from JSON or YAML.
package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/iho/revrec/internal/domain"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name or media type such as "application/yaml".
// An empty string means JSON.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}

	switch s {
	case "", "json", "application/json":
		return FormatJSON, nil
	case "yaml", "yml", "application/yaml", "application/x-yaml", "text/yaml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidFeedFormat, s)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", domain.ErrInvalidFeedFormat, path)
	}
	return ParseFormat(ext)
}

// EventRecord is one business event as written in a feed.
type EventRecord struct {
	Kind   string          `json:"kind" yaml:"kind"`
	At     time.Time       `json:"at" yaml:"at"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
	Key    string          `json:"key,omitempty" yaml:"key,omitempty"`
}

// ToDomain converts the record. Unknown kinds are kept so posting can reject them.
func (r EventRecord) ToDomain() domain.Event {
	return domain.Event{
		OccurredAt: r.At,
		Kind:       domain.EventKind(r.Kind),
		Key:        r.Key,
		Amount:     r.Amount,
	}
}

// EventDocument is a feed of business events.
type EventDocument struct {
	ContractID string        `json:"contract_id,omitempty" yaml:"contract_id,omitempty"`
	Events     []EventRecord `json:"events" yaml:"events"`
}

// DomainEvents converts every record of the document.
func (d EventDocument) DomainEvents() []domain.Event {
	events := make([]domain.Event, 0, len(d.Events))
	for _, r := range d.Events {
		events = append(events, r.ToDomain())
	}
	return events
}

// ReconciliationRecord is one journal activity line of a reconciliation feed.
type ReconciliationRecord struct {
	EntryType string          `json:"entry_type" yaml:"entry_type"`
	Amount    decimal.Decimal `json:"amount" yaml:"amount"`
}

// ReconciliationDocument is journal activity with opening balances per entry type.
type ReconciliationDocument struct {
	Entries       []ReconciliationRecord     `json:"entries" yaml:"entries"`
	Opening       map[string]decimal.Decimal `json:"opening,omitempty" yaml:"opening,omitempty"`
	DefaultNature string                     `json:"default_nature,omitempty" yaml:"default_nature,omitempty"`
}

// Inputs converts the activity lines.
func (d ReconciliationDocument) Inputs() []domain.ReconciliationInput {
	inputs := make([]domain.ReconciliationInput, 0, len(d.Entries))
	for _, e := range d.Entries {
		inputs = append(inputs, domain.ReconciliationInput{EntryType: e.EntryType, Amount: e.Amount})
	}
	return inputs
}

// DecodeEventDocument reads an event document.
func DecodeEventDocument(r io.Reader, format Format) (*EventDocument, error) {
	var doc EventDocument
	if err := decode(r, format, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DecodeEvents reads an event document and returns its events.
func DecodeEvents(r io.Reader, format Format) ([]domain.Event, error) {
	doc, err := DecodeEventDocument(r, format)
	if err != nil {
		return nil, err
	}
	return doc.DomainEvents(), nil
}

// DecodeReconciliation reads a reconciliation document.
func DecodeReconciliation(r io.Reader, format Format) (*ReconciliationDocument, error) {
	var doc ReconciliationDocument
	if err := decode(r, format, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func decode(r io.Reader, format Format, v any) error {
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(v)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(v)
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidFeedFormat, format)
	}

	if err == io.EOF {
		return fmt.Errorf("%w: empty document", domain.ErrInvalidFeedFormat)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidFeedFormat, err)
	}
	return nil
}
