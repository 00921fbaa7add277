package feed

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/revrec/internal/domain"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"application/json; charset=utf-8", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"application/x-yaml", FormatYAML, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, domain.ErrInvalidFeedFormat, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("feeds/contract.yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = FormatFromPath("contract.JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = FormatFromPath("contract")
	assert.ErrorIs(t, err, domain.ErrInvalidFeedFormat)
}

func TestDecodeEventsJSONAndYAMLAgree(t *testing.T) {
	var decoded [][]domain.Event
	for _, path := range []string{"testdata/events.json", "testdata/events.yaml"} {
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()

		format, err := FormatFromPath(path)
		require.NoError(t, err)

		events, err := DecodeEvents(f, format)
		require.NoError(t, err, path)
		decoded = append(decoded, events)
	}

	jsonEvents, yamlEvents := decoded[0], decoded[1]
	require.Len(t, jsonEvents, 3)
	require.Len(t, yamlEvents, 3)

	for i := range jsonEvents {
		assert.Equal(t, jsonEvents[i].Kind, yamlEvents[i].Kind)
		assert.True(t, jsonEvents[i].OccurredAt.Equal(yamlEvents[i].OccurredAt))
		assert.True(t, jsonEvents[i].Amount.Equal(yamlEvents[i].Amount), "amount %d", i)
		assert.Equal(t, jsonEvents[i].Key, yamlEvents[i].Key)
	}

	assert.Equal(t, domain.EventKindInvoice, jsonEvents[0].Kind)
	assert.Equal(t, "inv-1", jsonEvents[0].Key)
	assert.Equal(t, "40.5", jsonEvents[2].Amount.String())
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), jsonEvents[1].OccurredAt.UTC())
}

func TestDecodeEventDocumentKeepsContractID(t *testing.T) {
	doc, err := DecodeEventDocument(strings.NewReader(`{"contract_id":"c-7","events":[]}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "c-7", doc.ContractID)
	assert.Empty(t, doc.DomainEvents())
}

func TestDecodeEventsKeepsUnknownKinds(t *testing.T) {
	events, err := DecodeEvents(strings.NewReader(`{"events":[{"kind":"refund","at":"2024-01-01T00:00:00Z","amount":"0"}]}`), FormatJSON)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventKind("refund"), events[0].Kind)
	assert.False(t, events[0].Kind.IsValid())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		format Format
	}{
		{"malformed json", `{"events":[`, FormatJSON},
		{"bad amount", `{"events":[{"kind":"cash","amount":"ten"}]}`, FormatJSON},
		{"malformed yaml", "events:\n  - kind: [", FormatYAML},
		{"empty document", "", FormatJSON},
		{"unknown format", `{}`, Format("xml")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvents(strings.NewReader(tt.body), tt.format)
			assert.ErrorIs(t, err, domain.ErrInvalidFeedFormat)
		})
	}
}

func TestDecodeReconciliationYAML(t *testing.T) {
	f, err := os.Open("testdata/reconciliation.yaml")
	require.NoError(t, err)
	defer f.Close()

	doc, err := DecodeReconciliation(f, FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "debit", doc.DefaultNature)
	require.Len(t, doc.Opening, 2)
	assert.Equal(t, "25", doc.Opening["contract_liability"].String())

	inputs := doc.Inputs()
	require.Len(t, inputs, 3)
	assert.Equal(t, "suspense", inputs[2].EntryType)
	assert.Equal(t, "5", inputs[2].Amount.String())
}
