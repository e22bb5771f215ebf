package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is the persisted form of the history:
//
//	{ "history": [ {"id", "type", "content", "timestamp"}, ... ], "max_items": N }
//
// Records are ordered most recent first.
type Document struct {
	History  []EntryRecord `json:"history"`
	Capacity int           `json:"max_items"`
}

// EntryRecord is one persisted entry. Content is the literal text for text
// entries and standard base64 for images. Timestamp is Unix seconds.
type EntryRecord struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Content   string  `json:"content"`
	Timestamp float64 `json:"timestamp"`

	// invalid is set while parsing when the record could not be read;
	// Decode skips such records and reports the error.
	invalid error
}

// Err returns the parse problem recorded for r, if any.
func (r EntryRecord) Err() error {
	return r.invalid
}

// UnmarshalJSON reads a record, recording rather than returning problems
// with individual fields so one bad record cannot fail the whole document.
func (r *EntryRecord) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID        *string  `json:"id"`
		Type      *string  `json:"type"`
		Content   *string  `json:"content"`
		Timestamp *float64 `json:"timestamp"`
	}
	*r = EntryRecord{}

	if err := json.Unmarshal(data, &aux); err != nil {
		r.invalid = fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		return nil
	}
	if aux.ID != nil {
		r.ID = *aux.ID
	}

	switch {
	case aux.ID == nil:
		r.invalid = fmt.Errorf("%w: missing id", ErrMalformedRecord)
	case aux.Type == nil:
		r.invalid = fmt.Errorf("%w: missing type", ErrMalformedRecord)
	case aux.Content == nil:
		r.invalid = fmt.Errorf("%w: missing content", ErrMalformedRecord)
	}
	if r.invalid != nil {
		return nil
	}

	r.Type = *aux.Type
	r.Content = *aux.Content
	if aux.Timestamp != nil {
		r.Timestamp = *aux.Timestamp
	}
	return nil
}

// Parse reads a history document. It fails only when data is not a JSON
// object with the expected top-level shape; problems inside individual
// records are kept on the records and surface from Decode.
func Parse(data []byte) (*Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: not a JSON object", ErrMalformedDocument)
	}

	var aux struct {
		History  []json.RawMessage `json:"history"`
		MaxItems json.RawMessage   `json:"max_items"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	doc := &Document{History: make([]EntryRecord, len(aux.History))}
	for i, raw := range aux.History {
		// EntryRecord.UnmarshalJSON never fails, it marks the record instead.
		_ = json.Unmarshal(raw, &doc.History[i])
	}

	// A missing or unusable max_items leaves Capacity at 0, which Decode
	// treats as the default.
	if len(aux.MaxItems) > 0 {
		var n int
		if err := json.Unmarshal(aux.MaxItems, &n); err == nil {
			doc.Capacity = n
		}
	}
	return doc, nil
}

// Marshal renders doc with two-space indentation.
func Marshal(doc *Document) ([]byte, error) {
	if doc.History == nil {
		doc = &Document{History: []EntryRecord{}, Capacity: doc.Capacity}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history document: %w", err)
	}
	return append(data, '\n'), nil
}
