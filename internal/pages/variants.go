package pages

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SlugAllocator hands out sibling unique slugs.
type SlugAllocator interface {
	AutogeneratedSlug(ctx context.Context, parentID uuid.UUID, base string, exclude uuid.UUID) (string, error)
}

// Variant adds kind specific storage and validation to the common page row.
type Variant interface {
	Kind() string
	// Clean validates the content and derives computed fields before a
	// revision is written. Returning an error aborts the save.
	Clean(ctx context.Context, content *Content, slugs SlugAllocator) error
	// Decode restores the payload captured in a revision snapshot.
	Decode(data json.RawMessage) (any, error)
	// Load returns the payload stored in the variant table.
	Load(ctx context.Context, pageID uuid.UUID) (any, error)
	// Store writes payload into the variant table.
	Store(ctx context.Context, page *Page, payload any) error
}

// PublishHook lets a variant adjust the materialized page before it goes live.
type PublishHook interface {
	BeforePublish(ctx context.Context, content *Content) error
}

// structural pages (root and indexes) carry no payload.
type structuralVariant struct {
	kind string
}

func (v structuralVariant) Kind() string { return v.kind }

func (structuralVariant) Clean(context.Context, *Content, SlugAllocator) error { return nil }

func (structuralVariant) Decode(json.RawMessage) (any, error) { return nil, nil }

func (structuralVariant) Load(context.Context, uuid.UUID) (any, error) { return nil, nil }

func (structuralVariant) Store(context.Context, *Page, any) error { return nil }

type snapshotDocument struct {
	Page *Page           `json:"page"`
	Data json.RawMessage `json:"data,omitempty"`
}

func encodeSnapshot(content *Content) (map[string]any, error) {
	data, err := json.Marshal(content.Payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %v", ErrSnapshotInvalid, err)
	}
	raw, err := json.Marshal(snapshotDocument{Page: content.Page, Data: data})
	if err != nil {
		return nil, fmt.Errorf("%w: encode page: %v", ErrSnapshotInvalid, err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	return out, nil
}

func decodeSnapshot(snapshot map[string]any) (*Page, json.RawMessage, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	var doc snapshotDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	if doc.Page == nil {
		return nil, nil, fmt.Errorf("%w: missing page", ErrSnapshotInvalid)
	}
	return doc.Page, doc.Data, nil
}

// DecodeJSON is a Decode helper for variants with a struct payload.
func DecodeJSON[T any](data json.RawMessage) (any, error) {
	payload := new(T)
	if len(data) == 0 || string(data) == "null" {
		return payload, nil
	}
	if err := json.Unmarshal(data, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotInvalid, err)
	}
	return payload, nil
}
