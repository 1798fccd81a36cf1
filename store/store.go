// Package store defines the content-record persistence contract between the
// pipeline's host and its storage backends. Records are keyed by an opaque id
// and carry the status column, the persisted outline and pipeline-state blobs
// used across the human-approval pause, and the publishable article fields.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Status is the host-side lifecycle of a content record. It doubles as the
// soft lock that keeps at most one active run per record: transitions go
// through TransitionStatus, which is compare-and-set.
type Status string

const (
	StatusQueued           Status = "QUEUED"
	StatusResearching      Status = "RESEARCHING"
	StatusPlanning         Status = "PLANNING"
	StatusAwaitingApproval Status = "AWAITING_APPROVAL"
	StatusWriting          Status = "WRITING"
	StatusCritic           Status = "CRITIC"
	StatusOptimizing       Status = "OPTIMIZING"
	StatusImage            Status = "IMAGE"
	StatusCompleted        Status = "COMPLETED"
	StatusRejected         Status = "REJECTED"
)

var (
	// ErrNotFound is returned when no record exists for the id.
	ErrNotFound = errors.New("record not found")

	// ErrStatusConflict is returned by TransitionStatus when the record is
	// not in the expected status, e.g. when a second run races for the same
	// record.
	ErrStatusConflict = errors.New("record status conflict")
)

// Record is one content item as the host persists it.
type Record struct {
	ID     string `json:"id"`
	Topic  string `json:"topic"`
	Status Status `json:"status"`

	// Outline is the persisted (possibly human-edited) outline blob.
	Outline json.RawMessage `json:"outline,omitempty"`

	// PipelineState is the opaque serialized pipeline state saved at the
	// approval pause and fed back on resume.
	PipelineState json.RawMessage `json:"pipelineState,omitempty"`

	// Publishable fields mapped from the pipeline's terminal state.
	Title      string `json:"title,omitempty"`
	Slug       string `json:"slug,omitempty"`
	Content    string `json:"content,omitempty"`
	Excerpt    string `json:"excerpt,omitempty"`
	CoverImage string `json:"coverImage,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordStore is implemented by every storage backend.
type RecordStore interface {
	// Save upserts the record.
	Save(ctx context.Context, record *Record) error

	// Load retrieves a record by id, or ErrNotFound.
	Load(ctx context.Context, id string) (*Record, error)

	// List returns all records, newest first.
	List(ctx context.Context) ([]*Record, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	// TransitionStatus moves the record from one status to another
	// atomically, returning ErrStatusConflict if it is not in the expected
	// status and ErrNotFound if it does not exist.
	TransitionStatus(ctx context.Context, id string, from, to Status) error
}
