// Package docstore is the document-store boundary used by the group and
// meeting repositories.
//
// Every document carries an integer "version" field. Writes are conditional
// on the version the caller read and are expressed as field-level atomic
// primitives (set, add-to-set, pull, push) rather than whole-document
// replacement, so unrelated concurrent edits never overwrite each other.
// A successful Update increments the version by one.
//
// Two backends implement Store: Mongo (production) and Memory (tests and
// local development). Both follow the same semantics, including positional
// "$" paths that address one element of an embedded array.
package docstore

import (
	"context"
	"errors"
)

// VersionField is the name of the compare-and-swap field on every document.
const VersionField = "version"

var (
	// ErrNotFound is returned when no document has the requested id.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrVersionMismatch is returned when the document exists but its version
	// (or the addressed array element) no longer matches the caller's read.
	ErrVersionMismatch = errors.New("docstore: version mismatch")
	// ErrDuplicate is returned when inserting an id that already exists.
	ErrDuplicate = errors.New("docstore: duplicate id")
	// ErrUnavailable wraps timeouts, cancellations and connectivity failures.
	ErrUnavailable = errors.New("docstore: store unavailable")
)

// Field is a (dotted path, value) pair used by Update.
type Field struct {
	Path  string
	Value any
}

// F is shorthand for Field{Path: path, Value: v}.
func F(path string, v any) Field { return Field{Path: path, Value: v} }

// ElemMatch selects the element of an embedded array that a "$" path
// segment refers to: the first element of Array whose Key equals Value.
type ElemMatch struct {
	Array string
	Key   string
	Value any
}

// Update is a set of atomic field-level operations applied together.
type Update struct {
	Set      []Field
	AddToSet []Field
	Pull     []Field // a bson.M value removes embedded documents matching its fields
	Push     []Field

	// Elem is required when any path contains a "$" segment. If no element
	// matches, the update fails with ErrVersionMismatch.
	Elem *ElemMatch
}

// FindOptions controls ordering of FindContains results.
type FindOptions struct {
	SortField string
	SortDesc  bool
}

// FindOption mutates FindOptions.
type FindOption func(*FindOptions)

// SortBy orders results on field; ties keep insertion order (reversed when
// desc is true).
func SortBy(field string, desc bool) FindOption {
	return func(o *FindOptions) {
		o.SortField = field
		o.SortDesc = desc
	}
}

// Store is the per-document persistence contract.
type Store interface {
	// Get decodes the document with the given id into out.
	Get(ctx context.Context, coll, id string, out any) error

	// Insert stores doc under id. The document's version field should be
	// initialised by the caller (normally 1).
	Insert(ctx context.Context, coll, id string, doc any) error

	// Update applies u if the document's version equals version, and bumps
	// the version.
	Update(ctx context.Context, coll, id string, version int64, u Update) error

	// Delete removes the document if its version equals version.
	Delete(ctx context.Context, coll, id string, version int64) error

	// FindContains decodes into out (a pointer to a slice) every document
	// whose field equals value or, for array fields, contains value.
	FindContains(ctx context.Context, coll, field string, value any, out any, opts ...FindOption) error
}

func findOptions(opts []FindOption) FindOptions {
	var o FindOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
