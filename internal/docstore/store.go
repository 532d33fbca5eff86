// Package docstore is a small document store with optimistic transactions.
// Documents are JSON bodies addressed by (collection, id) and carry a
// version that increases on every write.  A transaction records the version
// of everything it reads, buffers its writes, and commits only if none of
// those versions moved in the meantime.  When they did, the whole
// transaction function runs again on a fresh snapshot, up to a bounded
// number of attempts.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrStale is returned by a Backend commit when a document or query result
// read by the transaction changed before the commit.  RunTransaction
// consumes it and retries; callers never see it directly.
var ErrStale = errors.New("stale transaction read")

// ErrTransactionConflict is returned when a transaction kept conflicting
// with concurrent writers until its retry budget ran out.
var ErrTransactionConflict = errors.New("transaction conflict")

// Key addresses a document.
type Key struct {
	Collection string
	ID         string
}

// Doc is a stored document.  Version 0 never appears on a stored
// document; it is reserved to record "read as absent".
type Doc struct {
	Key
	Version int64
	Body    []byte
}

// Filter is an equality predicate on a top-level body field.  Value is
// compared in its JSON encoding, so a string filter never matches a number.
type Filter struct {
	Field string
	Value any
}

func (f *Filter) encoded() ([]byte, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f.Value)
}

// QueryRead records the result of a query made inside a transaction.  The
// backend re-runs the query at commit time and compares Seen against the
// fresh result, which catches rows that appeared or vanished.
type QueryRead struct {
	Collection string
	Filter     *Filter
	Seen       map[string]int64
}

// WriteKind enumerates buffered write operations.
type WriteKind int

const (
	// WriteCreate inserts a document that must not exist yet.
	WriteCreate WriteKind = iota + 1
	// WritePut inserts or replaces a document.
	WritePut
	// WriteDelete removes a document.
	WriteDelete
)

// Write is one buffered mutation.
type Write struct {
	Kind WriteKind
	Key  Key
	Body []byte
}

// Commit is everything a backend needs to validate and apply a transaction.
type Commit struct {
	Reads   map[Key]int64
	Queries []QueryRead
	Writes  []Write
}

// Backend is the storage engine behind a Store.
type Backend interface {
	Get(ctx context.Context, collection, id string) (Doc, error)
	Query(ctx context.Context, collection string, filter *Filter) ([]Doc, error)
	// Commit validates the read set and applies the writes atomically.  It
	// returns ErrStale when validation fails.
	Commit(ctx context.Context, c Commit) error
}

// Store runs transactions against a Backend.
type Store struct {
	backend     Backend
	maxAttempts int
	backoff     time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithMaxAttempts bounds how many times a conflicting transaction runs.
func WithMaxAttempts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithBackoff sets the base delay between attempts.  Each retry waits a
// random duration up to attempt*base.
func WithBackoff(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.backoff = d
		}
	}
}

// New returns a Store over the given backend.
func New(b Backend, opts ...Option) *Store {
	s := &Store{backend: b, maxAttempts: 5, backoff: 5 * time.Millisecond}
	for _, o := range opts {
		o(s)
	}
	return s
}

// TxFunc is the body of a transaction.  Returning an error aborts the
// transaction and discards its writes.
type TxFunc func(ctx context.Context, tx *Tx) error

// RunTransaction executes fn inside an optimistic transaction, retrying the
// whole function when the commit detects a concurrent change.  Errors
// returned by fn are passed through untouched and nothing is written.
func (s *Store) RunTransaction(ctx context.Context, fn TxFunc) error {
	return s.run(ctx, fn, false)
}

// ReadTransaction runs fn like RunTransaction but always validates the read
// set, so everything fn read comes from one consistent snapshot.  fn is
// rerun when a concurrent commit changed any of it.  Writes are rejected.
func (s *Store) ReadTransaction(ctx context.Context, fn TxFunc) error {
	return s.run(ctx, func(ctx context.Context, tx *Tx) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		if len(tx.writes) > 0 {
			return errors.New("docstore: write in read transaction")
		}
		return nil
	}, true)
}

func (s *Store) run(ctx context.Context, fn TxFunc, validateReads bool) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := newTx(s.backend)
		if err := fn(ctx, tx); err != nil {
			return err
		}
		if len(tx.writes) == 0 && !validateReads {
			return nil
		}
		err := s.backend.Commit(ctx, tx.commit())
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrStale) {
			return err
		}
		if attempt >= s.maxAttempts {
			return fmt.Errorf("%w: gave up after %d attempts", ErrTransactionConflict, attempt)
		}
		if err := s.wait(ctx, attempt); err != nil {
			return err
		}
	}
}

func (s *Store) wait(ctx context.Context, attempt int) error {
	if s.backoff <= 0 {
		return nil
	}
	d := time.Duration(rand.Int64N(int64(s.backoff)*int64(attempt) + 1))
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Get reads one committed document outside of any transaction.
func (s *Store) Get(ctx context.Context, collection, id string, dst any) error {
	d, err := s.backend.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	return json.Unmarshal(d.Body, dst)
}

// Find returns committed documents matching filter; a nil filter lists the
// whole collection.  Results are ordered by id.
func (s *Store) Find(ctx context.Context, collection string, filter *Filter) ([]Snapshot, error) {
	docs, err := s.backend.Query(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	return snapshots(docs), nil
}

// Snapshot is a document returned by a query.
type Snapshot struct {
	ID      string
	Version int64
	body    []byte
}

// Decode unmarshals the document body into dst.
func (s Snapshot) Decode(dst any) error { return json.Unmarshal(s.body, dst) }

func snapshots(docs []Doc) []Snapshot {
	out := make([]Snapshot, 0, len(docs))
	for _, d := range docs {
		out = append(out, Snapshot{ID: d.ID, Version: d.Version, body: d.Body})
	}
	return out
}

// Tx is a single transaction attempt.  It is not safe for concurrent use.
type Tx struct {
	backend Backend
	reads   map[Key]int64
	queries []QueryRead
	writes  []Write
	pending map[Key]int
}

func newTx(b Backend) *Tx {
	return &Tx{
		backend: b,
		reads:   make(map[Key]int64),
		pending: make(map[Key]int),
	}
}

// Get reads a document into dst and adds it to the read set.  A document
// written earlier in the same transaction is returned as written.
func (tx *Tx) Get(ctx context.Context, collection, id string, dst any) error {
	k := Key{Collection: collection, ID: id}
	if i, ok := tx.pending[k]; ok {
		w := tx.writes[i]
		if w.Kind == WriteDelete {
			return ErrNotFound
		}
		return json.Unmarshal(w.Body, dst)
	}
	d, err := tx.backend.Get(ctx, collection, id)
	if errors.Is(err, ErrNotFound) {
		tx.observe(k, 0)
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	tx.observe(k, d.Version)
	return json.Unmarshal(d.Body, dst)
}

// observe keeps the first version seen for a key; a later read of a
// different version means the snapshot is already inconsistent and the
// commit will fail validation anyway.
func (tx *Tx) observe(k Key, version int64) {
	if _, ok := tx.reads[k]; !ok {
		tx.reads[k] = version
	}
}

// Find runs an equality query and adds its result to the read set.  Writes
// buffered in this transaction are not reflected in the result.
func (tx *Tx) Find(ctx context.Context, collection string, filter *Filter) ([]Snapshot, error) {
	docs, err := tx.backend.Query(ctx, collection, filter)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]int64, len(docs))
	for _, d := range docs {
		seen[d.ID] = d.Version
	}
	tx.queries = append(tx.queries, QueryRead{Collection: collection, Filter: filter, Seen: seen})
	return snapshots(docs), nil
}

// Create buffers the insertion of a new document.
func (tx *Tx) Create(collection, id string, v any) error {
	return tx.buffer(WriteCreate, collection, id, v)
}

// Put buffers an insert-or-replace of a document.
func (tx *Tx) Put(collection, id string, v any) error {
	return tx.buffer(WritePut, collection, id, v)
}

// Delete buffers the removal of a document.
func (tx *Tx) Delete(collection, id string) {
	_ = tx.buffer(WriteDelete, collection, id, nil)
}

func (tx *Tx) buffer(kind WriteKind, collection, id string, v any) error {
	var body []byte
	if kind != WriteDelete {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", collection, id, err)
		}
		body = b
	}
	k := Key{Collection: collection, ID: id}
	w := Write{Kind: kind, Key: k, Body: body}
	if i, ok := tx.pending[k]; ok {
		// A create followed by a put is still a create.
		if tx.writes[i].Kind == WriteCreate && kind == WritePut {
			w.Kind = WriteCreate
		}
		tx.writes[i] = w
		return nil
	}
	tx.pending[k] = len(tx.writes)
	tx.writes = append(tx.writes, w)
	return nil
}

func (tx *Tx) commit() Commit {
	return Commit{Reads: tx.reads, Queries: tx.queries, Writes: tx.writes}
}

// sortedKeys returns the read set in a stable order so backends that lock
// rows acquire them consistently.
func sortedKeys(m map[Key]int64) []Key {
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Collection != keys[j].Collection {
			return keys[i].Collection < keys[j].Collection
		}
		return keys[i].ID < keys[j].ID
	})
	return keys
}

func sameResult(seen map[string]int64, docs []Doc) bool {
	if len(seen) != len(docs) {
		return false
	}
	for _, d := range docs {
		v, ok := seen[d.ID]
		if !ok || v != d.Version {
			return false
		}
	}
	return true
}

// matches reports whether a JSON body satisfies an encoded filter value.
func matches(body []byte, field string, want []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	got, ok := fields[field]
	if !ok {
		return false
	}
	return bytes.Equal(bytes.TrimSpace(got), want)
}
