// Package liststore keeps a screen's records in memory and applies changes
// optimistically.
//
// A removal takes the record out of the visible list at once and Commit
// either makes it final or puts the record back where it was. Edits live in
// a per-record draft overlay that is merged with the base record only when
// read or submitted; a failed submit keeps the draft. At most one record is
// in edit mode, and at most one record is in flight, per Store.
package liststore

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/arkadconsole/internal/common"
)

// Patch is a sparse set of field edits keyed by JSON field name.
type Patch map[string]any

type removal[T any] struct {
	item  T
	index int
}

// Store is safe for concurrent use.
type Store[T any] struct {
	id func(T) string

	mu       sync.Mutex
	items    []T
	removed  map[string]removal[T]
	inserted map[string]struct{}
	drafts   map[string]Patch
	editing  string
	flight   string
}

// New creates an empty store; id extracts a record's key.
func New[T any](id func(T) string) *Store[T] {
	return &Store[T]{
		id:       id,
		removed:  make(map[string]removal[T]),
		inserted: make(map[string]struct{}),
		drafts:   make(map[string]Patch),
	}
}

// Replace installs a freshly fetched list. Pending removals and insertions
// are forgotten; drafts survive for records that are still present.
func (s *Store[T]) Replace(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = slices.Clone(items)
	clear(s.removed)
	clear(s.inserted)

	for id := range s.drafts {
		if s.indexOf(id) < 0 {
			delete(s.drafts, id)
		}
	}
	if s.editing != "" && s.indexOf(s.editing) < 0 {
		s.editing = ""
	}
}

// Items returns a copy of the visible list.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return s.items[i], true
}

func (s *Store[T]) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(v T) bool { return s.id(v) == id })
}

// Remove takes id out of the visible list and remembers it for rollback.
func (s *Store[T]) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	}
	s.removed[id] = removal[T]{item: s.items[i], index: i}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

// Insert adds item to the front of the visible list tentatively.
func (s *Store[T]) Insert(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id(item)
	s.items = slices.Insert(s.items, 0, item)
	s.inserted[id] = struct{}{}
}

// Commit settles a pending removal or insertion of id. A nil result makes it
// final; otherwise the list is rolled back. result is returned unchanged.
func (s *Store[T]) Commit(id string, result error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.removed[id]; ok {
		delete(s.removed, id)
		if result != nil {
			at := min(r.index, len(s.items))
			s.items = slices.Insert(s.items, at, r.item)
		}
	}
	if _, ok := s.inserted[id]; ok {
		delete(s.inserted, id)
		if result != nil {
			if i := s.indexOf(id); i >= 0 {
				s.items = slices.Delete(s.items, i, i+1)
			}
		}
	}
	if result == nil {
		delete(s.drafts, id)
		if s.editing == id {
			s.editing = ""
		}
	}
	return result
}

// BeginEdit puts id in edit mode. Switching away from a record with unsaved
// changes fails with common.ErrEditInProgress; call DiscardEdit first.
func (s *Store[T]) BeginEdit(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginEdit(id)
}

func (s *Store[T]) beginEdit(id string) error {
	if s.indexOf(id) < 0 {
		return fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	}
	if s.editing == id {
		return nil
	}
	if s.editing != "" && len(s.drafts[s.editing]) > 0 {
		return fmt.Errorf("record %s: %w", s.editing, common.ErrEditInProgress)
	}
	if s.editing != "" {
		delete(s.drafts, s.editing)
	}
	s.editing = id
	return nil
}

// Edit records field edits for id in its draft; the base list is unchanged.
func (s *Store[T]) Edit(id string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.beginEdit(id); err != nil {
		return err
	}
	d := s.drafts[id]
	if d == nil {
		d = make(Patch, len(patch))
		s.drafts[id] = d
	}
	for k, v := range patch {
		d[k] = v
	}
	return nil
}

// DiscardEdit leaves edit mode and drops the draft.
func (s *Store[T]) DiscardEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing != "" {
		delete(s.drafts, s.editing)
		s.editing = ""
	}
}

// Editing reports the record in edit mode, if any.
func (s *Store[T]) Editing() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing, s.editing != ""
}

// Draft returns a copy of id's pending edits.
func (s *Store[T]) Draft(id string) (Patch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil, false
	}
	out := make(Patch, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out, true
}

// Merged returns the base record of id with its draft applied.
func (s *Store[T]) Merged(id string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.merged(id)
}

func (s *Store[T]) merged(id string) (T, error) {
	var zero T
	i := s.indexOf(id)
	if i < 0 {
		return zero, fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	}
	base := s.items[i]
	d := s.drafts[id]
	if len(d) == 0 {
		return base, nil
	}
	return applyPatch(base, d)
}

func applyPatch[T any](base T, p Patch) (T, error) {
	var zero T

	raw, err := json.Marshal(base)
	if err != nil {
		return zero, fmt.Errorf("merge draft: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return zero, fmt.Errorf("merge draft: %w", err)
	}
	for k, v := range p {
		fields[k] = v
	}
	raw, err = json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("merge draft: %w", err)
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("merge draft: %w", err)
	}
	return out, nil
}

// BeginFlight marks id as having a request in flight. Only one record per
// store may be in flight; a second call fails with common.ErrBusy.
func (s *Store[T]) BeginFlight(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flight != "" {
		return fmt.Errorf("record %s: %w", s.flight, common.ErrBusy)
	}
	s.flight = id
	return nil
}

func (s *Store[T]) EndFlight(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.flight == id {
		s.flight = ""
	}
}

// InFlight reports the record with a request in flight, if any.
func (s *Store[T]) InFlight() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flight, s.flight != ""
}

// SubmitEdit sends the merged record of id. On success the record is
// replaced by what send returns and the draft is cleared; on failure the
// draft is kept.
func (s *Store[T]) SubmitEdit(ctx context.Context, id string, send func(ctx context.Context, merged T, draft Patch) (T, error)) error {
	if err := s.BeginFlight(id); err != nil {
		return err
	}
	defer s.EndFlight(id)

	s.mu.Lock()
	merged, err := s.merged(id)
	draft := s.drafts[id]
	s.mu.Unlock()
	if err != nil {
		return err
	}

	updated, err := send(ctx, merged, draft)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.items[i] = updated
	}
	delete(s.drafts, id)
	if s.editing == id {
		s.editing = ""
	}
	return nil
}

// RemoveWith removes id optimistically, runs send, and commits its result.
func (s *Store[T]) RemoveWith(ctx context.Context, id string, send func(ctx context.Context) error) error {
	if err := s.BeginFlight(id); err != nil {
		return err
	}
	defer s.EndFlight(id)

	if err := s.Remove(id); err != nil {
		return err
	}
	return s.Commit(id, send(ctx))
}

// InsertWith inserts item optimistically and runs send. On success the
// tentative record is replaced by the one send returns.
func (s *Store[T]) InsertWith(ctx context.Context, item T, send func(ctx context.Context) (T, error)) error {
	id := s.id(item)
	if err := s.BeginFlight(id); err != nil {
		return err
	}
	defer s.EndFlight(id)

	s.Insert(item)
	saved, err := send(ctx)
	if err := s.Commit(id, err); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		s.items[i] = saved
	}
	return nil
}

// Page paginates the visible list.
func (s *Store[T]) Page(page, size int) Page[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Paginate(s.items, page, size)
}
