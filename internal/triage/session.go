// Package triage holds the in-memory state of a triage run and the
// controller that applies user actions to it.
package triage

import (
	"image"

	"cull/internal/errors"
	"cull/pkg/types"
)

// Entry is one loaded photo with its decoded preview
type Entry struct {
	Photo   types.Photo
	Preview image.Image
}

// Removal records an entry taken out of the active list, for undo
type Removal struct {
	Entry  Entry
	Index  int
	Action types.Action
	Moves  []types.MoveResult
}

// Session is the ordered collection of entries still to be triaged and the
// cursor into it. The cursor is in range whenever the collection is
// non-empty. Session is not safe for concurrent use; the GUI drives it from
// its event thread.
type Session struct {
	entries []Entry
	index   int
	removed []Removal
}

// NewSession creates a session over entries, positioned at the first one
func NewSession(entries []Entry) *Session {
	return &Session{entries: entries}
}

// Len returns the number of entries left
func (s *Session) Len() int { return len(s.entries) }

// Index returns the cursor position
func (s *Session) Index() int { return s.index }

// Empty reports whether every entry has been removed
func (s *Session) Empty() bool { return len(s.entries) == 0 }

// Current returns the entry under the cursor
func (s *Session) Current() (Entry, error) {
	if s.Empty() {
		return Entry{}, errors.ErrEmpty
	}
	return s.entries[s.index], nil
}

// Next advances the cursor, wrapping to the first entry
func (s *Session) Next() error {
	if s.Empty() {
		return errors.ErrEmpty
	}
	s.index = (s.index + 1) % len(s.entries)
	return nil
}

// Prev moves the cursor back, wrapping to the last entry
func (s *Session) Prev() error {
	if s.Empty() {
		return errors.ErrEmpty
	}
	s.index = (s.index - 1 + len(s.entries)) % len(s.entries)
	return nil
}

// Remove takes the current entry out of the collection and records it for
// undo. The cursor stays put, so it now points at the following entry, and
// wraps to 0 when the last entry was removed.
func (s *Session) Remove(action types.Action, moves []types.MoveResult) (Removal, error) {
	if s.Empty() {
		return Removal{}, errors.ErrEmpty
	}

	r := Removal{Entry: s.entries[s.index], Index: s.index, Action: action, Moves: moves}
	s.entries = append(s.entries[:s.index], s.entries[s.index+1:]...)
	s.removed = append(s.removed, r)
	s.clamp()
	return r, nil
}

// Peek returns the most recent removal without undoing it
func (s *Session) Peek() (Removal, error) {
	if len(s.removed) == 0 {
		return Removal{}, errors.ErrNothingToUndo
	}
	return s.removed[len(s.removed)-1], nil
}

// Undo puts the most recent removal back at the position it was taken from
// and moves the cursor onto it.
func (s *Session) Undo() (Removal, error) {
	r, err := s.Peek()
	if err != nil {
		return Removal{}, err
	}
	s.removed = s.removed[:len(s.removed)-1]

	at := min(r.Index, len(s.entries))
	s.entries = append(s.entries, Entry{})
	copy(s.entries[at+1:], s.entries[at:])
	s.entries[at] = r.Entry
	s.index = at
	return r, nil
}

// Drop removes the entry for path without recording it for undo. It
// reports whether an entry was found. The cursor keeps pointing at the same
// entry unless that entry is the one dropped.
func (s *Session) Drop(path string) bool {
	for i, e := range s.entries {
		if e.Photo.Path != path {
			continue
		}
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
		if i < s.index {
			s.index--
		}
		s.clamp()
		return true
	}
	return false
}

// Removed returns the removal history, oldest first
func (s *Session) Removed() []Removal {
	return s.removed
}

// Position returns the 1-based cursor position and the total, e.g. for "3/12"
func (s *Session) Position() (int, int) {
	if s.Empty() {
		return 0, 0
	}
	return s.index + 1, len(s.entries)
}

func (s *Session) clamp() {
	if s.index >= len(s.entries) {
		s.index = 0
	}
}
