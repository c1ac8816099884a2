// Package editor holds the edit buffer of the secrets UI and the rules that move it
// between viewing, editing and saving.
package editor

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
	secretsDomain "github.com/allisson/blueprint-secrets/internal/secrets/domain"
)

// State is the position of a Session in the view/edit/save cycle.
type State int

const (
	// Viewing shows the loaded document read-only.
	Viewing State = iota
	// Editing exposes the rows for mutation.
	Editing
	// Saving has a write in flight.
	Saving
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrSaveInProgress is returned when Save is called while another save is running.
	ErrSaveInProgress = apperrors.New("save already in progress")
	// ErrNotViewing is returned by Enter outside the Viewing state.
	ErrNotViewing = apperrors.New("session is not viewing")
	// ErrNotEditing is returned by row operations, Save and Cancel outside the Editing state.
	ErrNotEditing = apperrors.New("session is not editing")
	// ErrRowOutOfRange is returned for an index that does not address a row.
	ErrRowOutOfRange = apperrors.Wrap(apperrors.ErrInvalidInput, "row index out of range")
	// ErrRowNotRemovable is returned by RemoveRow for rows loaded from the store.
	ErrRowNotRemovable = apperrors.Wrap(apperrors.ErrInvalidInput, "only unsaved rows can be removed")
)

// Row is one editable key/value pair.
type Row struct {
	Key   string
	Value string
	// IsNew marks rows added during this edit session.
	IsNew bool
	// ToDelete excludes the row from the save payload.
	ToDelete bool
}

// Saver persists a payload and returns the authoritative document.
type Saver interface {
	Save(ctx context.Context, secrets secretsDomain.Document) (secretsDomain.Document, error)
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, secrets secretsDomain.Document) (secretsDomain.Document, error)

// Save calls f.
func (f SaverFunc) Save(ctx context.Context, secrets secretsDomain.Document) (secretsDomain.Document, error) {
	return f(ctx, secrets)
}

// Session is the edit buffer for one user. It is safe for concurrent use.
type Session struct {
	mu    sync.Mutex
	state State
	doc   secretsDomain.Document
	rows  []Row
	err   error
}

// NewSession returns a Session viewing doc.
func NewSession(doc secretsDomain.Document) *Session {
	return &Session{state: Viewing, doc: doc.Clone()}
}

// ResumeEditing returns a Session already editing rows on top of doc. The web layer
// uses it to rebuild the buffer from a posted form.
func ResumeEditing(doc secretsDomain.Document, rows []Row) *Session {
	return &Session{state: Editing, doc: doc.Clone(), rows: slices.Clone(rows)}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Document returns a copy of the last loaded or saved document.
func (s *Session) Document() secretsDomain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Rows returns a copy of the edit buffer. It is empty outside Editing and Saving.
func (s *Session) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.rows)
}

// Err returns the error of the last failed save, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Enter snapshots the document into rows sorted by key and starts editing.
func (s *Session) Enter() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Viewing {
		return ErrNotViewing
	}

	keys := s.doc.Keys()
	s.rows = make([]Row, 0, len(keys))
	for _, key := range keys {
		s.rows = append(s.rows, Row{Key: key, Value: s.doc[key]})
	}
	s.state = Editing
	s.err = nil
	return nil
}

// AddRow appends an empty new row.
func (s *Session) AddRow() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Editing {
		return ErrNotEditing
	}
	s.rows = append(s.rows, Row{IsNew: true})
	return nil
}

// SetRow replaces the key and value of row i.
func (s *Session) SetRow(i int, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRow(i); err != nil {
		return err
	}
	s.rows[i].Key = key
	s.rows[i].Value = value
	return nil
}

// ToggleDelete flips the delete mark of row i.
func (s *Session) ToggleDelete(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRow(i); err != nil {
		return err
	}
	s.rows[i].ToDelete = !s.rows[i].ToDelete
	return nil
}

// RemoveRow drops row i. Only rows added in this session can be removed; loaded rows
// are deleted through ToggleDelete.
func (s *Session) RemoveRow(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRow(i); err != nil {
		return err
	}
	if !s.rows[i].IsNew {
		return ErrRowNotRemovable
	}
	s.rows = slices.Delete(s.rows, i, i+1)
	return nil
}

// Payload builds the document a save would send. Rows marked for deletion and rows
// whose trimmed key or value is empty are left out. Keys and values are trimmed.
func (s *Session) Payload() secretsDomain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return payload(s.rows)
}

// Save sends the payload to saver. On success the buffer is discarded and the
// document replaced by the saver's result. On failure the session goes back to
// Editing with its rows untouched and Err set.
func (s *Session) Save(ctx context.Context, saver Saver) error {
	s.mu.Lock()
	switch s.state {
	case Saving:
		s.mu.Unlock()
		return ErrSaveInProgress
	case Editing:
	default:
		s.mu.Unlock()
		return ErrNotEditing
	}
	s.state = Saving
	body := payload(s.rows)
	s.mu.Unlock()

	saved, err := saver.Save(ctx, body)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = Editing
		s.err = err
		return err
	}

	s.doc = saved.Clone()
	s.rows = nil
	s.err = nil
	s.state = Viewing
	return nil
}

// Cancel discards the buffer and returns to Viewing without touching the store.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Saving:
		return ErrSaveInProgress
	case Editing:
	default:
		return ErrNotEditing
	}
	s.rows = nil
	s.err = nil
	s.state = Viewing
	return nil
}

func (s *Session) checkRow(i int) error {
	if s.state != Editing {
		return ErrNotEditing
	}
	if i < 0 || i >= len(s.rows) {
		return ErrRowOutOfRange
	}
	return nil
}

func payload(rows []Row) secretsDomain.Document {
	doc := make(secretsDomain.Document, len(rows))
	for _, row := range rows {
		if row.ToDelete {
			continue
		}
		key := strings.TrimSpace(row.Key)
		value := strings.TrimSpace(row.Value)
		if key == "" || value == "" {
			continue
		}
		doc[key] = value
	}
	return doc
}
