// Package editor implements the pre-submit image editing session: an
// in-memory collection of images mirrored into the serialized form field the
// post aggregate parses on save.
package editor

import (
	"context"

	"github.com/google/uuid"

	"github.com/eringen/folio/content"
)

// Field names an editable ImageRecord attribute.
type Field string

const (
	FieldAlt      Field = "alt"
	FieldCaption  Field = "caption"
	FieldPosition Field = "position"
)

type entry struct {
	id  uuid.UUID
	img content.ImageRecord
}

// Session holds the images being edited. Every entry carries a synthetic id
// that stays fixed across removals; ids never reach the serialized field.
// A Session is not safe for concurrent use.
type Session struct {
	vocab    content.Vocabulary
	entries  []entry
	field    string
	restored bool
}

// New returns an empty session.
func New(vocab content.Vocabulary) *Session {
	s := &Session{vocab: vocab}
	s.sync()
	return s
}

// Load seeds a session from a serialized images field. A field that fails to
// parse yields no session.
func Load(vocab content.Vocabulary, raw string) (*Session, error) {
	images, err := content.DecodeImages(vocab, raw)
	if err != nil {
		return nil, err
	}
	s := &Session{vocab: vocab, entries: make([]entry, 0, len(images))}
	for _, img := range images {
		s.entries = append(s.entries, entry{id: uuid.New(), img: img})
	}
	s.sync()
	return s, nil
}

// sync re-serializes the collection into the mirrored field. Every record in
// a session has already been validated, so encoding cannot fail.
func (s *Session) sync() {
	images := s.Images()
	raw, err := content.EncodeImages(images)
	if err != nil {
		panic("editor: encode images: " + err.Error())
	}
	s.field = raw
}

// Len reports the number of images in the session.
func (s *Session) Len() int { return len(s.entries) }

// Images returns a copy of the collection in order.
func (s *Session) Images() []content.ImageRecord {
	out := make([]content.ImageRecord, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.img
	}
	return out
}

// Field returns the serialized form of the collection.
func (s *Session) Field() string { return s.field }

// Submit returns the value the post's images field is parsed from on save.
func (s *Session) Submit() string { return s.field }

// IndexOf maps a synthetic id to the entry's current index.
func (s *Session) IndexOf(id uuid.UUID) (int, bool) {
	for i, e := range s.entries {
		if e.id == id {
			return i, true
		}
	}
	return -1, false
}

// Locate finds the entry a rendered row refers to. The row's id decides
// when the session is the one the row was rendered from. A session rebuilt
// from the posted field has fresh ids, so there the row's index is used.
// A stale id in a live session yields a NotFoundError.
func (s *Session) Locate(id uuid.UUID, index int) (int, error) {
	if !s.restored && id != uuid.Nil {
		if i, ok := s.IndexOf(id); ok {
			return i, nil
		}
		return -1, &content.NotFoundError{Index: index, Len: len(s.entries)}
	}
	if err := s.check(index); err != nil {
		return -1, err
	}
	return index, nil
}

func (s *Session) check(index int) error {
	if index < 0 || index >= len(s.entries) {
		return &content.NotFoundError{Index: index, Len: len(s.entries)}
	}
	return nil
}

// AddFromSource resolves src into a reference and appends a record with
// empty alt text and caption at pos (hero when pos is empty). If the source
// cannot be read the session is unchanged.
func (s *Session) AddFromSource(ctx context.Context, src Source, pos content.Position) (uuid.UUID, error) {
	if pos == "" {
		pos = content.Hero
	}
	p, err := s.vocab.Parse(string(pos))
	if err != nil {
		return uuid.Nil, err
	}
	ref, err := src.Reference(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	id := uuid.New()
	s.entries = append(s.entries, entry{id: id, img: content.ImageRecord{Src: ref, Position: p}})
	s.sync()
	return id, nil
}

// UpdateMetadata sets one attribute of the record at index. Position values
// must belong to the vocabulary; collisions with other records are allowed.
func (s *Session) UpdateMetadata(index int, field Field, value string) error {
	if err := s.check(index); err != nil {
		return err
	}
	img := &s.entries[index].img
	switch field {
	case FieldAlt:
		img.Alt = value
	case FieldCaption:
		img.Caption = value
	case FieldPosition:
		p, err := s.vocab.Parse(value)
		if err != nil {
			return err
		}
		img.Position = p
	default:
		return &content.ValidationError{Field: string(field), Reason: "is not editable"}
	}
	s.sync()
	return nil
}

// Remove deletes the record at index; later records shift down by one.
func (s *Session) Remove(index int) error {
	if err := s.check(index); err != nil {
		return err
	}
	s.entries = append(s.entries[:index], s.entries[index+1:]...)
	s.sync()
	return nil
}

// EntryView is one row of the editing view. Index is only valid for the view
// it was built in.
type EntryView struct {
	Index    int
	ID       uuid.UUID
	Image    content.ImageRecord
	Conflict bool
}

// View rebuilds the whole editing view from the current collection. Callers
// re-render every row after any transition instead of patching rows in place.
func (s *Session) View() []EntryView {
	clash := make(map[int]bool)
	for _, c := range content.Conflicts(s.Images()) {
		for _, i := range c.Items {
			clash[i] = true
		}
	}
	out := make([]EntryView, len(s.entries))
	for i, e := range s.entries {
		out[i] = EntryView{Index: i, ID: e.id, Image: e.img, Conflict: clash[i]}
	}
	return out
}

// Positions lists the positions a row may choose from.
func (s *Session) Positions() []content.Position {
	return s.vocab.Positions()
}
