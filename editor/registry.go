package editor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/folio/content"
)

// Snapshot is a read-only copy of a session taken after a transition, ready
// to render.
type Snapshot struct {
	ID        uuid.UUID
	Field     string
	Rows      []EntryView
	Positions []content.Position
}

type tracked struct {
	sess    *Session
	touched time.Time
}

// Registry keeps editing sessions between requests so that entry ids stay
// stable while an editor page is open. Sessions idle for longer than ttl are
// dropped; a request for a dropped session reloads it from the field value
// the page posted back.
type Registry struct {
	mu       sync.Mutex
	vocab    content.Vocabulary
	ttl      time.Duration
	sessions map[uuid.UUID]*tracked
	now      func() time.Time
}

// NewRegistry creates a Registry for the given vocabulary.
func NewRegistry(vocab content.Vocabulary, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Registry{
		vocab:    vocab,
		ttl:      ttl,
		sessions: make(map[uuid.UUID]*tracked),
		now:      time.Now,
	}
}

// Open starts a session seeded from raw.
func (r *Registry) Open(raw string) (Snapshot, error) {
	sess, err := Load(r.vocab, raw)
	if err != nil {
		return Snapshot{}, err
	}
	id := uuid.New()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &tracked{sess: sess, touched: r.now()}
	return snapshot(id, sess), nil
}

// Do applies fn to the session id. When id is unknown (expired, or the server
// restarted) a session is loaded from raw first. A failing fn leaves the
// stored session as it was.
func (r *Registry) Do(id uuid.UUID, raw string, fn func(*Session) error) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.sessions[id]
	if !ok {
		sess, err := Load(r.vocab, raw)
		if err != nil {
			return Snapshot{}, err
		}
		if id == uuid.Nil {
			id = uuid.New()
		}
		sess.restored = true
		t = &tracked{sess: sess}
		r.sessions[id] = t
	}
	t.touched = r.now()

	err := fn(t.sess)
	t.sess.restored = false
	return snapshot(id, t.sess), err
}

// Add appends an image read from src to the session id, loading the session
// from raw as Do does. src is resolved before the registry is locked, so a
// slow upload never holds up other editors. A source that cannot be read
// leaves the session unchanged.
func (r *Registry) Add(ctx context.Context, id uuid.UUID, raw string, src Source, pos content.Position) (Snapshot, error) {
	var (
		ref    string
		refErr error
	)
	// An unknown position is reported by AddFromSource without reading src.
	if _, err := r.vocab.Parse(string(pos)); pos == "" || err == nil {
		ref, refErr = src.Reference(ctx)
	}
	return r.Do(id, raw, func(s *Session) error {
		if refErr != nil {
			return refErr
		}
		_, err := s.AddFromSource(ctx, Resolved(ref), pos)
		return err
	})
}

// Close forgets a session, typically after its post was saved.
func (r *Registry) Close(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len reports how many sessions are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the ttl.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, t := range r.sessions {
		if t.touched.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep every interval until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
}

func snapshot(id uuid.UUID, s *Session) Snapshot {
	return Snapshot{ID: id, Field: s.Field(), Rows: s.View(), Positions: s.Positions()}
}
