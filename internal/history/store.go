package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

// DefaultKey is the storage key holding the serialized history.
const DefaultKey = "workoutHistory"

var (
	// ErrNoWeights rejects a save where every weight is blank.
	ErrNoWeights = errors.New("at least one weight is required")
	// ErrUnknownRoutine rejects a save for a routine missing from the catalog.
	ErrUnknownRoutine = errors.New("unknown routine")
	// ErrCorruptHistory reports stored history that could not be decoded.
	ErrCorruptHistory = errors.New("stored history is malformed")
)

// SessionID identifies a saved session.
type SessionID struct {
	Date      string `json:"date"`
	Routine   string `json:"routine"`
	Timestamp int64  `json:"timestamp"`
}

// ID returns the identifier of a session.
func ID(s models.Session) SessionID {
	return SessionID{Date: s.Date, Routine: s.Type, Timestamp: s.Timestamp}
}

func (id SessionID) matches(s models.Session) bool {
	return s.Date == id.Date && s.Type == id.Routine && s.Timestamp == id.Timestamp
}

// Store owns the saved sessions and writes the whole history to the
// backend after every mutation. Read views work on Snapshot copies.
type Store struct {
	backend storage.Backend
	catalog *catalog.Catalog
	log     *slog.Logger
	key     string
	now     func() time.Time

	mu       sync.RWMutex
	sessions models.History
	lastTS   int64

	lmu       sync.Mutex
	listeners map[int]func(Event)
	nextID    int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// New creates an empty store. Call Load to read persisted history.
func New(backend storage.Backend, cat *catalog.Catalog, log *slog.Logger, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		catalog:   cat,
		log:       log,
		key:       DefaultKey,
		now:       time.Now,
		sessions:  make(models.History),
		listeners: make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory history with the persisted one. A missing
// key yields an empty history and no error. Unreadable or malformed data
// also yields an empty history; the error is returned and published but
// the store stays usable.
func (s *Store) Load(ctx context.Context) error {
	h, err := s.read(ctx)

	s.mu.Lock()
	if err != nil {
		h = make(models.History)
	}
	s.sessions = h
	s.lastTS = maxTimestamp(h)
	n := len(h)
	s.mu.Unlock()

	if err != nil {
		s.log.Error("loading history", "key", s.key, "error", err)
		s.publish(Event{Kind: EventLoadFailed, Err: err})
		return err
	}
	s.log.Info("history loaded", "key", s.key, "sessions", n)
	s.publish(Event{Kind: EventLoaded, Count: n})
	return nil
}

func (s *Store) read(ctx context.Context) (models.History, error) {
	data, err := s.backend.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return make(models.History), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.key, err)
	}
	h, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Decode parses the persisted history format.
func Decode(data []byte) (models.History, error) {
	var h models.History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}
	if h == nil {
		h = make(models.History)
	}
	for k, sess := range h {
		if sess.Exercises == nil {
			sess.Exercises = make(map[string]models.Weight)
			h[k] = sess
		}
	}
	return h, nil
}

// Save records a completed workout for routine with the weights entered
// in the form. Blank weights are dropped. It fails without side effects
// when the routine is unknown or no weight was entered. A failed write to
// the backend does not fail the save: the session stays in memory and an
// EventPersistFailed follows the EventSaved.
func (s *Store) Save(ctx context.Context, routine string, weights map[string]string) (models.Session, error) {
	if _, ok := s.catalog.Routine(routine); !ok {
		return models.Session{}, fmt.Errorf("%w: %q", ErrUnknownRoutine, routine)
	}

	exercises := make(map[string]models.Weight, len(weights))
	for name, w := range weights {
		if wt := models.Weight(w); !wt.Blank() {
			exercises[name] = wt
		}
	}
	if len(exercises) == 0 {
		return models.Session{}, ErrNoWeights
	}

	s.mu.Lock()
	now := s.now()
	ts := now.UnixMilli()
	if ts <= s.lastTS {
		ts = s.lastTS + 1
	}
	s.lastTS = ts

	sess := models.Session{
		Date:      time.UnixMilli(ts).In(now.Location()).Format(models.DateLayout),
		Type:      routine,
		Exercises: exercises,
		Timestamp: ts,
	}
	s.sessions[models.SessionKey(sess.Date, sess.Type, sess.Timestamp)] = sess
	persistErr := s.persistLocked(ctx)
	s.mu.Unlock()

	s.log.Info("workout saved", "routine", routine, "date", sess.Date, "exercises", len(exercises))
	s.publish(Event{Kind: EventSaved, Session: sess.Clone()})
	if persistErr != nil {
		s.publish(Event{Kind: EventPersistFailed, Err: persistErr})
	}
	return sess.Clone(), nil
}

// Delete removes the session identified by id. It reports whether a
// session was removed; an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id SessionID) bool {
	s.mu.Lock()
	key, sess, ok := s.lookupLocked(id)
	if !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.sessions, key)
	persistErr := s.persistLocked(ctx)
	s.mu.Unlock()

	s.log.Info("workout deleted", "routine", id.Routine, "date", id.Date, "timestamp", id.Timestamp)
	s.publish(Event{Kind: EventDeleted, Session: sess})
	if persistErr != nil {
		s.publish(Event{Kind: EventPersistFailed, Err: persistErr})
	}
	return true
}

// Find returns the session identified by id.
func (s *Store) Find(id SessionID) (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, sess, ok := s.lookupLocked(id)
	if !ok {
		return models.Session{}, false
	}
	return sess.Clone(), true
}

// Import adds sessions that are not already present, keyed as given.
// Existing keys are never overwritten, and a session whose identity is
// already stored under another key is skipped. It returns the number added.
func (s *Store) Import(ctx context.Context, h models.History) (int, error) {
	s.mu.Lock()
	added := 0
	for k, sess := range h {
		if _, exists := s.sessions[k]; exists {
			continue
		}
		if _, _, dup := s.lookupLocked(ID(sess)); dup {
			continue
		}
		s.sessions[k] = sess.Clone()
		if sess.Timestamp > s.lastTS {
			s.lastTS = sess.Timestamp
		}
		added++
	}
	var err error
	if added > 0 {
		err = s.persistLocked(ctx)
	}
	s.mu.Unlock()

	if err != nil {
		s.publish(Event{Kind: EventPersistFailed, Err: err})
		return added, err
	}
	return added, nil
}

// Snapshot returns a copy of the current history.
func (s *Store) Snapshot() models.History {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions.Clone()
}

// Len returns the number of saved sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Catalog returns the routine catalog the store validates against.
func (s *Store) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *Store) lookupLocked(id SessionID) (string, models.Session, bool) {
	key := models.SessionKey(id.Date, id.Routine, id.Timestamp)
	if sess, ok := s.sessions[key]; ok && id.matches(sess) {
		return key, sess, true
	}
	// Imported history may use keys that do not follow SessionKey.
	for k, sess := range s.sessions {
		if id.matches(sess) {
			return k, sess, true
		}
	}
	return "", models.Session{}, false
}

// persistLocked writes the full history. Callers hold s.mu.
func (s *Store) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(s.sessions)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := s.backend.Put(ctx, s.key, data); err != nil {
		s.log.Error("persisting history", "key", s.key, "error", err)
		return fmt.Errorf("writing %s: %w", s.key, err)
	}
	return nil
}

func maxTimestamp(h models.History) int64 {
	var latest int64
	for _, sess := range h {
		if sess.Timestamp > latest {
			latest = sess.Timestamp
		}
	}
	return latest
}
