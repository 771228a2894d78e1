package history

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/storage"
)

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeClock returns a fixed instant advanced by step on every call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Routine{
		{Name: "Push", Exercises: []catalog.Exercise{
			{Name: "Bench", Category: catalog.Chest},
			{Name: "Treadmill", Category: catalog.Cardio},
		}},
		{Name: "Pull", Exercises: []catalog.Exercise{
			{Name: "Row", Category: catalog.Back},
			{Name: "Bench", Category: catalog.Chest},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func newTestStore(t *testing.T, backend storage.Backend, clock *fakeClock) *Store {
	t.Helper()
	return New(backend, testCatalog(t), discardLog, WithClock(clock.Now))
}

func day(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.Local)
}

// TestSaveAddsDateAndSession verifies a valid save appears in both the
// date list and that day's sessions.
func TestSaveAddsDateAndSession(t *testing.T) {
	clock := &fakeClock{t: day(2024, 3, 1, 18), step: time.Minute}
	s := newTestStore(t, storage.NewMemoryBackend(), clock)

	sess, err := s.Save(context.Background(), "Push", map[string]string{"Bench": "60", "Treadmill": ""})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if sess.Date != "2024-03-01" {
		t.Errorf("date = %q, want 2024-03-01", sess.Date)
	}
	if _, ok := sess.Exercises["Treadmill"]; ok {
		t.Error("blank weight should not be stored")
	}

	h := s.Snapshot()
	dates := DistinctDates(h)
	if len(dates) != 1 || dates[0] != "2024-03-01" {
		t.Errorf("dates = %v, want [2024-03-01]", dates)
	}
	if got := SessionsForDate(h, "2024-03-01"); len(got) != 1 {
		t.Errorf("sessions for date = %d, want 1", len(got))
	}
}

// TestSaveWithoutWeightsRejected verifies validation leaves the store and
// the backend untouched.
func TestSaveWithoutWeightsRejected(t *testing.T) {
	backend := storage.NewMemoryBackend()
	s := newTestStore(t, backend, &fakeClock{t: day(2024, 3, 1, 18), step: time.Second})

	for _, weights := range []map[string]string{nil, {}, {"Bench": ""}, {"Bench": "   "}} {
		_, err := s.Save(context.Background(), "Push", weights)
		if !errors.Is(err, ErrNoWeights) {
			t.Errorf("Save(%v) error = %v, want ErrNoWeights", weights, err)
		}
	}
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0", s.Len())
	}
	if _, err := backend.Get(context.Background(), DefaultKey); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("backend written on rejected save: err = %v", err)
	}
}

func TestSaveUnknownRoutine(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend(), &fakeClock{t: day(2024, 3, 1, 18)})
	_, err := s.Save(context.Background(), "Legs", map[string]string{"Squat": "100"})
	if !errors.Is(err, ErrUnknownRoutine) {
		t.Errorf("error = %v, want ErrUnknownRoutine", err)
	}
}

// TestSaveSameInstantUniqueKeys verifies two saves in the same millisecond
// for the same routine never collide.
func TestSaveSameInstantUniqueKeys(t *testing.T) {
	clock := &fakeClock{t: day(2024, 3, 1, 18)} // step 0: frozen clock
	s := newTestStore(t, storage.NewMemoryBackend(), clock)
	ctx := context.Background()

	a, err := s.Save(ctx, "Push", map[string]string{"Bench": "60"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Save(ctx, "Push", map[string]string{"Bench": "62"})
	if err != nil {
		t.Fatal(err)
	}
	if b.Timestamp <= a.Timestamp {
		t.Errorf("timestamps not increasing: %d then %d", a.Timestamp, b.Timestamp)
	}
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
}

// TestTimestampsIncreaseAfterLoad verifies a clock behind the stored
// history still yields fresh timestamps.
func TestTimestampsIncreaseAfterLoad(t *testing.T) {
	backend := storage.NewMemoryBackend()
	future := day(2030, 1, 1, 10)
	s1 := newTestStore(t, backend, &fakeClock{t: future})
	old, err := s1.Save(context.Background(), "Push", map[string]string{"Bench": "60"})
	if err != nil {
		t.Fatal(err)
	}

	s2 := newTestStore(t, backend, &fakeClock{t: day(2024, 1, 1, 10)})
	if err := s2.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	sess, err := s2.Save(context.Background(), "Push", map[string]string{"Bench": "61"})
	if err != nil {
		t.Fatal(err)
	}
	if sess.Timestamp <= old.Timestamp {
		t.Errorf("timestamp %d not after loaded %d", sess.Timestamp, old.Timestamp)
	}
	if want := time.UnixMilli(sess.Timestamp).Format(models.DateLayout); sess.Date != want {
		t.Errorf("date = %s, want %s from the issued timestamp", sess.Date, want)
	}
}

// TestDeleteExactMatch verifies only the identified session is removed and
// unknown ids are a no-op.
func TestDeleteExactMatch(t *testing.T) {
	clock := &fakeClock{t: day(2024, 3, 1, 18), step: time.Minute}
	backend := storage.NewMemoryBackend()
	s := newTestStore(t, backend, clock)
	ctx := context.Background()

	a, _ := s.Save(ctx, "Push", map[string]string{"Bench": "60"})
	b, _ := s.Save(ctx, "Pull", map[string]string{"Row": "50"})
	c, _ := s.Save(ctx, "Push", map[string]string{"Bench": "62"})

	if s.Delete(ctx, SessionID{Date: a.Date, Routine: "Pull", Timestamp: a.Timestamp}) {
		t.Error("delete with mismatched routine should be a no-op")
	}
	if !s.Delete(ctx, ID(b)) {
		t.Fatal("delete returned false for existing session")
	}
	if s.Delete(ctx, ID(b)) {
		t.Error("second delete should report not found")
	}

	h := s.Snapshot()
	if len(h) != 2 {
		t.Fatalf("len = %d, want 2", len(h))
	}
	if _, ok := s.Find(ID(a)); !ok {
		t.Error("session a missing")
	}
	if _, ok := s.Find(ID(c)); !ok {
		t.Error("session c missing")
	}

	// The deletion was persisted.
	reloaded := newTestStore(t, backend, clock)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != 2 {
		t.Errorf("reloaded len = %d, want 2", reloaded.Len())
	}
}

// TestPersistLoadRoundTrip verifies persist then load reproduces the same
// keys and field values.
func TestPersistLoadRoundTrip(t *testing.T) {
	backend := storage.NewMemoryBackend()
	clock := &fakeClock{t: day(2024, 3, 1, 18), step: 26 * time.Hour}
	s := newTestStore(t, backend, clock)
	ctx := context.Background()
	for _, w := range []string{"40", "42,5", "45"} {
		if _, err := s.Save(ctx, "Push", map[string]string{"Bench": w}); err != nil {
			t.Fatal(err)
		}
	}
	before := s.Snapshot()

	s2 := newTestStore(t, backend, clock)
	if err := s2.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	after := s2.Snapshot()

	if len(after) != len(before) {
		t.Fatalf("len = %d, want %d", len(after), len(before))
	}
	for k, want := range before {
		got, ok := after[k]
		if !ok {
			t.Errorf("key %q missing after reload", k)
			continue
		}
		if got.Date != want.Date || got.Type != want.Type || got.Timestamp != want.Timestamp {
			t.Errorf("session %q = %+v, want %+v", k, got, want)
		}
		if len(got.Exercises) != len(want.Exercises) {
			t.Errorf("session %q exercises = %v, want %v", k, got.Exercises, want.Exercises)
		}
		for ex, w := range want.Exercises {
			if got.Exercises[ex] != w {
				t.Errorf("session %q %s = %q, want %q", k, ex, got.Exercises[ex], w)
			}
		}
	}
}

// TestLoadMissingIsEmpty verifies a fresh backend loads as empty without error.
func TestLoadMissingIsEmpty(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend(), &fakeClock{t: day(2024, 3, 1, 18)})
	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0", s.Len())
	}
	if len(events) != 1 || events[0].Kind != EventLoaded {
		t.Errorf("events = %v, want one EventLoaded", events)
	}
}

// TestLoadMalformedFallsBackToEmpty verifies corrupt storage is reported
// but does not block use of the store.
func TestLoadMalformedFallsBackToEmpty(t *testing.T) {
	backend := storage.NewMemoryBackend()
	if err := backend.Put(context.Background(), DefaultKey, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	s := newTestStore(t, backend, &fakeClock{t: day(2024, 3, 1, 18)})
	var got []EventKind
	s.Subscribe(func(ev Event) { got = append(got, ev.Kind) })

	err := s.Load(context.Background())
	if !errors.Is(err, ErrCorruptHistory) {
		t.Fatalf("Load error = %v, want ErrCorruptHistory", err)
	}
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0", s.Len())
	}
	if len(got) != 1 || got[0] != EventLoadFailed {
		t.Errorf("events = %v, want [load_failed]", got)
	}
	if _, err := s.Save(context.Background(), "Push", map[string]string{"Bench": "60"}); err != nil {
		t.Errorf("Save after failed load: %v", err)
	}
}

// TestLoadNumericWeights verifies histories with numeric weights decode.
func TestLoadNumericWeights(t *testing.T) {
	backend := storage.NewMemoryBackend()
	raw := `{"2024-03-01-Push-1709312400000":{"date":"2024-03-01","type":"Push","exercises":{"Bench":60},"timestamp":1709312400000}}`
	if err := backend.Put(context.Background(), DefaultKey, []byte(raw)); err != nil {
		t.Fatal(err)
	}
	s := newTestStore(t, backend, &fakeClock{t: day(2024, 3, 2, 18)})
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	w, ok := PreviousWeight(s.Snapshot(), "Bench")
	if !ok || w != "60" {
		t.Errorf("PreviousWeight = %q, %v, want 60, true", w, ok)
	}
}

// TestPersistFailureKeepsMemoryState verifies a failed write is reported
// but the save stands.
func TestPersistFailureKeepsMemoryState(t *testing.T) {
	backend := storage.NewMemoryBackend()
	backend.SetFailures(nil, errors.New("quota exceeded"))
	s := newTestStore(t, backend, &fakeClock{t: day(2024, 3, 1, 18), step: time.Second})

	var kinds []EventKind
	s.Subscribe(func(ev Event) { kinds = append(kinds, ev.Kind) })

	sess, err := s.Save(context.Background(), "Push", map[string]string{"Bench": "60"})
	if err != nil {
		t.Fatalf("Save error = %v, want nil", err)
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
	if len(kinds) != 2 || kinds[0] != EventSaved || kinds[1] != EventPersistFailed {
		t.Errorf("events = %v, want [saved persist_failed]", kinds)
	}

	kinds = nil
	if !s.Delete(context.Background(), ID(sess)) {
		t.Error("delete should succeed in memory")
	}
	if len(kinds) != 2 || kinds[0] != EventDeleted || kinds[1] != EventPersistFailed {
		t.Errorf("events = %v, want [deleted persist_failed]", kinds)
	}
}

func TestSubscribeCancel(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend(), &fakeClock{t: day(2024, 3, 1, 18), step: time.Second})
	calls := 0
	cancel := s.Subscribe(func(Event) { calls++ })
	s.Save(context.Background(), "Push", map[string]string{"Bench": "60"})
	cancel()
	s.Save(context.Background(), "Push", map[string]string{"Bench": "61"})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

// TestImportSkipsExisting verifies import never overwrites stored sessions.
func TestImportSkipsExisting(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend(), &fakeClock{t: day(2024, 3, 1, 18), step: time.Second})
	ctx := context.Background()
	existing, _ := s.Save(ctx, "Push", map[string]string{"Bench": "60"})
	key := models.SessionKey(existing.Date, existing.Type, existing.Timestamp)

	in := models.History{
		key: {Date: existing.Date, Type: "Push", Exercises: map[string]models.Weight{"Bench": "999"}, Timestamp: existing.Timestamp},
		"2023-12-01-Pull-1701432000000": {Date: "2023-12-01", Type: "Pull", Exercises: map[string]models.Weight{"Row": "40"}, Timestamp: 1701432000000},
	}
	added, err := s.Import(ctx, in)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1", added)
	}
	got, _ := s.Find(ID(existing))
	if got.Exercises["Bench"] != "60" {
		t.Errorf("existing session overwritten: %q", got.Exercises["Bench"])
	}
}

// TestImportSkipsSameSessionUnderOtherKey verifies a session already
// stored is not duplicated when the export keys it differently.
func TestImportSkipsSameSessionUnderOtherKey(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend(), &fakeClock{t: day(2024, 3, 1, 18), step: time.Second})
	ctx := context.Background()
	existing, _ := s.Save(ctx, "Push", map[string]string{"Bench": "60"})

	dup := existing.Clone()
	in := models.History{
		"renamed": dup,
		"other":   dup,
	}
	added, err := s.Import(ctx, in)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if added != 0 {
		t.Errorf("added = %d, want 0", added)
	}
	if s.Len() != 1 {
		t.Errorf("len = %d, want 1", s.Len())
	}
	if !s.Delete(ctx, ID(existing)) {
		t.Fatal("delete failed")
	}
	if _, ok := s.Find(ID(existing)); ok {
		t.Error("session still present after delete")
	}
}

// TestFindWithForeignKey verifies lookups work for keys not produced by
// SessionKey.
func TestFindWithForeignKey(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryBackend(), &fakeClock{t: day(2024, 3, 1, 18)})
	ctx := context.Background()
	sess := models.Session{Date: "2023-12-01", Type: "Pull", Exercises: map[string]models.Weight{"Row": "40"}, Timestamp: 5}
	if _, err := s.Import(ctx, models.History{"legacy": sess}); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Find(ID(sess)); !ok {
		t.Fatal("Find failed for legacy key")
	}
	if !s.Delete(ctx, ID(sess)) {
		t.Error("Delete failed for legacy key")
	}
}
