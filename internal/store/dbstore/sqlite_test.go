package dbstore

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/yiblet/cliphist/internal/history"
	"github.com/yiblet/cliphist/internal/store"
)

var _ store.Persister = (*SQLiteStore)(nil)

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*SQLiteStore, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return st, dbPath
}

// TestNewSQLiteStore tests database initialization
func TestNewSQLiteStore(t *testing.T) {
	st, _ := setupTestDB(t)

	version, err := st.getSetting(st.db, keyDBVersion)
	if err != nil {
		t.Fatalf("failed to get db_version: %v", err)
	}
	if version != "1" {
		t.Errorf("expected db_version=1, got %s", version)
	}

	if _, err := st.Load(); !errors.Is(err, store.ErrNoDocument) {
		t.Errorf("Load() on fresh database error = %v, want ErrNoDocument", err)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	st, _ := setupTestDB(t)

	h, _ := history.NewStore(5)
	h.InsertIfAbsent(history.KindText, []byte("first"))
	h.InsertIfAbsent(history.KindImage, []byte{0, 1, 2, 250})
	h.InsertIfAbsent(history.KindText, []byte("third"))

	if err := st.Save(store.Encode(h)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	doc, err := st.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Capacity != 5 {
		t.Errorf("Capacity = %d, want 5", doc.Capacity)
	}

	decoded, errs := store.Decode(doc, store.PolicyVerify)
	if len(errs) != 0 {
		t.Fatalf("Decode() errors = %v", errs)
	}

	want := h.Snapshot()
	got := decoded.Snapshot()
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("entry %d differs: got %q, want %q", i, got[i].Payload(), want[i].Payload())
		}
	}
}

func TestSave_ReplacesPreviousRecords(t *testing.T) {
	st, _ := setupTestDB(t)

	h, _ := history.NewStore(10)
	for i := 0; i < 6; i++ {
		h.InsertIfAbsent(history.KindText, []byte(fmt.Sprintf("item %d", i)))
	}
	if err := st.Save(store.Encode(h)); err != nil {
		t.Fatal(err)
	}

	if _, err := h.SetCapacity(2); err != nil {
		t.Fatal(err)
	}
	if err := st.Save(store.Encode(h)); err != nil {
		t.Fatal(err)
	}

	doc, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if doc.Capacity != 2 {
		t.Errorf("Capacity = %d, want 2", doc.Capacity)
	}
	if len(doc.History) != 2 {
		t.Fatalf("len(History) = %d, want 2", len(doc.History))
	}
	if doc.History[0].Content != "item 5" || doc.History[1].Content != "item 4" {
		t.Errorf("records = %q, %q; want item 5, item 4", doc.History[0].Content, doc.History[1].Content)
	}
}

func TestSave_EmptyHistory(t *testing.T) {
	st, _ := setupTestDB(t)

	h, _ := history.NewStore(3)
	h.InsertIfAbsent(history.KindText, []byte("gone"))
	if err := st.Save(store.Encode(h)); err != nil {
		t.Fatal(err)
	}

	h.Clear()
	if err := st.Save(store.Encode(h)); err != nil {
		t.Fatal(err)
	}

	doc, err := st.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(doc.History) != 0 {
		t.Errorf("len(History) = %d, want 0", len(doc.History))
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	st, dbPath := setupTestDB(t)

	payload := bytes.Repeat([]byte{0xde, 0xad, 0xbe, 0xef}, 4096)
	h, _ := history.NewStore(3)
	h.InsertIfAbsent(history.KindImage, payload)
	if err := st.Save(store.Encode(h)); err != nil {
		t.Fatal(err)
	}
	st.Close()

	reopened, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	doc, err := reopened.Load()
	if err != nil {
		t.Fatal(err)
	}
	decoded, errs := store.Decode(doc, store.PolicyVerify)
	if len(errs) != 0 {
		t.Fatalf("Decode() errors = %v", errs)
	}
	e, err := decoded.MostRecent()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(e.Payload(), payload) {
		t.Error("image payload changed after reopen")
	}
}

func TestVersion(t *testing.T) {
	st, dbPath := setupTestDB(t)

	if v, err := st.Version(); err != nil || v != "" {
		t.Fatalf("Version() on fresh database = %q, %v; want empty", v, err)
	}

	h, _ := history.NewStore(3)
	h.InsertIfAbsent(history.KindText, []byte("a"))
	if err := st.Save(store.Encode(h)); err != nil {
		t.Fatal(err)
	}
	v1, err := st.Version()
	if err != nil || v1 == "" {
		t.Fatalf("Version() after save = %q, %v", v1, err)
	}

	// A second connection, as from another process.
	other, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer other.Close()
	if v, _ := other.Version(); v != v1 {
		t.Errorf("other connection sees %q, want %q", v, v1)
	}

	h.Clear()
	if err := other.Save(store.Encode(h)); err != nil {
		t.Fatal(err)
	}
	if v2, _ := st.Version(); v2 == v1 {
		t.Errorf("Version() unchanged after save from other connection: %q", v2)
	}
}
