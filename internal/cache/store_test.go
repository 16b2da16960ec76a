package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"HypeChart/internal/model"
)

func sampleTable() *model.Table {
	tbl := model.NewTable("date", "value")
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		tbl.Append(d.AddDate(0, 0, i), float64(i*10))
	}
	return tbl
}

func newTestStore(t *testing.T, policy Policy) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "data"), policy)
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return s
}

func TestNewStore_DoesNotCreateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	NewStore(dir, nil)
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("NewStore should not create %s", dir)
	}
}

func TestStore_LookupMiss(t *testing.T) {
	s := newTestStore(t, Exists())
	tbl, ok, err := s.Lookup("missing.csv", "")
	if err != nil || ok || tbl != nil {
		t.Errorf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestStore_SaveThenLookupIsIdempotent(t *testing.T) {
	s := newTestStore(t, Exists())
	if err := s.Save("x_news.csv", "news", "q=x", sampleTable()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	first, ok, err := s.Lookup("x_news.csv", "q=x")
	if err != nil || !ok {
		t.Fatalf("first lookup: ok=%v err=%v", ok, err)
	}
	second, ok, err := s.Lookup("x_news.csv", "q=x")
	if err != nil || !ok {
		t.Fatalf("second lookup: ok=%v err=%v", ok, err)
	}
	if first.Len() != 5 || second.Len() != first.Len() {
		t.Fatalf("row counts differ: %d vs %d", first.Len(), second.Len())
	}
	for i := range first.Rows {
		if !first.Rows[i].Date.Equal(second.Rows[i].Date) || first.Rows[i].Values[0] != second.Rows[i].Values[0] {
			t.Errorf("row %d differs between lookups", i)
		}
	}
}

func TestStore_ManifestPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s := NewStore(dir, Exists())
	if err := s.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := s.Save("a.csv", "stock", "ticker=NVDA", sampleTable()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	m, err := LoadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	rec, ok := m.Files["a.csv"]
	if !ok {
		t.Fatal("manifest has no record for a.csv")
	}
	if rec.Source != "stock" || rec.Params != "ticker=NVDA" || rec.Rows != 5 {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestStore_MaxAgeRejectsStaleFile(t *testing.T) {
	s := newTestStore(t, NewPolicy(24*time.Hour, false))
	if err := s.Save("a.csv", "stock", "", sampleTable()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, ok, _ := s.Lookup("a.csv", ""); !ok {
		t.Fatal("fresh file should be served")
	}
	s.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	if _, ok, _ := s.Lookup("a.csv", ""); ok {
		t.Error("stale file should be rejected")
	}
}

func TestStore_MatchParamsRejectsChangedRequest(t *testing.T) {
	s := newTestStore(t, NewPolicy(0, true))
	if err := s.Save("a.csv", "stock", "end=2025-10-01", sampleTable()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok, _ := s.Lookup("a.csv", "end=2025-10-01"); !ok {
		t.Error("matching params should be served")
	}
	if _, ok, _ := s.Lookup("a.csv", "end=2026-01-01"); ok {
		t.Error("changed params should be rejected")
	}
}

func TestStore_FileWithoutManifestRecord(t *testing.T) {
	s := newTestStore(t, NewPolicy(0, true))
	if err := WriteTable(s.Path("legacy.csv"), sampleTable()); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}
	if _, ok, err := s.Lookup("legacy.csv", "anything"); !ok || err != nil {
		t.Errorf("pre-existing file should be served: ok=%v err=%v", ok, err)
	}
}

func TestEntry_FetchedAtFallsBackToModTime(t *testing.T) {
	mod := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := (Entry{ModTime: mod}).FetchedAt(); !got.Equal(mod) {
		t.Errorf("got %v, want mtime %v", got, mod)
	}
	fetched := mod.Add(time.Hour)
	if got := (Entry{ModTime: mod, Record: &Record{FetchedAt: fetched}}).FetchedAt(); !got.Equal(fetched) {
		t.Errorf("got %v, want recorded %v", got, fetched)
	}
}
