package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T, opts ...Option) (*Store, string, func()) {
	tmpDir, err := os.MkdirTemp("", "store-test-*")
	if err != nil {
		t.Fatal(err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	store, err := NewStore(dbPath, opts...)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatal(err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(tmpDir)
	}

	return store, dbPath, cleanup
}

func TestStore_MarkViewed(t *testing.T) {
	first := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	now := first
	store, _, cleanup := setupTestStore(t, WithClock(func() time.Time { return now }))
	defer cleanup()

	added, err := store.MarkViewed(42)
	if err != nil {
		t.Fatalf("failed to mark viewed: %v", err)
	}
	if !added {
		t.Error("expected first mark to add the id")
	}

	now = first.Add(time.Hour)
	added, err = store.MarkViewed(42)
	if err != nil {
		t.Fatalf("failed to mark viewed again: %v", err)
	}
	if added {
		t.Error("expected second mark to be a no-op")
	}

	viewed, err := store.ViewedArticles()
	if err != nil {
		t.Fatalf("failed to list viewed: %v", err)
	}
	if len(viewed) != 1 {
		t.Fatalf("expected 1 viewed article, got %d", len(viewed))
	}
	if !viewed[0].FirstViewed.Equal(first) {
		t.Errorf("expected first timestamp %v, got %v", first, viewed[0].FirstViewed)
	}
}

// Opening and closing a panel twice marks the article on every open.
func TestStore_ToggleTwiceStoresOnce(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	for i := 0; i < 2; i++ {
		if _, err := store.MarkViewed(7); err != nil {
			t.Fatalf("failed to mark viewed: %v", err)
		}
	}

	viewed, err := store.ViewedArticles()
	if err != nil {
		t.Fatalf("failed to list viewed: %v", err)
	}
	count := 0
	for _, a := range viewed {
		if a.ID == 7 {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected id 7 exactly once, got %d", count)
	}
}

func TestStore_ViewedIDs(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	if _, err := store.MarkViewed(3); err != nil {
		t.Fatal(err)
	}

	ids, err := store.ViewedIDs()
	if err != nil {
		t.Fatal(err)
	}
	if !ids[3] {
		t.Error("expected 3 viewed")
	}
	if ids[4] {
		t.Error("expected 4 not viewed")
	}
}

func TestStore_ViewedArticlesOrderedByID(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	for _, id := range []int{300, 2, 41} {
		if _, err := store.MarkViewed(id); err != nil {
			t.Fatal(err)
		}
	}

	viewed, err := store.ViewedArticles()
	if err != nil {
		t.Fatal(err)
	}
	want := []int{2, 41, 300}
	if len(viewed) != len(want) {
		t.Fatalf("expected %d articles, got %d", len(want), len(viewed))
	}
	for i, id := range want {
		if viewed[i].ID != id {
			t.Errorf("position %d: expected %d, got %d", i, id, viewed[i].ID)
		}
	}

	ids, err := store.ViewedIDs()
	if err != nil {
		t.Fatal(err)
	}
	if !ids[41] || ids[5] {
		t.Errorf("unexpected id set %v", ids)
	}
}

func TestStore_ClearViewed(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	if _, err := store.MarkViewed(1); err != nil {
		t.Fatal(err)
	}
	if err := store.ClearViewed(); err != nil {
		t.Fatalf("failed to clear: %v", err)
	}

	viewed, err := store.ViewedArticles()
	if err != nil {
		t.Fatal(err)
	}
	if len(viewed) != 0 {
		t.Errorf("expected no viewed articles, got %d", len(viewed))
	}
}

func TestStore_SessionQuery(t *testing.T) {
	store, _, cleanup := setupTestStore(t)
	defer cleanup()

	query, err := store.LoadQuery()
	if err != nil {
		t.Fatalf("failed to load empty session: %v", err)
	}
	if query != "" {
		t.Errorf("expected empty query, got %q", query)
	}

	if err := store.SaveQuery("category=3,7&locale=ru&search=foo"); err != nil {
		t.Fatalf("failed to save query: %v", err)
	}
	query, err = store.LoadQuery()
	if err != nil {
		t.Fatal(err)
	}
	if query != "category=3,7&locale=ru&search=foo" {
		t.Errorf("unexpected query %q", query)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	store, dbPath, cleanup := setupTestStore(t)
	defer cleanup()

	if _, err := store.MarkViewed(9); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveQuery("search=x"); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen: %v", err)
	}
	defer reopened.Close()

	ids, err := reopened.ViewedIDs()
	if err != nil || !ids[9] {
		t.Errorf("expected 9 viewed after reopen, got %v (err %v)", ids, err)
	}
	query, err := reopened.LoadQuery()
	if err != nil || query != "search=x" {
		t.Errorf("expected saved query after reopen, got %q (err %v)", query, err)
	}
}

func TestNewStore_LockTimeout(t *testing.T) {
	_, dbPath, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := NewStore(dbPath, WithTimeout(50*time.Millisecond))
	if err == nil {
		t.Fatal("expected timeout opening a locked database")
	}
}
