package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveScore("flappy", 0, 7); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	high, err := store.HighScore("flappy")
	if err != nil {
		t.Fatal(err)
	}
	if high != 7 {
		t.Errorf("Expected high score 7 after reopen, got %d", high)
	}
}

func TestStoreSaveAndRetrieveScores(t *testing.T) {
	store := openTestStore(t)

	for _, s := range []int{100, 50, 200} {
		if _, err := store.SaveScore("flappy", 0, s); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	if _, err := store.SaveScore("other", 0, 500); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	scores, err := store.TopScores("flappy", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(scores))
	}

	// Should be sorted descending
	want := []int{200, 100, 50}
	for i, w := range want {
		if scores[i].Score != w {
			t.Errorf("scores[%d] = %d, expected %d", i, scores[i].Score, w)
		}
		if scores[i].EnvID != "flappy" || scores[i].PolicyID != 0 {
			t.Errorf("scores[%d] = %+v", i, scores[i])
		}
	}
	if scores[0].CreatedAt.IsZero() {
		t.Error("CreatedAt should be populated")
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 15; i++ {
		if _, err := store.SaveScore("flappy", 0, i*10); err != nil {
			t.Fatal(err)
		}
	}

	scores, err := store.TopScores("flappy", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 5 {
		t.Errorf("Expected 5 scores, got %d", len(scores))
	}
	if scores[0].Score != 140 {
		t.Errorf("Expected top score 140, got %d", scores[0].Score)
	}

	// Non-positive limit falls back to 10
	scores, err = store.TopScores("flappy", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 10 {
		t.Errorf("Expected default limit of 10, got %d", len(scores))
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)

	high, err := store.HighScore("flappy")
	if err != nil {
		t.Fatal(err)
	}
	if high != 0 {
		t.Errorf("Expected 0 for empty table, got %d", high)
	}

	store.SaveScore("flappy", 0, 12)
	store.SaveScore("flappy", 0, 31)
	store.SaveScore("flappy", 0, 4)

	high, err = store.HighScore("flappy")
	if err != nil {
		t.Fatal(err)
	}
	if high != 31 {
		t.Errorf("Expected high score 31, got %d", high)
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore("flappy", 0, 10)
	store.SaveScore("other", 0, 20)

	if err := store.ClearScores("flappy"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	scores, _ := store.TopScores("flappy", 10)
	if len(scores) != 0 {
		t.Errorf("Expected no flappy scores, got %d", len(scores))
	}
	others, _ := store.TopScores("other", 10)
	if len(others) != 1 {
		t.Errorf("ClearScores should not touch other environments, got %d", len(others))
	}
}

func TestStoreStats(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.Stats("flappy")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Episodes != 0 || !stats.LastPlayed.IsZero() {
		t.Errorf("empty stats = %+v", stats)
	}

	store.SaveScore("flappy", 0, 2)
	store.SaveScore("flappy", 0, 4)

	stats, err = store.Stats("flappy")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Episodes != 2 || stats.HighScore != 4 || stats.AvgScore != 3 {
		t.Errorf("stats = %+v, expected 2 episodes, high 4, avg 3", stats)
	}
}

func TestStorePolicies(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.BestPolicy("flappy"); !errors.Is(err, ErrPolicyNotFound) {
		t.Errorf("BestPolicy() on empty store error = %v, expected ErrPolicyNotFound", err)
	}

	weak := PolicyEntry{EnvID: "flappy", Weights: []float64{1, 2, 3, 4, 5}, Reward: -10, Seed: 1, Restarts: 10}
	strong := PolicyEntry{EnvID: "flappy", Weights: []float64{-0.5, 0.25, 0.1, 1e-3, -42}, Reward: 1000, Seed: 2, Restarts: 10}

	weakID, err := store.SavePolicy(weak)
	if err != nil {
		t.Fatalf("SavePolicy() failed: %v", err)
	}
	strongID, err := store.SavePolicy(strong)
	if err != nil {
		t.Fatalf("SavePolicy() failed: %v", err)
	}

	best, err := store.BestPolicy("flappy")
	if err != nil {
		t.Fatalf("BestPolicy() failed: %v", err)
	}
	if best.ID != strongID || best.Reward != 1000 || best.Seed != 2 {
		t.Errorf("BestPolicy() = %+v", best)
	}
	for i, w := range strong.Weights {
		if best.Weights[i] != w {
			t.Errorf("weight %d = %g, expected %g", i, best.Weights[i], w)
		}
	}

	got, err := store.PolicyByID(weakID)
	if err != nil {
		t.Fatalf("PolicyByID() failed: %v", err)
	}
	if got.Reward != -10 || len(got.Weights) != 5 || got.Restarts != 10 {
		t.Errorf("PolicyByID() = %+v", got)
	}

	if _, err := store.PolicyByID(999); !errors.Is(err, ErrPolicyNotFound) {
		t.Errorf("PolicyByID(999) error = %v, expected ErrPolicyNotFound", err)
	}

	top, err := store.TopPolicies("flappy", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].ID != strongID || top[1].ID != weakID {
		t.Errorf("TopPolicies() order wrong: %+v", top)
	}
}

func TestStoreBestPolicyTiePrefersNewest(t *testing.T) {
	store := openTestStore(t)

	store.SavePolicy(PolicyEntry{EnvID: "flappy", Weights: []float64{1}, Reward: 50})
	newer, _ := store.SavePolicy(PolicyEntry{EnvID: "flappy", Weights: []float64{2}, Reward: 50})

	best, err := store.BestPolicy("flappy")
	if err != nil {
		t.Fatal(err)
	}
	if best.ID != newer {
		t.Errorf("BestPolicy() = %d, expected newest %d", best.ID, newer)
	}
}

func TestStoreSavePolicyRequiresWeights(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.SavePolicy(PolicyEntry{EnvID: "flappy"}); err == nil {
		t.Error("SavePolicy() without weights should fail")
	}
}

func TestStoreScoreLinksPolicy(t *testing.T) {
	store := openTestStore(t)

	pid, err := store.SavePolicy(PolicyEntry{EnvID: "flappy", Weights: []float64{1, 2, 3, 4, 5}, Reward: 20})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveScore("flappy", pid, 9); err != nil {
		t.Fatal(err)
	}

	scores, err := store.TopScores("flappy", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 1 || scores[0].PolicyID != pid {
		t.Errorf("TopScores() = %+v, expected policy %d", scores, pid)
	}
}

func TestStoreExpandHomePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := Open("~/.flappyrl/test.db")
	if err != nil {
		t.Fatalf("Open() with ~ failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(home, ".flappyrl", "test.db")); err != nil {
		t.Errorf("expected database under HOME: %v", err)
	}
}
