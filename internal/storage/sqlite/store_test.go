package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/storage"
)

var _ storage.Provider = (*Store)(nil)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testPlan(idea string) models.StartupPlan {
	p := models.StartupPlan{
		RefinedIdea:  idea,
		TargetUsers:  []models.TargetUser{{UserType: "Commuters", PainPoint: "No time"}},
		MVPFeatures:  models.MVPFeatures{MustHave: []string{"Ordering"}, Optional: []string{"Loyalty"}},
		Monetization: []models.MonetizationModel{{ModelName: "Fees", Description: "Per order"}},
		PitchSummary: "Pitch for " + idea,
		SWOT: models.SWOTAnalysis{
			Strengths:     []string{"s"},
			Weaknesses:    []string{"w"},
			Opportunities: []string{"o"},
			Threats:       []string{"t"},
		},
		Competitors: []models.Competitor{{Name: "Acme", MarketPosition: "Leader", KeyDifferentiator: "Scale", StrategicGap: "Local"}},
	}
	return p
}

func TestLoadUninitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); !errors.Is(err, storage.ErrNotInitialized) {
		t.Fatalf("Load() error = %v, want ErrNotInitialized", err)
	}
}

func TestInitThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := store.SetSetting("k", "v"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	store.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetSetting("k")
	if err != nil || got != "v" {
		t.Errorf("GetSetting() = %q, %v; want \"v\", nil", got, err)
	}
	if reopened.GetConfigPath() != path {
		t.Errorf("GetConfigPath() = %q, want %q", reopened.GetConfigPath(), path)
	}
}

func TestSettings(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.GetSetting("absent"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetSetting(absent) error = %v, want ErrNotFound", err)
	}
	if err := store.SetSetting("secret", "a"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetSetting("secret", "b"); err != nil {
		t.Fatal(err)
	}
	if v, _ := store.GetSetting("secret"); v != "b" {
		t.Errorf("GetSetting() = %q, want last write %q", v, "b")
	}
}

func TestAccounts(t *testing.T) {
	store := setupTestStore(t)
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	acct := models.Account{ID: "u1", Email: "dana@example.com", PasswordHash: "hash", Provider: "email", CreatedAt: created}

	if err := store.CreateAccount(acct); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	t.Run("duplicate email is rejected case-insensitively", func(t *testing.T) {
		dup := acct
		dup.ID = "u2"
		dup.Email = "DANA@example.com"
		if err := store.CreateAccount(dup); !errors.Is(err, storage.ErrAccountExists) {
			t.Errorf("CreateAccount(dup) error = %v, want ErrAccountExists", err)
		}
	})

	t.Run("lookup by email and id", func(t *testing.T) {
		byEmail, err := store.GetAccountByEmail("Dana@Example.com")
		if err != nil {
			t.Fatalf("GetAccountByEmail() error = %v", err)
		}
		byID, err := store.GetAccount("u1")
		if err != nil {
			t.Fatalf("GetAccount() error = %v", err)
		}
		if diff := cmp.Diff(byEmail, byID); diff != "" {
			t.Errorf("lookups differ (-email +id):\n%s", diff)
		}
		if !byID.CreatedAt.Equal(created) || byID.ConfirmedAt != nil {
			t.Errorf("unexpected account timestamps: %+v", byID)
		}
	})

	t.Run("confirm", func(t *testing.T) {
		at := created.Add(time.Hour)
		if err := store.ConfirmAccount("u1", at); err != nil {
			t.Fatalf("ConfirmAccount() error = %v", err)
		}
		got, _ := store.GetAccount("u1")
		if got.ConfirmedAt == nil || !got.ConfirmedAt.Equal(at) {
			t.Errorf("ConfirmedAt = %v, want %v", got.ConfirmedAt, at)
		}
		if err := store.ConfirmAccount("nobody", at); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("ConfirmAccount(unknown) error = %v, want ErrNotFound", err)
		}
	})
}

func TestProfiles(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.GetProfile("u1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("GetProfile() error = %v, want ErrNotFound", err)
	}

	p := models.Profile{UserID: "u1", FullName: "Dana", Role: "Student", UpdatedAt: time.Now().UTC()}
	for i := 0; i < 2; i++ {
		if err := store.SaveProfile(p); err != nil {
			t.Fatalf("SaveProfile() #%d error = %v", i, err)
		}
	}
	p.Bio = "Builds things"
	if err := store.SaveProfile(p); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetProfile("u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Bio != "Builds things" || got.FullName != "Dana" || !got.UpdatedAt.Equal(p.UpdatedAt) {
		t.Errorf("GetProfile() = %+v", got)
	}
	if err := store.SaveProfile(models.Profile{}); err == nil {
		t.Error("SaveProfile() without user id should fail")
	}
}

func TestBlueprints(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	ids := []string{"b1", "b2", "b3"}
	for i, id := range ids {
		b := models.Blueprint{
			ID:        id,
			UserID:    "u1",
			Title:     "Idea " + id,
			Idea:      "idea text " + id,
			Plan:      testPlan("Idea " + id),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := store.SaveBlueprint(b); err != nil {
			t.Fatalf("SaveBlueprint(%s) error = %v", id, err)
		}
	}
	other := models.Blueprint{ID: "x1", UserID: "u2", Title: "Other", Plan: testPlan("Other"), CreatedAt: base}
	if err := store.SaveBlueprint(other); err != nil {
		t.Fatal(err)
	}

	t.Run("list is most recent first and scoped to the user", func(t *testing.T) {
		list, err := store.ListBlueprints("u1")
		if err != nil {
			t.Fatal(err)
		}
		var got []string
		for _, b := range list {
			got = append(got, b.ID)
		}
		if diff := cmp.Diff([]string{"b3", "b2", "b1"}, got); diff != "" {
			t.Errorf("ListBlueprints() order (-want +got):\n%s", diff)
		}
		if list[0].PitchSummary != "Pitch for Idea b3" {
			t.Errorf("PitchSummary = %q", list[0].PitchSummary)
		}
	})

	t.Run("get round trips the plan", func(t *testing.T) {
		got, err := store.GetBlueprint("b2")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(testPlan("Idea b2"), got.Plan); diff != "" {
			t.Errorf("plan mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			if err := store.DeleteBlueprint("b2"); err != nil {
				t.Fatalf("DeleteBlueprint() #%d error = %v", i, err)
			}
		}
		if err := store.DeleteBlueprint("never-existed"); err != nil {
			t.Fatalf("DeleteBlueprint(unknown) error = %v", err)
		}
		if _, err := store.GetBlueprint("b2"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetBlueprint(deleted) error = %v, want ErrNotFound", err)
		}
		list, _ := store.ListBlueprints("u1")
		seen := map[string]bool{}
		for _, b := range list {
			if b.ID == "b2" {
				t.Error("deleted blueprint still listed")
			}
			if seen[b.ID] {
				t.Errorf("duplicate blueprint %s", b.ID)
			}
			seen[b.ID] = true
		}
		if len(list) != 2 {
			t.Errorf("len(list) = %d, want 2", len(list))
		}
	})
}
