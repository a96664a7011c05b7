// Package clitest builds command contexts backed by a temporary SQLite store.
package clitest

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/genie/internal/auth"
	"github.com/julianstephens/genie/internal/cli"
	"github.com/julianstephens/genie/internal/generator"
	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/prefs"
	"github.com/julianstephens/genie/internal/storage/sqlite"
)

type Env struct {
	Ctx    *cli.Context
	Store  *sqlite.Store
	Prefs  *prefs.MemoryStore
	Tokens *auth.MemoryTokens
	Out    *bytes.Buffer
	DBPath string
}

type Options struct {
	Generator           generator.Generator
	RequireConfirmation bool
	// SkipInit leaves the database file uncreated.
	SkipInit bool
}

func New(t *testing.T, opts Options) *Env {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "genie.db")
	store := sqlite.NewStore(dbPath)
	if !opts.SkipInit {
		if err := store.Init(); err != nil {
			t.Fatalf("failed to init store: %v", err)
		}
	}
	t.Cleanup(func() { store.Close() })

	gen := opts.Generator
	if gen == nil {
		gen = generator.Unavailable{}
	}
	tokens := &auth.MemoryTokens{}
	p := prefs.NewMemoryStore(models.DefaultPreferences())
	out := &bytes.Buffer{}

	return &Env{
		Ctx: &cli.Context{
			Store:     store,
			Auth:      auth.NewService(store, auth.Config{RequireConfirmation: opts.RequireConfirmation, Tokens: tokens}),
			Generator: gen,
			Prefs:     p,
			ConfigDir: dir,
			Out:       out,
			In:        strings.NewReader(""),
		},
		Store:  store,
		Prefs:  p,
		Tokens: tokens,
		Out:    out,
		DBPath: dbPath,
	}
}

// Input makes the next prompts read s.
func (e *Env) Input(s string) { e.Ctx.In = strings.NewReader(s) }

// SignUp registers and signs in a founder with a saved profile.
func (e *Env) SignUp(t *testing.T, email, name string) models.Session {
	t.Helper()
	sess, err := e.Ctx.Auth.SignUp(context.Background(), auth.Credentials{Email: email, Password: "secret1", Remember: true})
	if err != nil {
		t.Fatalf("SignUp(%s) error = %v", email, err)
	}
	if name != "" {
		if err := e.Store.SaveProfile(models.Profile{UserID: sess.UserID, FullName: name, Role: "Student"}); err != nil {
			t.Fatalf("SaveProfile() error = %v", err)
		}
	}
	return sess
}

// Plan returns a small valid plan titled after idea.
func Plan(idea string) models.StartupPlan {
	p := generator.Fallback()
	p.RefinedIdea = idea
	p.PitchSummary = "Pitch for " + idea
	return p
}

// SaveBlueprint stores a blueprint for userID.
func (e *Env) SaveBlueprint(t *testing.T, id, userID, idea string) models.Blueprint {
	t.Helper()
	plan := Plan(idea)
	bp := models.Blueprint{ID: id, UserID: userID, Title: plan.Title(), Idea: idea, Plan: plan, CreatedAt: time.Now().UTC()}
	if err := e.Store.SaveBlueprint(bp); err != nil {
		t.Fatalf("SaveBlueprint() error = %v", err)
	}
	return bp
}
