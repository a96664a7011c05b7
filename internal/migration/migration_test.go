package migration

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrations(t *testing.T) {
	tests := []struct {
		name    string
		files   fstest.MapFS
		want    []int
		wantErr string
	}{
		{
			name: "sorted by version",
			files: fstest.MapFS{
				"002_more.sql": {Data: []byte("SELECT 1;")},
				"001_init.sql": {Data: []byte("SELECT 1;")},
				"README.md":    {Data: []byte("ignored")},
			},
			want: []int{1, 2},
		},
		{
			name:    "missing separator",
			files:   fstest.MapFS{"001.sql": {Data: []byte("")}},
			wantErr: "invalid migration filename",
		},
		{
			name:    "bad version",
			files:   fstest.MapFS{"abc_init.sql": {Data: []byte("")}},
			wantErr: "invalid version",
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"001_a.sql": {Data: []byte("")},
				"001_b.sql": {Data: []byte("")},
			},
			wantErr: "duplicate migration version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(nil, tt.files, SQLite)
			ms, err := r.Migrations()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Migrations() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Migrations() error = %v", err)
			}
			var got []int
			for _, m := range ms {
				got = append(got, m.Version)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("versions = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("versions = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	files := fstest.MapFS{
		"001_init.sql":  {Data: []byte("CREATE TABLE a (id TEXT PRIMARY KEY);")},
		"002_items.sql": {Data: []byte("CREATE TABLE b (id TEXT PRIMARY KEY); CREATE TABLE c (id TEXT);")},
	}
	r := NewRunner(db, files, SQLite)

	pending, err := r.Pending(ctx)
	if err != nil || pending != 2 {
		t.Fatalf("Pending() = %d, %v; want 2", pending, err)
	}

	var logs []string
	n, err := r.Apply(ctx, func(msg string) { logs = append(logs, msg) })
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Apply() applied %d, want 2", n)
	}
	if len(logs) == 0 || !strings.Contains(logs[0], "001_init") {
		t.Errorf("unexpected log messages: %v", logs)
	}

	v, err := r.CurrentVersion(ctx)
	if err != nil || v != 2 {
		t.Errorf("CurrentVersion() = %d, %v; want 2", v, err)
	}

	n, err = r.Apply(ctx, nil)
	if err != nil || n != 0 {
		t.Errorf("second Apply() = %d, %v; want 0, nil", n, err)
	}
	if err := r.Validate(ctx); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestApplyFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	files := fstest.MapFS{
		"001_init.sql":   {Data: []byte("CREATE TABLE a (id TEXT);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE b (id TEXT); NOT SQL AT ALL;")},
	}
	r := NewRunner(db, files, SQLite)

	n, err := r.Apply(ctx, nil)
	if err == nil {
		t.Fatal("Apply() expected error for broken migration")
	}
	if n != 1 {
		t.Errorf("Apply() applied %d before failing, want 1", n)
	}
	if v, _ := r.CurrentVersion(ctx); v != 1 {
		t.Errorf("CurrentVersion() = %d, want 1", v)
	}
}

func TestValidateNewerSchema(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	r := NewRunner(db, fstest.MapFS{"001_init.sql": {Data: []byte("SELECT 1;")}}, SQLite)
	if _, err := r.CurrentVersion(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (5)"); err != nil {
		t.Fatal(err)
	}

	err := r.Validate(ctx)
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Fatalf("Validate() error = %v, want newer schema error", err)
	}
	if _, err := r.Apply(ctx, nil); err == nil {
		t.Error("Apply() should refuse a newer schema")
	}
}
