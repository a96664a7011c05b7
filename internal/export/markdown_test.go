package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/genie/internal/generator"
)

func TestMarkdownContainsEverySection(t *testing.T) {
	plan := generator.Fallback()
	md := Markdown(plan, Options{
		Idea:        "Groceries in 15 minutes",
		FounderName: "Dana",
		CreatedAt:   time.Date(2025, 2, 3, 12, 0, 0, 0, time.UTC),
	})

	want := []string{
		"# " + plan.Title(),
		"_Founder: Dana (Aspiring Entrepreneur)_",
		"## Original Idea",
		"## The Executive Pitch",
		"## Ideal Customer Profile",
		"### 1. Urban Professionals",
		"### Threats",
		"## The Battlefield",
		"### Getir",
		"## Revenue Architecture",
		"- [ ] Real-time Inventory Sync",
		"- [ ] Community Garden Integration",
		plan.FounderNote,
	}
	for _, w := range want {
		if !strings.Contains(md, w) {
			t.Errorf("Markdown() missing %q", w)
		}
	}
	if strings.Count(md, "\n# ")+boolToInt(strings.HasPrefix(md, "# ")) != 1 {
		t.Error("Markdown() should have exactly one level-1 heading")
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestRoadmapChecked(t *testing.T) {
	plan := generator.Fallback()
	md := Roadmap(plan, map[string]bool{ChecklistKey("must", 1): true, ChecklistKey("optional", 0): true})

	for _, w := range []string{
		"- [ ] Real-time Inventory Sync",
		"- [x] Dynamic Neighborhood Courier App",
		"- [x] Subscription-based 'Infinite' tier",
		"- [ ] Community Garden Integration",
	} {
		if !strings.Contains(md, w) {
			t.Errorf("Roadmap() missing %q", w)
		}
	}
}

func TestEmptyListsRenderPlaceholder(t *testing.T) {
	plan := generator.Fallback()
	plan.SWOT.Threats = []string{}
	plan.TargetUsers = nil
	if !strings.Contains(Advantage(plan), "_None yet._") {
		t.Error("Advantage() should mark empty SWOT lists")
	}
	if !strings.Contains(Audience(plan), "_None yet._") {
		t.Error("Audience() should mark an empty audience")
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"A hyper-local delivery ecosystem", "a-hyper-local-delivery-ecosystem.md"},
		{"  !!!  ", "blueprint.md"},
		{"Dog Walking: Uber for Pets?", "dog-walking-uber-for-pets.md"},
		{strings.Repeat("abc ", 30), strings.TrimRight(strings.Repeat("abc-", 12), "-") + ".md"},
	}
	for _, tt := range tests {
		if got := FileName(tt.title); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "plan.md")
	if err := WriteFile(path, generator.Fallback(), Options{Title: "Sample"}); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Sample\n") {
		t.Errorf("unexpected file header: %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestRender(t *testing.T) {
	out, err := Render(Summary(generator.Fallback()), 60, true)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "Executive") {
		t.Errorf("Render() output missing heading: %q", out)
	}
}
