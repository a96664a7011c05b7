// Package export renders plans as Markdown for the results screen, the
// blueprints command and exported files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/julianstephens/genie/internal/constants"
	"github.com/julianstephens/genie/internal/models"
)

type Options struct {
	Title       string
	Idea        string
	FounderName string
	FounderRole string
	CreatedAt   time.Time
	// Checked marks roadmap items as done, keyed by ChecklistKey.
	Checked map[string]bool
}

// ChecklistKey identifies a roadmap item: "must-0", "optional-2", ...
func ChecklistKey(phase string, i int) string {
	return fmt.Sprintf("%s-%d", phase, i)
}

func bullets(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("_None yet._\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

// Summary is the executive pitch, the refined concept and the founder note.
func Summary(plan models.StartupPlan) string {
	var b strings.Builder
	b.WriteString("## The Executive Pitch\n\n")
	b.WriteString(plan.PitchSummary + "\n\n")
	b.WriteString("## Concept Refinement\n\n")
	b.WriteString(plan.RefinedIdea + "\n\n")
	if len(plan.Competitors) > 0 {
		b.WriteString("## Key Players\n\n")
		for _, c := range plan.Competitors {
			fmt.Fprintf(&b, "- **%s**: %s\n", c.Name, c.MarketPosition)
		}
		b.WriteString("\n")
	}
	if note := strings.TrimSpace(plan.FounderNote); note != "" {
		fmt.Fprintf(&b, "> %s\n", note)
	}
	return b.String()
}

// Audience lists the ideal customer profiles.
func Audience(plan models.StartupPlan) string {
	var b strings.Builder
	b.WriteString("## Ideal Customer Profile\n\n")
	if len(plan.TargetUsers) == 0 {
		b.WriteString("_None yet._\n")
	}
	for i, u := range plan.TargetUsers {
		fmt.Fprintf(&b, "### %d. %s\n\n%s\n\n", i+1, u.UserType, u.PainPoint)
	}
	return b.String()
}

// Advantage is the SWOT grid, the competitive landscape and the revenue models.
func Advantage(plan models.StartupPlan) string {
	var b strings.Builder
	b.WriteString("## SWOT\n\n")
	sections := []struct {
		title string
		items []string
	}{
		{"Strengths", plan.SWOT.Strengths},
		{"Weaknesses", plan.SWOT.Weaknesses},
		{"Opportunities", plan.SWOT.Opportunities},
		{"Threats", plan.SWOT.Threats},
	}
	for _, s := range sections {
		fmt.Fprintf(&b, "### %s\n\n", s.title)
		bullets(&b, s.items)
		b.WriteString("\n")
	}

	b.WriteString("## The Battlefield\n\n")
	for _, c := range plan.Competitors {
		fmt.Fprintf(&b, "### %s\n\n", c.Name)
		fmt.Fprintf(&b, "- **Market Stance:** %s\n", c.MarketPosition)
		fmt.Fprintf(&b, "- **Differentiator:** %s\n", c.KeyDifferentiator)
		fmt.Fprintf(&b, "- **Strategic Gap / Our Edge:** %s\n\n", c.StrategicGap)
	}

	b.WriteString("## Revenue Architecture\n\n")
	for _, m := range plan.Monetization {
		fmt.Fprintf(&b, "- **%s**: %s\n", m.ModelName, m.Description)
	}
	return b.String()
}

// Roadmap is the MVP checklist. checked may be nil.
func Roadmap(plan models.StartupPlan, checked map[string]bool) string {
	var b strings.Builder
	b.WriteString("## The Execution Plan\n\n")
	b.WriteString("### Phase 1: Foundation (Must-Haves)\n\n")
	for i, f := range plan.MVPFeatures.MustHave {
		mark := " "
		if checked[ChecklistKey("must", i)] {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s\n", mark, f)
	}
	b.WriteString("\n### Phase 2: Growth (Upcoming)\n\n")
	for i, f := range plan.MVPFeatures.Optional {
		mark := " "
		if checked[ChecklistKey("optional", i)] {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s\n", mark, f)
	}
	return b.String()
}

// Markdown renders the whole blueprint as one document.
func Markdown(plan models.StartupPlan, opts Options) string {
	title := opts.Title
	if title == "" {
		title = plan.Title()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if opts.FounderName != "" {
		role := opts.FounderRole
		if role == "" {
			role = constants.DefaultRole
		}
		fmt.Fprintf(&b, "_Founder: %s (%s)_\n\n", opts.FounderName, role)
	}
	if !opts.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "_Created: %s_\n\n", opts.CreatedAt.Local().Format(constants.DateFormat))
	}
	if idea := strings.TrimSpace(opts.Idea); idea != "" {
		b.WriteString("## Original Idea\n\n")
		b.WriteString(idea + "\n\n")
	}
	for _, section := range []string{
		Summary(plan),
		Audience(plan),
		Advantage(plan),
		Roadmap(plan, opts.Checked),
	} {
		b.WriteString(section)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "---\n\n_Generated by %s %s_\n", constants.DisplayName, constants.Version)
	return b.String()
}

// WriteFile writes the Markdown document to path, creating parent directories.
func WriteFile(path string, plan models.StartupPlan, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(Markdown(plan, opts)), 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// FileName derives a filesystem-safe name from the title.
func FileName(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	name := strings.Trim(b.String(), "-")
	if len(name) > 48 {
		name = strings.Trim(name[:48], "-")
	}
	if name == "" {
		name = "blueprint"
	}
	return name + ".md"
}

// Render formats Markdown for the terminal. dark selects the glamour style.
func Render(md string, width int, dark bool) (string, error) {
	style := "light"
	if dark {
		style = "dark"
	}
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
