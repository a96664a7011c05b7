package blueprints

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/genie/internal/cli"
	"github.com/julianstephens/genie/internal/export"
	"github.com/julianstephens/genie/internal/models"
	"github.com/julianstephens/genie/internal/storage"
)

const shortIDLen = 8

// resolve finds one of the founder's blueprints by full id or unique prefix.
func resolve(ctx *cli.Context, ref string) (models.Blueprint, models.Profile, error) {
	sess, profile, err := ctx.Profile(context.Background())
	if err != nil {
		return models.Blueprint{}, models.Profile{}, err
	}
	list, err := ctx.Store.ListBlueprints(sess.UserID)
	if err != nil {
		return models.Blueprint{}, profile, fmt.Errorf("failed to list blueprints: %w", err)
	}

	ref = strings.TrimSpace(ref)
	var matches []models.BlueprintSummary
	for _, s := range list {
		if s.ID == ref {
			matches = []models.BlueprintSummary{s}
			break
		}
		if ref != "" && strings.HasPrefix(s.ID, ref) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return models.Blueprint{}, profile, fmt.Errorf("blueprint %q: %w", ref, storage.ErrNotFound)
	case 1:
	default:
		return models.Blueprint{}, profile, fmt.Errorf("blueprint id %q is ambiguous (%d matches)", ref, len(matches))
	}

	bp, err := ctx.Store.GetBlueprint(matches[0].ID)
	if err != nil {
		return models.Blueprint{}, profile, fmt.Errorf("failed to load blueprint: %w", err)
	}
	return bp, profile, nil
}

func exportOptions(bp models.Blueprint, p models.Profile) export.Options {
	return export.Options{
		Title:       bp.Title,
		Idea:        bp.Idea,
		FounderName: p.FullName,
		FounderRole: p.Role,
		CreatedAt:   bp.CreatedAt,
	}
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

type ListCmd struct {
	Full bool `help:"Show full ids."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	list, err := ctx.Store.ListBlueprints(sess.UserID)
	if err != nil {
		return fmt.Errorf("failed to list blueprints: %w", err)
	}
	if len(list) == 0 {
		ctx.Println("No blueprints yet. Generate one with 'genie generate --save'.")
		return nil
	}

	w := tabwriter.NewWriter(ctx.Writer(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tTITLE")
	for _, s := range list {
		id := s.ID
		if !c.Full {
			id = shortID(id)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", id, humanize.Time(s.CreatedAt), s.Title)
	}
	return w.Flush()
}

type ShowCmd struct {
	ID  string `arg:"" help:"Blueprint id or unique prefix."`
	Raw bool   `help:"Print Markdown without terminal styling."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	bp, profile, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	ctx.PrintMarkdown(export.Markdown(bp.Plan, exportOptions(bp, profile)), c.Raw)
	return nil
}

type ExportCmd struct {
	ID     string `arg:"" help:"Blueprint id or unique prefix."`
	Output string `short:"o" type:"path" help:"Destination file. Defaults to a name derived from the title."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	bp, profile, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	path := c.Output
	if path == "" {
		path = export.FileName(bp.Title)
	}
	if err := export.WriteFile(path, bp.Plan, exportOptions(bp, profile)); err != nil {
		return err
	}
	ctx.Printf("✓ Exported %q to %s\n", bp.Title, filepath.Clean(path))
	return nil
}

type DeleteCmd struct {
	ID  string `arg:"" help:"Blueprint id or unique prefix."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	bp, _, err := resolve(ctx, c.ID)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete blueprint %q?", bp.Title))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Cancelled.")
			return nil
		}
	}
	if err := ctx.Store.DeleteBlueprint(bp.ID); err != nil {
		return fmt.Errorf("failed to delete blueprint: %w", err)
	}
	ctx.Printf("✓ Deleted %q\n", bp.Title)
	return nil
}
