package plans

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/genie/internal/auth"
	"github.com/julianstephens/genie/internal/cli"
	"github.com/julianstephens/genie/internal/constants"
	"github.com/julianstephens/genie/internal/export"
	"github.com/julianstephens/genie/internal/generator"
	"github.com/julianstephens/genie/internal/logger"
	"github.com/julianstephens/genie/internal/models"
)

// output prints the plan or writes it to path.
func output(ctx *cli.Context, plan models.StartupPlan, opts export.Options, path string, raw bool) error {
	if path == "" {
		ctx.PrintMarkdown(export.Markdown(plan, opts), raw)
		return nil
	}
	if err := export.WriteFile(path, plan, opts); err != nil {
		return err
	}
	ctx.Printf("✓ Blueprint written to %s\n", path)
	return nil
}

type GenerateCmd struct {
	Idea   string `arg:"" help:"The startup idea. Use - to read it from stdin."`
	Name   string `help:"Founder name. Defaults to your profile name."`
	Role   string `help:"Founder role. Defaults to your profile role."`
	Save   bool   `help:"Save the result as a blueprint (requires sign in)."`
	Output string `short:"o" type:"path" help:"Write Markdown to this file instead of printing it."`
	Raw    bool   `help:"Print Markdown without terminal styling."`
	Strict bool   `help:"Fail instead of falling back to the demo blueprint."`
}

func (c *GenerateCmd) Run(ctx *cli.Context) error {
	idea, err := c.readIdea(ctx)
	if err != nil {
		return err
	}
	if n := len([]rune(idea)); n < constants.MinIdeaLength {
		return fmt.Errorf("idea is too short (%d characters, need at least %d)", n, constants.MinIdeaLength)
	}

	bg := context.Background()
	sess, profile, sessErr := ctx.Profile(bg)
	if sessErr != nil && !errors.Is(sessErr, auth.ErrNoSession) {
		logger.Warn("Profile unavailable", "error", sessErr)
	}
	if c.Save && sessErr != nil {
		return fmt.Errorf("cannot save: %w", sessErr)
	}

	req := generator.Request{
		Idea:        idea,
		FounderName: firstNonEmpty(c.Name, profile.FullName),
		FounderRole: firstNonEmpty(c.Role, profile.Role, constants.DefaultRole),
	}
	if req.FounderName == "" {
		return errors.New("a founder name is required, pass --name or set up your profile")
	}

	gctx, cancel := context.WithTimeout(bg, constants.GenerationTimeout)
	defer cancel()
	started := time.Now()
	plan, err := ctx.Generator.Generate(gctx, req)
	if err != nil {
		if c.Strict {
			return err
		}
		logger.Warn("Generation failed, using demo blueprint", "error", err)
		fmt.Fprintf(os.Stderr, "⚠ %s (%v)\n", constants.FallbackNotice, err)
		plan = generator.Fallback()
	} else {
		logger.Info("Plan generated", "elapsed", time.Since(started).Round(time.Millisecond))
	}

	opts := export.Options{
		Idea:        idea,
		FounderName: req.FounderName,
		FounderRole: req.FounderRole,
		CreatedAt:   time.Now(),
	}
	if c.Save {
		bp := models.Blueprint{
			ID:        uuid.NewString(),
			UserID:    sess.UserID,
			Title:     plan.Title(),
			Idea:      idea,
			Plan:      plan,
			CreatedAt: time.Now().UTC(),
		}
		if err := ctx.Store.SaveBlueprint(bp); err != nil {
			return fmt.Errorf("failed to save blueprint: %w", err)
		}
		ctx.Printf("✓ Saved blueprint %s (%s)\n", bp.ID, bp.Title)
	}
	return output(ctx, plan, opts, c.Output, c.Raw)
}

func (c *GenerateCmd) readIdea(ctx *cli.Context) (string, error) {
	if c.Idea != "-" {
		return strings.TrimSpace(c.Idea), nil
	}
	in := ctx.In
	if in == nil {
		in = os.Stdin
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read idea from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// SampleCmd prints the built-in demo blueprint. It needs no network access.
type SampleCmd struct {
	Output string `short:"o" type:"path" help:"Write Markdown to this file instead of printing it."`
	Raw    bool   `help:"Print Markdown without terminal styling."`
}

func (c *SampleCmd) Run(ctx *cli.Context) error {
	return output(ctx, generator.Fallback(), export.Options{Idea: generator.SampleIdea}, c.Output, c.Raw)
}
