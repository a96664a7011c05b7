package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/genie/internal/avatar"
	"github.com/julianstephens/genie/internal/cli"
	"github.com/julianstephens/genie/internal/constants"
)

type ProfileShowCmd struct{}

func (c *ProfileShowCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	sess, p, err := ctx.Profile(bg)
	if err != nil {
		return err
	}

	role := p.Role
	if role == "" {
		role = constants.DefaultRole
	}
	ctx.Printf("Name:    %s\n", p.DisplayName())
	ctx.Printf("Role:    %s\n", role)
	ctx.Printf("Email:   %s\n", sess.Email)
	if p.Bio != "" {
		ctx.Printf("Bio:     %s\n", p.Bio)
	}
	avatarState := "none"
	if p.AvatarRef != "" {
		avatarState = "set"
	}
	ctx.Printf("Avatar:  %s\n", avatarState)

	list, err := ctx.Store.ListBlueprints(sess.UserID)
	if err != nil {
		return fmt.Errorf("failed to list blueprints: %w", err)
	}
	ctx.Printf("Blueprints saved: %d", len(list))
	if len(list) > 0 {
		ctx.Printf(" (latest %s)", humanize.Time(list[0].CreatedAt))
	}
	ctx.Println()
	return nil
}

type ProfileSetCmd struct {
	Name   *string `help:"Full name."`
	Role   *string `help:"Founder role, e.g. \"Student\" or \"Serial Founder\"."`
	Bio    *string `help:"Short bio."`
	Avatar string  `type:"existingfile" help:"Image file to use as the profile picture."`
}

func (c *ProfileSetCmd) Run(ctx *cli.Context) error {
	sess, p, err := ctx.Profile(context.Background())
	if err != nil {
		return err
	}

	if c.Name != nil {
		p.FullName = strings.TrimSpace(*c.Name)
	}
	if c.Role != nil {
		p.Role = strings.TrimSpace(*c.Role)
	}
	if c.Bio != nil {
		p.Bio = strings.TrimSpace(*c.Bio)
	}
	if strings.TrimSpace(p.FullName) == "" {
		return errors.New("a name is required, pass --name")
	}
	if p.Role == "" {
		p.Role = constants.DefaultRole
	}

	switch {
	case c.Avatar != "":
		ref, err := avatar.FromFile(c.Avatar)
		if err != nil {
			return fmt.Errorf("failed to process avatar: %w", err)
		}
		p.AvatarRef = ref
	case p.AvatarRef == "":
		if png, err := avatar.Initials(p.FullName, constants.AvatarSize); err == nil {
			p.AvatarRef = avatar.DataURI(png)
		}
	}

	p.UserID = sess.UserID
	p.UpdatedAt = time.Now().UTC()
	if err := ctx.Store.SaveProfile(p); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	if err := ctx.CacheProfile(p); err != nil {
		return err
	}
	ctx.Printf("✓ Profile saved for %s (%s)\n", p.FullName, p.Role)
	return nil
}
