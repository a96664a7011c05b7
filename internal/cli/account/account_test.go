package account

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/genie/internal/auth"
	"github.com/julianstephens/genie/internal/cli/clitest"
)

func TestRegisterLoginLogout(t *testing.T) {
	env := clitest.New(t, clitest.Options{})

	if err := (&RegisterCmd{Email: "Dana@Example.com", Password: "secret1"}).Run(env.Ctx); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !strings.Contains(env.Out.String(), "genie profile set") {
		t.Errorf("register did not suggest creating a profile:\n%s", env.Out.String())
	}
	p := env.Prefs.Current()
	if !p.SessionActive || !p.Remember {
		t.Errorf("prefs after register = %+v, want an active remembered session", p)
	}

	if err := (&LogoutCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if p := env.Prefs.Current(); p.SessionActive || p.CachedName != "" {
		t.Errorf("prefs after logout = %+v, want cleared", p)
	}
	if _, err := env.Ctx.Session(t.Context()); !errors.Is(err, auth.ErrNoSession) {
		t.Errorf("session after logout error = %v, want ErrNoSession", err)
	}

	err := (&LoginCmd{Email: "dana@example.com", Password: "wrong-pass", Provider: auth.ProviderEmail}).Run(env.Ctx)
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("login with wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if err := (&LoginCmd{Email: "dana@example.com", Password: "secret1", Provider: auth.ProviderEmail}).Run(env.Ctx); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	env.Out.Reset()
	if err := (&StatusCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.Out.String(), "Signed in as dana@example.com via email") {
		t.Errorf("unexpected status:\n%s", env.Out.String())
	}
}

func TestRegisterExisting(t *testing.T) {
	env := clitest.New(t, clitest.Options{})
	env.SignUp(t, "dana@example.com", "")
	err := (&RegisterCmd{Email: "dana@example.com", Password: "secret1"}).Run(env.Ctx)
	if !errors.Is(err, auth.ErrAccountExists) {
		t.Fatalf("register existing error = %v, want ErrAccountExists", err)
	}
}

func TestConfirmationFlow(t *testing.T) {
	env := clitest.New(t, clitest.Options{RequireConfirmation: true})

	if err := (&RegisterCmd{Email: "dana@example.com", Password: "secret1"}).Run(env.Ctx); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if !strings.Contains(env.Out.String(), "genie account confirm dana@example.com") {
		t.Errorf("register did not explain confirmation:\n%s", env.Out.String())
	}

	login := &LoginCmd{Email: "dana@example.com", Password: "secret1", Provider: auth.ProviderEmail}
	if err := login.Run(env.Ctx); !errors.Is(err, auth.ErrConfirmationPending) {
		t.Fatalf("login before confirm error = %v, want ErrConfirmationPending", err)
	}
	if err := (&ConfirmCmd{Email: "dana@example.com"}).Run(env.Ctx); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if err := login.Run(env.Ctx); err != nil {
		t.Fatalf("login after confirm failed: %v", err)
	}
}

func TestPasswordPrompt(t *testing.T) {
	env := clitest.New(t, clitest.Options{})
	prev := promptPassword
	t.Cleanup(func() { promptPassword = prev })

	var asked string
	promptPassword = func(title string) (string, error) {
		asked = title
		return "prompted1", nil
	}
	if err := (&RegisterCmd{Email: "dana@example.com"}).Run(env.Ctx); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if asked == "" {
		t.Fatal("password was not prompted for")
	}
	if _, err := env.Ctx.Auth.SignIn(t.Context(), auth.Credentials{Email: "dana@example.com", Password: "prompted1"}); err != nil {
		t.Errorf("prompted password was not used: %v", err)
	}
}

func TestStatusSignedOut(t *testing.T) {
	env := clitest.New(t, clitest.Options{})
	if err := (&StatusCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(env.Out.String()) != "Not signed in." {
		t.Errorf("unexpected status: %q", env.Out.String())
	}
}

func strPtr(s string) *string { return &s }

func TestProfileSetAndShow(t *testing.T) {
	env := clitest.New(t, clitest.Options{})
	sess := env.SignUp(t, "dana@example.com", "")

	if err := (&ProfileSetCmd{}).Run(env.Ctx); err == nil {
		t.Fatal("profile set without a name succeeded")
	}

	if err := (&ProfileSetCmd{Name: strPtr("  Dana Scully "), Bio: strPtr("Builds things")}).Run(env.Ctx); err != nil {
		t.Fatalf("profile set failed: %v", err)
	}
	p, err := env.Store.GetProfile(sess.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if p.FullName != "Dana Scully" || p.Role != "Aspiring Entrepreneur" || p.Bio != "Builds things" {
		t.Errorf("saved profile = %+v", p)
	}
	if !strings.HasPrefix(p.AvatarRef, "data:image/png;base64,") {
		t.Errorf("no initials avatar was drawn")
	}
	if c := env.Prefs.Current(); c.CachedName != "Dana Scully" {
		t.Errorf("profile not cached in prefs: %+v", c)
	}

	// role only; the name survives
	if err := (&ProfileSetCmd{Role: strPtr("Researcher")}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	env.SaveBlueprint(t, "bp-1", sess.UserID, "Microgreens for restaurants")

	env.Out.Reset()
	if err := (&ProfileShowCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	out := env.Out.String()
	for _, want := range []string{"Name:    Dana Scully", "Role:    Researcher", "Email:   dana@example.com", "Avatar:  set", "Blueprints saved: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("profile show missing %q:\n%s", want, out)
		}
	}
}

func TestProfileSetAvatar(t *testing.T) {
	env := clitest.New(t, clitest.Options{})
	sess := env.SignUp(t, "dana@example.com", "Dana")

	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "me.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := (&ProfileSetCmd{Avatar: path}).Run(env.Ctx); err != nil {
		t.Fatalf("profile set --avatar failed: %v", err)
	}
	p, err := env.Store.GetProfile(sess.UserID)
	if err != nil {
		t.Fatal(err)
	}
	if p.AvatarRef == "" || p.FullName != "Dana" {
		t.Errorf("profile name = %q, avatar set = %t; want Dana with an avatar", p.FullName, p.AvatarRef != "")
	}
}
