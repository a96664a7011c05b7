package models

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the opposite theme. Unknown values toggle to dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Preferences are the locally persisted flags. Cached profile fields mirror
// the stored profile for offline display and are never authoritative.
type Preferences struct {
	Theme         Theme  `toml:"theme"`
	CachedName    string `toml:"cached_name,omitempty"`
	CachedRole    string `toml:"cached_role,omitempty"`
	CachedBio     string `toml:"cached_bio,omitempty"`
	CachedAvatar  string `toml:"cached_avatar,omitempty"`
	SessionActive bool   `toml:"session_active"`
	Remember      bool   `toml:"remember"`
}

// DefaultPreferences returns the preferences used on first launch.
func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeLight}
}

// ClearSession drops every session-derived flag and cached profile field.
// The theme survives sign out.
func (p *Preferences) ClearSession() {
	p.CachedName = ""
	p.CachedRole = ""
	p.CachedBio = ""
	p.CachedAvatar = ""
	p.SessionActive = false
	p.Remember = false
}
