package constants

import "time"

const (
	AppName           = "genie"
	DisplayName       = "StartUpGenie"
	Version           = "v0.3.0"
	DefaultConfigPath = "~/.config/genie/genie.db"
	PrefsFileName     = "prefs.toml"
	LogFileName       = "genie.log"

	// Keyring entries
	KeyringSessionUser = "session-token"
	KeyringAPIKeyUser  = "gemini-api-key"
	KeyringDBUser      = "database-connection"

	// Generation
	DefaultModel      = "gemini-flash-lite-latest"
	GenerationTimeout = 45 * time.Second
	MaxOutputTokens   = 1000
	MinIdeaLength     = 10

	// FallbackNotice is shown when the generator fails and the sample plan is used instead.
	FallbackNotice = "Network Congestion. Falling back to Demo Mode."

	// Screen timing
	SplashDelay         = 1200 * time.Millisecond
	FallbackDelay       = 1500 * time.Millisecond
	LoadingMessageTick  = 1200 * time.Millisecond
	LoadingInsightTick  = 3500 * time.Millisecond
	LoadingProgressTick = 300 * time.Millisecond
	NoticeTTL           = 6 * time.Second

	// Sessions
	SessionTTL       = 7 * 24 * time.Hour
	SettingJWTSecret = "auth_jwt_secret"

	// Avatars
	AvatarSize     = 128
	MaxAvatarBytes = 5 << 20

	// Backups
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "genie-"
	BackupFileSuffix = ".db"

	DateFormat = "2006-01-02"
)

// DefaultRole is assigned to founders who have not picked a role yet.
const DefaultRole = "Aspiring Entrepreneur"

// Roles lists the selectable founder roles. Free text is also accepted.
var Roles = []string{
	DefaultRole,
	"Student",
	"Serial Founder",
	"Industry Expert",
	"Researcher",
	"Side-Hustler",
}
