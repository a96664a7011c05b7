package controller

import (
	"errors"

	"github.com/julianstephens/genie/internal/auth"
	"github.com/julianstephens/genie/internal/constants"
	"github.com/julianstephens/genie/internal/generator"
)

type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	// NoticeGeneration means the fallback plan is shown in place of a generated one.
	NoticeGeneration
	NoticeInvalidCredentials
	NoticeAccountExists
	// NoticeVerificationPending is informational; sign in is blocked until the email is confirmed.
	NoticeVerificationPending
	// NoticeProfile reports a failed profile fetch or save. The app stays usable.
	NoticeProfile
	NoticeInfo
	NoticeError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeGeneration:
		return "generation"
	case NoticeInvalidCredentials:
		return "invalid-credentials"
	case NoticeAccountExists:
		return "account-exists"
	case NoticeVerificationPending:
		return "verification-pending"
	case NoticeProfile:
		return "profile"
	case NoticeInfo:
		return "info"
	case NoticeError:
		return "error"
	}
	return "none"
}

// Notice is the single user-visible message. Some notices point at the
// screen that resolves them so the UI can offer a one-key switch.
type Notice struct {
	Kind NoticeKind
	Text string

	suggest    constants.View
	hasSuggest bool
}

func (n Notice) Empty() bool { return n.Kind == NoticeNone }

// Suggestion returns the view the notice points at.
func (n Notice) Suggestion() (constants.View, bool) { return n.suggest, n.hasSuggest }

// Classify maps an error from the auth or generator ports onto the notice taxonomy.
func Classify(err error) NoticeKind {
	switch {
	case err == nil:
		return NoticeNone
	case errors.Is(err, auth.ErrInvalidCredentials):
		return NoticeInvalidCredentials
	case errors.Is(err, auth.ErrAccountExists):
		return NoticeAccountExists
	case errors.Is(err, auth.ErrConfirmationPending):
		return NoticeVerificationPending
	case errors.Is(err, generator.ErrGenerationFailed):
		return NoticeGeneration
	}
	return NoticeError
}

func noticeFor(err error) Notice {
	switch kind := Classify(err); kind {
	case NoticeNone:
		return Notice{}
	case NoticeInvalidCredentials:
		return Notice{
			Kind:       kind,
			Text:       "Invalid email or password. New here? Create an account instead.",
			suggest:    constants.ViewRegister,
			hasSuggest: true,
		}
	case NoticeAccountExists:
		return Notice{
			Kind:       kind,
			Text:       "An account with this email already exists. Sign in instead.",
			suggest:    constants.ViewLogin,
			hasSuggest: true,
		}
	case NoticeVerificationPending:
		return Notice{
			Kind: kind,
			Text: "Check your inbox and confirm your email address, then sign in.",
		}
	case NoticeGeneration:
		return Notice{Kind: kind, Text: constants.FallbackNotice}
	default:
		if errors.Is(err, auth.ErrUnsupportedProvider) {
			return Notice{Kind: NoticeError, Text: "That sign-in provider is not configured."}
		}
		return Notice{Kind: kind, Text: err.Error()}
	}
}

func info(text string) Notice { return Notice{Kind: NoticeInfo, Text: text} }
