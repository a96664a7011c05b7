package constants

// View identifies the single active screen of the application.
type View int

const (
	ViewSplash View = iota
	ViewWelcome
	ViewLogin
	ViewRegister
	ViewOnboarding
	ViewDashboard
	ViewCreate
	ViewLoading
	ViewResults
	ViewProfile
)

var viewNames = [...]string{
	ViewSplash:     "splash",
	ViewWelcome:    "welcome",
	ViewLogin:      "login",
	ViewRegister:   "register",
	ViewOnboarding: "onboarding",
	ViewDashboard:  "dashboard",
	ViewCreate:     "create",
	ViewLoading:    "loading",
	ViewResults:    "results",
	ViewProfile:    "profile",
}

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// RequiresSession reports whether the view is only reachable while signed in.
func (v View) RequiresSession() bool {
	switch v {
	case ViewDashboard, ViewCreate, ViewProfile:
		return true
	}
	return false
}

// Navigable reports whether the view can be the target of a direct navigation request.
// Splash is only shown at start and loading only after an idea submission.
func (v View) Navigable() bool {
	return v != ViewLoading && v > ViewSplash && int(v) < len(viewNames)
}
