// Package guard decides whether a screen may show its live data,
// based only on screen classification and session token presence.
package guard

// ScreenClass says how a screen relates to authentication.
type ScreenClass int

const (
	// Protected screens need a session.
	Protected ScreenClass = iota
	// PublicOnly screens (login, register) are for logged-out users.
	PublicOnly
)

func (c ScreenClass) String() string {
	switch c {
	case Protected:
		return "protected"
	case PublicOnly:
		return "publicOnly"
	default:
		return "unknown"
	}
}

// Access is the outcome of a screen activation check.
type Access int

const (
	Allow Access = iota
	RedirectToLogin
	RedirectToMain
)

func (a Access) String() string {
	switch a {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirectToLogin"
	case RedirectToMain:
		return "redirectToMain"
	default:
		return "unknown"
	}
}

// CheckAccess runs on every screen activation, not just the first one,
// so a session revoked elsewhere is caught the next time the user
// returns. An absent token is a normal state, never an error.
func CheckAccess(class ScreenClass, token string) Access {
	switch {
	case class == Protected && token == "":
		return RedirectToLogin
	case class == PublicOnly && token != "":
		return RedirectToMain
	default:
		return Allow
	}
}
