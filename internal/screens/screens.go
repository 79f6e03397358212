// Package screens owns the per-screen lifecycle of live queries: a
// screen activation passes the session guard and opens subscriptions, a
// deactivation closes them again.
package screens

import "github.com/bkral/blogsync/internal/guard"

// Screen identifies one view of the app and its access classification.
type Screen struct {
	Name  string
	Class guard.ScreenClass
}

var (
	Login    = Screen{Name: "login", Class: guard.PublicOnly}
	Register = Screen{Name: "register", Class: guard.PublicOnly}

	Home       = Screen{Name: "home", Class: guard.Protected}
	Dashboard  = Screen{Name: "dashboard", Class: guard.Protected}
	Profile    = Screen{Name: "profile", Class: guard.Protected}
	MyComments = Screen{Name: "my-comments", Class: guard.Protected}
	BlogDetail = Screen{Name: "blog", Class: guard.Protected}
	CreateBlog = Screen{Name: "create-blog", Class: guard.Protected}
	UpdateBlog = Screen{Name: "update-blog", Class: guard.Protected}
)
