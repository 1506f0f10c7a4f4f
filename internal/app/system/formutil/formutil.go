// Package formutil provides helpers for re-rendering forms after a failed
// validation pass: the user's entered values are echoed back along with an
// error message and the page chrome fields the layout needs.
//
// Embed Base in a form data struct and call SetBase in the handler:
//
//	type newTeamData struct {
//		formutil.Base
//		Name    string
//		Schools []schoolOption
//	}
//
//	data := newTeamData{Name: name}
//	formutil.SetBase(&data.Base, r, "Add Team", "/teams")
//	data.SetError("Team name is required.")
//	templates.Render(w, r, "team_new", data)
package formutil

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
	"github.com/robacademy/robohub/internal/app/system/authz"
)

// Base contains common fields for form pages.
type Base struct {
	Title       string
	IsLoggedIn  bool
	Role        string
	UserName    string
	BackURL     string
	CurrentPath string
	CSRFToken   string
	Error       template.HTML
}

// SetBase populates the common Base fields from the request context.
// backDefault is used for the back button when the request carries no
// explicit return URL.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	role, uname, _, _ := authz.UserCtx(r)
	b.Title = title
	b.IsLoggedIn = true
	b.Role = role
	b.UserName = uname
	b.BackURL = httpnav.ResolveBackURL(r, backDefault)
	b.CurrentPath = httpnav.CurrentPath(r)
	b.CSRFToken = csrf.Token(r)
}

// SetError sets the error message shown above the form.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(msg)
}
