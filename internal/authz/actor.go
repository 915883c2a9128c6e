package authz

import "strings"

// Actor is the identity a request acts as. The zero value is an anonymous
// actor. Roles are the actor's group names, loaded fresh for every request,
// so a role change takes effect on the next decision and never retroactively.
type Actor struct {
	ID            string
	Authenticated bool
	Superuser     bool
	Roles         []string
}

// Anonymous is the actor used for requests without credentials.
var Anonymous = Actor{}

const (
	RoleAdmin     = "admin"
	RoleOrganizer = "organizer"
)

// HasRole matches group names case-insensitively.
func (a Actor) HasRole(name string) bool {
	for _, r := range a.Roles {
		if strings.EqualFold(r, name) {
			return true
		}
	}
	return false
}

func (a Actor) IsSuper() bool {
	return a.Authenticated && a.Superuser
}

func (a Actor) IsAdmin() bool {
	return a.Authenticated && a.HasRole(RoleAdmin)
}

func (a Actor) IsOrganizer() bool {
	return a.Authenticated && a.HasRole(RoleOrganizer)
}

// IsStaff reports whether the actor holds any elevated role.
func (a Actor) IsStaff() bool {
	return a.IsSuper() || a.IsAdmin() || a.IsOrganizer()
}
