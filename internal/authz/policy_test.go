package authz

import (
	"errors"
	"testing"
)

var (
	anon      = Anonymous
	plainUser = Actor{ID: "u-plain", Authenticated: true}
	admin     = Actor{ID: "u-admin", Authenticated: true, Roles: []string{"admin"}}
	organizer = Actor{ID: "u-org", Authenticated: true, Roles: []string{"organizer"}}
	super     = Actor{ID: "u-super", Authenticated: true, Superuser: true}
	adminOrg  = Actor{ID: "u-both", Authenticated: true, Roles: []string{"Admin", "Organizer"}}
)

func TestDecide_PolicyTable(t *testing.T) {
	tests := []struct {
		name   string
		actor  Actor
		action Action
		kind   Kind
		want   error
	}{
		{"anonymous creates user", anon, ActionCreate, KindUser, nil},
		{"anonymous lists users", anon, ActionList, KindUser, ErrUnauthorized},
		{"plain user lists users", plainUser, ActionList, KindUser, ErrForbidden},
		{"admin lists users", admin, ActionList, KindUser, nil},
		{"plain user retrieves user", plainUser, ActionRetrieve, KindUser, nil},
		{"plain user updates user", plainUser, ActionUpdate, KindUser, ErrForbidden},

		{"admin manages groups denied", admin, ActionCreate, KindGroup, ErrForbidden},
		{"super manages groups", super, ActionCreate, KindGroup, nil},
		{"super assigns roles", super, ActionCreate, KindRole, nil},
		{"organizer lists role assignments", organizer, ActionList, KindRole, ErrForbidden},

		{"organizer creates event", organizer, ActionCreate, KindEvent, nil},
		{"plain user creates event", plainUser, ActionCreate, KindEvent, ErrForbidden},
		{"plain user retrieves event", plainUser, ActionRetrieve, KindEvent, nil},
		{"anonymous retrieves event", anon, ActionRetrieve, KindEvent, ErrUnauthorized},
		{"plain user lists events", plainUser, ActionList, KindEvent, ErrForbidden},
		{"organizer lists tickets", organizer, ActionList, KindTicket, nil},

		// registrations: create is exclusive to plain end users
		{"plain user registers", plainUser, ActionCreate, KindRegistration, nil},
		{"admin registers", admin, ActionCreate, KindRegistration, ErrForbidden},
		{"organizer registers", organizer, ActionCreate, KindRegistration, ErrForbidden},
		{"super registers", super, ActionCreate, KindRegistration, ErrForbidden},
		{"anonymous registers", anon, ActionCreate, KindRegistration, ErrUnauthorized},
		{"plain user lists registrations", plainUser, ActionList, KindRegistration, ErrForbidden},
		{"admin lists registrations", admin, ActionList, KindRegistration, nil},

		{"plain user creates payment", plainUser, ActionCreate, KindPayment, nil},
		{"admin creates payment", admin, ActionCreate, KindPayment, ErrForbidden},
		{"admin updates payment", admin, ActionUpdate, KindPayment, nil},

		{"admin lists jobs denied", admin, ActionList, KindJob, ErrForbidden},
		{"super lists jobs", super, ActionList, KindJob, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Decide(tt.actor, tt.action, tt.kind)

			if !errors.Is(err, tt.want) {
				t.Fatalf("Decide(%s, %s, %s) = %v, want %v", tt.actor.ID, tt.action, tt.kind, err, tt.want)
			}
		})
	}
}

func TestDecideObject_OrganizerOwnership(t *testing.T) {
	owned := organizer.ID
	someoneElse := "u-other"

	tests := []struct {
		name      string
		actor     Actor
		action    Action
		organizer string
		want      error
	}{
		{"organizer deletes own event", organizer, ActionDelete, owned, nil},
		{"organizer deletes foreign event", organizer, ActionDelete, someoneElse, ErrForbidden},
		{"organizer updates foreign event", organizer, ActionUpdate, someoneElse, ErrForbidden},
		// admin/super bypass the owner-only object check
		{"admin updates foreign event", admin, ActionUpdate, someoneElse, nil},
		{"super deletes foreign event", super, ActionDelete, someoneElse, nil},
		// an actor who is both organizer and admin keeps the admin bypass
		{"admin who also organizes updates any event", adminOrg, ActionUpdate, someoneElse, nil},
		// ownership never applies to reads
		{"organizer retrieves foreign event", organizer, ActionRetrieve, someoneElse, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DecideObject(tt.actor, tt.action, KindEvent, tt.organizer)

			if !errors.Is(err, tt.want) {
				t.Fatalf("DecideObject = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestHasRole_CaseInsensitive(t *testing.T) {
	a := Actor{Authenticated: true, Roles: []string{"ADMIN"}}

	if !a.IsAdmin() {
		t.Fatalf("expected ADMIN group to satisfy IsAdmin")
	}

	if a.IsOrganizer() {
		t.Fatalf("did not expect organizer role")
	}
}

func TestDecide_UnknownKindDenied(t *testing.T) {
	if err := Decide(super, ActionList, Kind("banana")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unknown kind, got %v", err)
	}
}
