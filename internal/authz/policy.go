// Package authz decides whether an actor may perform an action on a resource
// kind. All role checks live in one policy table so additions and audits
// touch a single place; handlers never test roles directly.
package authz

import "errors"

type Action string

const (
	ActionList     Action = "list"
	ActionRetrieve Action = "retrieve"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

type Kind string

const (
	KindGroup        Kind = "group"
	KindUser         Kind = "user"
	KindRole         Kind = "role"
	KindEvent        Kind = "event"
	KindTicket       Kind = "ticket"
	KindPoster       Kind = "poster"
	KindRegistration Kind = "registration"
	KindPayment      Kind = "payment"
	KindJob          Kind = "job"
)

var (
	// ErrUnauthorized means the action needs an authenticated actor and the
	// request carried no valid identity.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden means the actor is known but the policy denies the action.
	ErrForbidden = errors.New("forbidden")
)

type rule struct {
	// anonymous actions skip the authentication gate entirely
	anonymous bool
	allow     func(Actor) bool
	// ownerOnly marks actions where an organizer-only actor is further
	// restricted to resources they organize (checked by DecideObject)
	ownerOnly bool
}

func superOnly(a Actor) bool     { return a.IsSuper() }
func superOrAdmin(a Actor) bool  { return a.IsSuper() || a.IsAdmin() }
func staff(a Actor) bool         { return a.IsStaff() }
func authenticated(Actor) bool   { return true }
func plainUserOnly(a Actor) bool { return !a.IsStaff() }

// policy is the per-kind, per-action decision table. Registration and
// Payment create is deliberately inverted: self-registration is an end-user
// flow, so super/admin/organizer actors are excluded to keep administering
// tickets separate from attending events.
var policy = map[Kind]map[Action]rule{
	KindGroup: {
		ActionList:     {allow: superOnly},
		ActionRetrieve: {allow: superOnly},
		ActionCreate:   {allow: superOnly},
		ActionUpdate:   {allow: superOnly},
		ActionDelete:   {allow: superOnly},
	},
	KindRole: {
		ActionList:     {allow: superOnly},
		ActionRetrieve: {allow: superOnly},
		ActionCreate:   {allow: superOnly},
		ActionUpdate:   {allow: superOnly},
		ActionDelete:   {allow: superOnly},
	},
	KindUser: {
		ActionList:     {allow: superOrAdmin},
		ActionRetrieve: {allow: authenticated},
		// self sign-up: open to unauthenticated callers
		ActionCreate: {anonymous: true},
		ActionUpdate: {allow: superOrAdmin},
		ActionDelete: {allow: superOrAdmin},
	},
	KindEvent: {
		ActionList:     {allow: staff},
		ActionRetrieve: {allow: authenticated},
		ActionCreate:   {allow: staff},
		ActionUpdate:   {allow: staff, ownerOnly: true},
		ActionDelete:   {allow: staff, ownerOnly: true},
	},
	KindTicket: {
		ActionList:     {allow: staff},
		ActionRetrieve: {allow: authenticated},
		ActionCreate:   {allow: staff},
		ActionUpdate:   {allow: staff, ownerOnly: true},
		ActionDelete:   {allow: staff, ownerOnly: true},
	},
	KindPoster: {
		ActionList:     {allow: staff},
		ActionRetrieve: {allow: authenticated},
		ActionCreate:   {allow: staff, ownerOnly: true},
		ActionUpdate:   {allow: staff, ownerOnly: true},
		ActionDelete:   {allow: staff, ownerOnly: true},
	},
	KindRegistration: {
		ActionList:     {allow: superOrAdmin},
		ActionRetrieve: {allow: authenticated},
		ActionCreate:   {allow: plainUserOnly},
		ActionUpdate:   {allow: superOrAdmin},
		ActionDelete:   {allow: superOrAdmin},
	},
	KindPayment: {
		ActionList:     {allow: superOrAdmin},
		ActionRetrieve: {allow: authenticated},
		ActionCreate:   {allow: plainUserOnly},
		ActionUpdate:   {allow: superOrAdmin},
		ActionDelete:   {allow: superOrAdmin},
	},
	KindJob: {
		ActionList:     {allow: superOnly},
		ActionRetrieve: {allow: superOnly},
		ActionCreate:   {allow: superOnly},
		ActionUpdate:   {allow: superOnly},
		ActionDelete:   {allow: superOnly},
	},
}

// Decide is the kind-level check: it answers whether the actor may perform
// the action at all. Object-level ownership is layered on by DecideObject.
func Decide(actor Actor, action Action, kind Kind) error {
	r, ok := policy[kind][action]
	if !ok {
		// unknown (kind, action) pairs are denied, never allowed by accident
		return ErrForbidden
	}

	if r.anonymous {
		return nil
	}

	if !actor.Authenticated {
		return ErrUnauthorized
	}

	if !r.allow(actor) {
		return ErrForbidden
	}

	return nil
}

// DecideObject runs Decide and then the object-level ownership rule: an
// actor whose only elevated role is organizer may mutate solely resources
// whose organizer is themselves. Super and admin bypass the restriction.
func DecideObject(actor Actor, action Action, kind Kind, organizerID string) error {
	if err := Decide(actor, action, kind); err != nil {
		return err
	}

	r := policy[kind][action]
	if !r.ownerOnly {
		return nil
	}

	if actor.IsSuper() || actor.IsAdmin() {
		return nil
	}

	if actor.IsOrganizer() && organizerID != actor.ID {
		return ErrForbidden
	}

	return nil
}
