// Package authz implements the permission engine: pure, stateless
// predicates over (actor, action, target), composed into one boolean
// rule per action. No ambient request state is consulted; everything
// the engine needs arrives as explicit arguments.
package authz

import (
	"github.com/electrade/network-api/internal/domain"
)

// Action identifies an operation being authorized.
type Action string

const (
	ActionNetworkCreate       Action = "network:create"
	ActionNetworkList         Action = "network:list"
	ActionNetworkListFiltered Action = "network:list_filtered"
	ActionNetworkRetrieve     Action = "network:retrieve"
	ActionNetworkUpdate       Action = "network:update"
	ActionNetworkDelete       Action = "network:delete"
	ActionNetworkContactCode  Action = "network:contact_code"
	ActionNetworkClearDebt    Action = "network:clear_debt"

	ActionProductCreate   Action = "product:create"
	ActionProductList     Action = "product:list"
	ActionProductRetrieve Action = "product:retrieve"
	ActionProductUpdate   Action = "product:update"
	ActionProductDelete   Action = "product:delete"

	ActionUserCreate   Action = "user:create"
	ActionUserList     Action = "user:list"
	ActionUserRetrieve Action = "user:retrieve"
	ActionUserUpdate   Action = "user:update"
	ActionUserDelete   Action = "user:delete"
)

// Target carries the resolved object a rule may inspect. Network rules
// look at Network (with employees preloaded); user rules look at User.
// A nil field simply makes the object predicates false.
type Target struct {
	Network *domain.Network
	User    *domain.User
}

// Decision is the binary outcome of an authorization check, with a
// human-readable reason when denied.
type Decision struct {
	Allowed bool
	Reason  string
}

// Rule is a node of the boolean expression tree evaluated per action.
type Rule interface {
	// Eval evaluates the rule for the given actor and target.
	Eval(actor *domain.User, target Target) Decision
}

type predicate struct {
	name   string
	reason string
	fn     func(actor *domain.User, target Target) bool
}

func (p predicate) Eval(actor *domain.User, target Target) Decision {
	if actor != nil && p.fn(actor, target) {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, Reason: p.reason}
}

type andRule struct{ rules []Rule }

func (a andRule) Eval(actor *domain.User, target Target) Decision {
	for _, r := range a.rules {
		if d := r.Eval(actor, target); !d.Allowed {
			return d
		}
	}
	return Decision{Allowed: true}
}

type orRule struct{ rules []Rule }

func (o orRule) Eval(actor *domain.User, target Target) Decision {
	var last Decision
	for _, r := range o.rules {
		last = r.Eval(actor, target)
		if last.Allowed {
			return last
		}
	}
	return last
}

type allowAll struct{}

func (allowAll) Eval(*domain.User, Target) Decision { return Decision{Allowed: true} }

// And combines rules so every one must grant access.
func And(rules ...Rule) Rule { return andRule{rules: rules} }

// Or combines rules so any one granting access suffices. The reason of
// the last failing branch is reported on denial.
func Or(rules ...Rule) Rule { return orRule{rules: rules} }

// AllowAny grants access unconditionally (open endpoints such as registration).
func AllowAny() Rule { return allowAll{} }

// Atomic predicates.
var (
	// IsSuperUser grants access to accounts with the superuser flag.
	IsSuperUser Rule = predicate{
		name:   "IsSuperUser",
		reason: "you are not a superuser",
		fn: func(actor *domain.User, _ Target) bool {
			return actor.IsSuperUser
		},
	}

	// IsActiveEmployee grants access to active accounts.
	IsActiveEmployee Rule = predicate{
		name:   "IsActiveEmployee",
		reason: "you are not an active employee",
		fn: func(actor *domain.User, _ Target) bool {
			return actor.IsActive
		},
	}

	// IsCompanyEmployee grants access when the actor is listed among the
	// target network's employees.
	IsCompanyEmployee Rule = predicate{
		name:   "IsCompanyEmployee",
		reason: "you are not an employee of this network",
		fn: func(actor *domain.User, target Target) bool {
			return target.Network != nil && target.Network.HasEmployee(actor.ID)
		},
	}

	// IsOwner grants access when the actor is the target user.
	IsOwner Rule = predicate{
		name:   "IsOwner",
		reason: "this is not your profile",
		fn: func(actor *domain.User, target Target) bool {
			return target.User != nil && target.User.ID == actor.ID
		},
	}
)

// rules is the per-action composition table. Evaluation order does not
// matter (predicates are pure), short-circuiting is just an economy.
var rules = map[Action]Rule{
	ActionNetworkCreate:       IsActiveEmployee,
	ActionNetworkList:         IsSuperUser,
	ActionNetworkListFiltered: IsActiveEmployee,
	ActionNetworkRetrieve:     Or(And(IsActiveEmployee, IsCompanyEmployee), IsSuperUser),
	ActionNetworkUpdate:       Or(And(IsActiveEmployee, IsCompanyEmployee), IsSuperUser),
	ActionNetworkDelete:       Or(And(IsActiveEmployee, IsCompanyEmployee), IsSuperUser),
	ActionNetworkContactCode:  And(IsActiveEmployee, IsCompanyEmployee),
	ActionNetworkClearDebt:    IsSuperUser,

	ActionProductCreate:   IsActiveEmployee,
	ActionProductList:     IsActiveEmployee,
	ActionProductRetrieve: IsActiveEmployee,
	ActionProductUpdate:   IsActiveEmployee,
	ActionProductDelete:   IsSuperUser,

	ActionUserCreate:   AllowAny(),
	ActionUserList:     IsSuperUser,
	ActionUserRetrieve: Or(IsOwner, IsSuperUser),
	ActionUserUpdate:   Or(IsOwner, IsSuperUser),
	ActionUserDelete:   Or(IsOwner, IsSuperUser),
}

// Authorize evaluates the rule registered for the action. Unknown
// actions are denied. A nil actor is denied for everything except
// actions ruled AllowAny.
func Authorize(actor *domain.User, action Action, target Target) Decision {
	rule, ok := rules[action]
	if !ok {
		return Decision{Allowed: false, Reason: "unknown action"}
	}
	return rule.Eval(actor, target)
}
