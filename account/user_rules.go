package account

import (
	"caster/authority"
)

// UserRules grants every authenticated actor control over its own user
// record, matched by username. Anonymous requests get no user rules at all.
type UserRules struct{}

func (UserRules) ContributeRules(actor *authority.Actor, b *authority.RuleBuilder) error {
	if actor == nil {
		return nil
	}

	self := authority.Conditions{"username": actor.Username}
	b.CanWhen(authority.ActionCreate, "User", self)
	b.CanWhen(authority.ActionRead, "User", self)
	b.CanWhen(authority.ActionUpdate, "User", self)
	return nil
}
