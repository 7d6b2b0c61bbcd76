package account

import (
	"caster/authority"
)

// ProfileRules layers the profile policy: everybody may read profiles, but
// contact fields stay hidden unless a later rule re-opens them. The owner
// rule does exactly that, so users see their own email while the public
// projection drops it.
type ProfileRules struct{}

func (ProfileRules) ContributeRules(actor *authority.Actor, b *authority.RuleBuilder) error {
	b.Can(authority.ActionRead, "Profile")
	b.CannotFields(authority.ActionRead, "Profile", "email", "userId")
	if actor == nil {
		return nil
	}

	b.CanWhen(authority.ActionManage, "Profile", authority.Conditions{"userId": actor.UserID.String()})
	b.CannotFields(authority.ActionUpdate, "Profile", "userId")
	return nil
}
