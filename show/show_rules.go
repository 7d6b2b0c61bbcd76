package show

import (
	"caster/authority"
	"caster/role"
)

// ShowRules contributes the show policy tiers: shows are world-readable,
// any authenticated user may create one, and everything beyond that comes
// from role grants over individual shows.
type ShowRules struct{}

func (ShowRules) ContributeRules(actor *authority.Actor, b *authority.RuleBuilder) error {
	b.Can(authority.ActionRead, "Show")
	if actor == nil {
		return nil
	}

	b.Can(authority.ActionCreate, "Show")
	if !actor.HasProfile() {
		return nil
	}

	permissions, err := role.PermissionsForTableFunc(actor.ProfileID, "Show")
	if err != nil {
		return err
	}
	for _, showId := range role.SortedSubjectIds(permissions) {
		instance := authority.Conditions{"id": showId.String()}
		for _, p := range permissions[showId] {
			switch p.Key {
			case PermShowUpdate.Key:
				b.CanWhen(authority.ActionUpdate, "Show", instance)
			case PermShowDelete.Key:
				b.CanWhen(authority.ActionDelete, "Show", instance)
			case PermShowManageEpisodes.Key:
				b.CanWhen(authority.ActionManage, "Episode", authority.Conditions{"showId": showId.String()})
			case PermShowManageRoles.Key:
				b.CanWhen(authority.ActionManage, "RoleGrant", authority.Conditions{
					"subjectTable": "Show",
					"subjectId":    showId.String(),
				})
			}
		}
	}
	return nil
}
