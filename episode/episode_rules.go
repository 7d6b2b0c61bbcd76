package episode

import (
	"caster/authority"
	"caster/role"
)

// EpisodeRules translates episode grants into chat message rules. A chat
// grant lets the holder manage only messages it sends itself, a read grant
// opens the whole channel of the episode.
type EpisodeRules struct{}

func (EpisodeRules) ContributeRules(actor *authority.Actor, b *authority.RuleBuilder) error {
	b.Can(authority.ActionRead, "Episode")
	if actor == nil || !actor.HasProfile() {
		return nil
	}

	permissions, err := role.PermissionsForTableFunc(actor.ProfileID, "Episode")
	if err != nil {
		return err
	}
	for _, episodeId := range role.SortedSubjectIds(permissions) {
		for _, p := range permissions[episodeId] {
			switch p.Key {
			case PermEpisodeChat.Key:
				b.CanWhen(authority.ActionManage, "Message", authority.Conditions{
					"episodeId": episodeId.String(),
					"profileId": actor.ProfileID.String(),
				})
			case PermEpisodeReadChat.Key:
				b.CanWhen(authority.ActionRead, "Message", authority.Conditions{
					"episodeId": episodeId.String(),
				})
			}
		}
	}
	return nil
}
