package episode

import (
	"caster/role"
)

// Episode roles gate the chat around an episode, not the episode record
// itself. Episode attributes are managed through show-level grants.
var (
	PermEpisodeChat = role.Permission{
		Key:         "EPISODE_CHAT",
		Name:        "Chat",
		Description: "send messages to the episode chat",
	}
	PermEpisodeReadChat = role.Permission{
		Key:         "EPISODE_READ_CHAT",
		Name:        "Read chat",
		Description: "follow the episode chat",
	}

	RoleEpisodeReader = role.Role{
		Key:         "EPISODE_READER",
		Name:        "Episode reader",
		Description: "follows the episode chat without posting",
		Permissions: []role.Permission{PermEpisodeReadChat},
	}
	RoleEpisodeGuest = role.Role{
		Key:         "EPISODE_GUEST",
		Name:        "Episode guest",
		Description: "participates in the episode chat",
		Permissions: []role.Permission{PermEpisodeChat, PermEpisodeReadChat},
	}
)

func Permissions() []role.Permission {
	return []role.Permission{PermEpisodeChat, PermEpisodeReadChat}
}

func Roles() []role.Role {
	return []role.Role{RoleEpisodeReader, RoleEpisodeGuest}
}
