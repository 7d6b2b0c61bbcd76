package account

import (
	"caster/authority"
)

// ResolveActor maps an authenticated username to the acting principal. The
// actor carries a zero profile id when the user has not created a profile
// yet; such actors are limited to identity-level rules. Disabled accounts
// resolve to nil, which the guard treats as anonymous.
func ResolveActor(username string) (*authority.Actor, error) {
	user, err := UserByUsernameFunc(username)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, nil
	}

	actor := authority.Actor{UserID: user.ID, Username: user.Username}
	profile, err := ProfileByUserIDFunc(user.ID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		actor.ProfileID = profile.ID
	}
	return &actor, nil
}
