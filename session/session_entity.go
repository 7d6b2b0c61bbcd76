package session

import (
	"context"
	"time"

	"caster/authority"

	"github.com/fundwit/go-commons/types"
)

// Session is the request-scoped security context: the resolved actor (nil
// for anonymous requests) and the Ability composed for it. Sessions are
// built fresh by the authorization guard on every request and never shared.
type Session struct {
	Token    string             `json:"token,omitempty"`
	Identity Identity           `json:"identity"`
	Actor    *authority.Actor   `json:"-"`
	Ability  *authority.Ability `json:"-"`

	SigningTime time.Time `json:"-"`

	Context context.Context `json:"-"`
}

type Identity struct {
	ID   types.ID `json:"id"`
	Name string   `json:"name"`
}

func (s *Session) Anonymous() bool {
	return s.Actor == nil
}

// ProfileID returns the actor's profile id, zero for anonymous actors or
// users without a profile.
func (s *Session) ProfileID() types.ID {
	if s.Actor == nil {
		return 0
	}
	return s.Actor.ProfileID
}

func (s *Session) Clone() Session {
	return Session{
		Token:       s.Token,
		Identity:    s.Identity,
		Actor:       s.Actor,
		Ability:     s.Ability,
		SigningTime: s.SigningTime,
		Context:     s.Context,
	}
}
