package testinfra

import (
	"context"

	"caster/authority"
	"caster/session"

	"github.com/fundwit/go-commons/types"
)

// BuildSession builds a security context with an ability composed from the
// given builder function, bypassing the enhancer pipeline.
func BuildSession(uid types.ID, name string, profileId types.ID, rules func(b *authority.RuleBuilder)) *session.Session {
	builder := &authority.RuleBuilder{}
	if rules != nil {
		rules(builder)
	}

	return &session.Session{
		Identity: session.Identity{ID: uid, Name: name},
		Actor:    &authority.Actor{UserID: uid, Username: name, ProfileID: profileId},
		Ability:  builder.Build(),
		Context:  context.Background(),
	}
}

// BuildAnonymousSession carries an ability but no actor, the state the
// guard produces for allow-anonymous routes.
func BuildAnonymousSession(rules func(b *authority.RuleBuilder)) *session.Session {
	builder := &authority.RuleBuilder{}
	if rules != nil {
		rules(builder)
	}
	return &session.Session{Ability: builder.Build(), Context: context.Background()}
}
