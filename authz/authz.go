package authz

import (
	"errors"

	"caster/authn"
	"caster/authority"
	"caster/bizerror"
	"caster/session"

	"github.com/gin-gonic/gin"
)

// ActorResolver maps an authenticated username to the acting principal.
// A nil actor means the account is unknown or disabled.
type ActorResolver func(username string) (*authority.Actor, error)

var (
	abilityFactory *authority.AbilityFactory

	ResolveActorFunc  ActorResolver
	CreateAbilityFunc = CreateAbility
	GuardFunc         = guard
)

// Configure wires the actor resolver and the rule enhancers at bootstrap.
// Enhancer order is part of the security policy: later rules override
// earlier ones when they conflict.
func Configure(resolver ActorResolver, enhancers ...authority.RuleEnhancer) {
	ResolveActorFunc = resolver
	abilityFactory = authority.NewAbilityFactory(enhancers...)
}

func CreateAbility(actor *authority.Actor) (*authority.Ability, error) {
	if abilityFactory == nil {
		return nil, errors.New("authorization is not configured")
	}
	return abilityFactory.CreateForActor(actor)
}

type FilterOption func(*filterOptions)

type filterOptions struct {
	allowAnonymous bool
}

// AllowAnonymous lets a route serve requests without a valid credential.
// Such requests still carry a session with the anonymous ability, so public
// tiers of the rule set stay enforceable downstream.
func AllowAnonymous() FilterOption {
	return func(o *filterOptions) {
		o.allowAnonymous = true
	}
}

// Filter builds the per-route authorization guard. It resolves the request
// credential to an actor, composes a fresh ability and injects the session
// into the gin context. Abilities are never cached across requests, so role
// grants and revocations take effect immediately.
func Filter(opts ...FilterOption) gin.HandlerFunc {
	options := filterOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	return func(c *gin.Context) {
		sec, err := GuardFunc(c, options.allowAnonymous)
		if err != nil {
			panic(err)
		}
		session.InjectSessionIntoGinContext(c, sec)
		c.Next()
	}
}

func guard(c *gin.Context, allowAnonymous bool) (*session.Session, error) {
	token, username := resolveCredential(c)

	var actor *authority.Actor
	if username != "" && ResolveActorFunc != nil {
		resolved, err := ResolveActorFunc(username)
		if err != nil {
			return nil, err
		}
		actor = resolved
	}

	if actor == nil {
		if !allowAnonymous {
			return nil, bizerror.ErrUnauthenticated
		}
		ability, err := CreateAbilityFunc(nil)
		if err != nil {
			return nil, err
		}
		return &session.Session{Ability: ability, Context: c.Request.Context()}, nil
	}

	ability, err := CreateAbilityFunc(actor)
	if err != nil {
		return nil, err
	}
	return &session.Session{
		Token:    token,
		Identity: session.Identity{ID: actor.UserID, Name: actor.Username},
		Actor:    actor,
		Ability:  ability,
		Context:  c.Request.Context(),
	}, nil
}

// resolveCredential checks the bearer header first, then the session cookie.
// An invalid or expired credential is treated the same as none at all.
func resolveCredential(c *gin.Context) (token, username string) {
	if bearer := authn.BearerToken(c); bearer != "" {
		subject, err := authn.ParseSubject(bearer)
		if err != nil {
			return "", ""
		}
		return bearer, subject
	}

	t, err := c.Cookie(session.KeySecToken)
	if err != nil || t == "" {
		return "", ""
	}
	value, found := session.TokenCache.Get(t)
	if !found {
		return "", ""
	}
	name, ok := value.(string)
	if !ok {
		return "", ""
	}
	return t, name
}
