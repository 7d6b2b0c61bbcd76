package authority

import (
	"github.com/fundwit/go-commons/types"
)

// Actor is the authenticated principal an ability is built for. ProfileID is
// zero when the user has not created a profile yet, which limits the actor to
// identity-level rules.
type Actor struct {
	UserID    types.ID
	Username  string
	ProfileID types.ID
}

func (a *Actor) HasProfile() bool {
	return a != nil && a.ProfileID != 0
}

// RuleEnhancer contributes the rules of one resource type. A nil actor means
// the request is anonymous; enhancers assert their public tier and return.
type RuleEnhancer interface {
	ContributeRules(actor *Actor, b *RuleBuilder) error
}

// AbilityFactory composes all registered enhancers into one Ability.
// Enhancers run serially in registration order: ordering is a correctness
// requirement because later rules override earlier ones.
type AbilityFactory struct {
	enhancers []RuleEnhancer
}

func NewAbilityFactory(enhancers ...RuleEnhancer) *AbilityFactory {
	return &AbilityFactory{enhancers: enhancers}
}

// CreateForActor builds a fresh Ability for the given actor (nil for
// anonymous). Any enhancer error aborts construction; no partial ability is
// ever returned. Results must not be cached across requests, grants can
// change between them.
func (f *AbilityFactory) CreateForActor(actor *Actor) (*Ability, error) {
	builder := &RuleBuilder{}
	for _, enhancer := range f.enhancers {
		if err := enhancer.ContributeRules(actor, builder); err != nil {
			return nil, err
		}
	}
	return builder.Build(), nil
}
