package authority

// Ability is the composed, immutable rule set built once per request.
// Queries scan rules in reverse contribution order so the most recently
// asserted matching rule decides; when nothing matches the default is deny.
type Ability struct {
	rules []Rule
}

func NewAbility(rules []Rule) *Ability {
	owned := make([]Rule, len(rules))
	copy(owned, rules)
	return &Ability{rules: owned}
}

func (a *Ability) Can(action Action, subject Subject) bool {
	for i := len(a.rules) - 1; i >= 0; i-- {
		r := a.rules[i]
		if len(r.Fields) > 0 {
			continue
		}
		if r.matches(action, subject) {
			return !r.Inverted
		}
	}
	return false
}

func (a *Ability) Cannot(action Action, subject Subject) bool {
	return !a.Can(action, subject)
}

// Rules returns a copy of the rule list, mostly useful in tests.
func (a *Ability) Rules() []Rule {
	rules := make([]Rule, len(a.rules))
	copy(rules, a.rules)
	return rules
}
