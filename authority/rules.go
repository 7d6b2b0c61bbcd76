package authority

// Rule is one allow or deny assertion contributed by a RuleEnhancer.
// Rules with Fields restrict field visibility only; they never decide
// instance-level Can/Cannot checks.
type Rule struct {
	Inverted   bool
	Action     Action
	Table      string
	Conditions Conditions
	Fields     []string
}

func (r Rule) matches(action Action, subject Subject) bool {
	if r.Table != subject.Table {
		return false
	}
	if !r.Action.covers(action) {
		return false
	}
	return r.matchesConditions(subject)
}

func (r Rule) matchesConditions(subject Subject) bool {
	if len(r.Conditions) == 0 {
		return true
	}
	// conditional rules require instance data
	if subject.Fields == nil {
		return false
	}
	for field, want := range r.Conditions {
		if subject.Fields[field] != want {
			return false
		}
	}
	return true
}

// RuleBuilder collects rules in contribution order. Later rules win over
// earlier ones, so enhancers assert broad rules first and narrow afterwards.
type RuleBuilder struct {
	rules []Rule
}

// Can allows action on every instance of table.
func (b *RuleBuilder) Can(action Action, table string) {
	b.rules = append(b.rules, Rule{Action: action, Table: table})
}

// CanWhen allows action on instances of table matching cond.
func (b *RuleBuilder) CanWhen(action Action, table string, cond Conditions) {
	b.rules = append(b.rules, Rule{Action: action, Table: table, Conditions: cond})
}

// Cannot denies action on every instance of table.
func (b *RuleBuilder) Cannot(action Action, table string) {
	b.rules = append(b.rules, Rule{Inverted: true, Action: action, Table: table})
}

// Build seals the collected rules into an Ability.
func (b *RuleBuilder) Build() *Ability {
	return NewAbility(b.rules)
}

// CannotFields denies reading or writing the named fields of table. The
// denial constrains the censor; it does not flip instance-level checks.
func (b *RuleBuilder) CannotFields(action Action, table string, fields ...string) {
	b.rules = append(b.rules, Rule{Inverted: true, Action: action, Table: table, Fields: fields})
}
