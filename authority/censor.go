package authority

// FieldPolicy supplies the full field list of a resource, used when a
// matching rule does not restrict fields itself.
type FieldPolicy struct {
	DefaultFields []string
}

func (p FieldPolicy) fieldsOf(r Rule) []string {
	if len(r.Fields) > 0 {
		return r.Fields
	}
	return p.DefaultFields
}

// PermittedFields computes which fields of subject the ability may access
// for the given action. Allow rules contribute their fields (or the policy
// default), deny rules subtract theirs; rules are applied in contribution
// order so later assertions narrow or widen earlier ones.
func (a *Ability) PermittedFields(action Action, subject Subject, policy FieldPolicy) []string {
	permitted := make(map[string]bool)
	for _, r := range a.rules {
		if !r.matches(action, subject) {
			continue
		}
		for _, field := range policy.fieldsOf(r) {
			permitted[field] = !r.Inverted
		}
	}

	result := make([]string, 0, len(permitted))
	for _, field := range policy.DefaultFields {
		if permitted[field] {
			result = append(result, field)
			delete(permitted, field)
		}
	}
	// fields outside the default list keep rule order stability by a second pass
	for _, r := range a.rules {
		for _, field := range r.Fields {
			if permitted[field] {
				result = append(result, field)
				delete(permitted, field)
			}
		}
	}
	return result
}

// Censor answers the permitted Read fields of subject. Resource packages
// project their models down to this set before returning data.
type CensorFunc func(subject Subject, policy FieldPolicy) []string

func (a *Ability) Censor(subject Subject, policy FieldPolicy) []string {
	return a.PermittedFields(ActionRead, subject, policy)
}

// FieldPermitted is a convenience for single-field projection checks.
func FieldPermitted(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
