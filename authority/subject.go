package authority

// Conditions are shallow field-equality predicates, keyed by field name.
type Conditions map[string]string

// Subject identifies what a can/cannot query is asked about: either a bare
// resource table (no instance data) or a tagged instance with its field values.
type Subject struct {
	Table  string
	Fields Conditions
}

// TableSubject builds a type-level subject. Only unconditional rules apply to it.
func TableSubject(table string) Subject {
	return Subject{Table: table}
}

// InstanceSubject builds a subject carrying the instance fields that
// conditional rules are matched against.
func InstanceSubject(table string, fields Conditions) Subject {
	return Subject{Table: table, Fields: fields}
}
