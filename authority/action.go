package authority

// Action is the verb a rule allows or denies on a subject.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"

	// ActionManage covers every other action.
	ActionManage Action = "manage"
)

// covers reports whether a rule declared with action a applies to the requested action.
func (a Action) covers(requested Action) bool {
	return a == ActionManage || a == requested
}
