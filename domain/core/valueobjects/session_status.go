package valueobjects

// SessionStatus is the lifecycle state of a practice session.
// The only transition is InProgress to Completed.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "IN_PROGRESS"
	SessionCompleted  SessionStatus = "COMPLETED"
)

// CanTransitionTo reports whether moving from s to next is allowed
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	return s == SessionInProgress && next == SessionCompleted
}

// IsTerminal reports whether no further changes are accepted
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted
}

// String returns the string representation
func (s SessionStatus) String() string {
	return string(s)
}
