package read

// InvariantError signals that an internal consistency check failed —
// always a bug in a transformation step or the scheduler, never a user
// input problem. See spec §7 ("InvariantError").
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "invariant violated: " + e.Msg }
