package echolocation

// OverflowPolicy decides what Trigger does when the next slot still belongs to an unfinished wave.
type OverflowPolicy int

const (
	// OverflowReject refuses the trigger with ErrPoolExhausted. The allocator does not advance.
	OverflowReject OverflowPolicy = iota

	// OverflowForceComplete blocks on the oldest waves, reaping them in order, until the slot is free.
	OverflowForceComplete

	// OverflowPanic panics. Meant for debug builds where overlapping waves are a bug.
	OverflowPanic
)

func (p OverflowPolicy) String() string {
	switch p {
	case OverflowReject:
		return "reject"
	case OverflowForceComplete:
		return "force"
	case OverflowPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ParseOverflowPolicy maps "reject", "force" and "panic" to their policy.
//
// Parameters:
//   - s: the policy name
//
// Returns:
//   - OverflowPolicy: the policy
//   - bool: false when s names no policy
func ParseOverflowPolicy(s string) (OverflowPolicy, bool) {
	for _, p := range []OverflowPolicy{OverflowReject, OverflowForceComplete, OverflowPanic} {
		if p.String() == s {
			return p, true
		}
	}
	return OverflowReject, false
}
