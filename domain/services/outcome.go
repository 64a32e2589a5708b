package services

// Outcome is the result of the role-mutation step of a handler
type Outcome string

const (
	// OutcomeGranted means the role was added
	OutcomeGranted Outcome = "granted"
	// OutcomeRevoked means the role was removed
	OutcomeRevoked Outcome = "revoked"
	// OutcomeNoop means the member was already in the requested state or nothing was bound
	OutcomeNoop Outcome = "noop"
	// OutcomeRejected means the selection limit blocked the grant
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means the platform call failed; the error carries the cause
	OutcomeFailed Outcome = "failed"
)

// Mutated reports whether the outcome changed role state
func (o Outcome) Mutated() bool {
	return o == OutcomeGranted || o == OutcomeRevoked
}
