package app

import "time"

// LoginOutcome is the decision of the lockout policy for one login attempt.
type LoginOutcome int

const (
	// OutcomeLocked rejects the attempt without consulting the password.
	OutcomeLocked LoginOutcome = iota
	// OutcomeInvalid is a wrong password (or unknown user upstream).
	OutcomeInvalid
	// OutcomeSuccess clears the lockout state.
	OutcomeSuccess
)

// LockoutPolicy decides lock/unlock transitions from login outcomes.
// Reaching Threshold consecutive failures opens a lock window of
// LockDuration and resets the counter.
type LockoutPolicy struct {
	Threshold    int
	LockDuration time.Duration
}

// LockoutState is the per-user slice of credential state the policy reads
// and rewrites.
type LockoutState struct {
	FailedAttempts int
	LockedUntil    *time.Time
}

// Evaluate applies the policy to one attempt. When the account is locked
// the password match is ignored. The returned state is what the caller
// must persist.
func (p LockoutPolicy) Evaluate(state LockoutState, passwordMatched bool, now time.Time) (LoginOutcome, LockoutState) {
	if state.LockedUntil != nil && state.LockedUntil.After(now) {
		return OutcomeLocked, state
	}

	if !passwordMatched {
		state.FailedAttempts++
		if state.FailedAttempts >= p.Threshold {
			until := now.Add(p.LockDuration)
			state.LockedUntil = &until
			state.FailedAttempts = 0
		}
		return OutcomeInvalid, state
	}

	state.FailedAttempts = 0
	state.LockedUntil = nil
	return OutcomeSuccess, state
}
