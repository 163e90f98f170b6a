package valueobjects

// ReferralStatus is the lifecycle state of a referral record. It only moves
// forward: registered -> activated -> active.
type ReferralStatus string

const (
	ReferralStatusRegistered ReferralStatus = "registered"
	ReferralStatusActivated  ReferralStatus = "activated"
	ReferralStatusActive     ReferralStatus = "active"
)

func (s ReferralStatus) IsValid() bool {
	switch s {
	case ReferralStatusRegistered, ReferralStatusActivated, ReferralStatusActive:
		return true
	default:
		return false
	}
}

func (s ReferralStatus) rank() int {
	switch s {
	case ReferralStatusRegistered:
		return 0
	case ReferralStatusActivated:
		return 1
	case ReferralStatusActive:
		return 2
	default:
		return -1
	}
}

// CanTransitionTo reports whether moving to next keeps the status monotonic.
func (s ReferralStatus) CanTransitionTo(next ReferralStatus) bool {
	return next.IsValid() && next.rank() >= s.rank()
}

// IsConverted is true once the referral has produced at least one gift.
func (s ReferralStatus) IsConverted() bool {
	return s == ReferralStatusActivated || s == ReferralStatusActive
}

func (s ReferralStatus) String() string {
	return string(s)
}
