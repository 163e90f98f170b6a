package referral

import (
	"errors"
	"fmt"
)

var (
	ErrReferralNotFound  = errors.New("no referral found for activation")
	ErrRecordNotFound    = errors.New("referral record not found")
	ErrProfileNotFound   = errors.New("user profile not found")
	ErrStatusRegression  = errors.New("referral status cannot move backward")
	ErrInvalidGift       = errors.New("invalid gift data")
	ErrEmptyReferrer     = errors.New("referrer address is required")
	ErrReferrerImmutable = errors.New("referrer address cannot change")
)

func ErrInvalidTransition(from, to string) error {
	return fmt.Errorf("%w: from %s to %s", ErrStatusRegression, from, to)
}

func errInvalidGift(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidGift, reason)
}
