package usecases

import (
	"context"
	"time"

	"github.com/cryptogift/ledger/internal/domain/referral"
)

// ensureProfile creates the referrer's profile on first sight and leaves an
// existing one untouched.
func ensureProfile(ctx context.Context, profiles referral.ProfileRepository, address string, now time.Time) error {
	_, err := profiles.Upsert(ctx, address, func(p *referral.UserProfile) (*referral.UserProfile, error) {
		if p != nil {
			return nil, nil
		}
		return referral.NewUserProfile(address, now)
	})
	return err
}
