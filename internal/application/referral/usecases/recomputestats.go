package usecases

import (
	"context"
	"fmt"

	"github.com/cryptogift/ledger/internal/domain/referral"
	"github.com/cryptogift/ledger/internal/shared/biztime"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

// RecomputeStatsUseCase derives a referrer's stats from their records and
// caches them on the profile.
type RecomputeStatsUseCase struct {
	referrals referral.Repository
	profiles  referral.ProfileRepository
	clock     biztime.Clock
	logger    logger.Interface
}

func NewRecomputeStatsUseCase(
	referrals referral.Repository,
	profiles referral.ProfileRepository,
	clock biztime.Clock,
	logger logger.Interface,
) *RecomputeStatsUseCase {
	return &RecomputeStatsUseCase{
		referrals: referrals,
		profiles:  profiles,
		clock:     clock,
		logger:    logger,
	}
}

func (uc *RecomputeStatsUseCase) Execute(ctx context.Context, referrerAddress string) (referral.ReferralStats, error) {
	referrer := referral.NormalizeAddress(referrerAddress)

	records, err := uc.referrals.ListByReferrer(ctx, referrer)
	if err != nil {
		return referral.ReferralStats{}, fmt.Errorf("failed to load referrals for stats: %w", err)
	}

	now := uc.clock()
	stats := referral.ComputeStats(records, now)

	_, err = uc.profiles.Upsert(ctx, referrer, func(p *referral.UserProfile) (*referral.UserProfile, error) {
		if p == nil {
			created, err := referral.NewUserProfile(referrer, now)
			if err != nil {
				return nil, err
			}
			p = created
		}
		p.CacheStats(stats, now)
		return p, nil
	})
	if err != nil {
		return referral.ReferralStats{}, fmt.Errorf("failed to cache referral stats: %w", err)
	}

	uc.logger.Debugw("referral stats recomputed",
		"referrer", referrer,
		"total_referrals", stats.TotalReferrals,
		"total_earnings", stats.TotalEarnings.String(),
	)
	return stats, nil
}
