package usecases

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"github.com/cryptogift/ledger/internal/application/referral/dto"
	"github.com/cryptogift/ledger/internal/domain/referral"
	apperrors "github.com/cryptogift/ledger/internal/shared/errors"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

// GetStatsUseCase serves the cached aggregate and recomputes it on a miss.
// Concurrent misses for one referrer share a single recomputation.
type GetStatsUseCase struct {
	profiles  referral.ProfileRepository
	recompute StatsRecomputer
	group     singleflight.Group
	logger    logger.Interface
}

func NewGetStatsUseCase(profiles referral.ProfileRepository, recompute StatsRecomputer, logger logger.Interface) *GetStatsUseCase {
	return &GetStatsUseCase{
		profiles:  profiles,
		recompute: recompute,
		logger:    logger,
	}
}

func (uc *GetStatsUseCase) Execute(ctx context.Context, referrerAddress string, refresh bool) (*dto.ReferralStatsDTO, error) {
	referrer := referral.NormalizeAddress(referrerAddress)
	if !referral.IsWalletAddress(referrer) {
		return nil, apperrors.NewValidationError("address must be a wallet address")
	}

	if !refresh {
		profile, err := uc.profiles.Get(ctx, referrer)
		switch {
		case err == nil:
			if stats, ok := profile.Stats(); ok {
				return dto.ToReferralStatsDTO(referrer, stats, true), nil
			}
		case errors.Is(err, referral.ErrProfileNotFound):
		default:
			uc.logger.Errorw("failed to read cached stats", "referrer", referrer, "error", err)
			return nil, toAppError(err, "failed to get referral stats")
		}
	}

	v, err, shared := uc.group.Do(referrer, func() (interface{}, error) {
		return uc.recompute.Execute(ctx, referrer)
	})
	if err != nil {
		uc.logger.Errorw("failed to recompute stats", "referrer", referrer, "error", err)
		return nil, toAppError(err, "failed to get referral stats")
	}
	if shared {
		uc.logger.Debugw("stats recomputation shared", "referrer", referrer)
	}

	return dto.ToReferralStatsDTO(referrer, v.(referral.ReferralStats), false), nil
}
