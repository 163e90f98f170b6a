package usecases

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cryptogift/ledger/internal/application/referral/dto"
	"github.com/cryptogift/ledger/internal/domain/referral"
	"github.com/cryptogift/ledger/internal/shared/biztime"
	apperrors "github.com/cryptogift/ledger/internal/shared/errors"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

type GetEarningsUseCase struct {
	referrals referral.Repository
	clock     biztime.Clock
	logger    logger.Interface
}

func NewGetEarningsUseCase(referrals referral.Repository, clock biztime.Clock, logger logger.Interface) *GetEarningsUseCase {
	return &GetEarningsUseCase{
		referrals: referrals,
		clock:     clock,
		logger:    logger,
	}
}

// History lists every gift of the referrer, newest first.
func (uc *GetEarningsUseCase) History(ctx context.Context, referrerAddress string) ([]dto.EarningsEntryDTO, error) {
	records, err := uc.load(ctx, referrerAddress)
	if err != nil {
		return nil, err
	}

	entries := referral.EarningsHistory(records)
	out := make([]dto.EarningsEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.ToEarningsEntryDTO(e))
	}
	return out, nil
}

// Pending lists unpaid gifts with their estimated payment date.
func (uc *GetEarningsUseCase) Pending(ctx context.Context, referrerAddress string) (*dto.PendingRewardsDTO, error) {
	records, err := uc.load(ctx, referrerAddress)
	if err != nil {
		return nil, err
	}

	rewards := referral.PendingRewards(records, uc.clock())
	out := &dto.PendingRewardsDTO{
		Rewards: make([]dto.PendingRewardDTO, 0, len(rewards)),
		Total:   decimal.Zero,
	}
	for _, r := range rewards {
		out.Rewards = append(out.Rewards, dto.ToPendingRewardDTO(r))
		out.Total = out.Total.Add(r.Amount)
	}
	return out, nil
}

func (uc *GetEarningsUseCase) load(ctx context.Context, referrerAddress string) ([]*referral.ReferralRecord, error) {
	referrer := referral.NormalizeAddress(referrerAddress)
	if !referral.IsWalletAddress(referrer) {
		return nil, apperrors.NewValidationError("address must be a wallet address")
	}
	records, err := uc.referrals.ListByReferrer(ctx, referrer)
	if err != nil {
		uc.logger.Errorw("failed to load referrals", "referrer", referrer, "error", err)
		return nil, toAppError(err, "failed to load earnings")
	}
	return records, nil
}
