package usecases

import (
	"context"
	"sort"
	"strings"

	"github.com/cryptogift/ledger/internal/application/referral/dto"
	"github.com/cryptogift/ledger/internal/domain/referral"
	apperrors "github.com/cryptogift/ledger/internal/shared/errors"
	"github.com/cryptogift/ledger/internal/shared/id"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

type ListReferralsUseCase struct {
	referrals referral.Repository
	logger    logger.Interface
}

func NewListReferralsUseCase(referrals referral.Repository, logger logger.Interface) *ListReferralsUseCase {
	return &ListReferralsUseCase{
		referrals: referrals,
		logger:    logger,
	}
}

// List returns a referrer's referrals, most recently active first.
func (uc *ListReferralsUseCase) List(ctx context.Context, referrerAddress string) ([]*dto.ReferralDTO, error) {
	referrer := referral.NormalizeAddress(referrerAddress)
	if !referral.IsWalletAddress(referrer) {
		return nil, apperrors.NewValidationError("address must be a wallet address")
	}

	records, err := uc.referrals.ListByReferrer(ctx, referrer)
	if err != nil {
		uc.logger.Errorw("failed to list referrals", "referrer", referrer, "error", err)
		return nil, toAppError(err, "failed to list referrals")
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastActivity().After(records[j].LastActivity())
	})

	out := make([]*dto.ReferralDTO, 0, len(records))
	for _, r := range records {
		out = append(out, dto.ToReferralDTO(r))
	}
	return out, nil
}

func (uc *ListReferralsUseCase) Get(ctx context.Context, referralID string) (*dto.ReferralDTO, error) {
	referralID = strings.TrimSpace(referralID)
	if err := id.ValidatePrefix(referralID, id.PrefixReferral); err != nil {
		return nil, apperrors.NewValidationError("invalid referral id", err.Error())
	}

	record, err := uc.referrals.GetByID(ctx, referralID)
	if err != nil {
		return nil, toAppError(err, "referral not found")
	}
	return dto.ToReferralDTO(record), nil
}
