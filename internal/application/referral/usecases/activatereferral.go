package usecases

import (
	"context"
	"errors"
	"strings"

	"github.com/cryptogift/ledger/internal/application/referral/dto"
	"github.com/cryptogift/ledger/internal/domain/referral"
	vo "github.com/cryptogift/ledger/internal/domain/referral/valueobjects"
	"github.com/cryptogift/ledger/internal/shared/biztime"
	apperrors "github.com/cryptogift/ledger/internal/shared/errors"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

type ActivateReferralCommand struct {
	ReferrerAddress    string
	ReferredWallet     string
	ReferredEmail      string
	ReferredIdentifier string
	Gift               referral.GiftData
}

// ActivateReferralUseCase records a commission-earning gift on the referral
// created by an earlier click. It never creates a referral.
type ActivateReferralUseCase struct {
	referrals referral.Repository
	feed      referral.ActivationFeed
	stats     StatsRecomputer
	network   vo.Network
	delay     PaymentDelayFunc
	newGiftID IDGenerator
	clock     biztime.Clock
	logger    logger.Interface
}

func NewActivateReferralUseCase(
	referrals referral.Repository,
	feed referral.ActivationFeed,
	stats StatsRecomputer,
	network vo.Network,
	delay PaymentDelayFunc,
	newGiftID IDGenerator,
	clock biztime.Clock,
	logger logger.Interface,
) *ActivateReferralUseCase {
	return &ActivateReferralUseCase{
		referrals: referrals,
		feed:      feed,
		stats:     stats,
		network:   network,
		delay:     delay,
		newGiftID: newGiftID,
		clock:     clock,
		logger:    logger,
	}
}

func (uc *ActivateReferralUseCase) Execute(ctx context.Context, cmd ActivateReferralCommand) (*dto.ActivationResult, error) {
	referrer := referral.NormalizeAddress(cmd.ReferrerAddress)
	if !referral.IsWalletAddress(referrer) {
		return nil, apperrors.NewValidationError("referrer address must be a wallet address")
	}
	if err := cmd.Gift.Validate(); err != nil {
		return nil, toAppError(err, "invalid gift")
	}

	recordID, err := uc.locate(ctx, referrer, cmd)
	if err != nil {
		uc.logger.Errorw("failed to locate referral for activation", "referrer", referrer, "error", err)
		return nil, toAppError(err, "failed to activate referral")
	}
	if recordID == "" {
		uc.logger.Warnw("no referral found for activation",
			"referrer", referrer,
			"token_id", cmd.Gift.TokenID,
		)
		return nil, toAppError(referral.ErrReferralNotFound, "")
	}

	giftID, err := uc.newGiftID()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to generate gift id").WithCause(err)
	}

	now := uc.clock()
	terms := referral.TermsForNetwork(uc.network, now, uc.delay())

	var recorded referral.GiftRecord
	updated, err := uc.referrals.Update(ctx, recordID, func(r *referral.ReferralRecord) error {
		gift, err := referral.NewGiftRecord(giftID, cmd.Gift, terms, now)
		if err != nil {
			return err
		}
		if err := r.RecordGift(gift, now); err != nil {
			return err
		}
		recorded = gift
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to record gift", "id", recordID, "error", err)
		return nil, toAppError(err, "failed to activate referral")
	}

	uc.logger.Infow("referral activated",
		"id", updated.ID(),
		"referrer", referrer,
		"gift_id", recorded.ID(),
		"commission", recorded.Commission().String(),
		"status", updated.Status(),
		"payment_status", recorded.PaymentStatus(),
	)

	result := &dto.ActivationResult{
		ReferralID:           updated.ID(),
		GiftID:               recorded.ID(),
		Status:               updated.Status().String(),
		PaymentStatus:        recorded.PaymentStatus().String(),
		EstimatedPaymentDate: recorded.EstimatedPaymentDate(),
		TotalEarnings:        updated.TotalEarnings(),
		GiftCount:            updated.GiftCount(),
	}

	// the gift is already stored; what follows only produces warnings
	if _, err := uc.stats.Execute(ctx, referrer); err != nil {
		uc.logger.Warnw("gift recorded but stats refresh failed", "referrer", referrer, "error", err)
		result.StatsWarning = "referral stats could not be refreshed: " + err.Error()
	}
	if err := uc.feed.Append(ctx, referral.NewActivationEvent(updated, recorded, now)); err != nil {
		uc.logger.Warnw("gift recorded but activation feed append failed", "referrer", referrer, "error", err)
		result.FeedWarning = "activation feed could not be updated"
	}

	return result, nil
}

// locate finds the referral to credit: by wallet index when the indexed
// record belongs to this referrer, otherwise by scanning the referrer's
// records for an exact display, wallet or email match.
func (uc *ActivateReferralUseCase) locate(ctx context.Context, referrer string, cmd ActivateReferralCommand) (string, error) {
	wallet := referral.NormalizeAddress(cmd.ReferredWallet)
	if referral.IsWalletAddress(wallet) {
		id, err := uc.referrals.FindIDByWallet(ctx, wallet)
		if err != nil {
			return "", err
		}
		if id != "" {
			record, err := uc.referrals.GetByID(ctx, id)
			switch {
			case errors.Is(err, referral.ErrRecordNotFound):
			case err != nil:
				return "", err
			case record.BelongsTo(referrer):
				return id, nil
			}
		}
	}

	email := strings.ToLower(strings.TrimSpace(cmd.ReferredEmail))
	identifier := strings.TrimSpace(cmd.ReferredIdentifier)
	if identifier == "" {
		identifier = strings.TrimSpace(cmd.ReferredWallet)
	}
	if identifier == "" && email == "" {
		return "", nil
	}

	records, err := uc.referrals.ListByReferrer(ctx, referrer)
	if err != nil {
		return "", err
	}
	for _, r := range records {
		if r.MatchesIdentifier(identifier) || (email != "" && r.ReferredEmail() == email) {
			return r.ID(), nil
		}
	}
	return "", nil
}
