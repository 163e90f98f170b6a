package usecases

import (
	"context"
	"errors"

	"github.com/cryptogift/ledger/internal/application/referral/dto"
	"github.com/cryptogift/ledger/internal/domain/referral"
	"github.com/cryptogift/ledger/internal/shared/biztime"
	apperrors "github.com/cryptogift/ledger/internal/shared/errors"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

type TrackClickCommand struct {
	ReferrerAddress string
	Signals         referral.VisitorSignals
	Source          string
}

// TrackClickUseCase resolves the visitor to an existing record of the same
// referrer or creates a new one. Missing signals never fail the click.
type TrackClickUseCase struct {
	referrals referral.Repository
	profiles  referral.ProfileRepository
	newID     IDGenerator
	clock     biztime.Clock
	logger    logger.Interface
}

func NewTrackClickUseCase(
	referrals referral.Repository,
	profiles referral.ProfileRepository,
	newID IDGenerator,
	clock biztime.Clock,
	logger logger.Interface,
) *TrackClickUseCase {
	return &TrackClickUseCase{
		referrals: referrals,
		profiles:  profiles,
		newID:     newID,
		clock:     clock,
		logger:    logger,
	}
}

func (uc *TrackClickUseCase) Execute(ctx context.Context, cmd TrackClickCommand) (*dto.TrackClickResponse, error) {
	referrer := referral.NormalizeAddress(cmd.ReferrerAddress)
	if !referral.IsWalletAddress(referrer) {
		return nil, apperrors.NewValidationError("referrer address must be a wallet address")
	}
	signals := cmd.Signals.Normalize()
	now := uc.clock()

	existingID, err := uc.findExisting(ctx, signals)
	if err != nil {
		uc.logger.Errorw("failed to look up referral indexes", "referrer", referrer, "error", err)
		return nil, toAppError(err, "failed to track click")
	}

	if existingID != "" {
		resp, err := uc.touchExisting(ctx, existingID, referrer, signals)
		if err != nil {
			return nil, err
		}
		if resp != nil {
			uc.ensureProfile(ctx, referrer)
			return resp, nil
		}
	}

	recordID, err := uc.newID()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to generate referral id").WithCause(err)
	}
	record, err := referral.NewReferralRecord(recordID, referrer, signals, cmd.Source, now)
	if err != nil {
		return nil, toAppError(err, "failed to create referral")
	}
	if err := uc.referrals.Create(ctx, record); err != nil {
		return nil, toAppError(err, "failed to create referral")
	}

	uc.ensureProfile(ctx, referrer)

	uc.logger.Infow("referral created",
		"id", record.ID(),
		"referrer", referrer,
		"display", record.ReferredUserDisplay(),
		"ip_based", record.IsIPBased(),
	)
	return &dto.TrackClickResponse{ReferralID: record.ID(), Created: true}, nil
}

// ExecuteLegacy accepts the single opaque identifier used by older callers.
// Only a wallet address or an IP can be recognised in it.
func (uc *TrackClickUseCase) ExecuteLegacy(ctx context.Context, referrerAddress, referredIdentifier, source string) (*dto.TrackClickResponse, error) {
	return uc.Execute(ctx, TrackClickCommand{
		ReferrerAddress: referrerAddress,
		Signals:         referral.SignalsFromLegacyIdentifier(referredIdentifier),
		Source:          source,
	})
}

// findExisting consults the wallet index first and the IP index second.
func (uc *TrackClickUseCase) findExisting(ctx context.Context, signals referral.VisitorSignals) (string, error) {
	if signals.HasWallet() {
		id, err := uc.referrals.FindIDByWallet(ctx, signals.Wallet)
		if err != nil || id != "" {
			return id, err
		}
	}
	if signals.HasIP() {
		return uc.referrals.FindIDByIP(ctx, signals.IP)
	}
	return "", nil
}

// touchExisting updates the matched record when it belongs to referrer. A nil
// response means the match cannot be reused and a new record is needed.
func (uc *TrackClickUseCase) touchExisting(ctx context.Context, id, referrer string, signals referral.VisitorSignals) (*dto.TrackClickResponse, error) {
	existing, err := uc.referrals.GetByID(ctx, id)
	if errors.Is(err, referral.ErrRecordNotFound) {
		uc.logger.Warnw("referral index points at a missing record", "id", id)
		return nil, nil
	}
	if err != nil {
		return nil, toAppError(err, "failed to track click")
	}
	// the referrer of a record never changes, so this check holds for the update below
	if !existing.BelongsTo(referrer) {
		return nil, nil
	}

	var upgraded bool
	_, err = uc.referrals.Update(ctx, id, func(r *referral.ReferralRecord) error {
		now := uc.clock()
		r.Touch(now)
		upgraded = false
		if signals.HasWallet() {
			upgraded = r.AttachWallet(signals.Wallet, now)
		}
		if signals.HasEmail() {
			r.AttachEmail(signals.Email, now)
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to update referral on click", "id", id, "error", err)
		return nil, toAppError(err, "failed to track click")
	}

	if upgraded {
		uc.logger.Infow("ip based referral upgraded to wallet", "id", id, "referrer", referrer)
	}
	return &dto.TrackClickResponse{ReferralID: id, Created: false}, nil
}

func (uc *TrackClickUseCase) ensureProfile(ctx context.Context, referrer string) {
	if err := ensureProfile(ctx, uc.profiles, referrer, uc.clock()); err != nil {
		uc.logger.Warnw("failed to ensure referrer profile", "referrer", referrer, "error", err)
	}
}
