package usecases

import (
	"context"
	"strings"

	"github.com/cryptogift/ledger/internal/application/referral/dto"
	"github.com/cryptogift/ledger/internal/domain/referral"
	"github.com/cryptogift/ledger/internal/shared/biztime"
	apperrors "github.com/cryptogift/ledger/internal/shared/errors"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

type RecordSessionCommand struct {
	Address   string
	SessionID string
	IP        string
}

// RecordSessionUseCase appends to a profile's bounded session and IP logs.
type RecordSessionUseCase struct {
	profiles referral.ProfileRepository
	clock    biztime.Clock
	logger   logger.Interface
}

func NewRecordSessionUseCase(profiles referral.ProfileRepository, clock biztime.Clock, logger logger.Interface) *RecordSessionUseCase {
	return &RecordSessionUseCase{
		profiles: profiles,
		clock:    clock,
		logger:   logger,
	}
}

func (uc *RecordSessionUseCase) Execute(ctx context.Context, cmd RecordSessionCommand) (*dto.SessionSummaryDTO, error) {
	address := referral.NormalizeAddress(cmd.Address)
	if !referral.IsWalletAddress(address) {
		return nil, apperrors.NewValidationError("address must be a wallet address")
	}
	sessionID := strings.TrimSpace(cmd.SessionID)
	if sessionID == "" {
		return nil, apperrors.NewValidationError("session id is required")
	}
	ip := strings.TrimSpace(cmd.IP)
	now := uc.clock()

	profile, err := uc.profiles.Upsert(ctx, address, func(p *referral.UserProfile) (*referral.UserProfile, error) {
		if p == nil {
			created, err := referral.NewUserProfile(address, now)
			if err != nil {
				return nil, err
			}
			p = created
		}
		p.RecordSession(sessionID, ip, now)
		return p, nil
	})
	if err != nil {
		uc.logger.Errorw("failed to record session", "address", address, "error", err)
		return nil, toAppError(err, "failed to record session")
	}

	return &dto.SessionSummaryDTO{
		Address:      profile.Address(),
		SessionCount: len(profile.SessionHistory()),
		KnownIPs:     len(profile.IPHistory()),
		LastActivity: profile.LastActivity(),
	}, nil
}
