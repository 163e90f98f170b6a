package handlers

import (
	"context"

	"github.com/cryptogift/ledger/internal/application/referral/dto"
	"github.com/cryptogift/ledger/internal/application/referral/usecases"
)

// referralService is the part of the referral application service used by
// ReferralHandler.
type referralService interface {
	TrackClick(ctx context.Context, cmd usecases.TrackClickCommand) (*dto.TrackClickResponse, error)
	TrackClickLegacy(ctx context.Context, referrerAddress, referredIdentifier, source string) (*dto.TrackClickResponse, error)
	ActivateReferral(ctx context.Context, cmd usecases.ActivateReferralCommand) (*dto.ActivationResult, error)
	GetStats(ctx context.Context, referrerAddress string, refresh bool) (*dto.ReferralStatsDTO, error)
	GetEarningsHistory(ctx context.Context, referrerAddress string) ([]dto.EarningsEntryDTO, error)
	GetPendingRewards(ctx context.Context, referrerAddress string) (*dto.PendingRewardsDTO, error)
	GetRecentActivations(ctx context.Context, limit int) ([]dto.ActivationEventDTO, error)
	CleanupRecentActivations(ctx context.Context) (*dto.CleanupResult, error)
	ListReferrals(ctx context.Context, referrerAddress string) ([]*dto.ReferralDTO, error)
	GetReferral(ctx context.Context, referralID string) (*dto.ReferralDTO, error)
	RecordSession(ctx context.Context, cmd usecases.RecordSessionCommand) (*dto.SessionSummaryDTO, error)
}

// storeHealth is what HealthHandler needs from the key-value store.
type storeHealth interface {
	Name() string
	Ping(ctx context.Context) error
}
