// Package referral is the ledger's application service: click tracking,
// activations, stats and the activation feed.
package referral

import (
	"context"
	"time"

	"github.com/cryptogift/ledger/internal/application/referral/dto"
	"github.com/cryptogift/ledger/internal/application/referral/usecases"
	"github.com/cryptogift/ledger/internal/domain/referral"
	vo "github.com/cryptogift/ledger/internal/domain/referral/valueobjects"
	"github.com/cryptogift/ledger/internal/shared/biztime"
	"github.com/cryptogift/ledger/internal/shared/id"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

// Options tunes the service. Zero values fall back to defaults.
type Options struct {
	Network             vo.Network
	RecentActivationTTL time.Duration
	DefaultFeedLimit    int
	Clock               biztime.Clock
	PaymentDelay        usecases.PaymentDelayFunc
	NewReferralID       usecases.IDGenerator
	NewGiftID           usecases.IDGenerator
}

func (o Options) withDefaults() Options {
	if !o.Network.IsValid() {
		o.Network = vo.NetworkTestnet
	}
	if o.Clock == nil {
		o.Clock = biztime.NowUTC
	}
	if o.PaymentDelay == nil {
		o.PaymentDelay = usecases.RandomPaymentDelay
	}
	if o.NewReferralID == nil {
		o.NewReferralID = id.NewReferralID
	}
	if o.NewGiftID == nil {
		o.NewGiftID = id.NewGiftID
	}
	return o
}

type ServiceDDD struct {
	logger logger.Interface

	trackClick        *usecases.TrackClickUseCase
	activate          *usecases.ActivateReferralUseCase
	recomputeStats    *usecases.RecomputeStatsUseCase
	getStats          *usecases.GetStatsUseCase
	earnings          *usecases.GetEarningsUseCase
	recentActivations *usecases.RecentActivationsUseCase
	listReferrals     *usecases.ListReferralsUseCase
	recordSession     *usecases.RecordSessionUseCase
}

func NewServiceDDD(
	referrals referral.Repository,
	profiles referral.ProfileRepository,
	feed referral.ActivationFeed,
	opts Options,
	logger logger.Interface,
) *ServiceDDD {
	opts = opts.withDefaults()
	recompute := usecases.NewRecomputeStatsUseCase(referrals, profiles, opts.Clock, logger)

	return &ServiceDDD{
		logger: logger,

		trackClick:        usecases.NewTrackClickUseCase(referrals, profiles, opts.NewReferralID, opts.Clock, logger),
		activate:          usecases.NewActivateReferralUseCase(referrals, feed, recompute, opts.Network, opts.PaymentDelay, opts.NewGiftID, opts.Clock, logger),
		recomputeStats:    recompute,
		getStats:          usecases.NewGetStatsUseCase(profiles, recompute, logger),
		earnings:          usecases.NewGetEarningsUseCase(referrals, opts.Clock, logger),
		recentActivations: usecases.NewRecentActivationsUseCase(feed, opts.RecentActivationTTL, opts.DefaultFeedLimit, opts.Clock, logger),
		listReferrals:     usecases.NewListReferralsUseCase(referrals, logger),
		recordSession:     usecases.NewRecordSessionUseCase(profiles, opts.Clock, logger),
	}
}

func (s *ServiceDDD) TrackClick(ctx context.Context, cmd usecases.TrackClickCommand) (*dto.TrackClickResponse, error) {
	return s.trackClick.Execute(ctx, cmd)
}

func (s *ServiceDDD) TrackClickLegacy(ctx context.Context, referrerAddress, referredIdentifier, source string) (*dto.TrackClickResponse, error) {
	return s.trackClick.ExecuteLegacy(ctx, referrerAddress, referredIdentifier, source)
}

func (s *ServiceDDD) ActivateReferral(ctx context.Context, cmd usecases.ActivateReferralCommand) (*dto.ActivationResult, error) {
	return s.activate.Execute(ctx, cmd)
}

// RecomputeStats bypasses the cache and refreshes it.
func (s *ServiceDDD) RecomputeStats(ctx context.Context, referrerAddress string) (*dto.ReferralStatsDTO, error) {
	return s.getStats.Execute(ctx, referrerAddress, true)
}

func (s *ServiceDDD) GetStats(ctx context.Context, referrerAddress string, refresh bool) (*dto.ReferralStatsDTO, error) {
	return s.getStats.Execute(ctx, referrerAddress, refresh)
}

func (s *ServiceDDD) GetEarningsHistory(ctx context.Context, referrerAddress string) ([]dto.EarningsEntryDTO, error) {
	return s.earnings.History(ctx, referrerAddress)
}

func (s *ServiceDDD) GetPendingRewards(ctx context.Context, referrerAddress string) (*dto.PendingRewardsDTO, error) {
	return s.earnings.Pending(ctx, referrerAddress)
}

func (s *ServiceDDD) GetRecentActivations(ctx context.Context, limit int) ([]dto.ActivationEventDTO, error) {
	return s.recentActivations.List(ctx, limit)
}

func (s *ServiceDDD) CleanupRecentActivations(ctx context.Context) (*dto.CleanupResult, error) {
	return s.recentActivations.Cleanup(ctx)
}

func (s *ServiceDDD) ListReferrals(ctx context.Context, referrerAddress string) ([]*dto.ReferralDTO, error) {
	return s.listReferrals.List(ctx, referrerAddress)
}

func (s *ServiceDDD) GetReferral(ctx context.Context, referralID string) (*dto.ReferralDTO, error) {
	return s.listReferrals.Get(ctx, referralID)
}

func (s *ServiceDDD) RecordSession(ctx context.Context, cmd usecases.RecordSessionCommand) (*dto.SessionSummaryDTO, error) {
	return s.recordSession.Execute(ctx, cmd)
}

// RefreshAllStats recomputes the cached stats of every given referrer and
// returns how many succeeded. Used by the reindex command.
func (s *ServiceDDD) RefreshAllStats(ctx context.Context, referrers []string) (int, error) {
	refreshed := 0
	for _, referrer := range referrers {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		if _, err := s.recomputeStats.Execute(ctx, referrer); err != nil {
			s.logger.Warnw("failed to refresh stats", "referrer", referrer, "error", err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}
