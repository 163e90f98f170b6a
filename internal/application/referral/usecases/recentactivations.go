package usecases

import (
	"context"
	"sort"
	"time"

	"github.com/cryptogift/ledger/internal/application/referral/dto"
	"github.com/cryptogift/ledger/internal/domain/referral"
	"github.com/cryptogift/ledger/internal/shared/biztime"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

const (
	DefaultFeedLimit = 10
	MaxFeedLimit     = 100
	DefaultFeedTTL   = 24 * time.Hour
)

// RecentActivationsUseCase reads and maintains the recent activations feed.
type RecentActivationsUseCase struct {
	feed         referral.ActivationFeed
	ttl          time.Duration
	defaultLimit int
	clock        biztime.Clock
	logger       logger.Interface
}

func NewRecentActivationsUseCase(
	feed referral.ActivationFeed,
	ttl time.Duration,
	defaultLimit int,
	clock biztime.Clock,
	logger logger.Interface,
) *RecentActivationsUseCase {
	if ttl <= 0 {
		ttl = DefaultFeedTTL
	}
	if defaultLimit <= 0 || defaultLimit > MaxFeedLimit {
		defaultLimit = DefaultFeedLimit
	}
	return &RecentActivationsUseCase{
		feed:         feed,
		ttl:          ttl,
		defaultLimit: defaultLimit,
		clock:        clock,
		logger:       logger,
	}
}

// List returns live events newest first. A non-positive limit uses the
// default; larger limits are capped.
func (uc *RecentActivationsUseCase) List(ctx context.Context, limit int) ([]dto.ActivationEventDTO, error) {
	if limit <= 0 {
		limit = uc.defaultLimit
	}
	if limit > MaxFeedLimit {
		limit = MaxFeedLimit
	}

	events, err := uc.feed.List(ctx)
	if err != nil {
		uc.logger.Errorw("failed to read activation feed", "error", err)
		return nil, toAppError(err, "failed to read recent activations")
	}

	now := uc.clock()
	live := events[:0]
	for _, e := range events {
		if !e.ExpiredAt(now, uc.ttl) {
			live = append(live, e)
		}
	}
	sort.SliceStable(live, func(i, j int) bool {
		return live[i].Timestamp.After(live[j].Timestamp)
	})
	if len(live) > limit {
		live = live[:limit]
	}

	out := make([]dto.ActivationEventDTO, 0, len(live))
	for _, e := range live {
		out = append(out, dto.ToActivationEventDTO(e))
	}
	return out, nil
}

// Cleanup purges events older than the feed TTL.
func (uc *RecentActivationsUseCase) Cleanup(ctx context.Context) (*dto.CleanupResult, error) {
	cutoff := uc.clock().Add(-uc.ttl)

	removed, err := uc.feed.Purge(ctx, cutoff)
	if err != nil {
		uc.logger.Errorw("failed to purge activation feed", "error", err)
		return nil, toAppError(err, "failed to clean up recent activations")
	}

	uc.logger.Infow("activation feed cleaned", "removed", removed, "cutoff", cutoff)
	return &dto.CleanupResult{Removed: removed}, nil
}
