package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/cryptogift/ledger/internal/domain/referral"
	"github.com/cryptogift/ledger/internal/infrastructure/kvstore"
	"github.com/cryptogift/ledger/internal/infrastructure/persistence/mappers"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

// ActivationFeedImpl keeps recent activations as JSON members of one set.
type ActivationFeedImpl struct {
	store  kvstore.Store
	logger logger.Interface
}

func NewActivationFeed(store kvstore.Store, log logger.Interface) referral.ActivationFeed {
	return &ActivationFeedImpl{
		store:  store,
		logger: log,
	}
}

func (f *ActivationFeedImpl) Append(ctx context.Context, event referral.ActivationEvent) error {
	raw, err := mappers.ActivationEventToJSON(event)
	if err != nil {
		return err
	}
	if err := f.store.SAdd(ctx, RecentActivationsKey, raw); err != nil {
		return fmt.Errorf("failed to append activation event: %w", err)
	}
	return nil
}

// List returns every decodable event in no particular order.
func (f *ActivationFeedImpl) List(ctx context.Context) ([]referral.ActivationEvent, error) {
	members, err := f.store.SMembers(ctx, RecentActivationsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read activation feed: %w", err)
	}

	events := make([]referral.ActivationEvent, 0, len(members))
	for _, raw := range members {
		event, err := mappers.ActivationEventFromJSON(raw)
		if err != nil {
			f.logger.Warnw("skipping malformed activation event", "error", err)
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// Purge drops events older than cutoff. Members that cannot be decoded are
// dropped too.
func (f *ActivationFeedImpl) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	members, err := f.store.SMembers(ctx, RecentActivationsKey)
	if err != nil {
		return 0, fmt.Errorf("failed to read activation feed: %w", err)
	}

	var stale []string
	for _, raw := range members {
		event, err := mappers.ActivationEventFromJSON(raw)
		if err != nil || event.Timestamp.Before(cutoff) {
			stale = append(stale, raw)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	removed, err := f.store.SRem(ctx, RecentActivationsKey, stale...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge activation feed: %w", err)
	}
	return int(removed), nil
}
