package repository

import (
	"context"
	"fmt"

	"github.com/cryptogift/ledger/internal/domain/referral"
	"github.com/cryptogift/ledger/internal/infrastructure/kvstore"
	"github.com/cryptogift/ledger/internal/infrastructure/persistence/mappers"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

type UserProfileRepositoryImpl struct {
	store  kvstore.Store
	mapper mappers.UserProfileMapper
	logger logger.Interface
}

func NewUserProfileRepository(store kvstore.Store, log logger.Interface) referral.ProfileRepository {
	return &UserProfileRepositoryImpl{
		store:  store,
		mapper: mappers.NewUserProfileMapper(),
		logger: log,
	}
}

func (r *UserProfileRepositoryImpl) Get(ctx context.Context, address string) (*referral.UserProfile, error) {
	fields, err := r.store.HGetAll(ctx, userProfileKey(address))
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	if len(fields) == 0 {
		return nil, referral.ErrProfileNotFound
	}
	return r.mapper.ToDomain(fields)
}

// Upsert passes the stored profile (nil when absent) to fn and writes back
// what fn returns. A nil result leaves the store untouched.
func (r *UserProfileRepositoryImpl) Upsert(ctx context.Context, address string, fn referral.ProfileMutator) (*referral.UserProfile, error) {
	var result *referral.UserProfile

	_, err := r.store.UpdateHash(ctx, userProfileKey(address), func(current map[string]string) (map[string]string, error) {
		var existing *referral.UserProfile
		if len(current) > 0 {
			p, err := r.mapper.ToDomain(current)
			if err != nil {
				return nil, err
			}
			existing = p
		}

		next, err := fn(existing)
		if err != nil {
			return nil, err
		}
		if next == nil {
			result = nil
			return current, nil
		}
		result = next
		return r.mapper.ToFields(next)
	})
	if err != nil {
		r.logger.Errorw("failed to upsert user profile", "address", address, "error", err)
		return nil, fmt.Errorf("failed to upsert user profile: %w", err)
	}
	return result, nil
}
