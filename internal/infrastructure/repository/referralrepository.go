package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cryptogift/ledger/internal/domain/referral"
	"github.com/cryptogift/ledger/internal/infrastructure/kvstore"
	"github.com/cryptogift/ledger/internal/infrastructure/persistence/mappers"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

// maxParallelLoads bounds concurrent record reads for one referrer.
const maxParallelLoads = 8

// ReferralRepositoryImpl stores records as hashes and keeps the wallet, IP
// and referrer indexes next to them.
type ReferralRepositoryImpl struct {
	store  kvstore.Store
	mapper mappers.ReferralMapper
	logger logger.Interface
}

func NewReferralRepository(store kvstore.Store, log logger.Interface) referral.Repository {
	return &ReferralRepositoryImpl{
		store:  store,
		mapper: mappers.NewReferralMapper(),
		logger: log,
	}
}

func (r *ReferralRepositoryImpl) Create(ctx context.Context, record *referral.ReferralRecord) error {
	fields, err := r.mapper.ToFields(record)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, referralKey(record.ID()), fields); err != nil {
		r.logger.Errorw("failed to create referral record", "id", record.ID(), "error", err)
		return fmt.Errorf("failed to create referral record: %w", err)
	}
	if err := r.AddToReferrer(ctx, record.ReferrerAddress(), record.ID()); err != nil {
		return err
	}
	return r.index(ctx, record)
}

func (r *ReferralRepositoryImpl) GetByID(ctx context.Context, id string) (*referral.ReferralRecord, error) {
	fields, err := r.store.HGetAll(ctx, referralKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get referral record: %w", err)
	}
	if len(fields) == 0 {
		return nil, referral.ErrRecordNotFound
	}
	return r.mapper.ToDomain(fields)
}

// Update reloads the record inside an optimistic transaction, applies fn
// and re-indexes the result.
func (r *ReferralRepositoryImpl) Update(ctx context.Context, id string, fn referral.RecordMutator) (*referral.ReferralRecord, error) {
	var updated *referral.ReferralRecord

	_, err := r.store.UpdateHash(ctx, referralKey(id), func(current map[string]string) (map[string]string, error) {
		if len(current) == 0 {
			return nil, referral.ErrRecordNotFound
		}
		record, err := r.mapper.ToDomain(current)
		if err != nil {
			return nil, err
		}
		if err := fn(record); err != nil {
			return nil, err
		}
		updated = record
		return r.mapper.ToFields(record)
	})
	if err != nil {
		if !errors.Is(err, referral.ErrRecordNotFound) {
			r.logger.Errorw("failed to update referral record", "id", id, "error", err)
		}
		return nil, fmt.Errorf("failed to update referral record %s: %w", id, err)
	}

	if err := r.index(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ReferralRepositoryImpl) FindIDByWallet(ctx context.Context, wallet string) (string, error) {
	return r.lookup(ctx, walletIndexKey(wallet))
}

func (r *ReferralRepositoryImpl) FindIDByIP(ctx context.Context, ip string) (string, error) {
	return r.lookup(ctx, ipIndexKey(ip))
}

func (r *ReferralRepositoryImpl) lookup(ctx context.Context, key string) (string, error) {
	id, err := r.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read index %s: %w", key, err)
	}
	return id, nil
}

func (r *ReferralRepositoryImpl) IndexWallet(ctx context.Context, wallet, id string) error {
	if err := r.store.Set(ctx, walletIndexKey(wallet), id, 0); err != nil {
		return fmt.Errorf("failed to index wallet: %w", err)
	}
	return nil
}

func (r *ReferralRepositoryImpl) IndexIP(ctx context.Context, ip, id string) error {
	if err := r.store.Set(ctx, ipIndexKey(ip), id, 0); err != nil {
		return fmt.Errorf("failed to index ip: %w", err)
	}
	return nil
}

func (r *ReferralRepositoryImpl) AddToReferrer(ctx context.Context, referrerAddress, id string) error {
	if err := r.store.SAdd(ctx, userReferralsKey(referrerAddress), id); err != nil {
		return fmt.Errorf("failed to add referral to referrer set: %w", err)
	}
	return nil
}

func (r *ReferralRepositoryImpl) index(ctx context.Context, record *referral.ReferralRecord) error {
	if wallet := record.ReferredAddress(); wallet != "" {
		if err := r.IndexWallet(ctx, wallet, record.ID()); err != nil {
			return err
		}
	}
	if ip := record.ReferredIP(); ip != "" {
		if err := r.IndexIP(ctx, ip, record.ID()); err != nil {
			return err
		}
	}
	return nil
}

// ListByReferrer loads every record of a referrer in registration order.
// Ids whose record is gone are skipped.
func (r *ReferralRepositoryImpl) ListByReferrer(ctx context.Context, referrerAddress string) ([]*referral.ReferralRecord, error) {
	ids, err := r.store.SMembers(ctx, userReferralsKey(referrerAddress))
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals of %s: %w", referrerAddress, err)
	}
	if len(ids) == 0 {
		return []*referral.ReferralRecord{}, nil
	}

	// Each goroutine writes its own slot; Wait orders the writes before the read.
	loaded := make([]*referral.ReferralRecord, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, id := range ids {
		g.Go(func() error {
			record, err := r.GetByID(gctx, id)
			if errors.Is(err, referral.ErrRecordNotFound) {
				r.logger.Warnw("referrer set points at a missing record",
					"referrer", referrerAddress,
					"id", id,
				)
				return nil
			}
			if err != nil {
				return err
			}
			loaded[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Errorw("failed to load referral records", "referrer", referrerAddress, "error", err)
		return nil, fmt.Errorf("failed to load referral records: %w", err)
	}

	records := make([]*referral.ReferralRecord, 0, len(loaded))
	for _, record := range loaded {
		if record != nil {
			records = append(records, record)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].RegistrationDate().Equal(records[j].RegistrationDate()) {
			return records[i].ID() < records[j].ID()
		}
		return records[i].RegistrationDate().Before(records[j].RegistrationDate())
	})
	return records, nil
}

func (r *ReferralRepositoryImpl) ListAllIDs(ctx context.Context) ([]string, error) {
	keys, err := r.store.ScanKeys(ctx, referralKeyScanPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to scan referral records: %w", err)
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, referralKeyPrefix))
	}
	sort.Strings(ids)
	return ids, nil
}
