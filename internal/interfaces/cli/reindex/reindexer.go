package reindex

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cryptogift/ledger/internal/domain/referral"
	"github.com/cryptogift/ledger/internal/shared/logger"
)

const defaultConcurrency = 8

type statsRefresher interface {
	RefreshAllStats(ctx context.Context, referrers []string) (int, error)
}

// Report summarises one reindex run.
type Report struct {
	Records        int
	Skipped        int
	Referrers      int
	StatsRefreshed int
}

// Reindexer rebuilds the wallet, IP and referrer indexes from the stored
// records and then recomputes every referrer's cached stats.
type Reindexer struct {
	referrals   referral.Repository
	stats       statsRefresher
	concurrency int
	logger      logger.Interface
}

func NewReindexer(referrals referral.Repository, stats statsRefresher, concurrency int, log logger.Interface) *Reindexer {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &Reindexer{
		referrals:   referrals,
		stats:       stats,
		concurrency: concurrency,
		logger:      log,
	}
}

func (r *Reindexer) Run(ctx context.Context) (*Report, error) {
	ids, err := r.referrals.ListAllIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list referral ids: %w", err)
	}

	var (
		mu      sync.Mutex
		report  = &Report{}
		records = make([]*referral.ReferralRecord, 0, len(ids))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, recordID := range ids {
		g.Go(func() error {
			record, err := r.referrals.GetByID(gctx, recordID)
			if errors.Is(err, referral.ErrRecordNotFound) {
				mu.Lock()
				report.Skipped++
				mu.Unlock()
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", recordID, err)
			}
			mu.Lock()
			records = append(records, record)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	// oldest first, so a wallet or IP seen under several records points at
	// the most recently active one
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastActivity().Before(records[j].LastActivity())
	})

	referrers := make(map[string]struct{})
	for _, record := range records {
		if err := r.indexRecord(ctx, record); err != nil {
			return report, err
		}
		report.Records++
		referrers[record.ReferrerAddress()] = struct{}{}
	}

	addresses := make([]string, 0, len(referrers))
	for address := range referrers {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)
	report.Referrers = len(addresses)

	refreshed, err := r.stats.RefreshAllStats(ctx, addresses)
	report.StatsRefreshed = refreshed
	if err != nil {
		return report, fmt.Errorf("failed to refresh stats: %w", err)
	}

	r.logger.Infow("reindex completed",
		"records", report.Records,
		"skipped", report.Skipped,
		"referrers", report.Referrers,
		"stats_refreshed", report.StatsRefreshed,
	)
	return report, nil
}

func (r *Reindexer) indexRecord(ctx context.Context, record *referral.ReferralRecord) error {
	if err := r.referrals.AddToReferrer(ctx, record.ReferrerAddress(), record.ID()); err != nil {
		return fmt.Errorf("failed to index %s under referrer: %w", record.ID(), err)
	}
	if wallet := record.ReferredAddress(); wallet != "" {
		if err := r.referrals.IndexWallet(ctx, wallet, record.ID()); err != nil {
			return fmt.Errorf("failed to index wallet of %s: %w", record.ID(), err)
		}
	}
	if ip := record.ReferredIP(); ip != "" {
		if err := r.referrals.IndexIP(ctx, ip, record.ID()); err != nil {
			return fmt.Errorf("failed to index ip of %s: %w", record.ID(), err)
		}
	}
	return nil
}
