package referral

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/cryptogift/ledger/internal/domain/referral/valueobjects"
)

// DefaultPendingEstimate is used when a pending gift carries no estimate.
const DefaultPendingEstimate = 24 * time.Hour

type EarningsEntry struct {
	Date         time.Time
	Amount       decimal.Decimal
	ReferredUser string
	GiftAmount   decimal.Decimal
	TokenID      string
	TxHash       string
	Status       vo.PaymentStatus
}

type PendingReward struct {
	EarningsEntry
	EstimatedDate time.Time
	Reason        string
}

// EarningsHistory flattens every gift of the given records, newest first.
func EarningsHistory(records []*ReferralRecord) []EarningsEntry {
	entries := make([]EarningsEntry, 0)
	for _, r := range records {
		if r == nil {
			continue
		}
		for _, g := range r.gifts {
			entries = append(entries, earningsEntry(r, g))
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries
}

// PendingRewards lists unpaid gifts, newest first.
func PendingRewards(records []*ReferralRecord, now time.Time) []PendingReward {
	rewards := make([]PendingReward, 0)
	for _, r := range records {
		if r == nil {
			continue
		}
		for _, g := range r.gifts {
			if !g.IsPendingPayment() {
				continue
			}
			estimated := now.Add(DefaultPendingEstimate)
			if g.EstimatedPaymentDate() != nil {
				estimated = *g.EstimatedPaymentDate()
			}
			reason := g.PendingReason()
			if reason == "" {
				reason = g.PaymentStatus().String()
			}
			rewards = append(rewards, PendingReward{
				EarningsEntry: earningsEntry(r, g),
				EstimatedDate: estimated,
				Reason:        reason,
			})
		}
	}
	sort.SliceStable(rewards, func(i, j int) bool {
		return rewards[i].Date.After(rewards[j].Date)
	})
	return rewards
}

func earningsEntry(r *ReferralRecord, g GiftRecord) EarningsEntry {
	return EarningsEntry{
		Date:         g.Date(),
		Amount:       g.Commission(),
		ReferredUser: r.ReferredUserDisplay(),
		GiftAmount:   g.Amount(),
		TokenID:      g.TokenID(),
		TxHash:       g.TxHash(),
		Status:       g.PaymentStatus(),
	}
}
