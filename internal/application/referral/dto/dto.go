package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptogift/ledger/internal/domain/referral"
)

type TrackClickRequest struct {
	ReferrerAddress string `json:"referrer_address" binding:"required,eth_addr"`
	Wallet          string `json:"wallet"`
	Email           string `json:"email"`
	IP              string `json:"ip"`
	UserAgent       string `json:"user_agent"`
	Source          string `json:"source" binding:"max=100"`
}

type TrackLegacyClickRequest struct {
	ReferrerAddress    string `json:"referrer_address" binding:"required,eth_addr"`
	ReferredIdentifier string `json:"referred_identifier"`
	Source             string `json:"source" binding:"max=100"`
}

type TrackClickResponse struct {
	ReferralID string `json:"referral_id"`
	Created    bool   `json:"created"`
}

type ActivateReferralRequest struct {
	ReferrerAddress    string          `json:"referrer_address" binding:"required,eth_addr"`
	ReferredWallet     string          `json:"referred_wallet"`
	ReferredEmail      string          `json:"referred_email"`
	ReferredIdentifier string          `json:"referred_identifier"`
	TokenID            string          `json:"token_id" binding:"required"`
	Amount             decimal.Decimal `json:"amount"`
	Commission         decimal.Decimal `json:"commission"`
	TxHash             string          `json:"tx_hash"`
}

type ActivationResult struct {
	ReferralID           string          `json:"referral_id"`
	GiftID               string          `json:"gift_id"`
	Status               string          `json:"status"`
	PaymentStatus        string          `json:"payment_status"`
	EstimatedPaymentDate *time.Time      `json:"estimated_payment_date,omitempty"`
	TotalEarnings        decimal.Decimal `json:"total_earnings"`
	GiftCount            int             `json:"gift_count"`
	// StatsWarning is set when the gift was recorded but the referrer's
	// cached stats could not be refreshed.
	StatsWarning string `json:"stats_warning,omitempty"`
	FeedWarning  string `json:"feed_warning,omitempty"`
}

type ReferralStatsDTO struct {
	ReferrerAddress string          `json:"referrer_address"`
	TotalReferrals  int             `json:"total_referrals"`
	ActiveReferrals int             `json:"active_referrals"`
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	PendingRewards  decimal.Decimal `json:"pending_rewards"`
	PaidEarnings    decimal.Decimal `json:"paid_earnings"`
	ConversionRate  decimal.Decimal `json:"conversion_rate"`
	LastUpdated     time.Time       `json:"last_updated"`
	Cached          bool            `json:"cached"`
}

type EarningsEntryDTO struct {
	Date         time.Time       `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	ReferredUser string          `json:"referred_user"`
	GiftAmount   decimal.Decimal `json:"gift_amount"`
	TokenID      string          `json:"token_id"`
	TxHash       string          `json:"tx_hash,omitempty"`
	Status       string          `json:"status"`
}

type PendingRewardDTO struct {
	EarningsEntryDTO
	EstimatedDate time.Time `json:"estimated_date"`
	Reason        string    `json:"reason"`
}

type PendingRewardsDTO struct {
	Rewards []PendingRewardDTO `json:"rewards"`
	Total   decimal.Decimal    `json:"total"`
}

type ActivationEventDTO struct {
	ID                  string          `json:"id"`
	ReferrerAddress     string          `json:"referrer_address"`
	ReferredUserDisplay string          `json:"referred_user_display"`
	TokenID             string          `json:"token_id"`
	Commission          decimal.Decimal `json:"commission"`
	Amount              decimal.Decimal `json:"amount"`
	Timestamp           time.Time       `json:"timestamp"`
}

type CleanupResult struct {
	Removed int `json:"removed"`
}

// ReferralDTO is the display-safe view of a record: raw email and IP are
// never exposed.
type ReferralDTO struct {
	ID                  string          `json:"id"`
	ReferrerAddress     string          `json:"referrer_address"`
	ReferredUserDisplay string          `json:"referred_user_display"`
	Status              string          `json:"status"`
	Source              string          `json:"source,omitempty"`
	GiftCount           int             `json:"gift_count"`
	TotalEarnings       decimal.Decimal `json:"total_earnings"`
	PendingCommission   decimal.Decimal `json:"pending_commission"`
	IsIPBased           bool            `json:"is_ip_based"`
	UpgradedFromIP      bool            `json:"upgraded_from_ip"`
	RegistrationDate    time.Time       `json:"registration_date"`
	LastActivity        time.Time       `json:"last_activity"`
}

type RecordSessionRequest struct {
	Address   string `json:"address" binding:"required,eth_addr"`
	SessionID string `json:"session_id" binding:"required,max=128"`
	IP        string `json:"ip"`
}

type SessionSummaryDTO struct {
	Address      string    `json:"address"`
	SessionCount int       `json:"session_count"`
	KnownIPs     int       `json:"known_ips"`
	LastActivity time.Time `json:"last_activity"`
}

func ToReferralDTO(r *referral.ReferralRecord) *ReferralDTO {
	if r == nil {
		return nil
	}
	return &ReferralDTO{
		ID:                  r.ID(),
		ReferrerAddress:     r.ReferrerAddress(),
		ReferredUserDisplay: r.ReferredUserDisplay(),
		Status:              r.Status().String(),
		Source:              r.Source(),
		GiftCount:           r.GiftCount(),
		TotalEarnings:       r.TotalEarnings(),
		PendingCommission:   r.PendingCommission(),
		IsIPBased:           r.IsIPBased(),
		UpgradedFromIP:      r.UpgradedFromIP(),
		RegistrationDate:    r.RegistrationDate(),
		LastActivity:        r.LastActivity(),
	}
}

func ToReferralStatsDTO(referrer string, s referral.ReferralStats, cached bool) *ReferralStatsDTO {
	return &ReferralStatsDTO{
		ReferrerAddress: referrer,
		TotalReferrals:  s.TotalReferrals,
		ActiveReferrals: s.ActiveReferrals,
		TotalEarnings:   s.TotalEarnings,
		PendingRewards:  s.PendingRewards,
		PaidEarnings:    s.PaidEarnings(),
		ConversionRate:  s.ConversionRate,
		LastUpdated:     s.LastUpdated,
		Cached:          cached,
	}
}

func ToEarningsEntryDTO(e referral.EarningsEntry) EarningsEntryDTO {
	return EarningsEntryDTO{
		Date:         e.Date,
		Amount:       e.Amount,
		ReferredUser: e.ReferredUser,
		GiftAmount:   e.GiftAmount,
		TokenID:      e.TokenID,
		TxHash:       e.TxHash,
		Status:       e.Status.String(),
	}
}

func ToPendingRewardDTO(p referral.PendingReward) PendingRewardDTO {
	return PendingRewardDTO{
		EarningsEntryDTO: ToEarningsEntryDTO(p.EarningsEntry),
		EstimatedDate:    p.EstimatedDate,
		Reason:           p.Reason,
	}
}

func ToActivationEventDTO(e referral.ActivationEvent) ActivationEventDTO {
	return ActivationEventDTO{
		ID:                  e.ID,
		ReferrerAddress:     e.ReferrerAddress,
		ReferredUserDisplay: e.ReferredUserDisplay,
		TokenID:             e.TokenID,
		Commission:          e.Commission,
		Amount:              e.Amount,
		Timestamp:           e.Timestamp,
	}
}
