package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field names of the user_profile:{address} hash.
const (
	ProfileFieldAddress          = "address"
	ProfileFieldRegistrationDate = "registrationDate"
	ProfileFieldLastActivity     = "lastActivity"
	ProfileFieldReferralStats    = "referralStats"
	ProfileFieldSessionHistory   = "sessionHistory"
	ProfileFieldIPHistory        = "ipHistory"
)

type ReferralStatsModel struct {
	TotalReferrals  int             `json:"totalReferrals"`
	ActiveReferrals int             `json:"activeReferrals"`
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
	PendingRewards  decimal.Decimal `json:"pendingRewards"`
	ConversionRate  decimal.Decimal `json:"conversionRate"`
	LastUpdated     time.Time       `json:"lastUpdated"`
}

type SessionEntryModel struct {
	SessionID string    `json:"sessionId"`
	IP        string    `json:"ip,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type IPEntryModel struct {
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
}
