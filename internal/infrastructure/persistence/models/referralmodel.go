package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field names of the referral:{id} hash. Other tooling reads these keys, so
// they must not change.
const (
	ReferralFieldID                  = "id"
	ReferralFieldReferrerAddress     = "referrerAddress"
	ReferralFieldReferredAddress     = "referredAddress"
	ReferralFieldReferredEmail       = "referredEmail"
	ReferralFieldReferredIP          = "referredIP"
	ReferralFieldReferredUserDisplay = "referredUserDisplay"
	ReferralFieldUserAgent           = "userAgent"
	ReferralFieldSource              = "source"
	ReferralFieldStatus              = "status"
	ReferralFieldGifts               = "gifts"
	ReferralFieldTotalEarnings       = "totalEarnings"
	ReferralFieldIsIPBased           = "isIPBased"
	ReferralFieldUpgradedFromIP      = "upgradedFromIP"
	ReferralFieldRegistrationDate    = "registrationDate"
	ReferralFieldLastActivity        = "lastActivity"
	ReferralFieldVersion             = "version"
)

// GiftModel is one element of the JSON array stored in the gifts field.
type GiftModel struct {
	ID                   string          `json:"id"`
	TokenID              string          `json:"tokenId"`
	Amount               decimal.Decimal `json:"amount"`
	Commission           decimal.Decimal `json:"commission"`
	TxHash               string          `json:"txHash,omitempty"`
	Date                 time.Time       `json:"date"`
	Status               string          `json:"status"`
	PaymentStatus        string          `json:"paymentStatus"`
	EstimatedPaymentDate *time.Time      `json:"estimatedPaymentDate,omitempty"`
	PendingReason        string          `json:"pendingReason,omitempty"`
}
