package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActivationEventModel is the JSON member stored in the recent_activations set.
type ActivationEventModel struct {
	ID                  string          `json:"id"`
	ReferrerAddress     string          `json:"referrerAddress"`
	ReferredUserDisplay string          `json:"referredUserDisplay"`
	TokenID             string          `json:"tokenId"`
	Commission          decimal.Decimal `json:"commission"`
	Amount              decimal.Decimal `json:"amount"`
	Timestamp           time.Time       `json:"timestamp"`
}
