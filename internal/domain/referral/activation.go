package referral

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActivationEvent is an entry of the short-lived recent activations feed.
type ActivationEvent struct {
	ID                  string
	ReferrerAddress     string
	ReferredUserDisplay string
	TokenID             string
	Commission          decimal.Decimal
	Amount              decimal.Decimal
	Timestamp           time.Time
}

// NewActivationEvent builds the feed entry for a gift just recorded on r.
func NewActivationEvent(r *ReferralRecord, g GiftRecord, now time.Time) ActivationEvent {
	return ActivationEvent{
		ID:                  uuid.NewString(),
		ReferrerAddress:     r.ReferrerAddress(),
		ReferredUserDisplay: r.ReferredUserDisplay(),
		TokenID:             g.TokenID(),
		Commission:          g.Commission(),
		Amount:              g.Amount(),
		Timestamp:           now,
	}
}

// ExpiredAt reports whether the event is older than ttl at now.
func (e ActivationEvent) ExpiredAt(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.Timestamp) > ttl
}

func (e ActivationEvent) String() string {
	return fmt.Sprintf("activation %s referrer=%s token=%s", e.ID, e.ReferrerAddress, e.TokenID)
}
