package referral

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/cryptogift/ledger/internal/domain/referral/valueobjects"
)

// ReferralRecord is the relationship between one referrer and one referred
// identity. Gifts are append-only and totalEarnings always equals the sum of
// their commissions.
type ReferralRecord struct {
	id                  string
	referrerAddress     string
	referredAddress     string
	referredEmail       string
	referredIP          string
	referredUserDisplay string
	userAgent           string
	source              string
	status              vo.ReferralStatus
	gifts               []GiftRecord
	totalEarnings       decimal.Decimal
	isIPBased           bool
	upgradedFromIP      bool
	registrationDate    time.Time
	lastActivity        time.Time
	version             int
}

// NewReferralRecord creates a record for a first tracked click.
func NewReferralRecord(recordID, referrerAddress string, signals VisitorSignals, source string, now time.Time) (*ReferralRecord, error) {
	if recordID == "" {
		return nil, fmt.Errorf("referral id is required")
	}
	referrer := NormalizeAddress(referrerAddress)
	if referrer == "" {
		return nil, ErrEmptyReferrer
	}

	signals = signals.Normalize()

	return &ReferralRecord{
		id:                  recordID,
		referrerAddress:     referrer,
		referredAddress:     signals.Wallet,
		referredEmail:       signals.Email,
		referredIP:          signals.IP,
		referredUserDisplay: DisplayIdentifier(signals),
		userAgent:           signals.UserAgent,
		source:              strings.TrimSpace(source),
		status:              vo.ReferralStatusRegistered,
		gifts:               []GiftRecord{},
		totalEarnings:       decimal.Zero,
		isIPBased:           signals.IsIPOnly(),
		registrationDate:    now,
		lastActivity:        now,
		version:             1,
	}, nil
}

// ReferralRecordState carries persisted record fields for reconstruction.
type ReferralRecordState struct {
	ID                  string
	ReferrerAddress     string
	ReferredAddress     string
	ReferredEmail       string
	ReferredIP          string
	ReferredUserDisplay string
	UserAgent           string
	Source              string
	Status              vo.ReferralStatus
	Gifts               []GiftRecord
	TotalEarnings       decimal.Decimal
	IsIPBased           bool
	UpgradedFromIP      bool
	RegistrationDate    time.Time
	LastActivity        time.Time
	Version             int
}

// ReconstructReferralRecord rebuilds a record loaded from the store.
func ReconstructReferralRecord(s ReferralRecordState) (*ReferralRecord, error) {
	if s.ID == "" {
		return nil, fmt.Errorf("referral id is required")
	}
	if s.ReferrerAddress == "" {
		return nil, ErrEmptyReferrer
	}
	if !s.Status.IsValid() {
		return nil, fmt.Errorf("invalid referral status %q for %s", s.Status, s.ID)
	}
	gifts := s.Gifts
	if gifts == nil {
		gifts = []GiftRecord{}
	}
	return &ReferralRecord{
		id:                  s.ID,
		referrerAddress:     s.ReferrerAddress,
		referredAddress:     s.ReferredAddress,
		referredEmail:       s.ReferredEmail,
		referredIP:          s.ReferredIP,
		referredUserDisplay: s.ReferredUserDisplay,
		userAgent:           s.UserAgent,
		source:              s.Source,
		status:              s.Status,
		gifts:               gifts,
		totalEarnings:       s.TotalEarnings,
		isIPBased:           s.IsIPBased,
		upgradedFromIP:      s.UpgradedFromIP,
		registrationDate:    s.RegistrationDate,
		lastActivity:        s.LastActivity,
		version:             s.Version,
	}, nil
}

// NormalizeAddress lower-cases and trims a wallet address.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// BelongsTo reports whether the record was created under referrerAddress.
func (r *ReferralRecord) BelongsTo(referrerAddress string) bool {
	return strings.EqualFold(r.referrerAddress, strings.TrimSpace(referrerAddress))
}

// Touch records activity without changing identity or earnings.
func (r *ReferralRecord) Touch(now time.Time) {
	r.lastActivity = now
	r.version++
}

// AttachWallet binds a wallet to a record that has none. An IP-based record
// becomes wallet-based permanently and remembers the upgrade. Returns false
// when the record already has a wallet.
func (r *ReferralRecord) AttachWallet(wallet string, now time.Time) bool {
	wallet = NormalizeAddress(wallet)
	if r.referredAddress != "" || !IsWalletAddress(wallet) {
		return false
	}

	r.referredAddress = wallet
	if r.isIPBased {
		r.upgradedFromIP = true
	}
	r.isIPBased = false
	r.refreshDisplay()
	r.lastActivity = now
	r.version++
	return true
}

// AttachEmail records an email when none is known yet.
func (r *ReferralRecord) AttachEmail(email string, now time.Time) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if r.referredEmail != "" || email == "" {
		return false
	}

	r.referredEmail = email
	r.isIPBased = false
	r.refreshDisplay()
	r.lastActivity = now
	r.version++
	return true
}

// RecordGift appends a gift and credits its commission. The first gift moves
// the record to activated, later ones to active.
func (r *ReferralRecord) RecordGift(gift GiftRecord, now time.Time) error {
	if gift.ID() == "" {
		return errInvalidGift("gift id is required")
	}
	if gift.Commission().IsNegative() {
		return errInvalidGift("commission cannot be negative")
	}

	next := vo.ReferralStatusActivated
	if len(r.gifts) > 0 {
		next = vo.ReferralStatusActive
	}
	if err := r.advanceStatus(next); err != nil {
		return err
	}

	r.gifts = append(r.gifts, gift)
	r.totalEarnings = r.totalEarnings.Add(gift.Commission())
	r.lastActivity = now
	r.version++
	return nil
}

func (r *ReferralRecord) advanceStatus(next vo.ReferralStatus) error {
	// an active record stays active even if asked for activated
	if next == vo.ReferralStatusActivated && r.status == vo.ReferralStatusActive {
		return nil
	}
	if !r.status.CanTransitionTo(next) {
		return ErrInvalidTransition(r.status.String(), next.String())
	}
	r.status = next
	return nil
}

func (r *ReferralRecord) refreshDisplay() {
	r.referredUserDisplay = DisplayIdentifier(VisitorSignals{
		Wallet: r.referredAddress,
		Email:  r.referredEmail,
		IP:     r.referredIP,
	})
}

// MatchesIdentifier implements the legacy lookup: exact display string or
// exact wallet equality, nothing broader.
func (r *ReferralRecord) MatchesIdentifier(identifier string) bool {
	if identifier == "" {
		return false
	}
	if r.referredUserDisplay == identifier {
		return true
	}
	return r.referredAddress != "" && r.referredAddress == NormalizeAddress(identifier)
}

// PendingCommission is the sum of commissions not yet paid out.
func (r *ReferralRecord) PendingCommission() decimal.Decimal {
	total := decimal.Zero
	for _, g := range r.gifts {
		if g.IsPendingPayment() {
			total = total.Add(g.Commission())
		}
	}
	return total
}

// PaidCommission is the sum of commissions already paid out.
func (r *ReferralRecord) PaidCommission() decimal.Decimal {
	total := decimal.Zero
	for _, g := range r.gifts {
		if !g.IsPendingPayment() {
			total = total.Add(g.Commission())
		}
	}
	return total
}

// SumCommissions recomputes earnings from the gift list.
func (r *ReferralRecord) SumCommissions() decimal.Decimal {
	total := decimal.Zero
	for _, g := range r.gifts {
		total = total.Add(g.Commission())
	}
	return total
}

func (r *ReferralRecord) ID() string                     { return r.id }
func (r *ReferralRecord) ReferrerAddress() string        { return r.referrerAddress }
func (r *ReferralRecord) ReferredAddress() string        { return r.referredAddress }
func (r *ReferralRecord) ReferredEmail() string          { return r.referredEmail }
func (r *ReferralRecord) ReferredIP() string             { return r.referredIP }
func (r *ReferralRecord) ReferredUserDisplay() string    { return r.referredUserDisplay }
func (r *ReferralRecord) UserAgent() string              { return r.userAgent }
func (r *ReferralRecord) Source() string                 { return r.source }
func (r *ReferralRecord) Status() vo.ReferralStatus      { return r.status }
func (r *ReferralRecord) TotalEarnings() decimal.Decimal { return r.totalEarnings }
func (r *ReferralRecord) IsIPBased() bool                { return r.isIPBased }
func (r *ReferralRecord) UpgradedFromIP() bool           { return r.upgradedFromIP }
func (r *ReferralRecord) RegistrationDate() time.Time    { return r.registrationDate }
func (r *ReferralRecord) LastActivity() time.Time        { return r.lastActivity }
func (r *ReferralRecord) Version() int                   { return r.version }
func (r *ReferralRecord) GiftCount() int                 { return len(r.gifts) }

// Gifts returns a copy of the gift list in insertion order.
func (r *ReferralRecord) Gifts() []GiftRecord {
	out := make([]GiftRecord, len(r.gifts))
	copy(out, r.gifts)
	return out
}
