package referral

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/cryptogift/ledger/internal/domain/referral/valueobjects"
)

// GiftData is the caller-supplied description of a completed gift transaction.
type GiftData struct {
	TokenID    string
	Amount     decimal.Decimal
	Commission decimal.Decimal
	TxHash     string
}

func (d GiftData) Validate() error {
	if strings.TrimSpace(d.TokenID) == "" {
		return errInvalidGift("token id is required")
	}
	if d.Amount.IsNegative() {
		return errInvalidGift("amount cannot be negative")
	}
	if d.Commission.IsNegative() {
		return errInvalidGift("commission cannot be negative")
	}
	return nil
}

// PaymentTerms decide how a new gift's commission is settled.
type PaymentTerms struct {
	Status        vo.PaymentStatus
	EstimatedDate *time.Time
	Reason        string
}

// TermsForNetwork returns immediate payment on mainnet. On testnet the
// commission waits for blockchain confirmation, estimated at now+delay.
func TermsForNetwork(network vo.Network, now time.Time, delay time.Duration) PaymentTerms {
	if !network.IsTestnet() {
		return PaymentTerms{Status: vo.PaymentStatusPaid}
	}
	estimated := now.Add(delay)
	return PaymentTerms{
		Status:        vo.PaymentStatusPendingBlockchain,
		EstimatedDate: &estimated,
		Reason:        vo.PendingReasonBlockchainConfirmation,
	}
}

// GiftRecord is one commission-earning gift attributed to a referral.
// It is immutable once created.
type GiftRecord struct {
	id                   string
	tokenID              string
	amount               decimal.Decimal
	commission           decimal.Decimal
	txHash               string
	date                 time.Time
	status               vo.GiftStatus
	paymentStatus        vo.PaymentStatus
	estimatedPaymentDate *time.Time
	pendingReason        string
}

// NewGiftRecord creates a completed gift from validated data and payment terms.
func NewGiftRecord(giftID string, data GiftData, terms PaymentTerms, now time.Time) (GiftRecord, error) {
	if giftID == "" {
		return GiftRecord{}, errInvalidGift("gift id is required")
	}
	if err := data.Validate(); err != nil {
		return GiftRecord{}, err
	}
	if !terms.Status.IsValid() {
		return GiftRecord{}, errInvalidGift("invalid payment status " + terms.Status.String())
	}

	g := GiftRecord{
		id:            giftID,
		tokenID:       strings.TrimSpace(data.TokenID),
		amount:        data.Amount,
		commission:    data.Commission,
		txHash:        strings.TrimSpace(data.TxHash),
		date:          now,
		status:        vo.GiftStatusCompleted,
		paymentStatus: terms.Status,
	}
	if !terms.Status.IsPaid() {
		g.estimatedPaymentDate = terms.EstimatedDate
		g.pendingReason = terms.Reason
	}
	return g, nil
}

// GiftRecordState carries persisted gift fields for reconstruction.
type GiftRecordState struct {
	ID                   string
	TokenID              string
	Amount               decimal.Decimal
	Commission           decimal.Decimal
	TxHash               string
	Date                 time.Time
	Status               vo.GiftStatus
	PaymentStatus        vo.PaymentStatus
	EstimatedPaymentDate *time.Time
	PendingReason        string
}

// ReconstructGiftRecord rebuilds a gift from storage without re-validating
// business rules that applied at creation time.
func ReconstructGiftRecord(s GiftRecordState) GiftRecord {
	return GiftRecord{
		id:                   s.ID,
		tokenID:              s.TokenID,
		amount:               s.Amount,
		commission:           s.Commission,
		txHash:               s.TxHash,
		date:                 s.Date,
		status:               s.Status,
		paymentStatus:        s.PaymentStatus,
		estimatedPaymentDate: s.EstimatedPaymentDate,
		pendingReason:        s.PendingReason,
	}
}

func (g GiftRecord) ID() string                       { return g.id }
func (g GiftRecord) TokenID() string                  { return g.tokenID }
func (g GiftRecord) Amount() decimal.Decimal          { return g.amount }
func (g GiftRecord) Commission() decimal.Decimal      { return g.commission }
func (g GiftRecord) TxHash() string                   { return g.txHash }
func (g GiftRecord) Date() time.Time                  { return g.date }
func (g GiftRecord) Status() vo.GiftStatus            { return g.status }
func (g GiftRecord) PaymentStatus() vo.PaymentStatus  { return g.paymentStatus }
func (g GiftRecord) EstimatedPaymentDate() *time.Time { return g.estimatedPaymentDate }
func (g GiftRecord) PendingReason() string            { return g.pendingReason }
func (g GiftRecord) IsPendingPayment() bool           { return !g.paymentStatus.IsPaid() }
