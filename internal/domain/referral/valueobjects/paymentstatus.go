package valueobjects

// PaymentStatus tracks whether a gift commission has been paid out.
// Anything other than paid counts toward pending rewards.
type PaymentStatus string

const (
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusPendingBlockchain PaymentStatus = "pending_blockchain"
	PaymentStatusPendingPayment    PaymentStatus = "pending_payment"
	PaymentStatusPendingReview     PaymentStatus = "pending_review"
)

// PendingReasonBlockchainConfirmation is recorded on gifts waiting for
// testnet confirmation.
const PendingReasonBlockchainConfirmation = "blockchain_confirmation"

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusPendingBlockchain, PaymentStatusPendingPayment, PaymentStatusPendingReview:
		return true
	default:
		return false
	}
}

func (s PaymentStatus) IsPaid() bool {
	return s == PaymentStatusPaid
}

func (s PaymentStatus) IsPending() bool {
	return s.IsValid() && !s.IsPaid()
}

func (s PaymentStatus) String() string {
	return string(s)
}
