package usecases

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/cryptogift/ledger/internal/domain/referral"
	"github.com/cryptogift/ledger/internal/infrastructure/kvstore"
	apperrors "github.com/cryptogift/ledger/internal/shared/errors"
)

// IDGenerator returns a fresh prefixed identifier.
type IDGenerator func() (string, error)

// PaymentDelayFunc estimates how long a testnet commission waits for
// confirmation.
type PaymentDelayFunc func() time.Duration

const (
	minPaymentDelay = time.Hour
	maxPaymentDelay = 5 * time.Hour
)

// RandomPaymentDelay picks a delay between one and five hours.
func RandomPaymentDelay() time.Duration {
	return minPaymentDelay + rand.N(maxPaymentDelay-minPaymentDelay+1)
}

// StatsRecomputer refreshes a referrer's cached aggregate.
type StatsRecomputer interface {
	Execute(ctx context.Context, referrerAddress string) (referral.ReferralStats, error)
}

// toAppError maps domain and store failures onto application errors while
// keeping the original error reachable through errors.Is.
func toAppError(err error, message string) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	switch {
	case errors.Is(err, referral.ErrReferralNotFound):
		return apperrors.NewNotFoundError(referral.ErrReferralNotFound.Error()).WithCause(err)
	case errors.Is(err, referral.ErrRecordNotFound), errors.Is(err, referral.ErrProfileNotFound):
		return apperrors.NewNotFoundError(message, err.Error()).WithCause(err)
	case errors.Is(err, referral.ErrInvalidGift), errors.Is(err, referral.ErrEmptyReferrer):
		return apperrors.NewValidationError(err.Error()).WithCause(err)
	case errors.Is(err, referral.ErrStatusRegression):
		return apperrors.NewConflictError(err.Error()).WithCause(err)
	case errors.Is(err, kvstore.ErrConflict):
		return apperrors.NewConflictError("record was modified concurrently, please retry").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewUnavailableError("referral store did not respond in time").WithCause(err)
	default:
		return apperrors.NewInternalError(message).WithCause(err)
	}
}
