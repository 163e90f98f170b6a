package referral

import (
	"context"
	"time"
)

// RecordMutator changes a freshly loaded record. Returning an error aborts
// the write. It may be called more than once when a concurrent write wins.
type RecordMutator func(r *ReferralRecord) error

// ProfileMutator is the UserProfile counterpart of RecordMutator. The
// profile is nil when none is stored yet; the mutator returns the profile to
// persist.
type ProfileMutator func(p *UserProfile) (*UserProfile, error)

// Repository persists referral records and their lookup indexes.
type Repository interface {
	// Create stores a new record and indexes it under its referrer, wallet and IP.
	Create(ctx context.Context, record *ReferralRecord) error
	GetByID(ctx context.Context, id string) (*ReferralRecord, error)
	// Update applies fn to the stored record with optimistic concurrency and
	// returns the persisted result.
	Update(ctx context.Context, id string, fn RecordMutator) (*ReferralRecord, error)
	FindIDByWallet(ctx context.Context, wallet string) (string, error)
	FindIDByIP(ctx context.Context, ip string) (string, error)
	IndexWallet(ctx context.Context, wallet, id string) error
	IndexIP(ctx context.Context, ip, id string) error
	ListByReferrer(ctx context.Context, referrerAddress string) ([]*ReferralRecord, error)
	// ListAllIDs walks every stored record id. Used by maintenance tooling.
	ListAllIDs(ctx context.Context) ([]string, error)
	AddToReferrer(ctx context.Context, referrerAddress, id string) error
}

type ProfileRepository interface {
	Get(ctx context.Context, address string) (*UserProfile, error)
	Upsert(ctx context.Context, address string, fn ProfileMutator) (*UserProfile, error)
}

// ActivationFeed stores the ephemeral recent activations.
type ActivationFeed interface {
	Append(ctx context.Context, event ActivationEvent) error
	List(ctx context.Context) ([]ActivationEvent, error)
	// Purge removes events with a timestamp before cutoff and returns how many were removed.
	Purge(ctx context.Context, cutoff time.Time) (int, error)
}
