package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/cryptogift/ledger/internal/domain/referral"
	"github.com/cryptogift/ledger/internal/infrastructure/persistence/models"
)

// ActivationEventToJSON encodes a feed entry as stored in recent_activations.
func ActivationEventToJSON(e referral.ActivationEvent) (string, error) {
	raw, err := json.Marshal(models.ActivationEventModel{
		ID:                  e.ID,
		ReferrerAddress:     e.ReferrerAddress,
		ReferredUserDisplay: e.ReferredUserDisplay,
		TokenID:             e.TokenID,
		Commission:          e.Commission,
		Amount:              e.Amount,
		Timestamp:           e.Timestamp.UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode activation event: %w", err)
	}
	return string(raw), nil
}

func ActivationEventFromJSON(raw string) (referral.ActivationEvent, error) {
	var m models.ActivationEventModel
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return referral.ActivationEvent{}, fmt.Errorf("failed to decode activation event: %w", err)
	}
	return referral.ActivationEvent{
		ID:                  m.ID,
		ReferrerAddress:     m.ReferrerAddress,
		ReferredUserDisplay: m.ReferredUserDisplay,
		TokenID:             m.TokenID,
		Commission:          m.Commission,
		Amount:              m.Amount,
		Timestamp:           m.Timestamp,
	}, nil
}
