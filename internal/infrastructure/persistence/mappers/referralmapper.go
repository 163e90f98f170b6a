package mappers

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/cryptogift/ledger/internal/domain/referral"
	vo "github.com/cryptogift/ledger/internal/domain/referral/valueobjects"
	"github.com/cryptogift/ledger/internal/infrastructure/persistence/models"
	"github.com/cryptogift/ledger/internal/shared/biztime"
)

// ReferralMapper converts between ReferralRecord and its hash field map.
type ReferralMapper interface {
	ToFields(record *referral.ReferralRecord) (map[string]string, error)
	ToDomain(fields map[string]string) (*referral.ReferralRecord, error)
}

type ReferralMapperImpl struct{}

func NewReferralMapper() ReferralMapper {
	return &ReferralMapperImpl{}
}

func (m *ReferralMapperImpl) ToFields(record *referral.ReferralRecord) (map[string]string, error) {
	gifts := make([]models.GiftModel, 0, record.GiftCount())
	for _, g := range record.Gifts() {
		gifts = append(gifts, giftToModel(g))
	}
	giftsJSON, err := json.Marshal(gifts)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gifts of %s: %w", record.ID(), err)
	}

	return map[string]string{
		models.ReferralFieldID:                  record.ID(),
		models.ReferralFieldReferrerAddress:     record.ReferrerAddress(),
		models.ReferralFieldReferredAddress:     record.ReferredAddress(),
		models.ReferralFieldReferredEmail:       record.ReferredEmail(),
		models.ReferralFieldReferredIP:          record.ReferredIP(),
		models.ReferralFieldReferredUserDisplay: record.ReferredUserDisplay(),
		models.ReferralFieldUserAgent:           record.UserAgent(),
		models.ReferralFieldSource:              record.Source(),
		models.ReferralFieldStatus:              record.Status().String(),
		models.ReferralFieldGifts:               string(giftsJSON),
		models.ReferralFieldTotalEarnings:       record.TotalEarnings().String(),
		models.ReferralFieldIsIPBased:           strconv.FormatBool(record.IsIPBased()),
		models.ReferralFieldUpgradedFromIP:      strconv.FormatBool(record.UpgradedFromIP()),
		models.ReferralFieldRegistrationDate:    biztime.FormatStoreTime(record.RegistrationDate()),
		models.ReferralFieldLastActivity:        biztime.FormatStoreTime(record.LastActivity()),
		models.ReferralFieldVersion:             strconv.Itoa(record.Version()),
	}, nil
}

func (m *ReferralMapperImpl) ToDomain(fields map[string]string) (*referral.ReferralRecord, error) {
	id := fields[models.ReferralFieldID]

	var gifts []models.GiftModel
	if raw := fields[models.ReferralFieldGifts]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &gifts); err != nil {
			return nil, fmt.Errorf("failed to decode gifts of %s: %w", id, err)
		}
	}
	giftRecords := make([]referral.GiftRecord, 0, len(gifts))
	for _, g := range gifts {
		giftRecords = append(giftRecords, giftToDomain(g))
	}

	total, err := parseDecimal(fields[models.ReferralFieldTotalEarnings])
	if err != nil {
		return nil, fmt.Errorf("invalid totalEarnings on %s: %w", id, err)
	}
	registered, err := biztime.ParseStoreTime(fields[models.ReferralFieldRegistrationDate])
	if err != nil {
		return nil, err
	}
	lastActivity, err := biztime.ParseStoreTime(fields[models.ReferralFieldLastActivity])
	if err != nil {
		return nil, err
	}
	version := 0
	if raw := fields[models.ReferralFieldVersion]; raw != "" {
		if version, err = strconv.Atoi(raw); err != nil {
			return nil, fmt.Errorf("invalid version on %s: %w", id, err)
		}
	}

	return referral.ReconstructReferralRecord(referral.ReferralRecordState{
		ID:                  id,
		ReferrerAddress:     fields[models.ReferralFieldReferrerAddress],
		ReferredAddress:     fields[models.ReferralFieldReferredAddress],
		ReferredEmail:       fields[models.ReferralFieldReferredEmail],
		ReferredIP:          fields[models.ReferralFieldReferredIP],
		ReferredUserDisplay: fields[models.ReferralFieldReferredUserDisplay],
		UserAgent:           fields[models.ReferralFieldUserAgent],
		Source:              fields[models.ReferralFieldSource],
		Status:              vo.ReferralStatus(fields[models.ReferralFieldStatus]),
		Gifts:               giftRecords,
		TotalEarnings:       total,
		IsIPBased:           parseBool(fields[models.ReferralFieldIsIPBased]),
		UpgradedFromIP:      parseBool(fields[models.ReferralFieldUpgradedFromIP]),
		RegistrationDate:    registered,
		LastActivity:        lastActivity,
		Version:             version,
	})
}

func giftToModel(g referral.GiftRecord) models.GiftModel {
	return models.GiftModel{
		ID:                   g.ID(),
		TokenID:              g.TokenID(),
		Amount:               g.Amount(),
		Commission:           g.Commission(),
		TxHash:               g.TxHash(),
		Date:                 g.Date(),
		Status:               g.Status().String(),
		PaymentStatus:        g.PaymentStatus().String(),
		EstimatedPaymentDate: g.EstimatedPaymentDate(),
		PendingReason:        g.PendingReason(),
	}
}

func giftToDomain(m models.GiftModel) referral.GiftRecord {
	return referral.ReconstructGiftRecord(referral.GiftRecordState{
		ID:                   m.ID,
		TokenID:              m.TokenID,
		Amount:               m.Amount,
		Commission:           m.Commission,
		TxHash:               m.TxHash,
		Date:                 m.Date,
		Status:               vo.GiftStatus(m.Status),
		PaymentStatus:        vo.PaymentStatus(m.PaymentStatus),
		EstimatedPaymentDate: m.EstimatedPaymentDate,
		PendingReason:        m.PendingReason,
	})
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// parseBool accepts the "true"/"false" strings written by older tooling as
// well as "1"/"0".
func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
