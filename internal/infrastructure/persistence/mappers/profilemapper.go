package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/cryptogift/ledger/internal/domain/referral"
	"github.com/cryptogift/ledger/internal/infrastructure/persistence/models"
	"github.com/cryptogift/ledger/internal/shared/biztime"
)

// UserProfileMapper converts between UserProfile and its hash field map.
type UserProfileMapper interface {
	ToFields(profile *referral.UserProfile) (map[string]string, error)
	ToDomain(fields map[string]string) (*referral.UserProfile, error)
}

type UserProfileMapperImpl struct{}

func NewUserProfileMapper() UserProfileMapper {
	return &UserProfileMapperImpl{}
}

func (m *UserProfileMapperImpl) ToFields(profile *referral.UserProfile) (map[string]string, error) {
	fields := map[string]string{
		models.ProfileFieldAddress:          profile.Address(),
		models.ProfileFieldRegistrationDate: biztime.FormatStoreTime(profile.RegistrationDate()),
		models.ProfileFieldLastActivity:     biztime.FormatStoreTime(profile.LastActivity()),
	}

	if stats, ok := profile.Stats(); ok {
		raw, err := json.Marshal(StatsToModel(stats))
		if err != nil {
			return nil, fmt.Errorf("failed to encode referral stats: %w", err)
		}
		fields[models.ProfileFieldReferralStats] = string(raw)
	}

	sessions := make([]models.SessionEntryModel, 0)
	for _, s := range profile.SessionHistory() {
		sessions = append(sessions, models.SessionEntryModel{SessionID: s.SessionID, IP: s.IP, Timestamp: s.Timestamp})
	}
	ips := make([]models.IPEntryModel, 0)
	for _, e := range profile.IPHistory() {
		ips = append(ips, models.IPEntryModel{IP: e.IP, Timestamp: e.Timestamp})
	}

	rawSessions, err := json.Marshal(sessions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session history: %w", err)
	}
	rawIPs, err := json.Marshal(ips)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ip history: %w", err)
	}
	fields[models.ProfileFieldSessionHistory] = string(rawSessions)
	fields[models.ProfileFieldIPHistory] = string(rawIPs)

	return fields, nil
}

func (m *UserProfileMapperImpl) ToDomain(fields map[string]string) (*referral.UserProfile, error) {
	address := fields[models.ProfileFieldAddress]

	registered, err := biztime.ParseStoreTime(fields[models.ProfileFieldRegistrationDate])
	if err != nil {
		return nil, err
	}
	lastActivity, err := biztime.ParseStoreTime(fields[models.ProfileFieldLastActivity])
	if err != nil {
		return nil, err
	}

	state := referral.UserProfileState{
		Address:          address,
		RegistrationDate: registered,
		LastActivity:     lastActivity,
	}

	if raw := fields[models.ProfileFieldReferralStats]; raw != "" {
		var sm models.ReferralStatsModel
		if err := json.Unmarshal([]byte(raw), &sm); err != nil {
			return nil, fmt.Errorf("failed to decode referral stats of %s: %w", address, err)
		}
		stats := StatsToDomain(sm)
		state.ReferralStats = &stats
	}

	if raw := fields[models.ProfileFieldSessionHistory]; raw != "" {
		var sessions []models.SessionEntryModel
		if err := json.Unmarshal([]byte(raw), &sessions); err != nil {
			return nil, fmt.Errorf("failed to decode session history of %s: %w", address, err)
		}
		for _, s := range sessions {
			state.SessionHistory = append(state.SessionHistory, referral.SessionEntry{SessionID: s.SessionID, IP: s.IP, Timestamp: s.Timestamp})
		}
	}

	if raw := fields[models.ProfileFieldIPHistory]; raw != "" {
		var ips []models.IPEntryModel
		if err := json.Unmarshal([]byte(raw), &ips); err != nil {
			return nil, fmt.Errorf("failed to decode ip history of %s: %w", address, err)
		}
		for _, e := range ips {
			state.IPHistory = append(state.IPHistory, referral.IPEntry{IP: e.IP, Timestamp: e.Timestamp})
		}
	}

	return referral.ReconstructUserProfile(state)
}

func StatsToModel(s referral.ReferralStats) models.ReferralStatsModel {
	return models.ReferralStatsModel{
		TotalReferrals:  s.TotalReferrals,
		ActiveReferrals: s.ActiveReferrals,
		TotalEarnings:   s.TotalEarnings,
		PendingRewards:  s.PendingRewards,
		ConversionRate:  s.ConversionRate,
		LastUpdated:     s.LastUpdated,
	}
}

func StatsToDomain(m models.ReferralStatsModel) referral.ReferralStats {
	return referral.ReferralStats{
		TotalReferrals:  m.TotalReferrals,
		ActiveReferrals: m.ActiveReferrals,
		TotalEarnings:   m.TotalEarnings,
		PendingRewards:  m.PendingRewards,
		ConversionRate:  m.ConversionRate,
		LastUpdated:     m.LastUpdated,
	}
}
