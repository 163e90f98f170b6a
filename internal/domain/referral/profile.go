package referral

import (
	"time"
)

// maxHistoryEntries bounds the session and IP logs kept on a profile.
const maxHistoryEntries = 50

type SessionEntry struct {
	SessionID string
	IP        string
	Timestamp time.Time
}

type IPEntry struct {
	IP        string
	Timestamp time.Time
}

// UserProfile belongs to a wallet acting as a referrer. Its referralStats is a
// cache that can always be recomputed from the referrer's records.
type UserProfile struct {
	address          string
	registrationDate time.Time
	lastActivity     time.Time
	referralStats    *ReferralStats
	sessionHistory   []SessionEntry
	ipHistory        []IPEntry
}

func NewUserProfile(address string, now time.Time) (*UserProfile, error) {
	address = NormalizeAddress(address)
	if address == "" {
		return nil, ErrEmptyReferrer
	}
	return &UserProfile{
		address:          address,
		registrationDate: now,
		lastActivity:     now,
		sessionHistory:   []SessionEntry{},
		ipHistory:        []IPEntry{},
	}, nil
}

type UserProfileState struct {
	Address          string
	RegistrationDate time.Time
	LastActivity     time.Time
	ReferralStats    *ReferralStats
	SessionHistory   []SessionEntry
	IPHistory        []IPEntry
}

func ReconstructUserProfile(s UserProfileState) (*UserProfile, error) {
	if s.Address == "" {
		return nil, ErrEmptyReferrer
	}
	p := &UserProfile{
		address:          s.Address,
		registrationDate: s.RegistrationDate,
		lastActivity:     s.LastActivity,
		referralStats:    s.ReferralStats,
		sessionHistory:   s.SessionHistory,
		ipHistory:        s.IPHistory,
	}
	if p.sessionHistory == nil {
		p.sessionHistory = []SessionEntry{}
	}
	if p.ipHistory == nil {
		p.ipHistory = []IPEntry{}
	}
	return p, nil
}

// CacheStats replaces the cached aggregate.
func (p *UserProfile) CacheStats(stats ReferralStats, now time.Time) {
	p.referralStats = &stats
	p.lastActivity = now
}

// Stats returns the cached aggregate, if any.
func (p *UserProfile) Stats() (ReferralStats, bool) {
	if p.referralStats == nil {
		return ReferralStats{}, false
	}
	return *p.referralStats, true
}

// RecordSession appends to the session log and, for a new IP, to the IP log.
func (p *UserProfile) RecordSession(sessionID, ip string, now time.Time) {
	p.sessionHistory = append(p.sessionHistory, SessionEntry{SessionID: sessionID, IP: ip, Timestamp: now})
	if len(p.sessionHistory) > maxHistoryEntries {
		p.sessionHistory = p.sessionHistory[len(p.sessionHistory)-maxHistoryEntries:]
	}

	if ip != "" && !p.hasIP(ip) {
		p.ipHistory = append(p.ipHistory, IPEntry{IP: ip, Timestamp: now})
		if len(p.ipHistory) > maxHistoryEntries {
			p.ipHistory = p.ipHistory[len(p.ipHistory)-maxHistoryEntries:]
		}
	}
	p.lastActivity = now
}

func (p *UserProfile) hasIP(ip string) bool {
	for _, e := range p.ipHistory {
		if e.IP == ip {
			return true
		}
	}
	return false
}

func (p *UserProfile) Touch(now time.Time) {
	p.lastActivity = now
}

func (p *UserProfile) Address() string             { return p.address }
func (p *UserProfile) RegistrationDate() time.Time { return p.registrationDate }
func (p *UserProfile) LastActivity() time.Time     { return p.lastActivity }

func (p *UserProfile) SessionHistory() []SessionEntry {
	out := make([]SessionEntry, len(p.sessionHistory))
	copy(out, p.sessionHistory)
	return out
}

func (p *UserProfile) IPHistory() []IPEntry {
	out := make([]IPEntry, len(p.ipHistory))
	copy(out, p.ipHistory)
	return out
}
