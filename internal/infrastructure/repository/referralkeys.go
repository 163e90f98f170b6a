package repository

import "strings"

// Key layout shared with maintenance tooling.
const (
	referralKeyPrefix      = "referral:"
	userReferralsKeyPrefix = "user_referrals:"
	userProfileKeyPrefix   = "user_profile:"
	ipIndexKeyPrefix       = "ip_to_referral:"
	walletIndexKeyPrefix   = "user_to_referral:"
	RecentActivationsKey   = "recent_activations"
	referralKeyScanPattern = referralKeyPrefix + "*"
)

func referralKey(id string) string {
	return referralKeyPrefix + id
}

func userReferralsKey(referrer string) string {
	return userReferralsKeyPrefix + strings.ToLower(referrer)
}

func userProfileKey(address string) string {
	return userProfileKeyPrefix + strings.ToLower(address)
}

func ipIndexKey(ip string) string {
	return ipIndexKeyPrefix + ip
}

func walletIndexKey(wallet string) string {
	return walletIndexKeyPrefix + strings.ToLower(wallet)
}
