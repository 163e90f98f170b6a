package referral

import (
	"net"
	"regexp"
	"strings"

	"github.com/cryptogift/ledger/internal/shared/id"
)

// walletPattern matches an EVM account address.
var walletPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// VisitorSignals is the bundle of identity signals observed for a referred visitor.
type VisitorSignals struct {
	Wallet    string
	Email     string
	IP        string
	UserAgent string
}

// Normalize trims every signal and lower-cases wallet and email. A wallet
// that is not a valid address is dropped.
func (s VisitorSignals) Normalize() VisitorSignals {
	out := VisitorSignals{
		Wallet:    strings.ToLower(strings.TrimSpace(s.Wallet)),
		Email:     strings.ToLower(strings.TrimSpace(s.Email)),
		IP:        strings.TrimSpace(s.IP),
		UserAgent: strings.TrimSpace(s.UserAgent),
	}
	if out.Wallet != "" && !IsWalletAddress(out.Wallet) {
		out.Wallet = ""
	}
	return out
}

func (s VisitorSignals) HasWallet() bool { return s.Wallet != "" }
func (s VisitorSignals) HasEmail() bool  { return s.Email != "" }
func (s VisitorSignals) HasIP() bool     { return s.IP != "" }

// IsIPOnly is true when no wallet or email identity is present.
func (s VisitorSignals) IsIPOnly() bool {
	return !s.HasWallet() && !s.HasEmail()
}

// SignalsFromLegacyIdentifier maps the single opaque identifier accepted by
// older callers onto a signal bundle. Only a wallet pattern or a parseable IP
// is recognised; anything else (including emails) yields an anonymous click.
func SignalsFromLegacyIdentifier(identifier string) VisitorSignals {
	identifier = strings.TrimSpace(identifier)
	switch {
	case IsWalletAddress(identifier):
		return VisitorSignals{Wallet: identifier}.Normalize()
	case net.ParseIP(identifier) != nil:
		return VisitorSignals{IP: identifier}
	default:
		return VisitorSignals{}
	}
}

// IsWalletAddress reports whether s looks like a 0x-prefixed 20 byte address.
func IsWalletAddress(s string) bool {
	return walletPattern.MatchString(s)
}

// DisplayIdentifier derives the privacy-preserving display string from the
// strongest signal: wallet, then email, then IP, then an anonymous fallback.
func DisplayIdentifier(s VisitorSignals) string {
	switch {
	case s.HasWallet():
		return displayForWallet(s.Wallet)
	case s.HasEmail():
		return displayForEmail(s.Email)
	case s.HasIP():
		return displayForIP(s.IP)
	default:
		return anonymousDisplay()
	}
}

func displayForWallet(wallet string) string {
	if len(wallet) <= 6 {
		return "..." + wallet
	}
	return "..." + wallet[len(wallet)-6:]
}

func displayForEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return firstN(email, 4) + "..."
	}
	return firstN(local, 4) + "...@" + domain
}

func displayForIP(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) >= 2 {
		return "ip_" + strings.Join(parts[len(parts)-2:], ".")
	}
	// IPv6 and anything else without dots
	if len(ip) > 4 {
		ip = ip[len(ip)-4:]
	}
	return "ip_" + ip
}

func anonymousDisplay() string {
	suffix, err := id.Generate(6)
	if err != nil {
		return "user_anon"
	}
	return "user_" + suffix
}

func firstN(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
