// Package privacy masks personally identifying values before they reach logs.
// Resumes and wallet identities are PII; log lines must not reproduce them.
package privacy

import (
	"fmt"
	"net"
)

// AnonymizeIP truncates an IP address to its network prefix. IPv4 addresses
// lose the last octet (/24), IPv6 addresses keep only the /48 prefix.
// Returns "invalid" for unparseable input and "unknown" for empty strings.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "invalid"
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}

	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}

// MaskWallet keeps the first and last four characters of a wallet address and
// elides the rest, enough to correlate log lines without reproducing the key.
func MaskWallet(wallet string) string {
	if wallet == "" {
		return "unknown"
	}
	if len(wallet) <= 8 {
		return "****"
	}
	return wallet[:4] + "..." + wallet[len(wallet)-4:]
}
