package risk

import (
	"context"
	"net/netip"
	"strings"

	"github.com/reservable/booking-risk-engine/internal/domain/risk"
)

// Network category scores, combined by max
const (
	scoreTorExit      = 25
	scoreDatacenterIP = 15
)

type ipAnalyzer struct {
	datacenter []netip.Prefix
	torExits   map[string]bool
}

// NewIPAnalyzer builds the network analyzer with built-in datacenter ranges
// and Tor exits extended by deployment configuration.
func NewIPAnalyzer(extraCIDRs []string, extraTorExits []string) Analyzer {
	prefixes := parsePrefixes(datacenterCIDRs)
	prefixes = append(prefixes, parsePrefixes(extraCIDRs)...)

	exits := make(map[string]bool, len(torExitIPs)+len(extraTorExits))
	for ip := range torExitIPs {
		exits[ip] = true
	}
	for _, ip := range extraTorExits {
		exits[strings.TrimSpace(ip)] = true
	}

	return &ipAnalyzer{datacenter: prefixes, torExits: exits}
}

func (a *ipAnalyzer) Category() risk.Category {
	return risk.CategoryIP
}

func (a *ipAnalyzer) Analyze(_ context.Context, sub risk.Submission) risk.CategoryResult {
	var result risk.CategoryResult
	if sub.IP.IsEmpty() {
		return result
	}

	// Private and loopback addresses reach us through proxies and local
	// testing. They carry no reputation signal either way.
	if sub.IP.IsPrivate() {
		result.Features.PrivateIP = true
		return result
	}

	if a.torExits[sub.IP.String()] {
		result.Features.TorExitIP = true
		result.Score = max(result.Score, scoreTorExit)
		result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonTorExit))
	}

	for _, prefix := range a.datacenter {
		if sub.IP.InPrefix(prefix) {
			result.Features.DatacenterIP = true
			result.Score = max(result.Score, scoreDatacenterIP)
			result.Reasons = append(result.Reasons, risk.NewReason(risk.ReasonDatacenterIP))
			break
		}
	}

	return result
}
