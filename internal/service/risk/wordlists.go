package risk

import "net/netip"

// Built-in pattern lists. Deployments extend these through
// risk.lists.extra_* configuration keys; the engine unions both at startup.

// disposableDomains are throwaway email providers. Matched against the full
// registered domain, not a suffix, so "notmailinator.com" does not fire.
var disposableDomains = map[string]bool{
	"mailinator.com":      true,
	"guerrillamail.com":   true,
	"guerrillamail.info":  true,
	"10minutemail.com":    true,
	"10minutemail.net":    true,
	"tempmail.com":        true,
	"temp-mail.org":       true,
	"throwawaymail.com":   true,
	"yopmail.com":         true,
	"maildrop.cc":         true,
	"getnada.com":         true,
	"trashmail.com":       true,
	"sharklasers.com":     true,
	"dispostable.com":     true,
	"fakeinbox.com":       true,
	"mintemail.com":       true,
	"mytemp.email":        true,
	"mohmal.com":          true,
	"emailondeck.com":     true,
	"spamgourmet.com":     true,
	"mailnesia.com":       true,
	"tempinbox.com":       true,
	"discard.email":       true,
	"burnermail.io":       true,
	"anonbox.net":         true,
	"mail-temporaire.fr":  true,
	"tempmailaddress.com": true,
	"inboxkitten.com":     true,
}

// noReplyLocalParts are sender-only mailbox names nobody books a table with
var noReplyLocalParts = map[string]bool{
	"noreply":       true,
	"no-reply":      true,
	"no_reply":      true,
	"donotreply":    true,
	"do-not-reply":  true,
	"mailer-daemon": true,
	"postmaster":    true,
}

// placeholderNames are full names (lowercased, single-spaced) that signal a
// throwaway identity rather than a real guest.
var placeholderNames = map[string]bool{
	"john doe":           true,
	"jane doe":           true,
	"john smith":         true,
	"test test":          true,
	"test user":          true,
	"test name":          true,
	"first last":         true,
	"firstname lastname": true,
	"foo bar":            true,
	"asdf asdf":          true,
	"abc abc":            true,
	"aaa aaa":            true,
	"na na":              true,
	"n a":                true,
}

// testPhoneNumbers are well-known fake lines, keyed by national digits
var testPhoneNumbers = map[string]bool{
	"5555555555": true,
	"1234567890": true,
	"0123456789": true,
	"0000000000": true,
	"1111111111": true,
	"9999999999": true,
}

// datacenterCIDRs cover common cloud and hosting ranges. Real deployments
// extend this with a full provider feed via configuration.
var datacenterCIDRs = []string{
	// AWS
	"3.0.0.0/9",
	"13.32.0.0/12",
	"18.128.0.0/9",
	"52.0.0.0/10",
	"54.64.0.0/11",
	// GCP
	"34.64.0.0/10",
	"35.184.0.0/13",
	// Azure
	"20.33.0.0/16",
	"40.64.0.0/10",
	// DigitalOcean
	"134.209.0.0/16",
	"159.65.0.0/16",
	"167.99.0.0/16",
	// OVH
	"51.38.0.0/16",
	"51.68.0.0/16",
	// Hetzner
	"95.216.0.0/15",
	"135.181.0.0/16",
}

// torExitIPs is a small seed set; deployments feed the live exit list in
// through configuration or a refresh job.
var torExitIPs = map[string]bool{
	"185.220.100.240": true,
	"185.220.101.1":   true,
	"185.220.102.8":   true,
	"171.25.193.20":   true,
	"171.25.193.25":   true,
	"199.87.154.255":  true,
	"204.13.164.118":  true,
	"109.70.100.2":    true,
}

// parsePrefixes parses CIDR strings, silently skipping malformed entries so a
// bad config line degrades one prefix rather than the whole list.
func parsePrefixes(cidrs []string) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		p, err := netip.ParsePrefix(c)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out
}
