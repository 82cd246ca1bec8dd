package risk

import (
	"strings"
	"unicode"
)

// Profanity screening runs in two tiers. Extreme terms are matched as
// substrings within a token, so concatenations and suffixed forms ("FuckYou",
// "fucker") still fire. Offensive terms are matched only as whole tokens:
// "cockburn", "dickinson" and "michelle" must never flag.

type profanityTier int

const (
	profanityNone profanityTier = iota
	profanityOffensive
	profanityExtreme
)

type profanityHit struct {
	tier    profanityTier
	atStart bool
	term    string
}

var extremeTerms = []string{
	"fuck",
	"cunt",
	"nigger",
	"faggot",
	"motherfuck",
	"shit",
	"bitch",
	"asshole",
}

var offensiveTerms = map[string]bool{
	"dick":    true,
	"cock":    true,
	"suck":    true,
	"blow":    true,
	"piss":    true,
	"crap":    true,
	"ass":     true,
	"arse":    true,
	"bastard": true,
	"whore":   true,
	"slut":    true,
	"penis":   true,
	"porn":    true,
	"douche":  true,
	"turd":    true,
	"wank":    true,
}

// legitNameTokens are real surnames and given names that collide with the
// offensive list. They suppress whole-token matches in name screening only;
// the same token inside an email address still flags.
var legitNameTokens = map[string]bool{
	"dick":      true,
	"blow":      true,
	"cox":       true,
	"gay":       true,
	"wang":      true,
	"butts":     true,
	"johnson":   true,
	"bush":      true,
	"weiner":    true,
	"glasscock": true,
}

// scanProfanity screens text against both tiers. allowTokens suppresses
// offensive whole-token matches (nil for email screening).
func scanProfanity(text string, allowTokens map[string]bool) profanityHit {
	lower := strings.ToLower(text)
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	for i, tok := range tokens {
		for _, term := range extremeTerms {
			if strings.Contains(tok, term) {
				return profanityHit{tier: profanityExtreme, atStart: i == 0, term: term}
			}
		}
	}

	for i, tok := range tokens {
		if allowTokens != nil && allowTokens[tok] {
			continue
		}
		if offensiveTerms[tok] {
			return profanityHit{tier: profanityOffensive, atStart: i == 0, term: tok}
		}
	}

	return profanityHit{tier: profanityNone}
}
