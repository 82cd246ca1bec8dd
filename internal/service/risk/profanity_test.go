package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanProfanity_Tiers(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		allow   map[string]bool
		tier    profanityTier
		atStart bool
	}{
		{name: "clean name", text: "michelle smith", allow: legitNameTokens, tier: profanityNone},
		{name: "extreme term", text: "fuck you", tier: profanityExtreme, atStart: true},
		{name: "extreme concatenated", text: "fuckyou", tier: profanityExtreme, atStart: true},
		{name: "extreme suffixed", text: "fucker", tier: profanityExtreme, atStart: true},
		{name: "offensive token", text: "suck it", tier: profanityOffensive, atStart: true},
		{name: "offensive later token", text: "joe dick smith", tier: profanityOffensive, atStart: false},
		{name: "substring never offensive", text: "cockburn", tier: profanityNone},
		{name: "substring in surname", text: "emily dickinson", tier: profanityNone},
		{name: "hell inside michelle", text: "michelle", tier: profanityNone},
		{name: "allowlisted legit surname", text: "dick johnson", allow: legitNameTokens, tier: profanityNone},
		{name: "allowlist ignored without list", text: "dick johnson", tier: profanityOffensive, atStart: true},
		{name: "allowlisted cox", text: "sarah cox", allow: legitNameTokens, tier: profanityNone},
		{name: "mixed case", text: "Fuck You", tier: profanityExtreme, atStart: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := scanProfanity(tt.text, tt.allow)
			assert.Equal(t, tt.tier, hit.tier)
			if tt.tier != profanityNone {
				assert.Equal(t, tt.atStart, hit.atStart)
			}
		})
	}
}

func TestScanProfanity_NoCrossTokenArtifacts(t *testing.T) {
	// Adjacent tokens must not concatenate into a hit.
	hit := scanProfanity("sass hitchens", legitNameTokens)
	assert.Equal(t, profanityNone, hit.tier)
}
