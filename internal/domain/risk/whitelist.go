package risk

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// WhitelistType identifies which submission field an entry matches against
type WhitelistType string

const (
	WhitelistDomain WhitelistType = "domain"
	WhitelistEmail  WhitelistType = "email"
	WhitelistPhone  WhitelistType = "phone"
	WhitelistIP     WhitelistType = "ip"
)

// WhitelistEntry suppresses an analyzer category entirely for matching values.
// A match zeroes the category's contribution, it does not merely reduce it.
type WhitelistEntry struct {
	ID        uuid.UUID     `json:"id"`
	Type      WhitelistType `json:"type"`
	Value     string        `json:"value"`
	Notes     string        `json:"notes,omitempty"`
	CreatedBy string        `json:"created_by"`
	CreatedAt time.Time     `json:"created_at"`
	Active    bool          `json:"active"`
}

// Category returns the analyzer category this entry suppresses
func (e WhitelistEntry) Category() Category {
	switch e.Type {
	case WhitelistDomain, WhitelistEmail:
		return CategoryEmail
	case WhitelistPhone:
		return CategoryPhone
	case WhitelistIP:
		return CategoryIP
	}
	return ""
}

// Matches reports whether the entry applies to the submission. Email and
// phone match exactly; domains suffix-match so subdomains are covered.
func (e WhitelistEntry) Matches(sub Submission) bool {
	if !e.Active {
		return false
	}
	value := strings.ToLower(strings.TrimSpace(e.Value))
	switch e.Type {
	case WhitelistDomain:
		return !sub.Email.IsEmpty() && sub.Email.HasDomainSuffix(value)
	case WhitelistEmail:
		return strings.EqualFold(sub.Email.String(), value)
	case WhitelistPhone:
		return sub.Phone.String() == e.Value || sub.Phone.String() == value
	case WhitelistIP:
		return !sub.IP.IsEmpty() && strings.EqualFold(sub.IP.String(), value)
	}
	return false
}

// SuppressedCategories resolves the set of categories suppressed for a
// submission given the active whitelist entries.
func SuppressedCategories(entries []WhitelistEntry, sub Submission) map[Category]bool {
	suppressed := make(map[Category]bool)
	for _, e := range entries {
		if e.Matches(sub) {
			suppressed[e.Category()] = true
		}
	}
	return suppressed
}

// ValidWhitelistType reports whether t is a recognized whitelist type
func ValidWhitelistType(t WhitelistType) bool {
	switch t {
	case WhitelistDomain, WhitelistEmail, WhitelistPhone, WhitelistIP:
		return true
	}
	return false
}
