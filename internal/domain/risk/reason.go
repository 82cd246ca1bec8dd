package risk

// Severity classifies how strongly a reason should influence review decisions
type Severity string

const (
	SeverityLow     Severity = "low"
	SeverityMedium  Severity = "medium"
	SeverityHigh    Severity = "high"
	SeverityExtreme Severity = "extreme"
)

// ReasonCode is a closed enumeration of risk signals. Override rules in the
// composite scorer match on codes, never on display text.
type ReasonCode string

const (
	// Email signals
	ReasonDisposableEmail       ReasonCode = "disposable_email"
	ReasonNoReplyEmail          ReasonCode = "noreply_email"
	ReasonGibberishEmail        ReasonCode = "gibberish_email"
	ReasonProfaneEmail          ReasonCode = "profane_email"
	ReasonExtremeProfanityEmail ReasonCode = "extreme_profanity_email"

	// Phone signals
	ReasonRepeatingDigits  ReasonCode = "repeating_digits_phone"
	ReasonSequentialDigits ReasonCode = "sequential_digits_phone"
	ReasonTestNumber       ReasonCode = "test_phone_number"
	ReasonInvalidAreaCode  ReasonCode = "invalid_area_code"

	// Name signals
	ReasonRepeatedNameTokens   ReasonCode = "repeated_name_tokens"
	ReasonPlaceholderName      ReasonCode = "placeholder_name"
	ReasonShortNameToken       ReasonCode = "short_name_token"
	ReasonProfaneName          ReasonCode = "profane_name"
	ReasonExtremeProfanityName ReasonCode = "extreme_profanity_name"

	// Network signals
	ReasonDatacenterIP ReasonCode = "datacenter_ip"
	ReasonTorExit      ReasonCode = "tor_exit_node"

	// Behavioral signals
	ReasonExtremeBurst       ReasonCode = "extreme_burst"
	ReasonRapidBurst         ReasonCode = "rapid_burst"
	ReasonHighVolume         ReasonCode = "high_volume"
	ReasonMultipleBookings   ReasonCode = "multiple_bookings"
	ReasonExtremeDeviceAbuse ReasonCode = "extreme_device_abuse"
)

// reasonDisplays maps codes to their default display strings. Behavioral
// reasons carry counts and are formatted by the analyzer into Reason.Detail.
var reasonDisplays = map[ReasonCode]string{
	ReasonDisposableEmail:       "Disposable email domain",
	ReasonNoReplyEmail:          "No-reply email address",
	ReasonGibberishEmail:        "Gibberish email address",
	ReasonProfaneEmail:          "Offensive/profane email address",
	ReasonExtremeProfanityEmail: "Extreme profanity in email",
	ReasonRepeatingDigits:       "Repeating digit pattern in phone number",
	ReasonSequentialDigits:      "Sequential digits in phone number",
	ReasonTestNumber:            "Known test phone number",
	ReasonInvalidAreaCode:       "Invalid area code",
	ReasonRepeatedNameTokens:    "Repeated name tokens",
	ReasonPlaceholderName:       "Known placeholder name",
	ReasonShortNameToken:        "Name token too short",
	ReasonProfaneName:           "Offensive/profane name",
	ReasonExtremeProfanityName:  "Extreme profanity in name",
	ReasonDatacenterIP:          "Datacenter or VPN IP range",
	ReasonTorExit:               "Tor exit node",
	ReasonExtremeBurst:          "Extreme booking burst",
	ReasonRapidBurst:            "Rapid booking burst",
	ReasonHighVolume:            "High booking volume",
	ReasonMultipleBookings:      "Multiple recent bookings",
	ReasonExtremeDeviceAbuse:    "Extreme device abuse",
}

var reasonSeverities = map[ReasonCode]Severity{
	ReasonDisposableEmail:       SeverityHigh,
	ReasonNoReplyEmail:          SeverityMedium,
	ReasonGibberishEmail:        SeverityMedium,
	ReasonProfaneEmail:          SeverityHigh,
	ReasonExtremeProfanityEmail: SeverityExtreme,
	ReasonRepeatingDigits:       SeverityMedium,
	ReasonSequentialDigits:      SeverityMedium,
	ReasonTestNumber:            SeverityHigh,
	ReasonInvalidAreaCode:       SeverityMedium,
	ReasonRepeatedNameTokens:    SeverityMedium,
	ReasonPlaceholderName:       SeverityHigh,
	ReasonShortNameToken:        SeverityMedium,
	ReasonProfaneName:           SeverityHigh,
	ReasonExtremeProfanityName:  SeverityExtreme,
	ReasonDatacenterIP:          SeverityLow,
	ReasonTorExit:               SeverityMedium,
	ReasonExtremeBurst:          SeverityExtreme,
	ReasonRapidBurst:            SeverityHigh,
	ReasonHighVolume:            SeverityMedium,
	ReasonMultipleBookings:      SeverityLow,
	ReasonExtremeDeviceAbuse:    SeverityExtreme,
}

// Display returns the human-readable string for a code
func (c ReasonCode) Display() string {
	if d, ok := reasonDisplays[c]; ok {
		return d
	}
	return string(c)
}

// Severity returns the severity tier of the code
func (c ReasonCode) Severity() Severity {
	if s, ok := reasonSeverities[c]; ok {
		return s
	}
	return SeverityLow
}

// IsExtreme reports whether the code is part of the fixed extreme tag set
// that triggers the composite scorer's floor override.
func (c ReasonCode) IsExtreme() bool {
	return c.Severity() == SeverityExtreme
}

// Reason pairs a code with an optional formatted detail (counts, windows).
type Reason struct {
	Code   ReasonCode `json:"code"`
	Detail string     `json:"detail,omitempty"`
}

// NewReason builds a Reason with the code's default display text
func NewReason(code ReasonCode) Reason {
	return Reason{Code: code}
}

// String returns the display text, preferring the formatted detail
func (r Reason) String() string {
	if r.Detail != "" {
		return r.Detail
	}
	return r.Code.Display()
}

// severityRank orders severities for reason prioritization (highest first)
func severityRank(s Severity) int {
	switch s {
	case SeverityExtreme:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	default:
		return 0
	}
}
