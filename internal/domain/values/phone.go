package values

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// PhoneNumber represents a validated phone number value object.
// Numbers are stored in E.164 format (+1234567890).
type PhoneNumber struct {
	number string
}

var (
	e164Regex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

	// NANP numbers in the common national formats
	nanpRegex = regexp.MustCompile(`^(?:\+?1[-.\s]?)?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})$`)
)

// NewPhoneNumber creates a new PhoneNumber value object with validation
func NewPhoneNumber(number string) (PhoneNumber, error) {
	if number == "" {
		return PhoneNumber{}, fmt.Errorf("phone number cannot be empty")
	}

	cleaned := cleanPhoneNumber(number)
	if e164Regex.MatchString(cleaned) {
		return PhoneNumber{number: cleaned}, nil
	}

	if m := nanpRegex.FindStringSubmatch(strings.TrimSpace(number)); m != nil {
		return PhoneNumber{number: "+1" + m[1] + m[2] + m[3]}, nil
	}

	return PhoneNumber{}, fmt.Errorf("invalid phone number format: %s", number)
}

// MustNewPhoneNumber creates PhoneNumber and panics on error (for constants/tests)
func MustNewPhoneNumber(number string) PhoneNumber {
	phone, err := NewPhoneNumber(number)
	if err != nil {
		panic(err)
	}
	return phone
}

// String returns the phone number in E.164 format
func (p PhoneNumber) String() string {
	return p.number
}

// E164 returns the phone number in E.164 format (alias for String)
func (p PhoneNumber) E164() string {
	return p.number
}

// IsEmpty checks if the phone number is empty
func (p PhoneNumber) IsEmpty() bool {
	return p.number == ""
}

// Equal checks if two PhoneNumber values are equal
func (p PhoneNumber) Equal(other PhoneNumber) bool {
	return p.number == other.number
}

// IsNANP reports whether the number belongs to the North American Numbering Plan
func (p PhoneNumber) IsNANP() bool {
	return strings.HasPrefix(p.number, "+1") && len(p.number) == 12
}

// NationalDigits returns the digits after the country code. For NANP numbers
// this is the ten-digit national number the pattern analyzers operate on.
func (p PhoneNumber) NationalDigits() string {
	if p.IsNANP() {
		return p.number[2:]
	}
	return strings.TrimPrefix(p.number, "+")
}

// AreaCode returns the three-digit NANP area code, or "" for non-NANP numbers
func (p PhoneNumber) AreaCode() string {
	if !p.IsNANP() {
		return ""
	}
	return p.number[2:5]
}

// Masked returns the number with all but the country code and the final two
// digits replaced, for logging and outbound AI context.
func (p PhoneNumber) Masked() string {
	if len(p.number) < 6 {
		return p.number
	}
	return p.number[:3] + strings.Repeat("*", len(p.number)-5) + p.number[len(p.number)-2:]
}

func cleanPhoneNumber(number string) string {
	var b strings.Builder
	for i, ch := range number {
		if ch >= '0' && ch <= '9' || (ch == '+' && i == 0) {
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// MarshalJSON implements JSON marshaling
func (p PhoneNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.number)
}

// UnmarshalJSON implements JSON unmarshaling
func (p *PhoneNumber) UnmarshalJSON(data []byte) error {
	var number string
	if err := json.Unmarshal(data, &number); err != nil {
		return err
	}

	phone, err := NewPhoneNumber(number)
	if err != nil {
		return err
	}

	*p = phone
	return nil
}

// Value implements driver.Valuer for database storage
func (p PhoneNumber) Value() (driver.Value, error) {
	return p.number, nil
}

// Scan implements sql.Scanner for database retrieval
func (p *PhoneNumber) Scan(value interface{}) error {
	if value == nil {
		*p = PhoneNumber{}
		return nil
	}

	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("cannot scan %T into PhoneNumber", value)
	}

	phone, err := NewPhoneNumber(str)
	if err != nil {
		return err
	}

	*p = phone
	return nil
}
