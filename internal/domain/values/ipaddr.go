package values

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"net/netip"
	"strings"
)

// IPAddress represents a validated IP address value object
type IPAddress struct {
	addr netip.Addr
}

// NewIPAddress creates a new IPAddress value object with validation
func NewIPAddress(raw string) (IPAddress, error) {
	if raw == "" {
		return IPAddress{}, fmt.Errorf("ip address cannot be empty")
	}

	addr, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil {
		return IPAddress{}, fmt.Errorf("invalid ip address: %w", err)
	}

	return IPAddress{addr: addr.Unmap()}, nil
}

// MustNewIPAddress creates IPAddress and panics on error (for constants/tests)
func MustNewIPAddress(raw string) IPAddress {
	ip, err := NewIPAddress(raw)
	if err != nil {
		panic(err)
	}
	return ip
}

// String returns the canonical text form of the address
func (ip IPAddress) String() string {
	if !ip.addr.IsValid() {
		return ""
	}
	return ip.addr.String()
}

// Addr returns the underlying netip.Addr
func (ip IPAddress) Addr() netip.Addr {
	return ip.addr
}

// IsEmpty checks if the address is unset
func (ip IPAddress) IsEmpty() bool {
	return !ip.addr.IsValid()
}

// Equal checks if two IPAddress values are equal
func (ip IPAddress) Equal(other IPAddress) bool {
	return ip.addr == other.addr
}

// IsPrivate reports whether the address is in a private, loopback, or
// link-local range. Local and test traffic must never accrue network risk.
func (ip IPAddress) IsPrivate() bool {
	return ip.addr.IsPrivate() || ip.addr.IsLoopback() || ip.addr.IsLinkLocalUnicast()
}

// InPrefix reports whether the address falls inside the given CIDR prefix
func (ip IPAddress) InPrefix(prefix netip.Prefix) bool {
	return prefix.Contains(ip.addr)
}

// Masked returns the address with the host portion zeroed (/24 for IPv4,
// /48 for IPv6), for logging and outbound AI context.
func (ip IPAddress) Masked() string {
	if !ip.addr.IsValid() {
		return ""
	}
	bits := 24
	if ip.addr.Is6() {
		bits = 48
	}
	prefix, err := ip.addr.Prefix(bits)
	if err != nil {
		return ip.addr.String()
	}
	return prefix.String()
}

// MarshalJSON implements JSON marshaling
func (ip IPAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(ip.String())
}

// UnmarshalJSON implements JSON unmarshaling
func (ip *IPAddress) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := NewIPAddress(raw)
	if err != nil {
		return err
	}

	*ip = parsed
	return nil
}

// Value implements driver.Valuer for database storage
func (ip IPAddress) Value() (driver.Value, error) {
	return ip.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (ip *IPAddress) Scan(value interface{}) error {
	if value == nil {
		*ip = IPAddress{}
		return nil
	}

	str, ok := value.(string)
	if !ok {
		return fmt.Errorf("cannot scan %T into IPAddress", value)
	}

	parsed, err := NewIPAddress(str)
	if err != nil {
		return err
	}

	*ip = parsed
	return nil
}
