package risk

// FeatureVector is the closed record of signals extracted by the analyzers.
// The deterministic fallback table is exhaustive over these fields, so adding
// a feature here must be paired with a fallback weight.
type FeatureVector struct {
	// Email
	DisposableEmail bool `json:"disposable_email"`
	NoReplyEmail    bool `json:"noreply_email"`
	GibberishEmail  bool `json:"gibberish_email"`
	ProfaneEmail    bool `json:"profane_email"`

	// Phone
	RepeatingDigitsPhone bool `json:"repeating_digits_phone"`
	SequentialPhone      bool `json:"sequential_phone"`
	TestNumber           bool `json:"test_number"`
	InvalidAreaCode      bool `json:"invalid_area_code"`

	// Name
	RepeatedNameTokens bool `json:"repeated_name_tokens"`
	PlaceholderName    bool `json:"placeholder_name"`
	ShortNameToken     bool `json:"short_name_token"`
	ProfaneName        bool `json:"profane_name"`

	// Network
	DatacenterIP bool `json:"datacenter_ip"`
	TorExitIP    bool `json:"tor_exit"`
	PrivateIP    bool `json:"private_ip"`

	// Behavioral
	VelocityBurst  bool `json:"velocity_burst"`
	VelocityVolume bool `json:"velocity_volume"`
	DeviceAbuse    bool `json:"device_abuse"`

	IPBookings5m         int `json:"ip_bookings_5m"`
	IPBookings1h         int `json:"ip_bookings_1h"`
	DeviceBookingsRecent int `json:"device_bookings_recent"`
}

// Merge folds another vector into this one. Booleans are OR-ed, counters take
// the maximum, so per-category vectors combine into a single evaluator input.
func (f FeatureVector) Merge(other FeatureVector) FeatureVector {
	f.DisposableEmail = f.DisposableEmail || other.DisposableEmail
	f.NoReplyEmail = f.NoReplyEmail || other.NoReplyEmail
	f.GibberishEmail = f.GibberishEmail || other.GibberishEmail
	f.ProfaneEmail = f.ProfaneEmail || other.ProfaneEmail
	f.RepeatingDigitsPhone = f.RepeatingDigitsPhone || other.RepeatingDigitsPhone
	f.SequentialPhone = f.SequentialPhone || other.SequentialPhone
	f.TestNumber = f.TestNumber || other.TestNumber
	f.InvalidAreaCode = f.InvalidAreaCode || other.InvalidAreaCode
	f.RepeatedNameTokens = f.RepeatedNameTokens || other.RepeatedNameTokens
	f.PlaceholderName = f.PlaceholderName || other.PlaceholderName
	f.ShortNameToken = f.ShortNameToken || other.ShortNameToken
	f.ProfaneName = f.ProfaneName || other.ProfaneName
	f.DatacenterIP = f.DatacenterIP || other.DatacenterIP
	f.TorExitIP = f.TorExitIP || other.TorExitIP
	f.PrivateIP = f.PrivateIP || other.PrivateIP
	f.VelocityBurst = f.VelocityBurst || other.VelocityBurst
	f.VelocityVolume = f.VelocityVolume || other.VelocityVolume
	f.DeviceAbuse = f.DeviceAbuse || other.DeviceAbuse
	f.IPBookings5m = maxInt(f.IPBookings5m, other.IPBookings5m)
	f.IPBookings1h = maxInt(f.IPBookings1h, other.IPBookings1h)
	f.DeviceBookingsRecent = maxInt(f.DeviceBookingsRecent, other.DeviceBookingsRecent)
	return f
}

// IsZero reports whether no feature fired
func (f FeatureVector) IsZero() bool {
	return f == FeatureVector{}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
