package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/reservable/booking-risk-engine/internal/domain/risk"
	"github.com/reservable/booking-risk-engine/internal/infrastructure/config"
)

type behaviorAnalyzer struct {
	tracker VelocityTracker
	cfg     config.VelocityConfig
}

// NewBehaviorAnalyzer builds the velocity-backed behavioral analyzer. It only
// reads counts; the in-flight submission counts as the newest event in each
// window, and the service records it durably after evaluation.
func NewBehaviorAnalyzer(tracker VelocityTracker, cfg config.VelocityConfig) Analyzer {
	return &behaviorAnalyzer{tracker: tracker, cfg: cfg}
}

func (a *behaviorAnalyzer) Category() risk.Category {
	return risk.CategoryBehavioral
}

// IPVelocityKey and DeviceVelocityKey build tracker keys for a submission
func IPVelocityKey(ip string) string {
	return "ip:" + ip
}

func DeviceVelocityKey(deviceID string) string {
	return "device:" + deviceID
}

func (a *behaviorAnalyzer) Analyze(ctx context.Context, sub risk.Submission) risk.CategoryResult {
	var result risk.CategoryResult

	if !sub.IP.IsEmpty() {
		key := IPVelocityKey(sub.IP.String())

		// Tracker errors degrade to zero inside the store; counts here are
		// best effort by contract.
		burst, _ := a.tracker.CountInWindow(ctx, key, a.cfg.BurstWindow)
		hourly, _ := a.tracker.CountInWindow(ctx, key, a.cfg.HourlyWindow)
		// The submission under evaluation is itself an event in every window
		// it is measured against; it is only written to the tracker later.
		burst++
		hourly++
		result.Features.IPBookings5m = burst
		result.Features.IPBookings1h = hourly

		switch {
		case burst >= a.cfg.ExtremeBurstCount:
			result.Features.VelocityBurst = true
			result.Score = max(result.Score, a.cfg.ExtremeBurstScore)
			result.Reasons = append(result.Reasons, risk.Reason{
				Code:   risk.ReasonExtremeBurst,
				Detail: fmt.Sprintf("Extreme burst: %d bookings in %s", burst, humanWindow(a.cfg.BurstWindow)),
			})
		case burst >= a.cfg.RapidBurstCount:
			result.Features.VelocityBurst = true
			result.Score = max(result.Score, a.cfg.RapidBurstScore)
			result.Reasons = append(result.Reasons, risk.Reason{
				Code:   risk.ReasonRapidBurst,
				Detail: fmt.Sprintf("Rapid burst: %d bookings in %s", burst, humanWindow(a.cfg.BurstWindow)),
			})
		case hourly >= a.cfg.HighVolumeCount:
			result.Features.VelocityVolume = true
			result.Score = max(result.Score, a.cfg.HighVolumeScore)
			result.Reasons = append(result.Reasons, risk.Reason{
				Code:   risk.ReasonHighVolume,
				Detail: fmt.Sprintf("High volume: %d bookings in %s", hourly, humanWindow(a.cfg.HourlyWindow)),
			})
		case hourly >= a.cfg.MultipleCount:
			result.Features.VelocityVolume = true
			result.Score = max(result.Score, a.cfg.MultipleScore)
			result.Reasons = append(result.Reasons, risk.Reason{
				Code:   risk.ReasonMultipleBookings,
				Detail: fmt.Sprintf("Multiple bookings: %d in %s", hourly, humanWindow(a.cfg.HourlyWindow)),
			})
		}
	}

	if sub.DeviceID != "" {
		device, _ := a.tracker.CountInWindow(ctx, DeviceVelocityKey(sub.DeviceID), a.cfg.DeviceWindow)
		device++
		result.Features.DeviceBookingsRecent = device

		if device >= a.cfg.DeviceAbuseCount {
			result.Features.DeviceAbuse = true
			result.Score = max(result.Score, a.cfg.DeviceAbuseScore)
			result.Reasons = append(result.Reasons, risk.Reason{
				Code:   risk.ReasonExtremeDeviceAbuse,
				Detail: fmt.Sprintf("Extreme device abuse: %d bookings in %s", device, humanWindow(a.cfg.DeviceWindow)),
			})
		}
	}

	return result
}

// humanWindow renders a window duration for reason text: "5 minutes", "1 hour"
func humanWindow(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	m := int(d / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
