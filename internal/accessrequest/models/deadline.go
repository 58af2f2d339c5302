package models

import (
	"fmt"
	"time"
)

const (
	day = 24 * time.Hour

	// StatutoryPeriod is the legal response window, counted in absolute
	// 24-hour days from receipt.
	StatutoryPeriod = 30 * day
)

// ComputeDeadline returns receivedAt plus the statutory period.
func ComputeDeadline(receivedAt time.Time) time.Time {
	return receivedAt.Add(StatutoryPeriod)
}

// DaysRemaining is ceil((deadline-now) / 24h). Zero or negative means the
// deadline has passed.
func DaysRemaining(deadline, now time.Time) int {
	d := deadline.Sub(now)
	days := d / day
	if d%day > 0 {
		days++
	}
	return int(days)
}

// Urgency is a display-only tier derived from the days remaining. It never
// changes a request's Status.
type Urgency string

const (
	UrgencyExpired  Urgency = "expired"
	UrgencyCritical Urgency = "critical"
	UrgencyWarning  Urgency = "warning"
	UrgencyOK       Urgency = "ok"
)

// Urgencies lists the tiers from most to least urgent.
func Urgencies() []Urgency {
	return []Urgency{UrgencyExpired, UrgencyCritical, UrgencyWarning, UrgencyOK}
}

const (
	criticalWithinDays = 7
	warningWithinDays  = 14
)

// UrgencyFor maps days remaining onto a tier.
func UrgencyFor(days int) Urgency {
	switch {
	case days <= 0:
		return UrgencyExpired
	case days <= criticalWithinDays:
		return UrgencyCritical
	case days <= warningWithinDays:
		return UrgencyWarning
	default:
		return UrgencyOK
	}
}

// Severity orders tiers from ok (0) to expired (3).
func (u Urgency) Severity() int {
	switch u {
	case UrgencyExpired:
		return 3
	case UrgencyCritical:
		return 2
	case UrgencyWarning:
		return 1
	default:
		return 0
	}
}

// Color is the countdown color shown next to a request.
func (u Urgency) Color() string {
	switch u {
	case UrgencyExpired, UrgencyCritical:
		return "#EF4444"
	case UrgencyWarning:
		return "#F97316"
	default:
		return "#22C55E"
	}
}

// CountdownLabel renders days remaining the way the dashboard shows it.
func CountdownLabel(days int) string {
	switch {
	case days <= 0:
		return "Verlopen!"
	case days == 1:
		return "1 dag"
	default:
		return fmt.Sprintf("%d dagen", days)
	}
}
