// Moodshare - Realtime Mood Feed Server
// Copyright 2026 Moodshare Authors
// SPDX-License-Identifier: MIT

package registry

import "time"

// Lifetime is a coarse duration supplied by clients when creating ephemeral
// content. Fields may be negative; the summed total decides the outcome.
type Lifetime struct {
	Years   int `json:"years"`
	Months  int `json:"months"`
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Fixed calendar approximations. A year is 365 days and a month is 30 days,
// independent of the current date.
const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	secondsPerMonth  = 30 * secondsPerDay
	secondsPerYear   = 365 * secondsPerDay

	// maxLifetimeSeconds caps a single lifetime at 100 years. Totals beyond
	// the cap clamp to it instead of wrapping.
	maxLifetimeSeconds int64 = 100 * secondsPerYear
)

func clampSeconds(v int64) int64 {
	if v > maxLifetimeSeconds {
		return maxLifetimeSeconds
	}
	if v < -maxLifetimeSeconds {
		return -maxLifetimeSeconds
	}
	return v
}

// fieldSeconds converts n units to seconds, saturating at the lifetime cap.
// The unit count is bounded before multiplying so the product cannot
// overflow int64.
func fieldSeconds(n int, unit int64) int64 {
	v := int64(n)
	limit := maxLifetimeSeconds / unit
	if v > limit {
		return maxLifetimeSeconds
	}
	if v < -limit {
		return -maxLifetimeSeconds
	}
	return v * unit
}

// Total converts the lifetime to a duration. Each field saturates at the
// lifetime cap before summation so extreme inputs clamp rather than
// overflow. A non-positive total returns zero, which callers treat as "not
// ephemeral".
func (l Lifetime) Total() time.Duration {
	total := fieldSeconds(l.Years, secondsPerYear)
	total += fieldSeconds(l.Months, secondsPerMonth)
	total += fieldSeconds(l.Days, secondsPerDay)
	total += fieldSeconds(l.Hours, secondsPerHour)
	total += fieldSeconds(l.Minutes, secondsPerMinute)
	total += fieldSeconds(l.Seconds, 1)

	total = clampSeconds(total)
	if total <= 0 {
		return 0
	}

	return time.Duration(total) * time.Second
}
