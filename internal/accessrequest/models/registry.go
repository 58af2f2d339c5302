package models

import (
	"slices"
	"time"
)

// The registry functions are pure filters over a caller-supplied slice.
// Input order is preserved; storage supplies ReceivedAt descending.

// UrgentOpen returns requests that are neither completed nor expired and have
// at most seven days left at now (overdue ones included).
func UrgentOpen(records []*AccessRequest, now time.Time) []*AccessRequest {
	return filter(records, func(r *AccessRequest) bool {
		if r.Status == StatusCompleted || r.Status == StatusExpired {
			return false
		}
		return r.DaysRemaining(now) <= criticalWithinDays
	})
}

// Open returns requests in status new or in_progress.
func Open(records []*AccessRequest) []*AccessRequest {
	return filter(records, func(r *AccessRequest) bool { return r.Status.IsOpen() })
}

// Completed returns requests in status completed.
func Completed(records []*AccessRequest) []*AccessRequest {
	return filter(records, func(r *AccessRequest) bool { return r.Status == StatusCompleted })
}

func filter(records []*AccessRequest, keep func(*AccessRequest) bool) []*AccessRequest {
	out := make([]*AccessRequest, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Summary holds the dashboard counters.
type Summary struct {
	Total     int
	Open      int
	Urgent    int
	Completed int
}

// Summarize counts records for the dashboard header.
func Summarize(records []*AccessRequest, now time.Time) Summary {
	return Summary{
		Total:     len(records),
		Open:      len(Open(records)),
		Urgent:    len(UrgentOpen(records, now)),
		Completed: len(Completed(records)),
	}
}

// Dashboard is the overview page: counters, the urgent worklist and the
// most recently received requests.
type Dashboard struct {
	Summary Summary
	Urgent  []*AccessRequest
	Recent  []*AccessRequest
}

// BuildDashboard expects records newest first. Recent holds at most
// recentLimit records.
func BuildDashboard(records []*AccessRequest, now time.Time, recentLimit int) Dashboard {
	recent := records
	if recentLimit >= 0 && len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	return Dashboard{
		Summary: Summarize(records, now),
		Urgent:  UrgentOpen(records, now),
		Recent:  append([]*AccessRequest{}, recent...),
	}
}

// SortByReceivedDesc orders records newest first, breaking ties by
// creation time then request number so the order is stable across stores.
func SortByReceivedDesc(records []*AccessRequest) {
	slices.SortStableFunc(records, func(a, b *AccessRequest) int {
		if c := b.ReceivedAt.Compare(a.ReceivedAt); c != 0 {
			return c
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.Number < b.Number:
			return -1
		case a.Number > b.Number:
			return 1
		}
		return 0
	})
}

// View selects one of the registry filters by name.
type View string

const (
	ViewAll       View = "all"
	ViewOpen      View = "open"
	ViewUrgent    View = "urgent"
	ViewCompleted View = "completed"
)

// ParseView accepts an empty string as ViewAll.
func ParseView(s string) (View, bool) {
	switch View(s) {
	case "", ViewAll:
		return ViewAll, true
	case ViewOpen, ViewUrgent, ViewCompleted:
		return View(s), true
	}
	return "", false
}

// Apply runs the view's filter.
func (v View) Apply(records []*AccessRequest, now time.Time) []*AccessRequest {
	switch v {
	case ViewOpen:
		return Open(records)
	case ViewUrgent:
		return UrgentOpen(records, now)
	case ViewCompleted:
		return Completed(records)
	default:
		return records
	}
}
