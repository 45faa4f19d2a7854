package domain

import "time"

// Subject is a registered entity being monitored for liveness.
type Subject struct {
	ID              string     // opaque unique id, handed out at registration
	Name            string     // display name collected during registration
	ChatID          int64      // Telegram chat the notification is routed to
	LastCheckIn     time.Time  // UTC, most recent accepted check-in
	IntervalMinutes int        // maximum allowed silence, > 0
	NotifiedAt      *time.Time // UTC, set while the current overdue episode is already notified
	CreatedAt       time.Time  // UTC
}

// Deadline returns the instant after which the subject counts as overdue.
func (s *Subject) Deadline() time.Time {
	return s.LastCheckIn.Add(time.Duration(s.IntervalMinutes) * time.Minute)
}

// Overdue reports whether the subject has been silent longer than its interval.
func (s *Subject) Overdue(now time.Time) bool {
	return now.After(s.Deadline())
}
