package domain

import "time"

// EmailStats is the per-sender counter document. Delivered and Inbox are
// incremented together with Sent on every successful send; they are a
// simulated metric, not delivery feedback. Spam is never incremented.
type EmailStats struct {
	ID        string    `json:"id" db:"id"`
	SenderID  string    `json:"user_id" db:"user_id"`
	Sent      int64     `json:"sent" db:"sent"`
	Delivered int64     `json:"delivered" db:"delivered"`
	Inbox     int64     `json:"inbox" db:"inbox"`
	Spam      int64     `json:"spam" db:"spam"`
	FirstSeen time.Time `json:"timestamp" db:"timestamp"`
}

// StatsSummary is the sum of every counter document.
type StatsSummary struct {
	Sent      int64 `json:"total_sent"`
	Delivered int64 `json:"total_delivered"`
	Inbox     int64 `json:"total_inbox"`
	Spam      int64 `json:"total_spam"`
}

// DeliverabilityScore returns inbox/delivered as a percentage, or 0 when
// nothing was delivered.
func (s StatsSummary) DeliverabilityScore() float64 {
	if s.Delivered == 0 {
		return 0
	}
	return float64(s.Inbox) / float64(s.Delivered) * 100
}

// SenderTotal is one row of the per-sender ranking.
type SenderTotal struct {
	SenderID  string `json:"user_id"`
	TotalSent int64  `json:"total_sent"`
}

// DailyCount is one row of the campaign-growth series.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}
