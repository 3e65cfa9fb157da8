package domain

import "time"

// DateLayout is the wire format for history dates.
const DateLayout = "2006-01-02"

// HistoryEntry is one persisted row of the daily mood series.
// Unique per (symbol, date); upsert replaces the score for that key.
type HistoryEntry struct {
	Symbol    string    // ticker symbol
	Date      time.Time // UTC calendar day (midnight)
	MoodScore float64   // mood at end of that day, in [-1, 1]
}

// HistoryPoint is the read-side projection of a history row.
type HistoryPoint struct {
	Date      string  `json:"date"` // DateLayout formatted
	MoodScore float64 `json:"mood_score"`
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
