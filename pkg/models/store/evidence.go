package store

import "time"

// ReportSummary is one row of a stored evidence snapshot.
type ReportSummary struct {
	Group        string
	Check        string
	Position     int
	Control      string
	Passed       bool
	NonCompliant int
	Note         string
	CollectedAt  time.Time
}
