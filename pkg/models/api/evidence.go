package api

import "time"

type ReportSummary struct {
	Name         string    `json:"name"`
	Control      string    `json:"control"`
	Passed       bool      `json:"passed"`
	NonCompliant int       `json:"nonCompliant"`
	Note         string    `json:"note,omitempty"`
	CollectedAt  time.Time `json:"collectedAt"`
}

type GroupReports struct {
	Group   string          `json:"group"`
	Reports []ReportSummary `json:"reports"`
}

type Error struct {
	Error string `json:"error"`
}
