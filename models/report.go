package models

import "time"

// Report is a synthesized market intelligence report.
type Report struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Directive  string    `json:"directive"`
	Content    string    `json:"content"`
	ReportType string    `json:"report_type"`
	CreatedAt  time.Time `json:"created_at"`
}
