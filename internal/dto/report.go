package dto

import "time"

// SummaryReport aggregates registry-wide counts for dashboards.
type SummaryReport struct {
	TotalProperties   int            `json:"total_properties"`
	TotalDocuments    int            `json:"total_documents"`
	MutationsByStatus map[string]int `json:"mutations_by_status"`
	GeneratedAt       time.Time      `json:"generated_at"`
}
