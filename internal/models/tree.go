package models

import "time"

// TreeRecord is a persisted tree in the portfolio.
//
// IDs are assigned as count+1 at insert time. They are unique and
// increasing for the supported single-writer, no-deletion workload but
// are not stable under concurrent or reordered writes.
type TreeRecord struct {
	ID                 int            `json:"id"`
	DisplayID          string         `json:"tree_id"`
	Name               string         `json:"name"`
	Species            string         `json:"species"`
	ScientificName     string         `json:"scientific_name"`
	HealthScore        int            `json:"health_score"`
	EnvironmentalValue float64        `json:"environmental_value"`
	DateAdded          time.Time      `json:"date_added"`
	LastCheckup        time.Time      `json:"last_checkup"`
	Location           string         `json:"location"`
	Notes              string         `json:"notes"`
	CareLogs           []CareLogEntry `json:"care_logs"`
}

// CareLogEntry is one maintenance activity on a tree. Entries are
// append-only and ordered by insertion.
type CareLogEntry struct {
	Date     time.Time `json:"date"`
	Activity string    `json:"activity"`
	Notes    string    `json:"notes"`
}

// PortfolioDocument is the on-disk shape of the portfolio file.
type PortfolioDocument struct {
	Trees       []TreeRecord `json:"trees"`
	Users       []any        `json:"users"`
	LastUpdated time.Time    `json:"last_updated"`
	Version     string       `json:"version"`
}

// Statistics are portfolio aggregates recomputed on demand.
type Statistics struct {
	TotalTrees  int     `json:"total_trees"`
	TotalValue  float64 `json:"total_value"`
	AvgHealth   float64 `json:"avg_health"`
	TotalCarbon float64 `json:"total_carbon"`
}
