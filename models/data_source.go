package models

import (
	"time"

	"gorm.io/gorm"
)

// Data source types
const (
	SourceSocialMedia  = "Social Media API"
	SourceWebScraping  = "Web Scraping"
	SourceManualImport = "Manual Import"
	SourceOther        = "Other"
)

// Data source statuses
const (
	SourceActive   = "Active"
	SourceInactive = "Inactive"
	SourceError    = "Error"
	SourcePending  = "Pending"
)

// SourceConfiguration holds connector settings for a data source
type SourceConfiguration struct {
	APIKey          string            `json:"api_key,omitempty"`
	APISecret       string            `json:"api_secret,omitempty"`
	AccessToken     string            `json:"access_token,omitempty"`
	RefreshToken    string            `json:"refresh_token,omitempty"`
	BaseURL         string            `json:"base_url,omitempty"`
	TargetURL       string            `json:"target_url,omitempty"`
	QueryParameters map[string]string `json:"query_parameters,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"`
}

// DataSource is an external ingestion configuration that feeds prospects
type DataSource struct {
	gorm.Model

	Name   string `gorm:"uniqueIndex;not null" json:"name"`
	Type   string `gorm:"not null" json:"type"`
	Status string `gorm:"default:'Active';index" json:"status"`

	Configuration *SourceConfiguration `gorm:"type:jsonb;serializer:json" json:"configuration,omitempty"`

	// Schedule
	Frequency      string     `gorm:"default:'Daily'" json:"frequency"` // Daily, Weekly, Monthly, Custom
	CronExpression string     `json:"cron_expression,omitempty"`
	LastRun        *time.Time `json:"last_run,omitempty"`
	NextRun        *time.Time `json:"next_run,omitempty"`

	// Run statistics
	TotalRuns             int     `gorm:"default:0" json:"total_runs"`
	TotalRecordsCollected int     `gorm:"default:0" json:"total_records_collected"`
	LastRunRecords        int     `gorm:"default:0" json:"last_run_records"`
	SuccessRate           float64 `gorm:"default:100" json:"success_rate"`

	LastError string `json:"last_error,omitempty"`

	CreatedByID *uint `gorm:"index" json:"created_by_id,omitempty"`
}

// NextRunAfter computes the next run time from the given instant based on
// the configured frequency. Unknown frequencies step a day.
func (ds *DataSource) NextRunAfter(from time.Time) time.Time {
	switch ds.Frequency {
	case "Weekly":
		return from.AddDate(0, 0, 7)
	case "Monthly":
		return from.AddDate(0, 1, 0)
	default:
		return from.AddDate(0, 0, 1)
	}
}

// UpdateAfterRun folds one collection run into the rolling statistics and
// advances the schedule. The success rate is the running average of 100/0
// per-run outcomes.
func (ds *DataSource) UpdateAfterRun(recordsCollected int, success bool) {
	ds.TotalRuns++
	ds.TotalRecordsCollected += recordsCollected
	ds.LastRunRecords = recordsCollected

	successValue := 0.0
	if success {
		successValue = 100.0
	}
	ds.SuccessRate = (ds.SuccessRate*float64(ds.TotalRuns-1) + successValue) / float64(ds.TotalRuns)

	now := time.Now()
	ds.LastRun = &now
	next := ds.NextRunAfter(now)
	ds.NextRun = &next
}
