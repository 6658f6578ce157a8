package models

import (
	"time"

	"gorm.io/gorm"
)

// Delivery job statuses
const (
	JobPending = "pending"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

// DeliveryJob is the durable unit of work created when a campaign launches.
// The delivery worker claims pending jobs and drives the campaign from
// Active to Completed, so a restart between the two resumes the job instead
// of stranding the campaign.
type DeliveryJob struct {
	gorm.Model

	CampaignID uint   `gorm:"not null;index" json:"campaign_id"`
	Status     string `gorm:"default:'pending';index" json:"status"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`

	// Relations
	Campaign Campaign `json:"-"`
}
