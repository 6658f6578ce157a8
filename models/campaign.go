package models

import (
	"time"

	"gorm.io/gorm"
)

// Campaign statuses
const (
	CampaignDraft     = "Draft"
	CampaignScheduled = "Scheduled"
	CampaignActive    = "Active"
	CampaignCompleted = "Completed"
	CampaignCancelled = "Cancelled"
)

// Campaign audience selectors
const (
	AudienceAllProspects    = "All Prospects"
	AudienceQualifiedLeads  = "Qualified Leads"
	AudienceTimeshareOwners = "Timeshare Owners"
	AudienceCustom          = "Custom"
)

// AudienceCriteria narrows the target set for Custom audiences. Pointer fields
// distinguish "not set" from an explicit false/zero: a caller who passes
// timeshare_owner=false filters to non-owners rather than skipping the filter.
type AudienceCriteria struct {
	MinAge         *int     `json:"min_age,omitempty"`
	MaxAge         *int     `json:"max_age,omitempty"`
	MaritalStatus  string   `json:"marital_status,omitempty"`
	MinIncome      string   `json:"min_income,omitempty"`
	Locations      []string `json:"locations,omitempty"`
	TravelInterest string   `json:"travel_interest,omitempty"`
	TimeshareOwner *bool    `json:"timeshare_owner,omitempty"`
	ExitInterest   *bool    `json:"exit_interest,omitempty"`
	MinScore       *int     `json:"min_score,omitempty"`
}

// CampaignContent holds the channel-specific message fields
type CampaignContent struct {
	EmailSubject string   `json:"email_subject,omitempty"`
	EmailBody    string   `json:"email_body,omitempty"`
	SMSText      string   `json:"sms_text,omitempty"`
	CallScript   string   `json:"call_script,omitempty"`
	Attachments  []string `json:"attachments,omitempty"`
}

// CampaignSchedule holds the intended send window
type CampaignSchedule struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	SendTime  string     `json:"send_time,omitempty"`
	Timezone  string     `json:"timezone,omitempty"`
}

// Campaign represents a marketing push targeting a prospect subset
type Campaign struct {
	gorm.Model

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	Status string `gorm:"default:'Draft';index" json:"status"`
	Type   string `gorm:"not null" json:"type"` // Email, SMS, Call, Multi-channel

	// Audience selection
	Audience         string            `gorm:"not null" json:"audience"`
	AudienceCriteria *AudienceCriteria `gorm:"type:jsonb;serializer:json" json:"audience_criteria,omitempty"`

	Content  *CampaignContent  `gorm:"type:jsonb;serializer:json" json:"content,omitempty"`
	Schedule *CampaignSchedule `gorm:"type:jsonb;serializer:json" json:"schedule,omitempty"`

	// Statistics (denormalized, funnel stages never exceed the prior stage)
	TotalProspects int `gorm:"default:0" json:"total_prospects"`
	Delivered      int `gorm:"default:0" json:"delivered"`
	Opened         int `gorm:"default:0" json:"opened"`
	Clicked        int `gorm:"default:0" json:"clicked"`
	Responded      int `gorm:"default:0" json:"responded"`
	Converted      int `gorm:"default:0" json:"converted"`

	CreatedByID *uint `gorm:"index" json:"created_by_id,omitempty"`

	// Relations
	Prospects []Prospect `gorm:"many2many:campaign_prospects" json:"prospects,omitempty"`
}

// CampaignMetrics are the stage-over-stage rates for a campaign
type CampaignMetrics struct {
	DeliveryRate   float64 `json:"delivery_rate"`
	OpenRate       float64 `json:"open_rate"`
	ClickRate      float64 `json:"click_rate"`
	ResponseRate   float64 `json:"response_rate"`
	ConversionRate float64 `json:"conversion_rate"`
}

// CalculateMetrics derives the funnel rates, guarding every division by zero
func (c *Campaign) CalculateMetrics() CampaignMetrics {
	var m CampaignMetrics
	if c.TotalProspects > 0 {
		m.DeliveryRate = float64(c.Delivered) / float64(c.TotalProspects) * 100
	}
	if c.Delivered > 0 {
		m.OpenRate = float64(c.Opened) / float64(c.Delivered) * 100
		m.ResponseRate = float64(c.Responded) / float64(c.Delivered) * 100
	}
	if c.Opened > 0 {
		m.ClickRate = float64(c.Clicked) / float64(c.Opened) * 100
	}
	if c.Responded > 0 {
		m.ConversionRate = float64(c.Converted) / float64(c.Responded) * 100
	}
	return m
}

// IsTerminal reports whether the campaign can no longer be mutated
func (c *Campaign) IsTerminal() bool {
	return c.Status == CampaignCompleted || c.Status == CampaignCancelled
}

// CanLaunch reports whether the campaign may transition to Active
func (c *Campaign) CanLaunch() bool {
	return c.Status == CampaignDraft || c.Status == CampaignScheduled
}
