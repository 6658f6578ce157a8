package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Marital status values accepted for a prospect
const (
	MaritalMarried  = "Married"
	MaritalSingle   = "Single"
	MaritalDivorced = "Divorced"
	MaritalWidowed  = "Widowed"
)

// Travel interest levels
const (
	TravelHigh   = "High"
	TravelMedium = "Medium"
	TravelLow    = "Low"
)

// QualifiedScore is the threshold at which a prospect counts as a qualified lead
const QualifiedScore = 80

// SpouseInfo is present only for married prospects
type SpouseInfo struct {
	Name string `json:"name,omitempty"`
	Age  int    `json:"age,omitempty"`
}

// Prospect represents a candidate lead
type Prospect struct {
	gorm.Model

	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Phone string `json:"phone"`

	// Demographics
	Age           int         `gorm:"not null" json:"age"` // 50-75 inclusive
	MaritalStatus string      `gorm:"not null" json:"marital_status"`
	SpouseInfo    *SpouseInfo `gorm:"type:jsonb;serializer:json" json:"spouse_info,omitempty"`
	Income        string      `gorm:"not null" json:"income"` // free-text bracket, e.g. "$75,000-$100,000"
	Location      string      `gorm:"not null;index" json:"location"`

	// Travel profile
	TravelInterest  string   `gorm:"not null" json:"travel_interest"`
	TravelFrequency string   `json:"travel_frequency"` // Frequent, Occasional, Rare
	Destinations    []string `gorm:"type:jsonb;serializer:json" json:"destinations,omitempty"`

	// Timeshare profile
	TimeshareOwner   bool   `gorm:"default:false" json:"timeshare_owner"`
	TimeshareCompany string `json:"timeshare_company,omitempty"`
	ExitInterest     bool   `gorm:"default:false" json:"exit_interest"`

	// Derived lead score, recomputed whenever a scoring input changes.
	// Never accepted from a caller.
	Score int `gorm:"default:0;index" json:"score"`

	// Provenance
	Source string `gorm:"not null;index" json:"source"`

	// Relations
	AssignedToID *uint                 `gorm:"index" json:"assigned_to_id,omitempty"`
	Notes        []ProspectNote        `gorm:"foreignKey:ProspectID" json:"notes,omitempty"`
	Interactions []ProspectInteraction `gorm:"foreignKey:ProspectID" json:"interactions,omitempty"`
}

// ProspectNote is an append-only note on a prospect
type ProspectNote struct {
	gorm.Model
	ProspectID uint   `gorm:"not null;index" json:"prospect_id"`
	Text       string `gorm:"not null;type:text" json:"text"`
	AddedByID  *uint  `json:"added_by_id,omitempty"`
}

// ProspectInteraction records a touch point with a prospect
type ProspectInteraction struct {
	gorm.Model
	ProspectID    uint      `gorm:"not null;index" json:"prospect_id"`
	Type          string    `gorm:"not null" json:"type"` // Email, Call, Meeting, Other
	Date          time.Time `json:"date"`
	Notes         string    `gorm:"type:text" json:"notes"`
	Outcome       string    `json:"outcome"`
	ConductedByID *uint     `json:"conducted_by_id,omitempty"`
}

// CalculateScore recomputes the lead score from the current attributes and
// stores it on the prospect. The rubric is additive and tops out at 100:
// age window, marriage, income bracket, travel interest, timeshare status.
func (p *Prospect) CalculateScore() int {
	score := 0

	// Age criteria (50-75)
	if p.Age >= 50 && p.Age <= 75 {
		score += 20
	}

	// Marital status (married)
	if p.MaritalStatus == MaritalMarried {
		score += 20
	}

	// Income criteria ($75K+), substring match on the bracket text
	if strings.Contains(p.Income, "$75,000") ||
		strings.Contains(p.Income, "$100,000") ||
		strings.Contains(p.Income, "$150,000") {
		score += 20
	}

	// Travel interest
	switch p.TravelInterest {
	case TravelHigh:
		score += 20
	case TravelMedium:
		score += 10
	}

	// Timeshare owner, weighted up when they want out
	if p.TimeshareOwner && p.ExitInterest {
		score += 20
	} else if p.TimeshareOwner {
		score += 10
	}

	// Clamp so a future rubric edit cannot push the score out of range
	if score > 100 {
		score = 100
	} else if score < 0 {
		score = 0
	}

	p.Score = score
	return score
}

// IsQualified reports whether the prospect counts as a qualified lead
func (p *Prospect) IsQualified() bool {
	return p.Score >= QualifiedScore
}
