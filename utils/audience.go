package utils

import (
	"github.com/andyfree1/client-finder-backend/models"
	"gorm.io/gorm"
)

// ApplyAudienceFilter narrows a prospect query to the campaign's audience.
// The returned query is what the store executes for both membership
// resolution and counting, so the two can never disagree.
//
// An unrecognized selector (and "All Prospects") leaves the query
// unconstrained. That fallthrough is long-standing behavior: existing
// campaigns with a bad selector keep matching everyone rather than silently
// going empty.
func ApplyAudienceFilter(q *gorm.DB, audience string, criteria *models.AudienceCriteria) *gorm.DB {
	switch audience {
	case models.AudienceQualifiedLeads:
		return q.Where("score >= ?", models.QualifiedScore)
	case models.AudienceTimeshareOwners:
		return q.Where("timeshare_owner = ?", true)
	case models.AudienceCustom:
		return applyCustomCriteria(q, criteria)
	default:
		return q
	}
}

// applyCustomCriteria conjoins only the criteria fields that are present.
// Pointer fields carry the unset-vs-false distinction: an explicit
// timeshare_owner=false filters to non-owners.
func applyCustomCriteria(q *gorm.DB, c *models.AudienceCriteria) *gorm.DB {
	if c == nil {
		return q
	}

	if c.MinAge != nil {
		q = q.Where("age >= ?", *c.MinAge)
	}
	if c.MaxAge != nil {
		q = q.Where("age <= ?", *c.MaxAge)
	}
	if c.MaritalStatus != "" {
		q = q.Where("marital_status = ?", c.MaritalStatus)
	}
	if len(c.Locations) > 0 {
		q = q.Where("location IN ?", c.Locations)
	}
	if c.TravelInterest != "" {
		q = q.Where("travel_interest = ?", c.TravelInterest)
	}
	if c.TimeshareOwner != nil {
		q = q.Where("timeshare_owner = ?", *c.TimeshareOwner)
	}
	if c.ExitInterest != nil {
		q = q.Where("exit_interest = ?", *c.ExitInterest)
	}
	if c.MinScore != nil {
		q = q.Where("score >= ?", *c.MinScore)
	}

	return q
}
