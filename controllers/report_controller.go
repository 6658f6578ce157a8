package controller

import (
	"fmt"
	"log"

	"github.com/andyfree1/client-finder-backend/models"
	"github.com/andyfree1/client-finder-backend/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ReportController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewReportController(db *gorm.DB, logger *log.Logger) *ReportController {
	return &ReportController{
		DB:     db,
		Logger: logger,
	}
}

// Distribution is one grouped count in a breakdown, sorted descending
type Distribution struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// RangeCount is a bucketed count over a numeric field
type RangeCount struct {
	Range string `json:"range"`
	Count int64  `json:"count"`
}

func (rc *ReportController) countWhere(model interface{}, query string, args ...interface{}) int64 {
	var count int64
	q := rc.DB.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&count).Error; err != nil {
		rc.Logger.Printf("Count query failed: %v", err)
	}
	return count
}

// groupBy returns count-per-distinct-value rows for a column, descending,
// optionally truncated
func (rc *ReportController) groupBy(model interface{}, column string, limit int, where string, args ...interface{}) []Distribution {
	rows := []Distribution{}
	q := rc.DB.Model(model).
		Select(column + " AS value, COUNT(*) AS count").
		Group(column).
		Order("count DESC")
	if where != "" {
		q = q.Where(where, args...)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&rows).Error; err != nil {
		rc.Logger.Printf("Group query failed for %s: %v", column, err)
	}
	return rows
}

func rate(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// GetDashboardStats returns the headline numbers and distributions for the
// dashboard. Always recomputed from the store, never cached.
func (rc *ReportController) GetDashboardStats(c *fiber.Ctx) error {
	totalProspects := rc.countWhere(&models.Prospect{}, "")
	qualifiedLeads := rc.countWhere(&models.Prospect{}, "score >= ?", models.QualifiedScore)
	timeshareOwners := rc.countWhere(&models.Prospect{}, "timeshare_owner = ?", true)
	exitInterested := rc.countWhere(&models.Prospect{}, "timeshare_owner = ? AND exit_interest = ?", true, true)

	dataSources := rc.countWhere(&models.DataSource{}, "")
	activeDataSources := rc.countWhere(&models.DataSource{}, "status = ?", models.SourceActive)

	activeCampaigns := rc.countWhere(&models.Campaign{}, "status = ?", models.CampaignActive)
	completedCampaigns := rc.countWhere(&models.Campaign{}, "status = ?", models.CampaignCompleted)

	var recentProspects []models.Prospect
	if err := rc.DB.Order("created_at DESC").Limit(5).
		Select("id", "name", "email", "age", "location", "score", "source", "created_at").
		Find(&recentProspects).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch dashboard statistics", storeErr(err))
	}

	ageDistribution := rc.bucketCounts(&models.Prospect{}, "age", [][2]int{
		{50, 55}, {56, 60}, {61, 65}, {66, 70}, {71, 75},
	})
	scoreDistribution := rc.bucketCounts(&models.Prospect{}, "score", [][2]int{
		{0, 20}, {21, 40}, {41, 60}, {61, 80}, {81, 100},
	})
	locationDistribution := rc.groupBy(&models.Prospect{}, "location", 5, "")

	return c.JSON(fiber.Map{
		"counts": fiber.Map{
			"total_prospects":      totalProspects,
			"qualified_leads":      qualifiedLeads,
			"timeshare_owners":     timeshareOwners,
			"exit_interested":      exitInterested,
			"data_sources":         dataSources,
			"active_data_sources":  activeDataSources,
			"active_campaigns":     activeCampaigns,
			"completed_campaigns":  completedCampaigns,
		},
		"recent_prospects": recentProspects,
		"distributions": fiber.Map{
			"age":      ageDistribution,
			"location": locationDistribution,
			"score":    scoreDistribution,
		},
	})
}

func (rc *ReportController) bucketCounts(model interface{}, column string, buckets [][2]int) []RangeCount {
	out := make([]RangeCount, 0, len(buckets))
	for _, b := range buckets {
		count := rc.countWhere(model, column+" >= ? AND "+column+" <= ?", b[0], b[1])
		out = append(out, RangeCount{
			Range: fmt.Sprintf("%d-%d", b[0], b[1]),
			Count: count,
		})
	}
	return out
}

// GetProspectStats returns prospect demographics and qualification rates
func (rc *ReportController) GetProspectStats(c *fiber.Ctx) error {
	totalProspects := rc.countWhere(&models.Prospect{}, "")
	qualifiedLeads := rc.countWhere(&models.Prospect{}, "score >= ?", models.QualifiedScore)

	timeshareOwners := rc.countWhere(&models.Prospect{}, "timeshare_owner = ?", true)
	exitInterested := rc.countWhere(&models.Prospect{}, "timeshare_owner = ? AND exit_interest = ?", true, true)

	return c.JSON(fiber.Map{
		"counts": fiber.Map{
			"total_prospects":    totalProspects,
			"qualified_leads":    qualifiedLeads,
			"qualification_rate": rate(qualifiedLeads, totalProspects),
		},
		"demographics": fiber.Map{
			"marital_status": fiber.Map{
				"married":  rc.countWhere(&models.Prospect{}, "marital_status = ?", models.MaritalMarried),
				"single":   rc.countWhere(&models.Prospect{}, "marital_status = ?", models.MaritalSingle),
				"divorced": rc.countWhere(&models.Prospect{}, "marital_status = ?", models.MaritalDivorced),
				"widowed":  rc.countWhere(&models.Prospect{}, "marital_status = ?", models.MaritalWidowed),
			},
			"income": rc.groupBy(&models.Prospect{}, "income", 0, ""),
			"travel_interest": fiber.Map{
				"high":   rc.countWhere(&models.Prospect{}, "travel_interest = ?", models.TravelHigh),
				"medium": rc.countWhere(&models.Prospect{}, "travel_interest = ?", models.TravelMedium),
				"low":    rc.countWhere(&models.Prospect{}, "travel_interest = ?", models.TravelLow),
			},
			"timeshare": fiber.Map{
				"owners":          timeshareOwners,
				"exit_interested": exitInterested,
				"exit_rate":       rate(exitInterested, timeshareOwners),
				"companies":       rc.groupBy(&models.Prospect{}, "timeshare_company", 5, "timeshare_owner = ?", true),
			},
		},
		"sources": rc.groupBy(&models.Prospect{}, "source", 0, ""),
	})
}

// GetCampaignStats returns campaign counts and aggregate funnel performance
func (rc *ReportController) GetCampaignStats(c *fiber.Ctx) error {
	totalCampaigns := rc.countWhere(&models.Campaign{}, "")
	activeCampaigns := rc.countWhere(&models.Campaign{}, "status = ?", models.CampaignActive)
	completedCampaigns := rc.countWhere(&models.Campaign{}, "status = ?", models.CampaignCompleted)
	draftCampaigns := rc.countWhere(&models.Campaign{}, "status = ?", models.CampaignDraft)

	var completed []models.Campaign
	if err := rc.DB.Where("status = ?", models.CampaignCompleted).Find(&completed).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign statistics", storeErr(err))
	}

	var totalTargeted, totalDelivered, totalOpened, totalClicked, totalResponded, totalConverted int64
	for _, campaign := range completed {
		totalTargeted += int64(campaign.TotalProspects)
		totalDelivered += int64(campaign.Delivered)
		totalOpened += int64(campaign.Opened)
		totalClicked += int64(campaign.Clicked)
		totalResponded += int64(campaign.Responded)
		totalConverted += int64(campaign.Converted)
	}

	var recentCampaigns []models.Campaign
	if err := rc.DB.Order("created_at DESC").Limit(5).
		Select("id", "name", "type", "audience", "status", "total_prospects",
			"delivered", "opened", "clicked", "responded", "converted", "created_at").
		Find(&recentCampaigns).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaign statistics", storeErr(err))
	}

	return c.JSON(fiber.Map{
		"counts": fiber.Map{
			"total_campaigns":     totalCampaigns,
			"active_campaigns":    activeCampaigns,
			"completed_campaigns": completedCampaigns,
			"draft_campaigns":     draftCampaigns,
		},
		"types": fiber.Map{
			"email":         rc.countWhere(&models.Campaign{}, "type = ?", "Email"),
			"sms":           rc.countWhere(&models.Campaign{}, "type = ?", "SMS"),
			"call":          rc.countWhere(&models.Campaign{}, "type = ?", "Call"),
			"multi_channel": rc.countWhere(&models.Campaign{}, "type = ?", "Multi-channel"),
		},
		"audiences": fiber.Map{
			"all_prospects":    rc.countWhere(&models.Campaign{}, "audience = ?", models.AudienceAllProspects),
			"qualified_leads":  rc.countWhere(&models.Campaign{}, "audience = ?", models.AudienceQualifiedLeads),
			"timeshare_owners": rc.countWhere(&models.Campaign{}, "audience = ?", models.AudienceTimeshareOwners),
			"custom":           rc.countWhere(&models.Campaign{}, "audience = ?", models.AudienceCustom),
		},
		"performance": fiber.Map{
			"avg_delivery_rate":   rate(totalDelivered, totalTargeted),
			"avg_open_rate":       rate(totalOpened, totalDelivered),
			"avg_click_rate":      rate(totalClicked, totalOpened),
			"avg_response_rate":   rate(totalResponded, totalDelivered),
			"avg_conversion_rate": rate(totalConverted, totalResponded),
		},
		"recent_campaigns": recentCampaigns,
	})
}
