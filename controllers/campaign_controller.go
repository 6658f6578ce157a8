package controller

import (
	"log"

	"github.com/andyfree1/client-finder-backend/models"
	"github.com/andyfree1/client-finder-backend/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// JobRunner processes a delivery job outside the request that created it
type JobRunner interface {
	ProcessJob(jobID uint)
}

type CampaignController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Jobs   JobRunner
}

func NewCampaignController(db *gorm.DB, logger *log.Logger, jobs JobRunner) *CampaignController {
	return &CampaignController{
		DB:     db,
		Logger: logger,
		Jobs:   jobs,
	}
}

// resolveAudience recomputes the campaign's membership and cached count from
// its current selector and criteria. Runs inside the caller's transaction so
// selector and membership can never go stale relative to each other.
func (cc *CampaignController) resolveAudience(tx *gorm.DB, campaign *models.Campaign) error {
	var prospects []models.Prospect
	q := utils.ApplyAudienceFilter(tx.Model(&models.Prospect{}), campaign.Audience, campaign.AudienceCriteria)
	if err := q.Select("id").Find(&prospects).Error; err != nil {
		return err
	}

	if err := tx.Model(campaign).Association("Prospects").Replace(prospects); err != nil {
		return err
	}

	campaign.TotalProspects = len(prospects)
	return tx.Model(campaign).Update("total_prospects", campaign.TotalProspects).Error
}

// GetCampaigns returns all campaigns, newest first
func (cc *CampaignController) GetCampaigns(c *fiber.Ctx) error {
	var campaigns []models.Campaign
	if err := cc.DB.Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaigns", storeErr(err))
	}

	return c.JSON(fiber.Map{"campaigns": campaigns})
}

// GetCampaign returns a single campaign with its prospect membership
func (cc *CampaignController) GetCampaign(c *fiber.Ctx) error {
	var campaign models.Campaign
	if err := cc.DB.Preload("Prospects", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "email", "phone", "age", "location", "score")
	}).First(&campaign, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
	}

	return c.JSON(fiber.Map{
		"campaign": campaign,
		"metrics":  campaign.CalculateMetrics(),
	})
}
