package controller

import (
	"github.com/andyfree1/client-finder-backend/models"
	"github.com/andyfree1/client-finder-backend/utils"
	"github.com/gofiber/fiber/v2"
)

// LaunchCampaign transitions a Draft or Scheduled campaign to Active and
// enqueues a durable delivery job. The Active write and the job row commit
// in one transaction, so a crash after the response leaves a pending job the
// delivery worker resumes on restart rather than a stranded Active campaign.
func (cc *CampaignController) LaunchCampaign(c *fiber.Ctx) error {
	var campaign models.Campaign
	if err := cc.DB.First(&campaign, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
	}

	if !campaign.CanLaunch() {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only draft or scheduled campaigns can be launched", nil)
	}

	job := models.DeliveryJob{
		CampaignID: campaign.ID,
		Status:     models.JobPending,
	}

	tx := cc.DB.Begin()
	campaign.Status = models.CampaignActive
	if err := tx.Save(&campaign).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to launch campaign", storeErr(err))
	}
	if err := tx.Create(&job).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to enqueue campaign delivery", storeErr(err))
	}
	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to launch campaign", storeErr(err))
	}

	// Deliver in the background; the caller only waits for the Active transition
	go cc.Jobs.ProcessJob(job.ID)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message":  "Campaign launched successfully",
		"campaign": campaign,
	})
}

// CancelCampaign transitions any non-terminal campaign to Cancelled
func (cc *CampaignController) CancelCampaign(c *fiber.Ctx) error {
	var campaign models.Campaign
	if err := cc.DB.First(&campaign, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
	}

	if campaign.IsTerminal() {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Campaign is already completed or cancelled", nil)
	}

	campaign.Status = models.CampaignCancelled
	if err := cc.DB.Save(&campaign).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to cancel campaign", storeErr(err))
	}

	return c.JSON(fiber.Map{
		"message":  "Campaign cancelled successfully",
		"campaign": campaign,
	})
}
