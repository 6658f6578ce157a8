package controller

import (
	"github.com/andyfree1/client-finder-backend/models"
	"github.com/andyfree1/client-finder-backend/utils"
	"github.com/gofiber/fiber/v2"
)

// DeleteCampaign removes a campaign. Active campaigns must be cancelled first.
func (cc *CampaignController) DeleteCampaign(c *fiber.Ctx) error {
	var campaign models.Campaign
	if err := cc.DB.First(&campaign, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
	}

	if campaign.Status == models.CampaignActive {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Cannot delete an active campaign. Cancel it first.", nil)
	}

	tx := cc.DB.Begin()
	if err := tx.Model(&campaign).Association("Prospects").Clear(); err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete campaign", storeErr(err))
	}
	if err := tx.Delete(&campaign).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete campaign", storeErr(err))
	}
	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete campaign", storeErr(err))
	}

	return c.JSON(fiber.Map{"message": "Campaign deleted successfully"})
}
