package controller

import (
	"bytes"
	"encoding/json"

	"github.com/andyfree1/client-finder-backend/models"
	"github.com/andyfree1/client-finder-backend/utils"
	"github.com/gofiber/fiber/v2"
)

type campaignUpdateInput struct {
	Name             *string                  `json:"name" validate:"omitempty,max=200"`
	Description      *string                  `json:"description"`
	Status           *string                  `json:"status" validate:"omitempty,oneof=Draft Scheduled Active Completed Cancelled"`
	Type             *string                  `json:"type" validate:"omitempty,oneof=Email SMS Call Multi-channel"`
	Audience         *string                  `json:"audience" validate:"omitempty,oneof='All Prospects' 'Qualified Leads' 'Timeshare Owners' Custom"`
	AudienceCriteria *models.AudienceCriteria `json:"audience_criteria"`
	Content          *models.CampaignContent  `json:"content"`
	Schedule         *models.CampaignSchedule `json:"schedule"`
}

// criteriaChanged compares criteria structurally via their JSON encodings
func criteriaChanged(before, after *models.AudienceCriteria) bool {
	oldJSON, _ := json.Marshal(before)
	newJSON, _ := json.Marshal(after)
	return !bytes.Equal(oldJSON, newJSON)
}

// UpdateCampaign applies a partial update. Completed and cancelled campaigns
// are immutable. A change to the audience selector or criteria re-resolves
// membership in the same transaction as the field writes.
func (cc *CampaignController) UpdateCampaign(c *fiber.Ctx) error {
	var input campaignUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var campaign models.Campaign
	if err := cc.DB.First(&campaign, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
	}

	if campaign.IsTerminal() {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Cannot update a completed or cancelled campaign", nil)
	}

	if input.Name != nil {
		campaign.Name = *input.Name
	}
	if input.Description != nil {
		campaign.Description = *input.Description
	}
	if input.Status != nil {
		campaign.Status = *input.Status
	}
	if input.Type != nil {
		campaign.Type = *input.Type
	}

	updateProspects := false
	if input.Audience != nil && *input.Audience != campaign.Audience {
		campaign.Audience = *input.Audience
		updateProspects = true
	}
	if input.AudienceCriteria != nil && criteriaChanged(campaign.AudienceCriteria, input.AudienceCriteria) {
		campaign.AudienceCriteria = input.AudienceCriteria
		updateProspects = true
	}

	if input.Content != nil {
		campaign.Content = input.Content
	}
	if input.Schedule != nil {
		campaign.Schedule = input.Schedule
	}

	tx := cc.DB.Begin()
	if err := tx.Save(&campaign).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update campaign", storeErr(err))
	}

	if updateProspects {
		if err := cc.resolveAudience(tx, &campaign); err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve campaign audience", storeErr(err))
		}
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update campaign", storeErr(err))
	}

	return c.JSON(fiber.Map{
		"message":  "Campaign updated successfully",
		"campaign": campaign,
	})
}
