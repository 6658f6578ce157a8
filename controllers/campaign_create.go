package controller

import (
	"github.com/andyfree1/client-finder-backend/models"
	"github.com/andyfree1/client-finder-backend/utils"
	"github.com/gofiber/fiber/v2"
)

type campaignInput struct {
	Name             string                   `json:"name" validate:"required,max=200"`
	Description      string                   `json:"description"`
	Type             string                   `json:"type" validate:"required,oneof=Email SMS Call Multi-channel"`
	Audience         string                   `json:"audience" validate:"required,oneof='All Prospects' 'Qualified Leads' 'Timeshare Owners' Custom"`
	AudienceCriteria *models.AudienceCriteria `json:"audience_criteria"`
	Content          *models.CampaignContent  `json:"content"`
	Schedule         *models.CampaignSchedule `json:"schedule"`
}

// CreateCampaign creates a campaign in Draft and resolves its audience
func (cc *CampaignController) CreateCampaign(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input campaignInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	campaign := models.Campaign{
		Name:             input.Name,
		Description:      input.Description,
		Type:             input.Type,
		Status:           models.CampaignDraft,
		Audience:         input.Audience,
		AudienceCriteria: input.AudienceCriteria,
		Content:          input.Content,
		Schedule:         input.Schedule,
		CreatedByID:      &user.ID,
	}

	tx := cc.DB.Begin()
	if err := tx.Create(&campaign).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create campaign", storeErr(err))
	}

	if err := cc.resolveAudience(tx, &campaign); err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve campaign audience", storeErr(err))
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create campaign", storeErr(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Campaign created successfully",
		"campaign": campaign,
	})
}
