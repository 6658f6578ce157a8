package controller

import (
	"log"
	"strings"
	"time"

	"github.com/andyfree1/client-finder-backend/config"
	"github.com/andyfree1/client-finder-backend/models"
	"github.com/andyfree1/client-finder-backend/utils"
	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProspectController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *utils.Notifier
}

func NewProspectController(db *gorm.DB, logger *log.Logger, notifier *utils.Notifier) *ProspectController {
	return &ProspectController{
		DB:       db,
		Logger:   logger,
		Notifier: notifier,
	}
}

// storeErr hides store error detail from production responses
func storeErr(err error) error {
	if config.IsProduction() {
		return nil
	}
	return err
}

type prospectInput struct {
	Name             string             `json:"name" validate:"required,max=200"`
	Email            string             `json:"email" validate:"required,email"`
	Phone            string             `json:"phone" validate:"omitempty,max=30"`
	Age              int                `json:"age" validate:"required,gte=50,lte=75"`
	MaritalStatus    string             `json:"marital_status" validate:"required,oneof=Married Single Divorced Widowed"`
	SpouseInfo       *models.SpouseInfo `json:"spouse_info"`
	Income           string             `json:"income" validate:"required"`
	Location         string             `json:"location" validate:"required"`
	TravelInterest   string             `json:"travel_interest" validate:"required,oneof=High Medium Low"`
	TravelFrequency  string             `json:"travel_frequency" validate:"omitempty,oneof=Frequent Occasional Rare"`
	Destinations     []string           `json:"destinations"`
	TimeshareOwner   bool               `json:"timeshare_owner"`
	TimeshareCompany string             `json:"timeshare_company"`
	ExitInterest     bool               `json:"exit_interest"`
	Source           string             `json:"source" validate:"required"`
}

// CreateProspect creates a new prospect and computes its lead score
func (pc *ProspectController) CreateProspect(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input prospectInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	email := strings.ToLower(input.Email)
	if err := checkmail.ValidateFormat(email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", nil)
	}

	var existing models.Prospect
	if err := pc.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Prospect with this email already exists", nil)
	}

	prospect := models.Prospect{
		Name:             input.Name,
		Email:            email,
		Phone:            input.Phone,
		Age:              input.Age,
		MaritalStatus:    input.MaritalStatus,
		SpouseInfo:       input.SpouseInfo,
		Income:           input.Income,
		Location:         input.Location,
		TravelInterest:   input.TravelInterest,
		TravelFrequency:  input.TravelFrequency,
		Destinations:     input.Destinations,
		TimeshareOwner:   input.TimeshareOwner,
		TimeshareCompany: input.TimeshareCompany,
		ExitInterest:     input.ExitInterest,
		Source:           input.Source,
		AssignedToID:     &user.ID,
	}
	prospect.CalculateScore()

	if err := pc.DB.Create(&prospect).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create prospect", storeErr(err))
	}

	if prospect.IsQualified() {
		pc.notifyQualified(prospect)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Prospect created successfully",
		"prospect": prospect,
	})
}

// GetProspects returns prospects matching the query filters, paginated
func (pc *ProspectController) GetProspects(c *fiber.Ctx) error {
	page := utils.ParsePagination(c)

	q := pc.DB.Model(&models.Prospect{})

	if name := c.Query("name"); name != "" {
		q = q.Where("name ILIKE ?", "%"+name+"%")
	}
	if minAge := c.QueryInt("min_age", 0); minAge > 0 {
		q = q.Where("age >= ?", minAge)
	}
	if maxAge := c.QueryInt("max_age", 0); maxAge > 0 {
		q = q.Where("age <= ?", maxAge)
	}
	if ms := c.Query("marital_status"); ms != "" {
		q = q.Where("marital_status = ?", ms)
	}
	if location := c.Query("location"); location != "" {
		q = q.Where("location ILIKE ?", "%"+location+"%")
	}
	if ti := c.Query("travel_interest"); ti != "" {
		q = q.Where("travel_interest = ?", ti)
	}
	if owner := c.Query("timeshare_owner"); owner != "" {
		q = q.Where("timeshare_owner = ?", owner == "true")
	}
	if exit := c.Query("exit_interest"); exit != "" {
		q = q.Where("exit_interest = ?", exit == "true")
	}
	if minScore := c.QueryInt("min_score", 0); minScore > 0 {
		q = q.Where("score >= ?", minScore)
	}
	if source := c.Query("source"); source != "" {
		q = q.Where("source = ?", source)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count prospects", storeErr(err))
	}

	var prospects []models.Prospect
	if err := q.Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&prospects).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch prospects", storeErr(err))
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  prospects,
		Total: total,
		Page:  page.Page,
		Pages: utils.Pages(total, page.Limit),
	})
}

// GetQualifiedLeads returns prospects with a qualifying score, best first
func (pc *ProspectController) GetQualifiedLeads(c *fiber.Ctx) error {
	page := utils.ParsePagination(c)

	q := pc.DB.Model(&models.Prospect{}).Where("score >= ?", models.QualifiedScore)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count qualified leads", storeErr(err))
	}

	var prospects []models.Prospect
	if err := q.Order("score DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&prospects).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch qualified leads", storeErr(err))
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  prospects,
		Total: total,
		Page:  page.Page,
		Pages: utils.Pages(total, page.Limit),
	})
}

// GetProspect returns a single prospect with notes and interactions
func (pc *ProspectController) GetProspect(c *fiber.Ctx) error {
	var prospect models.Prospect
	if err := pc.DB.Preload("Notes").Preload("Interactions").
		First(&prospect, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Prospect not found", nil)
	}

	return c.JSON(utils.SuccessResponse(prospect))
}

type prospectUpdateInput struct {
	Name             *string            `json:"name" validate:"omitempty,max=200"`
	Email            *string            `json:"email" validate:"omitempty,email"`
	Phone            *string            `json:"phone"`
	Age              *int               `json:"age" validate:"omitempty,gte=50,lte=75"`
	MaritalStatus    *string            `json:"marital_status" validate:"omitempty,oneof=Married Single Divorced Widowed"`
	SpouseInfo       *models.SpouseInfo `json:"spouse_info"`
	Income           *string            `json:"income"`
	Location         *string            `json:"location"`
	TravelInterest   *string            `json:"travel_interest" validate:"omitempty,oneof=High Medium Low"`
	TravelFrequency  *string            `json:"travel_frequency" validate:"omitempty,oneof=Frequent Occasional Rare"`
	Destinations     []string           `json:"destinations"`
	TimeshareOwner   *bool              `json:"timeshare_owner"`
	TimeshareCompany *string            `json:"timeshare_company"`
	ExitInterest     *bool              `json:"exit_interest"`
}

// UpdateProspect applies a partial update and recomputes the lead score
func (pc *ProspectController) UpdateProspect(c *fiber.Ctx) error {
	var input prospectUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var prospect models.Prospect
	if err := pc.DB.First(&prospect, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Prospect not found", nil)
	}

	wasQualified := prospect.IsQualified()

	if input.Name != nil {
		prospect.Name = *input.Name
	}
	if input.Email != nil {
		prospect.Email = strings.ToLower(*input.Email)
	}
	if input.Phone != nil {
		prospect.Phone = *input.Phone
	}
	if input.Age != nil {
		prospect.Age = *input.Age
	}
	if input.MaritalStatus != nil {
		prospect.MaritalStatus = *input.MaritalStatus
	}
	if input.SpouseInfo != nil {
		prospect.SpouseInfo = input.SpouseInfo
	}
	if input.Income != nil {
		prospect.Income = *input.Income
	}
	if input.Location != nil {
		prospect.Location = *input.Location
	}
	if input.TravelInterest != nil {
		prospect.TravelInterest = *input.TravelInterest
	}
	if input.TravelFrequency != nil {
		prospect.TravelFrequency = *input.TravelFrequency
	}
	if input.Destinations != nil {
		prospect.Destinations = input.Destinations
	}
	if input.TimeshareOwner != nil {
		prospect.TimeshareOwner = *input.TimeshareOwner
	}
	if input.TimeshareCompany != nil {
		prospect.TimeshareCompany = *input.TimeshareCompany
	}
	if input.ExitInterest != nil {
		prospect.ExitInterest = *input.ExitInterest
	}

	prospect.CalculateScore()

	if err := pc.DB.Save(&prospect).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update prospect", storeErr(err))
	}

	if !wasQualified && prospect.IsQualified() {
		pc.notifyQualified(prospect)
	}

	return c.JSON(fiber.Map{
		"message":  "Prospect updated successfully",
		"prospect": prospect,
	})
}

// DeleteProspect removes a prospect
func (pc *ProspectController) DeleteProspect(c *fiber.Ctx) error {
	var prospect models.Prospect
	if err := pc.DB.First(&prospect, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Prospect not found", nil)
	}

	if err := pc.DB.Delete(&prospect).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete prospect", storeErr(err))
	}

	return c.JSON(fiber.Map{"message": "Prospect deleted successfully"})
}

// AddNote appends a note to a prospect
func (pc *ProspectController) AddNote(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Text string `json:"text" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Note text is required", nil)
	}

	var prospect models.Prospect
	if err := pc.DB.First(&prospect, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Prospect not found", nil)
	}

	note := models.ProspectNote{
		ProspectID: prospect.ID,
		Text:       input.Text,
		AddedByID:  &user.ID,
	}
	if err := pc.DB.Create(&note).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add note", storeErr(err))
	}

	return c.JSON(fiber.Map{
		"message": "Note added successfully",
		"note":    note,
	})
}

// AddInteraction appends an interaction record to a prospect
func (pc *ProspectController) AddInteraction(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Type    string `json:"type" validate:"required,oneof=Email Call Meeting Other"`
		Notes   string `json:"notes"`
		Outcome string `json:"outcome"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var prospect models.Prospect
	if err := pc.DB.First(&prospect, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Prospect not found", nil)
	}

	interaction := models.ProspectInteraction{
		ProspectID:    prospect.ID,
		Type:          input.Type,
		Date:          time.Now(),
		Notes:         input.Notes,
		Outcome:       input.Outcome,
		ConductedByID: &user.ID,
	}
	if err := pc.DB.Create(&interaction).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add interaction", storeErr(err))
	}

	return c.JSON(fiber.Map{
		"message":     "Interaction added successfully",
		"interaction": interaction,
	})
}

// AssignProspect hands a prospect to an agent
func (pc *ProspectController) AssignProspect(c *fiber.Ctx) error {
	var input struct {
		AgentID uint `json:"agent_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var prospect models.Prospect
	if err := pc.DB.First(&prospect, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Prospect not found", nil)
	}

	var agent models.User
	if err := pc.DB.First(&agent, input.AgentID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Agent not found", nil)
	}

	prospect.AssignedToID = &agent.ID
	if err := pc.DB.Save(&prospect).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to assign prospect", storeErr(err))
	}

	return c.JSON(fiber.Map{
		"message":  "Prospect assigned successfully",
		"prospect": prospect,
	})
}

func (pc *ProspectController) notifyQualified(prospect models.Prospect) {
	go func(p models.Prospect) {
		if err := pc.Notifier.NotifyQualifiedLead(&p); err != nil {
			pc.Logger.Printf("Failed to send qualified lead notification for prospect %d: %v", p.ID, err)
		}
	}(prospect)
}
