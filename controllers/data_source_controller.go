package controller

import (
	"log"
	"time"

	"github.com/andyfree1/client-finder-backend/models"
	"github.com/andyfree1/client-finder-backend/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SourceRunner executes one collection pass for a data source
type SourceRunner interface {
	RunSource(source *models.DataSource) (int, error)
}

type DataSourceController struct {
	DB     *gorm.DB
	Logger *log.Logger
	Runner SourceRunner
}

func NewDataSourceController(db *gorm.DB, logger *log.Logger, runner SourceRunner) *DataSourceController {
	return &DataSourceController{
		DB:     db,
		Logger: logger,
		Runner: runner,
	}
}

type dataSourceInput struct {
	Name           string                      `json:"name" validate:"required,max=200"`
	Type           string                      `json:"type" validate:"required,oneof='Social Media API' 'Web Scraping' 'Manual Import' Other"`
	Configuration  *models.SourceConfiguration `json:"configuration"`
	Frequency      string                      `json:"frequency" validate:"omitempty,oneof=Daily Weekly Monthly Custom"`
	CronExpression string                      `json:"cron_expression"`
}

// GetDataSources lists all data sources
func (dc *DataSourceController) GetDataSources(c *fiber.Ctx) error {
	var sources []models.DataSource
	if err := dc.DB.Order("created_at DESC").Find(&sources).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch data sources", storeErr(err))
	}
	return c.JSON(fiber.Map{"data_sources": sources})
}

// GetDataSource returns a single data source
func (dc *DataSourceController) GetDataSource(c *fiber.Ctx) error {
	var source models.DataSource
	if err := dc.DB.First(&source, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Data source not found", nil)
	}
	return c.JSON(utils.SuccessResponse(source))
}

// CreateDataSource registers a new ingestion source and schedules its first run
func (dc *DataSourceController) CreateDataSource(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input dataSourceInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var existing models.DataSource
	if err := dc.DB.Where("name = ?", input.Name).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Data source with this name already exists", nil)
	}

	source := models.DataSource{
		Name:           input.Name,
		Type:           input.Type,
		Status:         models.SourceActive,
		Configuration:  input.Configuration,
		Frequency:      input.Frequency,
		CronExpression: input.CronExpression,
		SuccessRate:    100,
		CreatedByID:    &user.ID,
	}
	if source.Frequency == "" {
		source.Frequency = "Daily"
	}
	next := source.NextRunAfter(time.Now())
	source.NextRun = &next

	if err := dc.DB.Create(&source).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create data source", storeErr(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Data source created successfully",
		"data_source": source,
	})
}

type dataSourceUpdateInput struct {
	Name           *string                     `json:"name" validate:"omitempty,max=200"`
	Type           *string                     `json:"type" validate:"omitempty,oneof='Social Media API' 'Web Scraping' 'Manual Import' Other"`
	Status         *string                     `json:"status" validate:"omitempty,oneof=Active Inactive Error Pending"`
	Configuration  *models.SourceConfiguration `json:"configuration"`
	Frequency      *string                     `json:"frequency" validate:"omitempty,oneof=Daily Weekly Monthly Custom"`
	CronExpression *string                     `json:"cron_expression"`
}

// UpdateDataSource applies a partial update; a frequency change reschedules
// the next run
func (dc *DataSourceController) UpdateDataSource(c *fiber.Ctx) error {
	var input dataSourceUpdateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var source models.DataSource
	if err := dc.DB.First(&source, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Data source not found", nil)
	}

	if input.Name != nil {
		source.Name = *input.Name
	}
	if input.Type != nil {
		source.Type = *input.Type
	}
	if input.Status != nil {
		source.Status = *input.Status
	}
	if input.Configuration != nil {
		source.Configuration = input.Configuration
	}
	if input.CronExpression != nil {
		source.CronExpression = *input.CronExpression
	}
	if input.Frequency != nil {
		source.Frequency = *input.Frequency
		next := source.NextRunAfter(time.Now())
		source.NextRun = &next
	}

	if err := dc.DB.Save(&source).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update data source", storeErr(err))
	}

	return c.JSON(fiber.Map{
		"message":     "Data source updated successfully",
		"data_source": source,
	})
}

// DeleteDataSource removes a data source
func (dc *DataSourceController) DeleteDataSource(c *fiber.Ctx) error {
	var source models.DataSource
	if err := dc.DB.First(&source, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Data source not found", nil)
	}

	if err := dc.DB.Delete(&source).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete data source", storeErr(err))
	}

	return c.JSON(fiber.Map{"message": "Data source deleted successfully"})
}

// RunDataCollection triggers one collection run. The caller gets an
// immediate 202; the run happens in the background and records its outcome
// on the source.
func (dc *DataSourceController) RunDataCollection(c *fiber.Ctx) error {
	var source models.DataSource
	if err := dc.DB.First(&source, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Data source not found", nil)
	}

	go func(s models.DataSource) {
		if _, err := dc.Runner.RunSource(&s); err != nil {
			dc.Logger.Printf("Data collection error for %s: %v", s.Name, err)
		}
	}(source)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message":     "Data collection started",
		"data_source": source,
	})
}

// RunAllDataCollections triggers a run for every active source. Sources run
// sequentially and one failure does not abort the rest.
func (dc *DataSourceController) RunAllDataCollections(c *fiber.Ctx) error {
	var sources []models.DataSource
	if err := dc.DB.Where("status = ?", models.SourceActive).Find(&sources).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch data sources", storeErr(err))
	}

	if len(sources) == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "No active data sources found", nil)
	}

	go func(batch []models.DataSource) {
		for i := range batch {
			if _, err := dc.Runner.RunSource(&batch[i]); err != nil {
				dc.Logger.Printf("Data collection error for %s: %v", batch[i].Name, err)
			}
		}
	}(sources)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Data collection started for all active sources",
		"count":   len(sources),
	})
}
