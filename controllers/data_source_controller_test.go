package controller

import (
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/andyfree1/client-finder-backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubSourceRunner records run requests without collecting anything
type stubSourceRunner struct {
	mu   sync.Mutex
	runs []string
}

func (s *stubSourceRunner) RunSource(source *models.DataSource) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, source.Name)
	return 0, nil
}

func (s *stubSourceRunner) ran() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.runs...)
}

func newDataSourceTestApp(t *testing.T) (*fiber.App, *gorm.DB, *stubSourceRunner) {
	t.Helper()

	db := openControllerTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.DataSource{}))

	user := models.User{Email: "agent@example.com", PasswordHash: "x", Name: "Agent", Role: "agent", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	runner := &stubSourceRunner{}
	dc := NewDataSourceController(db, log.New(io.Discard, "", 0), runner)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &user)
		return c.Next()
	})
	app.Get("/data-sources", dc.GetDataSources)
	app.Post("/data-sources", dc.CreateDataSource)
	app.Post("/data-sources/run-all", dc.RunAllDataCollections)
	app.Get("/data-sources/:id", dc.GetDataSource)
	app.Put("/data-sources/:id", dc.UpdateDataSource)
	app.Delete("/data-sources/:id", dc.DeleteDataSource)
	app.Post("/data-sources/:id/run", dc.RunDataCollection)

	return app, db, runner
}

func TestCreateDataSourceSchedulesFirstRun(t *testing.T) {
	app, db, _ := newDataSourceTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/data-sources", fiber.Map{
		"name":      "LinkedIn Outreach",
		"type":      models.SourceSocialMedia,
		"frequency": "Weekly",
		"configuration": fiber.Map{
			"api_key":  "key",
			"base_url": "https://api.example.com",
		},
	})

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var source models.DataSource
	require.NoError(t, db.First(&source).Error)
	assert.Equal(t, models.SourceActive, source.Status)
	assert.InDelta(t, 100.0, source.SuccessRate, 0.001)
	require.NotNil(t, source.NextRun)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), *source.NextRun, time.Minute)
}

func TestCreateDataSourceDefaultsFrequency(t *testing.T) {
	app, db, _ := newDataSourceTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/data-sources", fiber.Map{
		"name": "Scraper",
		"type": models.SourceWebScraping,
	})

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var source models.DataSource
	require.NoError(t, db.First(&source).Error)
	assert.Equal(t, "Daily", source.Frequency)
}

func TestCreateDataSourceDuplicateName(t *testing.T) {
	app, _, _ := newDataSourceTestApp(t)

	body := fiber.Map{"name": "Scraper", "type": models.SourceWebScraping}
	resp, _ := doJSON(t, app, "POST", "/data-sources", body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, payload := doJSON(t, app, "POST", "/data-sources", body)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Data source with this name already exists", payload["error"])
}

func TestCreateDataSourceRejectsBadType(t *testing.T) {
	app, _, _ := newDataSourceTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/data-sources", fiber.Map{
		"name": "Carrier Pigeon",
		"type": "Pigeon Post",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateDataSourceFrequencyReschedules(t *testing.T) {
	app, db, _ := newDataSourceTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/data-sources", fiber.Map{
		"name":      "Scraper",
		"type":      models.SourceWebScraping,
		"frequency": "Daily",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var source models.DataSource
	require.NoError(t, db.First(&source).Error)

	resp, _ = doJSON(t, app, "PUT", fmt.Sprintf("/data-sources/%d", source.ID), fiber.Map{
		"frequency": "Monthly",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.First(&source, source.ID).Error)
	assert.Equal(t, "Monthly", source.Frequency)
	require.NotNil(t, source.NextRun)
	assert.WithinDuration(t, time.Now().AddDate(0, 1, 0), *source.NextRun, time.Minute)
}

func TestRunDataCollection(t *testing.T) {
	app, db, runner := newDataSourceTestApp(t)

	source := models.DataSource{Name: "Scraper", Type: models.SourceWebScraping, Status: models.SourceActive}
	require.NoError(t, db.Create(&source).Error)

	resp, _ := doJSON(t, app, "POST", fmt.Sprintf("/data-sources/%d/run", source.ID), nil)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Eventually(t, func() bool {
		return len(runner.ran()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRunDataCollectionNotFound(t *testing.T) {
	app, _, runner := newDataSourceTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/data-sources/999/run", nil)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Empty(t, runner.ran())
}

func TestRunAllDataCollections(t *testing.T) {
	app, db, runner := newDataSourceTestApp(t)

	active1 := models.DataSource{Name: "First", Type: models.SourceWebScraping, Status: models.SourceActive}
	active2 := models.DataSource{Name: "Second", Type: models.SourceSocialMedia, Status: models.SourceActive}
	paused := models.DataSource{Name: "Paused", Type: models.SourceWebScraping, Status: models.SourceInactive}
	require.NoError(t, db.Create(&active1).Error)
	require.NoError(t, db.Create(&active2).Error)
	require.NoError(t, db.Create(&paused).Error)

	resp, payload := doJSON(t, app, "POST", "/data-sources/run-all", nil)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Equal(t, float64(2), payload["count"])
	assert.Eventually(t, func() bool {
		return len(runner.ran()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.NotContains(t, runner.ran(), "Paused")
}

func TestRunAllDataCollectionsNoneActive(t *testing.T) {
	app, db, _ := newDataSourceTestApp(t)

	paused := models.DataSource{Name: "Paused", Type: models.SourceWebScraping, Status: models.SourceInactive}
	require.NoError(t, db.Create(&paused).Error)

	resp, payload := doJSON(t, app, "POST", "/data-sources/run-all", nil)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No active data sources found", payload["error"])
}

func TestDeleteDataSource(t *testing.T) {
	app, db, _ := newDataSourceTestApp(t)

	source := models.DataSource{Name: "Scraper", Type: models.SourceWebScraping, Status: models.SourceActive}
	require.NoError(t, db.Create(&source).Error)

	resp, _ := doJSON(t, app, "DELETE", fmt.Sprintf("/data-sources/%d", source.ID), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	err := db.First(&models.DataSource{}, source.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
