package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/andyfree1/client-finder-backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// stubJobRunner records launched jobs without processing them
type stubJobRunner struct {
	mu   sync.Mutex
	jobs []uint
}

func (s *stubJobRunner) ProcessJob(jobID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, jobID)
}

func (s *stubJobRunner) launched() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint(nil), s.jobs...)
}

func openControllerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Prospect{},
		&models.Campaign{},
		&models.DeliveryJob{},
	))
	return db
}

func newCampaignTestApp(t *testing.T) (*fiber.App, *gorm.DB, *stubJobRunner) {
	t.Helper()

	db := openControllerTestDB(t)

	user := models.User{Email: "agent@example.com", PasswordHash: "x", Name: "Agent", Role: "agent", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	jobs := &stubJobRunner{}
	cc := NewCampaignController(db, log.New(io.Discard, "", 0), jobs)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", &user)
		return c.Next()
	})
	app.Post("/campaigns", cc.CreateCampaign)
	app.Get("/campaigns/:id", cc.GetCampaign)
	app.Put("/campaigns/:id", cc.UpdateCampaign)
	app.Delete("/campaigns/:id", cc.DeleteCampaign)
	app.Post("/campaigns/:id/launch", cc.LaunchCampaign)
	app.Post("/campaigns/:id/cancel", cc.CancelCampaign)

	return app, db, jobs
}

func seedCampaignProspects(t *testing.T, db *gorm.DB) {
	t.Helper()

	prospects := []models.Prospect{
		{Name: "Alice", Age: 60, MaritalStatus: models.MaritalMarried, Income: "$150,000+", Location: "Las Vegas, NV", TravelInterest: models.TravelHigh, TimeshareOwner: true, ExitInterest: true, Source: "Manual Entry"},
		{Name: "Bob", Age: 52, MaritalStatus: models.MaritalSingle, Income: "$50,000-$60,000", Location: "Orlando, FL", TravelInterest: models.TravelLow, TimeshareOwner: true, Source: "Manual Entry"},
		{Name: "Carol", Age: 70, MaritalStatus: models.MaritalMarried, Income: "$75,000-$100,000", Location: "Orlando, FL", TravelInterest: models.TravelMedium, Source: "Web Scraping"},
	}
	for i := range prospects {
		prospects[i].Email = fmt.Sprintf("prospect%d@example.com", i)
		prospects[i].CalculateScore()
		require.NoError(t, db.Create(&prospects[i]).Error)
	}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, fiber.Map) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var payload fiber.Map
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp, payload
}

func createDraftCampaign(t *testing.T, db *gorm.DB, status, audience string) models.Campaign {
	t.Helper()

	campaign := models.Campaign{
		Name:     "Summer Getaway",
		Type:     "Email",
		Status:   status,
		Audience: audience,
	}
	require.NoError(t, db.Create(&campaign).Error)
	return campaign
}

func TestCreateCampaignResolvesAudience(t *testing.T) {
	app, db, _ := newCampaignTestApp(t)
	seedCampaignProspects(t, db)

	resp, payload := doJSON(t, app, "POST", "/campaigns", fiber.Map{
		"name":     "Owner Outreach",
		"type":     "Email",
		"audience": models.AudienceTimeshareOwners,
	})

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var campaign models.Campaign
	require.NoError(t, db.Preload("Prospects").First(&campaign).Error)
	assert.Equal(t, models.CampaignDraft, campaign.Status)
	assert.Equal(t, 2, campaign.TotalProspects)
	assert.Len(t, campaign.Prospects, 2)
	assert.NotNil(t, payload["campaign"])
}

func TestCreateCampaignRejectsBadAudience(t *testing.T) {
	app, _, _ := newCampaignTestApp(t)

	resp, payload := doJSON(t, app, "POST", "/campaigns", fiber.Map{
		"name":     "Bad Audience",
		"type":     "Email",
		"audience": "Everyone",
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", payload["error"])
}

func TestLaunchCampaignFromDraft(t *testing.T) {
	app, db, jobs := newCampaignTestApp(t)
	seedCampaignProspects(t, db)
	campaign := createDraftCampaign(t, db, models.CampaignDraft, models.AudienceAllProspects)

	resp, _ := doJSON(t, app, "POST", fmt.Sprintf("/campaigns/%d/launch", campaign.ID), nil)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var updated models.Campaign
	require.NoError(t, db.First(&updated, campaign.ID).Error)
	assert.Equal(t, models.CampaignActive, updated.Status)

	var job models.DeliveryJob
	require.NoError(t, db.Where("campaign_id = ?", campaign.ID).First(&job).Error)
	assert.Equal(t, models.JobPending, job.Status)

	// The handler hands the job off in a goroutine
	assert.Eventually(t, func() bool {
		launched := jobs.launched()
		return len(launched) == 1 && launched[0] == job.ID
	}, time.Second, 10*time.Millisecond)
}

func TestLaunchCampaignFromScheduled(t *testing.T) {
	app, db, _ := newCampaignTestApp(t)
	campaign := createDraftCampaign(t, db, models.CampaignScheduled, models.AudienceAllProspects)

	resp, _ := doJSON(t, app, "POST", fmt.Sprintf("/campaigns/%d/launch", campaign.ID), nil)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
}

func TestLaunchCampaignGuards(t *testing.T) {
	for _, status := range []string{models.CampaignActive, models.CampaignCompleted, models.CampaignCancelled} {
		t.Run(status, func(t *testing.T) {
			app, db, jobs := newCampaignTestApp(t)
			campaign := createDraftCampaign(t, db, status, models.AudienceAllProspects)

			resp, payload := doJSON(t, app, "POST", fmt.Sprintf("/campaigns/%d/launch", campaign.ID), nil)

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "Only draft or scheduled campaigns can be launched", payload["error"])
			assert.Empty(t, jobs.launched())
		})
	}
}

func TestLaunchCampaignNotFound(t *testing.T) {
	app, _, _ := newCampaignTestApp(t)

	resp, _ := doJSON(t, app, "POST", "/campaigns/999/launch", nil)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCancelActiveCampaign(t *testing.T) {
	app, db, _ := newCampaignTestApp(t)
	campaign := createDraftCampaign(t, db, models.CampaignActive, models.AudienceAllProspects)

	resp, _ := doJSON(t, app, "POST", fmt.Sprintf("/campaigns/%d/cancel", campaign.ID), nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated models.Campaign
	require.NoError(t, db.First(&updated, campaign.ID).Error)
	assert.Equal(t, models.CampaignCancelled, updated.Status)
}

func TestCancelTerminalCampaign(t *testing.T) {
	for _, status := range []string{models.CampaignCompleted, models.CampaignCancelled} {
		t.Run(status, func(t *testing.T) {
			app, db, _ := newCampaignTestApp(t)
			campaign := createDraftCampaign(t, db, status, models.AudienceAllProspects)

			resp, payload := doJSON(t, app, "POST", fmt.Sprintf("/campaigns/%d/cancel", campaign.ID), nil)

			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "Campaign is already completed or cancelled", payload["error"])
		})
	}
}

func TestDeleteActiveCampaignGuard(t *testing.T) {
	app, db, _ := newCampaignTestApp(t)
	campaign := createDraftCampaign(t, db, models.CampaignActive, models.AudienceAllProspects)

	resp, payload := doJSON(t, app, "DELETE", fmt.Sprintf("/campaigns/%d", campaign.ID), nil)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Cannot delete an active campaign. Cancel it first.", payload["error"])
}

func TestDeleteDraftCampaign(t *testing.T) {
	app, db, _ := newCampaignTestApp(t)
	campaign := createDraftCampaign(t, db, models.CampaignDraft, models.AudienceAllProspects)

	resp, _ := doJSON(t, app, "DELETE", fmt.Sprintf("/campaigns/%d", campaign.ID), nil)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	err := db.First(&models.Campaign{}, campaign.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateTerminalCampaignGuard(t *testing.T) {
	app, db, _ := newCampaignTestApp(t)
	campaign := createDraftCampaign(t, db, models.CampaignCompleted, models.AudienceAllProspects)

	resp, payload := doJSON(t, app, "PUT", fmt.Sprintf("/campaigns/%d", campaign.ID), fiber.Map{
		"name": "Renamed",
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Cannot update a completed or cancelled campaign", payload["error"])
}

func TestUpdateAudienceRecomputesMembership(t *testing.T) {
	app, db, _ := newCampaignTestApp(t)
	seedCampaignProspects(t, db)

	_, created := doJSON(t, app, "POST", "/campaigns", fiber.Map{
		"name":     "Everyone First",
		"type":     "Email",
		"audience": models.AudienceAllProspects,
	})
	id := uint(created["campaign"].(map[string]interface{})["ID"].(float64))

	var campaign models.Campaign
	require.NoError(t, db.First(&campaign, id).Error)
	require.Equal(t, 3, campaign.TotalProspects)

	resp, _ := doJSON(t, app, "PUT", fmt.Sprintf("/campaigns/%d", id), fiber.Map{
		"audience": models.AudienceTimeshareOwners,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NoError(t, db.Preload("Prospects").First(&campaign, id).Error)
	assert.Equal(t, models.AudienceTimeshareOwners, campaign.Audience)
	assert.Equal(t, 2, campaign.TotalProspects)
	assert.Len(t, campaign.Prospects, 2)
}

func TestUpdateCriteriaRecomputesMembership(t *testing.T) {
	app, db, _ := newCampaignTestApp(t)
	seedCampaignProspects(t, db)

	_, created := doJSON(t, app, "POST", "/campaigns", fiber.Map{
		"name":     "Custom Slice",
		"type":     "Email",
		"audience": models.AudienceCustom,
		"audience_criteria": fiber.Map{
			"min_age": 50,
		},
	})
	id := uint(created["campaign"].(map[string]interface{})["ID"].(float64))

	resp, _ := doJSON(t, app, "PUT", fmt.Sprintf("/campaigns/%d", id), fiber.Map{
		"audience_criteria": fiber.Map{
			"min_age": 65,
		},
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var campaign models.Campaign
	require.NoError(t, db.First(&campaign, id).Error)
	assert.Equal(t, 1, campaign.TotalProspects)
}
