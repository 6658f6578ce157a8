package worker

import (
	"context"
	"time"

	"github.com/andyfree1/client-finder-backend/models"
	"github.com/andyfree1/client-finder-backend/utils"
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DeliveryWorker drives launched campaigns through the delivery funnel. It
// claims pending DeliveryJobs, simulates the funnel, writes the campaign
// statistics and completes the campaign. Jobs are durable rows, so jobs left
// pending by a crash are picked up again on the next tick.
type DeliveryWorker struct {
	DB       *gorm.DB
	Notifier *utils.Notifier
	Logger   *logrus.Entry
}

func NewDeliveryWorker(db *gorm.DB, notifier *utils.Notifier) *DeliveryWorker {
	return &DeliveryWorker{
		DB:       db,
		Notifier: notifier,
		Logger:   logrus.WithField("worker", "delivery"),
	}
}

func (dw *DeliveryWorker) Start(ctx context.Context) {
	dw.Logger.Info("delivery worker started")

	// Recover jobs stranded by a previous shutdown before ticking
	dw.processPendingJobs()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			dw.Logger.Info("delivery worker shutting down")
			return
		case <-ticker.C:
			dw.processPendingJobs()
		}
	}
}

func (dw *DeliveryWorker) processPendingJobs() {
	var jobs []models.DeliveryJob
	if err := dw.DB.Where("status = ?", models.JobPending).Find(&jobs).Error; err != nil {
		dw.Logger.WithError(err).Error("failed to fetch pending delivery jobs")
		return
	}

	for _, job := range jobs {
		dw.ProcessJob(job.ID)
	}
}

// ProcessJob runs one delivery job to completion. Claiming is a conditional
// update on the pending status, so the launch handler's goroutine and the
// ticker cannot both run the same job.
func (dw *DeliveryWorker) ProcessJob(jobID uint) {
	now := time.Now()
	claim := dw.DB.Model(&models.DeliveryJob{}).
		Where("id = ? AND status = ?", jobID, models.JobPending).
		Updates(map[string]interface{}{
			"status":     models.JobRunning,
			"started_at": now,
		})
	if claim.Error != nil {
		dw.Logger.WithError(claim.Error).WithField("job_id", jobID).Error("failed to claim delivery job")
		return
	}
	if claim.RowsAffected == 0 {
		return // claimed elsewhere or already finished
	}

	if err := dw.deliver(jobID); err != nil {
		dw.Logger.WithError(err).WithField("job_id", jobID).Error("delivery job failed")
		sentry.CaptureException(err)
		dw.DB.Model(&models.DeliveryJob{}).Where("id = ?", jobID).
			Updates(map[string]interface{}{
				"status":     models.JobFailed,
				"last_error": err.Error(),
			})
	}
}

func (dw *DeliveryWorker) deliver(jobID uint) error {
	var job models.DeliveryJob
	if err := dw.DB.First(&job, jobID).Error; err != nil {
		return err
	}

	var campaign models.Campaign
	if err := dw.DB.First(&campaign, job.CampaignID).Error; err != nil {
		return err
	}

	// A campaign cancelled between launch and delivery keeps its terminal
	// status; the job just retires.
	if campaign.Status != models.CampaignActive {
		dw.Logger.WithFields(logrus.Fields{
			"campaign_id": campaign.ID,
			"status":      campaign.Status,
		}).Info("skipping delivery for non-active campaign")
		return dw.finishJob(jobID)
	}

	dw.Logger.WithFields(logrus.Fields{
		"campaign_id": campaign.ID,
		"prospects":   campaign.TotalProspects,
	}).Info("processing campaign delivery")

	funnel := utils.SimulateFunnel(campaign.TotalProspects)

	campaign.Delivered = funnel.Delivered
	campaign.Opened = funnel.Opened
	campaign.Clicked = funnel.Clicked
	campaign.Responded = funnel.Responded
	campaign.Converted = funnel.Converted
	campaign.Status = models.CampaignCompleted

	if err := dw.DB.Save(&campaign).Error; err != nil {
		return err
	}

	if err := dw.finishJob(jobID); err != nil {
		return err
	}

	dw.Logger.WithFields(logrus.Fields{
		"campaign_id": campaign.ID,
		"converted":   campaign.Converted,
	}).Info("campaign completed")

	go func(c models.Campaign) {
		if err := dw.Notifier.NotifyCampaignCompleted(&c); err != nil {
			dw.Logger.WithError(err).Warn("failed to send campaign completion notification")
		}
	}(campaign)

	return nil
}

func (dw *DeliveryWorker) finishJob(jobID uint) error {
	now := time.Now()
	return dw.DB.Model(&models.DeliveryJob{}).Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       models.JobDone,
			"completed_at": now,
		}).Error
}
