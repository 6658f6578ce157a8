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

// CollectionWorker runs data sources on their schedule and serves as the
// shared executor for manually triggered runs. Each source's failure is
// isolated: it is recorded on that source and the rest keep running.
type CollectionWorker struct {
	DB        *gorm.DB
	Collector *utils.Collector
	Notifier  *utils.Notifier
	Logger    *logrus.Entry
}

func NewCollectionWorker(db *gorm.DB, collector *utils.Collector, notifier *utils.Notifier) *CollectionWorker {
	return &CollectionWorker{
		DB:        db,
		Collector: collector,
		Notifier:  notifier,
		Logger:    logrus.WithField("worker", "collection"),
	}
}

func (cw *CollectionWorker) Start(ctx context.Context) {
	cw.Logger.Info("collection worker started")

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			cw.Logger.Info("collection worker shutting down")
			return
		case <-ticker.C:
			cw.processDueSources()
		}
	}
}

func (cw *CollectionWorker) processDueSources() {
	var sources []models.DataSource
	if err := cw.DB.Where("status = ? AND next_run <= ?", models.SourceActive, time.Now()).
		Find(&sources).Error; err != nil {
		cw.Logger.WithError(err).Error("failed to fetch due data sources")
		return
	}

	for i := range sources {
		if _, err := cw.RunSource(&sources[i]); err != nil {
			cw.Logger.WithError(err).WithField("source", sources[i].Name).Error("scheduled collection failed")
		}
	}
}

// RunSource executes one collection pass: collect records, score and insert
// the new prospects, fold the outcome into the source's run statistics. The
// run outcome is always recorded, success or not.
func (cw *CollectionWorker) RunSource(source *models.DataSource) (int, error) {
	cw.Logger.WithFields(logrus.Fields{
		"source": source.Name,
		"type":   source.Type,
	}).Info("collecting data")

	prospects, collectErr := cw.Collector.Collect(source)

	recordsCollected := 0
	if collectErr == nil {
		for i := range prospects {
			p := &prospects[i]

			// Ingested records can collide with existing prospects; skip
			// duplicates rather than failing the run
			var existing models.Prospect
			if err := cw.DB.Where("email = ?", p.Email).First(&existing).Error; err == nil {
				continue
			}

			p.CalculateScore()
			if err := cw.DB.Create(p).Error; err != nil {
				cw.Logger.WithError(err).WithField("email", p.Email).Warn("failed to save collected prospect")
				continue
			}
			recordsCollected++
		}
	}

	success := collectErr == nil
	source.UpdateAfterRun(recordsCollected, success)
	if !success {
		source.Status = models.SourceError
		source.LastError = collectErr.Error()
		sentry.CaptureException(collectErr)
	} else {
		source.LastError = ""
	}

	if err := cw.DB.Save(source).Error; err != nil {
		cw.Logger.WithError(err).WithField("source", source.Name).Error("failed to record run statistics")
		return recordsCollected, err
	}

	if success {
		go func(s models.DataSource, n int) {
			if err := cw.Notifier.NotifyDataCollectionComplete(&s, n); err != nil {
				cw.Logger.WithError(err).Warn("failed to send collection notification")
			}
		}(*source, recordsCollected)
	}

	return recordsCollected, collectErr
}
