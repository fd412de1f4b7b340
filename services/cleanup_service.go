package services

import (
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/menuportal/onboarding-api/config"
	"github.com/menuportal/onboarding-api/models"
	"github.com/menuportal/onboarding-api/utils"
)

// RunCleanup deletes every submission older than the retention window:
// first the file tree, then the database row. Errors on individual
// submissions are logged and skipped so a sweep never dies halfway, and a
// concurrent sweep deleting the same rows is harmless.
func RunCleanup(cfg *config.Config, db *gorm.DB) int {
	// CreatedAt values are stored in UTC, so the cutoff must be too
	cutoff := time.Now().UTC().Add(-time.Duration(cfg.RetentionHours) * time.Hour)
	log.Printf("[Cleanup] Running cleanup. Deleting submissions older than %dh (before %s)",
		cfg.RetentionHours, cutoff.Format(time.RFC3339))

	var expired []models.Submission
	if err := db.Select("id").Where("created_at < ?", cutoff).Find(&expired).Error; err != nil {
		log.Printf("[Cleanup] Failed to query expired submissions: %v", err)
		return 0
	}

	deleted := 0
	for _, sub := range expired {
		subDir := utils.SubmissionDir(cfg.DataDir, sub.ID)
		if err := os.RemoveAll(subDir); err != nil {
			log.Printf("[Cleanup] Error deleting files for %s: %v", sub.ID, err)
			continue
		}
		if err := db.Delete(&models.Submission{}, "id = ?", sub.ID).Error; err != nil {
			log.Printf("[Cleanup] Error deleting row for %s: %v", sub.ID, err)
			continue
		}
		deleted++
		log.Printf("[Cleanup] Deleted submission %s", sub.ID)
	}

	log.Printf("[Cleanup] Done. Deleted %d submissions.", deleted)
	return deleted
}

// StartCleanupScheduler registers the hourly retention sweep and starts the
// scheduler. The returned cron can be stopped on shutdown.
func StartCleanupScheduler(cfg *config.Config) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc("0 * * * *", func() {
		log.Println("[Cron] Running scheduled cleanup...")
		RunCleanup(cfg, config.GetDB())
	})
	if err != nil {
		log.Printf("[Cron] Failed to schedule cleanup: %v", err)
		return c
	}
	c.Start()
	return c
}
