package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/menuportal/onboarding-api/config"
	"github.com/menuportal/onboarding-api/models"
	"github.com/menuportal/onboarding-api/utils"
)

func setupCleanupTest(t *testing.T) (*config.Config, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Submission{}))
	config.SetDB(db)

	cfg := &config.Config{
		DataDir:        t.TempDir(),
		RetentionHours: 72,
	}
	return cfg, db
}

func createAgedSubmission(t *testing.T, cfg *config.Config, db *gorm.DB, id string, age time.Duration) {
	t.Helper()

	sub := models.Submission{
		ID:          id,
		BrandName:   "Brand " + id,
		AccessToken: "token-" + id,
		Status:      models.StatusDraft,
		CreatedAt:   time.Now().UTC().Add(-age),
	}
	require.NoError(t, db.Create(&sub).Error)

	subDir := utils.SubmissionDir(cfg.DataDir, id)
	require.NoError(t, utils.EnsureDir(filepath.Join(subDir, utils.ImagesDir)))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "meta.json"), []byte("{}"), 0644))
}

func TestRunCleanup_DeletesOnlyExpired(t *testing.T) {
	cfg, db := setupCleanupTest(t)

	createAgedSubmission(t, cfg, db, "expired", 73*time.Hour)
	createAgedSubmission(t, cfg, db, "fresh", 71*time.Hour)

	deleted := RunCleanup(cfg, db)
	assert.Equal(t, 1, deleted)

	// Expired: row and tree both gone
	var count int64
	db.Model(&models.Submission{}).Where("id = ?", "expired").Count(&count)
	assert.Zero(t, count)
	_, err := os.Stat(utils.SubmissionDir(cfg.DataDir, "expired"))
	assert.True(t, os.IsNotExist(err))

	// Fresh: untouched
	db.Model(&models.Submission{}).Where("id = ?", "fresh").Count(&count)
	assert.EqualValues(t, 1, count)
	_, err = os.Stat(utils.SubmissionDir(cfg.DataDir, "fresh"))
	assert.NoError(t, err)
}

func TestRunCleanup_CutoffIsTimezoneIndependent(t *testing.T) {
	// A host clock east of UTC must not shrink the retention window
	originalLocal := time.Local
	time.Local = time.FixedZone("UTC+3", 3*60*60)
	t.Cleanup(func() { time.Local = originalLocal })

	cfg, db := setupCleanupTest(t)
	createAgedSubmission(t, cfg, db, "inside-window", 71*time.Hour)
	createAgedSubmission(t, cfg, db, "outside-window", 73*time.Hour)

	assert.Equal(t, 1, RunCleanup(cfg, db))

	var count int64
	db.Model(&models.Submission{}).Where("id = ?", "inside-window").Count(&count)
	assert.EqualValues(t, 1, count, "a submission inside the retention window survives")
	db.Model(&models.Submission{}).Where("id = ?", "outside-window").Count(&count)
	assert.Zero(t, count)
}

func TestRunCleanup_SecondRunDeletesNothing(t *testing.T) {
	cfg, db := setupCleanupTest(t)
	createAgedSubmission(t, cfg, db, "old", 100*time.Hour)

	assert.Equal(t, 1, RunCleanup(cfg, db))
	assert.Equal(t, 0, RunCleanup(cfg, db))
}

func TestRunCleanup_MissingDirectoryIsNotFatal(t *testing.T) {
	cfg, db := setupCleanupTest(t)

	// Row exists but the file tree was already removed
	sub := models.Submission{
		ID:          "ghost",
		BrandName:   "Ghost",
		AccessToken: "token-ghost",
		Status:      models.StatusDraft,
		CreatedAt:   time.Now().UTC().Add(-100 * time.Hour),
	}
	require.NoError(t, db.Create(&sub).Error)

	assert.Equal(t, 1, RunCleanup(cfg, db))

	var count int64
	db.Model(&models.Submission{}).Count(&count)
	assert.Zero(t, count)
}

func TestRunCleanup_EmptyDatabase(t *testing.T) {
	cfg, db := setupCleanupTest(t)
	assert.Equal(t, 0, RunCleanup(cfg, db))
}
