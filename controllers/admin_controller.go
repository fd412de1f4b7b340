package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/menuportal/onboarding-api/config"
	"github.com/menuportal/onboarding-api/models"
	"github.com/menuportal/onboarding-api/services"
)

// adminListLimit caps the submissions listing
const adminListLimit = 20

// ListSubmissions handles GET /admin/submissions — the most recent
// submissions with their computed expiry and, once submitted, the
// capability download links.
func ListSubmissions(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var submissions []models.Submission
		if err := config.GetDB().Order("created_at DESC").Limit(adminListLimit).Find(&submissions).Error; err != nil {
			log.Printf("Admin list error: %v", err)
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list submissions")
			return
		}

		result := make([]gin.H, 0, len(submissions))
		for i := range submissions {
			s := &submissions[i]
			entry := gin.H{
				"id":           s.ID,
				"brandName":    s.BrandName,
				"businessType": s.BusinessType,
				"status":       s.Status,
				"createdAt":    s.CreatedAt.Format(time.RFC3339),
				"expiresAt":    s.ExpiresAt(cfg.RetentionHours).Format(time.RFC3339),
			}
			if s.Status == models.StatusSubmitted {
				entry["zipDownloadUrl"] = DownloadURL(s, "package.zip")
				entry["excelDownloadUrl"] = DownloadURL(s, "menu.xlsx")
			} else {
				entry["zipDownloadUrl"] = nil
				entry["excelDownloadUrl"] = nil
			}
			result = append(result, entry)
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
	}
}

// TriggerCleanup handles POST /admin/cleanup — an immediate retention sweep
func TriggerCleanup(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted := services.RunCleanup(cfg, config.GetDB())
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"deletedCount": deleted},
		})
	}
}
