package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/menuportal/onboarding-api/config"
	"github.com/menuportal/onboarding-api/middleware"
	"github.com/menuportal/onboarding-api/models"
	"github.com/menuportal/onboarding-api/services"
	"github.com/menuportal/onboarding-api/utils"
)

// maxImagesPerBatch bounds a single product-image upload call
const maxImagesPerBatch = 50

// CreateSubmissionRequest represents the request body for creating a
// menu-flow submission
type CreateSubmissionRequest struct {
	BrandName    string `json:"brandName"`
	BusinessType string `json:"businessType"`
}

// CreateSubmission handles POST /api/submission/create
func CreateSubmission(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateSubmissionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
			return
		}

		brandName := strings.TrimSpace(req.BrandName)
		if brandName == "" {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Brand name is required")
			return
		}
		businessType := req.BusinessType
		if businessType == "" {
			businessType = "other"
		}

		submission := models.Submission{
			ID:           uuid.NewString(),
			BrandName:    brandName,
			BusinessType: businessType,
			AccessToken:  uuid.NewString(),
			Status:       models.StatusDraft,
			CreatedAt:    time.Now().UTC(),
		}

		subDir := utils.SubmissionDir(cfg.DataDir, submission.ID)
		for _, dir := range []string{utils.LogoDir, utils.ImagesDir, utils.MenuDir, utils.PackageDir} {
			if err := utils.EnsureDir(filepath.Join(subDir, dir)); err != nil {
				log.Printf("Create error: %v", err)
				respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create submission")
				return
			}
		}

		meta := &models.Meta{
			BrandName:    brandName,
			BusinessType: businessType,
			CreatedAt:    submission.CreatedAt.Format(time.RFC3339),
		}
		if err := utils.WriteMeta(subDir, meta); err != nil {
			log.Printf("Create error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create submission")
			return
		}

		if err := config.GetDB().Create(&submission).Error; err != nil {
			os.RemoveAll(subDir)
			log.Printf("Create error: %v", err)
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create submission")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"submissionId": submission.ID,
				"accessToken":  submission.AccessToken,
			},
		})
	}
}

// UploadLogo handles POST /api/submission/upload-logo. The logo is singular:
// any previously uploaded logo file is removed before the new one lands.
func UploadLogo(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		submission, ok := middleware.GetSubmission(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Submission context missing")
			return
		}

		fileHeader, err := c.FormFile("logo")
		if err != nil {
			respondError(c, http.StatusBadRequest, "NO_FILE", "No file uploaded")
			return
		}
		if err := utils.ValidateImageUpload(fileHeader); err != nil {
			respondUploadError(c, err)
			return
		}

		logoDir := filepath.Join(utils.SubmissionDir(cfg.DataDir, submission.ID), utils.LogoDir)
		existing, err := utils.ListFiles(logoDir)
		if err != nil {
			log.Printf("Upload logo error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload logo")
			return
		}
		for _, f := range existing {
			if err := os.Remove(filepath.Join(logoDir, f)); err != nil {
				log.Printf("Upload logo error: %v", err)
				respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload logo")
				return
			}
		}

		filename := "logo" + filepath.Ext(fileHeader.Filename)
		destPath := filepath.Join(logoDir, filename)
		if err := utils.SaveUploadedFile(fileHeader, destPath); err != nil {
			log.Printf("Upload logo error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload logo")
			return
		}

		width, height := utils.ProbeImageDimensions(destPath)
		response := gin.H{
			"filename": filename,
			"width":    width,
			"height":   height,
		}
		if warning := utils.DimensionWarning(width, height); warning != "" {
			response["warning"] = warning
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": response})
	}
}

// UploadImages handles POST /api/submission/upload-images. Each file is
// validated independently; files below the minimum dimensions are rejected
// outright and removed, never stored.
func UploadImages(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		submission, ok := middleware.GetSubmission(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Submission context missing")
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			respondError(c, http.StatusBadRequest, "NO_FILE", "No files uploaded")
			return
		}
		files := form.File["images"]
		if len(files) == 0 {
			respondError(c, http.StatusBadRequest, "NO_FILE", "No files uploaded")
			return
		}
		if len(files) > maxImagesPerBatch {
			respondError(c, http.StatusBadRequest, "TOO_MANY_FILES",
				fmt.Sprintf("Maximum %d images per upload", maxImagesPerBatch))
			return
		}

		imgDir := filepath.Join(utils.SubmissionDir(cfg.DataDir, submission.ID), utils.ImagesDir)
		results := make([]gin.H, 0, len(files))

		for _, fileHeader := range files {
			if err := utils.ValidateImageUpload(fileHeader); err != nil {
				results = append(results, gin.H{
					"originalName": fileHeader.Filename,
					"error":        err.Error(),
				})
				continue
			}

			filename := utils.UniqueImageName(fileHeader.Filename)
			destPath := filepath.Join(imgDir, filename)
			if err := utils.SaveUploadedFile(fileHeader, destPath); err != nil {
				log.Printf("Upload images error: %v", err)
				results = append(results, gin.H{
					"originalName": fileHeader.Filename,
					"error":        "Failed to store file",
				})
				continue
			}

			width, height := utils.ProbeImageDimensions(destPath)
			if width == 0 && height == 0 {
				// Formats the decoders don't know (webp etc.) pass the MIME
				// check but can't be probed; report that, not a fake 0x0
				os.Remove(destPath)
				results = append(results, gin.H{
					"originalName": fileHeader.Filename,
					"error":        "Could not read image dimensions",
				})
				continue
			}
			if width < utils.MinProductImageDim || height < utils.MinProductImageDim {
				// Undersized product images never make it into the package
				os.Remove(destPath)
				results = append(results, gin.H{
					"originalName": fileHeader.Filename,
					"error": fmt.Sprintf("Image resolution (%dx%d) is below required %dx%d",
						width, height, utils.MinProductImageDim, utils.MinProductImageDim),
				})
				continue
			}

			results = append(results, gin.H{
				"filename":     filename,
				"originalName": fileHeader.Filename,
				"width":        width,
				"height":       height,
			})
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": results})
	}
}

// ListImages handles GET /api/submission/images
func ListImages(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		submission, ok := middleware.GetSubmission(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Submission context missing")
			return
		}

		imgDir := filepath.Join(utils.SubmissionDir(cfg.DataDir, submission.ID), utils.ImagesDir)
		files, err := utils.ListFiles(imgDir)
		if err != nil {
			log.Printf("List images error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list images")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": files})
	}
}

// GetSubmissionInfo handles GET /api/submission/info
func GetSubmissionInfo(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		submission, ok := middleware.GetSubmission(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Submission context missing")
			return
		}

		subDir := utils.SubmissionDir(cfg.DataDir, submission.ID)
		logoFiles, err := utils.ListFiles(filepath.Join(subDir, utils.LogoDir))
		if err != nil {
			log.Printf("Info error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get submission info")
			return
		}
		imageFiles, err := utils.ListFiles(filepath.Join(subDir, utils.ImagesDir))
		if err != nil {
			log.Printf("Info error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get submission info")
			return
		}

		items, err := submission.MenuItemList()
		if err != nil {
			log.Printf("Info error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get submission info")
			return
		}
		location, err := submission.Location()
		if err != nil {
			log.Printf("Info error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get submission info")
			return
		}

		var logoFilename interface{}
		if len(logoFiles) > 0 {
			logoFilename = logoFiles[0]
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"brandName":       submission.BrandName,
				"businessType":    submission.BusinessType,
				"createdAt":       submission.CreatedAt.Format(time.RFC3339),
				"logoUploaded":    len(logoFiles) > 0,
				"logoFilename":    logoFilename,
				"imageCount":      len(imageFiles),
				"menuItems":       items,
				"locationDetails": location,
				"status":          submission.Status,
			},
		})
	}
}

// SaveMenuRequest represents the save-menu payload. A pointer distinguishes
// a missing items field from an empty list; saving an empty list is valid.
type SaveMenuRequest struct {
	Items *[]models.MenuItem `json:"items"`
}

// SaveMenu handles POST /api/submission/save-menu. The stored list is
// wholesale-replaced; this is the draft-autosave primitive, so no
// per-item validation happens here.
func SaveMenu(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		submission, ok := middleware.GetSubmission(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Submission context missing")
			return
		}

		var req SaveMenuRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Items == nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "items must be an array")
			return
		}
		items := *req.Items

		if err := submission.SetMenuItems(items); err != nil {
			log.Printf("Save menu error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save menu")
			return
		}
		if err := config.GetDB().Model(submission).Update("menu_items", submission.MenuItems).Error; err != nil {
			log.Printf("Save menu error: %v", err)
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save menu")
			return
		}

		if err := updateMeta(cfg, submission.ID, func(meta *models.Meta) {
			meta.MenuItems = items
		}); err != nil {
			log.Printf("Save menu error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save menu")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"count": len(items)}})
	}
}

// SaveLocation handles POST /api/submission/save-location, wholesale
// replacing the stored location block.
func SaveLocation(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		submission, ok := middleware.GetSubmission(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Submission context missing")
			return
		}

		var loc models.Location
		if err := c.ShouldBindJSON(&loc); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
			return
		}

		if err := submission.SetLocation(&loc); err != nil {
			log.Printf("Save location error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save location details")
			return
		}
		if err := config.GetDB().Model(submission).Update("location_details", submission.LocationDetails).Error; err != nil {
			log.Printf("Save location error: %v", err)
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save location details")
			return
		}

		if err := updateMeta(cfg, submission.ID, func(meta *models.Meta) {
			meta.LocationDetails = &loc
		}); err != nil {
			log.Printf("Save location error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save location details")
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// SubmitSubmission handles POST /api/submission/submit: validates the menu
// against the strict readiness rule, regenerates the spreadsheet and ZIP,
// and transitions the submission to submitted. Repeat calls regenerate the
// artifacts; the original submission timestamp is preserved.
func SubmitSubmission(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		submission, ok := middleware.GetSubmission(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Submission context missing")
			return
		}

		items, err := submission.MenuItemList()
		if err != nil {
			log.Printf("Submit error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate files")
			return
		}

		if invalid := services.ValidateReadyToSubmit(items); len(invalid) > 0 {
			positions := make([]string, len(invalid))
			for i, p := range invalid {
				positions[i] = fmt.Sprintf("%d", p)
			}
			respondError(c, http.StatusBadRequest, "INCOMPLETE_ITEMS",
				fmt.Sprintf("Menu items missing image, name or price at positions: %s", strings.Join(positions, ", ")))
			return
		}

		_, err = services.PackageSubmission(cfg.DataDir, submission)
		if err != nil {
			log.Printf("Submit error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate files")
			return
		}

		updates := map[string]interface{}{"status": models.StatusSubmitted}
		if submission.SubmittedAt == nil {
			now := time.Now().UTC()
			submission.SubmittedAt = &now
			updates["submitted_at"] = now
		}
		if err := config.GetDB().Model(submission).Updates(updates).Error; err != nil {
			log.Printf("Submit error: %v", err)
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update submission status")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"zipDownloadUrl":   DownloadURL(submission, "package.zip"),
				"excelDownloadUrl": DownloadURL(submission, "menu.xlsx"),
			},
		})
	}
}

// DownloadURL builds a capability URL for a submission artifact; the access
// token rides in the query string by design so the link works without a
// separate login.
func DownloadURL(submission *models.Submission, artifact string) string {
	return fmt.Sprintf("/download/%s/%s?accessToken=%s", submission.ID, artifact, submission.AccessToken)
}

// updateMeta applies a mutation to a submission's meta.json snapshot
func updateMeta(cfg *config.Config, submissionID string, mutate func(*models.Meta)) error {
	subDir := utils.SubmissionDir(cfg.DataDir, submissionID)
	meta, err := utils.ReadMeta(subDir)
	if err != nil {
		return err
	}
	mutate(meta)
	return utils.WriteMeta(subDir, meta)
}

// respondError writes the standard error envelope
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondUploadError maps upload validation failures to client errors,
// using 413 for oversized payloads.
func respondUploadError(c *gin.Context, err error) {
	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		status := http.StatusBadRequest
		if uploadErr.Code == "FILE_TOO_LARGE" {
			status = http.StatusRequestEntityTooLarge
		}
		respondError(c, status, uploadErr.Code, uploadErr.Message)
		return
	}
	respondError(c, http.StatusBadRequest, "UPLOAD_ERROR", err.Error())
}
