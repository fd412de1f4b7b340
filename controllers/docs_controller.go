package controllers

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
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

// maxFilesPerDocType bounds how many files one document kind may hold
const maxFilesPerDocType = 3

// CreateDocsSubmissionRequest represents the docs sub-flow creation payload
type CreateDocsSubmissionRequest struct {
	BrandName             string   `json:"brandName"`
	BusinessType          string   `json:"businessType"`
	ContactEmail          string   `json:"contactEmail"`
	ContactPhone          string   `json:"contactPhone"`
	Categories            []string `json:"categories"`
	CategoriesDescription string   `json:"categoriesDescription"`
}

// CreateDocsSubmission handles POST /api/docs/create
func CreateDocsSubmission(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateDocsSubmissionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data")
			return
		}

		brandName := strings.TrimSpace(req.BrandName)
		switch {
		case brandName == "":
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Brand name is required")
			return
		case req.BusinessType == "":
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Business type is required")
			return
		case req.ContactEmail == "":
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Contact email is required")
			return
		case req.ContactPhone == "":
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Contact phone is required")
			return
		case len(req.Categories) == 0:
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Categories are required")
			return
		}

		submission := models.Submission{
			ID:           uuid.NewString(),
			BrandName:    brandName,
			BusinessType: req.BusinessType,
			ContactEmail: req.ContactEmail,
			ContactPhone: req.ContactPhone,
			AccessToken:  uuid.NewString(),
			Status:       models.StatusDraft,
			CreatedAt:    time.Now().UTC(),
		}

		// The docs flow prepares the menu-flow directories as well so the
		// merchant can continue into the menu journey on the same record
		subDir := utils.SubmissionDir(cfg.DataDir, submission.ID)
		for _, dir := range []string{utils.DocsDir, utils.LogoDir, utils.ImagesDir, utils.MenuDir, utils.PackageDir} {
			if err := utils.EnsureDir(filepath.Join(subDir, dir)); err != nil {
				log.Printf("Docs create error: %v", err)
				respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create submission")
				return
			}
		}

		meta := &models.Meta{
			BrandName:             brandName,
			BusinessType:          req.BusinessType,
			ContactEmail:          req.ContactEmail,
			ContactPhone:          req.ContactPhone,
			Categories:            req.Categories,
			CategoriesDescription: req.CategoriesDescription,
			CreatedAt:             submission.CreatedAt.Format(time.RFC3339),
		}
		if err := utils.WriteMeta(subDir, meta); err != nil {
			log.Printf("Docs create error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create submission")
			return
		}

		if err := config.GetDB().Create(&submission).Error; err != nil {
			os.RemoveAll(subDir)
			log.Printf("Docs create error: %v", err)
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

// GetDocsInfo handles GET /api/docs/info
func GetDocsInfo(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		submission, ok := middleware.GetSubmission(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Submission context missing")
			return
		}

		subDir := utils.SubmissionDir(cfg.DataDir, submission.ID)
		meta, err := utils.ReadMeta(subDir)
		if err != nil {
			if os.IsNotExist(err) {
				respondError(c, http.StatusNotFound, "NOT_FOUND", "Submission not found")
				return
			}
			log.Printf("Docs info error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get info")
			return
		}

		docs, err := services.ListUploadedDocs(subDir)
		if err != nil {
			log.Printf("Docs info error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get info")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"brandName":    meta.BrandName,
				"businessType": meta.BusinessType,
				"contactEmail": meta.ContactEmail,
				"contactPhone": meta.ContactPhone,
				"uploadedDocs": services.GroupDocsByType(docs),
			},
		})
	}
}

// UploadDocuments handles POST /api/docs/upload. Files are stored as
// <DocType>_<Brand>_<N><ext> with N continuing from the highest existing
// sequence, capped at three files per type.
func UploadDocuments(cfg *config.Config) gin.HandlerFunc {
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
		files := form.File["documents"]
		if len(files) == 0 {
			respondError(c, http.StatusBadRequest, "NO_FILE", "No files uploaded")
			return
		}

		docType := c.PostForm("docType")
		if docType == "" {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "docType is required")
			return
		}
		if !models.IsRecognizedDocType(docType) {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown document type")
			return
		}

		for _, fileHeader := range files {
			if err := utils.ValidateDocumentUpload(fileHeader); err != nil {
				respondUploadError(c, err)
				return
			}
		}

		subDir := utils.SubmissionDir(cfg.DataDir, submission.ID)
		docsDir := filepath.Join(subDir, utils.DocsDir)
		existing, err := utils.ListFiles(docsDir)
		if err != nil {
			log.Printf("Upload document error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload documents")
			return
		}

		maxN := 0
		typeCount := 0
		for _, f := range existing {
			if !strings.HasPrefix(f, docType+"_") {
				continue
			}
			typeCount++
			// Stored names end with _<N>.<ext>
			base := strings.TrimSuffix(f, filepath.Ext(f))
			if idx := strings.LastIndex(base, "_"); idx >= 0 {
				if n, convErr := strconv.Atoi(base[idx+1:]); convErr == nil && n > maxN {
					maxN = n
				}
			}
		}

		if typeCount+len(files) > maxFilesPerDocType {
			respondError(c, http.StatusBadRequest, "TOO_MANY_FILES",
				fmt.Sprintf("Maximum %d files allowed per document type.", maxFilesPerDocType))
			return
		}

		meta, err := utils.ReadMeta(subDir)
		if err != nil {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Submission meta not found")
			return
		}
		safeBrand := utils.SafeBrandName(meta.BrandName)

		stored := make([]string, 0, len(files))
		for i, fileHeader := range files {
			ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
			filename := fmt.Sprintf("%s_%s_%d%s", docType, safeBrand, maxN+1+i, ext)
			if err := utils.SaveUploadedFile(fileHeader, filepath.Join(docsDir, filename)); err != nil {
				// Roll back files stored earlier in this batch
				for _, name := range stored {
					os.Remove(filepath.Join(docsDir, name))
				}
				log.Printf("Upload document error: %v", err)
				respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload documents")
				return
			}
			stored = append(stored, filename)
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"docType":   docType,
				"filenames": stored,
			},
		})
	}
}

// PreviewDocument handles GET /api/docs/preview/:filename
func PreviewDocument(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		submission, ok := middleware.GetSubmission(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Submission context missing")
			return
		}

		filename := filepath.Base(c.Param("filename"))
		filePath := filepath.Join(utils.SubmissionDir(cfg.DataDir, submission.ID), utils.DocsDir, filename)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Document not found")
			return
		}
		c.File(filePath)
	}
}

// DeleteDocumentRequest identifies the stored file to remove
type DeleteDocumentRequest struct {
	Filename string `json:"filename"`
}

// DeleteDocument handles DELETE /api/docs/delete. Deleting never touches
// sibling files; a missing file is a plain 404.
func DeleteDocument(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		submission, ok := middleware.GetSubmission(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Submission context missing")
			return
		}

		var req DeleteDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Filename == "" {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "filename is required")
			return
		}

		filename := filepath.Base(req.Filename)
		filePath := filepath.Join(utils.SubmissionDir(cfg.DataDir, submission.ID), utils.DocsDir, filename)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "File not found")
			return
		}
		if err := os.Remove(filePath); err != nil {
			log.Printf("Delete document error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete document")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"deleted": true, "filename": filename},
		})
	}
}

// SubmitDocuments handles POST /api/docs/submit: verifies the business
// type's required document kinds are all present, builds the documents
// package, issues the docs download token and fires the notification.
func SubmitDocuments(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		submission, ok := middleware.GetSubmission(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Submission context missing")
			return
		}

		subDir := utils.SubmissionDir(cfg.DataDir, submission.ID)
		meta, err := utils.ReadMeta(subDir)
		if err != nil {
			log.Printf("Submit docs error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process documents submission")
			return
		}

		docs, err := services.ListUploadedDocs(subDir)
		if err != nil {
			log.Printf("Submit docs error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process documents submission")
			return
		}

		if missing := services.MissingRequiredDocs(meta.BusinessType, docs); len(missing) > 0 {
			respondError(c, http.StatusBadRequest, "MISSING_DOCUMENTS",
				fmt.Sprintf("Missing required documents: %s", strings.Join(missing, ", ")))
			return
		}

		if err := services.BuildDocsPackage(subDir, meta, docs); err != nil {
			log.Printf("Submit docs error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process documents submission")
			return
		}

		docsToken, err := services.GenerateDocsToken()
		if err != nil {
			log.Printf("Submit docs error: %v", err)
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process documents submission")
			return
		}
		if err := config.GetDB().Model(submission).Update("docs_token", docsToken).Error; err != nil {
			log.Printf("Submit docs error: %v", err)
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to process documents submission")
			return
		}

		// Fire-and-forget: notification failures never affect the response
		params := services.DocsEmailParams{
			BrandName:             meta.BrandName,
			BusinessType:          meta.BusinessType,
			ContactEmail:          meta.ContactEmail,
			ContactPhone:          meta.ContactPhone,
			Categories:            meta.Categories,
			CategoriesDescription: meta.CategoriesDescription,
			DocsList:              docs,
			DocsToken:             docsToken,
		}
		go func() {
			if err := services.GetEmailService().SendDocsSubmitted(params); err != nil {
				log.Printf("[Email] Non-blocking error: failed to send docs email: %v", err)
			}
		}()

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"message": "Documents successfully submitted"},
		})
	}
}
