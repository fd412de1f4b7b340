package controllers

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/menuportal/onboarding-api/config"
	"github.com/menuportal/onboarding-api/middleware"
	"github.com/menuportal/onboarding-api/models"
	"github.com/menuportal/onboarding-api/services"
	"github.com/menuportal/onboarding-api/utils"
)

// DownloadPackageZip handles GET /download/:submissionId/package.zip.
// The first successful download ever stamps the meta snapshot and fires a
// non-blocking notification.
func DownloadPackageZip(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		submission, ok := middleware.GetSubmission(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Submission context missing")
			return
		}

		subDir := utils.SubmissionDir(cfg.DataDir, submission.ID)
		zipPath, zipName := newestWithExt(filepath.Join(subDir, utils.PackageDir), ".zip")
		if zipPath == "" {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Package not found")
			return
		}

		// One-time download notification, keyed on the meta snapshot
		if meta, err := utils.ReadMeta(subDir); err == nil && meta.ZipDownloadedAt == "" {
			meta.ZipDownloadedAt = time.Now().UTC().Format(time.RFC3339)
			if err := utils.WriteMeta(subDir, meta); err != nil {
				log.Printf("Download ZIP: failed to stamp meta for %s: %v", submission.ID, err)
			} else {
				itemCount := len(meta.MenuItems)
				brandName := meta.BrandName
				submissionID := submission.ID
				accessToken := submission.AccessToken
				go func() {
					if err := services.GetEmailService().SendZipDownloaded(brandName, itemCount, submissionID, accessToken); err != nil {
						log.Printf("[Email] Non-blocking error: ZIP download email failed: %v", err)
					}
				}()
				log.Printf("ZIP downloaded for first time: email triggered for %s (%s)", brandName, submissionID)
			}
		}

		c.FileAttachment(zipPath, zipName)
	}
}

// DownloadMenuExcel handles GET /download/:submissionId/menu.xlsx, serving
// the most recently generated spreadsheet under its stored name.
func DownloadMenuExcel(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		submission, ok := middleware.GetSubmission(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Submission context missing")
			return
		}

		menuDir := filepath.Join(utils.SubmissionDir(cfg.DataDir, submission.ID), utils.MenuDir)
		excelPath, excelName := newestWithExt(menuDir, ".xlsx")
		if excelPath == "" {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Excel file not found")
			return
		}

		c.FileAttachment(excelPath, excelName)
	}
}

// ServeProductImage handles GET /download/:submissionId/image/:filename
func ServeProductImage(cfg *config.Config) gin.HandlerFunc {
	return serveSubmissionFile(cfg, utils.ImagesDir, "Image not found")
}

// ServeLogo handles GET /download/:submissionId/logo/:filename
func ServeLogo(cfg *config.Config) gin.HandlerFunc {
	return serveSubmissionFile(cfg, utils.LogoDir, "Logo not found")
}

func serveSubmissionFile(cfg *config.Config, dir, notFoundMessage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		submission, ok := middleware.GetSubmission(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Submission context missing")
			return
		}

		filename := filepath.Base(c.Param("filename"))
		filePath := filepath.Join(utils.SubmissionDir(cfg.DataDir, submission.ID), dir, filename)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", notFoundMessage)
			return
		}
		c.File(filePath)
	}
}

// DownloadDocsPackage handles GET /dl/docs/:token — the public documents
// download where the token is the only credential.
func DownloadDocsPackage(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		var submission models.Submission
		if err := config.GetDB().Where("docs_token = ?", token).First(&submission).Error; err != nil {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Invalid or expired download link")
			return
		}

		pkgPath := filepath.Join(utils.SubmissionDir(cfg.DataDir, submission.ID), utils.DocsDir, services.DocsPackageFilename)
		if _, err := os.Stat(pkgPath); os.IsNotExist(err) {
			respondError(c, http.StatusNotFound, "NOT_FOUND",
				"Document package not found. It may have been deleted by the retention policy")
			return
		}

		c.FileAttachment(pkgPath, services.DocsPackageFilename)
	}
}

// newestWithExt returns the path and name of the most recently modified
// file with the given extension, or empty strings when there is none.
func newestWithExt(dir, ext string) (string, string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", ""
	}
	var newestName string
	var newestTime time.Time
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newestName == "" || info.ModTime().After(newestTime) {
			newestName = e.Name()
			newestTime = info.ModTime()
		}
	}
	if newestName == "" {
		return "", ""
	}
	return filepath.Join(dir, newestName), newestName
}
