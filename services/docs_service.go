package services

import (
	"archive/zip"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/menuportal/onboarding-api/models"
	"github.com/menuportal/onboarding-api/utils"
)

// DocsPackageFilename is the fixed name of the documents archive
const DocsPackageFilename = "docs-package.zip"

// ListUploadedDocs returns the stored document filenames for a submission,
// excluding the generated package itself.
func ListUploadedDocs(subDir string) ([]string, error) {
	files, err := utils.ListFiles(filepath.Join(subDir, utils.DocsDir))
	if err != nil {
		return nil, err
	}
	docs := make([]string, 0, len(files))
	for _, f := range files {
		if f == DocsPackageFilename {
			continue
		}
		docs = append(docs, f)
	}
	return docs, nil
}

// GroupDocsByType buckets stored document filenames by their recognized
// document type prefix. Unrecognized files are ignored.
func GroupDocsByType(docs []string) map[string][]string {
	grouped := make(map[string][]string)
	for _, f := range docs {
		if dt := models.DocTypeOf(f); dt != "" {
			grouped[dt] = append(grouped[dt], f)
		}
	}
	return grouped
}

// MissingRequiredDocs returns the document types the business type requires
// that have no uploaded file yet, in requirement order.
func MissingRequiredDocs(businessType string, docs []string) []string {
	grouped := GroupDocsByType(docs)
	var missing []string
	for _, required := range models.RequiredDocTypes(businessType) {
		if len(grouped[required]) == 0 {
			missing = append(missing, required)
		}
	}
	return missing
}

// BuildDocsPackage zips every uploaded document plus an info.txt summary
// into docs/docs-package.zip. Written through a temp file; a failed build
// leaves no partial archive.
func BuildDocsPackage(subDir string, meta *models.Meta, docs []string) (err error) {
	docsDir := filepath.Join(subDir, utils.DocsDir)
	zipPath := filepath.Join(docsDir, DocsPackageFilename)
	tmpPath := zipPath + ".tmp"

	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create docs package: %w", err)
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(out)
	for _, f := range docs {
		if err = addFileToZip(zw, filepath.Join(docsDir, f), f); err != nil {
			return err
		}
	}

	w, err := zw.Create("info.txt")
	if err != nil {
		return err
	}
	if _, err = w.Write([]byte(docsInfoText(meta))); err != nil {
		return err
	}

	if err = zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize docs package: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("failed to close docs package: %w", err)
	}
	return os.Rename(tmpPath, zipPath)
}

func docsInfoText(meta *models.Meta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Brand Name: %s\n", meta.BrandName)
	fmt.Fprintf(&b, "Business Type: %s\n", meta.BusinessType)
	fmt.Fprintf(&b, "Contact Email: %s\n", meta.ContactEmail)
	fmt.Fprintf(&b, "Contact Phone: %s\n", meta.ContactPhone)
	fmt.Fprintf(&b, "Product Categories: %s\n", strings.Join(meta.Categories, ", "))
	if meta.CategoriesDescription != "" {
		fmt.Fprintf(&b, "\nCategory Description:\n%s\n", meta.CategoriesDescription)
	}
	return b.String()
}

// GenerateDocsToken returns the 32-byte hex secret that gates the public
// documents download link.
func GenerateDocsToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate docs token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
