package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/menuportal/onboarding-api/models"
)

// Per-submission directory names
const (
	LogoDir    = "logo"
	ImagesDir  = "product_images"
	MenuDir    = "menu"
	PackageDir = "package"
	DocsDir    = "docs"
	MetaFile   = "meta.json"
)

// SubmissionDir returns the root directory of a submission's file tree
func SubmissionDir(dataDir, submissionID string) string {
	return filepath.Join(dataDir, submissionID)
}

// EnsureDir creates a directory (and parents) if it does not exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// ListFiles returns the visible files in a directory, sorted by name.
// A missing directory yields an empty list, not an error.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}

// ReadMeta loads the meta.json snapshot of a submission
func ReadMeta(subDir string) (*models.Meta, error) {
	data, err := os.ReadFile(filepath.Join(subDir, MetaFile))
	if err != nil {
		return nil, err
	}
	var meta models.Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// WriteMeta rewrites the meta.json snapshot of a submission
func WriteMeta(subDir string, meta *models.Meta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(subDir, MetaFile), data, 0644)
}
