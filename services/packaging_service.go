package services

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/menuportal/onboarding-api/models"
	"github.com/menuportal/onboarding-api/utils"
)

// menuSheetName and locationSheetName are the workbook sheet names
const (
	menuSheetName     = "Menu"
	locationSheetName = "Location_WorkingHours"
)

// weekDays in export order
var weekDays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// PackageResult describes the artifacts produced by a final submission
type PackageResult struct {
	ZipPath       string
	ZipFilename   string
	ExcelPath     string
	ExcelFilename string
}

// ValidateReadyToSubmit applies the strict submission rule: every menu item
// needs an assigned image, a display name and a price. Returns the 1-based
// positions of items that fail.
func ValidateReadyToSubmit(items []models.MenuItem) []int {
	var invalid []int
	for i := range items {
		item := &items[i]
		if item.Image == "" || strings.TrimSpace(item.DisplayName()) == "" || strings.TrimSpace(item.Price) == "" {
			invalid = append(invalid, i+1)
		}
	}
	return invalid
}

// BuildRenameMap computes, for every menu item with an assigned image, the
// human-readable filename the image gets inside the exported package.
// Display name prefers English, falls back to Arabic, and leaves the stored
// filename untouched when the item has no name. Collisions get " (2)",
// " (3)"… suffixes in first-seen order, compared case-insensitively.
func BuildRenameMap(items []models.MenuItem) map[string]string {
	renameMap := make(map[string]string)
	usedNames := make(map[string]bool)

	for i := range items {
		item := &items[i]
		if item.Image == "" {
			continue
		}

		displayName := strings.TrimSpace(item.DisplayName())
		if displayName == "" {
			renameMap[item.Image] = item.Image
			continue
		}

		ext := filepath.Ext(item.Image)
		safeName := utils.SanitizeFilename(displayName)

		finalName := safeName + ext
		for counter := 2; usedNames[strings.ToLower(finalName)]; counter++ {
			finalName = fmt.Sprintf("%s (%d)%s", safeName, counter, ext)
		}
		usedNames[strings.ToLower(finalName)] = true
		renameMap[item.Image] = finalName
	}

	return renameMap
}

// menuColumns are the fixed spreadsheet columns; add-on groups follow
var menuColumns = []struct {
	Header string
	Width  float64
}{
	{"Item Name (EN)", 25},
	{"Item Name (AR)", 25},
	{"Description (EN)", 35},
	{"Description (AR)", 35},
	{"Price (QAR)", 12},
	{"Category", 18},
	{"Barcode", 18},
	{"Image Filename", 30},
}

// GenerateMenuWorkbook builds the two-sheet export workbook: the menu sheet
// with dynamic add-on column groups and the location/working-hours sheet.
func GenerateMenuWorkbook(items []models.MenuItem, renameMap map[string]string, location *models.Location) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", menuSheetName); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return nil, err
	}

	// Column count grows with the largest add-on list in this submission
	maxAddons := 0
	for i := range items {
		if n := len(items[i].Addons); n > maxAddons {
			maxAddons = n
		}
	}

	headers := make([]string, 0, len(menuColumns)+maxAddons*3)
	widths := make([]float64, 0, len(menuColumns)+maxAddons*3)
	for _, col := range menuColumns {
		headers = append(headers, col.Header)
		widths = append(widths, col.Width)
	}
	for i := 1; i <= maxAddons; i++ {
		headers = append(headers,
			fmt.Sprintf("Option %d (EN)", i),
			fmt.Sprintf("Option %d (AR)", i),
			fmt.Sprintf("Option %d Price", i))
		widths = append(widths, 20, 20, 15)
	}

	for i, header := range headers {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		cell := colName + "1"
		if err := f.SetCellValue(menuSheetName, cell, header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(menuSheetName, cell, cell, headerStyle); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(menuSheetName, colName, colName, widths[i]); err != nil {
			return nil, err
		}
	}

	for rowIdx := range items {
		item := &items[rowIdx]
		imageFilename := item.Image
		if renamed, ok := renameMap[item.Image]; ok {
			imageFilename = renamed
		}

		row := []interface{}{
			item.ItemNameEN,
			item.ItemNameAR,
			item.DescriptionEN,
			item.DescriptionAR,
			item.Price,
			item.Category,
			item.Barcode,
			imageFilename,
		}
		for _, addon := range item.Addons {
			row = append(row, addon.NameEN, addon.NameAR, addon.Price)
		}

		cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(menuSheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := addLocationSheet(f, headerStyle, location); err != nil {
		return nil, err
	}

	return f, nil
}

func addLocationSheet(f *excelize.File, headerStyle int, location *models.Location) error {
	if _, err := f.NewSheet(locationSheetName); err != nil {
		return err
	}
	if err := f.SetColWidth(locationSheetName, "A", "A", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(locationSheetName, "B", "B", 60); err != nil {
		return err
	}
	if err := f.SetCellValue(locationSheetName, "A1", "Field"); err != nil {
		return err
	}
	if err := f.SetCellValue(locationSheetName, "B1", "Value"); err != nil {
		return err
	}
	if err := f.SetCellStyle(locationSheetName, "A1", "B1", headerStyle); err != nil {
		return err
	}

	row := 2
	addRow := func(field, value string) error {
		if err := f.SetCellValue(locationSheetName, fmt.Sprintf("A%d", row), field); err != nil {
			return err
		}
		if err := f.SetCellValue(locationSheetName, fmt.Sprintf("B%d", row), value); err != nil {
			return err
		}
		row++
		return nil
	}

	if location == nil {
		return addRow("Notice", "No location details provided.")
	}

	for _, day := range weekDays {
		dayData, ok := location.Schedule[strings.ToLower(day)]
		value := "Closed"
		if ok {
			switch {
			case dayData.Open24:
				value = "Open 24 Hours"
			case !dayData.Closed:
				value = fmt.Sprintf("%s:%s %s - %s:%s %s",
					dayData.From.H, dayData.From.M, dayData.From.P,
					dayData.To.H, dayData.To.M, dayData.To.P)
			}
		}
		if err := addRow(fmt.Sprintf("Working Hours (%s)", day), value); err != nil {
			return err
		}
	}

	pickup := location.PickupLocation
	if pickup == "" {
		pickup = "None provided"
	}
	if err := addRow("Pickup Location (Google Maps)", pickup); err != nil {
		return err
	}

	phone := location.OperationalPhone
	if phone == "" {
		phone = "None provided"
	}
	return addRow("Operational Phone Number", phone)
}

// PackageSubmission regenerates the submission's export artifacts: the menu
// spreadsheet and the ZIP combining logo, renamed product images, the
// spreadsheet and the metadata snapshot. Safe to call repeatedly; each call
// rebuilds both files from current state.
func PackageSubmission(dataDir string, submission *models.Submission) (*PackageResult, error) {
	subDir := utils.SubmissionDir(dataDir, submission.ID)
	meta, err := utils.ReadMeta(subDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read submission meta: %w", err)
	}

	items, err := submission.MenuItemList()
	if err != nil {
		return nil, fmt.Errorf("failed to decode menu items: %w", err)
	}
	location, err := submission.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to decode location details: %w", err)
	}

	safeBrand := utils.SafeBrandName(meta.BrandName)
	renameMap := BuildRenameMap(items)

	// Spreadsheet
	workbook, err := GenerateMenuWorkbook(items, renameMap, location)
	if err != nil {
		return nil, fmt.Errorf("failed to generate workbook: %w", err)
	}
	excelFilename := fmt.Sprintf("menu_%s.xlsx", safeBrand)
	menuDir := filepath.Join(subDir, utils.MenuDir)
	if err := utils.EnsureDir(menuDir); err != nil {
		return nil, err
	}
	excelPath := filepath.Join(menuDir, excelFilename)
	if err := workbook.SaveAs(excelPath); err != nil {
		return nil, fmt.Errorf("failed to write spreadsheet: %w", err)
	}

	// ZIP
	idPrefix := submission.ID
	if len(idPrefix) > 8 {
		idPrefix = idPrefix[:8]
	}
	zipFilename := fmt.Sprintf("%s-%s.zip", safeBrand, idPrefix)
	packageDir := filepath.Join(subDir, utils.PackageDir)
	if err := utils.EnsureDir(packageDir); err != nil {
		return nil, err
	}
	zipPath := filepath.Join(packageDir, zipFilename)
	if err := writePackageZip(zipPath, subDir, safeBrand, renameMap, excelPath, excelFilename); err != nil {
		return nil, err
	}

	return &PackageResult{
		ZipPath:       zipPath,
		ZipFilename:   zipFilename,
		ExcelPath:     excelPath,
		ExcelFilename: excelFilename,
	}, nil
}

// writePackageZip assembles the package archive through a temp file so a
// failed build never leaves a half-written ZIP behind.
func writePackageZip(zipPath, subDir, safeBrand string, renameMap map[string]string, excelPath, excelFilename string) (err error) {
	tmpPath := zipPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create package file: %w", err)
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(tmpPath)
		}
	}()

	zw := zip.NewWriter(out)

	// Logo
	logoFiles, err := utils.ListFiles(filepath.Join(subDir, utils.LogoDir))
	if err != nil {
		return err
	}
	for _, name := range logoFiles {
		if err = addFileToZip(zw, filepath.Join(subDir, utils.LogoDir, name), "logo/"+name); err != nil {
			return err
		}
	}

	// Product images: renamed first, then anything left under its stored name
	// so nothing is silently dropped
	imagesFolder := "product_images_" + safeBrand
	imgDir := filepath.Join(subDir, utils.ImagesDir)
	added := make(map[string]bool)
	for original, renamed := range renameMap {
		srcPath := filepath.Join(imgDir, original)
		if _, statErr := os.Stat(srcPath); statErr != nil {
			continue
		}
		if err = addFileToZip(zw, srcPath, imagesFolder+"/"+renamed); err != nil {
			return err
		}
		added[original] = true
	}
	allImages, err := utils.ListFiles(imgDir)
	if err != nil {
		return err
	}
	for _, name := range allImages {
		if added[name] {
			continue
		}
		if err = addFileToZip(zw, filepath.Join(imgDir, name), imagesFolder+"/"+name); err != nil {
			return err
		}
	}

	// Spreadsheet and metadata snapshot
	if err = addFileToZip(zw, excelPath, "menu/"+excelFilename); err != nil {
		return err
	}
	if err = addFileToZip(zw, filepath.Join(subDir, utils.MetaFile), utils.MetaFile); err != nil {
		return err
	}

	if err = zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize package: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("failed to close package file: %w", err)
	}
	return os.Rename(tmpPath, zipPath)
}

func addFileToZip(zw *zip.Writer, srcPath, nameInZip string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", srcPath, err)
	}
	defer src.Close()

	w, err := zw.Create(nameInZip)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
