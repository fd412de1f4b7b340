package models

import (
	"encoding/json"
	"time"
)

// Submission statuses
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
)

// Submission represents one merchant onboarding session.
// The row is the sole source of truth for authorization: every authenticated
// call must present the matching (ID, AccessToken) pair.
type Submission struct {
	ID              string     `gorm:"primaryKey" json:"id"`
	BrandName       string     `gorm:"not null" json:"brand_name"`
	BusinessType    string     `json:"business_type"`
	ContactEmail    string     `json:"contact_email"`
	ContactPhone    string     `json:"contact_phone"`
	AccessToken     string     `gorm:"not null" json:"-"`
	DocsToken       *string    `gorm:"index" json:"-"` // set once the docs sub-flow completes
	Status          string     `gorm:"not null;default:'draft'" json:"status"`
	MenuItems       string     `json:"-"` // serialized JSON, wholesale-replaced on save
	LocationDetails string     `json:"-"` // serialized JSON, wholesale-replaced on save
	CreatedAt       time.Time  `json:"created_at"`
	SubmittedAt     *time.Time `json:"submitted_at"`
}

// TableName specifies the table name for the Submission model
func (Submission) TableName() string {
	return "submissions"
}

// Addon is a single menu item option (name EN/AR + price)
type Addon struct {
	NameEN string `json:"name_en"`
	NameAR string `json:"name_ar"`
	Price  string `json:"price"`
}

// MenuItem is one line item of a merchant's menu. Prices are kept as free
// text exactly as entered; numeric validation is a presentation concern.
type MenuItem struct {
	ItemNameEN    string  `json:"item_name_en"`
	ItemNameAR    string  `json:"item_name_ar"`
	DescriptionEN string  `json:"description_en"`
	DescriptionAR string  `json:"description_ar"`
	Price         string  `json:"price"`
	Category      string  `json:"category"`
	Barcode       string  `json:"barcode"`
	Image         string  `json:"image"` // stored product image filename, empty if unassigned
	Addons        []Addon `json:"addons"`
}

// ClockTime is an hour/minute/meridiem triple, preserved as free text
type ClockTime struct {
	H string `json:"h"`
	M string `json:"m"`
	P string `json:"p"`
}

// DaySchedule is the opening schedule for a single weekday
type DaySchedule struct {
	Closed bool      `json:"closed"`
	Open24 bool      `json:"open24"`
	From   ClockTime `json:"from"`
	To     ClockTime `json:"to"`
}

// Location holds the pickup details saved in the location step
type Location struct {
	Schedule         map[string]DaySchedule `json:"schedule"`
	PickupLocation   string                 `json:"pickupLocation"`
	OperationalPhone string                 `json:"operationalPhone"`
}

// Meta is the denormalized snapshot written to meta.json inside each
// submission directory. It travels with the exported package.
type Meta struct {
	BrandName             string     `json:"brandName"`
	BusinessType          string     `json:"businessType"`
	ContactEmail          string     `json:"contactEmail,omitempty"`
	ContactPhone          string     `json:"contactPhone,omitempty"`
	Categories            []string   `json:"categories,omitempty"`
	CategoriesDescription string     `json:"categoriesDescription,omitempty"`
	CreatedAt             string     `json:"createdAt"`
	// No omitempty: a cleared menu must snapshot as an empty list, distinct
	// from a menu that was never saved
	MenuItems             []MenuItem `json:"menuItems"`
	LocationDetails       *Location  `json:"locationDetails,omitempty"`
	ZipDownloadedAt       string     `json:"zipDownloadedAt,omitempty"`
}

// DisplayName returns the item's export name: English first, Arabic as
// fallback, empty when the item has no name at all.
func (m *MenuItem) DisplayName() string {
	if m.ItemNameEN != "" {
		return m.ItemNameEN
	}
	return m.ItemNameAR
}

// MenuItemList decodes the serialized menu items column
func (s *Submission) MenuItemList() ([]MenuItem, error) {
	if s.MenuItems == "" {
		return []MenuItem{}, nil
	}
	var items []MenuItem
	if err := json.Unmarshal([]byte(s.MenuItems), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetMenuItems serializes and replaces the stored menu item list
func (s *Submission) SetMenuItems(items []MenuItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	s.MenuItems = string(data)
	return nil
}

// Location decodes the serialized location column, nil when never saved
func (s *Submission) Location() (*Location, error) {
	if s.LocationDetails == "" {
		return nil, nil
	}
	var loc Location
	if err := json.Unmarshal([]byte(s.LocationDetails), &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

// SetLocation serializes and replaces the stored location details
func (s *Submission) SetLocation(loc *Location) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	s.LocationDetails = string(data)
	return nil
}

// ExpiresAt computes when the retention sweeper becomes entitled to delete
// this submission.
func (s *Submission) ExpiresAt(retentionHours int) time.Time {
	return s.CreatedAt.Add(time.Duration(retentionHours) * time.Hour)
}
