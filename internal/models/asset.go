package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AssetStatus is the lifecycle state of a hardware asset
type AssetStatus string

const (
	StatusAvailable   AssetStatus = "Available"
	StatusAssigned    AssetStatus = "Assigned"
	StatusMaintenance AssetStatus = "Maintenance"
	StatusRetired     AssetStatus = "Retired"
)

// Unassigned is the assignee placeholder shown for assets nobody holds
const Unassigned = "—"

// PurchaseDateLayout is the DD/MM/YYYY layout used for purchase dates
const PurchaseDateLayout = "02/01/2006"

// AssetStatuses lists the statuses in display order
var AssetStatuses = []AssetStatus{
	StatusAvailable,
	StatusAssigned,
	StatusMaintenance,
	StatusRetired,
}

// ListCategories are the categories offered by the asset list filter
var ListCategories = []string{"Laptop", "Monitor", "Peripheral", "Desktop"}

// IsValidStatus checks if a status is one of the known asset statuses
func IsValidStatus(s AssetStatus) bool {
	for _, known := range AssetStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// BadgeClass returns the badge style used to render a status
func (s AssetStatus) BadgeClass() string {
	switch s {
	case StatusAvailable:
		return "badge-primary"
	case StatusAssigned:
		return "badge-success"
	case StatusMaintenance:
		return "badge-warning"
	default:
		return "badge-secondary"
	}
}

// Asset represents a tracked hardware item
type Asset struct {
	ID           int64       `json:"id"`
	AssetID      string      `json:"asset_id"`
	Name         string      `json:"name"`
	SerialNumber string      `json:"serial_number"`
	Category     string      `json:"category"`
	Status       AssetStatus `json:"status"`
	AssignedTo   string      `json:"assigned_to"`
	PurchaseDate string      `json:"purchase_date"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// IsAssigned reports whether somebody currently holds the asset
func (a Asset) IsAssigned() bool {
	return a.AssignedTo != "" && a.AssignedTo != Unassigned
}

// ErrHolderChange is returned when a status or assignee edit would bypass
// the issue/return workflow
var ErrHolderChange = errors.New("use issue/return to change who holds an asset")

// CheckHolder reports whether the status and assignee agree. Assigned
// needs an assignee; Available and Retired must have none.
func (a Asset) CheckHolder() error {
	switch a.Status {
	case StatusAssigned:
		if !a.IsAssigned() {
			return errors.New("an assigned asset needs an assignee")
		}
	case StatusAvailable, StatusRetired:
		if a.IsAssigned() {
			return fmt.Errorf("asset is still held by %s; return it before setting %s", a.AssignedTo, a.Status)
		}
	}
	return nil
}

// CheckEdit validates a manual edit from before to after. Moving an asset
// into or out of Assigned, or changing its assignee while assigned, is
// reserved for issue/return.
func CheckEdit(before, after Asset) error {
	changed := before.Status != after.Status || before.AssignedTo != after.AssignedTo
	if changed && (before.Status == StatusAssigned || after.Status == StatusAssigned) {
		return ErrHolderChange
	}
	return after.CheckHolder()
}

// MergeHolder fills an empty status or assignee of a from current
func (a *Asset) MergeHolder(current Asset) {
	if a.Status == "" {
		a.Status = current.Status
	}
	if a.AssignedTo == "" {
		a.AssignedTo = current.AssignedTo
	}
}

// DefaultHolder fills an empty status or assignee with Available and the
// unassigned placeholder
func (a *Asset) DefaultHolder() {
	a.MergeHolder(Asset{Status: StatusAvailable, AssignedTo: Unassigned})
}

// Matches reports whether term occurs in the name, asset id or serial
// number, ignoring case. An empty term matches everything.
func (a Asset) Matches(term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(a.Name), term) ||
		strings.Contains(strings.ToLower(a.AssetID), term) ||
		strings.Contains(strings.ToLower(a.SerialNumber), term)
}

// AssetStats summarises the asset population for the dashboard
type AssetStats struct {
	TotalAssets int `json:"total_assets"`
	InUse       int `json:"in_use"`
	Maintenance int `json:"maintenance"`
	Available   int `json:"available"`
}

// Count adds one asset to the summary
func (s *AssetStats) Count(a Asset) {
	s.TotalAssets++
	switch a.Status {
	case StatusAssigned:
		s.InUse++
	case StatusMaintenance:
		s.Maintenance++
	case StatusAvailable:
		s.Available++
	}
}

// AssetFilter selects a page of assets
type AssetFilter struct {
	Search   string
	Category string
	Status   string
	Page     int
	PageSize int
}

// AllFilter is the sentinel filter value meaning "no filter"
const AllFilter = "all"

// CategoryActive reports whether the category filter narrows the result
func (f AssetFilter) CategoryActive() bool {
	return f.Category != "" && f.Category != AllFilter
}

// StatusActive reports whether the status filter narrows the result
func (f AssetFilter) StatusActive() bool {
	return f.Status != "" && f.Status != AllFilter
}

// Accepts reports whether an asset passes every active filter
func (f AssetFilter) Accepts(a Asset) bool {
	if !a.Matches(strings.TrimSpace(f.Search)) {
		return false
	}
	if f.CategoryActive() && a.Category != f.Category {
		return false
	}
	if f.StatusActive() && string(a.Status) != f.Status {
		return false
	}
	return true
}

// AssetPage is one page of a filtered asset list
type AssetPage struct {
	Assets     []Asset
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// CreateAssetRequest represents the request body for creating a new asset
type CreateAssetRequest struct {
	AssetID      string      `json:"asset_id" validate:"required,max=64"`
	Name         string      `json:"name" validate:"required,max=255"`
	SerialNumber string      `json:"serial_number" validate:"required,max=128"`
	Category     string      `json:"category" validate:"required,max=64"`
	Status       AssetStatus `json:"status,omitempty" validate:"omitempty,oneof=Available Assigned Maintenance Retired"`
	AssignedTo   string      `json:"assigned_to,omitempty"`
	PurchaseDate string      `json:"purchase_date,omitempty" validate:"omitempty,datetime=02/01/2006"`
}

// ToAsset builds an asset from the request, applying defaults
func (r CreateAssetRequest) ToAsset() Asset {
	a := Asset{
		AssetID:      strings.TrimSpace(r.AssetID),
		Name:         strings.TrimSpace(r.Name),
		SerialNumber: strings.TrimSpace(r.SerialNumber),
		Category:     strings.TrimSpace(r.Category),
		Status:       r.Status,
		AssignedTo:   strings.TrimSpace(r.AssignedTo),
		PurchaseDate: r.PurchaseDate,
	}
	a.DefaultHolder()
	return a
}

// UpdateAssetRequest represents the request body for updating an asset
type UpdateAssetRequest struct {
	Name         *string      `json:"name,omitempty" validate:"omitempty,max=255"`
	SerialNumber *string      `json:"serial_number,omitempty" validate:"omitempty,max=128"`
	Category     *string      `json:"category,omitempty" validate:"omitempty,max=64"`
	Status       *AssetStatus `json:"status,omitempty" validate:"omitempty,oneof=Available Assigned Maintenance Retired"`
	PurchaseDate *string      `json:"purchase_date,omitempty" validate:"omitempty,datetime=02/01/2006"`
}

// Empty reports whether the update carries no fields
func (r UpdateAssetRequest) Empty() bool {
	return r.Name == nil && r.SerialNumber == nil && r.Category == nil && r.Status == nil && r.PurchaseDate == nil
}

// Apply copies the set fields onto the asset
func (r UpdateAssetRequest) Apply(a *Asset) {
	if r.Name != nil {
		a.Name = strings.TrimSpace(*r.Name)
	}
	if r.SerialNumber != nil {
		a.SerialNumber = strings.TrimSpace(*r.SerialNumber)
	}
	if r.Category != nil {
		a.Category = strings.TrimSpace(*r.Category)
	}
	if r.Status != nil {
		a.Status = *r.Status
	}
	if r.PurchaseDate != nil {
		a.PurchaseDate = *r.PurchaseDate
	}
}

// AssetDetail is the complete view of one asset
type AssetDetail struct {
	Asset       Asset               `json:"asset"`
	BadgeClass  string              `json:"badge_class"`
	Assignments []Assignment        `json:"assignments"`
	Maintenance []MaintenanceRecord `json:"maintenance"`
}
