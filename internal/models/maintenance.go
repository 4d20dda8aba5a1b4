package models

import (
	"strings"
	"time"
)

// MaintenanceStatus is the state of a maintenance record
type MaintenanceStatus string

const (
	MaintenanceReported   MaintenanceStatus = "reported"
	MaintenanceScheduled  MaintenanceStatus = "scheduled"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
)

// MaintenanceKind separates servicing from issues reported by holders
type MaintenanceKind string

const (
	KindMaintenance MaintenanceKind = "maintenance"
	KindIssue       MaintenanceKind = "issue"
)

// MaintenanceRecord is one entry of an asset's maintenance log
type MaintenanceRecord struct {
	ID          int64             `json:"id"`
	AssetID     int64             `json:"asset_id"`
	Kind        MaintenanceKind   `json:"kind"`
	Description string            `json:"description"`
	Vendor      string            `json:"vendor,omitempty"`
	Cost        float64           `json:"cost"`
	Status      MaintenanceStatus `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	Attachments []string          `json:"attachments"`
	LoggedBy    string            `json:"logged_by"`
	CreatedAt   time.Time         `json:"created_at"`
}

// LogMaintenanceRequest is the body of a maintenance log entry
type LogMaintenanceRequest struct {
	Description string            `json:"description" validate:"required,max=1000"`
	Vendor      string            `json:"vendor,omitempty" validate:"max=255"`
	Cost        float64           `json:"cost,omitempty" validate:"gte=0"`
	Status      MaintenanceStatus `json:"status" validate:"required,oneof=scheduled in_progress completed"`
	Notes       string            `json:"notes,omitempty" validate:"max=2000"`
	Attachments []string          `json:"attachments,omitempty" validate:"max=20,dive,max=1024"`
}

// ToRecord builds the log entry for assetID
func (r LogMaintenanceRequest) ToRecord(assetID int64, by string) MaintenanceRecord {
	attachments := r.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return MaintenanceRecord{
		AssetID:     assetID,
		Kind:        KindMaintenance,
		Description: strings.TrimSpace(r.Description),
		Vendor:      strings.TrimSpace(r.Vendor),
		Cost:        r.Cost,
		Status:      r.Status,
		Notes:       strings.TrimSpace(r.Notes),
		Attachments: attachments,
		LoggedBy:    by,
	}
}

// ReportIssueRequest is the body of an issue report
type ReportIssueRequest struct {
	Description string `json:"description" validate:"required,max=1000"`
}

// StatusAfter returns the asset status implied by a maintenance entry.
// ok is false when the entry leaves the asset status untouched.
func StatusAfter(rec MaintenanceRecord, a Asset) (AssetStatus, bool) {
	switch rec.Status {
	case MaintenanceScheduled, MaintenanceInProgress:
		return StatusMaintenance, true
	case MaintenanceCompleted:
		if a.IsAssigned() {
			return StatusAssigned, true
		}
		return StatusAvailable, true
	default:
		return "", false
	}
}
