// Package store persists assets, requests, assignments, maintenance records
// and the activity feed. The in-memory store backs demo deployments; the
// postgres subpackage implements the same interface on PostgreSQL.
package store

import (
	"context"
	"errors"
	"time"

	"hardware-management-api/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique key is already taken
	ErrConflict = errors.New("conflict")
	// ErrInvalidState is returned when a workflow step does not fit the
	// current status of the record
	ErrInvalidState = errors.New("invalid state")
)

// RequestFilter narrows a request listing. Zero values match everything.
type RequestFilter struct {
	Status      models.RequestStatus
	RequestedBy string
	NewHireOnly bool
}

// Matches reports whether r passes the filter
func (f RequestFilter) Matches(r models.AssetRequest) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.RequestedBy != "" && r.RequestedBy != f.RequestedBy {
		return false
	}
	if f.NewHireOnly && !r.IsNewHire() {
		return false
	}
	return true
}

// Decision approves or rejects a pending request. When Issue is set on an
// approval, the asset it names is issued in the same step.
type Decision struct {
	Status models.RequestStatus
	By     string
	Note   string
	At     time.Time
	Issue  *models.Assignment
}

// Return closes the open assignment of an asset
type Return struct {
	By        string
	Condition models.Condition
	Notes     string
	At        time.Time
}

// Store is the persistence boundary of the service
type Store interface {
	ListAssets(ctx context.Context, f models.AssetFilter) (models.AssetPage, error)
	AssetStats(ctx context.Context) (models.AssetStats, error)
	AssetsAssignedTo(ctx context.Context, assignee string) ([]models.Asset, error)
	GetAsset(ctx context.Context, id int64) (models.Asset, error)
	AssetBySerial(ctx context.Context, serial string) (models.Asset, error)
	CreateAsset(ctx context.Context, a models.Asset) (models.Asset, error)
	UpdateAsset(ctx context.Context, a models.Asset) (models.Asset, error)
	DeleteAsset(ctx context.Context, id int64) error
	// UpsertAssetBySerial inserts a or updates the asset with the same
	// serial number. created reports which one happened. An empty status
	// or assignee keeps the current value (or the default for a new
	// asset); changes that bypass issue/return fail with ErrInvalidState.
	UpsertAssetBySerial(ctx context.Context, a models.Asset) (models.Asset, bool, error)

	AddActivity(ctx context.Context, a models.Activity) (models.Activity, error)
	RecentActivity(ctx context.Context, limit int) ([]models.Activity, error)

	CreateRequest(ctx context.Context, r models.AssetRequest) (models.AssetRequest, error)
	GetRequest(ctx context.Context, id int64) (models.AssetRequest, error)
	ListRequests(ctx context.Context, f RequestFilter) ([]models.AssetRequest, error)
	CountRequests(ctx context.Context, status models.RequestStatus) (int, error)
	DecideRequest(ctx context.Context, id int64, d Decision) (models.AssetRequest, error)

	// LogMaintenance records a maintenance entry and applies the asset
	// status it implies
	LogMaintenance(ctx context.Context, rec models.MaintenanceRecord) (models.MaintenanceRecord, models.Asset, error)
	ListMaintenance(ctx context.Context, assetID int64) ([]models.MaintenanceRecord, error)

	IssueAsset(ctx context.Context, a models.Assignment) (models.Assignment, models.Asset, error)
	ReturnAsset(ctx context.Context, assetID int64, ret Return) (models.Assignment, models.Asset, error)
	ListAssignments(ctx context.Context, assetID int64) ([]models.Assignment, error)
	GetAssignment(ctx context.Context, assetID, assignmentID int64) (models.Assignment, error)
}

// DamageReport is the maintenance entry opened when an asset comes back damaged
func DamageReport(assetID int64, ret Return) models.MaintenanceRecord {
	desc := "Returned damaged"
	if ret.Notes != "" {
		desc += ": " + ret.Notes
	}
	return models.MaintenanceRecord{
		AssetID:     assetID,
		Kind:        models.KindIssue,
		Description: desc,
		Status:      models.MaintenanceReported,
		Attachments: []string{},
		LoggedBy:    ret.By,
		CreatedAt:   ret.At,
	}
}
