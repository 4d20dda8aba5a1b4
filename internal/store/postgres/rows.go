package postgres

import (
	"database/sql"
	"time"

	"hardware-management-api/internal/models"

	"github.com/lib/pq"
)

const (
	assetsTable      = "assets"
	activitiesTable  = "activities"
	requestsTable    = "asset_requests"
	maintenanceTable = "maintenance_records"
	assignmentsTable = "assignments"
)

type assetRow struct {
	ID           int64     `db:"id" goqu:"skipinsert,skipupdate"`
	AssetID      string    `db:"asset_id"`
	Name         string    `db:"name"`
	SerialNumber string    `db:"serial_number"`
	Category     string    `db:"category"`
	Status       string    `db:"status"`
	AssignedTo   string    `db:"assigned_to"`
	PurchaseDate string    `db:"purchase_date"`
	CreatedAt    time.Time `db:"created_at" goqu:"skipupdate"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func toAssetRow(a models.Asset) assetRow {
	return assetRow{
		ID:           a.ID,
		AssetID:      a.AssetID,
		Name:         a.Name,
		SerialNumber: a.SerialNumber,
		Category:     a.Category,
		Status:       string(a.Status),
		AssignedTo:   a.AssignedTo,
		PurchaseDate: a.PurchaseDate,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (r assetRow) model() models.Asset {
	return models.Asset{
		ID:           r.ID,
		AssetID:      r.AssetID,
		Name:         r.Name,
		SerialNumber: r.SerialNumber,
		Category:     r.Category,
		Status:       models.AssetStatus(r.Status),
		AssignedTo:   r.AssignedTo,
		PurchaseDate: r.PurchaseDate,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type activityRow struct {
	ID        int64     `db:"id" goqu:"skipinsert"`
	Type      string    `db:"type"`
	Message   string    `db:"message"`
	Actor     string    `db:"actor"`
	CreatedAt time.Time `db:"created_at"`
}

func (r activityRow) model() models.Activity {
	return models.Activity{
		ID:        r.ID,
		Type:      models.ActivityType(r.Type),
		Message:   r.Message,
		Actor:     r.Actor,
		CreatedAt: r.CreatedAt,
	}
}

type requestRow struct {
	ID              int64         `db:"id" goqu:"skipinsert,skipupdate"`
	Category        string        `db:"category"`
	Reason          string        `db:"reason"`
	Priority        string        `db:"priority"`
	EmployeeName    string        `db:"employee_name"`
	JoiningDate     string        `db:"joining_date"`
	RequestedBy     string        `db:"requested_by"`
	RequesterName   string        `db:"requester_name"`
	RequesterRole   string        `db:"requester_role"`
	Status          string        `db:"status"`
	DecidedBy       string        `db:"decided_by"`
	DecidedAt       sql.NullTime  `db:"decided_at"`
	DecisionNote    string        `db:"decision_note"`
	AssignedAssetID sql.NullInt64 `db:"assigned_asset_id"`
	CreatedAt       time.Time     `db:"created_at" goqu:"skipupdate"`
}

func toRequestRow(r models.AssetRequest) requestRow {
	row := requestRow{
		ID:            r.ID,
		Category:      r.Category,
		Reason:        r.Reason,
		Priority:      string(r.Priority),
		EmployeeName:  r.EmployeeName,
		JoiningDate:   r.JoiningDate,
		RequestedBy:   r.RequestedBy,
		RequesterName: r.RequesterName,
		RequesterRole: string(r.RequesterRole),
		Status:        string(r.Status),
		DecidedBy:     r.DecidedBy,
		DecisionNote:  r.DecisionNote,
		CreatedAt:     r.CreatedAt,
	}
	if r.DecidedAt != nil {
		row.DecidedAt = sql.NullTime{Time: *r.DecidedAt, Valid: true}
	}
	if r.AssignedAsset != nil {
		row.AssignedAssetID = sql.NullInt64{Int64: *r.AssignedAsset, Valid: true}
	}
	return row
}

func (r requestRow) model() models.AssetRequest {
	out := models.AssetRequest{
		ID:            r.ID,
		Category:      r.Category,
		Reason:        r.Reason,
		Priority:      models.Priority(r.Priority),
		EmployeeName:  r.EmployeeName,
		JoiningDate:   r.JoiningDate,
		RequestedBy:   r.RequestedBy,
		RequesterName: r.RequesterName,
		RequesterRole: models.Role(r.RequesterRole),
		Status:        models.RequestStatus(r.Status),
		DecidedBy:     r.DecidedBy,
		DecisionNote:  r.DecisionNote,
		CreatedAt:     r.CreatedAt,
	}
	if r.DecidedAt.Valid {
		at := r.DecidedAt.Time
		out.DecidedAt = &at
	}
	if r.AssignedAssetID.Valid {
		id := r.AssignedAssetID.Int64
		out.AssignedAsset = &id
	}
	return out
}

type maintenanceRow struct {
	ID          int64          `db:"id" goqu:"skipinsert"`
	AssetID     int64          `db:"asset_id"`
	Kind        string         `db:"kind"`
	Description string         `db:"description"`
	Vendor      string         `db:"vendor"`
	Cost        float64        `db:"cost"`
	Status      string         `db:"status"`
	Notes       string         `db:"notes"`
	Attachments pq.StringArray `db:"attachments"`
	LoggedBy    string         `db:"logged_by"`
	CreatedAt   time.Time      `db:"created_at"`
}

func toMaintenanceRow(m models.MaintenanceRecord) maintenanceRow {
	attachments := pq.StringArray(m.Attachments)
	if attachments == nil {
		attachments = pq.StringArray{}
	}
	return maintenanceRow{
		AssetID:     m.AssetID,
		Kind:        string(m.Kind),
		Description: m.Description,
		Vendor:      m.Vendor,
		Cost:        m.Cost,
		Status:      string(m.Status),
		Notes:       m.Notes,
		Attachments: attachments,
		LoggedBy:    m.LoggedBy,
		CreatedAt:   m.CreatedAt,
	}
}

func (r maintenanceRow) model() models.MaintenanceRecord {
	attachments := []string(r.Attachments)
	if attachments == nil {
		attachments = []string{}
	}
	return models.MaintenanceRecord{
		ID:          r.ID,
		AssetID:     r.AssetID,
		Kind:        models.MaintenanceKind(r.Kind),
		Description: r.Description,
		Vendor:      r.Vendor,
		Cost:        r.Cost,
		Status:      models.MaintenanceStatus(r.Status),
		Notes:       r.Notes,
		Attachments: attachments,
		LoggedBy:    r.LoggedBy,
		CreatedAt:   r.CreatedAt,
	}
}

type assignmentRow struct {
	ID           int64        `db:"id" goqu:"skipinsert,skipupdate"`
	AssetID      int64        `db:"asset_id"`
	Assignee     string       `db:"assignee"`
	IssuedBy     string       `db:"issued_by"`
	IssuedAt     time.Time    `db:"issued_at"`
	ConditionOut string       `db:"condition_out"`
	ReturnedAt   sql.NullTime `db:"returned_at"`
	ReturnedBy   string       `db:"returned_by"`
	ConditionIn  string       `db:"condition_in"`
	Notes        string       `db:"notes"`
}

func toAssignmentRow(a models.Assignment) assignmentRow {
	row := assignmentRow{
		ID:           a.ID,
		AssetID:      a.AssetID,
		Assignee:     a.Assignee,
		IssuedBy:     a.IssuedBy,
		IssuedAt:     a.IssuedAt,
		ConditionOut: string(a.ConditionOut),
		ReturnedBy:   a.ReturnedBy,
		ConditionIn:  string(a.ConditionIn),
		Notes:        a.Notes,
	}
	if a.ReturnedAt != nil {
		row.ReturnedAt = sql.NullTime{Time: *a.ReturnedAt, Valid: true}
	}
	return row
}

func (r assignmentRow) model() models.Assignment {
	out := models.Assignment{
		ID:           r.ID,
		AssetID:      r.AssetID,
		Assignee:     r.Assignee,
		IssuedBy:     r.IssuedBy,
		IssuedAt:     r.IssuedAt,
		ConditionOut: models.Condition(r.ConditionOut),
		ReturnedBy:   r.ReturnedBy,
		ConditionIn:  models.Condition(r.ConditionIn),
		Notes:        r.Notes,
	}
	if r.ReturnedAt.Valid {
		at := r.ReturnedAt.Time
		out.ReturnedAt = &at
	}
	return out
}
