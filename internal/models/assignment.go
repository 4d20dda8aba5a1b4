package models

import "time"

// Condition is the physical state of an asset at handover
type Condition string

const (
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionDamaged Condition = "damaged"
)

// Assignment records one period an asset spent with an assignee
type Assignment struct {
	ID           int64      `json:"id"`
	AssetID      int64      `json:"asset_id"`
	Assignee     string     `json:"assignee"`
	IssuedBy     string     `json:"issued_by"`
	IssuedAt     time.Time  `json:"issued_at"`
	ConditionOut Condition  `json:"condition_out"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty"`
	ReturnedBy   string     `json:"returned_by,omitempty"`
	ConditionIn  Condition  `json:"condition_in,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// Open reports whether the asset has not come back yet
func (a Assignment) Open() bool {
	return a.ReturnedAt == nil
}

// IssueRequest is the body of an issue call
type IssueRequest struct {
	Assignee  string    `json:"assignee" validate:"required,max=255"`
	Condition Condition `json:"condition,omitempty" validate:"omitempty,oneof=good fair damaged"`
	Notes     string    `json:"notes,omitempty" validate:"max=2000"`
}

// ReturnRequest is the body of a return call
type ReturnRequest struct {
	Condition Condition `json:"condition" validate:"required,oneof=good fair damaged"`
	Notes     string    `json:"notes,omitempty" validate:"max=2000"`
}

// StatusOnReturn returns the asset status after a return in condition c
func StatusOnReturn(c Condition) AssetStatus {
	if c == ConditionDamaged {
		return StatusMaintenance
	}
	return StatusAvailable
}
