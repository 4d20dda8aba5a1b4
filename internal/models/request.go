package models

import (
	"strings"
	"time"
)

// Priority is the urgency a requester attaches to an asset request
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// RequestStatus is the approval state of an asset request
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// JoiningDateLayout is the YYYY-MM-DD layout of new-hire joining dates
const JoiningDateLayout = "2006-01-02"

// MinReasonLength is the shortest accepted request reason, after trimming
const MinReasonLength = 10

// RequestCategories are the categories offered by the request form
var RequestCategories = []string{"Laptop", "Desktop", "Monitor", "Keyboard", "Mouse", "Headset", "Other"}

// Option is a value/label pair for a form select
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// PriorityOptions are the priorities offered by the request form
var PriorityOptions = []Option{
	{Value: string(PriorityLow), Label: "Low - Can wait"},
	{Value: string(PriorityNormal), Label: "Normal - Standard request"},
	{Value: string(PriorityHigh), Label: "High - Urgent"},
}

// AssetRequest is a user-submitted intent to be issued a new asset
type AssetRequest struct {
	ID            int64         `json:"id"`
	Category      string        `json:"category"`
	Reason        string        `json:"reason"`
	Priority      Priority      `json:"priority"`
	EmployeeName  string        `json:"employee_name,omitempty"`
	JoiningDate   string        `json:"joining_date,omitempty"`
	RequestedBy   string        `json:"requested_by"`
	RequesterName string        `json:"requester_name"`
	RequesterRole Role          `json:"requester_role"`
	Status        RequestStatus `json:"status"`
	DecidedBy     string        `json:"decided_by,omitempty"`
	DecidedAt     *time.Time    `json:"decided_at,omitempty"`
	DecisionNote  string        `json:"decision_note,omitempty"`
	AssignedAsset *int64        `json:"assigned_asset_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// IsNewHire reports whether the request was raised for an incoming employee
func (r AssetRequest) IsNewHire() bool {
	return r.EmployeeName != ""
}

// Recipient is who receives the asset once the request is approved
func (r AssetRequest) Recipient() string {
	if r.IsNewHire() {
		return r.EmployeeName
	}
	return r.RequesterName
}

// CreateRequestInput is the request form draft. Role is the acting role and
// is set from the session, never from the body.
type CreateRequestInput struct {
	Category     string   `json:"category" validate:"required,oneof=Laptop Desktop Monitor Keyboard Mouse Headset Other"`
	// min counts runes, so a character outside the BMP counts once rather
	// than as two UTF-16 units
	Reason       string   `json:"reason" validate:"required,min=10"`
	Priority     Priority `json:"priority" validate:"omitempty,oneof=low normal high"`
	EmployeeName string   `json:"employee_name" validate:"required_if=Role hr"`
	JoiningDate  string   `json:"joining_date" validate:"required_if=Role hr,isodate"`
	Role         Role     `json:"-"`
}

// Normalize trims free text and applies the default priority
func (in *CreateRequestInput) Normalize() {
	in.Category = strings.TrimSpace(in.Category)
	in.Reason = strings.TrimSpace(in.Reason)
	in.EmployeeName = strings.TrimSpace(in.EmployeeName)
	in.JoiningDate = strings.TrimSpace(in.JoiningDate)
	if in.Priority == "" {
		in.Priority = PriorityNormal
	}
	if in.Role != RoleHR {
		in.EmployeeName = ""
		in.JoiningDate = ""
	}
}

// Validate checks the draft and returns field errors keyed by JSON name
func (in CreateRequestInput) Validate() map[string]string {
	return ValidateStruct(in)
}

// ToRequest builds the pending request submitted by who
func (in CreateRequestInput) ToRequest(who Identity) AssetRequest {
	return AssetRequest{
		Category:      in.Category,
		Reason:        in.Reason,
		Priority:      in.Priority,
		EmployeeName:  in.EmployeeName,
		JoiningDate:   in.JoiningDate,
		RequestedBy:   who.Email,
		RequesterName: who.Name,
		RequesterRole: who.Role,
		Status:        RequestPending,
	}
}

// DecisionInput is the body of an approve or reject call
type DecisionInput struct {
	Note    string `json:"note,omitempty" validate:"max=500"`
	AssetID *int64 `json:"asset_id,omitempty"`
}

// RequestForm describes the request form for a role
type RequestForm struct {
	Subtitle        string   `json:"subtitle"`
	Categories      []string `json:"categories"`
	Priorities      []Option `json:"priorities"`
	DefaultPriority string   `json:"default_priority"`
	ShowNewHire     bool     `json:"show_new_hire"`
	MinReasonChars  int      `json:"min_reason_chars"`
}

// FormFor returns the request form shown to role
func FormFor(role Role) RequestForm {
	form := RequestForm{
		Subtitle:        "Fill out the form below to request a new hardware asset",
		Categories:      RequestCategories,
		Priorities:      PriorityOptions,
		DefaultPriority: string(PriorityNormal),
		MinReasonChars:  MinReasonLength,
	}
	if role == RoleHR {
		form.Subtitle = "Request hardware for a new employee"
		form.ShowNewHire = true
	}
	return form
}

// OnboardingEntry is a new-hire request with the time left before joining
type OnboardingEntry struct {
	Request       AssetRequest `json:"request"`
	DaysUntilJoin int          `json:"days_until_joining"`
}

// DaysUntil returns whole days from now until the joining date. ok is false
// when the request has no parseable joining date.
func (r AssetRequest) DaysUntil(now time.Time) (int, bool) {
	joining, err := time.Parse(JoiningDateLayout, r.JoiningDate)
	if err != nil {
		return 0, false
	}
	// compare calendar dates in UTC so a DST shift never eats a day
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(joining.Sub(today) / (24 * time.Hour)), true
}
