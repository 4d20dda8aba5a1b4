package models

import (
	"time"

	"github.com/dustin/go-humanize"
)

// ActivityType tags an activity entry
type ActivityType string

const (
	ActivityAssigned    ActivityType = "assigned"
	ActivityReturned    ActivityType = "returned"
	ActivityMaintenance ActivityType = "maintenance"
	ActivityRequest     ActivityType = "request"
	ActivityIssue       ActivityType = "issue"
)

var activityIcons = map[ActivityType]string{
	ActivityAssigned:    "📦",
	ActivityReturned:    "🔄",
	ActivityMaintenance: "🔧",
	ActivityRequest:     "✅",
	ActivityIssue:       "⚠️",
}

// Icon returns the glyph shown next to the activity
func (t ActivityType) Icon() string {
	if icon, ok := activityIcons[t]; ok {
		return icon
	}
	return "📋"
}

// Activity is one entry of the recent activity feed
type Activity struct {
	ID        int64        `json:"id"`
	Type      ActivityType `json:"type"`
	Message   string       `json:"message"`
	Actor     string       `json:"actor,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

// ActivityView is an activity rendered for display
type ActivityView struct {
	ID      int64        `json:"id"`
	Type    ActivityType `json:"type"`
	Message string       `json:"message"`
	Time    string       `json:"time"`
	Icon    string       `json:"icon"`
}

// View renders the activity with a time relative to now
func (a Activity) View(now time.Time) ActivityView {
	return ActivityView{
		ID:      a.ID,
		Type:    a.Type,
		Message: a.Message,
		Time:    humanize.RelTime(a.CreatedAt, now, "ago", "from now"),
		Icon:    a.Type.Icon(),
	}
}
