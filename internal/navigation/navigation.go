// Package navigation builds the role-gated sidebar and resolves client
// paths to the pages the application knows.
package navigation

import (
	"strings"

	"hardware-management-api/internal/models"
)

// Item is one sidebar link
type Item struct {
	Label  string `json:"label"`
	Path   string `json:"path"`
	Icon   string `json:"icon"`
	Active bool   `json:"active"`
}

// Section groups items under an optional title
type Section struct {
	Title string `json:"title,omitempty"`
	Items []Item `json:"items"`
}

// Version is shown in the sidebar footer
const Version = "1.0.0"

var (
	mainItems = []Item{
		{Label: "Dashboard", Path: "/", Icon: "📊"},
		{Label: "Assets", Path: "/assets", Icon: "💻"},
		{Label: "Request Asset", Path: "/request", Icon: "📝"},
	}
	adminItems = []Item{{Label: "Issue/Return", Path: "/issue-return", Icon: "🔄"}}
	hrItems    = []Item{{Label: "Onboarding", Path: "/onboarding", Icon: "👥"}}
)

// IsActive reports whether the item at itemPath is highlighted for current.
// The dashboard is only active on the root itself.
func IsActive(itemPath, current string) bool {
	if itemPath == "/" {
		return current == "/"
	}
	return current == itemPath || strings.HasPrefix(current, itemPath+"/")
}

func mark(items []Item, current string) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		it.Active = IsActive(it.Path, current)
		out[i] = it
	}
	return out
}

// For returns the sidebar sections visible to role with the item matching
// current marked active
func For(role models.Role, current string) []Section {
	sections := []Section{{Items: mark(mainItems, current)}}
	if role.IsStaff() {
		sections = append(sections, Section{Title: "Admin", Items: mark(adminItems, current)})
	}
	if role == models.RoleHR {
		sections = append(sections, Section{Title: "HR", Items: mark(hrItems, current)})
	}
	return sections
}

// pages are the client routes, with ":id" standing for one path segment
var pages = []string{
	"/",
	"/login",
	"/assets",
	"/assets/:id",
	"/request",
	"/maintenance/:id",
	"/issue-return",
	"/onboarding",
}

func matches(pattern, path string) bool {
	want := strings.Split(pattern, "/")
	got := strings.Split(path, "/")
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] == ":id" {
			if got[i] == "" {
				return false
			}
			continue
		}
		if want[i] != got[i] {
			return false
		}
	}
	return true
}

// Resolve returns path when it names a known page and "/" otherwise.
// A trailing slash is ignored.
func Resolve(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	for _, p := range pages {
		if matches(p, path) {
			return path
		}
	}
	return "/"
}
