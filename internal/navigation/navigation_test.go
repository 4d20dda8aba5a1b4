package navigation

import (
	"testing"

	"hardware-management-api/internal/models"

	"github.com/stretchr/testify/assert"
)

func labels(sections []Section) []string {
	var out []string
	for _, s := range sections {
		for _, it := range s.Items {
			out = append(out, it.Label)
		}
	}
	return out
}

func active(sections []Section) []string {
	var out []string
	for _, s := range sections {
		for _, it := range s.Items {
			if it.Active {
				out = append(out, it.Path)
			}
		}
	}
	return out
}

func TestForRole(t *testing.T) {
	tests := []struct {
		role     models.Role
		labels   []string
		sections []string
	}{
		{models.RoleEmployee, []string{"Dashboard", "Assets", "Request Asset"}, []string{""}},
		{models.RoleAdmin, []string{"Dashboard", "Assets", "Request Asset", "Issue/Return"}, []string{"", "Admin"}},
		{models.RoleHR, []string{"Dashboard", "Assets", "Request Asset", "Issue/Return", "Onboarding"}, []string{"", "Admin", "HR"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got := For(tt.role, "/")
			assert.Equal(t, tt.labels, labels(got))

			titles := make([]string, len(got))
			for i, s := range got {
				titles[i] = s.Title
			}
			assert.Equal(t, tt.sections, titles)
		})
	}
}

func TestActiveItem(t *testing.T) {
	tests := []struct {
		current string
		want    []string
	}{
		{"/", []string{"/"}},
		{"/assets", []string{"/assets"}},
		{"/assets/3", []string{"/assets"}},
		{"/assetsx", nil},
		{"/request", []string{"/request"}},
		{"/issue-return", []string{"/issue-return"}},
		{"/onboarding", []string{"/onboarding"}},
		{"/maintenance/2", nil},
	}
	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			assert.Equal(t, tt.want, active(For(models.RoleHR, tt.current)))
		})
	}
}

func TestResolve(t *testing.T) {
	tests := map[string]string{
		"":                "/",
		"/":               "/",
		"/assets":         "/assets",
		"/assets/":        "/assets",
		"/assets/7":       "/assets/7",
		"/assets/7/extra": "/",
		"/maintenance/2":  "/maintenance/2",
		"/maintenance":    "/",
		"/request":        "/request",
		"/unknown":        "/",
		"//":              "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, Resolve(in), "resolve %q", in)
	}
}
