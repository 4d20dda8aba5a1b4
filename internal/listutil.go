package internal

import (
	"net/http"
	"strconv"
	"strings"

	"hardware-management-api/internal/models"
	"hardware-management-api/internal/store"

	"github.com/cespare/xxhash/v2"
)

// listParams holds the query parameters of the asset list
type listParams struct {
	filter    models.AssetFilter
	filterKey string
	pageReset bool
}

// filterKey fingerprints the active filters. Empty and "all" hash alike so
// that clearing a filter and choosing "all" do not count as a change.
func filterKey(f models.AssetFilter) string {
	norm := func(v string) string {
		if v == models.AllFilter {
			return ""
		}
		return v
	}
	h := xxhash.New()
	_, _ = h.WriteString(strings.ToLower(strings.TrimSpace(f.Search)))
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(norm(f.Category))
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(norm(f.Status))
	return strconv.FormatUint(h.Sum64(), 16)
}

// parseListParams parses q, category, status, page and filter_key.
// Page defaults to 1. A filter_key that no longer matches the filters
// resets the page to 1.
func parseListParams(r *http.Request) listParams {
	values := r.URL.Query()

	page := 1
	if s := strings.TrimSpace(values.Get("page")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			page = v
		}
	}

	p := listParams{
		filter: models.AssetFilter{
			Search:   strings.TrimSpace(values.Get("q")),
			Category: strings.TrimSpace(values.Get("category")),
			Status:   strings.TrimSpace(values.Get("status")),
			Page:     page,
			PageSize: store.DefaultPageSize,
		},
	}
	p.filterKey = filterKey(p.filter)

	if prev := strings.TrimSpace(values.Get("filter_key")); prev != "" && prev != p.filterKey {
		p.filter.Page = 1
		p.pageReset = true
	}
	return p
}
