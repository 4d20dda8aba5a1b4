package store

import "hardware-management-api/internal/models"

// DefaultPageSize is the fixed page size of the asset list
const DefaultPageSize = 10

// TotalPages returns the page count for total items. An empty result has
// zero pages.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage keeps page inside [1, totalPages]
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// FilterAssets returns the assets accepted by f, preserving order
func FilterAssets(assets []models.Asset, f models.AssetFilter) []models.Asset {
	out := make([]models.Asset, 0, len(assets))
	for _, a := range assets {
		if f.Accepts(a) {
			out = append(out, a)
		}
	}
	return out
}

// Paginate slices one page out of already filtered assets
func Paginate(filtered []models.Asset, page, pageSize int) models.AssetPage {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(filtered)
	totalPages := TotalPages(total, pageSize)
	page = ClampPage(page, totalPages)

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}

	rows := make([]models.Asset, 0, end-start)
	rows = append(rows, filtered[start:end]...)

	return models.AssetPage{
		Assets:     rows,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
