package internal

import (
	"net/http"

	"hardware-management-api/internal/auth"
	"hardware-management-api/internal/models"
)

// recentActivityLimit is how many feed entries the dashboard shows
const recentActivityLimit = 5

type pendingActions struct {
	PendingRequests int    `json:"pending_requests"`
	ReviewPath      string `json:"review_path"`
}

type dashboardResponse struct {
	Stats          models.AssetStats     `json:"stats"`
	MyAssets       []models.Asset        `json:"my_assets"`
	RecentActivity []models.ActivityView `json:"recent_activity"`
	PendingActions *pendingActions       `json:"pending_actions,omitempty"`
}

// getDashboard returns the stats, the caller's assets and the activity feed.
// Admin and HR also get the pending request count.
func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := auth.IdentityFromContext(ctx)

	stats, err := s.Store.AssetStats(ctx)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	mine, err := s.Store.AssetsAssignedTo(ctx, id.Name)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	feed, err := s.Store.RecentActivity(ctx, recentActivityLimit)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	now := s.now()
	views := make([]models.ActivityView, 0, len(feed))
	for _, a := range feed {
		views = append(views, a.View(now))
	}

	resp := dashboardResponse{
		Stats:          stats,
		MyAssets:       mine,
		RecentActivity: views,
	}
	if id.Role.IsStaff() {
		n, err := s.Store.CountRequests(ctx, models.RequestPending)
		if err != nil {
			s.writeStoreError(w, r, err)
			return
		}
		resp.PendingActions = &pendingActions{PendingRequests: n, ReviewPath: "/requests"}
	}

	writeJSON(w, http.StatusOK, resp)
}
