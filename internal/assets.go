package internal

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"hardware-management-api/internal/auth"
	"hardware-management-api/internal/models"
	"hardware-management-api/internal/notify"
	"hardware-management-api/internal/store"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// qrSize is the edge length of asset QR codes in pixels
const qrSize = 256

// listAssets handles asset listing with search, filters and pagination
func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	page, err := s.Store.ListAssets(r.Context(), params.filter)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	meta := newListMeta(page.Page, page.PageSize, len(page.Assets), page.TotalItems, page.TotalPages)
	meta.FilterKey = params.filterKey
	meta.PageReset = params.pageReset
	sendListResponse(w, page.Assets, meta)
}

type filterOptions struct {
	Categories []string          `json:"categories"`
	Statuses   []string          `json:"statuses"`
	Badges     map[string]string `json:"badges"`
	PageSize   int               `json:"page_size"`
}

// assetFilters returns the options of the asset list filters
func (s *Server) assetFilters(w http.ResponseWriter, _ *http.Request) {
	opts := filterOptions{
		Categories: models.ListCategories,
		Statuses:   make([]string, 0, len(models.AssetStatuses)),
		Badges:     make(map[string]string, len(models.AssetStatuses)),
		PageSize:   store.DefaultPageSize,
	}
	for _, st := range models.AssetStatuses {
		opts.Statuses = append(opts.Statuses, string(st))
		opts.Badges[string(st)] = st.BadgeClass()
	}
	writeJSON(w, http.StatusOK, opts)
}

// getAsset returns an asset with its assignment history and maintenance log
func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	a, err := s.Store.GetAsset(ctx, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	assignments, err := s.Store.ListAssignments(ctx, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	maintenance, err := s.Store.ListMaintenance(ctx, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.AssetDetail{
		Asset:       a,
		BadgeClass:  a.Status.BadgeClass(),
		Assignments: assignments,
		Maintenance: maintenance,
	})
}

// createAsset handles creating a new asset
func (s *Server) createAsset(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fields := models.ValidateStruct(req); fields != nil {
		writeValidation(w, http.StatusUnprocessableEntity, fields)
		return
	}

	asset := req.ToAsset()
	if err := asset.CheckHolder(); err != nil {
		writeValidation(w, http.StatusUnprocessableEntity, map[string]string{"status": err.Error()})
		return
	}

	a, err := s.Store.CreateAsset(r.Context(), asset)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	s.Logger.Info("asset created", zap.Int64("id", a.ID), zap.String("asset_id", a.AssetID))
	w.Header().Set("Location", fmt.Sprintf("/assets/%d", a.ID))
	writeJSON(w, http.StatusCreated, a)
}

// updateAsset applies a partial update to an asset
func (s *Server) updateAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req models.UpdateAssetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Empty() {
		writeError(w, http.StatusBadRequest, "NO_FIELDS", "at least one field must be provided")
		return
	}
	if fields := models.ValidateStruct(req); fields != nil {
		writeValidation(w, http.StatusUnprocessableEntity, fields)
		return
	}

	a, err := s.Store.GetAsset(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	before := a
	req.Apply(&a)
	if err := models.CheckEdit(before, a); err != nil {
		if errors.Is(err, models.ErrHolderChange) {
			writeError(w, http.StatusConflict, "INVALID_STATE", err.Error())
			return
		}
		writeValidation(w, http.StatusUnprocessableEntity, map[string]string{"status": err.Error()})
		return
	}

	updated, err := s.Store.UpdateAsset(r.Context(), a)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// deleteAsset removes an asset
func (s *Server) deleteAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if err := s.Store.DeleteAsset(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	s.Logger.Info("asset deleted", zap.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// assetQR renders a QR code pointing at the asset detail page
func (s *Server) assetQR(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	if _, err := s.Store.GetAsset(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	size := qrSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > 1024 {
			writeError(w, http.StatusBadRequest, "INVALID_SIZE", "size must be between 64 and 1024")
			return
		}
		size = n
	}

	png, err := qrcode.Encode(s.assetLink(id), qrcode.Medium, size)
	if err != nil {
		s.Logger.Error("qr encode failed", zap.Int64("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "QR_FAILED", "failed to render QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = w.Write(png)
}

// reportIssue lets any user flag a problem with an asset
func (s *Server) reportIssue(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req models.ReportIssueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Description = strings.TrimSpace(req.Description)
	if fields := models.ValidateStruct(req); fields != nil {
		writeValidation(w, http.StatusUnprocessableEntity, fields)
		return
	}

	who, _ := auth.IdentityFromContext(r.Context())
	rec, a, err := s.Store.LogMaintenance(r.Context(), models.MaintenanceRecord{
		AssetID:     id,
		Kind:        models.KindIssue,
		Description: req.Description,
		Status:      models.MaintenanceReported,
		Attachments: []string{},
		LoggedBy:    who.Email,
		CreatedAt:   s.now(),
	})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	msg := fmt.Sprintf("Issue reported for %s: %s", a.Name, req.Description)
	s.record(r.Context(), models.ActivityIssue, msg, who.Email)
	s.notify(r.Context(), notify.Event{
		Type:    notify.IssueReported,
		Message: msg,
		Actor:   who.Email,
		Link:    s.assetLink(a.ID),
	})
	s.Metrics.RecordWorkflow("issue_reported")

	writeJSON(w, http.StatusCreated, rec)
}
