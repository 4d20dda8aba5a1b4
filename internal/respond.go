package internal

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"hardware-management-api/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// APIVersion is reported in list metadata
const APIVersion = "1.0.0"

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// ErrorBody is the JSON error shape of every handler
type ErrorBody struct {
	Error    string            `json:"error"`
	Code     string            `json:"code"`
	Details  map[string]string `json:"details,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorBody{Error: message, Code: code})
}

func writeValidation(w http.ResponseWriter, status int, fields map[string]string) {
	writeJSON(w, status, ErrorBody{
		Error:   "Validation failed",
		Code:    "VALIDATION_FAILED",
		Details: fields,
	})
}

// writeStoreError maps store sentinels to HTTP statuses and logs anything else
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "CONFLICT", "asset id or serial number already exists")
	case errors.Is(err, store.ErrInvalidState):
		writeError(w, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, r.Context().Err()):
		writeError(w, http.StatusServiceUnavailable, "CANCELED", "request canceled")
	default:
		s.Logger.Error("store error",
			zap.String("route", routePattern(r)),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

// decodeJSON reads a size-limited JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return false
	}
	return true
}

// idParam parses a positive integer URL parameter
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

// listMeta is the pagination block of list responses
type listMeta struct {
	Page        int    `json:"page"`
	PageSize    int    `json:"page_size"`
	Showing     int    `json:"showing"`
	TotalItems  int    `json:"total_items"`
	TotalPages  int    `json:"total_pages"`
	HasNext     bool   `json:"has_next"`
	HasPrevious bool   `json:"has_previous"`
	FilterKey   string `json:"filter_key,omitempty"`
	PageReset   bool   `json:"page_reset"`
	Timestamp   string `json:"timestamp"`
	Version     string `json:"version"`
}

func newListMeta(page, pageSize, showing, total, totalPages int) listMeta {
	return listMeta{
		Page:        page,
		PageSize:    pageSize,
		Showing:     showing,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Version:     APIVersion,
	}
}

// unpagedMeta describes a list returned in full
func unpagedMeta(n int) listMeta {
	return newListMeta(1, n, n, n, store.TotalPages(n, n))
}

// sendListResponse writes {data, meta}
func sendListResponse(w http.ResponseWriter, data any, meta listMeta) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data": data,
		"meta": meta,
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
