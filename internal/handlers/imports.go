package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hardware-management-api/internal/auth"
	"hardware-management-api/internal/models"
	"hardware-management-api/internal/store"
	"hardware-management-api/pkg/importer"

	"go.uber.org/zap"
)

// ImportsHandler handles Excel import operations
type ImportsHandler struct {
	Store       store.Store
	MaxBytes    int64
	MappingPath string
	Logger      *zap.Logger
}

// NewImportsHandler creates a new imports handler using the embedded mapping
func NewImportsHandler(st store.Store, log *zap.Logger) *ImportsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImportsHandler{
		Store:    st,
		MaxBytes: 20 << 20, // 20 MB
		Logger:   log,
	}
}

// StoreSink writes imported rows through a store.Store
type StoreSink struct {
	Store store.Store
}

func (s StoreSink) Exists(ctx context.Context, serial string) (bool, error) {
	_, err := s.Store.AssetBySerial(ctx, serial)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s StoreSink) Upsert(ctx context.Context, rec importer.Record) (bool, error) {
	a := models.CreateAssetRequest{
		AssetID:      rec.AssetID,
		Name:         rec.Name,
		SerialNumber: rec.SerialNumber,
		Category:     rec.Category,
		Status:       models.AssetStatus(rec.Status),
		AssignedTo:   rec.AssignedTo,
		PurchaseDate: rec.PurchaseDate,
	}
	if fields := models.ValidateStruct(a); fields != nil {
		return false, fmt.Errorf("invalid asset: %s", joinFields(fields))
	}
	// Blank status and assignee cells keep what the workflows recorded
	asset := a.ToAsset()
	if rec.Blank["status"] {
		asset.Status = ""
	}
	if rec.Blank["assigned_to"] {
		asset.AssignedTo = ""
	}
	_, created, err := s.Store.UpsertAssetBySerial(ctx, asset)
	if errors.Is(err, store.ErrConflict) {
		return false, fmt.Errorf("asset id %s belongs to another serial number", rec.AssetID)
	}
	return created, err
}

func joinFields(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for _, msg := range fields {
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}

// UploadExcel handles Excel file uploads for asset import
func (h *ImportsHandler) UploadExcel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)

	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		writeError(w, http.StatusBadRequest, "INVALID_CONTENT_TYPE", "content-type must be multipart/form-data")
		return
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "invalid multipart form: "+err.Error())
		return
	}

	dryRun := r.FormValue("dry_run") == "true"
	maxErrors := 50
	if v := r.FormValue("max_errors"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "INVALID_MAX_ERRORS", "max_errors must be a positive integer")
			return
		}
		maxErrors = n
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "FILE_REQUIRED", "file is required")
		return
	}
	defer file.Close()

	if !isXLSX(header) {
		writeError(w, http.StatusBadRequest, "INVALID_FILE_TYPE", "only .xlsx files are accepted")
		return
	}

	actor := ""
	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		actor = id.Email
	}

	sum, impErr := importer.ImportExcel(r.Context(), StoreSink{Store: h.Store}, file, importer.ImportOptions{
		MappingPath: h.MappingPath,
		DryRun:      dryRun,
		MaxErrors:   maxErrors,
	})
	if impErr != nil {
		h.Logger.Warn("excel import failed",
			zap.String("file", header.Filename),
			zap.String("actor", actor),
			zap.Error(impErr))
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "IMPORT_FAILED",
			"details": impErr.Error(),
			"data":    sum,
		})
		return
	}

	h.Logger.Info("excel import finished",
		zap.String("file", header.Filename),
		zap.String("actor", actor),
		zap.Bool("dry_run", dryRun),
		zap.Int("inserted", sum.Inserted),
		zap.Int("updated", sum.Updated),
		zap.Int("errors", sum.Errors))

	writeJSON(w, http.StatusOK, map[string]any{
		"data": sum,
		"meta": map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   "1.0.0",
		},
	})
}

// isXLSX checks if the uploaded file is an Excel .xlsx file
func isXLSX(h *multipart.FileHeader) bool {
	return strings.HasSuffix(strings.ToLower(h.Filename), ".xlsx")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": message, "code": code})
}
