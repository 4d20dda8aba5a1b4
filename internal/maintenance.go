package internal

import (
	"fmt"
	"net/http"

	"hardware-management-api/internal/auth"
	"hardware-management-api/internal/models"
	"hardware-management-api/internal/notify"

	"go.uber.org/zap"
)

// listMaintenance returns the maintenance history of an asset, newest first
func (s *Server) listMaintenance(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	records, err := s.Store.ListMaintenance(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	sendListResponse(w, records, unpagedMeta(len(records)))
}

// logMaintenance records servicing and moves the asset status with it
func (s *Server) logMaintenance(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req models.LogMaintenanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fields := models.ValidateStruct(req); fields != nil {
		writeValidation(w, http.StatusUnprocessableEntity, fields)
		return
	}

	who, _ := auth.IdentityFromContext(r.Context())
	rec := req.ToRecord(id, who.Email)
	rec.CreatedAt = s.now()

	saved, a, err := s.Store.LogMaintenance(r.Context(), rec)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	msg := fmt.Sprintf("%s maintenance %s", a.Name, humanStatus(saved.Status))
	s.record(r.Context(), models.ActivityMaintenance, msg, who.Email)
	s.notify(r.Context(), notify.Event{
		Type:    notify.MaintenanceLogged,
		Message: msg,
		Actor:   who.Email,
		Link:    s.assetLink(a.ID),
		Metadata: map[string]string{
			"status":       string(saved.Status),
			"asset_status": string(a.Status),
		},
	})
	s.Metrics.RecordWorkflow("maintenance_logged")
	s.Logger.Info("maintenance logged",
		zap.Int64("asset", a.ID),
		zap.String("status", string(saved.Status)),
		zap.String("asset_status", string(a.Status)))

	writeJSON(w, http.StatusCreated, map[string]any{
		"record": saved,
		"asset":  a,
	})
}

func humanStatus(st models.MaintenanceStatus) string {
	switch st {
	case models.MaintenanceScheduled:
		return "scheduled"
	case models.MaintenanceInProgress:
		return "in progress"
	case models.MaintenanceCompleted:
		return "completed"
	default:
		return string(st)
	}
}
