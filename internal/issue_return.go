package internal

import (
	"fmt"
	"net/http"
	"strings"

	"hardware-management-api/internal/auth"
	"hardware-management-api/internal/models"
	"hardware-management-api/internal/notify"
	"hardware-management-api/internal/store"
	"hardware-management-api/pkg/handover"

	"go.uber.org/zap"
)

// issueAsset hands an available asset to an assignee
func (s *Server) issueAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req models.IssueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Assignee = strings.TrimSpace(req.Assignee)
	if fields := models.ValidateStruct(req); fields != nil {
		writeValidation(w, http.StatusUnprocessableEntity, fields)
		return
	}

	who, _ := auth.IdentityFromContext(r.Context())
	assignment, a, err := s.Store.IssueAsset(r.Context(), models.Assignment{
		AssetID:      id,
		Assignee:     req.Assignee,
		IssuedBy:     who.Email,
		IssuedAt:     s.now(),
		ConditionOut: req.Condition,
		Notes:        strings.TrimSpace(req.Notes),
	})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	msg := fmt.Sprintf("%s assigned to %s", a.Name, a.AssignedTo)
	s.record(r.Context(), models.ActivityAssigned, msg, who.Email)
	s.notify(r.Context(), notify.Event{
		Type:    notify.AssetIssued,
		Message: msg,
		Actor:   who.Email,
		Link:    s.assetLink(a.ID),
	})
	s.Metrics.RecordWorkflow("asset_issued")
	s.Logger.Info("asset issued", zap.Int64("asset", a.ID), zap.String("assignee", a.AssignedTo))

	writeJSON(w, http.StatusOK, map[string]any{
		"assignment": assignment,
		"asset":      a,
	})
}

// returnAsset takes an assigned asset back
func (s *Server) returnAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	var req models.ReturnRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fields := models.ValidateStruct(req); fields != nil {
		writeValidation(w, http.StatusUnprocessableEntity, fields)
		return
	}

	who, _ := auth.IdentityFromContext(r.Context())
	assignment, a, err := s.Store.ReturnAsset(r.Context(), id, store.Return{
		By:        who.Email,
		Condition: req.Condition,
		Notes:     strings.TrimSpace(req.Notes),
		At:        s.now(),
	})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	msg := fmt.Sprintf("%s returned by %s", a.Name, assignment.Assignee)
	if req.Condition == models.ConditionDamaged {
		msg += " (damaged)"
	}
	s.record(r.Context(), models.ActivityReturned, msg, who.Email)
	s.notify(r.Context(), notify.Event{
		Type:    notify.AssetReturned,
		Message: msg,
		Actor:   who.Email,
		Link:    s.assetLink(a.ID),
		Metadata: map[string]string{
			"condition": string(req.Condition),
		},
	})
	s.Metrics.RecordWorkflow("asset_returned")

	writeJSON(w, http.StatusOK, map[string]any{
		"assignment": assignment,
		"asset":      a,
	})
}

// listAssignments returns the assignment history of an asset
func (s *Server) listAssignments(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	list, err := s.Store.ListAssignments(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	sendListResponse(w, list, unpagedMeta(len(list)))
}

// handoverDocument streams the signed-handover workbook of one assignment
func (s *Server) handoverDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	assignmentID, ok := idParam(w, r, "assignmentID")
	if !ok {
		return
	}

	a, err := s.Store.GetAsset(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	as, err := s.Store.GetAssignment(r.Context(), id, assignmentID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	doc := handover.Document{
		AssetID:      a.AssetID,
		AssetName:    a.Name,
		SerialNumber: a.SerialNumber,
		Category:     a.Category,
		Assignee:     as.Assignee,
		IssuedBy:     as.IssuedBy,
		IssuedAt:     as.IssuedAt,
		ConditionOut: string(as.ConditionOut),
		ReturnedBy:   as.ReturnedBy,
		ReturnedAt:   as.ReturnedAt,
		ConditionIn:  string(as.ConditionIn),
		Notes:        as.Notes,
		GeneratedAt:  s.now(),
	}
	data, err := handover.Build(doc)
	if err != nil {
		s.Logger.Error("handover build failed", zap.Int64("assignment", assignmentID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "HANDOVER_FAILED", "failed to build handover document")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.Filename()))
	_, _ = w.Write(data)
}
