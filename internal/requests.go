package internal

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"hardware-management-api/internal/auth"
	"hardware-management-api/internal/models"
	"hardware-management-api/internal/notify"
	"hardware-management-api/internal/store"

	"go.uber.org/zap"
)

// requestForm returns the request form for the caller's role
func (s *Server) requestForm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.FormFor(auth.RoleFromContext(r.Context())))
}

// createRequest validates and submits an asset request
func (s *Server) createRequest(w http.ResponseWriter, r *http.Request) {
	var in models.CreateRequestInput
	if !decodeJSON(w, r, &in) {
		return
	}
	who, _ := auth.IdentityFromContext(r.Context())
	in.Role = who.Role
	in.Normalize()

	if fields := in.Validate(); fields != nil {
		writeValidation(w, http.StatusUnprocessableEntity, fields)
		return
	}

	req := in.ToRequest(who)
	req.CreatedAt = s.now()
	created, err := s.Store.CreateRequest(r.Context(), req)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	msg := fmt.Sprintf("%s requested a %s", who.Name, strings.ToLower(created.Category))
	if created.IsNewHire() {
		msg = fmt.Sprintf("%s requested a %s for new hire %s", who.Name, strings.ToLower(created.Category), created.EmployeeName)
	}
	s.record(r.Context(), models.ActivityRequest, msg, who.Email)
	s.notify(r.Context(), notify.Event{
		Type:    notify.RequestCreated,
		Message: msg,
		Actor:   who.Email,
		Metadata: map[string]string{
			"request_id": fmt.Sprint(created.ID),
			"priority":   string(created.Priority),
		},
	})
	s.Metrics.RecordAssetRequest(created.Category, string(created.Priority))
	s.Logger.Info("asset request submitted",
		zap.Int64("id", created.ID),
		zap.String("category", created.Category),
		zap.String("requested_by", who.Email))

	writeJSON(w, http.StatusCreated, created)
}

func statusParam(w http.ResponseWriter, r *http.Request) (models.RequestStatus, bool) {
	status := models.RequestStatus(strings.TrimSpace(r.URL.Query().Get("status")))
	switch status {
	case "", models.RequestPending, models.RequestApproved, models.RequestRejected:
		return status, true
	}
	writeError(w, http.StatusBadRequest, "INVALID_STATUS", "status must be one of pending, approved or rejected")
	return "", false
}

// listRequests lists every request, optionally by ?status=
func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	status, ok := statusParam(w, r)
	if !ok {
		return
	}
	reqs, err := s.Store.ListRequests(r.Context(), store.RequestFilter{Status: status})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	meta := unpagedMeta(len(reqs))
	sendListResponse(w, reqs, meta)
}

// myRequests lists the caller's own requests
func (s *Server) myRequests(w http.ResponseWriter, r *http.Request) {
	status, ok := statusParam(w, r)
	if !ok {
		return
	}
	who, _ := auth.IdentityFromContext(r.Context())
	reqs, err := s.Store.ListRequests(r.Context(), store.RequestFilter{Status: status, RequestedBy: who.Email})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	meta := unpagedMeta(len(reqs))
	sendListResponse(w, reqs, meta)
}

// getRequest returns one request to its owner or to staff
func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	req, err := s.Store.GetRequest(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	who, _ := auth.IdentityFromContext(r.Context())
	if !who.Role.IsStaff() && req.RequestedBy != who.Email {
		writeError(w, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "Insufficient permissions")
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) approveRequest(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, models.RequestApproved)
}

func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, models.RequestRejected)
}

// decide approves or rejects a pending request. An approval naming an
// asset issues it to the recipient in the same step.
func (s *Server) decide(w http.ResponseWriter, r *http.Request, status models.RequestStatus) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var in models.DecisionInput
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &in) {
			return
		}
	}
	in.Note = strings.TrimSpace(in.Note)
	if fields := models.ValidateStruct(in); fields != nil {
		writeValidation(w, http.StatusUnprocessableEntity, fields)
		return
	}
	if in.AssetID != nil && status != models.RequestApproved {
		writeError(w, http.StatusBadRequest, "ASSET_NOT_ALLOWED", "asset_id is only accepted on approval")
		return
	}

	ctx := r.Context()
	who, _ := auth.IdentityFromContext(ctx)
	current, err := s.Store.GetRequest(ctx, id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	now := s.now()
	d := store.Decision{Status: status, By: who.Email, Note: in.Note, At: now}
	if in.AssetID != nil {
		d.Issue = &models.Assignment{
			AssetID:      *in.AssetID,
			Assignee:     current.Recipient(),
			IssuedBy:     who.Email,
			IssuedAt:     now,
			ConditionOut: models.ConditionGood,
			Notes:        fmt.Sprintf("Issued for request #%d", id),
		}
	}

	decided, err := s.Store.DecideRequest(ctx, id, d)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	verb, evt := "approved", notify.RequestApproved
	if status == models.RequestRejected {
		verb, evt = "rejected", notify.RequestRejected
	}
	msg := fmt.Sprintf("%s request for %s %s", decided.Category, decided.Recipient(), verb)
	s.record(ctx, models.ActivityRequest, msg, who.Email)
	if decided.AssignedAsset != nil {
		s.record(ctx, models.ActivityAssigned,
			fmt.Sprintf("Asset #%d assigned to %s", *decided.AssignedAsset, decided.Recipient()), who.Email)
	}
	s.notify(ctx, notify.Event{
		Type:    evt,
		Message: msg,
		Actor:   who.Email,
		Metadata: map[string]string{
			"request_id":   fmt.Sprint(decided.ID),
			"requested_by": decided.RequestedBy,
		},
	})
	s.Metrics.RecordWorkflow("request_" + verb)

	writeJSON(w, http.StatusOK, decided)
}

// onboarding lists new-hire requests by joining date with the days left
func (s *Server) onboarding(w http.ResponseWriter, r *http.Request) {
	status, ok := statusParam(w, r)
	if !ok {
		return
	}
	reqs, err := s.Store.ListRequests(r.Context(), store.RequestFilter{Status: status, NewHireOnly: true})
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	now := s.now()
	entries := make([]models.OnboardingEntry, 0, len(reqs))
	for _, req := range reqs {
		days, _ := req.DaysUntil(now)
		entries = append(entries, models.OnboardingEntry{Request: req, DaysUntilJoin: days})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Request.JoiningDate < entries[j].Request.JoiningDate
	})

	meta := unpagedMeta(len(entries))
	sendListResponse(w, entries, meta)
}
