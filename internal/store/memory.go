package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"hardware-management-api/internal/models"
)

// Memory is a Store held in process memory
type Memory struct {
	mu  sync.RWMutex
	now func() time.Time

	assets      []models.Asset
	activity    []models.Activity
	requests    []models.AssetRequest
	maintenance []models.MaintenanceRecord
	assignments []models.Assignment

	nextAsset, nextActivity, nextRequest, nextMaintenance, nextAssignment int64
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty store
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// NewSeededMemory returns a store loaded with the seed catalogue, activity
// feed and pending requests
func NewSeededMemory() *Memory {
	m := NewMemory()
	now := m.now()
	for _, a := range SeedAssets() {
		a.CreatedAt, a.UpdatedAt = now, now
		m.insertAsset(a)
	}
	for _, act := range SeedActivity(now) {
		m.insertActivity(act)
	}
	for _, r := range SeedRequests(now) {
		m.insertRequest(r)
	}
	return m
}

func (m *Memory) insertAsset(a models.Asset) models.Asset {
	m.nextAsset++
	a.ID = m.nextAsset
	m.assets = append(m.assets, a)
	return a
}

func (m *Memory) insertActivity(a models.Activity) models.Activity {
	m.nextActivity++
	a.ID = m.nextActivity
	m.activity = append(m.activity, a)
	return a
}

func (m *Memory) insertRequest(r models.AssetRequest) models.AssetRequest {
	m.nextRequest++
	r.ID = m.nextRequest
	m.requests = append(m.requests, r)
	return r
}

func (m *Memory) insertMaintenance(rec models.MaintenanceRecord) models.MaintenanceRecord {
	m.nextMaintenance++
	rec.ID = m.nextMaintenance
	if rec.Attachments == nil {
		rec.Attachments = []string{}
	}
	m.maintenance = append(m.maintenance, rec)
	return rec
}

func (m *Memory) insertAssignment(a models.Assignment) models.Assignment {
	m.nextAssignment++
	a.ID = m.nextAssignment
	m.assignments = append(m.assignments, a)
	return a
}

func (m *Memory) assetIndex(id int64) (int, error) {
	for i := range m.assets {
		if m.assets[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("asset %d: %w", id, ErrNotFound)
}

// checkUnique rejects a taken asset id or serial number, ignoring the asset
// with id skip
func (m *Memory) checkUnique(a models.Asset, skip int64) error {
	for _, other := range m.assets {
		if other.ID == skip {
			continue
		}
		if other.AssetID == a.AssetID {
			return fmt.Errorf("asset id %s: %w", a.AssetID, ErrConflict)
		}
		if other.SerialNumber == a.SerialNumber {
			return fmt.Errorf("serial number %s: %w", a.SerialNumber, ErrConflict)
		}
	}
	return nil
}

func (m *Memory) ListAssets(ctx context.Context, f models.AssetFilter) (models.AssetPage, error) {
	if err := ctx.Err(); err != nil {
		return models.AssetPage{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Paginate(FilterAssets(m.assets, f), f.Page, f.PageSize), nil
}

func (m *Memory) AssetStats(ctx context.Context) (models.AssetStats, error) {
	if err := ctx.Err(); err != nil {
		return models.AssetStats{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats models.AssetStats
	for _, a := range m.assets {
		stats.Count(a)
	}
	return stats, nil
}

func (m *Memory) AssetsAssignedTo(ctx context.Context, assignee string) ([]models.Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Asset{}
	for _, a := range m.assets {
		if a.IsAssigned() && a.AssignedTo == assignee {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) GetAsset(ctx context.Context, id int64) (models.Asset, error) {
	if err := ctx.Err(); err != nil {
		return models.Asset{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, err := m.assetIndex(id)
	if err != nil {
		return models.Asset{}, err
	}
	return m.assets[i], nil
}

func (m *Memory) AssetBySerial(ctx context.Context, serial string) (models.Asset, error) {
	if err := ctx.Err(); err != nil {
		return models.Asset{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.assets {
		if a.SerialNumber == serial {
			return a, nil
		}
	}
	return models.Asset{}, fmt.Errorf("asset with serial %s: %w", serial, ErrNotFound)
}

func (m *Memory) CreateAsset(ctx context.Context, a models.Asset) (models.Asset, error) {
	if err := ctx.Err(); err != nil {
		return models.Asset{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkUnique(a, 0); err != nil {
		return models.Asset{}, err
	}
	now := m.now()
	a.CreatedAt, a.UpdatedAt = now, now
	return m.insertAsset(a), nil
}

func (m *Memory) UpdateAsset(ctx context.Context, a models.Asset) (models.Asset, error) {
	if err := ctx.Err(); err != nil {
		return models.Asset{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.assetIndex(a.ID)
	if err != nil {
		return models.Asset{}, err
	}
	if err := m.checkUnique(a, a.ID); err != nil {
		return models.Asset{}, err
	}
	a.CreatedAt = m.assets[i].CreatedAt
	a.UpdatedAt = m.now()
	m.assets[i] = a
	return a, nil
}

func (m *Memory) DeleteAsset(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.assetIndex(id)
	if err != nil {
		return err
	}
	m.assets = append(m.assets[:i], m.assets[i+1:]...)
	return nil
}

func (m *Memory) UpsertAssetBySerial(ctx context.Context, a models.Asset) (models.Asset, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Asset{}, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for i := range m.assets {
		if m.assets[i].SerialNumber != a.SerialNumber {
			continue
		}
		a.ID = m.assets[i].ID
		a.MergeHolder(m.assets[i])
		if err := models.CheckEdit(m.assets[i], a); err != nil {
			return models.Asset{}, false, fmt.Errorf("%w: %s: %v", ErrInvalidState, a.AssetID, err)
		}
		if err := m.checkUnique(a, a.ID); err != nil {
			return models.Asset{}, false, err
		}
		a.CreatedAt = m.assets[i].CreatedAt
		a.UpdatedAt = now
		m.assets[i] = a
		return a, false, nil
	}

	a.DefaultHolder()
	if err := a.CheckHolder(); err != nil {
		return models.Asset{}, false, fmt.Errorf("%w: %s: %v", ErrInvalidState, a.AssetID, err)
	}
	if err := m.checkUnique(a, 0); err != nil {
		return models.Asset{}, false, err
	}
	a.CreatedAt, a.UpdatedAt = now, now
	return m.insertAsset(a), true, nil
}

func (m *Memory) AddActivity(ctx context.Context, a models.Activity) (models.Activity, error) {
	if err := ctx.Err(); err != nil {
		return models.Activity{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.CreatedAt.IsZero() {
		a.CreatedAt = m.now()
	}
	return m.insertActivity(a), nil
}

// RecentActivity returns up to limit entries, newest first
func (m *Memory) RecentActivity(ctx context.Context, limit int) ([]models.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Activity, len(m.activity))
	copy(out, m.activity)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) CreateRequest(ctx context.Context, r models.AssetRequest) (models.AssetRequest, error) {
	if err := ctx.Err(); err != nil {
		return models.AssetRequest{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = m.now()
	}
	if r.Status == "" {
		r.Status = models.RequestPending
	}
	return m.insertRequest(r), nil
}

func (m *Memory) GetRequest(ctx context.Context, id int64) (models.AssetRequest, error) {
	if err := ctx.Err(); err != nil {
		return models.AssetRequest{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return models.AssetRequest{}, fmt.Errorf("request %d: %w", id, ErrNotFound)
}

// ListRequests returns matching requests, newest first
func (m *Memory) ListRequests(ctx context.Context, f RequestFilter) ([]models.AssetRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.AssetRequest{}
	for _, r := range m.requests {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) CountRequests(ctx context.Context, status models.RequestStatus) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, r := range m.requests {
		if status == "" || r.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *Memory) DecideRequest(ctx context.Context, id int64, d Decision) (models.AssetRequest, error) {
	if err := ctx.Err(); err != nil {
		return models.AssetRequest{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ri := -1
	for i := range m.requests {
		if m.requests[i].ID == id {
			ri = i
			break
		}
	}
	if ri < 0 {
		return models.AssetRequest{}, fmt.Errorf("request %d: %w", id, ErrNotFound)
	}
	req := m.requests[ri]
	if req.Status != models.RequestPending {
		return models.AssetRequest{}, fmt.Errorf("request %d is %s: %w", id, req.Status, ErrInvalidState)
	}

	if d.At.IsZero() {
		d.At = m.now()
	}
	if d.Issue != nil && d.Status == models.RequestApproved {
		issue := *d.Issue
		if issue.IssuedAt.IsZero() {
			issue.IssuedAt = d.At
		}
		assigned, _, err := m.issueLocked(issue)
		if err != nil {
			return models.AssetRequest{}, err
		}
		req.AssignedAsset = &assigned.AssetID
	}

	req.Status = d.Status
	req.DecidedBy = d.By
	req.DecidedAt = &d.At
	req.DecisionNote = d.Note
	m.requests[ri] = req
	return req, nil
}

func (m *Memory) LogMaintenance(ctx context.Context, rec models.MaintenanceRecord) (models.MaintenanceRecord, models.Asset, error) {
	if err := ctx.Err(); err != nil {
		return models.MaintenanceRecord{}, models.Asset{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.assetIndex(rec.AssetID)
	if err != nil {
		return models.MaintenanceRecord{}, models.Asset{}, err
	}
	asset := m.assets[i]
	if asset.Status == models.StatusRetired {
		return models.MaintenanceRecord{}, models.Asset{}, fmt.Errorf("asset %s is retired: %w", asset.AssetID, ErrInvalidState)
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now()
	}
	if status, ok := models.StatusAfter(rec, asset); ok {
		asset.Status = status
		asset.UpdatedAt = rec.CreatedAt
		m.assets[i] = asset
	}
	return m.insertMaintenance(rec), asset, nil
}

// ListMaintenance returns the log of an asset, newest first
func (m *Memory) ListMaintenance(ctx context.Context, assetID int64) ([]models.MaintenanceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := m.assetIndex(assetID); err != nil {
		return nil, err
	}
	out := []models.MaintenanceRecord{}
	for _, rec := range m.maintenance {
		if rec.AssetID == assetID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) IssueAsset(ctx context.Context, a models.Assignment) (models.Assignment, models.Asset, error) {
	if err := ctx.Err(); err != nil {
		return models.Assignment{}, models.Asset{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.IssuedAt.IsZero() {
		a.IssuedAt = m.now()
	}
	return m.issueLocked(a)
}

func (m *Memory) issueLocked(a models.Assignment) (models.Assignment, models.Asset, error) {
	i, err := m.assetIndex(a.AssetID)
	if err != nil {
		return models.Assignment{}, models.Asset{}, err
	}
	asset := m.assets[i]
	if asset.Status != models.StatusAvailable {
		return models.Assignment{}, models.Asset{}, fmt.Errorf("asset %s is %s: %w", asset.AssetID, asset.Status, ErrInvalidState)
	}
	if a.ConditionOut == "" {
		a.ConditionOut = models.ConditionGood
	}

	asset.Status = models.StatusAssigned
	asset.AssignedTo = a.Assignee
	asset.UpdatedAt = a.IssuedAt
	m.assets[i] = asset
	return m.insertAssignment(a), asset, nil
}

func (m *Memory) ReturnAsset(ctx context.Context, assetID int64, ret Return) (models.Assignment, models.Asset, error) {
	if err := ctx.Err(); err != nil {
		return models.Assignment{}, models.Asset{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i, err := m.assetIndex(assetID)
	if err != nil {
		return models.Assignment{}, models.Asset{}, err
	}
	asset := m.assets[i]
	if asset.Status != models.StatusAssigned {
		return models.Assignment{}, models.Asset{}, fmt.Errorf("asset %s is %s: %w", asset.AssetID, asset.Status, ErrInvalidState)
	}
	if ret.At.IsZero() {
		ret.At = m.now()
	}

	// Close the open assignment; seeded assets may have none on record
	var closed models.Assignment
	found := false
	for j := len(m.assignments) - 1; j >= 0; j-- {
		if m.assignments[j].AssetID == assetID && m.assignments[j].Open() {
			at := ret.At
			m.assignments[j].ReturnedAt = &at
			m.assignments[j].ReturnedBy = ret.By
			m.assignments[j].ConditionIn = ret.Condition
			if ret.Notes != "" {
				m.assignments[j].Notes = ret.Notes
			}
			closed, found = m.assignments[j], true
			break
		}
	}
	if !found {
		at := ret.At
		closed = m.insertAssignment(models.Assignment{
			AssetID:     assetID,
			Assignee:    asset.AssignedTo,
			IssuedAt:    asset.UpdatedAt,
			ReturnedAt:  &at,
			ReturnedBy:  ret.By,
			ConditionIn: ret.Condition,
			Notes:       ret.Notes,
		})
	}

	asset.Status = models.StatusOnReturn(ret.Condition)
	asset.AssignedTo = models.Unassigned
	asset.UpdatedAt = ret.At
	m.assets[i] = asset

	if ret.Condition == models.ConditionDamaged {
		m.insertMaintenance(DamageReport(assetID, ret))
	}
	return closed, asset, nil
}

// ListAssignments returns the assignment history of an asset, newest first
func (m *Memory) ListAssignments(ctx context.Context, assetID int64) ([]models.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := m.assetIndex(assetID); err != nil {
		return nil, err
	}
	out := []models.Assignment{}
	for _, a := range m.assignments {
		if a.AssetID == assetID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out, nil
}

func (m *Memory) GetAssignment(ctx context.Context, assetID, assignmentID int64) (models.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return models.Assignment{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, a := range m.assignments {
		if a.ID == assignmentID && a.AssetID == assetID {
			return a, nil
		}
	}
	return models.Assignment{}, fmt.Errorf("assignment %d of asset %d: %w", assignmentID, assetID, ErrNotFound)
}
