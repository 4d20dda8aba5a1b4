// Package postgres implements store.Store on PostgreSQL using goqu over the
// pgx database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"hardware-management-api/internal/models"
	"hardware-management-api/internal/store"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Store is the PostgreSQL store
type Store struct {
	db  *sql.DB
	gq  *goqu.Database
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// queryer is what *goqu.Database and *goqu.TxDatabase have in common
type queryer interface {
	From(from ...interface{}) *goqu.SelectDataset
	Insert(table interface{}) *goqu.InsertDataset
	Update(table interface{}) *goqu.UpdateDataset
	Delete(table interface{}) *goqu.DeleteDataset
}

// New wraps an open database handle
func New(db *sql.DB) *Store {
	return &Store{db: db, gq: goqu.New("postgres", db), now: time.Now}
}

// Open connects to dsn with the pgx driver and checks the connection
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return New(db), nil
}

// DB exposes the underlying handle for migrations
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn in a transaction, rolling back on error or panic
func (s *Store) withTx(ctx context.Context, fn func(tx *goqu.TxDatabase) error) (err error) {
	tx, err := s.gq.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("commit transaction: %w", err)
		}
	}()
	return fn(tx)
}

// mapError turns driver errors into store sentinels
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", what, store.ErrConflict)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%s: %w", what, store.ErrConflict)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// escapeLike quotes LIKE wildcards in a user supplied term
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

func assetConditions(f models.AssetFilter) []exp.Expression {
	var conds []exp.Expression
	if term := strings.TrimSpace(f.Search); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		conds = append(conds, goqu.Or(
			goqu.C("name").ILike(pattern),
			goqu.C("asset_id").ILike(pattern),
			goqu.C("serial_number").ILike(pattern),
		))
	}
	if f.CategoryActive() {
		conds = append(conds, goqu.C("category").Eq(f.Category))
	}
	if f.StatusActive() {
		conds = append(conds, goqu.C("status").Eq(f.Status))
	}
	return conds
}

func (s *Store) ListAssets(ctx context.Context, f models.AssetFilter) (models.AssetPage, error) {
	size := f.PageSize
	if size <= 0 {
		size = store.DefaultPageSize
	}
	ds := s.gq.From(assetsTable).Prepared(true).Where(assetConditions(f)...)

	total, err := ds.CountContext(ctx)
	if err != nil {
		return models.AssetPage{}, fmt.Errorf("count assets: %w", err)
	}
	totalPages := store.TotalPages(int(total), size)
	page := store.ClampPage(f.Page, totalPages)

	var rows []assetRow
	err = ds.Order(goqu.C("id").Asc()).
		Limit(uint(size)).
		Offset(uint((page - 1) * size)).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return models.AssetPage{}, fmt.Errorf("list assets: %w", err)
	}

	assets := make([]models.Asset, 0, len(rows))
	for _, r := range rows {
		assets = append(assets, r.model())
	}
	return models.AssetPage{
		Assets:     assets,
		Page:       page,
		PageSize:   size,
		TotalItems: int(total),
		TotalPages: totalPages,
	}, nil
}

func (s *Store) AssetStats(ctx context.Context) (models.AssetStats, error) {
	var row struct {
		Total       int `db:"total"`
		InUse       int `db:"in_use"`
		Maintenance int `db:"maintenance"`
		Available   int `db:"available"`
	}
	_, err := s.gq.From(assetsTable).Prepared(true).Select(
		goqu.COUNT(goqu.Star()).As("total"),
		goqu.L("COUNT(*) FILTER (WHERE status = ?)", string(models.StatusAssigned)).As("in_use"),
		goqu.L("COUNT(*) FILTER (WHERE status = ?)", string(models.StatusMaintenance)).As("maintenance"),
		goqu.L("COUNT(*) FILTER (WHERE status = ?)", string(models.StatusAvailable)).As("available"),
	).ScanStructContext(ctx, &row)
	if err != nil {
		return models.AssetStats{}, fmt.Errorf("asset stats: %w", err)
	}
	return models.AssetStats{
		TotalAssets: row.Total,
		InUse:       row.InUse,
		Maintenance: row.Maintenance,
		Available:   row.Available,
	}, nil
}

func (s *Store) AssetsAssignedTo(ctx context.Context, assignee string) ([]models.Asset, error) {
	var rows []assetRow
	err := s.gq.From(assetsTable).Prepared(true).
		Where(goqu.C("assigned_to").Eq(assignee), goqu.C("assigned_to").Neq(models.Unassigned)).
		Order(goqu.C("id").Asc()).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("assets assigned to %s: %w", assignee, err)
	}
	out := make([]models.Asset, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func getAsset(ctx context.Context, q queryer, id int64, lock bool) (assetRow, error) {
	ds := q.From(assetsTable).Prepared(true).Where(goqu.C("id").Eq(id))
	if lock {
		ds = ds.ForUpdate(exp.Wait)
	}
	var row assetRow
	found, err := ds.ScanStructContext(ctx, &row)
	if err != nil {
		return assetRow{}, fmt.Errorf("get asset %d: %w", id, err)
	}
	if !found {
		return assetRow{}, fmt.Errorf("asset %d: %w", id, store.ErrNotFound)
	}
	return row, nil
}

func saveAsset(ctx context.Context, q queryer, row assetRow) (assetRow, error) {
	var out assetRow
	found, err := q.Update(assetsTable).Prepared(true).
		Set(row).
		Where(goqu.C("id").Eq(row.ID)).
		Returning(goqu.Star()).
		Executor().ScanStructContext(ctx, &out)
	if err != nil {
		return assetRow{}, mapError(err, fmt.Sprintf("update asset %d", row.ID))
	}
	if !found {
		return assetRow{}, fmt.Errorf("asset %d: %w", row.ID, store.ErrNotFound)
	}
	return out, nil
}

func insertAsset(ctx context.Context, q queryer, row assetRow) (assetRow, error) {
	var out assetRow
	_, err := q.Insert(assetsTable).Prepared(true).
		Rows(row).
		Returning(goqu.Star()).
		Executor().ScanStructContext(ctx, &out)
	if err != nil {
		return assetRow{}, mapError(err, "insert asset "+row.AssetID)
	}
	return out, nil
}

func (s *Store) GetAsset(ctx context.Context, id int64) (models.Asset, error) {
	row, err := getAsset(ctx, s.gq, id, false)
	if err != nil {
		return models.Asset{}, err
	}
	return row.model(), nil
}

func (s *Store) AssetBySerial(ctx context.Context, serial string) (models.Asset, error) {
	var row assetRow
	found, err := s.gq.From(assetsTable).Prepared(true).
		Where(goqu.C("serial_number").Eq(serial)).
		ScanStructContext(ctx, &row)
	if err != nil {
		return models.Asset{}, fmt.Errorf("get asset by serial %s: %w", serial, err)
	}
	if !found {
		return models.Asset{}, fmt.Errorf("asset with serial %s: %w", serial, store.ErrNotFound)
	}
	return row.model(), nil
}

func (s *Store) CreateAsset(ctx context.Context, a models.Asset) (models.Asset, error) {
	now := s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	row, err := insertAsset(ctx, s.gq, toAssetRow(a))
	if err != nil {
		return models.Asset{}, err
	}
	return row.model(), nil
}

func (s *Store) UpdateAsset(ctx context.Context, a models.Asset) (models.Asset, error) {
	a.UpdatedAt = s.now()
	row, err := saveAsset(ctx, s.gq, toAssetRow(a))
	if err != nil {
		return models.Asset{}, err
	}
	return row.model(), nil
}

func (s *Store) DeleteAsset(ctx context.Context, id int64) error {
	res, err := s.gq.Delete(assetsTable).Prepared(true).
		Where(goqu.C("id").Eq(id)).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("delete asset %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete asset %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("asset %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) UpsertAssetBySerial(ctx context.Context, a models.Asset) (models.Asset, bool, error) {
	var (
		out     assetRow
		created bool
	)
	err := s.withTx(ctx, func(tx *goqu.TxDatabase) error {
		var existing assetRow
		found, err := tx.From(assetsTable).Prepared(true).
			Where(goqu.C("serial_number").Eq(a.SerialNumber)).
			ForUpdate(exp.Wait).
			ScanStructContext(ctx, &existing)
		if err != nil {
			return fmt.Errorf("find asset by serial %s: %w", a.SerialNumber, err)
		}

		now := s.now()
		a.UpdatedAt = now
		if found {
			current := existing.model()
			a.ID = existing.ID
			a.CreatedAt = existing.CreatedAt
			a.MergeHolder(current)
			if err := models.CheckEdit(current, a); err != nil {
				return fmt.Errorf("%w: %s: %v", store.ErrInvalidState, a.AssetID, err)
			}
			out, err = saveAsset(ctx, tx, toAssetRow(a))
			return err
		}
		a.DefaultHolder()
		if err := a.CheckHolder(); err != nil {
			return fmt.Errorf("%w: %s: %v", store.ErrInvalidState, a.AssetID, err)
		}
		a.CreatedAt = now
		created = true
		out, err = insertAsset(ctx, tx, toAssetRow(a))
		return err
	})
	if err != nil {
		return models.Asset{}, false, err
	}
	return out.model(), created, nil
}

func (s *Store) AddActivity(ctx context.Context, a models.Activity) (models.Activity, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	row := activityRow{Type: string(a.Type), Message: a.Message, Actor: a.Actor, CreatedAt: a.CreatedAt}
	var out activityRow
	_, err := s.gq.Insert(activitiesTable).Prepared(true).
		Rows(row).
		Returning(goqu.Star()).
		Executor().ScanStructContext(ctx, &out)
	if err != nil {
		return models.Activity{}, fmt.Errorf("insert activity: %w", err)
	}
	return out.model(), nil
}

func (s *Store) RecentActivity(ctx context.Context, limit int) ([]models.Activity, error) {
	ds := s.gq.From(activitiesTable).Prepared(true).Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}
	var rows []activityRow
	if err := ds.ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	out := make([]models.Activity, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) CreateRequest(ctx context.Context, r models.AssetRequest) (models.AssetRequest, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	if r.Status == "" {
		r.Status = models.RequestPending
	}
	var out requestRow
	_, err := s.gq.Insert(requestsTable).Prepared(true).
		Rows(toRequestRow(r)).
		Returning(goqu.Star()).
		Executor().ScanStructContext(ctx, &out)
	if err != nil {
		return models.AssetRequest{}, fmt.Errorf("insert request: %w", err)
	}
	return out.model(), nil
}

func getRequest(ctx context.Context, q queryer, id int64, lock bool) (requestRow, error) {
	ds := q.From(requestsTable).Prepared(true).Where(goqu.C("id").Eq(id))
	if lock {
		ds = ds.ForUpdate(exp.Wait)
	}
	var row requestRow
	found, err := ds.ScanStructContext(ctx, &row)
	if err != nil {
		return requestRow{}, fmt.Errorf("get request %d: %w", id, err)
	}
	if !found {
		return requestRow{}, fmt.Errorf("request %d: %w", id, store.ErrNotFound)
	}
	return row, nil
}

func (s *Store) GetRequest(ctx context.Context, id int64) (models.AssetRequest, error) {
	row, err := getRequest(ctx, s.gq, id, false)
	if err != nil {
		return models.AssetRequest{}, err
	}
	return row.model(), nil
}

func (s *Store) ListRequests(ctx context.Context, f store.RequestFilter) ([]models.AssetRequest, error) {
	ds := s.gq.From(requestsTable).Prepared(true)
	if f.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(f.Status)))
	}
	if f.RequestedBy != "" {
		ds = ds.Where(goqu.C("requested_by").Eq(f.RequestedBy))
	}
	if f.NewHireOnly {
		ds = ds.Where(goqu.C("employee_name").Neq(""))
	}

	var rows []requestRow
	if err := ds.Order(goqu.C("created_at").Desc()).ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	out := make([]models.AssetRequest, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) CountRequests(ctx context.Context, status models.RequestStatus) (int, error) {
	ds := s.gq.From(requestsTable).Prepared(true)
	if status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(status)))
	}
	n, err := ds.CountContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("count requests: %w", err)
	}
	return int(n), nil
}

func (s *Store) DecideRequest(ctx context.Context, id int64, d store.Decision) (models.AssetRequest, error) {
	if d.At.IsZero() {
		d.At = s.now()
	}
	var out requestRow
	err := s.withTx(ctx, func(tx *goqu.TxDatabase) error {
		row, err := getRequest(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if row.Status != string(models.RequestPending) {
			return fmt.Errorf("request %d is %s: %w", id, row.Status, store.ErrInvalidState)
		}

		rec := goqu.Record{
			"status":        string(d.Status),
			"decided_by":    d.By,
			"decided_at":    d.At,
			"decision_note": d.Note,
		}
		if d.Issue != nil && d.Status == models.RequestApproved {
			issue := *d.Issue
			if issue.IssuedAt.IsZero() {
				issue.IssuedAt = d.At
			}
			if _, _, err := issueTx(ctx, tx, issue); err != nil {
				return err
			}
			rec["assigned_asset_id"] = issue.AssetID
		}

		found, err := tx.Update(requestsTable).Prepared(true).
			Set(rec).
			Where(goqu.C("id").Eq(id)).
			Returning(goqu.Star()).
			Executor().ScanStructContext(ctx, &out)
		if err != nil {
			return fmt.Errorf("update request %d: %w", id, err)
		}
		if !found {
			return fmt.Errorf("request %d: %w", id, store.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return models.AssetRequest{}, err
	}
	return out.model(), nil
}

func insertMaintenance(ctx context.Context, q queryer, rec models.MaintenanceRecord) (maintenanceRow, error) {
	var out maintenanceRow
	_, err := q.Insert(maintenanceTable).Prepared(true).
		Rows(toMaintenanceRow(rec)).
		Returning(goqu.Star()).
		Executor().ScanStructContext(ctx, &out)
	if err != nil {
		return maintenanceRow{}, fmt.Errorf("insert maintenance record: %w", err)
	}
	return out, nil
}

func (s *Store) LogMaintenance(ctx context.Context, rec models.MaintenanceRecord) (models.MaintenanceRecord, models.Asset, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	var (
		saved maintenanceRow
		asset assetRow
	)
	err := s.withTx(ctx, func(tx *goqu.TxDatabase) error {
		var err error
		asset, err = getAsset(ctx, tx, rec.AssetID, true)
		if err != nil {
			return err
		}
		if asset.Status == string(models.StatusRetired) {
			return fmt.Errorf("asset %s is retired: %w", asset.AssetID, store.ErrInvalidState)
		}
		if status, ok := models.StatusAfter(rec, asset.model()); ok {
			asset.Status = string(status)
			asset.UpdatedAt = rec.CreatedAt
			if asset, err = saveAsset(ctx, tx, asset); err != nil {
				return err
			}
		}
		saved, err = insertMaintenance(ctx, tx, rec)
		return err
	})
	if err != nil {
		return models.MaintenanceRecord{}, models.Asset{}, err
	}
	return saved.model(), asset.model(), nil
}

func (s *Store) ListMaintenance(ctx context.Context, assetID int64) ([]models.MaintenanceRecord, error) {
	if _, err := getAsset(ctx, s.gq, assetID, false); err != nil {
		return nil, err
	}
	var rows []maintenanceRow
	err := s.gq.From(maintenanceTable).Prepared(true).
		Where(goqu.C("asset_id").Eq(assetID)).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list maintenance of asset %d: %w", assetID, err)
	}
	out := make([]models.MaintenanceRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func insertAssignment(ctx context.Context, q queryer, a models.Assignment) (assignmentRow, error) {
	var out assignmentRow
	_, err := q.Insert(assignmentsTable).Prepared(true).
		Rows(toAssignmentRow(a)).
		Returning(goqu.Star()).
		Executor().ScanStructContext(ctx, &out)
	if err != nil {
		return assignmentRow{}, mapError(err, fmt.Sprintf("insert assignment for asset %d", a.AssetID))
	}
	return out, nil
}

// issueTx hands an available asset to the assignee inside tx
func issueTx(ctx context.Context, tx queryer, a models.Assignment) (assignmentRow, assetRow, error) {
	asset, err := getAsset(ctx, tx, a.AssetID, true)
	if err != nil {
		return assignmentRow{}, assetRow{}, err
	}
	if asset.Status != string(models.StatusAvailable) {
		return assignmentRow{}, assetRow{}, fmt.Errorf("asset %s is %s: %w", asset.AssetID, asset.Status, store.ErrInvalidState)
	}
	if a.ConditionOut == "" {
		a.ConditionOut = models.ConditionGood
	}

	asset.Status = string(models.StatusAssigned)
	asset.AssignedTo = a.Assignee
	asset.UpdatedAt = a.IssuedAt
	if asset, err = saveAsset(ctx, tx, asset); err != nil {
		return assignmentRow{}, assetRow{}, err
	}
	row, err := insertAssignment(ctx, tx, a)
	if err != nil {
		return assignmentRow{}, assetRow{}, err
	}
	return row, asset, nil
}

func (s *Store) IssueAsset(ctx context.Context, a models.Assignment) (models.Assignment, models.Asset, error) {
	if a.IssuedAt.IsZero() {
		a.IssuedAt = s.now()
	}
	var (
		assignment assignmentRow
		asset      assetRow
	)
	err := s.withTx(ctx, func(tx *goqu.TxDatabase) error {
		var err error
		assignment, asset, err = issueTx(ctx, tx, a)
		return err
	})
	if err != nil {
		return models.Assignment{}, models.Asset{}, err
	}
	return assignment.model(), asset.model(), nil
}

func (s *Store) ReturnAsset(ctx context.Context, assetID int64, ret store.Return) (models.Assignment, models.Asset, error) {
	if ret.At.IsZero() {
		ret.At = s.now()
	}
	var (
		closed assignmentRow
		asset  assetRow
	)
	err := s.withTx(ctx, func(tx *goqu.TxDatabase) error {
		var err error
		asset, err = getAsset(ctx, tx, assetID, true)
		if err != nil {
			return err
		}
		if asset.Status != string(models.StatusAssigned) {
			return fmt.Errorf("asset %s is %s: %w", asset.AssetID, asset.Status, store.ErrInvalidState)
		}

		var open assignmentRow
		found, err := tx.From(assignmentsTable).Prepared(true).
			Where(goqu.C("asset_id").Eq(assetID), goqu.C("returned_at").IsNull()).
			Order(goqu.C("issued_at").Desc()).
			Limit(1).
			ForUpdate(exp.Wait).
			ScanStructContext(ctx, &open)
		if err != nil {
			return fmt.Errorf("find open assignment of asset %d: %w", assetID, err)
		}

		if found {
			rec := goqu.Record{
				"returned_at":  ret.At,
				"returned_by":  ret.By,
				"condition_in": string(ret.Condition),
			}
			if ret.Notes != "" {
				rec["notes"] = ret.Notes
			}
			if _, err := tx.Update(assignmentsTable).Prepared(true).
				Set(rec).
				Where(goqu.C("id").Eq(open.ID)).
				Returning(goqu.Star()).
				Executor().ScanStructContext(ctx, &closed); err != nil {
				return fmt.Errorf("close assignment %d: %w", open.ID, err)
			}
		} else {
			// Assets loaded without history get their assignment recorded on return
			at := ret.At
			closed, err = insertAssignment(ctx, tx, models.Assignment{
				AssetID:     assetID,
				Assignee:    asset.AssignedTo,
				IssuedAt:    asset.UpdatedAt,
				ReturnedAt:  &at,
				ReturnedBy:  ret.By,
				ConditionIn: ret.Condition,
				Notes:       ret.Notes,
			})
			if err != nil {
				return err
			}
		}

		asset.Status = string(models.StatusOnReturn(ret.Condition))
		asset.AssignedTo = models.Unassigned
		asset.UpdatedAt = ret.At
		if asset, err = saveAsset(ctx, tx, asset); err != nil {
			return err
		}

		if ret.Condition == models.ConditionDamaged {
			if _, err := insertMaintenance(ctx, tx, store.DamageReport(assetID, ret)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Assignment{}, models.Asset{}, err
	}
	return closed.model(), asset.model(), nil
}

func (s *Store) ListAssignments(ctx context.Context, assetID int64) ([]models.Assignment, error) {
	if _, err := getAsset(ctx, s.gq, assetID, false); err != nil {
		return nil, err
	}
	var rows []assignmentRow
	err := s.gq.From(assignmentsTable).Prepared(true).
		Where(goqu.C("asset_id").Eq(assetID)).
		Order(goqu.C("issued_at").Desc()).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("list assignments of asset %d: %w", assetID, err)
	}
	out := make([]models.Assignment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (s *Store) GetAssignment(ctx context.Context, assetID, assignmentID int64) (models.Assignment, error) {
	var row assignmentRow
	found, err := s.gq.From(assignmentsTable).Prepared(true).
		Where(goqu.C("id").Eq(assignmentID), goqu.C("asset_id").Eq(assetID)).
		ScanStructContext(ctx, &row)
	if err != nil {
		return models.Assignment{}, fmt.Errorf("get assignment %d: %w", assignmentID, err)
	}
	if !found {
		return models.Assignment{}, fmt.Errorf("assignment %d of asset %d: %w", assignmentID, assetID, store.ErrNotFound)
	}
	return row.model(), nil
}
