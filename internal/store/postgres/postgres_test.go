package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"hardware-management-api/internal/models"
	"hardware-management-api/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

var assetColumns = []string{
	"id", "asset_id", "name", "serial_number", "category", "status",
	"assigned_to", "purchase_date", "created_at", "updated_at",
}

func setupTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := New(db)
	s.now = func() time.Time { return fixedNow }
	return s, mock
}

func assetRows(assets ...models.Asset) *sqlmock.Rows {
	rows := sqlmock.NewRows(assetColumns)
	for _, a := range assets {
		rows.AddRow(a.ID, a.AssetID, a.Name, a.SerialNumber, a.Category, string(a.Status),
			a.AssignedTo, a.PurchaseDate, fixedNow, fixedNow)
	}
	return rows
}

func laptop(id int64, status models.AssetStatus, assignee string) models.Asset {
	return models.Asset{
		ID:           id,
		AssetID:      "HW-00" + string(rune('0'+id)),
		Name:         "MacBook Pro 16\"",
		SerialNumber: "SN-" + string(rune('0'+id)),
		Category:     "Laptop",
		Status:       status,
		AssignedTo:   assignee,
		PurchaseDate: "15/01/2024",
	}
}

func TestListAssetsClampsPage(t *testing.T) {
	s, mock := setupTestStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS "count" FROM "assets"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT .+ FROM "assets" WHERE .+ ORDER BY "id" ASC LIMIT .+ OFFSET`).
		WillReturnRows(assetRows(
			laptop(1, models.StatusAvailable, models.Unassigned),
			laptop(2, models.StatusAvailable, models.Unassigned),
		))

	page, err := s.ListAssets(context.Background(), models.AssetFilter{
		Search:   "mac",
		Category: "Laptop",
		Status:   models.AllFilter,
		Page:     9,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 12, page.TotalItems)
	assert.Equal(t, store.DefaultPageSize, page.PageSize)
	require.Len(t, page.Assets, 2)
	assert.Equal(t, models.StatusAvailable, page.Assets[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAssetsEmpty(t *testing.T) {
	s, mock := setupTestStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .+ FROM "assets"`).
		WillReturnRows(sqlmock.NewRows(assetColumns))

	page, err := s.ListAssets(context.Background(), models.AssetFilter{Search: "nothing"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 0, page.TotalPages)
	assert.Empty(t, page.Assets)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssetStats(t *testing.T) {
	s, mock := setupTestStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS "total", COUNT\(\*\) FILTER`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "in_use", "maintenance", "available"}).
			AddRow(5, 2, 1, 2))

	stats, err := s.AssetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.AssetStats{TotalAssets: 5, InUse: 2, Maintenance: 1, Available: 2}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAssetNotFound(t *testing.T) {
	s, mock := setupTestStore(t)

	mock.ExpectQuery(`SELECT .+ FROM "assets" WHERE \("id" = \$1\)`).
		WillReturnRows(sqlmock.NewRows(assetColumns))

	_, err := s.GetAsset(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssetConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"pgx", &pgconn.PgError{Code: "23505", Message: "duplicate key"}},
		{"pq", &pq.Error{Code: "23505", Message: "duplicate key"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := setupTestStore(t)
			mock.ExpectQuery(`INSERT INTO "assets"`).WillReturnError(tt.err)

			_, err := s.CreateAsset(context.Background(), laptop(1, models.StatusAvailable, models.Unassigned))
			assert.ErrorIs(t, err, store.ErrConflict)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreateAssetReturnsRow(t *testing.T) {
	s, mock := setupTestStore(t)
	a := laptop(7, models.StatusAvailable, models.Unassigned)

	mock.ExpectQuery(`INSERT INTO "assets" .+ RETURNING \*`).WillReturnRows(assetRows(a))

	out, err := s.CreateAsset(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.ID)
	assert.Equal(t, fixedNow, out.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAsset(t *testing.T) {
	s, mock := setupTestStore(t)

	mock.ExpectExec(`DELETE FROM "assets"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "assets"`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.DeleteAsset(context.Background(), 1))
	assert.ErrorIs(t, s.DeleteAsset(context.Background(), 1), store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertAssetBySerial(t *testing.T) {
	a := laptop(3, models.StatusAvailable, models.Unassigned)

	t.Run("inserts unknown serial", func(t *testing.T) {
		s, mock := setupTestStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .+ FROM "assets" WHERE .+"serial_number".+ FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows(assetColumns))
		mock.ExpectQuery(`INSERT INTO "assets"`).WillReturnRows(assetRows(a))
		mock.ExpectCommit()

		_, created, err := s.UpsertAssetBySerial(context.Background(), a)
		require.NoError(t, err)
		assert.True(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("updates known serial", func(t *testing.T) {
		s, mock := setupTestStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .+ FROM "assets" .+ FOR UPDATE`).WillReturnRows(assetRows(a))
		mock.ExpectQuery(`UPDATE "assets" SET .+ RETURNING \*`).WillReturnRows(assetRows(a))
		mock.ExpectCommit()

		out, created, err := s.UpsertAssetBySerial(context.Background(), a)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, a.ID, out.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keeps holder of issued asset", func(t *testing.T) {
		s, mock := setupTestStore(t)
		issued := laptop(3, models.StatusAssigned, "Ana Lima")
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .+ FROM "assets" .+ FOR UPDATE`).WillReturnRows(assetRows(issued))
		mock.ExpectQuery(`UPDATE "assets" SET .+ RETURNING \*`).WillReturnRows(assetRows(issued))
		mock.ExpectCommit()

		row := issued
		row.Status, row.AssignedTo = "", ""
		out, _, err := s.UpsertAssetBySerial(context.Background(), row)
		require.NoError(t, err)
		assert.Equal(t, models.StatusAssigned, out.Status)
		assert.Equal(t, "Ana Lima", out.AssignedTo)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects releasing issued asset", func(t *testing.T) {
		s, mock := setupTestStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT .+ FROM "assets" .+ FOR UPDATE`).
			WillReturnRows(assetRows(laptop(3, models.StatusAssigned, "Ana Lima")))
		mock.ExpectRollback()

		_, _, err := s.UpsertAssetBySerial(context.Background(), a)
		assert.ErrorIs(t, err, store.ErrInvalidState)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIssueAsset(t *testing.T) {
	s, mock := setupTestStore(t)
	available := laptop(2, models.StatusAvailable, models.Unassigned)
	assigned := laptop(2, models.StatusAssigned, "Jane Smith")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "assets" .+ FOR UPDATE`).WillReturnRows(assetRows(available))
	mock.ExpectQuery(`UPDATE "assets"`).WillReturnRows(assetRows(assigned))
	mock.ExpectQuery(`INSERT INTO "assignments"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "asset_id", "assignee", "issued_by", "issued_at", "condition_out",
			"returned_at", "returned_by", "condition_in", "notes"}).
			AddRow(11, 2, "Jane Smith", "admin@company.com", fixedNow, "good", nil, "", "", ""))
	mock.ExpectCommit()

	assignment, asset, err := s.IssueAsset(context.Background(), models.Assignment{
		AssetID:  2,
		Assignee: "Jane Smith",
		IssuedBy: "admin@company.com",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), assignment.ID)
	assert.True(t, assignment.Open())
	assert.Equal(t, models.ConditionGood, assignment.ConditionOut)
	assert.Equal(t, models.StatusAssigned, asset.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueAssetRejectsUnavailable(t *testing.T) {
	s, mock := setupTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "assets" .+ FOR UPDATE`).
		WillReturnRows(assetRows(laptop(1, models.StatusAssigned, "John Doe")))
	mock.ExpectRollback()

	_, _, err := s.IssueAsset(context.Background(), models.Assignment{AssetID: 1, Assignee: "Jane Smith"})
	assert.ErrorIs(t, err, store.ErrInvalidState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogMaintenanceRejectsRetired(t *testing.T) {
	s, mock := setupTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "assets" .+ FOR UPDATE`).
		WillReturnRows(assetRows(laptop(4, models.StatusRetired, models.Unassigned)))
	mock.ExpectRollback()

	_, _, err := s.LogMaintenance(context.Background(), models.MaintenanceRecord{
		AssetID:     4,
		Description: "Battery swap",
		Status:      models.MaintenanceScheduled,
	})
	assert.ErrorIs(t, err, store.ErrInvalidState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogMaintenanceMovesAsset(t *testing.T) {
	s, mock := setupTestStore(t)
	asset := laptop(4, models.StatusAvailable, models.Unassigned)
	inShop := laptop(4, models.StatusMaintenance, models.Unassigned)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "assets" .+ FOR UPDATE`).WillReturnRows(assetRows(asset))
	mock.ExpectQuery(`UPDATE "assets"`).WillReturnRows(assetRows(inShop))
	mock.ExpectQuery(`INSERT INTO "maintenance_records"`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "asset_id", "kind", "description", "vendor", "cost", "status",
			"notes", "attachments", "logged_by", "created_at"}).
			AddRow(5, 4, "maintenance", "Battery swap", "Apple", "129.00", "scheduled", "", "{https://files/quote.pdf}", "hr@company.com", fixedNow))
	mock.ExpectCommit()

	rec, out, err := s.LogMaintenance(context.Background(), models.MaintenanceRecord{
		AssetID:     4,
		Kind:        models.KindMaintenance,
		Description: "Battery swap",
		Vendor:      "Apple",
		Cost:        129,
		Status:      models.MaintenanceScheduled,
		Attachments: []string{"https://files/quote.pdf"},
		LoggedBy:    "hr@company.com",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusMaintenance, out.Status)
	assert.Equal(t, 129.0, rec.Cost)
	assert.Equal(t, []string{"https://files/quote.pdf"}, rec.Attachments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecideRequestRejectsDecided(t *testing.T) {
	s, mock := setupTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "asset_requests" .+ FOR UPDATE`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "category", "reason", "priority", "employee_name", "joining_date",
			"requested_by", "requester_name", "requester_role", "status", "decided_by", "decided_at",
			"decision_note", "assigned_asset_id", "created_at"}).
			AddRow(1, "Laptop", "Current laptop is too slow", "high", "", "", "john@company.com",
				"John Doe", "employee", "approved", "admin@company.com", fixedNow, "", nil, fixedNow))
	mock.ExpectRollback()

	_, err := s.DecideRequest(context.Background(), 1, store.Decision{
		Status: models.RequestRejected,
		By:     "admin@company.com",
	})
	assert.ErrorIs(t, err, store.ErrInvalidState)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountRequests(t *testing.T) {
	s, mock := setupTestStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) AS "count" FROM "asset_requests" WHERE \("status" = \$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := s.CountRequests(context.Background(), models.RequestPending)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil, "noop"))
	assert.ErrorIs(t, mapError(sql.ErrConnDone, "insert"), sql.ErrConnDone)
	assert.NotErrorIs(t, mapError(&pgconn.PgError{Code: "23503"}, "insert"), store.ErrConflict)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
}
