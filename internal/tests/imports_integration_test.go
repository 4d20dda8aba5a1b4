//go:build integration

package tests

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"hardware-management-api/internal/models"
	"hardware-management-api/pkg/importer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
)

func uploadWorkbook(t *testing.T, h *harness, token string, dryRun bool, rows ...[]string) *httptest.ResponseRecorder {
	t.Helper()
	f := xlsx.NewFile()
	sh, err := f.AddSheet("Assets")
	require.NoError(t, err)
	for _, cells := range rows {
		row := sh.AddRow()
		for _, v := range cells {
			row.AddCell().SetString(v)
		}
	}
	var book bytes.Buffer
	require.NoError(t, f.Write(&book))

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if dryRun {
		require.NoError(t, writer.WriteField("dry_run", "true"))
	}
	part, err := writer.CreateFormFile("file", "assets.xlsx")
	require.NoError(t, err)
	_, err = part.Write(book.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/imports/excel", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.srv.Router.ServeHTTP(w, req)
	return w
}

func TestImportsIntegration(t *testing.T) {
	h := newHarness(t)
	admin := h.login(t, "admin@company.com")
	rows := [][]string{
		{"Asset ID", "Name", "Serial Number", "Category", "Status"},
		{"HW-002", `Dell Monitor 27" (refurb)`, "MON-67890", "Monitor", "Available"},
		{"HW-050", "Logitech MX Keys", "MXK-50", "Peripheral", ""},
	}

	t.Run("employees cannot import", func(t *testing.T) {
		w := uploadWorkbook(t, h, h.login(t, "john.doe@company.com"), true, rows...)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("dry run leaves the catalogue alone", func(t *testing.T) {
		w := uploadWorkbook(t, h, admin, true, rows...)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp struct {
			Data importer.ImportSummary `json:"data"`
		}
		decodeInto(t, w, &resp)
		assert.True(t, resp.Data.DryRun)
		assert.Equal(t, 1, resp.Data.Inserted)

		_, err := h.st.AssetBySerial(context.Background(), "MXK-50")
		assert.Error(t, err)
	})

	t.Run("import upserts by serial", func(t *testing.T) {
		w := uploadWorkbook(t, h, admin, false, rows...)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		a, err := h.st.AssetBySerial(context.Background(), "MXK-50")
		require.NoError(t, err)
		assert.Equal(t, models.StatusAvailable, a.Status)
		assert.Equal(t, "Peripheral", a.Category)
	})

	t.Run("non xlsx upload", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, err := writer.CreateFormFile("file", "assets.csv")
		require.NoError(t, err)
		_, _ = part.Write([]byte("a,b,c"))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest("POST", "/imports/excel", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+admin)
		w := httptest.NewRecorder()
		h.srv.Router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
