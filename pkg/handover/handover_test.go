package handover

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
)

func cells(t *testing.T, data []byte) map[string]string {
	t.Helper()
	f, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	sheet, ok := f.Sheet[SheetName]
	require.True(t, ok)

	out := map[string]string{}
	for i := 0; i < sheet.MaxRow; i++ {
		row, err := sheet.Row(i)
		require.NoError(t, err)
		out[row.GetCell(0).String()] = row.GetCell(1).String()
	}
	return out
}

func TestBuildIssue(t *testing.T) {
	issued := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	doc := Document{
		AssetID: "HW-004", AssetName: "HP EliteBook 840", SerialNumber: "HP-840-789", Category: "Laptop",
		Assignee: "Jane Smith", IssuedBy: "admin@company.com", IssuedAt: issued, ConditionOut: "good",
	}
	data, err := Build(doc)
	require.NoError(t, err)

	got := cells(t, data)
	assert.Contains(t, got, "Hardware Issue Form")
	assert.Equal(t, "Jane Smith", got["Issued To"])
	assert.Equal(t, "01/04/2026 09:30", got["Issued At"])
	assert.NotContains(t, got, "Returned By")
	assert.Equal(t, "handover-HW-004-20260401.xlsx", doc.Filename())
}

func TestBuildReturn(t *testing.T) {
	issued := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	returned := issued.Add(48 * time.Hour)
	data, err := Build(Document{
		AssetID: "HW-004", Assignee: "Jane Smith", IssuedAt: issued,
		ReturnedAt: &returned, ReturnedBy: "hr@company.com", ConditionIn: "damaged", Notes: "Cracked hinge",
	})
	require.NoError(t, err)

	got := cells(t, data)
	assert.Contains(t, got, "Hardware Return Form")
	assert.Equal(t, "damaged", got["Condition In"])
	assert.Equal(t, "Cracked hinge", got["Notes"])
}

func TestBuildRequiresAssetAndAssignee(t *testing.T) {
	_, err := Build(Document{AssetID: "HW-001"})
	assert.Error(t, err)
}
