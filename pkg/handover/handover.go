// Package handover renders the spreadsheet signed when an asset changes hands.
package handover

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/tealeg/xlsx/v3"
)

// SheetName is the name of the single sheet in a handover workbook
const SheetName = "Handover"

const timeLayout = "02/01/2006 15:04"

// Document holds everything printed on a handover sheet
type Document struct {
	AssetID      string
	AssetName    string
	SerialNumber string
	Category     string

	Assignee     string
	IssuedBy     string
	IssuedAt     time.Time
	ConditionOut string

	ReturnedBy  string
	ReturnedAt  *time.Time
	ConditionIn string

	Notes       string
	GeneratedAt time.Time
}

// Kind is "Issue" for an open assignment and "Return" once it is closed
func (d Document) Kind() string {
	if d.ReturnedAt != nil {
		return "Return"
	}
	return "Issue"
}

// Filename is the suggested download name
func (d Document) Filename() string {
	return fmt.Sprintf("handover-%s-%s.xlsx", d.AssetID, d.IssuedAt.Format("20060102"))
}

func (d Document) rows() [][2]string {
	rows := [][2]string{
		{"Asset ID", d.AssetID},
		{"Asset", d.AssetName},
		{"Serial Number", d.SerialNumber},
		{"Category", d.Category},
		{"", ""},
		{"Issued To", d.Assignee},
		{"Issued By", d.IssuedBy},
		{"Issued At", d.IssuedAt.Format(timeLayout)},
		{"Condition Out", d.ConditionOut},
	}
	if d.ReturnedAt != nil {
		rows = append(rows,
			[2]string{"Returned By", d.ReturnedBy},
			[2]string{"Returned At", d.ReturnedAt.Format(timeLayout)},
			[2]string{"Condition In", d.ConditionIn},
		)
	}
	rows = append(rows,
		[2]string{"Notes", d.Notes},
		[2]string{"", ""},
		[2]string{"Employee Signature", ""},
		[2]string{"IT Signature", ""},
		[2]string{"Date", ""},
	)
	return rows
}

// Build renders the document as an .xlsx workbook
func Build(d Document) ([]byte, error) {
	if d.AssetID == "" || d.Assignee == "" {
		return nil, errors.New("handover needs an asset id and an assignee")
	}
	if d.GeneratedAt.IsZero() {
		d.GeneratedAt = time.Now()
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	bold := xlsx.NewStyle()
	bold.Font.Bold = true
	bold.ApplyFont = true

	title := sheet.AddRow()
	cell := title.AddCell()
	cell.SetString("Hardware " + d.Kind() + " Form")
	cell.SetStyle(bold)

	sheet.AddRow().AddCell().SetString("Generated " + d.GeneratedAt.Format(timeLayout))
	sheet.AddRow()

	for _, kv := range d.rows() {
		row := sheet.AddRow()
		label := row.AddCell()
		label.SetString(kv[0])
		label.SetStyle(bold)
		row.AddCell().SetString(kv[1])
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
