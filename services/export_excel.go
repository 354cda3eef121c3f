package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// MaterialExportRow is one material line in the inventory export.
type MaterialExportRow struct {
	Name         string
	Code         string
	Unit         string
	StoreName    string
	Quantity     float64
	ReorderLevel float64
	UnitPrice    float64
	Status       string
}

// GenerateMaterialsExcel creates an inventory workbook from the given rows
// and returns the file contents as a byte slice. Low and out-of-stock rows
// are highlighted.
func GenerateMaterialsExcel(rows []MaterialExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Materials"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	widths := []float64{30, 14, 10, 20, 12, 14, 14, 14}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, headerStyle, dataStyle, err := workbookStyles(f)
	if err != nil {
		return nil, err
	}

	// Low-stock highlight: light amber fill on top of the data style.
	lowStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 10},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FFF3CD"},
			Pattern: 1,
		},
		Border: thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create low stock style: %w", err)
	}

	// Title row.
	if err := f.SetCellValue(sheetName, "A1", "Materials Inventory"); err != nil {
		return nil, fmt.Errorf("set title: %w", err)
	}
	if err := f.MergeCell(sheetName, "A1", "H1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "H1", titleStyle); err != nil {
		return nil, fmt.Errorf("style title: %w", err)
	}

	// Header row.
	headers := []string{"Name", "Code", "Unit", "Store", "Quantity", "Reorder Level", "Unit Price", "Status"}
	headerRow := 3
	for i, h := range headers {
		cell := fmt.Sprintf("%s%d", columns[i], headerRow)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("set header %s: %w", h, err)
		}
	}
	if err := f.SetCellStyle(sheetName, "A3", "H3", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	// Data rows.
	for i, r := range rows {
		rowNum := headerRow + 1 + i
		values := []any{
			sanitizeExcelCell(r.Name),
			sanitizeExcelCell(r.Code),
			sanitizeExcelCell(r.Unit),
			sanitizeExcelCell(r.StoreName),
			r.Quantity,
			r.ReorderLevel,
			r.UnitPrice,
			r.Status,
		}
		for j, v := range values {
			cell := fmt.Sprintf("%s%d", columns[j], rowNum)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		style := dataStyle
		if r.Status != StockOK {
			style = lowStyle
		}
		first := fmt.Sprintf("A%d", rowNum)
		last := fmt.Sprintf("H%d", rowNum)
		if err := f.SetCellStyle(sheetName, first, last, style); err != nil {
			return nil, fmt.Errorf("style row %d: %w", rowNum, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// AuditLogExportRow is one entry in the audit log export.
type AuditLogExportRow struct {
	Timestamp  string
	UserName   string
	Action     string
	Collection string
	RecordID   string
	Detail     string
}

// GenerateAuditLogExcel creates an audit trail workbook and returns the file
// contents as a byte slice.
func GenerateAuditLogExcel(rows []AuditLogExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Audit Log"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	columns := []string{"A", "B", "C", "D", "E", "F"}
	widths := []float64{22, 20, 14, 20, 18, 50}
	for i, col := range columns {
		if err := f.SetColWidth(sheetName, col, col, widths[i]); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	titleStyle, headerStyle, dataStyle, err := workbookStyles(f)
	if err != nil {
		return nil, err
	}

	if err := f.SetCellValue(sheetName, "A1", "Audit Trail"); err != nil {
		return nil, fmt.Errorf("set title: %w", err)
	}
	if err := f.MergeCell(sheetName, "A1", "F1"); err != nil {
		return nil, fmt.Errorf("merge title: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "F1", titleStyle); err != nil {
		return nil, fmt.Errorf("style title: %w", err)
	}

	headers := []string{"Timestamp", "User", "Action", "Collection", "Record", "Detail"}
	headerRow := 3
	for i, h := range headers {
		cell := fmt.Sprintf("%s%d", columns[i], headerRow)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("set header %s: %w", h, err)
		}
	}
	if err := f.SetCellStyle(sheetName, "A3", "F3", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, r := range rows {
		rowNum := headerRow + 1 + i
		values := []any{
			r.Timestamp,
			sanitizeExcelCell(r.UserName),
			sanitizeExcelCell(r.Action),
			r.Collection,
			r.RecordID,
			sanitizeExcelCell(r.Detail),
		}
		for j, v := range values {
			cell := fmt.Sprintf("%s%d", columns[j], rowNum)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
		first := fmt.Sprintf("A%d", rowNum)
		last := fmt.Sprintf("F%d", rowNum)
		if err := f.SetCellStyle(sheetName, first, last, dataStyle); err != nil {
			return nil, fmt.Errorf("style row %d: %w", rowNum, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// workbookStyles creates the shared title/header/data styles for WBES
// workbooks.
func workbookStyles(f *excelize.File) (title, header, data int, err error) {
	title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 16,
		},
	})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("create title style: %w", err)
	}

	header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
			Size:  11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("create header style: %w", err)
	}

	data, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("create data style: %w", err)
	}

	return title, header, data, nil
}

// thinBorders returns a full thin border set for table cells.
func thinBorders() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "#CCCCCC", Style: 1},
		{Type: "right", Color: "#CCCCCC", Style: 1},
		{Type: "top", Color: "#CCCCCC", Style: 1},
		{Type: "bottom", Color: "#CCCCCC", Style: 1},
	}
}
