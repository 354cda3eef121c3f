package services

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestGenerateMaterialsExcel(t *testing.T) {
	rows := []MaterialExportRow{
		{Name: "Cement OPC 53", Code: "MAT-001", Unit: "bag", StoreName: "Central Store", Quantity: 120, ReorderLevel: 50, UnitPrice: 410, Status: StockOK},
		{Name: "MS Angle 50x50", Code: "MAT-002", Unit: "kg", StoreName: "Central Store", Quantity: 30, ReorderLevel: 100, UnitPrice: 65, Status: StockLow},
		{Name: "Welding rods", Code: "MAT-003", Unit: "pkt", Quantity: 0, ReorderLevel: 10, UnitPrice: 250, Status: StockOut},
	}

	result, err := GenerateMaterialsExcel(rows)
	if err != nil {
		t.Fatalf("GenerateMaterialsExcel() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateMaterialsExcel() returned empty bytes")
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("result is not a readable workbook: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	got, err := f.GetCellValue(sheet, "A5")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if got != "MS Angle 50x50" {
		t.Errorf("cell A5 = %q, want the second material row", got)
	}
}

func TestGenerateMaterialsExcel_NeutralizesFormulas(t *testing.T) {
	rows := []MaterialExportRow{
		{Name: "=HYPERLINK(\"http://evil.example\")", Code: "+MAT", Unit: "nos", StoreName: "@Store", Quantity: 1, ReorderLevel: 0, UnitPrice: 10, Status: StockOK},
	}

	result, err := GenerateMaterialsExcel(rows)
	if err != nil {
		t.Fatalf("GenerateMaterialsExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("result is not a readable workbook: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	checks := map[string]string{
		"A4": "'=HYPERLINK(\"http://evil.example\")",
		"B4": "'+MAT",
		"D4": "'@Store",
	}
	for cell, want := range checks {
		got, err := f.GetCellValue(sheet, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		if got != want {
			t.Errorf("cell %s = %q, want %q", cell, got, want)
		}
	}
}

func TestGenerateAuditLogExcel_NeutralizesFormulas(t *testing.T) {
	rows := []AuditLogExportRow{
		{Timestamp: "15 Mar 2026 10:30", UserName: "-Priya", Action: "create", Collection: "leads", RecordID: "l1", Detail: "=1+2"},
	}

	result, err := GenerateAuditLogExcel(rows)
	if err != nil {
		t.Fatalf("GenerateAuditLogExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("result is not a readable workbook: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if got, _ := f.GetCellValue(sheet, "B4"); got != "'-Priya" {
		t.Errorf("cell B4 = %q, want %q", got, "'-Priya")
	}
	if got, _ := f.GetCellValue(sheet, "F4"); got != "'=1+2" {
		t.Errorf("cell F4 = %q, want %q", got, "'=1+2")
	}
}

func TestGenerateMaterialsExcel_Empty(t *testing.T) {
	result, err := GenerateMaterialsExcel(nil)
	if err != nil {
		t.Fatalf("GenerateMaterialsExcel(nil) error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateMaterialsExcel(nil) returned empty bytes")
	}
}

func TestGenerateAuditLogExcel(t *testing.T) {
	rows := []AuditLogExportRow{
		{Timestamp: "15 Mar 2026 10:30", UserName: "Priya Nair", Action: "create", Collection: "quotations", RecordID: "q1", Detail: "Created quotation WBES-QTN-25-26-001"},
		{Timestamp: "15 Mar 2026 11:00", UserName: "Ramesh Iyer", Action: "approval:approved", Collection: "quotations", RecordID: "q1", Detail: "Moved quotations from pending to approved"},
	}

	result, err := GenerateAuditLogExcel(rows)
	if err != nil {
		t.Fatalf("GenerateAuditLogExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("result is not a readable workbook: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	got, err := f.GetCellValue(sheet, "C4")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if got != "create" {
		t.Errorf("cell C4 = %q, want %q", got, "create")
	}
}
