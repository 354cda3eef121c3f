package services

import (
	"fmt"
	"math"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// newDocument builds a portrait A4 maroto instance with the standard WBES
// page furniture.
func newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	return maroto.New(cfg)
}

// GenerateQuotationPDF creates a quotation PDF document using maroto/v2.
// It returns the raw PDF bytes or an error.
func GenerateQuotationPDF(data *QuotationExportData) ([]byte, error) {
	m := newDocument()

	title := "Quotation"
	if data.RevisionNumber > 0 {
		title = fmt.Sprintf("Quotation (Revision %d)", data.RevisionNumber)
	}
	addDocumentHeader(m, data.CompanyName, title, data.QuotationNumber, data.OfferDate)

	addKeyValueRow(m, "Customer", data.CustomerName, "Project", data.ProjectTitle)
	addKeyValueRow(m, "Enquiry Date", data.EnquiryDate, "Status", data.Status)
	m.AddRows(row.New(4))

	addScopeTable(m, data.ScopeRows)
	addPriceSummary(m, data)
	addPaymentTerms(m, data.PaymentTerms)
	addTermsBlock(m, data)
	addGeneratedFooter(m, data.GeneratedDate)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// GeneratePOPDF creates a purchase order PDF document using maroto/v2.
func GeneratePOPDF(data *POExportData) ([]byte, error) {
	m := newDocument()

	addDocumentHeader(m, data.CompanyName, "Purchase Order", data.PONumber, data.OrderDate)

	addKeyValueRow(m, "Supplier", data.SupplierName, "Store", data.StoreName)
	if data.GRNNumber != "" {
		addKeyValueRow(m, "GRN", data.GRNNumber, "Received", data.ReceivedDate)
	}
	m.AddRows(row.New(4))

	addPOTable(m, data.LineItems)

	// Total row
	m.AddRows(row.New(4))
	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	boldRight := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	m.AddRows(
		row.New(8).Add(
			col.New(8).Add(text.New("Total", boldRight)).WithStyle(summaryCell),
			col.New(4).Add(text.New(FormatINR(data.Total), boldRight)).WithStyle(summaryCell),
		),
	)

	addGeneratedFooter(m, data.GeneratedDate)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// addDocumentHeader adds the company name, document title, number and date.
func addDocumentHeader(m core.Maroto, companyName, title, number, date string) {
	if companyName != "" {
		m.AddRows(
			row.New(8).Add(
				col.New(12).Add(
					text.New(companyName, props.Text{
						Size:  12,
						Style: fontstyle.Bold,
						Align: align.Center,
					}),
				),
			),
		)
	}

	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("Number: %s", number), props.Text{
					Size:  9,
					Align: align.Left,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Date: %s", date), props.Text{
					Size:  9,
					Align: align.Right,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
	)

	// Spacer
	m.AddRows(row.New(4))
}

func addKeyValueRow(m core.Maroto, leftLabel, leftValue, rightLabel, rightValue string) {
	label := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Left}
	value := props.Text{Size: 8, Align: align.Left}
	m.AddRows(
		row.New(6).Add(
			col.New(2).Add(text.New(leftLabel, label)),
			col.New(4).Add(text.New(leftValue, value)),
			col.New(2).Add(text.New(rightLabel, label)),
			col.New(4).Add(text.New(rightValue, value)),
		),
	)
}

var tableHeaderText = props.Text{
	Size:  8,
	Style: fontstyle.Bold,
	Align: align.Center,
	Color: &props.Color{Red: 255, Green: 255, Blue: 255},
}

var tableHeaderCell = props.Cell{
	BackgroundColor: &props.Color{Red: 33, Green: 37, Blue: 41},
}

// addScopeTable renders the scope-of-work table for a quotation.
func addScopeTable(m core.Maroto, rows []ScopeRow) {
	headerLeft := tableHeaderText
	headerLeft.Align = align.Left

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("#", tableHeaderText)).WithStyle(&tableHeaderCell),
			col.New(6).Add(text.New("Description", headerLeft)).WithStyle(&tableHeaderCell),
			col.New(1).Add(text.New("Qty", tableHeaderText)).WithStyle(&tableHeaderCell),
			col.New(1).Add(text.New("Unit", tableHeaderText)).WithStyle(&tableHeaderCell),
			col.New(3).Add(text.New("Remarks", headerLeft)).WithStyle(&tableHeaderCell),
		),
	)

	baseText := props.Text{Size: 8, Align: align.Center}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	for _, r := range rows {
		m.AddRows(
			row.New(7).Add(
				col.New(1).Add(text.New(fmt.Sprintf("%d", r.SINo), baseText)),
				col.New(6).Add(text.New(r.Description, leftText)),
				col.New(1).Add(text.New(formatQty(r.Qty), rightText)),
				col.New(1).Add(text.New(r.Unit, baseText)),
				col.New(3).Add(text.New(r.Remarks, leftText)),
			),
		)
	}
}

// addPOTable renders the line-item table for a purchase order.
func addPOTable(m core.Maroto, items []POLineRow) {
	headerLeft := tableHeaderText
	headerLeft.Align = align.Left

	m.AddRows(
		row.New(8).Add(
			col.New(1).Add(text.New("#", tableHeaderText)).WithStyle(&tableHeaderCell),
			col.New(5).Add(text.New("Description", headerLeft)).WithStyle(&tableHeaderCell),
			col.New(1).Add(text.New("Qty", tableHeaderText)).WithStyle(&tableHeaderCell),
			col.New(1).Add(text.New("Unit", tableHeaderText)).WithStyle(&tableHeaderCell),
			col.New(2).Add(text.New("Rate", tableHeaderText)).WithStyle(&tableHeaderCell),
			col.New(2).Add(text.New("Amount", tableHeaderText)).WithStyle(&tableHeaderCell),
		),
	)

	baseText := props.Text{Size: 8, Align: align.Center}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	for _, item := range items {
		m.AddRows(
			row.New(7).Add(
				col.New(1).Add(text.New(fmt.Sprintf("%d", item.SINo), baseText)),
				col.New(5).Add(text.New(item.Description, leftText)),
				col.New(1).Add(text.New(formatQty(item.Qty), rightText)),
				col.New(1).Add(text.New(item.Unit, baseText)),
				col.New(2).Add(text.New(FormatINR(item.Rate), rightText)),
				col.New(2).Add(text.New(FormatINR(item.Amount), rightText)),
			),
		)
	}
}

// addPriceSummary adds the price schedule block of a quotation.
func addPriceSummary(m core.Maroto, data *QuotationExportData) {
	m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	labelStyle := props.Text{Size: 9, Align: align.Right}
	valueStyle := props.Text{Size: 9, Align: align.Right}
	boldLabel := labelStyle
	boldLabel.Style = fontstyle.Bold
	boldValue := valueStyle
	boldValue.Style = fontstyle.Bold

	if data.BasePrice > 0 {
		m.AddRows(
			row.New(7).Add(
				col.New(8).Add(text.New("Base Price", labelStyle)).WithStyle(summaryCell),
				col.New(4).Add(text.New(FormatINR(data.BasePrice), valueStyle)).WithStyle(summaryCell),
			),
		)
	}
	if data.DiscountPercent > 0 {
		m.AddRows(
			row.New(7).Add(
				col.New(8).Add(text.New(fmt.Sprintf("Discount (%s%%)", formatNumber(data.DiscountPercent)), labelStyle)).WithStyle(summaryCell),
				col.New(4).Add(text.New(FormatINR(-data.BasePrice*data.DiscountPercent/100), valueStyle)).WithStyle(summaryCell),
			),
		)
	}
	if data.TaxPercent > 0 {
		taxable := data.BasePrice * (1 - data.DiscountPercent/100)
		m.AddRows(
			row.New(7).Add(
				col.New(8).Add(text.New(fmt.Sprintf("Tax (%s%%)", formatNumber(data.TaxPercent)), labelStyle)).WithStyle(summaryCell),
				col.New(4).Add(text.New(FormatINR(taxable*data.TaxPercent/100), valueStyle)).WithStyle(summaryCell),
			),
		)
	}
	m.AddRows(
		row.New(8).Add(
			col.New(8).Add(text.New("Grand Total", boldLabel)).WithStyle(summaryCell),
			col.New(4).Add(text.New(FormatINR(data.GrandTotal), boldValue)).WithStyle(summaryCell),
		),
	)
}

// addPaymentTerms lists the payment milestones of a quotation.
func addPaymentTerms(m core.Maroto, terms []PaymentTermRow) {
	if len(terms) == 0 {
		return
	}

	m.AddRows(row.New(6))
	m.AddRows(
		row.New(7).Add(
			col.New(12).Add(
				text.New("Payment Terms", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left}),
			),
		),
	)

	lineText := props.Text{Size: 8, Align: align.Left}
	for i, term := range terms {
		line := fmt.Sprintf("%d. %s — %s%%", i+1, term.Description, formatNumber(term.Percent))
		m.AddRows(
			row.New(5).Add(
				col.New(12).Add(text.New(line, lineText)),
			),
		)
	}
}

// addTermsBlock lists delivery, warranty and installation terms when present.
func addTermsBlock(m core.Maroto, data *QuotationExportData) {
	lines := []struct{ label, value string }{
		{"Delivery", data.DeliveryPeriod},
		{"Warranty", data.WarrantyPeriod},
		{"Installation", data.Installation},
	}

	var present []struct{ label, value string }
	for _, l := range lines {
		if l.value != "" {
			present = append(present, l)
		}
	}
	if len(present) == 0 {
		return
	}

	m.AddRows(row.New(6))
	m.AddRows(
		row.New(7).Add(
			col.New(12).Add(
				text.New("Terms", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Left}),
			),
		),
	)

	lineText := props.Text{Size: 8, Align: align.Left}
	for _, l := range present {
		m.AddRows(
			row.New(5).Add(
				col.New(12).Add(text.New(l.label+": "+l.value, lineText)),
			),
		)
	}
}

// addGeneratedFooter adds the generated-date line at the bottom.
func addGeneratedFooter(m core.Maroto, date string) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Generated on %s", date),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}

// formatQty returns a string representation of the quantity value.
// Whole numbers are formatted without decimals; fractional values get 2 decimal places.
func formatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%.2f", qty)
}
