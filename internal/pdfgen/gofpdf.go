package pdfgen

import (
	"bytes"
	"fmt"

	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/types"
	"github.com/jung-kurt/gofpdf"
)

const (
	dateLayout = "2006-01-02"
	lineHeight = 7.0
)

// column widths of the line item table, in mm
var itemColumns = []struct {
	title string
	width float64
	align string
}{
	{"Description", 70, "L"},
	{"Qty", 20, "R"},
	{"Rate", 30, "R"},
	{"Tax %", 20, "R"},
	{"Amount", 40, "R"},
}

// PDFRenderer renders invoices with gofpdf
type PDFRenderer struct {
	log *logger.Logger
}

func NewPDFRenderer(log *logger.Logger) InvoiceRenderer {
	return &PDFRenderer{log: log}
}

func (r *PDFRenderer) RenderInvoice(data *InvoiceData) ([]byte, error) {
	if data == nil || data.Invoice == nil {
		return nil, ierr.NewError("invoice is required").
			WithHint("Nothing to render").
			Mark(ierr.ErrValidation)
	}
	inv := data.Invoice

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Invoice "+inv.InvoiceNumber, true)
	pdf.SetCreationDate(data.RenderedAt)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("Invoice "+inv.InvoiceNumber), "", 1, "L", false, 0, "")
	if inv.Title != "" {
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, lineHeight, tr(inv.Title), "", 1, "L", false, 0, "")
	}

	pdf.SetFont("Arial", "", 10)
	header := [][2]string{
		{"Status", inv.Status.String()},
		{"Date", inv.Date.Format(dateLayout)},
		{"Due date", inv.DueDate.Format(dateLayout)},
	}
	if inv.PoSoNumber != nil && *inv.PoSoNumber != "" {
		header = append(header, [2]string{"PO/SO", *inv.PoSoNumber})
	}
	if data.Client != nil {
		header = append(header, [2]string{"Bill to", data.Client.Name})
	}
	if data.PostSite != nil {
		site := data.PostSite.Name
		if data.PostSite.Address != "" {
			site = fmt.Sprintf("%s, %s", site, data.PostSite.Address)
		}
		header = append(header, [2]string{"Post site", site})
	}
	for _, h := range header {
		pdf.CellFormat(30, lineHeight, tr(h[0]+":"), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, lineHeight, tr(h[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	for _, c := range itemColumns {
		pdf.CellFormat(c.width, lineHeight, c.title, "1", 0, c.align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, li := range inv.LineItems {
		amounts := li.Amounts()
		cells := []string{
			li.Name,
			li.Quantity.String(),
			types.FormatAmount(li.Rate),
			li.TaxRatePercent.String(),
			types.FormatAmount(amounts.LineAmount),
		}
		for i, c := range itemColumns {
			pdf.CellFormat(c.width, lineHeight, tr(cells[i]), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(2)

	totals := inv.Totals()
	rows := [][2]string{
		{"Subtotal", types.FormatAmount(totals.Subtotal)},
		{"Tax", types.FormatAmount(totals.TaxTotal)},
		{"Total", types.FormatAmount(totals.GrandTotal)},
	}
	if data.Ledger != nil {
		rows = append(rows,
			[2]string{"Paid", types.FormatAmount(data.Ledger.Paid)},
			[2]string{"Balance", types.FormatAmount(data.Ledger.Remaining)},
		)
	}
	for _, row := range rows {
		pdf.CellFormat(140, lineHeight, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(40, lineHeight, row[1], "", 1, "R", false, 0, "")
	}

	if inv.Notes != "" {
		pdf.Ln(4)
		pdf.MultiCell(0, 5, tr(inv.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		r.log.Errorw("failed to render invoice pdf", "invoice_id", inv.ID, "error", err)
		return nil, ierr.WithError(err).
			WithHint("The invoice preview could not be rendered").
			Mark(ierr.ErrSystem)
	}
	return buf.Bytes(), nil
}
