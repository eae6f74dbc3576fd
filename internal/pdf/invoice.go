// Package pdf renders computed invoices into PDF documents. It owns its own
// input types so document layout stays decoupled from how the numbers were
// produced; handlers map service output into an InvoiceData.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Party is one address block on the document.
type Party struct {
	Company string
	Name    string
	Street  string
	ZipCity string
	Country string
	TaxID   string
}

// BankDetails fill the payment footer.
type BankDetails struct {
	Receiver string
	Bank     string
	IBAN     string
	BIC      string
}

// Item is one line item, pre-formatted by the caller.
type Item struct {
	Position     int
	Title        string
	NetFormatted string
	TaxRate      int
}

// Entry is one row of the optional time-entry detail table.
type Entry struct {
	Date        time.Time
	Start       time.Time
	End         time.Time
	Description string
	Hours       decimal.Decimal
}

// InvoiceData is everything the renderer needs. Monetary strings arrive
// already formatted; the renderer never does arithmetic beyond summing
// entry hours for the detail table footer.
type InvoiceData struct {
	Number string
	Date   time.Time

	Sender   Party
	Receiver Party
	Bank     BankDetails

	Items   []Item
	Entries []Entry

	TaxRate        int
	NetFormatted   string
	TaxFormatted   string
	GrossFormatted string

	// HourlyRateFormatted, when set, adds a rate note under position 1
	// pointing at the detail table.
	HourlyRateFormatted string
}

// Invoice renders data into a finished PDF. With withEntryTable set, a
// second page lists the contributing time entries; the summary variant
// skips that page.
func Invoice(data InvoiceData, withEntryTable bool) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; translate so umlauts survive.
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetTitle(tr("Rechnung "+data.Number), true)
	doc.SetAuthor(tr(data.Sender.Name), true)
	doc.SetCreator(tr(data.Sender.Name), true)
	doc.SetSubject(tr("Rechnung"), true)

	doc.AddPage()

	// Sender line above the address window.
	doc.SetFont("Arial", "", 8)
	sender := data.Sender.Name
	if data.Sender.Street != "" {
		sender += ", " + data.Sender.Street
	}
	if z := data.Sender.ZipCity; z != "" {
		sender += ", " + z
	}
	doc.Cell(100, 4, tr(sender))
	doc.Ln(8)

	// Receiver block.
	doc.SetFont("Arial", "", 11)
	for _, line := range []string{
		data.Receiver.Company,
		data.Receiver.Name,
		data.Receiver.Street,
		data.Receiver.ZipCity,
		data.Receiver.Country,
	} {
		if line == "" {
			continue
		}
		doc.Cell(100, 6, tr(line))
		doc.Ln(6)
	}
	if data.Receiver.TaxID != "" {
		doc.Cell(100, 6, tr("UID: "+data.Receiver.TaxID))
		doc.Ln(6)
	}

	// Issue date, right aligned.
	doc.Ln(4)
	doc.SetFont("Arial", "", 10)
	doc.CellFormat(190, 6, tr(data.Sender.ZipCity+", am "+data.Date.Format("02.01.2006")), "", 1, "R", false, 0, "")

	doc.Ln(6)
	doc.SetFont("Arial", "B", 14)
	doc.Cell(190, 10, tr("Rechnung Nr. "+data.Number))
	doc.Ln(14)

	// Line item table.
	doc.SetFont("Arial", "B", 10)
	doc.CellFormat(15, 8, "Pos.", "B", 0, "L", false, 0, "")
	doc.CellFormat(105, 8, tr("Bezeichnung"), "B", 0, "L", false, 0, "")
	doc.CellFormat(30, 8, "USt.", "B", 0, "R", false, 0, "")
	doc.CellFormat(40, 8, tr("Netto EUR"), "B", 1, "R", false, 0, "")

	doc.SetFont("Arial", "", 10)
	for _, it := range data.Items {
		doc.CellFormat(15, 8, fmt.Sprintf("%d", it.Position), "", 0, "L", false, 0, "")
		doc.CellFormat(105, 8, tr(it.Title), "", 0, "L", false, 0, "")
		doc.CellFormat(30, 8, fmt.Sprintf("%d %%", it.TaxRate), "", 0, "R", false, 0, "")
		doc.CellFormat(40, 8, it.NetFormatted, "", 1, "R", false, 0, "")
		if it.Position == 1 && data.HourlyRateFormatted != "" {
			doc.SetFont("Arial", "I", 9)
			note := fmt.Sprintf("(Stundensatz: EUR %s/h, Stundenaufstellung auf Seite 2)", data.HourlyRateFormatted)
			doc.CellFormat(15, 6, "", "", 0, "L", false, 0, "")
			doc.CellFormat(175, 6, tr(note), "", 1, "L", false, 0, "")
			doc.SetFont("Arial", "", 10)
		}
	}

	// Totals.
	doc.Ln(4)
	doc.SetFont("Arial", "", 10)
	doc.CellFormat(150, 7, tr("Nettobetrag"), "T", 0, "R", false, 0, "")
	doc.CellFormat(40, 7, data.NetFormatted, "T", 1, "R", false, 0, "")
	doc.CellFormat(150, 7, tr(fmt.Sprintf("zzgl. %d %% USt.", data.TaxRate)), "", 0, "R", false, 0, "")
	doc.CellFormat(40, 7, data.TaxFormatted, "", 1, "R", false, 0, "")
	doc.SetFont("Arial", "B", 11)
	doc.CellFormat(150, 8, tr("Rechnungsbetrag EUR"), "T", 0, "R", false, 0, "")
	doc.CellFormat(40, 8, data.GrossFormatted, "T", 1, "R", false, 0, "")

	// Payment footer.
	doc.Ln(10)
	doc.SetFont("Arial", "", 10)
	doc.Cell(190, 6, tr("Zahlbar nach Erhalt der Rechnung auf folgendes Konto:"))
	doc.Ln(8)
	for _, line := range []string{
		"Empfänger: " + data.Bank.Receiver,
		"Bank: " + data.Bank.Bank,
		"IBAN: " + data.Bank.IBAN,
		"BIC: " + data.Bank.BIC,
	} {
		doc.Cell(190, 5, tr(line))
		doc.Ln(5)
	}
	if data.Sender.TaxID != "" {
		doc.Ln(4)
		doc.SetFont("Arial", "", 8)
		doc.Cell(190, 5, tr("UID: "+data.Sender.TaxID))
		doc.Ln(5)
	}

	if withEntryTable {
		writeEntryTable(doc, tr, data.Entries)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice %s: %w", data.Number, err)
	}
	return buf.Bytes(), nil
}

func writeEntryTable(doc *gofpdf.Fpdf, tr func(string) string, entries []Entry) {
	doc.AddPage()
	doc.SetFont("Arial", "B", 12)
	doc.Cell(190, 10, tr("Stundenaufstellung"))
	doc.Ln(12)

	doc.SetFont("Arial", "B", 9)
	doc.CellFormat(28, 8, tr("Datum"), "1", 0, "C", false, 0, "")
	doc.CellFormat(20, 8, "Start", "1", 0, "C", false, 0, "")
	doc.CellFormat(20, 8, "Ende", "1", 0, "C", false, 0, "")
	doc.CellFormat(100, 8, tr("Beschreibung"), "1", 0, "C", false, 0, "")
	doc.CellFormat(22, 8, "Stunden", "1", 1, "C", false, 0, "")

	doc.SetFont("Arial", "", 9)
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Hours)
		doc.CellFormat(28, 7, e.Date.Format("02.01.2006"), "1", 0, "C", false, 0, "")
		doc.CellFormat(20, 7, e.Start.Format("15:04"), "1", 0, "C", false, 0, "")
		doc.CellFormat(20, 7, e.End.Format("15:04"), "1", 0, "C", false, 0, "")
		doc.CellFormat(100, 7, tr(e.Description), "1", 0, "L", false, 0, "")
		doc.CellFormat(22, 7, e.Hours.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	doc.SetFont("Arial", "B", 9)
	doc.CellFormat(168, 8, tr("Summe"), "1", 0, "R", false, 0, "")
	doc.CellFormat(22, 8, total.StringFixed(2), "1", 1, "R", false, 0, "")
}
