package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mfsit/stunden/internal/httpx"
	"github.com/mfsit/stunden/internal/models"
	"github.com/mfsit/stunden/internal/pdf"
	"github.com/mfsit/stunden/internal/services"
	"github.com/mfsit/stunden/internal/validation"
)

type InvoiceHandler struct {
	DB  *gorm.DB
	svc *services.InvoiceService
}

func NewInvoiceHandler(db *gorm.DB) *InvoiceHandler {
	return &InvoiceHandler{DB: db, svc: services.NewInvoiceService()}
}

// Form returns everything the invoice form pre-fills: unpaid entries,
// clients, employees, the suggested next number and the effective tax rate.
func (h *InvoiceHandler) Form(w http.ResponseWriter, r *http.Request) {
	var entries []models.TimeEntry
	if err := h.DB.Where("paid = ?", false).
		Preload("Client").
		Preload("Employee").
		Order("date DESC, start DESC, id DESC").
		Find(&entries).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_entries", nil)
		return
	}
	var clients []models.Client
	if err := h.DB.Order("company ASC").Find(&clients).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_clients", nil)
		return
	}
	var employees []models.Employee
	if err := h.DB.Order("name ASC").Find(&employees).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_employees", nil)
		return
	}
	number, err := services.NextInvoiceNumber(h.DB)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_suggest_number", nil)
		return
	}
	rate, err := models.ResolveTaxRate(h.DB)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_read_tax_setting", nil)
		return
	}
	items := make([]entryView, 0, len(entries))
	for _, e := range entries {
		items = append(items, toEntryView(e))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"entries":          items,
		"clients":          clients,
		"employees":        employees,
		"suggested_number": number,
		"tax_rate":         rate,
	})
}

// positionInput is an optional extra line item; either both fields come
// filled or both stay empty.
type positionInput struct {
	Title string `json:"title"`
	Net   string `json:"net"`
}

func (p positionInput) toPosition() (services.Position, error) {
	pos := services.Position{Title: strings.TrimSpace(p.Title)}
	if strings.TrimSpace(p.Net) != "" {
		d, err := parseAmount(p.Net)
		if err != nil {
			return pos, err
		}
		pos.Net = &d
	}
	return pos, nil
}

type invoiceInput struct {
	Number     string        `json:"number"`
	Title      string        `json:"title"`
	ClientID   uint          `json:"client_id"`
	EmployeeID uint          `json:"employee_id"`
	HourlyRate string        `json:"hourly_rate"`
	FlatNet    string        `json:"net"`
	EntryIDs   []uint        `json:"entry_ids"`
	Position2  positionInput `json:"position2"`
	Position3  positionInput `json:"position3"`
}

// parseAmount accepts both decimal comma and decimal point input.
func parseAmount(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
}

// Generate renders an hour-rate invoice PDF from the selected entries and
// streams it as an attachment. The invoice number is logged only after the
// document rendered successfully.
func (h *InvoiceHandler) Generate(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, false)
}

// GenerateSummary renders a flat-sum invoice without the entry detail page.
func (h *InvoiceHandler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	h.generate(w, r, true)
}

func (h *InvoiceHandler) generate(w http.ResponseWriter, r *http.Request, summary bool) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var input invoiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if strings.TrimSpace(input.Number) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "number_required", nil)
		return
	}
	if strings.TrimSpace(input.Title) == "" {
		httpx.JSONError(w, http.StatusBadRequest, "title_required", nil)
		return
	}

	var client models.Client
	if err := h.DB.First(&client, input.ClientID).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_client", nil)
		return
	}
	var employee models.Employee
	if err := h.DB.First(&employee, input.EmployeeID).Error; err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_employee", nil)
		return
	}

	in := services.BuildInput{
		Client:   client,
		Employee: employee,
		Number:   strings.TrimSpace(input.Number),
		Title:    strings.TrimSpace(input.Title),
	}

	if summary {
		flat, err := parseAmount(input.FlatNet)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_net_amount", nil)
			return
		}
		v := validation.Violations{}
		validation.PositiveDecimal("net", flat, v)
		if !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		in.FlatNet = &flat
	} else {
		rate, err := parseAmount(input.HourlyRate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_hourly_rate", nil)
			return
		}
		v := validation.Violations{}
		validation.PositiveDecimal("hourly_rate", rate, v)
		if !v.Empty() {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
			return
		}
		in.HourlyRate = rate
		entries, err := h.loadEntries(input.ClientID, input.EntryIDs)
		if err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_entries", nil)
			return
		}
		in.Entries = entries
	}

	var err error
	if in.Position2, err = input.Position2.toPosition(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_position_amount", nil)
		return
	}
	if in.Position3, err = input.Position3.toPosition(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_position_amount", nil)
		return
	}

	if in.TaxRate, err = models.ResolveTaxRate(h.DB); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_read_tax_setting", nil)
		return
	}

	inv, err := h.svc.Build(in)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"invoice": err.Error()})
		return
	}

	now := time.Now()
	doc, err := pdf.Invoice(toPDFData(inv, now), !summary)
	if err != nil {
		log.Error().Err(err).Str("number", inv.Number).Msg("invoice render failed")
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_render_failed", nil)
		return
	}

	// Log the number only for documents that actually rendered.
	rec := models.InvoiceNumber{Number: inv.Number}
	if err := h.DB.Create(&rec).Error; err != nil {
		log.Error().Err(err).Str("number", inv.Number).Msg("invoice number log failed")
		httpx.JSONError(w, http.StatusInternalServerError, "number_log_failed", nil)
		return
	}

	log.Info().Str("number", inv.Number).Str("gross", inv.GrossFormatted).Msg("invoice generated")

	filename := fmt.Sprintf("Rechnung_%s_mfs_%s.pdf", url.QueryEscape(inv.Number), now.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(doc)))
	if _, err := w.Write(doc); err != nil {
		_ = err
	}
}

// loadEntries fetches the selected unpaid entries, or all unpaid entries of
// the client when no explicit selection was sent.
func (h *InvoiceHandler) loadEntries(clientID uint, ids []uint) ([]models.TimeEntry, error) {
	dbq := h.DB.Where("paid = ?", false).Order("date ASC, start ASC, id ASC")
	if len(ids) > 0 {
		dbq = dbq.Where("id IN ?", ids)
	} else {
		dbq = dbq.Where("client_id = ?", clientID)
	}
	var entries []models.TimeEntry
	if err := dbq.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Numbers lists issued invoice numbers, newest first.
func (h *InvoiceHandler) Numbers(w http.ResponseWriter, r *http.Request) {
	var numbers []models.InvoiceNumber
	if err := h.DB.Order("issued_at DESC, id DESC").Find(&numbers).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_numbers", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": numbers, "total": len(numbers)})
}

func toPDFData(inv *services.ComputedInvoice, date time.Time) pdf.InvoiceData {
	items := make([]pdf.Item, 0, len(inv.Items))
	for _, it := range inv.Items {
		items = append(items, pdf.Item{
			Position:     it.Position,
			Title:        it.Title,
			NetFormatted: it.NetFormatted,
			TaxRate:      it.TaxRate,
		})
	}
	entries := make([]pdf.Entry, 0, len(inv.Entries))
	for _, e := range inv.Entries {
		entries = append(entries, pdf.Entry{
			Date:        e.Date,
			Start:       e.Start,
			End:         e.End,
			Description: e.Description,
			Hours:       e.Hours,
		})
	}
	return pdf.InvoiceData{
		Number:         inv.Number,
		Date:           date,
		Sender:         pdf.Party(inv.Sender),
		Receiver:       pdf.Party(inv.Receiver),
		Bank:           pdf.BankDetails(inv.Bank),
		Items:          items,
		Entries:        entries,
		TaxRate:        inv.TaxRate,
		NetFormatted:   inv.NetFormatted,
		TaxFormatted:   inv.TaxFormatted,
		GrossFormatted: inv.GrossFormatted,

		HourlyRateFormatted: inv.HourlyRateFormatted,
	}
}
