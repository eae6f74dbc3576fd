package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/mfsit/stunden/internal/httpx"
	"github.com/mfsit/stunden/internal/models"
	"github.com/mfsit/stunden/internal/validation"
)

type EntryHandler struct{ DB *gorm.DB }

func NewEntryHandler(db *gorm.DB) *EntryHandler { return &EntryHandler{DB: db} }

// entryInput is the JSON shape for create and update. Date is a calendar
// day, start and end are clock times on that day.
type entryInput struct {
	Date        string `json:"date"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
	Paid        *bool  `json:"paid"`
	ClientID    uint   `json:"client_id"`
	EmployeeID  uint   `json:"employee_id"`
}

// entryView adds the computed duration to the stored record.
type entryView struct {
	models.TimeEntry
	Hours string `json:"hours"`
}

func toEntryView(e models.TimeEntry) entryView {
	return entryView{TimeEntry: e, Hours: e.Hours().StringFixed(2)}
}

func parseClock(s string) (time.Time, error) {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t, nil
	}
	return time.Parse("15:04", s)
}

func (in entryInput) apply(e *models.TimeEntry, v validation.Violations) {
	validation.Required("date", in.Date, v)
	validation.Required("start", in.Start, v)
	validation.Required("end", in.End, v)
	validation.Required("description", in.Description, v)
	if in.ClientID == 0 {
		v["client_id"] = "required"
	}
	if in.EmployeeID == 0 {
		v["employee_id"] = "required"
	}
	if !v.Empty() {
		return
	}
	date, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		v["date"] = "invalid_date"
	}
	start, err := parseClock(in.Start)
	if err != nil {
		v["start"] = "invalid_time"
	}
	end, err := parseClock(in.End)
	if err != nil {
		v["end"] = "invalid_time"
	}
	if !v.Empty() {
		return
	}
	e.Date = date
	e.Start = start
	e.End = end
	e.Description = in.Description
	e.ClientID = in.ClientID
	e.EmployeeID = in.EmployeeID
	if in.Paid != nil {
		e.Paid = *in.Paid
	}
	if err := e.Validate(); err != nil {
		v["end"] = "end_not_after_start"
	}
}

func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	pageSize := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			pageSize = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * pageSize
		}
	}
	dbq := h.DB.Model(&models.TimeEntry{})
	if v := r.URL.Query().Get("paid"); v != "" {
		paid, err := strconv.ParseBool(v)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_paid_filter", nil)
			return
		}
		dbq = dbq.Where("paid = ?", paid)
	}
	if v := r.URL.Query().Get("client_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_client_filter", nil)
			return
		}
		dbq = dbq.Where("client_id = ?", id)
	}

	var total int64
	dbq.Count(&total)
	var entries []models.TimeEntry
	if err := dbq.
		Preload("Client").
		Preload("Employee").
		Order("date DESC, start DESC, id DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&entries).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_entries", nil)
		return
	}
	items := make([]entryView, 0, len(entries))
	for _, e := range entries {
		items = append(items, toEntryView(e))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "limit": pageSize, "offset": offset})
}

func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input entryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	var entry models.TimeEntry
	v := validation.Violations{}
	input.apply(&entry, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.checkReferences(w, entry.ClientID, entry.EmployeeID); err != nil {
		return
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "entry_create_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEntryView(entry))
}

func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var entry models.TimeEntry
	if err := h.DB.First(&entry, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var input entryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	input.apply(&entry, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.checkReferences(w, entry.ClientID, entry.EmployeeID); err != nil {
		return
	}
	if err := h.DB.Save(&entry).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "entry_update_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryView(entry))
}

func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id := idParam(r)
	if id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.Delete(&models.TimeEntry{}, id)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "delete_failed", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// MarkPaid flips the paid flag on a batch of entries, typically right after
// an invoice covering them went out.
func (h *EntryHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	var input struct {
		IDs []uint `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if len(input.IDs) == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "no_ids", nil)
		return
	}
	res := h.DB.Model(&models.TimeEntry{}).Where("id IN ?", input.IDs).Update("paid", true)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "mark_paid_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": res.RowsAffected})
}

// checkReferences rejects entries pointing at missing clients or employees
// with a 400 instead of letting the FK error surface as a 500. It writes
// the response itself; a non-nil return tells the caller to stop.
func (h *EntryHandler) checkReferences(w http.ResponseWriter, clientID, employeeID uint) error {
	var count int64
	if err := h.DB.Model(&models.Client{}).Where("id = ?", clientID).Count(&count).Error; err != nil || count == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_client", nil)
		return errors.New("unknown client")
	}
	if err := h.DB.Model(&models.Employee{}).Where("id = ?", employeeID).Count(&count).Error; err != nil || count == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_employee", nil)
		return errors.New("unknown employee")
	}
	return nil
}

func idParam(r *http.Request) int {
	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		idStr = r.FormValue("id")
	}
	id, _ := strconv.Atoi(idStr)
	return id
}
