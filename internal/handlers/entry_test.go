package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEntryCreateAndList(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "Example GmbH")
	employee := seedEmployee(t, db, "Maria Ferreira")
	h := NewEntryHandler(db)

	body := fmt.Sprintf(`{"date":"2024-03-01","start":"10:00","end":"12:00","description":"Backend","client_id":%d,"employee_id":%d}`, client.ID, employee.ID)
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var created entryView
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Hours != "2.00" {
		t.Errorf("hours = %q, want 2.00", created.Hours)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/entries", nil)
	w2 := httptest.NewRecorder()
	h.List(w2, req2)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w2.Code)
	}
	var payload struct {
		Items []entryView `json:"items"`
		Total int64       `json:"total"`
	}
	if err := json.Unmarshal(w2.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Total != 1 || len(payload.Items) != 1 {
		t.Fatalf("expected 1 entry got total=%d items=%d", payload.Total, len(payload.Items))
	}
	if payload.Items[0].Client == nil || payload.Items[0].Client.Company != "Example GmbH" {
		t.Errorf("expected preloaded client, got %+v", payload.Items[0].Client)
	}
}

func TestEntryCreateRejectsEndBeforeStart(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "Example GmbH")
	employee := seedEmployee(t, db, "Maria Ferreira")
	h := NewEntryHandler(db)

	body := fmt.Sprintf(`{"date":"2024-03-01","start":"12:00","end":"10:00","description":"x","client_id":%d,"employee_id":%d}`, client.ID, employee.ID)
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "end_not_after_start") {
		t.Errorf("expected end_not_after_start violation, got %s", w.Body.String())
	}
}

func TestEntryCreateUnknownClient(t *testing.T) {
	db := setupTestDB(t)
	employee := seedEmployee(t, db, "Maria Ferreira")
	h := NewEntryHandler(db)

	body := fmt.Sprintf(`{"date":"2024-03-01","start":"10:00","end":"12:00","description":"x","client_id":999,"employee_id":%d}`, employee.ID)
	req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestEntryUpdate(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "Example GmbH")
	employee := seedEmployee(t, db, "Maria Ferreira")
	entry := seedEntry(t, db, client.ID, employee.ID, 10, 12)
	h := NewEntryHandler(db)

	body := fmt.Sprintf(`{"date":"2024-03-01","start":"13:00","end":"16:30","description":"Frontend","client_id":%d,"employee_id":%d}`, client.ID, employee.ID)
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/entries?id=%d", entry.ID), strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Update(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var updated entryView
	if err := json.Unmarshal(w.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.Hours != "3.50" || updated.Description != "Frontend" {
		t.Errorf("updated entry = hours %q description %q", updated.Hours, updated.Description)
	}
}

func TestEntryDelete(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "Example GmbH")
	employee := seedEmployee(t, db, "Maria Ferreira")
	entry := seedEntry(t, db, client.ID, employee.ID, 10, 12)
	h := NewEntryHandler(db)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/entries/delete?id=%d", entry.ID), nil)
	w := httptest.NewRecorder()
	h.Delete(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}

	w2 := httptest.NewRecorder()
	h.Delete(w2, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/entries/delete?id=%d", entry.ID), nil))
	if w2.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404 got %d", w2.Code)
	}
}

func TestEntryMarkPaid(t *testing.T) {
	db := setupTestDB(t)
	client := seedClient(t, db, "Example GmbH")
	employee := seedEmployee(t, db, "Maria Ferreira")
	e1 := seedEntry(t, db, client.ID, employee.ID, 10, 12)
	e2 := seedEntry(t, db, client.ID, employee.ID, 13, 16)
	seedEntry(t, db, client.ID, employee.ID, 17, 18)
	h := NewEntryHandler(db)

	body := fmt.Sprintf(`{"ids":[%d,%d]}`, e1.ID, e2.ID)
	req := httptest.NewRequest(http.MethodPost, "/entries/mark-paid", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.MarkPaid(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	req2 := httptest.NewRequest(http.MethodGet, "/entries?paid=false", nil)
	w2 := httptest.NewRecorder()
	h.List(w2, req2)
	var payload struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal(w2.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Total != 1 {
		t.Errorf("unpaid total = %d, want 1", payload.Total)
	}
}
