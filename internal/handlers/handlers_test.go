package handlers

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mfsit/stunden/internal/models"
)

var testDBSeq atomic.Int64

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Unique in-memory database per call to avoid cross-test collisions
	// (and collisions between multiple databases within one test).
	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", t.Name(), testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Employee{},
		&models.TimeEntry{},
		&models.TaxSetting{},
		&models.InvoiceNumber{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedClient(t *testing.T, db *gorm.DB, company string) models.Client {
	t.Helper()
	c := models.Client{
		Company:    company,
		Name:       "Max Mustermann",
		Street:     "Hauptstraße 1",
		PostalCode: "1010",
		City:       "Wien",
		Country:    "Österreich",
		TaxID:      "ATU11111111",
	}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}

func seedEmployee(t *testing.T, db *gorm.DB, name string) models.Employee {
	t.Helper()
	e := models.Employee{
		Name:       name,
		Street:     "Nebengasse 2",
		PostalCode: "1020",
		City:       "Wien",
		Country:    "Österreich",
		TaxID:      "ATU22222222",
		BankName:   "Testbank",
		BankIBAN:   "AT00 0000 0000 0000 0000",
		BankBIC:    "TESTATWW",
	}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return e
}

func seedEntry(t *testing.T, db *gorm.DB, clientID, employeeID uint, startHour, endHour int) models.TimeEntry {
	t.Helper()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	e := models.TimeEntry{
		Date:        day,
		Start:       time.Date(2024, 3, 1, startHour, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 3, 1, endHour, 0, 0, 0, time.UTC),
		Description: "Entwicklung",
		ClientID:    clientID,
		EmployeeID:  employeeID,
	}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	return e
}
