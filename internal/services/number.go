package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/mfsit/stunden/internal/models"
)

// NextInvoiceNumber suggests the follow-up to the most recently logged
// invoice number: the digits after its last dash incremented, always under
// the house "IT-" prefix, so "IT-41" becomes "IT-42" and an operator
// override like "XY-41" still yields "IT-42". It returns "" when no number
// has been logged yet or the latest one does not end in digits; the caller
// then has to type a number by hand.
func NextInvoiceNumber(db *gorm.DB) (string, error) {
	var last models.InvoiceNumber
	err := db.Order("issued_at DESC, id DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	idx := strings.LastIndex(last.Number, "-")
	if idx < 0 || idx == len(last.Number)-1 {
		return "", nil
	}
	n, err := strconv.Atoi(last.Number[idx+1:])
	if err != nil {
		return "", nil
	}
	return fmt.Sprintf("IT-%d", n+1), nil
}
