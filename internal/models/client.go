package models

import "time"

// Client is an invoiced company. Company is the display name shown in entry
// lists and on the invoice receiver block; Name holds the contact or legal
// name printed beneath it.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Company    string `gorm:"size:200;not null;uniqueIndex" json:"company"`
	Name       string `gorm:"size:200" json:"name"`
	Street     string `gorm:"size:200" json:"street"`
	PostalCode string `gorm:"size:20" json:"postal_code"`
	City       string `gorm:"size:200" json:"city"`
	Country    string `gorm:"size:200" json:"country"`
	TaxID      string `gorm:"size:20" json:"tax_id"`

	// HourlyRate is the client's default rate, pre-filled into the invoice
	// form. Nil when no default is configured.
	HourlyRate *uint `json:"hourly_rate,omitempty"`
}

// ZipCity renders the "postal code + city" line of an address block.
func (c *Client) ZipCity() string {
	return joinZipCity(c.PostalCode, c.City)
}
