package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfsit/stunden/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func at(h, m int) time.Time {
	return time.Date(2024, 3, 1, h, m, 0, 0, time.UTC)
}

func testClient() models.Client {
	return models.Client{
		ID:         7,
		Company:    "Example GmbH",
		Name:       "Max Mustermann",
		Street:     "Hauptstraße 1",
		PostalCode: "1010",
		City:       "Wien",
		Country:    "Österreich",
		TaxID:      "ATU11111111",
	}
}

func testEmployee() models.Employee {
	return models.Employee{
		ID:         1,
		Name:       "Maria Ferreira",
		Street:     "Nebengasse 2",
		PostalCode: "1020",
		City:       "Wien",
		Country:    "Österreich",
		TaxID:      "ATU22222222",
		BankName:   "Testbank",
		BankIBAN:   "AT00 0000 0000 0000 0000",
		BankBIC:    "TESTATWW",
	}
}

func testEntries(clientID uint) []models.TimeEntry {
	return []models.TimeEntry{
		{
			Date:        at(0, 0),
			Start:       at(10, 0),
			End:         at(12, 0),
			Description: "Backend",
			ClientID:    clientID,
		},
		{
			Date:        at(0, 0),
			Start:       at(13, 0),
			End:         at(16, 30),
			Description: "Frontend",
			ClientID:    clientID,
		},
	}
}

func TestBuildHourMode(t *testing.T) {
	svc := NewInvoiceService()
	inv, err := svc.Build(BuildInput{
		Client:     testClient(),
		Employee:   testEmployee(),
		Number:     "IT-42",
		Title:      "Softwareentwicklung",
		Entries:    testEntries(7),
		HourlyRate: dec("50"),
		TaxRate:    20,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := inv.TotalHours.String(); got != "5.5" {
		t.Errorf("total hours = %s, want 5.5", got)
	}
	if got := inv.Net.String(); got != "275" {
		t.Errorf("net = %s, want 275", got)
	}
	if got := inv.Tax.String(); got != "55" {
		t.Errorf("tax = %s, want 55", got)
	}
	if got := inv.Gross.String(); got != "330" {
		t.Errorf("gross = %s, want 330", got)
	}
	if inv.NetFormatted != "275,00" || inv.TaxFormatted != "55,00" || inv.GrossFormatted != "330,00" {
		t.Errorf("formatted = %q/%q/%q", inv.NetFormatted, inv.TaxFormatted, inv.GrossFormatted)
	}
	if len(inv.Items) != 1 || inv.Items[0].Position != 1 {
		t.Fatalf("items = %+v", inv.Items)
	}
	if len(inv.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(inv.Entries))
	}
	if inv.Bank.IBAN == "" || inv.Receiver.Company != "Example GmbH" {
		t.Errorf("parties not carried over: %+v %+v", inv.Bank, inv.Receiver)
	}
	if inv.HourlyRateFormatted != "50,00" {
		t.Errorf("hourly rate formatted = %q, want 50,00", inv.HourlyRateFormatted)
	}
}

func TestBuildFiltersForeignEntries(t *testing.T) {
	svc := NewInvoiceService()
	entries := append(testEntries(7), models.TimeEntry{
		Date:     at(0, 0),
		Start:    at(8, 0),
		End:      at(9, 0),
		ClientID: 99,
	})
	inv, err := svc.Build(BuildInput{
		Client:     testClient(),
		Employee:   testEmployee(),
		Entries:    entries,
		HourlyRate: dec("50"),
		TaxRate:    20,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := inv.TotalHours.String(); got != "5.5" {
		t.Errorf("total hours = %s, want 5.5 (foreign entry must be ignored)", got)
	}
}

func TestBuildNoEntriesForClient(t *testing.T) {
	svc := NewInvoiceService()
	_, err := svc.Build(BuildInput{
		Client:     testClient(),
		Employee:   testEmployee(),
		Entries:    testEntries(99),
		HourlyRate: dec("50"),
		TaxRate:    20,
	})
	if !errors.Is(err, ErrNoEntriesForClient) {
		t.Fatalf("err = %v, want ErrNoEntriesForClient", err)
	}
}

func TestBuildFlatMode(t *testing.T) {
	svc := NewInvoiceService()
	inv, err := svc.Build(BuildInput{
		Client:   testClient(),
		Employee: testEmployee(),
		Number:   "IT-43",
		Title:    "Pauschale März",
		FlatNet:  decp("1000"),
		TaxRate:  20,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := inv.Tax.String(); got != "200" {
		t.Errorf("tax = %s, want 200", got)
	}
	if got := inv.Gross.String(); got != "1200" {
		t.Errorf("gross = %s, want 1200", got)
	}
	if len(inv.Entries) != 0 {
		t.Errorf("flat mode must not carry entries, got %d", len(inv.Entries))
	}
	if !inv.TotalHours.IsZero() {
		t.Errorf("flat mode total hours = %s, want 0", inv.TotalHours)
	}
	if inv.HourlyRateFormatted != "" {
		t.Errorf("flat mode hourly rate formatted = %q, want empty", inv.HourlyRateFormatted)
	}
}

func TestBuildPositions(t *testing.T) {
	tests := []struct {
		name    string
		p2, p3  Position
		wantErr error
		items   int
		net     string
	}{
		{"none", Position{}, Position{}, nil, 1, "275"},
		{"p2 only", Position{Title: "Hosting", Net: decp("25")}, Position{}, nil, 2, "300"},
		{"p2 and p3", Position{Title: "Hosting", Net: decp("25")}, Position{Title: "Domains", Net: decp("10")}, nil, 3, "310"},
		{"p3 without p2", Position{}, Position{Title: "Domains", Net: decp("10")}, ErrPositionOrder, 0, ""},
		{"p2 title only", Position{Title: "Hosting"}, Position{}, ErrPositionPair, 0, ""},
		{"p2 amount only", Position{Net: decp("25")}, Position{}, ErrPositionPair, 0, ""},
		{"p3 amount only", Position{Title: "Hosting", Net: decp("25")}, Position{Net: decp("10")}, ErrPositionPair, 0, ""},
	}

	svc := NewInvoiceService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := svc.Build(BuildInput{
				Client:     testClient(),
				Employee:   testEmployee(),
				Entries:    testEntries(7),
				HourlyRate: dec("50"),
				TaxRate:    20,
				Position2:  tt.p2,
				Position3:  tt.p3,
			})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if len(inv.Items) != tt.items {
				t.Errorf("items = %d, want %d", len(inv.Items), tt.items)
			}
			if got := inv.Net.String(); got != tt.net {
				t.Errorf("net = %s, want %s", got, tt.net)
			}
		})
	}
}

func TestBuildOrderBeforePair(t *testing.T) {
	// Both rules are violated; ordering is reported first.
	svc := NewInvoiceService()
	_, err := svc.Build(BuildInput{
		Client:     testClient(),
		Employee:   testEmployee(),
		Entries:    testEntries(7),
		HourlyRate: dec("50"),
		TaxRate:    20,
		Position3:  Position{Net: decp("10")},
	})
	if !errors.Is(err, ErrPositionOrder) {
		t.Fatalf("err = %v, want ErrPositionOrder", err)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	svc := NewInvoiceService()
	in := BuildInput{
		Client:     testClient(),
		Employee:   testEmployee(),
		Entries:    testEntries(7),
		HourlyRate: dec("50"),
		TaxRate:    20,
	}
	a, err := svc.Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := svc.Build(in)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !a.Gross.Equal(b.Gross) || a.GrossFormatted != b.GrossFormatted {
		t.Errorf("repeated build diverged: %s vs %s", a.GrossFormatted, b.GrossFormatted)
	}
}

func TestBuildNonDefaultTaxRate(t *testing.T) {
	svc := NewInvoiceService()
	inv, err := svc.Build(BuildInput{
		Client:   testClient(),
		Employee: testEmployee(),
		FlatNet:  decp("100"),
		TaxRate:  13,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := inv.Tax.String(); got != "13" {
		t.Errorf("tax = %s, want 13", got)
	}
	if inv.Items[0].TaxRate != 13 {
		t.Errorf("item tax rate = %d, want 13", inv.Items[0].TaxRate)
	}
}
