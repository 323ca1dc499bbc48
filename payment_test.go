package levyreceipt_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/nappsnasarawa/levyreceipt"
)

func samplePayment() levyreceipt.PaymentRecord {
	return levyreceipt.PaymentRecord{
		ReceiptNumber: "NAPPS-0001",
		Reference:     "PSK-7f3a9c21",
		MemberName:    "Aisha Bello",
		Email:         "aisha.bello@example.com",
		Phone:         "08031234567",
		Chapter:       "Lafia",
		SchoolName:    "Crescent Model Academy",
		Wards:         []string{"Lafia East", "Lafia North"},
		Amount:        2500000,
		PaidAt:        "2024-03-15T00:00:00Z",
		PaymentMethod: "Card",
		Status:        "success",
	}
}

func TestValidate(t *testing.T) {
	if err := samplePayment().Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*levyreceipt.PaymentRecord)
		want   string
	}{
		{"missing receipt number", func(p *levyreceipt.PaymentRecord) { p.ReceiptNumber = "" }, "receiptNumber is required"},
		{"missing reference", func(p *levyreceipt.PaymentRecord) { p.Reference = "" }, "reference is required"},
		{"missing member", func(p *levyreceipt.PaymentRecord) { p.MemberName = "" }, "memberName is required"},
		{"missing school", func(p *levyreceipt.PaymentRecord) { p.SchoolName = "" }, "schoolName is required"},
		{"bad email", func(p *levyreceipt.PaymentRecord) { p.Email = "not-an-email" }, "email is not a valid email address"},
		{"negative amount", func(p *levyreceipt.PaymentRecord) { p.Amount = -1 }, "amount must be at least 0"},
		{"missing paidAt", func(p *levyreceipt.PaymentRecord) { p.PaidAt = "" }, "paidAt is required"},
		{"unparsable paidAt", func(p *levyreceipt.PaymentRecord) { p.PaidAt = "last week" }, "not a calendar date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := samplePayment()
			tt.mutate(&p)
			err := p.Validate()
			if !errors.Is(err, levyreceipt.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var rerr *levyreceipt.ReceiptError
			if !errors.As(err, &rerr) || rerr.Op != "validate" {
				t.Fatalf("expected a validate ReceiptError, got %#v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestOptionalFieldsMayBeEmpty(t *testing.T) {
	p := samplePayment()
	p.Email, p.Phone, p.Chapter, p.PaymentMethod, p.Status = "", "", "", "", ""
	p.Wards = nil
	p.Amount = 0
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := p.ReceiptStatus(); got != levyreceipt.DefaultStatus {
		t.Errorf("ReceiptStatus = %q", got)
	}
}

func TestLineItemsAndTotal(t *testing.T) {
	p := samplePayment()
	items := p.LineItems()
	if len(items) != 1 || items[0].Description != levyreceipt.LevyDescription || items[0].Amount != p.Amount {
		t.Fatalf("LineItems = %+v", items)
	}
	items = append(items, levyreceipt.LineItem{Description: "Late fee", Amount: 50000})
	if got := levyreceipt.Total(items); got != 2550000 {
		t.Errorf("Total = %d", got)
	}
}
