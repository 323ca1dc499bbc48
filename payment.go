package levyreceipt

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// LevyDescription is the description of the building levy line item.
const LevyDescription = "NAPPS NASARAWA STATE SECRETARIAT — BUILDING LEVY"

// DefaultStatus is printed in the receipt info box when the record carries no status.
const DefaultStatus = "SUCCESSFUL"

// PaymentRecord is a levy payment as returned by the portal payment-search API.
// Amount is held in kobo.
type PaymentRecord struct {
	ReceiptNumber string   `json:"receiptNumber" validate:"required"`
	Reference     string   `json:"reference" validate:"required"`
	MemberName    string   `json:"memberName" validate:"required"`
	Email         string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone         string   `json:"phone,omitempty"`
	Chapter       string   `json:"chapter,omitempty"`
	SchoolName    string   `json:"schoolName" validate:"required"`
	Wards         []string `json:"wards"`
	Amount        int64    `json:"amount" validate:"gte=0"`
	PaidAt        string   `json:"paidAt" validate:"required"`
	PaymentMethod string   `json:"paymentMethod,omitempty"`
	Status        string   `json:"status,omitempty"`
}

// LineItem is one billable entry of the Payment Details block.
type LineItem struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

// LineItems returns the billable items covered by the payment.
func (p PaymentRecord) LineItems() []LineItem {
	return []LineItem{{Description: LevyDescription, Amount: p.Amount}}
}

// Total sums the line items in kobo.
func Total(items []LineItem) int64 {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromInt(it.Amount))
	}
	return sum.IntPart()
}

// ReceiptStatus is the status printed on the receipt.
func (p PaymentRecord) ReceiptStatus() string {
	if s := strings.TrimSpace(p.Status); s != "" {
		return strings.ToUpper(s)
	}
	return DefaultStatus
}

var paidAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePaidAt parses a payment timestamp in any of the layouts the portal emits.
func ParsePaidAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range paidAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("paidAt %q is not a calendar date", s)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks every field the layout depends on. It runs before any
// drawing so that a malformed record never yields a partial document.
func (p PaymentRecord) Validate() error {
	var problems []string
	if err := recordValidator().Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return newReceiptError("validate", p.ReceiptNumber, fmt.Errorf("%w: %v", ErrInvalidInput, err))
		}
		for _, fe := range verrs {
			problems = append(problems, fieldProblem(fe))
		}
	}
	if p.PaidAt != "" {
		if _, err := ParsePaidAt(p.PaidAt); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return newReceiptError("validate", p.ReceiptNumber,
			fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; ")))
	}
	return nil
}

func fieldProblem(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " is not a valid email address"
	case "gte":
		return fe.Field() + " must be at least " + fe.Param()
	default:
		return fe.Field() + " failed " + fe.Tag()
	}
}
