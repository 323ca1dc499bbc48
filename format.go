package levyreceipt

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FilenamePrefix is prepended to the receipt number to name saved documents.
const FilenamePrefix = "NAPPS_Levy_Receipt"

// NairaSign prefixes every displayed amount.
const NairaSign = "₦"

const (
	dateLayout      = "January 2, 2006"
	generatedLayout = "January 2, 2006 3:04 PM"
)

var displayLocale = language.MustParse("en-NG")

// FormatNaira converts an amount in kobo to its display form, e.g.
// 2500000 -> "₦25,000". The naira part is grouped for the locale; kobo are
// appended exactly, without trailing zeros.
func FormatNaira(kobo int64) string {
	naira := decimal.New(kobo, -2).Abs()
	formatted := message.NewPrinter(displayLocale).Sprint(number.Decimal(naira.IntPart()))
	if frac := naira.Sub(naira.Floor()); !frac.IsZero() {
		// "0.5" -> ".5"; String drops trailing zeros.
		formatted += strings.TrimPrefix(frac.String(), "0")
	}
	if kobo < 0 {
		return "-" + NairaSign + formatted
	}
	return NairaSign + formatted
}

// FormatDate renders a payment date in long form, e.g. "March 15, 2024".
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatGeneratedAt renders the generation timestamp printed in the footer.
func FormatGeneratedAt(t time.Time) string {
	return t.Format(generatedLayout)
}

// Filename returns the document name for a receipt number. The receipt
// number is used verbatim.
func Filename(receiptNumber string) string {
	return FilenamePrefix + "_" + receiptNumber + ".pdf"
}

// JoinWards renders the wards sequence as displayed on the receipt.
func JoinWards(wards []string) string {
	return strings.Join(wards, ", ")
}
