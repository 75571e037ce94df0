// Package report renders arrears exports as Excel workbooks.
package report

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var malay = message.NewPrinter(language.Malay)

// FormatRM renders an amount as ringgit with two decimals and thousands
// grouping, e.g. "RM 1,250.00".
func FormatRM(amount decimal.Decimal) string {
	return malay.Sprintf("RM %.2f", amount.Round(2).InexactFloat64())
}
