package core

import (
	"fmt"
	"strings"
)

// numberPrefixes maps each document family to its fixed number token.
var numberPrefixes = map[DocType]string{
	DocQuote:    "DEVIS",
	DocInvoice:  "FACT",
	DocContract: "CONT",
}

// FormatNumber renders a document number as {PREFIX}-{year}-{seq}, zero
// padding the sequence to three digits. Wider sequences simply grow; the year
// scope keeps them collision free.
func FormatNumber(t DocType, year int, seq int64) string {
	prefix, ok := numberPrefixes[t]
	if !ok {
		prefix = strings.ToUpper(string(t))
	}
	return fmt.Sprintf("%s-%d-%03d", prefix, year, seq)
}
