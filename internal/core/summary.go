package core

import "github.com/shopspring/decimal"

// Snapshot is the dashboard aggregate for the current fiscal year.
type Snapshot struct {
	Year              int
	AnnualRevenue     decimal.Decimal
	ActiveClientCount int // distinct clients invoiced this year, any status
	PendingQuoteCount int // quotes still draft or sent
	OutstandingCount  int
	OutstandingAmount decimal.Decimal
	MonthlyRevenue    map[int]decimal.Decimal // month 1-12; zero months absent
}
