package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DocType identifies one of the three numbered document families.
type DocType string

const (
	DocQuote    DocType = "quote"
	DocInvoice  DocType = "invoice"
	DocContract DocType = "contract"
)

// PricingMode selects how a document total is derived.
type PricingMode string

const (
	PricingRate PricingMode = "rate" // daily rate × days
	PricingFlat PricingMode = "flat" // fixed amount
)

type (
	QuoteStatus    string
	InvoiceStatus  string
	ContractStatus string
	ContractKind   string
)

const (
	QuoteDraft    QuoteStatus = "draft"
	QuoteSent     QuoteStatus = "sent"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteRefused  QuoteStatus = "refused"
	QuoteExpired  QuoteStatus = "expired"
)

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceUnpaid    InvoiceStatus = "unpaid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

const (
	ContractDraft     ContractStatus = "draft"
	ContractSent      ContractStatus = "sent"
	ContractSigned    ContractStatus = "signed"
	ContractCompleted ContractStatus = "completed"
	ContractCancelled ContractStatus = "cancelled"
)

const (
	KindTimeAndMaterials ContractKind = "time_and_materials"
	KindFixedPrice       ContractKind = "fixed_price"
	KindShortMission     ContractKind = "short_mission"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrEmptyName           = errors.New("empty client name")
	ErrInvalidPricingMode  = errors.New("invalid pricing mode")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidContractKind = errors.New("invalid contract kind")
)

type (
	// Client is the party a document belongs to. Only the name is
	// required; everything else is optional contact/fiscal data.
	Client struct {
		ID          int64
		Name        string
		TaxID       string
		Address     string
		PostalCode  string
		City        string
		Email       string
		Phone       string
		ContactName string
		CreatedAt   time.Time
	}

	// Quote is a numbered price proposal. Financial fields are fixed at
	// creation; only the status moves afterwards.
	Quote struct {
		ID               int64
		Number           string
		ClientID         int64
		Description      string
		PricingMode      PricingMode
		DailyRate        decimal.Decimal
		Days             decimal.Decimal
		TotalHT          decimal.Decimal
		TotalTTC         decimal.Decimal
		Status           QuoteStatus
		ValidityDays     int
		CreatedOn        time.Time
		SentOn           *time.Time
		Notes            string
		DepositRequested bool
	}

	// Invoice is a numbered payment demand, optionally derived from a
	// quote. Days holds the effective quantity, which may differ from
	// the quoted one.
	Invoice struct {
		ID           int64
		Number       string
		QuoteID      *int64
		ClientID     int64
		Description  string
		PricingMode  PricingMode
		DailyRate    decimal.Decimal
		Days         decimal.Decimal
		TotalHT      decimal.Decimal
		TotalTTC     decimal.Decimal
		Status       InvoiceStatus
		CreatedOn    time.Time
		SentOn       *time.Time
		DueOn        time.Time
		PaidOn       *time.Time
		MissionStart *time.Time
		MissionEnd   *time.Time
		Notes        string
	}

	// Contract is a numbered legal-document record. It carries no
	// revenue-ledger effect.
	Contract struct {
		ID           int64
		Number       string
		ClientID     int64
		Kind         ContractKind
		DailyRate    decimal.Decimal
		DurationDays *int
		FlatAmount   decimal.Decimal
		StartsOn     *time.Time
		EndsOn       *time.Time
		Status       ContractStatus
		CreatedOn    time.Time
		FilePath     string
	}
)

func (m PricingMode) Valid() bool {
	return m == PricingRate || m == PricingFlat
}

func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteDraft, QuoteSent, QuoteAccepted, QuoteRefused, QuoteExpired:
		return true
	}
	return false
}

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceUnpaid, InvoiceCancelled:
		return true
	}
	return false
}

func (s ContractStatus) Valid() bool {
	switch s {
	case ContractDraft, ContractSent, ContractSigned, ContractCompleted, ContractCancelled:
		return true
	}
	return false
}

func (k ContractKind) Valid() bool {
	switch k {
	case KindTimeAndMaterials, KindFixedPrice, KindShortMission:
		return true
	}
	return false
}

func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Overdue reports whether the invoice is past due on the given day, and by
// how many days. Only sent and unpaid invoices can be overdue.
func (i Invoice) Overdue(today time.Time) (int, bool) {
	if i.Status != InvoiceSent && i.Status != InvoiceUnpaid {
		return 0, false
	}
	return DaysOverdue(i.DueOn, today)
}
