// package domain/models.go
package domain

import "time"

// Mode selects which reconciliation direction a schema serves and which
// monetary side of an accounting document is authoritative.
type Mode string

// Constants for reconciliation modes.
const (
	ModeSales    Mode = "SALES"    // revenue: credit side is authoritative
	ModePurchase Mode = "PURCHASE" // expense: debit side is authoritative
)

// DocumentType identifies which normalizer handles a parsed file.
type DocumentType string

// Constants for supported document types.
const (
	DocEInvoice         DocumentType = "EINVOICE"
	DocAccountingVAT    DocumentType = "ACCOUNTING_VAT"
	DocAccountingMatrah DocumentType = "ACCOUNTING_MATRAH"
	DocLedger           DocumentType = "LEDGER"
)

// CellKind tags the type a spreadsheet cell carried in the source file.
type CellKind int

// Constants for raw cell kinds.
const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// Cell is one value of a RawGrid with its source type preserved.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Date   time.Time
}

// RawGrid is the first sheet of a workbook in row-major order. It is built
// once per file and never mutated afterwards.
type RawGrid struct {
	Rows [][]Cell
}

// HeaderMap is the detected header row of a RawGrid.
type HeaderMap struct {
	RowIndex int
	Labels   []string
	// DateColumn is the statistically detected date column, -1 when the
	// fallback was skipped or found no column with enough support.
	DateColumn int
}

// CanonicalFieldSpec describes one logical column of a document schema,
// independent of any source file's actual header text.
type CanonicalFieldSpec struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// FieldSource resolves a canonical field to one or more source columns, or
// marks an optional field explicitly absent.
type FieldSource struct {
	Columns []string `json:"columns,omitempty"`
	Absent  bool     `json:"absent,omitempty"`
}

// FieldMapping maps canonical field keys to their source columns. Every
// required field must resolve to at least one real column before
// normalization may run.
type FieldMapping map[string]FieldSource

// EInvoiceRecord is a normalized e-invoice row.
type EInvoiceRecord struct {
	RowIndex      int        `json:"rowIndex"`
	InvoiceNumber string     `json:"invoiceNumber"`
	Date          *time.Time `json:"date,omitempty"`
	Counterparty  string     `json:"counterparty,omitempty"`
	TaxNumber     string     `json:"taxNumber,omitempty"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency,omitempty"`
	ExchangeRate  float64    `json:"exchangeRate,omitempty"`
}

// AccountingRecord is a normalized accounting-side row (VAT or matrah
// schema). The invoice number is derived from free text by the extractor,
// not read from a dedicated column.
type AccountingRecord struct {
	RowIndex    int        `json:"rowIndex"`
	AccountCode string     `json:"accountCode"`
	AccountName string     `json:"accountName,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	DocumentNo  string     `json:"documentNo,omitempty"`
	Description string     `json:"description"`
	Debit       float64    `json:"debit"`
	Credit      float64    `json:"credit"`
	// Amount is the signed value of the authoritative side for the
	// schema's mode.
	Amount          float64  `json:"amount"`
	Matrah          float64  `json:"matrah,omitempty"`
	InvoiceNumber   string   `json:"invoiceNumber,omitempty"`
	InvoiceNumbers  []string `json:"invoiceNumbers,omitempty"`
	Ambiguous       bool     `json:"ambiguous,omitempty"`
	ValidationError bool     `json:"validationError,omitempty"`
}

// ParseSummary carries the tolerant-degradation counters of one file.
type ParseSummary struct {
	RowsRead         int `json:"rowsRead"`
	Records          int `json:"records"`
	SkippedRows      int `json:"skippedRows"`
	ZeroMovementRows int `json:"zeroMovementRows"`
	InvalidDateRows  int `json:"invalidDateRows"`
	QuarantinedRows  int `json:"quarantinedRows"`
}

// MissingInAccounting is an e-invoice with no accounting counterpart.
type MissingInAccounting struct {
	InvoiceNumber string         `json:"invoiceNumber"`
	Amount        float64        `json:"amount"`
	Currency      string         `json:"currency,omitempty"`
	Record        EInvoiceRecord `json:"record"`
}

// AmountMismatch is a matched key whose totals differ beyond tolerance.
type AmountMismatch struct {
	InvoiceNumber    string             `json:"invoiceNumber"`
	EInvoiceAmount   float64            `json:"eInvoiceAmount"` // converted to local currency
	AccountingAmount float64            `json:"accountingAmount"`
	Delta            float64            `json:"delta"` // signed: e-invoice minus accounting
	Rows             []AccountingRecord `json:"rows,omitempty"`
}

// ReconciliationReport is the pure output of the matcher: four ordered
// discrepancy buckets. Fully reconciled keys produce no row anywhere.
type ReconciliationReport struct {
	MissingInAccounting []MissingInAccounting `json:"missingInAccounting"`
	MissingInEInvoice   []AccountingRecord    `json:"missingInEInvoice"`
	AmountMismatches    []AmountMismatch      `json:"amountMismatches"`
	Erroneous           []AccountingRecord    `json:"erroneous"`
}

// Transaction is one ledger movement inside an AccountDetail.
type Transaction struct {
	Date        *time.Time `json:"date,omitempty"`
	Description string     `json:"description"`
	DocumentNo  string     `json:"documentNo,omitempty"`
	Debit       float64    `json:"debit"`
	Credit      float64    `json:"credit"`
	Balance     float64    `json:"balance"`
	// Foreign-currency fields, zero-valued for plain TRY movements.
	Currency     string  `json:"currency,omitempty"`
	ExchangeRate float64 `json:"exchangeRate,omitempty"`
	FXDebit      float64 `json:"fxDebit,omitempty"`
	FXCredit     float64 `json:"fxCredit,omitempty"`
	FXBalance    float64 `json:"fxBalance,omitempty"`
}

// AccountDetail aggregates every movement of one ledger account.
// Balance always equals TotalDebit minus TotalCredit.
type AccountDetail struct {
	Code         string        `json:"code"`
	Name         string        `json:"name"`
	TotalDebit   float64       `json:"totalDebit"`
	TotalCredit  float64       `json:"totalCredit"`
	Balance      float64       `json:"balance"`
	Transactions []Transaction `json:"transactions"`
}

// MonthlyDensity summarizes ledger activity of one calendar month.
type MonthlyDensity struct {
	Month            int     `json:"month"` // 1..12
	Count            int     `json:"count"`
	Volume           float64 `json:"volume"`
	DistinctAccounts int     `json:"distinctAccounts"`
	DistinctVouchers int     `json:"distinctVouchers"`
}

// PrefixSummary rolls accounts up by their 3-digit kebir prefix.
type PrefixSummary struct {
	Prefix      string  `json:"prefix"`
	Name        string  `json:"name"` // shortest sub-account name seen
	TotalDebit  float64 `json:"totalDebit"`
	TotalCredit float64 `json:"totalCredit"`
	Balance     float64 `json:"balance"`
	Accounts    int     `json:"accounts"`
}

// LedgerAnalysis is the full output of the ledger pipeline.
type LedgerAnalysis struct {
	Accounts        []*AccountDetail   `json:"accounts"`
	MonthlyDensity  [12]MonthlyDensity `json:"monthlyDensity"`
	WatchList       []*AccountDetail   `json:"watchList"`
	PrefixRollup    []PrefixSummary    `json:"prefixRollup"`
	ComplexityScore int                `json:"complexityScore"`
	Summary         ParseSummary       `json:"summary"`
}
