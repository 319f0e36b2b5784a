// Package normalize turns raw grid rows into canonical typed records, one
// normalizer per document type. Normalizers are pure functions of the row
// and the resolved mapping; rows that cannot contribute are skipped and
// counted, never errored.
package normalize

import (
	"strings"
	"time"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/invoice"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/locale"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/mapping"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

// Options tunes row skipping.
type Options struct {
	// IncludeZeroMovement keeps rows whose monetary movement is entirely
	// zero instead of skipping them.
	IncludeZeroMovement bool
}

// EInvoice normalizes an e-invoice list export. Rows without an invoice
// number and zero-movement rows are skipped with counters; nothing here
// aborts the file.
func EInvoice(grid *domain.RawGrid, header *domain.HeaderMap, m domain.FieldMapping, mode domain.Mode, opts Options) ([]domain.EInvoiceRecord, domain.ParseSummary, error) {
	specs, err := domain.Schema(domain.DocEInvoice, mode)
	if err != nil {
		return nil, domain.ParseSummary{}, err
	}
	resolver, err := mapping.NewResolver(specs, m, header)
	if err != nil {
		return nil, domain.ParseSummary{}, err
	}

	var records []domain.EInvoiceRecord
	var summary domain.ParseSummary
	for i := header.RowIndex + 1; i < len(grid.Rows); i++ {
		row := grid.Rows[i]
		summary.RowsRead++

		number := strings.TrimSpace(resolver.Text(row, domain.FieldInvoiceNumber))
		if number == "" {
			summary.SkippedRows++
			continue
		}
		if invoice.IsCarryForward(number) {
			summary.SkippedRows++
			continue
		}

		amount := resolver.Number(row, domain.FieldAmount)
		if amount == 0 && !opts.IncludeZeroMovement {
			summary.ZeroMovementRows++
			summary.SkippedRows++
			continue
		}

		rec := domain.EInvoiceRecord{
			RowIndex:      i,
			InvoiceNumber: number,
			Counterparty:  resolver.Text(row, domain.FieldCounterparty),
			TaxNumber:     resolver.Text(row, domain.FieldTaxNumber),
			Amount:        amount,
			Currency:      strings.ToUpper(strings.TrimSpace(resolver.Text(row, domain.FieldCurrency))),
		}
		if rate, ok := resolver.OptionalNumber(row, domain.FieldExchangeRate); ok {
			rec.ExchangeRate = rate
		}
		rec.Date = resolveDate(resolver, header, row, &summary)

		records = append(records, rec)
		summary.Records++
	}
	return records, summary, nil
}

// resolveDate reads the mapped date field, falling back to the
// statistically detected date column when no field was mapped. A present
// but unparseable value bumps the invalid-date counter.
func resolveDate(resolver *mapping.Resolver, header *domain.HeaderMap, row []domain.Cell, summary *domain.ParseSummary) *time.Time {
	if resolver.Has(domain.FieldDate) {
		cells := resolver.Cells(row, domain.FieldDate)
		for _, cell := range cells {
			if t := locale.Date(cell); t != nil {
				return t
			}
		}
		for _, cell := range cells {
			if cell.Kind != domain.CellEmpty {
				summary.InvalidDateRows++
				break
			}
		}
		return nil
	}
	if header.DateColumn >= 0 && header.DateColumn < len(row) {
		cell := row[header.DateColumn]
		if t := locale.Date(cell); t != nil {
			return t
		}
		if cell.Kind != domain.CellEmpty {
			summary.InvalidDateRows++
		}
	}
	return nil
}
