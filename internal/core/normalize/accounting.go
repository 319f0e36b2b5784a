package normalize

import (
	"fmt"
	"strings"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/invoice"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/mapping"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

// AccountingResult separates aggregatable records from quarantined ones.
// Quarantined rows bypass matching and surface verbatim in the erroneous
// bucket of the report.
type AccountingResult struct {
	Records     []domain.AccountingRecord `json:"records"`
	Quarantined []domain.AccountingRecord `json:"quarantined"`
	Summary     domain.ParseSummary       `json:"summary"`
}

// Accounting normalizes an accounting-VAT or matrah export. The invoice
// number comes from the extractor over the voucher reference and the
// description, since source files usually bury it in free text.
func Accounting(grid *domain.RawGrid, header *domain.HeaderMap, m domain.FieldMapping, doc domain.DocumentType, mode domain.Mode, opts Options) (*AccountingResult, error) {
	if doc != domain.DocAccountingVAT && doc != domain.DocAccountingMatrah {
		return nil, fmt.Errorf("not an accounting document type: %s", doc)
	}
	specs, err := domain.Schema(doc, mode)
	if err != nil {
		return nil, err
	}
	resolver, err := mapping.NewResolver(specs, m, header)
	if err != nil {
		return nil, err
	}

	result := &AccountingResult{}
	for i := header.RowIndex + 1; i < len(grid.Rows); i++ {
		row := grid.Rows[i]
		result.Summary.RowsRead++

		code := strings.TrimSpace(resolver.Text(row, domain.FieldAccountCode))
		if code == "" {
			result.Summary.SkippedRows++
			continue
		}

		description := resolver.Text(row, domain.FieldDescription)
		if invoice.IsCarryForward(description) {
			result.Summary.SkippedRows++
			continue
		}

		debit := resolver.Number(row, domain.FieldDebit)
		credit := resolver.Number(row, domain.FieldCredit)
		matrah := resolver.Number(row, domain.FieldMatrah)

		amount := signedAmount(doc, mode, debit, credit, matrah)
		if debit == 0 && credit == 0 && matrah == 0 && !opts.IncludeZeroMovement {
			result.Summary.ZeroMovementRows++
			result.Summary.SkippedRows++
			continue
		}

		rec := domain.AccountingRecord{
			RowIndex:    i,
			AccountCode: code,
			AccountName: resolver.Text(row, domain.FieldAccountName),
			DocumentNo:  resolver.Text(row, domain.FieldDocumentNo),
			Description: description,
			Debit:       debit,
			Credit:      credit,
			Matrah:      matrah,
			Amount:      amount,
		}
		rec.Date = resolveDate(resolver, header, row, &result.Summary)

		ex := invoice.Extract(rec.DocumentNo, description)
		rec.InvoiceNumber = ex.Primary
		rec.InvoiceNumbers = ex.All
		rec.Ambiguous = ex.Ambiguous

		if invoice.NeedsReview(amount, ex, description) {
			rec.ValidationError = true
			result.Summary.QuarantinedRows++
			result.Quarantined = append(result.Quarantined, rec)
			continue
		}

		result.Records = append(result.Records, rec)
		result.Summary.Records++
	}
	return result, nil
}

// signedAmount picks the authoritative monetary side. Sales postings
// credit revenue accounts, purchases debit expense accounts; the opposite
// side represents corrections and enters with negative sign. Matrah
// documents carry the taxable base directly.
func signedAmount(doc domain.DocumentType, mode domain.Mode, debit, credit, matrah float64) float64 {
	if doc == domain.DocAccountingMatrah {
		return matrah
	}
	if mode == domain.ModePurchase {
		return debit - credit
	}
	return credit - debit
}
