package executor

import (
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

// Batch walks an ordered list of same-type files. The cursor only
// advances when a file's normalization completed; a structural failure
// parks it on the failed file so the caller can see exactly where the
// run stopped. Records merged before the failure are kept.
type Batch struct {
	Document domain.DocumentType
	Mode     domain.Mode
	Files    []string

	cursor int
	failed bool

	EInvoices   []domain.EInvoiceRecord
	Accounting  []domain.AccountingRecord
	Quarantined []domain.AccountingRecord
	Summaries   []domain.ParseSummary
}

// NewBatch sets the cursor on the first file.
func NewBatch(doc domain.DocumentType, mode domain.Mode, files []string) *Batch {
	return &Batch{Document: doc, Mode: mode, Files: files}
}

// Current reports the file under the cursor. ok is false once every
// file has been merged.
func (b *Batch) Current() (index int, name string, ok bool) {
	if b.cursor >= len(b.Files) {
		return 0, "", false
	}
	return b.cursor, b.Files[b.cursor], true
}

// Failed reports whether the cursor is parked on a failed file.
func (b *Batch) Failed() bool {
	return b.failed
}

// Merge folds one file's parse result into the batch and advances the
// cursor. Results are refused while the cursor is parked.
func (b *Batch) Merge(res *ParseResult) bool {
	if b.failed || b.cursor >= len(b.Files) {
		return false
	}
	b.EInvoices = append(b.EInvoices, res.EInvoices...)
	if res.Accounting != nil {
		b.Accounting = append(b.Accounting, res.Accounting.Records...)
		b.Quarantined = append(b.Quarantined, res.Accounting.Quarantined...)
	}
	b.Summaries = append(b.Summaries, res.Summary)
	b.cursor++
	return true
}

// Fail parks the cursor on the current file.
func (b *Batch) Fail() {
	if b.cursor < len(b.Files) {
		b.failed = true
	}
}

// Done reports whether every file merged cleanly.
func (b *Batch) Done() bool {
	return !b.failed && b.cursor >= len(b.Files)
}
