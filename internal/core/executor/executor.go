// Package executor is the isolated execution boundary of the engine:
// callers submit request messages and receive exactly one response each.
// A bounded worker pool replaces the original one-context-per-operation
// model; the isolation invariant is unchanged — no state crosses
// requests except the injected template store, which only explicit saves
// write.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/ledger"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/mapping"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/normalize"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/reconcile"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/sheet"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

// Kind is a request kind.
type Kind string

// ResponseKind tags the single response of a request.
type ResponseKind string

// Protocol constants.
const (
	KindParse     Kind = "PARSE"
	KindReconcile Kind = "RECONCILE"

	ParseSuccess     ResponseKind = "PARSE_SUCCESS"
	ParseError       ResponseKind = "PARSE_ERROR"
	ReconcileSuccess ResponseKind = "RECONCILE_SUCCESS"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("executor closed")

// ParseRequest carries one file through detection, mapping and
// normalization.
type ParseRequest struct {
	FileName string
	Data     []byte
	Document domain.DocumentType
	Mode     domain.Mode
	// Mapping may be nil; the executor then uses a stored template for
	// the header fingerprint, or the auto-suggestion.
	Mapping domain.FieldMapping
	Options normalize.Options
	Ledger  ledger.Options
}

// ParseResult is the success payload of a PARSE request.
type ParseResult struct {
	Header      *domain.HeaderMap           `json:"header"`
	Fingerprint string                      `json:"fingerprint"`
	EInvoices   []domain.EInvoiceRecord     `json:"eInvoices,omitempty"`
	Accounting  *normalize.AccountingResult `json:"accounting,omitempty"`
	Ledger      *domain.LedgerAnalysis      `json:"ledger,omitempty"`
	Summary     domain.ParseSummary         `json:"summary"`
}

// ReconcileRequest carries both record sets into the matcher.
type ReconcileRequest struct {
	EInvoices   []domain.EInvoiceRecord
	Accounting  []domain.AccountingRecord
	Quarantined []domain.AccountingRecord
	// Tolerance below zero selects the default.
	Tolerance float64
}

// Request is one message to the executor.
type Request struct {
	ID        string
	Kind      Kind
	Parse     *ParseRequest
	Reconcile *ReconcileRequest
}

// Response is the single reply to a request.
type Response struct {
	ID        string
	Kind      ResponseKind
	Parse     *ParseResult
	Reconcile *domain.ReconciliationReport
	Err       string
}

type task struct {
	ctx   context.Context
	req   Request
	reply chan Response
}

// Executor runs requests on a fixed pool of workers.
type Executor struct {
	tasks     chan task
	templates *mapping.TemplateStore
	logger    *zap.Logger
	done      chan struct{}
}

// New starts an executor with the given worker count (minimum 1).
func New(workers int, templates *mapping.TemplateStore, logger *zap.Logger) *Executor {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Executor{
		tasks:     make(chan task),
		templates: templates,
		logger:    logger,
		done:      make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		go e.worker()
	}
	return e
}

// Close stops accepting work. In-flight requests still complete.
func (e *Executor) Close() {
	close(e.done)
}

// Submit runs one request and waits for its response. Cancelling the
// context abandons the result without a partial payload, mirroring the
// caller discarding the execution context.
func (e *Executor) Submit(ctx context.Context, req Request) (Response, error) {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	t := task{ctx: ctx, req: req, reply: make(chan Response, 1)}
	select {
	case e.tasks <- t:
	case <-e.done:
		return Response{}, ErrClosed
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
	select {
	case resp := <-t.reply:
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

func (e *Executor) worker() {
	for {
		select {
		case t := <-e.tasks:
			t.reply <- e.handle(t.req)
		case <-e.done:
			return
		}
	}
}

// handle dispatches one request. Panics become a generic transport
// failure string so a broken file can never take the pool down.
func (e *Executor) handle(req Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("execution panic",
				zap.String("request", req.ID),
				zap.Any("panic", r))
			resp = Response{ID: req.ID, Kind: ParseError, Err: "execution failed"}
		}
	}()

	switch req.Kind {
	case KindParse:
		result, err := e.parse(req.Parse)
		if err != nil {
			fileName := ""
			if req.Parse != nil {
				fileName = req.Parse.FileName
			}
			e.logger.Warn("parse failed",
				zap.String("request", req.ID),
				zap.String("file", fileName),
				zap.Error(err))
			return Response{ID: req.ID, Kind: ParseError, Err: err.Error()}
		}
		return Response{ID: req.ID, Kind: ParseSuccess, Parse: result}
	case KindReconcile:
		index := reconcile.BuildEInvoiceIndex(req.Reconcile.EInvoices)
		aggregates := reconcile.AggregateAccounting(req.Reconcile.Accounting)
		report := reconcile.Classify(index, aggregates, req.Reconcile.Quarantined, req.Reconcile.Tolerance)
		return Response{ID: req.ID, Kind: ReconcileSuccess, Reconcile: report}
	}
	return Response{ID: req.ID, Kind: ParseError, Err: fmt.Sprintf("unknown request kind: %s", req.Kind)}
}

func (e *Executor) parse(req *ParseRequest) (*ParseResult, error) {
	if req == nil {
		return nil, errors.New("empty parse request")
	}
	grid, err := sheet.Load(req.Data, req.FileName)
	if err != nil {
		return nil, err
	}
	header, err := sheet.Detect(grid, req.Document, sheet.DetectOptions{DateRequired: true})
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Header:      header,
		Fingerprint: mapping.Fingerprint(header.Labels),
	}

	m := req.Mapping
	if m == nil {
		if tpl, ok := e.templates.Get(result.Fingerprint); ok {
			m = tpl
		} else {
			specs, serr := domain.Schema(req.Document, req.Mode)
			if serr != nil {
				return nil, serr
			}
			m = mapping.Suggest(specs, header)
		}
	}

	switch req.Document {
	case domain.DocEInvoice:
		records, summary, nerr := normalize.EInvoice(grid, header, m, req.Mode, req.Options)
		if nerr != nil {
			return nil, nerr
		}
		result.EInvoices = records
		result.Summary = summary
	case domain.DocAccountingVAT, domain.DocAccountingMatrah:
		acc, nerr := normalize.Accounting(grid, header, m, req.Document, req.Mode, req.Options)
		if nerr != nil {
			return nil, nerr
		}
		result.Accounting = acc
		result.Summary = acc.Summary
	case domain.DocLedger:
		analysis, lerr := ledger.Analyze(grid, header, m, req.Ledger)
		if lerr != nil {
			return nil, lerr
		}
		result.Ledger = analysis
		result.Summary = analysis.Summary
	default:
		return nil, fmt.Errorf("unknown document type: %s", req.Document)
	}
	return result, nil
}
