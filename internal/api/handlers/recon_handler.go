package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/api/responses"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/executor"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/mapping"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/normalize"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/sheet"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

// ReconHandler serves the inspection, parsing and reconciliation
// endpoints.
type ReconHandler struct {
	exec *executor.Executor
}

// NewReconHandler creates a reconciliation handler on top of the
// executor.
func NewReconHandler(exec *executor.Executor) *ReconHandler {
	return &ReconHandler{exec: exec}
}

// modeFromForm reads and validates the "mode" form field.
func modeFromForm(c *gin.Context) (domain.Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(c.PostForm("mode"))) {
	case "SALES", "":
		return domain.ModeSales, nil
	case "PURCHASE":
		return domain.ModePurchase, nil
	}
	return "", fmt.Errorf("unsupported mode: %s", c.PostForm("mode"))
}

// documentFromForm reads and validates the "documentType" form field.
func documentFromForm(c *gin.Context) (domain.DocumentType, error) {
	switch strings.ToUpper(strings.TrimSpace(c.PostForm("documentType"))) {
	case "EINVOICE":
		return domain.DocEInvoice, nil
	case "ACCOUNTING_VAT", "":
		return domain.DocAccountingVAT, nil
	case "ACCOUNTING_MATRAH":
		return domain.DocAccountingMatrah, nil
	case "LEDGER":
		return domain.DocLedger, nil
	}
	return "", fmt.Errorf("unsupported document type: %s", c.PostForm("documentType"))
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// mappingFromForm reads the optional "mapping" form field, a JSON
// FieldMapping that overrides template and suggestion resolution.
func mappingFromForm(c *gin.Context) (domain.FieldMapping, error) {
	raw := c.PostForm("mapping")
	if raw == "" {
		return nil, nil
	}
	var m domain.FieldMapping
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("invalid mapping field: %w", err)
	}
	return m, nil
}

// inspectPayload is the response body of HandleInspect.
type inspectPayload struct {
	Header       *domain.HeaderMap   `json:"header"`
	Fingerprint  string              `json:"fingerprint"`
	Suggested    domain.FieldMapping `json:"suggestedMapping"`
	FromTemplate bool                `json:"fromTemplate"`
}

// HandleInspect detects the header of one uploaded file and returns the
// suggested column mapping without normalizing anything. The client
// uses it to let the accountant confirm or correct the mapping before a
// full parse.
func (h *ReconHandler) HandleInspect(templates *mapping.TemplateStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			responses.Error(c, http.StatusBadRequest, "upload field \"file\" missing or invalid")
			return
		}
		doc, err := documentFromForm(c)
		if err != nil {
			responses.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		mode, err := modeFromForm(c)
		if err != nil {
			responses.Error(c, http.StatusBadRequest, err.Error())
			return
		}

		data, err := readUpload(fh)
		if err != nil {
			responses.Error(c, http.StatusInternalServerError, "could not read uploaded file")
			return
		}
		grid, err := sheet.Load(data, fh.Filename)
		if err != nil {
			responses.Error(c, http.StatusUnprocessableEntity, "could not load spreadsheet", err.Error())
			return
		}
		header, err := sheet.Detect(grid, doc, sheet.DetectOptions{DateRequired: true})
		if err != nil {
			if errors.Is(err, sheet.ErrHeaderNotDetected) {
				responses.Error(c, http.StatusUnprocessableEntity, "header row not detected", err.Error())
				return
			}
			responses.Error(c, http.StatusInternalServerError, "inspection failed", err.Error())
			return
		}

		payload := inspectPayload{
			Header:      header,
			Fingerprint: mapping.Fingerprint(header.Labels),
		}
		if tpl, ok := templates.Get(payload.Fingerprint); ok {
			payload.Suggested = tpl
			payload.FromTemplate = true
		} else {
			specs, serr := domain.Schema(doc, mode)
			if serr != nil {
				responses.Error(c, http.StatusBadRequest, serr.Error())
				return
			}
			payload.Suggested = mapping.Suggest(specs, header)
		}
		responses.Success(c, payload, "inspection complete")
	}
}

// parsePayload is the response body of HandleParse.
type parsePayload struct {
	Files       []string                  `json:"files"`
	FailedFile  string                    `json:"failedFile,omitempty"`
	EInvoices   []domain.EInvoiceRecord   `json:"eInvoices,omitempty"`
	Accounting  []domain.AccountingRecord `json:"accounting,omitempty"`
	Quarantined []domain.AccountingRecord `json:"quarantined,omitempty"`
	Ledger      *domain.LedgerAnalysis    `json:"ledger,omitempty"`
	Summaries   []domain.ParseSummary     `json:"summaries"`
}

// HandleParse normalizes one or more same-type uploads in order. Files
// are walked strictly sequentially; a structural failure stops the walk
// on the failing file and the records merged so far are still returned
// in the error envelope. Ledger uploads take a single file.
func (h *ReconHandler) HandleParse(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "multipart form expected")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		responses.Error(c, http.StatusBadRequest, "upload field \"files\" missing")
		return
	}
	doc, err := documentFromForm(c)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	if doc == domain.DocLedger && len(files) > 1 {
		responses.Error(c, http.StatusBadRequest, "ledger uploads take a single file")
		return
	}
	mode, err := modeFromForm(c)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	m, err := mappingFromForm(c)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	opts := normalize.Options{
		IncludeZeroMovement: c.PostForm("includeZeroMovement") == "true",
	}

	names := make([]string, len(files))
	for i, fh := range files {
		names[i] = fh.Filename
	}
	batch := executor.NewBatch(doc, mode, names)
	payload := parsePayload{Files: names}

	for _, fh := range files {
		data, rerr := readUpload(fh)
		if rerr != nil {
			responses.Error(c, http.StatusInternalServerError, "could not read uploaded file", fh.Filename)
			return
		}
		resp, serr := h.exec.Submit(c.Request.Context(), executor.Request{
			Kind: executor.KindParse,
			Parse: &executor.ParseRequest{
				FileName: fh.Filename,
				Data:     data,
				Document: doc,
				Mode:     mode,
				Mapping:  m,
				Options:  opts,
			},
		})
		if serr != nil {
			responses.Error(c, http.StatusInternalServerError, "execution failed", serr.Error())
			return
		}
		if resp.Kind == executor.ParseError {
			batch.Fail()
			_, payload.FailedFile, _ = batch.Current()
			break
		}
		if doc == domain.DocLedger {
			payload.Ledger = resp.Parse.Ledger
			payload.Summaries = append(payload.Summaries, resp.Parse.Summary)
			continue
		}
		batch.Merge(resp.Parse)
	}

	if doc != domain.DocLedger {
		payload.EInvoices = batch.EInvoices
		payload.Accounting = batch.Accounting
		payload.Quarantined = batch.Quarantined
		payload.Summaries = batch.Summaries
	}
	if batch.Failed() {
		responses.Partial(c, http.StatusUnprocessableEntity, payload,
			fmt.Sprintf("file %q could not be parsed; preceding files were kept", payload.FailedFile))
		return
	}
	responses.Success(c, payload, "parse complete")
}

// HandleReconcile parses both uploaded sets and runs the matcher.
// E-invoice files go under "einvoiceFiles", accounting files under
// "accountingFiles"; both sets share the "mode" field.
func (h *ReconHandler) HandleReconcile(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "multipart form expected")
		return
	}
	eFiles := form.File["einvoiceFiles"]
	aFiles := form.File["accountingFiles"]
	if len(eFiles) == 0 || len(aFiles) == 0 {
		responses.Error(c, http.StatusBadRequest, "both \"einvoiceFiles\" and \"accountingFiles\" are required")
		return
	}
	mode, err := modeFromForm(c)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	accountingDoc := domain.DocAccountingVAT
	if strings.ToUpper(c.PostForm("accountingDocumentType")) == "ACCOUNTING_MATRAH" {
		accountingDoc = domain.DocAccountingMatrah
	}
	tolerance := -1.0
	if raw := c.PostForm("tolerance"); raw != "" {
		tolerance, err = strconv.ParseFloat(raw, 64)
		if err != nil || tolerance < 0 {
			responses.Error(c, http.StatusBadRequest, fmt.Sprintf("invalid tolerance: %s", raw))
			return
		}
	}

	eBatch, failed, err := h.runBatch(c, eFiles, domain.DocEInvoice, mode)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "execution failed", err.Error())
		return
	}
	if failed != "" {
		responses.Error(c, http.StatusUnprocessableEntity, fmt.Sprintf("e-invoice file %q could not be parsed", failed))
		return
	}
	aBatch, failed, err := h.runBatch(c, aFiles, accountingDoc, mode)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "execution failed", err.Error())
		return
	}
	if failed != "" {
		responses.Error(c, http.StatusUnprocessableEntity, fmt.Sprintf("accounting file %q could not be parsed", failed))
		return
	}

	resp, err := h.exec.Submit(c.Request.Context(), executor.Request{
		Kind: executor.KindReconcile,
		Reconcile: &executor.ReconcileRequest{
			EInvoices:   eBatch.EInvoices,
			Accounting:  aBatch.Accounting,
			Quarantined: aBatch.Quarantined,
			Tolerance:   tolerance,
		},
	})
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "execution failed", err.Error())
		return
	}
	responses.Success(c, gin.H{
		"report":              resp.Reconcile,
		"eInvoiceSummaries":   eBatch.Summaries,
		"accountingSummaries": aBatch.Summaries,
	}, "reconciliation complete")
}

// runBatch walks one file set through the executor in upload order.
// The returned name is the file the cursor parked on, empty when every
// file merged.
func (h *ReconHandler) runBatch(c *gin.Context, files []*multipart.FileHeader, doc domain.DocumentType, mode domain.Mode) (*executor.Batch, string, error) {
	names := make([]string, len(files))
	for i, fh := range files {
		names[i] = fh.Filename
	}
	batch := executor.NewBatch(doc, mode, names)
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			return batch, "", err
		}
		resp, err := h.exec.Submit(c.Request.Context(), executor.Request{
			Kind: executor.KindParse,
			Parse: &executor.ParseRequest{
				FileName: fh.Filename,
				Data:     data,
				Document: doc,
				Mode:     mode,
			},
		})
		if err != nil {
			return batch, "", err
		}
		if resp.Kind == executor.ParseError {
			batch.Fail()
			_, name, _ := batch.Current()
			return batch, name, nil
		}
		batch.Merge(resp.Parse)
	}
	return batch, "", nil
}
