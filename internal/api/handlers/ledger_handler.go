package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/api/responses"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/executor"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/ledger"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

// LedgerHandler serves the general-ledger analysis endpoint.
type LedgerHandler struct {
	exec *executor.Executor
}

// NewLedgerHandler creates a ledger handler on top of the executor.
func NewLedgerHandler(exec *executor.Executor) *LedgerHandler {
	return &LedgerHandler{exec: exec}
}

// prefixesFromForm splits a comma-separated prefix list form field.
func prefixesFromForm(c *gin.Context, formKey string) []string {
	raw := c.PostForm(formKey)
	if raw == "" {
		return nil
	}
	var prefixes []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			prefixes = append(prefixes, trimmed)
		}
	}
	return prefixes
}

// HandleAnalyze runs the full account-level analysis over one uploaded
// muavin (general ledger) file.
func (h *LedgerHandler) HandleAnalyze(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "upload field \"file\" missing or invalid")
		return
	}

	opts := ledger.Options{
		WatchPrefixes:       prefixesFromForm(c, "watchPrefixes"),
		IncludeZeroMovement: c.PostForm("includeZeroMovement") == "true",
	}
	if raw := c.PostForm("topN"); raw != "" {
		topN, perr := strconv.Atoi(raw)
		if perr != nil || topN < 0 {
			responses.Error(c, http.StatusBadRequest, "invalid topN: "+raw)
			return
		}
		opts.TopN = topN
	}

	m, err := mappingFromForm(c)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	data, err := readUpload(fh)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "could not read uploaded file")
		return
	}
	resp, err := h.exec.Submit(c.Request.Context(), executor.Request{
		Kind: executor.KindParse,
		Parse: &executor.ParseRequest{
			FileName: fh.Filename,
			Data:     data,
			Document: domain.DocLedger,
			Mode:     domain.ModeSales,
			Mapping:  m,
			Ledger:   opts,
		},
	})
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "execution failed", err.Error())
		return
	}
	if resp.Kind == executor.ParseError {
		responses.Error(c, http.StatusUnprocessableEntity, "ledger analysis failed", resp.Err)
		return
	}
	responses.Success(c, resp.Parse.Ledger, "ledger analysis complete")
}
