package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/api/responses"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/core/mapping"
	"github.com/ngnetgroupmall/KDV-Kontrol-PRO-Sistemi-sub001/internal/domain"
)

// TemplateHandler manages saved column-mapping templates keyed by
// header fingerprint.
type TemplateHandler struct {
	store *mapping.TemplateStore
}

// NewTemplateHandler creates a template handler over the shared store.
func NewTemplateHandler(store *mapping.TemplateStore) *TemplateHandler {
	return &TemplateHandler{store: store}
}

// HandleList returns every stored fingerprint.
func (h *TemplateHandler) HandleList(c *gin.Context) {
	responses.Success(c, gin.H{"fingerprints": h.store.Fingerprints()}, "")
}

// HandleGet returns the stored mapping for one fingerprint.
func (h *TemplateHandler) HandleGet(c *gin.Context) {
	fingerprint := c.Param("fingerprint")
	m, ok := h.store.Get(fingerprint)
	if !ok {
		responses.Error(c, http.StatusNotFound, "no template for fingerprint")
		return
	}
	responses.Success(c, m, "")
}

// HandlePut stores a mapping for one fingerprint, replacing any
// previous template wholesale.
func (h *TemplateHandler) HandlePut(c *gin.Context) {
	fingerprint := c.Param("fingerprint")
	var m domain.FieldMapping
	if err := c.ShouldBindJSON(&m); err != nil {
		responses.Error(c, http.StatusBadRequest, "invalid mapping body", err.Error())
		return
	}
	if len(m) == 0 {
		responses.Error(c, http.StatusBadRequest, "mapping body is empty")
		return
	}
	h.store.Save(fingerprint, m)
	responses.Success(c, gin.H{"fingerprint": fingerprint}, "template saved")
}
